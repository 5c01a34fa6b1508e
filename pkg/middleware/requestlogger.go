package middleware

import (
	"log/slog"
	"net/http"

	"github.com/utafrali/SagaParticipants/pkg/logger"
)

// OrderHeader optionally names the saga order a request belongs to. The
// participant handlers also tag the logger once the body has been decoded.
const OrderHeader = "X-Order-ID"

// RequestLogger returns middleware that builds a request-scoped logger enriched
// with correlation_id, order_id, trace_id, and span_id, then stores it in
// context via logger.NewContext. Downstream handlers retrieve it with
// logger.FromContext(ctx).
//
// Mount it after RequestLogging and Tracing.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if orderID := r.Header.Get(OrderHeader); orderID != "" {
				ctx = logger.WithOrderID(ctx, orderID)
			}

			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
