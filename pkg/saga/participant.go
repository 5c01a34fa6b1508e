package saga

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	apperrors "github.com/utafrali/SagaParticipants/pkg/errors"
	"github.com/utafrali/SagaParticipants/pkg/logger"
	"github.com/utafrali/SagaParticipants/pkg/validator"
)

// Policy describes one resource: how its payload is checked and how a record
// is built from a request.
type Policy[P, R any] interface {
	// Resource is the response key and metric label, e.g. "payment".
	Resource() string
	// Validate runs after the payload's struct tags have been checked.
	Validate(req Request[P]) error
	// Apply builds the record to store. current is the existing record when
	// the participant reapplies duplicates, nil otherwise. Apply must not
	// return an error after it has mutated shared state.
	Apply(ctx context.Context, req Request[P], current *R) (R, error)
}

// Checker is implemented by policies that verify referenced resources exist
// before any fault is drawn or state is touched.
type Checker[P any] interface {
	Check(ctx context.Context, req Request[P]) error
}

// Compensator is implemented by policies with a compensating action. Undo
// reverses rec and returns the response view. It cannot fail.
type Compensator[R any] interface {
	Undo(ctx context.Context, orderID string, rec R) any
}

// DuplicatePolicy controls what Execute does when the order already has a record.
type DuplicatePolicy int

const (
	// ReplayRecord returns the stored record untouched.
	ReplayRecord DuplicatePolicy = iota
	// ReapplyRecord passes the stored record to Apply and replaces it.
	ReapplyRecord
)

// Options configures a Participant.
type Options struct {
	// Service is the service name used in logs and metrics, e.g. "label-service".
	Service     string
	Faults      FaultInjector
	FaultStage  FaultStage
	OnDuplicate DuplicatePolicy
	// FailureStatus is the status reported for injected failures (500 or 503).
	FailureStatus int
	Logger        *slog.Logger
}

// Result is the outcome of a successful Execute.
type Result[R any] struct {
	OrderID string
	Record  R
	// Created is true when the call stored the first record for the order.
	Created bool
}

// Participant runs the forward and compensating actions of one saga
// participant over its own Store.
type Participant[P, R any] struct {
	policy  Policy[P, R]
	store   *Store[R]
	service string
	opts    Options
	logger  *slog.Logger
}

// New creates a participant with an empty store.
func New[P, R any](policy Policy[P, R], opts Options) *Participant[P, R] {
	if opts.Faults == nil {
		opts.Faults = NoFaults{}
	}
	if opts.FailureStatus == 0 {
		opts.FailureStatus = http.StatusInternalServerError
	}
	if opts.Service == "" {
		opts.Service = policy.Resource() + "-service"
	}
	l := opts.Logger
	if l == nil {
		l = slog.Default()
	}
	return &Participant[P, R]{
		policy:  policy,
		store:   NewStore[R](),
		service: opts.Service,
		opts:    opts,
		logger:  l.With(slog.String("resource", policy.Resource())),
	}
}

// Resource returns the policy's resource name.
func (p *Participant[P, R]) Resource() string { return p.policy.Resource() }

// Service returns the configured service name.
func (p *Participant[P, R]) Service() string { return p.service }

// Store returns the participant's record store.
func (p *Participant[P, R]) Store() *Store[R] { return p.store }

// Len returns the number of records held.
func (p *Participant[P, R]) Len() int { return p.store.Len() }

// CanCompensate reports whether the policy has a compensating action.
func (p *Participant[P, R]) CanCompensate() bool {
	_, ok := p.policy.(Compensator[R])
	return ok
}

// Execute runs the forward action for req.
//
// Invalid requests fail before anything else. With FaultBeforeReplay the
// fault is drawn next, outside the key lock. Inside the lock a stored record
// is replayed or handed to Apply depending on OnDuplicate, the policy's
// Check runs, a FaultBeforeMutation fault is drawn, and finally the new
// record is stored. A failed call never leaves a partial record behind.
func (p *Participant[P, R]) Execute(ctx context.Context, req Request[P]) (res Result[R], err error) {
	ctx, end := p.traceAction(ctx, ActionExecute, req.OrderID)
	outcome := OutcomeError
	defer func() {
		if err != nil {
			outcome = outcomeFor(err)
		}
		ActionsTotal.WithLabelValues(p.service, ActionExecute, outcome).Inc()
		end(err)
	}()

	if err := p.validate(req); err != nil {
		return Result[R]{}, err
	}

	log := p.log(ctx, req.OrderID)

	if p.opts.FaultStage == FaultBeforeReplay && p.injectFault(ctx, log) {
		return Result[R]{}, p.faultError()
	}

	err = p.store.WithKey(req.OrderID, func(tx *KeyTx[R]) error {
		existing, found := tx.Get()
		if found && p.opts.OnDuplicate == ReplayRecord {
			res = Result[R]{OrderID: req.OrderID, Record: existing}
			outcome = OutcomeReplayed
			return nil
		}

		if c, ok := p.policy.(Checker[P]); ok {
			if err := c.Check(ctx, req); err != nil {
				return err
			}
		}

		if p.opts.FaultStage == FaultBeforeMutation && p.injectFault(ctx, log) {
			return p.faultError()
		}

		var current *R
		if found {
			current = &existing
		}
		rec, err := p.policy.Apply(ctx, req, current)
		if err != nil {
			return err
		}
		tx.Put(rec)

		res = Result[R]{OrderID: req.OrderID, Record: rec, Created: !found}
		if found {
			outcome = OutcomeUpdated
		} else {
			outcome = OutcomeCreated
		}
		return nil
	})
	if err != nil {
		return Result[R]{}, err
	}

	switch outcome {
	case OutcomeReplayed:
		log.DebugContext(ctx, "replayed existing record")
	case OutcomeUpdated:
		log.InfoContext(ctx, "record updated")
	default:
		log.InfoContext(ctx, "record created")
	}
	return res, nil
}

// Compensate undoes the forward action for orderID. An order with no record
// is reported as NOT_FOUND_OR_ALREADY_COMPENSATED and leaves the store
// untouched. Compensation is never fault injected.
func (p *Participant[P, R]) Compensate(ctx context.Context, orderID string) (view any, err error) {
	ctx, end := p.traceAction(ctx, ActionCompensate, orderID)
	outcome := OutcomeError
	defer func() {
		if err != nil {
			outcome = outcomeFor(err)
		}
		ActionsTotal.WithLabelValues(p.service, ActionCompensate, outcome).Inc()
		end(err)
	}()

	if strings.TrimSpace(orderID) == "" {
		return nil, apperrors.InvalidInput("orderId is required")
	}

	comp, ok := p.policy.(Compensator[R])
	if !ok {
		return nil, apperrors.Unsupported(fmt.Sprintf("%s has no compensating action", p.policy.Resource()))
	}

	log := p.log(ctx, orderID)

	// The callback never fails.
	_ = p.store.WithKey(orderID, func(tx *KeyTx[R]) error {
		rec, found := tx.Get()
		if !found {
			view = Outcome{OrderID: orderID, Status: StatusNotFoundOrAlreadyCompensated}
			outcome = OutcomeNothingToDo
			return nil
		}
		view = comp.Undo(ctx, orderID, rec)
		tx.Delete()
		outcome = OutcomeCompensated
		return nil
	})

	if outcome == OutcomeNothingToDo {
		log.InfoContext(ctx, "nothing to compensate")
	} else {
		log.InfoContext(ctx, "record compensated")
	}
	return view, nil
}

func (p *Participant[P, R]) validate(req Request[P]) error {
	if strings.TrimSpace(req.OrderID) == "" {
		return apperrors.InvalidInput("orderId is required")
	}
	if err := validator.Validate(req.Data); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrInvalidInput, err)
	}
	return p.policy.Validate(req)
}

func (p *Participant[P, R]) injectFault(ctx context.Context, log *slog.Logger) bool {
	if !p.opts.Faults.ShouldFail() {
		return false
	}
	InjectedFailuresTotal.WithLabelValues(p.service, p.opts.FaultStage.String()).Inc()
	log.WarnContext(ctx, "injected transient failure",
		slog.String("stage", p.opts.FaultStage.String()),
		slog.Int("status", p.opts.FailureStatus),
	)
	return true
}

func (p *Participant[P, R]) faultError() error {
	return apperrors.TransientFailure(
		fmt.Sprintf("simulated %s failure", p.policy.Resource()),
		p.opts.FailureStatus,
	)
}

func (p *Participant[P, R]) log(ctx context.Context, orderID string) *slog.Logger {
	l := logger.WithContext(ctx, p.logger)
	if logger.OrderIDFromContext(ctx) == "" {
		l = l.With(slog.String("order_id", orderID))
	}
	return l
}

func outcomeFor(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrInvalidInput):
		return OutcomeInvalid
	case errors.Is(err, apperrors.ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, apperrors.ErrTransient):
		return OutcomeTransient
	case errors.Is(err, apperrors.ErrUnsupported):
		return OutcomeUnsupported
	default:
		return OutcomeError
	}
}
