package service

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/utafrali/SagaParticipants/services/inventory/internal/domain"
)

// StockCollector exports the ledger counters as a gauge per product.
type StockCollector struct {
	ledger *domain.StockLedger
	level  *prometheus.Desc
}

// NewStockCollector creates a collector reading ledger on every scrape.
func NewStockCollector(service string, ledger *domain.StockLedger) *StockCollector {
	return &StockCollector{
		ledger: ledger,
		level: prometheus.NewDesc(
			"inventory_stock_level",
			"Current stock counter per product",
			[]string{"product"}, prometheus.Labels{"service": service},
		),
	}
}

// Describe implements prometheus.Collector.
func (c *StockCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.level
}

// Collect implements prometheus.Collector.
func (c *StockCollector) Collect(ch chan<- prometheus.Metric) {
	for product, n := range c.ledger.Snapshot() {
		ch <- prometheus.MustNewConstMetric(c.level, prometheus.GaugeValue, float64(n), product)
	}
}
