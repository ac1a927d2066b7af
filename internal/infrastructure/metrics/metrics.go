package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Purchase order metrics
	OrdersReceived  prometheus.Counter
	DuplicateOrders prometheus.Counter

	// Sale metrics
	SalesRecorded prometheus.Counter
	SalesPaid     prometheus.Counter
	SaleGross     prometheus.Histogram
	StockLevel    *prometheus.GaugeVec

	// Payment metrics
	PaymentsApplied *prometheus.CounterVec

	// Movement metrics
	TransfersCreated prometheus.Counter
	ExpensesRecorded prometheus.Counter
	MovementsVoided  prometheus.Counter

	// Account metrics
	AccountsCreated prometheus.Counter
	AccountBalance  *prometheus.GaugeVec

	// Reconciliation metrics
	ReconciliationRuns   prometheus.Counter
	ReconciliationDrifts prometheus.Counter
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		OrdersReceived: promauto.NewCounter(prometheus.CounterOpts{
			Name: "flowdistributor_orders_received_total",
			Help: "Total number of purchase orders received",
		}),
		DuplicateOrders: promauto.NewCounter(prometheus.CounterOpts{
			Name: "flowdistributor_orders_duplicate_total",
			Help: "Total number of duplicate purchase order submissions rejected",
		}),

		SalesRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "flowdistributor_sales_recorded_total",
			Help: "Total number of sales recorded",
		}),
		SalesPaid: promauto.NewCounter(prometheus.CounterOpts{
			Name: "flowdistributor_sales_paid_total",
			Help: "Total number of sales fully paid",
		}),
		SaleGross: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "flowdistributor_sale_gross",
			Help:    "Gross sale amounts",
			Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
		}),
		StockLevel: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "flowdistributor_stock_level",
				Help: "Current stock level per product",
			},
			[]string{"product_id"},
		),

		PaymentsApplied: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flowdistributor_payments_applied_total",
				Help: "Total payments applied by party type",
			},
			[]string{"party"},
		),

		TransfersCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "flowdistributor_transfers_created_total",
			Help: "Total number of transfers between accounts",
		}),
		ExpensesRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "flowdistributor_expenses_recorded_total",
			Help: "Total number of expense movements recorded",
		}),
		MovementsVoided: promauto.NewCounter(prometheus.CounterOpts{
			Name: "flowdistributor_movements_voided_total",
			Help: "Total number of movements voided by compensation",
		}),

		AccountsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "flowdistributor_accounts_created_total",
			Help: "Total number of accounts created",
		}),
		AccountBalance: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "flowdistributor_account_balance",
				Help: "Current account balance",
			},
			[]string{"account_id", "currency"},
		),

		ReconciliationRuns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "flowdistributor_reconciliation_runs_total",
			Help: "Total number of reconciliation runs",
		}),
		ReconciliationDrifts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "flowdistributor_reconciliation_drifts_total",
			Help: "Total number of accounts found with balance drift",
		}),
	}
}
