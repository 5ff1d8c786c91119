package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Ledger metrics
	ExpensesPosted  prometheus.Counter
	ExpensesUpdated prometheus.Counter
	ExpensesDeleted prometheus.Counter
	ExpenseAmount   prometheus.Histogram

	// Settlement metrics
	SettlementsRecorded prometheus.Counter
	SettlementAmount    prometheus.Histogram

	// Budget metrics
	BudgetAlerts *prometheus.CounterVec

	// Outbox metrics
	EventsPublished    *prometheus.CounterVec
	EventPublishErrors prometheus.Counter
	EventsPruned       prometheus.Counter

	// Balance metrics
	BalanceCacheHits   prometheus.Counter
	BalanceCacheMisses prometheus.Counter
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		ExpensesPosted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tripledger_expenses_posted_total",
			Help: "Total number of expenses posted",
		}),
		ExpensesUpdated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tripledger_expenses_updated_total",
			Help: "Total number of expense edits",
		}),
		ExpensesDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tripledger_expenses_deleted_total",
			Help: "Total number of expenses deleted",
		}),
		ExpenseAmount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "tripledger_expense_amount",
			Help:    "Expense amounts in the trip's base currency",
			Buckets: []float64{1, 10, 50, 100, 500, 1000, 5000, 10000},
		}),
		SettlementsRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tripledger_settlements_recorded_total",
			Help: "Total number of settlements recorded",
		}),
		SettlementAmount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "tripledger_settlement_amount",
			Help:    "Settlement amounts in the trip's base currency",
			Buckets: []float64{1, 10, 50, 100, 500, 1000, 5000, 10000},
		}),
		BudgetAlerts: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tripledger_budget_alerts_total",
				Help: "Total number of budget threshold alerts",
			},
			[]string{"level"},
		),
		EventsPublished: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tripledger_events_published_total",
				Help: "Total number of outbox events published",
			},
			[]string{"event_type"},
		),
		EventPublishErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tripledger_event_publish_errors_total",
			Help: "Total number of outbox publish failures",
		}),
		EventsPruned: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tripledger_events_pruned_total",
			Help: "Total number of published outbox events pruned",
		}),
		BalanceCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tripledger_balance_cache_hits_total",
			Help: "Total number of balance reads served from cache",
		}),
		BalanceCacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tripledger_balance_cache_misses_total",
			Help: "Total number of balance reads computed from storage",
		}),
	}
}
