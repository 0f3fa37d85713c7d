package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Session lifecycle
	sessionsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "settleup_sessions_created_total",
		Help: "Total number of settlement sessions opened",
	})

	sessionsConfirmedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "settleup_sessions_confirmed_total",
		Help: "Total number of confirmed settlement sessions",
	}, []string{
		"outcome", // pending_payment, zero_settlement
	})

	sessionsSettledTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "settleup_sessions_settled_total",
		Help: "Total number of sessions that reached settled",
	}, []string{
		"path", // receipt, zero, consolidated
	})

	// Entries
	entriesGeneratedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "settleup_entries_generated_total",
		Help: "Total number of settlement entries created by generation or refresh",
	}, []string{
		"mode", // generate, refresh
	})

	// Payments
	paymentsConsumedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "settleup_payments_consumed_total",
		Help: "Total number of payments tagged with a settlement",
	})

	transferredAmountTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "settleup_transferred_amount_total",
		Help: "Sum of net transfer amounts in whole currency units",
	})
)

// Session outcomes and settle paths used as label values.
const (
	OutcomePendingPayment = "pending_payment"
	OutcomeZeroSettlement = "zero_settlement"

	PathReceipt      = "receipt"
	PathZero         = "zero"
	PathConsolidated = "consolidated"
)

// RecordSessionCreated counts a newly opened session.
func RecordSessionCreated() {
	sessionsCreatedTotal.Inc()
}

// RecordSessionConfirmed counts a confirmation and the money it moves.
func RecordSessionConfirmed(outcome string, transferred int64) {
	sessionsConfirmedTotal.WithLabelValues(outcome).Inc()
	if transferred > 0 {
		transferredAmountTotal.Add(float64(transferred))
	}
}

// RecordSessionsSettled counts sessions reaching settled through path.
func RecordSessionsSettled(path string, n int) {
	if n > 0 {
		sessionsSettledTotal.WithLabelValues(path).Add(float64(n))
	}
}

// RecordEntriesGenerated counts entries created in mode generate or refresh.
func RecordEntriesGenerated(mode string, n int) {
	if n > 0 {
		entriesGeneratedTotal.WithLabelValues(mode).Add(float64(n))
	}
}

// RecordPaymentsConsumed counts payments tagged at confirmation.
func RecordPaymentsConsumed(n int) {
	if n > 0 {
		paymentsConsumedTotal.Add(float64(n))
	}
}
