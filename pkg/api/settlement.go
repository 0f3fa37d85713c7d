// Package api defines the request and response messages of the settleup
// Connect services. Messages travel as JSON; dates are "YYYY-MM-DD" strings,
// timestamps are Unix seconds and amounts are whole currency units.
package api

// Transfer is one payment instruction of a confirmed session.
type Transfer struct {
	FromID   string `json:"fromId"`
	FromName string `json:"fromName"`
	ToID     string `json:"toId"`
	ToName   string `json:"toName"`
	Amount   int64  `json:"amount"`
}

// Split is one member's share of an amount.
type Split struct {
	UserID string `json:"userId"`
	Amount int64  `json:"amount"`
}

// Session is a settlement session.
type Session struct {
	ID                string     `json:"id"`
	GroupID           string     `json:"groupId"`
	PeriodStart       string     `json:"periodStart"`
	PeriodEnd         string     `json:"periodEnd"`
	Status            string     `json:"status"`
	CreatedBy         string     `json:"createdBy"`
	CreatedAt         int64      `json:"createdAt"`
	ConfirmedBy       string     `json:"confirmedBy,omitempty"`
	ConfirmedAt       int64      `json:"confirmedAt,omitempty"`
	NetTransfers      []Transfer `json:"netTransfers"`
	IsZeroSettlement  bool       `json:"isZeroSettlement"`
	PaymentReportedBy string     `json:"paymentReportedBy,omitempty"`
	PaymentReportedAt int64      `json:"paymentReportedAt,omitempty"`
	SettledBy         string     `json:"settledBy,omitempty"`
	SettledAt         int64      `json:"settledAt,omitempty"`
}

// Entry is one line of a session's checklist.
type Entry struct {
	ID              string  `json:"id"`
	SessionID       string  `json:"sessionId"`
	RuleID          string  `json:"ruleId,omitempty"`
	SourcePaymentID string  `json:"sourcePaymentId,omitempty"`
	Description     string  `json:"description"`
	CategoryID      string  `json:"categoryId,omitempty"`
	ExpectedAmount  *int64  `json:"expectedAmount,omitempty"`
	ActualAmount    *int64  `json:"actualAmount,omitempty"`
	PayerID         string  `json:"payerId"`
	PaymentDate     string  `json:"paymentDate"`
	Status          string  `json:"status"`
	SplitType       string  `json:"splitType"`
	EntryType       string  `json:"entryType"`
	FilledBy        string  `json:"filledBy,omitempty"`
	FilledAt        int64   `json:"filledAt,omitempty"`
	Splits          []Split `json:"splits"`
}

type CreateSessionRequest struct {
	GroupID     string `json:"groupId"`
	PeriodStart string `json:"periodStart"`
	PeriodEnd   string `json:"periodEnd"`
}

type CreateSessionResponse struct {
	Session        *Session `json:"session"`
	EntriesCreated int      `json:"entriesCreated"`
}

type GetSessionRequest struct {
	SessionID string `json:"sessionId"`
}

type GetSessionResponse struct {
	Session *Session `json:"session"`
}

type ListEntriesRequest struct {
	SessionID string `json:"sessionId"`
}

type ListEntriesResponse struct {
	Entries []*Entry `json:"entries"`
}

type GenerateEntriesRequest struct {
	SessionID string `json:"sessionId"`
}

type GenerateEntriesResponse struct {
	Created int `json:"created"`
}

type RefreshEntriesRequest struct {
	SessionID string `json:"sessionId"`
}

type RefreshEntriesResponse struct {
	Added int `json:"added"`
}

type FillEntryRequest struct {
	EntryID string  `json:"entryId"`
	Amount  int64   `json:"amount"`
	Splits  []Split `json:"splits,omitempty"`
}

type FillEntryResponse struct {
	Entry *Entry `json:"entry"`
}

type SkipEntryRequest struct {
	EntryID string `json:"entryId"`
}

type SkipEntryResponse struct {
	Entry *Entry `json:"entry"`
}

type AddManualEntryRequest struct {
	SessionID   string  `json:"sessionId"`
	Description string  `json:"description"`
	CategoryID  string  `json:"categoryId,omitempty"`
	Amount      int64   `json:"amount"`
	PayerID     string  `json:"payerId"`
	PaymentDate string  `json:"paymentDate,omitempty"`
	Splits      []Split `json:"splits,omitempty"`
}

type AddManualEntryResponse struct {
	Entry *Entry `json:"entry"`
}

type ConfirmSettlementRequest struct {
	SessionID string `json:"sessionId"`
}

type ConfirmSettlementResponse struct {
	Session         *Session `json:"session"`
	PaymentsSettled int      `json:"paymentsSettled"`
}

type ReportPaymentRequest struct {
	SessionID string `json:"sessionId"`
}

type ReportPaymentResponse struct{}

type ConfirmReceiptRequest struct {
	SessionID string `json:"sessionId"`
}

type ConfirmReceiptResponse struct {
	Session *Session `json:"session"`
}

type SettleConsolidatedSessionsRequest struct {
	SessionIDs []string `json:"sessionIds"`
}

type SettleConsolidatedSessionsResponse struct {
	Settled int `json:"settled"`
}
