package api

// Split modes accepted by CreatePayment.
const (
	SplitModeEqual  = "equal"
	SplitModeCustom = "custom"
	SplitModeProxy  = "proxy"
)

// Payment is a logged shared expense.
type Payment struct {
	ID           string  `json:"id"`
	GroupID      string  `json:"groupId"`
	PayerID      string  `json:"payerId"`
	Amount       int64   `json:"amount"`
	Description  string  `json:"description"`
	CategoryID   string  `json:"categoryId,omitempty"`
	PaymentDate  string  `json:"paymentDate"`
	SettlementID string  `json:"settlementId,omitempty"`
	Splits       []Split `json:"splits"`
	CreatedAt    int64   `json:"createdAt"`
}

// Balance is a member's net position over unsettled payments.
// Positive means the member is owed money.
type Balance struct {
	UserID    string `json:"userId"`
	Name      string `json:"name"`
	TotalPaid int64  `json:"totalPaid"`
	TotalOwed int64  `json:"totalOwed"`
	Balance   int64  `json:"balance"`
}

type CreatePaymentRequest struct {
	GroupID     string `json:"groupId"`
	PayerID     string `json:"payerId"`
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
	CategoryID  string `json:"categoryId,omitempty"`
	PaymentDate string `json:"paymentDate"`

	// SplitMode is equal (default), custom or proxy.
	SplitMode string `json:"splitMode,omitempty"`

	// CustomAmounts maps member id to a raw amount, for custom mode.
	CustomAmounts map[string]string `json:"customAmounts,omitempty"`

	// BeneficiaryID is the member the payer paid for, for proxy mode.
	BeneficiaryID string `json:"beneficiaryId,omitempty"`
}

type CreatePaymentResponse struct {
	Payment *Payment `json:"payment"`

	// Shares are the per-member amounts computed for the chosen split mode.
	// Equal shares are floored; the remainder is absorbed when balances are
	// aggregated.
	Shares []Split `json:"shares"`
}

type DeletePaymentRequest struct {
	PaymentID string `json:"paymentId"`
}

type DeletePaymentResponse struct{}

type GetBalancesRequest struct {
	GroupID string `json:"groupId"`
}

type GetBalancesResponse struct {
	Balances           []Balance  `json:"balances"`
	Transfers          []Transfer `json:"transfers"`
	UnsettledRemainder int64      `json:"unsettledRemainder"`
}
