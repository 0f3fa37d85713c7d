package service

import (
	"context"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"
	"github.com/google/uuid"

	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/settlement"
	"github.com/mmynk/settleup/pkg/api"
)

// LedgerService implements the Connect LedgerService: logging payments and
// reading the group's running balances.
type LedgerService struct {
	engine *settlement.Engine
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(engine *settlement.Engine) *LedgerService {
	return &LedgerService{engine: engine}
}

// CreatePayment records a payment. Shares are computed for the requested
// split mode and checked against the amount before anything is written.
func (s *LedgerService) CreatePayment(ctx context.Context, req *connect.Request[api.CreatePaymentRequest]) (*connect.Response[api.CreatePaymentResponse], error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	msg := req.Msg
	if err := requireID("group_id", msg.GroupID); err != nil {
		return nil, err
	}
	if err := requireID("payer_id", msg.PayerID); err != nil {
		return nil, err
	}
	date, err := parseDate("payment_date", msg.PaymentDate)
	if err != nil {
		return nil, err
	}
	if msg.Amount <= 0 {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("amount must be positive, got %d", msg.Amount))
	}

	members, err := s.engine.Members(ctx, msg.GroupID, userID)
	if err != nil {
		return nil, connectError("CreatePayment", err)
	}
	memberIDs := make([]string, len(members))
	for i, m := range members {
		memberIDs[i] = m.UserID
	}

	paymentID := uuid.New().String()
	payment := &models.Payment{
		ID:          paymentID,
		GroupID:     msg.GroupID,
		PayerID:     msg.PayerID,
		Amount:      msg.Amount,
		Description: msg.Description,
		CategoryID:  optional(msg.CategoryID),
		PaymentDate: date,
	}

	var shares []calculator.SplitRecord
	switch msg.SplitMode {
	case "", api.SplitModeEqual:
		// Equal payments are pooled at aggregation time; no explicit splits.
		shares = calculator.EqualSplit(paymentID, msg.Amount, memberIDs)
	case api.SplitModeCustom:
		shares = calculator.CustomSplits(paymentID, msg.CustomAmounts)
		if err := calculator.ValidateSplitTotal(shares, msg.Amount); err != nil {
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		}
		payment.Splits = paymentSplits(shares)
	case api.SplitModeProxy:
		shares = calculator.ProxySplit(paymentID, msg.Amount, msg.PayerID, msg.BeneficiaryID, memberIDs)
		if len(shares) == 0 {
			return nil, connect.NewError(connect.CodeInvalidArgument,
				fmt.Errorf("beneficiary %q is not a member of the group", msg.BeneficiaryID))
		}
		payment.Splits = paymentSplits(shares)
	default:
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("unknown split mode %q", msg.SplitMode))
	}

	if err := s.engine.RecordPayment(ctx, userID, payment); err != nil {
		return nil, connectError("CreatePayment", err)
	}

	slog.Debug("Payment shares", "payment_id", paymentID, "mode", msg.SplitMode, "shares", len(shares))
	return connect.NewResponse(&api.CreatePaymentResponse{
		Payment: toAPIPayment(payment),
		Shares:  toAPIShares(shares),
	}), nil
}

// DeletePayment removes a payment that no settlement has consumed yet.
func (s *LedgerService) DeletePayment(ctx context.Context, req *connect.Request[api.DeletePaymentRequest]) (*connect.Response[api.DeletePaymentResponse], error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireID("payment_id", req.Msg.PaymentID); err != nil {
		return nil, err
	}

	if err := s.engine.DeletePayment(ctx, req.Msg.PaymentID, userID); err != nil {
		return nil, connectError("DeletePayment", err)
	}
	return connect.NewResponse(&api.DeletePaymentResponse{}), nil
}

// GetBalances returns each member's balance over the group's unsettled
// payments and the transfers that would clear them.
func (s *LedgerService) GetBalances(ctx context.Context, req *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireID("group_id", req.Msg.GroupID); err != nil {
		return nil, err
	}

	balances, plan, err := s.engine.Balances(ctx, req.Msg.GroupID, userID)
	if err != nil {
		return nil, connectError("GetBalances", err)
	}

	return connect.NewResponse(&api.GetBalancesResponse{
		Balances:           toAPIBalances(balances),
		Transfers:          toAPITransfers(plan.Transfers),
		UnsettledRemainder: plan.UnsettledRemainder,
	}), nil
}

func paymentSplits(records []calculator.SplitRecord) []models.PaymentSplit {
	splits := make([]models.PaymentSplit, 0, len(records))
	for _, r := range records {
		splits = append(splits, models.PaymentSplit{UserID: r.UserID, Amount: r.Amount})
	}
	return splits
}

