package service

import (
	"context"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/internal/settlement"
	"github.com/mmynk/settleup/pkg/api"
)

// SettlementService implements the Connect SettlementService on top of the
// settlement engine. It validates identifiers and dates, resolves the caller
// and maps engine errors to Connect codes.
type SettlementService struct {
	engine *settlement.Engine
}

// NewSettlementService creates a new SettlementService.
func NewSettlementService(engine *settlement.Engine) *SettlementService {
	return &SettlementService{engine: engine}
}

// CreateSession opens a draft session and generates its checklist.
func (s *SettlementService) CreateSession(ctx context.Context, req *connect.Request[api.CreateSessionRequest]) (*connect.Response[api.CreateSessionResponse], error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireID("group_id", req.Msg.GroupID); err != nil {
		return nil, err
	}
	start, err := parseDate("period_start", req.Msg.PeriodStart)
	if err != nil {
		return nil, err
	}
	end, err := parseDate("period_end", req.Msg.PeriodEnd)
	if err != nil {
		return nil, err
	}

	session, created, err := s.engine.CreateSession(ctx, req.Msg.GroupID, userID, start, end)
	if err != nil {
		return nil, connectError("CreateSession", err)
	}

	return connect.NewResponse(&api.CreateSessionResponse{
		Session:        toAPISession(session),
		EntriesCreated: created,
	}), nil
}

func (s *SettlementService) GetSession(ctx context.Context, req *connect.Request[api.GetSessionRequest]) (*connect.Response[api.GetSessionResponse], error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireID("session_id", req.Msg.SessionID); err != nil {
		return nil, err
	}

	session, err := s.engine.GetSession(ctx, req.Msg.SessionID, userID)
	if err != nil {
		return nil, connectError("GetSession", err)
	}
	return connect.NewResponse(&api.GetSessionResponse{Session: toAPISession(session)}), nil
}

func (s *SettlementService) ListEntries(ctx context.Context, req *connect.Request[api.ListEntriesRequest]) (*connect.Response[api.ListEntriesResponse], error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireID("session_id", req.Msg.SessionID); err != nil {
		return nil, err
	}

	entries, err := s.engine.ListEntries(ctx, req.Msg.SessionID, userID)
	if err != nil {
		return nil, connectError("ListEntries", err)
	}

	out := make([]*api.Entry, 0, len(entries))
	for i := range entries {
		out = append(out, toAPIEntry(&entries[i]))
	}
	return connect.NewResponse(&api.ListEntriesResponse{Entries: out}), nil
}

// GenerateEntries rebuilds a draft's checklist from scratch, discarding any
// decisions already made on it.
func (s *SettlementService) GenerateEntries(ctx context.Context, req *connect.Request[api.GenerateEntriesRequest]) (*connect.Response[api.GenerateEntriesResponse], error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireID("session_id", req.Msg.SessionID); err != nil {
		return nil, err
	}

	created, err := s.engine.GenerateEntries(ctx, req.Msg.SessionID, userID)
	if err != nil {
		return nil, connectError("GenerateEntries", err)
	}
	return connect.NewResponse(&api.GenerateEntriesResponse{Created: created}), nil
}

// RefreshEntries reconciles a draft's checklist with the current rules and
// payments, keeping filled and skipped entries.
func (s *SettlementService) RefreshEntries(ctx context.Context, req *connect.Request[api.RefreshEntriesRequest]) (*connect.Response[api.RefreshEntriesResponse], error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireID("session_id", req.Msg.SessionID); err != nil {
		return nil, err
	}

	added, err := s.engine.RefreshEntries(ctx, req.Msg.SessionID, userID)
	if err != nil {
		return nil, connectError("RefreshEntries", err)
	}
	return connect.NewResponse(&api.RefreshEntriesResponse{Added: added}), nil
}

func (s *SettlementService) FillEntry(ctx context.Context, req *connect.Request[api.FillEntryRequest]) (*connect.Response[api.FillEntryResponse], error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireID("entry_id", req.Msg.EntryID); err != nil {
		return nil, err
	}

	entry, err := s.engine.FillEntry(ctx, req.Msg.EntryID, userID, req.Msg.Amount, fromAPISplits(req.Msg.Splits))
	if err != nil {
		return nil, connectError("FillEntry", err)
	}
	return connect.NewResponse(&api.FillEntryResponse{Entry: toAPIEntry(entry)}), nil
}

func (s *SettlementService) SkipEntry(ctx context.Context, req *connect.Request[api.SkipEntryRequest]) (*connect.Response[api.SkipEntryResponse], error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireID("entry_id", req.Msg.EntryID); err != nil {
		return nil, err
	}

	entry, err := s.engine.SkipEntry(ctx, req.Msg.EntryID, userID)
	if err != nil {
		return nil, connectError("SkipEntry", err)
	}
	return connect.NewResponse(&api.SkipEntryResponse{Entry: toAPIEntry(entry)}), nil
}

// AddManualEntry adds a one-off filled charge to a draft. An empty payment
// date means the last day of the period.
func (s *SettlementService) AddManualEntry(ctx context.Context, req *connect.Request[api.AddManualEntryRequest]) (*connect.Response[api.AddManualEntryResponse], error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireID("session_id", req.Msg.SessionID); err != nil {
		return nil, err
	}
	if err := requireID("payer_id", req.Msg.PayerID); err != nil {
		return nil, err
	}

	manual := settlement.ManualEntry{
		Description: req.Msg.Description,
		CategoryID:  optional(req.Msg.CategoryID),
		Amount:      req.Msg.Amount,
		PayerID:     req.Msg.PayerID,
		Splits:      fromAPISplits(req.Msg.Splits),
	}
	if req.Msg.PaymentDate != "" {
		if manual.PaymentDate, err = parseDate("payment_date", req.Msg.PaymentDate); err != nil {
			return nil, err
		}
	}

	entry, err := s.engine.AddManualEntry(ctx, req.Msg.SessionID, userID, manual)
	if err != nil {
		return nil, connectError("AddManualEntry", err)
	}
	return connect.NewResponse(&api.AddManualEntryResponse{Entry: toAPIEntry(entry)}), nil
}

// ConfirmSettlement computes the session's net transfers and closes the draft.
func (s *SettlementService) ConfirmSettlement(ctx context.Context, req *connect.Request[api.ConfirmSettlementRequest]) (*connect.Response[api.ConfirmSettlementResponse], error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireID("session_id", req.Msg.SessionID); err != nil {
		return nil, err
	}

	tagged, err := s.engine.Confirm(ctx, req.Msg.SessionID, userID)
	if err != nil {
		return nil, connectError("ConfirmSettlement", err)
	}
	session, err := s.engine.GetSession(ctx, req.Msg.SessionID, userID)
	if err != nil {
		return nil, connectError("ConfirmSettlement", err)
	}

	return connect.NewResponse(&api.ConfirmSettlementResponse{
		Session:         toAPISession(session),
		PaymentsSettled: tagged,
	}), nil
}

func (s *SettlementService) ReportPayment(ctx context.Context, req *connect.Request[api.ReportPaymentRequest]) (*connect.Response[api.ReportPaymentResponse], error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireID("session_id", req.Msg.SessionID); err != nil {
		return nil, err
	}

	if err := s.engine.ReportPayment(ctx, req.Msg.SessionID, userID); err != nil {
		return nil, connectError("ReportPayment", err)
	}
	return connect.NewResponse(&api.ReportPaymentResponse{}), nil
}

func (s *SettlementService) ConfirmReceipt(ctx context.Context, req *connect.Request[api.ConfirmReceiptRequest]) (*connect.Response[api.ConfirmReceiptResponse], error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireID("session_id", req.Msg.SessionID); err != nil {
		return nil, err
	}

	session, err := s.engine.ConfirmReceipt(ctx, req.Msg.SessionID, userID)
	if err != nil {
		return nil, connectError("ConfirmReceipt", err)
	}
	return connect.NewResponse(&api.ConfirmReceiptResponse{Session: toAPISession(session)}), nil
}

// SettleConsolidatedSessions settles several pending sessions at once after
// their transfers were netted together.
func (s *SettlementService) SettleConsolidatedSessions(ctx context.Context, req *connect.Request[api.SettleConsolidatedSessionsRequest]) (*connect.Response[api.SettleConsolidatedSessionsResponse], error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	for _, id := range req.Msg.SessionIDs {
		if err := requireID("session_ids", id); err != nil {
			return nil, err
		}
	}

	settled, err := s.engine.SettleConsolidatedSessions(ctx, req.Msg.SessionIDs, userID)
	if err != nil {
		return nil, connectError("SettleConsolidatedSessions", err)
	}
	return connect.NewResponse(&api.SettleConsolidatedSessionsResponse{Settled: settled}), nil
}
