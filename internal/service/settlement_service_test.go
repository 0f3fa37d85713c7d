package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/settleup/internal/auth"
	"github.com/mmynk/settleup/internal/middleware"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/settlement"
	"github.com/mmynk/settleup/internal/storage/sqlite"
	"github.com/mmynk/settleup/pkg/api"
	"github.com/mmynk/settleup/pkg/api/apiconnect"
)

// testServer serves both services behind the real JWT interceptor.
type testServer struct {
	store   *sqlite.SQLiteStore
	server  *httptest.Server
	jwt     *auth.JWTManager
	groupID string
	ids     map[string]string
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "settleup.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ts := &testServer{
		store: store,
		jwt:   auth.NewJWTManager("test-secret", time.Hour, "settleup-test"),
		ids:   make(map[string]string),
	}

	// Carol exists but is not in the group.
	group := &models.Group{Name: "Household"}
	for _, name := range []string{"Alice", "Bob", "Carol"} {
		user := &models.User{DisplayName: name}
		require.NoError(t, store.CreateUser(ctx, user))
		ts.ids[name] = user.ID
		if name != "Carol" {
			group.Members = append(group.Members, models.Member{UserID: user.ID})
		}
	}
	require.NoError(t, store.CreateGroup(ctx, group))
	ts.groupID = group.ID

	engine := settlement.New(store)
	interceptors := connect.WithInterceptors(middleware.RequireAuth(ts.jwt))

	mux := http.NewServeMux()
	mux.Handle(apiconnect.NewSettlementServiceHandler(NewSettlementService(engine), interceptors))
	mux.Handle(apiconnect.NewLedgerServiceHandler(NewLedgerService(engine), interceptors))

	ts.server = httptest.NewServer(mux)
	t.Cleanup(ts.server.Close)
	return ts
}

func (ts *testServer) id(name string) string {
	return ts.ids[name]
}

func (ts *testServer) token(t *testing.T, name string) connect.ClientOption {
	t.Helper()
	token, err := ts.jwt.Generate(ts.id(name))
	require.NoError(t, err)
	return connect.WithInterceptors(middleware.BearerToken(token))
}

func (ts *testServer) settlementClient(t *testing.T, name string) *apiconnect.SettlementServiceClient {
	return apiconnect.NewSettlementServiceClient(http.DefaultClient, ts.server.URL, ts.token(t, name))
}

func (ts *testServer) ledgerClient(t *testing.T, name string) *apiconnect.LedgerServiceClient {
	return apiconnect.NewLedgerServiceClient(http.DefaultClient, ts.server.URL, ts.token(t, name))
}

func (ts *testServer) rule(t *testing.T, description, payer string, amount int64, day int) {
	t.Helper()
	rule := &models.RecurringRule{
		GroupID:        ts.groupID,
		Description:    description,
		DefaultAmount:  &amount,
		DayOfMonth:     day,
		IntervalMonths: 1,
		DefaultPayerID: ts.id(payer),
		SplitType:      models.SplitTypeEqual,
		IsActive:       true,
		StartDate:      models.Date(2024, time.January, 1),
		CreatedAt:      time.Date(2024, time.January, 1, 8, 0, 0, 0, time.UTC),
	}
	require.NoError(t, ts.store.CreateRule(context.Background(), rule))
}

func assertCode(t *testing.T, want connect.Code, err error) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, want, connect.CodeOf(err), "error: %v", err)
}

func TestSettlementWorkflow(t *testing.T) {
	ts := setupTestServer(t)
	ctx := context.Background()
	alice := ts.settlementClient(t, "Alice")
	bob := ts.settlementClient(t, "Bob")

	ledger := ts.ledgerClient(t, "Alice")
	for _, p := range []struct {
		payer  string
		amount int64
		date   string
	}{
		{"Alice", 3000, "2024-01-15"},
		{"Bob", 1000, "2024-01-20"},
	} {
		_, err := ledger.CreatePayment(ctx, connect.NewRequest(&api.CreatePaymentRequest{
			GroupID:     ts.groupID,
			PayerID:     ts.id(p.payer),
			Amount:      p.amount,
			Description: "groceries",
			PaymentDate: p.date,
		}))
		require.NoError(t, err)
	}

	created, err := alice.CreateSession(ctx, connect.NewRequest(&api.CreateSessionRequest{
		GroupID:     ts.groupID,
		PeriodStart: "2024-01-01",
		PeriodEnd:   "2024-01-31",
	}))
	require.NoError(t, err)
	assert.Equal(t, 2, created.Msg.EntriesCreated)
	session := created.Msg.Session
	assert.Equal(t, "draft", session.Status)
	assert.Equal(t, "2024-01-01", session.PeriodStart)
	assert.Equal(t, "2024-01-31", session.PeriodEnd)
	assert.Equal(t, ts.id("Alice"), session.CreatedBy)

	manual, err := bob.AddManualEntry(ctx, connect.NewRequest(&api.AddManualEntryRequest{
		SessionID:   session.ID,
		Description: "cleaning supplies",
		Amount:      400,
		PayerID:     ts.id("Bob"),
	}))
	require.NoError(t, err)
	assert.Equal(t, "2024-01-31", manual.Msg.Entry.PaymentDate)
	assert.Equal(t, "manual", manual.Msg.Entry.EntryType)
	assert.Equal(t, "filled", manual.Msg.Entry.Status)

	entries, err := bob.ListEntries(ctx, connect.NewRequest(&api.ListEntriesRequest{SessionID: session.ID}))
	require.NoError(t, err)
	require.Len(t, entries.Msg.Entries, 3)

	confirmed, err := bob.ConfirmSettlement(ctx, connect.NewRequest(&api.ConfirmSettlementRequest{SessionID: session.ID}))
	require.NoError(t, err)
	assert.Equal(t, 2, confirmed.Msg.PaymentsSettled)
	assert.Equal(t, "pending_payment", confirmed.Msg.Session.Status)
	assert.Equal(t, ts.id("Bob"), confirmed.Msg.Session.ConfirmedBy)
	assert.False(t, confirmed.Msg.Session.IsZeroSettlement)
	require.Len(t, confirmed.Msg.Session.NetTransfers, 1)
	assert.Equal(t, api.Transfer{
		FromID:   ts.id("Bob"),
		FromName: "Bob",
		ToID:     ts.id("Alice"),
		ToName:   "Alice",
		Amount:   800,
	}, confirmed.Msg.Session.NetTransfers[0])

	_, err = alice.ConfirmSettlement(ctx, connect.NewRequest(&api.ConfirmSettlementRequest{SessionID: session.ID}))
	assertCode(t, connect.CodeFailedPrecondition, err)

	_, err = alice.ReportPayment(ctx, connect.NewRequest(&api.ReportPaymentRequest{SessionID: session.ID}))
	assertCode(t, connect.CodePermissionDenied, err)

	_, err = alice.ConfirmReceipt(ctx, connect.NewRequest(&api.ConfirmReceiptRequest{SessionID: session.ID}))
	assertCode(t, connect.CodeFailedPrecondition, err)

	_, err = bob.ReportPayment(ctx, connect.NewRequest(&api.ReportPaymentRequest{SessionID: session.ID}))
	require.NoError(t, err)

	_, err = bob.ConfirmReceipt(ctx, connect.NewRequest(&api.ConfirmReceiptRequest{SessionID: session.ID}))
	assertCode(t, connect.CodePermissionDenied, err)

	settled, err := alice.ConfirmReceipt(ctx, connect.NewRequest(&api.ConfirmReceiptRequest{SessionID: session.ID}))
	require.NoError(t, err)
	assert.Equal(t, "settled", settled.Msg.Session.Status)
	assert.Equal(t, ts.id("Bob"), settled.Msg.Session.PaymentReportedBy)
	assert.Equal(t, ts.id("Alice"), settled.Msg.Session.SettledBy)
	assert.NotZero(t, settled.Msg.Session.SettledAt)

	// The consumed payments no longer count toward running balances.
	balances, err := ledger.GetBalances(ctx, connect.NewRequest(&api.GetBalancesRequest{GroupID: ts.groupID}))
	require.NoError(t, err)
	for _, b := range balances.Msg.Balances {
		assert.Zero(t, b.Balance, b.Name)
	}
	assert.Empty(t, balances.Msg.Transfers)

	consolidated, err := bob.SettleConsolidatedSessions(ctx, connect.NewRequest(&api.SettleConsolidatedSessionsRequest{
		SessionIDs: []string{session.ID},
	}))
	require.NoError(t, err)
	assert.Zero(t, consolidated.Msg.Settled)
}

func TestChecklistEditing(t *testing.T) {
	ts := setupTestServer(t)
	ctx := context.Background()
	alice := ts.settlementClient(t, "Alice")

	ts.rule(t, "Rent", "Alice", 2000, 1)
	ts.rule(t, "Internet", "Bob", 500, 5)

	created, err := alice.CreateSession(ctx, connect.NewRequest(&api.CreateSessionRequest{
		GroupID:     ts.groupID,
		PeriodStart: "2024-01-01",
		PeriodEnd:   "2024-01-31",
	}))
	require.NoError(t, err)
	require.Equal(t, 2, created.Msg.EntriesCreated)
	sessionID := created.Msg.Session.ID

	list, err := alice.ListEntries(ctx, connect.NewRequest(&api.ListEntriesRequest{SessionID: sessionID}))
	require.NoError(t, err)
	require.Len(t, list.Msg.Entries, 2)
	rent, internet := list.Msg.Entries[0], list.Msg.Entries[1]
	require.Equal(t, "Rent", rent.Description)
	assert.Equal(t, "pending", rent.Status)
	assert.Equal(t, "rule", rent.EntryType)
	require.NotNil(t, rent.ExpectedAmount)
	assert.Equal(t, int64(2000), *rent.ExpectedAmount)
	assert.Nil(t, rent.ActualAmount)

	_, err = alice.ConfirmSettlement(ctx, connect.NewRequest(&api.ConfirmSettlementRequest{SessionID: sessionID}))
	assertCode(t, connect.CodeFailedPrecondition, err)

	t.Run("fill rejects mismatched splits", func(t *testing.T) {
		_, err := alice.FillEntry(ctx, connect.NewRequest(&api.FillEntryRequest{
			EntryID: rent.ID,
			Amount:  2100,
			Splits:  []api.Split{{UserID: ts.id("Alice"), Amount: 100}},
		}))
		assertCode(t, connect.CodeInvalidArgument, err)
	})

	t.Run("fill and skip", func(t *testing.T) {
		filled, err := alice.FillEntry(ctx, connect.NewRequest(&api.FillEntryRequest{EntryID: rent.ID, Amount: 2100}))
		require.NoError(t, err)
		assert.Equal(t, "filled", filled.Msg.Entry.Status)
		require.NotNil(t, filled.Msg.Entry.ActualAmount)
		assert.Equal(t, int64(2100), *filled.Msg.Entry.ActualAmount)
		assert.Equal(t, ts.id("Alice"), filled.Msg.Entry.FilledBy)

		skipped, err := alice.SkipEntry(ctx, connect.NewRequest(&api.SkipEntryRequest{EntryID: internet.ID}))
		require.NoError(t, err)
		assert.Equal(t, "skipped", skipped.Msg.Entry.Status)
		assert.Nil(t, skipped.Msg.Entry.ActualAmount)
	})

	t.Run("refresh keeps decisions", func(t *testing.T) {
		refreshed, err := alice.RefreshEntries(ctx, connect.NewRequest(&api.RefreshEntriesRequest{SessionID: sessionID}))
		require.NoError(t, err)
		assert.Zero(t, refreshed.Msg.Added)

		list, err := alice.ListEntries(ctx, connect.NewRequest(&api.ListEntriesRequest{SessionID: sessionID}))
		require.NoError(t, err)
		require.Len(t, list.Msg.Entries, 2)
		assert.Equal(t, "filled", list.Msg.Entries[0].Status)
		assert.Equal(t, "skipped", list.Msg.Entries[1].Status)
	})

	t.Run("generate starts over", func(t *testing.T) {
		generated, err := alice.GenerateEntries(ctx, connect.NewRequest(&api.GenerateEntriesRequest{SessionID: sessionID}))
		require.NoError(t, err)
		assert.Equal(t, 2, generated.Msg.Created)

		list, err := alice.ListEntries(ctx, connect.NewRequest(&api.ListEntriesRequest{SessionID: sessionID}))
		require.NoError(t, err)
		for _, e := range list.Msg.Entries {
			assert.Equal(t, "pending", e.Status)
		}
	})
}

func TestZeroSettlementSettlesImmediately(t *testing.T) {
	ts := setupTestServer(t)
	ctx := context.Background()
	alice := ts.settlementClient(t, "Alice")

	created, err := alice.CreateSession(ctx, connect.NewRequest(&api.CreateSessionRequest{
		GroupID:     ts.groupID,
		PeriodStart: "2024-02-01",
		PeriodEnd:   "2024-02-29",
	}))
	require.NoError(t, err)
	sessionID := created.Msg.Session.ID

	_, err = alice.AddManualEntry(ctx, connect.NewRequest(&api.AddManualEntryRequest{
		SessionID:   sessionID,
		Description: "shared dinner",
		Amount:      1000,
		PayerID:     ts.id("Alice"),
		PaymentDate: "2024-02-14",
		Splits:      []api.Split{{UserID: ts.id("Alice"), Amount: 1000}},
	}))
	require.NoError(t, err)

	confirmed, err := alice.ConfirmSettlement(ctx, connect.NewRequest(&api.ConfirmSettlementRequest{SessionID: sessionID}))
	require.NoError(t, err)
	session := confirmed.Msg.Session
	assert.Equal(t, "settled", session.Status)
	assert.True(t, session.IsZeroSettlement)
	assert.Empty(t, session.NetTransfers)
	assert.Equal(t, ts.id("Alice"), session.SettledBy)
}

func TestSettlementServiceErrors(t *testing.T) {
	ts := setupTestServer(t)
	ctx := context.Background()
	alice := ts.settlementClient(t, "Alice")
	carol := ts.settlementClient(t, "Carol")

	created, err := alice.CreateSession(ctx, connect.NewRequest(&api.CreateSessionRequest{
		GroupID:     ts.groupID,
		PeriodStart: "2024-01-01",
		PeriodEnd:   "2024-01-31",
	}))
	require.NoError(t, err)
	sessionID := created.Msg.Session.ID

	tests := []struct {
		name string
		call func() error
		want connect.Code
	}{
		{
			name: "unparseable date",
			call: func() error {
				_, err := alice.CreateSession(ctx, connect.NewRequest(&api.CreateSessionRequest{
					GroupID: ts.groupID, PeriodStart: "01/01/2024", PeriodEnd: "2024-01-31",
				}))
				return err
			},
			want: connect.CodeInvalidArgument,
		},
		{
			name: "start after end",
			call: func() error {
				_, err := alice.CreateSession(ctx, connect.NewRequest(&api.CreateSessionRequest{
					GroupID: ts.groupID, PeriodStart: "2024-02-01", PeriodEnd: "2024-01-31",
				}))
				return err
			},
			want: connect.CodeInvalidArgument,
		},
		{
			name: "malformed group id",
			call: func() error {
				_, err := alice.CreateSession(ctx, connect.NewRequest(&api.CreateSessionRequest{
					GroupID: "household", PeriodStart: "2024-01-01", PeriodEnd: "2024-01-31",
				}))
				return err
			},
			want: connect.CodeInvalidArgument,
		},
		{
			name: "outsider creates session",
			call: func() error {
				_, err := carol.CreateSession(ctx, connect.NewRequest(&api.CreateSessionRequest{
					GroupID: ts.groupID, PeriodStart: "2024-01-01", PeriodEnd: "2024-01-31",
				}))
				return err
			},
			want: connect.CodePermissionDenied,
		},
		{
			name: "outsider reads session",
			call: func() error {
				_, err := carol.GetSession(ctx, connect.NewRequest(&api.GetSessionRequest{SessionID: sessionID}))
				return err
			},
			want: connect.CodePermissionDenied,
		},
		{
			name: "unknown session",
			call: func() error {
				_, err := alice.GetSession(ctx, connect.NewRequest(&api.GetSessionRequest{SessionID: uuid.NewString()}))
				return err
			},
			want: connect.CodeNotFound,
		},
		{
			name: "unknown entry",
			call: func() error {
				_, err := alice.SkipEntry(ctx, connect.NewRequest(&api.SkipEntryRequest{EntryID: uuid.NewString()}))
				return err
			},
			want: connect.CodeNotFound,
		},
		{
			name: "nothing to settle",
			call: func() error {
				_, err := alice.ConfirmSettlement(ctx, connect.NewRequest(&api.ConfirmSettlementRequest{SessionID: sessionID}))
				return err
			},
			want: connect.CodeFailedPrecondition,
		},
		{
			name: "consolidating a draft",
			call: func() error {
				_, err := alice.SettleConsolidatedSessions(ctx, connect.NewRequest(&api.SettleConsolidatedSessionsRequest{
					SessionIDs: []string{sessionID},
				}))
				return err
			},
			want: connect.CodeFailedPrecondition,
		},
		{
			name: "manual entry with no amount",
			call: func() error {
				_, err := alice.AddManualEntry(ctx, connect.NewRequest(&api.AddManualEntryRequest{
					SessionID: sessionID, Description: "nothing", PayerID: ts.id("Alice"),
				}))
				return err
			},
			want: connect.CodeInvalidArgument,
		},
		{
			name: "manual entry outside the period",
			call: func() error {
				_, err := alice.AddManualEntry(ctx, connect.NewRequest(&api.AddManualEntryRequest{
					SessionID: sessionID, Description: "late", Amount: 10, PayerID: ts.id("Alice"), PaymentDate: "2024-02-01",
				}))
				return err
			},
			want: connect.CodeInvalidArgument,
		},
		{
			name: "manual entry with a member listed twice",
			call: func() error {
				_, err := alice.AddManualEntry(ctx, connect.NewRequest(&api.AddManualEntryRequest{
					SessionID: sessionID, Description: "groceries", Amount: 10, PayerID: ts.id("Alice"),
					Splits: []api.Split{{UserID: ts.id("Bob"), Amount: 5}, {UserID: ts.id("Bob"), Amount: 5}},
				}))
				return err
			},
			want: connect.CodeInvalidArgument,
		},
		{
			name: "manual entry owed by an outsider",
			call: func() error {
				_, err := alice.AddManualEntry(ctx, connect.NewRequest(&api.AddManualEntryRequest{
					SessionID: sessionID, Description: "groceries", Amount: 10, PayerID: ts.id("Alice"),
					Splits: []api.Split{{UserID: ts.id("Carol"), Amount: 10}},
				}))
				return err
			},
			want: connect.CodePermissionDenied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertCode(t, tt.want, tt.call())
		})
	}

	t.Run("error carries the engine code", func(t *testing.T) {
		_, err := alice.GetSession(ctx, connect.NewRequest(&api.GetSessionRequest{SessionID: uuid.NewString()}))
		var connectErr *connect.Error
		require.True(t, errors.As(err, &connectErr))
		assert.Equal(t, "-1", connectErr.Meta().Get("Settleup-Error-Code"))
	})

	t.Run("missing token", func(t *testing.T) {
		anonymous := apiconnect.NewSettlementServiceClient(http.DefaultClient, ts.server.URL)
		_, err := anonymous.GetSession(ctx, connect.NewRequest(&api.GetSessionRequest{SessionID: sessionID}))
		assertCode(t, connect.CodeUnauthenticated, err)
	})
}
