package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/settleup/pkg/api"
)

func TestCreatePayment(t *testing.T) {
	ts := setupTestServer(t)
	ctx := context.Background()
	ledger := ts.ledgerClient(t, "Alice")
	alice, bob := ts.id("Alice"), ts.id("Bob")

	t.Run("equal split stores no explicit shares", func(t *testing.T) {
		resp, err := ledger.CreatePayment(ctx, connect.NewRequest(&api.CreatePaymentRequest{
			GroupID:     ts.groupID,
			PayerID:     alice,
			Amount:      1001,
			Description: "Electricity",
			PaymentDate: "2024-01-10",
		}))
		require.NoError(t, err)

		p := resp.Msg.Payment
		assert.NotEmpty(t, p.ID)
		assert.Equal(t, "2024-01-10", p.PaymentDate)
		assert.Empty(t, p.Splits)
		assert.Empty(t, p.SettlementID)
		assert.Equal(t, []api.Split{{UserID: alice, Amount: 500}, {UserID: bob, Amount: 500}}, resp.Msg.Shares)
	})

	t.Run("custom split", func(t *testing.T) {
		resp, err := ledger.CreatePayment(ctx, connect.NewRequest(&api.CreatePaymentRequest{
			GroupID:       ts.groupID,
			PayerID:       alice,
			Amount:        900,
			Description:   "Groceries",
			PaymentDate:   "2024-01-12",
			SplitMode:     api.SplitModeCustom,
			CustomAmounts: map[string]string{alice: "300", bob: " 600 "},
		}))
		require.NoError(t, err)
		assert.ElementsMatch(t, []api.Split{{UserID: alice, Amount: 300}, {UserID: bob, Amount: 600}}, resp.Msg.Payment.Splits)
	})

	t.Run("custom split must add up", func(t *testing.T) {
		_, err := ledger.CreatePayment(ctx, connect.NewRequest(&api.CreatePaymentRequest{
			GroupID:       ts.groupID,
			PayerID:       alice,
			Amount:        900,
			PaymentDate:   "2024-01-12",
			SplitMode:     api.SplitModeCustom,
			CustomAmounts: map[string]string{alice: "300", bob: "abc"},
		}))
		assertCode(t, connect.CodeInvalidArgument, err)
	})

	t.Run("proxy split", func(t *testing.T) {
		resp, err := ledger.CreatePayment(ctx, connect.NewRequest(&api.CreatePaymentRequest{
			GroupID:       ts.groupID,
			PayerID:       alice,
			Amount:        600,
			Description:   "Bob's train ticket",
			PaymentDate:   "2024-01-15",
			SplitMode:     api.SplitModeProxy,
			BeneficiaryID: bob,
		}))
		require.NoError(t, err)
		assert.Equal(t, []api.Split{{UserID: bob, Amount: 600}}, resp.Msg.Payment.Splits)
	})

	t.Run("proxy beneficiary must be a member", func(t *testing.T) {
		_, err := ledger.CreatePayment(ctx, connect.NewRequest(&api.CreatePaymentRequest{
			GroupID:       ts.groupID,
			PayerID:       alice,
			Amount:        600,
			PaymentDate:   "2024-01-15",
			SplitMode:     api.SplitModeProxy,
			BeneficiaryID: ts.id("Carol"),
		}))
		assertCode(t, connect.CodeInvalidArgument, err)
	})

	tests := []struct {
		name string
		req  *api.CreatePaymentRequest
		want connect.Code
	}{
		{
			name: "unknown split mode",
			req:  &api.CreatePaymentRequest{GroupID: ts.groupID, PayerID: alice, Amount: 10, PaymentDate: "2024-01-01", SplitMode: "shares"},
			want: connect.CodeInvalidArgument,
		},
		{
			name: "zero amount",
			req:  &api.CreatePaymentRequest{GroupID: ts.groupID, PayerID: alice, Amount: 0, PaymentDate: "2024-01-01"},
			want: connect.CodeInvalidArgument,
		},
		{
			name: "missing date",
			req:  &api.CreatePaymentRequest{GroupID: ts.groupID, PayerID: alice, Amount: 10},
			want: connect.CodeInvalidArgument,
		},
		{
			name: "payer outside the group",
			req:  &api.CreatePaymentRequest{GroupID: ts.groupID, PayerID: ts.id("Carol"), Amount: 10, PaymentDate: "2024-01-01"},
			want: connect.CodePermissionDenied,
		},
		{
			name: "unknown group",
			req:  &api.CreatePaymentRequest{GroupID: uuid.NewString(), PayerID: alice, Amount: 10, PaymentDate: "2024-01-01"},
			want: connect.CodePermissionDenied,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ledger.CreatePayment(ctx, connect.NewRequest(tt.req))
			assertCode(t, tt.want, err)
		})
	}
}

func TestBalances(t *testing.T) {
	ts := setupTestServer(t)
	ctx := context.Background()
	ledger := ts.ledgerClient(t, "Bob")
	alice, bob := ts.id("Alice"), ts.id("Bob")

	_, err := ledger.CreatePayment(ctx, connect.NewRequest(&api.CreatePaymentRequest{
		GroupID: ts.groupID, PayerID: alice, Amount: 3000, Description: "Rent", PaymentDate: "2024-01-01",
	}))
	require.NoError(t, err)
	_, err = ledger.CreatePayment(ctx, connect.NewRequest(&api.CreatePaymentRequest{
		GroupID: ts.groupID, PayerID: alice, Amount: 600, Description: "Ticket", PaymentDate: "2024-01-02",
		SplitMode: api.SplitModeProxy, BeneficiaryID: bob,
	}))
	require.NoError(t, err)

	resp, err := ledger.GetBalances(ctx, connect.NewRequest(&api.GetBalancesRequest{GroupID: ts.groupID}))
	require.NoError(t, err)
	assert.Equal(t, []api.Balance{
		{UserID: alice, Name: "Alice", TotalPaid: 3600, TotalOwed: 1500, Balance: 2100},
		{UserID: bob, Name: "Bob", TotalPaid: 0, TotalOwed: 2100, Balance: -2100},
	}, resp.Msg.Balances)
	assert.Equal(t, []api.Transfer{
		{FromID: bob, FromName: "Bob", ToID: alice, ToName: "Alice", Amount: 2100},
	}, resp.Msg.Transfers)
	assert.Zero(t, resp.Msg.UnsettledRemainder)

	carol := ts.ledgerClient(t, "Carol")
	_, err = carol.GetBalances(ctx, connect.NewRequest(&api.GetBalancesRequest{GroupID: ts.groupID}))
	assertCode(t, connect.CodePermissionDenied, err)
}

func TestDeletePayment(t *testing.T) {
	ts := setupTestServer(t)
	ctx := context.Background()
	ledger := ts.ledgerClient(t, "Alice")

	created, err := ledger.CreatePayment(ctx, connect.NewRequest(&api.CreatePaymentRequest{
		GroupID: ts.groupID, PayerID: ts.id("Alice"), Amount: 1200, Description: "Water", PaymentDate: "2024-01-05",
	}))
	require.NoError(t, err)
	paymentID := created.Msg.Payment.ID

	_, err = ts.ledgerClient(t, "Carol").DeletePayment(ctx, connect.NewRequest(&api.DeletePaymentRequest{PaymentID: paymentID}))
	assertCode(t, connect.CodePermissionDenied, err)

	_, err = ledger.DeletePayment(ctx, connect.NewRequest(&api.DeletePaymentRequest{PaymentID: paymentID}))
	require.NoError(t, err)

	_, err = ledger.DeletePayment(ctx, connect.NewRequest(&api.DeletePaymentRequest{PaymentID: paymentID}))
	assertCode(t, connect.CodeNotFound, err)

	t.Run("settled payments are immutable", func(t *testing.T) {
		created, err := ledger.CreatePayment(ctx, connect.NewRequest(&api.CreatePaymentRequest{
			GroupID: ts.groupID, PayerID: ts.id("Alice"), Amount: 1000, Description: "Gas", PaymentDate: "2024-01-06",
		}))
		require.NoError(t, err)

		sessions := ts.settlementClient(t, "Alice")
		session, err := sessions.CreateSession(ctx, connect.NewRequest(&api.CreateSessionRequest{
			GroupID: ts.groupID, PeriodStart: "2024-01-01", PeriodEnd: "2024-01-31",
		}))
		require.NoError(t, err)
		_, err = sessions.ConfirmSettlement(ctx, connect.NewRequest(&api.ConfirmSettlementRequest{SessionID: session.Msg.Session.ID}))
		require.NoError(t, err)

		_, err = ledger.DeletePayment(ctx, connect.NewRequest(&api.DeletePaymentRequest{PaymentID: created.Msg.Payment.ID}))
		assertCode(t, connect.CodeFailedPrecondition, err)
	})
}
