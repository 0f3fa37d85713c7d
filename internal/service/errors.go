package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"connectrpc.com/connect"
	"github.com/google/uuid"

	"github.com/mmynk/settleup/internal/middleware"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/settlement"
)

var errUnauthenticated = errors.New("caller identity missing")

// connectError maps engine errors to Connect codes. Anything that is not a
// known precondition is logged and reported as internal.
func connectError(op string, err error) error {
	var code connect.Code
	switch {
	case errors.Is(err, settlement.ErrSessionNotFound),
		errors.Is(err, settlement.ErrEntryNotFound),
		errors.Is(err, settlement.ErrPaymentNotFound):
		code = connect.CodeNotFound
	case errors.Is(err, settlement.ErrNotMember),
		errors.Is(err, settlement.ErrNotPayer),
		errors.Is(err, settlement.ErrNotRecipient):
		code = connect.CodePermissionDenied
	case errors.Is(err, settlement.ErrInvalidStatus),
		errors.Is(err, settlement.ErrNotReported),
		errors.Is(err, settlement.ErrNothingToSettle),
		errors.Is(err, settlement.ErrPaymentSettled):
		code = connect.CodeFailedPrecondition
	case errors.Is(err, settlement.ErrInvalidPeriod),
		errors.Is(err, settlement.ErrSplitMismatch),
		errors.Is(err, settlement.ErrInvalidAmount),
		errors.Is(err, settlement.ErrDuplicateSplit):
		code = connect.CodeInvalidArgument
	default:
		slog.Error(op+" failed", "error", err)
		return connect.NewError(connect.CodeInternal, fmt.Errorf("%s failed", op))
	}

	cerr := connect.NewError(code, err)
	cerr.Meta().Set("Settleup-Error-Code", fmt.Sprint(settlement.Code(err)))
	return cerr
}

// caller returns the authenticated user ID.
func caller(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, errUnauthenticated)
	}
	return userID, nil
}

// requireID rejects values that are not UUIDs.
func requireID(field, value string) error {
	if _, err := uuid.Parse(value); err != nil {
		return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("%s must be a UUID, got %q", field, value))
	}
	return nil
}

// parseDate parses a "YYYY-MM-DD" field.
func parseDate(field, value string) (time.Time, error) {
	t, err := models.ParseDate(value)
	if err != nil {
		return time.Time{}, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("%s must be YYYY-MM-DD, got %q", field, value))
	}
	return t, nil
}
