// Package service implements the Connect RPC handlers on top of the ledger
// calculators and the storage layer.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/swisscoin/internal/calculator"
	"github.com/mmynk/swisscoin/internal/metrics"
	"github.com/mmynk/swisscoin/internal/middleware"
	"github.com/mmynk/swisscoin/internal/money"
	"github.com/mmynk/swisscoin/internal/storage"
)

// ValidationKindHeader carries the calculator.ErrorKind of a rejected request.
const ValidationKindHeader = "Validation-Kind"

// Options are the ledger settings shared by all services.
type Options struct {
	Currency money.Currency
	Policy   calculator.SettlementPolicy
	// Location decides calendar days in conversation feeds.
	Location *time.Location
	// Metrics may be nil.
	Metrics *metrics.Metrics
}

// DefaultOptions returns CHF, reject and UTC.
func DefaultOptions() Options {
	return Options{
		Currency: money.CHF,
		Policy:   calculator.SettlementReject,
		Location: time.UTC,
	}
}

// checkAmount rejects an entered amount that has digits below the minor unit
// of the ledger currency or is too large to book. Amounts are never rounded
// silently.
func (o Options) checkAmount(what string, amount decimal.Decimal) error {
	var detail string
	switch {
	case !o.Currency.IsRounded(amount):
		detail = fmt.Sprintf("%s %s has more decimals than %s allows", what, amount, o.Currency.Code)
	case !o.Currency.InRange(amount):
		detail = fmt.Sprintf("%s %s is out of range", what, amount)
	default:
		return nil
	}
	err := &calculator.ValidationError{Kind: calculator.KindInvalidInput, Detail: detail}
	o.Metrics.ObserveValidation(err)
	return err
}

// currentParticipant returns the authenticated participant or an
// Unauthenticated error. No fallback identity is ever used.
func currentParticipant(ctx context.Context) (string, error) {
	id := middleware.GetParticipantID(ctx)
	if id == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, calculator.ErrNoCurrentParticipant)
	}
	return id, nil
}

// toConnectError maps domain and storage errors onto Connect codes.
func toConnectError(err error) error {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return err
	}

	var ve *calculator.ValidationError
	if errors.As(err, &ve) {
		code := connect.CodeInvalidArgument
		if ve.Kind == calculator.KindSettlementExceedsBalance {
			code = connect.CodeFailedPrecondition
		}
		connectErr = connect.NewError(code, err)
		connectErr.Meta().Set(ValidationKindHeader, string(ve.Kind))
		return connectErr
	}

	switch {
	case errors.Is(err, calculator.ErrNoCurrentParticipant):
		return connect.NewError(connect.CodeUnauthenticated, err)
	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, storage.ErrIntegrity):
		return connect.NewError(connect.CodeDataLoss, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

func invalidArgument(format string, args ...any) error {
	return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf(format, args...))
}

func permissionDenied(format string, args ...any) error {
	return connect.NewError(connect.CodePermissionDenied, fmt.Errorf(format, args...))
}

// fail logs err and returns it as a Connect error.
func fail(op string, err error, attrs ...any) error {
	var ve *calculator.ValidationError
	if errors.As(err, &ve) || errors.Is(err, storage.ErrNotFound) {
		slog.Warn(op+" rejected", append(attrs, "error", err)...)
	} else {
		slog.Error(op+" failed", append(attrs, "error", err)...)
	}
	return toConnectError(err)
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// findNew returns the ids that are not already in existing.
func findNew(ids, existing []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, m := range existing {
		seen[m] = true
	}
	var fresh []string
	for _, id := range ids {
		if !seen[id] {
			fresh = append(fresh, id)
			seen[id] = true
		}
	}
	return fresh
}
