package calculator

import (
	"errors"
	"fmt"
)

// ErrorKind names the validation check that rejected an input.
// The string values are stable and safe to expose to clients.
type ErrorKind string

const (
	KindInvalidParticipantSet    ErrorKind = "invalid_participant_set"
	KindReconciliationFailure    ErrorKind = "reconciliation_failure"
	KindNegativeShare            ErrorKind = "negative_share"
	KindDivisionByZero           ErrorKind = "division_by_zero"
	KindSettlementExceedsBalance ErrorKind = "settlement_exceeds_balance"
	KindInvalidInput             ErrorKind = "invalid_input"
)

// ValidationError is returned when a split or settlement is rejected.
// Nothing is ever partially applied when one is returned.
type ValidationError struct {
	Kind   ErrorKind
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

// Is matches any ValidationError of the same kind, so the sentinel values
// below work with errors.Is regardless of Detail.
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	return ok && t.Kind == e.Kind
}

var (
	ErrInvalidParticipantSet    = &ValidationError{Kind: KindInvalidParticipantSet}
	ErrReconciliationFailure    = &ValidationError{Kind: KindReconciliationFailure}
	ErrNegativeShare            = &ValidationError{Kind: KindNegativeShare}
	ErrDivisionByZero           = &ValidationError{Kind: KindDivisionByZero}
	ErrSettlementExceedsBalance = &ValidationError{Kind: KindSettlementExceedsBalance}
	ErrInvalidInput             = &ValidationError{Kind: KindInvalidInput}
)

var (
	// ErrNoCurrentParticipant is returned when a computation is invoked without
	// the identity it is computed for. Callers must resolve it first.
	ErrNoCurrentParticipant = errors.New("current participant is required")

	// ErrMissingIdentity is returned when a record has no ID.
	ErrMissingIdentity = errors.New("record has no identity")
)

func validationErrorf(kind ErrorKind, format string, args ...any) *ValidationError {
	return &ValidationError{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// KindOf returns the validation kind carried by err, if any.
func KindOf(err error) (ErrorKind, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Kind, true
	}
	return "", false
}
