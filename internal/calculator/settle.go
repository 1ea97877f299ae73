package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// SettlementPolicy decides what happens when a settlement is larger than
// the balance it settles. There is no default; the caller picks one.
type SettlementPolicy string

const (
	// SettlementReject refuses an over-settlement with KindSettlementExceedsBalance.
	SettlementReject SettlementPolicy = "reject"
	// SettlementClamp lowers an over-settlement to the outstanding balance and
	// reports both amounts.
	SettlementClamp SettlementPolicy = "clamp"
)

// ParseSettlementPolicy parses a configured policy name.
func ParseSettlementPolicy(s string) (SettlementPolicy, error) {
	switch p := SettlementPolicy(s); p {
	case SettlementReject, SettlementClamp:
		return p, nil
	}
	return "", fmt.Errorf("unknown settlement policy %q", s)
}

// SettlementOutcome is the amount a settlement will actually be recorded with.
type SettlementOutcome struct {
	// Requested is the amount the user entered.
	Requested decimal.Decimal
	// Applied is the amount to record. Differs from Requested only when clamped.
	Applied decimal.Decimal
	// Clamped is set when Applied was lowered to the outstanding balance.
	Clamped bool
	// FullSettlement is set when Applied clears the outstanding balance.
	FullSettlement bool
}

// ApplySettlementPolicy checks a settlement of requested against outstanding,
// the amount the payer currently owes the receiver.
func ApplySettlementPolicy(outstanding, requested decimal.Decimal, policy SettlementPolicy) (SettlementOutcome, error) {
	if !requested.IsPositive() {
		return SettlementOutcome{}, validationErrorf(KindInvalidInput, "settlement amount must be positive, got %s", requested)
	}
	if !outstanding.IsPositive() {
		return SettlementOutcome{}, validationErrorf(KindSettlementExceedsBalance, "nothing is owed, settlement of %s refused", requested)
	}

	outcome := SettlementOutcome{Requested: requested, Applied: requested}
	if requested.GreaterThan(outstanding) {
		switch policy {
		case SettlementClamp:
			outcome.Applied = outstanding
			outcome.Clamped = true
		case SettlementReject:
			return SettlementOutcome{}, validationErrorf(KindSettlementExceedsBalance, "settlement of %s exceeds outstanding balance %s", requested, outstanding)
		default:
			return SettlementOutcome{}, fmt.Errorf("unknown settlement policy %q", policy)
		}
	}
	outcome.FullSettlement = outcome.Applied.Equal(outstanding)

	return outcome, nil
}
