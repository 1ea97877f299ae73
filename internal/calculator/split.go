package calculator

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mmynk/swisscoin/internal/models"
	"github.com/mmynk/swisscoin/internal/money"
)

var (
	hundred           = decimal.NewFromInt(100)
	percentageEpsilon = decimal.RequireFromString("0.01")
)

// Participant identifies one person in a split. Name is only used to order
// remainder distribution.
type Participant struct {
	ID   string
	Name string
}

// SplitInput describes an expense to be divided.
type SplitInput struct {
	// Total is the expense amount. It is rounded to the currency minor unit first.
	Total decimal.Decimal

	Currency money.Currency

	Method models.SplitMethod

	// Participants are the people the expense is split among.
	Participants []Participant

	// Values holds the per-participant raw input for the method:
	// percentage (0-100), exact amount, share count, or signed adjustment.
	// Ignored for equal splits. Missing entries count as zero.
	Values map[string]decimal.Decimal
}

// CalculateSplit computes how much each participant owes.
//
// The returned amounts always sum to the rounded total exactly. Minor units
// left over after truncation are handed out one at a time in participant
// order (display name, then ID), so identical inputs always give identical
// results.
func CalculateSplit(in SplitInput) (map[string]decimal.Decimal, error) {
	if !in.Method.Valid() {
		return nil, validationErrorf(KindInvalidInput, "unknown split method %q", in.Method)
	}
	if err := validateParticipants(in.Participants, in.Values); err != nil {
		return nil, err
	}

	total := in.Currency.Round(in.Total)
	if !total.IsPositive() {
		return nil, validationErrorf(KindInvalidInput, "total must be positive, got %s", total)
	}
	totalMinor, err := toMinor(in.Currency, total, "total")
	if err != nil {
		return nil, err
	}
	order := orderParticipants(in.Participants)

	var owed map[string]int64
	switch in.Method {
	case models.SplitEqual:
		owed = splitEqual(totalMinor, order)
	case models.SplitPercentage:
		owed, err = splitPercentage(totalMinor, order, in.Values)
	case models.SplitAmount:
		owed, err = splitAmount(totalMinor, order, in.Values, in.Currency)
	case models.SplitShares:
		owed, err = splitShares(totalMinor, order, in.Values)
	case models.SplitAdjustment:
		owed, err = splitAdjustment(totalMinor, order, in.Values, in.Currency)
	}
	if err != nil {
		return nil, err
	}

	var sum int64
	splits := make(map[string]decimal.Decimal, len(owed))
	for _, id := range order {
		if owed[id] < 0 {
			return nil, validationErrorf(KindNegativeShare, "participant %s would owe %s", id, in.Currency.FromMinor(owed[id]))
		}
		sum += owed[id]
		splits[id] = in.Currency.FromMinor(owed[id])
	}
	if sum != totalMinor {
		return nil, validationErrorf(KindReconciliationFailure, "splits sum to %s, want %s",
			in.Currency.FromMinor(sum), total)
	}

	return splits, nil
}

func validateParticipants(participants []Participant, values map[string]decimal.Decimal) error {
	if len(participants) == 0 {
		return validationErrorf(KindInvalidParticipantSet, "must have at least one participant")
	}
	seen := make(map[string]bool, len(participants))
	for _, p := range participants {
		if p.ID == "" {
			return validationErrorf(KindInvalidParticipantSet, "participant %q has no id", p.Name)
		}
		if seen[p.ID] {
			return validationErrorf(KindInvalidParticipantSet, "participant %s listed twice", p.ID)
		}
		seen[p.ID] = true
	}
	for id := range values {
		if !seen[id] {
			return validationErrorf(KindInvalidParticipantSet, "value given for non-participant %s", id)
		}
	}
	return nil
}

// orderParticipants returns participant IDs sorted by name, then ID.
func orderParticipants(participants []Participant) []string {
	sorted := make([]Participant, len(participants))
	copy(sorted, participants)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Name != sorted[j].Name {
			return sorted[i].Name < sorted[j].Name
		}
		return sorted[i].ID < sorted[j].ID
	})
	ids := make([]string, len(sorted))
	for i, p := range sorted {
		ids[i] = p.ID
	}
	return ids
}

// splitEqual divides total evenly. The remainder (which carries the sign of
// total) goes one unit at a time to the first participants in order.
func splitEqual(total int64, order []string) map[string]int64 {
	n := int64(len(order))
	base, rem := total/n, total%n
	step := int64(1)
	if rem < 0 {
		step, rem = -1, -rem
	}

	owed := make(map[string]int64, n)
	for i, id := range order {
		owed[id] = base
		if int64(i) < rem {
			owed[id] += step
		}
	}
	return owed
}

func splitPercentage(total int64, order []string, values map[string]decimal.Decimal) (map[string]int64, error) {
	sum := decimal.Zero
	for _, id := range order {
		pct := values[id]
		if pct.IsNegative() || pct.GreaterThan(hundred) {
			return nil, validationErrorf(KindInvalidInput, "percentage for %s must be between 0 and 100, got %s", id, pct)
		}
		sum = sum.Add(pct)
	}
	if sum.Sub(hundred).Abs().GreaterThan(percentageEpsilon) {
		return nil, validationErrorf(KindReconciliationFailure, "percentages sum to %s, want 100", sum)
	}

	return proportional(total, order, values, hundred)
}

func splitShares(total int64, order []string, values map[string]decimal.Decimal) (map[string]int64, error) {
	sum := decimal.Zero
	for _, id := range order {
		shares := values[id]
		if shares.IsNegative() || !shares.IsInteger() {
			return nil, validationErrorf(KindInvalidInput, "shares for %s must be a non-negative whole number, got %s", id, shares)
		}
		sum = sum.Add(shares)
	}
	if sum.IsZero() {
		return nil, validationErrorf(KindDivisionByZero, "total shares is zero")
	}

	return proportional(total, order, values, sum)
}

// proportional gives each participant trunc(total * weight / denominator)
// and then distributes what truncation left over among weighted participants.
func proportional(total int64, order []string, weights map[string]decimal.Decimal, denominator decimal.Decimal) (map[string]int64, error) {
	owed := make(map[string]int64, len(order))
	var assigned int64
	for _, id := range order {
		q, _ := decimal.NewFromInt(total).Mul(weights[id]).QuoRem(denominator, 0)
		owed[id] = q.IntPart()
		assigned += owed[id]
	}

	weighted := func(id string) bool { return weights[id].IsPositive() }
	if err := distributeRemainder(owed, order, weighted, total-assigned); err != nil {
		return nil, err
	}
	return owed, nil
}

func splitAmount(total int64, order []string, values map[string]decimal.Decimal, c money.Currency) (map[string]int64, error) {
	owed := make(map[string]int64, len(order))
	var (
		sum int64
		err error
	)
	for _, id := range order {
		amount := values[id]
		if amount.IsNegative() {
			return nil, validationErrorf(KindInvalidInput, "amount for %s must not be negative, got %s", id, amount)
		}
		if owed[id], err = toMinor(c, amount, "amount for "+id); err != nil {
			return nil, err
		}
		sum += owed[id]
	}
	if sum != total {
		return nil, validationErrorf(KindReconciliationFailure, "amounts sum to %s, want %s",
			c.FromMinor(sum), c.FromMinor(total))
	}
	return owed, nil
}

func splitAdjustment(total int64, order []string, values map[string]decimal.Decimal, c money.Currency) (map[string]int64, error) {
	adjustments := make(map[string]int64, len(order))
	var (
		sum int64
		err error
	)
	for _, id := range order {
		if adjustments[id], err = toMinor(c, values[id], "adjustment for "+id); err != nil {
			return nil, err
		}
		sum += adjustments[id]
	}

	owed := splitEqual(total-sum, order)
	for _, id := range order {
		owed[id] += adjustments[id]
		if owed[id] < 0 {
			return nil, validationErrorf(KindNegativeShare, "participant %s would owe %s after adjustment of %s",
				id, c.FromMinor(owed[id]), c.FromMinor(adjustments[id]))
		}
	}
	return owed, nil
}

// toMinor converts an input amount to minor units. Amounts too large to
// split without overflow are invalid input.
func toMinor(c money.Currency, d decimal.Decimal, what string) (int64, error) {
	n, err := c.ToMinor(d)
	if err != nil {
		return 0, validationErrorf(KindInvalidInput, "%s: %v", what, err)
	}
	return n, nil
}

// distributeRemainder moves diff minor units onto owed, one unit per eligible
// participant per pass in order. Units are only taken from participants who
// still owe something.
func distributeRemainder(owed map[string]int64, order []string, eligible func(string) bool, diff int64) error {
	for diff != 0 {
		progressed := false
		for _, id := range order {
			if diff == 0 {
				break
			}
			if !eligible(id) {
				continue
			}
			switch {
			case diff > 0:
				owed[id]++
				diff--
			case owed[id] > 0:
				owed[id]--
				diff++
			default:
				continue
			}
			progressed = true
		}
		if !progressed {
			return validationErrorf(KindReconciliationFailure, "cannot place %d remaining minor units", diff)
		}
	}
	return nil
}
