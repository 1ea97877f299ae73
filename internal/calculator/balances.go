package calculator

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mmynk/swisscoin/internal/models"
)

// CounterpartBalance is the balance between the subject and one counterpart.
// Positive = the counterpart owes the subject, negative = the subject owes them.
type CounterpartBalance struct {
	ParticipantID string
	Balance       decimal.Decimal
}

// GroupSummary is the subject's position within a group.
type GroupSummary struct {
	// Balances has one entry per other member, ordered by participant ID.
	Balances []CounterpartBalance

	// Owed is what the other members owe the subject in total (sum of positives).
	Owed decimal.Decimal

	// Owing is what the subject owes the other members in total (sum of
	// negatives, as a positive amount). It is never netted against Owed.
	Owing decimal.Decimal
}

// MemberBalance represents the net position of one participant across a group.
type MemberBalance struct {
	ParticipantID string
	NetBalance    decimal.Decimal // Positive = owed money, Negative = owes money
	TotalPaid     decimal.Decimal // Expenses paid for others plus settlements sent
	TotalOwed     decimal.Decimal // Shares owed to others plus settlements received
}

// DebtEdge represents a debt from one person to another.
type DebtEdge struct {
	From   string // Person who owes
	To     string // Person who is owed
	Amount decimal.Decimal
}

// Balance returns what counterpart owes subject (negative when subject owes).
//
//	balance(S, C) = Σ split(owedBy=C, payer=S) − Σ split(owedBy=S, payer=C)
//	              + Σ settlement(from=S, to=C) − Σ settlement(from=C, to=S)
//
// Soft-deleted expenses and settlements are ignored.
func Balance(subject, counterpart string, expenses []models.Expense, settlements []models.Settlement) (decimal.Decimal, error) {
	if subject == "" {
		return decimal.Zero, ErrNoCurrentParticipant
	}
	if counterpart == "" || counterpart == subject {
		return decimal.Zero, validationErrorf(KindInvalidParticipantSet, "counterpart must be someone other than %s", subject)
	}

	all, err := Balances(subject, expenses, settlements)
	if err != nil {
		return decimal.Zero, err
	}
	if b, ok := all[counterpart]; ok {
		return b, nil
	}
	return decimal.Zero, nil
}

// Balances returns the subject's balance against every counterpart that
// appears in the given records, using the same formula as Balance.
func Balances(subject string, expenses []models.Expense, settlements []models.Settlement) (map[string]decimal.Decimal, error) {
	if subject == "" {
		return nil, ErrNoCurrentParticipant
	}

	balances := make(map[string]decimal.Decimal)
	add := func(id string, amount decimal.Decimal) {
		if b, ok := balances[id]; ok {
			balances[id] = b.Add(amount)
		} else {
			balances[id] = amount
		}
	}

	for i := range expenses {
		e := &expenses[i]
		if e.ID == "" {
			return nil, fmt.Errorf("%w: expense %q paid by %s", ErrMissingIdentity, e.Title, e.PayerID)
		}
		if e.IsDeleted() {
			continue
		}

		if e.PayerID == subject {
			for _, s := range e.Splits {
				// The payer's own share is not debt.
				if s.ParticipantID == subject {
					continue
				}
				add(s.ParticipantID, s.Amount)
			}
			continue
		}
		if s, ok := e.SplitFor(subject); ok {
			add(e.PayerID, s.Amount.Neg())
		}
	}

	for i := range settlements {
		s := &settlements[i]
		if s.ID == "" {
			return nil, fmt.Errorf("%w: settlement from %s to %s", ErrMissingIdentity, s.FromID, s.ToID)
		}
		if s.IsDeleted() {
			continue
		}

		switch subject {
		case s.FromID:
			add(s.ToID, s.Amount)
		case s.ToID:
			add(s.FromID, s.Amount.Neg())
		}
	}

	return balances, nil
}

// GroupBalances evaluates Balance for the subject against each other member.
// The caller passes the group's expenses and settlements.
func GroupBalances(subject string, members []string, expenses []models.Expense, settlements []models.Settlement) (*GroupSummary, error) {
	if subject == "" {
		return nil, ErrNoCurrentParticipant
	}
	isMember := false
	for _, m := range members {
		if m == subject {
			isMember = true
			break
		}
	}
	if !isMember {
		return nil, validationErrorf(KindInvalidParticipantSet, "%s is not a member of the group", subject)
	}

	all, err := Balances(subject, expenses, settlements)
	if err != nil {
		return nil, err
	}

	others := make([]string, 0, len(members))
	for _, m := range members {
		if m != subject {
			others = append(others, m)
		}
	}
	sort.Strings(others)

	summary := &GroupSummary{Owed: decimal.Zero, Owing: decimal.Zero}
	for _, m := range others {
		b, ok := all[m]
		if !ok {
			b = decimal.Zero
		}
		summary.Balances = append(summary.Balances, CounterpartBalance{ParticipantID: m, Balance: b})
		if b.IsPositive() {
			summary.Owed = summary.Owed.Add(b)
		} else if b.IsNegative() {
			summary.Owing = summary.Owing.Add(b.Neg())
		}
	}

	return summary, nil
}

// NetBalances aggregates everyone's net position across the given records.
//
// Algorithm:
// - For each expense: payer contributed the shares of the others, each other participant owes their split
// - For each settlement: sender's balance improves, receiver's balance decreases
// - Aggregate: net_balance = total_paid - total_owed
func NetBalances(expenses []models.Expense, settlements []models.Settlement) ([]MemberBalance, error) {
	balances := make(map[string]*MemberBalance)
	get := func(id string) *MemberBalance {
		if _, exists := balances[id]; !exists {
			balances[id] = &MemberBalance{
				ParticipantID: id,
				NetBalance:    decimal.Zero,
				TotalPaid:     decimal.Zero,
				TotalOwed:     decimal.Zero,
			}
		}
		return balances[id]
	}

	for i := range expenses {
		e := &expenses[i]
		if e.ID == "" {
			return nil, fmt.Errorf("%w: expense %q paid by %s", ErrMissingIdentity, e.Title, e.PayerID)
		}
		if e.IsDeleted() || e.PayerID == "" {
			continue
		}
		payer := get(e.PayerID)
		for _, s := range e.Splits {
			if s.ParticipantID == e.PayerID {
				continue
			}
			payer.TotalPaid = payer.TotalPaid.Add(s.Amount)
			debtor := get(s.ParticipantID)
			debtor.TotalOwed = debtor.TotalOwed.Add(s.Amount)
		}
	}

	for i := range settlements {
		s := &settlements[i]
		if s.ID == "" {
			return nil, fmt.Errorf("%w: settlement from %s to %s", ErrMissingIdentity, s.FromID, s.ToID)
		}
		if s.IsDeleted() {
			continue
		}
		from, to := get(s.FromID), get(s.ToID)
		from.TotalPaid = from.TotalPaid.Add(s.Amount)
		to.TotalOwed = to.TotalOwed.Add(s.Amount)
	}

	result := make([]MemberBalance, 0, len(balances))
	for _, bal := range balances {
		bal.NetBalance = bal.TotalPaid.Sub(bal.TotalOwed)
		result = append(result, *bal)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ParticipantID < result[j].ParticipantID })

	return result, nil
}

// SimplifyDebts turns net balances into a short list of suggested payments.
// Largest debts are matched with largest credits first; ties break on ID.
func SimplifyDebts(balances []MemberBalance) []DebtEdge {
	type position struct {
		id     string
		amount decimal.Decimal
	}

	var creditors, debtors []position
	for _, bal := range balances {
		if bal.NetBalance.IsPositive() {
			creditors = append(creditors, position{bal.ParticipantID, bal.NetBalance})
		} else if bal.NetBalance.IsNegative() {
			debtors = append(debtors, position{bal.ParticipantID, bal.NetBalance.Neg()})
		}
	}
	byAmount := func(p []position) func(i, j int) bool {
		return func(i, j int) bool {
			if c := p[i].amount.Cmp(p[j].amount); c != 0 {
				return c > 0
			}
			return p[i].id < p[j].id
		}
	}
	sort.Slice(creditors, byAmount(creditors))
	sort.Slice(debtors, byAmount(debtors))

	var edges []DebtEdge
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		amount := decimal.Min(debtors[i].amount, creditors[j].amount)
		if amount.IsPositive() {
			edges = append(edges, DebtEdge{From: debtors[i].id, To: creditors[j].id, Amount: amount})
		}

		debtors[i].amount = debtors[i].amount.Sub(amount)
		creditors[j].amount = creditors[j].amount.Sub(amount)

		if !debtors[i].amount.IsPositive() {
			i++
		}
		if !creditors[j].amount.IsPositive() {
			j++
		}
	}

	return edges
}
