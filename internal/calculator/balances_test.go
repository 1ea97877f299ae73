package calculator

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/swisscoin/internal/models"
)

func expense(id, payer string, splits map[string]string) models.Expense {
	e := models.Expense{ID: id, PayerID: payer, Method: models.SplitAmount}
	total := decimal.Zero
	for p, amount := range splits {
		e.Splits = append(e.Splits, models.Split{ParticipantID: p, Amount: d(amount)})
		total = total.Add(d(amount))
	}
	e.Amount = total
	return e
}

func settlement(id, from, to, amount string) models.Settlement {
	return models.Settlement{ID: id, FromID: from, ToID: to, Amount: d(amount)}
}

func TestBalance(t *testing.T) {
	dinner := expense("e1", "S", map[string]string{"S": "20", "C": "20"})

	tests := []struct {
		name        string
		expenses    []models.Expense
		settlements []models.Settlement
		want        string
	}{
		{
			name: "no records means zero",
			want: "0",
		},
		{
			name:     "counterpart owes subject",
			expenses: []models.Expense{dinner},
			want:     "20",
		},
		{
			name:        "settlement from counterpart clears the debt",
			expenses:    []models.Expense{dinner},
			settlements: []models.Settlement{settlement("s1", "C", "S", "20")},
			want:        "0",
		},
		{
			name:        "partial settlement",
			expenses:    []models.Expense{dinner},
			settlements: []models.Settlement{settlement("s1", "C", "S", "7.50")},
			want:        "12.5",
		},
		{
			name:     "subject owes counterpart",
			expenses: []models.Expense{expense("e2", "C", map[string]string{"S": "12.25", "C": "12.25"})},
			want:     "-12.25",
		},
		{
			name: "both directions net out",
			expenses: []models.Expense{
				dinner,
				expense("e2", "C", map[string]string{"S": "5", "C": "5"}),
			},
			want: "15",
		},
		{
			name:        "settlement from subject increases what counterpart owes",
			settlements: []models.Settlement{settlement("s1", "S", "C", "10")},
			want:        "10",
		},
		{
			name: "third parties do not affect the pair",
			expenses: []models.Expense{
				dinner,
				expense("e3", "X", map[string]string{"S": "4", "C": "4", "X": "4"}),
			},
			settlements: []models.Settlement{settlement("s1", "X", "C", "3")},
			want:        "20",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Balance("S", "C", tt.expenses, tt.settlements)
			if err != nil {
				t.Fatalf("Balance() failed: %v", err)
			}
			if !got.Equal(d(tt.want)) {
				t.Errorf("Balance() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestBalance_SoftDeleteExclusion(t *testing.T) {
	expenses := []models.Expense{expense("e1", "S", map[string]string{"S": "10", "C": "10"})}
	settlements := []models.Settlement{settlement("s1", "C", "S", "4")}

	before, err := Balance("S", "C", expenses, settlements)
	if err != nil {
		t.Fatalf("Balance() failed: %v", err)
	}

	expenses = append(expenses, expense("e2", "S", map[string]string{"S": "30", "C": "30"}))
	during, err := Balance("S", "C", expenses, settlements)
	if err != nil {
		t.Fatalf("Balance() failed: %v", err)
	}
	if !during.Equal(before.Add(d("30"))) {
		t.Fatalf("Balance() with new expense = %s, want %s", during, before.Add(d("30")))
	}

	expenses[1].DeletedAt = time.Now()
	after, err := Balance("S", "C", expenses, settlements)
	if err != nil {
		t.Fatalf("Balance() failed: %v", err)
	}
	if !after.Equal(before) {
		t.Errorf("Balance() after soft delete = %s, want %s", after, before)
	}

	settlements[0].DeletedAt = time.Now()
	restored, err := Balance("S", "C", expenses, settlements)
	if err != nil {
		t.Fatalf("Balance() failed: %v", err)
	}
	if !restored.Equal(d("10")) {
		t.Errorf("Balance() after deleting settlement = %s, want 10", restored)
	}
}

func TestBalance_Preconditions(t *testing.T) {
	if _, err := Balance("", "C", nil, nil); !errors.Is(err, ErrNoCurrentParticipant) {
		t.Errorf("empty subject: error = %v, want ErrNoCurrentParticipant", err)
	}
	if _, err := Balance("S", "S", nil, nil); !errors.Is(err, ErrInvalidParticipantSet) {
		t.Errorf("self balance: error = %v, want ErrInvalidParticipantSet", err)
	}

	noID := expense("", "S", map[string]string{"C": "1"})
	if _, err := Balance("S", "C", []models.Expense{noID}, nil); !errors.Is(err, ErrMissingIdentity) {
		t.Errorf("missing expense id: error = %v, want ErrMissingIdentity", err)
	}
	if _, err := Balance("S", "C", nil, []models.Settlement{settlement("", "S", "C", "1")}); !errors.Is(err, ErrMissingIdentity) {
		t.Errorf("missing settlement id: error = %v, want ErrMissingIdentity", err)
	}
}

func TestGroupBalances(t *testing.T) {
	members := []string{"A", "B", "C", "D"}
	expenses := []models.Expense{
		expense("e1", "A", map[string]string{"A": "10", "B": "10", "C": "10"}),
		expense("e2", "C", map[string]string{"A": "25", "C": "25"}),
	}
	settlements := []models.Settlement{settlement("s1", "B", "A", "4")}

	summary, err := GroupBalances("A", members, expenses, settlements)
	if err != nil {
		t.Fatalf("GroupBalances() failed: %v", err)
	}

	want := map[string]string{"B": "6", "C": "-15", "D": "0"}
	if len(summary.Balances) != len(want) {
		t.Fatalf("got %d balances, want %d", len(summary.Balances), len(want))
	}
	for i, id := range []string{"B", "C", "D"} {
		b := summary.Balances[i]
		if b.ParticipantID != id {
			t.Errorf("balance %d is for %s, want %s", i, b.ParticipantID, id)
		}
		if !b.Balance.Equal(d(want[id])) {
			t.Errorf("balance with %s = %s, want %s", id, b.Balance, want[id])
		}
	}

	// Owed and owing are reported separately, never netted.
	if !summary.Owed.Equal(d("6")) {
		t.Errorf("Owed = %s, want 6", summary.Owed)
	}
	if !summary.Owing.Equal(d("15")) {
		t.Errorf("Owing = %s, want 15", summary.Owing)
	}

	if _, err := GroupBalances("Z", members, expenses, settlements); !errors.Is(err, ErrInvalidParticipantSet) {
		t.Errorf("non-member subject: error = %v, want ErrInvalidParticipantSet", err)
	}
}

func TestNetBalancesAndSimplifyDebts(t *testing.T) {
	expenses := []models.Expense{
		// A paid 90 for three.
		expense("e1", "A", map[string]string{"A": "30", "B": "30", "C": "30"}),
		// B paid 30 for B and C.
		expense("e2", "B", map[string]string{"B": "15", "C": "15"}),
	}
	settlements := []models.Settlement{settlement("s1", "C", "A", "10")}

	net, err := NetBalances(expenses, settlements)
	if err != nil {
		t.Fatalf("NetBalances() failed: %v", err)
	}

	want := map[string]string{"A": "50", "B": "-15", "C": "-35"}
	sum := decimal.Zero
	for _, bal := range net {
		if !bal.NetBalance.Equal(d(want[bal.ParticipantID])) {
			t.Errorf("%s net = %s, want %s", bal.ParticipantID, bal.NetBalance, want[bal.ParticipantID])
		}
		sum = sum.Add(bal.NetBalance)
	}
	if !sum.IsZero() {
		t.Errorf("net balances sum to %s, want 0", sum)
	}

	edges := SimplifyDebts(net)
	if len(edges) != 2 {
		t.Fatalf("got %d debt edges, want 2: %+v", len(edges), edges)
	}
	if edges[0].From != "C" || edges[0].To != "A" || !edges[0].Amount.Equal(d("35")) {
		t.Errorf("edge 0 = %+v, want C -> A 35", edges[0])
	}
	if edges[1].From != "B" || edges[1].To != "A" || !edges[1].Amount.Equal(d("15")) {
		t.Errorf("edge 1 = %+v, want B -> A 15", edges[1])
	}
}
