package calculator

import (
	"errors"
	"reflect"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/swisscoin/internal/models"
	"github.com/mmynk/swisscoin/internal/money"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var abc = []Participant{{ID: "c", Name: "Charlie"}, {ID: "a", Name: "Alice"}, {ID: "b", Name: "Bob"}}

func TestCalculateSplit(t *testing.T) {
	tests := []struct {
		name         string
		input        SplitInput
		wantErr      error
		validateFunc func(t *testing.T, splits map[string]decimal.Decimal)
	}{
		{
			name: "equal split pins the odd cent on the first name",
			input: SplitInput{
				Total:        d("100.00"),
				Currency:     money.CHF,
				Method:       models.SplitEqual,
				Participants: abc,
			},
			validateFunc: func(t *testing.T, splits map[string]decimal.Decimal) {
				// Alice sorts first, so she carries the extra cent.
				want := map[string]string{"a": "33.34", "b": "33.33", "c": "33.33"}
				assertSplits(t, splits, want)
			},
		},
		{
			name: "equal split ties on name break by id",
			input: SplitInput{
				Total:        d("0.05"),
				Currency:     money.CHF,
				Method:       models.SplitEqual,
				Participants: []Participant{{ID: "z", Name: "Sam"}, {ID: "y", Name: "Sam"}},
			},
			validateFunc: func(t *testing.T, splits map[string]decimal.Decimal) {
				assertSplits(t, splits, map[string]string{"y": "0.03", "z": "0.02"})
			},
		},
		{
			name: "equal split in a zero-decimal currency",
			input: SplitInput{
				Total:        d("1000"),
				Currency:     money.Currency{Code: "JPY", Exponent: 0},
				Method:       models.SplitEqual,
				Participants: abc,
			},
			validateFunc: func(t *testing.T, splits map[string]decimal.Decimal) {
				assertSplits(t, splits, map[string]string{"a": "334", "b": "333", "c": "333"})
			},
		},
		{
			name: "percentage split reconciles rounding drift",
			input: SplitInput{
				Total:        d("10.00"),
				Currency:     money.CHF,
				Method:       models.SplitPercentage,
				Participants: abc,
				Values:       map[string]decimal.Decimal{"a": d("33.33"), "b": d("33.33"), "c": d("33.34")},
			},
			validateFunc: func(t *testing.T, splits map[string]decimal.Decimal) {
				// 3.333 + 3.333 + 3.334 truncates to 3.33 + 3.33 + 3.33; the cent goes to Alice.
				assertSplits(t, splits, map[string]string{"a": "3.34", "b": "3.33", "c": "3.33"})
			},
		},
		{
			name: "percentage split summing to 99 is rejected",
			input: SplitInput{
				Total:        d("100"),
				Currency:     money.CHF,
				Method:       models.SplitPercentage,
				Participants: abc,
				Values:       map[string]decimal.Decimal{"a": d("33"), "b": d("33"), "c": d("33")},
			},
			wantErr: ErrReconciliationFailure,
		},
		{
			name: "percentages summing to 99.99 are within tolerance",
			input: SplitInput{
				Total:        d("100.00"),
				Currency:     money.CHF,
				Method:       models.SplitPercentage,
				Participants: abc,
				Values:       map[string]decimal.Decimal{"a": d("33.33"), "b": d("33.33"), "c": d("33.33")},
			},
			validateFunc: func(t *testing.T, splits map[string]decimal.Decimal) {
				// 33.33 each leaves one cent unassigned; Alice sorts first.
				assertSplits(t, splits, map[string]string{"a": "33.34", "b": "33.33", "c": "33.33"})
			},
		},
		{
			name: "percentages summing to 100.01 are within tolerance",
			input: SplitInput{
				Total:        d("100.00"),
				Currency:     money.CHF,
				Method:       models.SplitPercentage,
				Participants: abc,
				Values:       map[string]decimal.Decimal{"a": d("33.34"), "b": d("33.34"), "c": d("33.33")},
			},
			validateFunc: func(t *testing.T, splits map[string]decimal.Decimal) {
				// 33.34 + 33.34 + 33.33 overshoots by a cent, taken back from Alice.
				assertSplits(t, splits, map[string]string{"a": "33.33", "b": "33.34", "c": "33.33"})
			},
		},
		{
			name: "percentages summing to 100.02 are rejected",
			input: SplitInput{
				Total:        d("100.00"),
				Currency:     money.CHF,
				Method:       models.SplitPercentage,
				Participants: abc,
				Values:       map[string]decimal.Decimal{"a": d("33.34"), "b": d("33.34"), "c": d("33.34")},
			},
			wantErr: ErrReconciliationFailure,
		},
		{
			name: "percentage above 100 is invalid input",
			input: SplitInput{
				Total:        d("100"),
				Currency:     money.CHF,
				Method:       models.SplitPercentage,
				Participants: abc[:2],
				Values:       map[string]decimal.Decimal{"a": d("150"), "c": d("-50")},
			},
			wantErr: ErrInvalidInput,
		},
		{
			name: "value for a non-participant",
			input: SplitInput{
				Total:        d("100"),
				Currency:     money.CHF,
				Method:       models.SplitPercentage,
				Participants: abc[:2],
				Values:       map[string]decimal.Decimal{"b": d("100")},
			},
			wantErr: ErrInvalidParticipantSet,
		},
		{
			name: "percentage with negative value is invalid input",
			input: SplitInput{
				Total:        d("100"),
				Currency:     money.CHF,
				Method:       models.SplitPercentage,
				Participants: abc[:2],
				Values:       map[string]decimal.Decimal{"c": d("150"), "a": d("-50")},
			},
			wantErr: ErrInvalidInput,
		},
		{
			name: "exact amounts are authoritative",
			input: SplitInput{
				Total:        d("50.00"),
				Currency:     money.CHF,
				Method:       models.SplitAmount,
				Participants: abc,
				Values:       map[string]decimal.Decimal{"a": d("10"), "b": d("15.50"), "c": d("24.50")},
			},
			validateFunc: func(t *testing.T, splits map[string]decimal.Decimal) {
				assertSplits(t, splits, map[string]string{"a": "10", "b": "15.5", "c": "24.5"})
			},
		},
		{
			name: "exact amounts off by a cent are rejected, not corrected",
			input: SplitInput{
				Total:        d("50.00"),
				Currency:     money.CHF,
				Method:       models.SplitAmount,
				Participants: abc,
				Values:       map[string]decimal.Decimal{"a": d("10"), "b": d("15.50"), "c": d("24.49")},
			},
			wantErr: ErrReconciliationFailure,
		},
		{
			name: "shares split",
			input: SplitInput{
				Total:        d("100.00"),
				Currency:     money.CHF,
				Method:       models.SplitShares,
				Participants: abc,
				Values:       map[string]decimal.Decimal{"a": d("1"), "b": d("1"), "c": d("1")},
			},
			validateFunc: func(t *testing.T, splits map[string]decimal.Decimal) {
				assertSplits(t, splits, map[string]string{"a": "33.34", "b": "33.33", "c": "33.33"})
			},
		},
		{
			name: "shares split skips zero-share participants for the remainder",
			input: SplitInput{
				Total:        d("10.00"),
				Currency:     money.CHF,
				Method:       models.SplitShares,
				Participants: abc,
				Values:       map[string]decimal.Decimal{"b": d("2"), "c": d("1")},
			},
			validateFunc: func(t *testing.T, splits map[string]decimal.Decimal) {
				assertSplits(t, splits, map[string]string{"a": "0", "b": "6.67", "c": "3.33"})
			},
		},
		{
			name: "zero total shares is division by zero",
			input: SplitInput{
				Total:        d("10"),
				Currency:     money.CHF,
				Method:       models.SplitShares,
				Participants: abc[:2],
				Values:       map[string]decimal.Decimal{"c": d("0"), "a": d("0")},
			},
			wantErr: ErrDivisionByZero,
		},
		{
			name: "fractional shares are invalid input",
			input: SplitInput{
				Total:        d("10"),
				Currency:     money.CHF,
				Method:       models.SplitShares,
				Participants: abc[:2],
				Values:       map[string]decimal.Decimal{"c": d("1.5"), "a": d("1")},
			},
			wantErr: ErrInvalidInput,
		},
		{
			name: "adjustment split",
			input: SplitInput{
				Total:        d("30.00"),
				Currency:     money.CHF,
				Method:       models.SplitAdjustment,
				Participants: abc,
				Values:       map[string]decimal.Decimal{"a": d("6"), "b": d("-3")},
			},
			validateFunc: func(t *testing.T, splits map[string]decimal.Decimal) {
				// Base: (30 - 3) / 3 = 9 each, then add the adjustments back.
				assertSplits(t, splits, map[string]string{"a": "15", "b": "6", "c": "9"})
			},
		},
		{
			name: "adjustment that drives a share negative is rejected",
			input: SplitInput{
				Total:        d("10"),
				Currency:     money.CHF,
				Method:       models.SplitAdjustment,
				Participants: abc[:2],
				Values:       map[string]decimal.Decimal{"c": d("-20"), "a": d("20")},
			},
			wantErr: ErrNegativeShare,
		},
		{
			name: "largest supported total still reconciles",
			input: SplitInput{
				Total:        d("10000000000000.00"),
				Currency:     money.CHF,
				Method:       models.SplitEqual,
				Participants: abc,
			},
			validateFunc: func(t *testing.T, splits map[string]decimal.Decimal) {
				assertSplits(t, splits, map[string]string{"a": "3333333333333.34", "b": "3333333333333.33", "c": "3333333333333.33"})
			},
		},
		{
			name: "total beyond int64 minor units is invalid input",
			input: SplitInput{
				Total:        d("184467440737095518.16"),
				Currency:     money.CHF,
				Method:       models.SplitEqual,
				Participants: abc[:2],
			},
			wantErr: ErrInvalidInput,
		},
		{
			name: "total above the supported range is invalid input",
			input: SplitInput{
				Total:        d("1e17"),
				Currency:     money.CHF,
				Method:       models.SplitEqual,
				Participants: abc[:2],
			},
			wantErr: ErrInvalidInput,
		},
		{
			name: "exact amount beyond the supported range is invalid input",
			input: SplitInput{
				Total:        d("100"),
				Currency:     money.CHF,
				Method:       models.SplitAmount,
				Participants: abc[:2],
				Values:       map[string]decimal.Decimal{"a": d("184467440737095518.16"), "c": d("0")},
			},
			wantErr: ErrInvalidInput,
		},
		{
			name: "adjustment beyond the supported range is invalid input",
			input: SplitInput{
				Total:        d("100"),
				Currency:     money.CHF,
				Method:       models.SplitAdjustment,
				Participants: abc[:2],
				Values:       map[string]decimal.Decimal{"a": d("1e17")},
			},
			wantErr: ErrInvalidInput,
		},
		{
			name: "no participants",
			input: SplitInput{
				Total:    d("10"),
				Currency: money.CHF,
				Method:   models.SplitEqual,
			},
			wantErr: ErrInvalidParticipantSet,
		},
		{
			name: "duplicate participant",
			input: SplitInput{
				Total:        d("10"),
				Currency:     money.CHF,
				Method:       models.SplitEqual,
				Participants: []Participant{{ID: "a", Name: "Alice"}, {ID: "a", Name: "Alice"}},
			},
			wantErr: ErrInvalidParticipantSet,
		},
		{
			name: "zero total",
			input: SplitInput{
				Total:        d("0.001"),
				Currency:     money.CHF,
				Method:       models.SplitEqual,
				Participants: abc,
			},
			wantErr: ErrInvalidInput,
		},
		{
			name: "unknown method",
			input: SplitInput{
				Total:        d("10"),
				Currency:     money.CHF,
				Method:       models.SplitMethod("itemized"),
				Participants: abc,
			},
			wantErr: ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			splits, err := CalculateSplit(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("CalculateSplit() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("CalculateSplit() failed: %v", err)
			}
			assertReconciles(t, splits, tt.input.Currency.Round(tt.input.Total))
			if tt.validateFunc != nil {
				tt.validateFunc(t, splits)
			}
		})
	}
}

func TestCalculateSplit_Reconciles(t *testing.T) {
	participants := []Participant{
		{ID: "1", Name: "Ana"}, {ID: "2", Name: "Ben"}, {ID: "3", Name: "Cleo"},
		{ID: "4", Name: "Dario"}, {ID: "5", Name: "Eve"}, {ID: "6", Name: "Fay"}, {ID: "7", Name: "Gus"},
	}
	totals := []string{"0.01", "0.07", "1.00", "10.01", "99.99", "100.00", "1234.56", "999999.99"}
	inputs := map[models.SplitMethod]map[string]decimal.Decimal{
		models.SplitEqual: nil,
		models.SplitPercentage: {
			"1": d("10"), "2": d("15"), "3": d("20"), "4": d("5"), "5": d("25"), "6": d("12.5"), "7": d("12.5"),
		},
		models.SplitShares: {
			"1": d("1"), "2": d("2"), "3": d("3"), "4": d("1"), "5": d("1"), "6": d("4"), "7": d("7"),
		},
		models.SplitAdjustment: {
			"1": d("0.01"), "3": d("-0.01"),
		},
	}

	for method, values := range inputs {
		for _, total := range totals {
			splits, err := CalculateSplit(SplitInput{
				Total:        d(total),
				Currency:     money.CHF,
				Method:       method,
				Participants: participants,
				Values:       values,
			})
			if err != nil {
				// Tiny totals cannot absorb the adjustment; that is a legitimate rejection.
				if method == models.SplitAdjustment && errors.Is(err, ErrNegativeShare) {
					continue
				}
				t.Fatalf("%s/%s: CalculateSplit() failed: %v", method, total, err)
			}
			assertReconciles(t, splits, d(total))
		}
	}
}

func TestCalculateSplit_Deterministic(t *testing.T) {
	input := SplitInput{
		Total:        d("100.00"),
		Currency:     money.CHF,
		Method:       models.SplitShares,
		Participants: abc,
		Values:       map[string]decimal.Decimal{"a": d("1"), "b": d("1"), "c": d("1")},
	}

	first, err := CalculateSplit(input)
	if err != nil {
		t.Fatalf("CalculateSplit() failed: %v", err)
	}

	// Reversing the input order must not move the extra cent.
	input.Participants = []Participant{abc[2], abc[1], abc[0]}
	for i := 0; i < 10; i++ {
		again, err := CalculateSplit(input)
		if err != nil {
			t.Fatalf("CalculateSplit() failed: %v", err)
		}
		if !reflect.DeepEqual(render(first), render(again)) {
			t.Fatalf("run %d: got %v, want %v", i, again, first)
		}
	}
}

func TestValidationErrorKind(t *testing.T) {
	_, err := CalculateSplit(SplitInput{
		Total:        d("10"),
		Currency:     money.CHF,
		Method:       models.SplitShares,
		Participants: abc,
	})
	kind, ok := KindOf(err)
	if !ok || kind != KindDivisionByZero {
		t.Fatalf("KindOf(%v) = %q, %v; want %q", err, kind, ok, KindDivisionByZero)
	}
	if errors.Is(err, ErrReconciliationFailure) {
		t.Error("division by zero must not match reconciliation failure")
	}
}

func render(splits map[string]decimal.Decimal) map[string]string {
	out := make(map[string]string, len(splits))
	for id, amount := range splits {
		out[id] = amount.String()
	}
	return out
}

func assertSplits(t *testing.T, splits map[string]decimal.Decimal, want map[string]string) {
	t.Helper()
	if len(splits) != len(want) {
		t.Fatalf("got %d splits, want %d: %v", len(splits), len(want), splits)
	}
	for id, amount := range want {
		got, ok := splits[id]
		if !ok {
			t.Errorf("missing split for %s", id)
			continue
		}
		if !got.Equal(d(amount)) {
			t.Errorf("%s owes %s, want %s", id, got, amount)
		}
	}
}

func assertReconciles(t *testing.T, splits map[string]decimal.Decimal, total decimal.Decimal) {
	t.Helper()
	sum := decimal.Zero
	for id, amount := range splits {
		if amount.IsNegative() {
			t.Errorf("%s owes negative amount %s", id, amount)
		}
		sum = sum.Add(amount)
	}
	if !sum.Equal(total) {
		t.Errorf("splits sum to %s, want %s", sum, total)
	}
}
