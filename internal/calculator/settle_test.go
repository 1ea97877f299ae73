package calculator

import (
	"errors"
	"testing"
)

func TestApplySettlementPolicy(t *testing.T) {
	tests := []struct {
		name        string
		outstanding string
		requested   string
		policy      SettlementPolicy
		wantApplied string
		wantClamped bool
		wantFull    bool
		wantErr     error
	}{
		{"partial payment", "20", "5", SettlementReject, "5", false, false, nil},
		{"exact payment is a full settlement", "20", "20", SettlementReject, "20", false, true, nil},
		{"over-settlement rejected", "20", "25", SettlementReject, "", false, false, ErrSettlementExceedsBalance},
		{"over-settlement clamped", "20", "25", SettlementClamp, "20", true, true, nil},
		{"nothing owed is always rejected", "0", "5", SettlementClamp, "", false, false, ErrSettlementExceedsBalance},
		{"reverse debt is rejected", "-3", "5", SettlementReject, "", false, false, ErrSettlementExceedsBalance},
		{"zero amount is invalid", "20", "0", SettlementReject, "", false, false, ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome, err := ApplySettlementPolicy(d(tt.outstanding), d(tt.requested), tt.policy)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ApplySettlementPolicy() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ApplySettlementPolicy() failed: %v", err)
			}
			if !outcome.Applied.Equal(d(tt.wantApplied)) {
				t.Errorf("Applied = %s, want %s", outcome.Applied, tt.wantApplied)
			}
			if !outcome.Requested.Equal(d(tt.requested)) {
				t.Errorf("Requested = %s, want %s", outcome.Requested, tt.requested)
			}
			if outcome.Clamped != tt.wantClamped {
				t.Errorf("Clamped = %v, want %v", outcome.Clamped, tt.wantClamped)
			}
			if outcome.FullSettlement != tt.wantFull {
				t.Errorf("FullSettlement = %v, want %v", outcome.FullSettlement, tt.wantFull)
			}
		})
	}
}

func TestParseSettlementPolicy(t *testing.T) {
	for _, s := range []string{"reject", "clamp"} {
		if _, err := ParseSettlementPolicy(s); err != nil {
			t.Errorf("ParseSettlementPolicy(%q) failed: %v", s, err)
		}
	}
	if _, err := ParseSettlementPolicy("ignore"); err == nil {
		t.Error("ParseSettlementPolicy(\"ignore\") succeeded, want error")
	}
}
