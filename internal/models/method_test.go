package models

import "testing"

func TestParseSplitMethod(t *testing.T) {
	tests := []struct {
		in      string
		want    SplitMethod
		wantErr bool
	}{
		{"equal", SplitEqual, false},
		{"", SplitEqual, false},
		{"Percentage", SplitPercentage, false},
		{" shares ", SplitShares, false},
		{"adjustment", SplitAdjustment, false},
		{"amount", SplitAmount, false},
		// Tags from older clients are not silently mapped.
		{"exact", "", true},
		{"unequally", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSplitMethod(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSplitMethod(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseSplitMethod(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
