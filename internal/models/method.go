package models

import (
	"fmt"
	"strings"
)

// SplitMethod is the strategy used to divide an expense among participants.
// This is the only enumeration of split strategies; its string values are
// the serialized tags used in storage and on the wire.
type SplitMethod string

const (
	SplitEqual      SplitMethod = "equal"
	SplitPercentage SplitMethod = "percentage"
	SplitShares     SplitMethod = "shares"
	SplitAdjustment SplitMethod = "adjustment"
	SplitAmount     SplitMethod = "amount"
)

// SplitMethods lists every valid method.
var SplitMethods = []SplitMethod{SplitEqual, SplitPercentage, SplitShares, SplitAdjustment, SplitAmount}

// Valid reports whether m is one of the known methods.
func (m SplitMethod) Valid() bool {
	for _, known := range SplitMethods {
		if m == known {
			return true
		}
	}
	return false
}

// ParseSplitMethod parses a serialized tag. Matching is case-insensitive;
// an empty tag means equal.
func ParseSplitMethod(s string) (SplitMethod, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return SplitEqual, nil
	}
	m := SplitMethod(s)
	if !m.Valid() {
		return "", fmt.Errorf("unknown split method %q", s)
	}
	return m, nil
}
