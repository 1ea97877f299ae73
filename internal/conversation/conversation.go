// Package conversation builds the read-only activity feed between two
// participants or within a group.
//
// The feed is rebuilt from the current records on every call. Nothing is
// cached, so the same records always give the same feed.
package conversation

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/swisscoin/internal/calculator"
	"github.com/mmynk/swisscoin/internal/models"
)

// Kind tags the entity behind a feed item.
type Kind string

const (
	KindExpense    Kind = "expense"
	KindSettlement Kind = "settlement"
	KindReminder   Kind = "reminder"
	KindMessage    Kind = "message"
)

// Item is one entry of the feed. Exactly one of the entity pointers is set.
type Item struct {
	// ID is "<kind>:<entity id>". It is the same on every call.
	ID        string
	Kind      Kind
	Timestamp time.Time

	// Amount is invalid for messages. For a pairwise expense it is the effect
	// on the subject's balance (positive = the counterpart owes more); in a
	// group feed it is the expense total.
	Amount decimal.NullDecimal

	Expense    *models.Expense
	Settlement *models.Settlement
	Reminder   *models.Reminder
	Message    *models.Message
}

// Day groups the items of one calendar date.
type Day struct {
	// Date is midnight of the day in the query's location.
	Date  time.Time
	Items []Item
}

// Query selects a feed. Set exactly one of Counterpart and GroupID.
type Query struct {
	Subject     string
	Counterpart string
	GroupID     string

	// Location decides calendar dates. Defaults to UTC.
	Location *time.Location
}

// Snapshot is the data the feed is built from, already fetched by the caller.
type Snapshot struct {
	Expenses    []models.Expense
	Settlements []models.Settlement
	Reminders   []models.Reminder
	Messages    []models.Message
}

var ErrInvalidQuery = errors.New("exactly one of counterpart and group must be set")

// Project merges the snapshot into a feed, newest first, grouped by date.
// Soft-deleted records are left out.
func Project(q Query, snap Snapshot) ([]Day, error) {
	if q.Subject == "" {
		return nil, calculator.ErrNoCurrentParticipant
	}
	if (q.Counterpart == "") == (q.GroupID == "") {
		return nil, ErrInvalidQuery
	}
	loc := q.Location
	if loc == nil {
		loc = time.UTC
	}

	var items []Item
	for i := range snap.Expenses {
		e := &snap.Expenses[i]
		if e.ID == "" {
			return nil, fmt.Errorf("%w: expense %q", calculator.ErrMissingIdentity, e.Title)
		}
		if e.IsDeleted() {
			continue
		}
		amount, ok := q.expenseAmount(e)
		if !ok {
			continue
		}
		items = append(items, Item{
			ID:        itemID(KindExpense, e.ID),
			Kind:      KindExpense,
			Timestamp: e.Date,
			Amount:    decimal.NewNullDecimal(amount),
			Expense:   e,
		})
	}

	for i := range snap.Settlements {
		s := &snap.Settlements[i]
		if s.ID == "" {
			return nil, fmt.Errorf("%w: settlement from %s to %s", calculator.ErrMissingIdentity, s.FromID, s.ToID)
		}
		if s.IsDeleted() || !q.involves(s.FromID, s.ToID, s.GroupID) {
			continue
		}
		items = append(items, Item{
			ID:         itemID(KindSettlement, s.ID),
			Kind:       KindSettlement,
			Timestamp:  s.Date,
			Amount:     decimal.NewNullDecimal(s.Amount),
			Settlement: s,
		})
	}

	for i := range snap.Reminders {
		r := &snap.Reminders[i]
		if r.ID == "" {
			return nil, fmt.Errorf("%w: reminder for %s", calculator.ErrMissingIdentity, r.RecipientID)
		}
		if r.IsDeleted() || !q.involves(r.FromID, r.RecipientID, r.GroupID) {
			continue
		}
		items = append(items, Item{
			ID:        itemID(KindReminder, r.ID),
			Kind:      KindReminder,
			Timestamp: r.CreatedAt,
			Amount:    decimal.NewNullDecimal(r.Amount),
			Reminder:  r,
		})
	}

	for i := range snap.Messages {
		m := &snap.Messages[i]
		if m.ID == "" {
			return nil, fmt.Errorf("%w: message from %s", calculator.ErrMissingIdentity, m.FromID)
		}
		if m.IsDeleted() || !q.involves(m.FromID, m.ToID, m.GroupID) {
			continue
		}
		items = append(items, Item{
			ID:        itemID(KindMessage, m.ID),
			Kind:      KindMessage,
			Timestamp: m.CreatedAt,
			Message:   m,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.After(b.Timestamp)
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return a.ID < b.ID
	})

	return groupByDate(items, loc), nil
}

func itemID(kind Kind, entityID string) string {
	return string(kind) + ":" + entityID
}

// involves reports whether a record between a and b, or in groupID, belongs
// to the queried feed.
func (q Query) involves(a, b, groupID string) bool {
	if q.GroupID != "" {
		return groupID == q.GroupID
	}
	return (a == q.Subject && b == q.Counterpart) || (a == q.Counterpart && b == q.Subject)
}

func (q Query) expenseAmount(e *models.Expense) (decimal.Decimal, bool) {
	if q.GroupID != "" {
		return e.Amount, e.GroupID == q.GroupID
	}
	switch e.PayerID {
	case q.Subject:
		if s, ok := e.SplitFor(q.Counterpart); ok {
			return s.Amount, true
		}
	case q.Counterpart:
		if s, ok := e.SplitFor(q.Subject); ok {
			return s.Amount.Neg(), true
		}
	}
	return decimal.Zero, false
}

func groupByDate(items []Item, loc *time.Location) []Day {
	var days []Day
	for _, item := range items {
		t := item.Timestamp.In(loc)
		date := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
		if n := len(days); n > 0 && days[n-1].Date.Equal(date) {
			days[n-1].Items = append(days[n-1].Items, item)
			continue
		}
		days = append(days, Day{Date: date, Items: []Item{item}})
	}
	return days
}
