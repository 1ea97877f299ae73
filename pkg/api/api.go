// Package api defines the request and response messages of the swisscoin RPC
// services. Messages are plain structs serialized as JSON; amounts are exact
// decimal strings.
package api

import (
	"time"

	"github.com/shopspring/decimal"
)

// Participant is a person who can share expenses.
type Participant struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateParticipantRequest struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

type CreateParticipantResponse struct {
	Participant Participant `json:"participant"`
}

type ListParticipantsRequest struct{}

type ListParticipantsResponse struct {
	Participants []Participant `json:"participants"`
}

// Split is one participant's owed portion of an expense.
type Split struct {
	ParticipantID string          `json:"participant_id"`
	Amount        decimal.Decimal `json:"amount"`
}

// CalculateSplitRequest previews a split without storing anything.
type CalculateSplitRequest struct {
	Total          decimal.Decimal            `json:"total"`
	Method         string                     `json:"method,omitempty"`
	ParticipantIDs []string                   `json:"participant_ids"`
	Values         map[string]decimal.Decimal `json:"values,omitempty"`
}

type CalculateSplitResponse struct {
	Total  decimal.Decimal `json:"total"`
	Method string          `json:"method"`
	// Splits are ordered by participant ID.
	Splits []Split `json:"splits"`
}

// Expense is a stored expense with its splits.
type Expense struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Amount    decimal.Decimal `json:"amount"`
	Date      time.Time       `json:"date"`
	PayerID   string          `json:"payer_id"`
	GroupID   string          `json:"group_id,omitempty"`
	Method    string          `json:"method"`
	Splits    []Split         `json:"splits"`
	Note      string          `json:"note,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	Deleted   bool            `json:"deleted,omitempty"`
}

// CreateExpenseRequest records an expense. PayerID defaults to the caller.
type CreateExpenseRequest struct {
	Title          string                     `json:"title,omitempty"`
	Amount         decimal.Decimal            `json:"amount"`
	Date           time.Time                  `json:"date,omitempty"`
	PayerID        string                     `json:"payer_id,omitempty"`
	GroupID        string                     `json:"group_id,omitempty"`
	Method         string                     `json:"method,omitempty"`
	ParticipantIDs []string                   `json:"participant_ids"`
	Values         map[string]decimal.Decimal `json:"values,omitempty"`
	Note           string                     `json:"note,omitempty"`
}

type CreateExpenseResponse struct {
	Expense Expense `json:"expense"`
}

type GetExpenseRequest struct {
	ExpenseID string `json:"expense_id"`
}

type GetExpenseResponse struct {
	Expense Expense `json:"expense"`
}

type DeleteExpenseRequest struct {
	ExpenseID string `json:"expense_id"`
}

type DeleteExpenseResponse struct{}

// ListExpensesRequest lists the caller's expenses, or a group's when GroupID is set.
type ListExpensesRequest struct {
	GroupID string `json:"group_id,omitempty"`
}

type ListExpensesResponse struct {
	Expenses []Expense `json:"expenses"`
}

// Group is a named set of participants.
type Group struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"owner_id"`
	MemberIDs []string  `json:"member_ids"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateGroupRequest struct {
	Name      string   `json:"name"`
	MemberIDs []string `json:"member_ids,omitempty"`
}

type CreateGroupResponse struct {
	Group Group `json:"group"`
}

type GetGroupRequest struct {
	GroupID string `json:"group_id"`
}

type GetGroupResponse struct {
	Group Group `json:"group"`
}

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	Groups []Group `json:"groups"`
}

type AddMembersRequest struct {
	GroupID        string   `json:"group_id"`
	ParticipantIDs []string `json:"participant_ids"`
}

type AddMembersResponse struct {
	Group Group `json:"group"`
}

// CounterpartBalance is positive when the counterpart owes the caller.
type CounterpartBalance struct {
	ParticipantID string          `json:"participant_id"`
	Balance       decimal.Decimal `json:"balance"`
}

// MemberBalance is one member's net position across a group.
type MemberBalance struct {
	ParticipantID string          `json:"participant_id"`
	NetBalance    decimal.Decimal `json:"net_balance"`
	TotalPaid     decimal.Decimal `json:"total_paid"`
	TotalOwed     decimal.Decimal `json:"total_owed"`
}

// DebtEdge is a suggested payment that helps settle the group.
type DebtEdge struct {
	FromID string          `json:"from_id"`
	ToID   string          `json:"to_id"`
	Amount decimal.Decimal `json:"amount"`
}

type GetGroupBalancesRequest struct {
	GroupID string `json:"group_id"`
}

type GetGroupBalancesResponse struct {
	Balances             []CounterpartBalance `json:"balances"`
	Owed                 decimal.Decimal      `json:"owed"`
	Owing                decimal.Decimal      `json:"owing"`
	MemberBalances       []MemberBalance      `json:"member_balances"`
	SuggestedSettlements []DebtEdge           `json:"suggested_settlements"`
}

type GetBalanceRequest struct {
	CounterpartID string `json:"counterpart_id"`
}

type GetBalanceResponse struct {
	Balance   decimal.Decimal `json:"balance"`
	Formatted string          `json:"formatted"`
}

type ListBalancesRequest struct{}

type ListBalancesResponse struct {
	// Balances are ordered by participant ID. Settled-up counterparts are omitted.
	Balances []CounterpartBalance `json:"balances"`
}

// Settlement is a payment that clears debt.
type Settlement struct {
	ID             string          `json:"id"`
	Amount         decimal.Decimal `json:"amount"`
	Date           time.Time       `json:"date"`
	FromID         string          `json:"from_id"`
	ToID           string          `json:"to_id"`
	GroupID        string          `json:"group_id,omitempty"`
	FullSettlement bool            `json:"full_settlement"`
	Note           string          `json:"note,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// CreateSettlementRequest records a payment. FromID defaults to the caller;
// the caller must be either side.
type CreateSettlementRequest struct {
	FromID  string          `json:"from_id,omitempty"`
	ToID    string          `json:"to_id"`
	Amount  decimal.Decimal `json:"amount"`
	Date    time.Time       `json:"date,omitempty"`
	GroupID string          `json:"group_id,omitempty"`
	Note    string          `json:"note,omitempty"`
}

type CreateSettlementResponse struct {
	Settlement Settlement `json:"settlement"`
	// Requested is the amount asked for; it differs from Settlement.Amount
	// only when the server clamps over-settlements.
	Requested decimal.Decimal `json:"requested"`
	Clamped   bool            `json:"clamped"`
}

type DeleteSettlementRequest struct {
	SettlementID string `json:"settlement_id"`
}

type DeleteSettlementResponse struct{}

// Reminder is a request for payment. It never changes balances.
type Reminder struct {
	ID          string          `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	FromID      string          `json:"from_id"`
	RecipientID string          `json:"recipient_id"`
	GroupID     string          `json:"group_id,omitempty"`
	Read        bool            `json:"read"`
	Cleared     bool            `json:"cleared"`
	Note        string          `json:"note,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

type CreateReminderRequest struct {
	RecipientID string          `json:"recipient_id"`
	Amount      decimal.Decimal `json:"amount"`
	GroupID     string          `json:"group_id,omitempty"`
	Note        string          `json:"note,omitempty"`
}

type CreateReminderResponse struct {
	Reminder Reminder `json:"reminder"`
}

type ReminderRequest struct {
	ReminderID string `json:"reminder_id"`
}

type ReminderResponse struct {
	Reminder Reminder `json:"reminder"`
}

type DeleteReminderResponse struct{}

// Message is a free-text conversation entry.
type Message struct {
	ID        string    `json:"id"`
	FromID    string    `json:"from_id"`
	ToID      string    `json:"to_id,omitempty"`
	GroupID   string    `json:"group_id,omitempty"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// SendMessageRequest posts to one participant or to a group. Set exactly one target.
type SendMessageRequest struct {
	ToID    string `json:"to_id,omitempty"`
	GroupID string `json:"group_id,omitempty"`
	Text    string `json:"text"`
}

type SendMessageResponse struct {
	Message Message `json:"message"`
}

// GetConversationRequest selects the feed with one participant or one group.
type GetConversationRequest struct {
	CounterpartID string `json:"counterpart_id,omitempty"`
	GroupID       string `json:"group_id,omitempty"`
}

// ConversationItem is one feed entry. Exactly one of the entity fields is set.
type ConversationItem struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
	// Amount is absent for messages.
	Amount     decimal.NullDecimal `json:"amount"`
	Expense    *Expense            `json:"expense,omitempty"`
	Settlement *Settlement         `json:"settlement,omitempty"`
	Reminder   *Reminder           `json:"reminder,omitempty"`
	Message    *Message            `json:"message,omitempty"`
}

// ConversationDay groups the items of one calendar date, formatted YYYY-MM-DD.
type ConversationDay struct {
	Date  string             `json:"date"`
	Items []ConversationItem `json:"items"`
}

type GetConversationResponse struct {
	Days []ConversationDay `json:"days"`
	// Balance is the pairwise balance; absent for group feeds.
	Balance decimal.NullDecimal `json:"balance"`
}
