package service

import (
	"context"
	"log/slog"
	"strings"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/swisscoin/internal/calculator"
	"github.com/mmynk/swisscoin/internal/conversation"
	"github.com/mmynk/swisscoin/internal/models"
	"github.com/mmynk/swisscoin/internal/storage"
	"github.com/mmynk/swisscoin/pkg/api"
	"github.com/mmynk/swisscoin/pkg/api/apiconnect"
)

var _ apiconnect.ConversationServiceHandler = (*ConversationService)(nil)

// ConversationService implements the Connect ConversationService
type ConversationService struct {
	store storage.Store
	opts  Options
}

// NewConversationService creates a new ConversationService with the given storage backend.
func NewConversationService(store storage.Store, opts Options) *ConversationService {
	return &ConversationService{store: store, opts: opts}
}

// GetConversation returns the activity feed with one participant or within
// one group, newest day first.
func (s *ConversationService) GetConversation(ctx context.Context, req *connect.Request[api.GetConversationRequest]) (*connect.Response[api.GetConversationResponse], error) {
	callerID, err := currentParticipant(ctx)
	if err != nil {
		return nil, err
	}

	q := conversation.Query{
		Subject:     callerID,
		Counterpart: req.Msg.CounterpartID,
		GroupID:     req.Msg.GroupID,
		Location:    s.opts.Location,
	}
	if (q.Counterpart == "") == (q.GroupID == "") {
		return nil, connect.NewError(connect.CodeInvalidArgument, conversation.ErrInvalidQuery)
	}
	if q.GroupID != "" {
		if _, err := memberGroup(ctx, s.store, q.GroupID, callerID); err != nil {
			return nil, err
		}
	} else if q.Counterpart == callerID {
		return nil, invalidArgument("cannot open a conversation with yourself")
	}

	snap, err := s.snapshot(ctx, q)
	if err != nil {
		return nil, fail("GetConversation", err)
	}

	days, err := conversation.Project(q, snap)
	if err != nil {
		return nil, fail("GetConversation", err)
	}

	resp := &api.GetConversationResponse{Days: make([]api.ConversationDay, 0, len(days))}
	for _, day := range days {
		resp.Days = append(resp.Days, toAPIDay(day))
	}

	if q.Counterpart != "" {
		balance, err := calculator.Balance(callerID, q.Counterpart, snap.Expenses, snap.Settlements)
		if err != nil {
			return nil, fail("GetConversation", err)
		}
		resp.Balance = decimal.NewNullDecimal(balance)
	}

	return connect.NewResponse(resp), nil
}

// snapshot loads the records a feed is built from in one read.
func (s *ConversationService) snapshot(ctx context.Context, q conversation.Query) (conversation.Snapshot, error) {
	scope := storage.LedgerScope{ParticipantID: q.Subject, GroupID: q.GroupID}
	if q.GroupID == "" {
		scope.Counterpart = q.Counterpart
	}
	ledger, err := s.store.LoadLedger(ctx, scope)
	if err != nil {
		return conversation.Snapshot{}, err
	}
	return conversation.Snapshot{
		Expenses:    ledger.Expenses,
		Settlements: ledger.Settlements,
		Reminders:   ledger.Reminders,
		Messages:    ledger.Messages,
	}, nil
}

// SendMessage posts a message to one participant or to a group the caller belongs to.
func (s *ConversationService) SendMessage(ctx context.Context, req *connect.Request[api.SendMessageRequest]) (*connect.Response[api.SendMessageResponse], error) {
	callerID, err := currentParticipant(ctx)
	if err != nil {
		return nil, err
	}

	text := strings.TrimSpace(req.Msg.Text)
	if text == "" {
		return nil, invalidArgument("text required")
	}
	if (req.Msg.ToID == "") == (req.Msg.GroupID == "") {
		return nil, invalidArgument("set exactly one of to_id and group_id")
	}

	if req.Msg.GroupID != "" {
		if _, err := memberGroup(ctx, s.store, req.Msg.GroupID, callerID); err != nil {
			return nil, err
		}
	} else {
		if req.Msg.ToID == callerID {
			return nil, invalidArgument("cannot message yourself")
		}
		if err := checkParticipantsExist(ctx, s.store, []string{req.Msg.ToID}); err != nil {
			return nil, fail("SendMessage", err)
		}
	}

	message := &models.Message{
		FromID:  callerID,
		ToID:    req.Msg.ToID,
		GroupID: req.Msg.GroupID,
		Text:    text,
	}
	if err := s.store.CreateMessage(ctx, message); err != nil {
		return nil, fail("SendMessage", err)
	}

	slog.Info("Message sent", "message_id", message.ID, "to_id", message.ToID, "group_id", message.GroupID)

	return connect.NewResponse(&api.SendMessageResponse{Message: toAPIMessage(message)}), nil
}

func toAPIDay(day conversation.Day) api.ConversationDay {
	items := make([]api.ConversationItem, len(day.Items))
	for i, item := range day.Items {
		out := api.ConversationItem{
			ID:        item.ID,
			Kind:      string(item.Kind),
			Timestamp: item.Timestamp,
			Amount:    item.Amount,
		}
		switch {
		case item.Expense != nil:
			e := toAPIExpense(item.Expense)
			out.Expense = &e
		case item.Settlement != nil:
			st := toAPISettlement(item.Settlement)
			out.Settlement = &st
		case item.Reminder != nil:
			r := toAPIReminder(item.Reminder)
			out.Reminder = &r
		case item.Message != nil:
			m := toAPIMessage(item.Message)
			out.Message = &m
		}
		items[i] = out
	}
	return api.ConversationDay{Date: day.Date.Format("2006-01-02"), Items: items}
}
