package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/swisscoin/internal/calculator"
	"github.com/mmynk/swisscoin/internal/models"
	"github.com/mmynk/swisscoin/internal/storage"
	"github.com/mmynk/swisscoin/pkg/api"
	"github.com/mmynk/swisscoin/pkg/api/apiconnect"
)

var _ apiconnect.SplitServiceHandler = (*SplitService)(nil)

// SplitService implements the Connect SplitService
type SplitService struct {
	store storage.Store
	opts  Options
}

// NewSplitService creates a new SplitService with the given storage backend.
func NewSplitService(store storage.Store, opts Options) *SplitService {
	return &SplitService{store: store, opts: opts}
}

// resolveParticipants loads the participants named by ids, keeping their order.
// Unknown IDs are a validation error.
func resolveParticipants(ctx context.Context, store storage.Store, ids []string) ([]calculator.Participant, error) {
	byID, err := store.GetParticipantsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	participants := make([]calculator.Participant, len(ids))
	for i, id := range ids {
		p, ok := byID[id]
		if !ok {
			return nil, &calculator.ValidationError{
				Kind:   calculator.KindInvalidParticipantSet,
				Detail: fmt.Sprintf("unknown participant %q", id),
			}
		}
		participants[i] = calculator.Participant{ID: p.ID, Name: p.Name}
	}
	return participants, nil
}

// split runs the split engine for a request and returns the resolved participants too.
func (s *SplitService) split(ctx context.Context, total decimal.Decimal, method string, ids []string, values map[string]decimal.Decimal) (models.SplitMethod, []models.Split, []calculator.Participant, error) {
	m, err := models.ParseSplitMethod(method)
	if err != nil {
		err = &calculator.ValidationError{Kind: calculator.KindInvalidInput, Detail: err.Error()}
		s.opts.Metrics.ObserveValidation(err)
		return "", nil, nil, err
	}
	if err := s.opts.checkAmount("total", total); err != nil {
		return "", nil, nil, err
	}

	participants, err := resolveParticipants(ctx, s.store, ids)
	if err != nil {
		s.opts.Metrics.ObserveValidation(err)
		return "", nil, nil, err
	}

	owed, err := calculator.CalculateSplit(calculator.SplitInput{
		Total:        total,
		Currency:     s.opts.Currency,
		Method:       m,
		Participants: participants,
		Values:       values,
	})
	if err != nil {
		s.opts.Metrics.ObserveValidation(err)
		return "", nil, nil, err
	}

	splits := make([]models.Split, 0, len(owed))
	for _, p := range participants {
		splits = append(splits, models.Split{ParticipantID: p.ID, Amount: owed[p.ID]})
	}
	return m, splits, participants, nil
}

// CalculateSplit previews how an expense would be divided. Nothing is stored.
func (s *SplitService) CalculateSplit(ctx context.Context, req *connect.Request[api.CalculateSplitRequest]) (*connect.Response[api.CalculateSplitResponse], error) {
	if _, err := currentParticipant(ctx); err != nil {
		return nil, err
	}
	slog.Debug("CalculateSplit request received",
		"total", req.Msg.Total,
		"method", req.Msg.Method,
		"participants", req.Msg.ParticipantIDs,
	)

	method, splits, _, err := s.split(ctx, req.Msg.Total, req.Msg.Method, req.Msg.ParticipantIDs, req.Msg.Values)
	if err != nil {
		return nil, fail("CalculateSplit", err)
	}

	return connect.NewResponse(&api.CalculateSplitResponse{
		Total:  req.Msg.Total,
		Method: string(method),
		Splits: toAPISplits(splits),
	}), nil
}

// CreateExpense splits an expense and stores it together with its splits.
func (s *SplitService) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	callerID, err := currentParticipant(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateExpense request received",
		"caller", callerID,
		"amount", req.Msg.Amount,
		"method", req.Msg.Method,
		"participants_count", len(req.Msg.ParticipantIDs),
		"group_id", req.Msg.GroupID,
	)

	payerID := req.Msg.PayerID
	if payerID == "" {
		payerID = callerID
	}
	if payerID != callerID && !contains(req.Msg.ParticipantIDs, callerID) {
		return nil, permissionDenied("you must be the payer or a participant to create this expense")
	}

	// The payer's own share is never debt, so someone else has to owe something.
	if len(findNew(req.Msg.ParticipantIDs, []string{payerID})) == 0 {
		err := &calculator.ValidationError{
			Kind:   calculator.KindInvalidParticipantSet,
			Detail: "an expense must be shared with someone other than the payer",
		}
		s.opts.Metrics.ObserveValidation(err)
		return nil, fail("CreateExpense", err, "payer_id", payerID)
	}

	if _, err := s.store.GetParticipant(ctx, payerID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			err = &calculator.ValidationError{Kind: calculator.KindInvalidParticipantSet, Detail: fmt.Sprintf("unknown payer %q", payerID)}
		}
		return nil, fail("CreateExpense", err, "payer_id", payerID)
	}

	method, splits, participants, err := s.split(ctx, req.Msg.Amount, req.Msg.Method, req.Msg.ParticipantIDs, req.Msg.Values)
	if err != nil {
		return nil, fail("CreateExpense", err)
	}

	// Parties missing from the group join it in the same write as the expense.
	var newMembers []string
	if req.Msg.GroupID != "" {
		group, err := memberGroup(ctx, s.store, req.Msg.GroupID, callerID)
		if err != nil {
			return nil, err
		}
		newMembers = findNew(append([]string{payerID}, req.Msg.ParticipantIDs...), group.Members)
	}

	title := strings.TrimSpace(req.Msg.Title)
	if title == "" {
		title = generateTitle(participants, time.Now())
	}

	expense := &models.Expense{
		Title:   title,
		Amount:  req.Msg.Amount,
		Date:    req.Msg.Date,
		PayerID: payerID,
		GroupID: req.Msg.GroupID,
		Method:  method,
		Splits:  splits,
		Note:    req.Msg.Note,
	}

	// Save to storage (generates ID and CreatedAt)
	if err := s.store.CreateExpense(ctx, expense); err != nil {
		return nil, fail("CreateExpense", err, "group_id", expense.GroupID)
	}

	if len(newMembers) > 0 {
		slog.Info("Auto-added participants to group", "group_id", expense.GroupID, "new_members", newMembers)
	}
	slog.Info("Expense created", "expense_id", expense.ID, "title", expense.Title)

	return connect.NewResponse(&api.CreateExpenseResponse{Expense: toAPIExpense(expense)}), nil
}

// GetExpense retrieves an expense, including soft-deleted ones.
func (s *SplitService) GetExpense(ctx context.Context, req *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error) {
	expense, err := s.involvedExpense(ctx, req.Msg.ExpenseID)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.GetExpenseResponse{Expense: toAPIExpense(expense)}), nil
}

// DeleteExpense soft-deletes an expense. It stops counting towards balances
// but stays retrievable.
func (s *SplitService) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	expense, err := s.involvedExpense(ctx, req.Msg.ExpenseID)
	if err != nil {
		return nil, err
	}

	if err := s.store.DeleteExpense(ctx, expense.ID); err != nil {
		return nil, fail("DeleteExpense", err, "expense_id", expense.ID)
	}

	slog.Info("Expense deleted", "expense_id", expense.ID)

	return connect.NewResponse(&api.DeleteExpenseResponse{}), nil
}

// involvedExpense loads an expense the caller paid for or shares in.
func (s *SplitService) involvedExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	callerID, err := currentParticipant(ctx)
	if err != nil {
		return nil, err
	}
	if expenseID == "" {
		return nil, invalidArgument("expense_id required")
	}

	expense, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, fail("GetExpense", err, "expense_id", expenseID)
	}

	if _, ok := expense.SplitFor(callerID); !ok && expense.PayerID != callerID {
		return nil, permissionDenied("you must be the payer or a participant of this expense")
	}
	return expense, nil
}

// ListExpenses lists the caller's active expenses, or a group's.
func (s *SplitService) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	callerID, err := currentParticipant(ctx)
	if err != nil {
		return nil, err
	}

	var expenses []models.Expense
	if req.Msg.GroupID != "" {
		if _, err := memberGroup(ctx, s.store, req.Msg.GroupID, callerID); err != nil {
			return nil, err
		}
		expenses, err = s.store.ListExpensesByGroup(ctx, req.Msg.GroupID)
	} else {
		expenses, err = s.store.ListExpensesByParticipant(ctx, callerID)
	}
	if err != nil {
		return nil, fail("ListExpenses", err, "group_id", req.Msg.GroupID)
	}

	out := make([]api.Expense, len(expenses))
	for i := range expenses {
		out[i] = toAPIExpense(&expenses[i])
	}

	return connect.NewResponse(&api.ListExpensesResponse{Expenses: out}), nil
}

// generateTitle creates an auto-generated title from participant names.
func generateTitle(participants []calculator.Participant, now time.Time) string {
	names := make([]string, len(participants))
	for i, p := range participants {
		names[i] = p.Name
	}
	if len(names) == 0 {
		return fmt.Sprintf("Expense - %s", now.Format("Jan 2, 2006"))
	}
	if len(names) <= 3 {
		return fmt.Sprintf("Split with %s", strings.Join(names, ", "))
	}
	return fmt.Sprintf("Split with %s and %d others",
		strings.Join(names[:2], ", "),
		len(names)-2,
	)
}
