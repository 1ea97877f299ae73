package service

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/swisscoin/internal/calculator"
	"github.com/mmynk/swisscoin/internal/models"
	"github.com/mmynk/swisscoin/internal/storage"
	"github.com/mmynk/swisscoin/pkg/api"
	"github.com/mmynk/swisscoin/pkg/api/apiconnect"
)

var _ apiconnect.SettlementServiceHandler = (*SettlementService)(nil)

// SettlementService implements the Connect SettlementService
type SettlementService struct {
	store storage.Store
	opts  Options
}

// NewSettlementService creates a new SettlementService with the given storage backend.
func NewSettlementService(store storage.Store, opts Options) *SettlementService {
	return &SettlementService{store: store, opts: opts}
}

// GetBalance returns what the counterpart owes the caller (negative when the
// caller owes them).
func (s *SettlementService) GetBalance(ctx context.Context, req *connect.Request[api.GetBalanceRequest]) (*connect.Response[api.GetBalanceResponse], error) {
	callerID, err := currentParticipant(ctx)
	if err != nil {
		return nil, err
	}

	ledger, err := s.store.LoadLedger(ctx, storage.LedgerScope{ParticipantID: callerID})
	if err != nil {
		return nil, fail("GetBalance", err)
	}

	balance, err := calculator.Balance(callerID, req.Msg.CounterpartID, ledger.Expenses, ledger.Settlements)
	if err != nil {
		return nil, fail("GetBalance", err, "counterpart_id", req.Msg.CounterpartID)
	}

	return connect.NewResponse(&api.GetBalanceResponse{
		Balance:   balance,
		Formatted: s.opts.Currency.Format(balance),
	}), nil
}

// ListBalances returns every non-zero balance of the caller.
func (s *SettlementService) ListBalances(ctx context.Context, req *connect.Request[api.ListBalancesRequest]) (*connect.Response[api.ListBalancesResponse], error) {
	callerID, err := currentParticipant(ctx)
	if err != nil {
		return nil, err
	}

	ledger, err := s.store.LoadLedger(ctx, storage.LedgerScope{ParticipantID: callerID})
	if err != nil {
		return nil, fail("ListBalances", err)
	}

	all, err := calculator.Balances(callerID, ledger.Expenses, ledger.Settlements)
	if err != nil {
		return nil, fail("ListBalances", err)
	}

	balances := make([]api.CounterpartBalance, 0, len(all))
	for id, b := range all {
		if b.IsZero() {
			continue
		}
		balances = append(balances, api.CounterpartBalance{ParticipantID: id, Balance: b})
	}
	sort.Slice(balances, func(i, j int) bool { return balances[i].ParticipantID < balances[j].ParticipantID })

	return connect.NewResponse(&api.ListBalancesResponse{Balances: balances}), nil
}

// CreateSettlement records a payment from FromID to ToID. The amount is
// checked against what FromID currently owes ToID and handled according to
// the configured over-settlement policy.
func (s *SettlementService) CreateSettlement(ctx context.Context, req *connect.Request[api.CreateSettlementRequest]) (*connect.Response[api.CreateSettlementResponse], error) {
	callerID, err := currentParticipant(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateSettlement request received",
		"caller", callerID,
		"from_id", req.Msg.FromID,
		"to_id", req.Msg.ToID,
		"amount", req.Msg.Amount,
		"group_id", req.Msg.GroupID,
	)

	fromID := req.Msg.FromID
	if fromID == "" {
		fromID = callerID
	}
	toID := req.Msg.ToID
	if callerID != fromID && callerID != toID {
		return nil, permissionDenied("you must be the payer or the recipient of this settlement")
	}
	if err := s.checkPair(ctx, fromID, toID); err != nil {
		return nil, fail("CreateSettlement", err)
	}
	if req.Msg.GroupID != "" {
		group, err := memberGroup(ctx, s.store, req.Msg.GroupID, callerID)
		if err != nil {
			return nil, err
		}
		if !group.HasMember(fromID) || !group.HasMember(toID) {
			return nil, fail("CreateSettlement", &calculator.ValidationError{
				Kind:   calculator.KindInvalidParticipantSet,
				Detail: "both sides of a group settlement must be members",
			})
		}
	}

	requested := req.Msg.Amount
	if err := s.opts.checkAmount("amount", requested); err != nil {
		return nil, fail("CreateSettlement", err)
	}

	settlement := &models.Settlement{
		Date:    req.Msg.Date,
		FromID:  fromID,
		ToID:    toID,
		GroupID: req.Msg.GroupID,
		Note:    req.Msg.Note,
	}

	// Balance check and insert run in one write transaction.
	var (
		outstanding decimal.Decimal
		outcome     calculator.SettlementOutcome
	)
	scope := storage.LedgerScope{ParticipantID: toID, GroupID: req.Msg.GroupID}
	err = s.store.SettleAgainstLedger(ctx, scope, settlement, func(ledger *storage.Ledger, st *models.Settlement) error {
		// Positive when fromID owes toID.
		var err error
		if outstanding, err = calculator.Balance(toID, fromID, ledger.Expenses, ledger.Settlements); err != nil {
			return err
		}
		if outcome, err = calculator.ApplySettlementPolicy(outstanding, requested, s.opts.Policy); err != nil {
			s.opts.Metrics.ObserveValidation(err)
			return err
		}
		st.Amount = outcome.Applied
		st.FullSettlement = outcome.FullSettlement
		return nil
	})
	if err != nil {
		return nil, fail("CreateSettlement", err, "outstanding", outstanding, "requested", requested)
	}

	if outcome.Clamped {
		slog.Warn("Settlement clamped to outstanding balance",
			"settlement_id", settlement.ID,
			"requested", outcome.Requested,
			"applied", outcome.Applied,
		)
	}
	slog.Info("Settlement created", "settlement_id", settlement.ID, "full", settlement.FullSettlement)

	return connect.NewResponse(&api.CreateSettlementResponse{
		Settlement: toAPISettlement(settlement),
		Requested:  outcome.Requested,
		Clamped:    outcome.Clamped,
	}), nil
}

// checkPair validates the two sides of a settlement or reminder.
func (s *SettlementService) checkPair(ctx context.Context, fromID, toID string) error {
	if toID == "" || fromID == toID {
		return &calculator.ValidationError{
			Kind:   calculator.KindInvalidParticipantSet,
			Detail: "payer and recipient must be two different participants",
		}
	}
	return checkParticipantsExist(ctx, s.store, []string{fromID, toID})
}

// DeleteSettlement soft-deletes a settlement the caller took part in.
func (s *SettlementService) DeleteSettlement(ctx context.Context, req *connect.Request[api.DeleteSettlementRequest]) (*connect.Response[api.DeleteSettlementResponse], error) {
	callerID, err := currentParticipant(ctx)
	if err != nil {
		return nil, err
	}
	if req.Msg.SettlementID == "" {
		return nil, invalidArgument("settlement_id required")
	}

	settlement, err := s.store.GetSettlement(ctx, req.Msg.SettlementID)
	if err != nil {
		return nil, fail("DeleteSettlement", err, "settlement_id", req.Msg.SettlementID)
	}
	if settlement.FromID != callerID && settlement.ToID != callerID {
		return nil, permissionDenied("you must be the payer or the recipient of this settlement")
	}

	if err := s.store.DeleteSettlement(ctx, settlement.ID); err != nil {
		return nil, fail("DeleteSettlement", err, "settlement_id", settlement.ID)
	}

	slog.Info("Settlement deleted", "settlement_id", settlement.ID)

	return connect.NewResponse(&api.DeleteSettlementResponse{}), nil
}

// CreateReminder asks the recipient to pay. Reminders never change balances.
func (s *SettlementService) CreateReminder(ctx context.Context, req *connect.Request[api.CreateReminderRequest]) (*connect.Response[api.CreateReminderResponse], error) {
	callerID, err := currentParticipant(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.checkPair(ctx, callerID, req.Msg.RecipientID); err != nil {
		return nil, fail("CreateReminder", err)
	}
	if !req.Msg.Amount.IsPositive() {
		return nil, fail("CreateReminder", &calculator.ValidationError{
			Kind:   calculator.KindInvalidInput,
			Detail: "reminder amount must be positive",
		})
	}
	if req.Msg.GroupID != "" {
		if _, err := memberGroup(ctx, s.store, req.Msg.GroupID, callerID); err != nil {
			return nil, err
		}
	}

	if err := s.opts.checkAmount("amount", req.Msg.Amount); err != nil {
		return nil, fail("CreateReminder", err)
	}

	reminder := &models.Reminder{
		Amount:      req.Msg.Amount,
		FromID:      callerID,
		RecipientID: req.Msg.RecipientID,
		GroupID:     req.Msg.GroupID,
		Note:        req.Msg.Note,
	}
	if err := s.store.CreateReminder(ctx, reminder); err != nil {
		return nil, fail("CreateReminder", err)
	}

	slog.Info("Reminder created", "reminder_id", reminder.ID, "recipient_id", reminder.RecipientID)

	return connect.NewResponse(&api.CreateReminderResponse{Reminder: toAPIReminder(reminder)}), nil
}

// MarkReminderRead flags a received reminder as seen.
func (s *SettlementService) MarkReminderRead(ctx context.Context, req *connect.Request[api.ReminderRequest]) (*connect.Response[api.ReminderResponse], error) {
	reminder, err := s.updateReminder(ctx, req.Msg.ReminderID, func(r *models.Reminder) { r.Read = true })
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.ReminderResponse{Reminder: toAPIReminder(reminder)}), nil
}

// ClearReminder dismisses a received reminder. Cleared reminders are also read.
func (s *SettlementService) ClearReminder(ctx context.Context, req *connect.Request[api.ReminderRequest]) (*connect.Response[api.ReminderResponse], error) {
	reminder, err := s.updateReminder(ctx, req.Msg.ReminderID, func(r *models.Reminder) {
		r.Read = true
		r.Cleared = true
	})
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.ReminderResponse{Reminder: toAPIReminder(reminder)}), nil
}

// updateReminder applies change to a reminder addressed to the caller.
func (s *SettlementService) updateReminder(ctx context.Context, reminderID string, change func(*models.Reminder)) (*models.Reminder, error) {
	callerID, err := currentParticipant(ctx)
	if err != nil {
		return nil, err
	}

	reminder, err := s.activeReminder(ctx, reminderID)
	if err != nil {
		return nil, err
	}
	if reminder.RecipientID != callerID {
		return nil, permissionDenied("only the recipient can update a reminder")
	}

	change(reminder)
	if err := s.store.UpdateReminderStatus(ctx, reminder.ID, reminder.Read, reminder.Cleared); err != nil {
		return nil, fail("UpdateReminder", err, "reminder_id", reminder.ID)
	}
	return reminder, nil
}

// DeleteReminder soft-deletes a reminder the caller sent.
func (s *SettlementService) DeleteReminder(ctx context.Context, req *connect.Request[api.ReminderRequest]) (*connect.Response[api.DeleteReminderResponse], error) {
	callerID, err := currentParticipant(ctx)
	if err != nil {
		return nil, err
	}

	reminder, err := s.activeReminder(ctx, req.Msg.ReminderID)
	if err != nil {
		return nil, err
	}
	if reminder.FromID != callerID {
		return nil, permissionDenied("only the sender can delete a reminder")
	}

	if err := s.store.DeleteReminder(ctx, reminder.ID); err != nil {
		return nil, fail("DeleteReminder", err, "reminder_id", reminder.ID)
	}

	slog.Info("Reminder deleted", "reminder_id", reminder.ID)

	return connect.NewResponse(&api.DeleteReminderResponse{}), nil
}

func (s *SettlementService) activeReminder(ctx context.Context, reminderID string) (*models.Reminder, error) {
	if reminderID == "" {
		return nil, invalidArgument("reminder_id required")
	}
	reminder, err := s.store.GetReminder(ctx, reminderID)
	if err == nil && reminder.IsDeleted() {
		err = storage.ErrNotFound
	}
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, connect.NewError(connect.CodeNotFound, err)
		}
		return nil, fail("GetReminder", err, "reminder_id", reminderID)
	}
	return reminder, nil
}
