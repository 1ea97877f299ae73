package service

import (
	"context"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/swisscoin/internal/calculator"
	"github.com/mmynk/swisscoin/internal/models"
	"github.com/mmynk/swisscoin/internal/storage"
	"github.com/mmynk/swisscoin/pkg/api"
	"github.com/mmynk/swisscoin/pkg/api/apiconnect"
)

var _ apiconnect.GroupServiceHandler = (*GroupService)(nil)

// GroupService implements the Connect GroupService
type GroupService struct {
	store storage.Store
}

// NewGroupService creates a new GroupService with the given storage backend.
func NewGroupService(store storage.Store) *GroupService {
	return &GroupService{store: store}
}

// memberGroup loads a group the caller belongs to.
func memberGroup(ctx context.Context, store storage.Store, groupID, callerID string) (*models.Group, error) {
	if groupID == "" {
		return nil, invalidArgument("group_id required")
	}
	group, err := store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, fail("GetGroup", err, "group_id", groupID)
	}
	if !group.HasMember(callerID) {
		return nil, permissionDenied("you must be a member of this group")
	}
	return group, nil
}

// checkParticipantsExist fails with InvalidParticipantSet when an ID is unknown.
func checkParticipantsExist(ctx context.Context, store storage.Store, ids []string) error {
	_, err := resolveParticipants(ctx, store, ids)
	return err
}

// CreateGroup creates a new group owned by the caller.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	callerID, err := currentParticipant(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateGroup request received",
		"name", req.Msg.Name,
		"members_count", len(req.Msg.MemberIDs),
	)

	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, invalidArgument("name required")
	}
	if err := checkParticipantsExist(ctx, s.store, req.Msg.MemberIDs); err != nil {
		return nil, fail("CreateGroup", err)
	}

	group := &models.Group{
		Name:    name,
		OwnerID: callerID,
		Members: findNew(req.Msg.MemberIDs, nil),
	}

	// Save to storage (generates ID and CreatedAt)
	if err := s.store.CreateGroup(ctx, group); err != nil {
		return nil, fail("CreateGroup", err)
	}

	slog.Info("Group created", "group_id", group.ID)

	return connect.NewResponse(&api.CreateGroupResponse{Group: toAPIGroup(group)}), nil
}

// GetGroup retrieves a group by ID.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	callerID, err := currentParticipant(ctx)
	if err != nil {
		return nil, err
	}

	group, err := memberGroup(ctx, s.store, req.Msg.GroupID, callerID)
	if err != nil {
		return nil, err
	}

	return connect.NewResponse(&api.GetGroupResponse{Group: toAPIGroup(group)}), nil
}

// ListGroups retrieves the caller's groups.
func (s *GroupService) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	callerID, err := currentParticipant(ctx)
	if err != nil {
		return nil, err
	}

	groups, err := s.store.ListGroupsByParticipant(ctx, callerID)
	if err != nil {
		return nil, fail("ListGroups", err)
	}

	out := make([]api.Group, len(groups))
	for i, group := range groups {
		out[i] = toAPIGroup(group)
	}

	slog.Debug("ListGroups successful", "count", len(out))

	return connect.NewResponse(&api.ListGroupsResponse{Groups: out}), nil
}

// AddMembers adds participants to a group the caller belongs to.
func (s *GroupService) AddMembers(ctx context.Context, req *connect.Request[api.AddMembersRequest]) (*connect.Response[api.AddMembersResponse], error) {
	callerID, err := currentParticipant(ctx)
	if err != nil {
		return nil, err
	}

	group, err := memberGroup(ctx, s.store, req.Msg.GroupID, callerID)
	if err != nil {
		return nil, err
	}
	if err := checkParticipantsExist(ctx, s.store, req.Msg.ParticipantIDs); err != nil {
		return nil, fail("AddMembers", err, "group_id", group.ID)
	}

	newMembers := findNew(req.Msg.ParticipantIDs, group.Members)
	if len(newMembers) > 0 {
		if err := s.store.AddGroupMembers(ctx, group.ID, newMembers); err != nil {
			return nil, fail("AddMembers", err, "group_id", group.ID)
		}
		group.Members = append(group.Members, newMembers...)
		slog.Info("Members added", "group_id", group.ID, "new_members", newMembers)
	}

	return connect.NewResponse(&api.AddMembersResponse{Group: toAPIGroup(group)}), nil
}

// GetGroupBalances reports the caller's balance with every other member, the
// net position of each member, and a short list of payments that would
// settle the group.
func (s *GroupService) GetGroupBalances(ctx context.Context, req *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error) {
	callerID, err := currentParticipant(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("GetGroupBalances request received", "group_id", req.Msg.GroupID)

	group, err := memberGroup(ctx, s.store, req.Msg.GroupID, callerID)
	if err != nil {
		return nil, err
	}

	ledger, err := s.store.LoadLedger(ctx, storage.LedgerScope{GroupID: group.ID})
	if err != nil {
		return nil, fail("GetGroupBalances", err, "group_id", group.ID)
	}
	expenses, settlements := ledger.Expenses, ledger.Settlements

	summary, err := calculator.GroupBalances(callerID, group.Members, expenses, settlements)
	if err != nil {
		return nil, fail("GetGroupBalances", err, "group_id", group.ID)
	}
	memberBalances, err := calculator.NetBalances(expenses, settlements)
	if err != nil {
		return nil, fail("GetGroupBalances", err, "group_id", group.ID)
	}
	debts := calculator.SimplifyDebts(memberBalances)

	apiMembers := make([]api.MemberBalance, len(memberBalances))
	for i, bal := range memberBalances {
		apiMembers[i] = api.MemberBalance{
			ParticipantID: bal.ParticipantID,
			NetBalance:    bal.NetBalance,
			TotalPaid:     bal.TotalPaid,
			TotalOwed:     bal.TotalOwed,
		}
	}

	apiDebts := make([]api.DebtEdge, len(debts))
	for i, debt := range debts {
		apiDebts[i] = api.DebtEdge{FromID: debt.From, ToID: debt.To, Amount: debt.Amount}
	}

	slog.Info("GetGroupBalances successful",
		"group_id", group.ID,
		"expenses_count", len(expenses),
		"members_count", len(group.Members),
		"debts_count", len(debts),
	)

	return connect.NewResponse(&api.GetGroupBalancesResponse{
		Balances:             toAPIBalances(summary.Balances),
		Owed:                 summary.Owed,
		Owing:                summary.Owing,
		MemberBalances:       apiMembers,
		SuggestedSettlements: apiDebts,
	}), nil
}
