package service

import (
	"context"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/swisscoin/internal/models"
	"github.com/mmynk/swisscoin/internal/storage"
	"github.com/mmynk/swisscoin/pkg/api"
	"github.com/mmynk/swisscoin/pkg/api/apiconnect"
)

var _ apiconnect.ParticipantServiceHandler = (*ParticipantService)(nil)

// ParticipantService implements the Connect ParticipantService
type ParticipantService struct {
	store storage.Store
}

// NewParticipantService creates a new ParticipantService with the given storage backend.
func NewParticipantService(store storage.Store) *ParticipantService {
	return &ParticipantService{store: store}
}

// CreateParticipant adds a person who can take part in expenses.
func (s *ParticipantService) CreateParticipant(ctx context.Context, req *connect.Request[api.CreateParticipantRequest]) (*connect.Response[api.CreateParticipantResponse], error) {
	callerID, err := currentParticipant(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateParticipant request received", "caller", callerID, "name", req.Msg.Name)

	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, invalidArgument("name required")
	}

	p := &models.Participant{
		Name:  name,
		Email: strings.TrimSpace(req.Msg.Email),
		Phone: strings.TrimSpace(req.Msg.Phone),
	}
	if err := s.store.CreateParticipant(ctx, p); err != nil {
		return nil, fail("CreateParticipant", err)
	}

	slog.Info("Participant created", "participant_id", p.ID)

	return connect.NewResponse(&api.CreateParticipantResponse{
		Participant: toAPIParticipant(p),
	}), nil
}

// ListParticipants returns every known participant ordered by name.
func (s *ParticipantService) ListParticipants(ctx context.Context, req *connect.Request[api.ListParticipantsRequest]) (*connect.Response[api.ListParticipantsResponse], error) {
	if _, err := currentParticipant(ctx); err != nil {
		return nil, err
	}

	participants, err := s.store.ListParticipants(ctx)
	if err != nil {
		return nil, fail("ListParticipants", err)
	}

	out := make([]api.Participant, len(participants))
	for i, p := range participants {
		out[i] = toAPIParticipant(p)
	}

	slog.Debug("ListParticipants successful", "count", len(out))

	return connect.NewResponse(&api.ListParticipantsResponse{Participants: out}), nil
}
