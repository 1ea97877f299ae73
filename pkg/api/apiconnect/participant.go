package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/swisscoin/pkg/api"
)

// ParticipantServiceName is the fully-qualified name of the ParticipantService.
const ParticipantServiceName = "swisscoin.v1.ParticipantService"

const (
	ParticipantServiceCreateParticipantProcedure = "/swisscoin.v1.ParticipantService/CreateParticipant"
	ParticipantServiceListParticipantsProcedure  = "/swisscoin.v1.ParticipantService/ListParticipants"
)

// ParticipantServiceHandler serves participants and their identities.
type ParticipantServiceHandler interface {
	CreateParticipant(context.Context, *connect.Request[api.CreateParticipantRequest]) (*connect.Response[api.CreateParticipantResponse], error)
	ListParticipants(context.Context, *connect.Request[api.ListParticipantsRequest]) (*connect.Response[api.ListParticipantsResponse], error)
}

// NewParticipantServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewParticipantServiceHandler(svc ParticipantServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	createParticipantHandler := connect.NewUnaryHandler(ParticipantServiceCreateParticipantProcedure, svc.CreateParticipant, opts...)
	listParticipantsHandler := connect.NewUnaryHandler(ParticipantServiceListParticipantsProcedure, svc.ListParticipants, opts...)
	return "/" + ParticipantServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case ParticipantServiceCreateParticipantProcedure:
			createParticipantHandler.ServeHTTP(w, r)
		case ParticipantServiceListParticipantsProcedure:
			listParticipantsHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// ParticipantServiceClient is a client for the ParticipantService.
type ParticipantServiceClient interface {
	CreateParticipant(context.Context, *connect.Request[api.CreateParticipantRequest]) (*connect.Response[api.CreateParticipantResponse], error)
	ListParticipants(context.Context, *connect.Request[api.ListParticipantsRequest]) (*connect.Response[api.ListParticipantsResponse], error)
}

// NewParticipantServiceClient constructs a client for the ParticipantService. baseURL is the
// server root, e.g. http://localhost:8080.
func NewParticipantServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) ParticipantServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &participantServiceClient{
		createParticipant: connect.NewClient[api.CreateParticipantRequest, api.CreateParticipantResponse](httpClient, baseURL+ParticipantServiceCreateParticipantProcedure, opts...),
		listParticipants:  connect.NewClient[api.ListParticipantsRequest, api.ListParticipantsResponse](httpClient, baseURL+ParticipantServiceListParticipantsProcedure, opts...),
	}
}

type participantServiceClient struct {
	createParticipant *connect.Client[api.CreateParticipantRequest, api.CreateParticipantResponse]
	listParticipants  *connect.Client[api.ListParticipantsRequest, api.ListParticipantsResponse]
}

func (c *participantServiceClient) CreateParticipant(ctx context.Context, req *connect.Request[api.CreateParticipantRequest]) (*connect.Response[api.CreateParticipantResponse], error) {
	return c.createParticipant.CallUnary(ctx, req)
}

func (c *participantServiceClient) ListParticipants(ctx context.Context, req *connect.Request[api.ListParticipantsRequest]) (*connect.Response[api.ListParticipantsResponse], error) {
	return c.listParticipants.CallUnary(ctx, req)
}
