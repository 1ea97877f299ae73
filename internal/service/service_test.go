package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/mmynk/swisscoin/internal/auth"
	"github.com/mmynk/swisscoin/internal/calculator"
	"github.com/mmynk/swisscoin/internal/metrics"
	"github.com/mmynk/swisscoin/internal/middleware"
	"github.com/mmynk/swisscoin/internal/models"
	"github.com/mmynk/swisscoin/internal/storage"
	"github.com/mmynk/swisscoin/internal/storage/sqlite"
	"github.com/mmynk/swisscoin/pkg/api"
	"github.com/mmynk/swisscoin/pkg/api/apiconnect"
)

// testEnv is a running server with every service mounted behind real auth.
type testEnv struct {
	store   *sqlite.SQLiteStore
	jwt     *auth.JWTManager
	metrics *metrics.Metrics

	participants  apiconnect.ParticipantServiceClient
	splits        apiconnect.SplitServiceClient
	groups        apiconnect.GroupServiceClient
	settlements   apiconnect.SettlementServiceClient
	conversations apiconnect.ConversationServiceClient
}

// testUser is a stored participant with a valid token.
type testUser struct {
	id    string
	name  string
	token string
}

func setupTestServer(t *testing.T) *testEnv {
	return setupTestServerWithOptions(t, DefaultOptions())
}

func setupTestServerWithOptions(t *testing.T, opts Options) *testEnv {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	env := &testEnv{
		store:   store,
		jwt:     auth.NewJWTManager("test-secret", time.Hour),
		metrics: metrics.New(prometheus.NewRegistry()),
	}
	opts.Metrics = env.metrics

	interceptors := connect.WithInterceptors(
		middleware.RequireAuth(env.jwt),
		middleware.LoggingInterceptor(),
		middleware.MetricsInterceptor(env.metrics),
	)

	mux := http.NewServeMux()
	mux.Handle(apiconnect.NewParticipantServiceHandler(NewParticipantService(store), interceptors))
	mux.Handle(apiconnect.NewSplitServiceHandler(NewSplitService(store, opts), interceptors))
	mux.Handle(apiconnect.NewGroupServiceHandler(NewGroupService(store), interceptors))
	mux.Handle(apiconnect.NewSettlementServiceHandler(NewSettlementService(store, opts), interceptors))
	mux.Handle(apiconnect.NewConversationServiceHandler(NewConversationService(store, opts), interceptors))

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		store.Close()
	})

	env.participants = apiconnect.NewParticipantServiceClient(http.DefaultClient, server.URL)
	env.splits = apiconnect.NewSplitServiceClient(http.DefaultClient, server.URL)
	env.groups = apiconnect.NewGroupServiceClient(http.DefaultClient, server.URL)
	env.settlements = apiconnect.NewSettlementServiceClient(http.DefaultClient, server.URL)
	env.conversations = apiconnect.NewConversationServiceClient(http.DefaultClient, server.URL)

	return env
}

// newUser stores a participant and issues a token for it.
func (e *testEnv) newUser(t *testing.T, name string) testUser {
	t.Helper()

	p := &models.Participant{Name: name}
	if err := e.store.CreateParticipant(context.Background(), p); err != nil {
		t.Fatalf("CreateParticipant(%s) failed: %v", name, err)
	}
	token, err := e.jwt.Generate(p)
	if err != nil {
		t.Fatalf("Generate(%s) failed: %v", name, err)
	}
	return testUser{id: p.ID, name: name, token: token}
}

// as builds a request authenticated as u.
func as[T any](u testUser, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	req.Header().Set("Authorization", "Bearer "+u.token)
	return req
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", want)
	}
	if got := connect.CodeOf(err); got != want {
		t.Fatalf("code = %v, want %v (error: %v)", got, want, err)
	}
}

// assertValidation checks the code and the Validation-Kind header of err.
func assertValidation(t *testing.T, err error, wantCode connect.Code, wantKind calculator.ErrorKind) {
	t.Helper()
	assertCode(t, err, wantCode)
	var connectErr *connect.Error
	if !errors.As(err, &connectErr) {
		t.Fatalf("expected *connect.Error, got %T", err)
	}
	if got := connectErr.Meta().Get(ValidationKindHeader); got != string(wantKind) {
		t.Errorf("%s = %q, want %q", ValidationKindHeader, got, wantKind)
	}
}

func assertAmount(t *testing.T, what string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(d(want)) {
		t.Errorf("%s = %s, want %s", what, got, want)
	}
}

func TestUnauthenticatedCallsAreRejected(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	calls := map[string]func() error{
		"ListParticipants": func() error {
			_, err := env.participants.ListParticipants(ctx, connect.NewRequest(&api.ListParticipantsRequest{}))
			return err
		},
		"CalculateSplit": func() error {
			_, err := env.splits.CalculateSplit(ctx, connect.NewRequest(&api.CalculateSplitRequest{Total: d("10")}))
			return err
		},
		"ListGroups": func() error {
			_, err := env.groups.ListGroups(ctx, connect.NewRequest(&api.ListGroupsRequest{}))
			return err
		},
		"ListBalances": func() error {
			_, err := env.settlements.ListBalances(ctx, connect.NewRequest(&api.ListBalancesRequest{}))
			return err
		},
		"GetConversation": func() error {
			_, err := env.conversations.GetConversation(ctx, connect.NewRequest(&api.GetConversationRequest{CounterpartID: "x"}))
			return err
		},
	}

	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			assertCode(t, call(), connect.CodeUnauthenticated)
		})
	}
}

func TestToConnectError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode connect.Code
		wantKind string
	}{
		{
			name:     "validation",
			err:      &calculator.ValidationError{Kind: calculator.KindNegativeShare, Detail: "x"},
			wantCode: connect.CodeInvalidArgument,
			wantKind: "negative_share",
		},
		{
			name:     "over-settlement",
			err:      fmt.Errorf("wrapped: %w", &calculator.ValidationError{Kind: calculator.KindSettlementExceedsBalance}),
			wantCode: connect.CodeFailedPrecondition,
			wantKind: "settlement_exceeds_balance",
		},
		{name: "no participant", err: calculator.ErrNoCurrentParticipant, wantCode: connect.CodeUnauthenticated},
		{name: "not found", err: fmt.Errorf("expense: %w", storage.ErrNotFound), wantCode: connect.CodeNotFound},
		{name: "integrity", err: storage.ErrIntegrity, wantCode: connect.CodeDataLoss},
		{name: "other", err: errors.New("boom"), wantCode: connect.CodeInternal},
		{name: "already mapped", err: connect.NewError(connect.CodePermissionDenied, errors.New("no")), wantCode: connect.CodePermissionDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := toConnectError(tt.err)
			var connectErr *connect.Error
			if !errors.As(err, &connectErr) {
				t.Fatalf("toConnectError returned %T", err)
			}
			if connectErr.Code() != tt.wantCode {
				t.Errorf("code = %v, want %v", connectErr.Code(), tt.wantCode)
			}
			if got := connectErr.Meta().Get(ValidationKindHeader); got != tt.wantKind {
				t.Errorf("kind header = %q, want %q", got, tt.wantKind)
			}
		})
	}
}

func TestFindNew(t *testing.T) {
	got := findNew([]string{"a", "b", "b", "c"}, []string{"a"})
	if len(got) != 2 || got[0] != "b" || got[1] != "c" {
		t.Errorf("findNew = %v, want [b c]", got)
	}
	if got := findNew(nil, []string{"a"}); len(got) != 0 {
		t.Errorf("findNew(nil) = %v, want empty", got)
	}
}
