package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/swisscoin/pkg/api"
)

// SettlementServiceName is the fully-qualified name of the SettlementService.
const SettlementServiceName = "swisscoin.v1.SettlementService"

const (
	SettlementServiceGetBalanceProcedure       = "/swisscoin.v1.SettlementService/GetBalance"
	SettlementServiceListBalancesProcedure     = "/swisscoin.v1.SettlementService/ListBalances"
	SettlementServiceCreateSettlementProcedure = "/swisscoin.v1.SettlementService/CreateSettlement"
	SettlementServiceDeleteSettlementProcedure = "/swisscoin.v1.SettlementService/DeleteSettlement"
	SettlementServiceCreateReminderProcedure   = "/swisscoin.v1.SettlementService/CreateReminder"
	SettlementServiceMarkReminderReadProcedure = "/swisscoin.v1.SettlementService/MarkReminderRead"
	SettlementServiceClearReminderProcedure    = "/swisscoin.v1.SettlementService/ClearReminder"
	SettlementServiceDeleteReminderProcedure   = "/swisscoin.v1.SettlementService/DeleteReminder"
)

// SettlementServiceHandler serves pairwise balances, settlements and payment reminders.
type SettlementServiceHandler interface {
	GetBalance(context.Context, *connect.Request[api.GetBalanceRequest]) (*connect.Response[api.GetBalanceResponse], error)
	ListBalances(context.Context, *connect.Request[api.ListBalancesRequest]) (*connect.Response[api.ListBalancesResponse], error)
	CreateSettlement(context.Context, *connect.Request[api.CreateSettlementRequest]) (*connect.Response[api.CreateSettlementResponse], error)
	DeleteSettlement(context.Context, *connect.Request[api.DeleteSettlementRequest]) (*connect.Response[api.DeleteSettlementResponse], error)
	CreateReminder(context.Context, *connect.Request[api.CreateReminderRequest]) (*connect.Response[api.CreateReminderResponse], error)
	MarkReminderRead(context.Context, *connect.Request[api.ReminderRequest]) (*connect.Response[api.ReminderResponse], error)
	ClearReminder(context.Context, *connect.Request[api.ReminderRequest]) (*connect.Response[api.ReminderResponse], error)
	DeleteReminder(context.Context, *connect.Request[api.ReminderRequest]) (*connect.Response[api.DeleteReminderResponse], error)
}

// NewSettlementServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewSettlementServiceHandler(svc SettlementServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	getBalanceHandler := connect.NewUnaryHandler(SettlementServiceGetBalanceProcedure, svc.GetBalance, opts...)
	listBalancesHandler := connect.NewUnaryHandler(SettlementServiceListBalancesProcedure, svc.ListBalances, opts...)
	createSettlementHandler := connect.NewUnaryHandler(SettlementServiceCreateSettlementProcedure, svc.CreateSettlement, opts...)
	deleteSettlementHandler := connect.NewUnaryHandler(SettlementServiceDeleteSettlementProcedure, svc.DeleteSettlement, opts...)
	createReminderHandler := connect.NewUnaryHandler(SettlementServiceCreateReminderProcedure, svc.CreateReminder, opts...)
	markReminderReadHandler := connect.NewUnaryHandler(SettlementServiceMarkReminderReadProcedure, svc.MarkReminderRead, opts...)
	clearReminderHandler := connect.NewUnaryHandler(SettlementServiceClearReminderProcedure, svc.ClearReminder, opts...)
	deleteReminderHandler := connect.NewUnaryHandler(SettlementServiceDeleteReminderProcedure, svc.DeleteReminder, opts...)
	return "/" + SettlementServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case SettlementServiceGetBalanceProcedure:
			getBalanceHandler.ServeHTTP(w, r)
		case SettlementServiceListBalancesProcedure:
			listBalancesHandler.ServeHTTP(w, r)
		case SettlementServiceCreateSettlementProcedure:
			createSettlementHandler.ServeHTTP(w, r)
		case SettlementServiceDeleteSettlementProcedure:
			deleteSettlementHandler.ServeHTTP(w, r)
		case SettlementServiceCreateReminderProcedure:
			createReminderHandler.ServeHTTP(w, r)
		case SettlementServiceMarkReminderReadProcedure:
			markReminderReadHandler.ServeHTTP(w, r)
		case SettlementServiceClearReminderProcedure:
			clearReminderHandler.ServeHTTP(w, r)
		case SettlementServiceDeleteReminderProcedure:
			deleteReminderHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// SettlementServiceClient is a client for the SettlementService.
type SettlementServiceClient interface {
	GetBalance(context.Context, *connect.Request[api.GetBalanceRequest]) (*connect.Response[api.GetBalanceResponse], error)
	ListBalances(context.Context, *connect.Request[api.ListBalancesRequest]) (*connect.Response[api.ListBalancesResponse], error)
	CreateSettlement(context.Context, *connect.Request[api.CreateSettlementRequest]) (*connect.Response[api.CreateSettlementResponse], error)
	DeleteSettlement(context.Context, *connect.Request[api.DeleteSettlementRequest]) (*connect.Response[api.DeleteSettlementResponse], error)
	CreateReminder(context.Context, *connect.Request[api.CreateReminderRequest]) (*connect.Response[api.CreateReminderResponse], error)
	MarkReminderRead(context.Context, *connect.Request[api.ReminderRequest]) (*connect.Response[api.ReminderResponse], error)
	ClearReminder(context.Context, *connect.Request[api.ReminderRequest]) (*connect.Response[api.ReminderResponse], error)
	DeleteReminder(context.Context, *connect.Request[api.ReminderRequest]) (*connect.Response[api.DeleteReminderResponse], error)
}

// NewSettlementServiceClient constructs a client for the SettlementService. baseURL is the
// server root, e.g. http://localhost:8080.
func NewSettlementServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) SettlementServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &settlementServiceClient{
		getBalance:       connect.NewClient[api.GetBalanceRequest, api.GetBalanceResponse](httpClient, baseURL+SettlementServiceGetBalanceProcedure, opts...),
		listBalances:     connect.NewClient[api.ListBalancesRequest, api.ListBalancesResponse](httpClient, baseURL+SettlementServiceListBalancesProcedure, opts...),
		createSettlement: connect.NewClient[api.CreateSettlementRequest, api.CreateSettlementResponse](httpClient, baseURL+SettlementServiceCreateSettlementProcedure, opts...),
		deleteSettlement: connect.NewClient[api.DeleteSettlementRequest, api.DeleteSettlementResponse](httpClient, baseURL+SettlementServiceDeleteSettlementProcedure, opts...),
		createReminder:   connect.NewClient[api.CreateReminderRequest, api.CreateReminderResponse](httpClient, baseURL+SettlementServiceCreateReminderProcedure, opts...),
		markReminderRead: connect.NewClient[api.ReminderRequest, api.ReminderResponse](httpClient, baseURL+SettlementServiceMarkReminderReadProcedure, opts...),
		clearReminder:    connect.NewClient[api.ReminderRequest, api.ReminderResponse](httpClient, baseURL+SettlementServiceClearReminderProcedure, opts...),
		deleteReminder:   connect.NewClient[api.ReminderRequest, api.DeleteReminderResponse](httpClient, baseURL+SettlementServiceDeleteReminderProcedure, opts...),
	}
}

type settlementServiceClient struct {
	getBalance       *connect.Client[api.GetBalanceRequest, api.GetBalanceResponse]
	listBalances     *connect.Client[api.ListBalancesRequest, api.ListBalancesResponse]
	createSettlement *connect.Client[api.CreateSettlementRequest, api.CreateSettlementResponse]
	deleteSettlement *connect.Client[api.DeleteSettlementRequest, api.DeleteSettlementResponse]
	createReminder   *connect.Client[api.CreateReminderRequest, api.CreateReminderResponse]
	markReminderRead *connect.Client[api.ReminderRequest, api.ReminderResponse]
	clearReminder    *connect.Client[api.ReminderRequest, api.ReminderResponse]
	deleteReminder   *connect.Client[api.ReminderRequest, api.DeleteReminderResponse]
}

func (c *settlementServiceClient) GetBalance(ctx context.Context, req *connect.Request[api.GetBalanceRequest]) (*connect.Response[api.GetBalanceResponse], error) {
	return c.getBalance.CallUnary(ctx, req)
}

func (c *settlementServiceClient) ListBalances(ctx context.Context, req *connect.Request[api.ListBalancesRequest]) (*connect.Response[api.ListBalancesResponse], error) {
	return c.listBalances.CallUnary(ctx, req)
}

func (c *settlementServiceClient) CreateSettlement(ctx context.Context, req *connect.Request[api.CreateSettlementRequest]) (*connect.Response[api.CreateSettlementResponse], error) {
	return c.createSettlement.CallUnary(ctx, req)
}

func (c *settlementServiceClient) DeleteSettlement(ctx context.Context, req *connect.Request[api.DeleteSettlementRequest]) (*connect.Response[api.DeleteSettlementResponse], error) {
	return c.deleteSettlement.CallUnary(ctx, req)
}

func (c *settlementServiceClient) CreateReminder(ctx context.Context, req *connect.Request[api.CreateReminderRequest]) (*connect.Response[api.CreateReminderResponse], error) {
	return c.createReminder.CallUnary(ctx, req)
}

func (c *settlementServiceClient) MarkReminderRead(ctx context.Context, req *connect.Request[api.ReminderRequest]) (*connect.Response[api.ReminderResponse], error) {
	return c.markReminderRead.CallUnary(ctx, req)
}

func (c *settlementServiceClient) ClearReminder(ctx context.Context, req *connect.Request[api.ReminderRequest]) (*connect.Response[api.ReminderResponse], error) {
	return c.clearReminder.CallUnary(ctx, req)
}

func (c *settlementServiceClient) DeleteReminder(ctx context.Context, req *connect.Request[api.ReminderRequest]) (*connect.Response[api.DeleteReminderResponse], error) {
	return c.deleteReminder.CallUnary(ctx, req)
}
