package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/swisscoin/pkg/api"
)

// SplitServiceName is the fully-qualified name of the SplitService.
const SplitServiceName = "swisscoin.v1.SplitService"

const (
	SplitServiceCalculateSplitProcedure = "/swisscoin.v1.SplitService/CalculateSplit"
	SplitServiceCreateExpenseProcedure  = "/swisscoin.v1.SplitService/CreateExpense"
	SplitServiceGetExpenseProcedure     = "/swisscoin.v1.SplitService/GetExpense"
	SplitServiceDeleteExpenseProcedure  = "/swisscoin.v1.SplitService/DeleteExpense"
	SplitServiceListExpensesProcedure   = "/swisscoin.v1.SplitService/ListExpenses"
)

// SplitServiceHandler serves split previews and expense bookkeeping.
type SplitServiceHandler interface {
	CalculateSplit(context.Context, *connect.Request[api.CalculateSplitRequest]) (*connect.Response[api.CalculateSplitResponse], error)
	CreateExpense(context.Context, *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error)
	GetExpense(context.Context, *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error)
	DeleteExpense(context.Context, *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error)
	ListExpenses(context.Context, *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error)
}

// NewSplitServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewSplitServiceHandler(svc SplitServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	calculateSplitHandler := connect.NewUnaryHandler(SplitServiceCalculateSplitProcedure, svc.CalculateSplit, opts...)
	createExpenseHandler := connect.NewUnaryHandler(SplitServiceCreateExpenseProcedure, svc.CreateExpense, opts...)
	getExpenseHandler := connect.NewUnaryHandler(SplitServiceGetExpenseProcedure, svc.GetExpense, opts...)
	deleteExpenseHandler := connect.NewUnaryHandler(SplitServiceDeleteExpenseProcedure, svc.DeleteExpense, opts...)
	listExpensesHandler := connect.NewUnaryHandler(SplitServiceListExpensesProcedure, svc.ListExpenses, opts...)
	return "/" + SplitServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case SplitServiceCalculateSplitProcedure:
			calculateSplitHandler.ServeHTTP(w, r)
		case SplitServiceCreateExpenseProcedure:
			createExpenseHandler.ServeHTTP(w, r)
		case SplitServiceGetExpenseProcedure:
			getExpenseHandler.ServeHTTP(w, r)
		case SplitServiceDeleteExpenseProcedure:
			deleteExpenseHandler.ServeHTTP(w, r)
		case SplitServiceListExpensesProcedure:
			listExpensesHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// SplitServiceClient is a client for the SplitService.
type SplitServiceClient interface {
	CalculateSplit(context.Context, *connect.Request[api.CalculateSplitRequest]) (*connect.Response[api.CalculateSplitResponse], error)
	CreateExpense(context.Context, *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error)
	GetExpense(context.Context, *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error)
	DeleteExpense(context.Context, *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error)
	ListExpenses(context.Context, *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error)
}

// NewSplitServiceClient constructs a client for the SplitService. baseURL is the
// server root, e.g. http://localhost:8080.
func NewSplitServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) SplitServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &splitServiceClient{
		calculateSplit: connect.NewClient[api.CalculateSplitRequest, api.CalculateSplitResponse](httpClient, baseURL+SplitServiceCalculateSplitProcedure, opts...),
		createExpense:  connect.NewClient[api.CreateExpenseRequest, api.CreateExpenseResponse](httpClient, baseURL+SplitServiceCreateExpenseProcedure, opts...),
		getExpense:     connect.NewClient[api.GetExpenseRequest, api.GetExpenseResponse](httpClient, baseURL+SplitServiceGetExpenseProcedure, opts...),
		deleteExpense:  connect.NewClient[api.DeleteExpenseRequest, api.DeleteExpenseResponse](httpClient, baseURL+SplitServiceDeleteExpenseProcedure, opts...),
		listExpenses:   connect.NewClient[api.ListExpensesRequest, api.ListExpensesResponse](httpClient, baseURL+SplitServiceListExpensesProcedure, opts...),
	}
}

type splitServiceClient struct {
	calculateSplit *connect.Client[api.CalculateSplitRequest, api.CalculateSplitResponse]
	createExpense  *connect.Client[api.CreateExpenseRequest, api.CreateExpenseResponse]
	getExpense     *connect.Client[api.GetExpenseRequest, api.GetExpenseResponse]
	deleteExpense  *connect.Client[api.DeleteExpenseRequest, api.DeleteExpenseResponse]
	listExpenses   *connect.Client[api.ListExpensesRequest, api.ListExpensesResponse]
}

func (c *splitServiceClient) CalculateSplit(ctx context.Context, req *connect.Request[api.CalculateSplitRequest]) (*connect.Response[api.CalculateSplitResponse], error) {
	return c.calculateSplit.CallUnary(ctx, req)
}

func (c *splitServiceClient) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	return c.createExpense.CallUnary(ctx, req)
}

func (c *splitServiceClient) GetExpense(ctx context.Context, req *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error) {
	return c.getExpense.CallUnary(ctx, req)
}

func (c *splitServiceClient) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	return c.deleteExpense.CallUnary(ctx, req)
}

func (c *splitServiceClient) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	return c.listExpenses.CallUnary(ctx, req)
}
