package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/swisscoin/pkg/api"
)

// GroupServiceName is the fully-qualified name of the GroupService.
const GroupServiceName = "swisscoin.v1.GroupService"

const (
	GroupServiceCreateGroupProcedure      = "/swisscoin.v1.GroupService/CreateGroup"
	GroupServiceGetGroupProcedure         = "/swisscoin.v1.GroupService/GetGroup"
	GroupServiceListGroupsProcedure       = "/swisscoin.v1.GroupService/ListGroups"
	GroupServiceAddMembersProcedure       = "/swisscoin.v1.GroupService/AddMembers"
	GroupServiceGetGroupBalancesProcedure = "/swisscoin.v1.GroupService/GetGroupBalances"
)

// GroupServiceHandler serves groups and group-scoped balances.
type GroupServiceHandler interface {
	CreateGroup(context.Context, *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error)
	GetGroup(context.Context, *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error)
	ListGroups(context.Context, *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error)
	AddMembers(context.Context, *connect.Request[api.AddMembersRequest]) (*connect.Response[api.AddMembersResponse], error)
	GetGroupBalances(context.Context, *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error)
}

// NewGroupServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewGroupServiceHandler(svc GroupServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	createGroupHandler := connect.NewUnaryHandler(GroupServiceCreateGroupProcedure, svc.CreateGroup, opts...)
	getGroupHandler := connect.NewUnaryHandler(GroupServiceGetGroupProcedure, svc.GetGroup, opts...)
	listGroupsHandler := connect.NewUnaryHandler(GroupServiceListGroupsProcedure, svc.ListGroups, opts...)
	addMembersHandler := connect.NewUnaryHandler(GroupServiceAddMembersProcedure, svc.AddMembers, opts...)
	getGroupBalancesHandler := connect.NewUnaryHandler(GroupServiceGetGroupBalancesProcedure, svc.GetGroupBalances, opts...)
	return "/" + GroupServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case GroupServiceCreateGroupProcedure:
			createGroupHandler.ServeHTTP(w, r)
		case GroupServiceGetGroupProcedure:
			getGroupHandler.ServeHTTP(w, r)
		case GroupServiceListGroupsProcedure:
			listGroupsHandler.ServeHTTP(w, r)
		case GroupServiceAddMembersProcedure:
			addMembersHandler.ServeHTTP(w, r)
		case GroupServiceGetGroupBalancesProcedure:
			getGroupBalancesHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// GroupServiceClient is a client for the GroupService.
type GroupServiceClient interface {
	CreateGroup(context.Context, *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error)
	GetGroup(context.Context, *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error)
	ListGroups(context.Context, *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error)
	AddMembers(context.Context, *connect.Request[api.AddMembersRequest]) (*connect.Response[api.AddMembersResponse], error)
	GetGroupBalances(context.Context, *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error)
}

// NewGroupServiceClient constructs a client for the GroupService. baseURL is the
// server root, e.g. http://localhost:8080.
func NewGroupServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) GroupServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &groupServiceClient{
		createGroup:      connect.NewClient[api.CreateGroupRequest, api.CreateGroupResponse](httpClient, baseURL+GroupServiceCreateGroupProcedure, opts...),
		getGroup:         connect.NewClient[api.GetGroupRequest, api.GetGroupResponse](httpClient, baseURL+GroupServiceGetGroupProcedure, opts...),
		listGroups:       connect.NewClient[api.ListGroupsRequest, api.ListGroupsResponse](httpClient, baseURL+GroupServiceListGroupsProcedure, opts...),
		addMembers:       connect.NewClient[api.AddMembersRequest, api.AddMembersResponse](httpClient, baseURL+GroupServiceAddMembersProcedure, opts...),
		getGroupBalances: connect.NewClient[api.GetGroupBalancesRequest, api.GetGroupBalancesResponse](httpClient, baseURL+GroupServiceGetGroupBalancesProcedure, opts...),
	}
}

type groupServiceClient struct {
	createGroup      *connect.Client[api.CreateGroupRequest, api.CreateGroupResponse]
	getGroup         *connect.Client[api.GetGroupRequest, api.GetGroupResponse]
	listGroups       *connect.Client[api.ListGroupsRequest, api.ListGroupsResponse]
	addMembers       *connect.Client[api.AddMembersRequest, api.AddMembersResponse]
	getGroupBalances *connect.Client[api.GetGroupBalancesRequest, api.GetGroupBalancesResponse]
}

func (c *groupServiceClient) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	return c.createGroup.CallUnary(ctx, req)
}

func (c *groupServiceClient) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	return c.getGroup.CallUnary(ctx, req)
}

func (c *groupServiceClient) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	return c.listGroups.CallUnary(ctx, req)
}

func (c *groupServiceClient) AddMembers(ctx context.Context, req *connect.Request[api.AddMembersRequest]) (*connect.Response[api.AddMembersResponse], error) {
	return c.addMembers.CallUnary(ctx, req)
}

func (c *groupServiceClient) GetGroupBalances(ctx context.Context, req *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error) {
	return c.getGroupBalances.CallUnary(ctx, req)
}
