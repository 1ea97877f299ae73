package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/swisscoin/pkg/api"
)

// ConversationServiceName is the fully-qualified name of the ConversationService.
const ConversationServiceName = "swisscoin.v1.ConversationService"

const (
	ConversationServiceGetConversationProcedure = "/swisscoin.v1.ConversationService/GetConversation"
	ConversationServiceSendMessageProcedure     = "/swisscoin.v1.ConversationService/SendMessage"
)

// ConversationServiceHandler serves activity feeds and messages.
type ConversationServiceHandler interface {
	GetConversation(context.Context, *connect.Request[api.GetConversationRequest]) (*connect.Response[api.GetConversationResponse], error)
	SendMessage(context.Context, *connect.Request[api.SendMessageRequest]) (*connect.Response[api.SendMessageResponse], error)
}

// NewConversationServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewConversationServiceHandler(svc ConversationServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	getConversationHandler := connect.NewUnaryHandler(ConversationServiceGetConversationProcedure, svc.GetConversation, opts...)
	sendMessageHandler := connect.NewUnaryHandler(ConversationServiceSendMessageProcedure, svc.SendMessage, opts...)
	return "/" + ConversationServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case ConversationServiceGetConversationProcedure:
			getConversationHandler.ServeHTTP(w, r)
		case ConversationServiceSendMessageProcedure:
			sendMessageHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// ConversationServiceClient is a client for the ConversationService.
type ConversationServiceClient interface {
	GetConversation(context.Context, *connect.Request[api.GetConversationRequest]) (*connect.Response[api.GetConversationResponse], error)
	SendMessage(context.Context, *connect.Request[api.SendMessageRequest]) (*connect.Response[api.SendMessageResponse], error)
}

// NewConversationServiceClient constructs a client for the ConversationService. baseURL is the
// server root, e.g. http://localhost:8080.
func NewConversationServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) ConversationServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &conversationServiceClient{
		getConversation: connect.NewClient[api.GetConversationRequest, api.GetConversationResponse](httpClient, baseURL+ConversationServiceGetConversationProcedure, opts...),
		sendMessage:     connect.NewClient[api.SendMessageRequest, api.SendMessageResponse](httpClient, baseURL+ConversationServiceSendMessageProcedure, opts...),
	}
}

type conversationServiceClient struct {
	getConversation *connect.Client[api.GetConversationRequest, api.GetConversationResponse]
	sendMessage     *connect.Client[api.SendMessageRequest, api.SendMessageResponse]
}

func (c *conversationServiceClient) GetConversation(ctx context.Context, req *connect.Request[api.GetConversationRequest]) (*connect.Response[api.GetConversationResponse], error) {
	return c.getConversation.CallUnary(ctx, req)
}

func (c *conversationServiceClient) SendMessage(ctx context.Context, req *connect.Request[api.SendMessageRequest]) (*connect.Response[api.SendMessageResponse], error) {
	return c.sendMessage.CallUnary(ctx, req)
}
