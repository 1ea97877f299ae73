package middleware

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/swisscoin/internal/auth"
)

type participantKey struct{}

// GetParticipantID returns the authenticated participant, or "" before auth.
func GetParticipantID(ctx context.Context) string {
	id, _ := ctx.Value(participantKey{}).(string)
	return id
}

// WithParticipantID returns a copy of ctx acting as participantID.
func WithParticipantID(ctx context.Context, participantID string) context.Context {
	return context.WithValue(ctx, participantKey{}, participantID)
}

// RequireAuth rejects calls without a valid bearer token and runs the rest
// of the chain as the participant the token names.
func RequireAuth(jwtManager *auth.JWTManager) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			token, err := bearerToken(req.Header())
			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}
			claims, err := jwtManager.Validate(token)
			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}
			return next(WithParticipantID(ctx, claims.ParticipantID()), req)
		}
	}
}

func bearerToken(h http.Header) (string, error) {
	value := h.Get("Authorization")
	if value == "" {
		return "", auth.ErrMissingToken
	}
	scheme, token, ok := strings.Cut(value, " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", auth.ErrInvalidToken
	}
	return token, nil
}
