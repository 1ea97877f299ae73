package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"
)

// validationKindHeader mirrors the error metadata key set by the service layer.
const validationKindHeader = "Validation-Kind"

// LoggingInterceptor logs one line per RPC. Caller mistakes are logged at
// warn, server faults at error.
func LoggingInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			resp, err := next(ctx, req)

			attrs := []slog.Attr{
				slog.String("procedure", req.Spec().Procedure),
				slog.String("participant_id", GetParticipantID(ctx)),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()),
			}
			if addr := req.Peer().Addr; addr != "" {
				attrs = append(attrs, slog.String("peer", addr))
			}
			if err == nil {
				slog.LogAttrs(ctx, slog.LevelInfo, "RPC ok", attrs...)
				return resp, nil
			}

			code := connect.CodeOf(err)
			attrs = append(attrs, slog.String("code", code.String()))
			var connectErr *connect.Error
			if errors.As(err, &connectErr) {
				attrs = append(attrs, slog.String("error", connectErr.Message()))
				if kind := connectErr.Meta().Get(validationKindHeader); kind != "" {
					attrs = append(attrs, slog.String("validation_kind", kind))
				}
			} else {
				attrs = append(attrs, slog.Any("error", err))
			}
			slog.LogAttrs(ctx, levelFor(code), "RPC failed", attrs...)
			return resp, err
		}
	}
}

func levelFor(code connect.Code) slog.Level {
	switch code {
	case connect.CodeInvalidArgument, connect.CodeNotFound, connect.CodeAlreadyExists,
		connect.CodePermissionDenied, connect.CodeUnauthenticated, connect.CodeFailedPrecondition,
		connect.CodeCanceled:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}
