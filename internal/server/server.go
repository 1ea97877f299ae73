// Package server assembles the HTTP router: Connect services behind auth,
// CORS for browser clients, Prometheus metrics and a health check.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmynk/swisscoin/internal/auth"
	"github.com/mmynk/swisscoin/internal/metrics"
	"github.com/mmynk/swisscoin/internal/middleware"
	"github.com/mmynk/swisscoin/internal/service"
	"github.com/mmynk/swisscoin/pkg/api/apiconnect"
)

// Services are the RPC handlers to mount.
type Services struct {
	Participants  apiconnect.ParticipantServiceHandler
	Splits        apiconnect.SplitServiceHandler
	Groups        apiconnect.GroupServiceHandler
	Settlements   apiconnect.SettlementServiceHandler
	Conversations apiconnect.ConversationServiceHandler
}

// Options configure the router.
type Options struct {
	CORSOrigins []string
	JWTManager  *auth.JWTManager
	Metrics     *metrics.Metrics
	// Gatherer backs /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer
}

// New builds the HTTP handler serving every service.
func New(svcs Services, opts Options) http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.Recoverer)
	router.Use(requestLogger)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", "Connect-Protocol-Version", "Connect-Timeout-Ms"},
		ExposedHeaders: []string{"Connect-Protocol-Version", "Connect-Timeout-Ms", service.ValidationKindHeader},
		MaxAge:         300,
	}))

	interceptors := connect.WithInterceptors(
		middleware.RequireAuth(opts.JWTManager),
		middleware.LoggingInterceptor(),
		middleware.MetricsInterceptor(opts.Metrics),
	)

	mount := func(path string, handler http.Handler) {
		router.Handle(path+"*", handler)
	}
	mount(apiconnect.NewParticipantServiceHandler(svcs.Participants, interceptors))
	mount(apiconnect.NewSplitServiceHandler(svcs.Splits, interceptors))
	mount(apiconnect.NewGroupServiceHandler(svcs.Groups, interceptors))
	mount(apiconnect.NewSettlementServiceHandler(svcs.Settlements, interceptors))
	mount(apiconnect.NewConversationServiceHandler(svcs.Conversations, interceptors))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	if opts.Gatherer != nil {
		router.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	return router
}

// requestLogger logs all incoming requests
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		slog.Debug("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"remote_addr", r.RemoteAddr,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
