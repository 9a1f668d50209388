// Package server assembles the HTTP surface: the Connect services, the
// export and receipt downloads and the metrics endpoint.
package server

import (
	"log/slog"
	"net/http"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/eventsplit/internal/api"
	"github.com/mmynk/eventsplit/internal/auth"
	"github.com/mmynk/eventsplit/internal/export"
	"github.com/mmynk/eventsplit/internal/middleware"
	"github.com/mmynk/eventsplit/internal/service"
	"github.com/mmynk/eventsplit/internal/settle"
)

// Server wires the core service to HTTP.
type Server struct {
	core          *settle.Service
	exporter      *export.Exporter
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	registry      *prometheus.Registry
	metrics       *middleware.Metrics
	metricsOnAPI  bool
	logger        *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithAuth puts every route except AuthService behind the shared-password
// gate when authenticator is enabled.
func WithAuth(authenticator auth.Authenticator, jwtManager *auth.JWTManager) Option {
	return func(s *Server) {
		s.authenticator = authenticator
		s.jwtManager = jwtManager
	}
}

// WithExporter sets the exporter used by the download route.
func WithExporter(exporter *export.Exporter) Option {
	return func(s *Server) {
		s.exporter = exporter
	}
}

// WithMetricsOnAPI also serves /metrics from Handler, for deployments
// without a separate metrics listener.
func WithMetricsOnAPI() Option {
	return func(s *Server) {
		s.metricsOnAPI = true
	}
}

// WithLogger specifies the logger object to use for logging messages
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// New creates a Server. Each Server owns its own metrics registry.
func New(core *settle.Service, opts ...Option) *Server {
	s := &Server{
		core:     core,
		registry: prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.exporter == nil {
		s.exporter = export.New()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.authenticator == nil {
		s.authenticator, _ = auth.NewSharedPassword("", "")
	}
	s.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	s.metrics = middleware.NewMetrics(s.registry)
	return s
}

func (s *Server) gated() bool {
	return s.authenticator.Enabled() && s.jwtManager != nil
}

// protect wraps a plain HTTP handler with the bearer check when the gate
// is on.
func (s *Server) protect(h http.Handler) http.Handler {
	if !s.gated() {
		return h
	}
	return middleware.RequireBearer(s.jwtManager, h)
}

// Handler returns the full API handler, h2c-wrapped.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	base := []connect.Interceptor{middleware.LoggingInterceptor(), s.metrics.Interceptor()}
	protected := base
	if s.gated() {
		protected = append(append([]connect.Interceptor(nil), base...), middleware.RequireAuth(s.jwtManager))
	}

	mux.Handle(api.NewEventServiceHandler(
		service.NewEventService(s.core),
		connect.WithInterceptors(protected...),
	))
	mux.Handle(api.NewSettlementServiceHandler(
		service.NewSettlementService(s.core),
		connect.WithInterceptors(protected...),
	))

	jwtManager := s.jwtManager
	if jwtManager == nil {
		jwtManager = auth.NewJWTManager("", 0)
	}
	mux.Handle(api.NewAuthServiceHandler(
		service.NewAuthService(s.authenticator, jwtManager, s.logger),
		connect.WithInterceptors(base...),
	))

	mux.Handle("GET /export/{event}", s.protect(http.HandlerFunc(s.handleExport)))
	mux.Handle("GET /receipts/{event}/{expense}/{name}", s.protect(http.HandlerFunc(s.handleReceipt)))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	if s.metricsOnAPI {
		mux.Handle("GET /metrics", s.MetricsHandler())
	}

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	return h2c.NewHandler(middleware.LogHTTP(middleware.CORS(mux)), &http2.Server{})
}

// MetricsHandler serves the Prometheus registry.
func (s *Server) MetricsHandler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{Registry: s.registry}))
	return mux
}
