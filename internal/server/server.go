// internal/server/server.go
package server

import (
	"context"
	"net/http"
	"time"

	"jobboard-agent/internal/agent"
	"jobboard-agent/internal/board"
	"jobboard-agent/internal/common/logger"
	"jobboard-agent/internal/common/observability"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

type Options struct {
	CORSOrigin string
	ReadOnly   bool
}

// CheckFunc reports whether one dependency is usable.
type CheckFunc func(ctx context.Context) error

// Server hosts the agent API and the board endpoints.
type Server struct {
	runner *agent.Runner
	board  *board.Board
	obs    *observability.Observability
	checks map[string]CheckFunc
	opts   Options
	logger logger.Logger
}

func New(runner *agent.Runner, b *board.Board, obs *observability.Observability, opts Options, log logger.Logger) *Server {
	if obs == nil {
		obs = &observability.Observability{}
	}
	return &Server{
		runner: runner,
		board:  b,
		obs:    obs,
		checks: make(map[string]CheckFunc),
		opts:   opts,
		logger: log.WithFields(map[string]interface{}{"component": "server"}),
	}
}

// AddReadinessCheck registers a dependency probed by /ready.
func (s *Server) AddReadinessCheck(name string, fn CheckFunc) {
	s.checks[name] = fn
}

// Handler returns the routed, instrumented HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/agent-intent", s.handleIntent)
	mux.HandleFunc("POST /api/agent-run", s.handleRun)
	mux.HandleFunc("POST /api/agent-undo", s.mutating(s.handleUndo))

	mux.HandleFunc("GET /api/jobs", s.handleListJobs)
	mux.HandleFunc("POST /api/jobs", s.mutating(s.handleCreateJob))
	mux.HandleFunc("DELETE /api/jobs/{id}", s.mutating(s.handleDeleteJob))
	mux.HandleFunc("GET /api/jobs/{id}/followup", s.handleFollowupDraft)

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ready", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	return s.cors(s.instrument(mux))
}

// HTTPServer wraps Handler with the configured timeouts.
func (s *Server) HTTPServer(addr string, readTimeout, writeTimeout time.Duration) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readTimeout,
		WriteTimeout:      writeTimeout,
	}
}
