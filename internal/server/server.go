package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Server owns the relay's shared state: the room registry, the set of live
// sessions, and the HTTP listener that upgrades connections. Everything a
// session needs is passed to it here; there are no package-level globals.
type Server struct {
	cfg      Config
	log      zerolog.Logger
	registry *Registry
	tracker  *sessionTracker
	origins  *originChecker
	upgrader websocket.Upgrader
	http     *http.Server
}

// New assembles a server from its configuration. Call Start to bind the
// listener.
func New(cfg Config, log zerolog.Logger) *Server {
	cfg = cfg.sanitized()

	s := &Server{
		cfg:      cfg,
		log:      log,
		registry: NewRegistry(cfg.RoomBuffer),
		tracker:  newSessionTracker(),
		origins:  newOriginChecker(cfg.AllowedOrigins, log),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.origins.check,
	}
	s.http = &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      s.routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Registry exposes the room registry, mainly for tests.
func (s *Server) Registry() *Registry {
	return s.registry
}

// Handler returns the server's HTTP handler. Tests mount it on httptest
// servers instead of binding a real port.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleHealth)
	mux.HandleFunc("/ws", s.handleWS)
	return mux
}

// Start binds the listen address and serves until Shutdown is called or the
// listener fails. A bind failure is fatal and reported to the caller.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.cfg.ListenAddr).Msg("listening")
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("serving on %s: %w", s.cfg.ListenAddr, err)
	}
	return nil
}

// Shutdown stops accepting connections, force-closes live sessions, and
// waits for them to drain within the configured timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("shutting down")

	if err := s.http.Shutdown(ctx); err != nil {
		s.log.Warn().Err(err).Msg("HTTP listener shutdown")
	}
	if err := s.tracker.closeAll(s.cfg.ShutdownTimeout); err != nil {
		return fmt.Errorf("draining sessions: %w", err)
	}

	s.log.Info().Msg("shutdown complete")
	return nil
}

// handleWS upgrades the request and hands the connection to a new session
// actor. Each connection gets its own goroutine; the listener never touches
// per-session state afterwards.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "WebSocket endpoint only accepts GET requests", http.StatusMethodNotAllowed)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("WebSocket upgrade failed")
		return
	}

	s.tracker.run(NewSession(conn, s.registry, s.cfg, s.log))
}

// handleHealth reports liveness as plain text.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = fmt.Fprint(w, "parlor relay is running")
}
