// Package server classifies face detector frames streamed over WebSocket.
// Every connection is a session owning its own gesture tracker, so the
// debounce state of one client never leaks into another.
package server

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/esimov/gesture/config"
	gesture "github.com/esimov/gesture/core"
	"github.com/esimov/gesture/logger"
	"github.com/esimov/gesture/metrics"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Server is the WebSocket gesture classification server.
type Server struct {
	cfg        config.ServerConfig
	thresholds gesture.Thresholds
	policy     gesture.FacePolicy
	metrics    *metrics.Metrics
	logger     *zap.SugaredLogger
	upgrader   websocket.Upgrader

	mu       sync.Mutex
	sessions map[string]*session
	http     *http.Server
	listener net.Listener
}

// New creates a server from the loaded configuration.
func New(cfg *config.Config, m *metrics.Metrics) (*Server, error) {
	policy, err := cfg.Tracker.Policy()
	if err != nil {
		return nil, err
	}
	if m == nil {
		m = metrics.New()
	}

	s := &Server{
		cfg:        cfg.Server,
		thresholds: cfg.Thresholds,
		policy:     policy,
		metrics:    m,
		logger:     logger.ComponentLogger("server"),
		sessions:   make(map[string]*session),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     s.checkOrigin,
	}
	return s, nil
}

// Handler returns the HTTP handler with all the server endpoints.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.serveWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	if s.cfg.MetricsPath != "" {
		mux.Handle(s.cfg.MetricsPath, s.metrics.Handler())
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debugw("request", "method", r.Method, "path", r.URL.Path, logger.FieldRemote, r.RemoteAddr)
		mux.ServeHTTP(w, r)
	})
}

// Start listens on the configured address and serves until the context
// is cancelled or Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return errors.Wrapf(err, "listening on %s", s.cfg.Addr)
	}

	s.mu.Lock()
	s.listener = ln
	s.http = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	srv := s.http
	s.mu.Unlock()

	s.logger.Infow("gesture server listening", logger.FieldAddress, ln.Addr().String())

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.Shutdown(shutdownCtx)
	}()

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "serving")
	}
	return nil
}

// Addr returns the listening address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Shutdown stops accepting connections and closes every session.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.http
	sessions := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.Unlock()

	var err error
	if srv != nil {
		err = srv.Shutdown(ctx)
	}
	// Hijacked websocket connections are not closed by http.Server.
	for _, sess := range sessions {
		sess.close()
	}
	return err
}

// Sessions returns the number of connected sessions.
func (s *Server) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.sessions)
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warnw("websocket upgrade failed", logger.FieldError, err, logger.FieldRemote, r.RemoteAddr)
		return
	}

	tracker := gesture.NewTracker(s.thresholds,
		gesture.WithFacePolicy(s.policy),
		gesture.WithHandler(s.metrics),
	)
	limiter := rate.NewLimiter(rate.Limit(s.cfg.MaxFPS), s.cfg.Burst)
	sess := newSession(s, conn, tracker, limiter)

	s.register(sess)
	go sess.writePump()
	sess.readPump()
}

func (s *Server) register(sess *session) {
	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	s.metrics.ActiveSessions.Inc()
	s.metrics.TotalSessions.Inc()
	sess.logger.Infow("session opened", logger.FieldRemote, sess.conn.RemoteAddr().String())
}

func (s *Server) unregister(sess *session) {
	s.mu.Lock()
	_, ok := s.sessions[sess.id]
	delete(s.sessions, sess.id)
	s.mu.Unlock()

	if ok {
		s.metrics.ActiveSessions.Dec()
		sess.logger.Infow("session closed")
	}
}

// checkOrigin accepts non-browser clients (no Origin header) and the
// configured origins. Ports are ignored when comparing.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range s.cfg.AllowedOrigins {
		if allowed == "*" || origin == allowed || strings.HasPrefix(origin, allowed+":") {
			return true
		}
	}
	s.logger.Warnw("rejected websocket origin", "origin", origin)
	return false
}
