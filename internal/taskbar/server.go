package taskbar

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/niritools/taskbar/logging"
)

// Server exposes the daemon state to the rendering layer over HTTP on a unix
// socket.
type Server struct {
	logger *logrus.Entry
	server *http.Server
	engine *Engine
}

// NewServer creates a Server over the given engine.
func NewServer(engine *Engine) *Server {
	return &Server{
		logger: logging.NewLogger("server"),
		engine: engine,
	}
}

// ListenAndServe starts the daemon on the given unix socket path.
// It blocks until the server stops or fails.
func (s *Server) ListenAndServe(socketPath string) error {
	// Cleanup stale socket
	if _, err := os.Stat(socketPath); err == nil {
		if err := os.Remove(socketPath); err != nil {
			return fmt.Errorf("failed to remove stale socket: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(socketPath), 0755); err != nil {
		return fmt.Errorf("failed to create socket directory: %w", err)
	}

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return fmt.Errorf("failed to listen on socket: %w", err)
	}

	// The socket carries window titles; keep it owner-only.
	if err := os.Chmod(socketPath, 0600); err != nil {
		_ = listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.server = &http.Server{
		Handler: h2c.NewHandler(s.Handler(), &http2.Server{}),
	}

	s.logger.WithField("socket", socketPath).Info("Daemon listening")
	return s.server.Serve(listener)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// Handler returns the API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("GET /api/state", s.handleGetState)
	mux.HandleFunc("GET /api/stream", s.handleStream)
	mux.HandleFunc("GET /api/config", s.handleGetConfig)
	mux.HandleFunc("POST /api/windows/{id}/activate", s.handleActivateWindow)

	return mux
}

// handleGetState returns the current snapshot and urgent set as JSON.
func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	state := s.engine.Store().Get()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(state)
}

// handleGetConfig returns the active configuration as JSON so the rendering
// layer can pick up its app class rules.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.engine.Config())
}

// handleActivateWindow proxies a focus request through to the compositor.
func (s *Server) handleActivateWindow(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid window id", http.StatusBadRequest)
		return
	}

	if err := s.engine.ActivateWindow(id); err != nil {
		s.logger.WithError(err).WithField("window", id).Error("Activation failed")
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	s.logger.WithField("window", id).Debug("Window activated")
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]uint64{"activated": id})
}

// handleStream serves the NDJSON update stream. The current state is sent as
// a synthetic snapshot update first, so clients have data before the next
// compositor event.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")

	store := s.engine.Store()
	ch := store.Subscribe()
	defer store.Unsubscribe(ch)

	s.logger.Debug("Stream client connected")

	encoder := json.NewEncoder(w)

	state := store.Get()
	if state.Snapshot != nil {
		initial := Update{
			Type:      UpdateSnapshot,
			Snapshot:  state.Snapshot,
			UrgentIDs: state.UrgentIDs,
		}
		if err := encoder.Encode(initial); err != nil {
			return
		}
	}
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("Stream client disconnected")
			return
		case update := <-ch:
			if err := encoder.Encode(update); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
