package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// Config enables the websocket monitor.
type Config struct {
	Addr string `help:"Serve a websocket state monitor on this address (disabled when empty)" env:"GAMECONTROL_MONITOR_ADDR"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // local tooling
	},
}

// Server exposes /ws and a plain JSON /state endpoint.
type Server struct {
	hub         *Hub
	broadcaster *Broadcaster
	ctrl        Controller
	logger      *slog.Logger

	ln         net.Listener
	httpServer *http.Server
}

func New(h *Hub, b *Broadcaster, ctrl Controller, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{hub: h, broadcaster: b, ctrl: ctrl, logger: logger}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/state", s.handleState)
	return mux
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("WebSocket upgrade failed", "error", err)
		return
	}

	client := NewClient(s.hub, conn)
	s.hub.Register(client)
	s.broadcaster.SendFull(client)

	go client.WritePump()
	go client.ReadPump(s.ctrl, s.broadcaster)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.broadcaster.current()); err != nil {
		s.logger.Warn("Failed to write state", "error", err)
	}
}

// Listen binds addr. Serve must follow.
func (s *Server) Listen(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("monitor listen %s: %w", addr, err)
	}
	s.ln = ln
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.logger.Info("Monitor listening", "addr", ln.Addr().String())
	return nil
}

// Addr returns the bound address once Listen succeeded.
func (s *Server) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Serve blocks until Shutdown.
func (s *Server) Serve() error {
	if s.httpServer == nil {
		return errors.New("monitor not listening")
	}
	if err := s.httpServer.Serve(s.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	s.logger.Info("Shutting down monitor")
	return s.httpServer.Shutdown(ctx)
}
