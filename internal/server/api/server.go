package api

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"regexp"
	"strings"
	"time"

	"github.com/Alia5/gamecontrol/internal/server/api/auth"
)

var wsRegex = regexp.MustCompile(`\s`)

// Server implements a small TCP API for inspecting and configuring the
// running game control loop.
type Server struct {
	addr   string
	ln     net.Listener
	logger *slog.Logger
	router *Router
	config ServerConfig
	key    []byte
}

// New creates a new API server. Handlers are registered through Router.
// When config.Password is set every connection must complete the auth
// handshake first.
func New(addr string, config ServerConfig, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		addr:   addr,
		logger: logger,
		config: config,
		router: NewRouter(),
	}
	if config.Password != "" {
		key, err := auth.DeriveKey(config.Password)
		if err != nil {
			return nil, fmt.Errorf("derive API key: %w", err)
		}
		s.key = key
	}
	return s, nil
}

// Router returns the router used by the API server so callers can register handlers.
func (a *Server) Router() *Router { return a.router }

// Config returns the server configuration.
func (a *Server) Config() ServerConfig { return a.config }

// Addr returns the bound address after Start.
func (a *Server) Addr() string {
	if a.ln == nil {
		return a.addr
	}
	return a.ln.Addr().String()
}

// Start listens on the configured address and serves incoming API commands.
func (a *Server) Start() error {
	ln, err := net.Listen("tcp", a.addr)
	if err != nil {
		return err
	}
	a.ln = ln
	a.logger.Info("API listening", "addr", ln.Addr().String())
	go a.serve()
	return nil
}

// Close stops the API server.
func (a *Server) Close() {
	if a.ln != nil {
		_ = a.ln.Close()
	}
}

func (a *Server) serve() {
	for {
		c, err := a.ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				a.logger.Info("API server stopped")
				return
			}
			a.logger.Info("API accept error", "error", err)
			return
		}
		go a.handleConn(c)
	}
}

func (a *Server) writeError(w io.Writer, err error) {
	apiErr := WrapError(err)
	problemJSON, _ := json.Marshal(apiErr)
	fmt.Fprintf(w, "%s\n", string(problemJSON))
}

func (a *Server) writeOK(w io.Writer, rest string) {
	if rest == "" {
		fmt.Fprintln(w)
	} else {
		fmt.Fprintf(w, "%s\n", rest)
	}
}

func (a *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	connCtx, connCancel := context.WithCancel(context.Background())
	defer connCancel()

	if a.config.ConnectionTimeout > 0 {
		_ = conn.SetDeadline(time.Now().Add(a.config.ConnectionTimeout))
	}

	connLogger := a.logger.With("remote", conn.RemoteAddr().String())
	r := bufio.NewReader(conn)
	var w io.Writer = conn

	if a.key != nil {
		if !auth.IsHandshake(r) {
			connLogger.Warn("api request without authentication")
			a.writeError(w, ErrUnauthorized("password required"))
			return
		}
		sc, err := auth.Server(conn, r, a.key)
		if err != nil {
			connLogger.Warn("api authentication failed", "error", err)
			if errors.Is(err, auth.ErrInvalidPassword) {
				a.writeError(w, err)
			}
			return
		}
		r = bufio.NewReader(sc)
		w = sc
	}

	// Read until null terminator
	reqData, err := r.ReadString('\x00')
	if err != nil {
		if err == io.EOF {
			connLogger.Error("api incomplete request (no null terminator)")
		} else {
			connLogger.Error("read api data", "error", err)
		}
		return
	}
	reqData = strings.TrimSuffix(reqData, "\x00")

	if reqData == "" {
		connLogger.Error("api empty command")
		a.writeError(w, ErrBadRequest("empty request"))
		return
	}

	var path, payload string
	if loc := wsRegex.FindStringIndex(reqData); loc != nil {
		path = reqData[:loc[0]]
		payload = reqData[loc[1]:]
	} else {
		path = reqData
	}

	if path == "" {
		connLogger.Error("api empty path")
		a.writeError(w, ErrBadRequest("empty path"))
		return
	}

	path = strings.ToLower(path)
	connLogger.Debug("api cmd", "path", path)

	h, params := a.router.Match(path)
	if h == nil {
		connLogger.Error("api unknown path", "path", path)
		a.writeError(w, ErrNotFound(fmt.Sprintf("unknown path: %s", path)))
		return
	}
	req := &Request{Ctx: connCtx, Params: params, Payload: payload}
	res := &Response{}
	if err := h(req, res, connLogger); err != nil {
		connLogger.Error("api handler error", "path", path, "error", err)
		a.writeError(w, err)
		return
	}
	connLogger.Debug("api handler success", "path", path)
	a.writeOK(w, res.JSON)
}
