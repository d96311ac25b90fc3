package apiclient

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/Alia5/gamecontrol/apitypes"
	"github.com/Alia5/gamecontrol/internal/server/api/auth"
)

// Config controls timeouts and authentication of a Transport. Zero
// timeouts disable the corresponding deadline.
type Config struct {
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// Password switches to the authenticated, encrypted protocol. It must
	// match the server's password.
	Password string
}

func defaultConfig() Config {
	return Config{
		DialTimeout:  3 * time.Second,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
}

// Responder produces the raw response line for a mocked request.
type Responder func(path string, payload any, pathParams map[string]string) (string, error)

// Transport speaks the wire protocol of the control API: one request per
// connection, written as `<path>[ <payload>]\x00`, answered by a single
// response terminated by `\n` after which the server closes the
// connection. With a password the exchange runs inside the encrypted
// stream set up by the auth handshake.
type Transport struct {
	addr string
	cfg  Config
	mock Responder

	keyOnce sync.Once
	key     []byte
	keyErr  error
}

func NewTransport(addr string) *Transport { return NewTransportWithConfig(addr, nil) }

// NewTransportWithPassword creates a transport for a password protected
// server using the default timeouts.
func NewTransportWithPassword(addr, password string) *Transport {
	cfg := defaultConfig()
	cfg.Password = password
	return NewTransportWithConfig(addr, &cfg)
}

// NewTransportWithConfig creates a transport; a nil cfg uses the defaults.
func NewTransportWithConfig(addr string, cfg *Config) *Transport {
	c := defaultConfig()
	if cfg != nil {
		c = *cfg
	}
	return &Transport{addr: addr, cfg: c}
}

// NewMockTransport creates a transport that answers through responder
// without touching the network.
func NewMockTransport(responder Responder) *Transport {
	return &Transport{addr: "mock", mock: responder, cfg: defaultConfig()}
}

// Do sends a request and returns the response without its trailing newline.
// payload may be nil, a string, a []byte or any JSON marshalable value.
func (t *Transport) Do(path string, payload any, pathParams map[string]string) (string, error) {
	return t.DoCtx(context.Background(), path, payload, pathParams)
}

// DoCtx is Do bounded by ctx as well as the configured timeouts.
func (t *Transport) DoCtx(ctx context.Context, path string, payload any, pathParams map[string]string) (string, error) {
	if t.mock != nil {
		return t.mock(path, payload, pathParams)
	}
	req, err := encodeRequest(path, payload, pathParams)
	if err != nil {
		return "", err
	}

	conn, err := t.dial(ctx)
	if err != nil {
		return "", err
	}
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Now()) })
	defer stop()

	var rw io.ReadWriter = conn
	if t.cfg.Password != "" {
		setDeadline(ctx, conn.SetDeadline, t.cfg.ReadTimeout)
		if rw, err = t.authenticate(conn); err != nil {
			return "", err
		}
	}

	setDeadline(ctx, conn.SetWriteDeadline, t.cfg.WriteTimeout)
	if _, err := rw.Write(req); err != nil {
		return "", fmt.Errorf("write: %w", err)
	}
	setDeadline(ctx, conn.SetReadDeadline, t.cfg.ReadTimeout)
	resp, err := io.ReadAll(rw)
	if err != nil && len(resp) == 0 {
		if ctxErr := contextErr(ctx); ctxErr != nil {
			err = ctxErr
		}
		return "", fmt.Errorf("read: %w", err)
	}
	return strings.TrimSuffix(string(resp), "\n"), nil
}

func (t *Transport) dial(ctx context.Context) (net.Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	d := &net.Dialer{Timeout: t.cfg.DialTimeout}
	conn, err := d.DialContext(ctx, "tcp", t.addr)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	if tcp, ok := conn.(*net.TCPConn); ok {
		if err := tcp.SetNoDelay(true); err != nil {
			slog.Warn("failed to set TCP_NODELAY", "error", err)
		}
	}
	return conn, nil
}

// authenticate runs the client side of the auth handshake. The derived key
// is cached across requests.
func (t *Transport) authenticate(conn net.Conn) (net.Conn, error) {
	t.keyOnce.Do(func() { t.key, t.keyErr = auth.DeriveKey(t.cfg.Password) })
	if t.keyErr != nil {
		return nil, t.keyErr
	}
	sc, err := auth.Client(conn, bufio.NewReader(conn), t.key)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidPassword) {
			return nil, &apitypes.ApiError{
				Status: http.StatusUnauthorized,
				Title:  http.StatusText(http.StatusUnauthorized),
				Detail: err.Error(),
			}
		}
		return nil, fmt.Errorf("handshake: %w", err)
	}
	return sc, nil
}

// contextErr is ctx.Err, also reporting a deadline that has passed but
// whose timer has not fired yet.
func contextErr(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if dl, ok := ctx.Deadline(); ok && !time.Now().Before(dl) {
		return context.DeadlineExceeded
	}
	return nil
}

// setDeadline applies the timeout d, capped by ctx.
func setDeadline(ctx context.Context, set func(time.Time) error, d time.Duration) {
	var at time.Time
	if d > 0 {
		at = time.Now().Add(d)
	}
	if dl, ok := ctx.Deadline(); ok && (at.IsZero() || dl.Before(at)) {
		at = dl
	}
	if ctx.Err() != nil {
		at = time.Now()
	}
	_ = set(at)
}

// encodeRequest renders the null terminated request line.
func encodeRequest(pattern string, payload any, params map[string]string) ([]byte, error) {
	path := pattern
	for k, v := range params {
		path = strings.ReplaceAll(path, "{"+k+"}", url.PathEscape(v))
	}
	buf := []byte(strings.ToLower(path))

	var body []byte
	switch p := payload.(type) {
	case nil:
	case []byte:
		body = p
	case string:
		body = []byte(p)
	default:
		b, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("encode payload: %w", err)
		}
		body = b
	}
	if len(body) > 0 {
		buf = append(buf, ' ')
		buf = append(buf, body...)
	}
	return append(buf, '\x00'), nil
}
