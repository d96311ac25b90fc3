package testing

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/Alia5/gamecontrol/gamecontrol"
	"github.com/Alia5/gamecontrol/internal/frame"
	"github.com/Alia5/gamecontrol/internal/server/api"
)

// LoopFixture is a frame loop running on mocks.
type LoopFixture struct {
	Loop     *frame.Loop
	Source   *MockSource
	Settings *gamecontrol.MemorySettings
	Clock    *Clock
	Sender   *MockSender
}

// NewLoop builds a loop over a mock source with the default mappings.
func NewLoop(t *testing.T) *LoopFixture {
	t.Helper()
	f := &LoopFixture{
		Source:   NewMockSource(),
		Settings: gamecontrol.NewMemorySettings(),
		Clock:    NewClock(),
		Sender:   &MockSender{},
	}
	g := gamecontrol.New(gamecontrol.Options{Source: f.Source, Settings: f.Settings, Now: f.Clock.Now})
	f.Loop = frame.New(frame.Options{GameControl: g, Sender: f.Sender})
	t.Cleanup(func() { f.Loop.Do(func(g *gamecontrol.GameControl) { g.Shutdown() }) })
	return f
}

// StartAPIServer starts an API server on a free port and calls register to allow
// the caller to register the handlers needed for the test. Returns the address
// and a function to call when done.
func StartAPIServer(t *testing.T, register func(r *api.Router, apiSrv *api.Server)) (addr string, done func()) {
	t.Helper()
	return StartAPIServerWithConfig(t, api.ServerConfig{}, register)
}

// StartAPIServerWithConfig is StartAPIServer with a custom configuration.
// Addr is always replaced with a free local port.
func StartAPIServerWithConfig(t *testing.T, cfg api.ServerConfig, register func(r *api.Router, apiSrv *api.Server)) (addr string, done func()) {
	t.Helper()
	if cfg.ConnectionTimeout == 0 {
		cfg.ConnectionTimeout = 2 * time.Second
	}
	apiSrv, err := api.New("127.0.0.1:0", cfg, slog.Default())
	if err != nil {
		t.Fatalf("api init failed: %v", err)
	}
	if register != nil {
		register(apiSrv.Router(), apiSrv)
	}
	if err := apiSrv.Start(); err != nil {
		t.Fatalf("api start failed: %v", err)
	}

	done = func() {
		apiSrv.Close()
		time.Sleep(10 * time.Millisecond)
	}
	return apiSrv.Addr(), done
}

// ExecCmd dials the API server, sends cmd and reads the full response.
// The command should not include a trailing newline. Returns the response
// without the trailing newline.
func ExecCmd(t *testing.T, addr string, cmd string) string {
	t.Helper()
	c, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer c.Close()

	_, _ = fmt.Fprintf(c, "%s\x00", cmd)

	r := bufio.NewReader(c)
	line, err := r.ReadString('\n')
	if err != nil && err != io.EOF {
		t.Fatalf("read failed: %v", err)
	}

	result := strings.TrimSuffix(line, "\n")
	result = strings.TrimSuffix(result, "\r")
	return result
}
