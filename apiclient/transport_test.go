package apiclient_test

import (
	"bufio"
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/gamecontrol/apiclient"
	"github.com/Alia5/gamecontrol/apitypes"
	"github.com/Alia5/gamecontrol/internal/server/api"
	th "github.com/Alia5/gamecontrol/internal/testing"
)

// serveOnce accepts one connection, reports the request it read and
// answers with response.
func serveOnce(t *testing.T, response string) (addr string, requests <-chan string) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	got := make(chan string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.SetDeadline(time.Now().Add(2 * time.Second))
		req, _ := bufio.NewReader(conn).ReadString('\x00')
		got <- req
		_, _ = conn.Write([]byte(response))
	}()
	return ln.Addr().String(), got
}

func TestTransportRequestLine(t *testing.T) {
	type testCase struct {
		name    string
		path    string
		params  map[string]string
		payload any
		want    string
	}
	cases := []testCase{
		{name: "nil payload", path: "state", want: "state\x00"},
		{name: "empty string payload", path: "state", payload: "", want: "state\x00"},
		{name: "bytes payload", path: "mode", payload: []byte("flycam"), want: "mode flycam\x00"},
		{name: "newline in payload", path: "echo", payload: "a\nb", want: "echo a\nb\x00"},
		{name: "json payload", path: "flags", payload: map[string]int{"x": 1}, want: "flags {\"x\":1}\x00"},
		{
			name:    "path params escaped and lowercased",
			path:    "Action/{name}/SET",
			params:  map[string]string{"name": "Push/Up"},
			payload: "AXIS_1+",
			want:    "action/push%2fup/set AXIS_1+\x00",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			addr, requests := serveOnce(t, "ok\n")
			out, err := apiclient.NewTransport(addr).Do(tc.path, tc.payload, tc.params)
			require.NoError(t, err)
			assert.Equal(t, "ok", out)
			assert.Equal(t, tc.want, <-requests)
		})
	}
}

func TestTransportRejectsUnencodablePayload(t *testing.T) {
	_, err := apiclient.NewTransport("127.0.0.1:9").Do("flags", make(chan int), nil)
	assert.ErrorContains(t, err, "encode payload")
}

func TestTransportMultiLineResponse(t *testing.T) {
	addr, _ := serveOnce(t, "{\n  \"a\": 1\n}\n")
	out, err := apiclient.NewTransport(addr).Do("echo", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": 1\n}", out)
}

func TestTransportContextCancelsRead(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		time.Sleep(time.Second)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	start := time.Now()
	_, err = apiclient.NewTransport(ln.Addr().String()).DoCtx(ctx, "state", nil, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestEncryptedTransport(t *testing.T) {
	addr, done := th.StartAPIServerWithConfig(t, api.ServerConfig{Password: "correct horse"}, func(r *api.Router, _ *api.Server) {
		r.Register("echo/{word}", func(req *api.Request, res *api.Response, _ *slog.Logger) error {
			b, _ := json.Marshal(map[string]string{"word": req.Params["word"], "payload": req.Payload})
			res.JSON = string(b)
			return nil
		})
	})
	defer done()

	type testCase struct {
		name       string
		transport  *apiclient.Transport
		wantStatus int
	}
	cases := []testCase{
		{name: "matching password", transport: apiclient.NewTransportWithPassword(addr, "correct horse")},
		{name: "wrong password", transport: apiclient.NewTransportWithPassword(addr, "battery staple"), wantStatus: 401},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := tc.transport.Do("echo/{word}", "multi\nline payload", map[string]string{"word": "hi"})
			if tc.wantStatus != 0 {
				var problem *apitypes.ApiError
				require.ErrorAs(t, err, &problem)
				assert.Equal(t, tc.wantStatus, problem.Status)
				return
			}
			require.NoError(t, err)
			assert.JSONEq(t, `{"word":"hi","payload":"multi\nline payload"}`, out)

			// the same transport reuses its derived key
			out, err = tc.transport.Do("echo/{word}", nil, map[string]string{"word": "again"})
			require.NoError(t, err)
			assert.JSONEq(t, `{"word":"again","payload":""}`, out)
		})
	}

	t.Run("no password", func(t *testing.T) {
		out, err := apiclient.NewTransport(addr).Do("echo/{word}", nil, map[string]string{"word": "hi"})
		require.NoError(t, err)
		assert.JSONEq(t, `{"status":401,"title":"Unauthorized","detail":"password required"}`, out)

		_, err = apiclient.WithTransport(apiclient.NewTransport(addr)).Ping()
		var problem *apitypes.ApiError
		require.ErrorAs(t, err, &problem)
		assert.Equal(t, 401, problem.Status)
	})

	t.Run("client helper", func(t *testing.T) {
		_, err := apiclient.NewWithPassword(addr, "battery staple").Ping()
		assert.EqualError(t, err, "401 Unauthorized: invalid password")
	})
}
