package auth_test

import (
	"bufio"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/gamecontrol/apitypes"
	"github.com/Alia5/gamecontrol/internal/server/api/auth"
)

type serverResult struct {
	conn net.Conn
	err  error
}

func handshake(t *testing.T, clientKey, serverKey []byte) (net.Conn, serverResult, error) {
	t.Helper()
	c, s := net.Pipe()
	t.Cleanup(func() { c.Close(); s.Close() })
	_ = c.SetDeadline(time.Now().Add(2 * time.Second))
	_ = s.SetDeadline(time.Now().Add(2 * time.Second))

	done := make(chan serverResult, 1)
	go func() {
		r := bufio.NewReader(s)
		if !auth.IsHandshake(r) {
			s.Close()
			done <- serverResult{err: io.ErrUnexpectedEOF}
			return
		}
		sc, err := auth.Server(s, r, serverKey)
		if err != nil {
			s.Close()
		}
		done <- serverResult{conn: sc, err: err}
	}()

	cc, err := auth.Client(c, bufio.NewReader(c), clientKey)
	return cc, <-done, err
}

func TestHandshake(t *testing.T) {
	key, err := auth.DeriveKey("secret")
	require.NoError(t, err)
	other, err := auth.DeriveKey("guess")
	require.NoError(t, err)

	t.Run("matching keys", func(t *testing.T) {
		cc, res, err := handshake(t, key, key)
		require.NoError(t, err)
		require.NoError(t, res.err)

		go func() { _, _ = cc.Write([]byte("state\x00")) }()
		got, err := bufio.NewReader(res.conn).ReadString('\x00')
		require.NoError(t, err)
		assert.Equal(t, "state\x00", got)

		go func() { _, _ = res.conn.Write([]byte("{\"frame\":1}\n")) }()
		line, err := bufio.NewReader(cc).ReadString('\n')
		require.NoError(t, err)
		assert.Equal(t, "{\"frame\":1}\n", line)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, res, err := handshake(t, other, key)
		assert.ErrorIs(t, res.err, auth.ErrInvalidPassword)
		assert.ErrorIs(t, err, auth.ErrInvalidPassword)
	})
}

func TestClientReadsRejection(t *testing.T) {
	key, err := auth.DeriveKey("secret")
	require.NoError(t, err)

	c, s := net.Pipe()
	defer c.Close()
	go func() {
		defer s.Close()
		buf := make([]byte, len(auth.Magic)+auth.NonceSize+32)
		_, _ = io.ReadFull(s, buf)
		_, _ = s.Write([]byte(`{"status":401,"title":"Unauthorized","detail":"invalid password"}` + "\n"))
	}()

	_, err = auth.Client(c, bufio.NewReader(c), key)
	var problem *apitypes.ApiError
	require.ErrorAs(t, err, &problem)
	assert.Equal(t, 401, problem.Status)
}

func TestIsHandshake(t *testing.T) {
	type testCase struct {
		name  string
		input string
		want  bool
	}
	cases := []testCase{
		{name: "magic", input: auth.Magic + "rest", want: true},
		{name: "plain request", input: "state\x00", want: false},
		{name: "short", input: "gc", want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := bufio.NewReader(stringsReader(tc.input))
			assert.Equal(t, tc.want, auth.IsHandshake(r))
			rest, _ := io.ReadAll(r)
			assert.Equal(t, tc.input, string(rest), "peek must not consume")
		})
	}
}
