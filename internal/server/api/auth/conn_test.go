package auth_test

import (
	"bytes"
	"io"
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/gamecontrol/internal/server/api/auth"
)

func stringsReader(s string) io.Reader { return strings.NewReader(s) }

// recorder is a net.Conn that captures writes.
type recorder struct {
	net.Conn
	buf bytes.Buffer
}

func (r *recorder) Write(p []byte) (int, error) { return r.buf.Write(p) }

func TestConnRoundTrip(t *testing.T) {
	a := bytes.Repeat([]byte{1}, 32)
	b := bytes.Repeat([]byte{2}, 32)

	out := &recorder{}
	w, err := auth.WrapConn(out, nil, a, b)
	require.NoError(t, err)
	for _, msg := range []string{"first", "", "third frame"} {
		n, err := w.Write([]byte(msg))
		require.NoError(t, err)
		assert.Equal(t, len(msg), n)
	}
	assert.NotContains(t, out.buf.String(), "third frame")

	r, err := auth.WrapConn(nil, bytes.NewReader(out.buf.Bytes()), b, a)
	require.NoError(t, err)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "firstthird frame", string(got))
}

func TestConnRejectsTampering(t *testing.T) {
	a := bytes.Repeat([]byte{1}, 32)
	b := bytes.Repeat([]byte{2}, 32)

	type testCase struct {
		name    string
		recvKey []byte
		mangle  func(frames []byte) []byte
	}
	cases := []testCase{
		{name: "wrong key", recvKey: b, mangle: func(f []byte) []byte { return f }},
		{name: "flipped bit", recvKey: a, mangle: func(f []byte) []byte { f[6] ^= 1; return f }},
		{name: "replayed frame", recvKey: a, mangle: func(f []byte) []byte { return append(f, f...) }},
		{name: "oversized length", recvKey: a, mangle: func(f []byte) []byte { f[0] = 0xff; return f }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := &recorder{}
			w, err := auth.WrapConn(out, nil, a, a)
			require.NoError(t, err)
			_, err = w.Write([]byte("state"))
			require.NoError(t, err)

			frames := tc.mangle(append([]byte(nil), out.buf.Bytes()...))
			r, err := auth.WrapConn(nil, bytes.NewReader(frames), a, tc.recvKey)
			require.NoError(t, err)
			_, err = io.ReadAll(r)
			assert.Error(t, err)
		})
	}
}

func TestConnWriteTooLarge(t *testing.T) {
	k := bytes.Repeat([]byte{3}, 32)
	w, err := auth.WrapConn(&recorder{}, nil, k, k)
	require.NoError(t, err)
	_, err = w.Write(make([]byte, auth.MaxFrameSize))
	assert.ErrorIs(t, err, auth.ErrFrameTooLarge)
}
