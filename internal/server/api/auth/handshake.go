package auth

import (
	"bufio"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"

	"github.com/Alia5/gamecontrol/apitypes"
)

// Handshake layout:
//
//	client: Magic | client nonce | HMAC(key, client label | client nonce)
//	server: "OK\x00" | server nonce | HMAC(key, server label | both nonces)
//
// A server that rejects the client writes a problem JSON line instead of
// "OK\x00" and closes the connection.
const (
	Magic     = "gcA1\x00"
	NonceSize = 32

	accepted    = "OK\x00"
	clientLabel = "gamecontrol-client-v1"
	serverLabel = "gamecontrol-server-v1"
)

// IsHandshake reports whether the next bytes in r are the handshake magic.
// It does not consume them.
func IsHandshake(r *bufio.Reader) bool {
	b, err := r.Peek(len(Magic))
	return err == nil && string(b) == Magic
}

func newNonce() ([]byte, error) {
	n := make([]byte, NonceSize)
	if _, err := rand.Read(n); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	return n, nil
}

// Client authenticates conn with key and returns the encrypted connection.
// r must buffer reads from conn.
func Client(conn net.Conn, r *bufio.Reader, key []byte) (net.Conn, error) {
	clientNonce, err := newNonce()
	if err != nil {
		return nil, err
	}
	hello := make([]byte, 0, len(Magic)+NonceSize+sha256.Size)
	hello = append(hello, Magic...)
	hello = append(hello, clientNonce...)
	hello = append(hello, mac(key, clientLabel, clientNonce)...)
	if _, err := conn.Write(hello); err != nil {
		return nil, fmt.Errorf("write handshake: %w", err)
	}

	status := make([]byte, len(accepted))
	if _, err := io.ReadFull(r, status); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrInvalidPassword
		}
		return nil, fmt.Errorf("read handshake response: %w", err)
	}
	if string(status) != accepted {
		rest, _ := io.ReadAll(r)
		line := strings.TrimSpace(string(status) + string(rest))
		var problem apitypes.ApiError
		if err := json.Unmarshal([]byte(line), &problem); err == nil && problem.Status != 0 {
			return nil, &problem
		}
		return nil, fmt.Errorf("unexpected handshake response: %q", line)
	}

	reply := make([]byte, NonceSize+sha256.Size)
	if _, err := io.ReadFull(r, reply); err != nil {
		return nil, fmt.Errorf("read server proof: %w", err)
	}
	serverNonce, proof := reply[:NonceSize], reply[NonceSize:]
	if !hmac.Equal(proof, mac(key, serverLabel, clientNonce, serverNonce)) {
		return nil, ErrInvalidPassword
	}

	toServer, toClient := sessionKeys(key, clientNonce, serverNonce)
	c, err := WrapConn(conn, r, toServer, toClient)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Server checks the client hello waiting in r and returns the encrypted
// connection. On ErrInvalidPassword nothing has been written to conn yet.
func Server(conn net.Conn, r *bufio.Reader, key []byte) (net.Conn, error) {
	hello := make([]byte, len(Magic)+NonceSize+sha256.Size)
	if _, err := io.ReadFull(r, hello); err != nil {
		return nil, fmt.Errorf("read handshake: %w", err)
	}
	if string(hello[:len(Magic)]) != Magic {
		return nil, errors.New("missing handshake magic")
	}
	clientNonce := hello[len(Magic) : len(Magic)+NonceSize]
	if !hmac.Equal(hello[len(Magic)+NonceSize:], mac(key, clientLabel, clientNonce)) {
		return nil, ErrInvalidPassword
	}

	serverNonce, err := newNonce()
	if err != nil {
		return nil, err
	}
	reply := make([]byte, 0, len(accepted)+NonceSize+sha256.Size)
	reply = append(reply, accepted...)
	reply = append(reply, serverNonce...)
	reply = append(reply, mac(key, serverLabel, clientNonce, serverNonce)...)
	if _, err := conn.Write(reply); err != nil {
		return nil, fmt.Errorf("write handshake: %w", err)
	}

	toServer, toClient := sessionKeys(key, clientNonce, serverNonce)
	c, err := WrapConn(conn, r, toClient, toServer)
	if err != nil {
		return nil, err
	}
	return c, nil
}
