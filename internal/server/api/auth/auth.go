// Package auth protects API connections with a shared password. A client
// proves it knows the password, the server proves it back, and both sides
// switch to an encrypted stream keyed per connection.
package auth

import (
	"crypto/hmac"
	"crypto/pbkdf2"
	"crypto/rand"
	"crypto/sha256"
	"errors"

	"golang.org/x/crypto/chacha20poly1305"
)

const (
	KeyLength        = 16
	keyAlphabet      = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	pbkdf2Iterations = 100000
	pbkdf2Salt       = "gamecontrol-api-key-v1"
)

// ErrInvalidPassword is returned when either side fails to prove the
// shared password.
var ErrInvalidPassword = errors.New("invalid password")

// GenerateKey returns a random password of KeyLength alphanumeric
// characters.
func GenerateKey() (string, error) {
	out := make([]byte, 0, KeyLength)
	buf := make([]byte, KeyLength)
	// 248 is the largest multiple of 62 below 256; rejecting the rest keeps
	// every character equally likely.
	for len(out) < KeyLength {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if b >= 248 || len(out) == KeyLength {
				continue
			}
			out = append(out, keyAlphabet[int(b)%len(keyAlphabet)])
		}
	}
	return string(out), nil
}

// DeriveKey stretches password to a 32 byte key.
func DeriveKey(password string) ([]byte, error) {
	if password == "" {
		return nil, errors.New("password cannot be empty")
	}
	return pbkdf2.Key(sha256.New, password, []byte(pbkdf2Salt), pbkdf2Iterations, chacha20poly1305.KeySize)
}

func mac(key []byte, label string, parts ...[]byte) []byte {
	m := hmac.New(sha256.New, key)
	m.Write([]byte(label))
	for _, p := range parts {
		m.Write(p)
	}
	return m.Sum(nil)
}

// sessionKeys derives one key per direction so the two streams never share
// a nonce under the same key.
func sessionKeys(key, clientNonce, serverNonce []byte) (toServer, toClient []byte) {
	toServer = mac(key, "gamecontrol-c2s-v1", clientNonce, serverNonce)
	toClient = mac(key, "gamecontrol-s2c-v1", clientNonce, serverNonce)
	return toServer, toClient
}
