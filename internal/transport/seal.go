package transport

import (
	"crypto/cipher"
	"crypto/pbkdf2"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

const (
	PBKDF2Iterations = 100000
	PBKDF2Salt       = "gamecontrol-datagram-v1"
)

// DeriveKey stretches a password to a 32 byte key.
func DeriveKey(password string) ([]byte, error) {
	if password == "" {
		return nil, errors.New("password cannot be empty")
	}
	return pbkdf2.Key(sha256.New, password, []byte(PBKDF2Salt), PBKDF2Iterations, chacha20poly1305.KeySize)
}

// Sealer encrypts and authenticates datagram bodies.
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer builds a sealer for a 32 byte key.
func NewSealer(key []byte) (*Sealer, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	return &Sealer{aead: aead}, nil
}

// NewPasswordSealer derives the key from password. An empty password
// returns a nil sealer.
func NewPasswordSealer(password string) (*Sealer, error) {
	if password == "" {
		return nil, nil
	}
	key, err := DeriveKey(password)
	if err != nil {
		return nil, err
	}
	return NewSealer(key)
}

// Seal returns header, a random nonce and the sealed body. header is
// authenticated but not encrypted.
func (s *Sealer) Seal(header, body []byte) ([]byte, error) {
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	out := make([]byte, 0, len(header)+len(nonce)+len(body)+s.aead.Overhead())
	out = append(out, header...)
	out = append(out, nonce...)
	return s.aead.Seal(out, nonce, body, header), nil
}

// Open authenticates header and sealed (nonce and ciphertext) and returns
// the plain body.
func (s *Sealer) Open(header, sealed []byte) ([]byte, error) {
	if len(sealed) < chacha20poly1305.NonceSizeX+s.aead.Overhead() {
		return nil, ErrShortPacket
	}
	nonce, ct := sealed[:chacha20poly1305.NonceSizeX], sealed[chacha20poly1305.NonceSizeX:]
	plain, err := s.aead.Open(nil, nonce, ct, header)
	if err != nil {
		return nil, fmt.Errorf("open sealed packet: %w", err)
	}
	return plain, nil
}
