package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/secretbox"

	"cfpportal/internal/domain"
)

const nonceSize = 24

// ErrSealedTokenInvalid is returned when a sealed value cannot be opened.
var ErrSealedTokenInvalid = errors.New("sealed token is invalid")

type secretboxSealer struct {
	key [32]byte
}

// NewSecretboxSealer returns a domain.TokenSealer keyed from secret. Sealed
// values are base64(nonce || box).
func NewSecretboxSealer(secret string) domain.TokenSealer {
	return &secretboxSealer{key: sha256.Sum256([]byte(secret))}
}

func (s *secretboxSealer) Seal(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("failed to read nonce: %w", err)
	}
	box := secretbox.Seal(nonce[:], []byte(plaintext), &nonce, &s.key)
	return base64.RawURLEncoding.EncodeToString(box), nil
}

func (s *secretboxSealer) Open(sealed string) (string, error) {
	if sealed == "" {
		return "", nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(sealed)
	if err != nil || len(raw) < nonceSize+secretbox.Overhead {
		return "", ErrSealedTokenInvalid
	}
	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])
	out, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, &s.key)
	if !ok {
		return "", ErrSealedTokenInvalid
	}
	return string(out), nil
}
