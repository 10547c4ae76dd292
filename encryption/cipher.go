package encryption

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
)

// Algorithm names a supported AEAD.
type Algorithm string

const (
	// AlgorithmAESGCM is AES-256-GCM.
	AlgorithmAESGCM Algorithm = "aes-256-gcm"
	// AlgorithmChaCha20 is ChaCha20-Poly1305.
	AlgorithmChaCha20 Algorithm = "chacha20-poly1305"
)

// ErrMalformed is returned by Open when the input is not a sealed value.
var ErrMalformed = errors.New("encryption: malformed sealed value")

// Cipher seals and opens strings.
type Cipher interface {
	Seal(plaintext string) (string, error)
	Open(sealed string) (string, error)
	Algorithm() Algorithm
}

type aeadCipher struct {
	aead cipher.AEAD
	alg  Algorithm
}

// New creates a Cipher for alg keyed by the SHA-256 of passphrase.
// An empty alg selects AES-256-GCM.
func New(passphrase string, alg Algorithm) (Cipher, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("encryption: empty key")
	}
	key := sha256.Sum256([]byte(passphrase))

	var (
		aead cipher.AEAD
		err  error
	)
	switch alg {
	case AlgorithmChaCha20:
		aead, err = chacha20poly1305.New(key[:])
	case AlgorithmAESGCM, "":
		alg = AlgorithmAESGCM
		var block cipher.Block
		block, err = aes.NewCipher(key[:])
		if err == nil {
			aead, err = cipher.NewGCM(block)
		}
	default:
		return nil, fmt.Errorf("encryption: unsupported algorithm %q", alg)
	}
	if err != nil {
		return nil, fmt.Errorf("encryption: create %s: %w", alg, err)
	}
	return &aeadCipher{aead: aead, alg: alg}, nil
}

// Seal encrypts plaintext under a fresh random nonce.
func (c *aeadCipher) Seal(plaintext string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("encryption: generate nonce: %w", err)
	}
	out := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(out), nil
}

// Open decrypts a value produced by Seal.
func (c *aeadCipher) Open(sealed string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	n := c.aead.NonceSize()
	if len(data) < n+c.aead.Overhead() {
		return "", fmt.Errorf("%w: too short", ErrMalformed)
	}
	plain, err := c.aead.Open(nil, data[:n], data[n:], nil)
	if err != nil {
		return "", fmt.Errorf("encryption: open: %w", err)
	}
	return string(plain), nil
}

// Algorithm returns the algorithm in use.
func (c *aeadCipher) Algorithm() Algorithm { return c.alg }
