package tokenstore

import (
	"context"

	"github.com/kbukum/coreapi/encryption"
	apperrors "github.com/kbukum/coreapi/errors"
)

// Encrypted seals tokens with a cipher before they reach the inner store.
type Encrypted struct {
	inner  Store
	cipher encryption.Cipher
}

var _ Store = (*Encrypted)(nil)

// NewEncrypted wraps inner so only sealed values are stored.
func NewEncrypted(inner Store, c encryption.Cipher) *Encrypted {
	return &Encrypted{inner: inner, cipher: c}
}

// Save seals token and stores it.
func (e *Encrypted) Save(ctx context.Context, token string) error {
	if token == "" {
		return errEmptyToken()
	}
	sealed, err := e.cipher.Seal(token)
	if err != nil {
		return errSave(err)
	}
	return e.inner.Save(ctx, sealed)
}

// Retrieve opens the stored value. A value that does not open is reported as
// an expired token.
func (e *Encrypted) Retrieve(ctx context.Context) (string, bool, error) {
	sealed, ok, err := e.inner.Retrieve(ctx)
	if err != nil || !ok {
		return "", ok, err
	}
	token, err := e.cipher.Open(sealed)
	if err != nil {
		return "", false, apperrors.ExpiredToken().WithCause(err)
	}
	if err := checkToken(token); err != nil {
		return "", false, err
	}
	return token, true, nil
}

// Remove deletes the token from the inner store.
func (e *Encrypted) Remove(ctx context.Context) error {
	return e.inner.Remove(ctx)
}
