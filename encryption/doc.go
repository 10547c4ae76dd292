// Package encryption seals short secrets, such as bearer tokens, before they
// are handed to a storage backend.
//
// Two AEAD algorithms are available: AES-256-GCM (default) and
// ChaCha20-Poly1305. Keys are passphrases hashed to 32 bytes with SHA-256.
// Sealed values are base64 text of nonce || ciphertext.
//
//	c, err := encryption.New("passphrase", encryption.AlgorithmChaCha20)
//	sealed, err := c.Seal(token)
//	token, err = c.Open(sealed)
package encryption
