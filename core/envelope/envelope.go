package envelope

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
)

const (
	keyLen   = 32
	nonceLen = 12
	tagLen   = 16
)

// Cipher selects the AEAD used by an Envelope.
type Cipher int

const (
	// AESGCM is AES-256-GCM, the default.
	AESGCM Cipher = iota
	// ChaCha20Poly1305 is an alternative for hosts without AES hardware.
	ChaCha20Poly1305
)

// Option configures an Envelope at construction.
type Option func(*config)

type config struct {
	cipher Cipher
}

// WithCipher selects the AEAD. The wire format is identical for all
// supported ciphers.
func WithCipher(c Cipher) Option {
	return func(cfg *config) {
		cfg.cipher = c
	}
}

// Envelope seals and opens session payloads with a single symmetric key.
// It is safe for concurrent use.
type Envelope struct {
	aead cipher.AEAD
	key  []byte
}

// New creates an Envelope from a key of at least 32 bytes. Only the
// first 32 bytes are used. The key is copied; the caller's slice may be
// reused or wiped afterwards.
func New(key []byte, opts ...Option) (*Envelope, error) {
	if len(key) < keyLen {
		return nil, ErrKeyTooShort
	}

	cfg := config{cipher: AESGCM}
	for _, opt := range opts {
		opt(&cfg)
	}

	owned := make([]byte, keyLen)
	copy(owned, key[:keyLen])

	var (
		aead cipher.AEAD
		err  error
	)
	switch cfg.cipher {
	case AESGCM:
		var block cipher.Block
		block, err = aes.NewCipher(owned)
		if err == nil {
			aead, err = cipher.NewGCM(block)
		}
	case ChaCha20Poly1305:
		aead, err = chacha20poly1305.New(owned)
	default:
		return nil, ErrUnknownCipher
	}
	if err != nil {
		return nil, err
	}

	return &Envelope{aead: aead, key: owned}, nil
}

// Encrypt seals plaintext under a fresh random nonce and returns
// base64( nonce || tag || ciphertext ).
func (e *Envelope) Encrypt(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, nonceLen)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	// Seal appends ciphertext||tag; the wire format wants the tag
	// between nonce and ciphertext.
	sealed := e.aead.Seal(nil, nonce, plaintext, nil)
	ciphertext, tag := sealed[:len(sealed)-tagLen], sealed[len(sealed)-tagLen:]

	raw := make([]byte, 0, nonceLen+tagLen+len(ciphertext))
	raw = append(raw, nonce...)
	raw = append(raw, tag...)
	raw = append(raw, ciphertext...)

	out := make([]byte, base64.StdEncoding.EncodedLen(len(raw)))
	base64.StdEncoding.Encode(out, raw)
	return out, nil
}

// Decrypt reverses Encrypt. Any malformed or unauthentic input yields
// ErrDecryptFailed; no partially authenticated plaintext is ever
// returned.
func (e *Envelope) Decrypt(blob []byte) ([]byte, error) {
	raw := make([]byte, base64.StdEncoding.DecodedLen(len(blob)))
	n, err := base64.StdEncoding.Decode(raw, blob)
	if err != nil {
		return nil, ErrDecryptFailed
	}
	raw = raw[:n]

	if len(raw) < nonceLen+tagLen {
		return nil, ErrDecryptFailed
	}

	nonce := raw[:nonceLen]
	tag := raw[nonceLen : nonceLen+tagLen]
	ciphertext := raw[nonceLen+tagLen:]

	sealed := make([]byte, 0, len(ciphertext)+tagLen)
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := e.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, ErrDecryptFailed
	}
	return plaintext, nil
}

// Zero wipes the Envelope's key copy. The Envelope must not be used
// afterwards; the derived AEAD state is dropped as well.
func (e *Envelope) Zero() {
	for i := range e.key {
		e.key[i] = 0
	}
	e.aead = nil
}
