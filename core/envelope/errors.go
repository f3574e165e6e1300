package envelope

import "errors"

var (
	// ErrKeyTooShort is returned when the key is shorter than 32 bytes.
	ErrKeyTooShort = errors.New("envelope: key must be at least 32 bytes")
	// ErrUnknownCipher is returned for a cipher outside the supported set.
	ErrUnknownCipher = errors.New("envelope: unknown cipher")
	// ErrDecryptFailed covers every decrypt failure: invalid encoding,
	// truncated payload, or failed authentication.
	ErrDecryptFailed = errors.New("envelope: decrypt failed")
)
