// Package envelope authenticates and encrypts opaque byte strings with a
// 256-bit key before they reach a session store.
//
// The wire format is base64( nonce(12) || tag(16) || ciphertext ). Both
// supported AEADs (AES-256-GCM and ChaCha20-Poly1305) use a 12-byte nonce
// and a 16-byte tag, so the layout is cipher-independent. A fresh random
// nonce is drawn per Encrypt call; nonce reuse under one key is therefore
// ruled out by sampling.
//
// Decrypt returns ErrDecryptFailed for every failure class - bad base64,
// truncated payload, authentication failure - so callers cannot be used
// as a padding or format oracle.
package envelope
