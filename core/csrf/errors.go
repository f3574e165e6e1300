package csrf

import "errors"

// ErrInvalidToken is returned by Parse for input that is not exactly
// 64 hex characters.
var ErrInvalidToken = errors.New("csrf: invalid token")
