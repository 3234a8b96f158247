package models

import "errors"

// ErrMissingCredentials means the platform needs a token the request did not carry.
var ErrMissingCredentials = errors.New("missing credentials")
