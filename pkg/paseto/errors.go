package pasetotoken

import "errors"

var (
	// ErrConfig reports a manager or key setup that cannot issue or verify tokens.
	ErrConfig = errors.New("paseto: invalid configuration")
	// ErrInvalidToken wraps every parse, signature and claim failure in Verify.
	ErrInvalidToken = errors.New("paseto: invalid token")
)
