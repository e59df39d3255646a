package user

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidName        = errors.New("name must be between 1 and 100 characters")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrInvalidRole        = errors.New("role must be client, professional or admin")
	ErrEmailAlreadyExists = errors.New("email address is already in use")
)
