package auth

import "errors"

var (
	ErrNotFound      = errors.New("auth: not found")
	ErrAlreadyExists = errors.New("auth: already exists")
	ErrInvalidInput  = errors.New("auth: invalid input")
	ErrUnauthorized  = errors.New("auth: unauthorized")
)

// ErrInvalidToken indicates a token failed signature, expiry or
// stored-value validation.
var ErrInvalidToken = errors.New("auth: invalid token")
