package service

import "errors"

var (
	ErrNoItems            = errors.New("no products provided")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidRole        = errors.New("invalid user role")
)
