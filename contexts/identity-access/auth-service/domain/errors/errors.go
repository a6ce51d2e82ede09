package errors

import "errors"

var (
	ErrInvalidCredentialsInput = errors.New("credentials input is invalid")
	ErrUsernameTaken           = errors.New("username is already taken")
	ErrEmailTaken              = errors.New("email is already registered")
	ErrInvalidCredentials      = errors.New("username or password is incorrect")
	ErrUserNotFound            = errors.New("user not found")
	ErrTokenInvalid            = errors.New("token is invalid or expired")
	ErrTokenRevoked            = errors.New("token has been revoked")
)
