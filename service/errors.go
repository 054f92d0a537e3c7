package service

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCredentials = errors.New("no active account found with the given credentials")
	ErrDuplicateAccount   = errors.New("user with this email address already exists")
	ErrInvalidToken       = errors.New("token is invalid")
	ErrTokenExpired       = errors.New("token is expired")
	ErrTokenRevoked       = errors.New("token is blacklisted")
	ErrEncoding           = errors.New("token could not be signed")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserInactive       = errors.New("user is inactive")
)

// ErrTokenMalformed covers bad structure, signature, algorithm or claims.
// It matches ErrInvalidToken under errors.Is.
var ErrTokenMalformed = fmt.Errorf("%w: malformed", ErrInvalidToken)
