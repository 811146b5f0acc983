package auth

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput = errors.New("auth: invalid input")
	ErrNotFound     = errors.New("auth: not found")
	ErrConflict     = errors.New("auth: resource conflict")
	ErrUnauthorized = errors.New("auth: unauthorized")
	ErrInvalidToken = errors.New("auth: invalid token")
)

// PermissionError reports an authenticated request that lacks a required
// permission. The key itself is not secret and is surfaced to the client.
type PermissionError struct {
	Permission string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("auth: missing permission %s", e.Permission)
}
