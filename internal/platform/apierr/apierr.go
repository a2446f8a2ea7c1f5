package apierr

import (
	"errors"
	"fmt"
)

// Codes for the failure classes the request layer maps onto HTTP statuses.
const (
	CodeInvalidInput     = "invalid_input"
	CodeStoreUnavailable = "store_unavailable"
	CodeEmbeddingFailed  = "embedding_failed"
	CodeGenerationFailed = "generation_failed"
	CodeNotFound         = "not_found"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// Code extracts the taxonomy code from an error chain; empty when the
// error never passed through this package.
func Code(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}

func Is(err error, code string) bool {
	return Code(err) == code
}
