package plugin

import (
	"context"
	"errors"
)

// Error codes reported in invoke envelopes.
const (
	CodeNotFound          = "NOT_FOUND"
	CodeNotActive         = "NOT_ACTIVE"
	CodeUnknownMethod     = "UNKNOWN_METHOD"
	CodeInvalidPayload    = "INVALID_PAYLOAD"
	CodeCancelled         = "CANCELLED"
	CodeInvalidPath       = "INVALID_PATH"
	CodeModelNotInstalled = "MODEL_NOT_INSTALLED"
	CodeModelIncomplete   = "MODEL_INCOMPLETE"
	CodeModelCorrupt      = "MODEL_CORRUPT"
	CodeDownloadFailed    = "DOWNLOAD_FAILED"
	CodeInvokeFailed      = "INVOKE_FAILED"
)

var (
	ErrNotFound  = errors.New("plugin not found")
	ErrNotActive = errors.New("plugin not active")
)

// Error is a caller-facing failure with a stable code. Err, when set, is the
// underlying cause and is not shown to callers.
type Error struct {
	Code    string
	Message string
	Details any
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// NewError wraps err with a code. The message defaults to err's text.
func NewError(code string, err error) *Error {
	return &Error{Code: code, Message: err.Error(), Err: err}
}

// CodeOf returns the code carried by err, falling back to INVOKE_FAILED.
func CodeOf(err error) string {
	var pe *Error
	switch {
	case err == nil:
		return ""
	case errors.As(err, &pe):
		return pe.Code
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrNotActive):
		return CodeNotActive
	case errors.Is(err, context.Canceled):
		return CodeCancelled
	default:
		return CodeInvokeFailed
	}
}
