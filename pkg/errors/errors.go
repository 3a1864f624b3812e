package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

const (
	ErrCodeInternal         = "INTERNAL_ERROR"
	ErrCodeInvalidReq       = "INVALID_REQUEST"
	ErrCodeUpstreamAPI      = "UPSTREAM_API_ERROR"
	ErrCodeStreamDecode     = "STREAM_DECODE_ERROR"
	ErrCodeTemplateNotFound = "TEMPLATE_NOT_FOUND"
	ErrCodeRender           = "RENDER_ERROR"
	ErrCodeStorage          = "STORAGE_ERROR"
	ErrCodeRateLimited      = "RATE_LIMITED"
	ErrCodeNotFound         = "NOT_FOUND"
)

type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

func Wrap(err error, code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Is reports whether any AppError in err's chain carries code.
func Is(err error, code string) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// CodeOf returns the code of the first AppError in err's chain, or ErrCodeInternal.
func CodeOf(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}

// MessageOf returns the user-facing message of the first AppError in err's chain.
func MessageOf(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case ErrCodeInvalidReq:
		return http.StatusBadRequest
	case ErrCodeNotFound, ErrCodeTemplateNotFound:
		return http.StatusNotFound
	case ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case ErrCodeUpstreamAPI, ErrCodeStreamDecode:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
