package http

import (
	"errors"
	"fmt"
	"net/http"
)

// Codes carried in AppError.Code.
const (
	CodeNotFound         = "ERR_NOT_FOUND"
	CodeBadRequest       = "ERR_BAD_REQUEST"
	CodeInsufficientData = "ERR_INSUFFICIENT_DATA"
	CodeRateLimited      = "ERR_RATE_LIMITED"
	CodeInternal         = "ERR_INTERNAL"
)

// AppError is an error with the HTTP status and code it is reported under.
// Field names the offending request parameter, if any.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// WithError wraps an underlying error.
func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

// WithField records the request parameter the error refers to.
func (e *AppError) WithField(field string) *AppError {
	e.Field = field
	return e
}

func newAppError(status int, code, message string) *AppError {
	return &AppError{Code: code, Message: message, Status: status}
}

func NotFoundError(message string) *AppError {
	return newAppError(http.StatusNotFound, CodeNotFound, message)
}

func BadRequestError(message string) *AppError {
	return newAppError(http.StatusBadRequest, CodeBadRequest, message)
}

// UnprocessableError is for well-formed requests whose data cannot support the computation.
func UnprocessableError(message string) *AppError {
	return newAppError(http.StatusUnprocessableEntity, CodeInsufficientData, message)
}

func TooManyRequestsError(message string) *AppError {
	return newAppError(http.StatusTooManyRequests, CodeRateLimited, message)
}

func InternalError(message string) *AppError {
	return newAppError(http.StatusInternalServerError, CodeInternal, message)
}

// StatusOf returns the status an error is reported under: the AppError's
// own status, or 500 for anything else.
func StatusOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Status != 0 {
		return appErr.Status
	}
	return http.StatusInternalServerError
}
