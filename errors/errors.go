package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// AppError is the only error type returned across the repository boundary.
type AppError struct {
	// Code is the taxonomy kind.
	Code ErrorCode `json:"code"`
	// Message is a human-readable description.
	Message string `json:"message"`
	// Path is the coding path inside a decoded document, outermost first.
	// Set only for structured decode failures.
	Path []string `json:"path,omitempty"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if len(e.Path) > 0 {
		msg += " at " + FormatPath(e.Path)
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(" (cause: %v)", e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// Is matches another *AppError by code, so errors.Is(err, errors.NoInternet())
// works without comparing messages.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates an AppError with the given code and message.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// NoInternet creates the error returned when the probe reports disconnected.
func NoInternet() *AppError {
	return &AppError{Code: ErrCodeNoInternet, Message: "no internet connection"}
}

// ServerError creates a server error. cause may be nil.
func ServerError(cause error) *AppError {
	return &AppError{Code: ErrCodeServerError, Message: "server error", Cause: cause}
}

// StatusRejected creates a server error for a response status the policy refused.
func StatusRejected(statusCode int) *AppError {
	e := &AppError{Code: ErrCodeServerError, Message: fmt.Sprintf("unexpected status %d", statusCode)}
	return e.WithDetail("status_code", statusCode)
}

// BadData creates a bad-data error. cause may be nil.
func BadData(cause error) *AppError {
	return &AppError{Code: ErrCodeBadData, Message: "bad data", Cause: cause}
}

// ExpiredToken creates the error returned when the stored token is unusable.
func ExpiredToken() *AppError {
	return &AppError{Code: ErrCodeExpiredToken, Message: "token expired or unreadable"}
}

// Custom creates a described error.
func Custom(message string) *AppError {
	return &AppError{Code: ErrCodeCustom, Message: message}
}

// Customf creates a described error from a format string.
func Customf(format string, args ...any) *AppError {
	return Custom(fmt.Sprintf(format, args...))
}

// DecodeFailure creates a described error for a structured decode failure at path.
func DecodeFailure(message string, path []string) *AppError {
	return &AppError{Code: ErrCodeCustom, Message: message, Path: path}
}

// FormatPath renders a coding path as "a.b[2].c". Index segments are
// expected in "[n]" form.
func FormatPath(path []string) string {
	var b strings.Builder
	for i, seg := range path {
		if i > 0 && !strings.HasPrefix(seg, "[") {
			b.WriteByte('.')
		}
		b.WriteString(seg)
	}
	return b.String()
}

// Normalize collapses any error that is not an *AppError into a server error.
// nil stays nil.
func Normalize(err error) error {
	if err == nil {
		return nil
	}
	if appErr, ok := AsAppError(err); ok && IsKnownCode(appErr.Code) {
		return appErr
	}
	return ServerError(err)
}

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// CodeOf returns the code of err, or "" if err is not an AppError.
func CodeOf(err error) ErrorCode {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ""
}

// IsNoInternet checks if err is a NO_INTERNET error.
func IsNoInternet(err error) bool { return CodeOf(err) == ErrCodeNoInternet }

// IsServerError checks if err is a SERVER_ERROR error.
func IsServerError(err error) bool { return CodeOf(err) == ErrCodeServerError }

// IsBadData checks if err is a BAD_DATA error.
func IsBadData(err error) bool { return CodeOf(err) == ErrCodeBadData }

// IsExpiredToken checks if err is an EXPIRED_TOKEN error.
func IsExpiredToken(err error) bool { return CodeOf(err) == ErrCodeExpiredToken }

// IsCustom checks if err is a CUSTOM_ERROR error.
func IsCustom(err error) bool { return CodeOf(err) == ErrCodeCustom }
