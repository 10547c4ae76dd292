package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

const (
	// ErrCodeNoInternet indicates the connectivity probe reported disconnected.
	ErrCodeNoInternet ErrorCode = "NO_INTERNET"
	// ErrCodeServerError indicates a rejected or unreadable response, or an
	// unrecognized failure collapsed at the boundary.
	ErrCodeServerError ErrorCode = "SERVER_ERROR"
	// ErrCodeBadData indicates the request could not be built or the response
	// could not be decoded for an unclassified reason.
	ErrCodeBadData ErrorCode = "BAD_DATA"
	// ErrCodeExpiredToken indicates the stored token could not be interpreted.
	ErrCodeExpiredToken ErrorCode = "EXPIRED_TOKEN"
	// ErrCodeCustom indicates a failure described by its message.
	ErrCodeCustom ErrorCode = "CUSTOM_ERROR"
)

var knownCodes = map[ErrorCode]bool{
	ErrCodeNoInternet:   true,
	ErrCodeServerError:  true,
	ErrCodeBadData:      true,
	ErrCodeExpiredToken: true,
	ErrCodeCustom:       true,
}

// IsKnownCode reports whether code belongs to the closed taxonomy.
func IsKnownCode(code ErrorCode) bool {
	return knownCodes[code]
}
