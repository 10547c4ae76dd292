package repository

import (
	"fmt"
	"net/http"
	"strings"

	apperrors "github.com/kbukum/coreapi/errors"
)

// StatusPolicy decides which response status codes proceed to decoding.
// Status 0 and 500 are rejected under every policy.
type StatusPolicy int

const (
	// StatusPolicyStandard accepts 2xx and rejects everything else.
	StatusPolicyStandard StatusPolicy = iota
	// StatusPolicyLegacy rejects codes below 300 and accepts the rest. Only
	// servers that encode payload responses with 3xx/4xx codes need it.
	StatusPolicyLegacy
)

// String returns the config name of p.
func (p StatusPolicy) String() string {
	switch p {
	case StatusPolicyStandard:
		return "standard"
	case StatusPolicyLegacy:
		return "legacy"
	default:
		return fmt.Sprintf("StatusPolicy(%d)", int(p))
	}
}

// ParseStatusPolicy parses "standard" or "legacy". Empty means standard.
func ParseStatusPolicy(s string) (StatusPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "standard":
		return StatusPolicyStandard, nil
	case "legacy":
		return StatusPolicyLegacy, nil
	default:
		return 0, fmt.Errorf("unknown status policy %q", s)
	}
}

// Check returns nil when status may proceed to decoding and a SERVER_ERROR
// otherwise.
func (p StatusPolicy) Check(status int) error {
	if status == 0 {
		return apperrors.ServerError(nil).WithDetail("reason", "status unreadable")
	}
	if status == http.StatusInternalServerError {
		return apperrors.StatusRejected(status)
	}

	var ok bool
	switch p {
	case StatusPolicyLegacy:
		ok = status >= http.StatusMultipleChoices
	default:
		ok = status >= http.StatusOK && status < http.StatusMultipleChoices
	}
	if !ok {
		return apperrors.StatusRejected(status)
	}
	return nil
}
