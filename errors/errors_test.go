package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestConstructors_Codes(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want ErrorCode
	}{
		{"NoInternet", NoInternet(), ErrCodeNoInternet},
		{"ServerError", ServerError(nil), ErrCodeServerError},
		{"StatusRejected", StatusRejected(404), ErrCodeServerError},
		{"BadData", BadData(nil), ErrCodeBadData},
		{"ExpiredToken", ExpiredToken(), ErrCodeExpiredToken},
		{"Custom", Custom("boom"), ErrCodeCustom},
		{"Customf", Customf("boom %d", 1), ErrCodeCustom},
		{"DecodeFailure", DecodeFailure("missing", []string{"a"}), ErrCodeCustom},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Code != tc.want {
				t.Errorf("code = %s, want %s", tc.err.Code, tc.want)
			}
			if !IsKnownCode(tc.err.Code) {
				t.Errorf("code %s should be known", tc.err.Code)
			}
		})
	}
}

func TestAppError_Error(t *testing.T) {
	e := DecodeFailure(`key "name" not found`, []string{"[0]", "owner", "name"})
	want := `CUSTOM_ERROR: key "name" not found at [0].owner.name`
	if got := e.Error(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	cause := fmt.Errorf("dial tcp: refused")
	e2 := ServerError(cause)
	if !strings.Contains(e2.Error(), "dial tcp: refused") {
		t.Errorf("expected cause in message, got %q", e2.Error())
	}
	if e2.Unwrap() != cause {
		t.Error("Unwrap did not return cause")
	}
}

func TestAppError_StatusRejectedDetail(t *testing.T) {
	e := StatusRejected(418)
	if e.Details["status_code"] != 418 {
		t.Errorf("expected status_code=418, got %v", e.Details["status_code"])
	}
	if !strings.Contains(e.Message, "418") {
		t.Errorf("expected status in message, got %q", e.Message)
	}
}

func TestAppError_IsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NoInternet())
	if !stderrors.Is(err, NoInternet()) {
		t.Error("errors.Is should match by code through wrapping")
	}
	if stderrors.Is(err, ServerError(nil)) {
		t.Error("errors.Is should not match a different code")
	}
}

func TestFormatPath(t *testing.T) {
	tests := []struct {
		path []string
		want string
	}{
		{nil, ""},
		{[]string{"name"}, "name"},
		{[]string{"[3]"}, "[3]"},
		{[]string{"items", "[1]", "id"}, "items[1].id"},
		{[]string{"[0]", "[1]"}, "[0][1]"},
	}
	for _, tc := range tests {
		if got := FormatPath(tc.path); got != tc.want {
			t.Errorf("FormatPath(%v) = %q, want %q", tc.path, got, tc.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	if Normalize(nil) != nil {
		t.Error("Normalize(nil) should be nil")
	}

	plain := fmt.Errorf("something odd")
	n := Normalize(plain)
	if !IsServerError(n) {
		t.Fatalf("expected SERVER_ERROR, got %v", n)
	}
	if !stderrors.Is(n, plain) {
		t.Error("normalized error should keep the cause")
	}

	custom := Custom("kept")
	if got := Normalize(custom); got != custom {
		t.Errorf("AppError should pass through unchanged, got %v", got)
	}

	wrapped := fmt.Errorf("ctx: %w", BadData(nil))
	if !IsBadData(Normalize(wrapped)) {
		t.Error("wrapped AppError should keep its code")
	}

	unknown := &AppError{Code: "SOMETHING_ELSE", Message: "x"}
	if !IsServerError(Normalize(unknown)) {
		t.Error("unknown codes should collapse to SERVER_ERROR")
	}
}

func TestPredicates(t *testing.T) {
	if !IsNoInternet(NoInternet()) {
		t.Error("IsNoInternet")
	}
	if !IsServerError(ServerError(nil)) {
		t.Error("IsServerError")
	}
	if !IsBadData(BadData(nil)) {
		t.Error("IsBadData")
	}
	if !IsExpiredToken(ExpiredToken()) {
		t.Error("IsExpiredToken")
	}
	if !IsCustom(Custom("x")) {
		t.Error("IsCustom")
	}
	if IsCustom(fmt.Errorf("plain")) {
		t.Error("plain errors have no code")
	}
	if CodeOf(nil) != "" {
		t.Error("CodeOf(nil) should be empty")
	}
}
