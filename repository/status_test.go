package repository

import (
	"testing"

	apperrors "github.com/kbukum/coreapi/errors"
)

func TestStatusPolicy_Check(t *testing.T) {
	tests := []struct {
		policy StatusPolicy
		status int
		ok     bool
	}{
		{StatusPolicyStandard, 200, true},
		{StatusPolicyStandard, 201, true},
		{StatusPolicyStandard, 204, true},
		{StatusPolicyStandard, 299, true},
		{StatusPolicyStandard, 0, false},
		{StatusPolicyStandard, 199, false},
		{StatusPolicyStandard, 301, false},
		{StatusPolicyStandard, 404, false},
		{StatusPolicyStandard, 500, false},
		{StatusPolicyStandard, 503, false},

		{StatusPolicyLegacy, 0, false},
		{StatusPolicyLegacy, 200, false},
		{StatusPolicyLegacy, 299, false},
		{StatusPolicyLegacy, 300, true},
		{StatusPolicyLegacy, 404, true},
		{StatusPolicyLegacy, 500, false},
		{StatusPolicyLegacy, 503, true},
	}
	for _, tc := range tests {
		err := tc.policy.Check(tc.status)
		if tc.ok && err != nil {
			t.Errorf("%s/%d: unexpected error %v", tc.policy, tc.status, err)
		}
		if !tc.ok && !apperrors.IsServerError(err) {
			t.Errorf("%s/%d: expected SERVER_ERROR, got %v", tc.policy, tc.status, err)
		}
	}
}

func TestParseStatusPolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    StatusPolicy
		wantErr bool
	}{
		{"", StatusPolicyStandard, false},
		{"standard", StatusPolicyStandard, false},
		{" Legacy ", StatusPolicyLegacy, false},
		{"inverted", 0, true},
	}
	for _, tc := range tests {
		got, err := ParseStatusPolicy(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseStatusPolicy(%q) error = %v", tc.in, err)
			continue
		}
		if !tc.wantErr && got != tc.want {
			t.Errorf("ParseStatusPolicy(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
	if StatusPolicy(7).String() != "StatusPolicy(7)" {
		t.Errorf("String() = %q", StatusPolicy(7).String())
	}
}
