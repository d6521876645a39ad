package ec2

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aws/smithy-go"
)

type apiError struct {
	code string
}

func (e *apiError) Error() string              { return e.code }
func (e *apiError) ErrorCode() string          { return e.code }
func (e *apiError) ErrorMessage() string       { return e.code }
func (e *apiError) ErrorFault() smithy.ErrorFault { return smithy.FaultClient }

func TestIsQuotaExceeded(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain error", errors.New("boom"), false},
		{"instance limit", &apiError{code: "InstanceLimitExceeded"}, true},
		{"capacity", &apiError{code: "InsufficientInstanceCapacity"}, true},
		{"wrapped", fmt.Errorf("launch: %w", &apiError{code: "InstanceLimitExceeded"}), true},
		{"other code", &apiError{code: "InvalidAMIID.NotFound"}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsQuotaExceeded(tc.err); got != tc.want {
				t.Errorf("IsQuotaExceeded(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(&apiError{code: "InvalidAMIID.NotFound"}) {
		t.Error("expected AMI not-found code to match")
	}
	if IsNotFound(&apiError{code: "RequestLimitExceeded"}) {
		t.Error("throttle code should not match IsNotFound")
	}
}

func TestIsRateLimited(t *testing.T) {
	if !IsRateLimited(&apiError{code: "RequestLimitExceeded"}) {
		t.Error("expected throttle code to match")
	}
	if IsRateLimited(nil) {
		t.Error("nil should not be rate limited")
	}
}
