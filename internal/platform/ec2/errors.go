package ec2

import (
	"errors"

	"github.com/aws/smithy-go"
)

// isAPIErrorCode checks if the error is an EC2 API error with one of the
// given codes.
func isAPIErrorCode(err error, codes ...string) bool {
	if err == nil {
		return false
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		for _, c := range codes {
			if code == c {
				return true
			}
		}
	}
	return false
}

// IsQuotaExceeded checks if an error indicates the account has hit an
// instance or capacity limit. These failures are fatal to the attempt.
func IsQuotaExceeded(err error) bool {
	return isAPIErrorCode(err,
		"InstanceLimitExceeded",
		"InsufficientInstanceCapacity",
		"MaxSpotInstanceCountExceeded",
	)
}

// IsNotFound checks if an error indicates the referenced resource does
// not exist (bad image ID, unknown instance, missing subnet).
func IsNotFound(err error) bool {
	return isAPIErrorCode(err,
		"InvalidAMIID.NotFound",
		"InvalidInstanceID.NotFound",
		"InvalidSubnetID.NotFound",
		"InvalidGroup.NotFound",
	)
}

// IsRateLimited checks if an error indicates API request throttling.
func IsRateLimited(err error) bool {
	return isAPIErrorCode(err, "RequestLimitExceeded", "Throttling")
}
