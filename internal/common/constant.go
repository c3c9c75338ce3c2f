// Package common contains shared constants, sentinel errors and small helpers
// used by both the CampusHub client and the identity server.
package common

const (
	// AccessTokenHeaderName is the gRPC metadata key that carries the
	// session access token on outbound requests.
	AccessTokenHeaderName = "access_token"

	// OTPLength is the number of digits in an email one-time code.
	OTPLength = 6

	// MaxOTPAttempts is how many wrong codes an account may submit before
	// its outstanding code is voided.
	MaxOTPAttempts = 5
)
