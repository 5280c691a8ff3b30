// Package auth validates the JWT bearer tokens issued by the main StudyFlow
// backend. The intelligence service never issues production tokens itself;
// it only has to agree on the shared HMAC secret.
package auth

import "errors"

// Sentinel errors for token validation. The API layer maps all of these to
// HTTP 401.
var (
	// ErrInvalidToken indicates the token is malformed or its signature does
	// not verify.
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken indicates the token's expiry has passed.
	ErrExpiredToken = errors.New("token expired")

	// ErrTokenNotYetValid indicates the token's not-before time is in the
	// future.
	ErrTokenNotYetValid = errors.New("token not yet valid")

	// ErrWrongTokenType indicates a token of the wrong type (e.g. a refresh
	// token) was presented as an access token.
	ErrWrongTokenType = errors.New("wrong token type")
)
