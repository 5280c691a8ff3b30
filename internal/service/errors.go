package service

import "errors"

// Common service errors - sentinel errors used across service implementations.
// Callers check for these with errors.Is(); the API layer maps them to HTTP
// status codes.
var (
	// ErrNoSessionData indicates the user has no study sessions in the
	// requested window, so there is nothing to analyze.
	// API layer should map this to HTTP 404 Not Found.
	ErrNoSessionData = errors.New("no study sessions found")

	// ErrNoReviewData indicates the user has no completed reviews yet.
	// API layer should map this to HTTP 404 Not Found.
	ErrNoReviewData = errors.New("no completed reviews found")
)
