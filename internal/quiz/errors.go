package quiz

import "errors"

var (
	// ErrFetch reports that the category list could not be loaded.
	ErrFetch = errors.New("category directory: fetch failed")
	// ErrUpstreamUnavailable reports a failed or non-200 upstream call.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrInvalidAmount reports a non-numeric or non-positive amount.
	ErrInvalidAmount = errors.New("amount must be a positive integer")
)

// DecodeError wraps a malformed upstream payload.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return "decoding upstream payload: " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
