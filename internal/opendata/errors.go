package opendata

import "errors"

// Remote query error sentinels.
var (
	// ErrRemoteUnavailable covers transport failures and non-success statuses.
	ErrRemoteUnavailable = errors.New("open-data API unavailable")

	// ErrMalformedResponse is returned when the payload is not a JSON array of records.
	ErrMalformedResponse = errors.New("malformed open-data response")
)
