package domain

import "errors"

var (
	// Classification errors: returned before any network call is made.
	ErrInvalidReference = errors.New("source reference is not a well-formed URL")
	ErrUnresolvableID   = errors.New("cloud drive file id not found in url")

	// Acquisition errors.
	ErrAllStrategiesFailed = errors.New("every download strategy failed")
	ErrExtractionFailed    = errors.New("media extraction failed")
	ErrDirectFetchFailed   = errors.New("direct fetch failed")

	// Transcode errors.
	ErrEngineFailed = errors.New("transcoding engine failed")

	// Lookup errors.
	ErrNotFound = errors.New("resource not found")
	ErrExpired  = errors.New("artifact has expired")
)

// ErrorKind maps a stage error to the stable kind string carried in
// failure responses. Anything unclassified is "internal": fatal to the
// job, never to the process.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrInvalidReference):
		return "invalid_reference"
	case errors.Is(err, ErrUnresolvableID):
		return "unresolvable_id"
	case errors.Is(err, ErrAllStrategiesFailed):
		return "all_strategies_failed"
	case errors.Is(err, ErrExtractionFailed):
		return "extraction_failed"
	case errors.Is(err, ErrDirectFetchFailed):
		return "direct_fetch_failed"
	case errors.Is(err, ErrEngineFailed):
		return "engine_failed"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrExpired):
		return "expired"
	default:
		return "internal"
	}
}
