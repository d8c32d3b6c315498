package clip

import "errors"

var (
	// ErrFetchFailed is returned when a clip's bytes cannot be retrieved.
	ErrFetchFailed = errors.New("failed to fetch clip")

	// ErrDecodeFailed is returned when retrieved bytes are not decodable audio.
	ErrDecodeFailed = errors.New("failed to decode clip")

	// ErrUnsupportedHandle is returned for a handle no resolver understands.
	ErrUnsupportedHandle = errors.New("unsupported clip handle")
)
