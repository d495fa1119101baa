package extract

import (
	"errors"
	"fmt"
)

// ErrSizeLimit marks a transfer aborted for exceeding the configured
// maximum artifact size.
var ErrSizeLimit = errors.New("maximum artifact size exceeded")

// ExtractionError reports that the engine could not resolve a URL or
// enumerate its streams.
type ExtractionError struct {
	URL string
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed for %s: %v", e.URL, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// DownloadError wraps a failure during transfer or post-processing.
type DownloadError struct {
	URL string
	Err error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("download failed for %s: %v", e.URL, e.Err)
}

func (e *DownloadError) Unwrap() error { return e.Err }
