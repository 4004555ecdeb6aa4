package cachefile

import (
	"errors"
	"fmt"
)

// ErrCacheParse matches every *CacheParseError via errors.Is.
var ErrCacheParse = errors.New("cache parse failed")

// CacheParseError reports a cache document that is not valid JSON, misses a
// top-level field, violates the schema, or disagrees with its own records.
type CacheParseError struct {
	Path   string
	Reason string
	Err    error
}

// Error implements error.
func (e *CacheParseError) Error() string {
	msg := "cache"
	if e.Path != "" {
		msg += " " + e.Path
	}

	msg += ": " + e.Reason

	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}

	return msg
}

// Unwrap returns the underlying cause.
func (e *CacheParseError) Unwrap() error {
	return e.Err
}

// Is matches ErrCacheParse.
func (e *CacheParseError) Is(target error) bool {
	return target == ErrCacheParse
}

func parseError(reason string, err error) *CacheParseError {
	return &CacheParseError{Reason: reason, Err: err}
}

// withPath sets the path on a *CacheParseError, or returns err unchanged.
func withPath(err error, path string) error {
	var parseErr *CacheParseError
	if errors.As(err, &parseErr) && parseErr.Path == "" {
		parseErr.Path = path
	}

	return err
}
