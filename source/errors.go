package source

import (
	"errors"
	"fmt"
)

var (
	ErrMarkerNotFound = errors.New("__NEXT_DATA__ script not found")
	ErrBuildIDMissing = errors.New("buildId missing from page data")
	ErrEmptySlot      = errors.New("stop is not after start")
)

// TransportError means the request did not complete with a 200 response.
type TransportError struct {
	URL    string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("GET %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.Status)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ParseError means a response body did not have the expected shape.
type ParseError struct {
	What string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.What, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ResolutionError means the VOH build id could not be obtained.
type ResolutionError struct {
	Page string
	Err  error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve build id from %s: %v", e.Page, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// ScheduleFormatError rejects a single record.
type ScheduleFormatError struct {
	Field string
	Value string
	Err   error
}

func (e *ScheduleFormatError) Error() string {
	return fmt.Sprintf("bad %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ScheduleFormatError) Unwrap() error { return e.Err }

func missingKey(what, key string) error {
	return &ParseError{What: what, Err: fmt.Errorf("missing key %q", key)}
}
