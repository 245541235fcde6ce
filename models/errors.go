package models

import "fmt"

// FetchError reports a transport failure for a page URL.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ExtractionError reports a page whose embedded JSON payload could not be
// located or decoded.
type ExtractionError struct {
	URL    string
	Reason string
	Err    error
}

func (e *ExtractionError) Error() string {
	msg := "extract"
	if e.URL != "" {
		msg += " " + e.URL
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// ParseError reports a record missing a required field.
type ParseError struct {
	ID    string
	Field string
	Err   error
}

func (e *ParseError) Error() string {
	id := e.ID
	if id == "" {
		id = "?"
	}
	if e.Err != nil {
		return fmt.Sprintf("parse record %s: field %s: %v", id, e.Field, e.Err)
	}
	return fmt.Sprintf("parse record %s: field %s missing", id, e.Field)
}

func (e *ParseError) Unwrap() error { return e.Err }

// FilterPreconditionError is returned when a dataset filter is called with
// arguments it cannot honour.
type FilterPreconditionError struct {
	Reason string
}

func (e *FilterPreconditionError) Error() string {
	return "filter: " + e.Reason
}
