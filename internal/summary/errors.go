package summary

import "fmt"

// ParseError means a play event carried a timestamp this package could not
// parse. Malformed input fails the whole report rather than silently
// dropping records.
type ParseError struct {
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing timestamp %q: %v", e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
