// Package errors carries HTTP status codes through the service layers.
package errors

// ErrorWithStatusCode is an error that knows which HTTP status it maps to.
// Plain errors surface as 500 at the handler level; return this instead when
// the status should differ (bad input, missing auth).
type ErrorWithStatusCode struct {
	Message    string
	StatusCode int
}

func (e *ErrorWithStatusCode) Error() string {
	return e.Message
}
