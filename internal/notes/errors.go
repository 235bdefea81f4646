package notes

import (
	"errors"
	"fmt"
)

// ServiceError is returned when the service answers with a non-2xx status.
type ServiceError struct {
	StatusCode int
	// Detail is the body's "detail" field, empty when the body carried none.
	Detail string
}

// Error returns the generic status description. Detail is deliberately not
// part of it; callers pick between the two.
func (e *ServiceError) Error() string {
	return fmt.Sprintf("request failed with status code %d", e.StatusCode)
}

// DetailOf returns the service-provided detail carried by err, if any.
func DetailOf(err error) (string, bool) {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) && svcErr.Detail != "" {
		return svcErr.Detail, true
	}
	return "", false
}
