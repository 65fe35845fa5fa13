package adapter

import (
	"errors"
	"fmt"
)

// Error wraps provider errors with status metadata.
type Error struct {
	Provider string
	Status   int
	Err      error
}

func (e *Error) Error() string {
	if e == nil {
		return "adapter error"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s API error: %s", e.Provider, e.Err.Error())
	}
	return fmt.Sprintf("%s API error (status=%d)", e.Provider, e.Status)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// StatusCode returns the provider status attached to err, or 0.
func StatusCode(err error) int {
	var adapterErr *Error
	if errors.As(err, &adapterErr) {
		return adapterErr.Status
	}
	return 0
}
