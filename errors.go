package cachepolicy

import (
	"errors"
	"fmt"
)

var (
	ErrDisconnected   = errors.New("cachepolicy: disconnected")
	ErrInvalidKey     = errors.New("cachepolicy: invalid key")
	ErrServerTimeout  = errors.New("cachepolicy: generate timed out")
	ErrInvalidRule    = errors.New("cachepolicy: invalid rule")
	ErrInvalidSegment = errors.New("cachepolicy: invalid segment name")
	ErrGeneratePanic  = errors.New("cachepolicy: generator panicked")
)

// RuleError reports which rule option failed validation.
type RuleError struct {
	Field  string
	Reason string
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("cachepolicy: invalid rule: %s: %s", e.Field, e.Reason)
}

func (e *RuleError) Unwrap() error { return ErrInvalidRule }
