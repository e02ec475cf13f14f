package observation

import (
	"errors"
	"fmt"
)

// Sentinels matched by the typed errors below through errors.Is.
var (
	ErrConfig                  = errors.New("invalid observation config")
	ErrMalformedBuffer         = errors.New("malformed observation buffer")
	ErrIncompatibleObservables = errors.New("incompatible observables")
)

// ConfigError reports an invalid handler configuration.
type ConfigError struct {
	Field  string
	Value  int
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%v: %s", ErrConfig, e.Reason)
	}
	return fmt.Sprintf("%v: %s=%d: %s", ErrConfig, e.Field, e.Value, e.Reason)
}

func (e *ConfigError) Is(target error) bool { return target == ErrConfig }

// MalformedBufferError reports a non-empty buffer that is too short for
// the segments its config requires.
type MalformedBufferError struct {
	Config  Config
	Segment string // first segment that did not fit
	Need    int    // total bytes required
	Got     int
}

func (e *MalformedBufferError) Error() string {
	return fmt.Sprintf("%v: %s: %s segment needs %d bytes, buffer has %d",
		ErrMalformedBuffer, e.Config, e.Segment, e.Need, e.Got)
}

func (e *MalformedBufferError) Is(target error) bool { return target == ErrMalformedBuffer }

// IncompatibleObservablesError is returned by Merge when two configs do
// not describe the same observation.
type IncompatibleObservablesError struct {
	A, B Config
}

func (e *IncompatibleObservablesError) Error() string {
	return fmt.Sprintf("%v: %s | %s", ErrIncompatibleObservables, e.A, e.B)
}

func (e *IncompatibleObservablesError) Is(target error) bool {
	return target == ErrIncompatibleObservables
}
