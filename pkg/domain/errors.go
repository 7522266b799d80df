package domain

import (
	"errors"
	"fmt"
)

// ErrUnknownStep is returned when a key is not present in a wizard's registry.
var ErrUnknownStep = errors.New("unknown step")

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrNotConfigured is returned when a required collaborator was not supplied.
var ErrNotConfigured = errors.New("required collaborator not configured")

// ErrDuplicateStep is returned when two steps of one wizard share a key.
var ErrDuplicateStep = errors.New("duplicate step key")

// ErrDuplicateAttribute is returned when two steps of one wizard declare the same attribute.
var ErrDuplicateAttribute = errors.New("duplicate attribute")

// ErrInvalidDefinition is returned when a step definition is malformed.
var ErrInvalidDefinition = errors.New("invalid step definition")

// UnknownStepError carries the offending key. It matches ErrUnknownStep via errors.Is.
type UnknownStepError struct {
	Wizard string
	Key    string
}

func (e *UnknownStepError) Error() string {
	if e.Wizard == "" {
		return fmt.Sprintf("unknown step %q", e.Key)
	}
	return fmt.Sprintf("unknown step %q in wizard %q", e.Key, e.Wizard)
}

// Is reports whether target is ErrUnknownStep.
func (e *UnknownStepError) Is(target error) bool {
	return target == ErrUnknownStep
}

// NewUnknownStep builds an UnknownStepError for the given wizard and key.
func NewUnknownStep(wizard, key string) error {
	return &UnknownStepError{Wizard: wizard, Key: key}
}
