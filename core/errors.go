package core

import (
	"errors"
	"fmt"
)

// StorageError reports a failed read or write of the persisted reminder state.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("reminder storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// ConfigurationError reports required configuration that is blank when a flow needs it.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("reminder configuration: %s is required", e.Field)
	}
	return fmt.Sprintf("reminder configuration: %s: %s", e.Field, e.Reason)
}

// PresentationError reports that a dialog, launcher or mail collaborator failed.
// It never stands for a user's dismiss choice.
type PresentationError struct {
	Action string
	Err    error
}

func (e *PresentationError) Error() string {
	return fmt.Sprintf("reminder presentation %s: %v", e.Action, e.Err)
}

func (e *PresentationError) Unwrap() error { return e.Err }

func IsStorageError(err error) bool {
	var target *StorageError
	return errors.As(err, &target)
}

func IsConfigurationError(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}

func IsPresentationError(err error) bool {
	var target *PresentationError
	return errors.As(err, &target)
}
