// Package errors provides sentinel errors and custom error types for the gitsnap application.
// Use errors.Is() and errors.As() to check for specific error types.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions
var (
	// ErrIdentityNotConfigured indicates that user.name or user.email is missing from git config
	ErrIdentityNotConfigured = errors.New("git identity not configured")

	// ErrInvalidSignature indicates that a commit signature could not be built
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrNotOnBranch indicates that HEAD is not on a branch
	ErrNotOnBranch = errors.New("not on a branch")

	// ErrRemoteNotFound indicates that the push remote does not exist
	ErrRemoteNotFound = errors.New("remote not found")

	// ErrUnresolvedConflicts indicates that the index still holds merge conflict stages
	ErrUnresolvedConflicts = errors.New("unresolved conflicts")
)

// MissingConfigError represents a required git config key that has no value
type MissingConfigError struct {
	Key string
}

func (e *MissingConfigError) Error() string {
	switch e.Key {
	case "user.name":
		return "username is not set in the git config; please set user.name"
	case "user.email":
		return "email is not set in the git config; please set user.email"
	}
	return fmt.Sprintf("%s is not set in the git config", e.Key)
}

// Is returns true if the target error is ErrIdentityNotConfigured
func (e *MissingConfigError) Is(target error) bool {
	return target == ErrIdentityNotConfigured
}

// NewMissingConfigError creates a new MissingConfigError
func NewMissingConfigError(key string) *MissingConfigError {
	return &MissingConfigError{Key: key}
}

// SignatureError represents a name/email pair that cannot form a signature
type SignatureError struct {
	Name  string
	Email string
}

func (e *SignatureError) Error() string {
	return fmt.Sprintf("could not generate the signature from %s and %s", e.Name, e.Email)
}

// Is returns true if the target error is ErrInvalidSignature
func (e *SignatureError) Is(target error) bool {
	return target == ErrInvalidSignature
}

// NewSignatureError creates a new SignatureError
func NewSignatureError(name, email string) *SignatureError {
	return &SignatureError{Name: name, Email: email}
}

// RemoteNotFoundError represents a push remote missing from the repository config
type RemoteNotFoundError struct {
	RemoteName string
}

func (e *RemoteNotFoundError) Error() string {
	return fmt.Sprintf("remote %s does not exist", e.RemoteName)
}

// Is returns true if the target error is ErrRemoteNotFound
func (e *RemoteNotFoundError) Is(target error) bool {
	return target == ErrRemoteNotFound
}

// NewRemoteNotFoundError creates a new RemoteNotFoundError
func NewRemoteNotFoundError(remoteName string) *RemoteNotFoundError {
	return &RemoteNotFoundError{RemoteName: remoteName}
}

// StepError attaches a fixed context string to an error returned by the git library.
// Step names the workflow stage that failed.
type StepError struct {
	Step    string
	Context string
	Err     error
}

func (e *StepError) Error() string {
	if e.Err == nil {
		return e.Context
	}
	return fmt.Sprintf("%s: %v", e.Context, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// NewStepError creates a new StepError
func NewStepError(step, context string, err error) *StepError {
	return &StepError{
		Step:    step,
		Context: context,
		Err:     err,
	}
}

// StepOf returns the workflow step recorded in err, or "" if err carries none
func StepOf(err error) string {
	var stepErr *StepError
	if errors.As(err, &stepErr) {
		return stepErr.Step
	}
	return ""
}
