package command

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnknownCommand is returned when a token resolves to no command.
var ErrUnknownCommand = errors.New("unknown command")

// PermissionError is an expected denial by the permission evaluator.
type PermissionError struct {
	Tier   string
	Reason string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied (%s): %s", e.Tier, e.Reason)
}

// CooldownError reports that the caller is still throttled.
type CooldownError struct {
	Command   string
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("command %s on cooldown for %s", e.Command, e.Remaining)
}

// ArgumentError reports a missing or malformed argument.
type ArgumentError struct {
	Name    string
	Problem string
	Missing bool
}

func (e *ArgumentError) Error() string {
	if e.Missing {
		return fmt.Sprintf("missing argument %q", e.Name)
	}
	return fmt.Sprintf("invalid argument %q: %s", e.Name, e.Problem)
}

// MissingArgument builds the error for a required argument with no token.
func MissingArgument(name string) *ArgumentError {
	return &ArgumentError{Name: name, Problem: "is required", Missing: true}
}

// InvalidArgument builds the error for a token that failed coercion or validation.
func InvalidArgument(name, problem string) *ArgumentError {
	return &ArgumentError{Name: name, Problem: problem}
}

// SpecError reports a command definition that violates a construction-time invariant.
type SpecError struct {
	Command string
	Problem string
}

func (e *SpecError) Error() string {
	return fmt.Sprintf("command %q: %s", e.Command, e.Problem)
}
