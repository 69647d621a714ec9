// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Error types, display, and exit-code mapping for the CLI.
//
// Command handlers return errors; they never print and swallow them.
// The top level displays the error once and exits with a stable,
// category-specific code so scripts can branch on failure class.

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jeranaias/aide-tui/internal/api"
)

// =============================================================================
// EXIT CODES
// =============================================================================

// Exit codes are stable for scripting.
const (
	ExitSuccess       = 0 // command completed
	ExitGeneralError  = 1 // uncategorized failure
	ExitUsageError    = 2 // bad arguments or missing TTY
	ExitConfigError   = 3 // configuration missing or malformed
	ExitNetworkError  = 4 // backend unreachable
	ExitBackendError  = 5 // backend reached, request rejected
	ExitNotFoundError = 6 // resource does not exist
	ExitIOError       = 7 // local file or archive operation failed
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// CommandError wraps a failure with the command and action that hit it.
type CommandError struct {
	Command string
	Action  string
	Reason  string
	Err     error
}

func (e *CommandError) Error() string {
	base := fmt.Sprintf("%s %s failed: %s", e.Command, e.Action, e.Reason)
	if e.Err == nil {
		return base
	}
	return base + ": " + e.Err.Error()
}

func (e *CommandError) Unwrap() error { return e.Err }

// ValidationError reports rejected user input, optionally with an
// example of a valid value.
type ValidationError struct {
	Field   string
	Value   string
	Reason  string
	Example string
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "invalid %s: %s", e.Field, e.Reason)
	if e.Value != "" {
		fmt.Fprintf(&b, " (got: %s)", e.Value)
	}
	if e.Example != "" {
		fmt.Fprintf(&b, "\nExample: %s", e.Example)
	}
	return b.String()
}

// NotFoundError reports a missing resource by type and identifier.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string { return e.Resource + " not found: " + e.ID }

// =============================================================================
// CONSTRUCTORS
// =============================================================================

// NewCommandError builds a CommandError.
func NewCommandError(cmd, action, reason string, err error) error {
	return &CommandError{Command: cmd, Action: action, Reason: reason, Err: err}
}

// NewValidationError builds a ValidationError without an example.
func NewValidationError(field, val, reason string) error {
	return &ValidationError{Field: field, Value: val, Reason: reason}
}

// NewValidationErrorWithExample builds a ValidationError carrying an
// example of valid input.
func NewValidationErrorWithExample(field, val, reason, example string) error {
	return &ValidationError{Field: field, Value: val, Reason: reason, Example: example}
}

// NewNotFoundError builds a NotFoundError.
func NewNotFoundError(resource, id string) error { return &NotFoundError{Resource: resource, ID: id} }

// ErrMissingArgument reports a required argument that was not given.
func ErrMissingArgument(name, usage string) error {
	return NewValidationErrorWithExample(name, "", "required argument missing", usage)
}

// ErrUnsupportedFormat reports a format outside the supported set.
func ErrUnsupportedFormat(format string, supported []string) error {
	return NewValidationErrorWithExample("format", format, "unsupported format",
		fmt.Sprintf("supported formats: %v", supported))
}

// WrapError adds context while keeping the chain unwrappable.
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// =============================================================================
// DISPLAY
// =============================================================================

// DisplayError prints err once in the requested mode. Interactive mode
// appends a hint when the failure class has an obvious next step.
func DisplayError(err error, jsonMode bool) {
	if err == nil {
		return
	}
	if jsonMode {
		displayJSONError(err)
		return
	}

	fmt.Fprintf(os.Stderr, "%s %s\n", ErrorStyle.Render("[ERROR]"), err.Error())

	switch {
	case errors.Is(err, api.ErrNotConfigured):
		fmt.Fprintln(os.Stderr, "  Set a backend with: aide config set backend.base_url <url>")
	case api.IsNetworkFailure(err):
		fmt.Fprintln(os.Stderr, "  Check the backend is running: aide config get backend.base_url")
	}
}

// errorPayload is the JSON error shape. Success stays false; typed
// fields fill in per error_type and omit when empty.
type errorPayload struct {
	Error      string `json:"error"`
	Success    bool   `json:"success"`
	Type       string `json:"error_type"`
	Command    string `json:"command,omitempty"`
	Action     string `json:"action,omitempty"`
	Reason     string `json:"reason,omitempty"`
	Underlying string `json:"underlying_error,omitempty"`
	Field      string `json:"field,omitempty"`
	Value      string `json:"value,omitempty"`
	Example    string `json:"example,omitempty"`
	Resource   string `json:"resource,omitempty"`
	ID         string `json:"id,omitempty"`
}

func displayJSONError(err error) {
	payload := errorPayload{Error: err.Error(), Type: "generic_error"}

	switch v := err.(type) {
	case *CommandError:
		payload.Type = "command_error"
		payload.Command = v.Command
		payload.Action = v.Action
		payload.Reason = v.Reason
		if v.Err != nil {
			payload.Underlying = v.Err.Error()
		}
	case *ValidationError:
		payload.Type = "validation_error"
		payload.Field = v.Field
		payload.Value = v.Value
		payload.Reason = v.Reason
		payload.Example = v.Example
	case *NotFoundError:
		payload.Type = "not_found_error"
		payload.Resource = v.Resource
		payload.ID = v.ID
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(payload)
}

// =============================================================================
// EXIT CODE MAPPING
// =============================================================================

// exitHints maps message substrings to exit codes, checked in order
// after the structured checks come up empty.
var exitHints = []struct {
	code  int
	match []string
}{
	{ExitConfigError, []string{"config", "configuration", "settings"}},
	{ExitNetworkError, []string{"network", "connection", "unreachable", "dial"}},
	{ExitIOError, []string{"permission denied", "read-only", "no space"}},
}

// ExitCode maps an error to its exit code. Structured error types
// win over failure-class checks, which win over message-content hints.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var (
		validationErr *ValidationError
		notFoundErr   *NotFoundError
		ttyErr        *TTYRequiredError
	)
	switch {
	case errors.As(err, &validationErr), errors.As(err, &ttyErr):
		return ExitUsageError
	case errors.As(err, &notFoundErr):
		return ExitNotFoundError
	case errors.Is(err, api.ErrNotConfigured):
		return ExitConfigError
	case api.IsNetworkFailure(err):
		return ExitNetworkError
	case api.IsApplicationFailure(err):
		return ExitBackendError
	case errors.Is(err, os.ErrNotExist):
		return ExitNotFoundError
	case errors.Is(err, os.ErrPermission):
		return ExitIOError
	}

	msg := strings.ToLower(err.Error())
	for _, hint := range exitHints {
		for _, sub := range hint.match {
			if strings.Contains(msg, sub) {
				return hint.code
			}
		}
	}

	return ExitGeneralError
}
