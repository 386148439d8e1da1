package engine

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

// CommandError describes a command the engine declined to apply.
//
// Dispatch never returns errors; rejected commands leave the state
// unchanged and surface as CommandError effects, which are logged and
// retained until the next dispatch (see Engine.LastDiagnostics).
type CommandError struct {
	// Code identifies the error category.
	Code DiagnosticCode

	// Command is the kind of the rejected command.
	Command string

	// Message is a human-readable description.
	Message string

	// Details contains additional context.
	Details map[string]string
}

// DiagnosticCode categorizes rejected commands.
type DiagnosticCode string

const (
	// CodeInvalidTransition indicates a phase change not in the transition table.
	CodeInvalidTransition DiagnosticCode = "INVALID_TRANSITION"

	// CodeUnknownReference indicates a device, event or choice id with no match.
	CodeUnknownReference DiagnosticCode = "UNKNOWN_REFERENCE"

	// CodePreconditionFailed indicates the session is not in a state the command applies to.
	CodePreconditionFailed DiagnosticCode = "PRECONDITION_FAILED"

	// CodeInvalidArgument indicates a malformed command argument.
	CodeInvalidArgument DiagnosticCode = "INVALID_ARGUMENT"

	// CodeListenerFailed indicates a subscriber panicked.
	CodeListenerFailed DiagnosticCode = "LISTENER_FAILED"
)

// Error implements the error interface.
func (e *CommandError) Error() string {
	if e.Command != "" {
		return fmt.Sprintf("%s: %s (command=%s)", e.Code, e.Message, e.Command)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (*CommandError) effect() {}

// logArgs flattens the error into slog key/value pairs.
func (e *CommandError) logArgs() []any {
	args := []any{"code", string(e.Code), "command", e.Command}
	for _, k := range slices.Sorted(maps.Keys(e.Details)) {
		args = append(args, k, e.Details[k])
	}
	return args
}

func hasCode(err error, code DiagnosticCode) bool {
	var ce *CommandError
	if errors.As(err, &ce) {
		return ce.Code == code
	}
	return false
}

// IsInvalidTransition returns true if err is a rejected phase change.
// Uses errors.As to handle wrapped errors.
func IsInvalidTransition(err error) bool { return hasCode(err, CodeInvalidTransition) }

// IsUnknownReference returns true if err names an id with no catalog match.
// Uses errors.As to handle wrapped errors.
func IsUnknownReference(err error) bool { return hasCode(err, CodeUnknownReference) }

// IsPreconditionFailed returns true if err is a command issued in the wrong state.
func IsPreconditionFailed(err error) bool { return hasCode(err, CodePreconditionFailed) }

// IsInvalidArgument returns true if err is a malformed argument.
func IsInvalidArgument(err error) bool { return hasCode(err, CodeInvalidArgument) }

func newCommandError(code DiagnosticCode, cmd Command, msg string, details map[string]string) *CommandError {
	kind := ""
	if cmd != nil {
		kind = cmd.Kind()
	}
	return &CommandError{Code: code, Command: kind, Message: msg, Details: details}
}
