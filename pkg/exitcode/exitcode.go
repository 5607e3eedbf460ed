// Package exitcode provides standardized exit codes for catmigrate
package exitcode

import (
	"errors"
	"io/fs"
)

// Exit codes for the catmigrate CLI
const (
	Success         = 0
	GeneralError    = 1
	ConfigError     = 2
	PendingChanges  = 3
	FileSystemError = 4
	PermissionError = 6
)

// String returns a human-readable description of the exit code
func String(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case ConfigError:
		return "Configuration error"
	case PendingChanges:
		return "Files need migration"
	case FileSystemError:
		return "File system error"
	case PermissionError:
		return "Permission error"
	default:
		return "Unknown error"
	}
}

// Error carries the process exit code alongside the cause.
type Error struct {
	Code int
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return String(e.Code)
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Wrap attaches code to err. A nil err stays nil.
func Wrap(code int, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Err: err}
}

// Of returns the exit code for err: the code of the outermost *Error, else a
// code derived from filesystem errors, else GeneralError. nil maps to Success.
func Of(err error) int {
	if err == nil {
		return Success
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	if errors.Is(err, fs.ErrPermission) {
		return PermissionError
	}
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return FileSystemError
	}
	return GeneralError
}
