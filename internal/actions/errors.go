package actions

import (
	"errors"
	"fmt"
)

// ErrEmptyCommand is returned by Run when no program was named.
var ErrEmptyCommand = errors.New("no command provided")

// DirectoryError reports a directory that could not be created.
type DirectoryError struct {
	Path string
	Err  error
}

func (e *DirectoryError) Error() string {
	return fmt.Sprintf("create directory %s: %v", e.Path, e.Err)
}

func (e *DirectoryError) Unwrap() error { return e.Err }

// FileWriteError reports a file that could not be replaced or written.
type FileWriteError struct {
	Path string
	Err  error
}

func (e *FileWriteError) Error() string {
	return fmt.Sprintf("write file %s: %v", e.Path, e.Err)
}

func (e *FileWriteError) Unwrap() error { return e.Err }

// CommandError reports an external command that exited non-zero or could not be launched.
// ExitCode is -1 when the process never started.
type CommandError struct {
	Command  []string
	Dir      string
	ExitCode int
	Err      error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("command %q", formatCommand(e.Command))
	if e.Dir != "" {
		msg += fmt.Sprintf(" in %s", e.Dir)
	}
	if e.ExitCode >= 0 {
		return fmt.Sprintf("%s exited with code %d", msg, e.ExitCode)
	}
	return fmt.Sprintf("%s failed to start: %v", msg, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }
