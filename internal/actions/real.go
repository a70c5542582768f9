package actions

import (
	"errors"
	"io"
	"os"
	"os/exec"
)

// ExecCommandFunc creates the process for Run. Tests replace it to avoid launching real programs.
type ExecCommandFunc func(name string, arg ...string) *exec.Cmd

// RealExecutor applies every operation to the live filesystem and process table.
type RealExecutor struct {
	Stdout io.Writer
	Stderr io.Writer

	execCommand ExecCommandFunc
}

var _ Executor = (*RealExecutor)(nil)

// NewRealExecutor returns an executor streaming child output to stdout and stderr.
// Nil writers default to the process streams.
func NewRealExecutor(stdout, stderr io.Writer) *RealExecutor {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return &RealExecutor{
		Stdout:      stdout,
		Stderr:      stderr,
		execCommand: exec.Command,
	}
}

// WithExecCommand replaces the process constructor.
func (e *RealExecutor) WithExecCommand(fn ExecCommandFunc) *RealExecutor {
	if fn != nil {
		e.execCommand = fn
	}
	return e
}

// Phase is a no-op for the real executor.
func (e *RealExecutor) Phase(string) {}

func (e *RealExecutor) CreateDirectory(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return &DirectoryError{Path: path, Err: err}
	}
	return nil
}

func (e *RealExecutor) CreateFile(path string, content []byte) error {
	if info, err := os.Lstat(path); err == nil && info.IsDir() {
		return &FileWriteError{Path: path, Err: errors.New("is a directory")}
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return &FileWriteError{Path: path, Err: err}
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return &FileWriteError{Path: path, Err: err}
	}
	return nil
}

func (e *RealExecutor) Run(dir string, command ...string) error {
	if len(command) == 0 {
		return &CommandError{Dir: dir, ExitCode: -1, Err: ErrEmptyCommand}
	}

	execCommand := e.execCommand
	if execCommand == nil {
		execCommand = exec.Command
	}

	cmd := execCommand(command[0], command[1:]...)
	cmd.Dir = dir
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr

	if err := cmd.Run(); err != nil {
		cmdErr := &CommandError{
			Command:  append([]string(nil), command...),
			Dir:      dir,
			ExitCode: -1,
			Err:      err,
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			cmdErr.ExitCode = exitErr.ExitCode()
		}
		return cmdErr
	}
	return nil
}
