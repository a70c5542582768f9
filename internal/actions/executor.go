package actions

import (
	"fmt"
	"io"
	"strings"
)

// Executor performs (or describes) the side effects of a publish run.
type Executor interface {
	// Phase announces the start of a logical phase. It never fails.
	Phase(name string)
	// CreateDirectory ensures path and its parents exist.
	CreateDirectory(path string) error
	// CreateFile replaces any file at path with exactly content.
	CreateFile(path string, content []byte) error
	// Run invokes command[0] with the remaining elements as arguments.
	// When dir is non-empty the process runs inside it.
	Run(dir string, command ...string) error
}

// Mode selects which executors a run is wired with.
type Mode string

const (
	// ModeNormal performs every effect without tracing it.
	ModeNormal Mode = "normal"
	// ModeDryRun only traces what would happen.
	ModeDryRun Mode = "dry-run"
	// ModeVerbose traces every effect and then performs it.
	ModeVerbose Mode = "verbose"
)

// ParseMode converts the resolved CLI booleans into a Mode. Dry-run wins over verbose.
func ParseMode(dryRun, verbose bool) Mode {
	switch {
	case dryRun:
		return ModeDryRun
	case verbose:
		return ModeVerbose
	default:
		return ModeNormal
	}
}

// New constructs the executor for mode. trace receives the print output, stdout and stderr
// receive the output of launched processes.
func New(mode Mode, trace, stdout, stderr io.Writer) (Executor, error) {
	switch mode {
	case ModeDryRun:
		return NewPrintExecutor(trace), nil
	case ModeVerbose:
		// print first so a failing effect is still visible in the trace
		return NewCompositeExecutor(NewPrintExecutor(trace), NewRealExecutor(stdout, stderr)), nil
	case ModeNormal, "":
		return NewRealExecutor(stdout, stderr), nil
	default:
		return nil, fmt.Errorf("unknown executor mode %q", mode)
	}
}

func formatCommand(command []string) string {
	return strings.Join(command, " ")
}
