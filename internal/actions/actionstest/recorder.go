// Package actionstest provides an in-memory executor that records every call.
package actionstest

import (
	"strings"
	"sync"

	"github.com/cochaviz/swift-ci/internal/actions"
)

// Op names a recorded executor operation.
type Op string

const (
	OpPhase           Op = "phase"
	OpCreateDirectory Op = "mkdir"
	OpCreateFile      Op = "write"
	OpRun             Op = "run"
)

// Call is one recorded operation. Only the fields relevant to Op are set.
type Call struct {
	Op      Op
	Name    string
	Path    string
	Content string
	Dir     string
	Command []string
}

// String renders the call compactly, e.g. "run docker push ns/repo:1".
func (c Call) String() string {
	switch c.Op {
	case OpPhase:
		return "phase " + c.Name
	case OpCreateDirectory, OpCreateFile:
		return string(c.Op) + " " + c.Path
	default:
		return "run " + strings.Join(c.Command, " ")
	}
}

// Recorder implements actions.Executor by appending calls to Calls.
// When Fail returns a non-nil error for a call, the call is still recorded and the error returned.
type Recorder struct {
	Fail func(Call) error

	mu    sync.Mutex
	calls []Call
}

var _ actions.Executor = (*Recorder)(nil)

func (r *Recorder) Phase(name string) {
	r.record(Call{Op: OpPhase, Name: name})
}

func (r *Recorder) CreateDirectory(path string) error {
	return r.record(Call{Op: OpCreateDirectory, Path: path})
}

func (r *Recorder) CreateFile(path string, content []byte) error {
	return r.record(Call{Op: OpCreateFile, Path: path, Content: string(content)})
}

func (r *Recorder) Run(dir string, command ...string) error {
	return r.record(Call{Op: OpRun, Dir: dir, Command: append([]string(nil), command...)})
}

// Calls returns a copy of every recorded call.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Strings returns the String form of every recorded call, optionally skipping phases.
func (r *Recorder) Strings(withPhases bool) []string {
	var out []string
	for _, call := range r.Calls() {
		if call.Op == OpPhase && !withPhases {
			continue
		}
		out = append(out, call.String())
	}
	return out
}

// Commands returns the command of every recorded run.
func (r *Recorder) Commands() [][]string {
	var out [][]string
	for _, call := range r.Calls() {
		if call.Op == OpRun {
			out = append(out, call.Command)
		}
	}
	return out
}

func (r *Recorder) record(call Call) error {
	r.mu.Lock()
	r.calls = append(r.calls, call)
	fail := r.Fail
	r.mu.Unlock()

	if fail != nil {
		return fail(call)
	}
	return nil
}
