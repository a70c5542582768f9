package actions

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
)

const (
	contentIndent = "    "
	maskedValue   = "********"
)

// PrintExecutor describes every operation on a writer without performing it.
// All operations succeed.
type PrintExecutor struct {
	out io.Writer

	banner *color.Color
	effect *color.Color

	mu sync.Mutex
}

var _ Executor = (*PrintExecutor)(nil)

// NewPrintExecutor returns a print executor writing to out (stdout when nil).
func NewPrintExecutor(out io.Writer) *PrintExecutor {
	if out == nil {
		out = os.Stdout
	}
	return &PrintExecutor{
		out:    out,
		banner: color.New(color.FgCyan, color.Bold),
		effect: color.New(color.FgYellow),
	}
}

// WithoutColor disables ANSI escapes regardless of the terminal.
func (p *PrintExecutor) WithoutColor() *PrintExecutor {
	p.banner.DisableColor()
	p.effect.DisableColor()
	return p
}

func (p *PrintExecutor) Phase(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.banner.Fprintf(p.out, "==> %s\n", name)
}

func (p *PrintExecutor) CreateDirectory(path string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.effect.Fprint(p.out, "mkdir")
	fmt.Fprintf(p.out, " %s\n", path)
	return nil
}

func (p *PrintExecutor) CreateFile(path string, content []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.effect.Fprint(p.out, "write")
	fmt.Fprintf(p.out, " %s\n", path)

	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), len(content)+1)
	for scanner.Scan() {
		fmt.Fprintf(p.out, "%s%s\n", contentIndent, scanner.Text())
	}
	return nil
}

func (p *PrintExecutor) Run(dir string, command ...string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.effect.Fprint(p.out, "run")
	fmt.Fprintf(p.out, " %s", formatCommand(maskSecrets(command)))
	if dir != "" {
		fmt.Fprintf(p.out, " (in %s)", dir)
	}
	fmt.Fprintln(p.out)
	return nil
}

// maskSecrets hides the value following a password flag.
func maskSecrets(command []string) []string {
	masked := append([]string(nil), command...)
	for i := 0; i < len(masked)-1; i++ {
		switch masked[i] {
		case "-p", "--password":
			masked[i+1] = maskedValue
			i++
		}
	}
	return masked
}
