package actions

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPrintRendersEveryOperation(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	printer := NewPrintExecutor(&out).WithoutColor()

	printer.Phase("build")
	if err := printer.CreateDirectory("/tmp/ctx"); err != nil {
		t.Fatalf("CreateDirectory() error = %v", err)
	}
	if err := printer.CreateFile("/tmp/ctx/Dockerfile", []byte("FROM swift:5.3.3\nRUN true\n")); err != nil {
		t.Fatalf("CreateFile() error = %v", err)
	}
	if err := printer.Run("/tmp/ctx", "docker", "build", "-t", "kitura/swift-ci:5.3.3", "/tmp/ctx"); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if err := printer.Run("", "docker", "push", "kitura/swift-ci:5.3.3"); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := strings.Join([]string{
		"==> build",
		"mkdir /tmp/ctx",
		"write /tmp/ctx/Dockerfile",
		"    FROM swift:5.3.3",
		"    RUN true",
		"run docker build -t kitura/swift-ci:5.3.3 /tmp/ctx (in /tmp/ctx)",
		"run docker push kitura/swift-ci:5.3.3",
		"",
	}, "\n")
	if out.String() != want {
		t.Fatalf("unexpected trace:\n got: %q\nwant: %q", out.String(), want)
	}
}

func TestPrintHasNoSideEffects(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	dir := filepath.Join(base, "ctx")
	printer := NewPrintExecutor(&bytes.Buffer{})

	if err := printer.CreateDirectory(dir); err != nil {
		t.Fatalf("CreateDirectory() error = %v", err)
	}
	if err := printer.CreateFile(filepath.Join(base, "Dockerfile"), []byte("x")); err != nil {
		t.Fatalf("CreateFile() error = %v", err)
	}
	if err := printer.Run("", "sh", "-c", "touch "+filepath.Join(base, "ran")); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	entries, err := os.ReadDir(base)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("print executor touched the filesystem: %v", entries)
	}
}

func TestPrintMasksPasswords(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	printer := NewPrintExecutor(&out).WithoutColor()
	command := []string{"docker", "login", "registry.example.com", "-u", "ci", "-p", "hunter2"}

	if err := printer.Run("", command...); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if strings.Contains(out.String(), "hunter2") {
		t.Fatalf("trace leaked the password: %q", out.String())
	}
	if !strings.Contains(out.String(), "-p "+maskedValue) {
		t.Fatalf("trace missing masked password: %q", out.String())
	}
	if command[6] != "hunter2" {
		t.Fatal("masking mutated the caller's command")
	}
}
