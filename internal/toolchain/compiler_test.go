package toolchain

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	dagerrors "github.com/stevehiehn/exercheck/internal/errors"
)

// fakeCC copies the source to the output and marks it executable, so
// shell scripts can stand in for C programs.
var fakeCC = Compiler{
	Command: "sh",
	Flags:   []string{"-c", `cp "$1" "$3" && chmod +x "$3"`, "fakecc"},
}

func TestArgsOrder(t *testing.T) {
	c := Compiler{Command: "gcc", Flags: []string{"-Wall"}}
	got := c.CommandLine("main.c", "main")
	if got != "gcc -Wall main.c -o main" {
		t.Errorf("unexpected command line %q", got)
	}
}

func TestBuildSuccess(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "hello.c"), []byte("#!/bin/sh\necho hi\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := fakeCC.Build(context.Background(), dir, "hello.c", "hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	info, err := os.Stat(filepath.Join(dir, "hello"))
	if err != nil {
		t.Fatalf("executable not produced: %v", err)
	}
	if info.Mode()&0o111 == 0 {
		t.Error("expected executable bit")
	}
}

func TestBuildFailureCarriesDiagnostics(t *testing.T) {
	failing := Compiler{Command: "sh", Flags: []string{"-c", `echo "$1:1: error: boom" >&2; exit 1`, "fakecc"}}
	err := failing.Build(context.Background(), t.TempDir(), "broken.c", "broken")
	if !dagerrors.IsType(err, dagerrors.CompileFailed) {
		t.Fatalf("expected compile error, got %v", err)
	}
	re, _ := dagerrors.As(err)
	if !strings.Contains(re.Detail, "broken.c:1: error: boom") {
		t.Errorf("expected diagnostics, got %q", re.Detail)
	}
}

func TestBuildMissingCompiler(t *testing.T) {
	c := Compiler{Command: "no-such-cc-anywhere"}
	if c.Available() {
		t.Fatal("compiler should not be available")
	}
	err := c.Build(context.Background(), t.TempDir(), "a.c", "a")
	if !dagerrors.IsType(err, dagerrors.ToolNotFound) {
		t.Fatalf("expected tool-not-found, got %v", err)
	}
}

func TestBuildWithGCC(t *testing.T) {
	gcc := Compiler{Command: "gcc"}
	if !gcc.Available() {
		t.Skip("gcc not installed")
	}
	dir := t.TempDir()
	src := "int main(void) { return 0; }\n"
	if err := os.WriteFile(filepath.Join(dir, "ok.c"), []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := gcc.Build(context.Background(), dir, "ok.c", "ok"); err != nil {
		t.Fatalf("gcc build failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "bad.c"), []byte("int main(void) { return }\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := gcc.Build(context.Background(), dir, "bad.c", "bad"); !dagerrors.IsType(err, dagerrors.CompileFailed) {
		t.Fatalf("expected compile failure, got %v", err)
	}
}
