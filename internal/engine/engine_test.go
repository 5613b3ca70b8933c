package engine

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	dagerrors "github.com/stevehiehn/exercheck/internal/errors"
	"github.com/stevehiehn/exercheck/internal/suite"
	"github.com/stevehiehn/exercheck/internal/toolchain"
)

// fakeCC copies the "source" to the output and marks it executable, so the
// programs under test below are shell scripts.
var fakeCC = toolchain.Compiler{
	Command: "sh",
	Flags:   []string{"-c", `cp "$1" "$3" && chmod +x "$3"`, "fakecc"},
}

const (
	goodReader = `#!/bin/sh
read f
if [ -f "$f" ]; then
  cat "$f"
  echo "Word count: $(wc -w < "$f")"
else
  echo "Error: could not open $f"
fi
`
	silentReader = `#!/bin/sh
read f
cat "$f" 2>/dev/null
`
	goodWriter = `#!/bin/sh
read f
read m
read t
if [ "$m" = a ]; then echo "$t" >> "$f"; else echo "$t" > "$f"; fi
`
	// Ignores the mode and always truncates.
	truncatingWriter = `#!/bin/sh
read f
read m
read t
echo "$t" > "$f"
`
	goodMenu = `#!/bin/sh
echo "1. Read file"
echo "2. Write file"
echo "3. Append to file"
echo "4. Count words"
read f
read c || exit 1
case "$c" in
  1|2|3|4) exit 0 ;;
esac
echo "Invalid choice"
exit 1
`
	rejectingMenu = `#!/bin/sh
echo "1. Read file"
exit 1
`
	noMenu = `#!/bin/sh
exit 0
`
	goodBinary = `#!/bin/sh
echo "Read back: 1 2 3 4 5"
`
	shortBinary = `#!/bin/sh
echo "Read back: 1 2 3"
`
	hello = `#!/bin/sh
echo hello
`
	sleeper = `#!/bin/sh
exec sleep 5
`
)

func makeCtx(t *testing.T, sources map[string]string) *RunContext {
	t.Helper()
	dir := t.TempDir()
	for name, body := range sources {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	rc := NewRunContext(dir, nil, nil)
	rc.RunID = "test-run"
	rc.Compiler = fakeCC
	rc.Timeout = 5 * time.Second
	rc.MenuTimeout = 2 * time.Second
	rc.LineBuffered = false
	return rc
}

func loadSuite(t *testing.T, yaml string) *suite.Suite {
	t.Helper()
	s, err := suite.Load([]byte(yaml))
	if err != nil {
		t.Fatalf("loading suite: %v", err)
	}
	if err := suite.Validate(s, nil); err != nil {
		t.Fatalf("validating suite: %v", err)
	}
	return s
}

func run(t *testing.T, s *suite.Suite, rc *RunContext) *Result {
	t.Helper()
	result, err := Execute(context.Background(), s, rc, ModeRun)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return result
}

func mustCheck(t *testing.T, r *Result, id string) CheckResult {
	t.Helper()
	cr, ok := r.Check(id)
	if !ok {
		t.Fatalf("no result for check %q", id)
	}
	return cr
}

const readWriteSuite = `
name: rw
fixtures:
  test.txt: "lol kek cheburek\nlol kek cheburek\n"
scratch: [overwrite_test.txt]
checks:
  - id: reader
    kind: read
    source: reader.sh
  - id: writer
    kind: write
    source: writer.sh
`

func TestReadAndWritePass(t *testing.T) {
	rc := makeCtx(t, map[string]string{"reader.sh": goodReader, "writer.sh": goodWriter})
	result := run(t, loadSuite(t, readWriteSuite), rc)

	if !result.Success {
		t.Fatalf("expected success, got errors %+v", result.Errors)
	}
	if result.Passed != 2 {
		t.Errorf("expected 2 passed, got %d", result.Passed)
	}
	reader := mustCheck(t, result, "reader")
	if len(reader.Invocations) != 2 {
		t.Fatalf("expected 2 reader invocations, got %d", len(reader.Invocations))
	}
	if reader.Invocations[0].Stdin != "test.txt\n" || reader.Invocations[1].Stdin != "nonexistent.txt\n" {
		t.Errorf("unexpected reader stdin: %q, %q", reader.Invocations[0].Stdin, reader.Invocations[1].Stdin)
	}
	writer := mustCheck(t, result, "writer")
	if got, want := writer.Invocations[1].Stdin, "overwrite_test.txt\na\nAppended content\n"; got != want {
		t.Errorf("append stdin = %q, want %q", got, want)
	}
}

func TestReadReportsMissingWordCountAndErrorMessage(t *testing.T) {
	rc := makeCtx(t, map[string]string{"reader.sh": silentReader, "writer.sh": goodWriter})
	result := run(t, loadSuite(t, readWriteSuite), rc)

	if result.Success {
		t.Fatal("expected failure")
	}
	reader := mustCheck(t, result, "reader")
	if reader.Status != StatusFailed {
		t.Fatalf("expected failed, got %q", reader.Status)
	}
	joined := strings.Join(reader.Failures, "\n")
	if !strings.Contains(joined, "word count") {
		t.Errorf("expected word count failure, got %q", joined)
	}
	if !strings.Contains(joined, "missing-file message") {
		t.Errorf("expected missing-file failure, got %q", joined)
	}
	if !dagerrors.IsType(&result.Errors[0], dagerrors.ExpectationFailed) {
		t.Errorf("expected EXPECTATION_FAILED, got %s", result.Errors[0].Type)
	}
	if result.Errors[0].CheckID != "reader" {
		t.Errorf("expected error attributed to reader, got %q", result.Errors[0].CheckID)
	}
}

func TestWriteAppendMustKeepOverwriteText(t *testing.T) {
	rc := makeCtx(t, map[string]string{"reader.sh": goodReader, "writer.sh": truncatingWriter})
	result := run(t, loadSuite(t, readWriteSuite), rc)

	writer := mustCheck(t, result, "writer")
	if writer.Status != StatusFailed {
		t.Fatalf("expected failed, got %q", writer.Status)
	}
	if diff := cmp.Diff([]string{`append mode: overwrite_test.txt lacks "Overwrite content"`}, writer.Failures); diff != "" {
		t.Errorf("failures mismatch (-want +got):\n%s", diff)
	}
}

const menuSuite = `
name: menu
fixtures:
  test.txt: "lol kek cheburek\nlol kek cheburek\n"
checks:
  - id: menu
    kind: menu
    source: menu.sh
    bonus: true
    covers: [reader]
  - id: reader
    kind: read
    source: reader.sh
`

func TestPassingBonusSkipsCoveredCheck(t *testing.T) {
	// The reader would fail; it must not run at all.
	rc := makeCtx(t, map[string]string{"menu.sh": goodMenu, "reader.sh": silentReader})
	result := run(t, loadSuite(t, menuSuite), rc)

	if !result.Success {
		t.Fatalf("expected success, got errors %+v", result.Errors)
	}
	menu := mustCheck(t, result, "menu")
	if menu.Status != StatusPassed {
		t.Fatalf("expected menu passed, got %q (%v)", menu.Status, menu.Failures)
	}
	if menu.Detected == nil || !*menu.Detected {
		t.Error("expected menu detected")
	}
	// Probe plus one run per default input, none cut short.
	if want := 1 + len(suite.DefaultMenuInputs); len(menu.Invocations) != want {
		t.Errorf("expected %d invocations, got %d", want, len(menu.Invocations))
	}
	reader := mustCheck(t, result, "reader")
	if reader.Status != StatusSkipped {
		t.Fatalf("expected reader skipped, got %q", reader.Status)
	}
	if reader.Reason != `covered by bonus check "menu"` {
		t.Errorf("unexpected reason %q", reader.Reason)
	}
	if len(reader.Invocations) != 0 {
		t.Error("skipped check must not be invoked")
	}
}

func TestUndetectedMenuRunsCoveredCheck(t *testing.T) {
	rc := makeCtx(t, map[string]string{"menu.sh": noMenu, "reader.sh": goodReader})
	result := run(t, loadSuite(t, menuSuite), rc)

	menu := mustCheck(t, result, "menu")
	if menu.Status != StatusFailed {
		t.Fatalf("expected menu failed, got %q", menu.Status)
	}
	if menu.Detected == nil || *menu.Detected {
		t.Error("expected menu not detected")
	}
	if diff := cmp.Diff([]string{"menu system not detected in output"}, menu.Failures); diff != "" {
		t.Errorf("failures mismatch (-want +got):\n%s", diff)
	}
	if reader := mustCheck(t, result, "reader"); reader.Status != StatusPassed {
		t.Errorf("expected reader to run and pass, got %q", reader.Status)
	}
	// A failed bonus does not fail the suite.
	if !result.Success {
		t.Errorf("expected success, got errors %+v", result.Errors)
	}
}

func TestRejectingMenuFailsAndDoesNotSkip(t *testing.T) {
	rc := makeCtx(t, map[string]string{"menu.sh": rejectingMenu, "reader.sh": goodReader})
	result := run(t, loadSuite(t, menuSuite), rc)

	menu := mustCheck(t, result, "menu")
	if menu.Status != StatusFailed {
		t.Fatalf("expected menu failed, got %q", menu.Status)
	}
	if menu.Detected == nil || !*menu.Detected {
		t.Error("expected menu detected")
	}
	if len(menu.Failures) != 1 || !strings.Contains(menu.Failures[0], "none of the inputs were accepted") {
		t.Errorf("unexpected failures %v", menu.Failures)
	}
	if reader := mustCheck(t, result, "reader"); reader.Status != StatusPassed {
		t.Errorf("expected reader to run, got %q", reader.Status)
	}
}

const binarySuite = `
name: binary
scratch: [binary_test.dat]
checks:
  - id: binary
    kind: binary
    source: binary.sh
    bonus: true
    covers: [main]
  - id: main
    kind: build
    source: main.sh
`

func TestBinaryRoundtrip(t *testing.T) {
	tests := []struct {
		name       string
		program    string
		wantBinary string
		wantMain   string
	}{
		{"full sequence skips main", goodBinary, StatusPassed, StatusSkipped},
		{"short sequence runs main", shortBinary, StatusFailed, StatusPassed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rc := makeCtx(t, map[string]string{"binary.sh": tt.program, "main.sh": hello})
			result := run(t, loadSuite(t, binarySuite), rc)
			if got := mustCheck(t, result, "binary").Status; got != tt.wantBinary {
				t.Errorf("binary status = %q, want %q", got, tt.wantBinary)
			}
			if got := mustCheck(t, result, "main").Status; got != tt.wantMain {
				t.Errorf("main status = %q, want %q", got, tt.wantMain)
			}
			if !result.Success {
				t.Errorf("expected success, got errors %+v", result.Errors)
			}
		})
	}
}

func TestBinaryFailureNamesMissingIntegers(t *testing.T) {
	rc := makeCtx(t, map[string]string{"binary.sh": shortBinary, "main.sh": hello})
	result := run(t, loadSuite(t, binarySuite), rc)

	binary := mustCheck(t, result, "binary")
	if diff := cmp.Diff([]string{`binary file output: missing token(s) "4", "5"`}, binary.Failures); diff != "" {
		t.Errorf("failures mismatch (-want +got):\n%s", diff)
	}
}

func TestCompileFailure(t *testing.T) {
	// main.sh is never written, so the copy fails.
	rc := makeCtx(t, nil)
	s := loadSuite(t, `
name: broken
checks:
  - id: main
    kind: build
    source: main.sh
`)
	result := run(t, s, rc)

	if result.Success {
		t.Fatal("expected failure")
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 error, got %d", len(result.Errors))
	}
	re := result.Errors[0]
	if re.Type != dagerrors.CompileFailed {
		t.Errorf("expected COMPILE_FAILED, got %s", re.Type)
	}
	if re.CheckID != "main" {
		t.Errorf("expected check id main, got %q", re.CheckID)
	}
	if re.Detail == "" {
		t.Error("expected compiler diagnostics in detail")
	}
}

func TestTimeoutFailsCheck(t *testing.T) {
	rc := makeCtx(t, map[string]string{"slow.sh": sleeper})
	s := loadSuite(t, `
name: slow
checks:
  - id: slow
    kind: binary
    source: slow.sh
    timeout: 200ms
`)
	start := time.Now()
	result := run(t, s, rc)
	if elapsed := time.Since(start); elapsed > 4*time.Second {
		t.Errorf("timeout not enforced, took %s", elapsed)
	}

	slow := mustCheck(t, result, "slow")
	if slow.Status != StatusFailed {
		t.Fatalf("expected failed, got %q", slow.Status)
	}
	if len(slow.Invocations) != 1 || !slow.Invocations[0].TimedOut {
		t.Errorf("expected one timed-out invocation, got %+v", slow.Invocations)
	}
	if result.Errors[0].Type != dagerrors.Timeout {
		t.Errorf("expected TIMEOUT, got %s", result.Errors[0].Type)
	}
}

func TestTeardownRemovesEverything(t *testing.T) {
	rc := makeCtx(t, map[string]string{"reader.sh": goodReader, "writer.sh": goodWriter})
	run(t, loadSuite(t, readWriteSuite), rc)

	entries, err := os.ReadDir(rc.WorkDir)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	if diff := cmp.Diff([]string{"reader.sh", "writer.sh"}, names); diff != "" {
		t.Errorf("work dir after teardown (-want +got):\n%s", diff)
	}
}

func TestExplainModePlansWithoutRunning(t *testing.T) {
	rc := makeCtx(t, nil)
	result, err := Execute(context.Background(), loadSuite(t, menuSuite), rc, ModeExplain)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, cr := range result.Checks {
		if cr.Status != StatusExplain {
			t.Errorf("check %s: expected status explain, got %q", cr.ID, cr.Status)
		}
	}
	menu := mustCheck(t, result, "menu")
	if menu.Command != "sh -c "+fakeCC.Flags[1]+" fakecc menu.sh -o menu" {
		t.Errorf("unexpected command %q", menu.Command)
	}
	if menu.Invocations[0].Label != "probe" || menu.Invocations[0].Stdin != "test.txt\n" {
		t.Errorf("unexpected probe %+v", menu.Invocations[0])
	}
	if menu.Reason != "covers reader" {
		t.Errorf("unexpected reason %q", menu.Reason)
	}
	if _, err := os.Stat(filepath.Join(rc.WorkDir, "test.txt")); !os.IsNotExist(err) {
		t.Error("explain must not write fixtures")
	}
}

func TestDryRunListsFixtures(t *testing.T) {
	rc := makeCtx(t, nil)
	result, err := Execute(context.Background(), loadSuite(t, readWriteSuite), rc, ModeDryRun)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"test.txt"}, result.Fixtures); diff != "" {
		t.Errorf("fixtures mismatch (-want +got):\n%s", diff)
	}
	writer := mustCheck(t, result, "writer")
	if writer.Status != StatusDryRun {
		t.Errorf("expected dry-run, got %q", writer.Status)
	}
	if !strings.Contains(writer.DryRunInfo, "2 invocation(s)") {
		t.Errorf("unexpected dry-run info %q", writer.DryRunInfo)
	}
}

func TestOnlyFilter(t *testing.T) {
	rc := makeCtx(t, map[string]string{"reader.sh": goodReader})
	rc.Only = []string{"reader"}
	result := run(t, loadSuite(t, readWriteSuite), rc)

	if got := mustCheck(t, result, "reader").Status; got != StatusPassed {
		t.Errorf("reader status = %q", got)
	}
	writer := mustCheck(t, result, "writer")
	if writer.Status != StatusSkipped || writer.Reason != "not selected" {
		t.Errorf("expected writer skipped as not selected, got %q (%q)", writer.Status, writer.Reason)
	}
	if !result.Success {
		t.Error("unselected checks must not fail the run")
	}
}

func TestRecordWritesArtifacts(t *testing.T) {
	rc := makeCtx(t, map[string]string{"reader.sh": goodReader, "writer.sh": goodWriter})
	rc.Record = true
	result := run(t, loadSuite(t, readWriteSuite), rc)

	if len(result.Artifacts) != 1 {
		t.Fatalf("expected artifact dir, got %v", result.Artifacts)
	}
	base := result.Artifacts[0]
	if _, err := os.Stat(filepath.Join(base, "result.json")); err != nil {
		t.Errorf("result.json not written: %v", err)
	}
	stdout, err := os.ReadFile(filepath.Join(base, "checks", "reader.1.stdout"))
	if err != nil {
		t.Fatalf("reader stdout not recorded: %v", err)
	}
	if !strings.Contains(string(stdout), "cheburek") {
		t.Errorf("unexpected recorded stdout %q", stdout)
	}
}

func TestCancelledContextSkipsRemainingChecks(t *testing.T) {
	rc := makeCtx(t, map[string]string{"reader.sh": goodReader, "writer.sh": goodWriter})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result, err := Execute(ctx, loadSuite(t, readWriteSuite), rc, ModeRun)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Success {
		t.Error("cancelled run must not succeed")
	}
	if result.Skipped != 2 {
		t.Errorf("expected 2 skipped, got %d", result.Skipped)
	}
	last := result.Errors[len(result.Errors)-1]
	if last.Type != dagerrors.Cancelled {
		t.Errorf("expected CANCELLED, got %s", last.Type)
	}
}

func TestTeardownKeepsExtensionlessSource(t *testing.T) {
	rc := makeCtx(t, map[string]string{"prog": hello})
	// Loaded without validation, which would reject this suite.
	s, err := suite.Load([]byte(`
name: extensionless
checks:
  - id: b
    kind: build
    source: prog
`))
	if err != nil {
		t.Fatal(err)
	}
	run(t, s, rc)

	if _, err := os.Stat(filepath.Join(rc.WorkDir, "prog")); err != nil {
		t.Fatalf("source removed by teardown: %v", err)
	}
}
