package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestVersionFlag(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := Run([]string{"-v"}, &stdout, &stderr); code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if !strings.Contains(stdout.String(), Version) {
		t.Fatalf("expected version in output, got %q", stdout.String())
	}
}

func TestEvalFlag(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := Run([]string{"-e", "print(1 + 2)"}, &stdout, &stderr); code != 0 {
		t.Fatalf("expected exit 0, got %d (stderr: %s)", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "3") {
		t.Fatalf("expected 3 in output, got %q", stdout.String())
	}
}

func TestEvalFlagReportsErrors(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := Run([]string{"-e", "'a' + 1"}, &stdout, &stderr); code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if !strings.Contains(stderr.String(), "undefined operator") {
		t.Fatalf("expected error on stderr, got %q", stderr.String())
	}
}

func TestRunScriptFile(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "app.ht")
	source := "var greeting = 'hello' proc main { print(greeting) }"
	if err := os.WriteFile(script, []byte(source), 0o644); err != nil {
		t.Fatal(err)
	}
	var stdout, stderr bytes.Buffer
	if code := Run([]string{script}, &stdout, &stderr); code != 0 {
		t.Fatalf("expected exit 0, got %d (stderr: %s)", code, stderr.String())
	}
	if stdout.String() != "hello\n" {
		t.Fatalf("unexpected output: %q", stdout.String())
	}
}

func TestProjectConfig(t *testing.T) {
	dir := t.TempDir()
	libDir := filepath.Join(dir, "lib")
	if err := os.Mkdir(libDir, 0o755); err != nil {
		t.Fatal(err)
	}
	config := "working_dir: lib\n"
	if err := os.WriteFile(filepath.Join(dir, ProjectConfigFile), []byte(config), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(libDir, "helper.ht"), []byte("fun six: num { return 6 }"), 0o644); err != nil {
		t.Fatal(err)
	}
	script := filepath.Join(dir, "app.ht")
	source := "import 'helper' proc main { print(six()) }"
	if err := os.WriteFile(script, []byte(source), 0o644); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	if code := Run([]string{script}, &stdout, &stderr); code != 0 {
		t.Fatalf("expected exit 0, got %d (stderr: %s)", code, stderr.String())
	}
	if stdout.String() != "6\n" {
		t.Fatalf("unexpected output: %q", stdout.String())
	}
}

func TestUnknownFlag(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := Run([]string{"--bogus"}, &stdout, &stderr); code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
}
