package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestOutputFlagSetOnce(t *testing.T) {
	var o outputFlag
	if err := o.Set("a.ir"); err != nil {
		t.Fatalf("first Set failed: %v", err)
	}
	if o.String() != "a.ir" {
		t.Errorf("path = %q, want a.ir", o.String())
	}

	err := o.Set("b.ir")
	if err == nil {
		t.Fatal("second Set succeeded, want error")
	}
	if !strings.Contains(err.Error(), "already set") {
		t.Errorf("error = %q, want 'already set'", err.Error())
	}
}

func TestReadSource(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "main.cp")
	if err := os.WriteFile(path, []byte("def main() -> int { return 0; }"), 0o644); err != nil {
		t.Fatal(err)
	}

	source, err := readSource(path)
	if err != nil {
		t.Fatalf("readSource failed: %v", err)
	}
	if source.File != path {
		t.Errorf("module name = %q, want the path as given", source.File)
	}
	if !strings.Contains(source.Content, "def main") {
		t.Errorf("content not loaded: %q", source.Content)
	}
}

func TestReadSourceErrors(t *testing.T) {
	if _, err := readSource(filepath.Join(t.TempDir(), "nope.cp")); err == nil {
		t.Error("missing file accepted")
	} else if !strings.Contains(err.Error(), "does not exist") {
		t.Errorf("error = %q, want 'does not exist'", err.Error())
	}

	if _, err := readSource(t.TempDir()); err == nil {
		t.Error("directory accepted as input file")
	} else if !strings.Contains(err.Error(), "not a regular file") {
		t.Errorf("error = %q, want 'not a regular file'", err.Error())
	}
}

func TestRunWritesOutput(t *testing.T) {
	dir := t.TempDir()

	input := filepath.Join(dir, "main.cp")
	if err := os.WriteFile(input, []byte("def main() -> int { return 42; }"), 0o644); err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(dir, "out.ir")
	output = outputFlag{path: out}
	defer func() { output = outputFlag{path: "out.bin"} }()

	if code := run([]string{input}); code != 0 {
		t.Fatalf("run returned %d, want 0", code)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("output file not written: %v", err)
	}
	if !strings.Contains(string(data), "func @main() -> int") {
		t.Errorf("output IR missing function:\n%s", data)
	}
}

func TestRunNoInputs(t *testing.T) {
	if code := run(nil); code == 0 {
		t.Error("run with no inputs returned 0, want non-zero")
	}
}

func TestRunBadInput(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "bad.cp")
	if err := os.WriteFile(input, []byte("def main() -> int { return q; }"), 0o644); err != nil {
		t.Fatal(err)
	}

	output = outputFlag{path: filepath.Join(dir, "out.ir")}
	defer func() { output = outputFlag{path: "out.bin"} }()

	if code := run([]string{input}); code == 0 {
		t.Error("run with a semantic error returned 0, want non-zero")
	}
}
