package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const staleDoc = `.. simplespreadsheet::

   +------+-----------+
   | ={2} | ={a1 * 3} |
   +------+-----------+
`

func saveResolveFlags(t *testing.T) {
	t.Helper()
	saveRootFlags(t)
	origOutput := resolveOutput
	origInPlace := resolveInPlace
	origVerify := resolveVerify
	origShowCells := resolveShowCells
	origAllTables := resolveAllTables
	t.Cleanup(func() {
		resolveOutput = origOutput
		resolveInPlace = origInPlace
		resolveVerify = origVerify
		resolveShowCells = origShowCells
		resolveAllTables = origAllTables
	})
	resolveOutput = ""
	resolveInPlace = false
	resolveVerify = false
	resolveShowCells = false
	resolveAllTables = false
}

func writeDoc(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "report.rst")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunResolve_InPlace(t *testing.T) {
	saveResolveFlags(t)
	path := writeDoc(t, staleDoc)
	resolveInPlace = true

	if err := runResolve(resolveCmd, []string{path}); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(got), "| 2 | 6 |") {
		t.Errorf("document not resolved in place:\n%s", got)
	}
	if strings.Contains(string(got), "={") {
		t.Errorf("formulas survived resolution:\n%s", got)
	}
}

func TestRunResolve_OutputFile(t *testing.T) {
	saveResolveFlags(t)
	path := writeDoc(t, staleDoc)
	resolveOutput = filepath.Join(t.TempDir(), "resolved.rst")

	if err := runResolve(resolveCmd, []string{path}); err != nil {
		t.Fatal(err)
	}
	// the input is untouched
	in, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(in) != staleDoc {
		t.Error("input file was modified with --output set")
	}
	out, err := os.ReadFile(resolveOutput)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), "| 2 | 6 |") {
		t.Errorf("output file not resolved:\n%s", out)
	}
}

func TestRunResolve_VerifyStaleExitsTwo(t *testing.T) {
	saveResolveFlags(t)
	path := writeDoc(t, staleDoc)
	resolveVerify = true

	err := runResolve(resolveCmd, []string{path})
	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != 2 {
		t.Fatalf("error = %v, want ExitError{2}", err)
	}
	got, readErr := os.ReadFile(path)
	if readErr != nil {
		t.Fatal(readErr)
	}
	if string(got) != staleDoc {
		t.Error("verify mode modified the document")
	}
}

func TestRunResolve_VerifyCurrentSucceeds(t *testing.T) {
	saveResolveFlags(t)
	path := writeDoc(t, staleDoc)
	resolveInPlace = true
	if err := runResolve(resolveCmd, []string{path}); err != nil {
		t.Fatal(err)
	}

	resolveInPlace = false
	resolveVerify = true
	resolveAllTables = true
	if err := runResolve(resolveCmd, []string{path}); err != nil {
		t.Fatalf("verify on an up-to-date document: %v", err)
	}
}

func TestRunResolve_VerifyCycleExitsTwo(t *testing.T) {
	saveResolveFlags(t)
	path := writeDoc(t, `.. simplespreadsheet::

   +--------+--------+
   | ={b1}  | ={a1}  |
   +--------+--------+
`)
	resolveVerify = true

	err := runResolve(resolveCmd, []string{path})
	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != 2 {
		t.Fatalf("error = %v, want ExitError{2}", err)
	}
}

func TestRunResolve_InPlaceStdinRejected(t *testing.T) {
	saveResolveFlags(t)
	resolveInPlace = true

	if err := runResolve(resolveCmd, []string{"-"}); err == nil {
		t.Fatal("expected error for --in-place with stdin input")
	}
}

func TestRunResolve_InPlaceOutputExclusive(t *testing.T) {
	saveResolveFlags(t)
	resolveInPlace = true
	resolveOutput = "x.rst"

	if err := runResolve(resolveCmd, []string{"doc.rst"}); err == nil {
		t.Fatal("expected error for --in-place with --output")
	}
}

func TestRunResolve_MissingFile(t *testing.T) {
	saveResolveFlags(t)
	resolveInPlace = true

	if err := runResolve(resolveCmd, []string{filepath.Join(t.TempDir(), "nope.rst")}); err == nil {
		t.Fatal("expected error for a missing document")
	}
}

func TestRunResolve_MaxDepthFlagReachesEngine(t *testing.T) {
	saveResolveFlags(t)
	path := writeDoc(t, `.. simplespreadsheet::

   +-----------+
   | ={a2 + 1} |
   +-----------+
   | ={a3 + 1} |
   +-----------+
   | ={1}      |
   +-----------+
`)
	resolveInPlace = true
	maxDepth = 1

	if err := runResolve(resolveCmd, []string{path}); err == nil {
		t.Fatal("expected depth error with --max-depth 1")
	}

	maxDepth = 0
	if err := runResolve(resolveCmd, []string{path}); err != nil {
		t.Fatalf("default depth: %v", err)
	}
}
