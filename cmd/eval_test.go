package cmd

import (
	"errors"
	"testing"

	"github.com/gridlabs/tablecalc-cli/sheet"
)

func saveEvalFlags(t *testing.T) {
	t.Helper()
	saveRootFlags(t)
	origCells := evalCells
	t.Cleanup(func() { evalCells = origCells })
	evalCells = nil
}

func TestRunEval(t *testing.T) {
	saveEvalFlags(t)
	evalCells = []string{"a1=5", "a2=2"}

	if err := runEval(evalCmd, []string{"a1 / a2"}); err != nil {
		t.Fatal(err)
	}
}

func TestRunEval_SeedMayBeFormula(t *testing.T) {
	saveEvalFlags(t)
	evalCells = []string{"a1=2", "b1=a1 + 1"}

	if err := runEval(evalCmd, []string{"b1 * 10"}); err != nil {
		t.Fatal(err)
	}
}

func TestRunEval_InvalidSeed(t *testing.T) {
	saveEvalFlags(t)
	tests := []string{"a1", "=2", "A1=2", "11=2"}
	for _, seed := range tests {
		evalCells = []string{seed}
		if err := runEval(evalCmd, []string{"1"}); err == nil {
			t.Errorf("expected error for --cell %q", seed)
		}
	}
}

func TestRunEval_SyntaxErrorSurfaces(t *testing.T) {
	saveEvalFlags(t)

	err := runEval(evalCmd, []string{"2 +"})
	if !errors.Is(err, sheet.ErrFormulaSyntax) {
		t.Fatalf("error = %v, want ErrFormulaSyntax", err)
	}
}
