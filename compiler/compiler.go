// Package compiler is the top-level entrypoint: clause.Clause in,
// witness.Manager out. It runs threshold expansion, normalization,
// flattening, and per-conjunct simplification, then assembles the final
// program with the branch-selector regime from spec §4.5. Grounded on
// original_source/bitcoin_script_compiler/compiler.py's ClauseToDNF,
// DNFClauseCompiler, and ProgramBuilder.
package compiler

import (
	"errors"

	"github.com/btcsuite/btcd/txscript"

	"github.com/ctv-compiler/ctvscript/clause"
	"github.com/ctv-compiler/ctvscript/flatten"
	"github.com/ctv-compiler/ctvscript/fragment"
	"github.com/ctv-compiler/ctvscript/normalize"
	"github.com/ctv-compiler/ctvscript/simplify"
	"github.com/ctv-compiler/ctvscript/witness"
)

// ErrNoSpendingCondition is returned when every DNF branch was pruned (or
// the clause normalized to Unsatisfiable outright), leaving nothing for
// the contract to spend against.
var ErrNoSpendingCondition = errors.New("compiler: no spending condition survived simplification")

// Options configures the compile pass. StrictMode replaces
// original_source's module-level PRUNE_MODE global (see spec §9): it is
// threaded straight into package simplify.
type Options struct {
	// StrictMode turns timelock/CTV contradictions in any branch into a
	// hard compile error instead of silently pruning that branch.
	StrictMode bool
}

// CompileClause runs the full pipeline over c and returns the resulting
// witness manager, still in building state (callers invoke Finalize once
// no more mutation is expected).
func CompileClause(c clause.Clause, opts Options) (*witness.Manager, error) {
	expanded := clause.ExpandThresholds(c)

	normalized, err := normalize.Normalize(expanded)
	if err != nil {
		return nil, err
	}

	dnf, err := flatten.Flatten(normalized)
	if err != nil {
		return nil, err
	}

	simplifyOpts := simplify.Options{Strict: opts.StrictMode}
	var kept flatten.DNF
	for _, conjunct := range dnf {
		s, err := simplify.Simplify(conjunct, simplifyOpts)
		if err != nil {
			return nil, err
		}
		if simplify.ContainsUnsatisfiable(s) {
			continue
		}
		kept = append(kept, s)
	}

	if len(kept) == 0 {
		return nil, ErrNoSpendingCondition
	}

	return buildProgram(kept)
}

func buildProgram(dnf flatten.DNF) (*witness.Manager, error) {
	switch n := len(dnf); {
	case n == 1:
		return buildSingleBranch(dnf)
	case n == 2:
		return buildTwoBranch(dnf)
	default:
		return buildJumpTable(dnf)
	}
}

func buildSingleBranch(dnf flatten.DNF) (*witness.Manager, error) {
	mgr := witness.NewManager()
	tmpl, err := mgr.MakeWitness(0)
	if err != nil {
		return nil, err
	}

	branch, err := fragment.Compile(dnf[0], tmpl)
	if err != nil {
		return nil, err
	}

	closer, err := opOnly(txscript.OP_1)
	if err != nil {
		return nil, err
	}

	mgr.AppendProgram(branch)
	mgr.AppendProgram(closer)
	return mgr, nil
}

func buildTwoBranch(dnf flatten.DNF) (*witness.Manager, error) {
	mgr := witness.NewManager()

	tmpl0, err := mgr.MakeWitness(0)
	if err != nil {
		return nil, err
	}
	tmpl1, err := mgr.MakeWitness(1)
	if err != nil {
		return nil, err
	}
	tmpl0.AddInt(1)
	tmpl1.AddInt(0)

	branch0, err := fragment.Compile(dnf[0], tmpl0)
	if err != nil {
		return nil, err
	}
	branch1, err := fragment.Compile(dnf[1], tmpl1)
	if err != nil {
		return nil, err
	}

	ifOp, err := opOnly(txscript.OP_IF)
	if err != nil {
		return nil, err
	}
	elseOp, err := opOnly(txscript.OP_ELSE)
	if err != nil {
		return nil, err
	}
	endifAndTrue, err := opOnly(txscript.OP_ENDIF, txscript.OP_1)
	if err != nil {
		return nil, err
	}

	mgr.AppendProgram(ifOp)
	mgr.AppendProgram(branch0)
	mgr.AppendProgram(elseOp)
	mgr.AppendProgram(branch1)
	mgr.AppendProgram(endifAndTrue)
	return mgr, nil
}

// buildJumpTable implements the N>=3 witness-selected dispatcher of spec
// §4.5: a range check followed by a chain of OP_IFDUP OP_NOTIF <branch>
// OP_0 OP_ENDIF OP_1SUB segments, the first carrying the range-check
// preamble and the last omitting the duplicate-and-decrement tail.
func buildJumpTable(dnf flatten.DNF) (*witness.Manager, error) {
	n := len(dnf)
	mgr := witness.NewManager()

	branches := make([][]byte, n)
	for i, conjunct := range dnf {
		tmpl, err := mgr.MakeWitness(i)
		if err != nil {
			return nil, err
		}
		tmpl.AddInt(int64(i))

		branch, err := fragment.Compile(conjunct, tmpl)
		if err != nil {
			return nil, err
		}
		branches[i] = branch
	}

	rangeCheck, err := txscript.NewScriptBuilder().
		AddOp(txscript.OP_DUP).
		AddOp(txscript.OP_0).
		AddInt64(int64(n)).
		AddOp(txscript.OP_WITHIN).
		AddOp(txscript.OP_VERIFY).
		Script()
	if err != nil {
		return nil, err
	}

	dupNotIf, err := opOnly(txscript.OP_IFDUP, txscript.OP_NOTIF)
	if err != nil {
		return nil, err
	}
	notIf, err := opOnly(txscript.OP_NOTIF)
	if err != nil {
		return nil, err
	}
	skipTail, err := opOnly(txscript.OP_0, txscript.OP_ENDIF, txscript.OP_1SUB)
	if err != nil {
		return nil, err
	}
	lastTail, err := opOnly(txscript.OP_ENDIF, txscript.OP_1)
	if err != nil {
		return nil, err
	}

	mgr.AppendProgram(rangeCheck)
	mgr.AppendProgram(dupNotIf)
	mgr.AppendProgram(branches[0])
	mgr.AppendProgram(skipTail)

	for i := 1; i < n-1; i++ {
		mgr.AppendProgram(dupNotIf)
		mgr.AppendProgram(branches[i])
		mgr.AppendProgram(skipTail)
	}

	mgr.AppendProgram(notIf)
	mgr.AppendProgram(branches[n-1])
	mgr.AppendProgram(lastTail)

	return mgr, nil
}

func opOnly(ops ...byte) ([]byte, error) {
	b := txscript.NewScriptBuilder()
	for _, op := range ops {
		b.AddOp(op)
	}
	return b.Script()
}
