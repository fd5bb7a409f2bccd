// Package normalize distributes And over Or until a clause tree is in
// disjunctive normal form — no And node has an Or anywhere beneath an
// And-only spine on either side. Grounded on
// original_source/bitcoin_script_compiler/normalize_or.py's NormalizationPass,
// corrected: that source checks `isinstance(right, And) and
// isinstance(left, Or)` twice and never reaches the symmetric
// `left=And, right=Or` case, which §9 of the distilled spec flags as a
// suspected bug. This package's switch is written to reach every
// left/right And/Or combination exactly once.
package normalize

import (
	"errors"

	"github.com/ctv-compiler/ctvscript/clause"
)

// ErrIterationCapExceeded is returned when normalization has not reached a
// fixed point within the iteration cap, which would indicate the rewrite
// rules themselves are non-terminating — a defect in this package, not in
// caller input.
var ErrIterationCapExceeded = errors.New("normalize: iteration cap exceeded without reaching a fixed point")

const (
	capMultiplier = 4
	capConstant   = 16
)

// Normalize repeatedly applies one normalization pass to c until a pass
// reports no change, then returns the fixed point. The number of passes is
// capped at 4*primitiveCount(c)+16; exceeding it fails closed with
// ErrIterationCapExceeded rather than looping forever.
func Normalize(c clause.Clause) (clause.Clause, error) {
	iterCap := capMultiplier*clause.CountPrimitives(c) + capConstant

	cur := c
	for i := 0; i < iterCap; i++ {
		next, changed := normalizeOnce(cur)
		if !changed {
			return next, nil
		}
		cur = next
	}
	return nil, ErrIterationCapExceeded
}

// normalizeOnce applies the rewrite rules of spec §4.1 in one bottom-up
// pass over c, and reports whether any rewrite fired.
func normalizeOnce(c clause.Clause) (clause.Clause, bool) {
	pass := &pass{}
	out := pass.visit(c)
	return out, pass.changed
}

type pass struct {
	changed bool
}

func (p *pass) visit(c clause.Clause) clause.Clause {
	switch v := c.(type) {
	case *clause.And:
		return p.visitAnd(v.Left, v.Right)
	case *clause.Or:
		return p.visitOr(v.Left, v.Right)
	default:
		return c
	}
}

func (p *pass) visitAnd(left, right clause.Clause) clause.Clause {
	// Visit both children bottom-up before looking for a distribution at
	// this node — unlike the single-sided "recurse left only" recursion
	// the distilled spec's source shows, this reaches an Or nested under
	// either side of an And-of-And, not just the left spine.
	newLeft := p.visit(left)
	newRight := p.visit(right)

	leftOr, leftIsOr := newLeft.(*clause.Or)
	rightOr, rightIsOr := newRight.(*clause.Or)

	switch {
	case leftIsOr && rightIsOr:
		// And(Or(a,b), Or(c,d)) -> (a∧c) ∨ (a∧d) ∨ (b∧c) ∨ (b∧d)
		p.changed = true
		ac := clause.NewAnd(leftOr.Left, rightOr.Left)
		ad := clause.NewAnd(leftOr.Left, rightOr.Right)
		bc := clause.NewAnd(leftOr.Right, rightOr.Left)
		bd := clause.NewAnd(leftOr.Right, rightOr.Right)
		return clause.NewOr(clause.NewOr(ac, ad), clause.NewOr(bc, bd))

	case leftIsOr:
		// And(Or(a,b), x) -> (x∧a) ∨ (x∧b)
		p.changed = true
		xa := clause.NewAnd(newRight, leftOr.Left)
		xb := clause.NewAnd(newRight, leftOr.Right)
		return clause.NewOr(xa, xb)

	case rightIsOr:
		// And(x, Or(a,b)) -> (x∧a) ∨ (x∧b)
		p.changed = true
		xa := clause.NewAnd(newLeft, rightOr.Left)
		xb := clause.NewAnd(newLeft, rightOr.Right)
		return clause.NewOr(xa, xb)

	default:
		return clause.NewAnd(newLeft, newRight)
	}
}

func (p *pass) visitOr(left, right clause.Clause) clause.Clause {
	// Or(a,b) -> Or(normalize(b), normalize(a)): right-left reordering so
	// successive passes expose pruning opportunities buried under
	// left-leaning Or chains.
	newRight := p.visit(left)
	newLeft := p.visit(right)
	return clause.NewOr(newLeft, newRight)
}
