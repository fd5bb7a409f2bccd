package clause

import "errors"

// ErrInvalidThreshold is returned when k is not in [1, len(subclauses)].
var ErrInvalidThreshold = errors.New("clause: threshold k must satisfy 1 <= k <= n")

// Threshold requires at least K of Subclauses to be satisfied. It is
// compound (not a Primitive): ExpandThresholds must rewrite every Threshold
// into an equivalent And/Or tree before the clause reaches the normalizer,
// since neither the normalizer nor the flattener knows how to handle one
// directly.
//
// A counting-gadget lowering (pushing a running tally instead of expanding
// C(n,k) combinations) is a viable alternative the spec explicitly permits;
// it would trade this package's simplicity for a smaller program on large
// thresholds, at the cost of a per-branch witness layout that no longer
// matches the rest of this compiler's one-CTV-slot-per-primitive model.
type Threshold struct {
	K          int
	Subclauses []Primitive
}

func (*Threshold) isClause() {}

// NewThreshold validates k and n before allocating a Threshold node.
func NewThreshold(k int, subclauses []Primitive) (Clause, error) {
	n := len(subclauses)
	if k < 1 || k > n {
		return nil, ErrInvalidThreshold
	}
	cs := make([]Primitive, n)
	copy(cs, subclauses)
	return &Threshold{K: k, Subclauses: cs}, nil
}

// ExpandThresholds rewrites every Threshold node in c into the equivalent
// disjunction of k-sized conjunctions, bottom-up, so the result contains no
// Threshold at all. And/Or nodes are walked through NewAnd/NewOr so any
// identity exposed by the rewrite still collapses.
func ExpandThresholds(c Clause) Clause {
	switch v := c.(type) {
	case *And:
		return NewAnd(ExpandThresholds(v.Left), ExpandThresholds(v.Right))
	case *Or:
		return NewOr(ExpandThresholds(v.Left), ExpandThresholds(v.Right))
	case *Threshold:
		return expandThreshold(v)
	default:
		return c
	}
}

func expandThreshold(t *Threshold) Clause {
	combos := combinations(len(t.Subclauses), t.K)
	var result Clause = Unsatisfiable{}
	for _, combo := range combos {
		var conjunct Clause = Satisfied{}
		for _, idx := range combo {
			conjunct = NewAnd(conjunct, t.Subclauses[idx])
		}
		result = NewOr(result, conjunct)
	}
	return result
}

// combinations returns every k-sized subset of {0, ..., n-1}, each as a
// sorted slice of indices.
func combinations(n, k int) [][]int {
	var out [][]int
	combo := make([]int, 0, k)
	var rec func(start int)
	rec = func(start int) {
		if len(combo) == k {
			saved := make([]int, k)
			copy(saved, combo)
			out = append(out, saved)
			return
		}
		for i := start; i < n; i++ {
			combo = append(combo, i)
			rec(i + 1)
			combo = combo[:len(combo)-1]
		}
	}
	rec(0)
	return out
}
