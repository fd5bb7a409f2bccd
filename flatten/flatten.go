// Package flatten converts a normalized clause tree into disjunctive
// normal form: a list of conjuncts, each a list of primitives. Grounded on
// original_source/bitcoin_script_compiler/flatten_and.py's FlattenPass.
//
// Unlike that source, which threads whatever or_allowed value it received
// into the recursive calls for And's children, this package hard-codes
// false beneath And every time, per the distilled spec's stated rule — the
// Python behavior would silently defeat the "no Or beneath And" invariant
// check whenever a caller threaded or_allowed=true down through nested
// Ands, which is the opposite of what DNF requires.
package flatten

import (
	"errors"
	"fmt"

	"github.com/ctv-compiler/ctvscript/clause"
)

// ErrUnexpectedOr is returned when an Or is encountered where only And was
// expected — a normalization invariant violation, per spec §4.8's
// NormalizationInvariant error kind.
var ErrUnexpectedOr = errors.New("flatten: unexpected Or beneath And; clause was not normalized")

// ErrThresholdNotExpanded is returned when a Threshold node reaches
// flatten directly; callers must run clause.ExpandThresholds first.
var ErrThresholdNotExpanded = errors.New("flatten: Threshold clause reached flatten unexpanded")

// Conjunct is one branch of a DNF: a list of primitives that must all hold.
type Conjunct []clause.Primitive

// DNF is the full disjunctive normal form: a list of conjuncts, OR'd
// together.
type DNF []Conjunct

// Flatten converts a normalized clause tree into DNF. Or is permitted at
// the root and at any point reached only through other Ors; And always
// flattens its children with orAllowed=false.
func Flatten(c clause.Clause) (DNF, error) {
	return flatten(c, true)
}

func flatten(c clause.Clause, orAllowed bool) (DNF, error) {
	switch v := c.(type) {
	case *clause.Or:
		if !orAllowed {
			return nil, ErrUnexpectedOr
		}
		left, err := flatten(v.Left, true)
		if err != nil {
			return nil, err
		}
		right, err := flatten(v.Right, true)
		if err != nil {
			return nil, err
		}
		out := make(DNF, 0, len(left)+len(right))
		out = append(out, left...)
		out = append(out, right...)
		return out, nil

	case *clause.And:
		left, err := flatten(v.Left, false)
		if err != nil {
			return nil, err
		}
		right, err := flatten(v.Right, false)
		if err != nil {
			return nil, err
		}
		// Each side must flatten to a singleton DNF (orAllowed=false
		// guarantees this for any tree that actually reached And with no
		// Or beneath it).
		conjunct := make(Conjunct, 0, len(left[0])+len(right[0]))
		conjunct = append(conjunct, left[0]...)
		conjunct = append(conjunct, right[0]...)
		return DNF{conjunct}, nil

	case clause.Satisfied:
		return DNF{{}}, nil

	case clause.Unsatisfiable:
		return DNF{}, nil

	case *clause.Threshold:
		return nil, ErrThresholdNotExpanded

	default:
		p, ok := c.(clause.Primitive)
		if !ok {
			return nil, fmt.Errorf("flatten: cannot flatten clause of type %T", c)
		}
		return DNF{{p}}, nil
	}
}
