package flatten

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ctv-compiler/ctvscript/clause"
)

func hash(b byte) [32]byte {
	var h [32]byte
	h[0] = b
	return h
}

func TestFlattenSatisfiedIsSingleEmptyConjunct(t *testing.T) {
	dnf, err := Flatten(clause.Satisfied{})
	require.NoError(t, err)
	require.Equal(t, DNF{{}}, dnf)
}

func TestFlattenUnsatisfiableIsEmptyDNF(t *testing.T) {
	dnf, err := Flatten(clause.Unsatisfiable{})
	require.NoError(t, err)
	require.Equal(t, DNF{}, dnf)
}

func TestFlattenPrimitive(t *testing.T) {
	p := clause.NewRevealPreImage(hash(1))
	dnf, err := Flatten(p)
	require.NoError(t, err)
	require.Equal(t, DNF{{p}}, dnf)
}

func TestFlattenOrAtRoot(t *testing.T) {
	a := clause.NewRevealPreImage(hash(1))
	b := clause.NewRevealPreImage(hash(2))
	dnf, err := Flatten(clause.NewOr(a, b))
	require.NoError(t, err)
	require.Equal(t, DNF{{a}, {b}}, dnf)
}

func TestFlattenAndConcatenatesConjuncts(t *testing.T) {
	a := clause.NewRevealPreImage(hash(1))
	b := clause.NewRevealPreImage(hash(2))
	dnf, err := Flatten(clause.NewAnd(a, b))
	require.NoError(t, err)
	require.Equal(t, DNF{{a, b}}, dnf)
}

func TestFlattenOrBeneathAndFails(t *testing.T) {
	a := clause.NewRevealPreImage(hash(1))
	b := clause.NewRevealPreImage(hash(2))
	c := clause.NewRevealPreImage(hash(3))

	// Manually construct an And over an Or, bypassing normalization, to
	// exercise the invariant check the normalizer is otherwise
	// responsible for upholding.
	tree := &clause.And{Left: clause.NewOr(a, b), Right: c}
	_, err := Flatten(tree)
	require.ErrorIs(t, err, ErrUnexpectedOr)
}

func TestFlattenDNFExpansion(t *testing.T) {
	// (A ∨ B) ∧ (C ∨ D), already normalized, should flatten to the four
	// conjuncts named in spec S3.
	a := clause.NewRevealPreImage(hash(1))
	b := clause.NewRevealPreImage(hash(2))
	c := clause.NewRevealPreImage(hash(3))
	d := clause.NewRevealPreImage(hash(4))

	normalized := clause.NewOr(
		clause.NewOr(
			clause.NewAnd(a, c),
			clause.NewAnd(a, d),
		),
		clause.NewOr(
			clause.NewAnd(b, c),
			clause.NewAnd(b, d),
		),
	)

	dnf, err := Flatten(normalized)
	require.NoError(t, err)
	require.Len(t, dnf, 4)
	require.ElementsMatch(t, DNF{{a, c}, {a, d}, {b, c}, {b, d}}, dnf)
}
