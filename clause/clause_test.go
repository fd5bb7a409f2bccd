package clause

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewAndIdentities(t *testing.T) {
	leaf := RevealPreImage{}

	tests := []struct {
		name     string
		left     Clause
		right    Clause
		expected Clause
	}{
		{"satisfied on left", Satisfied{}, leaf, leaf},
		{"satisfied on right", leaf, Satisfied{}, leaf},
		{"unsatisfiable on left", Unsatisfiable{}, leaf, Unsatisfiable{}},
		{"unsatisfiable on right", leaf, Unsatisfiable{}, Unsatisfiable{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := NewAnd(tc.left, tc.right)
			require.Equal(t, tc.expected, got)
		})
	}
}

func TestNewOrIdentities(t *testing.T) {
	leaf := RevealPreImage{}

	tests := []struct {
		name     string
		left     Clause
		right    Clause
		expected Clause
	}{
		{"satisfied on left", Satisfied{}, leaf, Satisfied{}},
		{"satisfied on right", leaf, Satisfied{}, Satisfied{}},
		{"unsatisfiable on left", Unsatisfiable{}, leaf, leaf},
		{"unsatisfiable on right", leaf, Unsatisfiable{}, leaf},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := NewOr(tc.left, tc.right)
			require.Equal(t, tc.expected, got)
		})
	}
}

func TestNewAndNoIdentityStillAllocates(t *testing.T) {
	left := RevealPreImage{}
	right := RevealPreImage{}

	got := NewAnd(left, right)
	and, ok := got.(*And)
	require.True(t, ok)
	require.Equal(t, left, and.Left)
	require.Equal(t, right, and.Right)
}

func TestAbsoluteTimeSpecValidation(t *testing.T) {
	_, err := AtHeight(MinAbsoluteTimestamp)
	require.ErrorIs(t, err, ErrAbsoluteHeightTooLarge)

	_, err = AtUnixTime(MinAbsoluteTimestamp - 1)
	require.ErrorIs(t, err, ErrAbsoluteTimeTooSmall)

	h, err := AtHeight(100)
	require.NoError(t, err)
	require.True(t, h.IsBlockHeight())

	ts, err := AtUnixTime(MinAbsoluteTimestamp)
	require.NoError(t, err)
	require.False(t, ts.IsBlockHeight())
}

func TestRelativeTimeSpecValidation(t *testing.T) {
	_, err := RelativeBlocks(uint32(SequenceLockTimeMask) + 1)
	require.ErrorIs(t, err, ErrRelativeCountOutOfRange)

	blocks, err := RelativeBlocks(10)
	require.NoError(t, err)
	require.False(t, blocks.IsTimeTicks())
	require.Equal(t, uint32(10), blocks.Encode())

	ticks, err := RelativeTicks(1)
	require.NoError(t, err)
	require.True(t, ticks.IsTimeTicks())
	require.Equal(t, SequenceLockTimeTypeFlag|1, ticks.Encode())
}

func TestWeeksRoundsUpToTicks(t *testing.T) {
	w, err := Weeks(1)
	require.NoError(t, err)
	require.True(t, w.IsTimeTicks())
	// one week = 604800 seconds = 1181.25 ticks of 512s, rounds up to 1182.
	require.Equal(t, SequenceLockTimeTypeFlag|1182, w.Encode())
}

func TestNewThresholdValidation(t *testing.T) {
	subs := []Primitive{RevealPreImage{}, RevealPreImage{}, RevealPreImage{}}

	_, err := NewThreshold(0, subs)
	require.ErrorIs(t, err, ErrInvalidThreshold)

	_, err = NewThreshold(4, subs)
	require.ErrorIs(t, err, ErrInvalidThreshold)

	c, err := NewThreshold(2, subs)
	require.NoError(t, err)
	th, ok := c.(*Threshold)
	require.True(t, ok)
	require.Equal(t, 2, th.K)
	require.Len(t, th.Subclauses, 3)
}

func TestExpandThresholdsOneOfTwoProducesOr(t *testing.T) {
	subs := []Primitive{RevealPreImage{}, CheckTemplateVerify{}}
	th, err := NewThreshold(1, subs)
	require.NoError(t, err)

	expanded := ExpandThresholds(th)
	_, ok := expanded.(*Or)
	require.True(t, ok, "1-of-2 threshold should expand to an Or of the two subclauses")
}

func TestExpandThresholdsAllOfN(t *testing.T) {
	subs := []Primitive{RevealPreImage{}, CheckTemplateVerify{}}
	th, err := NewThreshold(2, subs)
	require.NoError(t, err)

	expanded := ExpandThresholds(th)
	_, ok := expanded.(*And)
	require.True(t, ok, "n-of-n threshold should expand to a single And, no Or needed")
}

func TestCombinationsCount(t *testing.T) {
	combos := combinations(5, 2)
	require.Len(t, combos, 10)
	for _, c := range combos {
		require.Len(t, c, 2)
	}
}
