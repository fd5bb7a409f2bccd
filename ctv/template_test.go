package ctv

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashFinalizesAndCaches(t *testing.T) {
	tmpl := NewTransactionTemplate(2, 0, 1, 0)
	require.NoError(t, tmpl.AddOutput(100000, []byte{0x00, 0x14}))

	h1, err := tmpl.Hash()
	require.NoError(t, err)
	require.True(t, tmpl.Finalized())

	h2, err := tmpl.Hash()
	require.NoError(t, err)
	require.Equal(t, h1, h2)
}

func TestMutationRejectedAfterFinalize(t *testing.T) {
	tmpl := NewTransactionTemplate(2, 0, 1, 0)
	tmpl.Finalize()

	require.ErrorIs(t, tmpl.AddOutput(1, nil), ErrTemplateFinalized)
	require.ErrorIs(t, tmpl.SetLockTime(1), ErrTemplateFinalized)
	require.ErrorIs(t, tmpl.SetSequence(0, 1), ErrTemplateFinalized)
}

func TestHashChangesWithCoveredFields(t *testing.T) {
	base := func() *TransactionTemplate {
		tmpl := NewTransactionTemplate(2, 0, 1, 0)
		require.NoError(t, tmpl.AddOutput(100000, []byte{0x00, 0x14}))
		return tmpl
	}

	h1, err := base().Hash()
	require.NoError(t, err)

	changedLockTime := base()
	require.NoError(t, changedLockTime.SetLockTime(500))
	h2, err := changedLockTime.Hash()
	require.NoError(t, err)
	require.NotEqual(t, h1, h2)

	changedSeq := base()
	require.NoError(t, changedSeq.SetSequence(0, 0xfffffffe))
	h3, err := changedSeq.Hash()
	require.NoError(t, err)
	require.NotEqual(t, h1, h3)

	changedOut := base()
	require.NoError(t, changedOut.AddOutput(1, []byte{0x51}))
	h4, err := changedOut.Hash()
	require.NoError(t, err)
	require.NotEqual(t, h1, h4)
}

func TestSetSequenceOutOfRange(t *testing.T) {
	tmpl := NewTransactionTemplate(2, 0, 1, 0)
	require.ErrorIs(t, tmpl.SetSequence(5, 1), ErrSequenceIndexOutOfRange)
}

func TestHashDeterministic(t *testing.T) {
	build := func() *TransactionTemplate {
		tmpl := NewTransactionTemplate(2, 600000, 2, 1)
		require.NoError(t, tmpl.AddOutput(50000, []byte{0x00, 0x20}))
		require.NoError(t, tmpl.SetSequence(0, 0xfffffffd))
		return tmpl
	}

	h1, err := build().Hash()
	require.NoError(t, err)
	h2, err := build().Hash()
	require.NoError(t, err)
	require.Equal(t, h1, h2)
}
