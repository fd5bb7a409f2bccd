// Package ctv computes the CheckTemplateVerify standard template hash:
// a SHA-256 digest over a fixed subset of transaction fields, exactly as
// laid out in spec §4.7. Grounded on original_source's
// sapio/contract/txtemplate.py (the distillation's single-bullet summary of
// a full contract-layer type) for the TransactionTemplate lifecycle, and on
// wire.MsgTx's little-endian/var-int serialization conventions (the
// teacher's own transaction-encoding package) for the byte layout.
package ctv

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"errors"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

// ErrTemplateFinalized is returned when a mutating method is called after
// Finalize (directly, or implicitly via Hash).
var ErrTemplateFinalized = errors.New("ctv: template already finalized")

// ErrSequenceIndexOutOfRange is returned by SetSequence when index is
// outside [0, input count).
var ErrSequenceIndexOutOfRange = errors.New("ctv: sequence index out of range")

// Output is one output of the spending transaction's standard template:
// an amount and the child transaction's scriptPubKey.
type Output struct {
	Amount btcutil.Amount
	Script []byte
}

// TransactionTemplate accumulates the fields the standard template hash
// commits to: version, lock_time, per-input sequence numbers, outputs, and
// the spending input's own index. It is built up by a contract layer,
// finalized, then hashed.
type TransactionTemplate struct {
	Version    uint32
	LockTime   uint32
	InputIndex uint32

	sequences []uint32
	outputs   []Output

	finalized bool
	cached    *chainhash.Hash
}

// NewTransactionTemplate allocates a template for a transaction with
// numInputs inputs, each defaulting to the maximum (final) sequence number.
func NewTransactionTemplate(version, lockTime uint32, numInputs int, inputIndex uint32) *TransactionTemplate {
	seqs := make([]uint32, numInputs)
	for i := range seqs {
		seqs[i] = wire.MaxTxInSequenceNum
	}
	return &TransactionTemplate{
		Version:    version,
		LockTime:   lockTime,
		InputIndex: inputIndex,
		sequences:  seqs,
	}
}

// AddOutput appends an output to the template.
func (t *TransactionTemplate) AddOutput(amount btcutil.Amount, script []byte) error {
	if t.finalized {
		return ErrTemplateFinalized
	}
	t.outputs = append(t.outputs, Output{Amount: amount, Script: script})
	return nil
}

// SetSequence sets the sequence number for input index.
func (t *TransactionTemplate) SetSequence(index int, seq uint32) error {
	if t.finalized {
		return ErrTemplateFinalized
	}
	if index < 0 || index >= len(t.sequences) {
		return ErrSequenceIndexOutOfRange
	}
	t.sequences[index] = seq
	return nil
}

// SetLockTime overwrites the template's lock_time field.
func (t *TransactionTemplate) SetLockTime(lockTime uint32) error {
	if t.finalized {
		return ErrTemplateFinalized
	}
	t.LockTime = lockTime
	return nil
}

// Finalize latches the template against further mutation. It is
// idempotent.
func (t *TransactionTemplate) Finalize() {
	t.finalized = true
}

// Finalized reports whether the template has been finalized.
func (t *TransactionTemplate) Finalized() bool {
	return t.finalized
}

// Hash computes the standard template hash, finalizing the template first
// if it has not been already, and caching the result so subsequent calls
// are free.
func (t *TransactionTemplate) Hash() (chainhash.Hash, error) {
	t.Finalize()
	if t.cached != nil {
		return *t.cached, nil
	}

	var buf bytes.Buffer

	if err := binary.Write(&buf, binary.LittleEndian, t.Version); err != nil {
		return chainhash.Hash{}, err
	}
	if err := binary.Write(&buf, binary.LittleEndian, t.LockTime); err != nil {
		return chainhash.Hash{}, err
	}
	if err := binary.Write(&buf, binary.LittleEndian, uint32(len(t.sequences))); err != nil {
		return chainhash.Hash{}, err
	}

	seqHash, err := hashSequences(t.sequences)
	if err != nil {
		return chainhash.Hash{}, err
	}
	buf.Write(seqHash[:])

	if err := binary.Write(&buf, binary.LittleEndian, uint32(len(t.outputs))); err != nil {
		return chainhash.Hash{}, err
	}

	outHash, err := hashOutputs(t.outputs)
	if err != nil {
		return chainhash.Hash{}, err
	}
	buf.Write(outHash[:])

	if err := binary.Write(&buf, binary.LittleEndian, t.InputIndex); err != nil {
		return chainhash.Hash{}, err
	}

	sum := sha256.Sum256(buf.Bytes())
	hash := chainhash.Hash(sum)
	t.cached = &hash
	return hash, nil
}

func hashSequences(sequences []uint32) (chainhash.Hash, error) {
	var buf bytes.Buffer
	for _, seq := range sequences {
		if err := binary.Write(&buf, binary.LittleEndian, seq); err != nil {
			return chainhash.Hash{}, err
		}
	}
	return chainhash.Hash(sha256.Sum256(buf.Bytes())), nil
}

func hashOutputs(outputs []Output) (chainhash.Hash, error) {
	var buf bytes.Buffer
	for _, out := range outputs {
		if err := binary.Write(&buf, binary.LittleEndian, int64(out.Amount)); err != nil {
			return chainhash.Hash{}, err
		}
		if err := wire.WriteVarInt(&buf, 0, uint64(len(out.Script))); err != nil {
			return chainhash.Hash{}, err
		}
		buf.Write(out.Script)
	}
	return chainhash.Hash(sha256.Sum256(buf.Bytes())), nil
}
