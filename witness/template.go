// Package witness owns the per-branch witness templates and the witness
// manager that ties a compiled program to them. Grounded on
// original_source/bitcoin_script_compiler/witnessmanager.py's
// WitnessTemplate/WitnessManager, with the enum-dispatch shape of a slot
// borrowed from lnwallet/witnessgen.go's WitnessType switch.
package witness

import (
	"errors"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// SlotKind tags what a witness Slot represents, mirroring the closed enum
// lnwallet.WitnessType switches over for commitment-output spend paths.
type SlotKind int

const (
	// SlotSignature is a placeholder for a signature by a given key.
	SlotSignature SlotKind = iota
	// SlotPreImage is a placeholder for the preimage of a given hash.
	SlotPreImage
	// SlotData is a concrete literal value known at compile time (e.g. a
	// branch-selector integer).
	SlotData
)

// Slot is one stack-position placeholder in a witness template.
type Slot struct {
	Kind   SlotKind
	PubKey *btcec.PublicKey
	Hash   chainhash.Hash
	Data   []byte
}

// SignatureSlot builds a placeholder for a signature by pub.
func SignatureSlot(pub *btcec.PublicKey) Slot {
	return Slot{Kind: SlotSignature, PubKey: pub}
}

// PreImageSlot builds a placeholder for the preimage of h.
func PreImageSlot(h chainhash.Hash) Slot {
	return Slot{Kind: SlotPreImage, Hash: h}
}

// DataSlot builds a concrete data slot from raw bytes.
func DataSlot(data []byte) Slot {
	return Slot{Kind: SlotData, Data: data}
}

// ErrMultipleCTV is returned when a second, different CTV hash is bound to
// a template that already has one — spec's single-CTV-per-branch
// invariant. Unlike the timelock/CTV pruning in package simplify, this
// check is never governed by strict mode: reaching it means the
// simplifier's own dedup step failed to collapse the branch to one CTV
// hash, which is a bug in the surrounding contract, not a recoverable
// input shape.
var ErrMultipleCTV = errors.New("witness: multiple distinct CTV hashes bound to same template")

// Template is one DNF branch's witness record: the ordered slots a spender
// must supply, plus at most one bound CTV hash.
type Template struct {
	slots   []Slot
	ctvHash *chainhash.Hash
}

// Add inserts slot at stack position 0 — the bottom of the stack as seen
// at spend time, so the most recently added slot is consumed last.
func (t *Template) Add(slot Slot) {
	t.slots = append([]Slot{slot}, t.slots...)
}

// AddInt inserts a concrete integer literal as a minimally-encoded data
// slot, for branch-selector values the compiler itself seeds.
func (t *Template) AddInt(n int64) {
	t.Add(DataSlot(encodeScriptNum(n)))
}

// WillExecuteCTV records that this branch's script will execute
// OP_CHECKTEMPLATEVERIFY against h. A second call with a different hash
// fails with ErrMultipleCTV.
func (t *Template) WillExecuteCTV(h chainhash.Hash) error {
	if t.ctvHash != nil && *t.ctvHash != h {
		return ErrMultipleCTV
	}
	hh := h
	t.ctvHash = &hh
	return nil
}

// Slots returns a copy of the ordered witness slots.
func (t *Template) Slots() []Slot {
	out := make([]Slot, len(t.slots))
	copy(out, t.slots)
	return out
}

// CTVHash returns the bound CTV hash, if any.
func (t *Template) CTVHash() (chainhash.Hash, bool) {
	if t.ctvHash == nil {
		return chainhash.Hash{}, false
	}
	return *t.ctvHash, true
}
