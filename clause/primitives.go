package clause

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// ErrInvalidPubKey is returned when a SignedBy key does not parse as a
// compressed secp256k1 public key.
var ErrInvalidPubKey = errors.New("clause: invalid compressed public key")

// SignedBy requires a signature over the spending transaction by PubKey.
type SignedBy struct {
	PubKey *btcec.PublicKey
}

func (SignedBy) isClause()    {}
func (SignedBy) isPrimitive() {}

// NewSignedBy builds a SignedBy clause from an already-parsed public key.
func NewSignedBy(pub *btcec.PublicKey) (SignedBy, error) {
	if pub == nil {
		return SignedBy{}, ErrInvalidPubKey
	}
	return SignedBy{PubKey: pub}, nil
}

// NewSignedByBytes parses a 33-byte compressed public key and builds the
// corresponding SignedBy clause.
func NewSignedByBytes(compressed []byte) (SignedBy, error) {
	if len(compressed) != btcec.PubKeyBytesLenCompressed {
		return SignedBy{}, fmt.Errorf("%w: got %d bytes, want %d",
			ErrInvalidPubKey, len(compressed), btcec.PubKeyBytesLenCompressed)
	}
	pub, err := btcec.ParsePubKey(compressed)
	if err != nil {
		return SignedBy{}, fmt.Errorf("%w: %v", ErrInvalidPubKey, err)
	}
	return SignedBy{PubKey: pub}, nil
}

// RevealPreImage requires the preimage of the SHA-256 hash Hash to be
// supplied on the witness stack.
type RevealPreImage struct {
	Hash chainhash.Hash
}

func (RevealPreImage) isClause()    {}
func (RevealPreImage) isPrimitive() {}

// NewRevealPreImage builds a RevealPreImage clause over h.
func NewRevealPreImage(h chainhash.Hash) RevealPreImage {
	return RevealPreImage{Hash: h}
}

// CheckTemplateVerify requires the spending transaction's standard template
// hash to equal Hash.
type CheckTemplateVerify struct {
	Hash chainhash.Hash
}

func (CheckTemplateVerify) isClause()    {}
func (CheckTemplateVerify) isPrimitive() {}

// NewCheckTemplateVerify builds a CheckTemplateVerify clause committing to h.
func NewCheckTemplateVerify(h chainhash.Hash) CheckTemplateVerify {
	return CheckTemplateVerify{Hash: h}
}

// Wait requires the timelock described by Spec to have elapsed.
type Wait struct {
	Spec TimeSpec
}

func (Wait) isClause()    {}
func (Wait) isPrimitive() {}

// NewWait builds a Wait clause over the given timelock specification.
func NewWait(t TimeSpec) Wait {
	return Wait{Spec: t}
}
