// Package fragment emits the stack-clean Script snippet for each primitive
// clause and registers its witness-slot and CTV needs on the owning
// branch's witness template. Grounded on
// original_source/bitcoin_script_compiler/clause_to_fragment.py's
// FragmentCompiler, with txscript.ScriptBuilder usage in the style of
// lnwallet/script_utils.go (senderHTLCScript, commitScriptToSelf).
package fragment

import (
	"fmt"

	"github.com/btcsuite/btcd/txscript"

	"github.com/ctv-compiler/ctvscript/clause"
	"github.com/ctv-compiler/ctvscript/flatten"
	"github.com/ctv-compiler/ctvscript/witness"
)

// opCheckTemplateVerify is BIP-119's repurposing of OP_NOP4 (0xb3); txscript
// has not adopted CTV as a named opcode since it is not yet consensus,
// the same situation lnwallet/script_utils.go historically handled for
// OP_CHECKSEQUENCEVERIFY by aliasing OP_NOP3 before CSV activated.
const opCheckTemplateVerify = txscript.OP_NOP4

// Compile emits the concatenated Script fragments for every primitive in
// conjunct, in order, registering witness slots and the branch's CTV
// binding (if any) on tmpl.
func Compile(conjunct flatten.Conjunct, tmpl *witness.Template) ([]byte, error) {
	builder := txscript.NewScriptBuilder()
	for _, p := range conjunct {
		if err := compileOne(builder, p, tmpl); err != nil {
			return nil, err
		}
	}
	return builder.Script()
}

func compileOne(b *txscript.ScriptBuilder, p clause.Primitive, tmpl *witness.Template) error {
	switch v := p.(type) {
	case clause.Satisfied:
		return nil

	case clause.SignedBy:
		tmpl.Add(witness.SignatureSlot(v.PubKey))
		b.AddData(v.PubKey.SerializeCompressed())
		b.AddOp(txscript.OP_CHECKSIGVERIFY)
		return nil

	case clause.RevealPreImage:
		tmpl.Add(witness.PreImageSlot(v.Hash))
		b.AddOp(txscript.OP_SHA256)
		b.AddData(v.Hash[:])
		b.AddOp(txscript.OP_EQUALVERIFY)
		return nil

	case clause.CheckTemplateVerify:
		if err := tmpl.WillExecuteCTV(v.Hash); err != nil {
			return err
		}
		b.AddData(v.Hash[:])
		b.AddOp(opCheckTemplateVerify)
		b.AddOp(txscript.OP_DROP)
		return nil

	case clause.Wait:
		return compileWait(b, v)

	default:
		return fmt.Errorf("fragment: cannot compile clause of type %T", p)
	}
}

func compileWait(b *txscript.ScriptBuilder, w clause.Wait) error {
	switch spec := w.Spec.(type) {
	case clause.AbsoluteTimeSpec:
		b.AddInt64(int64(spec.Encode()))
		b.AddOp(txscript.OP_CHECKLOCKTIMEVERIFY)
		b.AddOp(txscript.OP_DROP)
		return nil

	case clause.RelativeTimeSpec:
		b.AddInt64(int64(spec.Encode()))
		b.AddOp(txscript.OP_CHECKSEQUENCEVERIFY)
		b.AddOp(txscript.OP_DROP)
		return nil

	default:
		return fmt.Errorf("fragment: unknown timelock spec type %T", spec)
	}
}
