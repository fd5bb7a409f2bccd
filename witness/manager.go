package witness

import (
	"crypto/sha256"
	"errors"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
)

// ErrWitnessKeyConflict is returned by MakeWitness when key already has a
// template, or the manager is already finalized.
var ErrWitnessKeyConflict = errors.New("witness: branch key already has a witness template, or manager is finalized")

// ErrNotFinalized is returned by GetWitness before Finalize has been
// called.
var ErrNotFinalized = errors.New("witness: manager not yet finalized")

// ErrUnknownBranch is returned by GetWitness for a key with no template.
var ErrUnknownBranch = errors.New("witness: no witness template for branch key")

// ErrInvalidOverrideAddress is returned when an override address does not
// decode to a P2WSH address for the requested network.
var ErrInvalidOverrideAddress = errors.New("witness: override address is not a valid P2WSH address")

// Stack is the witness data plus the program, ready for a spend: the order
// downstream code pushes for a P2WSH spend of this branch.
type Stack struct {
	Slots   []Slot
	Program []byte
}

// Manager owns the compiled program bytes and one witness Template per DNF
// branch. Its lifecycle is building -> final; mutations past Finalize fail.
type Manager struct {
	program      []byte
	templates    map[int]*Template
	finalized    bool
	overrideAddr string
}

// NewManager returns an empty, building-state Manager.
func NewManager() *Manager {
	return &Manager{templates: make(map[int]*Template)}
}

// MakeWitness allocates and registers a new Template under key. It fails
// if the manager is finalized or key is already in use.
func (m *Manager) MakeWitness(key int) (*Template, error) {
	if m.finalized {
		return nil, ErrWitnessKeyConflict
	}
	if _, exists := m.templates[key]; exists {
		return nil, ErrWitnessKeyConflict
	}
	t := &Template{}
	m.templates[key] = t
	return t, nil
}

// AppendProgram appends raw script bytes to the program under construction.
func (m *Manager) AppendProgram(b []byte) {
	m.program = append(m.program, b...)
}

// Program returns a copy of the program bytes assembled so far.
func (m *Manager) Program() []byte {
	out := make([]byte, len(m.program))
	copy(out, m.program)
	return out
}

// Finalize latches the manager against further MakeWitness calls. It is
// idempotent.
func (m *Manager) Finalize() {
	m.finalized = true
}

// Finalized reports whether the manager has been finalized.
func (m *Manager) Finalized() bool {
	return m.finalized
}

// SetOverrideAddress inlines an externally-supplied segwit address in
// place of this manager's own program commitment, for contracts that want
// to point a branch at an address the compiler did not derive itself.
func (m *Manager) SetOverrideAddress(addr string) {
	m.overrideAddr = addr
}

// GetWitness returns the branch's witness stack (slots followed by the
// program, as the final script element a P2WSH spend pushes). It requires
// the manager to be finalized.
func (m *Manager) GetWitness(key int) (*Stack, error) {
	if !m.finalized {
		return nil, ErrNotFinalized
	}
	tmpl, ok := m.templates[key]
	if !ok {
		return nil, ErrUnknownBranch
	}
	return &Stack{Slots: tmpl.Slots(), Program: m.Program()}, nil
}

// Template returns the witness template for key without requiring
// finalization, for callers (like the fragment emitter) that need to
// register slots and CTV bindings while the manager is still building.
func (m *Manager) Template(key int) (*Template, bool) {
	t, ok := m.templates[key]
	return t, ok
}

// P2WSHScript returns the standard segwit-v0 P2WSH scriptPubKey for this
// manager's program: 0x00 0x20 <SHA256(program)>. If an override address
// has been set, it is decoded instead of hashing the program.
func (m *Manager) P2WSHScript(params *chaincfg.Params) ([]byte, error) {
	if m.overrideAddr != "" {
		addr, err := btcutil.DecodeAddress(m.overrideAddr, params)
		if err != nil {
			return nil, err
		}
		wsh, ok := addr.(*btcutil.AddressWitnessScriptHash)
		if !ok {
			return nil, ErrInvalidOverrideAddress
		}
		return txscript.PayToAddrScript(wsh)
	}

	digest := sha256.Sum256(m.program)
	return txscript.NewScriptBuilder().
		AddOp(txscript.OP_0).
		AddData(digest[:]).
		Script()
}

// P2WSHAddress bech32-encodes the witness program under params (selecting
// HRP bc for mainnet, bcrt for regtest, etc., via the caller-supplied
// chaincfg.Params — the same parameter lnwallet threads through channel
// construction). If an override address is set, it is returned directly.
func (m *Manager) P2WSHAddress(params *chaincfg.Params) (string, error) {
	if m.overrideAddr != "" {
		return m.overrideAddr, nil
	}
	digest := sha256.Sum256(m.program)
	addr, err := btcutil.NewAddressWitnessScriptHash(digest[:], params)
	if err != nil {
		return "", err
	}
	return addr.EncodeAddress(), nil
}
