// Package simplify implements the per-conjunct simplification pass: it
// merges redundant timelocks, deduplicates CheckTemplateVerify clauses, and
// prunes (or rejects, in strict mode) contradictory conjuncts. Grounded on
// original_source/bitcoin_script_compiler/simplify.py's
// AfterClauseSimplification and DNFSimplification passes.
package simplify

import (
	"errors"

	"github.com/ctv-compiler/ctvscript/clause"
	"github.com/ctv-compiler/ctvscript/flatten"
)

// ErrIncompatibleTimelock is returned in strict mode when a conjunct mixes
// relative-blocks with relative-time, or absolute-blocks with
// absolute-time.
var ErrIncompatibleTimelock = errors.New("simplify: incompatible timelock types in same branch")

// ErrIncompatibleCTV is returned in strict mode when a conjunct contains
// two CheckTemplateVerify clauses with different hashes.
var ErrIncompatibleCTV = errors.New("simplify: conflicting CheckTemplateVerify hashes in same branch")

// Options configures how simplification reacts to contradictions. It
// replaces original_source's module-level PRUNE_MODE global with an
// explicit value threaded from the compiler entry point, per spec §9.
type Options struct {
	// Strict, if true, turns timelock/CTV contradictions into errors
	// instead of pruning the branch to [Unsatisfiable].
	Strict bool
}

// Simplify applies the per-conjunct transformation of spec §4.3 to
// conjunct, returning the simplified conjunct. A pruned branch is reported
// by returning a conjunct containing a single clause.Unsatisfiable; callers
// must drop any conjunct for which ContainsUnsatisfiable reports true.
func Simplify(conjunct flatten.Conjunct, opts Options) (flatten.Conjunct, error) {
	var (
		waits []clause.Wait
		ctvs  []clause.CheckTemplateVerify
		rest  flatten.Conjunct
	)

	for _, p := range conjunct {
		switch v := p.(type) {
		case clause.Wait:
			waits = append(waits, v)
		case clause.CheckTemplateVerify:
			ctvs = append(ctvs, v)
		default:
			rest = append(rest, p)
		}
	}

	mergedWaits, err := mergeTimelocks(waits, opts)
	if err != nil {
		return nil, err
	}
	if mergedWaits == nil && len(waits) > 0 {
		// pruned by timelock contradiction
		return flatten.Conjunct{clause.Unsatisfiable{}}, nil
	}

	mergedCTV, ok, err := dedupeCTV(ctvs, opts)
	if err != nil {
		return nil, err
	}
	if !ok && len(ctvs) > 0 {
		// pruned by CTV contradiction
		return flatten.Conjunct{clause.Unsatisfiable{}}, nil
	}

	out := make(flatten.Conjunct, 0, len(mergedWaits)+len(rest)+1)
	for _, w := range mergedWaits {
		out = append(out, w)
	}
	if ok && len(ctvs) > 0 {
		out = append(out, mergedCTV)
	}
	out = append(out, rest...)
	return out, nil
}

// ContainsUnsatisfiable reports whether conjunct is the pruned-branch
// marker Simplify returns on contradiction.
func ContainsUnsatisfiable(conjunct flatten.Conjunct) bool {
	for _, p := range conjunct {
		if _, ok := p.(clause.Unsatisfiable); ok {
			return true
		}
	}
	return false
}

// mergeTimelocks partitions waits into relative/absolute x blocks/time,
// keeps the maximum of each consistent pair, and reports a contradiction by
// returning (nil, nil) when pruning, or a non-nil error in strict mode.
func mergeTimelocks(waits []clause.Wait, opts Options) ([]clause.Wait, error) {
	if len(waits) == 0 {
		return nil, nil
	}

	var (
		haveRelBlocks, haveRelTime     bool
		relBlocksMax, relTimeMax       uint32
		haveAbsBlocks, haveAbsTime     bool
		absBlocksMax, absTimeMax       uint32
	)

	for _, w := range waits {
		switch spec := w.Spec.(type) {
		case clause.RelativeTimeSpec:
			if spec.IsTimeTicks() {
				haveRelTime = true
				if spec.Encode() > relTimeMax {
					relTimeMax = spec.Encode()
				}
			} else {
				haveRelBlocks = true
				if spec.Encode() > relBlocksMax {
					relBlocksMax = spec.Encode()
				}
			}
		case clause.AbsoluteTimeSpec:
			if spec.IsBlockHeight() {
				haveAbsBlocks = true
				if spec.Encode() > absBlocksMax {
					absBlocksMax = spec.Encode()
				}
			} else {
				haveAbsTime = true
				if spec.Encode() > absTimeMax {
					absTimeMax = spec.Encode()
				}
			}
		}
	}

	if haveRelBlocks && haveRelTime {
		return pruneOrFail(opts, "relative-blocks and relative-time waits in same branch")
	}
	if haveAbsBlocks && haveAbsTime {
		return pruneOrFail(opts, "absolute-blocks and absolute-time waits in same branch")
	}

	var out []clause.Wait
	switch {
	case haveRelBlocks:
		out = append(out, clause.NewWait(clause.RelativeTimeSpec{Value: relBlocksMax}))
	case haveRelTime:
		out = append(out, clause.NewWait(clause.RelativeTimeSpec{Value: relTimeMax}))
	}
	switch {
	case haveAbsBlocks:
		out = append(out, clause.NewWait(clause.AbsoluteTimeSpec{Value: absBlocksMax}))
	case haveAbsTime:
		out = append(out, clause.NewWait(clause.AbsoluteTimeSpec{Value: absTimeMax}))
	}
	return out, nil
}

func pruneOrFail(opts Options, reason string) ([]clause.Wait, error) {
	if opts.Strict {
		return nil, ErrIncompatibleTimelock
	}
	clog.Warnf("pruning branch: %s", reason)
	return nil, nil
}

// dedupeCTV keeps a single CheckTemplateVerify clause per branch, failing
// or pruning if two distinct hashes were present.
func dedupeCTV(ctvs []clause.CheckTemplateVerify, opts Options) (clause.CheckTemplateVerify, bool, error) {
	if len(ctvs) == 0 {
		return clause.CheckTemplateVerify{}, false, nil
	}
	first := ctvs[0]
	for _, c := range ctvs[1:] {
		if c.Hash != first.Hash {
			if opts.Strict {
				return clause.CheckTemplateVerify{}, false, ErrIncompatibleCTV
			}
			clog.Warnf("pruning branch: conflicting CheckTemplateVerify hashes")
			return clause.CheckTemplateVerify{}, false, nil
		}
	}
	return first, true, nil
}
