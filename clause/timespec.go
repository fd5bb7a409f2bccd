package clause

import (
	"errors"
	"math"
)

// MinAbsoluteTimestamp is the boundary lnd's own lockTimeToSequence logic
// uses to tell a block-height lock-time from a Unix-time one: values below
// it are heights, values at or above it are seconds since the epoch.
const MinAbsoluteTimestamp = 500_000_000

// SequenceLockTimeTypeFlag is bit 22 of a BIP-68 relative lock-time; set
// means the low 16 bits count 512-second ticks, clear means they count
// blocks. Valued the same as lnwallet/script_utils.go's
// SequenceLockTimeSeconds constant.
const SequenceLockTimeTypeFlag = uint32(1 << 22)

// SequenceLockTimeMask isolates the low 16 bits of a relative lock-time
// that carry the block/tick count, mirroring
// lnwallet/script_utils.go's SequenceLockTimeMask.
const SequenceLockTimeMask = uint32(0x0000ffff)

var (
	// ErrAbsoluteHeightTooLarge is returned when an absolute height is
	// not strictly below MinAbsoluteTimestamp.
	ErrAbsoluteHeightTooLarge = errors.New("clause: absolute block height must be < 500000000")

	// ErrAbsoluteTimeTooSmall is returned when an absolute Unix time is
	// below MinAbsoluteTimestamp.
	ErrAbsoluteTimeTooSmall = errors.New("clause: absolute unix time must be >= 500000000")

	// ErrRelativeCountOutOfRange is returned when a relative block or
	// tick count does not fit in 16 bits.
	ErrRelativeCountOutOfRange = errors.New("clause: relative lock-time count exceeds 16 bits")
)

// TimeSpec describes either an absolute or a relative timelock, folded into
// the 32-bit field Wait's script fragment pushes.
type TimeSpec interface {
	isTimeSpec()
	// Encode returns the raw 32-bit value this spec contributes to the
	// script: a lock-time for AbsoluteTimeSpec, a sequence for
	// RelativeTimeSpec.
	Encode() uint32
}

// AbsoluteTimeSpec is a raw BIP-65 lock-time: a block height when Value is
// below MinAbsoluteTimestamp, a Unix timestamp otherwise.
type AbsoluteTimeSpec struct {
	Value uint32
}

func (AbsoluteTimeSpec) isTimeSpec()          {}
func (a AbsoluteTimeSpec) Encode() uint32      { return a.Value }
func (a AbsoluteTimeSpec) IsBlockHeight() bool { return a.Value < MinAbsoluteTimestamp }

// AtHeight builds an AbsoluteTimeSpec for a block height.
func AtHeight(height uint32) (AbsoluteTimeSpec, error) {
	if height >= MinAbsoluteTimestamp {
		return AbsoluteTimeSpec{}, ErrAbsoluteHeightTooLarge
	}
	return AbsoluteTimeSpec{Value: height}, nil
}

// AtUnixTime builds an AbsoluteTimeSpec for a Unix timestamp.
func AtUnixTime(seconds uint32) (AbsoluteTimeSpec, error) {
	if seconds < MinAbsoluteTimestamp {
		return AbsoluteTimeSpec{}, ErrAbsoluteTimeTooSmall
	}
	return AbsoluteTimeSpec{Value: seconds}, nil
}

// RelativeTimeSpec is a raw BIP-68 sequence value: bit 22 selects the unit,
// the low 16 bits carry the count.
type RelativeTimeSpec struct {
	Value uint32
}

func (RelativeTimeSpec) isTimeSpec()     {}
func (r RelativeTimeSpec) Encode() uint32 { return r.Value }
func (r RelativeTimeSpec) IsTimeTicks() bool {
	return r.Value&SequenceLockTimeTypeFlag != 0
}

// RelativeBlocks builds a RelativeTimeSpec counting blocks.
func RelativeBlocks(count uint32) (RelativeTimeSpec, error) {
	if count > uint32(SequenceLockTimeMask) {
		return RelativeTimeSpec{}, ErrRelativeCountOutOfRange
	}
	return RelativeTimeSpec{Value: count}, nil
}

// RelativeTicks builds a RelativeTimeSpec counting raw 512-second ticks.
func RelativeTicks(ticks uint32) (RelativeTimeSpec, error) {
	if ticks > uint32(SequenceLockTimeMask) {
		return RelativeTimeSpec{}, ErrRelativeCountOutOfRange
	}
	return RelativeTimeSpec{Value: ticks | SequenceLockTimeTypeFlag}, nil
}

// RelativeSeconds builds a RelativeTimeSpec from a duration in seconds,
// rounding up to the nearest 512-second tick the way BIP-68 requires.
func RelativeSeconds(seconds float64) (RelativeTimeSpec, error) {
	ticks := uint32(math.Ceil(seconds / 512))
	return RelativeTicks(ticks)
}

// Days builds a RelativeTimeSpec for n days, the same convenience helper
// original_source's clause.py exposes.
func Days(n float64) (RelativeTimeSpec, error) {
	return RelativeSeconds(n * 24 * 60 * 60)
}

// Weeks builds a RelativeTimeSpec for n weeks.
func Weeks(n float64) (RelativeTimeSpec, error) {
	return Days(n * 7)
}
