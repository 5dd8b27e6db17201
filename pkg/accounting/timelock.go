// Package accounting implements the fee, timelock, RBF, SegWit-savings
// and warning layer described in spec section 4.6.
package accounting

// AbsoluteLocktimeType classifies a transaction's nLockTime field.
func AbsoluteLocktimeType(locktime uint32) string {
	switch {
	case locktime == 0:
		return "none"
	case locktime < 500_000_000:
		return "block_height"
	default:
		return "unix_timestamp"
	}
}

// RelativeTimelock is the decoded BIP68 relative timelock for one input.
type RelativeTimelock struct {
	Enabled bool
	Type    string // "blocks" or "time"
	Value   uint32
}

// ParseRelativeTimelock decodes BIP68 from an input's sequence field.
func ParseRelativeTimelock(sequence uint32) RelativeTimelock {
	const disableFlag = 1 << 31
	const typeFlag = 1 << 22

	if sequence&disableFlag != 0 {
		return RelativeTimelock{Enabled: false}
	}
	if sequence&typeFlag != 0 {
		return RelativeTimelock{Enabled: true, Type: "time", Value: (sequence & 0xffff) * 512}
	}
	return RelativeTimelock{Enabled: true, Type: "blocks", Value: sequence & 0xffff}
}

// IsRBFSignaling reports BIP125 replaceability: true iff any input's
// sequence is below 0xFFFFFFFE.
func IsRBFSignaling(sequences []uint32) bool {
	for _, seq := range sequences {
		if seq < 0xfffffffe {
			return true
		}
	}
	return false
}
