package fwfeatures

import (
	"fmt"
	"strings"
)

// FeatureFlags is a fixed size bit set indexed by [Feature].
//
// Bit f%8 of byte f/8 holds feature f, which is also the layout of the
// feature_disable module parameter.
type FeatureFlags [featureBytes]uint8

// NewFeatureFlags returns a set holding the given features.
// Unknown features are ignored.
func NewFeatureFlags(features ...Feature) FeatureFlags {
	var ff FeatureFlags
	for _, f := range features {
		ff.Set(f)
	}
	return ff
}

// FeatureFlagsFromMask converts an integer mask (bit n = feature n).
// Bits beyond the last known feature are dropped.
func FeatureFlagsFromMask(mask uint64) FeatureFlags {
	var ff FeatureFlags
	for f := Feature(0); f < featureCount && f < 64; f++ {
		if mask&(1<<uint(f)) != 0 {
			ff.Set(f)
		}
	}
	return ff
}

// Has reports whether f is set.
func (ff FeatureFlags) Has(f Feature) bool {
	if !f.valid() {
		return false
	}
	return ff[f/8]&(1<<(f%8)) != 0
}

// Set sets f. Unknown features are ignored.
func (ff *FeatureFlags) Set(f Feature) {
	if f.valid() {
		ff[f/8] |= 1 << (f % 8)
	}
}

// Clear clears f. Unknown features are ignored.
func (ff *FeatureFlags) Clear(f Feature) {
	if f.valid() {
		ff[f/8] &^= 1 << (f % 8)
	}
}

// AndNot clears every bit that is set in mask.
func (ff *FeatureFlags) AndNot(mask FeatureFlags) {
	for i := range ff {
		ff[i] &^= mask[i]
	}
}

// IsZero reports whether no feature is set.
func (ff FeatureFlags) IsZero() bool {
	return ff == FeatureFlags{}
}

// Mask returns the set as an integer mask (bit n = feature n).
func (ff FeatureFlags) Mask() uint64 {
	var mask uint64
	for f := Feature(0); f < featureCount && f < 64; f++ {
		if ff.Has(f) {
			mask |= 1 << uint(f)
		}
	}
	return mask
}

// Enabled returns the features in the set in ordinal order.
func (ff FeatureFlags) Enabled() []Feature {
	var out []Feature
	for f := Feature(0); f < featureCount; f++ {
		if ff.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

// Hex returns the backing bytes as lowercase hex, lowest byte first.
func (ff FeatureFlags) Hex() string {
	var b strings.Builder
	for _, v := range ff {
		fmt.Fprintf(&b, "%02x", v)
	}
	return b.String()
}

func (ff FeatureFlags) String() string {
	names := make([]string, 0, featureCount)
	for _, f := range ff.Enabled() {
		names = append(names, f.String())
	}
	return strings.Join(names, ",")
}

// QuirkFlags is a bit set indexed by [Quirk].
type QuirkFlags uint32

// Has reports whether q is set.
func (qf QuirkFlags) Has(q Quirk) bool {
	if !q.valid() {
		return false
	}
	return qf&(1<<uint(q)) != 0
}

func (qf *QuirkFlags) set(q Quirk) {
	if q.valid() {
		*qf |= 1 << uint(q)
	}
}

// Enabled returns the quirks in the set in ordinal order.
func (qf QuirkFlags) Enabled() []Quirk {
	var out []Quirk
	for q := Quirk(0); q < quirkCount; q++ {
		if qf.Has(q) {
			out = append(out, q)
		}
	}
	return out
}
