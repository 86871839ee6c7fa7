package fwfeatures

import "slices"

// Features is the outcome of negotiation. It is immutable, so any number
// of goroutines may read it without locking.
//
// All accessors accept a nil receiver and then report nothing enabled.
type Features struct {
	flags   FeatureFlags
	quirks  QuirkFlags
	origins [featureCount]Origin
	probes  []ProbeResult
	caps    Capabilities

	bus      Bus
	settings Settings
}

// Enabled reports whether the firmware supports f.
func (f *Features) Enabled(feature Feature) bool {
	return f != nil && f.flags.Has(feature)
}

// QuirkEnabled reports whether the chip needs quirk q.
func (f *Features) QuirkEnabled(q Quirk) bool {
	return f != nil && f.quirks.Has(q)
}

// Flags returns a copy of the feature bitmap.
func (f *Features) Flags() FeatureFlags {
	if f == nil {
		return FeatureFlags{}
	}
	return f.flags
}

// Quirks returns the quirk bitmap.
func (f *Features) Quirks() QuirkFlags {
	if f == nil {
		return 0
	}
	return f.quirks
}

// Origin tells why feature has its final value.
func (f *Features) Origin(feature Feature) Origin {
	if f == nil || !feature.valid() {
		return OriginNone
	}
	return f.origins[feature]
}

// Probes returns every firmware round trip made for detection, in order.
func (f *Features) Probes() []ProbeResult {
	if f == nil {
		return nil
	}
	return slices.Clone(f.probes)
}

// Capabilities returns the capability string read during negotiation.
func (f *Features) Capabilities() Capabilities {
	if f == nil {
		return Capabilities{}
	}
	return f.caps
}

// Bus returns the chip description negotiation ran against.
func (f *Features) Bus() Bus {
	if f == nil {
		return Bus{}
	}
	return f.bus
}

// The following are host policy read straight from the settings; the
// firmware has no say in them.

// Is6GHzEnabled reports whether the 6 GHz band may be used.
func (f *Features) Is6GHzEnabled() bool {
	return f != nil && !f.settings.Disable6GHz
}

// RxfInKthread reports whether the SDIO receive path runs in its own worker.
func (f *Features) RxfInKthread() bool {
	return f != nil && f.settings.SDIORxfInKthread
}

// OffloadsEnabled reports whether the firmware offload profile is turned on.
func (f *Features) OffloadsEnabled() bool {
	return f != nil && f.settings.OffloadProfile
}
