package fwfeatures

import "fmt"

// Check validates the specified requirements against the negotiated
// features and returns a *[FeatureError] for the first unsatisfied one,
// or nil if all are met.
func (f *Features) Check(required ...Requirement) error {
	if f == nil {
		return fmt.Errorf("check: %w", ErrNotNegotiated)
	}
	rs := normalizeRequirements(required)

	for _, feature := range rs.features {
		if !feature.valid() {
			return &FeatureError{Feature: feature.String(), Reason: "unknown feature"}
		}
		if f.Enabled(feature) {
			continue
		}
		var err error
		if result, ok := f.Result(feature); ok {
			err = result.Error
		}
		return &FeatureError{
			Feature: feature.String(),
			Reason:  f.Diagnose(feature),
			Err:     err,
		}
	}

	for _, q := range rs.quirks {
		if f.QuirkEnabled(q) {
			return &FeatureError{
				Feature: fmt.Sprintf("quirk %s", q),
				Reason:  fmt.Sprintf("chip %s needs quirk %s", f.bus.Chip, q),
			}
		}
	}

	return nil
}

// Result returns the last firmware round trip issued for feature.
// Returns false as the second value if the feature was never probed.
func (f *Features) Result(feature Feature) (ProbeResult, bool) {
	if f == nil {
		return ProbeResult{}, false
	}
	for i := len(f.probes) - 1; i >= 0; i-- {
		if f.probes[i].Feature == feature {
			return f.probes[i], true
		}
	}
	return ProbeResult{}, false
}

// Diagnose returns a reason string explaining why a feature is not
// enabled and what the operator can do about it.
func (f *Features) Diagnose(feature Feature) string {
	if f == nil {
		return "features not negotiated"
	}
	if f.Enabled(feature) {
		return fmt.Sprintf("enabled (%s)", f.Origin(feature))
	}

	switch f.Origin(feature) {
	case OriginDisabled:
		return "detected but disabled by feature_disable; clear its bit to use it"
	case OriginChipOverride:
		return fmt.Sprintf("not usable on chip %s regardless of firmware", f.bus.Chip)
	case OriginSkipped:
		return fmt.Sprintf("firmware for chip %s does not implement it; not probed", f.bus.Chip)
	case OriginGated:
		switch feature {
		case FeatureWOWL:
			return "bus does not support wake-on-WLAN; not probed"
		case FeatureWOWLARPND, FeatureWOWLND, FeatureWOWLGTK:
			return "requires wowl, which is not enabled"
		}
		return "prerequisite missing; not probed"
	}

	if _, ok := feature.CapabilityToken(); ok {
		if err := f.caps.Err(); err != nil {
			return fmt.Sprintf("firmware capability string unavailable: %v", err)
		}
		return "not listed in firmware capabilities"
	}

	if (feature == FeatureWOWLND || feature == FeatureWOWLGTK) && f.Enabled(FeatureWOWLARPND) {
		return "wowl_cap does not report it"
	}

	result, probed := f.Result(feature)
	switch {
	case !probed:
		return "not probed"
	case result.Unsupported():
		return fmt.Sprintf("firmware reports %s as unsupported", result.Name)
	case result.Error != nil:
		return fmt.Sprintf("%s probe failed: %v", result.Name, result.Error)
	}
	return "not supported"
}
