package fwfeatures

// Requirement describes a gate condition consumable by [Features.Check].
//
// Built-in implementations include:
//   - [Feature]
//   - [FeatureGroup]
//   - [QuirkAbsent]
type Requirement interface {
	isRequirement()
}

// FeatureGroup is a reusable set of [Requirement] items.
type FeatureGroup []Requirement

// QuirkAbsent requires that the chip does not need a quirk.
type QuirkAbsent struct {
	Quirk Quirk
}

// RequireNoQuirk creates a requirement that q is not needed.
func RequireNoQuirk(q Quirk) QuirkAbsent {
	return QuirkAbsent{Quirk: q}
}

// Common feature groups.
var (
	// GroupWPA3 is what WPA3-Personal with an external supplicant needs.
	GroupWPA3 = FeatureGroup{FeatureSAE, FeatureMFP}
	// GroupWOWL is wake-on-WLAN with all sleep offloads.
	GroupWOWL = FeatureGroup{FeatureWOWL, FeatureWOWLARPND, FeatureWOWLND, FeatureWOWLGTK}
	// GroupSchedScan is scheduled scanning with random MAC addresses.
	GroupSchedScan = FeatureGroup{FeaturePNO, FeatureScanRandomMAC}
)

func (Feature) isRequirement()      {}
func (FeatureGroup) isRequirement() {}
func (QuirkAbsent) isRequirement()  {}

type requirementSet struct {
	features []Feature
	quirks   []Quirk

	seenFeatures map[Feature]struct{}
	seenQuirks   map[Quirk]struct{}
}

func normalizeRequirements(required []Requirement) requirementSet {
	rs := requirementSet{
		seenFeatures: map[Feature]struct{}{},
		seenQuirks:   map[Quirk]struct{}{},
	}
	for _, req := range required {
		rs.add(req)
	}
	return rs
}

func (rs *requirementSet) add(req Requirement) {
	switch r := req.(type) {
	case Feature:
		if _, ok := rs.seenFeatures[r]; ok {
			return
		}
		rs.seenFeatures[r] = struct{}{}
		rs.features = append(rs.features, r)
	case FeatureGroup:
		for _, nested := range r {
			if nested == nil {
				continue
			}
			rs.add(nested)
		}
	case QuirkAbsent:
		if _, ok := rs.seenQuirks[r.Quirk]; ok {
			return
		}
		rs.seenQuirks[r.Quirk] = struct{}{}
		rs.quirks = append(rs.quirks, r.Quirk)
	}
}
