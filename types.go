package fwfeatures

import "fmt"

// ProbeMethod is the kind of round trip used to detect a feature.
type ProbeMethod int

const (
	// MethodIntGet queries an integer attribute; any answer but unsupported
	// means the firmware handles it.
	MethodIntGet ProbeMethod = iota
	// MethodDataSet writes a structured attribute; any answer but
	// unsupported means the firmware handles it.
	MethodDataSet
	// MethodDataGet queries a structured attribute and needs full success.
	MethodDataGet
	// MethodEnabGet queries a sub-command and needs full success.
	MethodEnabGet
)

func (m ProbeMethod) String() string {
	switch m {
	case MethodIntGet:
		return "int-get"
	case MethodDataSet:
		return "data-set"
	case MethodDataGet:
		return "data-get"
	case MethodEnabGet:
		return "enab-get"
	default:
		return fmt.Sprintf("ProbeMethod(%d)", m)
	}
}

// ProbeResult represents the outcome of a single firmware round trip.
type ProbeResult struct {
	// Feature is the feature the round trip was issued for.
	Feature Feature
	// Method is the kind of round trip.
	Method ProbeMethod
	// Name is the firmware attribute queried or written.
	Name string
	// Supported indicates whether the round trip counted as support.
	Supported bool
	// Error is the error the channel returned, nil on success.
	// It is nil for plain "unsupported" outcomes as well, see [ProbeResult.Unsupported].
	Error error
	// unsupported is set when the firmware answered with the unsupported sentinel.
	unsupported bool
}

// Unsupported reports whether the firmware answered "not implemented".
func (r ProbeResult) Unsupported() bool {
	return r.unsupported
}

// Origin tells where the final value of a feature bit came from.
type Origin int

const (
	// OriginNone means no source reported the feature.
	OriginNone Origin = iota
	// OriginCapability means the capability string carried the token.
	OriginCapability
	// OriginProbe means a probe round trip reported support.
	OriginProbe
	// OriginDependent means the wake-on-WLAN capability query set it.
	OriginDependent
	// OriginChipOverride means it was forced off for the chip.
	OriginChipOverride
	// OriginDisabled means the feature_disable mask cleared it.
	OriginDisabled
	// OriginSkipped means its probe is never issued on the chip.
	OriginSkipped
	// OriginGated means a prerequisite was missing, so it was not probed.
	OriginGated
)

var originNames = map[Origin]string{
	OriginNone:         "not reported",
	OriginCapability:   "capability string",
	OriginProbe:        "probe",
	OriginDependent:    "wowl capability",
	OriginChipOverride: "chip override",
	OriginDisabled:     "disabled by settings",
	OriginSkipped:      "skipped for chip",
	OriginGated:        "prerequisite missing",
}

func (o Origin) String() string {
	if name, ok := originNames[o]; ok {
		return name
	}
	return fmt.Sprintf("Origin(%d)", o)
}

// FeatureError represents an error when a required firmware feature is unavailable.
type FeatureError struct {
	Feature string
	Reason  string
	Err     error
}

func (e *FeatureError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("feature %s: %s: %v", e.Feature, e.Reason, e.Err)
	}
	return fmt.Sprintf("feature %s: %s", e.Feature, e.Reason)
}

func (e *FeatureError) Unwrap() error {
	return e.Err
}

// Bus describes the attached chip, as reported by the bus layer.
type Bus struct {
	// Chip is the chip identifier.
	Chip ChipID
	// ChipRev is the chip revision. Informational only.
	ChipRev uint32
	// WOWLSupported reports whether the bus can wake the host.
	WOWLSupported bool
}
