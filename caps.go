package fwfeatures

import (
	"bytes"
	"fmt"
)

// maxCapabilitiesSize bounds the firmware capability string.
const maxCapabilitiesSize = 768

const capabilitiesIovar = "cap"

// Capabilities is the capability string read from firmware during
// negotiation, kept for diagnostics.
type Capabilities struct {
	raw []byte
	err error
}

// Bytes returns a copy of the capability string.
func (c Capabilities) Bytes() []byte {
	return bytes.Clone(c.raw)
}

// Err returns the error that prevented reading the capability string.
func (c Capabilities) Err() error {
	return c.err
}

func (c Capabilities) String() string {
	return string(c.raw)
}

// readCapabilities fetches the capability string. The firmware answer is
// not guaranteed to be NUL terminated, so at most maxCapabilitiesSize bytes
// are kept.
func readCapabilities(ch Channel) Capabilities {
	buf := make([]byte, maxCapabilitiesSize)
	if err := ch.DataGet(capabilitiesIovar, buf); err != nil {
		return Capabilities{err: fmt.Errorf("could not get firmware cap: %w", err)}
	}
	if i := bytes.IndexByte(buf, 0); i >= 0 {
		buf = buf[:i]
	}
	return Capabilities{raw: buf}
}

// matchCapabilities sets every feature whose token occurs in blob and
// returns them. It never clears a bit.
func matchCapabilities(blob []byte, ff *FeatureFlags) []Feature {
	var matched []Feature
	for f := Feature(0); f < featureCount; f++ {
		token, ok := f.CapabilityToken()
		if !ok {
			continue
		}
		if bytes.Contains(blob, []byte(token)) {
			ff.Set(f)
			matched = append(matched, f)
		}
	}
	return matched
}
