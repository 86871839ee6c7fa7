package fwfeatures

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

// Names of the diagnostic entries returned by [Features.DebugEntries].
const (
	DebugFeatures     = "features"
	DebugCapabilities = "fwcap"
)

// DebugEntries returns the diagnostic dumps keyed by their entry name.
func (f *Features) DebugEntries() map[string]func(io.Writer) error {
	return map[string]func(io.Writer) error{
		DebugFeatures:     f.WriteFeatures,
		DebugCapabilities: f.WriteCapabilities,
	}
}

// WriteFeatures writes the feature bitmap in hex followed by the enabled
// feature names, then the quirk bitmap and the enabled quirk names.
func (f *Features) WriteFeatures(w io.Writer) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Features: %s\n", f.Flags().Hex())
	for _, feature := range f.Flags().Enabled() {
		fmt.Fprintf(&b, "\t%s\n", feature)
	}

	fmt.Fprintf(&b, "\nQuirks:   %08x\n", uint32(f.Quirks()))
	for _, q := range f.Quirks().Enabled() {
		fmt.Fprintf(&b, "\t%s\n", q)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteCapabilities writes the firmware capability string one token per
// line. It fails with the original read error if the string could not be
// read during negotiation.
func (f *Features) WriteCapabilities(w io.Writer) error {
	caps := f.Capabilities()
	if err := caps.Err(); err != nil {
		return err
	}

	out := bytes.ReplaceAll(caps.raw, []byte{' '}, []byte{'\n'})
	// The firmware usually ends the string with a space already.
	if len(out) > 0 && out[len(out)-1] != '\n' {
		out = append(out, '\n')
	}
	_, err := w.Write(out)
	return err
}

// String returns a human-readable summary of the negotiation.
func (f *Features) String() string {
	var b strings.Builder

	bus := f.Bus()
	fmt.Fprintf(&b, "Chip: %s rev %d\n", bus.Chip, bus.ChipRev)
	b.WriteString("\n")

	b.WriteString("Features:\n")
	for _, feature := range FeatureValues() {
		writeFeature(&b, feature, f.Enabled(feature), f.Origin(feature))
	}
	b.WriteString("\n")

	b.WriteString("Quirks:\n")
	for _, q := range QuirkValues() {
		writeBool(&b, "  "+q.String(), f.QuirkEnabled(q))
	}
	b.WriteString("\n")

	b.WriteString("Settings:\n")
	writeBool(&b, "  6 GHz", f.Is6GHzEnabled())
	writeBool(&b, "  Offload profile", f.OffloadsEnabled())
	writeBool(&b, "  RX in kthread", f.RxfInKthread())

	return b.String()
}

func writeFeature(b *strings.Builder, feature Feature, enabled bool, origin Origin) {
	status := "no"
	if enabled {
		status = "yes"
	}
	fmt.Fprintf(b, "  %s: %s (%s)\n", feature, status, origin)
}

func writeBool(b *strings.Builder, name string, v bool) {
	status := "no"
	if v {
		status = "yes"
	}
	fmt.Fprintf(b, "%s: %s\n", name, status)
}
