package fwfeatures

import (
	"reflect"
	"testing"
)

func TestFeatureFlags_SetClear(t *testing.T) {
	var ff FeatureFlags
	ff.Set(FeatureSAE)
	ff.Set(FeatureOWE)
	ff.Set(Feature(999))

	if !ff.Has(FeatureSAE) || !ff.Has(FeatureOWE) {
		t.Fatalf("Has() after Set() = false, flags %s", ff.Hex())
	}
	if ff.Has(FeatureSAEExt) {
		t.Error("Has(SAE_EXT) = true")
	}
	if ff.Has(Feature(-1)) || ff.Has(Feature(999)) {
		t.Error("unknown features must never be reported")
	}

	ff.Clear(FeatureSAE)
	if ff.Has(FeatureSAE) {
		t.Error("Has(SAE) after Clear() = true")
	}
	if got, want := ff.Enabled(), []Feature{FeatureOWE}; !reflect.DeepEqual(got, want) {
		t.Errorf("Enabled() = %v, want %v", got, want)
	}
}

func TestFeatureFlags_Layout(t *testing.T) {
	if len(FeatureFlags{}) != 4 {
		t.Fatalf("FeatureFlags is %d bytes, want 4", len(FeatureFlags{}))
	}

	ff := NewFeatureFlags(FeatureMBSS, FeatureMCHAN, FeatureP2P, FeatureMonitor)
	if got, want := ff.Hex(), "13400000"; got != want {
		t.Errorf("Hex() = %q, want %q", got, want)
	}
	if got, want := ff.Mask(), uint64(0x4013); got != want {
		t.Errorf("Mask() = %#x, want %#x", got, want)
	}
	if got := FeatureFlagsFromMask(0x4013); got != ff {
		t.Errorf("FeatureFlagsFromMask(0x4013) = %s, want %s", got.Hex(), ff.Hex())
	}
}

func TestFeatureFlagsFromMask_DropsUnknownBits(t *testing.T) {
	ff := FeatureFlagsFromMask(1<<63 | 1<<uint(FeatureTWT))
	if got, want := ff.Enabled(), []Feature{FeatureTWT}; !reflect.DeepEqual(got, want) {
		t.Errorf("Enabled() = %v, want %v", got, want)
	}
}

func TestFeatureFlags_AndNot(t *testing.T) {
	ff := NewFeatureFlags(FeatureMBSS, FeatureP2P, FeatureTDLS)
	mask := NewFeatureFlags(FeatureP2P, FeatureOWE)

	ff.AndNot(mask)
	want := NewFeatureFlags(FeatureMBSS, FeatureTDLS)
	if ff != want {
		t.Errorf("AndNot() = %s, want %s", ff, want)
	}

	ff.AndNot(mask)
	if ff != want {
		t.Errorf("second AndNot() = %s, want %s", ff, want)
	}
}

func TestFeatureFlags_String(t *testing.T) {
	ff := NewFeatureFlags(FeatureP2P, FeatureMBSS)
	if got, want := ff.String(), "mbss,p2p"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if !(FeatureFlags{}).IsZero() {
		t.Error("zero value IsZero() = false")
	}
}

func TestQuirkFlags(t *testing.T) {
	var qf QuirkFlags
	qf.set(QuirkNeedMPC)
	qf.set(Quirk(31))

	if !qf.Has(QuirkNeedMPC) || qf.Has(QuirkAutoAuth) {
		t.Errorf("quirks = %08x", uint32(qf))
	}
	if got, want := qf.Enabled(), []Quirk{QuirkNeedMPC}; !reflect.DeepEqual(got, want) {
		t.Errorf("Enabled() = %v, want %v", got, want)
	}
}
