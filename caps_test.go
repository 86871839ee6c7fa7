package fwfeatures

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestMatchCapabilities(t *testing.T) {
	tests := []struct {
		name string
		blob string
		want []Feature
	}{
		{"p2p alone", "p2p", []Feature{FeatureP2P}},
		{"unrelated tokens", "ampdu amsdu ccx wme ", nil},
		{"empty", "", nil},
		// "sae_ext " does not contain "sae "; "sae " needs its own word.
		{"sae_ext only", "sae_ext ", []Feature{FeatureSAEExt}},
		{"sae and sae_ext", "sae sae_ext ", []Feature{FeatureSAE, FeatureSAEExt}},
		{"sae at end without space", "ap sta sae", nil},
		// "rtap" is shared by both radiotap related features.
		{"rtap", "monitor rtap ", []Feature{FeatureMonitor, FeatureMonitorFlag, FeatureMonitorFmtRadiotap}},
		{"token inside a longer word", "xmbssx", []Feature{FeatureMBSS}},
		{"fbt needs trailing space", "fbtx fbt_over_ds", nil},
		{"802.11h", "802.11d 802.11h ", []Feature{FeatureDot11H}},
		{"fwauth", "idauth owe", []Feature{FeatureFWAuth, FeatureOWE}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ff FeatureFlags
			matched := matchCapabilities([]byte(tt.blob), &ff)
			if !reflect.DeepEqual(matched, tt.want) {
				t.Errorf("matched = %v, want %v", matched, tt.want)
			}
			if got := ff.Enabled(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("flags = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatchCapabilities_NeverClears(t *testing.T) {
	ff := NewFeatureFlags(FeaturePNO, FeatureP2P)
	matchCapabilities([]byte("mchan "), &ff)

	want := NewFeatureFlags(FeaturePNO, FeatureP2P, FeatureMCHAN)
	if ff != want {
		t.Errorf("flags = %s, want %s", ff, want)
	}
}

func TestReadCapabilities(t *testing.T) {
	t.Run("terminated", func(t *testing.T) {
		caps := readCapabilities(newFakeChannel("ap sta p2p ", nil))
		if caps.Err() != nil {
			t.Fatalf("Err() = %v", caps.Err())
		}
		if got := caps.String(); got != "ap sta p2p " {
			t.Errorf("String() = %q", got)
		}
	})

	t.Run("unterminated full buffer", func(t *testing.T) {
		long := strings.Repeat("x", maxCapabilitiesSize+100) + " p2p"
		caps := readCapabilities(newFakeChannel(long, nil))
		if n := len(caps.Bytes()); n != maxCapabilitiesSize {
			t.Errorf("kept %d bytes, want %d", n, maxCapabilitiesSize)
		}
		var ff FeatureFlags
		if matchCapabilities(caps.Bytes(), &ff); ff.Has(FeatureP2P) {
			t.Error("token beyond the buffer bound must not match")
		}
	})

	t.Run("read error", func(t *testing.T) {
		ch := newFakeChannel("p2p", nil)
		ch.capsErr = errBadExchange
		caps := readCapabilities(ch)
		if !errors.Is(caps.Err(), errBadExchange) {
			t.Errorf("Err() = %v, want %v", caps.Err(), errBadExchange)
		}
		if len(caps.Bytes()) != 0 {
			t.Errorf("Bytes() = %q, want empty", caps.Bytes())
		}
	})
}
