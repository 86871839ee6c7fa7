package fwfeatures

import (
	"errors"
	"testing"
)

func newTestNegotiator(ch Channel) *negotiator {
	return &negotiator{ch: ch, log: discardLogger()}
}

func TestProbeIntGet(t *testing.T) {
	tests := []struct {
		name          string
		answer        answer
		wantSupported bool
		wantErr       bool
	}{
		{"value", answer{value: 1}, true, false},
		{"zero value", answer{value: 0}, true, false},
		{"bad argument", answer{err: fwErr(FirmwareBadArg)}, true, true},
		{"transport failure", answer{err: errBadExchange}, true, true},
		{"unsupported", answer{err: fwErr(FirmwareUnsupported)}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ch := newFakeChannel("", map[string]answer{"mfp": tt.answer})
			n := newTestNegotiator(ch)

			n.probeIntGet(FeatureMFP, "mfp")

			if got := n.flags.Has(FeatureMFP); got != tt.wantSupported {
				t.Errorf("MFP set = %v, want %v", got, tt.wantSupported)
			}
			if len(n.probes) != 1 {
				t.Fatalf("got %d probe records, want 1", len(n.probes))
			}
			r := n.probes[0]
			if r.Supported != tt.wantSupported {
				t.Errorf("Supported = %v, want %v", r.Supported, tt.wantSupported)
			}
			if (r.Error != nil) != tt.wantErr {
				t.Errorf("Error = %v, want error %v", r.Error, tt.wantErr)
			}
			if r.Unsupported() == tt.wantSupported {
				t.Errorf("Unsupported() = %v", r.Unsupported())
			}
		})
	}
}

func TestProbeDataSet_AnyAnswerButUnsupported(t *testing.T) {
	ch := newFakeChannel("", map[string]answer{
		gscanIovar: {err: fwErr(FirmwareBadLen)},
	})
	n := newTestNegotiator(ch)

	n.probeDataSet(FeatureGSCAN, gscanIovar, gscanConfig{}.marshal())
	if !n.flags.Has(FeatureGSCAN) {
		t.Error("GSCAN should be set when the firmware rejects the payload")
	}
	if n.origins[FeatureGSCAN] != OriginProbe {
		t.Errorf("origin = %v, want %v", n.origins[FeatureGSCAN], OriginProbe)
	}

	n = newTestNegotiator(newFakeChannel("", nil))
	n.probeDataSet(FeatureGSCAN, gscanIovar, gscanConfig{}.marshal())
	if n.flags.Has(FeatureGSCAN) {
		t.Error("GSCAN should stay clear when unsupported")
	}
}

func TestProbeEnabGet_RequiresSuccess(t *testing.T) {
	tests := []struct {
		name   string
		answer answer
		want   bool
	}{
		{"success", answer{}, true},
		{"bad argument", answer{err: fwErr(FirmwareBadArg)}, false},
		{"unsupported", answer{err: fwErr(FirmwareUnsupported)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ch := newFakeChannel("", map[string]answer{"twt": tt.answer})
			n := newTestNegotiator(ch)

			n.probeEnabGet(FeatureTWT, "twt", twtCmdEnab)
			if got := n.flags.Has(FeatureTWT); got != tt.want {
				t.Errorf("TWT set = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProbe_FirmwareErrorsScoped(t *testing.T) {
	ch := newFakeChannel("", nil)
	n := newTestNegotiator(ch)

	n.probeIntGet(FeaturePNO, "pfn")
	n.probeDataSet(FeatureGSCAN, gscanIovar, nil)
	n.probeEnabGet(FeatureTWT, "twt", twtCmdEnab)

	for _, cl := range ch.calls {
		if !cl.fwerrs {
			t.Errorf("%s %s issued without firmware errors enabled", cl.op, cl.name)
		}
	}
	if ch.fwerrs {
		t.Error("firmware errors left enabled after probes")
	}
	for _, r := range n.probes {
		if !r.Unsupported() {
			t.Errorf("%s: unsupported not recognised (error %v)", r.Name, r.Error)
		}
	}
}

type panicChannel struct {
	fakeChannel
}

func (c *panicChannel) IntGet(string) (uint32, error) {
	panic("transport gone")
}

func TestProbe_RestoresModeOnPanic(t *testing.T) {
	ch := &panicChannel{}
	n := newTestNegotiator(ch)

	func() {
		defer func() {
			if recover() == nil {
				t.Fatal("expected panic")
			}
		}()
		n.probeIntGet(FeaturePNO, "pfn")
	}()

	if ch.fwerrs {
		t.Error("firmware error mode not restored after panic")
	}
}

func TestNewResult(t *testing.T) {
	r := newResult(FeatureTDLS, MethodIntGet, "tdls_enable", fwErr(FirmwareUnsupported), false)
	if r.Error != nil {
		t.Errorf("unsupported result carries error %v", r.Error)
	}
	if !r.Unsupported() {
		t.Error("Unsupported() = false")
	}

	r = newResult(FeatureTDLS, MethodIntGet, "tdls_enable", errBadExchange, true)
	if !errors.Is(r.Error, errBadExchange) {
		t.Errorf("Error = %v, want %v", r.Error, errBadExchange)
	}
}
