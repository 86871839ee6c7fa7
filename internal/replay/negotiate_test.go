package replay

import (
	"testing"

	"github.com/leodido/fwfeatures"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func negotiateScenario(t *testing.T, path string, settings fwfeatures.Settings) (*fwfeatures.Features, *Channel) {
	t.Helper()
	s, err := Load(path)
	require.NoError(t, err)

	ch := NewChannel(s, nil)
	f, err := fwfeatures.Negotiate(ch, s.Bus(), settings)
	require.NoError(t, err)
	return f, ch
}

func TestNegotiate_BCM43455(t *testing.T) {
	f, ch := negotiateScenario(t, "testdata/bcm43455.yaml", fwfeatures.Settings{})

	want := []fwfeatures.Feature{
		fwfeatures.FeatureMCHAN,
		fwfeatures.FeaturePNO,
		fwfeatures.FeatureWOWL,
		fwfeatures.FeatureP2P,
		fwfeatures.FeatureTDLS,
		fwfeatures.FeatureWOWLND,
		fwfeatures.FeatureWOWLGTK,
		fwfeatures.FeatureWOWLARPND,
		fwfeatures.FeatureMFP,
		fwfeatures.FeatureFWSUP,
		fwfeatures.FeatureMonitorFlag,
		fwfeatures.FeatureMonitorFmtRadiotap,
		fwfeatures.FeatureDot11H,
		fwfeatures.FeatureSAE,
		fwfeatures.FeatureDumpOBSS,
		fwfeatures.FeaturePropTxStatus,
	}
	assert.Equal(t, want, f.Flags().Enabled())
	assert.Zero(t, f.Quirks())

	assert.Equal(t, fwfeatures.OriginSkipped, f.Origin(fwfeatures.FeatureGSCAN))
	assert.Equal(t, fwfeatures.OriginDependent, f.Origin(fwfeatures.FeatureWOWLGTK))

	// badarg still means the firmware knows the attribute.
	r, ok := f.Result(fwfeatures.FeatureFWSUP)
	require.True(t, ok)
	assert.True(t, r.Supported)
	assert.Error(t, r.Error)

	for _, x := range ch.Exchanges() {
		assert.NotEqual(t, "pfn_gscan_cfg", x.Name, "gscan must not be probed on this chip")
	}
	assert.False(t, ch.FirmwareErrors(), "firmware error mode is restored")

	limits, ok := f.SchedScan()
	require.True(t, ok)
	assert.Equal(t, 1, limits.MaxReqs)
	assert.False(t, limits.RandomMAC)
}

func TestNegotiate_DisableMask(t *testing.T) {
	f, _ := negotiateScenario(t, "testdata/bcm43455.yaml", fwfeatures.Settings{
		FeatureDisable: fwfeatures.NewFeatureFlags(fwfeatures.FeatureP2P, fwfeatures.FeatureTWT),
	})

	assert.False(t, f.Enabled(fwfeatures.FeatureP2P))
	assert.Equal(t, fwfeatures.OriginDisabled, f.Origin(fwfeatures.FeatureP2P))
	assert.NotEqual(t, fwfeatures.OriginDisabled, f.Origin(fwfeatures.FeatureTWT))
	assert.ErrorContains(t, f.Check(fwfeatures.FeatureP2P), "disabled by feature_disable")
	assert.NoError(t, f.Check(fwfeatures.GroupWOWL, fwfeatures.GroupWPA3))
}

func TestNegotiate_CapabilitiesUnavailable(t *testing.T) {
	s, err := Load("testdata/bcm4329.yaml")
	require.NoError(t, err)

	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.TraceLevel)
	f, err := fwfeatures.Negotiate(NewChannel(s, log), s.Bus(), fwfeatures.Settings{}, fwfeatures.WithLogger(log))
	require.NoError(t, err)

	assert.ErrorIs(t, f.Capabilities().Err(), ErrTransport)
	assert.Equal(t, []fwfeatures.Feature{fwfeatures.FeaturePNO}, f.Flags().Enabled())
	assert.True(t, f.QuirkEnabled(fwfeatures.QuirkNeedMPC))

	var sawError bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.ErrorLevel {
			sawError = true
		}
	}
	assert.True(t, sawError, "a failed capability read is logged as an error")
}
