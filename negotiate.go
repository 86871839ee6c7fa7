package fwfeatures

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	// ErrNoChannel is returned when negotiation is started without a command channel.
	ErrNoChannel = errors.New("no command channel")
	// ErrAlreadyNegotiated is returned by [Device.Attach] on an attached device.
	ErrAlreadyNegotiated = errors.New("features already negotiated")
	// ErrNotNegotiated is returned when features are used before negotiation.
	ErrNotNegotiated = errors.New("features not negotiated")
)

const (
	gscanIovar      = "pfn_gscan_cfg"
	wowlCapIovar    = "wowl_cap"
	pfnMACAddrIovar = "pfn_macaddr"
)

// negotiateConfig holds the configuration for a negotiation run.
type negotiateConfig struct {
	log logrus.FieldLogger
}

// Option configures [Negotiate].
type Option func(*negotiateConfig)

// WithLogger sets the logger negotiation steps are traced to.
// Without it nothing is logged.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *negotiateConfig) {
		if l != nil {
			c.log = l
		}
	}
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// negotiator is the single writer of the feature bitmaps. It lives for one
// [Negotiate] call and is frozen into a [Features] value at the end.
type negotiator struct {
	ch       Channel
	bus      Bus
	settings Settings
	log      logrus.FieldLogger

	flags   FeatureFlags
	quirks  QuirkFlags
	origins [featureCount]Origin
	probes  []ProbeResult
	caps    Capabilities
}

// Negotiate discovers the features of the firmware behind ch.
//
// The steps run once, in a fixed order, over a channel no one else uses
// meanwhile. Failed probes leave their feature unset and are never
// retried. The only error returned is [ErrNoChannel]; everything the
// firmware does wrong ends up in the result's probe log instead.
func Negotiate(ch Channel, bus Bus, settings Settings, opts ...Option) (*Features, error) {
	if ch == nil {
		return nil, ErrNoChannel
	}

	cfg := &negotiateConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.log == nil {
		cfg.log = discardLogger()
	}

	n := &negotiator{
		ch:       ch,
		bus:      bus,
		settings: settings,
		log:      cfg.log.WithField("chip", bus.Chip.String()),
	}
	n.run()
	return n.freeze(), nil
}

func (n *negotiator) run() {
	n.firmwareCapabilities()

	if gscanUnsupported(n.bus.Chip) {
		n.origins[FeatureGSCAN] = OriginSkipped
	} else {
		n.probeDataSet(FeatureGSCAN, gscanIovar, gscanConfig{}.marshal())
	}
	n.probeIntGet(FeaturePNO, "pfn")
	if n.bus.WOWLSupported {
		n.probeIntGet(FeatureWOWL, "wowl")
	} else {
		n.origins[FeatureWOWL] = OriginGated
	}
	n.wowlCapabilities()
	n.mbssOverride()

	n.probeIntGet(FeatureRSDB, "rsdb_mode")
	n.probeIntGet(FeatureTDLS, "tdls_enable")
	n.probeIntGet(FeatureMFP, "mfp")
	n.probeIntGet(FeatureDumpOBSS, "dump_obss")
	n.probeIntGet(FeatureSurveyDump, "cca_survey_dump")
	n.scanRandomMAC()
	n.probeIntGet(FeatureFWSUP, "sup_wpa")
	n.probeEnabGet(FeatureTWT, "twt", twtCmdEnab)

	n.applyDisableMask()
	n.quirks = chipQuirks(n.bus.Chip)
}

func (n *negotiator) enable(f Feature, o Origin) {
	n.flags.Set(f)
	n.origins[f] = o
}

func (n *negotiator) firmwareCapabilities() {
	n.caps = readCapabilities(n.ch)
	if err := n.caps.Err(); err != nil {
		n.log.WithError(err).Error("firmware capabilities unavailable")
		return
	}

	n.log.Debugf("[ %s]", n.caps)
	for _, f := range matchCapabilities(n.caps.raw, &n.flags) {
		n.origins[f] = OriginCapability
		n.log.WithField("feature", f.String()).Debugf("enabling feature: %s", f)
	}
}

// wowlCapabilities derives the wake-on-WLAN sub-features. It only runs
// once WOWL itself is known to work.
func (n *negotiator) wowlCapabilities() {
	dependents := []Feature{FeatureWOWLARPND, FeatureWOWLND, FeatureWOWLGTK}
	if !n.flags.Has(FeatureWOWL) {
		for _, f := range dependents {
			n.origins[f] = OriginGated
		}
		return
	}

	wowlCap, err := n.ch.IntGet(wowlCapIovar)
	n.note(newResult(FeatureWOWLARPND, MethodIntGet, wowlCapIovar, err, err == nil))
	if err != nil {
		return
	}

	n.enable(FeatureWOWLARPND, OriginDependent)
	if wowlCap&wowlPFNFound != 0 {
		n.enable(FeatureWOWLND, OriginDependent)
	}
	if wowlCap&wowlGTKFailure != 0 {
		n.enable(FeatureWOWLGTK, OriginDependent)
	}
}

// mbssOverride clears MBSS on chips that claim it without supporting it.
func (n *negotiator) mbssOverride() {
	if !mbssBroken(n.bus.Chip) {
		return
	}
	if n.flags.Has(FeatureMBSS) {
		n.log.Debugf("disabling feature: %s", FeatureMBSS)
	}
	n.flags.Clear(FeatureMBSS)
	n.origins[FeatureMBSS] = OriginChipOverride
}

// scanRandomMAC queries the PNO MAC address configuration. Only a clean
// answer counts.
func (n *negotiator) scanRandomMAC() {
	buf := pnoMACAddr{Version: pfnMACAddrCfgVersion}.marshal()
	err := n.ch.DataGet(pfnMACAddrIovar, buf)
	n.record(newResult(FeatureScanRandomMAC, MethodDataGet, pfnMACAddrIovar, err, err == nil))
}

// applyDisableMask clears whatever the settings disable, however it was set.
func (n *negotiator) applyDisableMask() {
	mask := n.settings.FeatureDisable
	for i := range mask {
		if mask[i] != 0 {
			n.log.Debugf("Features: 0x%02x, disable: 0x%02x", n.flags[i], mask[i])
		}
	}
	for _, f := range mask.Enabled() {
		if n.flags.Has(f) {
			n.origins[f] = OriginDisabled
		}
	}
	n.flags.AndNot(mask)
}

func (n *negotiator) freeze() *Features {
	return &Features{
		flags:    n.flags,
		quirks:   n.quirks,
		origins:  n.origins,
		probes:   n.probes,
		caps:     n.caps,
		bus:      n.bus,
		settings: n.settings,
	}
}

// Device tracks the negotiation state of one attached adapter.
type Device struct {
	ch       Channel
	bus      Bus
	settings Settings
	opts     []Option

	mu       sync.Mutex
	features *Features
}

// NewDevice returns an unnegotiated device.
func NewDevice(ch Channel, bus Bus, settings Settings, opts ...Option) *Device {
	return &Device{ch: ch, bus: bus, settings: settings, opts: opts}
}

// Attach negotiates the device features. It succeeds once per attach;
// later calls return [ErrAlreadyNegotiated] until [Device.Detach].
func (d *Device) Attach() (*Features, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.features != nil {
		return nil, ErrAlreadyNegotiated
	}
	f, err := Negotiate(d.ch, d.bus, d.settings, d.opts...)
	if err != nil {
		return nil, fmt.Errorf("attach %s: %w", d.bus.Chip, err)
	}
	d.features = f
	return f, nil
}

// Features returns the negotiated features, or nil before [Device.Attach].
func (d *Device) Features() *Features {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.features
}

// Negotiated reports whether the device has been attached.
func (d *Device) Negotiated() bool {
	return d.Features() != nil
}

// Detach discards the negotiated features.
func (d *Device) Detach() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.features = nil
}
