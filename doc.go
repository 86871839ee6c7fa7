// Package fwfeatures provides firmware feature negotiation for FullMAC
// wireless adapters.
//
// What such an adapter can do is decided by its firmware, not by the host.
// This package asks the firmware once, at attach time, and freezes the
// answer into a feature bitmap and a chip quirk bitmap that the rest of the
// driver treats as ground truth until detach.
//
// # Sources
//
// Three sources are reconciled, in this order:
//   - the capability string ("cap"), matched by substring against the
//     tokens of the feature registry
//   - individual probes over the command [Channel], where any answer except
//     [ErrUnsupported] counts for int-get and data-set probes, and only a
//     clean answer counts for enab-get and data-get probes
//   - host overrides: chip specific probe skips and forced disables, then
//     the user's [Settings.FeatureDisable] mask, which always wins
//
// # Negotiate
//
//	f, err := fwfeatures.Negotiate(ch, fwfeatures.Bus{Chip: fwfeatures.Chip4345}, settings,
//	    fwfeatures.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	if f.Enabled(fwfeatures.FeatureSAE) {
//	    // offer WPA3
//	}
//
// [Device] wraps the same call with the attach/detach state.
//
// # Check
//
// Validate that required features were negotiated:
//
//	if err := f.Check(fwfeatures.GroupWPA3); err != nil {
//	    var fe *fwfeatures.FeatureError
//	    if errors.As(err, &fe) {
//	        log.Fatalf("firmware not ready: %s: %s", fe.Feature, fe.Reason)
//	    }
//	    log.Fatal(err)
//	}
//
// # Diagnostics
//
// [Features.WriteFeatures] and [Features.WriteCapabilities] produce the
// "features" and "fwcap" dumps; [Features.Probes] lists every round trip
// with its outcome, and [Features.Origin] tells where each bit came from.
package fwfeatures
