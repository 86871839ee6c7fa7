package fwfeatures

import (
	"errors"

	"github.com/sirupsen/logrus"
)

// twtCmdEnab is the "twt" sub-command reporting whether TWT is enabled.
const twtCmdEnab uint16 = 0

// probeIntGet detects f by querying an integer attribute. Any answer other
// than unsupported, including a firmware error, counts as support: the
// firmware knows the attribute even if it dislikes the request.
func (n *negotiator) probeIntGet(f Feature, name string) {
	defer surfaceFirmwareErrors(n.ch)()

	_, err := n.ch.IntGet(name)
	n.record(newResult(f, MethodIntGet, name, err, !errors.Is(err, ErrUnsupported)))
}

// probeDataSet detects f by writing a structured attribute. The success
// criterion is the same as for probeIntGet.
func (n *negotiator) probeDataSet(f Feature, name string, payload []byte) {
	defer surfaceFirmwareErrors(n.ch)()

	err := n.ch.DataSet(name, payload)
	n.record(newResult(f, MethodDataSet, name, err, !errors.Is(err, ErrUnsupported)))
}

// probeEnabGet detects f through a sub-command query, which must succeed.
func (n *negotiator) probeEnabGet(f Feature, name string, subcmd uint16) {
	defer surfaceFirmwareErrors(n.ch)()

	var val [1]byte
	err := n.ch.XTLVDataGet(name, subcmd, val[:])
	n.record(newResult(f, MethodEnabGet, name, err, err == nil))
}

func newResult(f Feature, m ProbeMethod, name string, err error, supported bool) ProbeResult {
	r := ProbeResult{Feature: f, Method: m, Name: name, Supported: supported}
	if errors.Is(err, ErrUnsupported) {
		r.unsupported = true
	} else {
		r.Error = err
	}
	return r
}

// record notes r and enables its feature when it counted as support.
func (n *negotiator) record(r ProbeResult) {
	n.note(r)
	if r.Supported {
		n.enable(r.Feature, OriginProbe)
	}
}

// note appends r to the probe log and traces it. Unsupported answers are
// expected and go to trace level; other failures are kept apart at debug
// level with the error attached.
func (n *negotiator) note(r ProbeResult) {
	n.probes = append(n.probes, r)

	log := n.log.WithFields(logrus.Fields{
		"feature": r.Feature.String(),
		"iovar":   r.Name,
		"method":  r.Method.String(),
	})
	switch {
	case r.Supported && r.Error != nil:
		log.WithError(r.Error).Debugf("enabling feature: %s", r.Feature)
	case r.Supported:
		log.Debugf("enabling feature: %s", r.Feature)
	case r.unsupported:
		log.Tracef("%s feature check failed: unsupported", r.Feature)
	default:
		log.WithError(r.Error).Debugf("%s feature check failed", r.Feature)
	}
}
