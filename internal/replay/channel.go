package replay

import (
	"errors"
	"io"
	"sync"

	"github.com/leodido/fwfeatures"
	"github.com/sirupsen/logrus"
)

// capabilitiesIovar is the attribute the capability string is read from.
const capabilitiesIovar = "cap"

// Exchange is one command the channel answered.
type Exchange struct {
	Op             string
	Name           string
	Subcmd         uint16
	FirmwareErrors bool
	Err            error
}

// Channel replays a [Scenario]. It is safe for concurrent use.
type Channel struct {
	scenario *Scenario
	log      logrus.FieldLogger

	mu        sync.Mutex
	fwerrs    bool
	exchanges []Exchange
}

var _ fwfeatures.Channel = (*Channel)(nil)

// NewChannel returns a channel answering from s. Exchanges are logged at
// trace level on log, which may be nil.
func NewChannel(s *Scenario, log logrus.FieldLogger) *Channel {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Channel{scenario: s, log: log.WithField("scenario", s.Name)}
}

// Exchanges returns the commands answered so far, oldest first.
func (c *Channel) Exchanges() []Exchange {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Exchange, len(c.exchanges))
	copy(out, c.exchanges)
	return out
}

func (c *Channel) IntGet(name string) (uint32, error) {
	r := c.answer("int-get", name, 0, false)
	if r.err != nil {
		return 0, r.err
	}
	return r.value, nil
}

func (c *Channel) DataGet(name string, buf []byte) error {
	if name == capabilitiesIovar {
		return c.capabilities(buf)
	}
	r := c.answer("data-get", name, 0, false)
	if r.err == nil {
		copy(buf, r.data)
	}
	return r.err
}

func (c *Channel) DataSet(name string, _ []byte) error {
	return c.answer("data-set", name, 0, false).err
}

func (c *Channel) XTLVDataGet(name string, subcmd uint16, buf []byte) error {
	r := c.answer("xtlv-get", name, subcmd, true)
	if r.err == nil {
		copy(buf, r.data)
	}
	return r.err
}

func (c *Channel) FirmwareErrors() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fwerrs
}

func (c *Channel) SetFirmwareErrors(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fwerrs = enabled
}

func (c *Channel) capabilities(buf []byte) error {
	r := reply{err: c.scenario.capsErr}
	if r.err == nil {
		clear(buf)
		copy(buf, c.scenario.Capabilities)
	}
	return c.record("data-get", capabilitiesIovar, 0, r).err
}

func (c *Channel) answer(op, name string, subcmd uint16, xtlv bool) reply {
	return c.record(op, name, subcmd, c.scenario.lookup(name, subcmd, xtlv))
}

// record folds firmware errors while reporting is off and logs the
// exchange.
func (c *Channel) record(op, name string, subcmd uint16, r reply) reply {
	c.mu.Lock()
	defer c.mu.Unlock()

	var fe *fwfeatures.FirmwareError
	if !c.fwerrs && errors.As(r.err, &fe) {
		r.err = ErrBadExchange
	}
	c.exchanges = append(c.exchanges, Exchange{
		Op:             op,
		Name:           name,
		Subcmd:         subcmd,
		FirmwareErrors: c.fwerrs,
		Err:            r.err,
	})

	entry := c.log.WithFields(logrus.Fields{"op": op, "iovar": name})
	if r.err != nil {
		entry.WithError(r.err).Trace("firmware exchange failed")
	} else {
		entry.Trace("firmware exchange")
	}
	return r
}
