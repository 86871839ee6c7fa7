package fwfeatures

import (
	"errors"
	"testing"
)

var errBadExchange = errors.New("bad exchange")

type call struct {
	op     string
	name   string
	fwerrs bool
}

// answer is what the fake firmware replies to one attribute.
type answer struct {
	value uint32
	err   error
}

// fakeChannel answers from tables. Attributes missing from the tables are
// unsupported. Like the real transport it folds firmware errors into a
// generic one while firmware error reporting is off.
type fakeChannel struct {
	caps    string
	capsErr error
	answers map[string]answer

	fwerrs bool
	calls  []call
}

func newFakeChannel(caps string, answers map[string]answer) *fakeChannel {
	if answers == nil {
		answers = map[string]answer{}
	}
	return &fakeChannel{caps: caps, answers: answers}
}

func (c *fakeChannel) reply(op, name string) answer {
	c.calls = append(c.calls, call{op: op, name: name, fwerrs: c.fwerrs})
	a, ok := c.answers[name]
	if !ok {
		a = answer{err: &FirmwareError{Code: FirmwareUnsupported}}
	}
	var fe *FirmwareError
	if !c.fwerrs && errors.As(a.err, &fe) {
		a.err = errBadExchange
	}
	return a
}

func (c *fakeChannel) IntGet(name string) (uint32, error) {
	a := c.reply("int-get", name)
	return a.value, a.err
}

func (c *fakeChannel) DataGet(name string, buf []byte) error {
	if name == capabilitiesIovar {
		c.calls = append(c.calls, call{op: "data-get", name: name, fwerrs: c.fwerrs})
		if c.capsErr != nil {
			return c.capsErr
		}
		clear(buf)
		copy(buf, c.caps)
		return nil
	}
	return c.reply("data-get", name).err
}

func (c *fakeChannel) DataSet(name string, _ []byte) error {
	return c.reply("data-set", name).err
}

func (c *fakeChannel) XTLVDataGet(name string, _ uint16, _ []byte) error {
	return c.reply("xtlv-get", name).err
}

func (c *fakeChannel) FirmwareErrors() bool {
	return c.fwerrs
}

func (c *fakeChannel) SetFirmwareErrors(enabled bool) {
	c.fwerrs = enabled
}

func (c *fakeChannel) called(name string) bool {
	for _, cl := range c.calls {
		if cl.name == name {
			return true
		}
	}
	return false
}

func fwErr(code int) error {
	return &FirmwareError{Code: code}
}

func TestFirmwareError_Is(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{fwErr(FirmwareUnsupported), true},
		{fwErr(FirmwareBadArg), false},
		{errBadExchange, false},
		{nil, false},
	}
	for _, tt := range tests {
		if got := errors.Is(tt.err, ErrUnsupported); got != tt.want {
			t.Errorf("errors.Is(%v, ErrUnsupported) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestFirmwareError_Error(t *testing.T) {
	if got, want := fwErr(FirmwareUnsupported).Error(), "firmware error -23 (unsupported)"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if got, want := fwErr(99).Error(), "firmware error -99"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestFirmwareErrorCode(t *testing.T) {
	code, ok := FirmwareErrorCode("badarg")
	if !ok || code != FirmwareBadArg {
		t.Errorf("FirmwareErrorCode(badarg) = %d, %v", code, ok)
	}
	if _, ok := FirmwareErrorCode("nope"); ok {
		t.Error("FirmwareErrorCode(nope) should not be found")
	}
}

func TestSurfaceFirmwareErrors(t *testing.T) {
	for _, initial := range []bool{false, true} {
		ch := newFakeChannel("", nil)
		ch.fwerrs = initial

		restore := surfaceFirmwareErrors(ch)
		if !ch.fwerrs {
			t.Errorf("initial=%v: firmware errors not enabled inside the guard", initial)
		}
		restore()
		if ch.fwerrs != initial {
			t.Errorf("initial=%v: mode after restore = %v", initial, ch.fwerrs)
		}
	}
}
