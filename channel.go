package fwfeatures

import (
	"errors"
	"fmt"
)

// ErrUnsupported is matched by errors a [Channel] returns when the firmware
// does not implement the requested command.
var ErrUnsupported = errors.New("unsupported by firmware")

// Channel is the firmware command channel used during negotiation.
//
// Every method is a blocking round trip. Implementations must report
// "command not implemented" with an error matching [ErrUnsupported] (for
// example a [*FirmwareError] with code [FirmwareUnsupported]) whenever
// firmware error reporting is enabled.
type Channel interface {
	// IntGet queries a named integer attribute.
	IntGet(name string) (uint32, error)
	// DataGet queries a named structured attribute. buf carries the
	// request payload and receives the response.
	DataGet(name string, buf []byte) error
	// DataSet writes a named structured attribute.
	DataSet(name string, data []byte) error
	// XTLVDataGet queries a sub-command of a named attribute.
	XTLVDataGet(name string, subcmd uint16, buf []byte) error

	// FirmwareErrors reports whether firmware level errors are passed to
	// the caller instead of being folded into a generic failure.
	FirmwareErrors() bool
	// SetFirmwareErrors switches firmware error reporting on or off.
	SetFirmwareErrors(enabled bool)
}

// Firmware error codes, as returned (negated) by the dongle.
const (
	FirmwareGeneric     = 1
	FirmwareBadArg      = 2
	FirmwareBadOption   = 3
	FirmwareNotUp       = 4
	FirmwareNotDown     = 5
	FirmwareNotAP       = 6
	FirmwareNotSTA      = 7
	FirmwareBadKeyIdx   = 8
	FirmwareRadioOff    = 9
	FirmwareBufTooShort = 14
	FirmwareBufTooLong  = 15
	FirmwareBusy        = 16
	FirmwareNotAssoc    = 17
	FirmwareNoResource  = 22
	FirmwareUnsupported = 23
	FirmwareBadLen      = 24
	FirmwareNotReady    = 25
	FirmwareEPerm       = 26
	FirmwareNoMem       = 27
	FirmwareRange       = 29
	FirmwareNotFound    = 30
	FirmwareVersion     = 37
	FirmwareNoDevice    = 40
	FirmwareIOErr       = 45
)

var firmwareErrorNames = map[int]string{
	FirmwareGeneric:     "error",
	FirmwareBadArg:      "badarg",
	FirmwareBadOption:   "badoption",
	FirmwareNotUp:       "notup",
	FirmwareNotDown:     "notdown",
	FirmwareNotAP:       "notap",
	FirmwareNotSTA:      "notsta",
	FirmwareBadKeyIdx:   "badkeyidx",
	FirmwareRadioOff:    "radiooff",
	FirmwareBufTooShort: "buftooshort",
	FirmwareBufTooLong:  "buftoolong",
	FirmwareBusy:        "busy",
	FirmwareNotAssoc:    "notassociated",
	FirmwareNoResource:  "noresource",
	FirmwareUnsupported: "unsupported",
	FirmwareBadLen:      "badlen",
	FirmwareNotReady:    "notready",
	FirmwareEPerm:       "eperm",
	FirmwareNoMem:       "nomem",
	FirmwareRange:       "range",
	FirmwareNotFound:    "notfound",
	FirmwareVersion:     "version",
	FirmwareNoDevice:    "nodevice",
	FirmwareIOErr:       "ioerr",
}

// FirmwareErrorCode looks up a firmware error code by its short name.
func FirmwareErrorCode(name string) (int, bool) {
	for code, n := range firmwareErrorNames {
		if n == name {
			return code, true
		}
	}
	return 0, false
}

// FirmwareError is an error reported by the firmware itself.
type FirmwareError struct {
	Code int
}

func (e *FirmwareError) Error() string {
	if name, ok := firmwareErrorNames[e.Code]; ok {
		return fmt.Sprintf("firmware error %d (%s)", -e.Code, name)
	}
	return fmt.Sprintf("firmware error %d", -e.Code)
}

// Is matches [ErrUnsupported] for [FirmwareUnsupported].
func (e *FirmwareError) Is(target error) bool {
	return target == ErrUnsupported && e.Code == FirmwareUnsupported
}

// surfaceFirmwareErrors turns on firmware error reporting and returns a
// func restoring the previous mode. Callers defer the returned func.
func surfaceFirmwareErrors(ch Channel) (restore func()) {
	prev := ch.FirmwareErrors()
	ch.SetFirmwareErrors(true)
	return func() {
		ch.SetFirmwareErrors(prev)
	}
}
