// Package replay serves recorded firmware answers through a
// [fwfeatures.Channel], so negotiation can run without hardware.
package replay

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/leodido/fwfeatures"
	"gopkg.in/yaml.v3"
)

// ErrInvalidScenario is returned for scenario files that cannot be replayed.
var ErrInvalidScenario = errors.New("invalid scenario")

// ErrBadExchange is what the channel returns in place of a firmware error
// while firmware error reporting is off.
var ErrBadExchange = errors.New("bad exchange")

// ErrTransport is returned for replies recorded as bus level failures.
var ErrTransport = errors.New("transport failure")

// transportError is the reply error name for [ErrTransport].
const transportError = "transport"

// Scenario is a recorded firmware personality.
type Scenario struct {
	Name              string           `yaml:"name"`
	Chip              uint32           `yaml:"chip"`
	ChipRev           uint32           `yaml:"chiprev"`
	WOWLSupported     bool             `yaml:"wowl_supported"`
	Capabilities      string           `yaml:"capabilities"`
	CapabilitiesError string           `yaml:"capabilities_error"`
	Iovars            map[string]Reply `yaml:"iovars"`

	capsErr error
	replies map[string]reply
}

// Reply is the recorded answer to one attribute. Keys of the form
// "name/subcmd" address a single sub-command.
type Reply struct {
	Value uint32 `yaml:"value"`
	// Data is the hex encoded response payload.
	Data string `yaml:"data"`
	// Error is a firmware error name, a firmware error code, or
	// "transport" for a failure below the firmware.
	Error string `yaml:"error"`
}

type reply struct {
	value uint32
	data  []byte
	err   error
}

// Bus describes the bus the scenario was recorded on.
func (s *Scenario) Bus() fwfeatures.Bus {
	return fwfeatures.Bus{
		Chip:          fwfeatures.ChipID(s.Chip),
		ChipRev:       s.ChipRev,
		WOWLSupported: s.WOWLSupported,
	}
}

// Load reads a scenario from a YAML file.
func Load(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	s, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = path
	}
	return s, nil
}

// Parse decodes and validates a scenario.
func Parse(r io.Reader) (*Scenario, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	s := &Scenario{}
	if err := dec.Decode(s); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidScenario, err)
	}
	if err := s.compile(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scenario) compile() error {
	if s.CapabilitiesError != "" {
		err, parseErr := parseReplyError(s.CapabilitiesError)
		if parseErr != nil {
			return fmt.Errorf("%w: capabilities_error: %w", ErrInvalidScenario, parseErr)
		}
		s.capsErr = err
	}

	s.replies = make(map[string]reply, len(s.Iovars))
	for key, r := range s.Iovars {
		name, _, hasSub := strings.Cut(key, "/")
		if name == "" {
			return fmt.Errorf("%w: empty attribute name in %q", ErrInvalidScenario, key)
		}
		if hasSub {
			sub, err := parseSubcmd(key)
			if err != nil {
				return fmt.Errorf("%w: %s: %w", ErrInvalidScenario, key, err)
			}
			key = subcmdKey(name, sub)
		}

		compiled := reply{value: r.Value}
		if r.Data != "" {
			data, err := hex.DecodeString(strings.ReplaceAll(r.Data, " ", ""))
			if err != nil {
				return fmt.Errorf("%w: %s: data: %w", ErrInvalidScenario, key, err)
			}
			compiled.data = data
		}
		if r.Error != "" {
			err, parseErr := parseReplyError(r.Error)
			if parseErr != nil {
				return fmt.Errorf("%w: %s: %w", ErrInvalidScenario, key, parseErr)
			}
			compiled.err = err
		}
		s.replies[key] = compiled
	}
	return nil
}

func parseSubcmd(key string) (uint16, error) {
	_, sub, _ := strings.Cut(key, "/")
	v, err := strconv.ParseUint(sub, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("bad sub-command %q", sub)
	}
	return uint16(v), nil
}

func subcmdKey(name string, subcmd uint16) string {
	return name + "/" + strconv.FormatUint(uint64(subcmd), 10)
}

// parseReplyError resolves an error name or code into the error the channel
// replies with.
func parseReplyError(s string) (replied error, err error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == transportError {
		return ErrTransport, nil
	}
	if code, ok := fwfeatures.FirmwareErrorCode(s); ok {
		return &fwfeatures.FirmwareError{Code: code}, nil
	}
	code, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("unknown error %q", s)
	}
	if code < 0 {
		code = -code
	}
	if code == 0 {
		return nil, fmt.Errorf("error code must not be zero")
	}
	return &fwfeatures.FirmwareError{Code: code}, nil
}

// lookup finds the reply for an attribute, preferring an exact sub-command
// match. Attributes the scenario does not record are unsupported.
func (s *Scenario) lookup(name string, subcmd uint16, xtlv bool) reply {
	if xtlv {
		if r, ok := s.replies[subcmdKey(name, subcmd)]; ok {
			return r
		}
	}
	if r, ok := s.replies[name]; ok {
		return r
	}
	return reply{err: &fwfeatures.FirmwareError{Code: fwfeatures.FirmwareUnsupported}}
}
