package fwfeatures

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// moduleName is the driver module whose parameters ParseModuleParams reads.
const moduleName = "brcmfmac"

// ErrInvalidSettings is wrapped by settings parsing errors.
var ErrInvalidSettings = errors.New("invalid settings")

// Settings is the host side device configuration. It is fixed at attach
// time and never consulted for firmware capabilities except through
// FeatureDisable.
type Settings struct {
	// FeatureDisable lists features to clear after detection.
	FeatureDisable FeatureFlags
	// Disable6GHz turns off the 6 GHz band.
	Disable6GHz bool
	// OffloadProfile enables the firmware offload profile.
	OffloadProfile bool
	// SDIORxfInKthread runs the SDIO receive path in a dedicated worker.
	SDIORxfInKthread bool
}

// settingsFile is the YAML layout of a settings file.
type settingsFile struct {
	FeatureDisable     []string `yaml:"feature_disable,omitempty"`
	FeatureDisableMask *uint64  `yaml:"feature_disable_mask,omitempty"`
	Disable6GHz        bool     `yaml:"disable_6ghz,omitempty"`
	OffloadProfile     bool     `yaml:"offload_prof,omitempty"`
	SDIORxfInKthread   bool     `yaml:"sdio_rxf_in_kthread,omitempty"`
}

// LoadSettings reads settings from a YAML file.
func LoadSettings(path string) (Settings, error) {
	f, err := os.Open(path)
	if err != nil {
		return Settings{}, err
	}
	defer f.Close()

	s, err := ParseSettings(f)
	if err != nil {
		return Settings{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// ParseSettings decodes YAML settings. Features may be disabled by name
// (feature_disable), by mask (feature_disable_mask), or both.
func ParseSettings(r io.Reader) (Settings, error) {
	var sf settingsFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&sf); err != nil && !errors.Is(err, io.EOF) {
		return Settings{}, fmt.Errorf("%w: %w", ErrInvalidSettings, err)
	}

	s := Settings{
		Disable6GHz:      sf.Disable6GHz,
		OffloadProfile:   sf.OffloadProfile,
		SDIORxfInKthread: sf.SDIORxfInKthread,
	}
	if sf.FeatureDisableMask != nil {
		s.FeatureDisable = FeatureFlagsFromMask(*sf.FeatureDisableMask)
	}
	for _, name := range sf.FeatureDisable {
		f, err := ParseFeature(name)
		if err != nil {
			return Settings{}, fmt.Errorf("%w: feature_disable: %w", ErrInvalidSettings, err)
		}
		s.FeatureDisable.Set(f)
	}
	return s, nil
}

// ParseModuleParams parses driver module parameters in modprobe form, for
// example the contents of a modprobe.d file:
//
//	options brcmfmac feature_disable=0x82000 disable_6ghz=1
//
// Comments, unknown parameters and "options" lines for other modules are
// skipped.
func ParseModuleParams(r io.Reader) (Settings, error) {
	var s Settings
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip comments and empty lines.
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if fields[0] == "options" {
			if len(fields) < 2 || fields[1] != moduleName {
				continue
			}
			fields = fields[2:]
		}

		for _, field := range fields {
			key, value, ok := strings.Cut(field, "=")
			if !ok {
				continue
			}
			if err := s.setParam(key, value); err != nil {
				return Settings{}, fmt.Errorf("%w: %s: %w", ErrInvalidSettings, key, err)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func (s *Settings) setParam(key, value string) error {
	switch key {
	case "feature_disable":
		mask, err := strconv.ParseUint(value, 0, 64)
		if err != nil {
			return err
		}
		s.FeatureDisable = FeatureFlagsFromMask(mask)
	case "disable_6ghz":
		return parseParamBool(value, &s.Disable6GHz)
	case "offload_prof":
		return parseParamBool(value, &s.OffloadProfile)
	case "sdio_rxf_thread":
		return parseParamBool(value, &s.SDIORxfInKthread)
	}
	// Other parameters belong to other parts of the driver.
	return nil
}

// parseParamBool accepts the spellings the kernel accepts for bool params.
func parseParamBool(value string, dst *bool) error {
	switch strings.ToLower(value) {
	case "1", "y", "yes", "on", "true":
		*dst = true
	case "0", "n", "no", "off", "false":
		*dst = false
	default:
		return fmt.Errorf("not a boolean: %q", value)
	}
	return nil
}
