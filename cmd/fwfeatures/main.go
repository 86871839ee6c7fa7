package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/leodido/fwfeatures"
	"github.com/leodido/fwfeatures/internal/replay"
	"github.com/leodido/structcli"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Build metadata injected via ldflags.
// When built without ldflags, these remain at their zero values and the
// version command omits them.
var (
	version = ""
	commit  = ""
	date    = ""
)

type rootOptions struct {
	verbose bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	ro := &rootOptions{}

	root := &cobra.Command{
		Use:   "fwfeatures",
		Short: "Firmware feature negotiation for FullMAC WLAN dongles",
		Long: `fwfeatures negotiates the feature set of a FullMAC WLAN firmware.

It combines the firmware capability string, per-feature probes, chip
specific overrides and operator settings into the set of features the host
driver may use. Firmware answers are replayed from recorded scenario files.
Use it for firmware bring-up, regression tests, or CI/CD gating.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVarP(&ro.verbose, "verbose", "v", false, "Log every negotiation step to stderr")

	root.AddCommand(negotiateCmd(ro))
	root.AddCommand(dumpCmd(ro))
	root.AddCommand(checkCmd(ro))
	root.AddCommand(listCmd())
	root.AddCommand(versionCmd())
	return root
}

func newLogger(verbose bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	log.SetLevel(logrus.WarnLevel)
	if verbose {
		log.SetLevel(logrus.TraceLevel)
	}
	return log
}

// source is where negotiation takes its firmware answers and settings from.
type source struct {
	scenario     string
	settings     string
	moduleParams string
	disable      featureList
}

func (s source) loadSettings() (fwfeatures.Settings, error) {
	var out fwfeatures.Settings

	if s.moduleParams != "" {
		f, err := os.Open(s.moduleParams)
		if err != nil {
			return out, err
		}
		defer f.Close()
		mp, err := fwfeatures.ParseModuleParams(f)
		if err != nil {
			return out, fmt.Errorf("%s: %w", s.moduleParams, err)
		}
		out = mergeSettings(out, mp)
	}
	if s.settings != "" {
		st, err := fwfeatures.LoadSettings(s.settings)
		if err != nil {
			return out, err
		}
		out = mergeSettings(out, st)
	}
	for _, f := range s.disable {
		out.FeatureDisable.Set(f)
	}
	return out, nil
}

func mergeSettings(a, b fwfeatures.Settings) fwfeatures.Settings {
	for _, f := range b.FeatureDisable.Enabled() {
		a.FeatureDisable.Set(f)
	}
	a.Disable6GHz = a.Disable6GHz || b.Disable6GHz
	a.OffloadProfile = a.OffloadProfile || b.OffloadProfile
	a.SDIORxfInKthread = a.SDIORxfInKthread || b.SDIORxfInKthread
	return a
}

func (s source) negotiate(log *logrus.Logger) (*fwfeatures.Features, error) {
	settings, err := s.loadSettings()
	if err != nil {
		return nil, err
	}
	sc, err := replay.Load(s.scenario)
	if err != nil {
		return nil, err
	}

	dev := fwfeatures.NewDevice(replay.NewChannel(sc, log), sc.Bus(), settings, fwfeatures.WithLogger(log))
	return dev.Attach()
}

// NegotiateOptions defines flags for the negotiate subcommand.
type NegotiateOptions struct {
	Scenario     string      `flag:"scenario" flagshort:"s" flagdescr:"Recorded firmware scenario (YAML)" flagrequired:"true"`
	Settings     string      `flag:"settings" flagdescr:"Driver settings file (YAML)"`
	ModuleParams string      `flag:"module-params" flagdescr:"modprobe.d style file with brcmfmac options"`
	Disable      featureList `flag:"disable" flagshort:"d" flagdescr:"Features to disable regardless of detection" flagcustom:"true"`
	JSON         bool        `flag:"json" flagshort:"j" flagdescr:"Output in JSON format"`
}

func (o *NegotiateOptions) Attach(c *cobra.Command) error {
	return structcli.Define(c, o)
}

func (o *NegotiateOptions) DefineDisable(name, short, descr string, structField reflect.StructField, fieldValue reflect.Value) (pflag.Value, string) {
	return defineFeatureList(fieldValue, descr)
}

func (o *NegotiateOptions) DecodeDisable(input any) (any, error) {
	return decodeFeatureList(input)
}

func (o *NegotiateOptions) source() source {
	return source{scenario: o.Scenario, settings: o.Settings, moduleParams: o.ModuleParams, disable: o.Disable}
}

func negotiateCmd(ro *rootOptions) *cobra.Command {
	opts := &NegotiateOptions{}

	cmd := &cobra.Command{
		Use:   "negotiate",
		Short: "Negotiate firmware features and display results",
		PreRunE: func(c *cobra.Command, args []string) error {
			return structcli.Unmarshal(c, opts)
		},
		RunE: func(c *cobra.Command, args []string) error {
			f, err := opts.source().negotiate(newLogger(ro.verbose))
			if err != nil {
				return err
			}

			if opts.JSON {
				return printJSON(c.OutOrStdout(), newFeaturesView(f))
			}

			fmt.Fprint(c.OutOrStdout(), f)
			return nil
		},
	}

	if err := opts.Attach(cmd); err != nil {
		panic(err)
	}
	return cmd
}

// DumpOptions defines flags for the dump subcommand.
type DumpOptions struct {
	Scenario     string `flag:"scenario" flagshort:"s" flagdescr:"Recorded firmware scenario (YAML)" flagrequired:"true"`
	Settings     string `flag:"settings" flagdescr:"Driver settings file (YAML)"`
	ModuleParams string `flag:"module-params" flagdescr:"modprobe.d style file with brcmfmac options"`
}

func (o *DumpOptions) Attach(c *cobra.Command) error {
	return structcli.Define(c, o)
}

func dumpCmd(ro *rootOptions) *cobra.Command {
	opts := &DumpOptions{}

	cmd := &cobra.Command{
		Use:       fmt.Sprintf("dump {%s|%s}", fwfeatures.DebugFeatures, fwfeatures.DebugCapabilities),
		Short:     "Print a driver debug entry",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{fwfeatures.DebugFeatures, fwfeatures.DebugCapabilities},
		PreRunE: func(c *cobra.Command, args []string) error {
			return structcli.Unmarshal(c, opts)
		},
		RunE: func(c *cobra.Command, args []string) error {
			src := source{scenario: opts.Scenario, settings: opts.Settings, moduleParams: opts.ModuleParams}
			f, err := src.negotiate(newLogger(ro.verbose))
			if err != nil {
				return err
			}

			write, ok := f.DebugEntries()[args[0]]
			if !ok {
				return fmt.Errorf("unknown debug entry: %q (available: %s, %s)", args[0], fwfeatures.DebugFeatures, fwfeatures.DebugCapabilities)
			}
			return write(c.OutOrStdout())
		},
	}

	if err := opts.Attach(cmd); err != nil {
		panic(err)
	}
	return cmd
}

// CheckOptions defines flags for the check subcommand.
type CheckOptions struct {
	Scenario     string      `flag:"scenario" flagshort:"s" flagdescr:"Recorded firmware scenario (YAML)" flagrequired:"true"`
	Settings     string      `flag:"settings" flagdescr:"Driver settings file (YAML)"`
	ModuleParams string      `flag:"module-params" flagdescr:"modprobe.d style file with brcmfmac options"`
	Disable      featureList `flag:"disable" flagshort:"d" flagdescr:"Features to disable regardless of detection" flagcustom:"true"`
	Require      requireList `flag:"require" flagshort:"r" flagdescr:"Required features (see available features above)" flagrequired:"true" flagcustom:"true"`
	JSON         bool        `flag:"json" flagshort:"j" flagdescr:"Output in JSON format"`
}

func (o *CheckOptions) Attach(c *cobra.Command) error {
	return structcli.Define(c, o)
}

func (o *CheckOptions) DefineDisable(name, short, descr string, structField reflect.StructField, fieldValue reflect.Value) (pflag.Value, string) {
	return defineFeatureList(fieldValue, descr)
}

func (o *CheckOptions) DecodeDisable(input any) (any, error) {
	return decodeFeatureList(input)
}

func (o *CheckOptions) DefineRequire(name, short, descr string, structField reflect.StructField, fieldValue reflect.Value) (pflag.Value, string) {
	return defineRequireList(fieldValue, descr)
}

func (o *CheckOptions) DecodeRequire(input any) (any, error) {
	return decodeRequireList(input)
}

// CompleteRequire completes comma separated feature names.
func (o *CheckOptions) CompleteRequire(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return completeFeatureList(toComplete), cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
}

func (o *CheckOptions) source() source {
	return source{scenario: o.Scenario, settings: o.Settings, moduleParams: o.ModuleParams, disable: o.Disable}
}

func checkCmd(ro *rootOptions) *cobra.Command {
	opts := &CheckOptions{}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check specific firmware feature requirements",
		Long:  checkLongDescription(),
		PreRunE: func(c *cobra.Command, args []string) error {
			return structcli.Unmarshal(c, opts)
		},
		RunE: func(c *cobra.Command, args []string) error {
			if len(opts.Require) == 0 {
				return fmt.Errorf("no features specified")
			}

			f, err := opts.source().negotiate(newLogger(ro.verbose))
			if err != nil {
				return err
			}

			requirements := make([]fwfeatures.Requirement, 0, len(opts.Require))
			for _, feature := range opts.Require {
				requirements = append(requirements, feature)
			}

			err = f.Check(requirements...)
			if err != nil {
				var fe *fwfeatures.FeatureError
				if errors.As(err, &fe) {
					if opts.JSON {
						if err := printJSON(c.OutOrStdout(), map[string]any{
							"ok":      false,
							"feature": fe.Feature,
							"reason":  fe.Reason,
						}); err != nil {
							return err
						}
						os.Exit(1)
					}
					fmt.Fprintf(os.Stderr, "FAIL: %s: %s\n", fe.Feature, fe.Reason)
					os.Exit(1)
				}
				return err
			}

			if opts.JSON {
				return printJSON(c.OutOrStdout(), map[string]any{"ok": true})
			}
			fmt.Fprintln(c.OutOrStdout(), "OK: all requirements satisfied")
			return nil
		},
	}

	if err := opts.Attach(cmd); err != nil {
		panic(err)
	}
	return cmd
}

// ListOptions defines flags for the list subcommand.
type ListOptions struct {
	JSON bool `flag:"json" flagshort:"j" flagdescr:"Output in JSON format"`
}

func (o *ListOptions) Attach(c *cobra.Command) error {
	return structcli.Define(c, o)
}

func listCmd() *cobra.Command {
	opts := &ListOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List known features and how each one is detected",
		PreRunE: func(c *cobra.Command, args []string) error {
			return structcli.Unmarshal(c, opts)
		},
		RunE: func(c *cobra.Command, args []string) error {
			if opts.JSON {
				return printJSON(c.OutOrStdout(), featureSources())
			}
			for _, fs := range featureSources() {
				fmt.Fprintf(c.OutOrStdout(), "%-22s %s\n", fs.Name, fs.Source)
			}
			return nil
		},
	}

	if err := opts.Attach(cmd); err != nil {
		panic(err)
	}
	return cmd
}

type featureSource struct {
	Name   string `json:"name"`
	Source string `json:"source"`
}

func featureSources() []featureSource {
	out := make([]featureSource, 0, len(fwfeatures.FeatureValues()))
	for _, f := range fwfeatures.FeatureValues() {
		src := "probe"
		if token, ok := f.CapabilityToken(); ok {
			src = fmt.Sprintf("capability %q", token)
		}
		out = append(out, featureSource{Name: f.String(), Source: src})
	}
	return out
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show tool and kernel version",
		RunE: func(c *cobra.Command, args []string) error {
			w := c.OutOrStdout()
			if version != "" {
				fmt.Fprintf(w, "fwfeatures %s", version)
				if commit != "" {
					fmt.Fprintf(w, " (%s)", commit)
				}
				if date != "" {
					fmt.Fprintf(w, " built %s", date)
				}
				fmt.Fprintln(w)
			} else {
				fmt.Fprintln(w, "fwfeatures (dev)")
			}

			release, err := kernelRelease()
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "Kernel: %s\n", release)
			return nil
		},
	}
}

type featureView struct {
	Enabled bool   `json:"enabled"`
	Origin  string `json:"origin"`
}

type featuresView struct {
	Chip              string                 `json:"chip"`
	ChipRev           uint32                 `json:"chiprev"`
	Mask              string                 `json:"mask"`
	Features          map[string]featureView `json:"features"`
	Quirks            []string               `json:"quirks"`
	Capabilities      []string               `json:"capabilities"`
	CapabilitiesError string                 `json:"capabilities_error,omitempty"`
	Disable6GHz       bool                   `json:"disable_6ghz"`
	OffloadProfile    bool                   `json:"offload_prof"`
	RxfInKthread      bool                   `json:"sdio_rxf_in_kthread"`
}

func newFeaturesView(f *fwfeatures.Features) featuresView {
	bus := f.Bus()
	v := featuresView{
		Chip:           bus.Chip.String(),
		ChipRev:        bus.ChipRev,
		Mask:           f.Flags().Hex(),
		Features:       make(map[string]featureView, len(fwfeatures.FeatureValues())),
		Quirks:         []string{},
		Capabilities:   strings.Fields(f.Capabilities().String()),
		Disable6GHz:    !f.Is6GHzEnabled(),
		OffloadProfile: f.OffloadsEnabled(),
		RxfInKthread:   f.RxfInKthread(),
	}
	for _, feature := range fwfeatures.FeatureValues() {
		v.Features[feature.String()] = featureView{
			Enabled: f.Enabled(feature),
			Origin:  f.Origin(feature).String(),
		}
	}
	for _, q := range f.Quirks().Enabled() {
		v.Quirks = append(v.Quirks, q.String())
	}
	if err := f.Capabilities().Err(); err != nil {
		v.CapabilitiesError = err.Error()
	}
	return v
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func availableFeatures() string {
	return strings.Join(fwfeatures.FeatureNames(), ", ")
}

func checkLongDescription() string {
	return fmt.Sprintf(`Check that the negotiated firmware features satisfy all requirements.
Exits with code 0 if all requirements are met, 1 if any are missing.

Available features:
%s`, formatWrappedList(fwfeatures.FeatureNames(), "  ", 80))
}

func formatWrappedList(items []string, indent string, maxWidth int) string {
	if len(items) == 0 {
		return indent + "(none)"
	}

	lines := make([]string, 0, len(items))
	line := indent
	for i, item := range items {
		token := item
		if i < len(items)-1 {
			token += ", "
		}

		if len(line)+len(token) > maxWidth && line != indent {
			lines = append(lines, strings.TrimRight(line, " "))
			line = indent + token
			continue
		}

		line += token
	}

	lines = append(lines, strings.TrimRight(line, " "))
	return strings.Join(lines, "\n")
}
