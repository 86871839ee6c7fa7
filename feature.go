package fwfeatures

import (
	"fmt"
	"strings"
)

// Feature identifies an optional firmware capability.
//
// Values are ordinal-stable within a build and index [FeatureFlags];
// they are never meant to be persisted.
type Feature int

const (
	// FeatureMBSS is multiple BSS (virtual AP interfaces).
	FeatureMBSS Feature = iota
	// FeatureMCHAN is multi-channel concurrency.
	FeatureMCHAN
	// FeaturePNO is preferred network offload (scheduled scan).
	FeaturePNO
	// FeatureWOWL is wake-on-wireless-LAN.
	FeatureWOWL
	// FeatureP2P is Wi-Fi Direct.
	FeatureP2P
	// FeatureRSDB is real simultaneous dual band.
	FeatureRSDB
	// FeatureTDLS is tunneled direct link setup.
	FeatureTDLS
	// FeatureScanRandomMAC is MAC address randomization for scheduled scans.
	FeatureScanRandomMAC
	// FeatureWOWLND is wake on net-detect (PNO network found).
	FeatureWOWLND
	// FeatureWOWLGTK is wake on GTK rekey failure.
	FeatureWOWLGTK
	// FeatureWOWLARPND is ARP and neighbor discovery offload while asleep.
	FeatureWOWLARPND
	// FeatureMFP is management frame protection (802.11w).
	FeatureMFP
	// FeatureGSCAN is the extended network list scan configuration.
	FeatureGSCAN
	// FeatureFWSUP is the in-firmware WPA supplicant.
	FeatureFWSUP
	// FeatureMonitor is monitor mode.
	FeatureMonitor
	// FeatureMonitorFlag is the monitor mode flag on an existing interface.
	FeatureMonitorFlag
	// FeatureMonitorFmtRadiotap is monitor mode frames carrying radiotap headers.
	FeatureMonitorFmtRadiotap
	// FeatureDot11H is spectrum management (802.11h).
	FeatureDot11H
	// FeatureSAE is simultaneous authentication of equals (WPA3).
	FeatureSAE
	// FeatureFWAuth is firmware driven authentication.
	FeatureFWAuth
	// FeatureDumpOBSS is the OBSS channel utilization dump.
	FeatureDumpOBSS
	// FeatureSurveyDump is the channel survey dump.
	FeatureSurveyDump
	// FeatureSAEExt is SAE with external authentication.
	FeatureSAEExt
	// FeatureFBT is fast BSS transition (802.11r).
	FeatureFBT
	// FeatureOKC is opportunistic key caching.
	FeatureOKC
	// FeatureGCMP is the GCMP cipher suite.
	FeatureGCMP
	// FeatureTWT is target wake time.
	FeatureTWT
	// FeatureOffloads is the generic firmware offload engine.
	FeatureOffloads
	// FeatureULP is upper-layer power save.
	FeatureULP
	// FeaturePropTxStatus is legacy proprietary TX status reporting.
	FeaturePropTxStatus
	// FeatureOWE is opportunistic wireless encryption.
	FeatureOWE

	featureCount
)

// featureBytes is the number of bytes backing a [FeatureFlags] value.
const featureBytes = (int(featureCount) + 7) / 8

// featureInfo describes one registry entry. An empty fwcap means the
// feature is never derived from the firmware capability string.
type featureInfo struct {
	name  string
	fwcap string
}

// featureTable is the feature registry.
//
// Capability tokens are matched as substrings. The trailing space on
// "sae ", "sae_ext " and "fbt " keeps them from matching longer words
// ("sae_ext" would otherwise satisfy "sae"), while "rtap" and "owe" omit it
// on purpose.
var featureTable = [featureCount]featureInfo{
	FeatureMBSS:               {"mbss", "mbss"},
	FeatureMCHAN:              {"mchan", "mchan"},
	FeaturePNO:                {"pno", ""},
	FeatureWOWL:               {"wowl", ""},
	FeatureP2P:                {"p2p", "p2p"},
	FeatureRSDB:               {"rsdb", ""},
	FeatureTDLS:               {"tdls", ""},
	FeatureScanRandomMAC:      {"scan_random_mac", ""},
	FeatureWOWLND:             {"wowl_nd", ""},
	FeatureWOWLGTK:            {"wowl_gtk", ""},
	FeatureWOWLARPND:          {"wowl_arp_nd", ""},
	FeatureMFP:                {"mfp", ""},
	FeatureGSCAN:              {"gscan", ""},
	FeatureFWSUP:              {"fwsup", ""},
	FeatureMonitor:            {"monitor", "monitor"},
	FeatureMonitorFlag:        {"monitor_flag", "rtap"},
	FeatureMonitorFmtRadiotap: {"monitor_fmt_radiotap", "rtap"},
	FeatureDot11H:             {"dot11h", "802.11h"},
	FeatureSAE:                {"sae", "sae "},
	FeatureFWAuth:             {"fwauth", "idauth"},
	FeatureDumpOBSS:           {"dump_obss", ""},
	FeatureSurveyDump:         {"survey_dump", ""},
	FeatureSAEExt:             {"sae_ext", "sae_ext "},
	FeatureFBT:                {"fbt", "fbt "},
	FeatureOKC:                {"okc", "okc"},
	FeatureGCMP:               {"gcmp", "gcmp"},
	FeatureTWT:                {"twt", ""},
	FeatureOffloads:           {"offloads", "offloads"},
	FeatureULP:                {"ulp", "ulp"},
	FeaturePropTxStatus:       {"proptxstatus", "proptxstatus"},
	FeatureOWE:                {"owe", "owe"},
}

func (f Feature) valid() bool {
	return f >= 0 && f < featureCount
}

func (f Feature) String() string {
	if f.valid() {
		return featureTable[f].name
	}
	return fmt.Sprintf("Feature(%d)", f)
}

// CapabilityToken returns the token searched for in the firmware
// capability string, and false if the feature is only detected by probing.
func (f Feature) CapabilityToken() (string, bool) {
	if !f.valid() || featureTable[f].fwcap == "" {
		return "", false
	}
	return featureTable[f].fwcap, true
}

// FeatureValues returns every known feature in ordinal order.
func FeatureValues() []Feature {
	values := make([]Feature, 0, featureCount)
	for f := Feature(0); f < featureCount; f++ {
		values = append(values, f)
	}
	return values
}

// FeatureNames returns the names of every known feature in ordinal order.
func FeatureNames() []string {
	names := make([]string, 0, featureCount)
	for f := Feature(0); f < featureCount; f++ {
		names = append(names, f.String())
	}
	return names
}

// ParseFeature looks up a feature by name, ignoring case.
func ParseFeature(name string) (Feature, error) {
	name = strings.TrimSpace(name)
	for f := Feature(0); f < featureCount; f++ {
		if strings.EqualFold(featureTable[f].name, name) {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown feature: %q", name)
}

// Quirk identifies a chip specific behaviour the host has to compensate for.
type Quirk int

const (
	// QuirkAutoAuth means the chip needs the authentication type forced to auto.
	QuirkAutoAuth Quirk = iota
	// QuirkNeedMPC means the chip needs minimum power consumption kept on.
	QuirkNeedMPC

	quirkCount
)

var quirkNames = [quirkCount]string{
	QuirkAutoAuth: "auto_auth",
	QuirkNeedMPC:  "need_mpc",
}

func (q Quirk) valid() bool {
	return q >= 0 && q < quirkCount
}

func (q Quirk) String() string {
	if q.valid() {
		return quirkNames[q]
	}
	return fmt.Sprintf("Quirk(%d)", q)
}

// QuirkValues returns every known quirk in ordinal order.
func QuirkValues() []Quirk {
	values := make([]Quirk, 0, quirkCount)
	for q := Quirk(0); q < quirkCount; q++ {
		values = append(values, q)
	}
	return values
}
