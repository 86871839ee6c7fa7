package fwfeatures

import "encoding/binary"

// Scheduled scan limits of the PNO subsystem.
const (
	PNOMaxPFNCount        = 16
	PNOSchedScanMinPeriod = 10
	PNOSchedScanMaxPeriod = 508
	PNOMaxBuckets         = 16
	PNOMaxMatchSets       = 16
)

const (
	pfnMACAddrCfgVersion = 1
	scanIELenMax         = 2048
)

// SchedScanLimits are the scheduled scan parameters advertised to the
// wireless stack.
type SchedScanLimits struct {
	MaxSSIDs        int
	MaxMatchSets    int
	MaxIELen        int
	MaxPlanInterval int
	MaxReqs         int
	// RandomMAC reports whether scheduled scans may use a random address.
	RandomMAC bool
}

// SchedScan returns the scheduled scan limits, or false when the firmware
// has no PNO support and scheduled scanning must not be offered. With
// GSCAN, one request per firmware bucket can run concurrently.
func (f *Features) SchedScan() (SchedScanLimits, bool) {
	if !f.Enabled(FeaturePNO) {
		return SchedScanLimits{}, false
	}
	limits := SchedScanLimits{
		MaxSSIDs:        PNOMaxPFNCount,
		MaxMatchSets:    PNOMaxMatchSets,
		MaxIELen:        scanIELenMax,
		MaxPlanInterval: PNOSchedScanMaxPeriod,
		MaxReqs:         1,
		RandomMAC:       f.Enabled(FeatureScanRandomMAC),
	}
	if f.Enabled(FeatureGSCAN) {
		limits.MaxReqs = PNOMaxBuckets
	}
	return limits, true
}

// gscanBucketConfig is one channel bucket of the gscan configuration.
type gscanBucketConfig struct {
	BucketEndIndex     uint8
	BucketFreqMultiple uint8
	Flag               uint8
	Reserved           uint8
	Repeat             uint16
	MaxFreqMultiple    uint16
}

// gscanConfig is the pfn_gscan_cfg payload. The all-zero value is what
// negotiation writes.
type gscanConfig struct {
	Version               uint16
	Flags                 uint8
	BufferThreshold       uint8
	SWCNBSSIDThreshold    uint8
	SWCRSSIWindowSize     uint8
	CountOfChannelBuckets uint8
	RetryThreshold        uint8
	LostAPWindow          uint16
	Bucket                [1]gscanBucketConfig
}

func (c gscanConfig) marshal() []byte {
	b, _ := binary.Append(nil, binary.LittleEndian, c)
	return b
}

// pnoMACAddr is the pfn_macaddr payload.
type pnoMACAddr struct {
	Version uint8
	Flags   uint8
	MAC     [6]byte
}

func (m pnoMACAddr) marshal() []byte {
	b, _ := binary.Append(nil, binary.LittleEndian, m)
	return b
}
