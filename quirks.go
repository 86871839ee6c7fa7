package fwfeatures

import "fmt"

// ChipID is the chip identifier read from the chip common core.
type ChipID uint32

// Chips with feature overrides or quirks.
const (
	Chip4329  ChipID = 0x4329
	Chip4330  ChipID = 0x4330
	Chip4345  ChipID = 0x4345
	Chip43236 ChipID = 43236
	Chip43362 ChipID = 43362
	Chip43430 ChipID = 43430
	Chip43439 ChipID = 43439
	Chip43454 ChipID = 43454
)

// String renders the chip name. Ids in the 0x4000..0xa000 range are
// written in hex, all others in decimal.
func (c ChipID) String() string {
	if c > 0xa000 || c < 0x4000 {
		return fmt.Sprintf("BCM%d", uint32(c))
	}
	return fmt.Sprintf("BCM%x", uint32(c))
}

// Wake-on-WLAN capability bits returned by the wowl_cap query.
const (
	wowlGTKFailure = 1 << 10
	wowlPFNFound   = 1 << 27
)

// gscanUnsupported reports chips whose firmware lacks pfn_gscan_cfg.
func gscanUnsupported(chip ChipID) bool {
	switch chip {
	case Chip43430, Chip4345, Chip43454, Chip43439:
		return true
	}
	return false
}

// mbssBroken reports chips that answer the MBSS probe without really
// supporting multiple BSS.
func mbssBroken(chip ChipID) bool {
	switch chip {
	case Chip4330, Chip43362:
		return true
	}
	return false
}

// chipQuirks returns the quirks of a chip.
func chipQuirks(chip ChipID) QuirkFlags {
	var qf QuirkFlags
	switch chip {
	case Chip43236:
		qf.set(QuirkAutoAuth)
	case Chip4329:
		qf.set(QuirkNeedMPC)
	}
	return qf
}
