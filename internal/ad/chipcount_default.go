//go:build !armcpld

package ad

// NumChips is the number of AD7725 chips (and hence usable A/D channels)
// on the card for this build. The x86/default CPLD uses command address
// 0xF and exposes all 8 channels (spec §9 open question: the ARM CPLD
// variant reserves the last channel for card commands and is selected via
// the armcpld build tag instead, not a runtime flag).
const NumChips = 8

// cmdRegOffset is the command-register offset within the card's I/O
// window (spec §6).
const cmdRegOffset = 0xF
