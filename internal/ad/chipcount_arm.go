//go:build armcpld

package ad

// NumChips is 7 on the ARM CPLD variant: the command-register address
// moves to 0xE (a PC/104 16-bit-card workaround for Vulcan CPUs), which
// consumes what would otherwise be channel 7's address, leaving 7 usable
// A/D channels (spec §9 open question). Selected at compile time only.
const NumChips = 7

// cmdRegOffset is the command-register offset within the card's I/O
// window for the ARM CPLD variant (spec §6).
const cmdRegOffset = 0xE
