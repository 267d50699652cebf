package ad

import (
	"unsafe"

	ioctl "github.com/daedaluz/goioctl"
)

// Ioctl request codes for the control operations in spec §4.1's
// operations table, constructed the way Daedaluz-goserial builds its
// termios request codes: IOW for operations that carry a payload down
// to the engine, IOR for ones that carry a payload back, IO for the
// two bare state transitions.
const ioctlMagic = 0xA2

var (
	ReqSetGlobalConfig = ioctl.IOW(ioctlMagic, 1, unsafe.Sizeof(ioctlGlobalConfig{}))
	ReqAddSampleStream = ioctl.IOW(ioctlMagic, 2, unsafe.Sizeof(ioctlSampleStream{}))
	ReqSetCoefficients = ioctl.IOW(ioctlMagic, 3, unsafe.Sizeof(ioctlCoefficientBlock{}))
	ReqStart           = ioctl.IO(ioctlMagic, 4)
	ReqStop            = ioctl.IO(ioctlMagic, 5)
	ReqGetStatus       = ioctl.IOR(ioctlMagic, 6, unsafe.Sizeof(ioctlStatus{}))
	ReqGetTemperature  = ioctl.IOR(ioctlMagic, 7, unsafe.Sizeof(ioctlTemperature{}))
)

// ioctlGlobalConfig mirrors the control-block layout an in-kernel driver
// would read for the "set global config" operation: scan rate, filter
// type, active channel mask, and per-channel gain/polarity.
type ioctlGlobalConfig struct {
	ScanRateHz   int32
	FilterType   int32
	ChannelMask  uint32
	Gain         [8]int16
	Bipolar      [8]uint8
}

// ioctlSampleStream mirrors "add sample stream": a filter kind,
// decimation, stream id, and the channel list it draws from.
type ioctlSampleStream struct {
	StreamID   uint16
	Kind       int32
	Decimation int32
	NumChannels int32
	Channels   [8]int32
}

// ioctlCoefficientBlock mirrors "set coefficient block": the target
// channel and the up-to-2048-word coefficient array (spec §4.1;
// CoefficientBlockLength documents the size/handshake-length mismatch).
type ioctlCoefficientBlock struct {
	Channel      int32
	Coefficients [CoefficientBlockLength]uint16
}

// ioctlStatus mirrors "get status": the wire form of Status.
type ioctlStatus struct {
	SerialNumber       int32
	SkippedScans       uint64
	FIFOResets         uint64
	ChecksumErrors     uint64
	ErrorState         uint8
	FIFOLevelHistogram [6]uint64
}

// ioctlTemperature mirrors "get temperature": a single chip's board
// temperature sensor reading in tenths of a degree C.
type ioctlTemperature struct {
	TenthsDegC int16
}

func statusToWire(s Status) ioctlStatus {
	w := ioctlStatus{
		SerialNumber:       int32(s.SerialNumber),
		SkippedScans:       s.SkippedScans,
		FIFOResets:         s.FIFOResets,
		ChecksumErrors:     s.ChecksumErrors,
		FIFOLevelHistogram: s.FIFOLevelHistogram,
	}
	if s.ErrorState {
		w.ErrorState = 1
	}
	return w
}
