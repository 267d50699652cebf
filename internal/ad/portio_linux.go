//go:build linux

package ad

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/sys/unix"
)

// linuxISAPortIO performs ISA port I/O through /dev/port, the conventional
// userspace path when a real in-kernel driver is unavailable (grounded on
// Daedaluz-goserial's pattern of isolating OS-specific syscalls behind a
// //go:build linux file). Reads/writes are Pread/Pwrite at base+offset,
// which /dev/port maps directly onto IN/OUT port-I/O instructions on x86.
type linuxISAPortIO struct {
	fd   int
	base int64
}

// OpenISAPortIO opens /dev/port for the card at the given base address
// (typically 0x3A0), for callers that want the real hardware path
// instead of NewSimPortIO.
func OpenISAPortIO(base int) (PortIO, error) {
	return openLinuxISAPortIO(base)
}

// openLinuxISAPortIO opens /dev/port for the card at the given base
// address (typically 0x3A0).
func openLinuxISAPortIO(base int) (*linuxISAPortIO, error) {
	fd, err := unix.Open("/dev/port", unix.O_RDWR|unix.O_SYNC, 0)
	if err != nil {
		return nil, fmt.Errorf("ad: open /dev/port: %w", err)
	}
	return &linuxISAPortIO{fd: fd, base: int64(base)}, nil
}

func (p *linuxISAPortIO) Close() error {
	return unix.Close(p.fd)
}

func (p *linuxISAPortIO) ReadByte(offset int) (byte, error) {
	var buf [1]byte
	n, err := unix.Pread(p.fd, buf[:], p.base+int64(offset))
	if err != nil {
		return 0, err
	}
	if n != 1 {
		return 0, fmt.Errorf("ad: short read at offset %#x", offset)
	}
	return buf[0], nil
}

func (p *linuxISAPortIO) WriteByte(offset int, v byte) error {
	_, err := unix.Pwrite(p.fd, []byte{v}, p.base+int64(offset))
	return err
}

func (p *linuxISAPortIO) ReadWord(offset int) (uint16, error) {
	var buf [2]byte
	n, err := unix.Pread(p.fd, buf[:], p.base+int64(offset))
	if err != nil {
		return 0, err
	}
	if n != 2 {
		return 0, fmt.Errorf("ad: short word read at offset %#x", offset)
	}
	return binary.LittleEndian.Uint16(buf[:]), nil
}

func (p *linuxISAPortIO) WriteWord(offset int, v uint16) error {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	_, err := unix.Pwrite(p.fd, buf[:], p.base+int64(offset))
	return err
}
