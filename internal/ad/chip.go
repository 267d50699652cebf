package ad

import "fmt"

// chip drives the AD7725 instruction/status echo protocol for one A/D
// channel over a shared PortIO (spec §4.1, grounded on original_source
// A2DStopRead/A2DStart/A2DConfig retry loops). channel selects both the
// command-register target value written before each access and the
// per-chip data-word offset.
type chip struct {
	io      PortIO
	channel int
}

// sendInstruction writes instr to the chip's instruction register and
// retries until the echoed status register's instruction bits match, up
// to maxRetries times. This is the common shape of A2DStopRead, the
// first half of A2DStart, and the instruction phase of A2DConfig.
func (c *chip) sendInstruction(instr uint16, maxRetries int) error {
	if err := c.io.WriteByte(cmdRegOffset, byte(ioA2DStat)); err != nil {
		return err
	}
	if err := c.io.WriteWord(c.channel, instr); err != nil {
		return err
	}

	for try := 0; try < maxRetries; try++ {
		if err := c.io.WriteByte(cmdRegOffset, byte(ioA2DStat+ioReadOffset)); err != nil {
			return err
		}
		status, err := c.io.ReadWord(c.channel)
		if err != nil {
			return err
		}
		if status&statInstrMask == instr&statInstrMask {
			return nil
		}
	}
	return fmt.Errorf("ad: channel %d: %w (instruction %#04x, %d retries)", c.channel, errChipProtocol, instr, maxRetries)
}

// abort sends the ABORT instruction, halting any in-progress conversion
// or configuration on this chip (spec §4.1 "stop" transition and
// pre-configure reset).
func (c *chip) abort() error {
	return c.sendInstruction(instrAbort, abortRetries)
}

// start sends READDATA, putting the chip into free-running conversion
// mode (spec §4.1 "start" transition).
func (c *chip) start() error {
	return c.sendInstruction(instrReadData, readDataRetries)
}

// configure runs the 517-word coefficient handshake (spec §4.1
// "configure"): WRCONFIG is sent, then each of NumCoefficients words is
// written to the data register and the chip's per-channel interrupt bit
// in the system control register is polled until set (busy-wait bounded
// by channelIRQMaxIter) before the next word is sent. The handshake ends
// with a final status check: CFGEND=1, CRCERR=0, IDERR=0.
func (c *chip) configure(coefficients []uint16) error {
	if len(coefficients) < NumCoefficients {
		return fmt.Errorf("ad: channel %d: %w: need %d coefficient words, got %d", c.channel, ErrConfiguration, NumCoefficients, len(coefficients))
	}

	if err := c.sendInstruction(instrWrConfig, wrConfigRetries); err != nil {
		return err
	}

	for i := 0; i < NumCoefficients; i++ {
		if err := c.io.WriteByte(cmdRegOffset, byte(ioA2DData)); err != nil {
			return err
		}
		if err := c.io.WriteWord(c.channel, coefficients[i]); err != nil {
			return err
		}
		if err := c.waitChannelIRQ(); err != nil {
			return err
		}
	}

	return c.checkConfigEnd()
}

// waitChannelIRQ busy-polls the system control register's per-channel
// interrupt bitmask for this chip's bit, up to channelIRQMaxIter times.
func (c *chip) waitChannelIRQ() error {
	if err := c.io.WriteByte(cmdRegOffset, byte(ioSysCtl+ioReadOffset)); err != nil {
		return err
	}
	for try := 0; try < channelIRQMaxIter; try++ {
		irq, err := c.io.ReadByte(ioSysCtl + ioReadOffset)
		if err != nil {
			return err
		}
		if irq&(1<<uint(c.channel)) != 0 {
			return nil
		}
	}
	return fmt.Errorf("ad: channel %d: %w: coefficient interrupt never set within %d iterations", c.channel, errConfigHandshake, channelIRQMaxIter)
}

// checkConfigEnd reads the final AD7725 status word and confirms the
// handshake completed cleanly.
func (c *chip) checkConfigEnd() error {
	if err := c.io.WriteByte(cmdRegOffset, byte(ioA2DStat+ioReadOffset)); err != nil {
		return err
	}
	status, err := c.io.ReadWord(c.channel)
	if err != nil {
		return err
	}
	if status&statCfgEnd == 0 {
		return fmt.Errorf("ad: channel %d: %w: CFGEND not set (status %#04x)", c.channel, errConfigHandshake, status)
	}
	if status&statCrcErr != 0 {
		return fmt.Errorf("ad: channel %d: %w: CRCERR set (status %#04x)", c.channel, errConfigHandshake, status)
	}
	if status&statIDErr != 0 {
		return fmt.Errorf("ad: channel %d: %w: IDERR set (status %#04x)", c.channel, errConfigHandshake, status)
	}
	return nil
}
