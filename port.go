package serialport

import (
	"fmt"
	"sync"
	"time"
)

// ModemSignals represents the input modem control line states
type ModemSignals struct {
	CTS bool // Clear To Send
	DSR bool // Data Set Ready
	RI  bool // Ring Indicator
	DCD bool // Data Carrier Detect
}

// Port represents one serial device connection. Instances are owned by a
// Registry: at most one Port exists per port name, and a closed Port stays
// registered so it can be reopened in place. Exactly one read and one write
// operation run at a time; concurrent calls in the same direction are
// serialized internally.
type Port struct {
	name   string
	opener deviceOpener

	mu  sync.Mutex // guards config and dev
	rmu sync.Mutex // serializes the read direction
	wmu sync.Mutex // serializes the write direction

	config Config
	dev    device // nil while closed
}

func newPort(name string, config Config, opener deviceOpener) *Port {
	return &Port{
		name:   name,
		config: config,
		opener: opener,
	}
}

// Name returns the port identifier this connection was opened with
func (p *Port) Name() string {
	return p.name
}

// Config returns a snapshot of the current configuration
func (p *Port) Config() Config {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.config
}

// reconfigure replaces the stored configuration of a closed port. The
// registry calls it when an Open names a cached instance.
func (p *Port) reconfigure(config Config) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.dev != nil {
		return ErrAlreadyOpen
	}
	p.config = config
	return nil
}

// Open acquires the device handle and applies the configured line
// parameters and timeout policy. It fails with ErrAlreadyOpen when the
// connection is already live. A connection whose device has silently
// disappeared is closed first and then reopened from scratch.
func (p *Port) Open() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.dev != nil {
		if _, err := p.dev.pending(); err == nil {
			return ErrAlreadyOpen
		}
		// The old handle is dead; release it before reopening.
		p.closeLocked()
	}

	dev, err := p.opener(p.name, p.config)
	if err != nil {
		return err
	}

	p.dev = dev
	return nil
}

// closeLocked releases the device unconditionally. Callers hold p.mu.
func (p *Port) closeLocked() {
	if p.dev == nil {
		return
	}
	// Close errors are ignored; the handle may already be invalid.
	_ = p.dev.close()
	p.dev = nil
}

// Close releases the device handle and marks the connection closed. It is
// idempotent and never fails. The port remains registered and can be
// reopened with Open.
func (p *Port) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeLocked()
	return nil
}

// IsOpen reports whether the connection is live. Checking liveness on a
// disconnected device closes the connection as a side effect, so a false
// result may mean the check itself tore the connection down.
func (p *Port) IsOpen() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.dev == nil {
		return false
	}
	if _, err := p.dev.pending(); err != nil {
		p.closeLocked()
		return false
	}
	return true
}

// PendingBytes returns the number of inbound bytes buffered by the driver
// without consuming or blocking. A failing status query means the device
// is gone: the connection is closed and ErrDisconnected returned.
func (p *Port) PendingBytes() (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.dev == nil {
		return 0, ErrPortClosed
	}

	n, err := p.dev.pending()
	if err != nil {
		p.closeLocked()
		return 0, fmt.Errorf("%w: %v", ErrDisconnected, err)
	}
	return n, nil
}

// deviceRef returns the live device or ErrPortClosed.
func (p *Port) deviceRef() (device, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.dev == nil {
		return nil, ErrPortClosed
	}
	return p.dev, nil
}

// Write transmits data. It returns false without an error when the timeout
// expired before the transfer completed; the aborted transfer is cancelled
// before Write returns, so data may be retransmitted safely. A timeout of
// zero or less waits indefinitely.
func (p *Port) Write(data []byte, timeout time.Duration) (bool, error) {
	p.wmu.Lock()
	defer p.wmu.Unlock()

	dev, err := p.deviceRef()
	if err != nil {
		return false, err
	}
	if len(data) == 0 {
		return true, nil
	}
	return dev.write(data, timeout)
}

// applyLine pushes a modified configuration to the device. Every successful
// line change discards bytes buffered in both directions.
func (p *Port) applyLine(mutate func(*Config)) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.dev == nil {
		return ErrPortClosed
	}

	next := p.config
	mutate(&next)
	if err := p.dev.setLine(next); err != nil {
		return err
	}
	p.config = next
	_ = p.dev.purge(purgeAll)
	return nil
}

// SetBaudRate changes the baud rate on the open connection
func (p *Port) SetBaudRate(rate int) error {
	if err := validateBaudRate(rate); err != nil {
		return err
	}
	return p.applyLine(func(c *Config) { c.BaudRate = rate })
}

// SetDataBits changes the data byte size on the open connection
func (p *Port) SetDataBits(bits int) error {
	if bits < 5 || bits > 8 {
		return ErrInvalidConfig
	}
	return p.applyLine(func(c *Config) { c.DataBits = bits })
}

// SetStopBits changes the stop-bit mode on the open connection
func (p *Port) SetStopBits(bits StopBits) error {
	switch bits {
	case StopBitsOne, StopBitsOnePointFive, StopBitsTwo:
	default:
		return ErrInvalidConfig
	}
	return p.applyLine(func(c *Config) { c.StopBits = bits })
}

// SetParity changes the parity mode on the open connection
func (p *Port) SetParity(parity Parity) error {
	switch parity {
	case ParityNone, ParityOdd, ParityEven, ParityMark, ParitySpace:
	default:
		return ErrInvalidConfig
	}
	return p.applyLine(func(c *Config) { c.Parity = parity })
}

// applyTimeouts pushes a modified timeout policy to the device.
func (p *Port) applyTimeouts(mutate func(*TimeoutPolicy)) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.dev == nil {
		return ErrPortClosed
	}

	next := p.config.Timeouts
	mutate(&next)
	if next.ReadInterval < 0 || next.ReadTotalConstant < 0 || next.ReadTotalMultiplier < 0 ||
		next.WriteTotalConstant < 0 || next.WriteTotalMultiplier < 0 {
		return ErrInvalidConfig
	}
	if err := p.dev.applyTimeouts(next); err != nil {
		return err
	}
	p.config.Timeouts = next
	return nil
}

// SetTimeouts replaces the whole timeout policy on the open connection
func (p *Port) SetTimeouts(tp TimeoutPolicy) error {
	return p.applyTimeouts(func(t *TimeoutPolicy) { *t = tp })
}

// SetReadIntervalTimeout changes the maximum gap allowed between two bytes
func (p *Port) SetReadIntervalTimeout(d time.Duration) error {
	return p.applyTimeouts(func(t *TimeoutPolicy) { t.ReadInterval = d })
}

// SetReadTotalTimeouts changes the fixed and per-byte read budgets
func (p *Port) SetReadTotalTimeouts(constant, multiplier time.Duration) error {
	return p.applyTimeouts(func(t *TimeoutPolicy) {
		t.ReadTotalConstant = constant
		t.ReadTotalMultiplier = multiplier
	})
}

// SetWriteTotalTimeouts changes the fixed and per-byte write budgets
func (p *Port) SetWriteTotalTimeouts(constant, multiplier time.Duration) error {
	return p.applyTimeouts(func(t *TimeoutPolicy) {
		t.WriteTotalConstant = constant
		t.WriteTotalMultiplier = multiplier
	})
}

// SetDTR sets the Data Terminal Ready line state
func (p *Port) SetDTR(state bool) error {
	dev, err := p.deviceRef()
	if err != nil {
		return err
	}
	return dev.setSignal(signalDTR, state)
}

// SetRTS sets the Request To Send line state
func (p *Port) SetRTS(state bool) error {
	dev, err := p.deviceRef()
	if err != nil {
		return err
	}
	return dev.setSignal(signalRTS, state)
}

// GetModemSignals returns the current input control line states
func (p *Port) GetModemSignals() (ModemSignals, error) {
	dev, err := p.deviceRef()
	if err != nil {
		return ModemSignals{}, err
	}
	return dev.modemSignals()
}

// SendBreak holds the transmit line in break state for the given duration
func (p *Port) SendBreak(d time.Duration) error {
	if d <= 0 {
		return ErrInvalidConfig
	}
	dev, err := p.deviceRef()
	if err != nil {
		return err
	}
	return dev.sendBreak(d)
}

// FlushInput discards any unread inbound data buffered by the driver
func (p *Port) FlushInput() error {
	dev, err := p.deviceRef()
	if err != nil {
		return err
	}
	return dev.purge(purgeInput)
}

// FlushOutput discards any untransmitted outbound data buffered by the driver
func (p *Port) FlushOutput() error {
	dev, err := p.deviceRef()
	if err != nil {
		return err
	}
	return dev.purge(purgeOutput)
}
