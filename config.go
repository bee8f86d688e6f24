package serialport

import "time"

// Parity represents the parity mode
type Parity int

const (
	ParityNone Parity = iota
	ParityOdd
	ParityEven
	ParityMark
	ParitySpace
)

// StopBits represents the stop-bit mode
type StopBits int

const (
	StopBitsOne StopBits = iota
	StopBitsOnePointFive
	StopBitsTwo
)

// TimeoutPolicy describes the device-level timeout parameters applied to the
// driver. Zero values mean "no timing constraint at the driver layer"; the
// read strategies impose their own effective timeouts through queue polling
// instead (see ReadN, Read and ReadUntil).
type TimeoutPolicy struct {
	ReadInterval         time.Duration // max gap between two received bytes
	ReadTotalConstant    time.Duration // fixed budget per read call
	ReadTotalMultiplier  time.Duration // additional budget per requested byte
	WriteTotalConstant   time.Duration // fixed budget per write call
	WriteTotalMultiplier time.Duration // additional budget per written byte
}

// Config holds the configuration for a serial port
type Config struct {
	BaudRate int
	DataBits int
	StopBits StopBits
	Parity   Parity
	Timeouts TimeoutPolicy

	// PollInterval is the sleep between queue probes in the read
	// strategies. ExactReadCeiling bounds how long an already-issued
	// device read may stay pending before it is cancelled.
	PollInterval     time.Duration
	ExactReadCeiling time.Duration

	// Driver receive/transmit buffer sizes in bytes. Zero keeps the
	// driver defaults.
	InBufferSize  int
	OutBufferSize int

	deferOpen bool
}

// Option is a functional option for configuring a serial port
type Option func(*Config) error

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() Config {
	return Config{
		BaudRate:         9600,
		DataBits:         8,
		StopBits:         StopBitsOne,
		Parity:           ParityNone,
		PollInterval:     500 * time.Microsecond,
		ExactReadCeiling: 60 * time.Second,
	}
}

// standardBaudRates lists the rates accepted by WithBaudRate and
// SetBaudRate, matching the rates Windows serial drivers advertise.
var standardBaudRates = map[int]bool{
	110:    true,
	300:    true,
	600:    true,
	1200:   true,
	2400:   true,
	4800:   true,
	9600:   true,
	14400:  true,
	19200:  true,
	38400:  true,
	57600:  true,
	115200: true,
	128000: true,
	256000: true,
}

func validateBaudRate(rate int) error {
	if !standardBaudRates[rate] {
		return ErrInvalidBaudRate
	}
	return nil
}

// WithBaudRate sets the baud rate
func WithBaudRate(rate int) Option {
	return func(c *Config) error {
		if err := validateBaudRate(rate); err != nil {
			return err
		}
		c.BaudRate = rate
		return nil
	}
}

// WithDataBits sets the number of data bits (5, 6, 7, or 8)
func WithDataBits(bits int) Option {
	return func(c *Config) error {
		if bits < 5 || bits > 8 {
			return ErrInvalidConfig
		}
		c.DataBits = bits
		return nil
	}
}

// WithStopBits sets the stop-bit mode
func WithStopBits(bits StopBits) Option {
	return func(c *Config) error {
		switch bits {
		case StopBitsOne, StopBitsOnePointFive, StopBitsTwo:
			c.StopBits = bits
			return nil
		default:
			return ErrInvalidConfig
		}
	}
}

// WithParity sets the parity mode
func WithParity(parity Parity) Option {
	return func(c *Config) error {
		switch parity {
		case ParityNone, ParityOdd, ParityEven, ParityMark, ParitySpace:
			c.Parity = parity
			return nil
		default:
			return ErrInvalidConfig
		}
	}
}

// WithTimeouts sets the device-level timeout policy
func WithTimeouts(tp TimeoutPolicy) Option {
	return func(c *Config) error {
		if tp.ReadInterval < 0 || tp.ReadTotalConstant < 0 || tp.ReadTotalMultiplier < 0 ||
			tp.WriteTotalConstant < 0 || tp.WriteTotalMultiplier < 0 {
			return ErrInvalidConfig
		}
		c.Timeouts = tp
		return nil
	}
}

// WithPollInterval sets the sleep between queue probes in the read strategies
func WithPollInterval(interval time.Duration) Option {
	return func(c *Config) error {
		if interval <= 0 {
			return ErrInvalidConfig
		}
		c.PollInterval = interval
		return nil
	}
}

// WithExactReadCeiling sets the pending-read safety ceiling. Reads for bytes
// the queue probe has already confirmed should complete immediately; the
// ceiling only bounds the abnormal case.
func WithExactReadCeiling(ceiling time.Duration) Option {
	return func(c *Config) error {
		if ceiling <= 0 {
			return ErrInvalidConfig
		}
		c.ExactReadCeiling = ceiling
		return nil
	}
}

// WithBufferSizes requests driver receive/transmit buffer sizes in bytes
func WithBufferSizes(in, out int) Option {
	return func(c *Config) error {
		if in < 0 || out < 0 {
			return ErrInvalidConfig
		}
		c.InBufferSize = in
		c.OutBufferSize = out
		return nil
	}
}

// WithDeferredOpen registers and configures the port without acquiring the
// device handle. Call Port.Open to connect later.
func WithDeferredOpen() Option {
	return func(c *Config) error {
		c.deferOpen = true
		return nil
	}
}
