package serialport

import "errors"

// Predefined error types for robust error handling
var (
	ErrAlreadyOpen         = errors.New("port is already open")
	ErrDeviceUnavailable   = errors.New("serial device not present")
	ErrOpenFailed          = errors.New("failed to open serial device")
	ErrConfigurationFailed = errors.New("failed to apply line configuration")
	ErrTimeoutConfigFailed = errors.New("failed to apply timeout configuration")
	ErrWriteFailed         = errors.New("write to serial device failed")
	ErrReadFailed          = errors.New("read from serial device failed")
	ErrDisconnected        = errors.New("serial device disconnected")
	ErrPortClosed          = errors.New("serial port is closed")

	// Configuration validation errors
	ErrInvalidBaudRate = errors.New("invalid baud rate")
	ErrInvalidConfig   = errors.New("invalid serial configuration")

	// Delimiter read limits
	ErrPatternNotFound = errors.New("pattern not found before wait limit")
	ErrOverflow        = errors.New("read buffer limit exceeded before pattern")

	// Discovery errors
	ErrRegistryLookupFailed = errors.New("serial port registry lookup failed")

	// Platform support
	ErrUnsupportedPlatform = errors.New("serial device access not supported on this platform")
)
