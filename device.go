package serialport

import "time"

// purgeMode selects which driver buffers a purge discards.
type purgeMode int

const (
	purgeInput purgeMode = 1 << iota
	purgeOutput

	purgeAll = purgeInput | purgeOutput
)

// lineSignal identifies an output control line.
type lineSignal int

const (
	signalDTR lineSignal = iota
	signalRTS
)

// device is the OS-facing half of a Port. Exactly one read and one write
// may be in flight at a time; Port serializes both directions. Methods
// return errors already mapped to this package's sentinels, except pending,
// whose raw failure the caller interprets as a disconnection.
type device interface {
	// pending reports the number of inbound bytes buffered by the
	// driver. It never blocks and never issues I/O.
	pending() (int, error)

	// readExact fills buf completely or returns the partial count read
	// before the ceiling expired. The ceiling is a safety net: callers
	// probe the queue first, so the read should complete immediately.
	readExact(buf []byte, ceiling time.Duration) (int, error)

	// write transmits data, reporting false when the timeout expired
	// before the transfer completed. The aborted transfer is fully
	// cancelled before write returns.
	write(data []byte, timeout time.Duration) (bool, error)

	setLine(cfg Config) error
	applyTimeouts(tp TimeoutPolicy) error
	purge(mode purgeMode) error
	setSignal(sig lineSignal, state bool) error
	modemSignals() (ModemSignals, error)
	sendBreak(d time.Duration) error
	close() error
}

// deviceOpener acquires a device for the named port. Ports created by a
// Registry use openSystemDevice; tests substitute fakes.
type deviceOpener func(name string, cfg Config) (device, error)
