// Package serialport provides duplex byte-stream access to Windows COM
// ports through overlapped I/O wrapped in a blocking-style API.
//
// Reads and writes are issued asynchronously against the device handle and
// driven to completion with per-direction event waits, so a slow device
// never wedges the caller beyond the timeout it asked for. On top of the
// transfer engine the package offers three read strategies (fixed-size,
// timeout-bounded, delimiter-terminated), queue-depth probing without
// consuming data, control-line management, and port discovery.
//
// # Basic Usage
//
// Open a port with the default configuration (9600 8N1):
//
//	port, err := serialport.Open("COM3")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer port.Close()
//
//	ok, err := port.Write([]byte("PING"), time.Second)
//	reply, err := port.ReadUntil([]byte{0x0D, 0x0A})
//
// # Connection Registry
//
// At most one connection exists per port name. Open returns ErrAlreadyOpen
// while the port is connected, and after Close the same instance is reused:
//
//	a, _ := serialport.Open("COM3")
//	_, err := serialport.Open("COM3") // ErrAlreadyOpen
//	a.Close()
//	b, _ := serialport.Open("COM3")   // same instance, reopened
//
// Tests and applications that need isolation construct their own registry
// with NewRegistry instead of using the package-level functions.
//
// # Configuration Options
//
// Use functional options for custom configuration:
//
//	port, err := serialport.Open("COM3",
//	    serialport.WithBaudRate(115200),
//	    serialport.WithParity(serialport.ParityEven),
//	    serialport.WithStopBits(serialport.StopBitsTwo),
//	    serialport.WithTimeouts(serialport.TimeoutPolicy{
//	        ReadInterval: 50 * time.Millisecond,
//	    }),
//	)
//
// Line parameters can also be changed on the open connection with
// SetBaudRate, SetDataBits, SetStopBits and SetParity. Every successful
// change discards data buffered in both directions.
//
// # Read Strategies
//
// ReadN blocks until the requested count has arrived. Read bounds the wait
// and returns whatever arrived when the deadline fires. ReadUntil consumes
// byte by byte until the accumulated data ends with a delimiter:
//
//	frame, err := port.ReadN(16)
//	chunk, err := port.Read(256, 500*time.Millisecond) // may be short
//	line, err := port.ReadUntil([]byte{'\r', '\n'})
//
// ReadN and ReadUntil wait forever if the device stays silent; use the
// Context variants or ReadUntilBounded to put a limit on waiting:
//
//	line, err := port.ReadUntilBounded([]byte{'\n'}, 4096, 2*time.Second)
//	if errors.Is(err, serialport.ErrPatternNotFound) {
//	    // deadline hit; line holds what arrived
//	}
//
// # Queue Probing
//
// PendingBytes reports how many inbound bytes the driver has buffered
// without consuming them and without blocking. A failing probe means the
// device is gone: the connection closes itself and reports ErrDisconnected.
// IsOpen performs the same probe, so merely checking a dead connection
// tears it down.
//
// # Signal Control
//
// Drive the DTR and RTS output lines and read the input line states:
//
//	err = port.SetDTR(true)
//	err = port.SetRTS(false)
//	signals, err := port.GetModemSignals() // CTS, DSR, RI, DCD
//
// # Port Discovery
//
// Enumerate active ports and their device metadata:
//
//	names, err := serialport.ListPorts()
//	details, err := serialport.ListPortDetails()
//	for _, d := range details {
//	    vid, pid, _ := serialport.ParseUSBIdentifiers(d.HardwareID)
//	    fmt.Printf("%s: %s (VID=%s PID=%s)\n", d.Name, d.FriendlyName, vid, pid)
//	}
//
// Both queries return empty results on systems without serial devices.
//
// # Error Handling
//
// Failures are reported through sentinel errors; OS detail is wrapped
// underneath. Use errors.Is:
//
//	if errors.Is(err, serialport.ErrDisconnected) {
//	    // device vanished; the connection is already closed
//	}
//
// Timeouts are not errors on the data path: a timed-out Read returns fewer
// bytes than requested and a timed-out Write returns false. In both cases
// the aborted transfer is cancelled at the driver before the call returns.
//
// # Platform Support
//
// Device access and discovery require Windows. The package compiles on
// other platforms, where those operations return ErrUnsupportedPlatform.
//
// # Default Configuration
//
//   - BaudRate: 9600
//   - DataBits: 8
//   - StopBits: 1
//   - Parity: None
//   - Timeouts: none at the driver (strategies bound their own waits)
//   - PollInterval: 500µs
//   - ExactReadCeiling: 60s
package serialport
