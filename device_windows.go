//go:build windows

package serialport

import (
	"fmt"
	"strings"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"
)

// dcb mirrors the Win32 DCB structure.
type dcb struct {
	DCBLength uint32
	BaudRate  uint32
	Flags     uint32
	_         uint16 // wReserved
	XonLim    uint16
	XoffLim   uint16
	ByteSize  byte
	Parity    byte
	StopBits  byte
	XonChar   byte
	XoffChar  byte
	ErrorChar byte
	EOFChar   byte
	EvtChar   byte
	_         uint16 // wReserved1
}

// commTimeouts mirrors the Win32 COMMTIMEOUTS structure.
type commTimeouts struct {
	ReadIntervalTimeout         uint32
	ReadTotalTimeoutMultiplier  uint32
	ReadTotalTimeoutConstant    uint32
	WriteTotalTimeoutMultiplier uint32
	WriteTotalTimeoutConstant   uint32
}

// comStat mirrors the Win32 COMSTAT structure.
type comStat struct {
	Flags  uint32
	InQue  uint32
	OutQue uint32
}

var (
	kernel32               = windows.NewLazySystemDLL("kernel32.dll")
	procGetCommState       = kernel32.NewProc("GetCommState")
	procSetCommState       = kernel32.NewProc("SetCommState")
	procSetCommTimeouts    = kernel32.NewProc("SetCommTimeouts")
	procSetCommMask        = kernel32.NewProc("SetCommMask")
	procSetupComm          = kernel32.NewProc("SetupComm")
	procClearCommError     = kernel32.NewProc("ClearCommError")
	procPurgeComm          = kernel32.NewProc("PurgeComm")
	procEscapeCommFunction = kernel32.NewProc("EscapeCommFunction")
	procGetCommModemStatus = kernel32.NewProc("GetCommModemStatus")
	procSetCommBreak       = kernel32.NewProc("SetCommBreak")
	procClearCommBreak     = kernel32.NewProc("ClearCommBreak")
)

const (
	// DCB flag bits
	dcbFlagBinary = 0x0001
	dcbFlagParity = 0x0002

	// PurgeComm flags
	purgeFlagTxAbort = 0x0001
	purgeFlagRxAbort = 0x0002
	purgeFlagTxClear = 0x0004
	purgeFlagRxClear = 0x0008

	// EscapeCommFunction codes
	commFunctionSetRTS = 3
	commFunctionClrRTS = 4
	commFunctionSetDTR = 5
	commFunctionClrDTR = 6

	// SetCommMask events
	evRxChar = 0x0001

	// GetCommModemStatus bits
	msCTSOn  = 0x0010
	msDSROn  = 0x0020
	msRingOn = 0x0040
	msRLSDOn = 0x0080
)

func parityByte(p Parity) byte {
	switch p {
	case ParityOdd:
		return 1
	case ParityEven:
		return 2
	case ParityMark:
		return 3
	case ParitySpace:
		return 4
	default:
		return 0
	}
}

func stopBitsByte(s StopBits) byte {
	switch s {
	case StopBitsOnePointFive:
		return 1
	case StopBitsTwo:
		return 2
	default:
		return 0
	}
}

// durationMs converts a duration to whole milliseconds for the driver,
// rounding sub-millisecond values up and clamping below MAXDWORD, which
// has reserved meaning in COMMTIMEOUTS.
func durationMs(d time.Duration) uint32 {
	if d <= 0 {
		return 0
	}
	ms := (d + time.Millisecond - 1) / time.Millisecond
	if ms > 0xFFFFFFFE {
		return 0xFFFFFFFE
	}
	return uint32(ms)
}

// ioContext is one direction's overlapped state: a manual-reset completion
// event and the overlapped slot the driver writes into. Each direction owns
// exactly one and re-arms it before every operation it issues, so a stale
// signal from a previous transfer can never satisfy a new wait.
type ioContext struct {
	ov windows.Overlapped
	ev windows.Handle
}

func newIOContext() (*ioContext, error) {
	ev, err := windows.CreateEvent(nil, 1, 0, nil)
	if err != nil {
		return nil, err
	}
	return &ioContext{ev: ev}, nil
}

// arm resets the completion event and clears the overlapped slot for a new
// operation.
func (c *ioContext) arm() error {
	if err := windows.ResetEvent(c.ev); err != nil {
		return err
	}
	c.ov = windows.Overlapped{HEvent: c.ev}
	return nil
}

func (c *ioContext) closeEvent() {
	if c.ev != 0 {
		_ = windows.CloseHandle(c.ev)
		c.ev = 0
	}
}

// winDevice implements device over an overlapped Win32 comm handle.
type winDevice struct {
	handle windows.Handle
	rd     *ioContext
	wr     *ioContext
}

// openSystemDevice acquires the named COM port for exclusive overlapped
// access and configures it.
func openSystemDevice(name string, config Config) (device, error) {
	path := name
	if !strings.HasPrefix(path, `\\.\`) {
		path = `\\.\` + path
	}
	pathp, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid port name %q", ErrOpenFailed, name)
	}

	handle, err := windows.CreateFile(
		pathp,
		windows.GENERIC_READ|windows.GENERIC_WRITE,
		0, // exclusive access
		nil,
		windows.OPEN_EXISTING,
		windows.FILE_ATTRIBUTE_NORMAL|windows.FILE_FLAG_OVERLAPPED,
		0,
	)
	if err != nil {
		if err == windows.ERROR_FILE_NOT_FOUND {
			return nil, fmt.Errorf("%w: %s", ErrDeviceUnavailable, name)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrOpenFailed, name, err)
	}

	d := &winDevice{handle: handle}
	if err := d.setLine(config); err != nil {
		_ = d.close()
		return nil, err
	}
	if err := d.applyTimeouts(config.Timeouts); err != nil {
		_ = d.close()
		return nil, err
	}
	if config.InBufferSize > 0 || config.OutBufferSize > 0 {
		r, _, callErr := procSetupComm.Call(uintptr(d.handle),
			uintptr(config.InBufferSize), uintptr(config.OutBufferSize))
		if r == 0 {
			_ = d.close()
			return nil, fmt.Errorf("%w: setup comm buffers: %v", ErrConfigurationFailed, callErr)
		}
	}

	// Raise an event per received byte.
	r, _, callErr := procSetCommMask.Call(uintptr(d.handle), evRxChar)
	if r == 0 {
		_ = d.close()
		return nil, fmt.Errorf("%w: set comm mask: %v", ErrConfigurationFailed, callErr)
	}

	if d.rd, err = newIOContext(); err != nil {
		_ = d.close()
		return nil, fmt.Errorf("%w: create read event: %v", ErrOpenFailed, err)
	}
	if d.wr, err = newIOContext(); err != nil {
		_ = d.close()
		return nil, fmt.Errorf("%w: create write event: %v", ErrOpenFailed, err)
	}

	return d, nil
}

func (d *winDevice) setLine(config Config) error {
	var block dcb
	block.DCBLength = uint32(unsafe.Sizeof(block))

	r, _, err := procGetCommState.Call(uintptr(d.handle), uintptr(unsafe.Pointer(&block)))
	if r == 0 {
		return fmt.Errorf("%w: get comm state: %v", ErrConfigurationFailed, err)
	}

	block.BaudRate = uint32(config.BaudRate)
	block.ByteSize = byte(config.DataBits)
	block.Parity = parityByte(config.Parity)
	block.StopBits = stopBitsByte(config.StopBits)
	block.Flags |= dcbFlagBinary
	if config.Parity == ParityNone {
		block.Flags &^= dcbFlagParity
	} else {
		block.Flags |= dcbFlagParity
	}

	r, _, err = procSetCommState.Call(uintptr(d.handle), uintptr(unsafe.Pointer(&block)))
	if r == 0 {
		return fmt.Errorf("%w: set comm state: %v", ErrConfigurationFailed, err)
	}
	return nil
}

func (d *winDevice) applyTimeouts(tp TimeoutPolicy) error {
	timeouts := commTimeouts{
		ReadIntervalTimeout:         durationMs(tp.ReadInterval),
		ReadTotalTimeoutMultiplier:  durationMs(tp.ReadTotalMultiplier),
		ReadTotalTimeoutConstant:    durationMs(tp.ReadTotalConstant),
		WriteTotalTimeoutMultiplier: durationMs(tp.WriteTotalMultiplier),
		WriteTotalTimeoutConstant:   durationMs(tp.WriteTotalConstant),
	}

	r, _, err := procSetCommTimeouts.Call(uintptr(d.handle), uintptr(unsafe.Pointer(&timeouts)))
	if r == 0 {
		return fmt.Errorf("%w: %v", ErrTimeoutConfigFailed, err)
	}
	return nil
}

// pending reads the driver's receive-queue depth. The same call clears any
// latched comm error; its failure is the disconnection signal the liveness
// checks rely on.
func (d *winDevice) pending() (int, error) {
	var commErrs uint32
	var stat comStat

	r, _, err := procClearCommError.Call(uintptr(d.handle),
		uintptr(unsafe.Pointer(&commErrs)), uintptr(unsafe.Pointer(&stat)))
	if r == 0 {
		return 0, fmt.Errorf("clear comm error: %v", err)
	}
	return int(stat.InQue), nil
}

// await blocks on the direction's completion event until the in-flight
// operation finishes or the timeout expires. It reports the transferred
// byte count, whether the operation completed, and the raw driver error
// from resolving the result. A timeout of zero or less waits indefinitely.
func (d *winDevice) await(c *ioContext, timeout time.Duration) (int, bool, error) {
	waitMs := uint32(windows.INFINITE)
	if timeout > 0 {
		waitMs = durationMs(timeout)
	}

	event, err := windows.WaitForSingleObject(c.ev, waitMs)
	switch event {
	case windows.WAIT_OBJECT_0:
	case windows.WAIT_TIMEOUT:
		return 0, false, nil
	default:
		return 0, false, fmt.Errorf("wait for completion: %v", err)
	}

	var done uint32
	if err := windows.GetOverlappedResult(d.handle, &c.ov, &done, false); err != nil {
		return int(done), true, err
	}
	return int(done), true, nil
}

// abort cancels the in-flight operation on c and blocks until the driver
// has released the buffer, returning the byte count transferred before the
// abort took effect. The blocking harvest is what makes the caller's buffer
// safe to reuse immediately after a timeout.
func (d *winDevice) abort(c *ioContext) int {
	_ = windows.CancelIoEx(d.handle, &c.ov)
	var done uint32
	_ = windows.GetOverlappedResult(d.handle, &c.ov, &done, true)
	return int(done)
}

func (d *winDevice) readExact(buf []byte, ceiling time.Duration) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}
	if err := d.rd.arm(); err != nil {
		return 0, fmt.Errorf("%w: arm read event: %v", ErrReadFailed, err)
	}

	var done uint32
	err := windows.ReadFile(d.handle, buf, &done, &d.rd.ov)
	if err == nil {
		return int(done), nil
	}
	if err != windows.ERROR_IO_PENDING {
		return 0, fmt.Errorf("%w: %v", ErrReadFailed, err)
	}

	n, completed, err := d.await(d.rd, ceiling)
	if !completed {
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrReadFailed, err)
		}
		// Ceiling expired. Abort and keep whatever arrived first.
		return d.abort(d.rd), nil
	}
	if err != nil {
		if err == windows.ERROR_OPERATION_ABORTED {
			return n, nil
		}
		return n, fmt.Errorf("%w: %v", ErrReadFailed, err)
	}
	return n, nil
}

func (d *winDevice) write(data []byte, timeout time.Duration) (bool, error) {
	if len(data) == 0 {
		return true, nil
	}
	if err := d.wr.arm(); err != nil {
		return false, fmt.Errorf("%w: arm write event: %v", ErrWriteFailed, err)
	}

	var done uint32
	err := windows.WriteFile(d.handle, data, &done, &d.wr.ov)
	if err == nil {
		return true, nil
	}
	if err != windows.ERROR_IO_PENDING {
		return false, fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}

	_, completed, err := d.await(d.wr, timeout)
	if !completed {
		if err != nil {
			return false, fmt.Errorf("%w: %v", ErrWriteFailed, err)
		}
		// Timed out. Abort so the buffer may be reused safely.
		d.abort(d.wr)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	return true, nil
}

func (d *winDevice) purge(mode purgeMode) error {
	var flags uintptr
	if mode&purgeInput != 0 {
		flags |= purgeFlagRxAbort | purgeFlagRxClear
	}
	if mode&purgeOutput != 0 {
		flags |= purgeFlagTxAbort | purgeFlagTxClear
	}

	r, _, err := procPurgeComm.Call(uintptr(d.handle), flags)
	if r == 0 {
		return fmt.Errorf("%w: purge comm: %v", ErrConfigurationFailed, err)
	}
	return nil
}

func (d *winDevice) setSignal(sig lineSignal, state bool) error {
	var fn uintptr
	switch {
	case sig == signalDTR && state:
		fn = commFunctionSetDTR
	case sig == signalDTR:
		fn = commFunctionClrDTR
	case sig == signalRTS && state:
		fn = commFunctionSetRTS
	default:
		fn = commFunctionClrRTS
	}

	r, _, err := procEscapeCommFunction.Call(uintptr(d.handle), fn)
	if r == 0 {
		return fmt.Errorf("%w: escape comm function: %v", ErrConfigurationFailed, err)
	}
	return nil
}

func (d *winDevice) modemSignals() (ModemSignals, error) {
	var status uint32
	r, _, err := procGetCommModemStatus.Call(uintptr(d.handle), uintptr(unsafe.Pointer(&status)))
	if r == 0 {
		return ModemSignals{}, fmt.Errorf("%w: get modem status: %v", ErrDisconnected, err)
	}

	return ModemSignals{
		CTS: status&msCTSOn != 0,
		DSR: status&msDSROn != 0,
		RI:  status&msRingOn != 0,
		DCD: status&msRLSDOn != 0,
	}, nil
}

func (d *winDevice) sendBreak(duration time.Duration) error {
	r, _, err := procSetCommBreak.Call(uintptr(d.handle))
	if r == 0 {
		return fmt.Errorf("%w: set break: %v", ErrWriteFailed, err)
	}
	time.Sleep(duration)

	r, _, err = procClearCommBreak.Call(uintptr(d.handle))
	if r == 0 {
		return fmt.Errorf("%w: clear break: %v", ErrWriteFailed, err)
	}
	return nil
}

// close releases the handle first, which cancels any in-flight transfers,
// and only then the direction events.
func (d *winDevice) close() error {
	var err error
	if d.handle != windows.InvalidHandle && d.handle != 0 {
		err = windows.CloseHandle(d.handle)
		d.handle = windows.InvalidHandle
	}
	if d.rd != nil {
		d.rd.closeEvent()
	}
	if d.wr != nil {
		d.wr.closeEvent()
	}
	return err
}
