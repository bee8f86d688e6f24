package serialport

import (
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeDevice is a scripted in-memory device for exercising the portable
// core without hardware. Inbound bytes are staged with feed; reads consume
// them in order.
type fakeDevice struct {
	mu sync.Mutex

	rx      []byte
	written [][]byte
	closed  bool

	failPending  bool // status queries fail, as after a surprise removal
	writeTimeout bool // writes report a timed-out transfer

	lineHistory    []Config
	timeoutHistory []TimeoutPolicy
	purgeHistory   []purgeMode
	signalHistory  []struct {
		sig   lineSignal
		state bool
	}
	breakHistory []time.Duration
	modem        ModemSignals
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{}
}

func (f *fakeDevice) feed(b []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rx = append(f.rx, b...)
}

func (f *fakeDevice) pending() (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failPending {
		return 0, errors.New("status query failed")
	}
	return len(f.rx), nil
}

func (f *fakeDevice) readExact(buf []byte, ceiling time.Duration) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := copy(buf, f.rx)
	f.rx = f.rx[n:]
	return n, nil
}

func (f *fakeDevice) write(data []byte, timeout time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeTimeout {
		return false, nil
	}
	f.written = append(f.written, append([]byte(nil), data...))
	return true, nil
}

func (f *fakeDevice) setLine(config Config) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lineHistory = append(f.lineHistory, config)
	return nil
}

func (f *fakeDevice) applyTimeouts(tp TimeoutPolicy) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.timeoutHistory = append(f.timeoutHistory, tp)
	return nil
}

func (f *fakeDevice) purge(mode purgeMode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.purgeHistory = append(f.purgeHistory, mode)
	if mode&purgeInput != 0 {
		f.rx = nil
	}
	return nil
}

func (f *fakeDevice) setSignal(sig lineSignal, state bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signalHistory = append(f.signalHistory, struct {
		sig   lineSignal
		state bool
	}{sig, state})
	return nil
}

func (f *fakeDevice) modemSignals() (ModemSignals, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.modem, nil
}

func (f *fakeDevice) sendBreak(d time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.breakHistory = append(f.breakHistory, d)
	return nil
}

func (f *fakeDevice) close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// fakeOpener hands out fake devices and records every acquisition.
type fakeOpener struct {
	mu      sync.Mutex
	openErr error
	next    *fakeDevice
	devices []*fakeDevice
	configs []Config
}

func (o *fakeOpener) open(name string, config Config) (device, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.openErr != nil {
		return nil, o.openErr
	}
	d := o.next
	o.next = nil
	if d == nil {
		d = newFakeDevice()
	}
	// Acquisition configures the device, like the system opener.
	if err := d.setLine(config); err != nil {
		return nil, err
	}
	if err := d.applyTimeouts(config.Timeouts); err != nil {
		return nil, err
	}
	o.devices = append(o.devices, d)
	o.configs = append(o.configs, config)
	return d, nil
}

func (o *fakeOpener) last() *fakeDevice {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.devices) == 0 {
		return nil
	}
	return o.devices[len(o.devices)-1]
}

func (o *fakeOpener) openCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.devices)
}

// newTestRegistry wires a registry to a fake opener.
func newTestRegistry() (*Registry, *fakeOpener) {
	opener := &fakeOpener{}
	reg := NewRegistry()
	reg.opener = opener.open
	return reg, opener
}

func TestOpenAlreadyOpen(t *testing.T) {
	reg, _ := newTestRegistry()

	first, err := reg.Open("COM3")
	if err != nil {
		t.Fatalf("first Open failed: %v", err)
	}
	if !first.IsOpen() {
		t.Fatal("Expected port to be open after Open")
	}

	_, err = reg.Open("COM3")
	if !errors.Is(err, ErrAlreadyOpen) {
		t.Errorf("Expected ErrAlreadyOpen, got %v", err)
	}
}

func TestReopenReusesInstance(t *testing.T) {
	reg, opener := newTestRegistry()

	first, err := reg.Open("COM3")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	second, err := reg.Open("COM3", WithBaudRate(115200))
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if first != second {
		t.Error("Expected reopen to return the cached instance")
	}
	if opener.openCount() != 2 {
		t.Errorf("Expected 2 device acquisitions, got %d", opener.openCount())
	}
	if got := second.Config().BaudRate; got != 115200 {
		t.Errorf("Expected reconfigured baud rate 115200, got %d", got)
	}
}

func TestCloseIdempotent(t *testing.T) {
	reg, opener := newTestRegistry()

	port, err := reg.Open("COM3")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := port.Close(); err != nil {
			t.Errorf("Close call %d returned %v", i+1, err)
		}
	}
	if !opener.last().closed {
		t.Error("Expected device to be released")
	}
	if port.IsOpen() {
		t.Error("Expected port to report closed")
	}
}

func TestOpenPropagatesDeviceErrors(t *testing.T) {
	reg, opener := newTestRegistry()
	opener.openErr = ErrDeviceUnavailable

	_, err := reg.Open("COM9")
	if !errors.Is(err, ErrDeviceUnavailable) {
		t.Errorf("Expected ErrDeviceUnavailable, got %v", err)
	}

	// The registration survives the failed open and a retry succeeds.
	opener.openErr = nil
	port, err := reg.Open("COM9")
	if err != nil {
		t.Fatalf("retry Open failed: %v", err)
	}
	if !port.IsOpen() {
		t.Error("Expected port open after retry")
	}
}

func TestDeferredOpen(t *testing.T) {
	reg, opener := newTestRegistry()

	port, err := reg.Open("COM3", WithDeferredOpen())
	if err != nil {
		t.Fatalf("deferred Open failed: %v", err)
	}
	if port.IsOpen() {
		t.Error("Expected deferred port to stay closed")
	}
	if opener.openCount() != 0 {
		t.Errorf("Expected no device acquisition, got %d", opener.openCount())
	}

	if err := port.Open(); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if !port.IsOpen() {
		t.Error("Expected port open after explicit Open")
	}
	if err := port.Open(); !errors.Is(err, ErrAlreadyOpen) {
		t.Errorf("Expected ErrAlreadyOpen on second Open, got %v", err)
	}
}

func TestPendingBytesFreshOpen(t *testing.T) {
	reg, _ := newTestRegistry()

	port, err := reg.Open("COM3")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	start := time.Now()
	n, err := port.PendingBytes()
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("PendingBytes failed: %v", err)
	}
	if n != 0 {
		t.Errorf("Expected 0 pending bytes after fresh open, got %d", n)
	}
	if elapsed > 100*time.Millisecond {
		t.Errorf("Expected non-blocking probe, took %v", elapsed)
	}
}

func TestDisconnectionClosesPort(t *testing.T) {
	reg, opener := newTestRegistry()

	port, err := reg.Open("COM3")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	opener.last().failPending = true

	_, err = port.PendingBytes()
	if !errors.Is(err, ErrDisconnected) {
		t.Fatalf("Expected ErrDisconnected, got %v", err)
	}
	if port.IsOpen() {
		t.Error("Expected port closed after disconnection")
	}
	if !opener.last().closed {
		t.Error("Expected device released after disconnection")
	}
	if _, err := port.PendingBytes(); !errors.Is(err, ErrPortClosed) {
		t.Errorf("Expected ErrPortClosed after disconnection, got %v", err)
	}
}

func TestIsOpenTearsDownDeadConnection(t *testing.T) {
	reg, opener := newTestRegistry()

	port, err := reg.Open("COM3")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	opener.last().failPending = true

	if port.IsOpen() {
		t.Error("Expected IsOpen to report false for dead device")
	}
	if !opener.last().closed {
		t.Error("Expected liveness check to release the device")
	}
}

func TestWrite(t *testing.T) {
	reg, opener := newTestRegistry()

	port, err := reg.Open("COM3")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	ok, err := port.Write([]byte{0x50, 0x49, 0x4E, 0x47}, time.Second)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if !ok {
		t.Error("Expected write to complete")
	}

	dev := opener.last()
	dev.mu.Lock()
	defer dev.mu.Unlock()
	if len(dev.written) != 1 || string(dev.written[0]) != "PING" {
		t.Errorf("Expected device to receive PING, got %q", dev.written)
	}
}

func TestWriteTimeoutReturnsFalse(t *testing.T) {
	reg, opener := newTestRegistry()

	port, err := reg.Open("COM3")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	opener.last().writeTimeout = true

	ok, err := port.Write([]byte("data"), 10*time.Millisecond)
	if err != nil {
		t.Fatalf("Expected no error on write timeout, got %v", err)
	}
	if ok {
		t.Error("Expected false result on write timeout")
	}
}

func TestWriteEmpty(t *testing.T) {
	reg, _ := newTestRegistry()

	port, err := reg.Open("COM3")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	ok, err := port.Write(nil, time.Second)
	if err != nil || !ok {
		t.Errorf("Expected empty write to succeed, got ok=%v err=%v", ok, err)
	}
}

func TestOperationsOnClosedPort(t *testing.T) {
	reg, _ := newTestRegistry()

	port, err := reg.Open("COM3")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := port.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if _, err := port.Write([]byte("x"), time.Second); !errors.Is(err, ErrPortClosed) {
		t.Errorf("Write: expected ErrPortClosed, got %v", err)
	}
	if _, err := port.PendingBytes(); !errors.Is(err, ErrPortClosed) {
		t.Errorf("PendingBytes: expected ErrPortClosed, got %v", err)
	}
	if err := port.SetBaudRate(19200); !errors.Is(err, ErrPortClosed) {
		t.Errorf("SetBaudRate: expected ErrPortClosed, got %v", err)
	}
	if err := port.SetDTR(true); !errors.Is(err, ErrPortClosed) {
		t.Errorf("SetDTR: expected ErrPortClosed, got %v", err)
	}
	if err := port.FlushInput(); !errors.Is(err, ErrPortClosed) {
		t.Errorf("FlushInput: expected ErrPortClosed, got %v", err)
	}
}

func TestLineSetterAppliesAndPurges(t *testing.T) {
	reg, opener := newTestRegistry()

	port, err := reg.Open("COM3")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	dev := opener.last()
	dev.feed([]byte("stale"))

	if err := port.SetBaudRate(115200); err != nil {
		t.Fatalf("SetBaudRate failed: %v", err)
	}

	if got := port.Config().BaudRate; got != 115200 {
		t.Errorf("Expected stored baud rate 115200, got %d", got)
	}

	dev.mu.Lock()
	lineCalls := len(dev.lineHistory)
	lastLine := dev.lineHistory[lineCalls-1]
	purges := append([]purgeMode(nil), dev.purgeHistory...)
	dev.mu.Unlock()

	// One call at open, one for the setter.
	if lineCalls != 2 {
		t.Fatalf("Expected 2 line configurations, got %d", lineCalls)
	}
	if lastLine.BaudRate != 115200 {
		t.Errorf("Expected device baud rate 115200, got %d", lastLine.BaudRate)
	}
	if len(purges) != 1 || purges[0] != purgeAll {
		t.Errorf("Expected one full purge after line change, got %v", purges)
	}

	// The purge discarded the stale inbound bytes.
	n, err := port.PendingBytes()
	if err != nil {
		t.Fatalf("PendingBytes failed: %v", err)
	}
	if n != 0 {
		t.Errorf("Expected 0 pending bytes after line change, got %d", n)
	}
}

func TestLineSetterValidation(t *testing.T) {
	reg, _ := newTestRegistry()

	port, err := reg.Open("COM3")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if err := port.SetBaudRate(123456); !errors.Is(err, ErrInvalidBaudRate) {
		t.Errorf("Expected ErrInvalidBaudRate, got %v", err)
	}
	if err := port.SetDataBits(9); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for 9 data bits, got %v", err)
	}
	if err := port.SetStopBits(StopBits(7)); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for bad stop bits, got %v", err)
	}
	if err := port.SetParity(Parity(42)); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for bad parity, got %v", err)
	}
}

func TestTimeoutSetters(t *testing.T) {
	reg, opener := newTestRegistry()

	port, err := reg.Open("COM3")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if err := port.SetReadIntervalTimeout(50 * time.Millisecond); err != nil {
		t.Fatalf("SetReadIntervalTimeout failed: %v", err)
	}
	if err := port.SetWriteTotalTimeouts(time.Second, 10*time.Millisecond); err != nil {
		t.Fatalf("SetWriteTotalTimeouts failed: %v", err)
	}

	tp := port.Config().Timeouts
	if tp.ReadInterval != 50*time.Millisecond {
		t.Errorf("Expected ReadInterval 50ms, got %v", tp.ReadInterval)
	}
	if tp.WriteTotalConstant != time.Second || tp.WriteTotalMultiplier != 10*time.Millisecond {
		t.Errorf("Unexpected write timeouts: %+v", tp)
	}

	dev := opener.last()
	dev.mu.Lock()
	applied := len(dev.timeoutHistory)
	dev.mu.Unlock()
	// One at open plus one per setter.
	if applied != 3 {
		t.Errorf("Expected 3 timeout applications, got %d", applied)
	}

	if err := port.SetReadIntervalTimeout(-time.Second); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for negative timeout, got %v", err)
	}
}

func TestOpenNonExistentDevice(t *testing.T) {
	_, err := Open("COM250")
	if err == nil {
		t.Error("Expected error when opening non-existent device")
	}
}
