package serialport

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"
)

func TestReadNRoundTrip(t *testing.T) {
	reg, opener := newTestRegistry()

	port, err := reg.Open("COM3")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	payload := []byte{0x00, 0x01, 0xFE, 0xFF, 0x7F}
	opener.last().feed(payload)

	got, err := port.ReadN(len(payload))
	if err != nil {
		t.Fatalf("ReadN failed: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("Expected %v, got %v", payload, got)
	}
}

func TestReadNBlocksUntilDelivery(t *testing.T) {
	reg, opener := newTestRegistry()

	port, err := reg.Open("COM3", WithPollInterval(time.Millisecond))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	go func() {
		time.Sleep(20 * time.Millisecond)
		opener.last().feed([]byte("late"))
	}()

	got, err := port.ReadN(4)
	if err != nil {
		t.Fatalf("ReadN failed: %v", err)
	}
	if string(got) != "late" {
		t.Errorf("Expected %q, got %q", "late", got)
	}
}

func TestReadNZero(t *testing.T) {
	reg, _ := newTestRegistry()

	port, err := reg.Open("COM3")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	got, err := port.ReadN(0)
	if err != nil {
		t.Fatalf("ReadN failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Expected empty result, got %v", got)
	}
}

func TestReadNContextCancellation(t *testing.T) {
	reg, _ := newTestRegistry()

	port, err := reg.Open("COM3", WithPollInterval(time.Millisecond))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = port.ReadNContext(ctx, 10)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected context.DeadlineExceeded, got %v", err)
	}
}

func TestReadNClosedPort(t *testing.T) {
	reg, _ := newTestRegistry()

	port, err := reg.Open("COM3")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := port.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if _, err := port.ReadN(1); !errors.Is(err, ErrPortClosed) {
		t.Errorf("Expected ErrPortClosed, got %v", err)
	}
}

func TestReadReturnsBufferedOnDeadline(t *testing.T) {
	reg, opener := newTestRegistry()

	port, err := reg.Open("COM3", WithPollInterval(time.Millisecond))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	opener.last().feed([]byte{0xCA, 0xFE, 0x42})

	timeout := 40 * time.Millisecond
	start := time.Now()
	got, err := port.Read(10, timeout)
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("Expected the 3 buffered bytes, got %d", len(got))
	}
	if elapsed < timeout {
		t.Errorf("Expected Read to hold until the deadline, returned after %v", elapsed)
	}
	if elapsed > timeout+500*time.Millisecond {
		t.Errorf("Expected Read to resolve near the deadline, took %v", elapsed)
	}
}

func TestReadResolvesEarlyWhenSatisfied(t *testing.T) {
	reg, opener := newTestRegistry()

	port, err := reg.Open("COM3", WithPollInterval(time.Millisecond))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	opener.last().feed([]byte("hello world"))

	start := time.Now()
	got, err := port.Read(5, 5*time.Second)
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if string(got) != "hello" {
		t.Errorf("Expected %q, got %q", "hello", got)
	}
	if elapsed > time.Second {
		t.Errorf("Expected immediate resolution, took %v", elapsed)
	}

	// The remainder stays buffered for the next read.
	n, err := port.PendingBytes()
	if err != nil {
		t.Fatalf("PendingBytes failed: %v", err)
	}
	if n != 6 {
		t.Errorf("Expected 6 bytes left buffered, got %d", n)
	}
}

func TestReadEmptyOnSilentDevice(t *testing.T) {
	reg, _ := newTestRegistry()

	port, err := reg.Open("COM3", WithPollInterval(time.Millisecond))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	got, err := port.Read(8, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Expected no bytes from silent device, got %v", got)
	}
}

func TestReadUntilStopsAtFirstMatch(t *testing.T) {
	reg, opener := newTestRegistry()

	port, err := reg.Open("COM3", WithPollInterval(time.Millisecond))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	// Two delimiter occurrences buffered; only the first terminates the read.
	opener.last().feed([]byte{0x01, 0x00, 0x02, 0x00})

	got, err := port.ReadUntil([]byte{0x00})
	if err != nil {
		t.Fatalf("ReadUntil failed: %v", err)
	}
	if !bytes.Equal(got, []byte{0x01, 0x00}) {
		t.Errorf("Expected [1 0], got %v", got)
	}

	n, err := port.PendingBytes()
	if err != nil {
		t.Fatalf("PendingBytes failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Expected 2 bytes left past the delimiter, got %d", n)
	}
}

func TestReadUntilMultiBytePattern(t *testing.T) {
	reg, opener := newTestRegistry()

	port, err := reg.Open("COM3", WithPollInterval(time.Millisecond))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	opener.last().feed([]byte("value=42\r\nnext"))

	got, err := port.ReadUntil([]byte{0x0D, 0x0A})
	if err != nil {
		t.Fatalf("ReadUntil failed: %v", err)
	}
	if string(got) != "value=42\r\n" {
		t.Errorf("Expected %q, got %q", "value=42\r\n", got)
	}
}

func TestReadUntilOverlappingPattern(t *testing.T) {
	reg, opener := newTestRegistry()

	port, err := reg.Open("COM3", WithPollInterval(time.Millisecond))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	// The first "a" must not be skipped while matching "ab".
	opener.last().feed([]byte("aab"))

	got, err := port.ReadUntil([]byte("ab"))
	if err != nil {
		t.Fatalf("ReadUntil failed: %v", err)
	}
	if string(got) != "aab" {
		t.Errorf("Expected %q, got %q", "aab", got)
	}
}

func TestReadUntilEmptyPattern(t *testing.T) {
	reg, opener := newTestRegistry()

	port, err := reg.Open("COM3")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	opener.last().feed([]byte("untouched"))

	got, err := port.ReadUntil(nil)
	if err != nil {
		t.Fatalf("ReadUntil failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Expected empty result for empty pattern, got %v", got)
	}

	n, err := port.PendingBytes()
	if err != nil {
		t.Fatalf("PendingBytes failed: %v", err)
	}
	if n != 9 {
		t.Errorf("Expected buffer untouched, got %d pending", n)
	}
}

func TestReadUntilBoundedOverflow(t *testing.T) {
	reg, opener := newTestRegistry()

	port, err := reg.Open("COM3", WithPollInterval(time.Millisecond))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	opener.last().feed([]byte("abcdef"))

	got, err := port.ReadUntilBounded([]byte("zz"), 4, time.Second)
	if !errors.Is(err, ErrOverflow) {
		t.Fatalf("Expected ErrOverflow, got %v", err)
	}
	if string(got) != "abcd" {
		t.Errorf("Expected partial result %q, got %q", "abcd", got)
	}
}

func TestReadUntilBoundedDeadline(t *testing.T) {
	reg, opener := newTestRegistry()

	port, err := reg.Open("COM3", WithPollInterval(time.Millisecond))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	opener.last().feed([]byte("incomplete"))

	got, err := port.ReadUntilBounded([]byte{0x0A}, 0, 30*time.Millisecond)
	if !errors.Is(err, ErrPatternNotFound) {
		t.Fatalf("Expected ErrPatternNotFound, got %v", err)
	}
	if string(got) != "incomplete" {
		t.Errorf("Expected accumulated bytes %q, got %q", "incomplete", got)
	}
}

func TestReadUntilContextCancellation(t *testing.T) {
	reg, opener := newTestRegistry()

	port, err := reg.Open("COM3", WithPollInterval(time.Millisecond))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	opener.last().feed([]byte("par"))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	got, err := port.ReadUntilContext(ctx, []byte{0x0A})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Expected context.DeadlineExceeded, got %v", err)
	}
	if string(got) != "par" {
		t.Errorf("Expected partial result %q, got %q", "par", got)
	}
}

// TestCommandResponseExchange drives the classic request/response shape:
// transmit a command, then collect the CRLF-terminated reply.
func TestCommandResponseExchange(t *testing.T) {
	reg, opener := newTestRegistry()

	port, err := reg.Open("COM3", WithPollInterval(time.Millisecond))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	dev := opener.last()

	ok, err := port.Write([]byte("PING"), time.Second)
	if err != nil || !ok {
		t.Fatalf("Write failed: ok=%v err=%v", ok, err)
	}

	dev.mu.Lock()
	sent := string(dev.written[0])
	dev.mu.Unlock()
	if sent != "PING" {
		t.Fatalf("Expected PING on the wire, got %q", sent)
	}

	dev.feed([]byte("PONG\r\n"))

	reply, err := port.ReadUntil([]byte{0x0D, 0x0A})
	if err != nil {
		t.Fatalf("ReadUntil failed: %v", err)
	}
	if string(reply) != "PONG\r\n" {
		t.Errorf("Expected %q, got %q", "PONG\r\n", reply)
	}
}

func TestReadDisconnectionSurfacesError(t *testing.T) {
	reg, opener := newTestRegistry()

	port, err := reg.Open("COM3", WithPollInterval(time.Millisecond))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	opener.last().failPending = true

	if _, err := port.Read(4, 50*time.Millisecond); !errors.Is(err, ErrDisconnected) {
		t.Errorf("Read: expected ErrDisconnected, got %v", err)
	}
	if port.IsOpen() {
		t.Error("Expected port closed after disconnection during read")
	}
}
