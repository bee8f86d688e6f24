package serialport

import (
	"errors"
	"testing"
	"time"
)

func TestSetDTR(t *testing.T) {
	tests := []struct {
		name  string
		state bool
	}{
		{"DTR high", true},
		{"DTR low", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, opener := newTestRegistry()
			port, err := reg.Open("COM3")
			if err != nil {
				t.Fatalf("Open failed: %v", err)
			}

			if err := port.SetDTR(tt.state); err != nil {
				t.Fatalf("SetDTR(%v) failed: %v", tt.state, err)
			}

			dev := opener.last()
			dev.mu.Lock()
			defer dev.mu.Unlock()
			if len(dev.signalHistory) != 1 {
				t.Fatalf("Expected 1 signal change, got %d", len(dev.signalHistory))
			}
			if dev.signalHistory[0].sig != signalDTR || dev.signalHistory[0].state != tt.state {
				t.Errorf("Expected DTR=%v, got %+v", tt.state, dev.signalHistory[0])
			}
		})
	}
}

func TestSetRTS(t *testing.T) {
	tests := []struct {
		name  string
		state bool
	}{
		{"RTS high", true},
		{"RTS low", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, opener := newTestRegistry()
			port, err := reg.Open("COM3")
			if err != nil {
				t.Fatalf("Open failed: %v", err)
			}

			if err := port.SetRTS(tt.state); err != nil {
				t.Fatalf("SetRTS(%v) failed: %v", tt.state, err)
			}

			dev := opener.last()
			dev.mu.Lock()
			defer dev.mu.Unlock()
			if len(dev.signalHistory) != 1 {
				t.Fatalf("Expected 1 signal change, got %d", len(dev.signalHistory))
			}
			if dev.signalHistory[0].sig != signalRTS || dev.signalHistory[0].state != tt.state {
				t.Errorf("Expected RTS=%v, got %+v", tt.state, dev.signalHistory[0])
			}
		})
	}
}

func TestGetModemSignals(t *testing.T) {
	tests := []struct {
		name    string
		signals ModemSignals
	}{
		{"all low", ModemSignals{}},
		{"CTS only", ModemSignals{CTS: true}},
		{"DSR only", ModemSignals{DSR: true}},
		{"RI only", ModemSignals{RI: true}},
		{"DCD only", ModemSignals{DCD: true}},
		{"CTS and DSR", ModemSignals{CTS: true, DSR: true}},
		{"all high", ModemSignals{CTS: true, DSR: true, RI: true, DCD: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, opener := newTestRegistry()
			port, err := reg.Open("COM3")
			if err != nil {
				t.Fatalf("Open failed: %v", err)
			}
			opener.last().modem = tt.signals

			got, err := port.GetModemSignals()
			if err != nil {
				t.Fatalf("GetModemSignals failed: %v", err)
			}
			if got != tt.signals {
				t.Errorf("Expected %+v, got %+v", tt.signals, got)
			}
		})
	}
}

func TestModemSignalsOnClosedPort(t *testing.T) {
	reg, _ := newTestRegistry()
	port, err := reg.Open("COM3")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := port.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	t.Run("GetModemSignals", func(t *testing.T) {
		if _, err := port.GetModemSignals(); !errors.Is(err, ErrPortClosed) {
			t.Errorf("Expected ErrPortClosed, got %v", err)
		}
	})
	t.Run("SetRTS", func(t *testing.T) {
		if err := port.SetRTS(true); !errors.Is(err, ErrPortClosed) {
			t.Errorf("Expected ErrPortClosed, got %v", err)
		}
	})
	t.Run("SetDTR", func(t *testing.T) {
		if err := port.SetDTR(true); !errors.Is(err, ErrPortClosed) {
			t.Errorf("Expected ErrPortClosed, got %v", err)
		}
	})
	t.Run("SendBreak", func(t *testing.T) {
		if err := port.SendBreak(100 * time.Millisecond); !errors.Is(err, ErrPortClosed) {
			t.Errorf("Expected ErrPortClosed, got %v", err)
		}
	})
}

func TestSendBreak(t *testing.T) {
	reg, opener := newTestRegistry()
	port, err := reg.Open("COM3")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if err := port.SendBreak(250 * time.Millisecond); err != nil {
		t.Fatalf("SendBreak failed: %v", err)
	}

	dev := opener.last()
	dev.mu.Lock()
	defer dev.mu.Unlock()
	if len(dev.breakHistory) != 1 || dev.breakHistory[0] != 250*time.Millisecond {
		t.Errorf("Expected one 250ms break, got %v", dev.breakHistory)
	}
}

func TestSendBreakInvalidDuration(t *testing.T) {
	reg, _ := newTestRegistry()
	port, err := reg.Open("COM3")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if err := port.SendBreak(0); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for zero duration, got %v", err)
	}
	if err := port.SendBreak(-time.Second); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for negative duration, got %v", err)
	}
}

func TestFlushInput(t *testing.T) {
	reg, opener := newTestRegistry()
	port, err := reg.Open("COM3")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	dev := opener.last()
	dev.feed([]byte("garbage"))

	if err := port.FlushInput(); err != nil {
		t.Fatalf("FlushInput failed: %v", err)
	}

	n, err := port.PendingBytes()
	if err != nil {
		t.Fatalf("PendingBytes failed: %v", err)
	}
	if n != 0 {
		t.Errorf("Expected empty inbound buffer after flush, got %d", n)
	}

	dev.mu.Lock()
	defer dev.mu.Unlock()
	if len(dev.purgeHistory) != 1 || dev.purgeHistory[0] != purgeInput {
		t.Errorf("Expected one input purge, got %v", dev.purgeHistory)
	}
}

func TestFlushOutput(t *testing.T) {
	reg, opener := newTestRegistry()
	port, err := reg.Open("COM3")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if err := port.FlushOutput(); err != nil {
		t.Fatalf("FlushOutput failed: %v", err)
	}

	dev := opener.last()
	dev.mu.Lock()
	defer dev.mu.Unlock()
	if len(dev.purgeHistory) != 1 || dev.purgeHistory[0] != purgeOutput {
		t.Errorf("Expected one output purge, got %v", dev.purgeHistory)
	}
}
