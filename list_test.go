package serialport

import (
	"testing"
)

func TestSplitPortName(t *testing.T) {
	tests := []struct {
		name     string
		prefix   string
		num      int
		numbered bool
	}{
		{"COM1", "COM", 1, true},
		{"COM12", "COM", 12, true},
		{"COM007", "COM", 7, true},
		{"COM", "COM", 0, false},
		{"CNCA0", "CNCA", 0, true},
		{"", "", 0, false},
	}

	for _, tt := range tests {
		prefix, num, numbered := splitPortName(tt.name)
		if prefix != tt.prefix || num != tt.num || numbered != tt.numbered {
			t.Errorf("splitPortName(%q) = (%q, %d, %v), want (%q, %d, %v)",
				tt.name, prefix, num, numbered, tt.prefix, tt.num, tt.numbered)
		}
	}
}

func TestLessPortName(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"COM2", "COM10", true},
		{"COM10", "COM2", false},
		{"COM3", "COM3", false},
		{"COM1", "COM2", true},
		{"com2", "COM10", true},
		{"CNCA0", "COM1", true},
		{"COM", "COM2", true},
	}

	for _, tt := range tests {
		if got := lessPortName(tt.a, tt.b); got != tt.want {
			t.Errorf("lessPortName(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestSortPorts(t *testing.T) {
	ports := []string{"COM10", "COM2", "COM1", "CNCB0", "COM30", "COM3"}
	sortPorts(ports)

	want := []string{"CNCB0", "COM1", "COM2", "COM3", "COM10", "COM30"}
	for i := range want {
		if ports[i] != want[i] {
			t.Fatalf("Expected order %v, got %v", want, ports)
		}
	}
}

func TestParseUSBIdentifiers(t *testing.T) {
	tests := []struct {
		name       string
		hardwareID string
		vid        string
		pid        string
		ok         bool
	}{
		{
			name:       "plain USB identifier",
			hardwareID: `USB\VID_0403&PID_6001&REV_0600`,
			vid:        "0403",
			pid:        "6001",
			ok:         true,
		},
		{
			name:       "FTDI bus identifier with plus separator",
			hardwareID: `FTDIBUS\COMPORT&VID_0403+PID_6001`,
			vid:        "0403",
			pid:        "6001",
			ok:         true,
		},
		{
			name:       "lowercase identifier",
			hardwareID: `usb\vid_1a86&pid_7523`,
			vid:        "1A86",
			pid:        "7523",
			ok:         true,
		},
		{
			name:       "legacy UART without VID/PID",
			hardwareID: `ACPI\PNP0501`,
			ok:         false,
		},
		{
			name:       "truncated hex digits",
			hardwareID: `USB\VID_04&PID_60`,
			ok:         false,
		},
		{
			name:       "empty identifier",
			hardwareID: "",
			ok:         false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vid, pid, ok := ParseUSBIdentifiers(tt.hardwareID)
			if ok != tt.ok {
				t.Fatalf("ParseUSBIdentifiers(%q) ok = %v, want %v", tt.hardwareID, ok, tt.ok)
			}
			if vid != tt.vid || pid != tt.pid {
				t.Errorf("ParseUSBIdentifiers(%q) = (%q, %q), want (%q, %q)",
					tt.hardwareID, vid, pid, tt.vid, tt.pid)
			}
		})
	}
}

func BenchmarkParseUSBIdentifiers(b *testing.B) {
	for i := 0; i < b.N; i++ {
		ParseUSBIdentifiers(`FTDIBUS\COMPORT&VID_0403+PID_6001`)
	}
}

func BenchmarkSortPorts(b *testing.B) {
	base := []string{"COM10", "COM2", "COM1", "COM30", "COM3", "COM25", "COM4"}
	ports := make([]string, len(base))
	for i := 0; i < b.N; i++ {
		copy(ports, base)
		sortPorts(ports)
	}
}
