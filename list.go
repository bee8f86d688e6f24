package serialport

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// PortInfo describes one discovered serial port
type PortInfo struct {
	Name         string // port identifier, e.g. "COM3"
	FriendlyName string // display name from the device tree
	HardwareID   string // first hardware identifier, e.g. "USB\VID_0403&PID_6001"
	Manufacturer string
}

// ListPorts returns the identifiers of the serial ports currently active on
// the system, in natural order (COM2 before COM10). A system without serial
// devices yields an empty list, not an error.
func ListPorts() ([]string, error) {
	return listSystemPorts()
}

// ListPortDetails returns metadata records for the serial ports known to
// the system device tree. Ports without detail records are omitted; a
// system without serial devices yields an empty list, not an error.
func ListPortDetails() ([]PortInfo, error) {
	return listSystemPortDetails()
}

// GetPortInfo returns detailed information about a specific port
func GetPortInfo(name string) (*PortInfo, error) {
	details, err := ListPortDetails()
	if err != nil {
		return nil, err
	}
	for i := range details {
		if strings.EqualFold(details[i].Name, name) {
			return &details[i], nil
		}
	}
	return nil, ErrDeviceUnavailable
}

// usbIDPattern matches the VID/PID pair embedded in Windows hardware
// identifiers such as "USB\VID_0403&PID_6001&REV_0600" or
// "FTDIBUS\COMPORT&VID_0403+PID_6001".
var usbIDPattern = regexp.MustCompile(`(?i)VID_([0-9A-F]{4})[&+]PID_([0-9A-F]{4})`)

// ParseUSBIdentifiers extracts the USB vendor and product IDs from a
// hardware identifier. It reports ok=false when the identifier carries no
// VID/PID pair, as is the case for legacy UART ports.
func ParseUSBIdentifiers(hardwareID string) (vid, pid string, ok bool) {
	m := usbIDPattern.FindStringSubmatch(hardwareID)
	if m == nil {
		return "", "", false
	}
	return strings.ToUpper(m[1]), strings.ToUpper(m[2]), true
}

// splitPortName separates an identifier like "COM12" into its alphabetic
// prefix and numeric suffix.
func splitPortName(name string) (prefix string, num int, numbered bool) {
	i := len(name)
	for i > 0 && name[i-1] >= '0' && name[i-1] <= '9' {
		i--
	}
	if i == len(name) {
		return name, 0, false
	}
	n, err := strconv.Atoi(name[i:])
	if err != nil {
		return name, 0, false
	}
	return name[:i], n, true
}

// lessPortName orders port identifiers naturally so COM2 precedes COM10.
func lessPortName(a, b string) bool {
	ap, an, aok := splitPortName(a)
	bp, bn, bok := splitPortName(b)
	if aok && bok && strings.EqualFold(ap, bp) {
		return an < bn
	}
	return a < b
}

// sortPorts sorts identifiers in place into natural order
func sortPorts(ports []string) {
	sort.Slice(ports, func(i, j int) bool {
		return lessPortName(ports[i], ports[j])
	})
}
