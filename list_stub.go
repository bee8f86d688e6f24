//go:build !windows

package serialport

func listSystemPorts() ([]string, error) {
	return nil, ErrUnsupportedPlatform
}

func listSystemPortDetails() ([]PortInfo, error) {
	return nil, ErrUnsupportedPlatform
}
