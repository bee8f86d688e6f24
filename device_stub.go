//go:build !windows

package serialport

// openSystemDevice reports that device access requires Windows. The
// portable core still builds everywhere so lifecycle and read-strategy
// logic can be exercised with substitute devices.
func openSystemDevice(name string, config Config) (device, error) {
	return nil, ErrUnsupportedPlatform
}
