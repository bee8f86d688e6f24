//go:build windows

package serialport

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"
)

// serialCommKey maps device paths to the port names currently active.
const serialCommKey = `HARDWARE\DEVICEMAP\SERIALCOMM`

func listSystemPorts() ([]string, error) {
	key, err := registry.OpenKey(registry.LOCAL_MACHINE, serialCommKey, registry.QUERY_VALUE)
	if err != nil {
		// The key does not exist on systems that never had a serial
		// device; that is an empty result, not a failure.
		if err == registry.ErrNotExist {
			return []string{}, nil
		}
		return nil, fmt.Errorf("%w: open %s: %v", ErrRegistryLookupFailed, serialCommKey, err)
	}
	defer key.Close()

	names, err := key.ReadValueNames(-1)
	if err != nil {
		return nil, fmt.Errorf("%w: enumerate %s: %v", ErrRegistryLookupFailed, serialCommKey, err)
	}

	ports := make([]string, 0, len(names))
	for _, name := range names {
		port, _, err := key.GetStringValue(name)
		if err != nil || port == "" {
			continue
		}
		ports = append(ports, port)
	}
	sortPorts(ports)
	return ports, nil
}

// deviceClassPortsGUID is the Ports (COM & LPT) device setup class,
// {4D36E978-E325-11CE-BFC1-08002BE10318}.
var deviceClassPortsGUID = windows.GUID{
	Data1: 0x4d36e978,
	Data2: 0xe325,
	Data3: 0x11ce,
	Data4: [8]byte{0xbf, 0xc1, 0x08, 0x00, 0x2b, 0xe1, 0x03, 0x18},
}

func listSystemPortDetails() ([]PortInfo, error) {
	devInfo, err := windows.SetupDiGetClassDevsEx(&deviceClassPortsGUID, "", 0, windows.DIGCF_PRESENT, 0, "")
	if err != nil {
		return nil, fmt.Errorf("%w: enumerate ports device class: %v", ErrRegistryLookupFailed, err)
	}
	defer devInfo.Close()

	var infos []PortInfo
	for i := 0; ; i++ {
		data, err := devInfo.EnumDeviceInfo(i)
		if err != nil {
			if err == windows.ERROR_NO_MORE_ITEMS {
				break
			}
			continue
		}

		// The class covers parallel ports too; only members with a
		// COM port name are serial.
		name := devicePortName(devInfo, data)
		if !strings.HasPrefix(strings.ToUpper(name), "COM") {
			continue
		}

		info := PortInfo{Name: name}
		if v, err := devInfo.DeviceRegistryProperty(data, windows.SPDRP_FRIENDLYNAME); err == nil {
			if s, ok := v.(string); ok {
				info.FriendlyName = s
			}
		}
		if v, err := devInfo.DeviceRegistryProperty(data, windows.SPDRP_HARDWAREID); err == nil {
			switch ids := v.(type) {
			case []string:
				if len(ids) > 0 {
					info.HardwareID = ids[0]
				}
			case string:
				info.HardwareID = ids
			}
		}
		if v, err := devInfo.DeviceRegistryProperty(data, windows.SPDRP_MFG); err == nil {
			if s, ok := v.(string); ok {
				info.Manufacturer = s
			}
		}
		infos = append(infos, info)
	}

	sort.Slice(infos, func(i, j int) bool {
		return lessPortName(infos[i].Name, infos[j].Name)
	})
	return infos, nil
}

// devicePortName reads the PortName value from the device's hardware key.
func devicePortName(devInfo windows.DevInfo, data *windows.DevInfoData) string {
	key, err := devInfo.OpenDevRegKey(data, windows.DICS_FLAG_GLOBAL, 0, windows.DIREG_DEV, registry.QUERY_VALUE)
	if err != nil {
		return ""
	}
	defer key.Close()

	name, _, err := key.GetStringValue("PortName")
	if err != nil {
		return ""
	}
	return name
}
