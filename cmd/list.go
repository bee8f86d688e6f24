/*
Copyright © 2025 Blitzdose
*/
package cmd

import (
	"fmt"
	"os"
	"strings"

	serialport "github.com/blitzdose/serial-port-win32"
	"github.com/charmbracelet/lipgloss"
	"github.com/evertras/bubble-table/table"
	"github.com/spf13/cobra"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available serial ports",
	Long: `List the serial ports currently active on the system.

Port names come from the registry's active port map, so only ports that
are actually present are shown. Use --details for a table with friendly
names, hardware identifiers and manufacturer strings from the device tree.

Examples:
  serialport list
  serialport list --details
  serialport list --details --filter usb`,
	Run: func(cmd *cobra.Command, args []string) {
		showDetails, _ := cmd.Flags().GetBool("details")
		filterType, _ := cmd.Flags().GetString("filter")

		if showDetails {
			renderDetails(filterType)
			return
		}

		ports, err := serialport.ListPorts()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing ports: %v\n", err)
			os.Exit(1)
		}

		if len(ports) == 0 {
			fmt.Println("No serial ports found")
			return
		}

		for _, port := range ports {
			fmt.Println(port)
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().BoolP("details", "d", false, "Display a table with device metadata")
	listCmd.Flags().StringP("filter", "f", "", "Filter by port type: usb, legacy, all")
}

// filterDetails keeps only the ports matching the requested type. USB ports
// are recognized by the VID/PID pair in their hardware identifier.
func filterDetails(details []serialport.PortInfo, filterType string) []serialport.PortInfo {
	if filterType == "" || strings.EqualFold(filterType, "all") {
		return details
	}

	var filtered []serialport.PortInfo
	for _, info := range details {
		_, _, isUSB := serialport.ParseUSBIdentifiers(info.HardwareID)
		switch strings.ToLower(filterType) {
		case "usb":
			if isUSB {
				filtered = append(filtered, info)
			}
		case "legacy":
			if !isUSB {
				filtered = append(filtered, info)
			}
		}
	}
	return filtered
}

// renderDetails prints the port metadata as a styled table.
func renderDetails(filterType string) {
	details, err := serialport.ListPortDetails()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing port details: %v\n", err)
		os.Exit(1)
	}

	details = filterDetails(details, filterType)
	if len(details) == 0 {
		if filterType != "" {
			fmt.Printf("No serial ports found matching filter: %s\n", filterType)
		} else {
			fmt.Println("No serial ports found")
		}
		return
	}

	columns := []table.Column{
		table.NewColumn("port", "Port", 8),
		table.NewColumn("name", "Friendly Name", 36),
		table.NewColumn("usb", "VID:PID", 10),
		table.NewColumn("mfg", "Manufacturer", 24),
	}

	rows := make([]table.Row, 0, len(details))
	for _, info := range details {
		usbID := "-"
		if vid, pid, ok := serialport.ParseUSBIdentifiers(info.HardwareID); ok {
			usbID = fmt.Sprintf("%s:%s", vid, pid)
		}
		rows = append(rows, table.NewRow(table.RowData{
			"port": info.Name,
			"name": info.FriendlyName,
			"usb":  usbID,
			"mfg":  info.Manufacturer,
		}))
	}

	t := table.New(columns).
		WithRows(rows).
		WithBaseStyle(lipgloss.NewStyle().Align(lipgloss.Left)).
		BorderRounded()

	fmt.Printf("Found %d serial port(s):\n\n", len(details))
	fmt.Println(t.View())
}
