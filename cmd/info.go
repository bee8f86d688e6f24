/*
Copyright © 2025 Blitzdose
*/
package cmd

import (
	"fmt"
	"os"

	serialport "github.com/blitzdose/serial-port-win32"
	"github.com/spf13/cobra"
)

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info <port>",
	Short: "Display detailed information about a serial port",
	Long: `Display detailed information about a serial port including USB metadata.

Examples:
  serialport info COM3
  serialport info COM7

For USB devices, this displays the vendor and product IDs parsed from the
hardware identifier along with the manufacturer string from the device tree.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		portName := args[0]

		info, err := serialport.GetPortInfo(portName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting port info: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Port Information: %s\n\n", info.Name)
		if info.FriendlyName != "" {
			fmt.Printf("  Friendly Name: %s\n", info.FriendlyName)
		}
		if info.Manufacturer != "" {
			fmt.Printf("  Manufacturer:  %s\n", info.Manufacturer)
		}
		if info.HardwareID != "" {
			fmt.Printf("  Hardware ID:   %s\n", info.HardwareID)
		}

		if vid, pid, ok := serialport.ParseUSBIdentifiers(info.HardwareID); ok {
			fmt.Println("\nUSB Device Information:")
			fmt.Printf("  Vendor ID:  %s\n", vid)
			fmt.Printf("  Product ID: %s\n", pid)
		}
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
