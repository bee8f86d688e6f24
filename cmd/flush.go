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

// flushCmd represents the flush command
var flushCmd = &cobra.Command{
	Use:   "flush <port>",
	Short: "Discard buffered serial data",
	Long: `Discard data buffered by the driver for a serial port. This can recover
a conversation that has drifted out of sync, for example after a device
rebooted mid-frame and left half a message in the inbound queue.

By default both directions are flushed. Use --input or --output to flush
only one direction. With --break the transmit line is additionally held
in break state afterwards, which many devices treat as a reset signal.

Examples:
  serialport flush COM3
  serialport flush COM3 --input
  serialport flush COM3 --break 250ms`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		portName := args[0]

		inputOnly, _ := cmd.Flags().GetBool("input")
		outputOnly, _ := cmd.Flags().GetBool("output")
		breakDuration, _ := cmd.Flags().GetDuration("break")

		if inputOnly && outputOnly {
			fmt.Fprintln(os.Stderr, "Error: --input and --output are mutually exclusive (omit both to flush everything)")
			os.Exit(1)
		}

		port, err := serialport.Open(portName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening port: %v\n", err)
			os.Exit(1)
		}
		defer port.Close()

		queued, err := port.PendingBytes()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error querying port: %v\n", err)
			os.Exit(1)
		}

		if !outputOnly {
			if err := port.FlushInput(); err != nil {
				fmt.Fprintf(os.Stderr, "Error flushing inbound buffer: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("Discarded inbound buffer (%d bytes were queued)\n", queued)
		}
		if !inputOnly {
			if err := port.FlushOutput(); err != nil {
				fmt.Fprintf(os.Stderr, "Error flushing outbound buffer: %v\n", err)
				os.Exit(1)
			}
			fmt.Println("Discarded outbound buffer")
		}

		if breakDuration > 0 {
			if err := port.SendBreak(breakDuration); err != nil {
				fmt.Fprintf(os.Stderr, "Error sending break: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("Held break state for %v\n", breakDuration)
		}
	},
}

func init() {
	rootCmd.AddCommand(flushCmd)

	flushCmd.Flags().Bool("input", false, "Flush only the inbound buffer")
	flushCmd.Flags().Bool("output", false, "Flush only the outbound buffer")
	flushCmd.Flags().Duration("break", 0, "Send a break condition of this duration after flushing")
}
