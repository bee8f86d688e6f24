/*
Copyright © 2025 Blitzdose
*/
package cmd

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	serialport "github.com/blitzdose/serial-port-win32"
	"github.com/spf13/cobra"
)

// readCmd represents the read command
var readCmd = &cobra.Command{
	Use:   "read <port>",
	Short: "Read data from a serial port",
	Long: `Read a bounded amount of data from a serial port and print it.

By default the command reads up to --count bytes, returning whatever
arrived when --timeout expires. With --until it instead accumulates bytes
until the given delimiter is seen, which is useful for line-oriented
protocols. The delimiter supports escape sequences such as \r, \n and \xNN.

Example usage:
  serialport read COM3 --count 64 --timeout 2s
  serialport read COM3 --until '\r\n'
  serialport read COM3 --until '\n' --max-size 1024 --hex`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		portName := args[0]

		baudRate := resolveBaud(cmd)
		count, _ := cmd.Flags().GetInt("count")
		until, _ := cmd.Flags().GetString("until")
		timeout, _ := cmd.Flags().GetDuration("timeout")
		maxSize, _ := cmd.Flags().GetInt("max-size")
		hexDump, _ := cmd.Flags().GetBool("hex")

		port, err := serialport.Open(portName, serialport.WithBaudRate(baudRate))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening port: %v\n", err)
			os.Exit(1)
		}
		defer port.Close()

		var data []byte
		var readErr error

		if until != "" {
			pattern, err := unescapeDelimiter(until)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Invalid delimiter: %v\n", err)
				os.Exit(1)
			}
			data, readErr = port.ReadUntilBounded(pattern, maxSize, timeout)
		} else {
			data, readErr = port.Read(count, timeout)
		}

		if len(data) > 0 {
			if hexDump {
				fmt.Print(hex.Dump(data))
			} else {
				os.Stdout.Write(data)
			}
		}

		switch {
		case readErr == nil:
		case errors.Is(readErr, serialport.ErrPatternNotFound):
			fmt.Fprintf(os.Stderr, "\nDelimiter not seen within %v (%d bytes received)\n", timeout, len(data))
			os.Exit(1)
		case errors.Is(readErr, serialport.ErrOverflow):
			fmt.Fprintf(os.Stderr, "\nAccumulated %d bytes without seeing the delimiter\n", len(data))
			os.Exit(1)
		default:
			fmt.Fprintf(os.Stderr, "\nRead error: %v\n", readErr)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(readCmd)

	readCmd.Flags().IntP("baud", "b", 115200, "Baud rate")
	readCmd.Flags().IntP("count", "c", 256, "Maximum number of bytes to read")
	readCmd.Flags().StringP("until", "u", "", "Read until this delimiter is seen (supports \\r, \\n, \\xNN)")
	readCmd.Flags().DurationP("timeout", "t", 5*time.Second, "How long to wait for data")
	readCmd.Flags().Int("max-size", 4096, "Maximum accumulator size when using --until (0 = unlimited)")
	readCmd.Flags().BoolP("hex", "x", false, "Print a hex dump instead of raw bytes")
}

// unescapeDelimiter interprets escape sequences in a delimiter argument so
// shells don't have to pass raw control characters.
func unescapeDelimiter(s string) ([]byte, error) {
	unquoted, err := strconv.Unquote(`"` + s + `"`)
	if err != nil {
		return nil, fmt.Errorf("cannot parse %q: %v", s, err)
	}
	return []byte(unquoted), nil
}
