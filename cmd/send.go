/*
Copyright © 2025 Blitzdose
*/
package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	serialport "github.com/blitzdose/serial-port-win32"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send [data] <port>",
	Short: "Send data to a serial port",
	Long: `Send data to a serial port with configurable options.

This command sends data to the specified serial port. Data can be provided as:
- Command line argument: send "Hello World" COM3
- From stdin (pipe): echo test data | serialport send COM3
- Interactive mode: serialport send COM3 (prompts for input)

Features include:
- Multiple input methods (argument, stdin, interactive)
- Configurable baud rate and line parameters
- Automatic line endings (--newline flag)
- Hex input support (--hex flag)
- Text encoding selection (--encoding) and NUL termination (--nul)
- Connection status feedback with styled output

Example usage:
  serialport send "Hello World" COM3
  serialport send "AT+GMR" COM3 --newline
  serialport send "Ä10" COM3 --encoding windows1252 --nul
  echo test | serialport send COM3
  serialport send COM3  # Interactive mode`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var data string
		var portName string

		// Parse arguments: either "send data port" or "send port"
		if len(args) == 1 {
			portName = args[0]
			// Check if we have stdin data
			stat, err := os.Stdin.Stat()
			if err != nil || (stat.Mode()&os.ModeCharDevice) != 0 {
				// No pipe input, use interactive mode
				data = promptForData()
			} else {
				// Read from stdin
				stdinData, err := io.ReadAll(os.Stdin)
				if err != nil {
					fmt.Fprintf(os.Stderr, "Error reading from stdin: %v\n", err)
					os.Exit(1)
				}
				data = strings.TrimRight(string(stdinData), "\r\n")
			}
		} else {
			data = args[0]
			portName = args[1]
		}

		baudRate := resolveBaud(cmd)
		addNewline, _ := cmd.Flags().GetBool("newline")
		hexMode, _ := cmd.Flags().GetBool("hex")
		timeout, _ := cmd.Flags().GetDuration("timeout")
		encodingName, _ := cmd.Flags().GetString("encoding")
		nulTerminated, _ := cmd.Flags().GetBool("nul")

		// Hex input is already exact bytes; re-encoding it makes no sense.
		if hexMode && (encodingName != "" || nulTerminated) {
			fmt.Fprintf(os.Stderr, "Error: --encoding and --nul apply to text data, not --hex\n")
			os.Exit(1)
		}

		enc, err := resolveEncoding(encodingName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		opts := []serialport.Option{
			serialport.WithBaudRate(baudRate),
		}

		// Process data based on flags
		if hexMode {
			processedData, err := parseHexString(data)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Invalid hex data: %v\n", err)
				os.Exit(1)
			}
			data = processedData
		}

		if addNewline && !hexMode {
			data += "\r\n"
		}

		if err := sendData(portName, data, enc, nulTerminated, timeout, opts...); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)

	sendCmd.Flags().IntP("baud", "b", 115200, "Baud rate")
	sendCmd.Flags().BoolP("newline", "n", false, "Append CRLF to the end of data")
	sendCmd.Flags().BoolP("hex", "x", false, "Interpret data as hexadecimal (e.g., '48656c6c6f' for 'Hello')")
	sendCmd.Flags().DurationP("timeout", "t", 5*time.Second, "Timeout for sending data")
	sendCmd.Flags().StringP("encoding", "e", "", "Text encoding: utf8, latin1, windows1252, utf16le, utf16be")
	sendCmd.Flags().Bool("nul", false, "Append a NUL terminator after encoding")
}

// resolveEncoding maps a flag value to a character encoding. An empty name
// selects UTF-8 passthrough.
func resolveEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(name) {
	case "", "utf8", "utf-8":
		return nil, nil
	case "latin1", "iso8859-1", "iso-8859-1":
		return charmap.ISO8859_1, nil
	case "windows1252", "cp1252":
		return charmap.Windows1252, nil
	case "utf16le", "utf-16le":
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM), nil
	case "utf16be", "utf-16be":
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM), nil
	default:
		return nil, fmt.Errorf("unknown encoding %q (valid: utf8, latin1, windows1252, utf16le, utf16be)", name)
	}
}

func promptForData() string {
	// Styled prompt
	promptStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("99"))

	fmt.Print(promptStyle.Render("Enter data to send: "))

	scanner := bufio.NewScanner(os.Stdin)
	if scanner.Scan() {
		return scanner.Text()
	}
	return ""
}

func parseHexString(hexStr string) (string, error) {
	// Remove common hex prefixes and whitespace
	hexStr = strings.ReplaceAll(hexStr, " ", "")
	hexStr = strings.ReplaceAll(hexStr, "0x", "")
	hexStr = strings.ReplaceAll(hexStr, "0X", "")

	if len(hexStr)%2 != 0 {
		return "", fmt.Errorf("hex string must have even length")
	}

	var result strings.Builder
	for i := 0; i < len(hexStr); i += 2 {
		hexByte := hexStr[i : i+2]
		var b byte
		if _, err := fmt.Sscanf(hexByte, "%x", &b); err != nil {
			return "", fmt.Errorf("invalid hex byte '%s': %v", hexByte, err)
		}
		result.WriteByte(b)
	}

	return result.String(), nil
}

func sendData(portName, data string, enc encoding.Encoding, nulTerminated bool, timeout time.Duration, opts ...serialport.Option) error {
	// Styled output
	infoStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("99")).
		Bold(true)

	successStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("40")).
		Bold(true)

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("196")).
		Bold(true)

	warnStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("214")).
		Bold(true)

	// Show connection attempt
	fmt.Printf("%s Opening %s...\n", infoStyle.Render("⚡"), portName)

	port, err := serialport.Open(portName, opts...)
	if err != nil {
		return fmt.Errorf("%s %v", errorStyle.Render("✗"), err)
	}
	defer port.Close()

	fmt.Printf("%s Connected successfully\n", successStyle.Render("✓"))

	payload, err := serialport.EncodeText(data, enc, nulTerminated)
	if err != nil {
		return fmt.Errorf("%s failed to encode data: %v", errorStyle.Render("✗"), err)
	}

	fmt.Printf("%s Sending %d bytes...\n", infoStyle.Render("📤"), len(payload))

	ok, err := port.Write(payload, timeout)
	if err != nil {
		return fmt.Errorf("%s failed to send data: %v", errorStyle.Render("✗"), err)
	}
	if !ok {
		// The transfer was cancelled cleanly; nothing is left queued.
		fmt.Printf("%s Transfer timed out after %v, nothing sent\n", warnStyle.Render("⧖"), timeout)
		os.Exit(1)
	}

	fmt.Printf("%s Successfully sent %d bytes\n", successStyle.Render("✓"), len(payload))

	// Show data preview (first 50 chars)
	preview := data
	if len(preview) > 50 {
		preview = preview[:50] + "..."
	}
	// Replace non-printable characters for display
	preview = strings.Map(func(r rune) rune {
		if r < 32 || r > 126 {
			return '·'
		}
		return r
	}, preview)

	fmt.Printf("%s Data: %s\n", infoStyle.Render("📋"), preview)

	return nil
}
