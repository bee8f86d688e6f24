/*
Copyright © 2025 Blitzdose
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	serialport "github.com/blitzdose/serial-port-win32"
	"github.com/blitzdose/serial-port-win32/internal/logutil"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// captureCmd represents the capture command
var captureCmd = &cobra.Command{
	Use:   "capture <port> <output-file>",
	Short: "Capture serial data to a file",
	Long: `Capture incoming serial data to a file for later parsing.

Reads data from the specified COM port and writes it directly to the
output file. Runs continuously until interrupted (Ctrl+C).

The output file is opened in append mode, allowing you to resume captures
without overwriting existing data. With --log-file, a structured session
log (JSON, rotated automatically) records start, errors and the final
byte count alongside the raw capture.

Example usage:
  serialport capture COM3 data.log
  serialport capture COM3 output.txt --baud 9600
  serialport capture COM3 capture.log --console
  serialport capture COM3 capture.log --log-file session.json --log-level debug`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		portName := args[0]
		outputPath := args[1]

		baudRate := resolveBaud(cmd)
		bufferSize, _ := cmd.Flags().GetInt("buffer")
		showConsole, _ := cmd.Flags().GetBool("console")
		logFile, _ := cmd.Flags().GetString("log-file")
		logLevel, _ := cmd.Flags().GetString("log-level")

		if err := runCapture(portName, outputPath, baudRate, bufferSize, showConsole, logFile, logLevel); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(captureCmd)

	captureCmd.Flags().IntP("baud", "b", 115200, "Baud rate")
	captureCmd.Flags().Int("buffer", 4096, "Read buffer size")
	captureCmd.Flags().BoolP("console", "c", false, "Display incoming data on console while capturing")
	captureCmd.Flags().String("log-file", "", "Write a structured session log to this file")
	captureCmd.Flags().String("log-level", "info", "Session log level: debug, info, warn, error")
}

// newSessionLog builds the structured session logger, or a no-op logger
// when no log file was requested.
func newSessionLog(logFile, logLevel, portName string, baudRate int) (*logutil.SessionLogger, error) {
	if logFile == "" {
		return logutil.NewSessionLogger(zap.NewNop(), portName, baudRate), nil
	}

	opts := logutil.DefaultOptions(logFile)
	opts.Level = logLevel
	base, err := logutil.New(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create session log: %w", err)
	}
	return logutil.NewSessionLogger(base, portName, baudRate), nil
}

func runCapture(portName, outputPath string, baudRate, bufferSize int, showConsole bool, logFile, logLevel string) error {
	sessionLog, err := newSessionLog(logFile, logLevel, portName, baudRate)
	if err != nil {
		return err
	}
	defer logutil.Close(sessionLog.Logger)

	// Open serial port
	port, err := serialport.Open(portName, serialport.WithBaudRate(baudRate))
	if err != nil {
		return fmt.Errorf("failed to open port: %w", err)
	}
	defer port.Close()

	// Open output file in append mode
	file, err := os.OpenFile(outputPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open output file: %w", err)
	}
	defer file.Close()

	// Setup signal handling for clean shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Fprintf(os.Stderr, "\nReceived interrupt signal, shutting down...\n")
		cancel()
	}()

	sessionLog.LogStart(outputPath)
	fmt.Fprintf(os.Stderr, "Capturing data from %s to %s\n", portName, outputPath)
	if showConsole {
		fmt.Fprintf(os.Stderr, "Console display enabled\n")
	}
	fmt.Fprintf(os.Stderr, "Press Ctrl+C to stop\n\n")

	// Read and write loop. Read returns whatever arrived within the
	// window, possibly nothing, so the loop stays responsive to Ctrl+C.
	bytesWritten := int64(0)
	startTime := time.Now()

	for {
		select {
		case <-ctx.Done():
			duration := time.Since(startTime)
			sessionLog.LogEnd(bytesWritten)
			fmt.Fprintf(os.Stderr, "\nCapture complete: %d bytes written in %v\n", bytesWritten, duration.Round(time.Millisecond))
			return nil
		default:
			data, err := port.Read(bufferSize, 250*time.Millisecond)
			if err != nil {
				if errors.Is(err, serialport.ErrDisconnected) {
					sessionLog.LogReadError(err, bytesWritten)
					fmt.Fprintf(os.Stderr, "\nDevice disconnected: %d bytes captured\n", bytesWritten)
					return err
				}
				sessionLog.LogReadError(err, bytesWritten)
				return fmt.Errorf("read error: %w", err)
			}

			if len(data) > 0 {
				written, err := file.Write(data)
				if err != nil {
					return fmt.Errorf("write error: %w", err)
				}
				bytesWritten += int64(written)
				sessionLog.LogChunk(written, bytesWritten)

				// Display on console if enabled
				if showConsole {
					os.Stdout.Write(data)
				}
			}
		}
	}
}
