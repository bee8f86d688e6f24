/*
Copyright © 2025 Blitzdose
*/
package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	serialport "github.com/blitzdose/serial-port-win32"
	"github.com/spf13/cobra"
)

var (
	statusSignals  []string
	statusInterval time.Duration
	statusOnce     bool
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status <port>",
	Short: "Watch modem signals and queue depth",
	Long: `Watch modem control signals and the inbound queue depth in real-time.

Polls the port and reports whenever a watched signal changes state or the
number of buffered inbound bytes changes. Press Ctrl+C to stop. With
--once a single snapshot is printed instead.

Examples:
  serialport status COM3
  serialport status COM3 --signals cts,dsr
  serialport status COM3 --interval 50ms
  serialport status COM3 --once

Available signals: cts, dsr, ri, dcd`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		portName := args[0]

		port, err := serialport.Open(portName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening port: %v\n", err)
			os.Exit(1)
		}
		defer port.Close()

		watch, err := parseSignalNames(statusSignals)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing signals: %v\n", err)
			os.Exit(1)
		}

		signals, err := port.GetModemSignals()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading signals: %v\n", err)
			os.Exit(1)
		}
		queued, err := port.PendingBytes()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error querying queue: %v\n", err)
			os.Exit(1)
		}
		printStatusSnapshot("Initial", signals, queued, watch)

		if statusOnce {
			return
		}

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

		fmt.Printf("Watching %s (signals: %s, every %v)\n", portName, strings.Join(statusSignals, ", "), statusInterval)
		fmt.Println("Press Ctrl+C to stop")

		ticker := time.NewTicker(statusInterval)
		defer ticker.Stop()

		lastSignals := signals
		lastQueued := queued
		for {
			select {
			case <-sigChan:
				fmt.Println("\nStopping status watch...")
				return
			case <-ticker.C:
				signals, err := port.GetModemSignals()
				if err != nil {
					fmt.Fprintf(os.Stderr, "Error reading signals: %v\n", err)
					os.Exit(1)
				}
				queued, err := port.PendingBytes()
				if err != nil {
					fmt.Fprintf(os.Stderr, "Error querying queue: %v\n", err)
					os.Exit(1)
				}

				printSignalChanges(lastSignals, signals, watch)
				if queued != lastQueued {
					timestamp := time.Now().Format("15:04:05")
					fmt.Printf("[%s] Queue depth: %d bytes\n", timestamp, queued)
				}

				lastSignals = signals
				lastQueued = queued
			}
		}
	},
}

// signalWatch selects which modem signals are reported.
type signalWatch struct {
	cts, dsr, ri, dcd bool
}

func parseSignalNames(names []string) (signalWatch, error) {
	if len(names) == 0 {
		return signalWatch{cts: true, dsr: true, ri: true, dcd: true}, nil
	}

	var w signalWatch
	for _, name := range names {
		switch strings.ToLower(name) {
		case "cts":
			w.cts = true
		case "dsr":
			w.dsr = true
		case "ri":
			w.ri = true
		case "dcd":
			w.dcd = true
		default:
			return signalWatch{}, fmt.Errorf("unknown signal: %s (valid: cts, dsr, ri, dcd)", name)
		}
	}
	return w, nil
}

func printStatusSnapshot(prefix string, signals serialport.ModemSignals, queued int, watch signalWatch) {
	timestamp := time.Now().Format("15:04:05")
	fmt.Printf("[%s] %s state:\n", timestamp, prefix)
	if watch.cts {
		fmt.Printf("  CTS: %s\n", formatSignalState(signals.CTS))
	}
	if watch.dsr {
		fmt.Printf("  DSR: %s\n", formatSignalState(signals.DSR))
	}
	if watch.ri {
		fmt.Printf("  RI:  %s\n", formatSignalState(signals.RI))
	}
	if watch.dcd {
		fmt.Printf("  DCD: %s\n", formatSignalState(signals.DCD))
	}
	fmt.Printf("  Queue: %d bytes\n\n", queued)
}

func printSignalChanges(old, cur serialport.ModemSignals, watch signalWatch) {
	timestamp := time.Now().Format("15:04:05")
	if watch.cts && old.CTS != cur.CTS {
		fmt.Printf("[%s] CTS: %s\n", timestamp, formatSignalState(cur.CTS))
	}
	if watch.dsr && old.DSR != cur.DSR {
		fmt.Printf("[%s] DSR: %s\n", timestamp, formatSignalState(cur.DSR))
	}
	if watch.ri && old.RI != cur.RI {
		fmt.Printf("[%s] RI:  %s\n", timestamp, formatSignalState(cur.RI))
	}
	if watch.dcd && old.DCD != cur.DCD {
		fmt.Printf("[%s] DCD: %s\n", timestamp, formatSignalState(cur.DCD))
	}
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringSliceVarP(&statusSignals, "signals", "s", []string{"cts", "dsr", "ri", "dcd"},
		"Signals to watch (comma-separated: cts,dsr,ri,dcd)")
	statusCmd.Flags().DurationVarP(&statusInterval, "interval", "i", 100*time.Millisecond,
		"Polling interval")
	statusCmd.Flags().BoolVar(&statusOnce, "once", false, "Print one snapshot and exit")
}
