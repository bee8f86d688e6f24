/*
Copyright © 2025 Blitzdose
*/
package cmd

import (
	"fmt"
	"os"
	"strings"

	serialport "github.com/blitzdose/serial-port-win32"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "serialport",
	Short: "Windows serial port toolkit",
	Long: `A toolkit for working with Windows COM ports.

Provides commands for discovering ports, sending and receiving data,
controlling modem signals, and interactive terminal sessions. All data
transfer runs over overlapped I/O, so reads and writes never wedge the
process even when a device stops responding.

Default settings (baud rate, data bits, parity, stop bits) may be placed
in a config file so they do not have to be repeated on every invocation.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.serialport.yaml)")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	viper.SetDefault("baud", 115200)
	viper.SetDefault("data-bits", 8)
	viper.SetDefault("parity", "none")
	viper.SetDefault("stop-bits", "1")

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".serialport" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".serialport")
	}

	viper.SetEnvPrefix("serialport")
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// resolveBaud returns the baud rate for a command: the flag value when the
// user set one, otherwise the configured default.
func resolveBaud(cmd *cobra.Command) int {
	if cmd.Flags().Changed("baud") {
		baud, _ := cmd.Flags().GetInt("baud")
		return baud
	}
	return viper.GetInt("baud")
}

// addLineFlags registers the full set of line-setting flags on commands that
// configure a connection, not just its speed.
func addLineFlags(cmd *cobra.Command) {
	cmd.Flags().IntP("baud", "b", 115200, "Baud rate")
	cmd.Flags().Int("data-bits", 8, "Data bits: 5, 6, 7 or 8")
	cmd.Flags().String("parity", "none", "Parity: none, odd, even, mark, space")
	cmd.Flags().String("stop-bits", "1", "Stop bits: 1, 1.5 or 2")
}

// resolveLineOptions builds the port options from flags, falling back to the
// configured defaults for anything the user did not set explicitly.
func resolveLineOptions(cmd *cobra.Command) ([]serialport.Option, error) {
	opts := []serialport.Option{serialport.WithBaudRate(resolveBaud(cmd))}

	dataBits := viper.GetInt("data-bits")
	if cmd.Flags().Changed("data-bits") {
		dataBits, _ = cmd.Flags().GetInt("data-bits")
	}
	opts = append(opts, serialport.WithDataBits(dataBits))

	parityName := viper.GetString("parity")
	if cmd.Flags().Changed("parity") {
		parityName, _ = cmd.Flags().GetString("parity")
	}
	parity, err := parseParity(parityName)
	if err != nil {
		return nil, err
	}
	opts = append(opts, serialport.WithParity(parity))

	stopBitsName := viper.GetString("stop-bits")
	if cmd.Flags().Changed("stop-bits") {
		stopBitsName, _ = cmd.Flags().GetString("stop-bits")
	}
	stopBits, err := parseStopBits(stopBitsName)
	if err != nil {
		return nil, err
	}
	opts = append(opts, serialport.WithStopBits(stopBits))

	return opts, nil
}

func parseParity(name string) (serialport.Parity, error) {
	switch strings.ToLower(name) {
	case "none", "n":
		return serialport.ParityNone, nil
	case "odd", "o":
		return serialport.ParityOdd, nil
	case "even", "e":
		return serialport.ParityEven, nil
	case "mark", "m":
		return serialport.ParityMark, nil
	case "space", "s":
		return serialport.ParitySpace, nil
	default:
		return serialport.ParityNone, fmt.Errorf("invalid parity %q (use none, odd, even, mark or space)", name)
	}
}

func parseStopBits(name string) (serialport.StopBits, error) {
	switch name {
	case "1":
		return serialport.StopBitsOne, nil
	case "1.5":
		return serialport.StopBitsOnePointFive, nil
	case "2":
		return serialport.StopBitsTwo, nil
	default:
		return serialport.StopBitsOne, fmt.Errorf("invalid stop bits %q (use 1, 1.5 or 2)", name)
	}
}
