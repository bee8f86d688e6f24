/*
Copyright © 2025 Blitzdose
*/
package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	serialport "github.com/blitzdose/serial-port-win32"
	"github.com/blitzdose/serial-port-win32/internal/tui/components"
	"github.com/blitzdose/serial-port-win32/internal/tui/keys"
	"github.com/blitzdose/serial-port-win32/internal/tui/models"
	"github.com/blitzdose/serial-port-win32/internal/tui/styles"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// connectCmd represents the connect command
var connectCmd = &cobra.Command{
	Use:   "connect <port>",
	Short: "Connect to a serial port with bidirectional communication",
	Long: `Connect to a serial port with an interactive bidirectional terminal.

This command opens the specified COM port and provides an interactive
terminal with real-time bidirectional communication. Features include:
- Real-time data streaming with timestamps
- Input field for sending data, with command history
- ASCII and hex sending modes (Tab to switch)
- Per-message transfer outcome: written, timed out, or failed
- DTR and RTS control from the keyboard (D and R in normal mode)
- Receive queue depth in the status bar
- Configurable line settings (baud rate, data bits, parity, stop bits)

Sent messages first show as pending and settle once the transfer resolves.
A transfer that cannot complete within --write-timeout is cancelled in the
driver and marked timed out; nothing from it stays queued.

Example usage:
  serialport connect COM3
  serialport connect COM3 --baud 9600
  serialport connect COM7 --parity even --write-timeout 2s`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		portName := args[0]

		writeTimeout, _ := cmd.Flags().GetDuration("write-timeout")

		opts, err := resolveLineOptions(cmd)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if err := runConnectTUI(portName, writeTimeout, opts...); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(connectCmd)

	addLineFlags(connectCmd)
	connectCmd.Flags().Duration("write-timeout", 5*time.Second, "Cancel a send that has not completed within this window")
}

// connectModel represents the Bubble Tea model for the connect command
type connectModel struct {
	*models.SessionModel
	terminal     *components.Terminal
	statusBar    *components.StatusBar
	input        *components.Input
	help         help.Model
	keys         keys.ConnectKeys
	writeTimeout time.Duration

	// Commanded modem signal states. The driver decides the levels at open;
	// these track what the user toggled since.
	dtr bool
	rts bool
}

func runConnectTUI(portName string, writeTimeout time.Duration, opts ...serialport.Option) error {
	// Apply the options to a scratch config so the status bar can show the
	// line settings before the connection is up. Open applies them again.
	config := serialport.DefaultConfig()
	for _, opt := range opts {
		if err := opt(&config); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
	}

	connInfo := &components.ConnectionInfo{
		BaudRate:      config.BaudRate,
		DataBits:      config.DataBits,
		StopBits:      config.StopBits,
		Parity:        config.Parity,
		SignalControl: true,
	}

	mode := components.DefaultDisplayMode()
	mode.ShowIndicators = true // bidirectional sessions need direction markers

	m := connectModel{
		SessionModel: models.NewSessionModel(portName),
		terminal:     components.NewTerminal(0, 0, mode), // Sized by WindowSizeMsg
		statusBar:    components.NewStatusBar("Serial Connect", portName),
		input:        components.NewInput("Type message and press Enter to send..."),
		help:         help.New(),
		keys:         keys.NewConnectKeys(),
		writeTimeout: writeTimeout,
	}
	m.statusBar.SetConnecting()
	m.statusBar.SetConnectionInfo(connInfo)

	// Start the TUI with alt screen and input handling
	p := tea.NewProgram(&m, tea.WithAltScreen(), tea.WithMouseCellMotion())

	// Connect to serial port in background
	go func() {
		port, err := serialport.Open(portName, opts...)
		if err != nil {
			p.Send(models.ConnectionStatusMsg{Connected: false, Error: err})
			return
		}

		// Store port safely
		m.SetPort(port)

		p.Send(models.ConnectionStatusMsg{Connected: true, Error: nil})

		// Sample the receive queue depth for the status bar
		go func() {
			ticker := time.NewTicker(500 * time.Millisecond)
			defer ticker.Stop()

			for {
				select {
				case <-m.GetContext().Done():
					return
				case <-ticker.C:
					depth, err := port.PendingBytes()
					if err != nil {
						return
					}
					p.Send(components.QueueDepthMsg{Depth: depth, Timestamp: time.Now()})
				}
			}
		}()

		// Read loop with context cancellation
		go func() {
			defer port.Close()

			for {
				select {
				case <-m.GetContext().Done():
					return
				default:
					data, err := port.Read(1024, 250*time.Millisecond)
					if err != nil {
						if m.GetContext().Err() != nil {
							return
						}
						if errors.Is(err, serialport.ErrDisconnected) || errors.Is(err, serialport.ErrPortClosed) {
							p.Send(models.ConnectionStatusMsg{Connected: false, Error: err})
							return
						}
						continue
					}
					if len(data) > 0 {
						p.Send(components.DataReceivedMsg{
							Timestamp: time.Now(),
							Data:      data,
						})
					}
				}
			}
		}()
	}()

	_, err := p.Run()

	// Ensure cleanup
	m.Cancel()
	return err
}

func (m *connectModel) Init() tea.Cmd {
	return nil
}

// parseHexInput converts hex strings to bytes. Supports both:
// - Space-separated: "48 65 6C 6C 6F"
// - Continuous: "48656C6C6F"
func parseHexInput(hexStr string) ([]byte, error) {
	cleanHex := strings.ReplaceAll(strings.TrimSpace(hexStr), " ", "")
	if len(cleanHex) == 0 {
		return nil, fmt.Errorf("empty input")
	}

	for _, char := range cleanHex {
		if !((char >= '0' && char <= '9') || (char >= 'A' && char <= 'F') || (char >= 'a' && char <= 'f')) {
			return nil, fmt.Errorf("invalid hex character '%c'", char)
		}
	}

	// Must be even number of hex digits to form complete bytes
	if len(cleanHex)%2 != 0 {
		return nil, fmt.Errorf("hex string must have even number of digits (got %d)", len(cleanHex))
	}

	bytes := make([]byte, 0, len(cleanHex)/2)
	for i := 0; i < len(cleanHex); i += 2 {
		hexByte := cleanHex[i : i+2]
		b, err := strconv.ParseUint(hexByte, 16, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid hex byte '%s': %v", hexByte, err)
		}
		bytes = append(bytes, byte(b))
	}
	return bytes, nil
}

// sendCurrentInput dispatches the input field content to the port. The frame
// is displayed as pending immediately; the returned command resolves with the
// transfer outcome.
func (m *connectModel) sendCurrentInput() tea.Cmd {
	port := m.GetPort()
	inputStr := m.input.Value()
	if inputStr == "" || port == nil {
		return nil
	}

	var dataToSend []byte
	var displayData []byte

	switch m.input.GetSendingMode() {
	case components.SendingModeASCII:
		dataToSend = []byte(inputStr + "\r\n")
		displayData = []byte(inputStr)
	case components.SendingModeHex:
		parsed, err := parseHexInput(inputStr)
		if err != nil {
			// Show the problem in the terminal and keep the input for fixing
			m.terminal.AddMessage(components.DataReceivedMsg{
				Timestamp: time.Now(),
				Data:      []byte(fmt.Sprintf("Invalid hex input: %v", err)),
			})
			return nil
		}
		dataToSend = parsed
		displayData = parsed
	}

	// Show the frame as pending; the write outcome settles it later
	txTime := time.Now()
	txData := components.DataReceivedMsg{
		Timestamp: txTime,
		Data:      displayData,
		IsTX:      true,
		Status:    "PENDING",
	}
	m.AddRawData(txData)
	m.terminal.AddMessage(txData)

	m.input.AddToHistory(inputStr)
	m.input.SetValue("")

	timeout := m.writeTimeout
	return func() tea.Msg {
		ok, err := port.Write(dataToSend, timeout)

		status := "WRITTEN"
		switch {
		case err != nil:
			status = "ERROR"
		case !ok:
			status = "TIMEOUT"
		}
		return components.DataReceivedMsg{
			Timestamp: txTime,
			Data:      displayData,
			IsTX:      true,
			Status:    status,
		}
	}
}

func (m *connectModel) toggleDTR() {
	port := m.GetPort()
	if port == nil {
		return
	}
	next := !m.dtr
	if err := port.SetDTR(next); err != nil {
		return
	}
	m.dtr = next
	m.statusBar.UpdateSignalStates(m.dtr, m.rts)
}

func (m *connectModel) toggleRTS() {
	port := m.GetPort()
	if port == nil {
		return
	}
	next := !m.rts
	if err := port.SetRTS(next); err != nil {
		return
	}
	m.rts = next
	m.statusBar.UpdateSignalStates(m.dtr, m.rts)
}

func (m *connectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// Input area height (includes border)
		inputHeight := 3
		// Status bar is single line
		statusBarHeight := 1
		verticalMarginHeight := inputHeight + statusBarHeight

		m.terminal.SetSize(msg.Width, msg.Height-verticalMarginHeight)
		m.input.SetWidth(msg.Width)
		m.statusBar.SetWidth(msg.Width)
		m.SetReady(true)

	case models.ConnectionStatusMsg:
		m.SetConnected(msg.Connected)
		if msg.Error != nil {
			m.SetError(msg.Error)
			m.statusBar.SetDisconnected(msg.Error)
		} else if msg.Connected {
			m.statusBar.SetConnected()
			m.input.Focus()
		} else {
			m.statusBar.SetDisconnected(nil)
		}

	case components.QueueDepthMsg:
		m.statusBar.UpdateQueueDepth(msg.Depth)

	case components.DataReceivedMsg:
		if !m.IsReady() {
			m.terminal.SetSize(80, 20)
			m.SetReady(true)
		}

		// A TX outcome settles the pending frame in place; everything else
		// is a new frame.
		if msg.IsTX && msg.Status != "PENDING" && m.UpdateLastTXStatus(msg) {
			m.terminal.RefreshDisplayWithRawData(m.GetRawData())
		} else {
			m.AddRawData(msg)
			m.terminal.AddMessage(msg)
		}

	case tea.KeyMsg:
		if m.IsInInsertMode() {
			// Insert mode - handle input and escape
			switch {
			case key.Matches(msg, m.keys.Escape):
				m.SetInputMode(models.InputModeNormal)
				m.input.Blur()
				return m, tea.Batch(cmds...)
			case key.Matches(msg, m.keys.Enter):
				if cmd := m.sendCurrentInput(); cmd != nil {
					cmds = append(cmds, cmd)
				}
				return m, tea.Batch(cmds...)
			case key.Matches(msg, m.keys.Up):
				m.input.NavigateHistoryUp()
				return m, tea.Batch(cmds...)
			case key.Matches(msg, m.keys.Down):
				m.input.NavigateHistoryDown()
				return m, tea.Batch(cmds...)
			case key.Matches(msg, m.keys.ToggleSendMode):
				m.input.ToggleSendingMode()
				return m, tea.Batch(cmds...)
			}
		} else {
			// Normal mode - handle navigation and mode switching
			switch {
			case key.Matches(msg, m.keys.Quit):
				m.Cleanup()
				return m, tea.Quit

			case key.Matches(msg, m.keys.InsertMode):
				m.SetInputMode(models.InputModeInsert)
				m.input.Focus()
				return m, tea.Batch(cmds...)

			case key.Matches(msg, m.keys.Clear):
				m.ClearData()
				m.terminal.Clear()

			case key.Matches(msg, m.keys.Help):
				m.help.ShowAll = !m.help.ShowAll

			case key.Matches(msg, m.keys.ToggleHex):
				m.terminal.ToggleHex()
				m.terminal.RefreshDisplayWithRawData(m.GetRawData())

			case key.Matches(msg, m.keys.ToggleASCII):
				m.terminal.ToggleASCII()
				m.terminal.RefreshDisplayWithRawData(m.GetRawData())

			case key.Matches(msg, m.keys.ToggleTimestamps):
				m.terminal.ToggleTimestamps()
				m.terminal.RefreshDisplayWithRawData(m.GetRawData())

			case key.Matches(msg, m.keys.ToggleIndicators):
				m.terminal.ToggleIndicators()
				m.terminal.RefreshDisplayWithRawData(m.GetRawData())

			case key.Matches(msg, m.keys.ToggleDTR):
				m.toggleDTR()

			case key.Matches(msg, m.keys.ToggleRTS):
				m.toggleRTS()

			case key.Matches(msg, m.keys.ToggleSendMode):
				m.input.ToggleSendingMode()
			}
		}
	}

	// Update components (only update input in insert mode)
	var cmd tea.Cmd
	if m.IsInInsertMode() {
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	// Update terminal viewport for window resize messages
	switch msg.(type) {
	case tea.WindowSizeMsg:
		_, cmd = m.terminal.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *connectModel) View() string {
	var content string
	if m.IsReady() {
		content = m.terminal.View()
	} else {
		content = "Initializing..."
	}

	// Input area
	inputMode := m.GetInputMode().String()
	isInsertMode := m.IsInInsertMode()
	input := m.input.ViewWithMode(inputMode, isInsertMode)

	// Comprehensive status bar with all info
	sendingMode := m.input.GetSendingMode().String()
	timestamp := time.Now().Format("15:04:05")

	statusBar := m.statusBar.ComprehensiveStatusBar(inputMode, sendingMode, "", m.IsConnected(), timestamp)

	contentWithBorder := styles.ContentBorderStyle.Render(content)

	if m.help.ShowAll {
		helpView := m.help.View(m.keys)
		helpStyle := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(1, 2).
			Margin(1, 0)
		helpView = helpStyle.Render(helpView)

		return lipgloss.JoinVertical(
			lipgloss.Left,
			contentWithBorder,
			helpView,
			input,
			statusBar,
		)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		contentWithBorder,
		input,
		statusBar,
	)
}
