/*
Copyright © 2025 Blitzdose
*/
package cmd

import (
	"errors"
	"fmt"
	"os"
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

// listenCmd represents the listen command
var listenCmd = &cobra.Command{
	Use:   "listen <port>",
	Short: "Listen for data on a serial port with real-time display",
	Long: `Listen for incoming data on a serial port with a real-time TUI display.

This command opens the specified COM port and displays incoming data in
real-time using a terminal user interface. Features include:
- Real-time data streaming with timestamps
- ASCII and hex display modes, toggleable at runtime
- Frame table view with scrollback (--table)
- Connection status and receive queue depth in the status bar
- Configurable line settings (baud rate, data bits, parity, stop bits)

Example usage:
  serialport listen COM3
  serialport listen COM3 --baud 9600
  serialport listen COM3 --table
  serialport listen COM7 --parity even --stop-bits 2 --raw`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		portName := args[0]

		noTimestamps, _ := cmd.Flags().GetBool("no-timestamps")
		showIndicators, _ := cmd.Flags().GetBool("show-indicators")
		rawMode, _ := cmd.Flags().GetBool("raw")
		useTable, _ := cmd.Flags().GetBool("table")

		opts, err := resolveLineOptions(cmd)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		mode := components.DefaultDisplayMode()
		mode.ShowIndicators = showIndicators
		mode.ShowTimestamps = !noTimestamps
		if rawMode {
			mode.ShowTimestamps = false
			mode.ShowIndicators = false
		}

		if err := runListenTUI(portName, mode, useTable, opts...); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(listenCmd)

	addLineFlags(listenCmd)

	// Display formatting flags
	listenCmd.Flags().Bool("no-timestamps", false, "Hide timestamps from output")
	listenCmd.Flags().Bool("show-indicators", false, "Show RX/TX direction markers (off by default)")
	listenCmd.Flags().Bool("raw", false, "Raw output mode: no timestamps, no direction markers")
	listenCmd.Flags().Bool("table", false, "Show frames as table rows with scrollback")
}

// listenModel represents the Bubble Tea model for the listen command
type listenModel struct {
	*models.SessionModel
	terminal  *components.Terminal
	frames    *components.FrameTable
	useTable  bool
	statusBar *components.StatusBar
	help      help.Model
	keys      keys.TerminalKeys
}

func runListenTUI(portName string, mode components.DisplayMode, useTable bool, opts ...serialport.Option) error {
	// Apply the options to a scratch config so the status bar can show the
	// line settings before the connection is up. Open applies them again.
	config := serialport.DefaultConfig()
	for _, opt := range opts {
		if err := opt(&config); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
	}

	connInfo := &components.ConnectionInfo{
		BaudRate: config.BaudRate,
		DataBits: config.DataBits,
		StopBits: config.StopBits,
		Parity:   config.Parity,
	}

	m := listenModel{
		SessionModel: models.NewSessionModel(portName),
		useTable:     useTable,
		statusBar:    components.NewStatusBar("Serial Listen", portName),
		help:         help.New(),
		keys:         keys.NewTerminalKeys(),
	}
	if useTable {
		m.frames = components.NewFrameTable(80, 20, mode)
	} else {
		m.terminal = components.NewTerminal(80, 20, mode)
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
					// Read hands back whatever arrived within the window,
					// so the loop stays responsive to quit and resize.
					data, err := port.Read(4096, 250*time.Millisecond)
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

func (m *listenModel) setDisplaySize(width, height int) {
	if m.useTable {
		m.frames.SetSize(width, height)
	} else {
		m.terminal.SetSize(width, height)
	}
}

func (m *listenModel) addMessage(msg components.DataReceivedMsg) {
	if m.useTable {
		m.frames.AddMessage(msg)
	} else {
		m.terminal.AddMessage(msg)
	}
}

func (m *listenModel) refreshDisplay() {
	if m.useTable {
		m.frames.RefreshDisplayWithRawData(m.GetRawData())
	} else {
		m.terminal.RefreshDisplayWithRawData(m.GetRawData())
	}
}

func (m *listenModel) clearDisplay() {
	if m.useTable {
		m.frames.Clear()
	} else {
		m.terminal.Clear()
	}
}

func (m *listenModel) displayView() string {
	if m.useTable {
		return m.frames.View()
	}
	return m.terminal.View()
}

func (m *listenModel) Init() tea.Cmd {
	return nil
}

func (m *listenModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// Status bar is single line
		statusBarHeight := 1
		m.setDisplaySize(msg.Width, msg.Height-statusBarHeight)
		m.statusBar.SetWidth(msg.Width)
		m.SetReady(true)

	case models.ConnectionStatusMsg:
		m.SetConnected(msg.Connected)
		if msg.Error != nil {
			m.SetError(msg.Error)
			m.statusBar.SetDisconnected(msg.Error)
		} else if msg.Connected {
			m.statusBar.SetConnected()
		} else {
			m.statusBar.SetDisconnected(nil)
		}

	case components.QueueDepthMsg:
		m.statusBar.UpdateQueueDepth(msg.Depth)

	case components.DataReceivedMsg:
		if !m.IsReady() {
			m.setDisplaySize(80, 20)
			m.SetReady(true)
		}

		m.AddRawData(msg)
		m.addMessage(msg)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.Cleanup()
			return m, tea.Quit

		case key.Matches(msg, m.keys.Clear):
			m.ClearData()
			m.clearDisplay()

		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll

		case key.Matches(msg, m.keys.ToggleHex):
			if m.useTable {
				m.frames.ToggleHex()
			} else {
				m.terminal.ToggleHex()
			}
			m.refreshDisplay()

		case key.Matches(msg, m.keys.ToggleASCII):
			if m.useTable {
				m.frames.ToggleASCII()
			} else {
				m.terminal.ToggleASCII()
			}
			m.refreshDisplay()

		case key.Matches(msg, m.keys.ToggleTimestamps):
			if m.useTable {
				m.frames.ToggleTimestamps()
			} else {
				m.terminal.ToggleTimestamps()
			}
			m.refreshDisplay()

		case key.Matches(msg, m.keys.ToggleIndicators):
			if m.useTable {
				m.frames.ToggleIndicators()
			} else {
				m.terminal.ToggleIndicators()
			}
			m.refreshDisplay()

		case key.Matches(msg, m.keys.VisualMode):
			if m.useTable {
				m.frames.SetViewMode(components.ViewModeVisual)
			}

		case key.Matches(msg, m.keys.Escape):
			if m.useTable {
				m.frames.SetViewMode(components.ViewModeFollow)
			}

		default:
			// Visual mode scrollback: the table owns navigation keys
			if m.useTable {
				cmds = append(cmds, m.frames.Update(msg))
			}
		}
	}

	// Update terminal viewport for window resize messages
	if !m.useTable {
		switch msg.(type) {
		case tea.WindowSizeMsg:
			_, cmd := m.terminal.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	return m, tea.Batch(cmds...)
}

func (m *listenModel) View() string {
	var content string
	if m.IsReady() {
		content = m.displayView()
	} else {
		content = "Initializing..."
	}

	// Listen mode has no input field, so the bar always reads NORMAL and
	// carries no sending mode. Table display adds the view mode section.
	viewMode := ""
	if m.useTable {
		viewMode = m.frames.GetViewModeString()
	}
	timestamp := time.Now().Format("15:04:05")

	statusBar := m.statusBar.ComprehensiveStatusBar("NORMAL", "", viewMode, m.IsConnected(), timestamp)

	contentWithBorder := styles.ContentBorderStyle.Render(content)

	// Show help if requested
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
			statusBar,
		)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		contentWithBorder,
		statusBar,
	)
}
