package components

import (
	"fmt"
	"time"

	serialport "github.com/blitzdose/serial-port-win32"
	"github.com/blitzdose/serial-port-win32/internal/tui/styles"
	"github.com/charmbracelet/lipgloss"
)

// QueueDepthMsg reports the receive queue depth sampled by the poll loop
type QueueDepthMsg struct {
	Depth     int
	Timestamp time.Time
}

type ConnectionInfo struct {
	BaudRate      int
	DataBits      int
	StopBits      serialport.StopBits
	Parity        serialport.Parity
	QueueDepth    int
	SignalControl bool // show commanded DTR/RTS states in the bar
	DTR           bool
	RTS           bool
}

type StatusBar struct {
	title          string
	portName       string
	status         string
	err            error
	width          int
	connectionInfo *ConnectionInfo
}

func NewStatusBar(title, portName string) *StatusBar {
	return &StatusBar{
		title:    title,
		portName: portName,
		status:   "Initializing...",
	}
}

func (sb *StatusBar) SetStatus(status string, err error) {
	sb.status = status
	sb.err = err
}

func (sb *StatusBar) SetWidth(width int) {
	sb.width = width
}

func (sb *StatusBar) SetConnectionInfo(info *ConnectionInfo) {
	sb.connectionInfo = info
}

func (sb *StatusBar) UpdateQueueDepth(depth int) {
	if sb.connectionInfo != nil {
		sb.connectionInfo.QueueDepth = depth
	}
}

func (sb *StatusBar) UpdateSignalStates(dtr, rts bool) {
	if sb.connectionInfo != nil {
		sb.connectionInfo.DTR = dtr
		sb.connectionInfo.RTS = rts
	}
}

func (sb *StatusBar) SetConnecting() {
	sb.status = "Connecting..."
	sb.err = nil
}

func (sb *StatusBar) SetConnected() {
	sb.status = "Connected - listening for data..."
	sb.err = nil
}

func (sb *StatusBar) SetDisconnected(err error) {
	if err != nil {
		sb.status = fmt.Sprintf("Connection failed: %v", err)
		sb.err = err
	} else {
		sb.status = "Disconnected"
		sb.err = nil
	}
}

func parityToString(p serialport.Parity) string {
	switch p {
	case serialport.ParityNone:
		return "N"
	case serialport.ParityEven:
		return "E"
	case serialport.ParityOdd:
		return "O"
	case serialport.ParityMark:
		return "M"
	case serialport.ParitySpace:
		return "S"
	default:
		return "N"
	}
}

func stopBitsToString(s serialport.StopBits) string {
	switch s {
	case serialport.StopBitsOne:
		return "1"
	case serialport.StopBitsOnePointFive:
		return "1.5"
	case serialport.StopBitsTwo:
		return "2"
	default:
		return "1"
	}
}

func signalArrow(state bool) string {
	if state {
		return "↑"
	}
	return "↓"
}

// lineSummary renders the device-manager style framing summary, e.g. "8N1".
func lineSummary(info *ConnectionInfo) string {
	return fmt.Sprintf("%d%s%s", info.DataBits, parityToString(info.Parity), stopBitsToString(info.StopBits))
}

// ComprehensiveStatusBar renders the full-width bottom bar: input mode, port
// identity, connection state, optional view mode, line settings, queue depth
// and timestamp. Empty sendingMode or viewMode hides that section.
func (sb *StatusBar) ComprehensiveStatusBar(inputMode, sendingMode, viewMode string, connected bool, timestamp string) string {
	terminalWidth := sb.width
	if terminalWidth <= 0 {
		terminalWidth = 80
	}

	// Section 1: Mode indicator (like NORMAL in nvim)
	var modeStyle lipgloss.Style
	var modeText string
	if inputMode == "INSERT" {
		modeStyle = lipgloss.NewStyle().
			Foreground(styles.Base).
			Background(styles.Green).
			Bold(true).
			Padding(0, 1)
		modeText = "INSERT"
	} else {
		modeStyle = lipgloss.NewStyle().
			Foreground(styles.Base).
			Background(styles.Blue).
			Bold(true).
			Padding(0, 1)
		modeText = "NORMAL"
	}
	mode := modeStyle.Render(modeText)

	// Section 2: Port name with connection indicator
	portStyle := lipgloss.NewStyle().
		Foreground(styles.Mauve).
		Bold(true).
		Padding(0, 1)
	port := portStyle.Render(sb.portName)

	// Section 3: Single character connection indicator
	var connIndicator string
	var connStyle lipgloss.Style

	if sb.err != nil {
		connStyle = lipgloss.NewStyle().Foreground(styles.Red)
		connIndicator = "✗"
	} else if connected {
		connStyle = lipgloss.NewStyle().Foreground(styles.Green)
		connIndicator = "●"
	} else if sb.status == "Connecting..." {
		connStyle = lipgloss.NewStyle().Foreground(styles.Yellow)
		connIndicator = "○"
	} else {
		connStyle = lipgloss.NewStyle().Foreground(styles.Red)
		connIndicator = "○"
	}

	connectionIndicator := connStyle.Render(connIndicator)

	// Section 4: Connection info with queue depth and signal states
	var connInfo string
	if sb.connectionInfo != nil {
		signalInfo := ""
		if sb.connectionInfo.SignalControl {
			signalInfo = fmt.Sprintf(" DTR%s RTS%s",
				signalArrow(sb.connectionInfo.DTR),
				signalArrow(sb.connectionInfo.RTS))
		}
		connInfo = fmt.Sprintf("⚡ %d baud %s ⇅ %d%s",
			sb.connectionInfo.BaudRate,
			lineSummary(sb.connectionInfo),
			sb.connectionInfo.QueueDepth,
			signalInfo)
	} else {
		connInfo = "⚡ serial"
	}
	connInfoStyle := lipgloss.NewStyle().
		Foreground(styles.Subtext0).
		Padding(0, 1)
	connectionDetails := connInfoStyle.Render(connInfo)

	// Section 5: Timestamp (like position)
	timeStyle := lipgloss.NewStyle().
		Foreground(styles.Subtext1).
		Padding(0, 1)
	clock := timeStyle.Render(timestamp)

	// Create muted divider
	dividerStyle := lipgloss.NewStyle().
		Foreground(styles.Surface2).
		Padding(0, 1)
	divider := dividerStyle.Render("│")

	// Section: Sending mode indicator with Tab hint (only show in INSERT mode)
	var sendingModeInfo string
	if inputMode == "INSERT" && sendingMode != "" {
		sendingModeStyle := lipgloss.NewStyle().
			Foreground(styles.Peach).
			Bold(true).
			Padding(0, 1)
		sendingModeInfo = sendingModeStyle.Render(fmt.Sprintf("[%s] Tab to toggle", sendingMode))
	}

	// Section: View mode indicator for table displays
	var viewModeInfo string
	if viewMode != "" {
		viewModeStyle := lipgloss.NewStyle().
			Foreground(styles.Sapphire).
			Bold(true).
			Padding(0, 1)
		viewModeInfo = viewModeStyle.Render(fmt.Sprintf("[%s]", viewMode))
	}

	// Build left side: mode (no divider) port + connection indicator, then
	// optional sections, then divider
	leftParts := []string{mode, port, connectionIndicator}
	if sendingModeInfo != "" {
		leftParts = append(leftParts, sendingModeInfo)
	}
	if viewModeInfo != "" {
		leftParts = append(leftParts, viewModeInfo)
	}
	leftParts = append(leftParts, divider)
	leftSide := lipgloss.JoinHorizontal(lipgloss.Left, leftParts...)

	// Build right side with divider
	rightSide := lipgloss.JoinHorizontal(lipgloss.Left, connectionDetails, divider, clock)

	// Calculate spacer
	leftWidth := lipgloss.Width(leftSide)
	rightWidth := lipgloss.Width(rightSide)
	spacerWidth := terminalWidth - leftWidth - rightWidth
	if spacerWidth < 1 {
		spacerWidth = 1
	}

	spacer := lipgloss.NewStyle().Width(spacerWidth).Render("")

	// Combine with background
	statusBarStyle := lipgloss.NewStyle().
		Foreground(styles.Text).
		Background(styles.Surface0).
		Width(terminalWidth)

	content := lipgloss.JoinHorizontal(lipgloss.Left, leftSide, spacer, rightSide)
	return statusBarStyle.Render(content)
}
