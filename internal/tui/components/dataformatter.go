package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/blitzdose/serial-port-win32/internal/tui/styles"
	"github.com/charmbracelet/lipgloss"
)

type DataReceivedMsg struct {
	Timestamp time.Time
	Data      []byte
	IsTX      bool
	Status    string // For TX messages: "PENDING", "WRITTEN", "TIMEOUT", "ERROR", empty for RX
}

type DisplayMode struct {
	ShowHex        bool
	ShowASCII      bool
	ShowTimestamps bool
	ShowIndicators bool
}

// DefaultDisplayMode shows hex, ASCII and timestamps but no direction markers.
func DefaultDisplayMode() DisplayMode {
	return DisplayMode{
		ShowHex:        true,
		ShowASCII:      true,
		ShowTimestamps: true,
		ShowIndicators: false,
	}
}

type DataFormatter struct {
	mode DisplayMode
}

func NewDataFormatter(mode DisplayMode) *DataFormatter {
	return &DataFormatter{mode: mode}
}

func (df *DataFormatter) SetDisplayMode(mode DisplayMode) {
	df.mode = mode
}

func (df *DataFormatter) GetDisplayMode() DisplayMode {
	return df.mode
}

// formatIndicator renders the direction marker. TX markers carry the write
// outcome so a transfer stuck behind a full transmit queue is visible.
func formatIndicator(msg DataReceivedMsg) string {
	if !msg.IsTX {
		return lipgloss.NewStyle().
			Foreground(styles.Sky).
			Bold(true).
			Render("↙ RX")
	}

	var txColor lipgloss.Color
	var statusText string

	switch msg.Status {
	case "PENDING":
		txColor = styles.Yellow
		statusText = "TX ○"
	case "WRITTEN":
		txColor = styles.Green
		statusText = "TX ✓"
	case "TIMEOUT":
		txColor = styles.Peach
		statusText = "TX ⧖"
	case "ERROR":
		txColor = styles.Red
		statusText = "TX ✗"
	default:
		txColor = styles.Peach
		statusText = "TX"
	}

	return lipgloss.NewStyle().
		Foreground(txColor).
		Bold(true).
		Render("↗ " + statusText)
}

// asciiPreview renders data as printable ASCII, masking everything else so
// device output cannot inject terminal control sequences.
func asciiPreview(data []byte) string {
	var sb strings.Builder
	for _, b := range data {
		if b >= 32 && b <= 126 {
			sb.WriteByte(b)
		} else {
			sb.WriteByte('.')
		}
	}
	return sb.String()
}

func (df *DataFormatter) FormatMessage(msg DataReceivedMsg) string {
	var parts []string

	if df.mode.ShowHex {
		parts = append(parts, fmt.Sprintf("HEX: % X", msg.Data))
	}

	if df.mode.ShowASCII {
		parts = append(parts, fmt.Sprintf("ASCII: %s", asciiPreview(msg.Data)))
	}

	// If both are disabled, show raw byte count
	if !df.mode.ShowHex && !df.mode.ShowASCII {
		parts = append(parts, fmt.Sprintf("BYTES: %d", len(msg.Data)))
	}

	body := strings.Join(parts, "  ")

	var prefix []string
	if df.mode.ShowTimestamps {
		timestamp := lipgloss.NewStyle().
			Foreground(styles.Subtext0).
			Render(fmt.Sprintf("[%s]", msg.Timestamp.Format("15:04:05.000")))
		prefix = append(prefix, timestamp)
	}
	if df.mode.ShowIndicators {
		prefix = append(prefix, formatIndicator(msg))
	}

	if len(prefix) == 0 {
		return body
	}
	return fmt.Sprintf("%s: %s", strings.Join(prefix, " "), body)
}

func (df *DataFormatter) FormatMessages(messages []DataReceivedMsg) []string {
	formatted := make([]string, len(messages))
	for i, msg := range messages {
		formatted[i] = df.FormatMessage(msg)
	}
	return formatted
}

func (df *DataFormatter) ToggleHex() {
	df.mode.ShowHex = !df.mode.ShowHex
}

func (df *DataFormatter) ToggleASCII() {
	df.mode.ShowASCII = !df.mode.ShowASCII
}

func (df *DataFormatter) ToggleTimestamps() {
	df.mode.ShowTimestamps = !df.mode.ShowTimestamps
}

func (df *DataFormatter) ToggleIndicators() {
	df.mode.ShowIndicators = !df.mode.ShowIndicators
}
