package components

import (
	"fmt"

	"github.com/blitzdose/serial-port-win32/internal/tui/styles"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type ViewMode int

const (
	ViewModeFollow ViewMode = iota
	ViewModeVisual
)

// FrameTable renders received and transmitted chunks as table rows, one row
// per frame. Follow mode pins the cursor to the newest row; visual mode
// frees it for scrollback.
type FrameTable struct {
	table     table.Model
	formatter *DataFormatter
	viewMode  ViewMode
	rawData   []DataReceivedMsg
}

func NewFrameTable(width, height int, mode DisplayMode) *FrameTable {
	if width < 80 {
		width = 80
	}
	if height < 5 {
		height = 5
	}

	t := table.New(
		table.WithFocused(false), // Start unfocused in follow mode
		table.WithHeight(height),
		table.WithWidth(width),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.Subtext0).
		BorderBottom(true).
		Bold(true).
		Foreground(styles.Text)
	s.Selected = s.Selected.
		Foreground(styles.Text).
		Background(styles.Surface1).
		Bold(false)

	t.SetStyles(s)

	ft := &FrameTable{
		table:     t,
		formatter: NewDataFormatter(mode),
		viewMode:  ViewModeFollow,
		rawData:   make([]DataReceivedMsg, 0),
	}
	ft.updateColumns(width)

	return ft
}

func (ft *FrameTable) SetSize(width, height int) {
	// Update columns first, then table dimensions
	ft.updateColumns(width)
	ft.table.SetHeight(height)
	ft.table.SetWidth(width)
	ft.table.UpdateViewport()
}

// updateColumns rebuilds the column set from the display mode. Time and
// direction columns come and go with their toggles; the remaining width is
// split between the data columns.
func (ft *FrameTable) updateColumns(width int) {
	mode := ft.formatter.GetDisplayMode()

	if width < 80 {
		width = 80
	}

	timeWidth := 14 // "15:04:05.000" plus padding
	dirWidth := 4   // arrow plus outcome glyph
	bytesWidth := 6

	// Account for borders and separators (roughly 10 chars)
	reservedWidth := bytesWidth + 10
	if mode.ShowTimestamps {
		reservedWidth += timeWidth
	}
	if mode.ShowIndicators {
		reservedWidth += dirWidth
	}
	remainingWidth := width - reservedWidth
	if remainingWidth < 20 {
		remainingWidth = 20
	}

	var columns []table.Column
	if mode.ShowTimestamps {
		columns = append(columns, table.Column{Title: "Time", Width: timeWidth})
	}
	if mode.ShowIndicators {
		columns = append(columns, table.Column{Title: "↕", Width: dirWidth})
	}

	switch {
	case mode.ShowHex && mode.ShowASCII:
		// Give more space to hex since it's typically longer
		hexWidth := (remainingWidth * 7) / 10
		asciiWidth := (remainingWidth * 3) / 10
		if hexWidth < 20 {
			hexWidth = 20
		}
		if asciiWidth < 10 {
			asciiWidth = 10
		}
		columns = append(columns,
			table.Column{Title: "Hex", Width: hexWidth},
			table.Column{Title: "ASCII", Width: asciiWidth},
		)
	case mode.ShowHex:
		hexWidth := remainingWidth
		if hexWidth < 30 {
			hexWidth = 30
		}
		columns = append(columns, table.Column{Title: "Hex", Width: hexWidth})
	case mode.ShowASCII:
		asciiWidth := remainingWidth
		if asciiWidth < 20 {
			asciiWidth = 20
		}
		columns = append(columns, table.Column{Title: "ASCII", Width: asciiWidth})
	default:
		dataWidth := remainingWidth
		if dataWidth < 25 {
			dataWidth = 25
		}
		columns = append(columns, table.Column{Title: "Data", Width: dataWidth})
	}

	columns = append(columns, table.Column{Title: "Bytes", Width: bytesWidth})

	ft.table.SetColumns(columns)
	ft.table.UpdateViewport()
}

func (ft *FrameTable) AddMessage(msg DataReceivedMsg) {
	ft.rawData = append(ft.rawData, msg)
	ft.refreshTable()

	if ft.viewMode == ViewModeFollow {
		ft.table.GotoBottom()
	}
}

func (ft *FrameTable) refreshTable() {
	rows := make([]table.Row, len(ft.rawData))
	for i, msg := range ft.rawData {
		rows[i] = ft.formatFrameRow(msg)
	}

	ft.table.SetRows(rows)
	ft.table.UpdateViewport()
}

// formatFrameRow builds one row, cells matching the current column set.
func (ft *FrameTable) formatFrameRow(msg DataReceivedMsg) table.Row {
	mode := ft.formatter.GetDisplayMode()

	var row table.Row
	if mode.ShowTimestamps {
		row = append(row, msg.Timestamp.Format("15:04:05.000"))
	}
	if mode.ShowIndicators {
		direction := "↙"
		if msg.IsTX {
			switch msg.Status {
			case "WRITTEN":
				direction = "↗✓"
			case "TIMEOUT":
				direction = "↗⧖"
			case "ERROR":
				direction = "↗✗"
			default:
				direction = "↗"
			}
		}
		row = append(row, direction)
	}

	switch {
	case mode.ShowHex && mode.ShowASCII:
		row = append(row, fmt.Sprintf("% X", msg.Data), asciiPreview(msg.Data))
	case mode.ShowHex:
		row = append(row, fmt.Sprintf("% X", msg.Data))
	case mode.ShowASCII:
		row = append(row, asciiPreview(msg.Data))
	default:
		row = append(row, fmt.Sprintf("%d bytes", len(msg.Data)))
	}

	row = append(row, fmt.Sprintf("%d", len(msg.Data)))
	return row
}

func (ft *FrameTable) Clear() {
	ft.rawData = make([]DataReceivedMsg, 0)
	ft.table.SetRows([]table.Row{})
}

func (ft *FrameTable) ToggleHex() {
	ft.formatter.ToggleHex()
	ft.updateColumns(ft.table.Width())
	ft.refreshTable()
}

func (ft *FrameTable) ToggleASCII() {
	ft.formatter.ToggleASCII()
	ft.updateColumns(ft.table.Width())
	ft.refreshTable()
}

func (ft *FrameTable) ToggleTimestamps() {
	ft.formatter.ToggleTimestamps()
	ft.updateColumns(ft.table.Width())
	ft.refreshTable()
}

func (ft *FrameTable) ToggleIndicators() {
	ft.formatter.ToggleIndicators()
	ft.updateColumns(ft.table.Width())
	ft.refreshTable()
}

func (ft *FrameTable) GetDisplayMode() DisplayMode {
	return ft.formatter.GetDisplayMode()
}

func (ft *FrameTable) GetViewMode() ViewMode {
	return ft.viewMode
}

func (ft *FrameTable) SetViewMode(mode ViewMode) {
	ft.viewMode = mode
	if mode == ViewModeFollow {
		if len(ft.rawData) > 0 {
			ft.table.SetCursor(len(ft.rawData) - 1)
		}
		ft.table.GotoBottom()
		ft.table.Blur() // Unfocus in follow mode
	} else {
		ft.table.Focus() // Focus in visual mode for navigation
	}
	ft.table.UpdateViewport()
}

// RefreshDisplayWithRawData reformats the whole backlog, used after a
// display-mode toggle so history picks up the new format.
func (ft *FrameTable) RefreshDisplayWithRawData(rawData []DataReceivedMsg) {
	ft.rawData = rawData
	ft.refreshTable()
	if ft.viewMode == ViewModeFollow {
		ft.table.GotoBottom()
	}
}

func (ft *FrameTable) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd

	// Only allow table navigation in visual mode
	if ft.viewMode == ViewModeVisual {
		ft.table, cmd = ft.table.Update(msg)
	}

	return cmd
}

func (ft *FrameTable) View() string {
	return ft.table.View()
}

func (ft *FrameTable) GetViewModeString() string {
	switch ft.viewMode {
	case ViewModeFollow:
		return "FOLLOW"
	case ViewModeVisual:
		return "VISUAL"
	default:
		return "FOLLOW"
	}
}
