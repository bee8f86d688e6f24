package models

import (
	"context"
	"sync"

	serialport "github.com/blitzdose/serial-port-win32"
	"github.com/blitzdose/serial-port-win32/internal/tui/components"
)

// InputMode represents the current input mode (vim-like)
type InputMode int

const (
	InputModeNormal InputMode = iota
	InputModeInsert
)

func (m InputMode) String() string {
	switch m {
	case InputModeNormal:
		return "NORMAL"
	case InputModeInsert:
		return "INSERT"
	default:
		return "NORMAL"
	}
}

type ConnectionStatusMsg struct {
	Connected bool
	Error     error
}

// SessionModel holds the state shared by the interactive commands: the port,
// the connection lifecycle and the frame backlog. The port crosses goroutines
// (the tea loop reads it, the open goroutine sets it) and is mutex-guarded;
// everything else is only touched from the tea loop.
type SessionModel struct {
	port     *serialport.Port
	portName string

	connected bool
	rawData   []components.DataReceivedMsg
	err       error
	ready     bool

	// Input mode (vim-like)
	inputMode InputMode

	// Cancellation and synchronization
	cancel context.CancelFunc
	ctx    context.Context
	mu     sync.RWMutex
}

func NewSessionModel(portName string) *SessionModel {
	ctx, cancel := context.WithCancel(context.Background())

	return &SessionModel{
		portName:  portName,
		rawData:   make([]components.DataReceivedMsg, 0),
		inputMode: InputModeNormal, // Start in normal mode
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (m *SessionModel) GetPort() *serialport.Port {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.port
}

func (m *SessionModel) SetPort(port *serialport.Port) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.port = port
}

func (m *SessionModel) GetPortName() string {
	return m.portName
}

func (m *SessionModel) IsConnected() bool {
	return m.connected
}

func (m *SessionModel) SetConnected(connected bool) {
	m.connected = connected
}

func (m *SessionModel) GetError() error {
	return m.err
}

func (m *SessionModel) SetError(err error) {
	m.err = err
}

func (m *SessionModel) IsReady() bool {
	return m.ready
}

func (m *SessionModel) SetReady(ready bool) {
	m.ready = ready
}

func (m *SessionModel) GetRawData() []components.DataReceivedMsg {
	return m.rawData
}

func (m *SessionModel) AddRawData(msg components.DataReceivedMsg) {
	m.rawData = append(m.rawData, msg)
}

// UpdateLastTXStatus rewrites the status of the newest TX frame carrying the
// same timestamp, called when the deferred write outcome arrives. Reports
// whether a frame was found.
func (m *SessionModel) UpdateLastTXStatus(update components.DataReceivedMsg) bool {
	for i := len(m.rawData) - 1; i >= 0; i-- {
		if m.rawData[i].IsTX && m.rawData[i].Timestamp.Equal(update.Timestamp) {
			m.rawData[i].Status = update.Status
			return true
		}
	}
	return false
}

func (m *SessionModel) ClearData() {
	m.rawData = make([]components.DataReceivedMsg, 0)
}

func (m *SessionModel) GetInputMode() InputMode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.inputMode
}

func (m *SessionModel) SetInputMode(mode InputMode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inputMode = mode
}

func (m *SessionModel) IsInInsertMode() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.inputMode == InputModeInsert
}

func (m *SessionModel) GetContext() context.Context {
	return m.ctx
}

func (m *SessionModel) Cancel() {
	if m.cancel != nil {
		m.cancel()
	}
}

func (m *SessionModel) Cleanup() {
	// Cancel context to stop goroutines
	if m.cancel != nil {
		m.cancel()
	}

	// Close port safely
	m.mu.Lock()
	if m.port != nil {
		m.port.Close()
		m.port = nil
	}
	m.mu.Unlock()
}
