package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/plx/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgTasksReady MsgKind = iota
	MsgProgressUpdate
	MsgProgressClosed
)

// tasksReadyMsg is the constructor for [MsgTasksReady]
func tasksReadyMsg() Msg {
	return Msg{kind: MsgTasksReady}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// progressClosedMsg is the constructor for [MsgProgressClosed]
func progressClosedMsg() Msg {
	return Msg{kind: MsgProgressClosed}
}
