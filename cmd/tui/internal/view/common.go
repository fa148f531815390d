package view

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
)

// Identity is who the terminal client acts as. Every service call is
// scoped to this church.
type Identity struct {
	ChurchID uuid.UUID
	UserID   uuid.UUID
}

type CommonModel struct {
	Width  int
	Height int
}

type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}
