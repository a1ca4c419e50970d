package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/opencode-ai/themekit/internal/theme"
)

// ThemeChangeMsg wraps a facade ChangeEvent for the TUI.
type ThemeChangeMsg struct {
	Event theme.ChangeEvent
}

// themeSubscriber bridges facade events to a running program.
type themeSubscriber struct {
	program *tea.Program
}

func (s *themeSubscriber) onChange(event theme.ChangeEvent) {
	if s.program != nil {
		// Listeners can run inside Update; Send blocks until the loop reads.
		go s.program.Send(ThemeChangeMsg{Event: event})
	}
}

// SubscribeToThemeChanges forwards every facade change to program as a
// ThemeChangeMsg. The returned function unsubscribes.
func SubscribeToThemeChanges(facade *theme.Facade, program *tea.Program) func() {
	if facade == nil {
		return func() {}
	}
	subscriber := &themeSubscriber{program: program}
	return facade.Subscribe(subscriber.onChange)
}
