package output

import "github.com/charmbracelet/lipgloss"

// Color palette shared by every styled output.
const (
	colorPrimary = lipgloss.Color("#7C3AED")
	colorMuted   = lipgloss.Color("#6B7280")
	colorSuccess = lipgloss.Color("#10B981")
	colorError   = lipgloss.Color("#EF4444")
	colorWarning = lipgloss.Color("#F59E0B")
	colorModule  = lipgloss.Color("#3B82F6")
)

// Styles holds the lipgloss styles of one renderer.
type Styles struct {
	Header1 lipgloss.Style
	Header2 lipgloss.Style
	Module  lipgloss.Style
	Key     lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
}

// NewStyles builds styles bound to lr, so that they honour its color profile.
func NewStyles(lr *lipgloss.Renderer) *Styles {
	return &Styles{
		Header1: lr.NewStyle().Bold(true).Foreground(colorPrimary),
		Header2: lr.NewStyle().Bold(true),
		Module:  lr.NewStyle().Foreground(colorModule),
		Key:     lr.NewStyle().Bold(true),
		Muted:   lr.NewStyle().Foreground(colorMuted),
		Success: lr.NewStyle().Foreground(colorSuccess),
		Warning: lr.NewStyle().Foreground(colorWarning),
		Error:   lr.NewStyle().Bold(true).Foreground(colorError),
	}
}
