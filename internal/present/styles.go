package present

import "github.com/charmbracelet/lipgloss"

// Styles is the set of lipgloss styles used across the CLI.
type Styles struct {
	Prompt       lipgloss.Style
	Assistant    lipgloss.Style
	Comment      lipgloss.Style
	InlineCode   lipgloss.Style
	ErrorHeader  lipgloss.Style
	ErrorDetails lipgloss.Style
	ErrPadding   lipgloss.Style
}

// MakeStyles builds the shared styles with the given renderer.
func MakeStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		Prompt:       r.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#25A065", Dark: "#2ED292"}),
		Assistant:    r.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"}),
		Comment:      r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#5C5C5C"}),
		InlineCode:   r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#FF5F87", Dark: "#FF6E9D"}).Background(lipgloss.AdaptiveColor{Light: "#F2F2F2", Dark: "#3A3A3A"}).Padding(0, 1),
		ErrorHeader:  r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#FFFDF5", Dark: "#FFFDF5"}).Background(lipgloss.AdaptiveColor{Light: "#FF5F87", Dark: "#FF5F87"}).Bold(true).Padding(0, 1).SetString("ERROR"),
		ErrorDetails: r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#757575"}),
		ErrPadding:   r.NewStyle().Padding(0, 1),
	}
}
