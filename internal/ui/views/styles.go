package views

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles contains all the style definitions for the UI
type Styles struct {
	Title         lipgloss.Style
	Counter       lipgloss.Style
	Dim           lipgloss.Style
	Status        lipgloss.Style
	Search        lipgloss.Style
	Help          lipgloss.Style
	Main          lipgloss.Style
	Card          lipgloss.Style
	SelectedCard  lipgloss.Style
	EventName     lipgloss.Style
	When          lipgloss.Style
	Place         lipgloss.Style
	Organization  lipgloss.Style
	Category      lipgloss.Style
	Highlight     lipgloss.Style
	ErrorTitle    lipgloss.Style
	StatusError   lipgloss.Style
	StatusLoading lipgloss.Style
	StatusSuccess lipgloss.Style
	EmptyTitle    lipgloss.Style
	Section       lipgloss.Style
	Key           lipgloss.Style
}

// NewStyles creates a new Styles instance with default values
func NewStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")),
		Counter: lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Dim:     lipgloss.NewStyle().Faint(true),
		Status: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1),
		Search: lipgloss.NewStyle().Foreground(lipgloss.Color("214")), // yellow
		Help:   lipgloss.NewStyle().Faint(true),
		Main:   lipgloss.NewStyle().Padding(1, 2),
		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1),
		SelectedCard: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("99")).
			Padding(0, 1),
		EventName:     lipgloss.NewStyle().Bold(true),
		When:          lipgloss.NewStyle().Foreground(lipgloss.Color("51")), // cyan
		Place:         lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		Organization:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true),
		Category:      lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("39")).Padding(0, 1),
		Highlight:     lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true),
		ErrorTitle:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		StatusError:   lipgloss.NewStyle().Foreground(lipgloss.Color("203")), // red
		StatusLoading: lipgloss.NewStyle().Foreground(lipgloss.Color("241")), // gray
		StatusSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("78")),  // green
		EmptyTitle:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252")),
		Section:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).MarginTop(1),
		Key:           lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
	}
}
