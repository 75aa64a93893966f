package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/noborus/ov/oviewer"
)

// RenderHelpContent generates the help page shown in the pager
func RenderHelpContent(keys keyMap) string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("99")).
		MarginBottom(1)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("39")).
		MarginTop(1)

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("220")).
		Width(12)

	descStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("252"))

	sections := []struct {
		title    string
		bindings []key.Binding
	}{
		{"Navigation", []key.Binding{keys.Up, keys.Down, keys.PrevPage, keys.NextPage, keys.Top, keys.Bottom}},
		{"Events", []key.Binding{keys.Refresh, keys.LoadMore, keys.Open, keys.Details}},
		{"Search", []key.Binding{keys.Search, keys.Clear}},
		{"Other", []key.Binding{keys.Help, keys.Quit}},
	}

	var help strings.Builder
	help.WriteString(titleStyle.Render("Campus Events Help"))
	help.WriteString("\n")

	for _, s := range sections {
		help.WriteString(sectionStyle.Render(s.title))
		help.WriteString("\n")
		for _, b := range s.bindings {
			h := b.Help()
			help.WriteString(fmt.Sprintf("  %s %s\n", keyStyle.Render(h.Key), descStyle.Render(h.Desc)))
		}
	}

	help.WriteString("\n")
	help.WriteString(lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("241")).
		Render("  Search matches event name, location, organization and categories."))
	help.WriteString("\n")
	return help.String()
}

// Pager shows long text with the terminal released
type Pager interface {
	Show(content string) error
}

// PagerOps runs the ov pager on top of the Bubble Tea program
type PagerOps struct {
	program *tea.Program // reference to Bubble Tea program for terminal management
}

// NewPagerOps creates a new pager operations instance
func NewPagerOps(program *tea.Program) *PagerOps {
	return &PagerOps{
		program: program,
	}
}

// Show displays content using the ov pager
func (h *PagerOps) Show(content string) error {
	if h.program == nil {
		return fmt.Errorf("program not set")
	}

	// Release terminal control to run ov
	if err := h.program.ReleaseTerminal(); err != nil {
		return err
	}

	defer func() {
		// let ov finish with the terminal before restoring
		time.Sleep(100 * time.Millisecond)
		_ = h.program.RestoreTerminal()
	}()

	root, err := oviewer.NewRoot(strings.NewReader(content))
	if err != nil {
		return err
	}

	// ov must not write on exit (to avoid messing with our screen)
	config := oviewer.NewConfig()
	config.IsWriteOriginal = false
	root.SetConfig(config)

	return root.Run()
}
