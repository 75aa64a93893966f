package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"campusevents/internal/domain"
	"campusevents/internal/search"
)

// CardRenderer handles rendering of event cards
type CardRenderer struct {
	styles *Styles
}

// NewCardRenderer creates a new card renderer
func NewCardRenderer(styles *Styles) *CardRenderer {
	return &CardRenderer{styles: styles}
}

// CardOptions are the per-render settings of a card
type CardOptions struct {
	Selected   bool
	Query      string
	Width      int
	Location   *time.Location
	ShowImages bool
	ImageURL   string
}

// RenderCard renders one event as a bordered card
func (r *CardRenderer) RenderCard(e domain.Event, opts CardOptions) string {
	lines := []string{
		r.highlight(e.DisplayName(), opts.Query, r.styles.EventName),
		r.styles.When.Render(e.FormatWhen(opts.Location)),
		r.highlight(e.LocationLabel(), opts.Query, r.styles.Place),
	}
	if org := e.OrganizationName(); org != "" {
		lines = append(lines, r.highlight(org, opts.Query, r.styles.Organization))
	}
	if cats := e.TopCategories(domain.MaxDisplayCategories); len(cats) > 0 {
		tags := make([]string, 0, len(cats))
		for _, c := range cats {
			tags = append(tags, r.styles.Category.Render(c.Name))
		}
		lines = append(lines, strings.Join(tags, " "))
	}
	if opts.ShowImages {
		if opts.ImageURL != "" {
			lines = append(lines, r.styles.Dim.Render(opts.ImageURL))
		} else {
			lines = append(lines, r.styles.Dim.Render("[no image]"))
		}
	}

	style := r.styles.Card
	if opts.Selected {
		style = r.styles.SelectedCard
	}
	if opts.Width > 0 {
		// border takes two columns
		style = style.Width(opts.Width - 2)
	}
	return style.Render(strings.Join(lines, "\n"))
}

// highlight renders text with every query match emphasised
func (r *CardRenderer) highlight(text, query string, base lipgloss.Style) string {
	spans := search.Highlight(text, query)
	if len(spans) == 0 {
		return base.Render(text)
	}
	var b strings.Builder
	last := 0
	for _, sp := range spans {
		if sp.Start > last {
			b.WriteString(base.Render(text[last:sp.Start]))
		}
		b.WriteString(r.styles.Highlight.Render(text[sp.Start:sp.End]))
		last = sp.End
	}
	if last < len(text) {
		b.WriteString(base.Render(text[last:]))
	}
	return b.String()
}

// RenderDetails renders the full event description for the pager
func (r *CardRenderer) RenderDetails(e domain.Event, loc *time.Location, eventURL, imageURL string) string {
	var b strings.Builder

	b.WriteString(r.styles.Title.Render(e.DisplayName()))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "%s  %s\n", r.styles.Key.Render("When "), e.FormatWhen(loc))
	fmt.Fprintf(&b, "%s  %s\n", r.styles.Key.Render("Where"), e.LocationLabel())
	if e.Location != nil && e.Location.Address != "" {
		fmt.Fprintf(&b, "%s  %s\n", r.styles.Key.Render("     "), e.Location.Address)
	}
	if e.Location != nil && e.Location.IsVirtual && e.Location.VirtualLink != "" {
		fmt.Fprintf(&b, "%s  %s\n", r.styles.Key.Render("Join "), e.Location.VirtualLink)
	}
	if org := e.OrganizationName(); org != "" {
		fmt.Fprintf(&b, "%s  %s\n", r.styles.Key.Render("Host "), org)
	}
	if len(e.Categories) > 0 {
		names := make([]string, 0, len(e.Categories))
		for _, c := range e.Categories {
			names = append(names, c.Name)
		}
		fmt.Fprintf(&b, "%s  %s\n", r.styles.Key.Render("Tags "), strings.Join(names, ", "))
	}
	fmt.Fprintf(&b, "%s  %s\n", r.styles.Key.Render("Link "), eventURL)
	if imageURL != "" {
		fmt.Fprintf(&b, "%s  %s\n", r.styles.Key.Render("Image"), imageURL)
	}

	if desc := strings.TrimSpace(stripTags(e.Description)); desc != "" {
		b.WriteString(r.styles.Section.Render("Description"))
		b.WriteString("\n")
		b.WriteString(desc)
		b.WriteString("\n")
	}
	return b.String()
}

// stripTags removes HTML markup from event descriptions
func stripTags(s string) string {
	var b strings.Builder
	inTag := false
	for _, c := range s {
		switch {
		case c == '<':
			inTag = true
		case c == '>' && inTag:
			inTag = false
		case !inTag:
			b.WriteRune(c)
		}
	}
	return b.String()
}
