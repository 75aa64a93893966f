package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"campusevents/internal/domain"
	"campusevents/internal/ui/state"
)

// ViewState contains all the state needed for rendering
type ViewState struct {
	Width  int
	Height int

	Screen   state.Screen
	InFlight bool
	Spinner  string

	Filtered int
	Total    int

	Searching bool
	SearchBar string
	Query     string

	Events     []domain.Event // current page only
	Cursor     int            // index into Events, -1 for none
	PageBar    string
	ImageURL   func(imagePath string) string
	ShowImages bool
	Location   *time.Location

	ErrorMessage  string
	StatusMessage string
	StatusIsError bool
	HelpView      string
}

// Renderer handles all view rendering
type Renderer struct {
	styles *Styles
	cards  *CardRenderer
}

// NewRenderer creates a new renderer
func NewRenderer() *Renderer {
	styles := NewStyles()
	return &Renderer{
		styles: styles,
		cards:  NewCardRenderer(styles),
	}
}

// Cards returns the card renderer
func (r *Renderer) Cards() *CardRenderer {
	return r.cards
}

// Render produces the complete view
func (r *Renderer) Render(vs ViewState) string {
	content := &strings.Builder{}

	content.WriteString(r.renderHeader(vs))
	content.WriteString("\n")

	if vs.Searching || vs.Query != "" {
		content.WriteString(r.styles.Search.Render(vs.SearchBar))
		content.WriteString("\n")
	}
	content.WriteString("\n")

	switch vs.Screen {
	case state.ScreenLoading:
		content.WriteString(r.renderLoading(vs))
	case state.ScreenFailed:
		content.WriteString(r.renderFailed(vs))
	case state.ScreenEmpty:
		content.WriteString(r.renderEmpty(vs))
	default:
		content.WriteString(r.renderList(vs))
	}

	if vs.StatusMessage != "" {
		style := r.styles.Status
		if vs.StatusIsError {
			style = r.styles.StatusError.MarginTop(1)
		}
		content.WriteString("\n")
		content.WriteString(style.Render(vs.StatusMessage))
	}

	if vs.HelpView != "" {
		content.WriteString("\n\n")
		content.WriteString(vs.HelpView)
	}

	return r.styles.Main.Render(content.String())
}

// Counter formats the filtered/total counter shown in the header
func Counter(filtered, total int) string {
	return fmt.Sprintf("%d / %d Events", filtered, total)
}

func (r *Renderer) renderHeader(vs ViewState) string {
	logo := r.styles.Title.Render("Campus Events")

	right := r.styles.Counter.Render(Counter(vs.Filtered, vs.Total))
	if vs.InFlight {
		right = vs.Spinner + " " + right
	}

	termWidth := vs.Width
	if termWidth <= 0 {
		termWidth = 80
	}
	// main container padding
	paddingWidth := termWidth - 4 - lipgloss.Width(logo) - lipgloss.Width(right)
	if paddingWidth < 2 {
		paddingWidth = 2
	}
	return logo + strings.Repeat(" ", paddingWidth) + right
}

func (r *Renderer) renderLoading(vs ViewState) string {
	return r.styles.StatusLoading.Render(fmt.Sprintf("%s Loading events...", vs.Spinner))
}

func (r *Renderer) renderFailed(vs ViewState) string {
	msg := vs.ErrorMessage
	if msg == "" {
		msg = "Something went wrong."
	}
	return strings.Join([]string{
		r.styles.ErrorTitle.Render("Loading Failed"),
		"",
		msg,
		"",
		r.styles.Help.Render("Press r or enter to try again"),
	}, "\n")
}

func (r *Renderer) renderEmpty(vs ViewState) string {
	if vs.Query != "" {
		return strings.Join([]string{
			r.styles.EmptyTitle.Render(fmt.Sprintf("No events match %q", vs.Query)),
			r.styles.Dim.Render("Try a different search, or press esc to clear it."),
		}, "\n")
	}
	return strings.Join([]string{
		r.styles.EmptyTitle.Render("No upcoming events found"),
		r.styles.Dim.Render("Check back later or press r to refresh."),
	}, "\n")
}

func (r *Renderer) renderList(vs ViewState) string {
	width := vs.Width - 4
	if width > 100 {
		width = 100
	}
	cards := make([]string, 0, len(vs.Events))
	for i, e := range vs.Events {
		imageURL := ""
		if vs.ShowImages && vs.ImageURL != nil {
			imageURL = vs.ImageURL(e.ImagePath)
		}
		cards = append(cards, r.cards.RenderCard(e, CardOptions{
			Selected:   i == vs.Cursor,
			Query:      vs.Query,
			Width:      width,
			Location:   vs.Location,
			ShowImages: vs.ShowImages,
			ImageURL:   imageURL,
		}))
	}
	out := lipgloss.JoinVertical(lipgloss.Left, cards...)
	if vs.PageBar != "" {
		out += "\n" + r.styles.Dim.Render(vs.PageBar)
	}
	return out
}
