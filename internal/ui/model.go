package ui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"campusevents/internal/config"
	"campusevents/internal/domain"
	"campusevents/internal/eventbus"
	"campusevents/internal/logic"
	"campusevents/internal/search"
	"campusevents/internal/ui/state"
	"campusevents/internal/ui/views"
)

// Feed is the event store behind the screen
type Feed interface {
	Snapshot() logic.Snapshot
	Refresh(ctx context.Context, reset bool) error
}

// Searcher filters the feed for display
type Searcher interface {
	SetEvents(events []domain.Event)
	SetQuery(query string)
	Flush()
	View() search.View
}

// LinkBuilder derives event page and image URLs
type LinkBuilder interface {
	EventURL(id int64) string
	ImageURL(imagePath string) string
}

// URLOpener launches a URL outside the terminal
type URLOpener interface {
	Open(ctx context.Context, url string) error
}

// Deps are the collaborators of the events screen. Bus, Logger and Pager may be nil.
type Deps struct {
	Feed   Feed
	Index  Searcher
	Links  LinkBuilder
	Opener URLOpener
	Pager  Pager
	Bus    eventbus.EventBus
	Config *config.Config
	Logger *zap.Logger
}

// Model represents the UI state
type Model struct {
	ctx    context.Context
	feed   Feed
	index  Searcher
	links  LinkBuilder
	opener URLOpener
	pager  Pager
	bus    eventbus.EventBus
	config *config.Config
	logger *zap.Logger
	state  *state.AppState

	width  int
	height int

	keys     keyMap
	help     help.Model
	spinner  spinner.Model
	pages    paginator.Model
	input    textinput.Model
	renderer *views.Renderer
	location *time.Location

	appliedEpoch uint64
	appliedState domain.LoadState
	statusTTL    time.Duration

	// Program reference for terminal management
	program *tea.Program
}

// NewModel creates a new UI model
func NewModel(ctx context.Context, deps Deps) *Model {
	cfg := deps.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	pager := deps.Pager
	if pager == nil {
		pager = NewPagerOps(nil)
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("99"))

	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "Search events, places, organizations, categories"
	ti.CharLimit = 100

	pg := paginator.New()
	pg.Type = paginator.Dots
	pg.PerPage = cfg.UI.PageRows
	if pg.PerPage <= 0 {
		pg.PerPage = config.DefaultPageRows
	}
	pg.ActiveDot = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Render("•")
	pg.InactiveDot = lipgloss.NewStyle().Foreground(lipgloss.Color("238")).Render("•")

	return &Model{
		ctx:      ctx,
		feed:     deps.Feed,
		index:    deps.Index,
		links:    deps.Links,
		opener:   deps.Opener,
		pager:    pager,
		bus:      deps.Bus,
		config:   cfg,
		logger:   logger.Named("ui"),
		state:    state.NewAppState(),
		keys:     defaultKeyMap(),
		help:     help.New(),
		spinner:  sp,
		pages:    pg,
		input:    ti,
		renderer: views.NewRenderer(),
		location: cfg.UI.Location(),

		appliedState: domain.StateIdle,
		statusTTL:    3 * time.Second,
	}
}

// SetProgram sets the program reference for terminal management
func (m *Model) SetProgram(p *tea.Program) {
	m.program = p
	if ops, ok := m.pager.(*PagerOps); ok {
		ops.program = p
	}
}

// State exposes the screen state for the headless bridge and tests
func (m *Model) State() *state.AppState {
	return m.state
}

// Init starts the spinner and the first fetch cycle. The collection is empty
// at this point so continuing is the same as restarting.
func (m *Model) Init() tea.Cmd {
	return m.withSpinner(m.refreshCmd(false))
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.input.Width = msg.Width - 10
		return m, nil

	case tea.KeyMsg:
		if m.state.InPager {
			return m, nil
		}
		if m.state.Searching {
			return m, m.updateSearch(msg)
		}
		return m, m.handleKey(msg)

	default:
		return m.handleNonKeyboardMsg(msg)
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	screen := m.state.Screen()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit

	case key.Matches(msg, m.keys.Search):
		m.state.Searching = true
		return m.input.Focus()

	case key.Matches(msg, m.keys.Clear):
		if m.input.Value() != "" {
			m.input.SetValue("")
			m.setQuery("")
		}
		return nil

	case key.Matches(msg, m.keys.Refresh):
		return m.startRefresh(true)

	case key.Matches(msg, m.keys.Open):
		if screen == state.ScreenFailed {
			return m.startRefresh(true)
		}
		return m.openSelected()

	case key.Matches(msg, m.keys.LoadMore):
		if m.state.InFlight() || m.state.Feed.State != domain.StateLoaded {
			return nil
		}
		return m.startRefresh(false)

	case key.Matches(msg, m.keys.Details):
		return m.showDetails()

	case key.Matches(msg, m.keys.Help):
		if m.state.ShowHelp {
			m.state.ShowHelp = false
			return nil
		}
		return m.pagerCmd("help", RenderHelpContent(m.keys))

	case key.Matches(msg, m.keys.Up):
		m.state.MoveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.state.MoveCursor(1)
	case key.Matches(msg, m.keys.PrevPage):
		m.state.MoveCursor(-m.pages.PerPage)
	case key.Matches(msg, m.keys.NextPage):
		m.state.MoveCursor(m.pages.PerPage)
	case key.Matches(msg, m.keys.Top):
		m.state.SetCursor(0)
	case key.Matches(msg, m.keys.Bottom):
		m.state.SetCursor(len(m.state.View.Events) - 1)
	}
	m.syncPages()
	return nil
}

// updateSearch feeds keys to the search box while it has focus
func (m *Model) updateSearch(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.input.Blur()
		m.state.Searching = false
		m.input.SetValue("")
		m.setQuery("")
		return nil
	case tea.KeyEnter:
		m.input.Blur()
		m.state.Searching = false
		if m.index != nil {
			m.index.Flush()
			m.applyView(m.index.View())
		}
		return nil
	case tea.KeyCtrlC:
		return tea.Quit
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.setQuery(m.input.Value())
	return cmd
}

func (m *Model) setQuery(q string) {
	if m.index == nil {
		return
	}
	m.index.SetQuery(q)
	m.applyView(m.index.View())
}

func (m *Model) handleNonKeyboardMsg(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !m.state.InFlight() && m.state.Screen() != state.ScreenLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case FeedMsg:
		m.applySnapshot(msg.Snapshot)
		return m, nil

	case ViewMsg:
		m.applyView(msg.View)
		return m, nil

	case refreshDoneMsg:
		if errors.Is(msg.err, logic.ErrSuperseded) {
			return m, nil
		}
		if m.feed != nil {
			m.applySnapshot(m.feed.Snapshot())
		}
		if msg.err != nil && m.state.Screen() != state.ScreenFailed {
			// held events are still on screen, so report the failure inline
			m.state.SetStatus(logic.FailureMessage, true)
			return m, m.clearStatusLater()
		}
		return m, nil

	case openedMsg:
		if msg.err != nil {
			m.logger.Warn("failed to open event link", zap.String("url", msg.url), zap.Error(msg.err))
			m.state.SetStatus(fmt.Sprintf("Could not open %s", msg.url), true)
			if m.bus != nil {
				m.bus.Publish(eventbus.ErrorEvent{Message: "open event link", Err: msg.err})
			}
		} else {
			m.state.SetStatus("Opened in browser", false)
		}
		return m, m.clearStatusLater()

	case pagerMsg:
		if msg.err != nil {
			m.logger.Info("pager failed, falling back", zap.String("what", msg.what), zap.Error(msg.err))
			if msg.what == "help" {
				m.state.ShowHelp = true
			} else {
				m.state.SetStatus("Details are unavailable", true)
				return m, m.clearStatusLater()
			}
		}
		return m, nil

	case EventMsg:
		if e, ok := msg.Event.(eventbus.ErrorEvent); ok {
			text := e.Message
			if e.Err != nil {
				text = fmt.Sprintf("%s: %v", e.Message, e.Err)
			}
			m.state.SetStatus(text, true)
			return m, m.clearStatusLater()
		}
		return m, nil

	case pauseRenderingMsg:
		m.state.InPager = true
		return m, nil

	case resumeRenderingMsg:
		m.state.InPager = false
		return m, nil

	case clearStatusMsg:
		m.state.ClearStatus()
		return m, nil

	default:
		if m.state.Searching {
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}
		return m, nil
	}
}

// applySnapshot takes a store snapshot and, once a cycle has settled,
// hands its events to the search index
func (m *Model) applySnapshot(snap logic.Snapshot) {
	if olderSnapshot(snap, m.state.Feed) {
		return
	}
	m.state.Feed = snap
	if !settled(snap.State) || m.index == nil {
		return
	}
	if snap.Epoch == m.appliedEpoch && snap.State == m.appliedState {
		return
	}
	m.appliedEpoch = snap.Epoch
	m.appliedState = snap.State
	m.index.SetEvents(snap.Events)
	m.applyView(m.index.View())
}

// olderSnapshot reports whether snap was taken before cur. Snapshots can
// arrive out of order because the bridge sends them without blocking.
func olderSnapshot(snap, cur logic.Snapshot) bool {
	if snap.Epoch != cur.Epoch {
		return snap.Epoch < cur.Epoch
	}
	return settled(cur.State) && !settled(snap.State)
}

func settled(s domain.LoadState) bool {
	return s == domain.StateLoaded || s == domain.StateFailed
}

// applyView shows v unless a newer view was already applied
func (m *Model) applyView(v search.View) {
	if v.Computations < m.state.View.Computations {
		return
	}
	if v.Query != m.state.View.Query {
		m.state.Cursor = 0
	}
	m.state.View = v
	m.state.ClampCursor()
	m.syncPages()
}

func (m *Model) syncPages() {
	if len(m.state.View.Events) == 0 {
		m.pages.TotalPages = 1
	} else {
		m.pages.SetTotalPages(len(m.state.View.Events))
	}
	if m.pages.PerPage > 0 {
		m.pages.Page = m.state.Cursor / m.pages.PerPage
	}
}

func (m *Model) startRefresh(reset bool) tea.Cmd {
	if m.feed == nil {
		return nil
	}
	m.state.ClearStatus()
	return m.withSpinner(m.refreshCmd(reset))
}

// withSpinner starts the spinner and then runs cmd. A sequence runs on its own
// goroutine while batched commands are evaluated on the event loop, and a
// fetch cycle must never block the loop.
func (m *Model) withSpinner(cmd tea.Cmd) tea.Cmd {
	if cmd == nil {
		return nil
	}
	return tea.Sequence(m.spinner.Tick, cmd)
}

// refreshCmd runs one fetch cycle
func (m *Model) refreshCmd(reset bool) tea.Cmd {
	if m.feed == nil {
		return nil
	}
	return func() tea.Msg {
		err := m.feed.Refresh(m.ctx, reset)
		return refreshDoneMsg{reset: reset, err: err}
	}
}

func (m *Model) openSelected() tea.Cmd {
	e, ok := m.state.Selected()
	if !ok || m.links == nil || m.opener == nil {
		return nil
	}
	url := m.links.EventURL(e.ID)
	return func() tea.Msg {
		return openedMsg{url: url, err: m.opener.Open(m.ctx, url)}
	}
}

func (m *Model) showDetails() tea.Cmd {
	e, ok := m.state.Selected()
	if !ok || m.links == nil {
		return nil
	}
	content := m.renderer.Cards().RenderDetails(e, m.location, m.links.EventURL(e.ID), m.links.ImageURL(e.ImagePath))
	return m.pagerCmd("details", content)
}

// pagerCmd returns a command that shows content using the ov pager
func (m *Model) pagerCmd(what, content string) tea.Cmd {
	return func() tea.Msg {
		if m.program != nil {
			m.program.Send(pauseRenderingMsg{})
		}
		err := m.pager.Show(content)
		if m.program != nil {
			m.program.Send(resumeRenderingMsg{})
		}
		return pagerMsg{what: what, err: err}
	}
}

func (m *Model) clearStatusLater() tea.Cmd {
	return tea.Tick(m.statusTTL, func(time.Time) tea.Msg { return clearStatusMsg{} })
}

// View renders the UI
func (m *Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}
	if m.state.InPager {
		return ""
	}

	events := m.state.View.Events
	start, end := m.pages.GetSliceBounds(len(events))
	cursor := -1
	if m.state.Cursor >= start && m.state.Cursor < end {
		cursor = m.state.Cursor - start
	}
	pageBar := ""
	if m.pages.TotalPages > 1 {
		pageBar = m.pages.View()
	}

	m.help.ShowAll = m.state.ShowHelp
	var imageURL func(string) string
	if m.links != nil {
		imageURL = m.links.ImageURL
	}

	return m.renderer.Render(views.ViewState{
		Width:         m.width,
		Height:        m.height,
		Screen:        m.state.Screen(),
		InFlight:      m.state.InFlight(),
		Spinner:       m.spinner.View(),
		Filtered:      len(events),
		Total:         m.state.View.Total,
		Searching:     m.state.Searching,
		SearchBar:     m.input.View(),
		Query:         m.state.View.Query,
		Events:        events[start:end],
		Cursor:        cursor,
		PageBar:       pageBar,
		ImageURL:      imageURL,
		ShowImages:    m.config.UI.ShowImages,
		Location:      m.location,
		ErrorMessage:  m.state.Feed.Message,
		StatusMessage: m.state.StatusMessage,
		StatusIsError: m.state.StatusIsError,
		HelpView:      m.help.View(m.keys),
	})
}
