package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matburt/meeting-notes-handler/internal/adapters/driving/tui/keymap"
	"github.com/matburt/meeting-notes-handler/internal/adapters/driving/tui/messages"
	"github.com/matburt/meeting-notes-handler/internal/adapters/driving/tui/styles"
	"github.com/matburt/meeting-notes-handler/internal/adapters/driving/tui/views/seriesdetail"
	"github.com/matburt/meeting-notes-handler/internal/adapters/driving/tui/views/serieslist"
	"github.com/matburt/meeting-notes-handler/internal/core/services/diffing"
)

// App is the series browser following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	engine *diffing.Engine
	ctx    context.Context
	styles *styles.Styles
	keys   keymap.KeyMap

	listView   *serieslist.View
	detailView *seriesdetail.View

	err    error
	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports, engine *diffing.Engine) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}
	if engine == nil {
		engine = diffing.New()
	}

	s := styles.DefaultStyles()
	return &App{
		ports:      ports,
		engine:     engine,
		ctx:        context.Background(),
		styles:     s,
		keys:       keymap.Default(),
		listView:   serieslist.NewView(s),
		detailView: seriesdetail.NewView(s),
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("meeting-notes - Series"),
		a.loadSeries(),
	)
}

// loadSeries returns a command that loads the tracked series.
func (a *App) loadSeries() tea.Cmd {
	return func() tea.Msg {
		series, err := a.ports.Resolver.List(a.ctx)
		return messages.SeriesLoaded{Series: series, Err: err}
	}
}

// loadDiff returns a command that diffs the two newest cached
// signatures of a series.
func (a *App) loadDiff(seriesID string) tea.Cmd {
	return func() tea.Msg {
		signatures, err := a.ports.Cache.LatestN(a.ctx, seriesID, 2)
		if err != nil {
			return messages.DiffLoaded{SeriesID: seriesID, Err: err}
		}
		if len(signatures) < 2 {
			return messages.DiffLoaded{SeriesID: seriesID}
		}

		diff := a.engine.Diff(&signatures[0], &signatures[1])
		summary := fmt.Sprintf("%s vs %s\n%s",
			signatures[0].OccurrenceKey.Date,
			signatures[1].OccurrenceKey.Date,
			diffing.Summary(diff))
		return messages.DiffLoaded{SeriesID: seriesID, Summary: summary}
	}
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.layout()
		return a, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, a.keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, a.keys.ScrollUp), key.Matches(msg, a.keys.ScrollDown):
			a.detailView, cmd = a.detailView.Update(msg)
			return a, cmd
		default:
			a.listView, cmd = a.listView.Update(msg)
			return a, cmd
		}

	case messages.SeriesLoaded:
		if msg.Err != nil {
			a.err = msg.Err
			a.listView.SetError(msg.Err)
			return a, nil
		}
		a.listView.SetSeries(msg.Series)
		// Show the first series immediately.
		if selected := a.listView.Selected(); selected != nil {
			a.detailView.SetSeries(selected)
			return a, a.loadDiff(selected.SeriesID)
		}
		return a, nil

	case messages.SeriesSelected:
		series := msg.Series
		a.detailView.SetSeries(&series)
		return a, a.loadDiff(series.SeriesID)

	case messages.DiffLoaded:
		a.detailView, cmd = a.detailView.Update(msg)
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
		return a, nil
	}

	return a, nil
}

// layout distributes the terminal between the two panes.
func (a *App) layout() {
	listWidth := a.width / 3
	if listWidth < 24 {
		listWidth = 24
	}
	detailWidth := a.width - listWidth - 6
	if detailWidth < 20 {
		detailWidth = 20
	}
	paneHeight := a.height - 4
	if paneHeight < 5 {
		paneHeight = 5
	}
	a.listView.SetDimensions(listWidth, paneHeight)
	a.detailView.SetDimensions(detailWidth, paneHeight)
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	listWidth := a.width / 3
	if listWidth < 24 {
		listWidth = 24
	}
	paneHeight := a.height - 4
	if paneHeight < 5 {
		paneHeight = 5
	}

	left := a.styles.Pane.Width(listWidth).Height(paneHeight).Render(a.listView.View())
	right := a.styles.Pane.Width(a.width - listWidth - 4).Height(paneHeight).Render(a.detailView.View())

	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	help := a.styles.Help.Render("[↑/↓/j/k] navigate  [enter] show  [pgup/pgdn] scroll detail  [q] quit")
	return body + "\n" + help
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has received its dimensions.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions (for testing).
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.layout()
}
