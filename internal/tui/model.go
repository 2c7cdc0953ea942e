// Package tui provides the terminal day editor for almanac.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/almanac/internal/cache"
	"github.com/javiermolinar/almanac/internal/calendar"
	"github.com/javiermolinar/almanac/internal/config"
	"github.com/javiermolinar/almanac/internal/event"
	"github.com/javiermolinar/almanac/internal/interval"
	"github.com/javiermolinar/almanac/internal/period"
	"github.com/javiermolinar/almanac/internal/tui/commands"
	"github.com/javiermolinar/almanac/internal/tui/theme"
)

// Mode represents the current interaction mode.
type Mode int

const (
	ModeNormal  Mode = iota
	ModeEdit         // Resizing the interval of a session
	ModePrompt       // Typing the title of the edited event
	ModeConfirm      // Confirming a delete
)

func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeEdit:
		return "edit"
	case ModePrompt:
		return "prompt"
	case ModeConfirm:
		return "confirm"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// newEventMinutes is the length of the interval a new event starts with.
const newEventMinutes = 60

// Model is the main TUI model.
type Model struct {
	// Dependencies
	cal    commands.Calendar
	config *config.Config
	logger *slog.Logger
	now    func() time.Time

	styles *Styles

	// Day being shown
	day      period.Day
	entry    cache.Entry
	timed    []event.Event
	allDay   []event.Event
	selected int    // Index into timed, -1 when nothing is selected
	focusID  string // Event to select once the day reloads
	loading  bool

	mode    Mode
	session *calendar.Session
	prompt  textinput.Model

	tl timeline

	// Terminal dimensions
	width  int
	height int

	statusMsg  string
	statusErr  bool
	statusTime time.Time
}

// ModelOption configures optional model behavior.
type ModelOption func(*Model)

// WithClock sets the function used for "now".
func WithClock(now func() time.Time) ModelOption {
	return func(m *Model) { m.now = now }
}

// WithLogger sets the logger key presses and edits are logged to.
func WithLogger(l *slog.Logger) ModelOption {
	return func(m *Model) { m.logger = l }
}

// New creates a new TUI model showing today. cfg must be valid.
func New(cal commands.Calendar, cfg *config.Config, opts ...ModelOption) Model {
	t, err := theme.Load(cfg.UI.Theme)
	if err != nil {
		t, _ = theme.Load("mocha")
	}
	styles := NewStyles(t)

	prompt := textinput.New()
	prompt.Placeholder = "Title | description"
	prompt.CharLimit = 256
	prompt.Prompt = "title> "
	prompt.TextStyle = styles.PromptStyle
	prompt.PromptStyle = styles.StatusStyle

	m := Model{
		cal:      cal,
		config:   cfg,
		logger:   slog.Default(),
		now:      time.Now,
		styles:   styles,
		selected: -1,
		prompt:   prompt,
	}
	for _, opt := range opts {
		opt(&m)
	}

	start, end := cfg.DayBounds()
	m.day = period.DayOf(m.now().In(cal.Location()))
	m.tl = timeline{
		day:           m.day,
		loc:           cal.Location(),
		dayStart:      start,
		dayEnd:        end,
		minutesPerRow: cfg.MinutesPerRow(),
	}
	return m
}

// Init loads the first day.
func (m Model) Init() tea.Cmd {
	return commands.LoadDay(m.cal, m.day)
}

// Run starts the TUI and blocks until it quits.
func Run(ctx context.Context, svc *calendar.Service, cfg *config.Config, logger *slog.Logger) error {
	m := New(svc, cfg, WithLogger(logger))
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running tui: %w", err)
	}
	return nil
}

// pixelsPerMinute is the drag scale. The terminal has no pixels, so one
// minute is one pixel and a row press drags minutesPerRow pixels.
func (m Model) pixelsPerMinute() float64 {
	return 1
}

// selectedEvent returns the selected event, if any.
func (m Model) selectedEvent() (event.Event, bool) {
	if m.selected < 0 || m.selected >= len(m.timed) {
		return event.Event{}, false
	}
	return m.timed[m.selected], true
}

// editing returns the interval being edited, if any.
func (m Model) editing() *interval.Interval {
	if m.session == nil {
		return nil
	}
	iv := m.session.Interval()
	return &iv
}

// showDay switches to day d and starts loading it.
func (m Model) showDay(d period.Day) (Model, tea.Cmd) {
	m.day = d
	m.tl.day = d
	m.selected = -1
	m.loading = true
	m.logger.Debug("day shown", "day", d.String())
	return m, commands.LoadDay(m.cal, d)
}

// newEventInterval places a new event after the selected one, or at the
// start of the working day.
func (m Model) newEventInterval() interval.Interval {
	midnight := m.day.Date(m.tl.loc)
	start := midnight.Add(time.Duration(m.tl.dayStart) * time.Minute)
	if e, ok := m.selectedEvent(); ok {
		start = e.End
	}
	end := start.Add(newEventMinutes * time.Minute)
	if limit := midnight.AddDate(0, 0, 1); end.After(limit) {
		end = limit
	}
	return interval.New(start, end)
}

func (m *Model) setStatus(msg string, isErr bool) {
	m.statusMsg = msg
	m.statusErr = isErr
	m.statusTime = m.now().Add(3 * time.Second)
}
