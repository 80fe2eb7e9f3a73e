package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/sleepwatch/internal/constants"
	"github.com/julianstephens/sleepwatch/internal/controller"
	"github.com/julianstephens/sleepwatch/internal/tui/components/day"
	"github.com/julianstephens/sleepwatch/internal/tui/components/sensors"
)

// eventMsg carries a controller event into the update loop.
type eventMsg controller.Event

type tickMsg time.Time

type Model struct {
	ctx         context.Context
	ctrl        *controller.Controller
	events      <-chan controller.Event
	unsubscribe func()
	poll        time.Duration

	state      constants.SessionState
	keys       KeyMap
	help       help.Model
	form       *huh.Form
	alarmForm  *AlarmFormModel
	dateForm   *DateFormModel
	ratingForm *RatingFormModel

	data        controller.State
	sensorsView sensors.Model
	dayView     day.Model

	status    string
	statusErr bool
	quitting  bool
	width     int
	height    int
}

// NewModel subscribes to ctrl. Call Close when the program exits.
func NewModel(ctx context.Context, ctrl *controller.Controller, poll time.Duration) Model {
	if poll <= 0 {
		poll = constants.DefaultPollInterval
	}
	events, unsubscribe := ctrl.Subscribe()
	data := ctrl.Snapshot()

	dv := day.New(0, 0)
	dv.SetDay(data.SelectedDate, data.Today, data.Daily)
	sv := sensors.New(ctrl.Location())
	sv.SetReading(data.Sensors)

	return Model{
		ctx:         ctx,
		ctrl:        ctrl,
		events:      events,
		unsubscribe: unsubscribe,
		poll:        poll,
		state:       constants.StateDashboard,
		keys:        DefaultKeyMap(),
		help:        help.New(),
		data:        data,
		sensorsView: sv,
		dayView:     dv,
	}
}

// Close stops event delivery.
func (m Model) Close() {
	m.unsubscribe()
}

// Init loads everything once and starts the poll timer.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.waitForEvent(),
		m.do(controller.Refresh()),
		m.tick(),
	)
}

func (m Model) waitForEvent() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return eventMsg(ev)
	}
}

// do runs an intent off the update loop. Its outcome arrives as an event.
func (m Model) do(in controller.Intent) tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		_ = ctrl.Do(ctx, in)
		return nil
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.poll, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Run starts the dashboard and blocks until the user quits.
func Run(ctx context.Context, ctrl *controller.Controller, poll time.Duration) error {
	m := NewModel(ctx, ctrl, poll)
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
