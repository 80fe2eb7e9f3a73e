package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/sleepwatch/internal/constants"
	"github.com/julianstephens/sleepwatch/internal/controller"
	"github.com/julianstephens/sleepwatch/internal/models"
	"github.com/julianstephens/sleepwatch/internal/utils"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.dayView.SetSize(msg.Width/2, 8)
		return m, nil

	case eventMsg:
		m.apply(controller.Event(msg))
		return m, m.waitForEvent()

	case tickMsg:
		return m, tea.Batch(m.do(controller.Refresh()), m.tick())
	}

	if m.state != constants.StateDashboard {
		return m.updateForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		return m.handleKey(msg)
	}
	return m, nil
}

// apply takes the state carried by ev and sets the status line for user actions.
func (m *Model) apply(ev controller.Event) {
	m.data = ev.State
	m.sensorsView.SetReading(ev.State.Sensors)
	m.dayView.SetDay(ev.State.SelectedDate, ev.State.Today, ev.State.Daily)

	if text, isErr := statusFor(ev); text != "" {
		m.status = text
		m.statusErr = isErr
	}
}

// statusFor returns the status line for an event, or "" when the event is
// a background refresh that should not replace the current message.
func statusFor(ev controller.Event) (string, bool) {
	switch ev.Kind {
	case controller.EventAlarmSet:
		if ev.Err != nil {
			return "Failed to set the alarm", true
		}
		return "Alarm set for " + utils.FormatClock(ev.State.Alarm.Hour, ev.State.Alarm.Minute), false
	case controller.EventAlarmCanceled:
		if ev.Err != nil {
			return "Failed to cancel the alarm", true
		}
		return "Alarm canceled", false
	case controller.EventRating:
		if ev.Err != nil {
			return "Failed to submit the rating", true
		}
		return "Rating submitted", false
	case controller.EventAlarmStatus, controller.EventAlarmTriggered:
		return "Alarm went off", false
	}
	return "", false
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.Refresh):
		m.status, m.statusErr = "Refreshing...", false
		return m, m.do(controller.Refresh())

	case key.Matches(msg, m.keys.Prev):
		return m, m.do(controller.SelectDate(m.data.SelectedDate.AddDays(-1)))

	case key.Matches(msg, m.keys.Next):
		return m, m.do(controller.SelectDate(m.data.SelectedDate.AddDays(1)))

	case key.Matches(msg, m.keys.Today):
		return m, m.do(controller.SelectDate(m.ctrl.Snapshot().Today))

	case key.Matches(msg, m.keys.GoTo):
		m.dateForm = &DateFormModel{Date: m.data.SelectedDate.String()}
		m.form = NewDateForm(m.dateForm)
		m.state = constants.StateDateForm
		return m, m.form.Init()

	case key.Matches(msg, m.keys.Alarm):
		fm := &AlarmFormModel{Time: "07:00"}
		if m.data.Alarm.IsSet() {
			fm.Time = utils.FormatClock(m.data.Alarm.Hour, m.data.Alarm.Minute)
		}
		m.alarmForm = fm
		m.form = NewAlarmForm(fm)
		m.state = constants.StateAlarmForm
		return m, m.form.Init()

	case key.Matches(msg, m.keys.Cancel):
		if !m.data.Alarm.IsSet() {
			m.status, m.statusErr = "No alarm set", false
			return m, nil
		}
		return m, m.do(controller.CancelAlarm())

	case key.Matches(msg, m.keys.Rate):
		if reason := ratingBlocked(m.data); reason != "" {
			m.status, m.statusErr = reason, true
			return m, nil
		}
		m.ratingForm = &RatingFormModel{Rating: constants.RatingMax}
		m.form = NewRatingForm(m.ratingForm)
		m.state = constants.StateRatingForm
		return m, m.form.Init()
	}
	return m, nil
}

// ratingBlocked explains why the rating form cannot open, or returns "".
func ratingBlocked(s controller.State) string {
	switch {
	case !s.IsTodaySelected():
		return "Only today's sleep can be rated"
	case s.Eligibility.HasRatedToday:
		return "Today's sleep is already rated"
	case !s.Eligibility.CanRateToday:
		return "The appliance is not accepting a rating right now"
	}
	return ""
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.state = constants.StateDashboard
		return m, nil
	}

	var cmds []tea.Cmd
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}
	cmds = append(cmds, cmd)

	switch m.form.State {
	case huh.StateCompleted:
		cmds = append(cmds, m.submitForm())
		m.state = constants.StateDashboard
	case huh.StateAborted:
		m.state = constants.StateDashboard
	}
	return m, tea.Batch(cmds...)
}

// submitForm turns the completed form into an intent.
func (m *Model) submitForm() tea.Cmd {
	switch m.state {
	case constants.StateAlarmForm:
		hour, minute, err := utils.ParseClock(strings.TrimSpace(m.alarmForm.Time))
		if err != nil {
			m.status, m.statusErr = fmt.Sprintf("Invalid time: %v", err), true
			return nil
		}
		return m.do(controller.SetAlarm(hour, minute))

	case constants.StateDateForm:
		d, err := models.ParseDate(strings.TrimSpace(m.dateForm.Date))
		if err != nil {
			m.status, m.statusErr = err.Error(), true
			return nil
		}
		return m.do(controller.SelectDate(d))

	case constants.StateRatingForm:
		rating := utils.Clamp(m.ratingForm.Rating, constants.RatingMin, constants.RatingMax)
		m.status, m.statusErr = "Submitting rating...", false
		return m.do(controller.SubmitRating(rating))
	}
	return nil
}
