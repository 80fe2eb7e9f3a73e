package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/sleepwatch/internal/constants"
	"github.com/julianstephens/sleepwatch/internal/controller"
	"github.com/julianstephens/sleepwatch/internal/utils"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case constants.StateAlarmForm, constants.StateDateForm, constants.StateRatingForm:
		content = docStyle.Render(m.form.View())
	default:
		content = m.viewDashboard()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.Render(constants.AppName),
		content,
		m.viewStatus(),
		m.help.View(m.keys),
	)
}

func (m Model) viewDashboard() string {
	left := lipgloss.JoinVertical(lipgloss.Left,
		panel("Bedroom", m.sensorsView.View()),
		panel("Alarm", m.viewAlarm()),
	)
	return lipgloss.JoinHorizontal(lipgloss.Top, left, panel("Day", m.dayView.Content()))
}

func (m Model) viewAlarm() string {
	label := utils.AlarmLabel(m.data.Alarm, m.ctrl.Now(), m.ctrl.Location())
	return lipgloss.JoinVertical(lipgloss.Left,
		valueStyle.Render(label),
		mutedStyle.Render(ratingLine(m.data)),
	)
}

func ratingLine(s controller.State) string {
	switch {
	case s.Submission == controller.SubmissionPending:
		return "Rating: submitting..."
	case s.Eligibility.HasRatedToday:
		return "Rating: done for today"
	case s.Eligibility.CanRateToday:
		return "Rating: press s to rate last night"
	}
	return "Rating: unavailable"
}

func (m Model) viewStatus() string {
	if m.status == "" {
		return ""
	}
	if m.statusErr {
		return dangerStyle.Render(m.status)
	}
	return successStyle.Render(m.status)
}

func panel(title, body string) string {
	return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, panelTitleStyle.Render(title), body))
}
