package sensors

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/sleepwatch/internal/constants"
	"github.com/julianstephens/sleepwatch/internal/models"
	"github.com/julianstephens/sleepwatch/internal/utils"
)

var (
	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// Model renders the latest bedroom reading.
type Model struct {
	Reading *models.SensorReading
	Loc     *time.Location
}

func New(loc *time.Location) Model {
	return Model{Loc: loc}
}

func (m *Model) SetReading(r *models.SensorReading) {
	m.Reading = r
}

func (m Model) View() string {
	if m.Reading == nil {
		return lipgloss.JoinVertical(lipgloss.Left,
			fmt.Sprintf("Temperature %s", valueStyle.Render("--")),
			fmt.Sprintf("Humidity    %s", valueStyle.Render("--")),
			mutedStyle.Render("Waiting for the first reading"),
		)
	}
	updated := "never"
	if !m.Reading.ReceivedAt.IsZero() {
		updated = m.Reading.ReceivedAt.In(m.Loc).Format(constants.ClockFormat)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		fmt.Sprintf("Temperature %s", valueStyle.Render(utils.FormatTemperature(m.Reading.Temperature))),
		fmt.Sprintf("Humidity    %s", valueStyle.Render(utils.FormatHumidity(m.Reading.Humidity))),
		mutedStyle.Render("Last updated "+updated),
	)
}
