package day

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/sleepwatch/internal/constants"
	"github.com/julianstephens/sleepwatch/internal/models"
	"github.com/julianstephens/sleepwatch/internal/utils"
)

var (
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(14)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true)

	emptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

// Model shows the daily record for the selected date.
type Model struct {
	viewport viewport.Model
	Selected models.Date
	Today    models.Date
	Record   *models.DailyRecord
	width    int
	height   int
}

func New(width, height int) Model {
	return Model{viewport: viewport.New(width, height)}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	return m.viewport.View()
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
	m.Render()
}

// SetDay replaces the displayed record; a nil record renders the no-data text.
func (m *Model) SetDay(selected, today models.Date, record *models.DailyRecord) {
	m.Selected = selected
	m.Today = today
	m.Record = record
	m.Render()
}

func (m *Model) Render() {
	m.viewport.SetContent(m.Content())
}

// Content is the rendered panel body without the viewport frame.
func (m Model) Content() string {
	var b strings.Builder
	heading := m.Selected.Midnight(time.UTC).Format(constants.LongDateFormat)
	if m.Selected.Equal(m.Today) {
		heading += " (today)"
	}
	b.WriteString(valueStyle.Render(heading))
	b.WriteString("\n\n")

	if m.Record == nil {
		b.WriteString(emptyStyle.Render(utils.NoDataLabel(m.Selected, m.Today)))
		return b.String()
	}

	rows := [][2]string{
		{"Temperature", utils.FormatTemperature(m.Record.Temperature)},
		{"Humidity", utils.FormatHumidity(m.Record.Humidity)},
		{"Sleep rating", utils.FormatRating(*m.Record)},
		{"Wake time", utils.FormatWakeTime(*m.Record)},
	}
	for _, row := range rows {
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render(row[0]), valueStyle.Render(row[1]))
	}
	return b.String()
}
