package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/sleepwatch/internal/constants"
	"github.com/julianstephens/sleepwatch/internal/models"
	"github.com/julianstephens/sleepwatch/internal/utils"
)

type AlarmFormModel struct {
	Time string
}

type DateFormModel struct {
	Date string
}

type RatingFormModel struct {
	Rating int
}

// NewAlarmForm asks for a wall-clock time. The next occurrence is used.
func NewAlarmForm(fm *AlarmFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Alarm time (HH:MM)").
				Description("Today if still ahead, otherwise tomorrow").
				Value(&fm.Time).
				Validate(func(s string) error {
					_, _, err := utils.ParseClock(strings.TrimSpace(s))
					return err
				}),
		),
	).WithTheme(huh.ThemeDracula())
}

func NewDateForm(fm *DateFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Date (YYYY-MM-DD)").
				Value(&fm.Date).
				Validate(func(s string) error {
					_, err := models.ParseDate(strings.TrimSpace(s))
					return err
				}),
		),
	).WithTheme(huh.ThemeDracula())
}

func NewRatingForm(fm *RatingFormModel) *huh.Form {
	options := make([]huh.Option[int], 0, constants.RatingMax-constants.RatingMin+1)
	for r := constants.RatingMax; r >= constants.RatingMin; r-- {
		options = append(options, huh.NewOption(fmt.Sprintf("%d", r), r))
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("How did you sleep?").
				Description(fmt.Sprintf("%d is best", constants.RatingMax)).
				Options(options...).
				Value(&fm.Rating),
		),
	).WithTheme(huh.ThemeDracula())
}
