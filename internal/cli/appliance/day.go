package appliance

import (
	"context"

	"github.com/julianstephens/sleepwatch/internal/cli"
	"github.com/julianstephens/sleepwatch/internal/models"
)

// DayCmd shows the daily summary for one date.
type DayCmd struct {
	Date   string `help:"Date (YYYY-MM-DD). Defaults to today."`
	Offset int    `help:"Days relative to the date, e.g. -1 for the day before." default:"0"`
}

func (cmd *DayCmd) Run(ctx *cli.Context) error {
	ctrl, err := ctx.Controller()
	if err != nil {
		return err
	}

	day := ctrl.Snapshot().Today
	if cmd.Date != "" {
		if day, err = models.ParseDate(cmd.Date); err != nil {
			return err
		}
	}
	day = day.AddDays(cmd.Offset)

	ctrl.SelectDate(context.Background(), day)
	s := ctrl.Snapshot()
	printDay(ctx, s)
	if s.IsTodaySelected() {
		ctx.Printf("  Rating:       %s\n", eligibilityText(s))
	}
	return nil
}
