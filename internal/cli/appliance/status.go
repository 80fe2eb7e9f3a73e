package appliance

import (
	"context"

	"github.com/julianstephens/sleepwatch/internal/cli"
	"github.com/julianstephens/sleepwatch/internal/constants"
	"github.com/julianstephens/sleepwatch/internal/controller"
	"github.com/julianstephens/sleepwatch/internal/utils"
)

// StatusCmd prints everything the dashboard shows.
type StatusCmd struct{}

func (cmd *StatusCmd) Run(ctx *cli.Context) error {
	ctrl, err := ctx.Controller()
	if err != nil {
		return err
	}
	ctrl.Refresh(context.Background())
	s := ctrl.Snapshot()

	printSensors(ctx, ctrl, s)
	ctx.Println()
	ctx.Printf("Alarm:    %s\n", utils.AlarmLabel(s.Alarm, ctrl.Now(), ctrl.Location()))
	ctx.Printf("Rating:   %s\n", eligibilityText(s))
	ctx.Println()
	printDay(ctx, s)
	return nil
}

func printSensors(ctx *cli.Context, ctrl *controller.Controller, s controller.State) {
	if s.Sensors == nil {
		ctx.Println("Sensors:  no reading")
		return
	}
	ctx.Printf("Temperature: %s\n", utils.FormatTemperature(s.Sensors.Temperature))
	ctx.Printf("Humidity:    %s\n", utils.FormatHumidity(s.Sensors.Humidity))
	ctx.Printf("Updated:     %s\n", s.Sensors.ReceivedAt.In(ctrl.Location()).Format(constants.ClockFormat))
}

func printDay(ctx *cli.Context, s controller.State) {
	heading := s.SelectedDate.String()
	if s.IsTodaySelected() {
		heading += " (today)"
	}
	ctx.Println(heading)
	if s.Daily == nil {
		ctx.Printf("  %s\n", utils.NoDataLabel(s.SelectedDate, s.Today))
		return
	}
	ctx.Printf("  Temperature:  %s\n", utils.FormatTemperature(s.Daily.Temperature))
	ctx.Printf("  Humidity:     %s\n", utils.FormatHumidity(s.Daily.Humidity))
	ctx.Printf("  Sleep rating: %s\n", utils.FormatRating(*s.Daily))
	ctx.Printf("  Wake time:    %s\n", utils.FormatWakeTime(*s.Daily))
}

func eligibilityText(s controller.State) string {
	switch {
	case s.Eligibility.HasRatedToday:
		return "already rated today"
	case s.Eligibility.CanRateToday:
		return "available"
	}
	return "unavailable"
}
