package system

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/julianstephens/sleepwatch/internal/cli"
	"github.com/julianstephens/sleepwatch/internal/constants"
	"github.com/julianstephens/sleepwatch/internal/controller"
	"github.com/julianstephens/sleepwatch/internal/utils"
)

// WatchCmd refreshes on an interval and prints a line whenever something changes.
type WatchCmd struct {
	Interval time.Duration `help:"Refresh interval. Defaults to the configured poll interval."`
	Count    int           `help:"Stop after this many refreshes (0 = until interrupted)." default:"0"`
}

func (cmd *WatchCmd) Run(ctx *cli.Context) error {
	ctrl, err := ctx.Controller()
	if err != nil {
		return err
	}
	interval := cmd.Interval
	if interval <= 0 {
		interval = ctx.Config.PollInterval
	}

	bg, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if closeWatcher := startAlarmWatcher(ctx, ctrl); closeWatcher != nil {
		defer closeWatcher()
	}

	events, unsubscribe := ctrl.Subscribe()
	defer unsubscribe()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	ctrl.Submit(bg, controller.Refresh())
	refreshes := 1
	for {
		select {
		case <-bg.Done():
			ctrl.Wait()
			return nil
		case ev := <-events:
			printEvent(ctx, ctrl, ev)
		case <-ticker.C:
			if cmd.Count > 0 && refreshes >= cmd.Count {
				ctrl.Wait()
				drain(ctx, ctrl, events)
				return nil
			}
			ctrl.Submit(bg, controller.Refresh())
			refreshes++
		}
	}
}

// drain prints events that are already queued.
func drain(ctx *cli.Context, ctrl *controller.Controller, events <-chan controller.Event) {
	for {
		select {
		case ev := <-events:
			printEvent(ctx, ctrl, ev)
		default:
			return
		}
	}
}

func printEvent(ctx *cli.Context, ctrl *controller.Controller, ev controller.Event) {
	stamp := ctrl.Now().In(ctrl.Location()).Format(constants.ClockFormat)
	s := ev.State

	switch ev.Kind {
	case controller.EventSensors:
		if ev.Err != nil {
			ctx.Printf("%s  sensors unavailable: %v\n", stamp, ev.Err)
			return
		}
		if s.Sensors != nil {
			ctx.Printf("%s  %s  %s\n", stamp,
				utils.FormatTemperature(s.Sensors.Temperature),
				utils.FormatHumidity(s.Sensors.Humidity))
		}
	case controller.EventDaily:
		if s.Daily == nil {
			ctx.Printf("%s  %s: %s\n", stamp, s.SelectedDate, utils.NoDataLabel(s.SelectedDate, s.Today))
			return
		}
		ctx.Printf("%s  %s: rating %s, wake time %s\n", stamp, s.SelectedDate,
			utils.FormatRating(*s.Daily), utils.FormatWakeTime(*s.Daily))
	case controller.EventAlarmStatus, controller.EventAlarmTriggered:
		ctx.Printf("%s  alarm went off\n", stamp)
	}
}
