package appliance

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/sleepwatch/internal/cli"
	"github.com/julianstephens/sleepwatch/internal/utils"
)

type AlarmCmd struct {
	Set    AlarmSetCmd    `cmd:"" help:"Set the alarm for the next occurrence of HH:MM."`
	Cancel AlarmCancelCmd `cmd:"" help:"Cancel the alarm."`
	Status AlarmStatusCmd `cmd:"" help:"Show the alarm." default:"1"`
}

type AlarmSetCmd struct {
	Time string `arg:"" help:"Wall-clock time, HH:MM."`
}

func (cmd *AlarmSetCmd) Run(ctx *cli.Context) error {
	hour, minute, err := utils.ParseClock(cmd.Time)
	if err != nil {
		return err
	}
	ctrl, err := ctx.Controller()
	if err != nil {
		return err
	}

	alarm, err := ctrl.SetAlarm(context.Background(), hour, minute)
	if err != nil {
		return fmt.Errorf("failed to set alarm: %w", err)
	}
	ctx.Printf("✓ Alarm set: %s (in %s)\n",
		utils.AlarmLabel(alarm, ctrl.Now(), ctrl.Location()),
		time.Duration(alarm.OffsetSeconds)*time.Second)
	return nil
}

type AlarmCancelCmd struct{}

func (cmd *AlarmCancelCmd) Run(ctx *cli.Context) error {
	ctrl, err := ctx.Controller()
	if err != nil {
		return err
	}
	if err := ctrl.CancelAlarm(context.Background()); err != nil {
		return fmt.Errorf("failed to cancel alarm: %w", err)
	}
	ctx.Println("✓ Alarm canceled")
	return nil
}

// AlarmStatusCmd asks the appliance whether the alarm has fired, then prints it.
type AlarmStatusCmd struct{}

func (cmd *AlarmStatusCmd) Run(ctx *cli.Context) error {
	ctrl, err := ctx.Controller()
	if err != nil {
		return err
	}
	ctrl.CheckAlarmStatus(context.Background())
	s := ctrl.Snapshot()
	ctx.Printf("Alarm: %s\n", utils.AlarmLabel(s.Alarm, ctrl.Now(), ctrl.Location()))
	return nil
}
