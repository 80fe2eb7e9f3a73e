package system

import (
	"context"
	"os"
	"os/signal"

	"github.com/google/uuid"

	"github.com/julianstephens/sleepwatch/internal/cli"
	"github.com/julianstephens/sleepwatch/internal/constants"
	"github.com/julianstephens/sleepwatch/internal/logger"
	"github.com/julianstephens/sleepwatch/internal/mqtt"
	"github.com/julianstephens/sleepwatch/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	ctrl, err := ctx.Controller()
	if err != nil {
		return err
	}

	bg, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if closeWatcher := startAlarmWatcher(ctx, ctrl); closeWatcher != nil {
		defer closeWatcher()
	}

	return tui.Run(bg, ctrl, ctx.Config.PollInterval)
}

// startAlarmWatcher subscribes to the broker when one is configured. A broker
// that cannot be reached is logged and polling carries on without it.
func startAlarmWatcher(ctx *cli.Context, sink mqtt.AlarmSink) func() {
	if ctx.Config.MQTTBroker == "" {
		return nil
	}
	rc, err := mqtt.NewRealClient(ctx.Config.MQTTBroker, clientID())
	if err != nil {
		logger.Warn("MQTT unavailable, relying on polling", "broker", ctx.Config.MQTTBroker, "error", err)
		return nil
	}
	if err := mqtt.NewAlarmWatcher(rc, ctx.Config.MQTTTopic, sink).Start(); err != nil {
		logger.Warn("MQTT subscribe failed, relying on polling", "topic", ctx.Config.MQTTTopic, "error", err)
		_ = rc.Close()
		return nil
	}
	return func() { _ = rc.Close() }
}

func clientID() string {
	return constants.DefaultMQTTClientID + "-" + uuid.NewString()[:8]
}
