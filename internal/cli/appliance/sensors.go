package appliance

import (
	"context"

	"github.com/julianstephens/sleepwatch/internal/cli"
	"github.com/julianstephens/sleepwatch/internal/logger"
)

// SensorsCmd fetches the latest bedroom reading. When the appliance cannot be
// reached the cached reading is shown instead.
type SensorsCmd struct{}

func (cmd *SensorsCmd) Run(ctx *cli.Context) error {
	ctrl, err := ctx.Controller()
	if err != nil {
		return err
	}

	refreshErr := ctrl.RefreshSensors(context.Background())
	s := ctrl.Snapshot()
	if refreshErr != nil {
		if s.Sensors == nil {
			return refreshErr
		}
		logger.Warn("showing cached sensor reading", "error", refreshErr)
		ctx.Println("(appliance unreachable, showing the last known reading)")
	}
	printSensors(ctx, ctrl, s)
	return nil
}
