package appliance

import (
	"context"
	"errors"
	"fmt"

	"github.com/julianstephens/sleepwatch/internal/cli"
	"github.com/julianstephens/sleepwatch/internal/constants"
	"github.com/julianstephens/sleepwatch/internal/utils"
)

// RateCmd records last night's sleep quality.
type RateCmd struct {
	Rating int `arg:"" help:"Sleep quality, 0-10."`
}

func (cmd *RateCmd) Run(ctx *cli.Context) error {
	ctrl, err := ctx.Controller()
	if err != nil {
		return err
	}

	rating := utils.Clamp(cmd.Rating, constants.RatingMin, constants.RatingMax)
	if rating != cmd.Rating {
		ctx.Printf("Rating %d is out of range, sending %d\n", cmd.Rating, rating)
	}

	bg := context.Background()
	ctrl.CheckEligibility(bg)
	s := ctrl.Snapshot()
	if s.Eligibility.HasRatedToday {
		return errors.New("today's sleep is already rated")
	}
	if !s.Eligibility.CanRateToday {
		return errors.New("the appliance is not accepting a rating right now")
	}

	if err := ctrl.SubmitRating(bg, rating); err != nil {
		return fmt.Errorf("failed to submit rating: %w", err)
	}
	ctx.Printf("✓ Rating %d/%d submitted\n", rating, constants.RatingMax)
	return nil
}
