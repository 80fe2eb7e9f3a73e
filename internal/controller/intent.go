package controller

import (
	"context"

	"github.com/julianstephens/sleepwatch/internal/models"
)

// IntentKind is a user action forwarded by the presentation layer.
type IntentKind int

const (
	IntentRefresh IntentKind = iota
	IntentRefreshSensors
	IntentSelectDate
	IntentSubmitRating
	IntentSetAlarm
	IntentCancelAlarm
)

// Intent carries the arguments for one action; only the fields its Kind uses are read.
type Intent struct {
	Kind   IntentKind
	Date   models.Date
	Rating int
	Hour   int
	Minute int
}

func Refresh() Intent                 { return Intent{Kind: IntentRefresh} }
func RefreshSensors() Intent          { return Intent{Kind: IntentRefreshSensors} }
func SelectDate(d models.Date) Intent { return Intent{Kind: IntentSelectDate, Date: d} }
func SubmitRating(r int) Intent       { return Intent{Kind: IntentSubmitRating, Rating: r} }
func SetAlarm(h, m int) Intent        { return Intent{Kind: IntentSetAlarm, Hour: h, Minute: m} }
func CancelAlarm() Intent             { return Intent{Kind: IntentCancelAlarm} }

// Submit runs the intent on its own goroutine and returns immediately.
// The outcome arrives as an Event on every subscription.
func (c *Controller) Submit(ctx context.Context, in Intent) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.Do(ctx, in)
	}()
}

// Do runs the intent on the calling goroutine.
func (c *Controller) Do(ctx context.Context, in Intent) error {
	switch in.Kind {
	case IntentRefresh:
		c.Refresh(ctx)
	case IntentRefreshSensors:
		return c.RefreshSensors(ctx)
	case IntentSelectDate:
		c.SelectDate(ctx, in.Date)
	case IntentSubmitRating:
		return c.SubmitRating(ctx, in.Rating)
	case IntentSetAlarm:
		_, err := c.SetAlarm(ctx, in.Hour, in.Minute)
		return err
	case IntentCancelAlarm:
		return c.CancelAlarm(ctx)
	}
	return nil
}
