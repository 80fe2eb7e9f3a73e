package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/julianstephens/sleepwatch/internal/models"
	"github.com/julianstephens/sleepwatch/internal/storage"
)

// ErrStale is returned when a newer request on the same stream finished first.
var ErrStale = errors.New("superseded by a newer request")

var validate = validator.New()

// RefreshSensors fetches the latest telemetry and then checks the alarm status.
// On failure the previous snapshot is kept.
func (c *Controller) RefreshSensors(ctx context.Context) error {
	seq := c.begin(streamSensors)

	snap, err := c.remote.FetchLatestSensors(ctx)
	if err != nil {
		c.log.Debug("sensor refresh failed", "error", err)
		c.publish(EventSensors, err)
		return err
	}

	reading := models.SensorReading{SensorSnapshot: snap, ReceivedAt: c.now()}

	c.mu.Lock()
	if !c.current(streamSensors, seq) {
		c.mu.Unlock()
		return ErrStale
	}
	c.state.Sensors = &reading
	c.mu.Unlock()

	if err := storage.SaveSensors(c.store, reading); err != nil {
		c.log.Warn("failed to cache sensors", "error", err)
	}
	c.publish(EventSensors, nil)

	c.CheckAlarmStatus(ctx)
	return nil
}

// CheckAlarmStatus clears the alarm when the appliance reports it has fired.
// A failed check is treated as "not triggered".
func (c *Controller) CheckAlarmStatus(ctx context.Context) {
	c.mu.Lock()
	c.seq[streamAlarmStatus]++
	seq := c.seq[streamAlarmStatus]
	actionSeq := c.seq[streamAlarm]
	c.mu.Unlock()

	status, err := c.remote.FetchAlarmStatus(ctx)
	if err != nil {
		c.log.Debug("alarm status check failed", "error", err)
		status = models.AlarmStatus{}
	}
	if !status.Triggered {
		return
	}

	c.mu.Lock()
	// An alarm set or cancelled after this check began is newer than the report.
	if !c.current(streamAlarmStatus, seq) || !c.current(streamAlarm, actionSeq) {
		c.mu.Unlock()
		return
	}
	c.state.Alarm = models.NoAlarm()
	c.mu.Unlock()

	c.log.Info("alarm fired, clearing local alarm")
	if err := storage.ClearAlarm(c.store); err != nil {
		c.log.Warn("failed to clear cached alarm", "error", err)
	}
	c.publish(EventAlarmStatus, nil)
}

// MarkAlarmTriggered clears the alarm after an out-of-band notice that it fired.
func (c *Controller) MarkAlarmTriggered() {
	c.mu.Lock()
	wasSet := c.state.Alarm.IsSet()
	c.state.Alarm = models.NoAlarm()
	c.mu.Unlock()

	if wasSet {
		c.log.Info("alarm turned off on the appliance")
	}
	if err := storage.ClearAlarm(c.store); err != nil {
		c.log.Warn("failed to clear cached alarm", "error", err)
	}
	c.publish(EventAlarmTriggered, nil)
}

// RefreshDaily loads the record for the selected date. Future dates yield no
// data without a request; any failure also yields no data.
func (c *Controller) RefreshDaily(ctx context.Context) {
	c.mu.Lock()
	today := c.rollover()
	selected := c.state.SelectedDate
	c.seq[streamDaily]++
	seq := c.seq[streamDaily]
	if selected.After(today) {
		c.state.Daily = nil
		c.mu.Unlock()
		c.publish(EventDaily, nil)
		return
	}
	c.mu.Unlock()

	record, err := c.remote.FetchDailyRecord(ctx, selected)
	if err != nil {
		c.log.Debug("daily refresh failed", "date", selected, "error", err)
		record = nil
	}

	c.mu.Lock()
	if !c.current(streamDaily, seq) {
		c.mu.Unlock()
		return
	}
	c.state.Daily = record
	persistRated := false
	rated := false
	if record != nil && selected.Equal(today) {
		rated = record.IsRated()
		c.setRated(rated, today)
		persistRated = true
	}
	c.mu.Unlock()

	if persistRated {
		if err := storage.SaveRatedToday(c.store, rated, today); err != nil {
			c.log.Warn("failed to cache rated flag", "error", err)
		}
	}
	c.publish(EventDaily, err)
}

// CheckEligibility combines the appliance's answer with the local rules: only
// today can be rated, and only once.
func (c *Controller) CheckEligibility(ctx context.Context) {
	seq := c.begin(streamEligibility)

	canRate, err := c.remote.FetchRatingEligibility(ctx)
	if err != nil {
		c.log.Debug("eligibility check failed", "error", err)
		canRate = false
	}

	c.mu.Lock()
	if !c.current(streamEligibility, seq) {
		c.mu.Unlock()
		return
	}
	c.rollover()
	c.state.Eligibility.CanRateToday = canRate &&
		c.state.SelectedDate.Equal(c.state.Today) &&
		!c.state.Eligibility.HasRatedToday
	c.mu.Unlock()

	c.publish(EventEligibility, err)
}

// SubmitRating sends rating as given; the caller is responsible for the range.
// On success today is marked rated and the daily record is reloaded.
func (c *Controller) SubmitRating(ctx context.Context, rating int) error {
	c.mu.Lock()
	c.state.Submission = SubmissionPending
	c.mu.Unlock()

	if err := c.remote.SubmitRating(ctx, rating); err != nil {
		c.mu.Lock()
		c.state.Submission = SubmissionFailed
		c.mu.Unlock()
		c.log.Warn("rating submission failed", "rating", rating, "error", err)
		c.publish(EventRating, err)
		return err
	}

	c.mu.Lock()
	today := c.rollover()
	c.setRated(true, today)
	c.state.Submission = SubmissionSucceeded
	// Results of checks issued before the submission no longer apply.
	c.seq[streamDaily]++
	c.seq[streamEligibility]++
	c.mu.Unlock()

	if err := storage.SaveRatedToday(c.store, true, today); err != nil {
		c.log.Warn("failed to cache rated flag", "error", err)
	}
	c.publish(EventRating, nil)

	c.RefreshDaily(ctx)
	return nil
}

// AlarmTarget returns the next instant at hour:minute in loc: today if that
// moment has not passed yet, otherwise tomorrow. The offset is whole seconds.
func AlarmTarget(now time.Time, loc *time.Location, hour, minute int) (time.Time, int) {
	now = now.In(loc)
	target := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, loc)
	if target.Before(now) {
		target = time.Date(now.Year(), now.Month(), now.Day()+1, hour, minute, 0, 0, loc)
	}
	return target, int(target.Sub(now) / time.Second)
}

// SetAlarm schedules the alarm for the next occurrence of hour:minute.
// On failure the previous alarm is left as it was.
func (c *Controller) SetAlarm(ctx context.Context, hour, minute int) (models.AlarmState, error) {
	if err := validate.Struct(models.AlarmRequest{Hour: hour, Minute: minute}); err != nil {
		return models.AlarmState{}, fmt.Errorf("invalid alarm time %02d:%02d: %w", hour, minute, err)
	}

	seq := c.begin(streamAlarm)
	target, offset := AlarmTarget(c.now(), c.loc, hour, minute)

	if err := c.remote.SetAlarm(ctx, offset); err != nil {
		c.log.Warn("failed to set alarm", "offset", offset, "error", err)
		c.publish(EventAlarmSet, err)
		return models.AlarmState{}, err
	}

	alarm := models.AlarmState{OffsetSeconds: offset, Hour: hour, Minute: minute, Timestamp: target}

	c.mu.Lock()
	if !c.current(streamAlarm, seq) {
		c.mu.Unlock()
		return alarm, ErrStale
	}
	c.state.Alarm = alarm
	c.mu.Unlock()

	if err := storage.SaveAlarm(c.store, alarm); err != nil {
		c.log.Warn("failed to cache alarm", "error", err)
	}
	c.log.Info("alarm set", "target", target, "offset", offset)
	c.publish(EventAlarmSet, nil)
	return alarm, nil
}

// CancelAlarm cancels the alarm and clears every cached alarm field.
func (c *Controller) CancelAlarm(ctx context.Context) error {
	seq := c.begin(streamAlarm)

	if err := c.remote.CancelAlarm(ctx); err != nil {
		c.log.Warn("failed to cancel alarm", "error", err)
		c.publish(EventAlarmCanceled, err)
		return err
	}

	c.mu.Lock()
	if !c.current(streamAlarm, seq) {
		c.mu.Unlock()
		return ErrStale
	}
	c.state.Alarm = models.NoAlarm()
	c.mu.Unlock()

	if err := storage.ClearAlarm(c.store); err != nil {
		c.log.Warn("failed to clear cached alarm", "error", err)
	}
	c.publish(EventAlarmCanceled, nil)
	return nil
}

// SelectDate changes the selected day, then refreshes the daily record and
// the eligibility, in that order.
func (c *Controller) SelectDate(ctx context.Context, day models.Date) {
	c.mu.Lock()
	c.state.SelectedDate = day
	c.mu.Unlock()
	c.publish(EventDateSelected, nil)

	c.RefreshDaily(ctx)
	c.CheckEligibility(ctx)
}

// Refresh runs a sensor refresh, a daily refresh and an eligibility check
// concurrently and waits for all three.
func (c *Controller) Refresh(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		_ = c.RefreshSensors(ctx)
	}()
	go func() {
		defer wg.Done()
		c.RefreshDaily(ctx)
	}()
	go func() {
		defer wg.Done()
		c.CheckEligibility(ctx)
	}()
	wg.Wait()
}
