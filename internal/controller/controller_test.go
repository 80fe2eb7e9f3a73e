package controller

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/sleepwatch/internal/constants"
	"github.com/julianstephens/sleepwatch/internal/models"
	"github.com/julianstephens/sleepwatch/internal/storage"
)

var (
	ctx      = context.Background()
	morning  = time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC)
	march10  = models.Date{Year: 2024, Month: 3, Day: 10}
	march9   = models.Date{Year: 2024, Month: 3, Day: 9}
	march11  = models.Date{Year: 2024, Month: 3, Day: 11}
	record21 = &models.DailyRecord{Temperature: 21.5, Humidity: 55.0, SleepRating: intPtr(0)}
)

func TestNewDefaultsToToday(t *testing.T) {
	c, _, _ := newTestController(newFakeRemote(), morning)
	s := c.Snapshot()
	assert.Equal(t, march10, s.SelectedDate)
	assert.Equal(t, march10, s.Today)
	assert.False(t, s.Alarm.IsSet())
	assert.Nil(t, s.Sensors)
	assert.Nil(t, s.Daily)
}

func TestInitRestoresCache(t *testing.T) {
	remote := newFakeRemote()
	c, store, _ := newTestController(remote, morning)

	target := time.Date(2024, 3, 11, 7, 30, 0, 0, time.UTC)
	require.NoError(t, storage.SaveAlarm(store, models.AlarmState{OffsetSeconds: 77400, Hour: 7, Minute: 30, Timestamp: target}))
	require.NoError(t, storage.SaveSensors(store, models.SensorReading{
		SensorSnapshot: models.SensorSnapshot{Temperature: 20.1, Humidity: 40},
		ReceivedAt:     morning.Add(-time.Hour),
	}))
	require.NoError(t, storage.SaveRatedToday(store, true, march10))

	require.NoError(t, c.Init())
	s := c.Snapshot()
	require.NotNil(t, s.Sensors)
	assert.Equal(t, 20.1, s.Sensors.Temperature)
	assert.Equal(t, 7, s.Alarm.Hour)
	assert.True(t, s.Alarm.Timestamp.Equal(target))
	assert.True(t, s.Eligibility.HasRatedToday)
	assert.False(t, s.Eligibility.CanRateToday)
	assert.Zero(t, remote.count("sensors"), "init reads the cache only")
}

func TestRefreshSensors(t *testing.T) {
	remote := newFakeRemote()
	remote.sensors = models.SensorSnapshot{Temperature: 22.4, Humidity: 48}
	c, store, _ := newTestController(remote, morning)

	require.NoError(t, c.RefreshSensors(ctx))

	s := c.Snapshot()
	require.NotNil(t, s.Sensors)
	assert.Equal(t, 22.4, s.Sensors.Temperature)
	assert.True(t, s.Sensors.ReceivedAt.Equal(morning))
	assert.Equal(t, 1, remote.count("alarm_status"), "a sensor refresh is followed by an alarm check")

	dump := store.Dump()
	assert.Equal(t, "22.4", dump[constants.KeyTemperature])
	assert.Equal(t, "48", dump[constants.KeyHumidity])
	assert.Contains(t, dump, constants.KeyLastUpdateTime)
}

func TestRefreshSensorsFailureKeepsPrevious(t *testing.T) {
	remote := newFakeRemote()
	remote.sensors = models.SensorSnapshot{Temperature: 22.4, Humidity: 48}
	c, _, _ := newTestController(remote, morning)
	require.NoError(t, c.RefreshSensors(ctx))

	remote.mu.Lock()
	remote.sensorsErr = errNetwork
	remote.mu.Unlock()

	assert.ErrorIs(t, c.RefreshSensors(ctx), errNetwork)
	s := c.Snapshot()
	require.NotNil(t, s.Sensors)
	assert.Equal(t, 22.4, s.Sensors.Temperature)
	assert.Equal(t, 1, remote.count("alarm_status"), "no alarm check after a failed refresh")
}

func TestAlarmTriggeredClearsEverything(t *testing.T) {
	remote := newFakeRemote()
	c, store, _ := newTestController(remote, morning)

	_, err := c.SetAlarm(ctx, 11, 15)
	require.NoError(t, err)
	require.True(t, c.Snapshot().Alarm.IsSet())

	remote.status = models.AlarmStatus{Triggered: true}
	c.CheckAlarmStatus(ctx)

	assert.Equal(t, constants.NoAlarm, c.Snapshot().Alarm.OffsetSeconds)
	for _, key := range constants.AlarmKeys {
		assert.NotContains(t, store.Dump(), key)
	}
}

func TestAlarmTriggeredWithoutLocalAlarm(t *testing.T) {
	remote := newFakeRemote()
	remote.status = models.AlarmStatus{Triggered: true}
	c, _, _ := newTestController(remote, morning)

	c.CheckAlarmStatus(ctx)
	assert.Equal(t, constants.NoAlarm, c.Snapshot().Alarm.OffsetSeconds)
}

func TestAlarmStatusFailureIsNotTriggered(t *testing.T) {
	remote := newFakeRemote()
	c, _, _ := newTestController(remote, morning)
	_, err := c.SetAlarm(ctx, 11, 0)
	require.NoError(t, err)

	remote.statusErr = errNetwork
	remote.status = models.AlarmStatus{Triggered: true}
	c.CheckAlarmStatus(ctx)

	assert.True(t, c.Snapshot().Alarm.IsSet())
}

func TestSetAlarmScenarioRollsToTomorrow(t *testing.T) {
	remote := newFakeRemote()
	c, store, _ := newTestController(remote, morning)

	alarm, err := c.SetAlarm(ctx, 9, 0)
	require.NoError(t, err)

	want := time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC)
	assert.True(t, alarm.Timestamp.Equal(want), "target = %v", alarm.Timestamp)
	assert.Equal(t, 82800, alarm.OffsetSeconds)
	assert.Equal(t, 82800, remote.lastOffset)

	dump := store.Dump()
	assert.Equal(t, "82800", dump[constants.KeyAlarmTime])
	assert.Equal(t, "9", dump[constants.KeyAlarmHour])
	assert.Equal(t, "0", dump[constants.KeyAlarmMinute])
	assert.Equal(t, fmt.Sprint(want.UnixMilli()), dump[constants.KeyAlarmTimestamp])
}

func TestAlarmTarget(t *testing.T) {
	now := time.Date(2024, 3, 10, 10, 0, 30, 500_000_000, time.UTC)

	tests := []struct {
		name       string
		hour, min  int
		wantDay    int
		wantOffset int
	}{
		{"later today", 11, 0, 10, 3569},
		{"earlier today rolls over", 9, 0, 11, 82769},
		{"same minute already passed", 10, 0, 11, 86369},
		{"next minute", 10, 1, 10, 29},
		{"midnight", 0, 0, 11, 50369},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, offset := AlarmTarget(now, time.UTC, tt.hour, tt.min)
			assert.Equal(t, tt.wantDay, target.Day())
			assert.Equal(t, tt.hour, target.Hour())
			assert.Equal(t, tt.min, target.Minute())
			assert.Equal(t, tt.wantOffset, offset)
			assert.GreaterOrEqual(t, offset, 0)
		})
	}
}

func TestAlarmTargetExactlyNow(t *testing.T) {
	now := time.Date(2024, 3, 10, 7, 0, 0, 0, time.UTC)
	target, offset := AlarmTarget(now, time.UTC, 7, 0)
	assert.True(t, target.Equal(now))
	assert.Zero(t, offset)
}

func TestAlarmTargetAcrossMonthEnd(t *testing.T) {
	now := time.Date(2024, 12, 31, 23, 30, 0, 0, time.UTC)
	target, offset := AlarmTarget(now, time.UTC, 6, 0)
	assert.Equal(t, time.Date(2025, 1, 1, 6, 0, 0, 0, time.UTC), target)
	assert.Equal(t, 6*3600+30*60, offset)
}

func TestSetAlarmRejectsInvalidTime(t *testing.T) {
	remote := newFakeRemote()
	c, _, _ := newTestController(remote, morning)

	_, err := c.SetAlarm(ctx, 24, 0)
	assert.Error(t, err)
	_, err = c.SetAlarm(ctx, 7, 60)
	assert.Error(t, err)
	assert.Zero(t, remote.count("set_alarm"))
}

func TestSetAlarmFailureKeepsPrevious(t *testing.T) {
	remote := newFakeRemote()
	c, store, _ := newTestController(remote, morning)
	prev, err := c.SetAlarm(ctx, 22, 0)
	require.NoError(t, err)

	remote.actionErr = errNetwork
	_, err = c.SetAlarm(ctx, 6, 30)
	assert.ErrorIs(t, err, errNetwork)

	assert.Equal(t, prev, c.Snapshot().Alarm)
	assert.Equal(t, "22", store.Dump()[constants.KeyAlarmHour])
}

func TestSetThenCancel(t *testing.T) {
	remote := newFakeRemote()
	c, store, _ := newTestController(remote, morning)

	_, err := c.SetAlarm(ctx, 7, 0)
	require.NoError(t, err)
	require.NoError(t, c.CancelAlarm(ctx))

	s := c.Snapshot()
	assert.Equal(t, constants.NoAlarm, s.Alarm.OffsetSeconds)
	assert.Zero(t, s.Alarm.Hour)
	for _, key := range constants.AlarmKeys {
		assert.NotContains(t, store.Dump(), key, "cancel clears all alarm fields")
	}
}

func TestCancelFailureKeepsAlarm(t *testing.T) {
	remote := newFakeRemote()
	c, _, _ := newTestController(remote, morning)
	_, err := c.SetAlarm(ctx, 7, 0)
	require.NoError(t, err)

	remote.actionErr = errNetwork
	assert.Error(t, c.CancelAlarm(ctx))
	assert.True(t, c.Snapshot().Alarm.IsSet())
}

func TestSubmitRatingAllValues(t *testing.T) {
	for r := constants.RatingMin; r <= constants.RatingMax; r++ {
		t.Run(fmt.Sprintf("rating %d", r), func(t *testing.T) {
			remote := newFakeRemote()
			remote.canRate = true
			c, store, _ := newTestController(remote, morning)
			c.CheckEligibility(ctx)
			require.True(t, c.Snapshot().Eligibility.CanRateToday)

			require.NoError(t, c.SubmitRating(ctx, r))

			s := c.Snapshot()
			assert.True(t, s.Eligibility.HasRatedToday)
			assert.False(t, s.Eligibility.CanRateToday)
			assert.Equal(t, SubmissionSucceeded, s.Submission)
			assert.Equal(t, r, remote.lastRating, "rating is sent unclamped")
			assert.Equal(t, "true", store.Dump()[constants.KeyHasRatedToday])
		})
	}
}

func TestSubmitRatingRefreshesDaily(t *testing.T) {
	remote := newFakeRemote()
	remote.daily[march10] = &models.DailyRecord{Temperature: 21, Humidity: 50, SleepRating: intPtr(8)}
	c, _, _ := newTestController(remote, morning)

	require.NoError(t, c.SubmitRating(ctx, 8))
	assert.Equal(t, 1, remote.count("daily"))

	s := c.Snapshot()
	require.NotNil(t, s.Daily)
	assert.Equal(t, 8, s.Daily.Rating())
	assert.True(t, s.Eligibility.HasRatedToday)
}

func TestSubmitRatingFailure(t *testing.T) {
	remote := newFakeRemote()
	remote.canRate = true
	remote.actionErr = errNetwork
	c, store, _ := newTestController(remote, morning)
	c.CheckEligibility(ctx)
	before := c.Snapshot()

	assert.Error(t, c.SubmitRating(ctx, 5))

	after := c.Snapshot()
	assert.Equal(t, SubmissionFailed, after.Submission)
	after.Submission = before.Submission
	assert.Equal(t, before, after, "only the submission status changes")
	assert.NotContains(t, store.Dump(), constants.KeyHasRatedToday)
	assert.Zero(t, remote.count("daily"))
}

func TestRefreshDailyFutureDateMakesNoCall(t *testing.T) {
	remote := newFakeRemote()
	remote.daily[march11] = record21
	c, _, _ := newTestController(remote, morning)

	c.SelectDate(ctx, march11)

	s := c.Snapshot()
	assert.Nil(t, s.Daily)
	assert.True(t, s.IsFutureSelected())
	assert.Zero(t, remote.count("daily"))
	assert.False(t, s.Eligibility.CanRateToday)
}

func TestRefreshDailyRatingZeroIsUnrated(t *testing.T) {
	remote := newFakeRemote()
	remote.daily[march10] = record21
	c, store, _ := newTestController(remote, morning)
	require.NoError(t, storage.SaveRatedToday(store, true, march10))
	require.NoError(t, c.Init())

	c.RefreshDaily(ctx)

	s := c.Snapshot()
	require.NotNil(t, s.Daily)
	assert.Equal(t, 21.5, s.Daily.Temperature)
	assert.False(t, s.Eligibility.HasRatedToday)
	assert.Equal(t, "false", store.Dump()[constants.KeyHasRatedToday])
}

func TestRefreshDailyPastDayLeavesRatedFlag(t *testing.T) {
	remote := newFakeRemote()
	remote.daily[march9] = &models.DailyRecord{SleepRating: intPtr(6)}
	c, store, _ := newTestController(remote, morning)

	c.SelectDate(ctx, march9)

	s := c.Snapshot()
	require.NotNil(t, s.Daily)
	assert.False(t, s.Eligibility.HasRatedToday, "a past rating says nothing about today")
	assert.NotContains(t, store.Dump(), constants.KeyHasRatedToday)
}

func TestRefreshDailyFailureOnlyClearsRecord(t *testing.T) {
	remote := newFakeRemote()
	remote.daily[march10] = &models.DailyRecord{Temperature: 19, SleepRating: intPtr(7)}
	remote.sensors = models.SensorSnapshot{Temperature: 22, Humidity: 45}
	c, store, _ := newTestController(remote, morning)
	require.NoError(t, c.RefreshSensors(ctx))
	c.RefreshDaily(ctx)
	_, err := c.SetAlarm(ctx, 7, 0)
	require.NoError(t, err)

	before := c.Snapshot()
	cacheBefore := store.Dump()
	require.NotNil(t, before.Daily)

	remote.mu.Lock()
	remote.dailyErr = errNetwork
	remote.mu.Unlock()
	c.RefreshDaily(ctx)

	after := c.Snapshot()
	assert.Nil(t, after.Daily)
	after.Daily = before.Daily
	assert.Equal(t, before, after)
	assert.Equal(t, cacheBefore, store.Dump())
}

func TestCheckEligibility(t *testing.T) {
	tests := []struct {
		name     string
		remote   bool
		err      error
		selected models.Date
		rated    bool
		want     bool
	}{
		{"eligible", true, nil, march10, false, true},
		{"remote says no", false, nil, march10, false, false},
		{"remote fails", true, errNetwork, march10, false, false},
		{"past day selected", true, nil, march9, false, false},
		{"already rated", true, nil, march10, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remote := newFakeRemote()
			remote.canRate = tt.remote
			remote.canRateErr = tt.err
			c, store, _ := newTestController(remote, morning)
			if tt.rated {
				require.NoError(t, storage.SaveRatedToday(store, true, march10))
				require.NoError(t, c.Init())
			}
			c.mu.Lock()
			c.state.SelectedDate = tt.selected
			c.mu.Unlock()

			c.CheckEligibility(ctx)
			assert.Equal(t, tt.want, c.Snapshot().Eligibility.CanRateToday)
		})
	}
}

func TestRatedFlagExpiresAtMidnight(t *testing.T) {
	remote := newFakeRemote()
	remote.canRate = true
	c, _, clock := newTestController(remote, morning)
	require.NoError(t, c.SubmitRating(ctx, 7))
	require.True(t, c.Snapshot().Eligibility.HasRatedToday)

	clock.Set(morning.Add(24 * time.Hour))
	c.SelectDate(ctx, march11)

	s := c.Snapshot()
	assert.Equal(t, march11, s.Today)
	assert.False(t, s.Eligibility.HasRatedToday)
	assert.True(t, s.Eligibility.CanRateToday)
}

func TestSelectDateOrder(t *testing.T) {
	remote := newFakeRemote()
	var order []string
	remote.dailyHook = func(models.Date) (*models.DailyRecord, error) {
		order = append(order, "daily")
		return nil, errNetwork
	}
	c, _, _ := newTestController(remote, morning)

	events, unsubscribe := c.Subscribe()
	defer unsubscribe()

	c.SelectDate(ctx, march9)
	order = append(order, "done")

	assert.Equal(t, []string{"daily", "done"}, order)
	assert.Equal(t, 1, remote.count("eligibility"))

	var kinds []EventKind
	for len(events) > 0 {
		kinds = append(kinds, (<-events).Kind)
	}
	assert.Equal(t, []EventKind{EventDateSelected, EventDaily, EventEligibility}, kinds)
}

func TestStaleDailyResultIsDropped(t *testing.T) {
	remote := newFakeRemote()
	slowStarted := make(chan struct{})
	release := make(chan struct{})
	remote.dailyHook = func(day models.Date) (*models.DailyRecord, error) {
		if day.Equal(march9) {
			close(slowStarted)
			<-release
			return &models.DailyRecord{Temperature: 9}, nil
		}
		return &models.DailyRecord{Temperature: 10}, nil
	}
	c, _, _ := newTestController(remote, morning)

	c.Submit(ctx, SelectDate(march9))
	<-slowStarted
	c.SelectDate(ctx, march10)
	close(release)
	c.Wait()

	s := c.Snapshot()
	assert.Equal(t, march10, s.SelectedDate)
	require.NotNil(t, s.Daily)
	assert.Equal(t, 10.0, s.Daily.Temperature, "the older response must not win")
}

func TestStatusCheckDoesNotClearNewerAlarm(t *testing.T) {
	remote := newFakeRemote()
	checkStarted := make(chan struct{})
	release := make(chan struct{})
	remote.statusHook = func() (models.AlarmStatus, error) {
		close(checkStarted)
		<-release
		return models.AlarmStatus{Triggered: true}, nil
	}
	c, _, _ := newTestController(remote, morning)

	done := make(chan struct{})
	go func() {
		c.CheckAlarmStatus(ctx)
		close(done)
	}()
	<-checkStarted

	_, err := c.SetAlarm(ctx, 6, 45)
	require.NoError(t, err)
	close(release)
	<-done

	assert.True(t, c.Snapshot().Alarm.IsSet(), "the report is about the previous alarm")
}

func TestStaleSetAlarmIsDropped(t *testing.T) {
	remote := newFakeRemote()
	setStarted := make(chan struct{})
	release := make(chan struct{})
	remote.setHook = func(int) error {
		close(setStarted)
		<-release
		return nil
	}
	c, _, _ := newTestController(remote, morning)

	errc := make(chan error, 1)
	go func() {
		_, err := c.SetAlarm(ctx, 6, 0)
		errc <- err
	}()
	<-setStarted

	remote.mu.Lock()
	remote.setHook = nil
	remote.mu.Unlock()
	require.NoError(t, c.CancelAlarm(ctx))
	close(release)

	assert.ErrorIs(t, <-errc, ErrStale)
	assert.False(t, c.Snapshot().Alarm.IsSet())
}

func TestMarkAlarmTriggered(t *testing.T) {
	remote := newFakeRemote()
	c, store, _ := newTestController(remote, morning)
	_, err := c.SetAlarm(ctx, 7, 0)
	require.NoError(t, err)

	events, unsubscribe := c.Subscribe()
	defer unsubscribe()

	c.MarkAlarmTriggered()
	assert.False(t, c.Snapshot().Alarm.IsSet())
	assert.NotContains(t, store.Dump(), constants.KeyAlarmTime)

	ev := <-events
	assert.Equal(t, EventAlarmTriggered, ev.Kind)
	assert.False(t, ev.State.Alarm.IsSet())
}

func TestRefreshRunsAllStreams(t *testing.T) {
	remote := newFakeRemote()
	remote.daily[march10] = record21
	remote.canRate = true
	c, _, _ := newTestController(remote, morning)

	c.Refresh(ctx)

	assert.Equal(t, 1, remote.count("sensors"))
	assert.Equal(t, 1, remote.count("alarm_status"))
	assert.Equal(t, 1, remote.count("daily"))
	assert.Equal(t, 1, remote.count("eligibility"))
}

func TestSubmitPostsEvents(t *testing.T) {
	remote := newFakeRemote()
	remote.actionErr = errNetwork
	c, _, _ := newTestController(remote, morning)

	events, unsubscribe := c.Subscribe()
	c.Submit(ctx, SetAlarm(7, 0))
	c.Wait()

	ev := <-events
	assert.Equal(t, EventAlarmSet, ev.Kind)
	assert.True(t, errors.Is(ev.Err, errNetwork))

	unsubscribe()
	unsubscribe()
	_, open := <-events
	assert.False(t, open, "unsubscribe closes the channel")
}

func TestSnapshotIsACopy(t *testing.T) {
	remote := newFakeRemote()
	remote.daily[march10] = &models.DailyRecord{SleepRating: intPtr(4)}
	c, _, _ := newTestController(remote, morning)
	c.RefreshDaily(ctx)

	s := c.Snapshot()
	*s.Daily.SleepRating = 9
	assert.Equal(t, 4, c.Snapshot().Daily.Rating())
}
