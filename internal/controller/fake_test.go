package controller

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/julianstephens/sleepwatch/internal/models"
	"github.com/julianstephens/sleepwatch/internal/storage"
)

var errNetwork = errors.New("connection refused")

// fakeRemote is a scriptable Remote. Hooks run instead of the canned answers
// when set, which lets tests block or reorder responses.
type fakeRemote struct {
	mu sync.Mutex

	sensors     models.SensorSnapshot
	sensorsErr  error
	daily       map[models.Date]*models.DailyRecord
	dailyErr    error
	canRate     bool
	canRateErr  error
	status      models.AlarmStatus
	statusErr   error
	actionErr   error
	dailyHook   func(models.Date) (*models.DailyRecord, error)
	setHook     func(int) error
	statusHook  func() (models.AlarmStatus, error)
	calls       map[string]int
	lastOffset  int
	lastRating  int
	ratingCalls []int
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		daily: make(map[models.Date]*models.DailyRecord),
		calls: make(map[string]int),
	}
}

func (f *fakeRemote) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
}

func (f *fakeRemote) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeRemote) FetchLatestSensors(ctx context.Context) (models.SensorSnapshot, error) {
	f.record("sensors")
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sensors, f.sensorsErr
}

func (f *fakeRemote) FetchDailyRecord(ctx context.Context, day models.Date) (*models.DailyRecord, error) {
	f.record("daily")
	if f.dailyHook != nil {
		return f.dailyHook(day)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.dailyErr != nil {
		return nil, f.dailyErr
	}
	rec, ok := f.daily[day]
	if !ok {
		return nil, errors.New("not found")
	}
	return rec, nil
}

func (f *fakeRemote) SubmitRating(ctx context.Context, rating int) error {
	f.record("rating")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastRating = rating
	f.ratingCalls = append(f.ratingCalls, rating)
	return f.actionErr
}

func (f *fakeRemote) SetAlarm(ctx context.Context, offset int) error {
	f.record("set_alarm")
	f.mu.Lock()
	f.lastOffset = offset
	hook := f.setHook
	err := f.actionErr
	f.mu.Unlock()
	if hook != nil {
		return hook(offset)
	}
	return err
}

func (f *fakeRemote) CancelAlarm(ctx context.Context) error {
	f.record("cancel_alarm")
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.actionErr
}

func (f *fakeRemote) FetchAlarmStatus(ctx context.Context) (models.AlarmStatus, error) {
	f.record("alarm_status")
	if f.statusHook != nil {
		return f.statusHook()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status, f.statusErr
}

func (f *fakeRemote) FetchRatingEligibility(ctx context.Context) (bool, error) {
	f.record("eligibility")
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.canRate, f.canRateErr
}

func intPtr(v int) *int { return &v }

// fixedClock returns a clock stuck at t that tests can move.
type fixedClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fixedClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

func newTestController(remote *fakeRemote, now time.Time) (*Controller, *storage.MemoryStore, *fixedClock) {
	store := storage.NewMemoryStore()
	clock := &fixedClock{t: now}
	c := New(remote, store, WithClock(clock.Now), WithLocation(time.UTC))
	return c, store, clock
}
