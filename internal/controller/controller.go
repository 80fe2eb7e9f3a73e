// Package controller reconciles what the appliance reports with the local cache
// and holds the state the presentation layer renders.
//
// Every operation is synchronous and safe to call from any goroutine; Submit
// runs one in the background. State lives behind a single mutex. Each stream
// (sensors, alarm actions, alarm status, daily record, eligibility) carries a
// sequence number and a result whose sequence is no longer the latest for its
// stream is dropped, so an older response never overwrites a newer one.
package controller

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/julianstephens/sleepwatch/internal/logger"
	"github.com/julianstephens/sleepwatch/internal/models"
	"github.com/julianstephens/sleepwatch/internal/storage"
)

// Remote is the appliance gateway. *client.Client satisfies it.
type Remote interface {
	FetchLatestSensors(ctx context.Context) (models.SensorSnapshot, error)
	FetchDailyRecord(ctx context.Context, day models.Date) (*models.DailyRecord, error)
	SubmitRating(ctx context.Context, rating int) error
	SetAlarm(ctx context.Context, offsetSeconds int) error
	CancelAlarm(ctx context.Context) error
	FetchAlarmStatus(ctx context.Context) (models.AlarmStatus, error)
	FetchRatingEligibility(ctx context.Context) (bool, error)
}

type stream int

const (
	streamSensors stream = iota
	streamAlarm
	streamAlarmStatus
	streamDaily
	streamEligibility
	numStreams
)

// Option configures a Controller.
type Option func(*Controller)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithLocation sets the timezone that defines "today" and alarm wall-clock times.
func WithLocation(loc *time.Location) Option {
	return func(c *Controller) {
		if loc != nil {
			c.loc = loc
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

type Controller struct {
	remote Remote
	store  storage.Provider
	now    func() time.Time
	loc    *time.Location
	log    *log.Logger

	mu       sync.Mutex
	state    State
	seq      [numStreams]uint64
	ratedDay models.Date // the day HasRatedToday refers to

	subMu sync.Mutex
	subs  map[int]chan Event
	next  int

	wg sync.WaitGroup
}

func New(remote Remote, store storage.Provider, opts ...Option) *Controller {
	c := &Controller{
		remote: remote,
		store:  store,
		now:    time.Now,
		loc:    time.Local,
		log:    logger.Component("controller"),
		subs:   make(map[int]chan Event),
	}
	for _, opt := range opts {
		opt(c)
	}

	today := c.today()
	c.state = State{
		Today:        today,
		SelectedDate: today,
		Alarm:        models.NoAlarm(),
	}
	return c
}

// Init restores the cached state. It is called once before any refresh; a
// cache error is returned but leaves the defaults in place.
func (c *Controller) Init() error {
	today := c.today()
	cached, err := storage.LoadCached(c.store, today)
	if err != nil {
		c.log.Warn("failed to read local cache", "error", err)
		c.publish(EventInit, err)
		return err
	}

	c.mu.Lock()
	c.state.Sensors = cached.Sensors
	c.state.Alarm = cached.Alarm
	c.setRated(cached.HasRatedToday, today)
	c.mu.Unlock()

	c.log.Debug("restored cache", "alarm_set", cached.Alarm.IsSet(), "rated_today", cached.HasRatedToday)
	c.publish(EventInit, nil)
	return nil
}

// Location returns the timezone the controller works in.
func (c *Controller) Location() *time.Location {
	return c.loc
}

// Now returns the controller's current time in its location.
func (c *Controller) Now() time.Time {
	return c.now().In(c.loc)
}

func (c *Controller) today() models.Date {
	return models.Today(c.now(), c.loc)
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rollover()
	return c.state.clone()
}

// rollover moves Today forward and drops a rated flag from a previous day.
// Callers hold mu.
func (c *Controller) rollover() models.Date {
	today := c.today()
	c.state.Today = today
	if c.state.Eligibility.HasRatedToday && !c.ratedDay.Equal(today) {
		c.state.Eligibility.HasRatedToday = false
	}
	return today
}

// setRated updates the rated flag and keeps CanRateToday false while it is set.
// Callers hold mu.
func (c *Controller) setRated(rated bool, day models.Date) {
	c.state.Eligibility.HasRatedToday = rated
	c.ratedDay = day
	if rated {
		c.state.Eligibility.CanRateToday = false
	}
}

// begin starts a new request on s and returns its sequence number.
func (c *Controller) begin(s stream) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq[s]++
	return c.seq[s]
}

// current reports whether seq is still the latest request on s. Callers hold mu.
func (c *Controller) current(s stream, seq uint64) bool {
	return c.seq[s] == seq
}

// Subscribe returns a channel of events and a function that unsubscribes.
// Delivery never blocks the controller: a subscriber that falls behind misses
// events, but every event carries the full state.
func (c *Controller) Subscribe() (<-chan Event, func()) {
	c.subMu.Lock()
	defer c.subMu.Unlock()

	id := c.next
	c.next++
	ch := make(chan Event, 32)
	c.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.subMu.Lock()
			defer c.subMu.Unlock()
			delete(c.subs, id)
			close(ch)
		})
	}
}

func (c *Controller) publish(kind EventKind, err error) {
	ev := Event{Kind: kind, Err: err, State: c.Snapshot()}

	c.subMu.Lock()
	defer c.subMu.Unlock()
	for _, ch := range c.subs {
		select {
		case ch <- ev:
		default:
			c.log.Debug("dropping event for slow subscriber", "kind", kind)
		}
	}
}

// Wait blocks until every operation started with Submit has finished.
func (c *Controller) Wait() {
	c.wg.Wait()
}
