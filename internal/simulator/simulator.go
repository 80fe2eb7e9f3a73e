// Package simulator is an in-process stand-in for the appliance gateway. It
// serves the same HTTP API the client talks to and, when a broker is
// configured, publishes alarm events the way the device does.
package simulator

import (
	"math"
	"math/rand/v2"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/julianstephens/sleepwatch/internal/constants"
	"github.com/julianstephens/sleepwatch/internal/logger"
	"github.com/julianstephens/sleepwatch/internal/models"
	"github.com/julianstephens/sleepwatch/internal/mqtt"
)

// Server holds the simulated appliance state.
type Server struct {
	mu sync.Mutex

	now func() time.Time
	loc *time.Location
	rnd *rand.Rand
	pub mqtt.Publisher
	log *log.Logger

	latest models.SensorSnapshot
	daily  map[models.Date]models.DailyRecord
	rated  models.Date

	timer     *time.Timer
	gen       uint64
	active    bool
	triggered bool
}

type Option func(*Server)

func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

func WithLocation(loc *time.Location) Option {
	return func(s *Server) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithPublisher makes the simulator publish alarm events.
func WithPublisher(p mqtt.Publisher) Option {
	return func(s *Server) { s.pub = p }
}

// WithSeed fixes the random source so generated history is reproducible.
func WithSeed(seed uint64) Option {
	return func(s *Server) { s.rnd = rand.New(rand.NewPCG(seed, seed^0x5eed)) }
}

// New creates a simulator with seedDays of history before today.
func New(seedDays int, opts ...Option) *Server {
	s := &Server{
		now:    time.Now,
		loc:    time.Local,
		rnd:    rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 1)),
		log:    logger.Component("appliance-sim"),
		latest: models.SensorSnapshot{Temperature: 21.5, Humidity: 45.0},
		daily:  make(map[models.Date]models.DailyRecord),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.seed(seedDays)
	return s
}

func (s *Server) today() models.Date {
	return models.Today(s.now(), s.loc)
}

// seed fills the days before today with plausible averages. Most days carry
// a rating and a wake time; some carry neither.
func (s *Server) seed(days int) {
	today := s.today()
	for i := 1; i <= days; i++ {
		rec := models.DailyRecord{
			Temperature: round1(20 + s.rnd.Float64()*5),
			Humidity:    round1(40 + s.rnd.Float64()*20),
		}
		rating := 0
		if s.rnd.IntN(5) > 0 {
			rating = 1 + s.rnd.IntN(constants.RatingMax)
		}
		rec.SleepRating = &rating
		if s.rnd.IntN(3) > 0 {
			wake := int64(10_000 + s.rnd.IntN(10*60_000))
			rec.WakeTimeMillis = &wake
		}
		s.daily[today.AddDays(-i)] = rec
	}
}

// Latest returns the current reading and nudges the next one.
func (s *Server) Latest() models.SensorSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.latest
	s.latest.Temperature = round1(clampFloat(s.latest.Temperature+(s.rnd.Float64()-0.5)*0.4, 16, 28))
	s.latest.Humidity = round1(clampFloat(s.latest.Humidity+(s.rnd.Float64()-0.5)*1.0, 25, 75))
	return snap
}

// Daily returns the record for day. Today's record exists once it has been rated
// or the alarm has fired.
func (s *Server) Daily(day models.Date) (models.DailyRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.daily[day]
	return rec, ok
}

// Rate records rating for today. Callers validate the range.
func (s *Server) Rate(rating int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	today := s.today()
	rec := s.todayRecord(today)
	rec.SleepRating = &rating
	s.daily[today] = rec
	s.rated = today
	s.log.Info("sleep quality recorded", "rating", rating, "day", today)
}

// CanRate reports whether today is still unrated.
func (s *Server) CanRate() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rated != s.today()
}

// SetAlarm arms the alarm to fire after offset, replacing any pending alarm.
func (s *Server) SetAlarm(offset time.Duration) {
	s.publish(mqtt.TopicAlarmTime, strconv.Itoa(int(offset/time.Second)))

	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.active = true
	s.triggered = false
	s.gen++
	gen := s.gen
	s.timer = time.AfterFunc(offset, func() { s.fire(gen) })
	s.mu.Unlock()

	s.log.Info("alarm set", "offset", offset)
}

// CancelAlarm disarms the alarm.
func (s *Server) CancelAlarm() {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
	s.active = false
	s.triggered = false
	s.mu.Unlock()
	s.log.Info("alarm canceled")
}

// Fire makes the alarm go off now. It records a wake time for today and
// publishes "off" on the alarm status topic.
func (s *Server) Fire() {
	s.mu.Lock()
	s.fireLocked()
}

// fire rings the alarm armed as generation gen. A timer that lost the race
// with a later set or cancel does nothing.
func (s *Server) fire(gen uint64) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.fireLocked()
}

// fireLocked is called with mu held and releases it.
func (s *Server) fireLocked() {
	if !s.active {
		s.mu.Unlock()
		return
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.active = false
	s.triggered = true

	today := s.today()
	rec := s.todayRecord(today)
	wake := int64(15_000 + s.rnd.IntN(5*60_000))
	rec.WakeTimeMillis = &wake
	s.daily[today] = rec
	s.mu.Unlock()

	s.log.Info("alarm fired")
	s.publish(mqtt.TopicAlarmStatus, constants.AlarmStatusOff)
}

// AlarmStatus reports the alarm as the device sees it.
func (s *Server) AlarmStatus() models.AlarmStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.AlarmStatus{Active: s.active, Triggered: s.triggered}
}

// Close stops a pending alarm timer.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Server) todayRecord(today models.Date) models.DailyRecord {
	rec, ok := s.daily[today]
	if !ok {
		rec = models.DailyRecord{Temperature: s.latest.Temperature, Humidity: s.latest.Humidity}
	}
	return rec
}

func (s *Server) publish(topic, payload string) {
	if s.pub == nil {
		return
	}
	if err := s.pub.Publish(topic, []byte(payload)); err != nil {
		s.log.Warn("publish failed", "topic", topic, "error", err)
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func clampFloat(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
