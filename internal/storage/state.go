package storage

import (
	"fmt"
	"strconv"
	"time"

	"github.com/julianstephens/sleepwatch/internal/constants"
	"github.com/julianstephens/sleepwatch/internal/logger"
	"github.com/julianstephens/sleepwatch/internal/models"
)

// Cached is the controller state as last written to the store.
type Cached struct {
	Sensors       *models.SensorReading // nil when nothing usable was cached
	Alarm         models.AlarmState
	HasRatedToday bool
}

// LoadCached reads the cache once at startup.
//
// Sensor values are restored only when both are positive, the alarm only when
// alarm_time is not -1, and the rated flag only when it was written on today.
// Malformed values are skipped with a warning rather than failing the load.
func LoadCached(p Provider, today models.Date) (Cached, error) {
	r := reader{p: p}
	c := Cached{Alarm: models.NoAlarm()}

	temp, tempOK := r.getFloat(constants.KeyTemperature)
	hum, humOK := r.getFloat(constants.KeyHumidity)
	if tempOK && humOK && temp > 0 && hum > 0 {
		c.Sensors = &models.SensorReading{
			SensorSnapshot: models.SensorSnapshot{Temperature: temp, Humidity: hum},
		}
		if ts, ok := r.getTime(constants.KeyLastUpdateTime); ok {
			c.Sensors.ReceivedAt = ts
		}
	}

	if offset, ok := r.getInt(constants.KeyAlarmTime); ok && offset > constants.NoAlarm {
		c.Alarm.OffsetSeconds = offset
		c.Alarm.Hour, _ = r.getInt(constants.KeyAlarmHour)
		c.Alarm.Minute, _ = r.getInt(constants.KeyAlarmMinute)
		if ms, ok := r.getInt64(constants.KeyAlarmTimestamp); ok && ms > 0 {
			c.Alarm.Timestamp = time.UnixMilli(ms)
		}
	}

	if rated, ok := r.getString(constants.KeyHasRatedToday); ok && rated == "true" {
		if day, ok := r.getString(constants.KeyRatedDate); ok && day == today.String() {
			c.HasRatedToday = true
		}
	}

	return c, r.err
}

// SaveSensors persists the snapshot together with its receive time.
func SaveSensors(p Provider, reading models.SensorReading) error {
	return p.Set(map[string]string{
		constants.KeyTemperature:    formatFloat(reading.Temperature),
		constants.KeyHumidity:       formatFloat(reading.Humidity),
		constants.KeyLastUpdateTime: reading.ReceivedAt.Format(time.RFC3339),
	})
}

// SaveAlarm writes all four alarm fields in one transaction.
func SaveAlarm(p Provider, alarm models.AlarmState) error {
	var ts int64
	if !alarm.Timestamp.IsZero() {
		ts = alarm.Timestamp.UnixMilli()
	}
	return p.Set(map[string]string{
		constants.KeyAlarmTime:      strconv.Itoa(alarm.OffsetSeconds),
		constants.KeyAlarmHour:      strconv.Itoa(alarm.Hour),
		constants.KeyAlarmMinute:    strconv.Itoa(alarm.Minute),
		constants.KeyAlarmTimestamp: strconv.FormatInt(ts, 10),
	})
}

// ClearAlarm removes all four alarm fields.
func ClearAlarm(p Provider) error {
	return p.Delete(constants.AlarmKeys...)
}

// SaveRatedToday records the rated flag for the given day.
func SaveRatedToday(p Provider, rated bool, day models.Date) error {
	return p.Set(map[string]string{
		constants.KeyHasRatedToday: strconv.FormatBool(rated),
		constants.KeyRatedDate:     day.String(),
	})
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// reader keeps the first provider error and treats parse failures as absence.
type reader struct {
	p   Provider
	err error
}

func (r *reader) getString(key string) (string, bool) {
	if r.err != nil {
		return "", false
	}
	v, ok, err := r.p.Get(key)
	if err != nil {
		r.err = fmt.Errorf("failed to read %s: %w", key, err)
		return "", false
	}
	return v, ok
}

func (r *reader) getFloat(key string) (float64, bool) {
	s, ok := r.getString(key)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		logger.Warn("Ignoring malformed cached value", "key", key, "value", s)
		return 0, false
	}
	return v, true
}

func (r *reader) getInt64(key string) (int64, bool) {
	s, ok := r.getString(key)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		logger.Warn("Ignoring malformed cached value", "key", key, "value", s)
		return 0, false
	}
	return v, true
}

func (r *reader) getInt(key string) (int, bool) {
	v, ok := r.getInt64(key)
	return int(v), ok
}

func (r *reader) getTime(key string) (time.Time, bool) {
	s, ok := r.getString(key)
	if !ok {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		logger.Warn("Ignoring malformed cached value", "key", key, "value", s)
		return time.Time{}, false
	}
	return t, true
}
