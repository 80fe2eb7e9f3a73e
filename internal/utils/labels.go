package utils

import (
	"fmt"
	"time"

	"github.com/julianstephens/sleepwatch/internal/constants"
	"github.com/julianstephens/sleepwatch/internal/models"
)

// AlarmLabel describes when the alarm rings relative to now: "Today at 07:30",
// "Tomorrow at 07:30", or "12.03 at 07:30" for anything further away.
// The label is derived from the display fields, never from the stale offset.
func AlarmLabel(alarm models.AlarmState, now time.Time, loc *time.Location) string {
	if !alarm.IsSet() {
		return "Not set"
	}
	clock := FormatClock(alarm.Hour, alarm.Minute)
	if alarm.Timestamp.IsZero() {
		return clock
	}

	switch DaysBetween(now, alarm.Timestamp, loc) {
	case 0:
		return "Today at " + clock
	case 1:
		return "Tomorrow at " + clock
	default:
		return alarm.Timestamp.In(loc).Format(constants.ShortDateFormat) + " at " + clock
	}
}

// FormatWakeTime renders how long waking up took, e.g. "3 min 07 sec" or "42 sec".
func FormatWakeTime(record models.DailyRecord) string {
	d, ok := record.WakeTime()
	if !ok {
		return "No data"
	}
	secs := int64(d / time.Second)
	minutes, seconds := secs/60, secs%60
	if minutes > 0 {
		return fmt.Sprintf("%d min %02d sec", minutes, seconds)
	}
	return fmt.Sprintf("%d sec", seconds)
}

// FormatRating renders a rating as "7/10", or "Not rated" when absent or zero.
func FormatRating(record models.DailyRecord) string {
	rating := Clamp(record.Rating(), constants.RatingMin, constants.RatingMax)
	if rating <= 0 {
		return "Not rated"
	}
	return fmt.Sprintf("%d/%d", rating, constants.RatingMax)
}

// NoDataLabel explains an empty day: future days cannot be viewed at all.
func NoDataLabel(selected, today models.Date) string {
	if selected.After(today) {
		return "Cannot view data for future days"
	}
	return "No data for the selected day"
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// FormatTemperature renders degrees Celsius with one decimal, e.g. "21.5 °C".
func FormatTemperature(v float64) string {
	return fmt.Sprintf("%.1f °C", v)
}

// FormatHumidity renders relative humidity with one decimal, e.g. "55.0 %".
func FormatHumidity(v float64) string {
	return fmt.Sprintf("%.1f %%", v)
}
