package models

import "time"

// DailyRecord is the appliance's aggregated summary for one calendar day.
// Temperature and humidity are daily averages.
type DailyRecord struct {
	Temperature    float64 `json:"temperature"`
	Humidity       float64 `json:"humidity"`
	SleepRating    *int    `json:"sleep_rating,omitempty"`
	WakeTimeMillis *int64  `json:"wake_time,omitempty"` // time taken to wake up, in milliseconds
}

// Rating returns the recorded rating, 0 when absent.
func (r DailyRecord) Rating() int {
	if r.SleepRating == nil {
		return 0
	}
	return *r.SleepRating
}

// IsRated reports whether the day carries a rating; 0 counts as unrated.
func (r DailyRecord) IsRated() bool {
	return r.SleepRating != nil && *r.SleepRating > 0
}

// WakeTime returns the wake duration and whether one was recorded.
func (r DailyRecord) WakeTime() (time.Duration, bool) {
	if r.WakeTimeMillis == nil || *r.WakeTimeMillis <= 0 {
		return 0, false
	}
	return time.Duration(*r.WakeTimeMillis) * time.Millisecond, true
}

// RatingEligibility tracks whether today's sleep may still be rated.
// CanRateToday is always false while HasRatedToday is true.
type RatingEligibility struct {
	CanRateToday  bool `json:"can_rate_today"`
	HasRatedToday bool `json:"has_rated_today"`
}
