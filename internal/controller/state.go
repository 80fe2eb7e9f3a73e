package controller

import (
	"github.com/julianstephens/sleepwatch/internal/models"
)

// SubmissionStatus is the outcome of the most recent rating submission.
type SubmissionStatus int

const (
	SubmissionNone SubmissionStatus = iota
	SubmissionPending
	SubmissionSucceeded
	SubmissionFailed
)

func (s SubmissionStatus) String() string {
	switch s {
	case SubmissionPending:
		return "pending"
	case SubmissionSucceeded:
		return "succeeded"
	case SubmissionFailed:
		return "failed"
	default:
		return "none"
	}
}

// State is a consistent copy of everything the controller exposes.
// Pointers are nil when there is no data; they are never shared with the controller.
type State struct {
	Today        models.Date
	SelectedDate models.Date

	Sensors     *models.SensorReading
	Daily       *models.DailyRecord
	Alarm       models.AlarmState
	Eligibility models.RatingEligibility
	Submission  SubmissionStatus
}

// IsFutureSelected reports whether the selected day lies after today.
func (s State) IsFutureSelected() bool {
	return s.SelectedDate.After(s.Today)
}

// IsTodaySelected reports whether the selected day is today.
func (s State) IsTodaySelected() bool {
	return s.SelectedDate.Equal(s.Today)
}

func (s State) clone() State {
	if s.Sensors != nil {
		v := *s.Sensors
		s.Sensors = &v
	}
	if s.Daily != nil {
		v := *s.Daily
		if v.SleepRating != nil {
			r := *v.SleepRating
			v.SleepRating = &r
		}
		if v.WakeTimeMillis != nil {
			w := *v.WakeTimeMillis
			v.WakeTimeMillis = &w
		}
		s.Daily = &v
	}
	return s
}

// EventKind names the operation that produced an Event.
type EventKind int

const (
	EventInit EventKind = iota
	EventSensors
	EventAlarmStatus
	EventDaily
	EventEligibility
	EventRating
	EventAlarmSet
	EventAlarmCanceled
	EventAlarmTriggered
	EventDateSelected
)

var eventNames = map[EventKind]string{
	EventInit:           "init",
	EventSensors:        "sensors",
	EventAlarmStatus:    "alarm_status",
	EventDaily:          "daily",
	EventEligibility:    "eligibility",
	EventRating:         "rating",
	EventAlarmSet:       "alarm_set",
	EventAlarmCanceled:  "alarm_canceled",
	EventAlarmTriggered: "alarm_triggered",
	EventDateSelected:   "date_selected",
}

func (k EventKind) String() string {
	if name, ok := eventNames[k]; ok {
		return name
	}
	return "unknown"
}

// Event is posted to subscribers when an operation completes.
// Err is set when the operation failed; State is the state after it.
type Event struct {
	Kind  EventKind
	Err   error
	State State
}
