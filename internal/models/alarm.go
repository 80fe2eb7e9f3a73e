package models

import (
	"time"

	"github.com/julianstephens/sleepwatch/internal/constants"
)

// AlarmState is the alarm as the client last confirmed it with the appliance.
//
// OffsetSeconds is the countdown sent at set time and goes stale as time passes;
// Hour, Minute and Timestamp are what labels are derived from. All four fields
// are set and cleared together.
type AlarmState struct {
	OffsetSeconds int       `json:"offset_seconds"`
	Hour          int       `json:"hour"`
	Minute        int       `json:"minute"`
	Timestamp     time.Time `json:"timestamp"`
}

// NoAlarm returns the cleared alarm state.
func NoAlarm() AlarmState {
	return AlarmState{OffsetSeconds: constants.NoAlarm}
}

// IsSet reports whether an alarm is scheduled.
func (a AlarmState) IsSet() bool {
	return a.OffsetSeconds > constants.NoAlarm
}

// AlarmStatus is the appliance's view of the alarm.
type AlarmStatus struct {
	Active    bool `json:"active"`
	Triggered bool `json:"triggered"`
}

// AlarmRequest is a wall-clock alarm pick.
type AlarmRequest struct {
	Hour   int `validate:"min=0,max=23"`
	Minute int `validate:"min=0,max=59"`
}
