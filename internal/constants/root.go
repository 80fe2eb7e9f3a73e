package constants

import "time"

// SessionState represents the panel focused in the TUI
type SessionState int

const (
	AppName            = "sleepwatch"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/sleepwatch/sleepwatch.db"
	Version            = "v0.3.0"
	UserAgent          = AppName + "/" + Version

	// DefaultBaseURL is the address the appliance gateway listens on in the stock setup.
	DefaultBaseURL = "http://10.147.19.211:8000"

	// Transport defaults
	DefaultTimeout      = 30 * time.Second
	DefaultPollInterval = 60 * time.Second

	// MQTT defaults
	DefaultMQTTTopic    = "alarm/status"
	AlarmStatusOff      = "off"
	DefaultMQTTClientID = AppName

	// Simulator defaults
	DefaultSimAddr = "127.0.0.1:8000"
	SimSeedDays    = 30

	// NoAlarm is the offset value meaning no alarm is scheduled
	NoAlarm = -1
)

// Session States
const (
	StateDashboard SessionState = iota
	StateAlarmForm
	StateRatingForm
	StateDateForm
)

// API paths, relative to the configured base URL
const (
	PathLatestSensors = "/api/mqtt/latest"
	PathDaily         = "/api/sleep/daily"
	PathSleepQuality  = "/api/sleep/sleep_quality"
	PathSetAlarm      = "/api/mqtt/set_alarm"
	PathCancelAlarm   = "/api/mqtt/cancel_alarm"
	PathRatingStatus  = "/api/mqtt/sleep_rating_status"
	PathAlarmStatus   = "/api/mqtt/alarm_status"
)

// StoreKeyring as the store path reads the PostgreSQL connection string from
// the environment or the OS keyring.
const StoreKeyring = "keyring"
