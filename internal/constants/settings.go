package constants

// Keys of the local state cache. The names match the preference keys used by
// earlier clients so an exported cache stays readable.
const (
	KeyTemperature    = "temperature"
	KeyHumidity       = "humidity"
	KeyAlarmTime      = "alarm_time"
	KeyAlarmHour      = "alarm_hour"
	KeyAlarmMinute    = "alarm_minute"
	KeyAlarmTimestamp = "alarm_timestamp"
	KeyHasRatedToday  = "has_rated_today"
	KeyLastUpdateTime = "last_update_time"
	KeyRatedDate      = "rated_date"

	DefaultTimezone = "Local" // Use system local timezone by default
)

// AlarmKeys lists every persisted alarm field. They are written and removed together.
var AlarmKeys = []string{KeyAlarmTime, KeyAlarmHour, KeyAlarmMinute, KeyAlarmTimestamp}
