package constants

const (
	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// ShortDateFormat is used for alarm labels more than a day away (dd.MM)
	ShortDateFormat = "02.01"

	// ClockFormat renders the last refresh time
	ClockFormat = "15:04:05"
)

// LongDateFormat renders the selected day in headings
const LongDateFormat = "02 January 2006"
