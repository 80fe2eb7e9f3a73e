package constants

const (
	// Sleep quality rating bounds accepted by the rating form and the rate command.
	RatingMin = 0
	RatingMax = 10

	// Acknowledgement messages returned by the appliance. Success is decided by an
	// exact match against these strings, not by the HTTP status alone.
	AckRatingRecorded = "Sleep quality recorded successfully"
	AckAlarmSet       = "Alarm time set"
	AckAlarmCanceled  = "Alarm canceled"
)

func init() {
	if RatingMin >= RatingMax {
		panic("RatingMin must be lower than RatingMax")
	}
}
