// Package mqtt connects to the appliance's MQTT broker. The appliance reports
// on TopicAlarmStatus when the alarm has been switched off after ringing.
package mqtt

import (
	"strings"

	"github.com/julianstephens/sleepwatch/internal/constants"
)

const (
	// TopicAlarmStatus carries "off" once the alarm has fired and been silenced.
	TopicAlarmStatus = "alarm/status"
	// TopicAlarmTime receives the offset in seconds when an alarm is set.
	TopicAlarmTime = "alarm/time"
)

// Handler is called for every message on a subscribed topic.
type Handler func(topic string, payload []byte)

// Subscriber receives messages from the broker.
type Subscriber interface {
	Subscribe(topic string, handler Handler) error
	Close() error
}

// Publisher sends messages to the broker.
type Publisher interface {
	// Publish returns an error if the broker did not accept the message;
	// callers log it and carry on.
	Publish(topic string, payload []byte) error
	Close() error
}

// IsAlarmOff reports whether an alarm/status payload means the alarm went off.
func IsAlarmOff(payload []byte) bool {
	return strings.EqualFold(strings.TrimSpace(string(payload)), constants.AlarmStatusOff)
}
