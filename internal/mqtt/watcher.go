package mqtt

import (
	"github.com/charmbracelet/log"

	"github.com/julianstephens/sleepwatch/internal/logger"
)

// AlarmSink is told when the appliance reports the alarm went off.
type AlarmSink interface {
	MarkAlarmTriggered()
}

// AlarmWatcher forwards "off" messages on the alarm status topic to a sink.
type AlarmWatcher struct {
	sub   Subscriber
	topic string
	sink  AlarmSink
	log   *log.Logger
}

func NewAlarmWatcher(sub Subscriber, topic string, sink AlarmSink) *AlarmWatcher {
	if topic == "" {
		topic = TopicAlarmStatus
	}
	return &AlarmWatcher{sub: sub, topic: topic, sink: sink, log: logger.Component("mqtt")}
}

// Start subscribes; messages are handled on the client's goroutine.
func (w *AlarmWatcher) Start() error {
	return w.sub.Subscribe(w.topic, w.handle)
}

func (w *AlarmWatcher) handle(topic string, payload []byte) {
	if !IsAlarmOff(payload) {
		w.log.Debug("ignoring alarm status", "topic", topic, "payload", string(payload))
		return
	}
	w.log.Info("alarm reported off", "topic", topic)
	w.sink.MarkAlarmTriggered()
}
