package mqtt

import (
	"errors"
	"sync/atomic"
	"testing"
)

type countingSink struct{ n atomic.Int32 }

func (s *countingSink) MarkAlarmTriggered() { s.n.Add(1) }

func TestIsAlarmOff(t *testing.T) {
	tests := []struct {
		payload string
		want    bool
	}{
		{"off", true},
		{"OFF\n", true},
		{" off ", true},
		{"on", false},
		{"", false},
		{"offline", false},
	}
	for _, tt := range tests {
		t.Run(tt.payload, func(t *testing.T) {
			if got := IsAlarmOff([]byte(tt.payload)); got != tt.want {
				t.Errorf("IsAlarmOff(%q) = %v, want %v", tt.payload, got, tt.want)
			}
		})
	}
}

func TestAlarmWatcher(t *testing.T) {
	broker := NewFakeClient()
	sink := &countingSink{}
	w := NewAlarmWatcher(broker, "", sink)
	if err := w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	_ = broker.Publish(TopicAlarmStatus, []byte("on"))
	_ = broker.Publish("alarm/other", []byte("off"))
	if got := sink.n.Load(); got != 0 {
		t.Fatalf("sink called %d times before an off message", got)
	}

	_ = broker.Publish(TopicAlarmStatus, []byte("off"))
	if got := sink.n.Load(); got != 1 {
		t.Errorf("sink called %d times, want 1", got)
	}
}

func TestAlarmWatcherSubscribeError(t *testing.T) {
	broker := NewFakeClient()
	broker.SubscribeError = errors.New("not authorized")

	w := NewAlarmWatcher(broker, TopicAlarmStatus, &countingSink{})
	if err := w.Start(); err == nil {
		t.Error("expected subscribe error")
	}
}

func TestFakeClientRecordsPublishes(t *testing.T) {
	broker := NewFakeClient()
	if err := broker.Publish(TopicAlarmTime, []byte("82800")); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	msgs := broker.Messages()
	if len(msgs) != 1 || msgs[0].Topic != TopicAlarmTime || string(msgs[0].Payload) != "82800" {
		t.Errorf("Messages() = %+v", msgs)
	}

	broker.PublishError = errors.New("broker down")
	if err := broker.Publish(TopicAlarmTime, []byte("1")); err == nil {
		t.Error("expected publish error")
	}
	if len(broker.Messages()) != 1 {
		t.Error("failed publish should not be recorded")
	}

	broker.Close()
	if !broker.Closed {
		t.Error("Close() should mark the client closed")
	}
}
