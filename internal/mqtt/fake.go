package mqtt

import "sync"

// Message is one published MQTT message.
type Message struct {
	Topic   string
	Payload []byte
}

// FakeClient is an in-process broker for tests. Publish delivers to local
// subscribers synchronously.
type FakeClient struct {
	mu       sync.Mutex
	handlers map[string][]Handler

	// Published records every message passed to Publish.
	Published []Message

	// PublishError, if set, is returned by Publish and nothing is delivered.
	PublishError error

	// SubscribeError, if set, is returned by Subscribe.
	SubscribeError error

	// Closed tracks if Close was called.
	Closed bool
}

func NewFakeClient() *FakeClient {
	return &FakeClient{handlers: make(map[string][]Handler)}
}

func (f *FakeClient) Subscribe(topic string, handler Handler) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SubscribeError != nil {
		return f.SubscribeError
	}
	f.handlers[topic] = append(f.handlers[topic], handler)
	return nil
}

func (f *FakeClient) Publish(topic string, payload []byte) error {
	f.mu.Lock()
	if f.PublishError != nil {
		f.mu.Unlock()
		return f.PublishError
	}
	f.Published = append(f.Published, Message{Topic: topic, Payload: append([]byte(nil), payload...)})
	handlers := append([]Handler(nil), f.handlers[topic]...)
	f.mu.Unlock()

	for _, h := range handlers {
		h(topic, payload)
	}
	return nil
}

// Messages returns a copy of everything published so far.
func (f *FakeClient) Messages() []Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Message(nil), f.Published...)
}

func (f *FakeClient) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}
