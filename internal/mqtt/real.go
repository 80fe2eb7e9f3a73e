package mqtt

import (
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/julianstephens/sleepwatch/internal/logger"
)

// RealClient talks to an actual broker. It implements Subscriber and Publisher.
type RealClient struct {
	client paho.Client

	mu   sync.Mutex
	subs map[string]Handler
}

// NewRealClient connects to broker (e.g. tcp://10.147.19.211:1883).
// Subscriptions are restored after a reconnect.
func NewRealClient(broker, clientID string) (*RealClient, error) {
	rc := &RealClient{subs: make(map[string]Handler)}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetCleanSession(true).
		SetOnConnectHandler(rc.resubscribe).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			logger.Warn("MQTT connection lost", "error", err)
		})

	rc.client = paho.NewClient(opts)
	token := rc.client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}
	return rc, nil
}

func (r *RealClient) resubscribe(c paho.Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for topic, h := range r.subs {
		c.Subscribe(topic, 1, wrap(h))
	}
}

func wrap(h Handler) paho.MessageHandler {
	return func(_ paho.Client, msg paho.Message) {
		h(msg.Topic(), msg.Payload())
	}
}

// Subscribe registers handler on topic with QoS 1.
func (r *RealClient) Subscribe(topic string, handler Handler) error {
	r.mu.Lock()
	r.subs[topic] = handler
	r.mu.Unlock()

	token := r.client.Subscribe(topic, 1, wrap(handler))
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("subscribe timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("subscribe %s: %w", topic, err)
	}
	return nil
}

// Publish sends payload with QoS 0, not retained.
func (r *RealClient) Publish(topic string, payload []byte) error {
	token := r.client.Publish(topic, 0, false, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// IsConnected reports whether the broker connection is up.
func (r *RealClient) IsConnected() bool {
	return r.client.IsConnectionOpen()
}

// Close disconnects from the broker.
func (r *RealClient) Close() error {
	r.client.Disconnect(1000)
	return nil
}
