package sensor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/oshokin/proximity-alarm/internal/config"
	"github.com/oshokin/proximity-alarm/internal/domain/proximity"
	"github.com/oshokin/proximity-alarm/internal/logger"
)

// mqttDisconnectQuiesce is how long Disconnect waits for in-flight work, in ms.
const mqttDisconnectQuiesce = 250

var (
	// ErrInvalidPayload is returned for payloads without a numeric reading.
	ErrInvalidPayload = errors.New("invalid proximity payload")
	// errBrokerTimeout is returned when the broker does not answer in time.
	errBrokerTimeout = errors.New("mqtt broker did not respond in time")
)

// MQTT receives proximity readings published to a broker topic.
type MQTT struct {
	// client is the paho client; tests substitute their own.
	client mqtt.Client
	// topic is the subscription filter.
	topic string
	// qos is the subscription quality of service.
	qos byte
	// timeout bounds connect and subscribe round-trips.
	timeout time.Duration

	// lifecycle serialises Subscribe and Unsubscribe.
	lifecycle sync.Mutex
	// mu is held for reading while a sample is delivered.
	mu sync.RWMutex
	// handler is nil while unsubscribed.
	handler Handler
	// subscribed is set once the broker acknowledged the subscription.
	subscribed bool
	// ctx carries the logger for the message callback.
	ctx context.Context //nolint:containedctx // Needed by the paho callback.
}

// NewMQTT builds a broker source from settings. It connects lazily on Subscribe.
func NewMQTT(cfg config.MQTTConfig, timeout time.Duration) *MQTT {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}

	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}

	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)
	opts.SetConnectTimeout(timeout)

	source := NewMQTTWithClient(nil, cfg.Topic, cfg.QoS, timeout)

	// A clean session drops subscriptions, so every reconnect restores them.
	opts.SetOnConnectHandler(source.onConnect)

	source.client = mqtt.NewClient(opts)

	return source
}

// NewMQTTWithClient wraps an existing paho client.
func NewMQTTWithClient(client mqtt.Client, topic string, qos byte, timeout time.Duration) *MQTT {
	return &MQTT{
		client:  client,
		topic:   topic,
		qos:     qos,
		timeout: timeout,
		ctx:     context.Background(),
	}
}

// Subscribe connects if needed and subscribes to the topic.
func (s *MQTT) Subscribe(ctx context.Context, _ Rate, h Handler) error {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	s.mu.Lock()
	if s.handler != nil {
		s.mu.Unlock()

		return ErrAlreadySubscribed
	}

	s.handler = h
	s.ctx = ctx
	s.mu.Unlock()

	if err := s.subscribe(ctx); err != nil {
		s.mu.Lock()
		s.handler = nil
		s.mu.Unlock()

		return err
	}

	s.mu.Lock()
	s.subscribed = true
	s.mu.Unlock()

	return nil
}

// subscribe performs the broker round-trips.
func (s *MQTT) subscribe(ctx context.Context) error {
	if !s.client.IsConnected() {
		if err := s.wait(s.client.Connect()); err != nil {
			return fmt.Errorf("connect to mqtt broker: %w", err)
		}
	}

	if err := s.wait(s.client.Subscribe(s.topic, s.qos, s.onMessage)); err != nil {
		return fmt.Errorf("subscribe to topic %s: %w", s.topic, err)
	}

	logger.InfoKV(ctx, "Subscribed to proximity topic", "topic", s.topic, "qos", s.qos)

	return nil
}

// Unsubscribe leaves the topic and waits for in-flight deliveries.
func (s *MQTT) Unsubscribe() error {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	s.mu.Lock()
	active := s.handler != nil
	s.handler = nil
	s.subscribed = false
	s.mu.Unlock()

	if !active {
		return nil
	}

	if err := s.wait(s.client.Unsubscribe(s.topic)); err != nil {
		return fmt.Errorf("unsubscribe from topic %s: %w", s.topic, err)
	}

	return nil
}

// Close disconnects from the broker.
func (s *MQTT) Close() {
	if s.client.IsConnected() {
		s.client.Disconnect(mqttDisconnectQuiesce)
	}
}

// onConnect restores the subscription after paho reconnects.
// The first connect is left to Subscribe.
func (s *MQTT) onConnect(client mqtt.Client) {
	s.mu.RLock()
	ctx, resubscribe := s.ctx, s.subscribed
	s.mu.RUnlock()

	if !resubscribe {
		return
	}

	if err := s.wait(client.Subscribe(s.topic, s.qos, s.onMessage)); err != nil {
		logger.ErrorKV(ctx, "Failed to restore proximity subscription", "topic", s.topic, "error", err)

		return
	}

	logger.InfoKV(ctx, "Restored proximity subscription", "topic", s.topic)
}

// onMessage is the paho message callback.
func (s *MQTT) onMessage(_ mqtt.Client, msg mqtt.Message) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.handler == nil {
		return
	}

	raw, err := ParsePayload(msg.Payload())
	if err != nil {
		logger.WarnKV(s.ctx, "Dropping proximity message", "topic", msg.Topic(), "error", err)

		return
	}

	s.handler(proximity.NewSample(raw))
}

// wait blocks on a paho token for at most the configured timeout.
func (s *MQTT) wait(token mqtt.Token) error {
	if s.timeout > 0 {
		if !token.WaitTimeout(s.timeout) {
			return errBrokerTimeout
		}
	} else {
		token.Wait()
	}

	return token.Error()
}

// ParsePayload extracts the raw reading from a message: either a bare
// number or a JSON object with a "value" or "distance" field.
func ParsePayload(payload []byte) (float64, error) {
	text := strings.TrimSpace(string(payload))
	if text == "" {
		return 0, ErrInvalidPayload
	}

	if raw, err := strconv.ParseFloat(text, 64); err == nil {
		return raw, nil
	}

	var message struct {
		Value    *float64 `json:"value"`
		Distance *float64 `json:"distance"`
	}

	if err := json.Unmarshal([]byte(text), &message); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}

	switch {
	case message.Value != nil:
		return *message.Value, nil
	case message.Distance != nil:
		return *message.Distance, nil
	default:
		return 0, ErrInvalidPayload
	}
}
