package telemetry

import (
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/itohio/golux/pkg/config"
)

const (
	connectTimeout = 10 * time.Second
	publishTimeout = time.Second
)

var ErrMQTTTimeout = errors.New("mqtt operation timed out")

// newClient creates the MQTT client. Tests replace it with a fake.
var newClient = mqtt.NewClient

// MQTT publishes records as JSON to <prefix>/telemetry and listens for LED
// commands on <prefix>/led/set.
type MQTT struct {
	cfg       config.MQTTConfig
	onCommand CommandHandler
	log       *slog.Logger

	mu     sync.Mutex
	client mqtt.Client
}

// NewMQTT creates an MQTT sink. onCommand may be nil.
func NewMQTT(cfg config.MQTTConfig, onCommand CommandHandler, log *slog.Logger) *MQTT {
	if log == nil {
		log = slog.Default()
	}
	return &MQTT{
		cfg:       cfg,
		onCommand: onCommand,
		log:       log.With("mqtt", cfg.Broker),
	}
}

// TelemetryTopic returns the topic records are published to.
func (m *MQTT) TelemetryTopic() string {
	return m.cfg.TopicPrefix + "/telemetry"
}

// CommandTopic returns the topic LED commands are read from.
func (m *MQTT) CommandTopic() string {
	return m.cfg.TopicPrefix + "/led/set"
}

// Connect connects to the broker. The client reconnects automatically
// and resubscribes after every reconnect.
func (m *MQTT) Connect() error {
	opts := mqtt.NewClientOptions()

	protocol := "tcp"
	if m.cfg.UseTLS {
		protocol = "tls"
	}
	brokerURL := fmt.Sprintf("%s://%s:%d", protocol, m.cfg.Broker, m.cfg.Port)
	opts.AddBroker(brokerURL)

	clientID := "golux-" + uuid.NewString()
	opts.SetClientID(clientID)

	if m.cfg.Username != "" {
		opts.SetUsername(m.cfg.Username)
		opts.SetPassword(m.cfg.Password)
	}
	if m.cfg.UseTLS {
		opts.SetTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12})
	}

	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetConnectTimeout(connectTimeout)
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(30 * time.Second)

	opts.OnConnect = m.onConnect
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		m.log.Warn("connection lost, reconnecting", "error", err)
	}

	client := newClient(opts)
	m.log.Info("connecting", "url", brokerURL, "client_id", clientID)

	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return fmt.Errorf("connect to %s: %w", brokerURL, ErrMQTTTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("connect to %s: %w", brokerURL, err)
	}

	m.mu.Lock()
	m.client = client
	m.mu.Unlock()
	return nil
}

func (m *MQTT) onConnect(client mqtt.Client) {
	if m.onCommand == nil {
		m.log.Info("connected")
		return
	}

	topic := m.CommandTopic()
	token := client.Subscribe(topic, m.cfg.QoS, m.onMessage)
	if !token.WaitTimeout(5 * time.Second) {
		m.log.Error("subscribe timeout", "topic", topic)
		return
	}
	if err := token.Error(); err != nil {
		m.log.Error("subscribe failed", "topic", topic, "error", err)
		return
	}
	m.log.Info("connected", "subscribed", topic)
}

func (m *MQTT) onMessage(_ mqtt.Client, msg mqtt.Message) {
	cmd, err := ParseCommand(msg.Payload())
	if err != nil {
		m.log.Warn("ignoring LED command", "topic", msg.Topic(), "error", err)
		return
	}
	m.onCommand(cmd)
}

// Publish sends r to the telemetry topic.
func (m *MQTT) Publish(r Record) error {
	m.mu.Lock()
	client := m.client
	m.mu.Unlock()

	if client == nil || !client.IsConnected() {
		return fmt.Errorf("mqtt: not connected")
	}

	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	token := client.Publish(m.TelemetryTopic(), m.cfg.QoS, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish: %w", ErrMQTTTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// Close disconnects from the broker.
func (m *MQTT) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client != nil && m.client.IsConnected() {
		m.client.Disconnect(250)
	}
	m.client = nil
	return nil
}
