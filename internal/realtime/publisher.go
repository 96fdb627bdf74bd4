// Package realtime relays row changes to dashboards over MQTT. Each change is
// published on <prefix>/properties/<property_id>/<table>.
package realtime

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"zamora/config"
)

// Change types
const (
	ChangeInsert = "INSERT"
	ChangeUpdate = "UPDATE"
)

// Change is one row change as dashboards receive it.
type Change struct {
	Table      string    `json:"table"`
	Type       string    `json:"type"`
	ID         string    `json:"id"`
	PropertyID string    `json:"property_id"`
	Record     any       `json:"record"`
	EventID    string    `json:"event_id"`
	Timestamp  time.Time `json:"timestamp"`
}

// Publisher publishes changes on an MQTT broker
type Publisher struct {
	client mqtt.Client
	prefix string
	qos    byte
	logger *zap.Logger
}

// Connect opens the MQTT connection
func Connect(cfg config.MQTTConfig, logger *zap.Logger) (*Publisher, error) {
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
	opts.SetConnectTimeout(10 * time.Second)
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.Warn("MQTT connection lost", zap.Error(err))
	})

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	return NewPublisher(client, cfg.TopicPrefix, logger), nil
}

// NewPublisher wraps a connected client.
func NewPublisher(client mqtt.Client, prefix string, logger *zap.Logger) *Publisher {
	return &Publisher{client: client, prefix: prefix, qos: 1, logger: logger}
}

// Topic returns the topic carrying changes of table at a property.
func (p *Publisher) Topic(propertyID, table string) string {
	return fmt.Sprintf("%s/properties/%s/%s", p.prefix, propertyID, table)
}

// Publish sends one change and waits for the broker to accept it.
func (p *Publisher) Publish(ch Change) error {
	payload, err := json.Marshal(ch)
	if err != nil {
		return fmt.Errorf("marshal change: %w", err)
	}

	topic := p.Topic(ch.PropertyID, ch.Table)
	token := p.client.Publish(topic, p.qos, false, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("timed out publishing to topic %s", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to publish to topic %s: %w", topic, err)
	}

	p.logger.Debug("change published", zap.String("topic", topic), zap.String("type", ch.Type), zap.String("id", ch.ID))
	return nil
}

// IsConnected reports the broker connection state
func (p *Publisher) IsConnected() bool {
	return p.client.IsConnected()
}

// Disconnect closes the connection
func (p *Publisher) Disconnect() {
	p.client.Disconnect(250)
}
