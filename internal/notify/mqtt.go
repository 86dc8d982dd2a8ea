// Package notify broadcasts compiled fleet alerts over MQTT.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-admin/internal/fleet"
)

// AlertMessage is the payload published for one sweep.
type AlertMessage struct {
	GeneratedAt time.Time     `json:"generated_at"`
	Date        string        `json:"date"`
	Overdue     int           `json:"overdue"`
	Upcoming    int           `json:"upcoming"`
	Alerts      []fleet.Alert `json:"alerts"`
}

// Publisher sends an alert message somewhere.
type Publisher interface {
	Publish(ctx context.Context, msg AlertMessage) error
}

// tokenPublisher is the part of mqtt.Client the publisher uses.
type tokenPublisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MQTTPublisher publishes alert messages to a single topic. Messages are
// retained so late subscribers see the latest sweep.
type MQTTPublisher struct {
	client  tokenPublisher
	conn    mqtt.Client
	topic   string
	qos     byte
	timeout time.Duration
}

// NewMQTTPublisher connects to broker and returns a publisher for topic.
func NewMQTTPublisher(broker, clientID, topic string) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectTimeout(10 * time.Second).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			log.WithError(err).Warn("MQTT connection lost")
		}).
		SetOnConnectHandler(func(_ mqtt.Client) {
			log.WithField("broker", broker).Info("Connected to MQTT broker")
		})

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(15 * time.Second) {
		return nil, fmt.Errorf("mqtt connect to %s timed out", broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect to %s: %w", broker, err)
	}
	p := newPublisher(client, topic)
	p.conn = client
	return p, nil
}

func newPublisher(client tokenPublisher, topic string) *MQTTPublisher {
	return &MQTTPublisher{client: client, topic: topic, qos: 1, timeout: 10 * time.Second}
}

// Publish encodes msg as JSON and waits for the broker to acknowledge it.
func (p *MQTTPublisher) Publish(ctx context.Context, msg AlertMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode alert message: %w", err)
	}

	token := p.client.Publish(p.topic, p.qos, true, payload)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(p.timeout):
		return errors.New("mqtt publish timed out")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt publish to %s: %w", p.topic, err)
	}
	return nil
}

// Close disconnects from the broker, allowing in-flight work 250ms.
func (p *MQTTPublisher) Close() {
	if p.conn != nil {
		p.conn.Disconnect(250)
	}
}
