// Package mqtt publishes completed readings to an MQTT broker as JSON,
// for dashboards and home-automation integrations.
package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/alexb2611/enviroplus/internal/sensor"
)

const connectTimeout = 10 * time.Second

// Publisher implements the sampler.Sink interface over an MQTT topic.
// Readings are published QoS 0 and retained, so a subscriber connecting
// between ticks immediately sees the latest state.
type Publisher struct {
	client paho.Client
	topic  string
	log    *slog.Logger
}

// NewPublisher connects to the broker. The broker address uses paho's URI
// form, e.g. tcp://localhost:1883.
func NewPublisher(broker, clientID, topic string, log *slog.Logger) (*Publisher, error) {
	if log == nil {
		log = slog.Default()
	}
	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectTimeout(connectTimeout)

	c := paho.NewClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connect %s: %w", broker, token.Error())
	}
	return &Publisher{client: c, topic: topic, log: log}, nil
}

// Write publishes one reading. A publish failure is reported to the caller
// but is expected to be logged and ignored there: the feed is best-effort
// and must never stall the sampling loop.
func (p *Publisher) Write(_ context.Context, r sensor.Reading) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal reading: %w", err)
	}

	token := p.client.Publish(p.topic, 0, true, payload)
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("publish %s: %w", p.topic, token.Error())
	}
	return nil
}

// Close disconnects from the broker, allowing in-flight work to finish.
func (p *Publisher) Close() {
	p.client.Disconnect(250)
}
