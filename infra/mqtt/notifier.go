// Package mqtt publishes appointment changes to an MQTT broker with Eclipse
// Paho.
package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/kilianp07/procsched/core/model"
	"github.com/kilianp07/procsched/core/monitoring"
	"github.com/kilianp07/procsched/core/notify"
	"github.com/kilianp07/procsched/infra/logger"
)

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// Message is the payload published for every appointment change.
type Message struct {
	MessageID   string            `json:"message_id"`
	Event       string            `json:"event"`
	Appointment model.Appointment `json:"appointment"`
	Timestamp   int64             `json:"timestamp"`
}

// Notifier implements notify.Notifier over MQTT.
type Notifier struct {
	cli        pahoClient
	logger     logger.Logger
	prefix     string
	qos        byte
	retain     bool
	maxRetries int
	backoff    time.Duration
	now        func() time.Time
}

var _ notify.Notifier = (*Notifier)(nil)

// NewNotifier connects to the broker described by cfg.
func NewNotifier(cfg Config) (*Notifier, error) {
	cfg.SetDefaults()
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	log := logger.New("mqtt_notifier")
	n := &Notifier{
		logger:     log,
		prefix:     cfg.TopicPrefix,
		qos:        cfg.QoS,
		retain:     cfg.Retain,
		maxRetries: cfg.MaxRetries,
		backoff:    time.Duration(cfg.BackoffMS) * time.Millisecond,
		now:        time.Now,
	}
	opts.OnConnect = func(c paho.Client) {
		log.Infof("MQTT connected")
		if cfg.StatusTopic == "" {
			return
		}
		if token := c.Publish(cfg.StatusTopic, cfg.QoS, true, "online"); token.Wait() && token.Error() != nil {
			log.Errorf("status publish error: %v", token.Error())
		}
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	n.cli = c
	return n, nil
}

// Topic returns the topic an appointment is published on.
func (n *Notifier) Topic(id int64) string {
	return n.prefix + "/appointments/" + strconv.FormatInt(id, 10)
}

func eventName(s model.AppointmentStatus) string {
	switch s {
	case model.StatusCancelled:
		return "appointment.cancelled"
	case model.StatusCompleted:
		return "appointment.completed"
	}
	return "appointment.scheduled"
}

// Notify publishes appt, retrying with exponential backoff. Failures after
// the last attempt are reported to the monitor.
func (n *Notifier) Notify(ctx context.Context, appt model.Appointment) error {
	msg := Message{
		MessageID:   uuid.NewString(),
		Event:       eventName(appt.Status),
		Appointment: appt,
		Timestamp:   n.now().UnixMilli(),
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	topic := n.Topic(appt.ID)
	var publishErr error
retry:
	for attempt := 0; ; attempt++ {
		token := n.cli.Publish(topic, n.qos, n.retain, payload)
		token.Wait()
		publishErr = token.Error()
		if publishErr == nil {
			n.logger.Debugf("sent %s %s to %s", msg.Event, msg.MessageID, topic)
			return nil
		}
		n.logger.Errorf("publish attempt %d failed: %v", attempt+1, publishErr)
		if attempt >= n.maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			publishErr = ctx.Err()
			break retry
		case <-time.After(n.backoff * time.Duration(1<<attempt)):
		}
	}
	err = fmt.Errorf("publish appointment %d: %w", appt.ID, publishErr)
	monitoring.CaptureException(err, map[string]string{
		"module":         "mqtt",
		"appointment_id": strconv.FormatInt(appt.ID, 10),
	})
	return err
}

// Close gracefully closes the MQTT connection.
func (n *Notifier) Close() {
	if n.cli != nil && n.cli.IsConnected() {
		n.cli.Disconnect(250)
	}
}
