package keyboard

import (
	"fmt"
	"log/slog"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/sweeney/forcepad/internal/logic"
)

// MQTTKeyboard publishes key actions to an MQTT broker, where the HID
// bridge picks them up.
type MQTTKeyboard struct {
	client paho.Client
	topic  string
	now    func() time.Time
	logger *slog.Logger
}

// NewMQTTKeyboard connects to the given broker. If the broker is not reachable
// within the connect timeout the keyboard is still returned; the client keeps
// retrying in the background and IsConnected reports false until it succeeds.
func NewMQTTKeyboard(broker, clientID string, logger *slog.Logger) (*MQTTKeyboard, error) {
	will, err := FormatSystemPayload(SystemEvent{Timestamp: time.Now(), Event: "OFFLINE", Reason: "LWT"})
	if err != nil {
		return nil, fmt.Errorf("format will payload: %w", err)
	}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetBinaryWill(TopicSystem, will, 1, true).
		SetOnConnectHandler(func(paho.Client) {
			logger.Info("mqtt connected", "broker", broker)
		}).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			logger.Warn("mqtt connection lost", "error", err)
		})

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		logger.Warn("mqtt connect timed out, retrying in background", "broker", broker)
	} else if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return &MQTTKeyboard{
		client: client,
		topic:  Topic,
		now:    time.Now,
		logger: logger,
	}, nil
}

// IsConnected reports whether the broker connection is up.
func (k *MQTTKeyboard) IsConnected() bool {
	return k.client.IsConnectionOpen()
}

// Write taps a key.
func (k *MQTTKeyboard) Write(cmd logic.Command) error {
	return k.send(cmd, ActionTap)
}

// Press holds a key.
func (k *MQTTKeyboard) Press(cmd logic.Command) error {
	return k.send(cmd, ActionPress)
}

// Release lets go of a held key.
func (k *MQTTKeyboard) Release(cmd logic.Command) error {
	return k.send(cmd, ActionRelease)
}

func (k *MQTTKeyboard) send(cmd logic.Command, action Action) error {
	payload, err := FormatPayload(cmd, action, k.now())
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}

	// QoS 0 (at-most-once), not retained: a stale key press is worse than a lost one.
	token := k.client.Publish(k.topic, 0, false, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}

	return nil
}

// PublishSystem sends a system lifecycle event to the MQTT broker.
func (k *MQTTKeyboard) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}

	// QoS 1 (at-least-once) for lifecycle events
	token := k.client.Publish(TopicSystem, 1, event.Retained, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish system timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish system: %w", err)
	}

	return nil
}

// Close disconnects from the broker.
func (k *MQTTKeyboard) Close() error {
	k.client.Disconnect(1000) // 1 second timeout
	return nil
}
