package sensor

import (
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"envirostream/telemetry"
)

// MQTTConfig holds the connection settings for a real sensor feed.
type MQTTConfig struct {
	Broker          string
	Port            int
	Topic           string
	Username        string
	Password        string
	UseTLS          bool
	InsecureSkipTLS bool
}

// MQTTSource subscribes to a sensor topic and forwards each decoded
// reading into the pipeline. Out-of-range values are accepted and
// surfaced as data-quality flags; they never stop the feed.
type MQTTSource struct {
	config MQTTConfig
	client mqtt.Client
	ingest func(telemetry.Reading)
	onFlag func()
	log    *slog.Logger
}

// NewMQTTSource creates a source that calls ingest for every reading
// and onFlag (may be nil) once per out-of-range reading.
func NewMQTTSource(config MQTTConfig, ingest func(telemetry.Reading), onFlag func(), log *slog.Logger) *MQTTSource {
	if log == nil {
		log = slog.Default()
	}
	return &MQTTSource{config: config, ingest: ingest, onFlag: onFlag, log: log}
}

func (s *MQTTSource) Start() error {
	opts := mqtt.NewClientOptions()

	protocol := "tcp"
	if s.config.UseTLS {
		protocol = "tls"
	}
	brokerURL := fmt.Sprintf("%s://%s:%d", protocol, s.config.Broker, s.config.Port)
	opts.AddBroker(brokerURL)
	opts.SetClientID(fmt.Sprintf("envirostream-%d", time.Now().Unix()))

	if s.config.Username != "" {
		opts.SetUsername(s.config.Username)
		opts.SetPassword(s.config.Password)
	}
	if s.config.UseTLS {
		opts.SetTLSConfig(&tls.Config{InsecureSkipVerify: s.config.InsecureSkipTLS})
	}

	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetConnectTimeout(10 * time.Second)
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(30 * time.Second)

	opts.OnConnect = s.onConnect
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		s.log.Warn("mqtt connection lost, will auto-reconnect", "error", err)
	}

	s.client = mqtt.NewClient(opts)
	s.log.Info("connecting to mqtt broker", "url", brokerURL, "topic", s.config.Topic)

	token := s.client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return fmt.Errorf("mqtt connect timeout")
	}
	if token.Error() != nil {
		return fmt.Errorf("mqtt connect failed: %w", token.Error())
	}
	return nil
}

func (s *MQTTSource) Stop() {
	if s.client != nil && s.client.IsConnected() {
		s.client.Disconnect(1000)
	}
}

func (s *MQTTSource) IsConnected() bool {
	return s.client != nil && s.client.IsConnected()
}

func (s *MQTTSource) onConnect(client mqtt.Client) {
	token := client.Subscribe(s.config.Topic, 0, s.onMessage)
	if !token.WaitTimeout(5 * time.Second) {
		s.log.Error("mqtt subscribe timeout", "topic", s.config.Topic)
		return
	}
	if token.Error() != nil {
		s.log.Error("mqtt subscribe failed", "topic", s.config.Topic, "error", token.Error())
		return
	}
	s.log.Info("mqtt subscribed", "topic", s.config.Topic)
}

// sensorPayload is the tolerant wire shape real devices publish. The
// timestamp may be an RFC 3339 string or unix milliseconds; a missing
// timestamp means "now".
type sensorPayload struct {
	Timestamp   json.RawMessage `json:"timestamp"`
	Temperature float64         `json:"temperature"`
	Humidity    float64         `json:"humidity"`
	Pressure    float64         `json:"pressure"`
	Status      string          `json:"status"`
}

func (s *MQTTSource) onMessage(_ mqtt.Client, msg mqtt.Message) {
	var payload sensorPayload
	if err := json.Unmarshal(msg.Payload(), &payload); err != nil {
		// Not a reading, skip.
		return
	}

	reading := telemetry.Reading{
		Timestamp:   parseTimestamp(payload.Timestamp),
		Temperature: payload.Temperature,
		Humidity:    payload.Humidity,
		Pressure:    payload.Pressure,
		Status:      telemetry.Status(payload.Status),
	}
	if !telemetry.ValidStatus(reading.Status) {
		reading.Status = telemetry.StatusNormal
	}

	if flags := reading.OutOfRange(); len(flags) > 0 {
		s.log.Warn("out-of-range sensor reading accepted", "flags", flags)
		if s.onFlag != nil {
			s.onFlag()
		}
	}

	s.ingest(reading)
}

func parseTimestamp(raw json.RawMessage) time.Time {
	if len(raw) == 0 {
		return time.Now()
	}

	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		if ts, err := time.Parse(time.RFC3339, str); err == nil {
			return ts
		}
		return time.Now()
	}

	var ms float64
	if err := json.Unmarshal(raw, &ms); err == nil && ms > 0 {
		return time.Unix(0, int64(ms)*int64(time.Millisecond))
	}
	return time.Now()
}
