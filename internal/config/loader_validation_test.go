package config

import (
	"testing"
	"time"
)

func TestValidate_Success(t *testing.T) {
	cfg := defaultConfig()
	cfg.Source.Kind = KindSQS
	cfg.Destination.Mode = ModeSemantic
	cfg.Destination.Kind = KindMQTT

	if err := Validate(cfg); err != nil {
		t.Errorf("Validate() failed for valid config: %v", err)
	}
}

func TestValidateSource(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*SourceConfig)
		wantError bool
	}{
		{"valid", func(*SourceConfig) {}, false},
		{"unknown kind", func(c *SourceConfig) { c.Kind = "nats" }, true},
		{"mqtt source", func(c *SourceConfig) { c.Kind = KindMQTT }, true},
		{"empty queue", func(c *SourceConfig) { c.Queue = "" }, true},
		{"zero batch", func(c *SourceConfig) { c.BatchSize = 0 }, true},
		{"sqs batch 10", func(c *SourceConfig) { c.Kind = KindSQS; c.BatchSize = 10 }, false},
		{"sqs batch 11", func(c *SourceConfig) { c.Kind = KindSQS; c.BatchSize = 11 }, true},
		{"negative prefetch", func(c *SourceConfig) { c.Prefetch = -1 }, true},
		{"negative poll", func(c *SourceConfig) { c.PollTimeout = -time.Second }, true},
		{"zero poll", func(c *SourceConfig) { c.PollTimeout = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultSourceConfig()
			tt.mutate(&cfg)
			checkValidationError(t, validateSource(&cfg), tt.wantError)
		})
	}
}

func TestValidateDestination(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*DestinationConfig)
		wantError bool
	}{
		{"raw redis", func(*DestinationConfig) {}, false},
		{"raw kafka", func(c *DestinationConfig) { c.Kind = KindKafka }, false},
		{"raw mqtt", func(c *DestinationConfig) { c.Kind = KindMQTT }, true},
		{"semantic mqtt", func(c *DestinationConfig) { c.Mode = ModeSemantic; c.Kind = KindMQTT }, false},
		{"semantic sqs", func(c *DestinationConfig) { c.Mode = ModeSemantic; c.Kind = KindSQS }, true},
		{"semantic without type header", func(c *DestinationConfig) {
			c.Mode = ModeSemantic
			c.Kind = KindMQTT
			c.TypeHeader = ""
		}, true},
		{"unknown mode", func(c *DestinationConfig) { c.Mode = "mirror" }, true},
		{"empty queue", func(c *DestinationConfig) { c.Queue = "" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultDestinationConfig()
			tt.mutate(&cfg)
			checkValidationError(t, validateDestination(&cfg), tt.wantError)
		})
	}
}

func TestValidateForwarder(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*ForwarderConfig)
		wantError bool
	}{
		{"valid", func(*ForwarderConfig) {}, false},
		{"zero concurrency", func(c *ForwarderConfig) { c.Concurrency = 0 }, true},
		{"negative backoff", func(c *ForwarderConfig) { c.ErrorBackoff = -time.Second }, true},
		{"max below initial", func(c *ForwarderConfig) { c.MaxErrorBackoff = time.Millisecond }, true},
		{"zero backoff allowed", func(c *ForwarderConfig) { c.ErrorBackoff = 0; c.MaxErrorBackoff = 0 }, false},
		{"zero backoff-after", func(c *ForwarderConfig) { c.BackoffAfter = 0 }, true},
		{"zero operation timeout", func(c *ForwarderConfig) { c.OperationTimeout = 0 }, true},
		{"zero shutdown timeout", func(c *ForwarderConfig) { c.ShutdownTimeout = 0 }, true},
		{"negative in-flight", func(c *ForwarderConfig) { c.MaxInFlight = -1 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultForwarderConfig()
			tt.mutate(&cfg)
			checkValidationError(t, validateForwarder(&cfg), tt.wantError)
		})
	}
}

func TestValidateConnections(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantError bool
	}{
		{"defaults", func(*Config) {}, false},
		{"redis without address", func(c *Config) { c.Redis.Address = "" }, true},
		{"redis without consumer", func(c *Config) { c.Redis.Consumer = "" }, true},
		{"unused sqs region ignored", func(c *Config) { c.SQS.Region = "" }, false},
		{"sqs without region", func(c *Config) { c.Source.Kind = KindSQS; c.SQS.Region = "" }, true},
		{"amqp without url", func(c *Config) { c.Source.Kind = KindAMQP; c.AMQP.URL = "" }, true},
		{"kafka without brokers", func(c *Config) { c.Destination.Kind = KindKafka; c.Kafka.Brokers = nil }, true},
		{"mqtt without broker", func(c *Config) { c.Destination.Kind = KindMQTT; c.MQTT.Broker = "" }, true},
		{"mqtt bad qos", func(c *Config) { c.Destination.Kind = KindMQTT; c.MQTT.QoS = 3 }, true},
		{"mqtt zero pool", func(c *Config) { c.Destination.Kind = KindMQTT; c.MQTT.PoolSize = 0 }, true},
		{"mqtt qos 0", func(c *Config) { c.Destination.Kind = KindMQTT; c.MQTT.QoS = 0 }, true},
		{"mqtt qos 2", func(c *Config) { c.Destination.Kind = KindMQTT; c.MQTT.QoS = 2 }, false},
		{"mqtt zero write timeout", func(c *Config) { c.Destination.Kind = KindMQTT; c.MQTT.WriteTimeout = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			checkValidationError(t, validateConnections(cfg), tt.wantError)
		})
	}
}

func TestValidate_SemanticRejectsUnconfirmedPublish(t *testing.T) {
	cfg := defaultConfig()
	cfg.Destination.Mode = ModeSemantic
	cfg.Destination.Kind = KindMQTT
	cfg.MQTT.QoS = 0

	if err := Validate(cfg); err == nil {
		t.Error("Validate() accepted semantic mode with QoS 0")
	}
}

func checkValidationError(t *testing.T, err error, wantError bool) {
	t.Helper()
	if wantError && err == nil {
		t.Error("expected error, got nil")
	}
	if !wantError && err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
