package config

import (
	"fmt"
	"slices"
)

// sqsMaxBatch is the SQS limit for ReceiveMessage, SendMessageBatch and DeleteMessageBatch
const sqsMaxBatch = 10

var (
	sourceKinds      = []string{KindRedis, KindSQS, KindAMQP}
	rawDestinations  = []string{KindRedis, KindSQS, KindAMQP, KindKafka}
	semanticKinds    = []string{KindMQTT}
	destinationModes = []string{ModeRaw, ModeSemantic}
)

// Validate checks configuration constraints
func Validate(cfg *Config) error {
	if err := validateSource(&cfg.Source); err != nil {
		return err
	}
	if err := validateDestination(&cfg.Destination); err != nil {
		return err
	}
	if err := validateForwarder(&cfg.Forwarder); err != nil {
		return err
	}
	return validateConnections(cfg)
}

// validateSource validates source configuration
func validateSource(cfg *SourceConfig) error {
	if !slices.Contains(sourceKinds, cfg.Kind) {
		return fmt.Errorf("source kind %q is not supported", cfg.Kind)
	}
	if cfg.Queue == "" {
		return fmt.Errorf("source queue cannot be empty")
	}
	if cfg.BatchSize < 1 {
		return fmt.Errorf("source batch size must be positive")
	}
	if cfg.Kind == KindSQS && cfg.BatchSize > sqsMaxBatch {
		return fmt.Errorf("source batch size must not exceed %d for sqs", sqsMaxBatch)
	}
	if cfg.Prefetch < 0 {
		return fmt.Errorf("source prefetch cannot be negative")
	}
	// Zero would block Redis forever and make the AMQP wait spin
	if cfg.PollTimeout <= 0 {
		return fmt.Errorf("source poll timeout must be positive")
	}
	return nil
}

// validateDestination validates destination configuration and mode compatibility
func validateDestination(cfg *DestinationConfig) error {
	if !slices.Contains(destinationModes, cfg.Mode) {
		return fmt.Errorf("destination mode %q is not supported", cfg.Mode)
	}
	if cfg.Queue == "" {
		return fmt.Errorf("destination queue cannot be empty")
	}
	switch cfg.Mode {
	case ModeRaw:
		if !slices.Contains(rawDestinations, cfg.Kind) {
			return fmt.Errorf("destination kind %q does not support raw mode", cfg.Kind)
		}
	case ModeSemantic:
		if !slices.Contains(semanticKinds, cfg.Kind) {
			return fmt.Errorf("destination kind %q does not support semantic mode", cfg.Kind)
		}
		if cfg.TypeHeader == "" {
			return fmt.Errorf("destination type header cannot be empty in semantic mode")
		}
	}
	return nil
}

// validateForwarder validates worker pool configuration
func validateForwarder(cfg *ForwarderConfig) error {
	if cfg.Concurrency < 1 {
		return fmt.Errorf("forwarder concurrency must be positive")
	}
	if cfg.ErrorBackoff < 0 || cfg.MaxErrorBackoff < 0 {
		return fmt.Errorf("forwarder error backoff cannot be negative")
	}
	if cfg.MaxErrorBackoff < cfg.ErrorBackoff {
		return fmt.Errorf("forwarder max error backoff must not be lower than error backoff")
	}
	if cfg.BackoffAfter < 1 {
		return fmt.Errorf("forwarder backoff-after must be positive")
	}
	if cfg.OperationTimeout <= 0 {
		return fmt.Errorf("forwarder operation timeout must be positive")
	}
	if cfg.ShutdownTimeout <= 0 {
		return fmt.Errorf("forwarder shutdown timeout must be positive")
	}
	if cfg.MaxInFlight < 0 {
		return fmt.Errorf("forwarder max in-flight cannot be negative")
	}
	return nil
}

// validateConnections checks the connection settings of every selected kind
func validateConnections(cfg *Config) error {
	for _, kind := range []string{cfg.Source.Kind, cfg.Destination.Kind} {
		var err error
		switch kind {
		case KindRedis:
			err = validateRedis(&cfg.Redis)
		case KindSQS:
			err = validateSQS(&cfg.SQS)
		case KindAMQP:
			err = validateAMQP(&cfg.AMQP)
		case KindKafka:
			err = validateKafka(&cfg.Kafka)
		case KindMQTT:
			err = validateMQTT(&cfg.MQTT)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// validateRedis validates Redis configuration
func validateRedis(cfg *RedisConfig) error {
	if cfg.Address == "" {
		return fmt.Errorf("redis address cannot be empty")
	}
	if cfg.Consumer == "" {
		return fmt.Errorf("redis consumer name cannot be empty")
	}
	if cfg.MaxLen < 0 {
		return fmt.Errorf("redis max len cannot be negative")
	}
	return nil
}

// validateSQS validates SQS configuration
func validateSQS(cfg *SQSConfig) error {
	if cfg.Region == "" {
		return fmt.Errorf("sqs region cannot be empty")
	}
	if cfg.VisibilityTimeout < 0 {
		return fmt.Errorf("sqs visibility timeout cannot be negative")
	}
	return nil
}

// validateAMQP validates RabbitMQ configuration
func validateAMQP(cfg *AMQPConfig) error {
	if cfg.URL == "" {
		return fmt.Errorf("amqp url cannot be empty")
	}
	return nil
}

// validateKafka validates Kafka configuration
func validateKafka(cfg *KafkaConfig) error {
	if len(cfg.Brokers) == 0 {
		return fmt.Errorf("kafka brokers cannot be empty")
	}
	return nil
}

// validateMQTT validates MQTT configuration
func validateMQTT(cfg *MQTTConfig) error {
	if cfg.Broker == "" {
		return fmt.Errorf("mqtt broker cannot be empty")
	}
	if cfg.ClientID == "" {
		return fmt.Errorf("mqtt client ID cannot be empty")
	}
	if cfg.PoolSize < 1 {
		return fmt.Errorf("mqtt pool size must be positive")
	}
	// MQTT is only a semantic destination; QoS 0 completes without broker confirmation
	if cfg.QoS < 1 || cfg.QoS > 2 {
		return fmt.Errorf("mqtt qos must be 1 or 2")
	}
	if cfg.WriteTimeout <= 0 {
		return fmt.Errorf("mqtt write timeout must be positive")
	}
	return nil
}
