package config

import (
	"flag"
	"fmt"
)

// Load loads configuration with precedence: defaults → environment variables → command line flags
// It performs validation and runtime transformations before returning the configuration.
func Load() (*Config, error) {
	if !flag.Parsed() {
		flag.Parse()
	}

	cfg := defaultConfig()

	loadSourceFromEnv(&cfg.Source)
	loadDestinationFromEnv(&cfg.Destination)
	loadForwarderFromEnv(&cfg.Forwarder)
	loadRedisFromEnv(&cfg.Redis)
	loadSQSFromEnv(&cfg.SQS)
	loadAMQPFromEnv(&cfg.AMQP)
	loadKafkaFromEnv(&cfg.Kafka)
	loadMQTTFromEnv(&cfg.MQTT)

	// Flags have the highest precedence
	applySourceFlags(&cfg.Source)
	applyDestinationFlags(&cfg.Destination)
	applyForwarderFlags(&cfg.Forwarder)
	applyRedisFlags(&cfg.Redis)
	applySQSFlags(&cfg.SQS)
	applyAMQPFlags(&cfg.AMQP)
	applyKafkaFlags(&cfg.Kafka)
	applyMQTTFlags(&cfg.MQTT)

	if err := applyRuntimeValidation(cfg); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}
