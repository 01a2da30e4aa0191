package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// loadSourceFromEnv loads source configuration from environment variables
func loadSourceFromEnv(cfg *SourceConfig) {
	if v := getEnvString("SOURCE_KIND"); v != "" {
		cfg.Kind = strings.ToLower(v)
	}
	if v := getEnvString("SOURCE_QUEUE"); v != "" {
		cfg.Queue = v
	}
	if v := getEnvInt("SOURCE_BATCH_SIZE"); v != 0 {
		cfg.BatchSize = v
	}
	if v := getEnvInt("SOURCE_PREFETCH"); v != 0 {
		cfg.Prefetch = v
	}
	if v := getEnvDuration("SOURCE_POLL_TIMEOUT"); v != 0 {
		cfg.PollTimeout = v
	}
}

// loadDestinationFromEnv loads destination configuration from environment variables
func loadDestinationFromEnv(cfg *DestinationConfig) {
	if v := getEnvString("DESTINATION_MODE"); v != "" {
		cfg.Mode = strings.ToLower(v)
	}
	if v := getEnvString("DESTINATION_KIND"); v != "" {
		cfg.Kind = strings.ToLower(v)
	}
	if v := getEnvString("DESTINATION_QUEUE"); v != "" {
		cfg.Queue = v
	}
	if v := getEnvString("DESTINATION_TYPE_HEADER"); v != "" {
		cfg.TypeHeader = v
	}
	if v := getEnvList("DESTINATION_IGNORED_HEADERS"); len(v) > 0 {
		cfg.IgnoredHeaders = v
	}
}

// loadForwarderFromEnv loads worker pool configuration from environment variables
func loadForwarderFromEnv(cfg *ForwarderConfig) {
	if v := getEnvInt("FORWARDER_CONCURRENCY"); v != 0 {
		cfg.Concurrency = v
	}
	if v := getEnvDuration("FORWARDER_ERROR_BACKOFF"); v != 0 {
		cfg.ErrorBackoff = v
	}
	if v := getEnvDuration("FORWARDER_MAX_ERROR_BACKOFF"); v != 0 {
		cfg.MaxErrorBackoff = v
	}
	if v := getEnvInt("FORWARDER_BACKOFF_AFTER"); v != 0 {
		cfg.BackoffAfter = v
	}
	if v := getEnvDuration("FORWARDER_OPERATION_TIMEOUT"); v != 0 {
		cfg.OperationTimeout = v
	}
	if v := getEnvDuration("FORWARDER_SHUTDOWN_TIMEOUT"); v != 0 {
		cfg.ShutdownTimeout = v
	}
	if v := getEnvInt("FORWARDER_MAX_IN_FLIGHT"); v != 0 {
		cfg.MaxInFlight = v
	}
}

// loadRedisFromEnv loads Redis configuration from environment variables
func loadRedisFromEnv(cfg *RedisConfig) {
	if v := getEnvString("REDIS_ADDRESS"); v != "" {
		cfg.Address = v
	}
	if v := getEnvString("REDIS_CONSUMER"); v != "" {
		cfg.Consumer = v
	}
	if v := getEnvInt("REDIS_MAX_LEN"); v != 0 {
		cfg.MaxLen = int64(v)
	}
	loadRedisTimeouts(cfg)
}

func loadRedisTimeouts(cfg *RedisConfig) {
	if v := getEnvDuration("REDIS_CLAIM_IDLE"); v != 0 {
		cfg.ClaimIdle = v
	}
	if v := getEnvDuration("REDIS_CONSUMER_IDLE_TIMEOUT"); v != 0 {
		cfg.ConsumerIdleTimeout = v
	}
	if v := getEnvDuration("REDIS_CLEANUP_INTERVAL"); v != 0 {
		cfg.CleanupInterval = v
	}
	if v := getEnvDuration("REDIS_DIAL_TIMEOUT"); v != 0 {
		cfg.DialTimeout = v
	}
	if v := getEnvDuration("REDIS_READ_TIMEOUT"); v != 0 {
		cfg.ReadTimeout = v
	}
	if v := getEnvDuration("REDIS_WRITE_TIMEOUT"); v != 0 {
		cfg.WriteTimeout = v
	}
	if v := getEnvDuration("REDIS_PING_TIMEOUT"); v != 0 {
		cfg.PingTimeout = v
	}
}

// loadSQSFromEnv loads SQS configuration from environment variables
func loadSQSFromEnv(cfg *SQSConfig) {
	if v := getEnvString("SQS_REGION"); v != "" {
		cfg.Region = v
	}
	if v := getEnvString("SQS_ENDPOINT"); v != "" {
		cfg.Endpoint = v
	}
	if v := getEnvInt("SQS_VISIBILITY_TIMEOUT"); v != 0 {
		cfg.VisibilityTimeout = int32(v) // #nosec G115 - validated range
	}
}

// loadAMQPFromEnv loads RabbitMQ configuration from environment variables
func loadAMQPFromEnv(cfg *AMQPConfig) {
	if v := getEnvString("AMQP_URL"); v != "" {
		cfg.URL = v
	}
	if v := getEnvString("AMQP_CONSUMER_TAG"); v != "" {
		cfg.ConsumerTag = v
	}
	if v := getEnvString("AMQP_EXCHANGE"); v != "" {
		cfg.Exchange = v
	}
}

// loadKafkaFromEnv loads Kafka configuration from environment variables
func loadKafkaFromEnv(cfg *KafkaConfig) {
	if v := getEnvList("KAFKA_BROKERS"); len(v) > 0 {
		cfg.Brokers = v
	}
	if v := getEnvDuration("KAFKA_BATCH_TIMEOUT"); v != 0 {
		cfg.BatchTimeout = v
	}
}

// loadMQTTFromEnv loads MQTT configuration from environment variables
func loadMQTTFromEnv(cfg *MQTTConfig) {
	loadMQTTStrings(cfg)
	loadMQTTInts(cfg)
	loadMQTTTimeouts(cfg)
	loadMQTTBools(cfg)
}

func loadMQTTStrings(cfg *MQTTConfig) {
	if v := getEnvString("MQTT_BROKER"); v != "" {
		cfg.Broker = v
	}
	if v := getEnvString("MQTT_CLIENT_ID"); v != "" {
		cfg.ClientID = v
	}
	if v := getEnvString("MQTT_CA_CERT"); v != "" {
		cfg.CACert = v
	}
	if v := getEnvString("MQTT_CLIENT_CERT"); v != "" {
		cfg.ClientCert = v
	}
	if v := getEnvString("MQTT_CLIENT_KEY"); v != "" {
		cfg.ClientKey = v
	}
}

func loadMQTTInts(cfg *MQTTConfig) {
	// QoS 0 is a legitimate value, so presence is checked instead of non-zero
	if getEnvString("MQTT_QOS") != "" {
		if v := getEnvInt("MQTT_QOS"); v >= 0 && v <= 2 {
			cfg.QoS = byte(v) // #nosec G115 - validated range 0-2
		}
	}
	if v := getEnvInt("MQTT_POOL_SIZE"); v != 0 {
		cfg.PoolSize = v
	}
	if v := getEnvInt("MQTT_DISCONNECT_TIMEOUT"); v > 0 {
		cfg.DisconnectTimeout = uint(v)
	}
}

func loadMQTTTimeouts(cfg *MQTTConfig) {
	if v := getEnvDuration("MQTT_CONNECT_TIMEOUT"); v != 0 {
		cfg.ConnectTimeout = v
	}
	if v := getEnvDuration("MQTT_WRITE_TIMEOUT"); v != 0 {
		cfg.WriteTimeout = v
	}
	if v := getEnvDuration("MQTT_MAX_RECONNECT_INTERVAL"); v != 0 {
		cfg.MaxReconnectInterval = v
	}
}

func loadMQTTBools(cfg *MQTTConfig) {
	if v := getEnvBool("MQTT_TLS_ENABLED"); v {
		cfg.TLSEnabled = v
	}
	if v := getEnvBool("MQTT_TLS_INSECURE_SKIP"); v {
		cfg.InsecureSkip = v
	}
	if v := getEnvBool("MQTT_USE_CERT_CN_PREFIX"); v {
		cfg.UseCertCNPrefix = v
	}
}

// Helper functions for reading environment variables

func getEnvString(key string) string {
	return os.Getenv(key)
}

func getEnvInt(key string) int {
	value := os.Getenv(key)
	if value == "" {
		return 0
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return intValue
}

func getEnvDuration(key string) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return 0
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return duration
}

func getEnvBool(key string) bool {
	value := os.Getenv(key)
	return value == "true"
}

func getEnvList(key string) []string {
	return splitList(os.Getenv(key))
}

// splitList splits a comma separated value, dropping blanks
func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
