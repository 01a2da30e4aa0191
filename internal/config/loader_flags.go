package config

import (
	"flag"
	"strings"
)

// Command line flags (have precedence over environment variables)
var (
	// Source flags
	flagSourceKind        = flag.String("source-kind", "", "Source broker kind (redis, sqs, amqp)")
	flagSourceQueue       = flag.String("source-queue", "", "Source stream, queue URL or queue name")
	flagSourceBatchSize   = flag.Int("source-batch-size", 0, "Maximum messages per receive")
	flagSourcePrefetch    = flag.Int("source-prefetch", 0, "AMQP prefetch count")
	flagSourcePollTimeout = flag.Duration("source-poll-timeout", 0, "Receive poll timeout")

	// Destination flags
	flagDestinationMode           = flag.String("destination-mode", "", "Forwarding mode (raw, semantic)")
	flagDestinationKind           = flag.String("destination-kind", "", "Destination kind (redis, sqs, amqp, kafka, mqtt)")
	flagDestinationQueue          = flag.String("destination-queue", "", "Destination stream, queue, topic or endpoint")
	flagDestinationTypeHeader     = flag.String("destination-type-header", "", "Header carrying the message type")
	flagDestinationIgnoredHeaders = flag.String("destination-ignored-headers", "", "Comma separated headers never copied")

	// Forwarder flags
	flagForwarderConcurrency     = flag.Int("forwarder-concurrency", 0, "Number of concurrent workers")
	flagForwarderErrorBackoff    = flag.Duration("forwarder-error-backoff", 0, "Initial error backoff")
	flagForwarderMaxErrorBackoff = flag.Duration("forwarder-max-error-backoff", 0, "Maximum error backoff")
	flagForwarderBackoffAfter    = flag.Int("forwarder-backoff-after", 0, "Consecutive failures before backing off")
	flagForwarderOperationTO     = flag.Duration("forwarder-operation-timeout", 0, "Forward and acknowledge timeout")
	flagForwarderShutdownTO      = flag.Duration("forwarder-shutdown-timeout", 0, "Graceful shutdown timeout")
	flagForwarderMaxInFlight     = flag.Int("forwarder-max-in-flight", 0, "Concurrent dispatches per batch (0 = unlimited)")

	// Redis flags
	flagRedisAddress         = flag.String("redis-address", "", "Redis address")
	flagRedisConsumer        = flag.String("redis-consumer", "", "Redis consumer name prefix")
	flagRedisMaxLen          = flag.Int64("redis-max-len", 0, "Destination stream approximate max length")
	flagRedisClaimIdle       = flag.Duration("redis-claim-idle", 0, "Redis claim idle time")
	flagRedisConsumerIdle    = flag.Duration("redis-consumer-idle-timeout", 0, "Redis consumer idle timeout")
	flagRedisCleanupInterval = flag.Duration("redis-cleanup-interval", 0, "Redis cleanup interval")
	flagRedisDialTimeout     = flag.Duration("redis-dial-timeout", 0, "Redis dial timeout")
	flagRedisReadTimeout     = flag.Duration("redis-read-timeout", 0, "Redis read timeout")
	flagRedisWriteTimeout    = flag.Duration("redis-write-timeout", 0, "Redis write timeout")
	flagRedisPingTimeout     = flag.Duration("redis-ping-timeout", 0, "Redis ping timeout")

	// SQS flags
	flagSQSRegion            = flag.String("sqs-region", "", "AWS region")
	flagSQSEndpoint          = flag.String("sqs-endpoint", "", "SQS endpoint override")
	flagSQSVisibilityTimeout = flag.Int("sqs-visibility-timeout", 0, "SQS visibility timeout (seconds)")

	// AMQP flags
	flagAMQPURL         = flag.String("amqp-url", "", "AMQP connection URL")
	flagAMQPConsumerTag = flag.String("amqp-consumer-tag", "", "AMQP consumer tag prefix")
	flagAMQPExchange    = flag.String("amqp-exchange", "", "AMQP exchange used for publishing")

	// Kafka flags
	flagKafkaBrokers      = flag.String("kafka-brokers", "", "Comma separated Kafka brokers")
	flagKafkaBatchTimeout = flag.Duration("kafka-batch-timeout", 0, "Kafka writer batch timeout")

	// MQTT flags
	flagMQTTBroker            = flag.String("mqtt-broker", "", "MQTT broker URL")
	flagMQTTClientID          = flag.String("mqtt-client-id", "", "MQTT client ID")
	flagMQTTQoS               = flag.Int("mqtt-qos", -1, "MQTT QoS (0, 1, or 2)")
	flagMQTTConnectTimeout    = flag.Duration("mqtt-connect-timeout", 0, "MQTT connect timeout")
	flagMQTTWriteTimeout      = flag.Duration("mqtt-write-timeout", 0, "MQTT write timeout")
	flagMQTTPoolSize          = flag.Int("mqtt-pool-size", 0, "MQTT connection pool size")
	flagMQTTMaxReconnect      = flag.Duration("mqtt-max-reconnect-interval", 0, "MQTT max reconnect interval")
	flagMQTTDisconnectTimeout = flag.Int("mqtt-disconnect-timeout", 0, "MQTT disconnect timeout (ms)")
	flagMQTTTLSEnabled        = flag.Bool("mqtt-tls-enabled", false, "Enable MQTT TLS")
	flagMQTTCACert            = flag.String("mqtt-ca-cert", "", "MQTT CA certificate path")
	flagMQTTClientCert        = flag.String("mqtt-client-cert", "", "MQTT client certificate path")
	flagMQTTClientKey         = flag.String("mqtt-client-key", "", "MQTT client key path")
	flagMQTTTLSInsecureSkip   = flag.Bool("mqtt-tls-insecure-skip", false, "Skip MQTT TLS verification")
	// Prefix the destination topic with client cert CN (for ACL constraints)
	flagMQTTUseCertCNPrefix = flag.Bool("mqtt-use-cert-cn-prefix", false, "Prefix destination topic with client cert CN")
)

// applySourceFlags applies command line flags to source configuration
func applySourceFlags(cfg *SourceConfig) {
	if *flagSourceKind != "" {
		cfg.Kind = strings.ToLower(*flagSourceKind)
	}
	if *flagSourceQueue != "" {
		cfg.Queue = *flagSourceQueue
	}
	if *flagSourceBatchSize != 0 {
		cfg.BatchSize = *flagSourceBatchSize
	}
	if *flagSourcePrefetch != 0 {
		cfg.Prefetch = *flagSourcePrefetch
	}
	if *flagSourcePollTimeout != 0 {
		cfg.PollTimeout = *flagSourcePollTimeout
	}
}

// applyDestinationFlags applies command line flags to destination configuration
func applyDestinationFlags(cfg *DestinationConfig) {
	if *flagDestinationMode != "" {
		cfg.Mode = strings.ToLower(*flagDestinationMode)
	}
	if *flagDestinationKind != "" {
		cfg.Kind = strings.ToLower(*flagDestinationKind)
	}
	if *flagDestinationQueue != "" {
		cfg.Queue = *flagDestinationQueue
	}
	if *flagDestinationTypeHeader != "" {
		cfg.TypeHeader = *flagDestinationTypeHeader
	}
	if v := splitList(*flagDestinationIgnoredHeaders); len(v) > 0 {
		cfg.IgnoredHeaders = v
	}
}

// applyForwarderFlags applies command line flags to worker pool configuration
func applyForwarderFlags(cfg *ForwarderConfig) {
	if *flagForwarderConcurrency != 0 {
		cfg.Concurrency = *flagForwarderConcurrency
	}
	if *flagForwarderErrorBackoff != 0 {
		cfg.ErrorBackoff = *flagForwarderErrorBackoff
	}
	if *flagForwarderMaxErrorBackoff != 0 {
		cfg.MaxErrorBackoff = *flagForwarderMaxErrorBackoff
	}
	if *flagForwarderBackoffAfter != 0 {
		cfg.BackoffAfter = *flagForwarderBackoffAfter
	}
	if *flagForwarderOperationTO != 0 {
		cfg.OperationTimeout = *flagForwarderOperationTO
	}
	if *flagForwarderShutdownTO != 0 {
		cfg.ShutdownTimeout = *flagForwarderShutdownTO
	}
	if *flagForwarderMaxInFlight != 0 {
		cfg.MaxInFlight = *flagForwarderMaxInFlight
	}
}

// applyRedisFlags applies command line flags to Redis configuration
func applyRedisFlags(cfg *RedisConfig) {
	if *flagRedisAddress != "" {
		cfg.Address = *flagRedisAddress
	}
	if *flagRedisConsumer != "" {
		cfg.Consumer = *flagRedisConsumer
	}
	if *flagRedisMaxLen != 0 {
		cfg.MaxLen = *flagRedisMaxLen
	}
	applyRedisFlagTimeouts(cfg)
}

func applyRedisFlagTimeouts(cfg *RedisConfig) {
	if *flagRedisClaimIdle != 0 {
		cfg.ClaimIdle = *flagRedisClaimIdle
	}
	if *flagRedisConsumerIdle != 0 {
		cfg.ConsumerIdleTimeout = *flagRedisConsumerIdle
	}
	if *flagRedisCleanupInterval != 0 {
		cfg.CleanupInterval = *flagRedisCleanupInterval
	}
	if *flagRedisDialTimeout != 0 {
		cfg.DialTimeout = *flagRedisDialTimeout
	}
	if *flagRedisReadTimeout != 0 {
		cfg.ReadTimeout = *flagRedisReadTimeout
	}
	if *flagRedisWriteTimeout != 0 {
		cfg.WriteTimeout = *flagRedisWriteTimeout
	}
	if *flagRedisPingTimeout != 0 {
		cfg.PingTimeout = *flagRedisPingTimeout
	}
}

// applySQSFlags applies command line flags to SQS configuration
func applySQSFlags(cfg *SQSConfig) {
	if *flagSQSRegion != "" {
		cfg.Region = *flagSQSRegion
	}
	if *flagSQSEndpoint != "" {
		cfg.Endpoint = *flagSQSEndpoint
	}
	if *flagSQSVisibilityTimeout != 0 {
		cfg.VisibilityTimeout = int32(*flagSQSVisibilityTimeout) // #nosec G115 - validated range
	}
}

// applyAMQPFlags applies command line flags to RabbitMQ configuration
func applyAMQPFlags(cfg *AMQPConfig) {
	if *flagAMQPURL != "" {
		cfg.URL = *flagAMQPURL
	}
	if *flagAMQPConsumerTag != "" {
		cfg.ConsumerTag = *flagAMQPConsumerTag
	}
	if *flagAMQPExchange != "" {
		cfg.Exchange = *flagAMQPExchange
	}
}

// applyKafkaFlags applies command line flags to Kafka configuration
func applyKafkaFlags(cfg *KafkaConfig) {
	if v := splitList(*flagKafkaBrokers); len(v) > 0 {
		cfg.Brokers = v
	}
	if *flagKafkaBatchTimeout != 0 {
		cfg.BatchTimeout = *flagKafkaBatchTimeout
	}
}

// applyMQTTFlags applies command line flags to MQTT configuration
func applyMQTTFlags(cfg *MQTTConfig) {
	applyMQTTFlagStrings(cfg)
	applyMQTTFlagInts(cfg)
	applyMQTTFlagTimeouts(cfg)
	applyMQTTFlagBools(cfg)
}

func applyMQTTFlagStrings(cfg *MQTTConfig) {
	if *flagMQTTBroker != "" {
		cfg.Broker = *flagMQTTBroker
	}
	if *flagMQTTClientID != "" {
		cfg.ClientID = *flagMQTTClientID
	}
	if *flagMQTTCACert != "" {
		cfg.CACert = *flagMQTTCACert
	}
	if *flagMQTTClientCert != "" {
		cfg.ClientCert = *flagMQTTClientCert
	}
	if *flagMQTTClientKey != "" {
		cfg.ClientKey = *flagMQTTClientKey
	}
}

func applyMQTTFlagInts(cfg *MQTTConfig) {
	if *flagMQTTQoS >= 0 && *flagMQTTQoS <= 2 {
		cfg.QoS = byte(*flagMQTTQoS) // #nosec G115 - validated range 0-2
	}
	if *flagMQTTPoolSize != 0 {
		cfg.PoolSize = *flagMQTTPoolSize
	}
	if *flagMQTTDisconnectTimeout > 0 {
		cfg.DisconnectTimeout = uint(*flagMQTTDisconnectTimeout)
	}
}

func applyMQTTFlagTimeouts(cfg *MQTTConfig) {
	if *flagMQTTConnectTimeout != 0 {
		cfg.ConnectTimeout = *flagMQTTConnectTimeout
	}
	if *flagMQTTWriteTimeout != 0 {
		cfg.WriteTimeout = *flagMQTTWriteTimeout
	}
	if *flagMQTTMaxReconnect != 0 {
		cfg.MaxReconnectInterval = *flagMQTTMaxReconnect
	}
}

func applyMQTTFlagBools(cfg *MQTTConfig) {
	// Bool flags only override when explicitly set
	if isFlagSet("mqtt-tls-enabled") {
		cfg.TLSEnabled = *flagMQTTTLSEnabled
	}
	if isFlagSet("mqtt-tls-insecure-skip") {
		cfg.InsecureSkip = *flagMQTTTLSInsecureSkip
	}
	if isFlagSet("mqtt-use-cert-cn-prefix") {
		cfg.UseCertCNPrefix = *flagMQTTUseCertCNPrefix
	}
}

// isFlagSet checks if a flag was explicitly set on the command line
func isFlagSet(name string) bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}
