// Package config provides configuration loading and validation from environment variables and command line flags.
package config

import "time"

// Source kinds
const (
	KindRedis = "redis"
	KindSQS   = "sqs"
	KindAMQP  = "amqp"
	KindKafka = "kafka"
	KindMQTT  = "mqtt"
)

// Destination modes
const (
	ModeRaw      = "raw"
	ModeSemantic = "semantic"
)

// Config holds the complete configuration
type Config struct {
	Source      SourceConfig
	Destination DestinationConfig
	Forwarder   ForwarderConfig
	Redis       RedisConfig
	SQS         SQSConfig
	AMQP        AMQPConfig
	Kafka       KafkaConfig
	MQTT        MQTTConfig
}

// SourceConfig describes the entity messages are pulled from
type SourceConfig struct {
	Kind        string
	Queue       string // stream name, queue URL or queue name depending on Kind
	BatchSize   int
	Prefetch    int // AMQP QoS prefetch count; 0 means broker default
	PollTimeout time.Duration
}

// DestinationConfig describes where messages are relayed to
type DestinationConfig struct {
	Mode           string
	Kind           string
	Queue          string // stream, queue, topic or endpoint address depending on Kind
	TypeHeader     string // semantic mode: header carrying the message type
	IgnoredHeaders []string
}

// ForwarderConfig holds worker pool settings
type ForwarderConfig struct {
	Concurrency      int
	ErrorBackoff     time.Duration // first delay once BackoffAfter consecutive failures happened
	MaxErrorBackoff  time.Duration
	BackoffAfter     int
	OperationTimeout time.Duration // bound for forward and acknowledge of one batch
	ShutdownTimeout  time.Duration
	MaxInFlight      int // semantic mode: concurrent dispatches per batch, 0 means unlimited
}

// RedisConfig holds Redis stream configuration
type RedisConfig struct {
	Address             string
	Consumer            string // prefix; each worker appends its own suffix
	ClaimIdle           time.Duration
	ConsumerIdleTimeout time.Duration
	CleanupInterval     time.Duration
	DialTimeout         time.Duration
	ReadTimeout         time.Duration
	WriteTimeout        time.Duration
	PingTimeout         time.Duration
	MaxLen              int64 // destination stream approximate cap, 0 disables trimming
}

// SQSConfig holds AWS SQS configuration
type SQSConfig struct {
	Region            string
	Endpoint          string // optional override, e.g. for localstack
	VisibilityTimeout int32
}

// AMQPConfig holds RabbitMQ configuration
type AMQPConfig struct {
	URL         string
	ConsumerTag string
	Exchange    string
}

// KafkaConfig holds Kafka writer configuration
type KafkaConfig struct {
	Brokers      []string
	BatchTimeout time.Duration
}

// MQTTConfig holds MQTT client configuration
type MQTTConfig struct {
	Broker               string
	ClientID             string
	QoS                  byte
	ConnectTimeout       time.Duration
	WriteTimeout         time.Duration
	PoolSize             int
	MaxReconnectInterval time.Duration
	DisconnectTimeout    uint // Milliseconds for graceful disconnect
	// TLS Configuration
	TLSEnabled      bool
	CACert          string
	ClientCert      string
	ClientKey       string
	InsecureSkip    bool
	UseCertCNPrefix bool // If true, prefix the destination topic with cert CN for ACL constraints
}
