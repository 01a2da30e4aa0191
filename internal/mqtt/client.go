// Package mqtt provides the MQTT client, connection pool and the semantic endpoint publishing over them.
package mqtt

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/ibs-source/queue-forwarder/internal/config"
	"github.com/ibs-source/queue-forwarder/internal/log"
)

// conn is the subset of the paho client used for publishing
type conn interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	IsConnected() bool
	Disconnect(quiesce uint)
}

// Client publishes to arbitrary topics over one broker connection
type Client struct {
	conn              conn
	qos               byte
	writeTimeout      time.Duration
	disconnectTimeout uint
	log               *log.Logger
}

// NewClient creates a new MQTT client and connects it
func NewClient(cfg *config.MQTTConfig, logger *log.Logger) (*Client, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetConnectTimeout(cfg.ConnectTimeout)
	opts.SetWriteTimeout(cfg.WriteTimeout)
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(cfg.MaxReconnectInterval)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetOrderMatters(false)
	// Sessions must survive reconnects so QoS 1/2 publishes are resumed
	opts.SetCleanSession(false)

	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		if err != nil {
			logger.Error("MQTT connection lost: %v", err)
		}
	})
	opts.SetReconnectingHandler(func(_ mqtt.Client, _ *mqtt.ClientOptions) {
		logger.Info("MQTT reconnecting...")
	})
	opts.SetOnConnectHandler(func(_ mqtt.Client) {
		logger.Debug("MQTT client %s connected", cfg.ClientID)
	})

	if cfg.TLSEnabled {
		tlsConfig, err := newTLSConfig(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create TLS config: %w", err)
		}
		opts.SetTLSConfig(tlsConfig)
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(cfg.ConnectTimeout) {
		return nil, fmt.Errorf("mqtt connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("failed to connect to MQTT: %w", err)
	}

	return newClient(client, cfg, logger), nil
}

func newClient(c conn, cfg *config.MQTTConfig, logger *log.Logger) *Client {
	return &Client{
		conn:              c,
		qos:               cfg.QoS,
		writeTimeout:      cfg.WriteTimeout,
		disconnectTimeout: cfg.DisconnectTimeout,
		log:               logger,
	}
}

// newTLSConfig creates a TLS configuration from MQTT config
func newTLSConfig(cfg *config.MQTTConfig) (*tls.Config, error) {
	tlsConfig := &tls.Config{
		InsecureSkipVerify: cfg.InsecureSkip, // #nosec G402 - configurable for testing environments
		MinVersion:         tls.VersionTLS12,
	}

	if cfg.CACert != "" {
		caCert, err := os.ReadFile(cfg.CACert)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA cert: %w", err)
		}
		caCertPool := x509.NewCertPool()
		if !caCertPool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("failed to parse CA cert")
		}
		tlsConfig.RootCAs = caCertPool
	}

	if cfg.ClientCert != "" && cfg.ClientKey != "" {
		cert, err := tls.LoadX509KeyPair(cfg.ClientCert, cfg.ClientKey)
		if err != nil {
			return nil, fmt.Errorf("failed to load client cert/key: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	return tlsConfig, nil
}

// Publish sends payload to topic and waits until the broker confirmed it
// according to the configured QoS
func (c *Client) Publish(ctx context.Context, topic string, payload []byte) error {
	token := c.conn.Publish(topic, c.qos, false, payload)

	// A non-positive write timeout leaves the wait bounded by ctx only
	var timeout <-chan time.Time
	if c.writeTimeout > 0 {
		timer := time.NewTimer(c.writeTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			return fmt.Errorf("mqtt publish to %s failed: %w", topic, err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timeout:
		return fmt.Errorf("mqtt publish to %s timed out after %s", topic, c.writeTimeout)
	}
}

// Close disconnects from the MQTT broker
func (c *Client) Close() error {
	if c.conn != nil && c.conn.IsConnected() {
		c.conn.Disconnect(c.disconnectTimeout)
	}
	return nil
}
