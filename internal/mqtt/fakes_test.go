package mqtt

import (
	"context"
	"io"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/ibs-source/queue-forwarder/internal/config"
	"github.com/ibs-source/queue-forwarder/internal/log"
)

type fakeToken struct {
	done chan struct{}
	err  error
}

func completedToken(err error) *fakeToken {
	t := &fakeToken{done: make(chan struct{}), err: err}
	close(t.done)
	return t
}

func pendingToken() *fakeToken {
	return &fakeToken{done: make(chan struct{})}
}

func (t *fakeToken) Wait() bool {
	<-t.done
	return true
}

func (t *fakeToken) WaitTimeout(d time.Duration) bool {
	select {
	case <-t.done:
		return true
	case <-time.After(d):
		return false
	}
}

func (t *fakeToken) Done() <-chan struct{} { return t.done }
func (t *fakeToken) Error() error          { return t.err }

type published struct {
	topic   string
	qos     byte
	payload []byte
}

type fakeConn struct {
	mu           sync.Mutex
	published    []published
	token        func() mqtt.Token
	connected    bool
	disconnected bool
}

func (c *fakeConn) Publish(topic string, qos byte, _ bool, payload interface{}) mqtt.Token {
	c.mu.Lock()
	c.published = append(c.published, published{topic: topic, qos: qos, payload: payload.([]byte)})
	c.mu.Unlock()
	if c.token != nil {
		return c.token()
	}
	return completedToken(nil)
}

func (c *fakeConn) IsConnected() bool { return c.connected }

func (c *fakeConn) Disconnect(uint) {
	c.disconnected = true
	c.connected = false
}

func (c *fakeConn) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.published)
}

func testMQTTConfig() *config.MQTTConfig {
	return &config.MQTTConfig{
		Broker:            "tcp://localhost:1883",
		ClientID:          "test",
		QoS:               1,
		ConnectTimeout:    time.Second,
		WriteTimeout:      200 * time.Millisecond,
		PoolSize:          2,
		DisconnectTimeout: 10,
	}
}

func newFakeClient(c *fakeConn) *Client {
	return newClient(c, testMQTTConfig(), log.NewWithOutput(io.Discard))
}

type fakePublisher struct {
	mu     sync.Mutex
	topics []string
	bodies [][]byte
	err    error
	closed bool
}

func (p *fakePublisher) Publish(_ context.Context, topic string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	p.bodies = append(p.bodies, payload)
	return p.err
}

func (p *fakePublisher) Close() error {
	p.closed = true
	return nil
}
