package forward

import (
	"context"
	"sync"

	"github.com/ibs-source/queue-forwarder/internal/message"
)

type fakeSender struct {
	mu      sync.Mutex
	batches [][]message.Outbound
	err     error
}

func (f *fakeSender) SendBatch(_ context.Context, msgs []message.Outbound) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, msgs)
	return f.err
}

type sentCall struct {
	payload any
	opts    SendOptions
}

type fakeEndpoint struct {
	mu    sync.Mutex
	calls []sentCall
	send  func(payload any, opts SendOptions) error
}

func (f *fakeEndpoint) Send(_ context.Context, payload any, opts SendOptions) error {
	f.mu.Lock()
	f.calls = append(f.calls, sentCall{payload: payload, opts: opts})
	f.mu.Unlock()
	if f.send != nil {
		return f.send(payload, opts)
	}
	return nil
}

func inbound(id string, body string, headers map[string]string) message.Inbound {
	return message.Inbound{
		Token:       message.Token{ID: "tok-" + id, Handle: "h-" + id},
		MessageID:   id,
		ContentType: "application/json",
		Body:        []byte(body),
		Headers:     headers,
	}
}
