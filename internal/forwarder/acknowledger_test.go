package forwarder

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibs-source/queue-forwarder/internal/message"
)

func TestAcknowledger_EmptyDoesNotCallReceiver(t *testing.T) {
	rcv := &fakeReceiver{}
	ack := NewAcknowledger(rcv)

	require.NoError(t, ack.Complete(context.Background(), nil))
	require.NoError(t, ack.Complete(context.Background(), []message.Token{}))
	assert.Empty(t, rcv.completions())
}

func TestAcknowledger_Delegates(t *testing.T) {
	rcv := &fakeReceiver{}
	ack := NewAcknowledger(rcv)
	tokens := []message.Token{{ID: "a"}, {ID: "b"}}

	require.NoError(t, ack.Complete(context.Background(), tokens))
	assert.Equal(t, [][]message.Token{tokens}, rcv.completions())
}
