package message

import (
	"testing"
)

func TestInboundClone(t *testing.T) {
	in := Inbound{
		Token:       Token{ID: "1234567890-0", Handle: "orders"},
		MessageID:   "msg-1",
		ContentType: "application/json",
		Body:        []byte(`{"id":1}`),
		Headers:     map[string]string{"tenant": "a", "trace": "xyz"},
	}

	out := in.Clone()

	if out.MessageID != "msg-1" {
		t.Errorf("expected MessageID msg-1, got %s", out.MessageID)
	}
	if out.ContentType != "application/json" {
		t.Errorf("expected ContentType application/json, got %s", out.ContentType)
	}
	if string(out.Body) != `{"id":1}` {
		t.Errorf("unexpected body %s", string(out.Body))
	}
	if len(out.Headers) != 2 || out.Headers["tenant"] != "a" || out.Headers["trace"] != "xyz" {
		t.Errorf("headers not copied: %v", out.Headers)
	}

	// Mutating the clone must not touch the inbound message
	out.Body[0] = '['
	out.Headers["tenant"] = "b"
	if in.Body[0] != '{' {
		t.Error("clone shares body memory with inbound message")
	}
	if in.Headers["tenant"] != "a" {
		t.Error("clone shares header map with inbound message")
	}
}

func TestInboundClone_NilBodyAndHeaders(t *testing.T) {
	out := Inbound{MessageID: "empty"}.Clone()

	if out.Body != nil {
		t.Errorf("expected nil body, got %v", out.Body)
	}
	if out.Headers == nil {
		t.Error("expected non-nil header map")
	}
}

func TestBatch(t *testing.T) {
	batch := Batch{
		Items: []Inbound{
			{Token: Token{ID: "msg1"}, Body: []byte("data1")},
			{Token: Token{ID: "msg2"}, Body: []byte("data2")},
		},
	}

	if batch.Len() != 2 {
		t.Errorf("expected 2 items, got %d", batch.Len())
	}

	tokens := batch.Tokens()
	if len(tokens) != 2 || tokens[0].ID != "msg1" || tokens[1].ID != "msg2" {
		t.Errorf("unexpected tokens %v", tokens)
	}
}

func TestBatch_Empty(t *testing.T) {
	var batch Batch
	if batch.Len() != 0 {
		t.Errorf("expected empty batch, got %d", batch.Len())
	}
	if tokens := batch.Tokens(); tokens != nil {
		t.Errorf("expected nil tokens, got %v", tokens)
	}
}
