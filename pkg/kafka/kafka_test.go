package kafka

import (
	"errors"
	"testing"
)

type sample struct {
	Words int `json:"words"`
}

func TestDecodeJSON(t *testing.T) {
	got, err := DecodeJSON[sample]([]byte(`{"words":7}`))
	if err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
	if got.Words != 7 {
		t.Errorf("Words = %d, want 7", got.Words)
	}

	if _, err := DecodeJSON[sample]([]byte(`not json`)); !errors.Is(err, ErrPoison) {
		t.Fatalf("err = %v, want ErrPoison", err)
	}
}

func TestEncodeSetsKeyAndValue(t *testing.T) {
	msg, err := encode(Event{Key: "solve", Value: sample{Words: 3}})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if string(msg.Key) != "solve" || string(msg.Value) != `{"words":3}` {
		t.Errorf("unexpected message key=%q value=%q", msg.Key, msg.Value)
	}
	if msg.Time.IsZero() {
		t.Error("message time not set")
	}

	if _, err := encode(Event{Key: "bad", Value: make(chan int)}); err == nil {
		t.Error("expected an error for an unencodable value")
	}
}
