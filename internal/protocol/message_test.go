package protocol

import (
	"testing"

	"github.com/komurugov/publish-subscribe-assignment/internal/frame"
)

func bodyOf(t *testing.T, frameBytes []byte) []byte {
	t.Helper()
	if len(frameBytes) < frame.HeaderLen {
		t.Fatalf("frame too short: %d", len(frameBytes))
	}
	return frameBytes[frame.HeaderLen:]
}

func TestEncodeDecodePublishRoundTrip(t *testing.T) {
	cases := []struct{ topic, data string }{
		{"weather", "sunny"},
		{"chat", ""},
		{"a", "b c d e"},
	}
	for _, c := range cases {
		f, err := EncodePublish(c.topic, c.data)
		if err != nil {
			t.Fatalf("EncodePublish(%q,%q): %v", c.topic, c.data, err)
		}
		msg := DecodeClient(bodyOf(t, f))
		if msg.Kind != KindPublish || msg.Topic != c.topic || msg.Data != c.data {
			t.Fatalf("round trip mismatch: got %+v want topic=%q data=%q", msg, c.topic, c.data)
		}
	}
}

func TestEncodeSubscribeUnsubscribe(t *testing.T) {
	f, err := EncodeSubscribe("news")
	if err != nil {
		t.Fatalf("EncodeSubscribe: %v", err)
	}
	msg := DecodeClient(bodyOf(t, f))
	if msg.Kind != KindSubscribe || msg.Topic != "news" {
		t.Fatalf("got %+v", msg)
	}

	f, err = EncodeUnsubscribe("news")
	if err != nil {
		t.Fatalf("EncodeUnsubscribe: %v", err)
	}
	msg = DecodeClient(bodyOf(t, f))
	if msg.Kind != KindUnsubscribe || msg.Topic != "news" {
		t.Fatalf("got %+v", msg)
	}
}

func TestEncodeRejectsSpaceInTopic(t *testing.T) {
	if _, err := EncodeSubscribe("has space"); err != ErrTopicHasSpace {
		t.Fatalf("want ErrTopicHasSpace, got %v", err)
	}
	if _, err := EncodePublish("has space", "data"); err != ErrTopicHasSpace {
		t.Fatalf("want ErrTopicHasSpace, got %v", err)
	}
}

func TestEncodeRejectsEmptyTopic(t *testing.T) {
	if _, err := EncodeSubscribe(""); err != ErrEmptyTopic {
		t.Fatalf("want ErrEmptyTopic, got %v", err)
	}
}

func TestEncodeOversizedPublish(t *testing.T) {
	data := make([]byte, frame.MaxBody)
	if _, err := EncodePublish("t", string(data)); err != frame.ErrOversizedBody {
		t.Fatalf("want ErrOversizedBody, got %v", err)
	}
}

func TestDecodeClientUnknown(t *testing.T) {
	cases := [][]byte{
		nil,
		{},
		[]byte("x"),
		[]byte("ptopicwithoutspace"),
	}
	for _, body := range cases {
		msg := DecodeClient(body)
		if msg.Kind != KindUnknown {
			t.Fatalf("DecodeClient(%q): want KindUnknown, got %+v", body, msg)
		}
	}
}

func TestDecodeDeliverRoundTrip(t *testing.T) {
	f, err := EncodeDeliver("weather", "sunny")
	if err != nil {
		t.Fatalf("EncodeDeliver: %v", err)
	}
	topic, data, err := DecodeDeliver(bodyOf(t, f))
	if err != nil {
		t.Fatalf("DecodeDeliver: %v", err)
	}
	if topic != "weather" || data != "sunny" {
		t.Fatalf("got topic=%q data=%q", topic, data)
	}
}

func TestDecodeDeliverMissingSeparator(t *testing.T) {
	if _, _, err := DecodeDeliver([]byte("nospacehere")); err != ErrMalformedDelivery {
		t.Fatalf("want ErrMalformedDelivery, got %v", err)
	}
}
