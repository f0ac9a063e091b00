package chat

import (
	"errors"
	"reflect"
	"testing"
)

func streamOf(frags []string, err error) (<-chan string, <-chan error) {
	fc := make(chan string, len(frags))
	ec := make(chan error, 1)
	for _, f := range frags {
		fc <- f
	}
	if err != nil {
		ec <- err
	}
	close(fc)
	close(ec)
	return fc, ec
}

func TestConsume_AccumulatesWholeSoFar(t *testing.T) {
	fc, ec := streamOf([]string{"Hel", "lo", " world"}, nil)
	var seen []string
	full, err := Consume(fc, ec, func(acc string) { seen = append(seen, acc) })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if full != "Hello world" {
		t.Fatalf("final mismatch: %q", full)
	}
	// Observer sees the full accumulated text after every fragment, in
	// fragment-arrival order.
	want := []string{"Hel", "Hello", "Hello world"}
	if !reflect.DeepEqual(seen, want) {
		t.Fatalf("observer calls mismatch: got %#v want %#v", seen, want)
	}
}

func TestConsume_PropagatesStreamError(t *testing.T) {
	boom := errors.New("boom")
	fc, ec := streamOf([]string{"partial"}, boom)
	full, err := Consume(fc, ec, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if full != "partial" {
		t.Fatalf("expected accumulated text returned alongside error, got %q", full)
	}
}

func TestConsume_EmptyStream(t *testing.T) {
	fc, ec := streamOf(nil, nil)
	full, err := Consume(fc, ec, func(string) { t.Fatal("observer must not fire") })
	if err != nil || full != "" {
		t.Fatalf("got %q, %v", full, err)
	}
}
