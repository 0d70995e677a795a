package reconcile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bitelog/bite/internal/config"
	json "github.com/goccy/go-json"
	"github.com/segmentio/kafka-go"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	w.msgs = append(w.msgs, msgs...)
	return w.err
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaReporterPublishes(t *testing.T) {
	w := &fakeWriter{}
	r := NewKafkaReporter(w)

	at := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	err := r.ReportOrphan(context.Background(), Orphan{
		UserID:    "user-1",
		Path:      "user-1/photo-1.jpg",
		PublicURL: "https://cdn/user-1/photo-1.jpg",
		Reason:    "insert failed",
		At:        at,
	})
	if err != nil {
		t.Fatalf("ReportOrphan() error = %v", err)
	}

	if len(w.msgs) != 1 {
		t.Fatalf("messages = %d, want 1", len(w.msgs))
	}
	msg := w.msgs[0]
	if string(msg.Key) != "user-1" {
		t.Errorf("Key = %q", msg.Key)
	}
	var got Orphan
	if err := json.Unmarshal(msg.Value, &got); err != nil {
		t.Fatalf("Value is not JSON: %v", err)
	}
	if got.Path != "user-1/photo-1.jpg" || !got.At.Equal(at) {
		t.Errorf("decoded orphan = %+v", got)
	}

	if err := r.Close(); err != nil || !w.closed {
		t.Errorf("Close() = %v, closed = %v", err, w.closed)
	}
}

func TestKafkaReporterSurvivesCancelledRequest(t *testing.T) {
	w := &fakeWriter{}
	r := NewKafkaReporter(w)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := r.ReportOrphan(ctx, Orphan{UserID: "u", Path: "u/p.jpg"}); err != nil {
		t.Fatalf("ReportOrphan() error = %v", err)
	}
	if len(w.msgs) != 1 {
		t.Errorf("messages = %d, want 1", len(w.msgs))
	}
}

func TestKafkaReporterError(t *testing.T) {
	r := NewKafkaReporter(&fakeWriter{err: errors.New("broker down")})
	if err := r.ReportOrphan(context.Background(), Orphan{UserID: "u"}); err == nil {
		t.Error("ReportOrphan() expected error")
	}
}

func TestNewSelectsReporter(t *testing.T) {
	if _, ok := New(&config.Config{}).(LogReporter); !ok {
		t.Error("New() without brokers is not a LogReporter")
	}

	r := New(&config.Config{KafkaBrokers: []string{"localhost:9092"}, KafkaOrphanTopic: "orphans"})
	if _, ok := r.(*KafkaReporter); !ok {
		t.Errorf("New() with brokers = %T, want *KafkaReporter", r)
	}
	_ = r.Close()
}
