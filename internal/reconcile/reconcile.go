package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bitelog/bite/internal/config"
	"github.com/bitelog/bite/internal/metrics"
	json "github.com/goccy/go-json"
	"github.com/segmentio/kafka-go"
)

// Orphan is a stored photo that no record points to.
type Orphan struct {
	UserID    string    `json:"user_id"`
	Path      string    `json:"path"`
	PublicURL string    `json:"public_url"`
	Reason    string    `json:"reason"`
	RequestID string    `json:"request_id,omitempty"`
	At        time.Time `json:"at"`
}

// Reporter hands orphaned uploads to whatever cleans them up.
type Reporter interface {
	ReportOrphan(ctx context.Context, o Orphan) error
	Close() error
}

// New returns a Kafka reporter when brokers are configured, otherwise a log reporter.
func New(cfg *config.Config) Reporter {
	if len(cfg.KafkaBrokers) == 0 {
		return LogReporter{}
	}
	slog.Info("orphaned uploads go to kafka", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaOrphanTopic)
	return NewKafkaReporter(&kafka.Writer{
		Addr:         kafka.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaOrphanTopic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	})
}

// LogReporter only logs; cleanup is left to an operator.
type LogReporter struct{}

func (LogReporter) ReportOrphan(_ context.Context, o Orphan) error {
	metrics.OrphanedUploads.Inc()
	slog.Warn("orphaned upload",
		"user_id", o.UserID,
		"path", o.Path,
		"reason", o.Reason,
		"request_id", o.RequestID,
	)
	return nil
}

func (LogReporter) Close() error { return nil }

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaReporter publishes one message per orphan, keyed by user id.
type KafkaReporter struct {
	writer  messageWriter
	timeout time.Duration
}

func NewKafkaReporter(w messageWriter) *KafkaReporter {
	return &KafkaReporter{writer: w, timeout: 5 * time.Second}
}

func (r *KafkaReporter) ReportOrphan(ctx context.Context, o Orphan) error {
	metrics.OrphanedUploads.Inc()

	value, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("failed to encode orphan: %w", err)
	}

	// The report must outlive a client that already hung up.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()

	err = r.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(o.UserID),
		Value: value,
		Time:  o.At,
	})
	if err != nil {
		slog.Error("failed to publish orphaned upload", "error", err, "path", o.Path)
		return fmt.Errorf("failed to publish orphan: %w", err)
	}
	return nil
}

func (r *KafkaReporter) Close() error {
	return r.writer.Close()
}
