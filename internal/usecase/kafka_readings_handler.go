package usecase

import (
	"context"
	"encoding/json"
	"time"

	"GridCast/internal/domain/models"
	domrepo "GridCast/internal/domain/repository"
	pkgkafka "GridCast/pkg/kafka"
)

// KafkaReadingsHandler consumes reading messages and writes to storage.
type KafkaReadingsHandler struct {
	topic   string
	storage domrepo.ObservationStore
	metrics domrepo.Metrics
}

func NewKafkaReadingsHandler(topic string, storage domrepo.ObservationStore, metrics domrepo.Metrics) *KafkaReadingsHandler {
	return &KafkaReadingsHandler{topic: topic, storage: storage, metrics: metrics}
}

func (h *KafkaReadingsHandler) Topic() string { return h.topic }

func (h *KafkaReadingsHandler) Handle(ctx context.Context, b []byte) error {
	var r models.Reading
	if err := json.Unmarshal(b, &r); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}

	// E2E latency from event time to now (approx)
	h.metrics.RecordLatency("ingest_e2e_seconds", time.Since(r.Timestamp).Seconds())

	start := time.Now()
	err := h.storage.Store(ctx, r.Observation())
	h.metrics.RecordLatency("ch_insert_seconds", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	h.metrics.RecordReadingIngested("clickhouse", r.Meter)
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaReadingsHandler)(nil)
