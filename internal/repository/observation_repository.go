package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"GridCast/internal/domain/models"
	"GridCast/internal/domain/repository"
	pkgkafka "GridCast/pkg/kafka"
)

// ClickHouseObservationStore implements ObservationStore for ClickHouse.
type ClickHouseObservationStore struct {
	db    *sql.DB
	table string
	meter string
}

// NewClickHouseObservationStore creates ClickHouse observation storage.
func NewClickHouseObservationStore(db *sql.DB, table, meter string) repository.ObservationStore {
	return &ClickHouseObservationStore{db: db, table: table, meter: meter}
}

func (s *ClickHouseObservationStore) Init(ctx context.Context) error {
	return nil // Schema init in pkg
}

func (s *ClickHouseObservationStore) Store(ctx context.Context, o *models.Observation) error {
	q := fmt.Sprintf("INSERT INTO %s (ts, meter, phase2_current, phase2_voltage, phase3_frequency, phase3_pf, phase3_power, phase3_voltage) VALUES (?, ?, ?, ?, ?, ?, ?, ?)", s.table)
	_, err := s.db.ExecContext(ctx, q,
		o.Timestamp,
		s.meter,
		o.Phase2Current,
		o.Phase2Voltage,
		o.Phase3Frequency,
		o.Phase3PF,
		o.Phase3Power,
		o.Phase3Voltage,
	)
	return err
}

func (s *ClickHouseObservationStore) StoreBatch(ctx context.Context, obs []*models.Observation) error {
	if len(obs) == 0 {
		return nil
	}
	// Batch insert using VALUES multi-row to reduce round-trips.
	// Chunk size tuned to 2000 rows per batch.
	const chunkSize = 2000
	for start := 0; start < len(obs); start += chunkSize {
		end := start + chunkSize
		if end > len(obs) {
			end = len(obs)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*8)
		for _, o := range obs[start:end] {
			if o == nil || o.Timestamp.IsZero() {
				continue
			}
			values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?)")
			args = append(args,
				o.Timestamp,
				s.meter,
				o.Phase2Current,
				o.Phase2Voltage,
				o.Phase3Frequency,
				o.Phase3PF,
				o.Phase3Power,
				o.Phase3Voltage,
			)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (ts, meter, phase2_current, phase2_voltage, phase3_frequency, phase3_pf, phase3_power, phase3_voltage) VALUES %s", s.table, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return err
		}
	}
	return nil
}

// LatestN returns the most recent n rows in ascending time order.
func (s *ClickHouseObservationStore) LatestN(ctx context.Context, meter string, n int) ([]*models.Observation, error) {
	q := fmt.Sprintf("SELECT ts, phase2_current, phase2_voltage, phase3_frequency, phase3_pf, phase3_power, phase3_voltage FROM %s WHERE meter = ? ORDER BY ts DESC LIMIT ?", s.table)
	rows, err := s.db.QueryContext(ctx, q, meter, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	obs, err := scanObservations(rows)
	if err != nil {
		return nil, err
	}

	// Query is newest-first for the LIMIT; callers want oldest-first.
	for i, j := 0, len(obs)-1; i < j; i, j = i+1, j-1 {
		obs[i], obs[j] = obs[j], obs[i]
	}
	return obs, nil
}

func (s *ClickHouseObservationStore) Range(ctx context.Context, meter string, from, to time.Time, limit int) ([]*models.Observation, error) {
	q := fmt.Sprintf("SELECT ts, phase2_current, phase2_voltage, phase3_frequency, phase3_pf, phase3_power, phase3_voltage FROM %s WHERE meter = ? AND ts >= ? AND ts <= ? ORDER BY ts ASC LIMIT ?", s.table)
	rows, err := s.db.QueryContext(ctx, q, meter, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanObservations(rows)
}

func scanObservations(rows *sql.Rows) ([]*models.Observation, error) {
	var obs []*models.Observation
	for rows.Next() {
		var o models.Observation
		if err := rows.Scan(&o.Timestamp, &o.Phase2Current, &o.Phase2Voltage, &o.Phase3Frequency, &o.Phase3PF, &o.Phase3Power, &o.Phase3Voltage); err != nil {
			return nil, err
		}
		obs = append(obs, &o)
	}
	return obs, rows.Err()
}

func (s *ClickHouseObservationStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseObservationStore) Close() error {
	return nil // Managed by pkg
}

// KafkaPublisher implements Publisher for Kafka.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaPublisher creates Kafka publisher.
func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) repository.Publisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, r *models.Reading) error {
	return p.producer.Publish(ctx, p.topic, []byte(r.Meter), r)
}

func (p *KafkaPublisher) PublishBatch(ctx context.Context, readings []*models.Reading) error {
	if len(readings) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(readings))
	for i, r := range readings {
		msgs[i] = pkgkafka.Message{
			Key:   []byte(r.Meter),
			Value: r,
		}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
