package repository

import (
	"context"
	"fmt"

	"Cephu/internal/domain/models"
	domrepo "Cephu/internal/domain/repository"
)

// messagePublisher is satisfied by *kafka.Producer.
type messagePublisher interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
	Close() error
}

// KafkaSnapshotPublisher emits snapshots as JSON keyed by symbol.
type KafkaSnapshotPublisher struct {
	producer messagePublisher
	topic    string
}

func NewKafkaSnapshotPublisher(producer messagePublisher, topic string) *KafkaSnapshotPublisher {
	return &KafkaSnapshotPublisher{producer: producer, topic: topic}
}

var _ domrepo.SnapshotSink = (*KafkaSnapshotPublisher)(nil)

func (p *KafkaSnapshotPublisher) Write(ctx context.Context, snap *models.Snapshot) error {
	if err := p.producer.Publish(ctx, p.topic, []byte(snap.Symbol), snap); err != nil {
		return fmt.Errorf("publish snapshot: %w", err)
	}
	return nil
}

func (p *KafkaSnapshotPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
