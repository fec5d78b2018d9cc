package kafka

import (
	"context"
	"fmt"

	"github.com/ecociel/taskview/lib/domain"
	"github.com/twmb/franz-go/pkg/kgo"
)

// Producer defines the interface for producing messages to Kafka
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

type Publisher struct {
	client Producer
	topic  string
}

func NewPublisher(client *kgo.Client, topic string) *Publisher {
	return &Publisher{client: client, topic: topic}
}

func (p *Publisher) PublishSync(ctx context.Context, ev domain.Event) error {
	record, err := eventToRec(ev)
	if err != nil {
		return err
	}
	record.Topic = p.topic
	if err := p.client.ProduceSync(ctx, &record).FirstErr(); err != nil {
		return fmt.Errorf("publish event %s for %s: %w", ev.Type, ev.TaskID, err)
	}
	return nil
}
