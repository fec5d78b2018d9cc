package kafkaclient

import (
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

// NewConsumer returns a client reading topic from its first offset. It
// joins no group and commits nothing, so every start replays the full
// stream.
func NewConsumer(hostPorts []string, topic string) (*kgo.Client, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(hostPorts...),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
		kgo.AllowAutoTopicCreation(),
		kgo.FetchMaxWait(500*time.Millisecond),
	)
	if err != nil {
		return nil, fmt.Errorf("create events consumer: %w", err)
	}
	return client, nil
}

func NewProducer(hostPorts []string, topic string) (*kgo.Client, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(hostPorts...),
		kgo.AllowAutoTopicCreation(),
		kgo.DefaultProduceTopic(topic),
	)
	if err != nil {
		return nil, fmt.Errorf("create events producer: %w", err)
	}
	return client, nil
}
