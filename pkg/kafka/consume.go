package kafka

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/IBM/sarama"
)

// ConsumeMode picks which end of each partition is read.
type ConsumeMode string

const (
	ConsumeLatest   ConsumeMode = "latest"
	ConsumeEarliest ConsumeMode = "earliest"
)

// ConsumeRequest asks for up to MaxMessages records of Topic.
type ConsumeRequest struct {
	Topic       string
	MaxMessages int
	// MaxTimeout bounds polling; the client's MaxTimeout applies when zero.
	MaxTimeout time.Duration
	Mode       ConsumeMode
}

// Message is one consumed record.
type Message struct {
	Topic     string            `json:"topic"`
	Partition int32             `json:"partition"`
	Offset    int64             `json:"offset"`
	Timestamp time.Time         `json:"timestamp"`
	Key       []byte            `json:"key"`
	Value     []byte            `json:"value"`
	Headers   map[string][]byte `json:"headers,omitempty"`
}

type partitionRange struct {
	partition int32
	start     int64
	count     int64
}

// Consume reads without joining a consumer group. In latest mode it
// returns the MaxMessages most recent records across all partitions, in
// earliest mode the MaxMessages oldest. Results are ordered by timestamp.
// Reaching MaxTimeout ends polling early with whatever was read.
func (c *Client) Consume(ctx context.Context, req ConsumeRequest) ([]Message, error) {
	if req.Topic == "" {
		return nil, ErrNoTopic
	}
	if req.MaxMessages <= 0 {
		return []Message{}, nil
	}
	if req.Mode == "" {
		req.Mode = ConsumeLatest
	}
	timeout := req.MaxTimeout
	if timeout <= 0 {
		timeout = c.cfg.MaxTimeout
	}

	cluster, err := c.factory.Cluster(c.cfg.Brokers, c.sarama)
	if err != nil {
		return nil, fmt.Errorf("kafka: connect: %w", err)
	}
	defer cluster.Close()

	ranges, err := partitionRanges(cluster, req)
	if err != nil {
		return nil, err
	}

	consumer, err := cluster.Consumer()
	if err != nil {
		return nil, fmt.Errorf("kafka: open consumer: %w", err)
	}
	defer consumer.Close()

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	var out []Message
	for _, r := range ranges {
		if r.count == 0 {
			continue
		}
		pc, err := consumer.ConsumePartition(req.Topic, r.partition, r.start)
		if err != nil {
			return nil, fmt.Errorf("kafka: consume %s/%d: %w", req.Topic, r.partition, err)
		}
		msgs, done, err := drain(ctx, pc, r.count, deadline.C)
		pc.Close()
		out = append(out, msgs...)
		if err != nil {
			return nil, err
		}
		if done {
			break
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.Before(out[j].Timestamp)
		}
		if out[i].Partition != out[j].Partition {
			return out[i].Partition < out[j].Partition
		}
		return out[i].Offset < out[j].Offset
	})
	if len(out) > req.MaxMessages {
		if req.Mode == ConsumeEarliest {
			out = out[:req.MaxMessages]
		} else {
			out = out[len(out)-req.MaxMessages:]
		}
	}
	if out == nil {
		out = []Message{}
	}
	return out, nil
}

func partitionRanges(cluster Cluster, req ConsumeRequest) ([]partitionRange, error) {
	topics, err := cluster.Topics()
	if err != nil {
		return nil, fmt.Errorf("kafka: list topics: %w", err)
	}
	known := false
	for _, topic := range topics {
		if topic == req.Topic {
			known = true
			break
		}
	}
	if !known {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTopic, req.Topic)
	}

	partitions, err := cluster.Partitions(req.Topic)
	if err != nil {
		return nil, fmt.Errorf("kafka: partitions of %s: %w", req.Topic, err)
	}
	sort.Slice(partitions, func(i, j int) bool { return partitions[i] < partitions[j] })

	limit := int64(req.MaxMessages)
	ranges := make([]partitionRange, 0, len(partitions))
	for _, p := range partitions {
		oldest, err := cluster.GetOffset(req.Topic, p, sarama.OffsetOldest)
		if err != nil {
			return nil, fmt.Errorf("kafka: oldest offset of %s/%d: %w", req.Topic, p, err)
		}
		newest, err := cluster.GetOffset(req.Topic, p, sarama.OffsetNewest)
		if err != nil {
			return nil, fmt.Errorf("kafka: newest offset of %s/%d: %w", req.Topic, p, err)
		}
		available := newest - oldest
		if available <= 0 {
			ranges = append(ranges, partitionRange{partition: p})
			continue
		}
		count := min(available, limit)
		start := oldest
		if req.Mode != ConsumeEarliest {
			start = newest - count
		}
		ranges = append(ranges, partitionRange{partition: p, start: start, count: count})
	}
	return ranges, nil
}

// drain reads count messages from pc. done reports that the deadline fired.
func drain(ctx context.Context, pc sarama.PartitionConsumer, count int64, deadline <-chan time.Time) ([]Message, bool, error) {
	out := make([]Message, 0, count)
	for int64(len(out)) < count {
		select {
		case <-ctx.Done():
			return out, true, ctx.Err()
		case <-deadline:
			return out, true, nil
		case err, ok := <-pc.Errors():
			if !ok {
				return out, false, nil
			}
			return out, false, fmt.Errorf("kafka: consume: %w", err)
		case msg, ok := <-pc.Messages():
			if !ok {
				return out, false, nil
			}
			out = append(out, toMessage(msg))
		}
	}
	return out, false, nil
}

func toMessage(msg *sarama.ConsumerMessage) Message {
	out := Message{
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
		Timestamp: msg.Timestamp,
		Key:       msg.Key,
		Value:     msg.Value,
	}
	if len(msg.Headers) > 0 {
		out.Headers = make(map[string][]byte, len(msg.Headers))
		for _, h := range msg.Headers {
			if h == nil {
				continue
			}
			out.Headers[string(h.Key)] = h.Value
		}
	}
	return out
}
