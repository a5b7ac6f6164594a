package kafka

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/IBM/sarama"
	"github.com/cenkalti/backoff/v4"
)

// Cluster is the subset of sarama.Client the package needs, plus a way to
// open a consumer on the same connection.
type Cluster interface {
	Topics() ([]string, error)
	Partitions(topic string) ([]int32, error)
	GetOffset(topic string, partition int32, time int64) (int64, error)
	Consumer() (sarama.Consumer, error)
	Close() error
}

// Factory opens connections. The default dials real brokers; tests supply
// sarama/mocks backed implementations.
type Factory interface {
	SyncProducer(brokers []string, cfg *sarama.Config) (sarama.SyncProducer, error)
	Cluster(brokers []string, cfg *sarama.Config) (Cluster, error)
}

type saramaFactory struct{}

func (saramaFactory) SyncProducer(brokers []string, cfg *sarama.Config) (sarama.SyncProducer, error) {
	return sarama.NewSyncProducer(brokers, cfg)
}

func (saramaFactory) Cluster(brokers []string, cfg *sarama.Config) (Cluster, error) {
	client, err := sarama.NewClient(brokers, cfg)
	if err != nil {
		return nil, err
	}
	return saramaCluster{Client: client}, nil
}

type saramaCluster struct {
	sarama.Client
}

func (c saramaCluster) Consumer() (sarama.Consumer, error) {
	return sarama.NewConsumerFromClient(c.Client)
}

// Option configures a Client.
type Option func(*Client)

// WithFactory replaces the connection factory.
func WithFactory(f Factory) Option {
	return func(c *Client) {
		if f != nil {
			c.factory = f
		}
	}
}

// Client publishes to and reads from one cluster. Connections are opened
// per call, so a Client is cheap to keep and safe for concurrent use.
type Client struct {
	cfg     Config
	sarama  *sarama.Config
	factory Factory
}

// NewClient validates cfg and returns a client for it.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	cfg = cfg.WithDefaults()
	saramaCfg, err := cfg.Sarama()
	if err != nil {
		return nil, err
	}
	c := &Client{cfg: cfg, sarama: saramaCfg, factory: saramaFactory{}}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// Record is one message to publish. Partition pins the target partition;
// otherwise the key hash decides.
type Record struct {
	Topic     string
	Partition *int32
	Timestamp *time.Time
	Key       []byte
	Value     []byte
	Headers   map[string][]byte
}

// RecordMetadata reports where a record landed.
type RecordMetadata struct {
	Topic     string    `json:"topic"`
	Partition int32     `json:"partition"`
	Offset    int64     `json:"offset"`
	Timestamp time.Time `json:"timestamp"`
}

// Publish sends rec and waits for the brokers' acknowledgement. Opening the
// producer is retried with exponential backoff for up to MaxTimeout.
func (c *Client) Publish(ctx context.Context, rec Record) (RecordMetadata, error) {
	if rec.Topic == "" {
		return RecordMetadata{}, ErrNoTopic
	}

	cfg := *c.sarama
	if rec.Partition != nil {
		cfg.Producer.Partitioner = sarama.NewManualPartitioner
	}

	var producer sarama.SyncProducer
	open := func() error {
		p, err := c.factory.SyncProducer(c.cfg.Brokers, &cfg)
		if err != nil {
			return err
		}
		producer = p
		return nil
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.MaxElapsedTime = c.cfg.MaxTimeout
	if err := backoff.Retry(open, backoff.WithContext(b, ctx)); err != nil {
		return RecordMetadata{}, fmt.Errorf("kafka: open producer: %w", err)
	}
	defer producer.Close()

	msg := &sarama.ProducerMessage{Topic: rec.Topic}
	if rec.Key != nil {
		msg.Key = sarama.ByteEncoder(rec.Key)
	}
	if rec.Value != nil {
		msg.Value = sarama.ByteEncoder(rec.Value)
	}
	if rec.Partition != nil {
		msg.Partition = *rec.Partition
	}
	if rec.Timestamp != nil {
		msg.Timestamp = *rec.Timestamp
	}
	msg.Headers = recordHeaders(rec.Headers)

	partition, offset, err := producer.SendMessage(msg)
	if err != nil {
		return RecordMetadata{}, fmt.Errorf("kafka: publish to %s: %w", rec.Topic, err)
	}
	return RecordMetadata{
		Topic:     rec.Topic,
		Partition: partition,
		Offset:    offset,
		Timestamp: msg.Timestamp,
	}, nil
}

func recordHeaders(headers map[string][]byte) []sarama.RecordHeader {
	if len(headers) == 0 {
		return nil
	}
	keys := make([]string, 0, len(headers))
	for key := range headers {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	out := make([]sarama.RecordHeader, 0, len(keys))
	for _, key := range keys {
		out = append(out, sarama.RecordHeader{Key: []byte(key), Value: headers[key]})
	}
	return out
}

// Topics lists the cluster's topics, sorted. Internal topics ("__consumer_offsets"
// and the like) are left out.
func (c *Client) Topics(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cluster, err := c.factory.Cluster(c.cfg.Brokers, c.sarama)
	if err != nil {
		return nil, fmt.Errorf("kafka: connect: %w", err)
	}
	defer cluster.Close()

	topics, err := cluster.Topics()
	if err != nil {
		return nil, fmt.Errorf("kafka: list topics: %w", err)
	}
	out := topics[:0]
	for _, topic := range topics {
		if !strings.HasPrefix(topic, "__") {
			out = append(out, topic)
		}
	}
	sort.Strings(out)
	return out, nil
}
