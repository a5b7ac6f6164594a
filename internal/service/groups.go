package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-kafkaforms/internal/metrics"
	"github.com/goliatone/go-kafkaforms/internal/store"
	"github.com/goliatone/go-kafkaforms/pkg/kafka"
)

// GroupRequest is the create and update payload of a bootstrap group.
type GroupRequest struct {
	Code             string   `json:"code"`
	Name             string   `json:"name"`
	MaxTimeout       int64    `json:"maxTimeout"`
	BootstrapServers []string `json:"bootstrapServers"`
}

func (r GroupRequest) validate() error {
	var missing []string
	if strings.TrimSpace(r.Code) == "" {
		missing = append(missing, "code")
	}
	if strings.TrimSpace(r.Name) == "" {
		missing = append(missing, "name")
	}
	if len(r.BootstrapServers) == 0 {
		missing = append(missing, "bootstrapServers")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidRequest, strings.Join(missing, ", "))
	}
	if r.MaxTimeout < 0 {
		return fmt.Errorf("%w: maxTimeout must not be negative", ErrInvalidRequest)
	}
	return nil
}

// PublishRequest is a raw publish. Key and Value are base64 encoded;
// Timestamp is in epoch milliseconds.
type PublishRequest struct {
	Partition *int32            `json:"partition,omitempty"`
	Timestamp *int64            `json:"timestamp,omitempty"`
	Key       *string           `json:"key,omitempty"`
	Value     string            `json:"value"`
	Headers   map[string]string `json:"headers,omitempty"`
	// MaxTimeout overrides the group timeout, in milliseconds.
	MaxTimeout int64 `json:"maxTimeout,omitempty"`
}

// ConsumeRequest asks for the last (or first) MaxMessages records.
type ConsumeRequest struct {
	MaxMessages int    `json:"maxMessages"`
	Mode        string `json:"mode,omitempty"`
	// MaxTimeout overrides the group timeout, in milliseconds.
	MaxTimeout int64 `json:"maxTimeout,omitempty"`
}

// Groups manages bootstrap groups and talks to their clusters.
type Groups struct {
	repo store.Repository[store.BootstrapGroup]
	settings
}

// NewGroups returns a Groups service over repo.
func NewGroups(repo store.Repository[store.BootstrapGroup], opts ...Option) *Groups {
	return &Groups{repo: repo, settings: newSettings(opts)}
}

func (g *Groups) List(ctx context.Context) ([]store.BootstrapGroup, error) {
	return g.repo.List(ctx)
}

func (g *Groups) Get(ctx context.Context, id int64) (store.BootstrapGroup, error) {
	return g.repo.Get(ctx, id)
}

func (g *Groups) Create(ctx context.Context, req GroupRequest) (store.BootstrapGroup, error) {
	if err := req.validate(); err != nil {
		return store.BootstrapGroup{}, err
	}
	created, err := g.repo.Create(ctx, store.BootstrapGroup{
		Code:             req.Code,
		Name:             req.Name,
		MaxTimeout:       req.MaxTimeout,
		BootstrapServers: req.BootstrapServers,
	})
	if err != nil {
		return store.BootstrapGroup{}, err
	}
	g.logger.Info("bootstrap group created", zap.Int64("id", created.ID), zap.String("code", created.Code))
	return created, nil
}

func (g *Groups) Update(ctx context.Context, id int64, req GroupRequest) (store.BootstrapGroup, error) {
	if err := req.validate(); err != nil {
		return store.BootstrapGroup{}, err
	}
	updated, err := g.repo.Update(ctx, store.BootstrapGroup{
		ID:               id,
		Code:             req.Code,
		Name:             req.Name,
		MaxTimeout:       req.MaxTimeout,
		BootstrapServers: req.BootstrapServers,
	})
	if err != nil {
		return store.BootstrapGroup{}, err
	}
	g.logger.Info("bootstrap group updated", zap.Int64("id", id))
	return updated, nil
}

func (g *Groups) Delete(ctx context.Context, id int64) error {
	if err := g.repo.Delete(ctx, id); err != nil {
		return err
	}
	g.logger.Info("bootstrap group deleted", zap.Int64("id", id))
	return nil
}

// Topics lists the topics of the group's cluster.
func (g *Groups) Topics(ctx context.Context, id int64) ([]string, error) {
	broker, _, err := g.broker(ctx, id, 0)
	if err != nil {
		return nil, err
	}
	return broker.Topics(ctx)
}

// Publish sends a raw record to topic.
func (g *Groups) Publish(ctx context.Context, id int64, topic string, req PublishRequest) (kafka.RecordMetadata, error) {
	value, err := decodeBase64("value", req.Value)
	if err != nil {
		return kafka.RecordMetadata{}, err
	}
	rec := kafka.Record{
		Topic:     topic,
		Partition: req.Partition,
		Value:     value,
		Headers:   headerBytes(req.Headers),
	}
	if req.Key != nil {
		if rec.Key, err = decodeBase64("key", *req.Key); err != nil {
			return kafka.RecordMetadata{}, err
		}
	}
	if req.Timestamp != nil {
		ts := time.UnixMilli(*req.Timestamp).UTC()
		rec.Timestamp = &ts
	}
	return g.publish(ctx, id, millis(req.MaxTimeout), rec)
}

// Consume reads recent records of topic.
func (g *Groups) Consume(ctx context.Context, id int64, topic string, req ConsumeRequest) ([]kafka.Message, error) {
	mode := kafka.ConsumeMode(strings.ToLower(req.Mode))
	switch mode {
	case "", kafka.ConsumeLatest, kafka.ConsumeEarliest:
	default:
		return nil, fmt.Errorf("%w: unknown consume mode %q", ErrInvalidRequest, req.Mode)
	}
	broker, group, err := g.broker(ctx, id, millis(req.MaxTimeout))
	if err != nil {
		return nil, err
	}
	timeout := millis(req.MaxTimeout)
	if timeout == 0 {
		timeout = group.Timeout()
	}
	return broker.Consume(ctx, kafka.ConsumeRequest{
		Topic:       topic,
		MaxMessages: req.MaxMessages,
		MaxTimeout:  timeout,
		Mode:        mode,
	})
}

func (g *Groups) publish(ctx context.Context, id int64, timeout time.Duration, rec kafka.Record) (kafka.RecordMetadata, error) {
	broker, group, err := g.broker(ctx, id, timeout)
	if err != nil {
		return kafka.RecordMetadata{}, err
	}
	meta, err := broker.Publish(ctx, rec)
	metrics.ObservePublish(rec.Topic, err)
	if err != nil {
		g.logger.Error("publish failed",
			zap.String("group", group.Code),
			zap.String("topic", rec.Topic),
			zap.Error(err))
		return kafka.RecordMetadata{}, err
	}
	g.logger.Info("message published",
		zap.String("group", group.Code),
		zap.String("topic", meta.Topic),
		zap.Int32("partition", meta.Partition),
		zap.Int64("offset", meta.Offset))
	return meta, nil
}

func (g *Groups) broker(ctx context.Context, id int64, timeout time.Duration) (Broker, store.BootstrapGroup, error) {
	group, err := g.repo.Get(ctx, id)
	if err != nil {
		return nil, store.BootstrapGroup{}, err
	}
	broker, err := g.dial(clusterConfig(g.base, group, timeout))
	if err != nil {
		return nil, store.BootstrapGroup{}, fmt.Errorf("service: group %s: %w", group.Code, err)
	}
	return broker, group, nil
}

func decodeBase64(field, value string) ([]byte, error) {
	out, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not valid base64: %v", ErrInvalidRequest, field, err)
	}
	return out, nil
}

func headerBytes(headers map[string]string) map[string][]byte {
	if len(headers) == 0 {
		return nil
	}
	out := make(map[string][]byte, len(headers))
	for k, v := range headers {
		out[k] = []byte(v)
	}
	return out
}

func millis(ms int64) time.Duration {
	if ms <= 0 {
		return 0
	}
	return time.Duration(ms) * time.Millisecond
}
