package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-kafkaforms/internal/metrics"
	"github.com/goliatone/go-kafkaforms/internal/store"
	"github.com/goliatone/go-kafkaforms/pkg/form"
	"github.com/goliatone/go-kafkaforms/pkg/interchange"
	"github.com/goliatone/go-kafkaforms/pkg/kafka"
	"github.com/goliatone/go-kafkaforms/pkg/msgtemplate"
	"github.com/goliatone/go-kafkaforms/pkg/schema"
	"github.com/goliatone/go-kafkaforms/pkg/validation"
)

// TemplateRequest is the create and update payload of a message template.
// Schema is an interchange document.
type TemplateRequest struct {
	Code     string            `json:"code"`
	Name     string            `json:"name"`
	Engine   string            `json:"engine"`
	Headers  map[string]string `json:"headers,omitempty"`
	Template string            `json:"template"`
	Schema   json.RawMessage   `json:"schema"`
}

// SendRequest renders a template with Input and publishes the result.
// Timestamp is in epoch milliseconds, MaxTimeout in milliseconds.
type SendRequest struct {
	BootstrapGroupID int64             `json:"bootstrapGroupId"`
	Topic            string            `json:"topic"`
	Partition        *int32            `json:"partition,omitempty"`
	Timestamp        *int64            `json:"timestamp,omitempty"`
	MaxTimeout       int64             `json:"maxTimeout,omitempty"`
	Key              *string           `json:"key,omitempty"`
	Headers          map[string]string `json:"headers,omitempty"`
	Input            any               `json:"input"`
}

// Templates manages message templates and sends rendered messages.
type Templates struct {
	repo   store.Repository[store.MessageTemplate]
	groups *Groups
	settings
}

// NewTemplates returns a Templates service. groups resolves the bootstrap
// group named by SendRequest.
func NewTemplates(repo store.Repository[store.MessageTemplate], groups *Groups, opts ...Option) (*Templates, error) {
	s := newSettings(opts)
	if s.engines == nil {
		registry, err := msgtemplate.Default()
		if err != nil {
			return nil, err
		}
		s.engines = registry
	}
	return &Templates{repo: repo, groups: groups, settings: s}, nil
}

// Engines lists the registered engine names.
func (t *Templates) Engines() []string {
	return t.engines.Names()
}

func (t *Templates) List(ctx context.Context) ([]store.MessageTemplate, error) {
	return t.repo.List(ctx)
}

func (t *Templates) Get(ctx context.Context, id int64) (store.MessageTemplate, error) {
	return t.repo.Get(ctx, id)
}

func (t *Templates) Create(ctx context.Context, req TemplateRequest) (store.MessageTemplate, error) {
	record, err := t.prepare(req)
	if err != nil {
		return store.MessageTemplate{}, err
	}
	created, err := t.repo.Create(ctx, record)
	if err != nil {
		return store.MessageTemplate{}, err
	}
	t.logger.Info("message template created", zap.Int64("id", created.ID), zap.String("code", created.Code))
	return created, nil
}

func (t *Templates) Update(ctx context.Context, id int64, req TemplateRequest) (store.MessageTemplate, error) {
	record, err := t.prepare(req)
	if err != nil {
		return store.MessageTemplate{}, err
	}
	record.ID = id
	updated, err := t.repo.Update(ctx, record)
	if err != nil {
		return store.MessageTemplate{}, err
	}
	t.logger.Info("message template updated", zap.Int64("id", id))
	return updated, nil
}

func (t *Templates) Delete(ctx context.Context, id int64) error {
	if err := t.repo.Delete(ctx, id); err != nil {
		return err
	}
	t.logger.Info("message template deleted", zap.Int64("id", id))
	return nil
}

// prepare checks req and stores its schema in canonical form.
func (t *Templates) prepare(req TemplateRequest) (store.MessageTemplate, error) {
	var missing []string
	if strings.TrimSpace(req.Code) == "" {
		missing = append(missing, "code")
	}
	if strings.TrimSpace(req.Name) == "" {
		missing = append(missing, "name")
	}
	if len(req.Schema) == 0 {
		missing = append(missing, "schema")
	}
	if len(missing) > 0 {
		return store.MessageTemplate{}, fmt.Errorf("%w: missing %s", ErrInvalidRequest, strings.Join(missing, ", "))
	}
	engine, err := t.engines.Get(req.Engine)
	if err != nil {
		return store.MessageTemplate{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	node, result := validation.ValidateSchema(req.Schema)
	if !result.Valid {
		return store.MessageTemplate{}, &ValidationError{Issues: result.Issues}
	}
	canonical, err := interchange.Encode(node)
	if err != nil {
		return store.MessageTemplate{}, &ValidationError{Issues: []validation.Issue{{Message: err.Error()}}}
	}

	return store.MessageTemplate{
		Code:     req.Code,
		Name:     req.Name,
		Engine:   engine.Name(),
		Headers:  req.Headers,
		Template: req.Template,
		Schema:   canonical,
	}, nil
}

// Schema decodes the stored schema of template id.
func (t *Templates) Schema(ctx context.Context, id int64) (schema.Node, store.MessageTemplate, error) {
	record, err := t.repo.Get(ctx, id)
	if err != nil {
		return nil, store.MessageTemplate{}, err
	}
	node, err := interchange.Decode(record.Schema)
	if err != nil {
		return nil, store.MessageTemplate{}, fmt.Errorf("service: template %s: %w", record.Code, err)
	}
	return node, record, nil
}

// Session starts a form session for the input schema of template id.
func (t *Templates) Session(ctx context.Context, id int64) (*form.Session, store.MessageTemplate, error) {
	node, record, err := t.Schema(ctx, id)
	if err != nil {
		return nil, store.MessageTemplate{}, err
	}
	return form.NewSession(node), record, nil
}

// Render validates input against the template schema and renders the
// message body.
func (t *Templates) Render(ctx context.Context, id int64, input any) ([]byte, store.MessageTemplate, error) {
	node, record, err := t.Schema(ctx, id)
	if err != nil {
		return nil, store.MessageTemplate{}, err
	}
	if result := validation.ValidateValue(node, input); !result.Valid {
		return nil, store.MessageTemplate{}, &ValidationError{Issues: result.Issues}
	}
	body, err := t.engines.Render(ctx, record.Engine, record.Template, input)
	if err != nil {
		metrics.RenderErrors.WithLabelValues(record.Engine).Inc()
		t.logger.Warn("render failed", zap.String("template", record.Code), zap.Error(err))
		return nil, store.MessageTemplate{}, fmt.Errorf("%w: %v", ErrRender, err)
	}
	return body, record, nil
}

// Send renders template id and publishes the result to the requested
// group and topic. Request headers override template headers.
func (t *Templates) Send(ctx context.Context, id int64, req SendRequest) (kafka.RecordMetadata, error) {
	if strings.TrimSpace(req.Topic) == "" {
		return kafka.RecordMetadata{}, fmt.Errorf("%w: missing topic", ErrInvalidRequest)
	}
	if t.groups == nil {
		return kafka.RecordMetadata{}, fmt.Errorf("%w: no bootstrap groups configured", ErrInvalidRequest)
	}

	body, record, err := t.Render(ctx, id, req.Input)
	if err != nil {
		return kafka.RecordMetadata{}, err
	}

	rec := kafka.Record{
		Topic:     req.Topic,
		Partition: req.Partition,
		Value:     body,
		Headers:   headerBytes(mergeHeaders(record.Headers, req.Headers)),
	}
	if req.Key != nil {
		rec.Key = []byte(*req.Key)
	}
	if req.Timestamp != nil {
		ts := time.UnixMilli(*req.Timestamp).UTC()
		rec.Timestamp = &ts
	}
	return t.groups.publish(ctx, req.BootstrapGroupID, millis(req.MaxTimeout), rec)
}

func mergeHeaders(base, override map[string]string) map[string]string {
	if len(base) == 0 && len(override) == 0 {
		return nil
	}
	out := make(map[string]string, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		out[k] = v
	}
	return out
}
