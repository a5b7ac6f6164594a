package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-kafkaforms/internal/store"
	"github.com/goliatone/go-kafkaforms/pkg/interchange"
	"github.com/goliatone/go-kafkaforms/pkg/kafka"
)

type stubBroker struct {
	cfg       kafka.Config
	published []kafka.Record
	consumed  []kafka.ConsumeRequest
	err       error
}

func (b *stubBroker) Publish(_ context.Context, rec kafka.Record) (kafka.RecordMetadata, error) {
	if b.err != nil {
		return kafka.RecordMetadata{}, b.err
	}
	b.published = append(b.published, rec)
	return kafka.RecordMetadata{Topic: rec.Topic, Partition: 0, Offset: int64(len(b.published) - 1)}, nil
}

func (b *stubBroker) Topics(context.Context) ([]string, error) {
	return []string{"orders", "payments"}, b.err
}

func (b *stubBroker) Consume(_ context.Context, req kafka.ConsumeRequest) ([]kafka.Message, error) {
	b.consumed = append(b.consumed, req)
	return []kafka.Message{{Topic: req.Topic, Value: []byte("v")}}, b.err
}

type fixture struct {
	store     *store.Memory
	broker    *stubBroker
	groups    *Groups
	templates *Templates
	groupID   int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{store: store.NewMemory(), broker: &stubBroker{}}
	dial := func(cfg kafka.Config) (Broker, error) {
		f.broker.cfg = cfg
		return f.broker, nil
	}
	opts := []Option{WithDialer(dial), WithKafkaConfig(kafka.Config{ClientID: "test"})}
	f.groups = NewGroups(f.store.Groups(), opts...)

	var err error
	f.templates, err = NewTemplates(f.store.Templates(), f.groups, opts...)
	require.NoError(t, err)

	group, err := f.groups.Create(context.Background(), GroupRequest{
		Code:             "local",
		Name:             "Local",
		MaxTimeout:       1500,
		BootstrapServers: []string{"localhost:9092"},
	})
	require.NoError(t, err)
	f.groupID = group.ID
	return f
}

const orderSchema = `{
	"type": "object",
	"properties": {
		"id": {"type": "integer", "minimum": 1},
		"status": {"type": "string", "enum": ["new", "paid"]}
	}
}`

func TestGroupValidation(t *testing.T) {
	f := newFixture(t)
	_, err := f.groups.Create(context.Background(), GroupRequest{Code: "x"})
	require.ErrorIs(t, err, ErrInvalidRequest)
	assert.Contains(t, err.Error(), "name, bootstrapServers")

	_, err = f.groups.Create(context.Background(), GroupRequest{Code: "local", Name: "Again", BootstrapServers: []string{"b:9092"}})
	require.ErrorIs(t, err, store.ErrConflict)
}

func TestGroupPublishDecodesBase64(t *testing.T) {
	f := newFixture(t)
	key := base64.StdEncoding.EncodeToString([]byte("k1"))
	ts := int64(1700000000000)

	meta, err := f.groups.Publish(context.Background(), f.groupID, "orders", PublishRequest{
		Key:       &key,
		Value:     base64.StdEncoding.EncodeToString([]byte(`{"id":1}`)),
		Timestamp: &ts,
		Headers:   map[string]string{"h": "v"},
	})
	require.NoError(t, err)
	assert.Equal(t, "orders", meta.Topic)

	require.Len(t, f.broker.published, 1)
	rec := f.broker.published[0]
	assert.Equal(t, []byte("k1"), rec.Key)
	assert.Equal(t, []byte(`{"id":1}`), rec.Value)
	assert.Equal(t, map[string][]byte{"h": []byte("v")}, rec.Headers)
	require.NotNil(t, rec.Timestamp)
	assert.Equal(t, ts, rec.Timestamp.UnixMilli())

	assert.Equal(t, []string{"localhost:9092"}, f.broker.cfg.Brokers)
	assert.Equal(t, 1500*time.Millisecond, f.broker.cfg.MaxTimeout)
	assert.Equal(t, "test", f.broker.cfg.ClientID)

	_, err = f.groups.Publish(context.Background(), f.groupID, "orders", PublishRequest{Value: "%%%"})
	require.ErrorIs(t, err, ErrInvalidRequest)

	_, err = f.groups.Publish(context.Background(), 999, "orders", PublishRequest{})
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestGroupTopicsAndConsume(t *testing.T) {
	f := newFixture(t)
	topics, err := f.groups.Topics(context.Background(), f.groupID)
	require.NoError(t, err)
	assert.Equal(t, []string{"orders", "payments"}, topics)

	msgs, err := f.groups.Consume(context.Background(), f.groupID, "orders", ConsumeRequest{MaxMessages: 3, Mode: "EARLIEST"})
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	require.Len(t, f.broker.consumed, 1)
	assert.Equal(t, kafka.ConsumeRequest{
		Topic:       "orders",
		MaxMessages: 3,
		MaxTimeout:  1500 * time.Millisecond,
		Mode:        kafka.ConsumeEarliest,
	}, f.broker.consumed[0])

	_, err = f.groups.Consume(context.Background(), f.groupID, "orders", ConsumeRequest{MaxMessages: 1, Mode: "middle"})
	require.ErrorIs(t, err, ErrInvalidRequest)
}

func TestTemplateCreateStoresCanonicalSchema(t *testing.T) {
	f := newFixture(t)
	created, err := f.templates.Create(context.Background(), TemplateRequest{
		Code:     "order",
		Name:     "Order",
		Engine:   "pongo2",
		Template: `{"id": {{ id|tojson }}}`,
		Schema:   json.RawMessage(orderSchema),
	})
	require.NoError(t, err)
	assert.Equal(t, "PONGO2", created.Engine)
	assert.True(t, strings.Contains(string(created.Schema), `"title":""`), "schema not canonical: %s", created.Schema)

	node, err := interchange.Decode(created.Schema)
	require.NoError(t, err)
	again, err := interchange.Encode(node)
	require.NoError(t, err)
	assert.Equal(t, string(created.Schema), string(again))
}

func TestTemplateCreateRejectsBadInput(t *testing.T) {
	f := newFixture(t)

	_, err := f.templates.Create(context.Background(), TemplateRequest{
		Code: "x", Name: "X", Engine: "FREEMARKER", Schema: json.RawMessage(`{}`),
	})
	require.ErrorIs(t, err, ErrInvalidRequest)

	_, err = f.templates.Create(context.Background(), TemplateRequest{
		Code: "x", Name: "X", Engine: "RAW",
		Schema: json.RawMessage(`{"type":"object","properties":{"n":{"type":"string","minLength":"x"}}}`),
	})
	require.ErrorIs(t, err, ErrValidation)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	require.NotEmpty(t, verr.Issues)
	assert.Equal(t, "/properties/n/minLength", verr.Issues[0].Path)

	for _, raw := range []string{
		`{"type":"object","properties":{"n":{"type":"number","maximum":1e400}}}`,
		`{"type":"object","properties":{"q":{"type":"integer","default":3.5}}}`,
	} {
		_, err = f.templates.Create(context.Background(), TemplateRequest{
			Code: "x", Name: "X", Engine: "RAW", Schema: json.RawMessage(raw),
		})
		require.ErrorIs(t, err, ErrValidation, "schema %s", raw)
	}

	records, err := f.templates.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestTemplateSend(t *testing.T) {
	f := newFixture(t)
	tmpl, err := f.templates.Create(context.Background(), TemplateRequest{
		Code:     "order",
		Name:     "Order",
		Engine:   "PONGO2",
		Headers:  map[string]string{"source": "template", "kind": "order"},
		Template: `{"id": {{ id|tojson }}, "status": "{{ status }}"}`,
		Schema:   json.RawMessage(orderSchema),
	})
	require.NoError(t, err)

	key := "order-7"
	_, err = f.templates.Send(context.Background(), tmpl.ID, SendRequest{
		BootstrapGroupID: f.groupID,
		Topic:            "orders",
		Key:              &key,
		MaxTimeout:       250,
		Headers:          map[string]string{"source": "request"},
		Input:            map[string]any{"id": 7.0, "status": "paid"},
	})
	require.NoError(t, err)

	require.Len(t, f.broker.published, 1)
	rec := f.broker.published[0]
	assert.JSONEq(t, `{"id": 7, "status": "paid"}`, string(rec.Value))
	assert.Equal(t, []byte("order-7"), rec.Key)
	assert.Equal(t, map[string][]byte{
		"source": []byte("request"),
		"kind":   []byte("order"),
	}, rec.Headers)
	assert.Equal(t, 250*time.Millisecond, f.broker.cfg.MaxTimeout)
}

func TestTemplateSendValidatesInput(t *testing.T) {
	f := newFixture(t)
	tmpl, err := f.templates.Create(context.Background(), TemplateRequest{
		Code: "order", Name: "Order", Engine: "JSON", Schema: json.RawMessage(orderSchema),
	})
	require.NoError(t, err)

	_, err = f.templates.Send(context.Background(), tmpl.ID, SendRequest{
		BootstrapGroupID: f.groupID,
		Topic:            "orders",
		Input:            map[string]any{"id": 0.0},
	})
	require.ErrorIs(t, err, ErrValidation)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	fields := verr.Errors()
	assert.Contains(t, fields, "/id")
	assert.Contains(t, fields, "/status")
	assert.Empty(t, f.broker.published)

	_, err = f.templates.Send(context.Background(), tmpl.ID, SendRequest{Input: map[string]any{}})
	require.ErrorIs(t, err, ErrInvalidRequest)
}

func TestTemplateRenderError(t *testing.T) {
	f := newFixture(t)
	tmpl, err := f.templates.Create(context.Background(), TemplateRequest{
		Code: "broken", Name: "Broken", Engine: "GO_TEMPLATE",
		Template: `{{ .id `,
		Schema:   json.RawMessage(`{"type":"object"}`),
	})
	require.NoError(t, err)

	_, _, err = f.templates.Render(context.Background(), tmpl.ID, map[string]any{})
	require.ErrorIs(t, err, ErrRender)
}

func TestTemplateSession(t *testing.T) {
	f := newFixture(t)
	tmpl, err := f.templates.Create(context.Background(), TemplateRequest{
		Code: "order", Name: "Order", Engine: "RAW", Schema: json.RawMessage(orderSchema),
	})
	require.NoError(t, err)

	session, record, err := f.templates.Session(context.Background(), tmpl.ID)
	require.NoError(t, err)
	assert.Equal(t, "order", record.Code)
	root := session.Render()
	require.Len(t, root.Children, 2)
	assert.Equal(t, "id", root.Children[0].Name)
}
