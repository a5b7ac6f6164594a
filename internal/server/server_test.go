package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-kafkaforms/internal/service"
	"github.com/goliatone/go-kafkaforms/internal/store"
	"github.com/goliatone/go-kafkaforms/pkg/kafka"
	"github.com/goliatone/go-kafkaforms/pkg/renderers/html"
)

type stubBroker struct {
	published []kafka.Record
}

func (b *stubBroker) Publish(_ context.Context, rec kafka.Record) (kafka.RecordMetadata, error) {
	b.published = append(b.published, rec)
	return kafka.RecordMetadata{Topic: rec.Topic, Partition: 0, Offset: int64(len(b.published))}, nil
}

func (b *stubBroker) Topics(context.Context) ([]string, error) {
	return []string{"orders"}, nil
}

func (b *stubBroker) Consume(_ context.Context, req kafka.ConsumeRequest) ([]kafka.Message, error) {
	return []kafka.Message{}, nil
}

type testServer struct {
	handler http.Handler
	broker  *stubBroker
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	broker := &stubBroker{}
	dial := service.WithDialer(func(kafka.Config) (service.Broker, error) { return broker, nil })

	mem := store.NewMemory()
	groups := service.NewGroups(mem.Groups(), dial)
	templates, err := service.NewTemplates(mem.Templates(), groups, dial)
	require.NoError(t, err)
	forms, err := html.New()
	require.NoError(t, err)

	srv, err := New(Options{Groups: groups, Templates: templates, Forms: forms, MetricsPath: "/metrics"})
	require.NoError(t, err)
	return &testServer{handler: srv.Handler(), broker: broker}
}

func (ts *testServer) do(t *testing.T, method, target string, body any) (*httptest.ResponseRecorder, Envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	var env Envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func (ts *testServer) postForm(t *testing.T, target string, values url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) seed(t *testing.T) (groupID, templateID int64) {
	t.Helper()
	rec, env := ts.do(t, http.MethodPost, groupPrefix+"/", service.GroupRequest{
		Code: "local", Name: "Local", BootstrapServers: []string{"localhost:9092"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	groupID = int64(env.Body.(map[string]any)["id"].(float64))

	rec, env = ts.do(t, http.MethodPost, templatePrefix+"/", service.TemplateRequest{
		Code:     "order",
		Name:     "Order",
		Engine:   "PONGO2",
		Template: `{"id": {{ id|tojson }}, "status": "{{ status }}"}`,
		Schema: json.RawMessage(`{"type":"object","properties":{
			"id":{"type":"integer","minimum":1},
			"status":{"type":"string","enum":["new","paid"]}}}`),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	templateID = int64(env.Body.(map[string]any)["id"].(float64))
	return groupID, templateID
}

func TestGroupRoutes(t *testing.T) {
	ts := newTestServer(t)
	groupID, _ := ts.seed(t)

	rec, env := ts.do(t, http.MethodGet, groupPrefix+"/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	assert.Len(t, env.Body, 1)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	rec, env = ts.do(t, http.MethodPost, groupPrefix+"/", service.GroupRequest{
		Code: "local", Name: "Dup", BootstrapServers: []string{"x:9092"},
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, "CONFLICT", env.Error.Code)

	rec, env = ts.do(t, http.MethodGet, groupPrefix+"/999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)

	rec, _ = ts.do(t, http.MethodGet, groupPrefix+"/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env = ts.do(t, http.MethodGet, groupPrefix+"/"+itoa(groupID)+"/topics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{"orders"}, env.Body)

	rec, env = ts.do(t, http.MethodPost, groupPrefix+"/"+itoa(groupID)+"/topics/orders/publish", service.PublishRequest{
		Value: base64.StdEncoding.EncodeToString([]byte("hello")),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Len(t, ts.broker.published, 1)
	assert.Equal(t, []byte("hello"), ts.broker.published[0].Value)

	rec, env = ts.do(t, http.MethodPost, groupPrefix+"/"+itoa(groupID)+"/topics/orders/consume", service.ConsumeRequest{MaxMessages: 5})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)

	rec, _ = ts.do(t, http.MethodDelete, groupPrefix+"/"+itoa(groupID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = ts.do(t, http.MethodGet, groupPrefix+"/"+itoa(groupID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMalformedBody(t *testing.T) {
	ts := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, groupPrefix+"/", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"BAD_REQUEST"`)
}

func TestTemplateSendRoute(t *testing.T) {
	ts := newTestServer(t)
	groupID, templateID := ts.seed(t)
	sendURL := templatePrefix + "/" + itoa(templateID) + "/send"

	rec, env := ts.do(t, http.MethodPost, sendURL, service.SendRequest{
		BootstrapGroupID: groupID,
		Topic:            "orders",
		Input:            map[string]any{"id": 0, "status": "lost"},
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.NotEmpty(t, env.Error.Issues)
	assert.Empty(t, ts.broker.published)

	rec, env = ts.do(t, http.MethodPost, sendURL, service.SendRequest{
		BootstrapGroupID: groupID,
		Topic:            "orders",
		Input:            map[string]any{"id": 3, "status": "new"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Len(t, ts.broker.published, 1)
	assert.JSONEq(t, `{"id":3,"status":"new"}`, string(ts.broker.published[0].Value))

	rec, env = ts.do(t, http.MethodPost, templatePrefix+"/"+itoa(templateID)+"/render", map[string]any{
		"input": map[string]any{"id": 4, "status": "paid"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":4,"status":"paid"}`, env.Body.(string))

	rec, env = ts.do(t, http.MethodGet, templatePrefix+"/engines", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, env.Body, "PONGO2")

	rec, env = ts.do(t, http.MethodGet, templatePrefix+"/"+itoa(templateID)+"/schema", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	doc, err := json.Marshal(env.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"object","title":"","properties":{
		"id":{"type":"integer","title":"","minimum":1},
		"status":{"type":"string","title":"","enum":["new","paid"]}}}`, string(doc))

	rec, env = ts.do(t, http.MethodGet, templatePrefix+"/999/schema", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestFormRoutes(t *testing.T) {
	ts := newTestServer(t)
	groupID, templateID := ts.seed(t)
	formURL := templatePrefix + "/" + itoa(templateID) + "/form"

	req := httptest.NewRequest(http.MethodGet, formURL+"?topic=orders&bootstrapGroupId="+itoa(groupID), nil)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	page := rec.Body.String()
	assert.Contains(t, page, `name="/id"`)
	assert.Contains(t, page, `<select id="kf-status" name="/status" required>`)
	assert.Contains(t, page, `<input type="hidden" name="topic" value="orders">`)
	assert.Contains(t, page, `>Send</button>`)

	rec = ts.postForm(t, formURL, url.Values{
		"/id":      {"1.5"},
		"/status":  {"new"},
		"_action":  {"submit"},
		"topic":    {"orders"},
		groupField: {itoa(groupID)},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "is not a whole number")

	rec = ts.postForm(t, formURL, url.Values{
		"/id":      {"0"},
		"/status":  {"new"},
		"_action":  {"submit"},
		"topic":    {"orders"},
		groupField: {itoa(groupID)},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Empty(t, ts.broker.published)

	rec = ts.postForm(t, formURL, url.Values{
		"/id":      {"9"},
		"/status":  {"paid"},
		"_action":  {"submit"},
		"topic":    {"orders"},
		groupField: {itoa(groupID)},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Len(t, ts.broker.published, 1)
	assert.JSONEq(t, `{"id":9,"status":"paid"}`, string(ts.broker.published[0].Value))

	rec = ts.postForm(t, formURL, url.Values{
		"/id":     {"2"},
		"/status": {"new"},
		"_action": {"submit"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	body := env.Body.(map[string]any)
	assert.JSONEq(t, `{"id":2,"status":"new"}`, body["message"].(string))

	rec = ts.postForm(t, formURL, url.Values{"_action": {"explode"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFormSubmitSeedsOmittedDefaults(t *testing.T) {
	ts := newTestServer(t)
	rec, env := ts.do(t, http.MethodPost, templatePrefix+"/", service.TemplateRequest{
		Code:     "shipment",
		Name:     "Shipment",
		Engine:   "PONGO2",
		Template: `{"id": {{ id|tojson }}, "carrier": {{ carrier|tojson }}, "express": {{ express|tojson }}}`,
		Schema: json.RawMessage(`{"type":"object","properties":{
			"id":{"type":"integer"},
			"carrier":{"type":"string","enum":["dhl","ups"],"default":"ups"},
			"express":{"type":"boolean","default":true}}}`),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	formURL := templatePrefix + "/" + itoa(int64(env.Body.(map[string]any)["id"].(float64))) + "/form"

	rec = ts.postForm(t, formURL, url.Values{
		"/id":     {"4"},
		"_action": {"submit"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	body := env.Body.(map[string]any)
	assert.JSONEq(t, `{"id":4,"carrier":"ups","express":true}`, body["message"].(string))
	assert.Equal(t, map[string]any{"id": float64(4), "carrier": "ups", "express": true}, body["input"])
}

func TestCodecRoutes(t *testing.T) {
	ts := newTestServer(t)
	payload := base64.StdEncoding.EncodeToString([]byte("some kafka payload"))

	rec, env := ts.do(t, http.MethodPost, codecPrefix+"/encode", map[string]any{"content": payload})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	image := env.Body.(string)

	rec, env = ts.do(t, http.MethodPost, codecPrefix+"/decode", map[string]any{"content": image})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, payload, env.Body)

	notPNG := base64.StdEncoding.EncodeToString([]byte("not an image"))
	rec, env = ts.do(t, http.MethodPost, codecPrefix+"/decode", map[string]any{"content": notPNG, "useGZIP": false})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "CODEC_ERROR", env.Error.Code)

	rec, env = ts.do(t, http.MethodPost, codecPrefix+"/encode", map[string]any{"content": payload, "width": 1, "height": 1})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "CODEC_ERROR", env.Error.Code)

	rec, _ = ts.do(t, http.MethodPost, codecPrefix+"/encode", map[string]any{"content": "%%"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.do(t, http.MethodGet, groupPrefix+"/", nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "kafkaforms_http_requests_total")
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
