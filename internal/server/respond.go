package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/goliatone/go-kafkaforms/internal/service"
	"github.com/goliatone/go-kafkaforms/internal/store"
	"github.com/goliatone/go-kafkaforms/pkg/form"
	"github.com/goliatone/go-kafkaforms/pkg/kafka"
	"github.com/goliatone/go-kafkaforms/pkg/pngcodec"
	"github.com/goliatone/go-kafkaforms/pkg/renderers/html"
	"github.com/goliatone/go-kafkaforms/pkg/validation"
)

var errBadRequest = errors.New("server: bad request")

// Envelope wraps every JSON response.
type Envelope struct {
	Success bool        `json:"success"`
	Body    any         `json:"body,omitempty"`
	Error   *ErrorField `json:"error,omitempty"`
}

// ErrorField describes a failed request.
type ErrorField struct {
	Code    string             `json:"code"`
	Message string             `json:"message"`
	Issues  []validation.Issue `json:"issues,omitempty"`
}

// writeJSON writes a JSON response with the given status code and data.
func writeJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func writeBody(w http.ResponseWriter, body any) {
	writeJSON(w, http.StatusOK, Envelope{Success: true, Body: body})
}

func writeHTML(w http.ResponseWriter, statusCode int, page []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	_, _ = w.Write(page)
}

// writeError maps err onto a status and an error envelope.
func writeError(w http.ResponseWriter, err error) {
	status, code := classify(err)
	field := &ErrorField{Code: code, Message: err.Error()}
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		field.Issues = verr.Issues
	}
	writeJSON(w, status, Envelope{Error: field})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, kafka.ErrUnknownTopic):
		return http.StatusNotFound, "UNKNOWN_TOPIC"
	case errors.Is(err, store.ErrConflict):
		return http.StatusConflict, "CONFLICT"
	case errors.Is(err, service.ErrValidation):
		return http.StatusUnprocessableEntity, "VALIDATION_ERROR"
	case errors.Is(err, service.ErrRender):
		return http.StatusUnprocessableEntity, "RENDER_ERROR"
	case errors.Is(err, pngcodec.ErrImageTooSmall),
		errors.Is(err, pngcodec.ErrInvalidSize),
		errors.Is(err, pngcodec.ErrCorrupt),
		errors.Is(err, pngcodec.ErrInvalidImage):
		return http.StatusUnprocessableEntity, "CODEC_ERROR"
	case errors.Is(err, errBadRequest),
		errors.Is(err, service.ErrInvalidRequest),
		errors.Is(err, kafka.ErrNoTopic),
		errors.Is(err, kafka.ErrNoBrokers),
		errors.Is(err, html.ErrInvalidAction),
		errors.Is(err, html.ErrInvalidLength),
		errors.Is(err, form.ErrPathNotFound),
		errors.Is(err, form.ErrInvalidPointer):
		return http.StatusBadRequest, "BAD_REQUEST"
	default:
		return http.StatusInternalServerError, "UNEXPECTED_ERROR"
	}
}

// bind decodes the JSON body of r into dst.
func bind(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: decoding body: %v", errBadRequest, err)
	}
	return nil
}

func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id %q", errBadRequest, raw)
	}
	return id, nil
}
