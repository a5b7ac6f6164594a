package server

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-kafkaforms/internal/service"
	"github.com/goliatone/go-kafkaforms/internal/store"
	"github.com/goliatone/go-kafkaforms/pkg/form"
	"github.com/goliatone/go-kafkaforms/pkg/render"
	"github.com/goliatone/go-kafkaforms/pkg/renderers/html"
)

const (
	groupField = "bootstrapGroupId"
	topicField = "topic"
)

// formTarget names where a submitted form is sent. An empty topic means
// the submit only renders the message.
type formTarget struct {
	groupID int64
	topic   string
}

func targetFrom(values url.Values) (formTarget, error) {
	target := formTarget{topic: strings.TrimSpace(values.Get(topicField))}
	if raw := strings.TrimSpace(values.Get(groupField)); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return formTarget{}, fmt.Errorf("%w: invalid %s %q", errBadRequest, groupField, raw)
		}
		target.groupID = id
	}
	return target, nil
}

func (t formTarget) hidden() []render.HiddenField {
	return render.HiddenSet{}.
		AddID(groupField, t.groupID).
		Add(topicField, t.topic).
		Fields()
}

// showForm renders an empty input form for a template. The bootstrapGroupId
// and topic query parameters are carried into the form so submitting it
// sends the message.
func (s *Server) showForm(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	target, err := targetFrom(r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}
	session, record, err := s.opts.Templates.Session(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	s.renderForm(w, r, http.StatusOK, session, record, target, nil)
}

// submitForm replays a posted form. Add and remove actions re-render it;
// submit validates the collected input and renders or sends the message.
func (s *Server) submitForm(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		writeError(w, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	target, err := targetFrom(r.PostForm)
	if err != nil {
		writeError(w, err)
		return
	}
	session, record, err := s.opts.Templates.Session(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	action, err := html.ApplyForm(session, r.PostForm)
	var fieldErrs html.FieldErrors
	switch {
	case errors.As(err, &fieldErrs):
		s.renderForm(w, r, http.StatusUnprocessableEntity, session, record, target, fieldErrs)
		return
	case err != nil:
		writeError(w, err)
		return
	}
	if action.Kind != html.ActionSubmit {
		s.renderForm(w, r, http.StatusOK, session, record, target, nil)
		return
	}

	// Seed defaults of fields the post left out, as the GET form would.
	session.Render()
	input := session.Collect()
	var body any
	if target.topic == "" {
		var message []byte
		message, _, err = s.opts.Templates.Render(r.Context(), id, input)
		body = map[string]any{"input": input, "message": string(message)}
	} else {
		body, err = s.opts.Templates.Send(r.Context(), id, service.SendRequest{
			BootstrapGroupID: target.groupID,
			Topic:            target.topic,
			Input:            input,
		})
	}

	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		s.renderForm(w, r, http.StatusUnprocessableEntity, session, record, target, verr.Errors())
	case err != nil:
		writeError(w, err)
	default:
		writeBody(w, body)
	}
}

func (s *Server) renderForm(w http.ResponseWriter, r *http.Request, status int, session *form.Session, record store.MessageTemplate, target formTarget, fieldErrors map[string][]string) {
	page, err := s.opts.Forms.Render(r.Context(), session, render.RenderOptions{
		Action:      r.URL.Path,
		Title:       record.Name,
		SubmitLabel: submitLabel(target),
		Hidden:      target.hidden(),
		Errors:      fieldErrors,
	})
	if err != nil {
		s.logger.Error("form render failed", zap.Int64("template", record.ID), zap.Error(err))
		writeError(w, err)
		return
	}
	writeHTML(w, status, page)
}

func submitLabel(target formTarget) string {
	if target.topic != "" {
		return "Send"
	}
	return "Render"
}
