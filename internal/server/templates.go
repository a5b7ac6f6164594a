package server

import (
	"net/http"

	"github.com/goliatone/go-kafkaforms/internal/service"
	"github.com/goliatone/go-kafkaforms/pkg/interchange"
)

func (s *Server) listTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := s.opts.Templates.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeBody(w, templates)
}

func (s *Server) listEngines(w http.ResponseWriter, _ *http.Request) {
	writeBody(w, s.opts.Templates.Engines())
}

func (s *Server) getTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	tmpl, err := s.opts.Templates.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeBody(w, tmpl)
}

// templateSchema answers the canonical interchange form of the template's
// input schema.
func (s *Server) templateSchema(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	node, _, err := s.opts.Templates.Schema(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	doc, err := interchange.ToDocument(node)
	if err != nil {
		writeError(w, err)
		return
	}
	writeBody(w, doc)
}

func (s *Server) createTemplate(w http.ResponseWriter, r *http.Request) {
	var req service.TemplateRequest
	if err := bind(r, &req); err != nil {
		writeError(w, err)
		return
	}
	tmpl, err := s.opts.Templates.Create(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeBody(w, tmpl)
}

func (s *Server) updateTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req service.TemplateRequest
	if err := bind(r, &req); err != nil {
		writeError(w, err)
		return
	}
	tmpl, err := s.opts.Templates.Update(r.Context(), id, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeBody(w, tmpl)
}

func (s *Server) deleteTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.opts.Templates.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeBody(w, true)
}

type renderRequest struct {
	Input any `json:"input"`
}

// renderTemplate previews the message body for an input without sending.
func (s *Server) renderTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req renderRequest
	if err := bind(r, &req); err != nil {
		writeError(w, err)
		return
	}
	body, _, err := s.opts.Templates.Render(r.Context(), id, req.Input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeBody(w, string(body))
}

func (s *Server) sendTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req service.SendRequest
	if err := bind(r, &req); err != nil {
		writeError(w, err)
		return
	}
	meta, err := s.opts.Templates.Send(r.Context(), id, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeBody(w, meta)
}
