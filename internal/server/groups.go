package server

import (
	"net/http"

	"github.com/goliatone/go-kafkaforms/internal/service"
)

func (s *Server) listGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.opts.Groups.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeBody(w, groups)
}

func (s *Server) getGroup(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	group, err := s.opts.Groups.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeBody(w, group)
}

func (s *Server) createGroup(w http.ResponseWriter, r *http.Request) {
	var req service.GroupRequest
	if err := bind(r, &req); err != nil {
		writeError(w, err)
		return
	}
	group, err := s.opts.Groups.Create(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeBody(w, group)
}

func (s *Server) updateGroup(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req service.GroupRequest
	if err := bind(r, &req); err != nil {
		writeError(w, err)
		return
	}
	group, err := s.opts.Groups.Update(r.Context(), id, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeBody(w, group)
}

func (s *Server) deleteGroup(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.opts.Groups.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeBody(w, true)
}

func (s *Server) groupTopics(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	topics, err := s.opts.Groups.Topics(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeBody(w, topics)
}

func (s *Server) publish(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req service.PublishRequest
	if err := bind(r, &req); err != nil {
		writeError(w, err)
		return
	}
	meta, err := s.opts.Groups.Publish(r.Context(), id, r.PathValue("topic"), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeBody(w, meta)
}

func (s *Server) consume(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req service.ConsumeRequest
	if err := bind(r, &req); err != nil {
		writeError(w, err)
		return
	}
	messages, err := s.opts.Groups.Consume(r.Context(), id, r.PathValue("topic"), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeBody(w, messages)
}
