package httpapi

import (
	"net/http"

	"agentbuilder/internal/domain"
)

func (s *Server) listTools(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.List())
}

func (s *Server) getTool(w http.ResponseWriter, r *http.Request) {
	entry, err := s.catalog.Get(r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) createTool(w http.ResponseWriter, r *http.Request) {
	var entry domain.ToolEntry
	if err := s.decode(r, &entry); err != nil {
		s.fail(w, r, err)
		return
	}
	created, err := s.catalog.Create(entry)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) updateTool(w http.ResponseWriter, r *http.Request) {
	var patch domain.ToolPatch
	if err := s.decode(r, &patch); err != nil {
		s.fail(w, r, err)
		return
	}
	updated, err := s.catalog.Update(r.PathValue("id"), patch)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) deleteTool(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.Delete(r.PathValue("id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) toolSchema(w http.ResponseWriter, r *http.Request) {
	schema, err := s.catalog.ParamSchema(r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, schema)
}

func (s *Server) toolHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.health.Check(r.Context(), r.PathValue("id")))
}

func (s *Server) deployAgent(w http.ResponseWriter, r *http.Request) {
	var req domain.DeployRequest
	if err := s.decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	record, err := s.agents.Deploy(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

func (s *Server) listAgents(w http.ResponseWriter, r *http.Request) {
	records, err := s.agents.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) getAgent(w http.ResponseWriter, r *http.Request) {
	record, err := s.agents.Get(r.Context(), r.PathValue("name"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) deleteAgent(w http.ResponseWriter, r *http.Request) {
	if err := s.agents.Delete(r.Context(), r.PathValue("name")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) sendChat(w http.ResponseWriter, r *http.Request) {
	var req domain.ChatRequest
	if err := s.decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	result, err := s.chat.Send(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
