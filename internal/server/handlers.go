package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"recipechat/internal/chat"
	"recipechat/internal/domain"
)

const maxAudioChunk = 1 << 20

type message struct {
	Author  string `json:"author"`
	Content string `json:"content"`
}

type sessionResponse struct {
	SessionID string    `json:"session_id"`
	Messages  []message `json:"messages"`
}

type messageRequest struct {
	Content string `json:"content"`
}

type healthResponse struct {
	Status    string `json:"status"`
	Documents int    `json:"documents"`
	Reason    string `json:"reason,omitempty"`
}

func toMessage(m domain.Message) message {
	return message{Author: m.Author, Content: m.Content}
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	h := chat.NewHandler(s.app, nil, s.logger)
	s.mu.Lock()
	s.sessions[h.ID()] = h
	s.mu.Unlock()
	s.logger.Debug("session created", zap.String("session_id", h.ID()))
	s.respondJSON(w, http.StatusCreated, sessionResponse{
		SessionID: h.ID(),
		Messages:  []message{toMessage(h.Welcome())},
	})
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h, ok := s.session(id)
	if !ok {
		s.respondError(w, http.StatusNotFound, "session not found")
		return
	}
	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		s.respondError(w, http.StatusBadRequest, "content is required")
		return
	}
	reply := h.Respond(r.Context(), req.Content)
	s.respondJSON(w, http.StatusOK, sessionResponse{
		SessionID: id,
		Messages:  []message{toMessage(reply)},
	})
}

func (s *Server) handleAudioChunk(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h, ok := s.session(id)
	if !ok {
		s.respondError(w, http.StatusNotFound, "session not found")
		return
	}
	chunk, err := io.ReadAll(io.LimitReader(r.Body, maxAudioChunk))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid audio chunk")
		return
	}
	h.OnAudioChunk(r.Context(), chunk)
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		s.respondError(w, http.StatusNotFound, "session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !s.app.Available() {
		s.respondJSON(w, http.StatusServiceUnavailable, healthResponse{
			Status: "unavailable",
			Reason: s.app.Reason().Error(),
		})
		return
	}
	s.respondJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Documents: s.app.Context().Documents,
	})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("encode response failed", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, msg string) {
	s.respondJSON(w, status, map[string]string{"error": msg})
}
