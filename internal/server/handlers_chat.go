package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/solace-ai/solace/pkg/types"
)

// SendMessageRequest represents the request body for sending a message.
type SendMessageRequest struct {
	Message string `json:"message"`
}

// createSession handles POST /chat/sessions
func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.chatService.CreateSession(r.Context(), ownerFrom(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, session)
}

// listSessions handles GET /chat/sessions
func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.chatService.ListSessions(r.Context(), ownerFrom(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	// Ensure we return an empty array [] instead of null
	summaries := make([]types.SessionSummary, 0, len(sessions))
	for _, session := range sessions {
		summaries = append(summaries, session.Summary())
	}

	writeJSON(w, http.StatusOK, summaries)
}

// getSession handles GET /chat/sessions/{sessionID}
func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	session, err := s.chatService.GetSession(r.Context(), sessionID, ownerFrom(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

// getHistory handles GET /chat/sessions/{sessionID}/history
func (s *Server) getHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	history, err := s.chatService.GetHistory(r.Context(), sessionID, ownerFrom(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if history == nil {
		history = []types.Message{}
	}

	writeJSON(w, http.StatusOK, history)
}

// sendMessage handles POST /chat/sessions/{sessionID}/messages
func (s *Server) sendMessage(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid JSON body")
		return
	}

	result, err := s.chatService.ProcessMessage(r.Context(), sessionID, ownerFrom(r.Context()), req.Message)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// completeSession handles POST /chat/sessions/{sessionID}/complete
func (s *Server) completeSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	session, err := s.chatService.CompleteSession(r.Context(), sessionID, ownerFrom(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, session)
}
