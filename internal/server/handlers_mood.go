package server

import (
	"encoding/json"
	"net/http"

	"github.com/solace-ai/solace/pkg/types"
)

// RecordMoodRequest represents the request body for recording a mood entry.
type RecordMoodRequest struct {
	Score int    `json:"score"`
	Note  string `json:"note,omitempty"`
}

// recordMood handles POST /mood
func (s *Server) recordMood(w http.ResponseWriter, r *http.Request) {
	var req RecordMoodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid JSON body")
		return
	}

	entry, err := s.moodService.Record(r.Context(), ownerFrom(r.Context()), req.Score, req.Note)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, entry)
}

// listMood handles GET /mood
func (s *Server) listMood(w http.ResponseWriter, r *http.Request) {
	entries, err := s.moodService.List(r.Context(), ownerFrom(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if entries == nil {
		entries = []*types.MoodEntry{}
	}

	writeJSON(w, http.StatusOK, entries)
}
