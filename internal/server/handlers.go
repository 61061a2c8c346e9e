package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/verte-zerg/japa/internal/achievement"
	"github.com/verte-zerg/japa/internal/mantra"
	"github.com/verte-zerg/japa/internal/scorer"
	"github.com/verte-zerg/japa/internal/session"
	"github.com/verte-zerg/japa/internal/stats"
	"github.com/verte-zerg/japa/internal/store"
)

const maxBodyBytes = 64 << 10

type scoreRequest struct {
	Input   string `json:"input"`
	Variant string `json:"variant"`
}

type scoreResponse struct {
	Accuracy   int     `json:"accuracy"`
	Accepted   bool    `json:"accepted"`
	Similarity float64 `json:"similarity"`
	Suggestion string  `json:"suggestion"`
}

type suggestResponse struct {
	Suggestion    string `json:"suggestion"`
	AcceptedInput string `json:"accepted_input"`
}

type textResponse struct {
	Variant string `json:"variant"`
	Text    string `json:"text"`
}

type adminSetRequest struct {
	TotalPoints       *int      `json:"total_points"`
	CompletedSessions *int      `json:"completed_sessions"`
	Achievements      *[]string `json:"achievements"`
	Reaward           bool      `json:"reaward"`
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			Error(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}
	records, err := s.repo.ListProgress(r.Context())
	if err != nil {
		s.logger.Error("Failed to list progress", "error", err)
		Error(w, http.StatusInternalServerError, "failed to load leaderboard")
		return
	}
	entries := stats.Rank(records)
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	JSON(w, http.StatusOK, entries)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	p, err := s.repo.Load(r.Context(), key)
	if err != nil {
		s.logger.Error("Failed to load progress", "user", key, "error", err)
		Error(w, http.StatusInternalServerError, "failed to load progress")
		return
	}
	JSON(w, http.StatusOK, p)
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	req, sc, ok := s.decodeScoreRequest(w, r)
	if !ok {
		return
	}
	res := sc.Evaluate(req.Input)
	JSON(w, http.StatusOK, scoreResponse{
		Accuracy:   res.Accuracy,
		Accepted:   res.Accepted,
		Similarity: res.Similarity,
		Suggestion: res.Suggestion,
	})
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	req, sc, ok := s.decodeScoreRequest(w, r)
	if !ok {
		return
	}
	suggestion := sc.Suggest(req.Input)
	JSON(w, http.StatusOK, suggestResponse{
		Suggestion:    suggestion,
		AcceptedInput: scorer.Accept(req.Input, suggestion),
	})
}

func (s *Server) handleTexts(w http.ResponseWriter, _ *http.Request) {
	out := make([]textResponse, 0, len(s.scorers))
	for _, v := range mantra.Variants() {
		out = append(out, textResponse{Variant: v.String(), Text: s.scorers[v].Target()})
	}
	JSON(w, http.StatusOK, out)
}

func (s *Server) decodeScoreRequest(w http.ResponseWriter, r *http.Request) (scoreRequest, *scorer.Scorer, bool) {
	var req scoreRequest
	if err := decodeJSON(w, r, &req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return req, nil, false
	}
	sc, err := s.scorerFor(req.Variant)
	if err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return req, nil, false
	}
	return req, sc, true
}

func (s *Server) handleAdminSet(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	var req adminSetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	correction := session.Correction{
		TotalPoints:       req.TotalPoints,
		CompletedSessions: req.CompletedSessions,
		Reaward:           req.Reaward,
	}
	if req.Achievements != nil {
		ids, err := parseAchievements(*req.Achievements)
		if err != nil {
			Error(w, http.StatusBadRequest, err.Error())
			return
		}
		correction.Achievements = ids
	}

	current, err := s.repo.Load(r.Context(), key)
	if err != nil {
		s.logger.Error("Failed to load progress", "user", key, "error", err)
		Error(w, http.StatusInternalServerError, "failed to load progress")
		return
	}
	updated := correction.Apply(current)
	if err := s.repo.Save(r.Context(), updated); err != nil {
		if errors.Is(err, store.ErrInvalidProgress) {
			Error(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("Failed to save progress", "user", key, "error", err)
		Error(w, http.StatusInternalServerError, "failed to save progress")
		return
	}
	s.logger.Info("Admin updated progress", "user", key, "points", updated.TotalPoints, "sessions", updated.CompletedSessions)
	JSON(w, http.StatusOK, updated)
}

func (s *Server) handleAdminDelete(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	existed, err := s.repo.DeleteUser(r.Context(), key)
	if err != nil {
		s.logger.Error("Failed to delete user", "user", key, "error", err)
		Error(w, http.StatusInternalServerError, "failed to delete user")
		return
	}
	if !existed {
		Error(w, http.StatusNotFound, "user not found")
		return
	}
	s.logger.Info("Admin deleted user", "user", key)
	w.WriteHeader(http.StatusNoContent)
}

func parseAchievements(raw []string) ([]achievement.ID, error) {
	ids := make([]achievement.ID, 0, len(raw))
	for _, name := range raw {
		id, err := achievement.Parse(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

var _ Repository = (*store.Store)(nil)
