package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"brain-brawl-service/internal/domain"
)

// LeaderboardProvider serves the global ranking.
type LeaderboardProvider interface {
	Top(ctx context.Context, n int) ([]domain.LeaderboardEntry, error)
}

// ProfileProvider serves per-player lifetime stats.
type ProfileProvider interface {
	Profile(ctx context.Context, playerID string) (domain.Profile, error)
}

// APIHandler exposes the read-only stat endpoints next to the websocket.
// Either provider may be nil when its backing store is not configured.
type APIHandler struct {
	leaderboard LeaderboardProvider
	profiles    ProfileProvider
}

func NewAPIHandler(leaderboard LeaderboardProvider, profiles ProfileProvider) *APIHandler {
	return &APIHandler{leaderboard: leaderboard, profiles: profiles}
}

func (h *APIHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/leaderboard", h.handleLeaderboard)
	mux.HandleFunc("/api/profile", h.handleProfile)
}

func (h *APIHandler) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if h.leaderboard == nil {
		http.Error(w, "leaderboard not configured", http.StatusServiceUnavailable)
		return
	}
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	entries, err := h.leaderboard.Top(r.Context(), limit)
	if err != nil {
		log.Printf("leaderboard: %v", err)
		http.Error(w, "failed to load leaderboard", http.StatusInternalServerError)
		return
	}
	writeJSON(w, entries)
}

func (h *APIHandler) handleProfile(w http.ResponseWriter, r *http.Request) {
	if h.profiles == nil {
		http.Error(w, "profiles not configured", http.StatusServiceUnavailable)
		return
	}
	playerID := r.URL.Query().Get("userId")
	if playerID == "" {
		http.Error(w, "missing userId", http.StatusBadRequest)
		return
	}
	profile, err := h.profiles.Profile(r.Context(), playerID)
	if err != nil {
		http.Error(w, "profile not found", http.StatusNotFound)
		return
	}
	writeJSON(w, profile)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}
