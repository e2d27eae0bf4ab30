package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"brain-brawl-service/internal/domain"
)

type fakeLeaderboard struct {
	entries []domain.LeaderboardEntry
	gotN    int
}

func (f *fakeLeaderboard) Top(_ context.Context, n int) ([]domain.LeaderboardEntry, error) {
	f.gotN = n
	return f.entries, nil
}

type fakeProfiles map[string]domain.Profile

func (f fakeProfiles) Profile(_ context.Context, playerID string) (domain.Profile, error) {
	p, ok := f[playerID]
	if !ok {
		return domain.Profile{}, errors.New("no such player")
	}
	return p, nil
}

func newAPIServer(t *testing.T, lb LeaderboardProvider, profiles ProfileProvider) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	NewAPIHandler(lb, profiles).Register(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestLeaderboardEndpoint(t *testing.T) {
	lb := &fakeLeaderboard{entries: []domain.LeaderboardEntry{
		{PlayerID: "alice", Username: "alice", Rank: 1, Score: 350},
		{PlayerID: "bob", Username: "bob", Rank: 2, Score: 150},
	}}
	srv := newAPIServer(t, lb, nil)

	resp, err := http.Get(srv.URL + "/api/leaderboard?limit=5")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: %d", resp.StatusCode)
	}
	if lb.gotN != 5 {
		t.Fatalf("limit not passed through, got %d", lb.gotN)
	}
	var entries []domain.LeaderboardEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(entries) != 2 || entries[0].PlayerID != "alice" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func TestLeaderboardLimitClamped(t *testing.T) {
	lb := &fakeLeaderboard{}
	srv := newAPIServer(t, lb, nil)

	resp, err := http.Get(srv.URL + "/api/leaderboard?limit=5000")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if lb.gotN != 10 {
		t.Fatalf("out-of-range limit must fall back to default, got %d", lb.gotN)
	}
}

func TestLeaderboardNotConfigured(t *testing.T) {
	srv := newAPIServer(t, nil, nil)
	resp, err := http.Get(srv.URL + "/api/leaderboard")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status: got %d, want %d", resp.StatusCode, http.StatusServiceUnavailable)
	}
}

func TestProfileEndpoint(t *testing.T) {
	profiles := fakeProfiles{"alice": {PlayerID: "alice", Username: "alice", Score: 350, GamesPlayed: 2, GamesWon: 2, WinRate: 100}}
	srv := newAPIServer(t, nil, profiles)

	resp, err := http.Get(srv.URL + "/api/profile?userId=alice")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	var p domain.Profile
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.PlayerID != "alice" || p.WinRate != 100 {
		t.Fatalf("unexpected profile: %+v", p)
	}

	resp2, err := http.Get(srv.URL + "/api/profile?userId=ghost")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp2.Body.Close()
	if resp2.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown player status: got %d, want 404", resp2.StatusCode)
	}

	resp3, err := http.Get(srv.URL + "/api/profile")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp3.Body.Close()
	if resp3.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing userId status: got %d, want 400", resp3.StatusCode)
	}
}
