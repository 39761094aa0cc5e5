package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/freeeve/entangled/internal/auth"
	"github.com/freeeve/entangled/internal/elo"
	"github.com/freeeve/entangled/internal/model"
	"github.com/freeeve/entangled/internal/tournament"
)

type fakeController struct {
	mu     sync.Mutex
	paused bool
}

func (f *fakeController) ID() string { return "t1" }

func (f *fakeController) Summary() *tournament.Summary {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &tournament.Summary{
		TournamentID: "t1",
		Progress:     model.Progress{TournamentID: "t1", Completed: 4, Total: 8, Paused: f.paused},
		Ratings: []elo.PlayerRating{
			{ID: "minimax", Rating: 1530},
			{ID: "random", Rating: 1470},
		},
	}
}

func (f *fakeController) Pause() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paused = true
}

func (f *fakeController) Resume() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paused = false
}

type fakeStore struct {
	statuses []string
}

func (s *fakeStore) CreateTournament(_ context.Context, name string, _ []byte) (*model.Tournament, error) {
	return &model.Tournament{ID: "t1", Name: name}, nil
}

func (s *fakeStore) FindTournament(_ context.Context, id string) (*model.Tournament, error) {
	if id != "t1" {
		return nil, nil
	}
	return &model.Tournament{ID: "t1", Name: "nightly", Status: model.StatusRunning}, nil
}

func (s *fakeStore) SetTournamentStatus(_ context.Context, _ string, status string) error {
	s.statuses = append(s.statuses, status)
	return nil
}

func (s *fakeStore) RecordGameResult(context.Context, model.GameRecord) error { return nil }
func (s *fakeStore) Flush(context.Context) error { return nil }

func (s *fakeStore) ListGameResults(context.Context, string, int) ([]model.GameRecord, error) {
	return nil, nil
}

func (s *fakeStore) SaveRatings(context.Context, string, []model.Rating) error { return nil }

func (s *fakeStore) ListRatings(_ context.Context, id string) ([]model.Rating, error) {
	return []model.Rating{{TournamentID: id, Player: "minimax", Rating: 1530}}, nil
}

type testServer struct {
	handler http.Handler
	ctrl    *fakeController
	store   *fakeStore
	jwt     *auth.JWTManager
}

func newTestServer(t *testing.T, withStore bool) *testServer {
	t.Helper()
	jwtMgr := auth.NewJWTManager("test-secret")
	ctrl := &fakeController{}
	ts := &testServer{ctrl: ctrl, jwt: jwtMgr}

	var store *fakeStore
	th := NewTournamentHandler(ctrl, nil, nil)
	if withStore {
		store = &fakeStore{}
		th = NewTournamentHandler(ctrl, nil, store)
	}
	ts.store = store
	ts.handler = NewRouter(Routes{
		Auth:        NewAuthHandler(jwtMgr, true),
		Tournament:  th,
		WS:          NewWSHandler(NewHub(), jwtMgr, ctrl.ID()),
		JWT:         jwtMgr,
		CORSOrigins: "*",
	})
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, role string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if role != "" {
		token, err := ts.jwt.GenerateAccessToken("ada", role)
		if err != nil {
			t.Fatalf("generate token: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, false)
	rec := ts.do(t, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestTournamentStatusRequiresToken(t *testing.T) {
	ts := newTestServer(t, false)
	if rec := ts.do(t, http.MethodGet, "/api/v1/tournament", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	rec := ts.do(t, http.MethodGet, "/api/v1/tournament", auth.RoleSpectator)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var sum tournament.Summary
	if err := json.Unmarshal(rec.Body.Bytes(), &sum); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sum.TournamentID != "t1" || sum.Progress.Completed != 4 {
		t.Errorf("unexpected summary %+v", sum)
	}
}

func TestPauseResumeRequiresOperator(t *testing.T) {
	ts := newTestServer(t, true)

	if rec := ts.do(t, http.MethodPost, "/api/v1/tournament/pause", auth.RoleSpectator); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for spectator, got %d", rec.Code)
	}
	if ts.ctrl.paused {
		t.Fatal("spectator must not pause")
	}

	rec := ts.do(t, http.MethodPost, "/api/v1/tournament/pause", auth.RoleOperator)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	var p model.Progress
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !p.Paused {
		t.Error("expected paused progress")
	}

	if rec := ts.do(t, http.MethodPost, "/api/v1/tournament/resume", auth.RoleOperator); rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	if ts.ctrl.paused {
		t.Error("expected resumed")
	}

	want := []string{model.StatusPaused, model.StatusRunning}
	if strings.Join(ts.store.statuses, ",") != strings.Join(want, ",") {
		t.Errorf("expected statuses %v, got %v", want, ts.store.statuses)
	}
}

func TestLeaderboardWithoutCache(t *testing.T) {
	ts := newTestServer(t, false)
	rec := ts.do(t, http.MethodGet, "/api/v1/tournament/leaderboard?n=1", auth.RoleSpectator)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var rows []elo.PlayerRating
	if err := json.Unmarshal(rec.Body.Bytes(), &rows); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != "minimax" {
		t.Errorf("unexpected leaderboard %+v", rows)
	}
}

func TestRecentResultsWithoutCache(t *testing.T) {
	ts := newTestServer(t, false)
	rec := ts.do(t, http.MethodGet, "/api/v1/tournament/results", auth.RoleSpectator)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestGetStoredTournament(t *testing.T) {
	ts := newTestServer(t, true)

	rec := ts.do(t, http.MethodGet, "/api/v1/tournaments/t1", auth.RoleSpectator)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Tournament model.Tournament `json:"tournament"`
		Ratings    []model.Rating   `json:"ratings"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Tournament.Name != "nightly" || len(body.Ratings) != 1 {
		t.Errorf("unexpected body %+v", body)
	}

	if rec := ts.do(t, http.MethodGet, "/api/v1/tournaments/missing", auth.RoleSpectator); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestDevLogin(t *testing.T) {
	ts := newTestServer(t, false)

	if rec := ts.do(t, http.MethodGet, "/auth/dev", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without name, got %d", rec.Code)
	}

	rec := ts.do(t, http.MethodGet, "/auth/dev?name=ada&role=operator", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var pair auth.TokenPair
	if err := json.Unmarshal(rec.Body.Bytes(), &pair); err != nil {
		t.Fatalf("decode: %v", err)
	}
	claims, err := ts.jwt.ValidateToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.Viewer != "ada" || claims.Role != auth.RoleOperator {
		t.Errorf("unexpected claims %+v", claims)
	}
}

func TestDevLoginDisabled(t *testing.T) {
	h := NewAuthHandler(auth.NewJWTManager("s"), false)
	rec := httptest.NewRecorder()
	h.DevLogin(rec, httptest.NewRequest(http.MethodGet, "/auth/dev?name=ada", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestServeWSRejectsMissingToken(t *testing.T) {
	ts := newTestServer(t, false)
	rec := ts.do(t, http.MethodGet, "/api/v1/ws", "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}
