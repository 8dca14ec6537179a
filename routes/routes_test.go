package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Dosada05/chess-tournament/brackets"
	"github.com/Dosada05/chess-tournament/handlers"
	"github.com/Dosada05/chess-tournament/repositories"
	"github.com/Dosada05/chess-tournament/services"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "route-test-secret"

type testServer struct {
	router chi.Router
	token  string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := repositories.NewMemoryDocumentStore()
	playerService := services.NewPlayerService(repositories.NewPlayerRepository(store), nil)
	tournamentService := services.NewTournamentService(
		repositories.NewTournamentRepository(store),
		repositories.NewRoundRepository(store),
		brackets.NewRoundRobinGenerator(),
		nil, nil, nil, nil,
	)
	hash, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	require.NoError(t, err)
	authService := services.NewAuthService("organizer", string(hash), nil)

	router := chi.NewRouter()
	SetupRoutes(router,
		Options{JWTSecret: []byte(testSecret), AllowedOrigins: []string{"*"}},
		handlers.NewAuthHandler(authService, testSecret),
		handlers.NewTournamentHandler(tournamentService),
		handlers.NewPlayerHandler(playerService),
		handlers.NewWebSocketHandler(brackets.NewHub(nil), tournamentService),
	)

	s := &testServer{router: router}
	rec := s.do(t, http.MethodPost, "/auth/login", map[string]string{"username": "organizer", "password": "pw"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body struct{ Token string }
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.Token)
	s.token = body.Token
	return s
}

func (s *testServer) request(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	return s.request(t, method, path, body, s.token)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]json.RawMessage {
	t.Helper()
	var out map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestRoutes_TournamentFlow(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/tournaments", map[string]interface{}{
		"id": "t1", "name": "Club Championship", "start_date": "2025-05-01", "end_date": "2025-05-02", "location": "Lyon",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	for _, p := range []string{"p1", "p2", "p3", "p4"} {
		rec = s.do(t, http.MethodPost, "/tournaments/t1/players", map[string]string{"player_id": p})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}
	rec = s.do(t, http.MethodPost, "/tournaments/t1/players", map[string]string{"player_id": "p5"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodGet, "/tournaments/t1/rounds/current", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPut, "/tournaments/t1/status", map[string]string{"status": "Completed"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(t, http.MethodPut, "/tournaments/t1/status", map[string]string{"status": "In Progress"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/tournaments/t1/rounds/current", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var current struct {
		Round struct {
			RoundID string `json:"round_id"`
		} `json:"round"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &current))
	assert.Equal(t, "t1_round_2", current.Round.RoundID)

	rec = s.do(t, http.MethodPut, "/tournaments/t1/rounds/0/matches/0/result", map[string]string{"result": "first_wins"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = s.do(t, http.MethodPost, "/tournaments/t1/rounds/current/finish", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(t, http.MethodPut, "/tournaments/t1/rounds/0/matches/1/result", map[string]string{"result": "draw"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodPost, "/tournaments/t1/rounds/current/finish", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/tournaments/t1/players/p1/score", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "1", string(decode(t, rec)["score"]))

	rec = s.do(t, http.MethodGet, "/tournaments/t1/standings", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/tournaments/t1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var detail struct {
		Tournament struct {
			Status   string          `json:"status"`
			Location []string        `json:"location"`
			Rounds   json.RawMessage `json:"rounds"`
		} `json:"tournament"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	assert.Equal(t, "In Progress", detail.Tournament.Status)
	assert.Equal(t, []string{"Lyon"}, detail.Tournament.Location)

	rec = s.do(t, http.MethodGet, "/tournaments?status=In%20Progress", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/tournaments/t1/rounds/x", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = s.do(t, http.MethodGet, "/tournaments/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRoutes_MutationsNeedOrganizerToken(t *testing.T) {
	s := newTestServer(t)

	rec := s.request(t, http.MethodPost, "/tournaments", map[string]string{"name": "x"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.request(t, http.MethodPost, "/players", map[string]string{"firstname": "a", "lastname": "b"}, "garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	spectator := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "viewer", "role": "spectator", "exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := spectator.SignedString([]byte(testSecret))
	require.NoError(t, err)
	rec = s.request(t, http.MethodPost, "/players", map[string]string{"firstname": "a", "lastname": "b"}, signed)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "organizer", "role": "organizer", "exp": time.Now().Add(-time.Hour).Unix(),
	})
	signed, err = expired.SignedString([]byte(testSecret))
	require.NoError(t, err)
	rec = s.request(t, http.MethodPost, "/players", map[string]string{"firstname": "a", "lastname": "b"}, signed)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.request(t, http.MethodGet, "/tournaments", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRoutes_Players(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/players", map[string]string{"player_id": "vk", "firstname": "vladimir", "lastname": "kramnik"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/players", map[string]string{"player_id": "vk", "firstname": "v", "lastname": "k"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPost, "/players", map[string]string{"firstname": "v", "lastname": "k", "birthdate": "yesterday"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(t, http.MethodGet, "/players/vk", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got struct {
		Player struct {
			FirstName string `json:"firstname"`
			LastName  string `json:"lastname"`
		} `json:"player"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Vladimir", got.Player.FirstName)
	assert.Equal(t, "KRAMNIK", got.Player.LastName)

	rec = s.do(t, http.MethodGet, "/players", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/players", map[string]string{"unknown": "field"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRoutes_LoginAndHealth(t *testing.T) {
	s := newTestServer(t)

	rec := s.request(t, http.MethodPost, "/auth/login", map[string]string{"username": "organizer", "password": "nope"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.request(t, http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.request(t, http.MethodGet, "/ws/tournaments/unknown", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
