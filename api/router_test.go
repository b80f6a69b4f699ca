package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/beka-birhanu/vinom-warden/api"
	api_i "github.com/beka-birhanu/vinom-warden/api/i"
	"github.com/beka-birhanu/vinom-warden/api/identity"
	"github.com/beka-birhanu/vinom-warden/api/session"
	"github.com/beka-birhanu/vinom-warden/audio"
	"github.com/beka-birhanu/vinom-warden/config"
	"github.com/beka-birhanu/vinom-warden/game"
	"github.com/beka-birhanu/vinom-warden/infrastruture/repo"
	"github.com/beka-birhanu/vinom-warden/infrastruture/timeline"
	"github.com/beka-birhanu/vinom-warden/infrastruture/token"
	"github.com/beka-birhanu/vinom-warden/infrastruture/worldcache"
	"github.com/beka-birhanu/vinom-warden/logger"
	"github.com/beka-birhanu/vinom-warden/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const strongPassword = "correct-Horse-battery-staple-42"

func newServer(t *testing.T) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens := token.NewJwtService("secret", "warden")
	auth, err := service.NewAuthService(repo.NewMemoryOperatorRepo(), tokens)
	require.NoError(t, err)

	sessions, err := service.NewSessionManager(&service.SessionManagerConfig{
		MaxSessions: 2,
		Timeline:    timeline.NewMemoryTimeline(),
		NewAlarm:    func() game.Alarm { return audio.Nop{} },
		Logger:      logger.Discard(),
	})
	require.NoError(t, err)
	t.Cleanup(sessions.StopAll)

	worlds, err := service.NewWorldService(&service.WorldServiceConfig{Cache: worldcache.NewMemoryCache(), Logger: logger.Discard()})
	require.NoError(t, err)

	base := config.DefaultScenario()
	base.Guards.TickInterval = time.Millisecond
	sessionController, err := session.NewController(sessions, worlds, base)
	require.NoError(t, err)

	router := api.NewRouter(api.Config{
		BaseURL:                 "/api",
		Controllers:             []api_i.Controller{identity.NewIdentityServer(auth), sessionController},
		AuthorizationMiddleware: identity.Authoriz(tokens),
	})
	return router.Engine()
}

func do(t *testing.T, h http.Handler, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, h http.Handler, username string) string {
	t.Helper()
	creds := identity.AuthRequest{Username: username, Password: strongPassword}
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/api/v1/auth/register", "", creds).Code)

	rec := do(t, h, http.MethodPost, "/api/v1/auth/login", "", creds)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp identity.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Token
}

func TestSessionFlow(t *testing.T) {
	h := newServer(t)
	tok := login(t, h, "warden_1")

	rec := do(t, h, http.MethodPost, "/api/v1/sessions", tok, session.ScenarioRequest{Scenario: "guards: {patrollers: 3, reserves: 1}"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created session.CreateSessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	base := "/api/v1/sessions/" + created.ID

	rec = do(t, h, http.MethodGet, base, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var status struct {
		Squad struct {
			Agents []json.RawMessage `json:"agents"`
		} `json:"squad"`
		Intruder struct {
			Position game.Vec2 `json:"position"`
		} `json:"intruder"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Len(t, status.Squad.Agents, 4)

	rec = do(t, h, http.MethodGet, base+"/world", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var world session.WorldResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &world))
	assert.Len(t, world.Rows, 41)

	rec = do(t, h, http.MethodPut, base+"/intruder", tok, map[string]any{"position": game.Vec2{X: 1, Z: 1}, "stance": "crouch"})
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodPut, base+"/intruder", tok, map[string]any{"stance": "prone"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, base+"/transitions", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	other := login(t, h, "warden_2")
	assert.Equal(t, http.StatusForbidden, do(t, h, http.MethodDelete, base, other, nil).Code)

	assert.Equal(t, http.StatusNoContent, do(t, h, http.MethodDelete, base, tok, nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, base, "", nil).Code)
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	h := newServer(t)

	assert.Equal(t, http.StatusUnauthorized, do(t, h, http.MethodPost, "/api/v1/sessions", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, h, http.MethodPost, "/api/v1/sessions", "garbage", nil).Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", nil)
	req.Header.Set("Authorization", "Basic abc")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPreview(t *testing.T) {
	h := newServer(t)

	seed := int64(9)
	rec := do(t, h, http.MethodPost, "/api/v1/worlds/preview", "", session.ScenarioRequest{Seed: &seed})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var view struct {
		Width  int      `json:"width"`
		Rows   []string `json:"rows"`
		Cached bool     `json:"cached"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, 41, view.Width)
	assert.False(t, view.Cached)

	rec = do(t, h, http.MethodPost, "/api/v1/worlds/preview", "", session.ScenarioRequest{Seed: &seed})
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.True(t, view.Cached)

	rec = do(t, h, http.MethodPost, "/api/v1/worlds/preview", "", session.ScenarioRequest{Scenario: "world: {mazes: []}"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBadSessionID(t *testing.T) {
	h := newServer(t)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/v1/sessions/not-a-uuid", "", nil).Code)
}

func TestPurgeSession(t *testing.T) {
	h := newServer(t)
	tok := login(t, h, "warden_3")

	rec := do(t, h, http.MethodPost, "/api/v1/sessions", tok, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created session.CreateSessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	base := "/api/v1/sessions/" + created.ID

	assert.Equal(t, http.StatusNoContent, do(t, h, http.MethodDelete, base+"?purge=true", tok, nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, base, "", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodDelete, base+"?purge=true", tok, nil).Code)
}
