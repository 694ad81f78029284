package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/sensorlab/doorwatch/database"
	"github.com/sensorlab/doorwatch/web/entity"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "doorwatch.db")
	if err := database.InitDB(dbPath); err != nil {
		t.Fatalf("init db: %v", err)
	}
	t.Cleanup(func() {
		db, _ := database.GetDB().DB()
		db.Close()
	})

	server := NewServer()
	engine, err := server.initRouter()
	if err != nil {
		t.Fatalf("init router: %v", err)
	}
	return engine
}

func doJSON(engine *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, engine *gin.Engine, username, password string) entity.TokenResponse {
	t.Helper()

	form := url.Values{"username": {username}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/api/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("login %s: got status %d: %s", username, w.Code, w.Body.String())
	}

	var tokens entity.TokenResponse
	if err := json.Unmarshal(w.Body.Bytes(), &tokens); err != nil {
		t.Fatalf("decode token response: %v", err)
	}
	return tokens
}

func createUser(t *testing.T, engine *gin.Engine, adminToken, username, password, role string) {
	t.Helper()

	body := `{"username":"` + username + `","password":"` + password + `","role":"` + role + `"}`
	w := doJSON(engine, http.MethodPost, "/api/users", adminToken, body)
	if w.Code != http.StatusCreated {
		t.Fatalf("create user %s: got status %d: %s", username, w.Code, w.Body.String())
	}
}

const nestedPayload = `{"sensor":{"state":"open"},"tmp":{"value":21.5},"bat":{"value":90}}`

func TestLoginEndpoint(t *testing.T) {
	engine := newTestRouter(t)

	tokens := login(t, engine, "admin", "adminpw")
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	assert.Equal(t, "bearer", tokens.TokenType)

	form := url.Values{"username": {"admin"}, "password": {"wrong"}}
	req := httptest.NewRequest(http.MethodPost, "/api/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRefreshEndpoint(t *testing.T) {
	engine := newTestRouter(t)
	tokens := login(t, engine, "admin", "adminpw")

	w := doJSON(engine, http.MethodPost, "/api/token/refresh", "",
		`{"refresh_token":"`+tokens.RefreshToken+`"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	var refreshed entity.TokenResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &refreshed))
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.Empty(t, refreshed.RefreshToken)

	// An access token is not accepted in place of a refresh token.
	w = doJSON(engine, http.MethodPost, "/api/token/refresh", "",
		`{"refresh_token":"`+tokens.AccessToken+`"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestIngestAndLatest(t *testing.T) {
	engine := newTestRouter(t)
	tokens := login(t, engine, "admin", "adminpw")

	// Ingest needs no token.
	w := doJSON(engine, http.MethodPost, "/api/shelly", "", nestedPayload)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(engine, http.MethodGet, "/api/door-status/latest", tokens.AccessToken, "")
	assert.Equal(t, http.StatusOK, w.Code)

	var out entity.StatusOut
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, "open", out.State)
	assert.Equal(t, 21.5, out.Temperature)
	assert.Equal(t, 90, out.Battery)
	assert.False(t, out.Offline)
}

func TestIngestMalformed(t *testing.T) {
	engine := newTestRouter(t)

	for _, body := range []string{
		`{"sensor":{"state":"open"}}`,
		`{"bat":{"value":200},"sensor":{"state":"open"},"tmp":{"value":1}}`,
		`not json`,
		`{}`,
	} {
		w := doJSON(engine, http.MethodPost, "/api/shelly", "", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "payload: %s", body)
	}
}

func TestLatestRequiresToken(t *testing.T) {
	engine := newTestRouter(t)

	w := doJSON(engine, http.MethodGet, "/api/door-status/latest", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(engine, http.MethodGet, "/api/door-status/latest", "garbage", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRefreshTokenRejectedAsBearer(t *testing.T) {
	engine := newTestRouter(t)
	tokens := login(t, engine, "admin", "adminpw")

	w := doJSON(engine, http.MethodGet, "/api/door-status/latest", tokens.RefreshToken, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLatestNoDataIs404(t *testing.T) {
	engine := newTestRouter(t)
	tokens := login(t, engine, "admin", "adminpw")

	w := doJSON(engine, http.MethodGet, "/api/door-status/latest", tokens.AccessToken, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHistoryRoleGate(t *testing.T) {
	engine := newTestRouter(t)
	admin := login(t, engine, "admin", "adminpw")

	createUser(t, engine, admin.AccessToken, "viewer", "pw", "viewer")
	createUser(t, engine, admin.AccessToken, "auditor", "pw", "auditor")
	viewer := login(t, engine, "viewer", "pw")
	auditor := login(t, engine, "auditor", "pw")

	doJSON(engine, http.MethodPost, "/api/shelly", "", nestedPayload)

	// Viewers may read the latest snapshot but not the history.
	w := doJSON(engine, http.MethodGet, "/api/door-status/latest", viewer.AccessToken, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(engine, http.MethodGet, "/api/door-status/history", viewer.AccessToken, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	for _, tokens := range []entity.TokenResponse{auditor, admin} {
		w = doJSON(engine, http.MethodGet, "/api/door-status/history?limit=10", tokens.AccessToken, "")
		assert.Equal(t, http.StatusOK, w.Code)
	}

	w = doJSON(engine, http.MethodGet, "/api/door-status/history?limit=abc", auditor.AccessToken, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserManagement(t *testing.T) {
	engine := newTestRouter(t)
	admin := login(t, engine, "admin", "adminpw")

	createUser(t, engine, admin.AccessToken, "viewer", "pw", "viewer")
	viewer := login(t, engine, "viewer", "pw")

	// Only admins may list or create accounts.
	w := doJSON(engine, http.MethodGet, "/api/users", viewer.AccessToken, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(engine, http.MethodPost, "/api/users", viewer.AccessToken,
		`{"username":"eve","password":"pw"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Anyone authenticated may inspect itself.
	w = doJSON(engine, http.MethodGet, "/api/users/me", viewer.AccessToken, "")
	assert.Equal(t, http.StatusOK, w.Code)
	var me map[string]any
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.Equal(t, "viewer", me["username"])
	assert.Equal(t, "viewer", me["role"])

	w = doJSON(engine, http.MethodGet, "/api/users", admin.AccessToken, "")
	assert.Equal(t, http.StatusOK, w.Code)
	var users []entity.UserOut
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &users))
	assert.Len(t, users, 2)

	// Duplicate usernames conflict, unknown roles are rejected.
	w = doJSON(engine, http.MethodPost, "/api/users", admin.AccessToken,
		`{"username":"viewer","password":"pw"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(engine, http.MethodPost, "/api/users", admin.AccessToken,
		`{"username":"eve","password":"pw","role":"superuser"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeletedUserTokenRejected(t *testing.T) {
	engine := newTestRouter(t)
	admin := login(t, engine, "admin", "adminpw")

	createUser(t, engine, admin.AccessToken, "temp", "pw", "viewer")
	temp := login(t, engine, "temp", "pw")

	w := doJSON(engine, http.MethodGet, "/api/users", admin.AccessToken, "")
	assert.Equal(t, http.StatusOK, w.Code)
	var users []entity.UserOut
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &users))

	var tempId int
	for _, u := range users {
		if u.Username == "temp" {
			tempId = u.Id
		}
	}
	assert.NotZero(t, tempId)

	w = doJSON(engine, http.MethodDelete, "/api/users/"+strconv.Itoa(tempId), admin.AccessToken, "")
	assert.Equal(t, http.StatusOK, w.Code)

	// The still-unexpired token no longer maps to an account.
	w = doJSON(engine, http.MethodGet, "/api/users/me", temp.AccessToken, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(engine, http.MethodDelete, "/api/users/9999", admin.AccessToken, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUnknownRouteIs404(t *testing.T) {
	engine := newTestRouter(t)

	w := doJSON(engine, http.MethodGet, "/api/nope", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
