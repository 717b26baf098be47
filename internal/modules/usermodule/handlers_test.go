package usermodule

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mantonx/cinelog/internal/auth"
	"github.com/mantonx/cinelog/internal/config"
	"github.com/mantonx/cinelog/internal/database"
	"github.com/mantonx/cinelog/internal/modules/moviemodule/core"
	"github.com/mantonx/cinelog/internal/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type testEnv struct {
	router  *gin.Engine
	db      *gorm.DB
	manager *auth.TokenManager
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&database.User{},
		&database.Artist{},
		&database.Genre{},
		&database.Movie{},
		&database.Rating{},
	))

	manager, err := auth.NewTokenManager(&config.AuthConfig{
		JWTSecret:       "test-secret-key",
		TokenExpiration: time.Hour,
	})
	require.NoError(t, err)

	handler := NewHandler(db, manager, bcrypt.MinCost)
	router := gin.New()
	api := router.Group("/api")
	api.Use(auth.Authenticate(manager, db))
	api.POST("/signup", handler.Signup)
	api.POST("/token", handler.Token)
	api.GET("/me", auth.RequireAuthenticated(), handler.Me)
	api.PATCH("/me", auth.RequireAuthenticated(), handler.UpdateMe)
	ratings := api.Group("/ratings", auth.RequireCapability(policy.CapManageOwnRatings))
	ratings.GET("", handler.ListRatings)
	ratings.GET("/:id", handler.GetRating)
	ratings.PATCH("/:id", handler.UpdateRating)

	return &testEnv{router: router, db: db, manager: manager}
}

func (e *testEnv) request(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func (e *testEnv) signup(t *testing.T, name string) *database.User {
	t.Helper()
	w := e.request(t, http.MethodPost, "/api/signup", gin.H{
		"email":    name + "@example.com",
		"name":     name,
		"password": "correct horse",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var user database.User
	require.NoError(t, e.db.Where("name = ?", name).First(&user).Error)
	return &user
}

func (e *testEnv) login(t *testing.T, name string) string {
	t.Helper()
	w := e.request(t, http.MethodPost, "/api/token", gin.H{
		"email":    name + "@example.com",
		"password": "correct horse",
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decodeBody(t, w)["token"].(string)
}

func TestSignup(t *testing.T) {
	env := setupEnv(t)

	w := env.request(t, http.MethodPost, "/api/signup", gin.H{
		"email":    "alice@example.com",
		"name":     "alice",
		"password": "correct horse",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "alice", body["name"])
	assert.NotContains(t, w.Body.String(), "password")
	assert.NotContains(t, w.Body.String(), "hashed")

	// Passwords are stored hashed, never verbatim.
	var user database.User
	require.NoError(t, env.db.Where("name = ?", "alice").First(&user).Error)
	assert.NotEqual(t, "correct horse", user.HashedPassword)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte("correct horse")))
}

func TestSignupRejectsDuplicates(t *testing.T) {
	env := setupEnv(t)
	env.signup(t, "alice")

	w := env.request(t, http.MethodPost, "/api/signup", gin.H{
		"email":    "alice@example.com",
		"name":     "someone-else",
		"password": "correct horse",
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "email")

	w = env.request(t, http.MethodPost, "/api/signup", gin.H{
		"email":    "other@example.com",
		"name":     "alice",
		"password": "correct horse",
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "name")
}

func TestSignupValidation(t *testing.T) {
	env := setupEnv(t)

	w := env.request(t, http.MethodPost, "/api/signup", gin.H{
		"email":    "not-an-email",
		"name":     "bob",
		"password": "correct horse",
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.request(t, http.MethodPost, "/api/signup", gin.H{
		"email":    "bob@example.com",
		"name":     "bob",
		"password": "short",
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestToken(t *testing.T) {
	env := setupEnv(t)
	env.signup(t, "alice")

	token := env.login(t, "alice")
	assert.NotEmpty(t, token)

	// Wrong password and unknown email produce the same status.
	w := env.request(t, http.MethodPost, "/api/token", gin.H{
		"email":    "alice@example.com",
		"password": "wrong",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.request(t, http.MethodPost, "/api/token", gin.H{
		"email":    "ghost@example.com",
		"password": "correct horse",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTokenRejectsInactive(t *testing.T) {
	env := setupEnv(t)
	user := env.signup(t, "alice")
	require.NoError(t, env.db.Model(user).Update("is_active", false).Error)

	w := env.request(t, http.MethodPost, "/api/token", gin.H{
		"email":    "alice@example.com",
		"password": "correct horse",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMe(t *testing.T) {
	env := setupEnv(t)
	env.signup(t, "alice")
	token := env.login(t, "alice")

	w := env.request(t, http.MethodGet, "/api/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.request(t, http.MethodGet, "/api/me", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice", decodeBody(t, w)["name"])
}

func TestUpdateMe(t *testing.T) {
	env := setupEnv(t)
	env.signup(t, "alice")
	token := env.login(t, "alice")

	w := env.request(t, http.MethodPatch, "/api/me", gin.H{
		"name":     "alice-renamed",
		"password": "new password",
	}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "alice-renamed", decodeBody(t, w)["name"])

	// The new password works, the old one does not.
	w = env.request(t, http.MethodPost, "/api/token", gin.H{
		"email":    "alice@example.com",
		"password": "new password",
	}, "")
	assert.Equal(t, http.StatusOK, w.Code)
	w = env.request(t, http.MethodPost, "/api/token", gin.H{
		"email":    "alice@example.com",
		"password": "correct horse",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func seedRating(t *testing.T, db *gorm.DB, userID uint, value int) (*database.Movie, *database.Rating) {
	t.Helper()
	movie := &database.Movie{Title: fmt.Sprintf("Movie %d", value), Year: 2000}
	require.NoError(t, db.Create(movie).Error)
	slug := core.MakeSlug(movie.Title, movie.ID)
	require.NoError(t, db.Model(movie).Update("slug", slug).Error)

	outcome, err := core.NewAggregator(db).Record(movie.ID, &userID, value, "")
	require.NoError(t, err)
	return movie, outcome.Rating
}

func TestListRatings(t *testing.T) {
	env := setupEnv(t)
	alice := env.signup(t, "alice")
	bob := env.signup(t, "bob")
	token := env.login(t, "alice")

	seedRating(t, env.db, alice.ID, 7)
	seedRating(t, env.db, bob.ID, 2)

	w := env.request(t, http.MethodGet, "/api/ratings", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Only the caller's own ratings are listed.
	w = env.request(t, http.MethodGet, "/api/ratings", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, float64(1), body["count"])
	results := body["results"].([]interface{})
	first := results[0].(map[string]interface{})
	assert.Equal(t, float64(7), first["rating"])
	assert.Equal(t, "Movie 7", first["movie"].(map[string]interface{})["title"])
}

func TestGetRatingScopedToOwner(t *testing.T) {
	env := setupEnv(t)
	env.signup(t, "alice")
	bob := env.signup(t, "bob")
	token := env.login(t, "alice")

	_, bobsRating := seedRating(t, env.db, bob.ID, 4)

	// Another user's rating looks like a missing one.
	w := env.request(t, http.MethodGet, fmt.Sprintf("/api/ratings/%d", bobsRating.ID), nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.request(t, http.MethodGet, "/api/ratings/not-a-number", nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateRatingRecomputesAverage(t *testing.T) {
	env := setupEnv(t)
	alice := env.signup(t, "alice")
	token := env.login(t, "alice")

	movie, rating := seedRating(t, env.db, alice.ID, 4)

	w := env.request(t, http.MethodPatch, fmt.Sprintf("/api/ratings/%d", rating.ID), gin.H{
		"rating":  9,
		"comment": "rewatched it",
	}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decodeBody(t, w)
	assert.Equal(t, float64(9), body["rating"])
	assert.Equal(t, "rewatched it", body["comment"])
	assert.Equal(t, true, body["average_updated"])

	var fresh database.Movie
	require.NoError(t, env.db.First(&fresh, movie.ID).Error)
	require.NotNil(t, fresh.AverageRating)
	assert.InDelta(t, 9.0, *fresh.AverageRating, 0.001)
}

func TestUpdateRatingRejectsOutOfRange(t *testing.T) {
	env := setupEnv(t)
	alice := env.signup(t, "alice")
	token := env.login(t, "alice")

	_, rating := seedRating(t, env.db, alice.ID, 4)

	w := env.request(t, http.MethodPatch, fmt.Sprintf("/api/ratings/%d", rating.ID), gin.H{
		"rating": 0,
	}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
