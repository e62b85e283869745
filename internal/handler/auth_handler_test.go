package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"evidence-backend/internal/database"
	"evidence-backend/internal/middleware"
	"evidence-backend/internal/model"
	"evidence-backend/internal/repository"
	"evidence-backend/internal/service"
)

func newAuthRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))

	authService := service.NewAuthService(
		repository.NewUserRepository(db),
		repository.NewSessionRepository(db),
	)

	router := gin.New()
	NewAuthHandler(authService, db).RegisterRoutes(router.Group(""))
	return router, db
}

func seedUser(t *testing.T, db *gorm.DB, username, password string) model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	require.NoError(t, err)

	user := model.User{
		Username: username, Password: string(hash),
		Role: model.RoleUser, Region: model.RegionAstana, IsActive: true,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func postJSON(t *testing.T, router *gin.Engine, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestLoginSetsCookies(t *testing.T) {
	router, db := newAuthRouter(t)
	seedUser(t, db, "officer", "sekret1")

	w := postJSON(t, router, "/login", gin.H{"username": "officer", "password": "sekret1"})
	require.Equal(t, http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	names := map[string]bool{}
	for _, c := range cookies {
		names[c.Name] = true
	}
	require.True(t, names["access_token"])
	require.True(t, names["refresh_token"])
}

func TestLoginWrongPassword(t *testing.T) {
	router, db := newAuthRouter(t)
	seedUser(t, db, "officer", "sekret1")

	w := postJSON(t, router, "/login", gin.H{"username": "officer", "password": "nope"})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "Invalid credentials", body["detail"])
}

func TestCheckAuthWithoutCookie(t *testing.T) {
	router, _ := newAuthRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/check-auth", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)

	var body map[string]bool
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.False(t, body["is_authenticated"])
}

func TestCheckAuthWithValidCookie(t *testing.T) {
	router, db := newAuthRouter(t)
	seedUser(t, db, "officer", "sekret1")

	login := postJSON(t, router, "/login", gin.H{"username": "officer", "password": "sekret1"})
	require.Equal(t, http.StatusOK, login.Code)

	req := httptest.NewRequest(http.MethodGet, "/check-auth", nil)
	for _, c := range login.Result().Cookies() {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]bool
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.True(t, body["is_authenticated"])
}

func TestGetCSRFTokenSetsCookie(t *testing.T) {
	router, _ := newAuthRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/get-csrf-token", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var csrf *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == "csrf_token" {
			csrf = c
		}
	}
	require.NotNil(t, csrf)
	require.NotEmpty(t, csrf.Value)
	require.False(t, csrf.HttpOnly) // the client must read it back into a header
}

func TestCSRFProtectRejectsMissingHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(middleware.CSRFProtect())
	router.POST("/mutate", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	router.GET("/read", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	// reads pass without any token
	req := httptest.NewRequest(http.MethodGet, "/read", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusNoContent, w.Code)

	// writes without the cookie/header pair are rejected
	req = httptest.NewRequest(http.MethodPost, "/mutate", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusForbidden, w.Code)

	// matching pair passes
	token, err := middleware.NewCSRFToken()
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodPost, "/mutate", nil)
	req.AddCookie(&http.Cookie{Name: "csrf_token", Value: token})
	req.Header.Set("X-CSRF-Token", token)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusNoContent, w.Code)
}
