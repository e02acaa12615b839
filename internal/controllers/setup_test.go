package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/franciscosanchezn/gin-bistro-api/internal/database"
	"github.com/franciscosanchezn/gin-bistro-api/internal/middleware"
	"github.com/franciscosanchezn/gin-bistro-api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testJWTSecret = "controllers-test-secret"

type testApp struct {
	t      *testing.T
	db     *gorm.DB
	router *gin.Engine
}

// newTestApp serves the full route table over an in-memory database seeded with the demo menu
func newTestApp(t *testing.T) *testApp {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.SeedAllergens(db))
	require.NoError(t, database.SeedMenu(db))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	SetupRoutes(router, db, RouterConfig{JWTSecret: testJWTSecret})

	return &testApp{t: t, db: db, router: router}
}

// client carries a session cookie and an optional bearer token between requests
type client struct {
	app     *testApp
	session string
	token   string
	partial bool
}

func (a *testApp) newClient() *client {
	return &client{app: a}
}

func (c *client) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(c.app.t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.session != "" {
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: c.session})
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.partial {
		req.Header.Set(middleware.PartialHeader, "true")
	}

	w := httptest.NewRecorder()
	c.app.router.ServeHTTP(w, req)

	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == middleware.SessionCookieName {
			c.session = cookie.Value
		}
	}
	return w
}

// register creates an account and logs the client in
func (c *client) register(phone string) uint {
	w := c.do(http.MethodPost, "/api/v1/auth/register", gin.H{
		"phone": phone, "password": "secret123", "first_name": "Test", "last_name": "Diner",
	})
	require.Equal(c.app.t, http.StatusCreated, w.Code, w.Body.String())

	w = c.do(http.MethodPost, "/api/v1/auth/login", gin.H{"phone": phone, "password": "secret123"})
	require.Equal(c.app.t, http.StatusOK, w.Code, w.Body.String())

	var login struct {
		AccessToken string `json:"access_token"`
		User        struct {
			ID uint `json:"id"`
		} `json:"user"`
	}
	decode(c.app.t, w, &login)
	c.token = login.AccessToken
	return login.User.ID
}

// registerAdmin registers an account and promotes it before logging in again
func (c *client) registerAdmin(phone string) uint {
	userID := c.register(phone)
	require.NoError(c.app.t, c.app.db.Model(&models.User{}).Where("id = ?", userID).Update("role", "admin").Error)

	w := c.do(http.MethodPost, "/api/v1/auth/login", gin.H{"phone": phone, "password": "secret123"})
	require.Equal(c.app.t, http.StatusOK, w.Code)
	var login struct {
		AccessToken string `json:"access_token"`
	}
	decode(c.app.t, w, &login)
	c.token = login.AccessToken
	return userID
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func (a *testApp) allergenID(slug string) uint {
	var allergen models.Allergen
	require.NoError(a.t, a.db.Where("slug = ?", slug).First(&allergen).Error)
	return allergen.ID
}

func (a *testApp) dishCount() int {
	var count int64
	require.NoError(a.t, a.db.Model(&models.Dish{}).Count(&count).Error)
	return int(count)
}

type dishJSON struct {
	ID        uint   `json:"id"`
	Slug      string `json:"slug"`
	Price     string `json:"price"`
	Allergens []struct {
		ID   uint   `json:"id"`
		Slug string `json:"slug"`
	} `json:"allergens"`
}

type cartJSON struct {
	Items []struct {
		ID       uint     `json:"id"`
		Quantity int      `json:"quantity"`
		Dish     dishJSON `json:"dish"`
	} `json:"items"`
	TotalItems int    `json:"total_items"`
	Subtotal   string `json:"subtotal"`
}
