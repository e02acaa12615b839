package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenRouter(oauthService *OAuthService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/oauth/token", oauthService.HandleToken)
	return router
}

func postToken(router *gin.Engine, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/oauth/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestClientCredentialsFlow(t *testing.T) {
	db := setupTestDB(t)
	oauthService := NewOAuthService(db, testSecret)
	createOperatorClient(t, db, "test_client_id", "test_secret")
	router := tokenRouter(oauthService)

	w := postToken(router, url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {"test_client_id"},
		"client_secret": {"test_secret"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Bearer", response["token_type"])

	accessToken, ok := response["access_token"].(string)
	require.True(t, ok)
	claims := parseClaims(t, accessToken)
	assert.Equal(t, "admin", claims["role"])
}

func TestClientCredentialsInvalidSecret(t *testing.T) {
	db := setupTestDB(t)
	oauthService := NewOAuthService(db, testSecret)
	createOperatorClient(t, db, "test_client_id", "correct_secret")
	router := tokenRouter(oauthService)

	w := postToken(router, url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {"test_client_id"},
		"client_secret": {"wrong_secret"},
	})
	assert.True(t, w.Code >= 400 && w.Code < 500, "got %d", w.Code)
	assert.NotContains(t, w.Body.String(), "access_token")
}

func TestTokenEndpointRejectsOtherGrants(t *testing.T) {
	db := setupTestDB(t)
	router := tokenRouter(NewOAuthService(db, testSecret))

	w := postToken(router, url.Values{
		"grant_type": {"authorization_code"},
		"code":       {"abc"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "unsupported_grant_type")

	w = postToken(router, url.Values{"grant_type": {"client_credentials"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_request")
}
