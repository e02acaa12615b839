package auth

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/franciscosanchezn/gin-bistro-api/internal/models"
	"github.com/go-oauth2/oauth2/v4"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-jwt-secret-key-32-characters"

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(&models.User{}, &models.OAuthClient{}, &models.OAuthToken{})
	require.NoError(t, err)

	return db
}

// createOperatorClient stores an admin user and a client owned by it
func createOperatorClient(t *testing.T, db *gorm.DB, clientID, secret string) *models.User {
	admin := &models.User{Phone: "600999000", Password: "x", Role: "admin"}
	require.NoError(t, db.Create(admin).Error)

	hashedSecret, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	require.NoError(t, err)

	client := &models.OAuthClient{
		ID:         clientID,
		Secret:     string(hashedSecret),
		Domain:     "http://localhost",
		Scopes:     "orders",
		UserID:     admin.ID,
		GrantTypes: "client_credentials",
	}
	require.NoError(t, db.Create(client).Error)
	return admin
}

func parseClaims(t *testing.T, token string) jwt.MapClaims {
	parsed, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	return claims
}

func TestOAuthServerInitialization(t *testing.T) {
	db := setupTestDB(t)

	oauthService := NewOAuthService(db, testSecret)
	assert.NotNil(t, oauthService)
	assert.NotNil(t, oauthService.GetServer())
}

func TestJWTTokenGeneration(t *testing.T) {
	db := setupTestDB(t)
	oauthService := NewOAuthService(db, testSecret)
	admin := createOperatorClient(t, db, "kitchen", "test_secret")

	tokenInfo, err := oauthService.GetServer().Manager.GenerateAccessToken(context.Background(), oauth2.ClientCredentials, &oauth2.TokenGenerateRequest{
		ClientID:     "kitchen",
		ClientSecret: "test_secret",
		Scope:        "orders",
	})
	require.NoError(t, err)
	require.NotEmpty(t, tokenInfo.GetAccess())

	claims := parseClaims(t, tokenInfo.GetAccess())
	assert.Equal(t, "admin", claims["role"])
	assert.Equal(t, "kitchen", claims["aud"])
	assert.Equal(t, "orders", claims["scope"])
	assert.Equal(t, strconv.FormatUint(uint64(admin.ID), 10), claims["uid"])

	var stored models.OAuthToken
	require.NoError(t, db.Where("access_token = ?", tokenInfo.GetAccess()).First(&stored).Error)
	assert.Equal(t, "kitchen", stored.ClientID)
}

func TestJWTTokenGenerationWithoutOwner(t *testing.T) {
	db := setupTestDB(t)
	oauthService := NewOAuthService(db, testSecret)

	hashedSecret, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.DefaultCost)
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.OAuthClient{ID: "orphan", Secret: string(hashedSecret)}).Error)

	_, err = oauthService.GetServer().Manager.GenerateAccessToken(context.Background(), oauth2.ClientCredentials, &oauth2.TokenGenerateRequest{
		ClientID:     "orphan",
		ClientSecret: "secret",
	})
	assert.Error(t, err)
}

func TestGenerateUserToken(t *testing.T) {
	user := &models.User{ID: 42}
	now := time.Now()

	token, err := GenerateUserToken([]byte(testSecret), user, now)
	require.NoError(t, err)

	claims := parseClaims(t, token)
	assert.Equal(t, "42", claims["uid"])
	assert.Equal(t, "user", claims["role"])
	exp, err := claims.GetExpirationTime()
	require.NoError(t, err)
	assert.Equal(t, now.Add(UserTokenTTL).Unix(), exp.Unix())
}

func TestClientStoreIntegration(t *testing.T) {
	db := setupTestDB(t)
	createOperatorClient(t, db, "integration_test_client", "secret")

	clientStore := NewGormClientStore(db)
	ctx := context.Background()

	retrievedClient, err := clientStore.GetByID(ctx, "integration_test_client")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost", retrievedClient.GetDomain())

	_, err = clientStore.GetByID(ctx, "missing")
	assert.Error(t, err)
}

func TestTokenStorePurgeExpired(t *testing.T) {
	db := setupTestDB(t)
	store := NewGormTokenStore(db)
	ctx := context.Background()

	require.NoError(t, db.Create(&models.OAuthToken{ClientID: "c", AccessToken: "old", ExpiresAt: time.Now().Add(-time.Hour)}).Error)
	require.NoError(t, db.Create(&models.OAuthToken{ClientID: "c", AccessToken: "fresh", ExpiresAt: time.Now().Add(time.Hour)}).Error)

	purged, err := store.PurgeExpired(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	info, err := store.GetByAccess(ctx, "fresh")
	require.NoError(t, err)
	assert.Equal(t, "c", info.GetClientID())
	assert.Empty(t, info.GetUserID())

	_, err = store.GetByAccess(ctx, "old")
	assert.Error(t, err)
}
