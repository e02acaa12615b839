package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.InfoLevel)
}

// SetLogLevel sets the level of the package logger
func SetLogLevel(level logrus.Level) {
	log.SetLevel(level)
}

// JWTAuth requires a valid Bearer token. Login tokens and operator client tokens
// share the uid and role claims, so both are accepted here.
func JWTAuth(jwtSecret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := bearerToken(c.GetHeader("Authorization"))
		if err != nil {
			respondWithOAuth2Error(c, http.StatusUnauthorized, "invalid_request", err.Error())
			return
		}
		if tokenString == "" {
			respondWithOAuth2Error(c, http.StatusUnauthorized, "authorization_required",
				"Missing Authorization header. A valid Bearer token is required.")
			return
		}

		if err := authenticate(c, tokenString, jwtSecret); err != nil {
			respondWithOAuth2Error(c, http.StatusUnauthorized, "invalid_token", err.Error())
			return
		}
		c.Next()
	}
}

// OptionalAuth identifies the caller when a valid Bearer token is present and lets
// anonymous requests through. An invalid token is treated as anonymous.
func OptionalAuth(jwtSecret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := bearerToken(c.GetHeader("Authorization"))
		if err == nil && tokenString != "" {
			if err := authenticate(c, tokenString, jwtSecret); err != nil {
				log.WithError(err).Debug("Ignoring invalid bearer token on public route")
				c.Set("userID", uint(0))
			}
		}
		c.Next()
	}
}

// CurrentUserID returns the authenticated user, if any
func CurrentUserID(c *gin.Context) (uint, bool) {
	userID := c.GetUint("userID")
	return userID, userID != 0
}

// bearerToken extracts the token of an RFC 6750 Authorization header.
// An empty header yields an empty token and no error.
func bearerToken(header string) (string, error) {
	if header == "" {
		return "", nil
	}
	if !strings.HasPrefix(header, "Bearer ") {
		return "", fmt.Errorf("Authorization header must use Bearer scheme. Format: 'Bearer <token>'")
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if token == "" {
		return "", fmt.Errorf("Bearer token is empty")
	}
	return token, nil
}

func authenticate(c *gin.Context, tokenString string, jwtSecret []byte) error {
	claims, err := parseToken(tokenString, jwtSecret)
	if err != nil {
		return err
	}
	return setClaims(c, claims)
}

// respondWithOAuth2Error responds with RFC 6750 compliant error format
func respondWithOAuth2Error(c *gin.Context, status int, errorCode, description string) {
	c.JSON(status, gin.H{
		"error":             errorCode,
		"error_description": description,
	})
	c.Abort()
}

// tokenClaims are the claims carried by login tokens and operator client tokens
type tokenClaims struct {
	UID   string `json:"uid"`
	Role  string `json:"role"`
	Scope string `json:"scope,omitempty"`
	jwt.RegisteredClaims
}

var allowedRoles = map[string]bool{
	"admin": true,
	"user":  true,
}

// tokenParser only accepts HMAC signed tokens and rejects tokens issued in the future.
// exp and nbf are checked by the parser when present.
var tokenParser = jwt.NewParser(
	jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
	jwt.WithIssuedAt(),
)

func parseToken(tokenString string, jwtSecret []byte) (*tokenClaims, error) {
	claims := &tokenClaims{}
	_, err := tokenParser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("token parsing failed: %w", err)
	}
	return claims, nil
}

// setClaims stores userID, userRole and, for operator client tokens, clientID and scopes
func setClaims(c *gin.Context, claims *tokenClaims) error {
	if claims.UID == "" {
		return fmt.Errorf("token missing required 'uid' claim. This token is not valid for this API")
	}
	userID, err := strconv.ParseUint(claims.UID, 10, 32)
	if err != nil || userID == 0 {
		return fmt.Errorf("invalid uid claim: must be a positive numeric string, got: %s", claims.UID)
	}

	if claims.Role == "" {
		return fmt.Errorf("token missing required 'role' claim. Tokens must explicitly specify user roles")
	}
	if !allowedRoles[claims.Role] {
		return fmt.Errorf("invalid role '%s'. Allowed roles: admin, user", claims.Role)
	}

	c.Set("userID", uint(userID))
	c.Set("userRole", claims.Role)

	authType := "jwt"
	if len(claims.Audience) > 0 && claims.Audience[0] != "" {
		c.Set("clientID", claims.Audience[0])
		authType = "oauth2"
	}
	if claims.Scope != "" {
		c.Set("scopes", claims.Scope)
	}
	c.Set("auth_type", authType)
	return nil
}
