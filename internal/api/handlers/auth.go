package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/curlfighter/backend/internal/clients"
	"github.com/curlfighter/backend/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/jmoiron/sqlx"
)

// signClientToken issues an HS256 token carrying the client id.
func signClientToken(cfg *config.Config, clientID string, now time.Time) (string, time.Time, error) {
	exp := now.Add(time.Duration(cfg.TokenTTLMinutes) * time.Minute)
	claims := jwt.MapClaims{
		"client_id": clientID,
		"iat":       now.Unix(),
		"exp":       exp.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(cfg.JWTSecret))
	return signed, exp, err
}

// parseClientToken validates a bearer token and returns its client id.
func parseClientToken(cfg *config.Config, token string) (string, error) {
	parsed, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || !parsed.Valid {
		return "", fmt.Errorf("invalid token: %v", err)
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid claims")
	}
	clientID, _ := claims["client_id"].(string)
	if clientID == "" {
		return "", errors.New("token has no client_id")
	}
	return clientID, nil
}

// IssueToken exchanges client credentials for a bearer JWT.
func IssueToken(db *sqlx.DB, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			ClientID     string `json:"client_id"`
			ClientSecret string `json:"client_secret"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "client_id and client_secret required"})
			return
		}
		clientID := strings.TrimSpace(req.ClientID)
		if clientID == "" || req.ClientSecret == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "client_id and client_secret required"})
			return
		}
		if db == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "client store not configured"})
			return
		}

		client, err := clients.ValidateClientCredentials(db, clientID, req.ClientSecret)
		if err != nil {
			switch {
			case errors.Is(err, clients.ErrClientNotFound), errors.Is(err, clients.ErrInvalidCredential), errors.Is(err, clients.ErrClientDisabled):
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			default:
				log.Printf("[AUTH] credential check failed for %s: %v", clientID, err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			}
			return
		}

		signed, exp, err := signClientToken(cfg, client.ClientID, time.Now())
		if err != nil {
			log.Printf("[AUTH] failed to sign token: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"token":      signed,
			"expires_at": exp.Format(time.RFC3339),
			"client":     gin.H{"id": client.ClientID, "display_name": client.DisplayName},
		})
	}
}

// AuthMiddleware validates the bearer JWT and sets client_id in the context.
// With AUTH_REQUIRED off every request passes.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.AuthRequired {
			c.Next()
			return
		}

		auth := c.GetHeader("Authorization")
		token := strings.TrimPrefix(auth, "Bearer ")
		if auth == "" || token == auth {
			// WebSocket clients that cannot set headers pass the token as a query parameter.
			token = c.Query("access_token")
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		clientID, err := parseClientToken(cfg, token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set("client_id", clientID)
		c.Next()
	}
}
