package clients

import (
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/curlfighter/backend/internal/models"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrClientNotFound    = errors.New("api client not found")
	ErrClientDisabled    = errors.New("api client disabled")
	ErrInvalidCredential = errors.New("invalid client secret")
)

// GetClient retrieves an API client by id
func GetClient(db *sqlx.DB, clientID string) (*models.APIClient, error) {
	var client models.APIClient
	err := db.Get(&client, `SELECT client_id, display_name, secret_hash, is_active, created_at, updated_at FROM api_clients WHERE client_id=$1`, clientID)
	if err != nil {
		return nil, err
	}
	return &client, nil
}

// VerifySecret checks a plain secret against the stored bcrypt hash
func VerifySecret(hashedSecret, plainSecret string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedSecret), []byte(plainSecret))
	return err == nil
}

// HashSecret returns the bcrypt hash stored for a client secret.
func HashSecret(plainSecret string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plainSecret), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash secret: %w", err)
	}
	return string(hashed), nil
}

// CreateClient creates or updates an API client (used for seeding)
func CreateClient(db *sqlx.DB, clientID, displayName, plainSecret string) error {
	hashed, err := HashSecret(plainSecret, bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		INSERT INTO api_clients (client_id, display_name, secret_hash, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, TRUE, NOW(), NOW())
		ON CONFLICT (client_id) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			secret_hash = EXCLUDED.secret_hash,
			is_active = TRUE,
			updated_at = NOW()
	`, clientID, displayName, hashed)

	return err
}

// ValidateClientCredentials looks the client up and checks its secret.
func ValidateClientCredentials(db *sqlx.DB, clientID, secret string) (*models.APIClient, error) {
	client, err := GetClient(db, clientID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Printf("[AUTH] no api client %s", clientID)
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !client.IsActive {
		return nil, ErrClientDisabled
	}
	if !VerifySecret(client.SecretHash, secret) {
		log.Printf("[AUTH] secret verification failed for client %s", clientID)
		return nil, ErrInvalidCredential
	}
	return client, nil
}
