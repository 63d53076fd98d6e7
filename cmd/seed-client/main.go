package main

import (
	"log"
	"os"

	"github.com/curlfighter/backend/internal/clients"
	"github.com/curlfighter/backend/internal/config"
	"github.com/curlfighter/backend/internal/database"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	clientID := os.Getenv("CLIENT_ID")
	if clientID == "" {
		clientID = "match-client"
		log.Printf("Using default client id: %s", clientID)
	}

	secret := os.Getenv("CLIENT_SECRET")
	if secret == "" {
		secret = "change-me-in-production"
		log.Printf("WARNING: Using default client secret. Set CLIENT_SECRET env var in production!")
	}

	displayName := os.Getenv("CLIENT_NAME")
	if displayName == "" {
		displayName = "Match client"
	}

	if err := clients.CreateClient(db, clientID, displayName, secret); err != nil {
		log.Fatalf("Failed to create api client: %v", err)
	}

	reportClient(log.Default(), clientID, displayName)
}

// reportClient prints how to use the seeded client. The secret is never
// echoed; it stays wherever CLIENT_SECRET was set.
func reportClient(l *log.Logger, clientID, displayName string) {
	l.Printf("✓ API client created/updated successfully")
	l.Printf("  Client ID: %s", clientID)
	l.Printf("  Display Name: %s", displayName)
	l.Println("\nRequest a token with POST /api/v1/auth/token using:")
	l.Printf("  client_id: %s", clientID)
	l.Printf("  client_secret: the CLIENT_SECRET value used for this run")
}
