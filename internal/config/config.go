package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	Environment string

	// Database
	DatabaseURL    string
	MigrateOnStart bool

	// Redis
	RedisURL string

	// Server
	Port        string
	FrontendURL string

	// Planner
	PlannerPolicy        string
	PlannerDeltaStrategy string // "simulated" (default) or "constant"
	CandidateTimeoutMS   int
	PlannerParallel      bool
	PlannerMaxWorkers    int
	CalibrationFile      string
	PlanCacheTTLSeconds  int

	// Sheet geometry
	SheetTeeY        float64
	SheetBackY       float64
	SheetFrontY      float64
	SheetHouseRadius float64
	SheetStoneRadius float64
	SheetMaxSpeed    float64

	// Security
	JWTSecret       string
	TokenTTLMinutes int
	AuthRequired    bool
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		// Environment
		Environment: getEnv("APP_ENV", "development"),

		// Database
		DatabaseURL:    getEnv("DATABASE_URL", "postgres://localhost:5432/curlfighter?sslmode=disable"),
		MigrateOnStart: getEnvBool("MIGRATE_ON_START", false),

		// Redis
		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),

		// Server
		Port:        getEnv("APP_PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		// Planner
		PlannerPolicy:        getEnv("PLANNER_POLICY", "search"),
		PlannerDeltaStrategy: getEnv("PLANNER_DELTA_STRATEGY", "simulated"),
		CandidateTimeoutMS:   getEnvInt("PLANNER_CANDIDATE_TIMEOUT_MS", 2000),
		PlannerParallel:      getEnvBool("PLANNER_PARALLEL", false),
		PlannerMaxWorkers:    getEnvInt("PLANNER_MAX_WORKERS", 0),
		CalibrationFile:      getEnv("CALIBRATION_FILE", ""),
		PlanCacheTTLSeconds:  getEnvInt("PLAN_CACHE_TTL_SECONDS", 300),

		// Sheet geometry (metres from the delivery point)
		SheetTeeY:        getEnvFloat("SHEET_TEE_Y", 38.405),
		SheetBackY:       getEnvFloat("SHEET_BACK_Y", 40.234),
		SheetFrontY:      getEnvFloat("SHEET_FRONT_Y", 36.576),
		SheetHouseRadius: getEnvFloat("SHEET_HOUSE_RADIUS", 0.915),
		SheetStoneRadius: getEnvFloat("SHEET_STONE_RADIUS", 0.145),
		SheetMaxSpeed:    getEnvFloat("SHEET_MAX_SPEED", 4.0),

		// Security
		JWTSecret:       getEnv("JWT_SECRET", "change-me-in-production"),
		TokenTTLMinutes: getEnvInt("TOKEN_TTL_MINUTES", 24*60),
		AuthRequired:    getEnvBool("AUTH_REQUIRED", false),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return defaultValue
}
