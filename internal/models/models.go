package models

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx/types"
)

// ShotPlan is one planner decision as stored in shot_plans.
type ShotPlan struct {
	ID                 int64           `db:"id" json:"id"`
	MatchToken         string          `db:"match_token" json:"match_token"`
	EndNumber          int             `db:"end_number" json:"end"`
	ShotNumber         int             `db:"shot_number" json:"shot"`
	ActingTeam         int             `db:"acting_team" json:"acting_team"`
	Policy             string          `db:"policy" json:"policy"`
	CalibrationVersion string          `db:"calibration_version" json:"calibration_version"`
	BoardState         string          `db:"board_state" json:"board_state"`
	VX                 float64         `db:"vx" json:"vx"`
	VY                 float64         `db:"vy" json:"vy"`
	Spin               string          `db:"spin" json:"spin"`
	Score              sql.NullFloat64 `db:"score" json:"-"`
	Fallback           bool            `db:"fallback" json:"fallback"`
	Board              types.JSONText  `db:"board" json:"board"`
	Candidate          types.JSONText  `db:"candidate" json:"candidate"`
	Evaluations        types.JSONText  `db:"evaluations" json:"evaluations"`
	DurationMS         int             `db:"duration_ms" json:"duration_ms"`
	CreatedAt          time.Time       `db:"created_at" json:"created_at"`
}

// APIClient is a match client allowed to request plans.
type APIClient struct {
	ClientID    string    `db:"client_id" json:"client_id"`
	DisplayName string    `db:"display_name" json:"display_name"`
	SecretHash  string    `db:"secret_hash" json:"-"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
