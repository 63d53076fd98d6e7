package planner

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/curlfighter/backend/internal/curling"
	"github.com/curlfighter/backend/internal/models"
	"github.com/jmoiron/sqlx/types"
)

var (
	ErrPlanNotFound    = errors.New("plan not found")
	ErrHistoryDisabled = errors.New("plan history not configured")
)

const maxHistoryLimit = 200

// HistoryEntry is a stored plan with its nullable score flattened for JSON.
type HistoryEntry struct {
	models.ShotPlan
	Score *float64 `json:"score"`
}

func toEntry(p models.ShotPlan) HistoryEntry {
	e := HistoryEntry{ShotPlan: p}
	if p.Score.Valid {
		v := p.Score.Float64
		e.Score = &v
	}
	return e
}

// RecordPlan stores one decision and sets summary.ID. It is a no-op without a
// database.
func (s *Service) RecordPlan(ctx context.Context, b *curling.Board, summary *Summary) error {
	if s.db == nil {
		return nil
	}

	board, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("failed to encode board: %w", err)
	}
	candidate, err := json.Marshal(summary.Candidate)
	if err != nil {
		return fmt.Errorf("failed to encode candidate: %w", err)
	}
	evals := summary.Evaluations
	if evals == nil {
		evals = []EvaluationSummary{}
	}
	evaluations, err := json.Marshal(evals)
	if err != nil {
		return fmt.Errorf("failed to encode evaluations: %w", err)
	}

	var score sql.NullFloat64
	if summary.Score != nil {
		score = sql.NullFloat64{Float64: *summary.Score, Valid: true}
	}

	row := s.db.QueryRowxContext(ctx, `
		INSERT INTO shot_plans (match_token, end_number, shot_number, acting_team, policy, calibration_version,
			board_state, vx, vy, spin, score, fallback, board, candidate, evaluations, duration_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, NOW())
		RETURNING id
	`, summary.MatchToken, summary.End, summary.Shot, int(summary.ActingTeam), string(summary.Policy), summary.CalibrationVersion,
		string(summary.State), summary.Velocity.VX, summary.Velocity.VY, summary.Velocity.Spin.String(), score, summary.Fallback,
		types.JSONText(board), types.JSONText(candidate), types.JSONText(evaluations), summary.DurationMS)

	return row.Scan(&summary.ID)
}

// ListPlans returns the most recent plans for a match, newest first.
func (s *Service) ListPlans(ctx context.Context, matchToken string, limit int) ([]HistoryEntry, error) {
	if s.db == nil {
		return nil, ErrHistoryDisabled
	}
	if limit <= 0 || limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	var plans []models.ShotPlan
	err := s.db.SelectContext(ctx, &plans, `
		SELECT id, match_token, end_number, shot_number, acting_team, policy, calibration_version, board_state,
			vx, vy, spin, score, fallback, board, candidate, evaluations, duration_ms, created_at
		FROM shot_plans
		WHERE match_token = $1
		ORDER BY id DESC
		LIMIT $2
	`, matchToken, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]HistoryEntry, 0, len(plans))
	for _, p := range plans {
		entries = append(entries, toEntry(p))
	}
	return entries, nil
}

// GetPlan loads one stored plan.
func (s *Service) GetPlan(ctx context.Context, id int64) (*HistoryEntry, error) {
	if s.db == nil {
		return nil, ErrHistoryDisabled
	}
	var p models.ShotPlan
	err := s.db.GetContext(ctx, &p, `
		SELECT id, match_token, end_number, shot_number, acting_team, policy, calibration_version, board_state,
			vx, vy, spin, score, fallback, board, candidate, evaluations, duration_ms, created_at
		FROM shot_plans
		WHERE id = $1
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	e := toEntry(p)
	return &e, nil
}
