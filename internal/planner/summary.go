package planner

import (
	"math"

	"github.com/curlfighter/backend/internal/curling"
)

// Summary is the JSON view of a plan returned to match clients.
type Summary struct {
	ID                 int64                  `json:"id,omitempty"`
	MatchToken         string                 `json:"match_token,omitempty"`
	End                int                    `json:"end"`
	Shot               int                    `json:"shot"`
	ActingTeam         curling.Team           `json:"acting_team"`
	Policy             curling.Policy         `json:"policy"`
	State              curling.BoardState     `json:"board_state"`
	CalibrationVersion string                 `json:"calibration_version"`
	Velocity           curling.LaunchVelocity `json:"velocity"`
	Candidate          *curling.ShotCandidate `json:"candidate,omitempty"`
	Score              *float64               `json:"score"`
	Fallback           bool                   `json:"fallback"`
	Cached             bool                   `json:"cached"`
	DurationMS         int64                  `json:"duration_ms"`
	Evaluations        []EvaluationSummary    `json:"evaluations,omitempty"`
}

// EvaluationSummary is one scored candidate. Score is null when the
// candidate was disqualified.
type EvaluationSummary struct {
	Candidate curling.ShotCandidate  `json:"candidate"`
	Velocity  curling.LaunchVelocity `json:"velocity"`
	Score     *float64               `json:"score"`
	Error     string                 `json:"error,omitempty"`
}

func finiteScore(v float64) *float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}

func summarize(b *curling.Board, plan *curling.Plan, version string) *Summary {
	s := &Summary{
		End:                b.End,
		Shot:               b.Shot,
		ActingTeam:         b.ActingTeam,
		Policy:             plan.Policy,
		State:              plan.State,
		CalibrationVersion: version,
		Velocity:           plan.Velocity,
		Candidate:          plan.Candidate,
		Fallback:           plan.Fallback,
	}
	// Lookup policies and fallbacks are never scored.
	if len(plan.Evaluations) > 0 && !plan.Fallback {
		s.Score = finiteScore(plan.Score)
	}
	for _, ev := range plan.Evaluations {
		es := EvaluationSummary{
			Candidate: ev.Candidate,
			Velocity:  ev.Velocity,
			Score:     finiteScore(ev.Score),
		}
		if ev.Err != nil {
			es.Error = ev.Err.Error()
			es.Score = nil
		}
		s.Evaluations = append(s.Evaluations, es)
	}
	return s
}
