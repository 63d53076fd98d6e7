package planner

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/curlfighter/backend/internal/config"
	"github.com/curlfighter/backend/internal/curling"
	rdbpkg "github.com/curlfighter/backend/internal/redis"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

// Service runs the planner for match clients and keeps the plan history.
// db and rdb are optional; without them plans are neither stored, cached nor
// published.
type Service struct {
	engine   *curling.Engine
	sim      curling.Simulator
	db       *sqlx.DB
	rdb      *redis.Client
	cacheTTL time.Duration
}

// PlanEvent is published on the plan_events channel after every turn.
// Origin identifies the requesting socket, if any.
type PlanEvent struct {
	Type       string   `json:"type"`
	MatchToken string   `json:"match_token"`
	Origin     string   `json:"origin,omitempty"`
	Plan       *Summary `json:"plan"`
}

type originKey struct{}

// WithOrigin tags ctx with the ID of the connection a plan is requested for,
// so listeners can skip the requester.
func WithOrigin(ctx context.Context, origin string) context.Context {
	return context.WithValue(ctx, originKey{}, origin)
}

func originFrom(ctx context.Context) string {
	origin, _ := ctx.Value(originKey{}).(string)
	return origin
}

// New builds the engine from cfg and wraps it in a Service.
func New(db *sqlx.DB, rdb *redis.Client, cfg *config.Config) (*Service, error) {
	engine, sim, err := NewEngine(cfg)
	if err != nil {
		return nil, err
	}
	return NewService(engine, sim, db, rdb, time.Duration(cfg.PlanCacheTTLSeconds)*time.Second), nil
}

// NewService wraps an already configured engine.
func NewService(engine *curling.Engine, sim curling.Simulator, db *sqlx.DB, rdb *redis.Client, cacheTTL time.Duration) *Service {
	return &Service{engine: engine, sim: sim, db: db, rdb: rdb, cacheTTL: cacheTTL}
}

// Engine returns the underlying planner.
func (s *Service) Engine() *curling.Engine {
	return s.engine
}

// PlanTurn decides the next delivery for the board, records it under the
// match token and announces it to other listeners.
func (s *Service) PlanTurn(ctx context.Context, matchToken string, b *curling.Board) (*Summary, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	started := time.Now()
	version := s.engine.Model().Calibration().Version

	key, err := s.cacheKey(b)
	if err != nil {
		return nil, err
	}

	summary := s.cachedPlan(ctx, key)
	if summary == nil {
		plan, err := s.engine.Plan(ctx, b)
		if err != nil {
			return nil, err
		}
		summary = summarize(b, plan, version)
		s.storeCache(ctx, key, summary)
	}
	summary.MatchToken = matchToken
	summary.DurationMS = time.Since(started).Milliseconds()

	if err := s.RecordPlan(ctx, b, summary); err != nil {
		// History is best effort; the match still gets its shot.
		log.Printf("[DB] failed to record plan for match %s end=%d shot=%d: %v", matchToken, b.End, b.Shot, err)
	}
	s.publish(ctx, summary)

	log.Printf("[PLANNER] match=%s end=%d shot=%d state=%s velocity=(%.4f, %.4f, %s) fallback=%v cached=%v",
		matchToken, b.End, b.Shot, summary.State, summary.Velocity.VX, summary.Velocity.VY, summary.Velocity.Spin, summary.Fallback, summary.Cached)
	return summary, nil
}

// Estimate exposes the velocity model directly.
func (s *Service) Estimate(ctx context.Context, target curling.Vec2, speed float64, spin curling.Spin) (curling.LaunchVelocity, error) {
	return s.engine.Model().Estimate(ctx, target, speed, spin)
}

// SimulationSummary is the settled board after one delivery.
type SimulationSummary struct {
	Positions [curling.NumStones]curling.Vec2 `json:"positions"`
	Valid     bool                            `json:"valid"`
	Score     *float64                        `json:"score"`
}

// Simulate delivers v from the board's shooter slot and scores the result
// for the acting team.
func (s *Service) Simulate(ctx context.Context, b *curling.Board, v curling.LaunchVelocity) (*SimulationSummary, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if s.sim == nil {
		return nil, fmt.Errorf("%w: no simulator configured", curling.ErrSimulationFailure)
	}
	res, err := s.sim.Simulate(ctx, curling.SimulationRequest{
		Positions: b.Positions(),
		Shooter:   b.Shooter(),
		Velocity:  v,
	})
	if err != nil {
		return nil, err
	}
	out := &SimulationSummary{Positions: res.Positions, Valid: res.Valid}
	if res.Valid {
		score := curling.HouseScore(res.Positions, b.ActingTeam, s.engine.Options().Geometry)
		out.Score = &score
	}
	return out, nil
}

func (s *Service) cacheKey(b *curling.Board) (string, error) {
	data, err := json.Marshal(b)
	if err != nil {
		return "", fmt.Errorf("failed to encode board: %w", err)
	}
	sum := sha256.Sum256(data)
	return fmt.Sprintf("plan:%s:%s:%s", s.engine.Options().Policy, s.engine.Model().Calibration().Version, hex.EncodeToString(sum[:])), nil
}

func (s *Service) cachedPlan(ctx context.Context, key string) *Summary {
	if s.rdb == nil || s.cacheTTL <= 0 {
		return nil
	}
	data, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("[CACHE] get %s failed: %v", key, err)
		}
		return nil
	}
	var summary Summary
	if err := json.Unmarshal(data, &summary); err != nil {
		log.Printf("[CACHE] dropping unreadable entry %s: %v", key, err)
		s.rdb.Del(ctx, key)
		return nil
	}
	summary.ID = 0
	summary.Cached = true
	return &summary
}

func (s *Service) storeCache(ctx context.Context, key string, summary *Summary) {
	if s.rdb == nil || s.cacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(summary)
	if err != nil {
		log.Printf("[CACHE] failed to encode plan: %v", err)
		return
	}
	if err := s.rdb.SetEx(ctx, key, data, s.cacheTTL).Err(); err != nil {
		log.Printf("[CACHE] set %s failed: %v", key, err)
	}
}

func (s *Service) publish(ctx context.Context, summary *Summary) {
	if s.rdb == nil {
		return
	}
	data, err := json.Marshal(PlanEvent{
		Type:       "plan",
		MatchToken: summary.MatchToken,
		Origin:     originFrom(ctx),
		Plan:       summary,
	})
	if err != nil {
		log.Printf("[PLANNER] failed to encode plan event: %v", err)
		return
	}
	if err := s.rdb.Publish(ctx, rdbpkg.PlanEventsChannel, data).Err(); err != nil {
		log.Printf("[PLANNER] publish to %s failed: %v", rdbpkg.PlanEventsChannel, err)
	}
}
