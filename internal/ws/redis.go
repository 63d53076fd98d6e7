package ws

import (
	"context"
	"encoding/json"
	"log"

	"github.com/curlfighter/backend/internal/planner"
	rdbpkg "github.com/curlfighter/backend/internal/redis"
	"github.com/redis/go-redis/v9"
)

var rdbClient *redis.Client

// SetRedisClient enables cross-instance plan fan-out.
func SetRedisClient(r *redis.Client) {
	rdbClient = r
}

func eventsEnabled() bool {
	return rdbClient != nil
}

// StartPlanEventSubscriber rebroadcasts plan_events to the sockets of the
// matching room. The socket that asked for the plan already has it as its
// "shot" reply and is skipped.
func StartPlanEventSubscriber(ctx context.Context) {
	if rdbClient == nil {
		log.Println("[WS] Redis client not set; plan event subscriber not started")
		return
	}

	pubsub := rdbClient.Subscribe(ctx, rdbpkg.PlanEventsChannel)
	ch := pubsub.Channel()
	go func() {
		defer pubsub.Close()
		log.Printf("[WS] %s subscriber started", rdbpkg.PlanEventsChannel)
		for msg := range ch {
			dispatchPlanEvent(MatchHub, []byte(msg.Payload))
		}
	}()
}

func dispatchPlanEvent(h *Hub, payload []byte) {
	var event planner.PlanEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		log.Printf("[WS] invalid plan event payload: %v", err)
		return
	}
	if event.Type != "plan" || event.MatchToken == "" || event.Plan == nil {
		log.Printf("[WS] ignoring event type=%s match=%s", event.Type, event.MatchToken)
		return
	}
	if h.RoomSize(event.MatchToken) == 0 {
		return
	}
	h.BroadcastToMatch(event.MatchToken, planMessage(event.Plan), event.Origin)
}
