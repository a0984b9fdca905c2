package stations

import (
	"context"
	"log"
	"time"

	"github.com/example/mediachat/internal/ports"
)

// S2Execute hands a canonical instruction to the planner and collects its
// answer. Bridge failures degrade to an empty answer; the orchestrator
// substitutes the apology text.
type S2Execute struct {
	planner ports.Planner
}

func NewS2Execute(planner ports.Planner) *S2Execute {
	return &S2Execute{planner: planner}
}

func (s *S2Execute) Run(ctx context.Context, instruction string) string {
	start := time.Now()
	log.Printf("[S2][START]")

	answer, err := s.planner.Ask(ctx, instruction)
	if err != nil {
		log.Printf("[S2][ERR] dur=%s err=%v", time.Since(start), err)
		return ""
	}

	log.Printf("[S2][OK] dur=%s", time.Since(start))
	return answer
}
