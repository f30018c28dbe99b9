// Package conversation drives one documentation attempt: agents take turns
// on a shared history until the verifier signs off.
package conversation

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	contractx "github.com/tanpawarit/clinical-scribe/agent/contract"
	"github.com/tanpawarit/clinical-scribe/agent/policy"
)

const DefaultMaxTurns = 10

type Config struct {
	MaxTurns int `envconfig:"MAX_TURNS" split_words:"true" default:"10"`
}

type Orchestrator struct {
	registry contractx.AgentRegistry
	maxTurns int
}

func NewOrchestrator(registry contractx.AgentRegistry, cfg Config) (*Orchestrator, error) {
	if registry == nil {
		return nil, errors.New("agent registry is required")
	}
	maxTurns := cfg.MaxTurns
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	return &Orchestrator{registry: registry, maxTurns: maxTurns}, nil
}

// Run opens a fresh history with seed and lets agents act until termination,
// until no agent is eligible, or until the turn bound is reached. The seed is
// not part of the returned turns. On error the turns produced so far are
// returned alongside it.
func (o *Orchestrator) Run(ctx context.Context, sess contractx.Session, seed string) ([]contractx.Turn, error) {
	logger := zerolog.Ctx(ctx)
	defs := o.registry.Definitions()

	history := []contractx.Turn{{Author: contractx.AuthorSystem, Content: seed}}
	for len(history)-1 < o.maxTurns {
		if err := ctx.Err(); err != nil {
			return agentTurns(history), err
		}

		def, ok := policy.SelectNext(defs, history)
		if !ok {
			logger.Debug().Msg("no eligible agent, stopping")
			return agentTurns(history), nil
		}
		agent, ok := o.registry.Agent(def.Name)
		if !ok {
			return agentTurns(history), fmt.Errorf("%w: agent=%s is not registered", contractx.ErrValidation, def.Name)
		}

		resp, err := agent.Act(ctx, contractx.AgentRequest{
			VisitID:  sess.VisitID,
			ThreadID: sess.ThreadID,
			History:  append([]contractx.Turn(nil), history...),
		})
		if err != nil {
			return agentTurns(history), fmt.Errorf("%s turn %d: %w", def.Name, len(history), err)
		}

		turn := contractx.Turn{
			Author:  def.Name.String(),
			Content: resp.Content,
			Ordinal: len(history),
		}
		history = append(history, turn)
		logger.Info().
			Str("agent", turn.Author).
			Int("ordinal", turn.Ordinal).
			Int("tool_calls", len(resp.ToolResults)).
			Msg("agent turn appended")

		if policy.ShouldTerminate(history) {
			return agentTurns(history), nil
		}
	}

	logger.Warn().Int("max_turns", o.maxTurns).Msg("conversation stopped at turn limit without verification sign-off")
	return agentTurns(history), nil
}

func agentTurns(history []contractx.Turn) []contractx.Turn {
	out := make([]contractx.Turn, 0, len(history))
	for _, t := range history {
		if t.Author == contractx.AuthorSystem {
			continue
		}
		out = append(out, t)
	}
	return out
}
