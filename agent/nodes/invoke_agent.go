package conciergenode

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Hotel-Concierge/agent/contract"
)

func InvokeAgent(
	ctx context.Context,
	in *GraphState,
	agent contractx.Agent,
	retry RetryPolicy,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	reply, attempts, err := retry.Run(ctx, in.SessionID, func(ctx context.Context) (string, error) {
		return agent.Generate(ctx, in.Prompt)
	})
	if err != nil {
		return nil, err
	}

	in.Message = reply
	in.Attempts = attempts
	return in, nil
}

// Run calls fn until it succeeds or attempts run out. Exhaustion is logged
// and the last result is returned without an error; only context
// cancellation surfaces.
func (p RetryPolicy) Run(
	ctx context.Context,
	sessionID string,
	fn func(context.Context) (string, error),
) (string, int, error) {
	p = p.normalized()
	logger := log.Ctx(ctx)

	var (
		last    string
		lastErr error
	)
	for attempt := 1; attempt <= p.Attempts; attempt++ {
		out, err := fn(ctx)
		if err == nil {
			return out, attempt, nil
		}
		last, lastErr = out, err

		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", attempt, ctxErr
		}

		logger.Warn().
			Err(err).
			Str("session_id", sessionID).
			Int("attempt", attempt).
			Int("max_attempts", p.Attempts).
			Msg("agent call failed")

		if attempt == p.Attempts {
			break
		}
		if err := p.Sleep(ctx, p.Delay); err != nil {
			return "", attempt, err
		}
	}

	exhausted := errors.Mark(errors.Wrap(lastErr, contractx.ErrRetriesExhausted.Error()), contractx.ErrRetriesExhausted)
	logger.Error().
		Err(exhausted).
		Str("session_id", sessionID).
		Int("attempts", p.Attempts).
		Msg("giving up on agent call")
	return last, p.Attempts, nil
}
