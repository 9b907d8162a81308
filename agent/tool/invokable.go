package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	einotool "github.com/cloudwego/eino/components/tool"
	"github.com/cockroachdb/errors"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Hotel-Concierge/agent/contract"
	hotelapix "github.com/tanpawarit/Chative-Hotel-Concierge/agent/hotelapi"
)

var _ einotool.InvokableTool = (*invokable[struct{}])(nil)

// invokable adapts a typed function to eino's InvokableTool. Failures are
// reported back to the model as JSON so the agent loop keeps going.
type invokable[T any] struct {
	info *schema.ToolInfo
	run  func(ctx context.Context, in T) (any, error)
}

func newInvokable[T any](info *schema.ToolInfo, run func(ctx context.Context, in T) (any, error)) *invokable[T] {
	return &invokable[T]{info: info, run: run}
}

func (t *invokable[T]) Info(context.Context) (*schema.ToolInfo, error) {
	return t.info, nil
}

func (t *invokable[T]) InvokableRun(ctx context.Context, argumentsInJSON string, _ ...einotool.Option) (string, error) {
	start := time.Now()
	logger := log.Ctx(ctx).With().Str("tool", t.info.Name).Logger()

	var in T
	if raw := strings.TrimSpace(argumentsInJSON); raw != "" && raw != "null" {
		if err := json.Unmarshal([]byte(raw), &in); err != nil {
			logger.Warn().Err(err).Str("args", raw).Msg("invalid tool arguments")
			return errorResult(fmt.Sprintf("invalid arguments for %s", t.info.Name), err.Error()), nil
		}
	}

	out, err := t.run(ctx, in)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", errors.WithStack(fmt.Errorf("%w: %s: %w", contractx.ErrToolCall, t.info.Name, ctxErr))
		}
		logger.Warn().Err(err).Dur("elapsed", time.Since(start)).Msg("tool call failed")
		return describeError(t.info.Name, err), nil
	}

	encoded, err := json.Marshal(out)
	if err != nil {
		return "", errors.WithStack(fmt.Errorf("%w: marshal %s output: %v", contractx.ErrToolCall, t.info.Name, err))
	}
	logger.Debug().Dur("elapsed", time.Since(start)).Msg("tool call done")
	return string(encoded), nil
}

type errorPayload struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func errorResult(message, details string) string {
	encoded, _ := json.Marshal(errorPayload{Error: message, Details: details})
	return string(encoded)
}

func describeError(toolName string, err error) string {
	var apiErr *hotelapix.APIError
	if errors.As(err, &apiErr) {
		return errorResult(fmt.Sprintf("Failed to %s: %d", apiErr.Op, apiErr.Status), apiErr.Body)
	}
	return errorResult(fmt.Sprintf("%s failed", toolName), err.Error())
}
