package reasoner

import (
	"context"
	"errors"
	"fmt"

	einomodel "github.com/cloudwego/eino/components/model"
	einotool "github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/flow/agent/react"
	"github.com/cloudwego/eino/schema"
	contractx "github.com/tanpawarit/Chative-Hotel-Concierge/agent/contract"
)

var _ contractx.Agent = (*Reasoner)(nil)

// Reasoner runs a ReAct loop over the hotel tools. Tool selection happens
// entirely inside the eino agent.
type Reasoner struct {
	runner compose.Runnable[[]contractx.Message, string]
}

func New(
	ctx context.Context,
	chatModel einomodel.ToolCallingChatModel,
	tools []einotool.BaseTool,
	maxSteps int,
) (*Reasoner, error) {
	if chatModel == nil {
		return nil, errors.New("chat model is required")
	}

	agent, err := react.NewAgent(ctx, &react.AgentConfig{
		ToolCallingModel: chatModel,
		ToolsConfig: compose.ToolsNodeConfig{
			Tools: tools,
		},
		MaxStep: maxSteps,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create react agent: %v", contractx.ErrModelInvoke, err)
	}

	runner, err := compileReasonerGraph(ctx, agent)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err)
	}
	return &Reasoner{runner: runner}, nil
}

func (r *Reasoner) Generate(ctx context.Context, history []contractx.Message) (string, error) {
	return r.runner.Invoke(ctx, history)
}

func toSchemaMessages(history []contractx.Message) ([]*schema.Message, error) {
	if len(history) == 0 {
		return nil, fmt.Errorf("%w: history is empty", contractx.ErrValidation)
	}

	out := make([]*schema.Message, 0, len(history))
	for i, m := range history {
		var role schema.RoleType
		switch m.Role {
		case contractx.RoleSystem:
			role = schema.System
		case contractx.RoleUser:
			role = schema.User
		case contractx.RoleAssistant:
			role = schema.Assistant
		default:
			return nil, fmt.Errorf("%w: message %d has role %q", contractx.ErrValidation, i, m.Role)
		}
		out = append(out, &schema.Message{Role: role, Content: m.Content})
	}
	return out, nil
}
