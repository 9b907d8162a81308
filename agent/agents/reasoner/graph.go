package reasoner

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/flow/agent/react"
	"github.com/cloudwego/eino/schema"
	contractx "github.com/tanpawarit/Chative-Hotel-Concierge/agent/contract"
)

func compileReasonerGraph(
	ctx context.Context,
	agent *react.Agent,
) (compose.Runnable[[]contractx.Message, string], error) {
	graph := compose.NewGraph[[]contractx.Message, string]()

	if err := graph.AddLambdaNode("to_schema",
		compose.InvokableLambda(func(ctx context.Context, in []contractx.Message) ([]*schema.Message, error) {
			return toSchemaMessages(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node to_schema: %w", err)
	}

	if err := graph.AddLambdaNode("react",
		compose.InvokableLambda(func(ctx context.Context, in []*schema.Message) (*schema.Message, error) {
			out, err := agent.Generate(ctx, in)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err)
			}
			return out, nil
		}),
	); err != nil {
		return nil, fmt.Errorf("add node react: %w", err)
	}

	if err := graph.AddLambdaNode("extract_reply",
		compose.InvokableLambda(func(ctx context.Context, in *schema.Message) (string, error) {
			if in == nil {
				return "", fmt.Errorf("%w: agent returned no message", contractx.ErrModelInvoke)
			}
			reply := strings.TrimSpace(in.Content)
			if reply == "" {
				return "", fmt.Errorf("%w: agent returned an empty reply", contractx.ErrModelInvoke)
			}
			return reply, nil
		}),
	); err != nil {
		return nil, fmt.Errorf("add node extract_reply: %w", err)
	}

	edges := [][2]string{
		{compose.START, "to_schema"},
		{"to_schema", "react"},
		{"react", "extract_reply"},
		{"extract_reply", compose.END},
	}
	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("reasoner.react"))
	if err != nil {
		return nil, fmt.Errorf("compile reasoner graph: %w", err)
	}
	return runner, nil
}
