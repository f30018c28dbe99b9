package clinical

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"
	contractx "github.com/tanpawarit/clinical-scribe/agent/contract"
	toolx "github.com/tanpawarit/clinical-scribe/agent/tool"
)

type agentImpl struct {
	def           contractx.AgentDefinition
	runner        compose.Runnable[map[string]any, *schema.Message]
	tools         contractx.ToolGateway
	maxToolRounds int
}

var _ contractx.Agent = (*agentImpl)(nil)

func newAgent(
	ctx context.Context,
	def contractx.AgentDefinition,
	chatModel einomodel.ToolCallingChatModel,
	tools contractx.ToolGateway,
	maxToolRounds int,
) (*agentImpl, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("%w: chat model is required for agent=%s", contractx.ErrValidation, def.Name)
	}
	if len(def.Tools) > 0 && tools == nil {
		return nil, fmt.Errorf("%w: tool gateway is required for agent=%s", contractx.ErrValidation, def.Name)
	}

	var bound einomodel.BaseChatModel = chatModel
	if infos := toolx.Infos(def.Tools...); len(infos) > 0 {
		withTools, err := chatModel.WithTools(infos)
		if err != nil {
			return nil, fmt.Errorf("%w: bind tools for agent=%s: %v", contractx.ErrModelInvoke, def.Name, err)
		}
		bound = withTools
	}

	runner, err := compileAgentGraph(ctx, bound, def.Instructions, "clinical."+strings.ToLower(def.Name.String()))
	if err != nil {
		return nil, fmt.Errorf("%w: compile graph for agent=%s: %v", contractx.ErrModelInvoke, def.Name, err)
	}

	return &agentImpl{
		def:           def,
		runner:        runner,
		tools:         tools,
		maxToolRounds: maxToolRounds,
	}, nil
}

func (a *agentImpl) Definition() contractx.AgentDefinition {
	return a.def
}

// Act runs the model until it answers with text, executing every tool call it
// makes along the way. Tool traffic stays in the local message list; only the
// final text becomes a turn.
func (a *agentImpl) Act(ctx context.Context, req contractx.AgentRequest) (contractx.AgentResponse, error) {
	if len(req.History) == 0 {
		return contractx.AgentResponse{}, fmt.Errorf("%w: history is empty", contractx.ErrValidation)
	}

	logger := zerolog.Ctx(ctx).With().Str("agent", a.def.Name.String()).Logger()
	messages := toMessages(a.def.Name, req.History)

	var results []contractx.ToolResult
	for round := 0; ; round++ {
		msg, err := a.runner.Invoke(ctx, map[string]any{historyKey: messages})
		if err != nil {
			return contractx.AgentResponse{}, fmt.Errorf("%w: %s invoke: %w", contractx.ErrModelInvoke, a.def.Name, err)
		}
		if msg == nil {
			return contractx.AgentResponse{}, fmt.Errorf("%w: %s returned no message", contractx.ErrSchemaViolation, a.def.Name)
		}

		if len(msg.ToolCalls) == 0 {
			content := strings.TrimSpace(msg.Content)
			if content == "" {
				return contractx.AgentResponse{}, fmt.Errorf("%w: %s returned empty content", contractx.ErrSchemaViolation, a.def.Name)
			}
			return contractx.AgentResponse{Content: content, ToolResults: results}, nil
		}

		if round >= a.maxToolRounds {
			return contractx.AgentResponse{}, fmt.Errorf("%w: %s exceeded %d tool rounds", contractx.ErrSchemaViolation, a.def.Name, a.maxToolRounds)
		}

		messages = append(messages, msg)
		for _, call := range msg.ToolCalls {
			out, err := a.callTool(ctx, call)
			if err != nil {
				return contractx.AgentResponse{}, err
			}
			logger.Debug().Str("tool", call.Function.Name).Int("round", round).Msg("tool call resolved")
			results = append(results, contractx.ToolResult{Tool: call.Function.Name, Output: out})
			messages = append(messages, schema.ToolMessage(out, call.ID))
		}
	}
}

func (a *agentImpl) callTool(ctx context.Context, call schema.ToolCall) (string, error) {
	req, err := toToolRequest(call)
	if err != nil {
		return fmt.Sprintf("Error: %v", err), nil
	}
	if !a.def.Allows(req.Tool) {
		zerolog.Ctx(ctx).Warn().
			Str("agent", a.def.Name.String()).
			Str("tool", req.Tool).
			Msg("model requested a tool outside the agent capabilities")
		return toolx.Unavailable(req.Tool, a.def.Name.String()).Output, nil
	}

	res, err := a.tools.Execute(ctx, req)
	if err != nil {
		return "", err
	}
	return res.Output, nil
}

func toToolRequest(call schema.ToolCall) (contractx.ToolRequest, error) {
	tool := strings.TrimSpace(call.Function.Name)
	if tool == "" {
		return contractx.ToolRequest{}, fmt.Errorf("tool call name is empty")
	}

	args := map[string]any{}
	rawArgs := strings.TrimSpace(call.Function.Arguments)
	if rawArgs != "" {
		if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
			return contractx.ToolRequest{}, fmt.Errorf("invalid arguments for tool=%s: %v", tool, err)
		}
	}

	return contractx.ToolRequest{Tool: tool, Args: args}, nil
}

// toMessages renders the shared history from the point of view of one agent:
// its own turns are assistant messages, everyone else speaks as a named user.
func toMessages(self contractx.AgentName, history []contractx.Turn) []*schema.Message {
	out := make([]*schema.Message, 0, len(history))
	for _, turn := range history {
		switch turn.Author {
		case contractx.AuthorSystem:
			out = append(out, schema.UserMessage(turn.Content))
		case self.String():
			out = append(out, schema.AssistantMessage(turn.Content, nil))
		default:
			msg := schema.UserMessage(turn.Author + ": " + turn.Content)
			msg.Name = turn.Author
			out = append(out, msg)
		}
	}
	return out
}
