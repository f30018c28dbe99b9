package clinical

import (
	"context"
	"fmt"

	einomodel "github.com/cloudwego/eino/components/model"
	contractx "github.com/tanpawarit/clinical-scribe/agent/contract"
	llmx "github.com/tanpawarit/clinical-scribe/agent/llm"
	promptx "github.com/tanpawarit/clinical-scribe/agent/prompt"
	toolx "github.com/tanpawarit/clinical-scribe/agent/tool"
)

// roster is the fixed order agents are declared in.
var roster = []contractx.AgentName{
	contractx.AgentTranscription,
	contractx.AgentDocumentation,
	contractx.AgentVerification,
}

type registryImpl struct {
	defs   []contractx.AgentDefinition
	agents map[contractx.AgentName]contractx.Agent
}

func (r *registryImpl) Definitions() []contractx.AgentDefinition {
	out := make([]contractx.AgentDefinition, len(r.defs))
	copy(out, r.defs)
	return out
}

func (r *registryImpl) Agent(name contractx.AgentName) (contractx.Agent, bool) {
	a, ok := r.agents[name]
	return a, ok
}

// Definitions builds the static agent definitions from the prompt set and
// the tool capability table.
func Definitions(prompts promptx.PromptSet) ([]contractx.AgentDefinition, error) {
	defs := make([]contractx.AgentDefinition, 0, len(roster))
	for _, name := range roster {
		instructions, err := prompts.For(name)
		if err != nil {
			return nil, err
		}
		defs = append(defs, contractx.AgentDefinition{
			Name:         name,
			Instructions: instructions,
			Tools:        toolx.CapabilitiesFor(name),
		})
	}
	return defs, nil
}

// ModelFactory builds the chat model one agent role runs on.
type ModelFactory func(ctx context.Context, name contractx.AgentName) (einomodel.ToolCallingChatModel, error)

func NewRegistry(ctx context.Context, cfg llmx.Config, tools contractx.ToolGateway) (contractx.AgentRegistry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	factory := func(ctx context.Context, name contractx.AgentName) (einomodel.ToolCallingChatModel, error) {
		modelCfg := cfg.OpenRouterFor(name)
		return modelCfg.New(ctx)
	}
	return NewRegistryWith(ctx, promptx.LoadPromptSet(), factory, tools, cfg.ToolRounds())
}

// NewRegistryWith builds the registry from explicit prompts and models.
func NewRegistryWith(
	ctx context.Context,
	prompts promptx.PromptSet,
	factory ModelFactory,
	tools contractx.ToolGateway,
	maxToolRounds int,
) (contractx.AgentRegistry, error) {
	if factory == nil {
		return nil, fmt.Errorf("%w: model factory is required", contractx.ErrValidation)
	}
	reg, err := newRegistry(ctx, prompts, factory, tools, maxToolRounds)
	if err != nil {
		return nil, err
	}
	return reg, nil
}

func newRegistry(
	ctx context.Context,
	prompts promptx.PromptSet,
	factory ModelFactory,
	tools contractx.ToolGateway,
	maxToolRounds int,
) (*registryImpl, error) {
	defs, err := Definitions(prompts)
	if err != nil {
		return nil, err
	}

	agents := make(map[contractx.AgentName]contractx.Agent, len(defs))
	for _, def := range defs {
		chatModel, err := factory(ctx, def.Name)
		if err != nil {
			return nil, fmt.Errorf("%w: create %s model: %v", contractx.ErrModelInvoke, def.Name, err)
		}
		a, err := newAgent(ctx, def, chatModel, tools, maxToolRounds)
		if err != nil {
			return nil, err
		}
		agents[def.Name] = a
	}

	return &registryImpl{defs: defs, agents: agents}, nil
}
