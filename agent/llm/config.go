package llm

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/clinical-scribe/agent/contract"
	openrouterx "github.com/tanpawarit/clinical-scribe/pkg/openrouter"
)

const defaultMaxToolRounds = 4

type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://openrouter.ai/api/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" required:"true"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"2000"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.2"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"60s"`
	SiteURL            string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName           string        `envconfig:"SITE_NAME" split_words:"true"`
	MaxToolRounds      int           `envconfig:"MAX_TOOL_ROUNDS" split_words:"true" default:"4"`

	TranscriptionModel       string  `envconfig:"TRANSCRIPTION_MODEL" split_words:"true"`
	DocumentationModel       string  `envconfig:"DOCUMENTATION_MODEL" split_words:"true"`
	VerificationModel        string  `envconfig:"VERIFICATION_MODEL" split_words:"true"`
	TranscriptionTemperature float32 `envconfig:"TRANSCRIPTION_TEMPERATURE" split_words:"true" default:"-1"`
	DocumentationTemperature float32 `envconfig:"DOCUMENTATION_TEMPERATURE" split_words:"true" default:"-1"`
	VerificationTemperature  float32 `envconfig:"VERIFICATION_TEMPERATURE" split_words:"true" default:"-1"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: llm api key is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: default model is required", contractx.ErrValidation)
	}
	if c.MaxToolRounds < 0 {
		return fmt.Errorf("%w: max tool rounds must be >= 0", contractx.ErrValidation)
	}
	return nil
}

func (c Config) ToolRounds() int {
	if c.MaxToolRounds <= 0 {
		return defaultMaxToolRounds
	}
	return c.MaxToolRounds
}

// OpenRouterFor resolves the chat model settings of one agent role, falling
// back to the defaults when no override is set.
func (c Config) OpenRouterFor(agent contractx.AgentName) openrouterx.Config {
	modelName := strings.TrimSpace(c.Model)
	temp := c.Temperature

	override := func(model string, temperature float32) {
		if v := strings.TrimSpace(model); v != "" {
			modelName = v
		}
		if temperature >= 0 {
			temp = temperature
		}
	}

	switch agent {
	case contractx.AgentTranscription:
		override(c.TranscriptionModel, c.TranscriptionTemperature)
	case contractx.AgentDocumentation:
		override(c.DocumentationModel, c.DocumentationTemperature)
	case contractx.AgentVerification:
		override(c.VerificationModel, c.VerificationTemperature)
	}

	maxCompletionToken := c.MaxCompletionToken
	return openrouterx.Config{
		BaseURL:            strings.TrimSpace(c.BaseURL),
		APIKey:             strings.TrimSpace(c.APIKey),
		Model:              modelName,
		MaxCompletionToken: &maxCompletionToken,
		Temperature:        temp,
		Timeout:            c.Timeout,
		SiteURL:            strings.TrimSpace(c.SiteURL),
		SiteName:           strings.TrimSpace(c.SiteName),
	}
}
