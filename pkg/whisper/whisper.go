package whisper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/azure"
	"github.com/openai/openai-go/option"
)

type Config struct {
	BaseURL         string        `envconfig:"BASE_URL" split_words:"true" default:"https://api.openai.com/v1"`
	APIKey          string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model           string        `envconfig:"MODEL" split_words:"true" default:"whisper-1"`
	AzureAPIVersion string        `envconfig:"AZURE_API_VERSION" split_words:"true"`
	Timeout         time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"120s"`
	MaxRetries      int           `envconfig:"MAX_RETRIES" split_words:"true" default:"2"`
}

// Client sends normalized audio to an OpenAI-compatible transcription
// endpoint.
type Client struct {
	api   openaisdk.Client
	model string
}

func NewClient(cfg Config) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("whisper api key is required")
	}
	modelName := strings.TrimSpace(cfg.Model)
	if modelName == "" {
		modelName = string(openaisdk.AudioModelWhisper1)
	}

	opts := []option.RequestOption{
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if version := strings.TrimSpace(cfg.AzureAPIVersion); version != "" {
		opts = append(opts,
			azure.WithEndpoint(baseURL, version),
			azure.WithAPIKey(apiKey),
		)
	} else {
		opts = append(opts, option.WithAPIKey(apiKey))
		if baseURL != "" {
			opts = append(opts, option.WithBaseURL(baseURL))
		}
	}

	return &Client{
		api:   openaisdk.NewClient(opts...),
		model: modelName,
	}, nil
}

func MustNew(cfg Config) *Client {
	client, err := NewClient(cfg)
	if err != nil {
		panic(err)
	}
	return client
}

func (c *Client) Transcribe(ctx context.Context, audio []byte, format string) (string, error) {
	if len(audio) == 0 {
		return "", errors.New("whisper: audio is empty")
	}

	res, err := c.api.Audio.Transcriptions.New(ctx, openaisdk.AudioTranscriptionNewParams{
		File:  newAudioFile(audio, format),
		Model: openaisdk.AudioModel(c.model),
	})
	if err != nil {
		return "", fmt.Errorf("whisper: transcribe: %w", err)
	}
	return strings.TrimSpace(res.Text), nil
}

// audioFile carries the filename and content type the multipart encoder
// needs to tell the provider which codec it is receiving.
type audioFile struct {
	*bytes.Reader
	name        string
	contentType string
}

func newAudioFile(audio []byte, format string) *audioFile {
	format = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(format)), ".")
	if format == "" {
		format = "wav"
	}
	return &audioFile{
		Reader:      bytes.NewReader(audio),
		name:        "audio." + format,
		contentType: "audio/" + format,
	}
}

func (f *audioFile) Filename() string    { return f.name }
func (f *audioFile) Name() string        { return f.name }
func (f *audioFile) ContentType() string { return f.contentType }
