package tool

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	contractx "github.com/tanpawarit/clinical-scribe/agent/contract"
)

const normalizedFormat = "wav"

func (b *Bridge) transcribeFile(ctx context.Context, args map[string]any) (contractx.ToolResult, error) {
	audioPath, err := stringArg(args, "audio_path")
	if err != nil {
		return contractx.ToolResult{Tool: ToolTranscribeFile, Output: "Error: " + err.Error()}, nil
	}

	logger := zerolog.Ctx(ctx).With().Str("audio_path", filepath.Base(audioPath)).Logger()
	logger.Info().Msg("transcribing audio")

	pcmPath, err := b.normalizer.Normalize(ctx, audioPath)
	if err != nil {
		logger.Error().Err(err).Msg("audio conversion failed")
		return contractx.ToolResult{}, fmt.Errorf("%w: %w: normalize audio: %v", contractx.ErrToolExecution, contractx.ErrTranscription, err)
	}

	audio, err := b.readFile(pcmPath)
	if err != nil {
		return contractx.ToolResult{}, fmt.Errorf("%w: %w: read normalized audio: %v", contractx.ErrToolExecution, contractx.ErrTranscription, err)
	}

	text, err := b.stt.Transcribe(ctx, audio, normalizedFormat)
	if err != nil {
		logger.Error().Err(err).Msg("speech-to-text failed")
		return contractx.ToolResult{}, fmt.Errorf("%w: %w: %w", contractx.ErrToolExecution, contractx.ErrTranscription, err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return contractx.ToolResult{}, fmt.Errorf("%w: %w: provider returned empty transcript", contractx.ErrToolExecution, contractx.ErrTranscription)
	}

	logger.Info().Int("chars", len(text)).Msg("audio transcribed")
	return contractx.ToolResult{Tool: ToolTranscribeFile, Output: text}, nil
}
