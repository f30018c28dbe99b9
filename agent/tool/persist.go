package tool

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	contractx "github.com/tanpawarit/clinical-scribe/agent/contract"
)

func (b *Bridge) saveTranscript(ctx context.Context, args map[string]any) contractx.ToolResult {
	visitID, err := visitIDArg(args)
	if err != nil {
		return persistFailure(ctx, ToolSaveTranscript, "Error saving transcript", err)
	}
	text, err := stringArg(args, "transcript_text")
	if err != nil {
		return persistFailure(ctx, ToolSaveTranscript, "Error saving transcript", err)
	}

	// A write that has been dispatched finishes even if the run is abandoned.
	id, err := b.records.SaveTranscript(context.WithoutCancel(ctx), visitID, text)
	if err != nil {
		return persistFailure(ctx, ToolSaveTranscript, "Error saving transcript", err)
	}

	zerolog.Ctx(ctx).Info().Int64("transcript_id", id).Msg("transcript saved")
	return contractx.ToolResult{
		Tool:   ToolSaveTranscript,
		Output: fmt.Sprintf("Transcript saved successfully with ID: %d", id),
	}
}

func (b *Bridge) saveSoapNote(ctx context.Context, args map[string]any) contractx.ToolResult {
	visitID, err := visitIDArg(args)
	if err != nil {
		return persistFailure(ctx, ToolSaveSoapNote, "Error saving SOAP note", err)
	}

	var note contractx.SoapNote
	fields := []struct {
		key string
		dst *string
	}{
		{"subjective", &note.Subjective},
		{"objective", &note.Objective},
		{"assessment", &note.Assessment},
		{"treatment_plan", &note.TreatmentPlan},
	}
	for _, f := range fields {
		v, err := stringArg(args, f.key)
		if err != nil {
			return persistFailure(ctx, ToolSaveSoapNote, "Error saving SOAP note", err)
		}
		*f.dst = v
	}

	id, err := b.records.SaveSoapNote(context.WithoutCancel(ctx), visitID, note)
	if err != nil {
		return persistFailure(ctx, ToolSaveSoapNote, "Error saving SOAP note", err)
	}

	zerolog.Ctx(ctx).Info().Int64("soap_note_id", id).Msg("soap note saved")
	return contractx.ToolResult{
		Tool:   ToolSaveSoapNote,
		Output: fmt.Sprintf("SOAP note saved successfully with ID: %d", id),
	}
}

func persistFailure(ctx context.Context, tool string, prefix string, err error) contractx.ToolResult {
	zerolog.Ctx(ctx).Warn().Err(fmt.Errorf("%w: %w", contractx.ErrPersistence, err)).Str("tool", tool).Msg("persistence failed")
	return contractx.ToolResult{
		Tool:   tool,
		Output: fmt.Sprintf("%s: %s", prefix, err.Error()),
	}
}
