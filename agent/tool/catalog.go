package tool

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"
	contractx "github.com/tanpawarit/clinical-scribe/agent/contract"
)

const (
	ToolTranscribeFile = "transcribe_file"
	ToolSaveTranscript = "save_transcript"
	ToolSaveSoapNote   = "save_soap_note"
)

var infos = map[string]*schema.ToolInfo{
	ToolTranscribeFile: {
		Name: ToolTranscribeFile,
		Desc: "Transcribes an audio file via Whisper.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"audio_path": {Type: schema.String, Desc: "Path of the recorded audio file", Required: true},
		}),
	},
	ToolSaveTranscript: {
		Name: ToolSaveTranscript,
		Desc: "Saves a transcript to the database.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"visit_id":        {Type: schema.Integer, Desc: "The ID of the visit", Required: true},
			"transcript_text": {Type: schema.String, Desc: "Full transcript text", Required: true},
		}),
	},
	ToolSaveSoapNote: {
		Name: ToolSaveSoapNote,
		Desc: "Saves a SOAP note to the database.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"visit_id":       {Type: schema.Integer, Desc: "The ID of the visit", Required: true},
			"subjective":     {Type: schema.String, Desc: "Subjective section text", Required: true},
			"objective":      {Type: schema.String, Desc: "Objective section text", Required: true},
			"assessment":     {Type: schema.String, Desc: "Assessment section text", Required: true},
			"treatment_plan": {Type: schema.String, Desc: "Plan section text", Required: true},
		}),
	},
}

// CapabilitiesFor lists the tools an agent role may call.
func CapabilitiesFor(agent contractx.AgentName) []string {
	switch agent {
	case contractx.AgentTranscription:
		return []string{ToolTranscribeFile}
	case contractx.AgentDocumentation:
		return []string{ToolSaveTranscript, ToolSaveSoapNote}
	default:
		return nil
	}
}

// Infos returns the schema declarations for the named tools, skipping
// unknown names.
func Infos(names ...string) []*schema.ToolInfo {
	out := make([]*schema.ToolInfo, 0, len(names))
	for _, name := range names {
		if info, ok := infos[name]; ok {
			out = append(out, info)
		}
	}
	return out
}

// Bridge executes tool requests against the external collaborators and turns
// their outcome into conversation text.
type Bridge struct {
	stt        contractx.SpeechToText
	normalizer contractx.AudioNormalizer
	records    contractx.RecordStore

	readFile func(string) ([]byte, error)
}

var _ contractx.ToolGateway = (*Bridge)(nil)

func NewBridge(
	stt contractx.SpeechToText,
	normalizer contractx.AudioNormalizer,
	records contractx.RecordStore,
) (*Bridge, error) {
	if stt == nil {
		return nil, errors.New("speech-to-text client is required")
	}
	if normalizer == nil {
		return nil, errors.New("audio normalizer is required")
	}
	if records == nil {
		return nil, errors.New("record store is required")
	}
	return &Bridge{
		stt:        stt,
		normalizer: normalizer,
		records:    records,
		readFile:   os.ReadFile,
	}, nil
}

// Execute runs one tool request. Only transcribe_file returns an error; the
// save operations always report their outcome as text. Nothing is started
// once ctx is done.
func (b *Bridge) Execute(ctx context.Context, req contractx.ToolRequest) (contractx.ToolResult, error) {
	if err := ctx.Err(); err != nil {
		return contractx.ToolResult{}, err
	}

	zerolog.Ctx(ctx).Debug().Str("tool", req.Tool).Msg("executing tool")

	switch req.Tool {
	case ToolTranscribeFile:
		return b.transcribeFile(ctx, req.Args)
	case ToolSaveTranscript:
		return b.saveTranscript(ctx, req.Args), nil
	case ToolSaveSoapNote:
		return b.saveSoapNote(ctx, req.Args), nil
	default:
		return Unavailable(req.Tool, "bridge"), nil
	}
}

func Unavailable(tool string, agent string) contractx.ToolResult {
	return contractx.ToolResult{
		Tool:   tool,
		Output: fmt.Sprintf("Error: tool=%s is unavailable for agent=%s", tool, agent),
	}
}
