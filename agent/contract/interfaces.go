package contract

import "context"

// Agent produces one turn. Tool calls requested by the model are resolved
// inside Act before the final text is returned.
type Agent interface {
	Definition() AgentDefinition
	Act(ctx context.Context, req AgentRequest) (AgentResponse, error)
}

type AgentRegistry interface {
	Definitions() []AgentDefinition
	Agent(name AgentName) (Agent, bool)
}

type ToolGateway interface {
	Execute(ctx context.Context, req ToolRequest) (ToolResult, error)
}

type ThreadProvider interface {
	CreateThread(ctx context.Context) (string, error)
}

type RecordStore interface {
	SaveTranscript(ctx context.Context, visitID int64, text string) (int64, error)
	SaveSoapNote(ctx context.Context, visitID int64, note SoapNote) (int64, error)
}

type SpeechToText interface {
	Transcribe(ctx context.Context, audio []byte, format string) (string, error)
}

// AudioNormalizer converts an audio file to mono 16 kHz 16-bit PCM WAV and
// returns the path of the converted file.
type AudioNormalizer interface {
	Normalize(ctx context.Context, inputPath string) (string, error)
}
