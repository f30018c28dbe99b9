package contract

import "time"

type AgentName string

const (
	AgentTranscription AgentName = "TranscriptionAgent"
	AgentDocumentation AgentName = "DocumentationAgent"
	AgentVerification  AgentName = "VerificationAgent"
)

// AuthorSystem marks the seed turn that opens every conversation.
const AuthorSystem = "system"

func (n AgentName) String() string {
	return string(n)
}

// AgentDefinition is the static, process-wide description of one role.
type AgentDefinition struct {
	Name         AgentName `json:"name"`
	Instructions string    `json:"instructions"`
	Tools        []string  `json:"tools,omitempty"`
}

func (d AgentDefinition) Allows(tool string) bool {
	for _, t := range d.Tools {
		if t == tool {
			return true
		}
	}
	return false
}

type Turn struct {
	Author  string `json:"agent"`
	Content string `json:"content"`
	Ordinal int    `json:"ordinal"`
}

type AgentRequest struct {
	VisitID  int64  `json:"visit_id"`
	ThreadID string `json:"thread_id"`
	History  []Turn `json:"history"`
}

type AgentResponse struct {
	Content     string       `json:"content"`
	ToolResults []ToolResult `json:"tool_results,omitempty"`
}

type ToolRequest struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"args,omitempty"`
}

type ToolResult struct {
	Tool   string `json:"tool"`
	Output string `json:"output"`
}

type SoapNote struct {
	Subjective    string `json:"subjective"`
	Objective     string `json:"objective"`
	Assessment    string `json:"assessment"`
	TreatmentPlan string `json:"treatment_plan"`
}

type Session struct {
	VisitID   int64     `json:"visit_id"`
	ThreadID  string    `json:"thread_id"`
	CreatedAt time.Time `json:"created_at"`
}
