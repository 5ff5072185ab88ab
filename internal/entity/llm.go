package entity

// NLUTask names the call site of an NLU request
type NLUTask string

const (
	TaskValidate  NLUTask = "validate"
	TaskInterpret NLUTask = "interpret"
	TaskCompose   NLUTask = "compose"
	TaskOffTopic  NLUTask = "offtopic"
)

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest is a role-tagged prompt for the NLU collaborator.
// Task and Hints never go over the wire; offline connectors use them.
type CompletionRequest struct {
	Task        NLUTask       `json:"-"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	Hints       NLUHints      `json:"-"`
}

// NLUHints carries the structured inputs a prompt was rendered from
type NLUHints struct {
	Question Question
	Response string
	Language Language
	Mode     string
}

// Chat completions wire format (OpenAI-compatible)

type LLMChatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type LLMChatCompletionChoice struct {
	Index        int         `json:"index"`
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type LLMChatCompletionResponse struct {
	ID      string                    `json:"id"`
	Model   string                    `json:"model"`
	Choices []LLMChatCompletionChoice `json:"choices"`
}
