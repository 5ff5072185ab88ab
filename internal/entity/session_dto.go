package entity

import "time"

type SubmitMessageRequest struct {
	Text string `json:"text"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type SessionDTO struct {
	ID              string       `json:"session_id"`
	State           SessionState `json:"state"`
	Language        *Language    `json:"language,omitempty"`
	CurrentQuestion *QuestionID  `json:"current_question,omitempty"`
	AnsweredCount   int          `json:"answered_count"`
	Started         bool         `json:"started"`
	Completed       bool         `json:"completed"`
	Persisted       bool         `json:"persisted"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// TurnDTO carries the session after a turn, the assistant replies of that turn
// and the quick-reply options a chat surface may offer for the next input.
type TurnDTO struct {
	Session SessionDTO `json:"session"`
	Replies []Message  `json:"replies"`
	Options []string   `json:"options,omitempty"`
}

type TranscriptDTO struct {
	SessionID string    `json:"session_id"`
	Messages  []Message `json:"messages"`
}

// ExportedFile is a rendered answer sheet
type ExportedFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

type ResultFormat string

const (
	FormatMarkdown ResultFormat = "markdown"
	FormatDOCX     ResultFormat = "docx"
	FormatPDF      ResultFormat = "pdf"
)

func (f ResultFormat) IsValid() bool {
	switch f {
	case FormatMarkdown, FormatDOCX, FormatPDF:
		return true
	default:
		return false
	}
}
