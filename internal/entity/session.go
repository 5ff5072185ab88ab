package entity

import (
	"encoding/json"
	"time"
)

// SessionState is the position of a conversation in the survey workflow
type SessionState string

const (
	StateAwaitingLanguage SessionState = "AWAITING_LANGUAGE" // Language prompt shown, waiting for a language name
	StateAwaitingConsent  SessionState = "AWAITING_CONSENT"  // Consent question shown
	StateInProgress       SessionState = "IN_PROGRESS"       // Question loop
	StateCompleted        SessionState = "COMPLETED"         // Answers persisted, terminal
)

// Role tags a transcript message
type Role string

const (
	RoleAssistant Role = "assistant"
	RoleUser      Role = "user"
)

// Language is a canonical language descriptor
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Message is one entry of the append-only transcript
type Message struct {
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Answer is a canonical answer recorded for a question
type Answer struct {
	QuestionID QuestionID `json:"question_id"`
	Value      string     `json:"value"`
}

// Answers keeps canonical answers in the order they were first given.
// Re-answering a question replaces its value in place.
type Answers struct {
	items []Answer
}

// Set records value for id
func (a *Answers) Set(id QuestionID, value string) {
	for i := range a.items {
		if a.items[i].QuestionID == id {
			a.items[i].Value = value
			return
		}
	}
	a.items = append(a.items, Answer{QuestionID: id, Value: value})
}

// Get returns the value recorded for id
func (a Answers) Get(id QuestionID) (string, bool) {
	for _, item := range a.items {
		if item.QuestionID == id {
			return item.Value, true
		}
	}
	return "", false
}

// Len returns the number of answered questions
func (a Answers) Len() int {
	return len(a.items)
}

// List returns a copy of the answers in answer order
func (a Answers) List() []Answer {
	out := make([]Answer, len(a.items))
	copy(out, a.items)
	return out
}

func (a Answers) MarshalJSON() ([]byte, error) {
	if a.items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(a.items)
}

func (a *Answers) UnmarshalJSON(data []byte) error {
	var items []Answer
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	a.items = nil
	for _, item := range items {
		a.Set(item.QuestionID, item.Value)
	}
	return nil
}

// Session is the per-conversation survey state.
// It is passed by value through the state machine; use Clone before mutating a shared copy.
type Session struct {
	ID              string       `json:"session_id"`
	State           SessionState `json:"state"`
	Language        *Language    `json:"language,omitempty"`
	Transcript      []Message    `json:"transcript"`
	CurrentQuestion QuestionID   `json:"current_question,omitempty"`
	Answers         Answers      `json:"answers"`
	Started         bool         `json:"started"`
	Completed       bool         `json:"completed"`
	Persisted       bool         `json:"persisted"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// Clone returns a deep copy of the session
func (s Session) Clone() Session {
	out := s
	if s.Language != nil {
		lang := *s.Language
		out.Language = &lang
	}
	out.Transcript = append([]Message(nil), s.Transcript...)
	out.Answers = Answers{items: append([]Answer(nil), s.Answers.items...)}
	return out
}

// Append adds a message to the transcript
func (s *Session) Append(role Role, text string, at time.Time) Message {
	msg := Message{Role: role, Text: text, CreatedAt: at}
	s.Transcript = append(s.Transcript, msg)
	return msg
}

// SurveyResult is the answer set handed to the persistence collaborator
type SurveyResult struct {
	SessionID    string    `json:"session_id"`
	LanguageCode string    `json:"language_code"`
	Answers      []Answer  `json:"answers"`
	CompletedAt  time.Time `json:"completed_at"`
}
