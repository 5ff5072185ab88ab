package entity

type CallbackEventType string

const (
	CallbackEventSurveyCompleted CallbackEventType = "survey_completed"
)

// CallbackEvent is the body posted to the completion webhook
type CallbackEvent struct {
	Event     CallbackEventType `json:"event"`
	Timestamp string            `json:"timestamp"`
	Data      any               `json:"data"`
}
