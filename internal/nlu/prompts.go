package nlu

import (
	"fmt"

	"github.com/futig/survey-assistant/internal/entity"
)

const (
	judgeTemperature   = 0
	composeTemperature = 0.7
)

const validateSystemPrompt = `You are an AI assistant helping to validate survey responses.
Your task is to determine if a given response is valid for the question asked.
Consider ranges in options, such as "5 to 9", and validate if the response falls within any specified range.
Respond with only 'true' if the response is valid, or 'false' if it's invalid.

IMPORTANT: The user is responding in %s. Consider responses valid if they match the meaning in any language.`

const interpretSystemPrompt = `You are an AI assistant helping to interpret survey responses.
Your task is to map the given response to the closest valid option for the question.
Ranges in options, such as "5 to 9", cover every number inside them.
Respond with only the mapped option, or 'INVALID' if no mapping is possible.

IMPORTANT: The user is responding in %s. Map their response to the English option that matches the meaning.`

const offTopicSystemPrompt = `You are a survey assistant. Determine if the user's response is relevant to the current question.
Return only "true" if the response is off-topic or "false" if it's a valid attempt to answer the question.`

const composeSystemPrompt = `You are a healthcare survey assistant. Your goal is to:
1. Ask survey questions directly and clearly
2. Keep users focused on the survey
3. Give brief acknowledgments
4. If they go off-topic, redirect them to the survey

Important guidelines:
- Don't start with phrases like "I hope you're keeping well" or "I'd be happy to help"
- Don't add unnecessary pleasantries
- Go straight to the question
- Keep responses concise
- Maintain a professional tone

IMPORTANT: Respond ONLY in %s language.`

func validatePrompt(q entity.Question, raw string, lang entity.Language) []entity.ChatMessage {
	return []entity.ChatMessage{
		{Role: "system", Content: fmt.Sprintf(validateSystemPrompt, lang.Name)},
		{Role: "user", Content: fmt.Sprintf(
			"Question: %s\nValid options: %s\nUser response: %s",
			q.Text, q.Shape.Describe(), raw,
		)},
	}
}

func interpretPrompt(q entity.Question, raw string, lang entity.Language) []entity.ChatMessage {
	return []entity.ChatMessage{
		{Role: "system", Content: fmt.Sprintf(interpretSystemPrompt, lang.Name)},
		{Role: "user", Content: fmt.Sprintf(
			"Question: %s\nValid options: %s\nUser response: %s\n\nWhat is the interpreted response?",
			q.Text, q.Shape.Describe(), raw,
		)},
	}
}

func offTopicPrompt(q entity.Question, raw string) []entity.ChatMessage {
	return []entity.ChatMessage{
		{Role: "system", Content: offTopicSystemPrompt},
		{Role: "user", Content: fmt.Sprintf(
			"Current question: %s\nValid options: %s\nUser response: %s",
			q.Text, q.Shape.Describe(), raw,
		)},
	}
}

func composePrompt(q entity.Question, mode Mode, lang entity.Language) []entity.ChatMessage {
	var task string
	switch mode {
	case ModeRedirectOffTopic:
		task = "The user has gone off-topic. Politely acknowledge their comment and redirect them back to the current survey question:"
	case ModeReaskInvalid:
		task = "The user provided an invalid response. Politely explain the valid options and ask the question again:"
	default:
		task = "Ask this survey question in a conversational way:"
	}

	return []entity.ChatMessage{
		{Role: "system", Content: fmt.Sprintf(composeSystemPrompt, lang.Name)},
		{Role: "user", Content: fmt.Sprintf("%s\nQuestion: %s\nOptions: %s", task, q.Text, q.Shape.Describe())},
	}
}
