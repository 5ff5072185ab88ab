package keyboard

import (
	"fmt"
	"strings"
)

const (
	ActionStart   = "action"  // "action:start"
	ActionAnswer  = "ans"     // quick reply, value is the text to submit
	ActionConfirm = "confirm" // "confirm:cancel" or "confirm:continue"
	ActionExport  = "dl"      // value is the export format
)

// maxCallbackBytes is Telegram's limit for callback data
const maxCallbackBytes = 64

// CallbackData represents parsed callback data
type CallbackData struct {
	Action string
	Value  string
}

// ParseCallback parses callback data string
func ParseCallback(data string) (*CallbackData, error) {
	action, value, ok := strings.Cut(data, ":")
	if !ok || action == "" {
		return nil, fmt.Errorf("invalid callback format: %s", data)
	}

	switch action {
	case ActionStart, ActionAnswer, ActionConfirm, ActionExport:
	default:
		return nil, fmt.Errorf("unknown callback action %q", action)
	}

	return &CallbackData{
		Action: action,
		Value:  value,
	}, nil
}

// EncodeCallback creates callback data string
func EncodeCallback(action, value string) string {
	return action + ":" + value
}
