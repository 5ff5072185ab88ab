package validator

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/futig/survey-assistant/internal/config"
	"github.com/futig/survey-assistant/internal/entity"
)

// Validator checks inbound chat payloads before they reach the engine
type Validator struct {
	maxMessageLength int
}

func NewValidator(cfg config.SurveyConfig) *Validator {
	return &Validator{maxMessageLength: cfg.MaxMessageLength}
}

// ValidateMessage requires non-blank text no longer than the configured limit
func (v *Validator) ValidateMessage(req *entity.SubmitMessageRequest) error {
	if req == nil || strings.TrimSpace(req.Text) == "" {
		return fmt.Errorf("%w: text", entity.ErrMissingField)
	}

	if v.maxMessageLength > 0 {
		if n := utf8.RuneCountInString(req.Text); n > v.maxMessageLength {
			return fmt.Errorf("%w: text is %d characters (max %d)", entity.ErrInvalidParameter, n, v.maxMessageLength)
		}
	}

	return nil
}

// ValidateFormat resolves the export format, defaulting to markdown
func (v *Validator) ValidateFormat(raw string) (entity.ResultFormat, error) {
	if raw == "" {
		return entity.FormatMarkdown, nil
	}

	format := entity.ResultFormat(strings.ToLower(raw))
	if !format.IsValid() {
		return "", fmt.Errorf("%w: format %q (allowed: markdown, pdf, docx)", entity.ErrInvalidFormat, raw)
	}

	return format, nil
}
