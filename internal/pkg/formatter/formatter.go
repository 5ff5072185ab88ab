package formatter

import (
	"fmt"
	"time"

	"github.com/futig/survey-assistant/internal/entity"
)

// AnswerSheet is the printable view of a session's answers
type AnswerSheet struct {
	Title       string
	SessionID   string
	Language    string
	CompletedAt time.Time
	Rows        []AnswerRow
}

type AnswerRow struct {
	QuestionID entity.QuestionID
	Question   string
	Answer     string
}

type Formatter interface {
	Format(sheet AnswerSheet) ([]byte, error)
	ContentType() string
	FileExtension() string
}

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Create(format entity.ResultFormat) (Formatter, error) {
	switch format {
	case entity.FormatMarkdown:
		return NewMarkdownFormatter(), nil
	case entity.FormatDOCX:
		return NewDOCXFormatter(), nil
	case entity.FormatPDF:
		return NewPDFFormatter(), nil
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", entity.ErrInvalidFormat, format)
	}
}

func (s AnswerSheet) subtitle() string {
	line := "Session " + s.SessionID
	if s.Language != "" {
		line += " · " + s.Language
	}
	if !s.CompletedAt.IsZero() {
		line += " · " + s.CompletedAt.UTC().Format("2006-01-02 15:04 MST")
	}
	return line
}
