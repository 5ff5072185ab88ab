package formatter

import (
	"bytes"
	"testing"
	"time"

	"github.com/futig/survey-assistant/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSheet() AnswerSheet {
	return AnswerSheet{
		Title:       "CAHPS Health Plan Survey 5.1",
		SessionID:   "abc",
		Language:    "Spanish",
		CompletedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Rows: []AnswerRow{
			{QuestionID: 1, Question: "Did you get care | treatment?", Answer: "Yes"},
			{QuestionID: 2, Question: "How often?", Answer: "Always"},
		},
	}
}

func TestFactory_Create(t *testing.T) {
	f := NewFactory()

	tests := []struct {
		format entity.ResultFormat
		ext    string
	}{
		{entity.FormatMarkdown, ".md"},
		{entity.FormatPDF, ".pdf"},
		{entity.FormatDOCX, ".docx"},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			formatter, err := f.Create(tt.format)
			require.NoError(t, err)
			assert.Equal(t, tt.ext, formatter.FileExtension())
			assert.NotEmpty(t, formatter.ContentType())
		})
	}

	_, err := f.Create("xlsx")
	assert.ErrorIs(t, err, entity.ErrInvalidFormat)
}

func TestMarkdownFormatter(t *testing.T) {
	out, err := NewMarkdownFormatter().Format(sampleSheet())
	require.NoError(t, err)

	text := string(out)
	assert.Contains(t, text, "# CAHPS Health Plan Survey 5.1")
	assert.Contains(t, text, "Session abc · Spanish · 2024-05-01 12:00 UTC")
	assert.Contains(t, text, `| Q1 | Did you get care \| treatment? | Yes |`)
	assert.Contains(t, text, "| Q2 | How often? | Always |")
}

func TestPDFFormatter(t *testing.T) {
	out, err := NewPDFFormatter().Format(sampleSheet())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

