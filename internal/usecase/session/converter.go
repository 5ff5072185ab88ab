package session

import (
	"time"

	"github.com/futig/survey-assistant/internal/entity"
	"github.com/futig/survey-assistant/internal/language"
	"github.com/futig/survey-assistant/internal/pkg/formatter"
)

func sessionToDTO(s entity.Session) entity.SessionDTO {
	dto := entity.SessionDTO{
		ID:            s.ID,
		State:         s.State,
		AnsweredCount: s.Answers.Len(),
		Started:       s.Started,
		Completed:     s.Completed,
		Persisted:     s.Persisted,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}

	if s.Language != nil {
		lang := *s.Language
		dto.Language = &lang
	}

	if s.State == entity.StateInProgress && !s.CurrentQuestion.IsEnd() {
		current := s.CurrentQuestion
		dto.CurrentQuestion = &current
	}

	return dto
}

// optionsFor lists the quick replies that fit the state the session waits in
func (uc *SessionUsecase) optionsFor(s entity.Session) []string {
	switch s.State {
	case entity.StateAwaitingLanguage:
		choices := language.Supported()
		labels := make([]string, 0, len(choices))
		for _, c := range choices {
			labels = append(labels, c.Label)
		}
		return labels
	case entity.StateAwaitingConsent:
		if s.Language != nil {
			return language.ConsentOptions(*s.Language)
		}
		return append([]string(nil), uc.catalog.Consent().Options...)
	case entity.StateInProgress:
		q, ok := uc.catalog.Get(s.CurrentQuestion)
		if !ok || q.Kind() != entity.ShapeEnumerated {
			return nil
		}
		return append([]string(nil), q.Shape.Options...)
	default:
		return nil
	}
}

func (uc *SessionUsecase) turnToDTO(s entity.Session, replies []entity.Message) *entity.TurnDTO {
	if replies == nil {
		replies = []entity.Message{}
	}
	return &entity.TurnDTO{
		Session: sessionToDTO(s),
		Replies: replies,
		Options: uc.optionsFor(s),
	}
}

func (uc *SessionUsecase) answerSheet(sessionID string, lang *entity.Language, completedAt time.Time, answers []entity.Answer) formatter.AnswerSheet {
	sheet := formatter.AnswerSheet{
		Title:       uc.catalog.Title(),
		SessionID:   sessionID,
		CompletedAt: completedAt,
		Rows:        make([]formatter.AnswerRow, 0, len(answers)),
	}
	if lang != nil {
		sheet.Language = lang.Name
	}

	for _, a := range answers {
		row := formatter.AnswerRow{QuestionID: a.QuestionID, Answer: a.Value}
		if q, ok := uc.catalog.Get(a.QuestionID); ok {
			row.Question = q.Text
		}
		sheet.Rows = append(sheet.Rows, row)
	}

	return sheet
}
