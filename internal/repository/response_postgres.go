package repository

import (
	"context"
	"fmt"

	"github.com/futig/survey-assistant/internal/entity"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	upsertResponseQuery = `
INSERT INTO survey_responses (id, session_id, language_code, questionnaire_version, completed_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (session_id) DO UPDATE
SET language_code         = EXCLUDED.language_code,
    questionnaire_version = EXCLUDED.questionnaire_version,
    completed_at          = EXCLUDED.completed_at,
    updated_at            = now()
RETURNING id`

	deleteAnswersQuery = `DELETE FROM survey_answers WHERE response_id = $1`

	insertAnswerQuery = `
INSERT INTO survey_answers (response_id, question_id, position, value)
VALUES ($1, $2, $3, $4)`

	selectAnswersQuery = `
SELECT a.question_id, a.value
FROM survey_answers a
JOIN survey_responses r ON r.id = a.response_id
WHERE r.session_id = $1
ORDER BY a.position`
)

// ResponsePostgres commits completed answer sets.
// Saving the same session twice replaces the earlier answer set.
type ResponsePostgres struct {
	db      *pgxpool.Pool
	version string
}

func NewResponsePostgres(db *pgxpool.Pool, questionnaireVersion string) *ResponsePostgres {
	return &ResponsePostgres{
		db:      db,
		version: questionnaireVersion,
	}
}

func (r *ResponsePostgres) Save(ctx context.Context, result entity.SurveyResult) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("%w: begin transaction: %w", entity.ErrPersistenceFailure, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var responseID pgtype.UUID
	err = tx.QueryRow(ctx, upsertResponseQuery,
		pgtype.UUID{Bytes: uuid.New(), Valid: true},
		result.SessionID,
		result.LanguageCode,
		r.version,
		result.CompletedAt,
	).Scan(&responseID)
	if err != nil {
		return fmt.Errorf("%w: upsert response: %w", entity.ErrPersistenceFailure, err)
	}

	if _, err := tx.Exec(ctx, deleteAnswersQuery, responseID); err != nil {
		return fmt.Errorf("%w: clear answers: %w", entity.ErrPersistenceFailure, err)
	}

	batch := &pgx.Batch{}
	for i, answer := range result.Answers {
		batch.Queue(insertAnswerQuery, responseID, int32(answer.QuestionID), int32(i+1), answer.Value)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("%w: insert answers: %w", entity.ErrPersistenceFailure, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: commit: %w", entity.ErrPersistenceFailure, err)
	}

	return nil
}

// GetAnswers returns the committed answers of a session in answer order
func (r *ResponsePostgres) GetAnswers(ctx context.Context, sessionID string) ([]entity.Answer, error) {
	rows, err := r.db.Query(ctx, selectAnswersQuery, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query answers: %w", err)
	}

	answers, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.Answer, error) {
		var (
			questionID int32
			value      string
		)
		if err := row.Scan(&questionID, &value); err != nil {
			return entity.Answer{}, err
		}
		return entity.Answer{QuestionID: entity.QuestionID(questionID), Value: value}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("collect answers: %w", err)
	}

	if len(answers) == 0 {
		return nil, fmt.Errorf("%w: no answers for session %s", entity.ErrNoResult, sessionID)
	}

	return answers, nil
}
