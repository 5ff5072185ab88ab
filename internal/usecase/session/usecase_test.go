package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/futig/survey-assistant/internal/config"
	"github.com/futig/survey-assistant/internal/entity"
	"github.com/futig/survey-assistant/internal/integration/llm"
	"github.com/futig/survey-assistant/internal/language"
	"github.com/futig/survey-assistant/internal/nlu"
	"github.com/futig/survey-assistant/internal/pkg/formatter"
	"github.com/futig/survey-assistant/internal/pkg/validator"
	"github.com/futig/survey-assistant/internal/questionnaire"
	"github.com/futig/survey-assistant/internal/repository"
	"github.com/futig/survey-assistant/internal/survey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeEngine walks a session straight from language selection to completion:
// any input moves AwaitingLanguage to InProgress at question 1, "done" completes it.
type fakeEngine struct {
	active    atomic.Int32
	maxActive atomic.Int32
	advances  atomic.Int32
}

func (f *fakeEngine) Start(id string) entity.Session {
	s := entity.Session{ID: id, State: entity.StateAwaitingLanguage}
	s.Append(entity.RoleAssistant, language.LanguagePrompt, time.Now())
	return s
}

func (f *fakeEngine) Advance(ctx context.Context, s entity.Session, input string) (survey.Turn, error) {
	n := f.active.Add(1)
	defer f.active.Add(-1)
	for {
		m := f.maxActive.Load()
		if n <= m || f.maxActive.CompareAndSwap(m, n) {
			break
		}
	}
	f.advances.Add(1)
	time.Sleep(time.Millisecond)

	if s.State == entity.StateCompleted {
		return survey.Turn{Session: s}, fmt.Errorf("%w: %s", entity.ErrSessionCompleted, s.ID)
	}

	next := s.Clone()
	next.Append(entity.RoleUser, input, time.Now())
	switch {
	case input == "done":
		next.State = entity.StateCompleted
		next.Completed, next.Persisted = true, true
		next.CurrentQuestion = entity.EndOfSurvey
		next.Answers.Set(1, "Yes")
		next.Answers.Set(2, "Always")
	default:
		next.State = entity.StateInProgress
		next.Started = true
		next.Language = &language.English
		next.CurrentQuestion = 1
	}
	reply := next.Append(entity.RoleAssistant, "reply to "+input, time.Now())

	return survey.Turn{Session: next, Replies: []entity.Message{reply}}, nil
}

type fakeArchive struct {
	answers map[string][]entity.Answer
}

func (a *fakeArchive) GetAnswers(ctx context.Context, sessionID string) ([]entity.Answer, error) {
	answers, ok := a.answers[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", entity.ErrNoResult, sessionID)
	}
	return answers, nil
}

func newTestUsecase(t *testing.T, archive AnswerArchive) (*SessionUsecase, *fakeEngine) {
	t.Helper()

	catalog, err := questionnaire.LoadDefault()
	require.NoError(t, err)

	engine := &fakeEngine{}
	uc := NewUsecase(
		engine,
		repository.NewSessionCache(time.Hour, time.Minute),
		archive,
		catalog,
		validator.NewValidator(config.SurveyConfig{MaxMessageLength: 100}),
		formatter.NewFactory(),
		zap.NewNop(),
	)
	return uc, engine
}

func TestStartSession(t *testing.T) {
	uc, _ := newTestUsecase(t, nil)
	ctx := context.Background()

	turn, err := uc.StartSession(ctx)
	require.NoError(t, err)

	assert.NotEmpty(t, turn.Session.ID)
	assert.Equal(t, entity.StateAwaitingLanguage, turn.Session.State)
	require.Len(t, turn.Replies, 1)
	assert.Equal(t, language.LanguagePrompt, turn.Replies[0].Text)
	assert.Contains(t, turn.Options, "Español")
	assert.Len(t, turn.Options, len(language.Supported()))

	got, err := uc.GetSession(ctx, turn.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, turn.Session.ID, got.Session.ID)
	assert.Equal(t, turn.Replies, got.Replies)
}

func TestSubmitMessage(t *testing.T) {
	uc, _ := newTestUsecase(t, nil)
	ctx := context.Background()

	started, err := uc.StartSession(ctx)
	require.NoError(t, err)
	id := started.Session.ID

	turn, err := uc.SubmitMessage(ctx, id, "English")
	require.NoError(t, err)
	assert.Equal(t, entity.StateInProgress, turn.Session.State)
	require.NotNil(t, turn.Session.CurrentQuestion)
	assert.Equal(t, entity.QuestionID(1), *turn.Session.CurrentQuestion)
	assert.Equal(t, []string{"Yes", "No"}, turn.Options)
	require.Len(t, turn.Replies, 1)
	assert.Equal(t, "reply to English", turn.Replies[0].Text)

	transcript, err := uc.GetTranscript(ctx, id)
	require.NoError(t, err)
	assert.Len(t, transcript.Messages, 3)
}

func TestSubmitMessage_Errors(t *testing.T) {
	uc, _ := newTestUsecase(t, nil)
	ctx := context.Background()

	_, err := uc.SubmitMessage(ctx, "missing", "hello")
	assert.ErrorIs(t, err, entity.ErrSessionNotFound)

	started, err := uc.StartSession(ctx)
	require.NoError(t, err)

	_, err = uc.SubmitMessage(ctx, started.Session.ID, "   ")
	assert.ErrorIs(t, err, entity.ErrMissingField)

	_, err = uc.SubmitMessage(ctx, started.Session.ID, strings.Repeat("x", 101))
	assert.ErrorIs(t, err, entity.ErrInvalidParameter)

	_, err = uc.SubmitMessage(ctx, started.Session.ID, "done")
	require.NoError(t, err)

	_, err = uc.SubmitMessage(ctx, started.Session.ID, "again")
	assert.ErrorIs(t, err, entity.ErrSessionCompleted)
}

func TestSubmitMessage_SerializesPerSession(t *testing.T) {
	uc, engine := newTestUsecase(t, nil)
	ctx := context.Background()

	started, err := uc.StartSession(ctx)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := uc.SubmitMessage(ctx, started.Session.ID, fmt.Sprintf("msg %d", i))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), engine.maxActive.Load())
	assert.Equal(t, int32(20), engine.advances.Load())
	assert.Equal(t, 0, uc.locks.size())

	// every turn landed on top of the previous one
	transcript, err := uc.GetTranscript(ctx, started.Session.ID)
	require.NoError(t, err)
	assert.Len(t, transcript.Messages, 1+20*2)
}

func TestExportAnswers(t *testing.T) {
	uc, _ := newTestUsecase(t, nil)
	ctx := context.Background()

	started, err := uc.StartSession(ctx)
	require.NoError(t, err)
	id := started.Session.ID

	_, err = uc.ExportAnswers(ctx, id, "markdown")
	assert.ErrorIs(t, err, entity.ErrNoResult)

	_, err = uc.SubmitMessage(ctx, id, "done")
	require.NoError(t, err)

	_, err = uc.ExportAnswers(ctx, id, "xlsx")
	assert.ErrorIs(t, err, entity.ErrInvalidFormat)

	file, err := uc.ExportAnswers(ctx, id, "")
	require.NoError(t, err)
	assert.Equal(t, "survey-"+id+".md", file.Filename)
	assert.Contains(t, file.ContentType, "text/markdown")
	text := string(file.Data)
	assert.Contains(t, text, "CAHPS Health Plan Survey")
	assert.Contains(t, text, "| Q1 | Did you have an illness, injury, or condition that needed care right away? | Yes |")
	assert.Contains(t, text, "| Q2 |")
	assert.Contains(t, text, "| Always |")

	_, err = uc.ExportAnswers(ctx, "missing", "markdown")
	assert.ErrorIs(t, err, entity.ErrSessionNotFound)
}

func TestExportAnswers_FromArchive(t *testing.T) {
	archive := &fakeArchive{answers: map[string][]entity.Answer{
		"archived": {{QuestionID: 1, Value: "No"}, {QuestionID: 3, Value: "Yes"}},
	}}
	uc, _ := newTestUsecase(t, archive)
	ctx := context.Background()

	file, err := uc.ExportAnswers(ctx, "archived", "markdown")
	require.NoError(t, err)
	assert.Contains(t, string(file.Data), "| Q3 | Did you make appointments for check-up or routine care? | Yes |")

	_, err = uc.ExportAnswers(ctx, "unknown", "markdown")
	assert.ErrorIs(t, err, entity.ErrSessionNotFound)
}

func TestDeleteSession(t *testing.T) {
	uc, _ := newTestUsecase(t, nil)
	ctx := context.Background()

	started, err := uc.StartSession(ctx)
	require.NoError(t, err)

	require.NoError(t, uc.DeleteSession(ctx, started.Session.ID))

	_, err = uc.GetSession(ctx, started.Session.ID)
	assert.ErrorIs(t, err, entity.ErrSessionNotFound)

	assert.ErrorIs(t, uc.DeleteSession(ctx, started.Session.ID), entity.ErrSessionNotFound)
}

func TestSubmitMessage_OfferedConsentOptionStartsSurvey(t *testing.T) {
	catalog, err := questionnaire.LoadDefault()
	require.NoError(t, err)

	mock := llm.NewMockConnector(zap.NewNop())
	engine := survey.NewEngine(catalog, nlu.NewInterpreter(mock), nlu.NewComposer(mock), repository.NewStubSaver(0))
	uc := NewUsecase(
		engine,
		repository.NewSessionCache(time.Hour, time.Minute),
		nil,
		catalog,
		validator.NewValidator(config.SurveyConfig{MaxMessageLength: 100}),
		formatter.NewFactory(),
		zap.NewNop(),
	)

	for _, choice := range language.Supported() {
		t.Run(choice.Language.Name, func(t *testing.T) {
			ctx := context.Background()

			turn, err := uc.StartSession(ctx)
			require.NoError(t, err)
			require.Contains(t, turn.Options, choice.Label)

			turn, err = uc.SubmitMessage(ctx, turn.Session.ID, choice.Label)
			require.NoError(t, err)
			require.Equal(t, entity.StateAwaitingConsent, turn.Session.State)
			assert.Equal(t, language.ConsentOptions(choice.Language), turn.Options)

			turn, err = uc.SubmitMessage(ctx, turn.Session.ID, turn.Options[0])
			require.NoError(t, err)
			assert.Equal(t, entity.StateInProgress, turn.Session.State)
			require.NotNil(t, turn.Session.CurrentQuestion)
			assert.Equal(t, catalog.First().ID, *turn.Session.CurrentQuestion)
		})
	}
}

func TestSubmitMessage_CompletedCarriesLocalizedMessage(t *testing.T) {
	catalog, err := questionnaire.LoadDefault()
	require.NoError(t, err)

	mock := llm.NewMockConnector(zap.NewNop())
	store := repository.NewSessionCache(time.Hour, time.Minute)
	uc := NewUsecase(
		survey.NewEngine(catalog, nlu.NewInterpreter(mock), nlu.NewComposer(mock), repository.NewStubSaver(0)),
		store,
		nil,
		catalog,
		validator.NewValidator(config.SurveyConfig{MaxMessageLength: 100}),
		formatter.NewFactory(),
		zap.NewNop(),
	)
	ctx := context.Background()

	done := entity.Session{ID: "done-es", State: entity.StateCompleted, Language: &language.Spanish, Completed: true}
	require.NoError(t, store.Set(ctx, done))

	_, err = uc.SubmitMessage(ctx, "done-es", "hola")
	require.ErrorIs(t, err, entity.ErrSessionCompleted)
	assert.Equal(t, language.Render(language.TextAlreadyCompleted, &language.Spanish), entity.UserMessage(err, ""))
}

// recordingLocker stands in for a lock shared by several replicas
type recordingLocker struct {
	mu       sync.Mutex
	locked   []string
	released int
	err      error
}

func (l *recordingLocker) Lock(ctx context.Context, sessionID string) (func(), error) {
	if l.err != nil {
		return nil, l.err
	}
	l.mu.Lock()
	l.locked = append(l.locked, sessionID)
	l.mu.Unlock()
	return func() {
		l.mu.Lock()
		l.released++
		l.mu.Unlock()
	}, nil
}

func TestWithTurnLocker(t *testing.T) {
	catalog, err := questionnaire.LoadDefault()
	require.NoError(t, err)

	newUC := func(locker TurnLocker) *SessionUsecase {
		return NewUsecase(
			&fakeEngine{},
			repository.NewSessionCache(time.Hour, time.Minute),
			nil,
			catalog,
			validator.NewValidator(config.SurveyConfig{MaxMessageLength: 100}),
			formatter.NewFactory(),
			zap.NewNop(),
			WithTurnLocker(locker),
		)
	}
	ctx := context.Background()

	locker := &recordingLocker{}
	uc := newUC(locker)
	started, err := uc.StartSession(ctx)
	require.NoError(t, err)

	_, err = uc.SubmitMessage(ctx, started.Session.ID, "English")
	require.NoError(t, err)
	require.NoError(t, uc.DeleteSession(ctx, started.Session.ID))

	assert.Equal(t, []string{started.Session.ID, started.Session.ID}, locker.locked)
	assert.Equal(t, 2, locker.released)

	busy := newUC(&recordingLocker{err: context.DeadlineExceeded})
	started, err = busy.StartSession(ctx)
	require.NoError(t, err)

	_, err = busy.SubmitMessage(ctx, started.Session.ID, "English")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	got, err := busy.GetSession(ctx, started.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StateAwaitingLanguage, got.Session.State)
}
