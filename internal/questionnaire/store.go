package questionnaire

import (
	"github.com/futig/survey-assistant/internal/entity"
)

// Store is the read-only, validated questionnaire.
// It is safe for concurrent use because nothing mutates it after Load.
type Store struct {
	def      *entity.Questionnaire
	position map[entity.QuestionID]int
}

func newStore(def *entity.Questionnaire) *Store {
	position := make(map[entity.QuestionID]int, len(def.Questions))
	for i, q := range def.Questions {
		position[q.ID] = i
	}

	return &Store{
		def:      def,
		position: position,
	}
}

// Get returns the question with the given identifier
func (s *Store) Get(id entity.QuestionID) (entity.Question, bool) {
	pos, ok := s.position[id]
	if !ok {
		return entity.Question{}, false
	}
	return s.def.Questions[pos], true
}

// First returns the first question of the declared sequence
func (s *Store) First() entity.Question {
	return s.def.Questions[0]
}

// Last returns the last question of the declared sequence
func (s *Store) Last() entity.Question {
	return s.def.Questions[len(s.def.Questions)-1]
}

// Successor returns the question declared after id, or EndOfSurvey for the last one
func (s *Store) Successor(id entity.QuestionID) (entity.QuestionID, bool) {
	pos, ok := s.position[id]
	if !ok {
		return entity.EndOfSurvey, false
	}
	if pos+1 >= len(s.def.Questions) {
		return entity.EndOfSurvey, true
	}
	return s.def.Questions[pos+1].ID, true
}

// Questions returns the questions in declared order
func (s *Store) Questions() []entity.Question {
	out := make([]entity.Question, len(s.def.Questions))
	copy(out, s.def.Questions)
	return out
}

func (s *Store) Len() int {
	return len(s.def.Questions)
}

func (s *Store) Title() string {
	return s.def.Title
}

func (s *Store) Version() string {
	return s.def.Version
}

// Consent returns the consent prompt shown after language selection
func (s *Store) Consent() entity.ConsentPrompt {
	return s.def.Consent
}
