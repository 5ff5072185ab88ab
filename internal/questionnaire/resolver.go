package questionnaire

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/futig/survey-assistant/internal/entity"
)

// Resolver computes the next question from skip edges and declared order
type Resolver struct {
	store *Store
}

func NewResolver(store *Store) *Resolver {
	return &Resolver{store: store}
}

// Next returns the question that follows current given its canonical answer.
// An explicit skip edge wins; otherwise the declared successor is used and
// the last question yields entity.EndOfSurvey.
func (r *Resolver) Next(current entity.QuestionID, canonical string) (entity.QuestionID, error) {
	q, ok := r.store.Get(current)
	if !ok {
		return entity.EndOfSurvey, fmt.Errorf("%w: %s", entity.ErrQuestionNotFound, current)
	}

	if len(q.Skip) > 0 {
		if target, ok := q.Skip[skipKey(q, canonical)]; ok {
			return target, nil
		}
	}

	next, _ := r.store.Successor(current)
	return next, nil
}

func skipKey(q entity.Question, canonical string) string {
	switch q.Kind() {
	case entity.ShapeEnumerated:
		if c, ok := q.CanonicalOption(canonical); ok {
			return c
		}
	case entity.ShapeScale:
		if n, err := strconv.Atoi(strings.TrimSpace(canonical)); err == nil {
			return strconv.Itoa(n)
		}
	}
	return canonical
}
