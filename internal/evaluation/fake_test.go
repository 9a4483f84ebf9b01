package evaluation

import (
	"context"
	"errors"
	"time"

	"github.com/Spok95/academic-eval/internal/models"
)

// memRepo — хранилище в памяти. InTx делает снимок и откатывает его при ошибке,
// как настоящая транзакция.
type memRepo struct {
	users          map[int64]models.User
	questionnaires map[int64]models.Questionnaire
	items          map[int64][]models.CompetencyItem
	mappings       []models.FieldMapping
	evaluations    map[int64]models.FilledEvaluation
	answers        map[int64][]models.AnswerItem

	nextID int64
	writes int

	// failAnswerAfter > 0 — CreateAnswer падает на N-й вставке
	failAnswerAfter int
	answerInserts   int
}

var errDisk = errors.New("disk full")

func newMemRepo() *memRepo {
	return &memRepo{
		users:          map[int64]models.User{},
		questionnaires: map[int64]models.Questionnaire{},
		items:          map[int64][]models.CompetencyItem{},
		evaluations:    map[int64]models.FilledEvaluation{},
		answers:        map[int64][]models.AnswerItem{},
	}
}

func (r *memRepo) id() int64 { r.nextID++; return r.nextID }

func (r *memRepo) addUser(name string) int64 {
	id := r.id()
	r.users[id] = models.User{ID: id, Name: name, IsActive: true}
	return id
}

func (r *memRepo) addQuestionnaire(name string, family models.Family, items ...models.CompetencyItem) (int64, []models.CompetencyItem) {
	qid := r.id()
	r.questionnaires[qid] = models.Questionnaire{ID: qid, Name: name, Family: family}
	out := make([]models.CompetencyItem, 0, len(items))
	for _, it := range items {
		it.ID = r.id()
		it.QuestionnaireID = qid
		out = append(out, it)
	}
	r.items[qid] = out
	return qid, out
}

func (r *memRepo) QuestionnaireByID(_ context.Context, id int64) (*models.Questionnaire, error) {
	q, ok := r.questionnaires[id]
	if !ok {
		return nil, nil
	}
	return &q, nil
}

func (r *memRepo) CompetencyItems(_ context.Context, questionnaireID int64) ([]models.CompetencyItem, error) {
	return append([]models.CompetencyItem(nil), r.items[questionnaireID]...), nil
}

func (r *memRepo) FieldMappings(_ context.Context, family models.Family) ([]models.FieldMapping, error) {
	var out []models.FieldMapping
	for _, m := range r.mappings {
		if m.Family == family {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memRepo) UserByID(_ context.Context, id int64) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *memRepo) EvaluationByID(_ context.Context, id int64, _ bool) (*models.FilledEvaluation, error) {
	e, ok := r.evaluations[id]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (r *memRepo) CreateEvaluation(_ context.Context, e *models.FilledEvaluation) error {
	r.writes++
	e.ID = r.id()
	e.Version = 1
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt
	cp := *e
	cp.Answers = nil
	r.evaluations[e.ID] = cp
	return nil
}

func (r *memRepo) UpdateEvaluation(_ context.Context, e *models.FilledEvaluation, expectedVersion int64) (bool, error) {
	r.writes++
	cur, ok := r.evaluations[e.ID]
	if !ok || cur.Version != expectedVersion {
		return false, nil
	}
	e.Version = expectedVersion + 1
	cp := *e
	cp.Answers = nil
	r.evaluations[e.ID] = cp
	return true, nil
}

func (r *memRepo) DeleteAnswers(_ context.Context, evaluationID int64) (int64, error) {
	r.writes++
	n := int64(len(r.answers[evaluationID]))
	delete(r.answers, evaluationID)
	return n, nil
}

func (r *memRepo) CreateAnswer(_ context.Context, a *models.AnswerItem) error {
	r.writes++
	r.answerInserts++
	if r.failAnswerAfter > 0 && r.answerInserts >= r.failAnswerAfter {
		return errDisk
	}
	for _, x := range r.answers[a.FilledEvaluationID] {
		if x.CompetencyItemID == a.CompetencyItemID {
			return errors.New("duplicate answer for competency item")
		}
	}
	a.ID = r.id()
	r.answers[a.FilledEvaluationID] = append(r.answers[a.FilledEvaluationID], *a)
	return nil
}

func (r *memRepo) Answers(_ context.Context, evaluationID int64) ([]models.AnswerItem, error) {
	return append([]models.AnswerItem(nil), r.answers[evaluationID]...), nil
}

func (r *memRepo) CreateQuestionnaire(_ context.Context, qn *models.Questionnaire) error {
	r.writes++
	qn.ID = r.id()
	r.questionnaires[qn.ID] = *qn
	return nil
}

func (r *memRepo) CreateCompetencyItem(_ context.Context, it *models.CompetencyItem) error {
	r.writes++
	it.ID = r.id()
	r.items[it.QuestionnaireID] = append(r.items[it.QuestionnaireID], *it)
	return nil
}

func (r *memRepo) UpsertFieldMapping(_ context.Context, m models.FieldMapping) error {
	r.writes++
	for i, x := range r.mappings {
		if x.Family == m.Family && x.CompetencyName == m.CompetencyName {
			r.mappings[i] = m
			return nil
		}
	}
	r.mappings = append(r.mappings, m)
	return nil
}

func (r *memRepo) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	evals := make(map[int64]models.FilledEvaluation, len(r.evaluations))
	for k, v := range r.evaluations {
		evals[k] = v
	}
	answers := make(map[int64][]models.AnswerItem, len(r.answers))
	for k, v := range r.answers {
		answers[k] = append([]models.AnswerItem(nil), v...)
	}
	qns := make(map[int64]models.Questionnaire, len(r.questionnaires))
	for k, v := range r.questionnaires {
		qns[k] = v
	}
	items := make(map[int64][]models.CompetencyItem, len(r.items))
	for k, v := range r.items {
		items[k] = append([]models.CompetencyItem(nil), v...)
	}
	mappings := append([]models.FieldMapping(nil), r.mappings...)

	if err := fn(ctx); err != nil {
		r.evaluations, r.answers, r.questionnaires, r.items, r.mappings = evals, answers, qns, items, mappings
		return err
	}
	return nil
}

func ptrInt64(v int64) *int64 { return &v }

func item(name string, kind models.ItemKind, order int, required bool) models.CompetencyItem {
	return models.CompetencyItem{Name: name, Kind: kind, DisplayOrder: order, Required: required, Active: true}
}
