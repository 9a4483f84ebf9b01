package db

import (
	"context"
	"time"

	"github.com/Spok95/academic-eval/internal/models"
)

func (s *Store) Ping(ctx context.Context) error { return s.DB.PingContext(ctx) }

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	return CreateUser(ctx, s.q(ctx), u)
}

func (s *Store) UserByID(ctx context.Context, id int64) (*models.User, error) {
	return GetUserByID(ctx, s.q(ctx), id)
}

func (s *Store) UsersByIDs(ctx context.Context, ids []int64) ([]models.User, error) {
	return ListUsersByIDs(ctx, s.q(ctx), ids)
}

func (s *Store) CreateLocation(ctx context.Context, l *models.Location) error {
	return CreateLocation(ctx, s.q(ctx), l)
}

func (s *Store) LocationByID(ctx context.Context, id int64) (*models.Location, error) {
	return GetLocationByID(ctx, s.q(ctx), id)
}

func (s *Store) CreateQuestionnaire(ctx context.Context, qn *models.Questionnaire) error {
	return CreateQuestionnaire(ctx, s.q(ctx), qn)
}

func (s *Store) CreateCompetencyItem(ctx context.Context, it *models.CompetencyItem) error {
	return CreateCompetencyItem(ctx, s.q(ctx), it)
}

func (s *Store) QuestionnaireByID(ctx context.Context, id int64) (*models.Questionnaire, error) {
	return GetQuestionnaireByID(ctx, s.q(ctx), id)
}

func (s *Store) CompetencyItems(ctx context.Context, questionnaireID int64) ([]models.CompetencyItem, error) {
	return ListCompetencyItems(ctx, s.q(ctx), questionnaireID)
}

func (s *Store) FieldMappings(ctx context.Context, family models.Family) ([]models.FieldMapping, error) {
	return ListFieldMappings(ctx, s.q(ctx), family)
}

func (s *Store) UpsertFieldMapping(ctx context.Context, m models.FieldMapping) error {
	return UpsertFieldMapping(ctx, s.q(ctx), m)
}

func (s *Store) EvaluationByID(ctx context.Context, id int64, forUpdate bool) (*models.FilledEvaluation, error) {
	return GetEvaluationByID(ctx, s.q(ctx), id, forUpdate)
}

func (s *Store) CreateEvaluation(ctx context.Context, e *models.FilledEvaluation) error {
	return CreateEvaluation(ctx, s.q(ctx), e)
}

func (s *Store) UpdateEvaluation(ctx context.Context, e *models.FilledEvaluation, expectedVersion int64) (bool, error) {
	return UpdateEvaluation(ctx, s.q(ctx), e, expectedVersion)
}

func (s *Store) DeleteAnswers(ctx context.Context, evaluationID int64) (int64, error) {
	return DeleteAnswersByEvaluation(ctx, s.q(ctx), evaluationID)
}

func (s *Store) CreateAnswer(ctx context.Context, a *models.AnswerItem) error {
	return CreateAnswer(ctx, s.q(ctx), a)
}

func (s *Store) Answers(ctx context.Context, evaluationID int64) ([]models.AnswerItem, error) {
	return ListAnswersByEvaluation(ctx, s.q(ctx), evaluationID)
}

func (s *Store) EventByID(ctx context.Context, id int64) (*models.Event, error) {
	return GetEventByID(ctx, s.q(ctx), id)
}

func (s *Store) ActiveEventsAtLocation(ctx context.Context, locationID int64) ([]models.Event, error) {
	return ListActiveEventsAtLocation(ctx, s.q(ctx), locationID)
}

func (s *Store) CreateEvent(ctx context.Context, e *models.Event) error {
	return CreateEvent(ctx, s.q(ctx), e)
}

func (s *Store) UpdateEvent(ctx context.Context, e *models.Event, expectedVersion int64) (bool, error) {
	return UpdateEvent(ctx, s.q(ctx), e, expectedVersion)
}

func (s *Store) SetEventStatus(ctx context.Context, id int64, from, to models.EventStatus) (bool, error) {
	return SetEventStatus(ctx, s.q(ctx), id, from, to)
}

func (s *Store) AdvanceEventStatuses(ctx context.Context, now time.Time) (started, completed []int64, err error) {
	return AdvanceEventStatuses(ctx, s.q(ctx), now)
}
