// Package evaluation — шаблоны опросников, сопоставление ответов формы
// с пунктами компетенций и отправка заполненной оценки.
package evaluation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Spok95/academic-eval/internal/apperr"
	"github.com/Spok95/academic-eval/internal/logging"
	"github.com/Spok95/academic-eval/internal/metrics"
	"github.com/Spok95/academic-eval/internal/models"
)

type Repository interface {
	TemplateSource
	UserByID(ctx context.Context, id int64) (*models.User, error)
	EvaluationByID(ctx context.Context, id int64, forUpdate bool) (*models.FilledEvaluation, error)
	CreateEvaluation(ctx context.Context, e *models.FilledEvaluation) error
	UpdateEvaluation(ctx context.Context, e *models.FilledEvaluation, expectedVersion int64) (bool, error)
	DeleteAnswers(ctx context.Context, evaluationID int64) (int64, error)
	CreateAnswer(ctx context.Context, a *models.AnswerItem) error
	Answers(ctx context.Context, evaluationID int64) ([]models.AnswerItem, error)
	CreateQuestionnaire(ctx context.Context, qn *models.Questionnaire) error
	CreateCompetencyItem(ctx context.Context, it *models.CompetencyItem) error
	UpsertFieldMapping(ctx context.Context, m models.FieldMapping) error
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type SubmitRequest struct {
	Mode            Mode
	EvaluationID    int64 // только для ModeEdit
	ExpectedVersion int64 // 0 — без проверки версии
	SubjectUserID   int64
	EvaluatorUserID *int64
	EvaluatorRole   string
	EvaluatorName   string
	QuestionnaireID int64
	StartsAt        time.Time
	EndsAt          *time.Time
	Location        string
	Strengths       string
	Improvements    string
	ActionPlan      string
	Answers         map[string]string
}

type SubmitResult struct {
	Evaluation      *models.FilledEvaluation
	Template        *Template
	Skipped         []SkippedItem
	SkippedRequired int
	State           State
}

type Service struct {
	repo     Repository
	resolver *Resolver
	log      *zap.Logger
}

func NewService(repo Repository, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, resolver: NewResolver(repo), log: log}
}

func (s *Service) Resolver() *Resolver { return s.resolver }

// Template — шаблон опросника для формы и выгрузки.
func (s *Service) Template(ctx context.Context, questionnaireID int64) (*Template, error) {
	return s.resolver.Resolve(ctx, questionnaireID)
}

// Submit создаёт или редактирует заполненную оценку. Заголовок, удаление старых
// ответов и вставка новых идут одной транзакцией: снаружи виден либо прежний
// набор ответов, либо новый целиком.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	log := logging.FromContext(ctx, s.log).With(zap.String("mode", string(req.Mode)))
	sub := &submission{state: StateNew}

	res, err := s.submit(ctx, req, sub)
	if err != nil {
		sub.fail()
		metrics.Submissions.WithLabelValues(string(req.Mode), errorKind(err)).Inc()
		log.Warn("evaluation submit failed", zap.String("state", string(sub.state)), zap.Error(err))
		return nil, err
	}

	if !sub.advance(StateCommitted) {
		return nil, fmt.Errorf("submit: unexpected state %s", sub.state)
	}
	res.State = sub.state
	metrics.Submissions.WithLabelValues(string(req.Mode), "ok").Inc()
	if res.SkippedRequired > 0 {
		metrics.SkippedRequired.Add(float64(res.SkippedRequired))
	}
	log.Info("evaluation submitted",
		zap.Int64("evaluation_id", res.Evaluation.ID),
		zap.Int64("version", res.Evaluation.Version),
		zap.Int("answers", len(res.Evaluation.Answers)),
		zap.Int("skipped_required", res.SkippedRequired),
	)
	return res, nil
}

func (s *Service) submit(ctx context.Context, req SubmitRequest, sub *submission) (*SubmitResult, error) {
	if err := validateRequest(&req); err != nil {
		return nil, err
	}

	var res *SubmitResult
	err := s.repo.InTx(ctx, func(ctx context.Context) error {
		// всё, что может отказать без записи, — до первой записи
		if err := s.ensureUser(ctx, req.SubjectUserID); err != nil {
			return err
		}
		if req.EvaluatorUserID != nil {
			if err := s.ensureUser(ctx, *req.EvaluatorUserID); err != nil {
				return err
			}
		}
		tmpl, err := s.resolver.Resolve(ctx, req.QuestionnaireID)
		if err != nil {
			return err
		}
		mapped, err := Map(tmpl, req.Answers)
		if err != nil {
			return err
		}

		ev := &models.FilledEvaluation{}
		var version int64
		if req.Mode == ModeEdit {
			cur, err := s.repo.EvaluationByID(ctx, req.EvaluationID, true)
			if err != nil {
				return apperr.Persistence("load evaluation", err)
			}
			if cur == nil {
				return apperr.NotFound("filled evaluation", req.EvaluationID)
			}
			version = cur.Version
			if req.ExpectedVersion != 0 && req.ExpectedVersion != cur.Version {
				return apperr.ConcurrentModification("filled evaluation", cur.ID, req.ExpectedVersion)
			}
			ev = cur
		}
		applyHeader(ev, &req)

		if req.Mode == ModeEdit {
			ok, err := s.repo.UpdateEvaluation(ctx, ev, version)
			if err != nil {
				return apperr.Persistence("update evaluation", err)
			}
			if !ok {
				return apperr.ConcurrentModification("filled evaluation", ev.ID, version)
			}
		} else if err := s.repo.CreateEvaluation(ctx, ev); err != nil {
			return apperr.Persistence("create evaluation", err)
		}
		sub.advance(StateHeaderPersisted)

		if req.Mode == ModeEdit {
			if _, err := s.repo.DeleteAnswers(ctx, ev.ID); err != nil {
				return apperr.Persistence("delete answers", err)
			}
		}
		answers := make([]models.AnswerItem, 0, len(mapped.Answers))
		for _, a := range mapped.Answers {
			a.FilledEvaluationID = ev.ID
			if err := s.repo.CreateAnswer(ctx, &a); err != nil {
				return apperr.Persistence("create answer", err)
			}
			answers = append(answers, a)
		}
		ev.Answers = answers
		sub.advance(StateAnswersReplaced)

		res = &SubmitResult{
			Evaluation:      ev,
			Template:        tmpl,
			Skipped:         mapped.Skipped,
			SkippedRequired: mapped.SkippedRequired,
		}
		return nil
	})
	if err != nil {
		return nil, wrapTxErr("submit evaluation", err)
	}
	return res, nil
}

// Get — оценка вместе с ответами.
func (s *Service) Get(ctx context.Context, id int64) (*models.FilledEvaluation, error) {
	ev, err := s.repo.EvaluationByID(ctx, id, false)
	if err != nil {
		return nil, apperr.Persistence("load evaluation", err)
	}
	if ev == nil {
		return nil, apperr.NotFound("filled evaluation", id)
	}
	ev.Answers, err = s.repo.Answers(ctx, id)
	if err != nil {
		return nil, apperr.Persistence("load answers", err)
	}
	if ev.Answers == nil {
		ev.Answers = []models.AnswerItem{}
	}
	return ev, nil
}

func (s *Service) ensureUser(ctx context.Context, id int64) error {
	u, err := s.repo.UserByID(ctx, id)
	if err != nil {
		return apperr.Persistence("load user", err)
	}
	if u == nil {
		return apperr.NotFound("user", id)
	}
	return nil
}

func validateRequest(req *SubmitRequest) error {
	switch req.Mode {
	case ModeCreate:
	case ModeEdit:
		if req.EvaluationID <= 0 {
			return apperr.Validation("evaluation_id", "required for edit")
		}
	default:
		return apperr.Validationf("mode", "unknown mode %q", req.Mode)
	}

	req.EvaluatorRole = strings.TrimSpace(req.EvaluatorRole)
	req.EvaluatorName = strings.TrimSpace(req.EvaluatorName)
	external := req.EvaluatorRole != "" || req.EvaluatorName != ""
	switch {
	case req.EvaluatorUserID != nil && external:
		return apperr.Validation("evaluator", "either evaluator_user_id or evaluator_role/evaluator_name, not both")
	case req.EvaluatorUserID == nil && !external:
		return apperr.Validation("evaluator", "required")
	case external && req.EvaluatorName == "":
		return apperr.Validation("evaluator_name", "required for an external evaluator")
	case external && req.EvaluatorRole == "":
		return apperr.Validation("evaluator_role", "required for an external evaluator")
	}

	if req.SubjectUserID <= 0 {
		return apperr.Validation("subject_user_id", "required")
	}
	if req.QuestionnaireID <= 0 {
		return apperr.Validation("questionnaire_id", "required")
	}
	if req.StartsAt.IsZero() {
		return apperr.Validation("starts_at", "required")
	}
	if req.EndsAt != nil && !req.EndsAt.After(req.StartsAt) {
		return apperr.Validation("ends_at", "must be after starts_at")
	}
	return nil
}

func applyHeader(ev *models.FilledEvaluation, req *SubmitRequest) {
	ev.QuestionnaireID = req.QuestionnaireID
	ev.SubjectUserID = req.SubjectUserID
	ev.EvaluatorUserID = req.EvaluatorUserID
	ev.EvaluatorRole = optString(req.EvaluatorRole)
	ev.EvaluatorName = optString(req.EvaluatorName)
	ev.StartsAt = req.StartsAt
	ev.EndsAt = req.EndsAt
	ev.Location = optString(strings.TrimSpace(req.Location))
	ev.Strengths = req.Strengths
	ev.Improvements = req.Improvements
	ev.ActionPlan = req.ActionPlan
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func errorKind(err error) string {
	switch {
	case apperr.IsValidation(err):
		return "validation"
	case apperr.IsNotFound(err):
		return "not_found"
	case apperr.IsConcurrentModification(err):
		return "concurrent_modification"
	default:
		return "persistence"
	}
}

func wrapTxErr(op string, err error) error {
	if apperr.IsValidation(err) || apperr.IsNotFound(err) || apperr.IsConcurrentModification(err) || apperr.IsPersistence(err) {
		return err
	}
	return apperr.Persistence(op, err)
}
