package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Spok95/academic-eval/internal/models"
)

const evaluationColumns = `id, questionnaire_id, subject_user_id, evaluator_user_id, evaluator_role, evaluator_name,
		starts_at, ends_at, location, feedback_strengths, feedback_improvements, feedback_action_plan,
		version, created_at, updated_at`

func scanEvaluation(r rowScanner) (*models.FilledEvaluation, error) {
	var (
		e                    models.FilledEvaluation
		evaluator            sql.NullInt64
		role, name, location sql.NullString
		ends                 sql.NullTime
	)
	if err := r.Scan(&e.ID, &e.QuestionnaireID, &e.SubjectUserID, &evaluator, &role, &name,
		&e.StartsAt, &ends, &location, &e.Strengths, &e.Improvements, &e.ActionPlan,
		&e.Version, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	e.EvaluatorUserID = nullInt64Ptr(evaluator)
	e.EvaluatorRole = nullStringPtr(role)
	e.EvaluatorName = nullStringPtr(name)
	e.Location = nullStringPtr(location)
	if ends.Valid {
		t := ends.Time
		e.EndsAt = &t
	}
	return &e, nil
}

func CreateEvaluation(ctx context.Context, q Querier, e *models.FilledEvaluation) error {
	return q.QueryRowContext(ctx, `
		INSERT INTO filled_evaluations (questionnaire_id, subject_user_id, evaluator_user_id, evaluator_role,
		                                evaluator_name, starts_at, ends_at, location, feedback_strengths,
		                                feedback_improvements, feedback_action_plan)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, version, created_at, updated_at
	`, e.QuestionnaireID, e.SubjectUserID, e.EvaluatorUserID, e.EvaluatorRole, e.EvaluatorName,
		e.StartsAt, e.EndsAt, e.Location, e.Strengths, e.Improvements, e.ActionPlan,
	).Scan(&e.ID, &e.Version, &e.CreatedAt, &e.UpdatedAt)
}

// GetEvaluationByID — без ответов. forUpdate блокирует строку до конца транзакции.
func GetEvaluationByID(ctx context.Context, q Querier, id int64, forUpdate bool) (*models.FilledEvaluation, error) {
	query := `SELECT ` + evaluationColumns + ` FROM filled_evaluations WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	e, err := scanEvaluation(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return e, nil
}

// UpdateEvaluation — заголовок с проверкой версии; false — версия не совпала.
func UpdateEvaluation(ctx context.Context, q Querier, e *models.FilledEvaluation, expectedVersion int64) (bool, error) {
	err := q.QueryRowContext(ctx, `
		UPDATE filled_evaluations
		SET questionnaire_id = $1, subject_user_id = $2, evaluator_user_id = $3, evaluator_role = $4,
		    evaluator_name = $5, starts_at = $6, ends_at = $7, location = $8, feedback_strengths = $9,
		    feedback_improvements = $10, feedback_action_plan = $11,
		    version = version + 1, updated_at = now()
		WHERE id = $12 AND version = $13
		RETURNING version, updated_at
	`, e.QuestionnaireID, e.SubjectUserID, e.EvaluatorUserID, e.EvaluatorRole, e.EvaluatorName,
		e.StartsAt, e.EndsAt, e.Location, e.Strengths, e.Improvements, e.ActionPlan,
		e.ID, expectedVersion,
	).Scan(&e.Version, &e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func DeleteAnswersByEvaluation(ctx context.Context, q Querier, evaluationID int64) (int64, error) {
	res, err := q.ExecContext(ctx, `DELETE FROM answer_items WHERE filled_evaluation_id = $1`, evaluationID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func CreateAnswer(ctx context.Context, q Querier, a *models.AnswerItem) error {
	return q.QueryRowContext(ctx, `
		INSERT INTO answer_items (filled_evaluation_id, competency_item_id, value, text, not_evaluated)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, a.FilledEvaluationID, a.CompetencyItemID, a.Value, a.Text, a.NotEvaluated).Scan(&a.ID)
}

func ListAnswersByEvaluation(ctx context.Context, q Querier, evaluationID int64) ([]models.AnswerItem, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT a.id, a.filled_evaluation_id, a.competency_item_id, a.value, a.text, a.not_evaluated
		FROM answer_items a
		JOIN competency_items c ON c.id = a.competency_item_id
		WHERE a.filled_evaluation_id = $1
		ORDER BY c.display_order, c.name, a.id
	`, evaluationID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.AnswerItem
	for rows.Next() {
		var (
			a     models.AnswerItem
			value sql.NullFloat64
			text  sql.NullString
		)
		if err := rows.Scan(&a.ID, &a.FilledEvaluationID, &a.CompetencyItemID, &value, &text, &a.NotEvaluated); err != nil {
			return nil, err
		}
		if value.Valid {
			v := value.Float64
			a.Value = &v
		}
		a.Text = nullStringPtr(text)
		out = append(out, a)
	}
	return out, rows.Err()
}

func nullStringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
