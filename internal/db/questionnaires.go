package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Spok95/academic-eval/internal/models"
)

// CreateQuestionnaire вставляет заголовок; пункты — отдельно через CreateCompetencyItem
// в той же транзакции.
func CreateQuestionnaire(ctx context.Context, q Querier, qn *models.Questionnaire) error {
	return q.QueryRowContext(ctx, `
		INSERT INTO questionnaires (name, description, family)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, qn.Name, qn.Description, string(qn.Family)).Scan(&qn.ID, &qn.CreatedAt)
}

func CreateCompetencyItem(ctx context.Context, q Querier, it *models.CompetencyItem) error {
	return q.QueryRowContext(ctx, `
		INSERT INTO competency_items (questionnaire_id, name, kind, display_order, required, active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, it.QuestionnaireID, it.Name, string(it.Kind), it.DisplayOrder, it.Required, it.Active).Scan(&it.ID)
}

func GetQuestionnaireByID(ctx context.Context, q Querier, id int64) (*models.Questionnaire, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, name, description, family, created_at
		FROM questionnaires WHERE id = $1
	`, id)
	var qn models.Questionnaire
	if err := row.Scan(&qn.ID, &qn.Name, &qn.Description, &qn.Family, &qn.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &qn, nil
}

// ListCompetencyItems — по порядку отображения, при равенстве — по имени.
func ListCompetencyItems(ctx context.Context, q Querier, questionnaireID int64) ([]models.CompetencyItem, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, questionnaire_id, name, kind, display_order, required, active
		FROM competency_items
		WHERE questionnaire_id = $1
		ORDER BY display_order, name, id
	`, questionnaireID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.CompetencyItem
	for rows.Next() {
		var it models.CompetencyItem
		if err := rows.Scan(&it.ID, &it.QuestionnaireID, &it.Name, &it.Kind, &it.DisplayOrder, &it.Required, &it.Active); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func ListFieldMappings(ctx context.Context, q Querier, family models.Family) ([]models.FieldMapping, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT family, competency_name, field_key
		FROM field_mappings
		WHERE family = $1
		ORDER BY competency_name
	`, string(family))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.FieldMapping
	for rows.Next() {
		var m models.FieldMapping
		if err := rows.Scan(&m.Family, &m.CompetencyName, &m.FieldKey); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func UpsertFieldMapping(ctx context.Context, q Querier, m models.FieldMapping) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO field_mappings (family, competency_name, field_key)
		VALUES ($1, $2, $3)
		ON CONFLICT (family, competency_name) DO UPDATE SET field_key = EXCLUDED.field_key
	`, string(m.Family), m.CompetencyName, m.FieldKey)
	return err
}
