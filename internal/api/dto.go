package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Spok95/academic-eval/internal/evaluation"
	"github.com/Spok95/academic-eval/internal/models"
	"github.com/Spok95/academic-eval/internal/schedule"
)

type conflictRequest struct {
	LocationID     *int64     `json:"location_id" validate:"omitempty,gt=0"`
	Start          time.Time  `json:"start" validate:"required"`
	End            *time.Time `json:"end"`
	ExcludeEventID *int64     `json:"exclude_event_id" validate:"omitempty,gt=0"`
}

type conflictResponse struct {
	Conflict bool   `json:"conflict"`
	EventID  *int64 `json:"event_id,omitempty"`
}

type eventRequest struct {
	Version           int64      `json:"version" validate:"gte=0"`
	Title             string     `json:"title" validate:"required,max=200"`
	Description       string     `json:"description" validate:"max=4000"`
	StartAt           time.Time  `json:"start_at" validate:"required"`
	EndAt             *time.Time `json:"end_at"`
	LocationID        *int64     `json:"location_id" validate:"omitempty,gt=0"`
	DisciplineID      *int64     `json:"discipline_id" validate:"omitempty,gt=0"`
	ClassID           *int64     `json:"class_id" validate:"omitempty,gt=0"`
	ResponsibleUserID *int64     `json:"responsible_user_id" validate:"omitempty,gt=0"`
	Type              string     `json:"type" validate:"omitempty,oneof=class exam seminar evaluation meeting general"`
}

func (r eventRequest) input() schedule.EventInput {
	return schedule.EventInput{
		Title:             r.Title,
		Description:       r.Description,
		StartAt:           r.StartAt,
		EndAt:             r.EndAt,
		LocationID:        r.LocationID,
		DisciplineID:      r.DisciplineID,
		ClassID:           r.ClassID,
		ResponsibleUserID: r.ResponsibleUserID,
		Type:              models.EventType(r.Type),
	}
}

type statusRequest struct {
	Status string `json:"status" validate:"required,oneof=scheduled in_progress completed cancelled"`
}

type itemRequest struct {
	Name         string `json:"name" validate:"required,max=200"`
	Kind         string `json:"kind" validate:"required,oneof=scale text choice checkbox"`
	DisplayOrder int    `json:"display_order" validate:"gte=0"`
	Required     bool   `json:"required"`
	Active       *bool  `json:"active"`
}

type questionnaireRequest struct {
	Name        string            `json:"name" validate:"required,max=200"`
	Description string            `json:"description"`
	Family      string            `json:"family" validate:"omitempty,oneof=mini-cex peer-360 team-360 patient-360 self-360"`
	Items       []itemRequest     `json:"items" validate:"dive"`
	Mappings    map[string]string `json:"mappings"`
}

func (r questionnaireRequest) input() evaluation.NewQuestionnaire {
	items := make([]evaluation.NewItem, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, evaluation.NewItem{
			Name:         it.Name,
			Kind:         models.ItemKind(it.Kind),
			DisplayOrder: it.DisplayOrder,
			Required:     it.Required,
			Active:       it.Active,
		})
	}
	return evaluation.NewQuestionnaire{
		Name:        r.Name,
		Description: r.Description,
		Family:      models.Family(r.Family),
		Items:       items,
		Mappings:    r.Mappings,
	}
}

type evaluationRequest struct {
	Version         int64      `json:"version" validate:"gte=0"`
	SubjectUserID   int64      `json:"subject_user_id" validate:"required,gt=0"`
	EvaluatorUserID *int64     `json:"evaluator_user_id" validate:"omitempty,gt=0"`
	EvaluatorRole   string     `json:"evaluator_role" validate:"max=100"`
	EvaluatorName   string     `json:"evaluator_name" validate:"max=200"`
	QuestionnaireID int64      `json:"questionnaire_id" validate:"required,gt=0"`
	StartsAt        time.Time  `json:"starts_at" validate:"required"`
	EndsAt          *time.Time `json:"ends_at"`
	Location        string     `json:"location" validate:"max=200"`
	Strengths       string     `json:"feedback_strengths"`
	Improvements    string     `json:"feedback_improvements"`
	ActionPlan      string     `json:"feedback_action_plan"`
	Answers         formValues `json:"answers"`
}

func (r evaluationRequest) submit(mode evaluation.Mode, id int64) evaluation.SubmitRequest {
	return evaluation.SubmitRequest{
		Mode:            mode,
		EvaluationID:    id,
		ExpectedVersion: r.Version,
		SubjectUserID:   r.SubjectUserID,
		EvaluatorUserID: r.EvaluatorUserID,
		EvaluatorRole:   r.EvaluatorRole,
		EvaluatorName:   r.EvaluatorName,
		QuestionnaireID: r.QuestionnaireID,
		StartsAt:        r.StartsAt,
		EndsAt:          r.EndsAt,
		Location:        r.Location,
		Strengths:       r.Strengths,
		Improvements:    r.Improvements,
		ActionPlan:      r.ActionPlan,
		Answers:         r.Answers,
	}
}

// formValues — поля формы. Числа и булевы значения принимаются как есть
// и приводятся к строке, как их прислала бы HTML-форма.
type formValues map[string]string

func (f *formValues) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out := make(formValues, len(raw))
	for k, v := range raw {
		v = bytes.TrimSpace(v)
		switch {
		case bytes.Equal(v, []byte("null")):
			continue
		case len(v) > 0 && v[0] == '"':
			var s string
			if err := json.Unmarshal(v, &s); err != nil {
				return fmt.Errorf("answers.%s: %w", k, err)
			}
			out[k] = s
		case bytes.Equal(v, []byte("true")), bytes.Equal(v, []byte("false")):
			out[k] = string(v)
		default:
			var n json.Number
			if err := json.Unmarshal(v, &n); err != nil {
				return fmt.Errorf("answers.%s: expected string, number or bool", k)
			}
			out[k] = n.String()
		}
	}
	*f = out
	return nil
}

type evaluationResponse struct {
	Evaluation      *models.FilledEvaluation `json:"evaluation"`
	State           evaluation.State         `json:"state"`
	Skipped         []evaluation.SkippedItem `json:"skipped"`
	SkippedRequired int                      `json:"skipped_required"`
}

type templateItem struct {
	models.CompetencyItem
	FieldKey        string `json:"field_key,omitempty"`
	NotEvaluatedKey string `json:"not_evaluated_key,omitempty"`
}

type templateResponse struct {
	Questionnaire *models.Questionnaire `json:"questionnaire"`
	Family        models.Family         `json:"family"`
	Items         []templateItem        `json:"items"`
}

func newTemplateResponse(t *evaluation.Template) templateResponse {
	items := make([]templateItem, 0, len(t.Items))
	for _, it := range t.Items {
		ti := templateItem{CompetencyItem: it}
		if key, ok := t.Fields.Lookup(it.Name); ok {
			ti.FieldKey = key
			ti.NotEvaluatedKey = evaluation.NotEvaluatedKey(key)
		}
		items = append(items, ti)
	}
	qn := *t.Questionnaire
	qn.Items = nil
	return templateResponse{Questionnaire: &qn, Family: t.Family, Items: items}
}
