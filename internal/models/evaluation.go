package models

import "time"

type FilledEvaluation struct {
	ID              int64      `db:"id" json:"id"`
	QuestionnaireID int64      `db:"questionnaire_id" json:"questionnaire_id"`
	SubjectUserID   int64      `db:"subject_user_id" json:"subject_user_id"`
	EvaluatorUserID *int64     `db:"evaluator_user_id" json:"evaluator_user_id,omitempty"`
	EvaluatorRole   *string    `db:"evaluator_role" json:"evaluator_role,omitempty"`
	EvaluatorName   *string    `db:"evaluator_name" json:"evaluator_name,omitempty"`
	StartsAt        time.Time  `db:"starts_at" json:"starts_at"`
	EndsAt          *time.Time `db:"ends_at" json:"ends_at,omitempty"`
	Location        *string    `db:"location" json:"location,omitempty"`
	Strengths       string     `db:"feedback_strengths" json:"feedback_strengths"`
	Improvements    string     `db:"feedback_improvements" json:"feedback_improvements"`
	ActionPlan      string     `db:"feedback_action_plan" json:"feedback_action_plan"`
	Version         int64      `db:"version" json:"version"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`

	Answers []AnswerItem `json:"answers"`
}

type AnswerItem struct {
	ID                 int64    `db:"id" json:"id"`
	FilledEvaluationID int64    `db:"filled_evaluation_id" json:"filled_evaluation_id"`
	CompetencyItemID   int64    `db:"competency_item_id" json:"competency_item_id"`
	Value              *float64 `db:"value" json:"value,omitempty"`
	Text               *string  `db:"text" json:"text,omitempty"`
	NotEvaluated       bool     `db:"not_evaluated" json:"not_evaluated"`
}

// Valid — ровно одно из: числовое значение, текст, «не оценивалось».
func (a AnswerItem) Valid() bool {
	n := 0
	if a.Value != nil {
		n++
	}
	if a.Text != nil {
		n++
	}
	if a.NotEvaluated {
		n++
	}
	return n == 1
}
