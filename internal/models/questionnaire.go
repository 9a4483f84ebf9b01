package models

import "time"

type ItemKind string

const (
	KindScale    ItemKind = "scale"
	KindText     ItemKind = "text"
	KindChoice   ItemKind = "choice"
	KindCheckbox ItemKind = "checkbox"
)

func (k ItemKind) Valid() bool {
	switch k {
	case KindScale, KindText, KindChoice, KindCheckbox:
		return true
	}
	return false
}

// Family — семейство опросников с общей схемой имён полей формы.
type Family string

const (
	FamilyNone       Family = ""
	FamilyMiniCEX    Family = "mini-cex"
	FamilyPeer360    Family = "peer-360"
	FamilyTeam360    Family = "team-360"
	FamilyPatient360 Family = "patient-360"
	FamilySelf360    Family = "self-360"
)

func (f Family) Valid() bool {
	switch f {
	case FamilyNone, FamilyMiniCEX, FamilyPeer360, FamilyTeam360, FamilyPatient360, FamilySelf360:
		return true
	}
	return false
}

type Questionnaire struct {
	ID          int64            `db:"id" json:"id"`
	Name        string           `db:"name" json:"name"`
	Description string           `db:"description" json:"description"`
	Family      Family           `db:"family" json:"family"`
	CreatedAt   time.Time        `db:"created_at" json:"created_at"`
	Items       []CompetencyItem `json:"items,omitempty"`
}

type CompetencyItem struct {
	ID              int64    `db:"id" json:"id"`
	QuestionnaireID int64    `db:"questionnaire_id" json:"questionnaire_id"`
	Name            string   `db:"name" json:"name"`
	Kind            ItemKind `db:"kind" json:"kind"`
	DisplayOrder    int      `db:"display_order" json:"display_order"`
	Required        bool     `db:"required" json:"required"`
	Active          bool     `db:"active" json:"active"`
}

// FieldMapping — строка таблицы соответствий «компетенция → поле формы» для семейства.
type FieldMapping struct {
	Family         Family `db:"family" json:"family"`
	CompetencyName string `db:"competency_name" json:"competency_name"`
	FieldKey       string `db:"field_key" json:"field_key"`
}
