package evaluation

import (
	"context"
	"sort"

	"github.com/Spok95/academic-eval/internal/apperr"
	"github.com/Spok95/academic-eval/internal/models"
)

// TemplateSource — то, что нужно резолверу от хранилища.
type TemplateSource interface {
	QuestionnaireByID(ctx context.Context, id int64) (*models.Questionnaire, error)
	CompetencyItems(ctx context.Context, questionnaireID int64) ([]models.CompetencyItem, error)
	FieldMappings(ctx context.Context, family models.Family) ([]models.FieldMapping, error)
}

// Template — опросник с упорядоченными пунктами и таблицей полей его семейства.
type Template struct {
	Questionnaire *models.Questionnaire
	Family        models.Family
	Items         []models.CompetencyItem
	Fields        FieldTable
}

type Resolver struct {
	src TemplateSource
}

func NewResolver(src TemplateSource) *Resolver {
	return &Resolver{src: src}
}

func (r *Resolver) Resolve(ctx context.Context, questionnaireID int64) (*Template, error) {
	qn, err := r.src.QuestionnaireByID(ctx, questionnaireID)
	if err != nil {
		return nil, apperr.Persistence("load questionnaire", err)
	}
	if qn == nil {
		return nil, apperr.NotFound("questionnaire", questionnaireID)
	}

	items, err := r.src.CompetencyItems(ctx, questionnaireID)
	if err != nil {
		return nil, apperr.Persistence("load competency items", err)
	}
	SortItems(items)

	family := FamilyOf(qn)
	var overrides []models.FieldMapping
	if family != models.FamilyNone {
		overrides, err = r.src.FieldMappings(ctx, family)
		if err != nil {
			return nil, apperr.Persistence("load field mappings", err)
		}
	}

	qn.Items = items
	return &Template{
		Questionnaire: qn,
		Family:        family,
		Items:         items,
		Fields:        BuildFieldTable(family, overrides),
	}, nil
}

// SortItems — по порядку отображения, при равенстве по имени, затем по id.
func SortItems(items []models.CompetencyItem) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.DisplayOrder != b.DisplayOrder {
			return a.DisplayOrder < b.DisplayOrder
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
}
