package evaluation

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Spok95/academic-eval/internal/apperr"
	"github.com/Spok95/academic-eval/internal/models"
)

type NewItem struct {
	Name         string
	Kind         models.ItemKind
	DisplayOrder int
	Required     bool
	Active       *bool // nil — активен
}

type NewQuestionnaire struct {
	Name        string
	Description string
	Family      models.Family // пусто — определить по названию
	Items       []NewItem
	// Mappings — дополнительные соответствия «компетенция → поле» для семейства.
	Mappings map[string]string
}

// CreateQuestionnaire сохраняет опросник вместе с пунктами и соответствиями полей.
// Семейство фиксируется при создании, чтобы дальше не зависеть от названия.
func (s *Service) CreateQuestionnaire(ctx context.Context, in NewQuestionnaire) (*models.Questionnaire, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, apperr.Validation("name", "required")
	}
	if !in.Family.Valid() {
		return nil, apperr.Validationf("family", "unknown family %q", in.Family)
	}
	if in.Family == models.FamilyNone {
		in.Family = ClassifyName(in.Name)
	}
	if len(in.Mappings) > 0 && in.Family == models.FamilyNone {
		return nil, apperr.Validation("mappings", "a family is required to store field mappings")
	}

	names := make(map[string]struct{}, len(in.Items))
	for i, it := range in.Items {
		field := fmt.Sprintf("items[%d]", i)
		if strings.TrimSpace(it.Name) == "" {
			return nil, apperr.Validation(field+".name", "required")
		}
		if !it.Kind.Valid() {
			return nil, apperr.Validationf(field+".kind", "unknown kind %q", it.Kind)
		}
		n := Normalize(it.Name)
		if _, dup := names[n]; dup {
			return nil, apperr.Validationf(field+".name", "duplicate competency %q", it.Name)
		}
		names[n] = struct{}{}
	}

	qn := &models.Questionnaire{Name: in.Name, Description: in.Description, Family: in.Family}
	err := s.repo.InTx(ctx, func(ctx context.Context) error {
		if err := s.repo.CreateQuestionnaire(ctx, qn); err != nil {
			return apperr.Persistence("create questionnaire", err)
		}
		for i, it := range in.Items {
			item := models.CompetencyItem{
				QuestionnaireID: qn.ID,
				Name:            strings.TrimSpace(it.Name),
				Kind:            it.Kind,
				DisplayOrder:    it.DisplayOrder,
				Required:        it.Required,
				Active:          it.Active == nil || *it.Active,
			}
			if item.DisplayOrder == 0 {
				item.DisplayOrder = i + 1
			}
			if err := s.repo.CreateCompetencyItem(ctx, &item); err != nil {
				return apperr.Persistence("create competency item", err)
			}
			qn.Items = append(qn.Items, item)
		}
		for name, key := range in.Mappings {
			m := models.FieldMapping{Family: in.Family, CompetencyName: Normalize(name), FieldKey: strings.TrimSpace(key)}
			if m.CompetencyName == "" || m.FieldKey == "" {
				return apperr.Validationf("mappings", "empty mapping %q -> %q", name, key)
			}
			if err := s.repo.UpsertFieldMapping(ctx, m); err != nil {
				return apperr.Persistence("upsert field mapping", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, wrapTxErr("create questionnaire", err)
	}
	SortItems(qn.Items)
	s.log.Info("questionnaire created",
		zap.Int64("questionnaire_id", qn.ID),
		zap.String("family", string(qn.Family)),
		zap.Int("items", len(qn.Items)),
	)
	return qn, nil
}
