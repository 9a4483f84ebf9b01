package evaluation

import (
	"math"
	"strconv"
	"strings"

	"github.com/Spok95/academic-eval/internal/apperr"
	"github.com/Spok95/academic-eval/internal/models"
)

type SkipReason string

const (
	SkipUnmapped SkipReason = "unmapped"
	SkipEmpty    SkipReason = "empty"
	SkipInactive SkipReason = "inactive"
)

type SkippedItem struct {
	ItemID   int64      `json:"item_id"`
	Name     string     `json:"name"`
	Required bool       `json:"required"`
	Reason   SkipReason `json:"reason"`
}

type MapResult struct {
	Answers []models.AnswerItem
	Skipped []SkippedItem
	// SkippedRequired — обязательные активные пункты, оставшиеся без ответа.
	SkippedRequired int
}

// Map переводит сырые поля формы в ответы по пунктам шаблона.
// Пункт без поля в таблице семейства пропускается (не ошибка). Флаг
// nao_avaliado_* важнее значения. Ошибка разбора числа — ValidationError,
// частичного результата нет.
func Map(tmpl *Template, raw map[string]string) (MapResult, error) {
	var res MapResult
	seen := make(map[int64]struct{}, len(tmpl.Items))

	skip := func(it models.CompetencyItem, reason SkipReason) {
		res.Skipped = append(res.Skipped, SkippedItem{ItemID: it.ID, Name: it.Name, Required: it.Required, Reason: reason})
		if it.Required && reason != SkipInactive {
			res.SkippedRequired++
		}
	}

	for _, it := range tmpl.Items {
		if it.QuestionnaireID != tmpl.Questionnaire.ID {
			continue
		}
		if _, dup := seen[it.ID]; dup {
			continue
		}
		seen[it.ID] = struct{}{}

		if !it.Active {
			skip(it, SkipInactive)
			continue
		}
		key, ok := tmpl.Fields.Lookup(it.Name)
		if !ok {
			skip(it, SkipUnmapped)
			continue
		}

		if isTruthy(raw[NotEvaluatedKey(key)]) {
			res.Answers = append(res.Answers, models.AnswerItem{CompetencyItemID: it.ID, NotEvaluated: true})
			continue
		}

		v := strings.TrimSpace(raw[key])
		if v == "" {
			skip(it, SkipEmpty)
			continue
		}

		ans := models.AnswerItem{CompetencyItemID: it.ID}
		if it.Kind == models.KindScale {
			f, err := parseScale(v)
			if err != nil {
				return MapResult{}, apperr.Validationf(key, "competency item %q (id %d): %q is not a number", it.Name, it.ID, v)
			}
			ans.Value = &f
		} else {
			text := v
			ans.Text = &text
		}
		res.Answers = append(res.Answers, ans)
	}
	return res, nil
}

func parseScale(v string) (float64, error) {
	f, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", "."), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, strconv.ErrSyntax
	}
	return f, nil
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "on", "yes", "y", "sim", "s":
		return true
	}
	return false
}
