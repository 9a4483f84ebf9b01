package evaluation

import (
	"strings"

	"github.com/Spok95/academic-eval/internal/models"
)

type familyRule struct {
	family models.Family
	all    []string // все должны встретиться
	any    []string // хотя бы одно
}

// Порядок важен: более конкретные правила раньше.
var familyRules = []familyRule{
	{family: models.FamilyMiniCEX, any: []string{"mini-cex", "minicex", "mini cex"}},
	{family: models.FamilyPatient360, all: []string{"360"}, any: []string{"paciente", "patient"}},
	{family: models.FamilyTeam360, all: []string{"360"}, any: []string{"equipe", "team", "multiprofissional"}},
	{family: models.FamilySelf360, any: []string{"autoavaliacao", "self-360", "self 360", "360 self"}},
	{family: models.FamilyPeer360, all: []string{"360"}, any: []string{"pares", "peer", "colegas"}},
}

// ClassifyName определяет семейство по названию опросника.
// Используется только для старых опросников без сохранённого семейства.
func ClassifyName(name string) models.Family {
	n := Normalize(name)
	for _, r := range familyRules {
		if containsAll(n, r.all) && containsAny(n, r.any) {
			return r.family
		}
	}
	return models.FamilyNone
}

// FamilyOf — сохранённое семейство, иначе классификация по названию.
func FamilyOf(q *models.Questionnaire) models.Family {
	if q.Family != models.FamilyNone {
		return q.Family
	}
	return ClassifyName(q.Name)
}

func containsAll(s string, subs []string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}

func containsAny(s string, subs []string) bool {
	if len(subs) == 0 {
		return true
	}
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
