package evaluation

import (
	"strings"

	"github.com/Spok95/academic-eval/internal/models"
)

const (
	valuePrefix        = "answer_"
	notEvaluatedPrefix = "nao_avaliado_"
)

// FieldTable: нормализованное имя компетенции → ключ поля формы.
type FieldTable map[string]string

// Lookup ищет поле для имени компетенции (имя нормализуется).
func (t FieldTable) Lookup(competencyName string) (string, bool) {
	key, ok := t[Normalize(competencyName)]
	return key, ok
}

// NotEvaluatedKey: answer_clinical_judgment → nao_avaliado_clinical_judgment.
func NotEvaluatedKey(valueKey string) string {
	return notEvaluatedPrefix + strings.TrimPrefix(valueKey, valuePrefix)
}

type fieldEntry struct {
	key   string
	names []string // синонимы pt/en, уже в нормализованном виде
}

var defaultFields = map[models.Family][]fieldEntry{
	models.FamilyMiniCEX: {
		{"answer_medical_interview", []string{"entrevista medica", "anamnese", "medical interview", "medical interviewing skills"}},
		{"answer_physical_exam", []string{"exame fisico", "physical exam", "physical examination skills"}},
		{"answer_professionalism", []string{"profissionalismo", "qualidades humanisticas/profissionalismo", "professionalism", "humanistic qualities/professionalism"}},
		{"answer_clinical_judgment", []string{"julgamento clinico", "raciocinio clinico", "clinical judgment", "clinical judgement"}},
		{"answer_communication", []string{"habilidades de comunicacao", "comunicacao", "communication skills", "counseling skills"}},
		{"answer_organization", []string{"organizacao e eficiencia", "organizacao/eficiencia", "organization/efficiency", "organization and efficiency"}},
		{"answer_overall", []string{"competencia clinica geral", "avaliacao global", "overall clinical competence"}},
	},
	models.FamilyPeer360: {
		{"answer_peer_communication", []string{"comunicacao", "communication"}},
		{"answer_peer_teamwork", []string{"trabalho em equipe", "teamwork"}},
		{"answer_peer_ethics", []string{"etica", "etica profissional", "ethics"}},
		{"answer_peer_responsibility", []string{"responsabilidade", "responsibility"}},
		{"answer_peer_knowledge", []string{"conhecimento tecnico", "technical knowledge"}},
		{"answer_peer_respect", []string{"respeito", "respect"}},
		{"answer_peer_comments", []string{"comentarios", "comments"}},
	},
	models.FamilyTeam360: {
		{"answer_team_communication", []string{"comunicacao com a equipe", "comunicacao", "communication with the team"}},
		{"answer_team_collaboration", []string{"colaboracao", "trabalho em equipe", "collaboration"}},
		{"answer_team_punctuality", []string{"pontualidade", "assiduidade e pontualidade", "punctuality"}},
		{"answer_team_respect", []string{"respeito", "respeito aos colegas", "respect"}},
		{"answer_team_leadership", []string{"lideranca", "leadership"}},
		{"answer_team_comments", []string{"comentarios", "comments"}},
	},
	models.FamilyPatient360: {
		{"answer_patient_courtesy", []string{"cordialidade", "educacao e cordialidade", "courtesy"}},
		{"answer_patient_listening", []string{"escuta", "escuta atenta", "listening"}},
		{"answer_patient_explanation", []string{"explicacao clara", "clareza nas explicacoes", "clear explanation"}},
		{"answer_patient_respect", []string{"respeito", "respect"}},
		{"answer_patient_trust", []string{"confianca", "trust"}},
		{"answer_patient_comments", []string{"comentarios", "comments"}},
	},
	models.FamilySelf360: {
		{"answer_self_knowledge", []string{"conhecimento tecnico", "technical knowledge"}},
		{"answer_self_communication", []string{"comunicacao", "communication"}},
		{"answer_self_teamwork", []string{"trabalho em equipe", "teamwork"}},
		{"answer_self_reflection", []string{"reflexao", "autorreflexao", "self reflection"}},
		{"answer_self_comments", []string{"comentarios", "comments"}},
	},
}

// DefaultFieldTable — встроенная таблица семейства. Для FamilyNone пустая.
func DefaultFieldTable(f models.Family) FieldTable {
	t := FieldTable{}
	for _, e := range defaultFields[f] {
		for _, n := range e.names {
			t[Normalize(n)] = e.key
		}
	}
	return t
}

// BuildFieldTable — встроенная таблица с наложенными сверху записями из БД.
func BuildFieldTable(f models.Family, overrides []models.FieldMapping) FieldTable {
	t := DefaultFieldTable(f)
	for _, m := range overrides {
		if m.Family != f || strings.TrimSpace(m.FieldKey) == "" {
			continue
		}
		t[Normalize(m.CompetencyName)] = strings.TrimSpace(m.FieldKey)
	}
	return t
}
