package db

import (
	"context"
	"fmt"

	"github.com/Spok95/academic-eval/internal/models"
)

var demoMiniCEXItems = []string{
	"Entrevista Médica",
	"Exame Físico",
	"Profissionalismo",
	"Julgamento Clínico",
	"Habilidades de Comunicação",
	"Organização e Eficiência",
	"Competência Clínica Geral",
}

// SeedDemo наполняет пустую БД демонстрационными данными: пользователи,
// локация, дисциплина с группой и опросник Mini-CEX. Если опросники уже есть — ничего не делает.
func (s *Store) SeedDemo(ctx context.Context) error {
	return s.InTx(ctx, func(ctx context.Context) error {
		q := s.q(ctx)

		var count int
		if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM questionnaires`).Scan(&count); err != nil {
			return fmt.Errorf("check questionnaires: %w", err)
		}
		if count > 0 {
			return nil
		}

		users := []models.User{
			{Name: "Residente Demo", Email: "residente@example.com", Role: models.Student, IsActive: true},
			{Name: "Preceptor Demo", Email: "preceptor@example.com", Role: models.Preceptor, IsActive: true},
		}
		for i := range users {
			if err := CreateUser(ctx, q, &users[i]); err != nil {
				return fmt.Errorf("insert user %s: %w", users[i].Name, err)
			}
		}

		room := models.Location{Name: "Sala 101", Type: "sala", City: "São Paulo", State: "SP"}
		if err := CreateLocation(ctx, q, &room); err != nil {
			return fmt.Errorf("insert location: %w", err)
		}

		disc := models.Discipline{Code: "CLM-1", Name: "Clínica Médica"}
		if err := CreateDiscipline(ctx, q, &disc); err != nil {
			return fmt.Errorf("insert discipline: %w", err)
		}
		class := models.Class{DisciplineID: disc.ID, Name: "Turma A", Term: "2025.1"}
		if err := CreateClass(ctx, q, &class); err != nil {
			return fmt.Errorf("insert class: %w", err)
		}

		qn := models.Questionnaire{
			Name:        "Mini-CEX Clínica Médica",
			Description: "Avaliação de habilidades clínicas (avaliador único)",
			Family:      models.FamilyMiniCEX,
		}
		if err := CreateQuestionnaire(ctx, q, &qn); err != nil {
			return fmt.Errorf("insert questionnaire: %w", err)
		}
		for i, name := range demoMiniCEXItems {
			it := models.CompetencyItem{
				QuestionnaireID: qn.ID,
				Name:            name,
				Kind:            models.KindScale,
				DisplayOrder:    i + 1,
				Required:        true,
				Active:          true,
			}
			if err := CreateCompetencyItem(ctx, q, &it); err != nil {
				return fmt.Errorf("insert item %s: %w", name, err)
			}
		}
		return nil
	})
}
