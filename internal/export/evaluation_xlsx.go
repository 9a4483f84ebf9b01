// Package export собирает XLSX-выгрузку заполненной оценки.
package export

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Spok95/academic-eval/internal/models"
)

const (
	SheetSummary = "Avaliação"
	SheetAnswers = "Respostas"
)

// EvaluationReport — всё, что нужно для выгрузки одной оценки.
type EvaluationReport struct {
	Evaluation    *models.FilledEvaluation
	Questionnaire *models.Questionnaire
	Items         []models.CompetencyItem // в порядке шаблона
	Subject       *models.User
	Evaluator     *models.User // nil для внешнего оценщика
	Location      *time.Location
}

// EvaluationWorkbook строит книгу из двух листов: реквизиты оценки и ответы по пунктам.
// Пункты без ответа тоже попадают в таблицу с пустым значением.
func EvaluationWorkbook(rep EvaluationReport) (*excelize.File, error) {
	if rep.Evaluation == nil || rep.Questionnaire == nil {
		return nil, fmt.Errorf("export: evaluation and questionnaire are required")
	}
	loc := rep.Location
	if loc == nil {
		loc = time.UTC
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetAnswers); err != nil {
		return nil, fmt.Errorf("new sheet: %w", err)
	}

	if err := writeSummary(f, rep, loc); err != nil {
		return nil, err
	}
	if err := writeAnswers(f, rep); err != nil {
		return nil, err
	}
	for _, sh := range []string{SheetSummary, SheetAnswers} {
		if err := ApplyDefaultFormatting(f, sh); err != nil {
			return nil, fmt.Errorf("format %s: %w", sh, err)
		}
	}
	return f, nil
}

// WriteEvaluation пишет книгу в w.
func WriteEvaluation(w io.Writer, rep EvaluationReport) error {
	f, err := EvaluationWorkbook(rep)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	return f.Write(w)
}

func writeSummary(f *excelize.File, rep EvaluationReport, loc *time.Location) error {
	ev := rep.Evaluation
	ends := ""
	if ev.EndsAt != nil {
		ends = ev.EndsAt.In(loc).Format("02.01.2006 15:04")
	}
	rows := [][]string{
		{"Campo", "Valor"},
		{"Avaliação", strconv.FormatInt(ev.ID, 10)},
		{"Versão", strconv.FormatInt(ev.Version, 10)},
		{"Questionário", rep.Questionnaire.Name},
		{"Família", string(rep.Questionnaire.Family)},
		{"Avaliado", userName(rep.Subject, ev.SubjectUserID)},
		{"Avaliador", evaluatorLabel(rep.Evaluator, ev)},
		{"Início", ev.StartsAt.In(loc).Format("02.01.2006 15:04")},
		{"Fim", ends},
		{"Local", deref(ev.Location)},
		{"Pontos fortes", ev.Strengths},
		{"Pontos a melhorar", ev.Improvements},
		{"Plano de ação", ev.ActionPlan},
	}
	return writeRows(f, SheetSummary, rows)
}

func writeAnswers(f *excelize.File, rep EvaluationReport) error {
	byItem := make(map[int64]models.AnswerItem, len(rep.Evaluation.Answers))
	for _, a := range rep.Evaluation.Answers {
		byItem[a.CompetencyItemID] = a
	}

	if err := writeRows(f, SheetAnswers, [][]string{{"#", "Competência", "Tipo", "Obrigatório", "Resposta", "Não avaliado"}}); err != nil {
		return err
	}
	for i, it := range rep.Items {
		row := i + 2
		a, answered := byItem[it.ID]
		_ = f.SetCellValue(SheetAnswers, cell(1, row), i+1)
		_ = f.SetCellStr(SheetAnswers, cell(2, row), it.Name)
		_ = f.SetCellStr(SheetAnswers, cell(3, row), string(it.Kind))
		_ = f.SetCellStr(SheetAnswers, cell(4, row), yesNo(it.Required))
		switch {
		case !answered:
		case a.Value != nil:
			if err := f.SetCellFloat(SheetAnswers, cell(5, row), *a.Value, -1, 64); err != nil {
				return fmt.Errorf("set value: %w", err)
			}
		case a.Text != nil:
			if err := f.SetCellStr(SheetAnswers, cell(5, row), *a.Text); err != nil {
				return fmt.Errorf("set text: %w", err)
			}
		}
		_ = f.SetCellStr(SheetAnswers, cell(6, row), yesNo(answered && a.NotEvaluated))
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]string) error {
	for r, row := range rows {
		for c, v := range row {
			if err := f.SetCellStr(sheet, cell(c+1, r+1), v); err != nil {
				return fmt.Errorf("set cell %s: %w", cell(c+1, r+1), err)
			}
		}
	}
	return nil
}

func userName(u *models.User, id int64) string {
	if u != nil && u.Name != "" {
		return u.Name
	}
	return "#" + strconv.FormatInt(id, 10)
}

func evaluatorLabel(u *models.User, ev *models.FilledEvaluation) string {
	if ev.EvaluatorUserID != nil {
		return userName(u, *ev.EvaluatorUserID)
	}
	name, role := deref(ev.EvaluatorName), deref(ev.EvaluatorRole)
	if role == "" {
		return name
	}
	return fmt.Sprintf("%s (%s)", name, role)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func yesNo(b bool) string {
	if b {
		return "sim"
	}
	return "não"
}
