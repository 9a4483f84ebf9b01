//go:build testutil
// +build testutil

package db_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Spok95/academic-eval/internal/apperr"
	"github.com/Spok95/academic-eval/internal/db"
	"github.com/Spok95/academic-eval/internal/evaluation"
	"github.com/Spok95/academic-eval/internal/models"
	"github.com/Spok95/academic-eval/internal/schedule"
	"github.com/Spok95/academic-eval/internal/testutil/testdb"
)

func startDB(t *testing.T) *testdb.DBHandle {
	t.Helper()
	h, err := testdb.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(h.Close)
	return h
}

func mustUser(t *testing.T, st *db.Store, name string, role models.Role) int64 {
	t.Helper()
	u := models.User{Name: name, Role: role, IsActive: true}
	if err := st.CreateUser(context.Background(), &u); err != nil {
		t.Fatal(err)
	}
	return u.ID
}

func mustLocation(t *testing.T, st *db.Store, name string) int64 {
	t.Helper()
	l := models.Location{Name: name, Type: "sala"}
	if err := st.CreateLocation(context.Background(), &l); err != nil {
		t.Fatal(err)
	}
	return l.ID
}

func ptrTime(t time.Time) *time.Time { return &t }

func TestEvents_ConflictAndExclusion(t *testing.T) {
	h := startDB(t)
	ctx := context.Background()
	svc := schedule.NewService(h.Store, nil)
	room := mustLocation(t, h.Store, "Sala 101")

	base := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	first, err := svc.Create(ctx, schedule.EventInput{
		Title: "Aula", StartAt: base, EndAt: ptrTime(base.Add(time.Hour)), LocationID: &room,
	})
	if err != nil {
		t.Fatal(err)
	}

	_, err = svc.Create(ctx, schedule.EventInput{
		Title: "Prova", StartAt: base.Add(30 * time.Minute), EndAt: ptrTime(base.Add(90 * time.Minute)), LocationID: &room,
	})
	var ce *apperr.ConflictError
	if !errors.As(err, &ce) || ce.EventID != first.ID {
		t.Fatalf("ожидали конфликт с событием %d, получили %v", first.ID, err)
	}

	// касание границ — не пересечение
	if _, err := svc.Create(ctx, schedule.EventInput{
		Title: "Seminário", StartAt: base.Add(time.Hour), EndAt: ptrTime(base.Add(2 * time.Hour)), LocationID: &room,
	}); err != nil {
		t.Fatalf("смежное окно не должно конфликтовать: %v", err)
	}

	// своё окно при редактировании не мешает
	upd, err := svc.Update(ctx, first.ID, first.Version, schedule.EventInput{
		Title: "Aula (editada)", StartAt: base.Add(-30 * time.Minute), EndAt: ptrTime(base.Add(30 * time.Minute)), LocationID: &room,
	})
	if err != nil {
		t.Fatal(err)
	}
	if upd.Version != first.Version+1 {
		t.Fatalf("версия %d, ожидали %d", upd.Version, first.Version+1)
	}
	if _, err := svc.Update(ctx, first.ID, first.Version, schedule.EventInput{
		Title: "Aula", StartAt: base, EndAt: ptrTime(base.Add(10 * time.Minute)), LocationID: &room,
	}); !apperr.IsConcurrentModification(err) {
		t.Fatalf("ожидали ConcurrentModification, получили %v", err)
	}

	// отменённое событие окно освобождает
	if _, err := svc.Transition(ctx, first.ID, models.StatusCancelled); err != nil {
		t.Fatal(err)
	}
	clash, err := svc.CheckConflict(ctx, &room, base.Add(-30*time.Minute), ptrTime(base.Add(30*time.Minute)), nil)
	if err != nil {
		t.Fatal(err)
	}
	if clash != nil {
		t.Fatalf("отменённое событие %d всё ещё занимает окно", clash.ID)
	}
}

func TestEvents_ParallelCreateSameWindow(t *testing.T) {
	h := startDB(t)
	ctx := context.Background()
	svc := schedule.NewService(h.Store, nil)
	room := mustLocation(t, h.Store, "Sala 202")
	start := time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC)

	const workers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Create(ctx, schedule.EventInput{
				Title: "Plantão", StartAt: start, EndAt: ptrTime(start.Add(time.Hour)), LocationID: &room,
			})
			if err == nil {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if created != 1 {
		t.Fatalf("создано %d событий в одном окне, ожидали 1", created)
	}
	active, err := h.Store.ActiveEventsAtLocation(ctx, room)
	if err != nil {
		t.Fatal(err)
	}
	if len(active) != 1 {
		t.Fatalf("в БД %d активных событий", len(active))
	}
}

func TestEvents_AdvanceStatuses(t *testing.T) {
	h := startDB(t)
	ctx := context.Background()
	svc := schedule.NewService(h.Store, nil)
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

	past, err := svc.Create(ctx, schedule.EventInput{Title: "Manhã", StartAt: now.Add(-3 * time.Hour), EndAt: ptrTime(now.Add(-2 * time.Hour))})
	if err != nil {
		t.Fatal(err)
	}
	running, err := svc.Create(ctx, schedule.EventInput{Title: "Agora", StartAt: now.Add(-time.Hour), EndAt: ptrTime(now.Add(time.Hour))})
	if err != nil {
		t.Fatal(err)
	}
	future, err := svc.Create(ctx, schedule.EventInput{Title: "Tarde", StartAt: now.Add(2 * time.Hour)})
	if err != nil {
		t.Fatal(err)
	}

	if _, _, err := svc.AdvanceStatuses(ctx, now); err != nil {
		t.Fatal(err)
	}
	want := map[int64]models.EventStatus{
		past.ID:    models.StatusCompleted,
		running.ID: models.StatusInProgress,
		future.ID:  models.StatusScheduled,
	}
	for id, st := range want {
		ev, err := h.Store.EventByID(ctx, id)
		if err != nil {
			t.Fatal(err)
		}
		if ev.Status != st {
			t.Fatalf("событие %d: статус %s, ожидали %s", id, ev.Status, st)
		}
	}
}

func TestEvaluations_SubmitEditRoundTrip(t *testing.T) {
	h := startDB(t)
	ctx := context.Background()
	if err := h.Store.SeedDemo(ctx); err != nil {
		t.Fatal(err)
	}
	// повторный вызов ничего не добавляет
	if err := h.Store.SeedDemo(ctx); err != nil {
		t.Fatal(err)
	}
	var qid int64
	if err := h.DB.QueryRowContext(ctx, `SELECT id FROM questionnaires WHERE family = 'mini-cex'`).Scan(&qid); err != nil {
		t.Fatal(err)
	}

	svc := evaluation.NewService(h.Store, nil)
	student := mustUser(t, h.Store, "Ana Souza", models.Student)
	preceptor := mustUser(t, h.Store, "Dr. Carlos Lima", models.Preceptor)

	req := evaluation.SubmitRequest{
		Mode:            evaluation.ModeCreate,
		SubjectUserID:   student,
		EvaluatorUserID: &preceptor,
		QuestionnaireID: qid,
		StartsAt:        time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
		Answers: map[string]string{
			"answer_clinical_judgment":     "4",
			"nao_avaliado_professionalism": "true",
			"answer_communication":         "3,5",
		},
	}
	res, err := svc.Submit(ctx, req)
	if err != nil {
		t.Fatal(err)
	}
	if res.SkippedRequired != 4 {
		t.Fatalf("SkippedRequired = %d, ожидали 4", res.SkippedRequired)
	}

	got, err := svc.Get(ctx, res.Evaluation.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Answers) != 3 {
		t.Fatalf("ответов %d, ожидали 3", len(got.Answers))
	}
	tmpl, err := svc.Template(ctx, qid)
	if err != nil {
		t.Fatal(err)
	}
	byName := map[string]models.AnswerItem{}
	names := map[int64]string{}
	for _, it := range tmpl.Items {
		names[it.ID] = it.Name
	}
	for _, a := range got.Answers {
		byName[names[a.CompetencyItemID]] = a
	}
	if a := byName["Julgamento Clínico"]; a.Value == nil || *a.Value != 4 {
		t.Fatalf("Julgamento Clínico: %+v", a)
	}
	if a := byName["Profissionalismo"]; !a.NotEvaluated {
		t.Fatalf("Profissionalismo должен быть не оценён: %+v", a)
	}

	// редактирование заменяет набор целиком
	req.Mode = evaluation.ModeEdit
	req.EvaluationID = res.Evaluation.ID
	req.ExpectedVersion = res.Evaluation.Version
	req.Answers = map[string]string{"answer_overall": "5"}
	edited, err := svc.Submit(ctx, req)
	if err != nil {
		t.Fatal(err)
	}
	got, err = svc.Get(ctx, edited.Evaluation.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Answers) != 1 || names[got.Answers[0].CompetencyItemID] != "Competência Clínica Geral" {
		t.Fatalf("после редактирования: %+v", got.Answers)
	}
	if got.Version != 2 {
		t.Fatalf("версия %d, ожидали 2", got.Version)
	}

	// устаревшая версия
	req.ExpectedVersion = 1
	if _, err := svc.Submit(ctx, req); !apperr.IsConcurrentModification(err) {
		t.Fatalf("ожидали ConcurrentModification, получили %v", err)
	}
}

func TestEvaluations_CreateQuestionnaireWithMappings(t *testing.T) {
	h := startDB(t)
	ctx := context.Background()
	svc := evaluation.NewService(h.Store, nil)

	qn, err := svc.CreateQuestionnaire(ctx, evaluation.NewQuestionnaire{
		Name: "Avaliação 360 - Paciente",
		Items: []evaluation.NewItem{
			{Name: "Pontualidade do atendimento", Kind: models.KindScale, Required: true},
			{Name: "Cordialidade", Kind: models.KindScale},
		},
		Mappings: map[string]string{"Pontualidade do atendimento": "answer_patient_punctuality"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if qn.Family != models.FamilyPatient360 {
		t.Fatalf("семейство %q", qn.Family)
	}

	tmpl, err := svc.Template(ctx, qn.ID)
	if err != nil {
		t.Fatal(err)
	}
	res, err := evaluation.Map(tmpl, map[string]string{
		"answer_patient_punctuality": "5",
		"answer_patient_courtesy":    "4",
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Answers) != 2 || res.SkippedRequired != 0 {
		t.Fatalf("неожиданный результат: %+v", res)
	}
}
