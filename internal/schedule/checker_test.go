package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/Spok95/academic-eval/internal/apperr"
	"github.com/Spok95/academic-eval/internal/models"
)

func TestOverlaps(t *testing.T) {
	base := at("2025-03-10T09:00")
	h := func(n int) time.Time { return base.Add(time.Duration(n) * time.Hour) }

	cases := []struct {
		name           string
		as, ae, bs, be time.Time
		want           bool
	}{
		{"partial_right", h(0), h(2), h(1), h(3), true},
		{"partial_left", h(1), h(3), h(0), h(2), true},
		{"inside", h(0), h(4), h(1), h(2), true},
		{"same", h(0), h(1), h(0), h(1), true},
		{"abutting", h(0), h(1), h(1), h(2), false},
		{"abutting_reverse", h(1), h(2), h(0), h(1), false},
		{"disjoint", h(0), h(1), h(3), h(4), false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Overlaps(c.as, c.ae, c.bs, c.be)
			if got != c.want {
				t.Fatalf("Overlaps = %v, want %v", got, c.want)
			}
			// симметрия: As < Be && Bs < Ae
			if rev := Overlaps(c.bs, c.be, c.as, c.ae); rev != got {
				t.Fatalf("Overlaps несимметричен: %v vs %v", got, rev)
			}
		})
	}
}

func TestHasConflict_Room101(t *testing.T) {
	repo := newMemRepo()
	room := int64(101)
	repo.addLocation(room, "Room 101")
	repo.put(models.Event{
		Title:      "Aula",
		StartAt:    at("2025-03-10T09:00"),
		EndAt:      ptrTime(at("2025-03-10T10:00")),
		LocationID: &room,
		Status:     models.StatusScheduled,
	})
	c := NewChecker(repo)
	ctx := context.Background()

	got, err := c.HasConflict(ctx, &room, at("2025-03-10T09:30"), at("2025-03-10T10:30"), nil)
	if err != nil {
		t.Fatal(err)
	}
	if !got {
		t.Fatal("ожидали конфликт для 09:30–10:30")
	}

	got, err = c.HasConflict(ctx, &room, at("2025-03-10T10:00"), at("2025-03-10T11:00"), nil)
	if err != nil {
		t.Fatal(err)
	}
	if got {
		t.Fatal("касание концами не должно быть конфликтом")
	}
}

func TestHasConflict_ExcludesSelf(t *testing.T) {
	repo := newMemRepo()
	room := int64(1)
	id := repo.put(models.Event{
		Title:      "Prova",
		StartAt:    at("2025-03-10T09:00"),
		EndAt:      ptrTime(at("2025-03-10T10:00")),
		LocationID: &room,
	})
	c := NewChecker(repo)

	got, err := c.HasConflict(context.Background(), &room, at("2025-03-10T09:00"), at("2025-03-10T10:00"), &id)
	if err != nil {
		t.Fatal(err)
	}
	if got {
		t.Fatal("событие не должно конфликтовать само с собой")
	}
}

func TestHasConflict_IgnoresCancelledAndOtherLocations(t *testing.T) {
	repo := newMemRepo()
	room, other := int64(1), int64(2)
	repo.put(models.Event{
		Title: "Cancelada", StartAt: at("2025-03-10T09:00"), EndAt: ptrTime(at("2025-03-10T10:00")),
		LocationID: &room, Status: models.StatusCancelled,
	})
	repo.put(models.Event{
		Title: "Outra sala", StartAt: at("2025-03-10T09:00"), EndAt: ptrTime(at("2025-03-10T10:00")),
		LocationID: &other,
	})
	repo.put(models.Event{
		Title: "Sem fim", StartAt: at("2025-03-10T08:00"), LocationID: &room,
	})

	got, err := NewChecker(repo).HasConflict(context.Background(), &room, at("2025-03-10T09:00"), at("2025-03-10T10:00"), nil)
	if err != nil {
		t.Fatal(err)
	}
	if got {
		t.Fatal("отменённые события, другие локации и события без конца не должны давать конфликт")
	}
}

// Отменённое событие не учитывается, даже если источник его вернул.
func TestFindConflict_SkipsCancelledFromSource(t *testing.T) {
	room := int64(1)
	src := staticSource{{
		ID: 9, StartAt: at("2025-03-10T09:00"), EndAt: ptrTime(at("2025-03-10T10:00")),
		LocationID: &room, Status: models.StatusCancelled,
	}}
	ev, err := NewChecker(src).FindConflict(context.Background(), &room, at("2025-03-10T09:00"), at("2025-03-10T10:00"), nil)
	if err != nil {
		t.Fatal(err)
	}
	if ev != nil {
		t.Fatalf("не ожидали конфликт, получили событие %d", ev.ID)
	}
}

func TestHasConflict_NoLocation(t *testing.T) {
	repo := newMemRepo()
	repo.failList = errBoom // не должны даже обращаться к источнику

	got, err := NewChecker(repo).HasConflict(context.Background(), nil, at("2025-03-10T09:00"), at("2025-03-10T10:00"), nil)
	if err != nil || got {
		t.Fatalf("без локации: got %v, err %v", got, err)
	}
}

func TestHasConflict_Errors(t *testing.T) {
	room := int64(1)

	_, err := NewChecker(newMemRepo()).HasConflict(context.Background(), &room, at("2025-03-10T10:00"), at("2025-03-10T10:00"), nil)
	if !apperr.IsValidation(err) {
		t.Fatalf("ожидали ValidationError для пустого окна, получили %v", err)
	}

	repo := newMemRepo()
	repo.failList = errBoom
	_, err = NewChecker(repo).HasConflict(context.Background(), &room, at("2025-03-10T09:00"), at("2025-03-10T10:00"), nil)
	if !apperr.IsPersistence(err) {
		t.Fatalf("ожидали PersistenceError, получили %v", err)
	}
}

// Свойство: для неотменённых A и B в одной локации конфликт ⇔ As < Be && Bs < Ae.
func TestHasConflict_MatchesIntervalDefinition(t *testing.T) {
	room := int64(1)
	base := at("2025-03-10T08:00")
	slot := func(n int) time.Time { return base.Add(time.Duration(n) * 15 * time.Minute) }

	for as := 0; as < 8; as++ {
		for ae := as + 1; ae <= 8; ae++ {
			repo := newMemRepo()
			repo.put(models.Event{Title: "A", StartAt: slot(as), EndAt: ptrTime(slot(ae)), LocationID: &room})
			c := NewChecker(repo)
			for bs := 0; bs < 8; bs++ {
				for be := bs + 1; be <= 8; be++ {
					want := slot(as).Before(slot(be)) && slot(bs).Before(slot(ae))
					got, err := c.HasConflict(context.Background(), &room, slot(bs), slot(be), nil)
					if err != nil {
						t.Fatal(err)
					}
					if got != want {
						t.Fatalf("A=[%d,%d) B=[%d,%d): got %v, want %v", as, ae, bs, be, got, want)
					}
				}
			}
		}
	}
}

type staticSource []models.Event

func (s staticSource) ActiveEventsAtLocation(context.Context, int64) ([]models.Event, error) {
	return s, nil
}
