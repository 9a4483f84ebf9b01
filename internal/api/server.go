// Package api — JSON HTTP-интерфейс расписания и оценок.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Spok95/academic-eval/internal/evaluation"
	"github.com/Spok95/academic-eval/internal/metrics"
	"github.com/Spok95/academic-eval/internal/models"
	"github.com/Spok95/academic-eval/internal/notify"
	"github.com/Spok95/academic-eval/internal/schedule"
)

type ScheduleService interface {
	CheckConflict(ctx context.Context, locationID *int64, start time.Time, end *time.Time, excludeEventID *int64) (*models.Event, error)
	Create(ctx context.Context, in schedule.EventInput) (*models.Event, error)
	Update(ctx context.Context, id, expectedVersion int64, in schedule.EventInput) (*models.Event, error)
	Transition(ctx context.Context, id int64, to models.EventStatus) (*models.Event, error)
}

type EvaluationService interface {
	Submit(ctx context.Context, req evaluation.SubmitRequest) (*evaluation.SubmitResult, error)
	Get(ctx context.Context, id int64) (*models.FilledEvaluation, error)
	Template(ctx context.Context, questionnaireID int64) (*evaluation.Template, error)
	CreateQuestionnaire(ctx context.Context, in evaluation.NewQuestionnaire) (*models.Questionnaire, error)
}

// Users — поиск пользователей для выгрузки.
type Users interface {
	UsersByIDs(ctx context.Context, ids []int64) ([]models.User, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Schedule    ScheduleService
	Evaluations EvaluationService
	Users       Users
	DB          Pinger
	Notifier    notify.Notifier
	Log         *zap.Logger
	Location    *time.Location
	DBTimeout   time.Duration
}

type Server struct {
	sched     ScheduleService
	evals     EvaluationService
	users     Users
	db        Pinger
	notifier  notify.Notifier
	log       *zap.Logger
	loc       *time.Location
	dbTimeout time.Duration
	validate  *validator.Validate
}

func NewServer(d Deps) *Server {
	s := &Server{
		sched:     d.Schedule,
		evals:     d.Evaluations,
		users:     d.Users,
		db:        d.DB,
		notifier:  d.Notifier,
		log:       d.Log,
		loc:       d.Location,
		dbTimeout: d.DBTimeout,
		validate:  newValidator(),
	}
	if s.notifier == nil {
		s.notifier = notify.Nop{}
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	return s
}

// Handler — все маршруты с middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.healthz)
	mux.Handle("GET /metrics", metrics.Handler())

	mux.HandleFunc("POST /api/events/conflicts", s.checkConflict)
	mux.HandleFunc("POST /api/events", s.createEvent)
	mux.HandleFunc("PUT /api/events/{id}", s.updateEvent)
	mux.HandleFunc("POST /api/events/{id}/status", s.transitionEvent)

	mux.HandleFunc("POST /api/questionnaires", s.createQuestionnaire)
	mux.HandleFunc("GET /api/questionnaires/{id}/template", s.template)

	mux.HandleFunc("POST /api/evaluations", s.createEvaluation)
	mux.HandleFunc("PUT /api/evaluations/{id}", s.editEvaluation)
	mux.HandleFunc("GET /api/evaluations/{id}", s.getEvaluation)
	mux.HandleFunc("GET /api/evaluations/{id}/export.xlsx", s.exportEvaluation)

	return s.withRequestContext(s.withRecover(mux))
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 800*time.Millisecond)
	defer cancel()
	t0 := time.Now()
	if err := s.db.Ping(ctx); err != nil {
		http.Error(w, "db not ok: "+err.Error(), http.StatusServiceUnavailable)
		return
	}
	metrics.ObserveDBPing(time.Since(t0))
	_, _ = w.Write([]byte("ok"))
}

type HTTPServer struct {
	srv  *http.Server
	done chan struct{}
}

// StartHTTP поднимает сервер и гасит его по отмене ctx.
func StartHTTP(ctx context.Context, addr string, h http.Handler, log *zap.Logger) *HTTPServer {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
	hs := &HTTPServer{srv: srv, done: make(chan struct{})}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", zap.Error(err))
		}
	}()

	go func() {
		defer close(hs.done)
		<-ctx.Done()
		shCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
	}()

	return hs
}

// Wait блокирует до завершения Shutdown.
func (h *HTTPServer) Wait() { <-h.done }
