package api

import (
	"bytes"
	"context"
	"mime"
	"net/http"

	"go.uber.org/zap"

	"github.com/Spok95/academic-eval/internal/apperr"
	"github.com/Spok95/academic-eval/internal/ctxutil"
	"github.com/Spok95/academic-eval/internal/evaluation"
	"github.com/Spok95/academic-eval/internal/export"
	"github.com/Spok95/academic-eval/internal/logging"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *Server) createQuestionnaire(w http.ResponseWriter, r *http.Request) {
	var req questionnaireRequest
	if !s.decode(w, r, &req) {
		return
	}
	ctx, cancel := ctxutil.WithTimeout(ctxutil.WithOp(r.Context(), "questionnaires.create"), s.dbTimeout)
	defer cancel()

	qn, err := s.evals.CreateQuestionnaire(ctx, req.input())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, qn)
}

func (s *Server) template(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	ctx, cancel := ctxutil.WithTimeout(ctxutil.WithOp(r.Context(), "questionnaires.template"), s.dbTimeout)
	defer cancel()

	tmpl, err := s.evals.Template(ctx, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newTemplateResponse(tmpl))
}

func (s *Server) createEvaluation(w http.ResponseWriter, r *http.Request) {
	var req evaluationRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.submit(w, r, req.submit(evaluation.ModeCreate, 0), http.StatusCreated)
}

func (s *Server) editEvaluation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req evaluationRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.submit(w, r, req.submit(evaluation.ModeEdit, id), http.StatusOK)
}

func (s *Server) submit(w http.ResponseWriter, r *http.Request, req evaluation.SubmitRequest, status int) {
	ctx, cancel := ctxutil.WithTimeout(ctxutil.WithOp(r.Context(), "evaluations."+string(req.Mode)), s.dbTimeout)
	defer cancel()

	res, err := s.evals.Submit(ctx, req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.notifier.EvaluationSubmitted(ctx, res.Evaluation, req.Mode == evaluation.ModeEdit, res.SkippedRequired); err != nil {
		logging.FromContext(ctx, s.log).Warn("submit notification failed", zap.Int64("evaluation_id", res.Evaluation.ID), zap.Error(err))
	}
	skipped := res.Skipped
	if skipped == nil {
		skipped = []evaluation.SkippedItem{}
	}
	writeJSON(w, status, evaluationResponse{
		Evaluation:      res.Evaluation,
		State:           res.State,
		Skipped:         skipped,
		SkippedRequired: res.SkippedRequired,
	})
}

func (s *Server) getEvaluation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	ctx, cancel := ctxutil.WithTimeout(ctxutil.WithOp(r.Context(), "evaluations.get"), s.dbTimeout)
	defer cancel()

	ev, err := s.evals.Get(ctx, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

func (s *Server) exportEvaluation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	ctx, cancel := ctxutil.WithTimeout(ctxutil.WithOp(r.Context(), "evaluations.export"), s.dbTimeout)
	defer cancel()

	ev, err := s.evals.Get(ctx, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	tmpl, err := s.evals.Template(ctx, ev.QuestionnaireID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rep := export.EvaluationReport{
		Evaluation:    ev,
		Questionnaire: tmpl.Questionnaire,
		Items:         tmpl.Items,
		Location:      s.loc,
	}
	if err := s.fillUsers(ctx, &rep); err != nil {
		s.writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteEvaluation(&buf, rep); err != nil {
		s.writeError(w, r, err)
		return
	}
	subject := ""
	if rep.Subject != nil {
		subject = rep.Subject.Name
	}
	name := export.EvaluationFilename(subject, tmpl.Questionnaire.Name, ev.StartsAt.In(s.loc))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// fillUsers — субъект и оценщик одним запросом.
func (s *Server) fillUsers(ctx context.Context, rep *export.EvaluationReport) error {
	if s.users == nil {
		return nil
	}
	ids := []int64{rep.Evaluation.SubjectUserID}
	if rep.Evaluation.EvaluatorUserID != nil {
		ids = append(ids, *rep.Evaluation.EvaluatorUserID)
	}
	users, err := s.users.UsersByIDs(ctx, ids)
	if err != nil {
		return apperr.Persistence("load users", err)
	}
	for i := range users {
		u := &users[i]
		if u.ID == rep.Evaluation.SubjectUserID {
			rep.Subject = u
		}
		if rep.Evaluation.EvaluatorUserID != nil && u.ID == *rep.Evaluation.EvaluatorUserID {
			rep.Evaluator = u
		}
	}
	return nil
}
