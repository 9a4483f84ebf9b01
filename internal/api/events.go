package api

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/Spok95/academic-eval/internal/ctxutil"
	"github.com/Spok95/academic-eval/internal/logging"
	"github.com/Spok95/academic-eval/internal/models"
)

func (s *Server) checkConflict(w http.ResponseWriter, r *http.Request) {
	var req conflictRequest
	if !s.decode(w, r, &req) {
		return
	}
	ctx, cancel := ctxutil.WithTimeout(ctxutil.WithOp(r.Context(), "events.conflicts"), s.dbTimeout)
	defer cancel()

	clash, err := s.sched.CheckConflict(ctx, req.LocationID, req.Start, req.End, req.ExcludeEventID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp := conflictResponse{}
	if clash != nil {
		resp.Conflict = true
		resp.EventID = &clash.ID
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) createEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if !s.decode(w, r, &req) {
		return
	}
	ctx, cancel := ctxutil.WithTimeout(ctxutil.WithOp(r.Context(), "events.create"), s.dbTimeout)
	defer cancel()

	ev, err := s.sched.Create(ctx, req.input())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ev)
}

func (s *Server) updateEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req eventRequest
	if !s.decode(w, r, &req) {
		return
	}
	ctx, cancel := ctxutil.WithTimeout(ctxutil.WithOp(r.Context(), "events.update"), s.dbTimeout)
	defer cancel()

	ev, err := s.sched.Update(ctx, id, req.Version, req.input())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

func (s *Server) transitionEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req statusRequest
	if !s.decode(w, r, &req) {
		return
	}
	ctx, cancel := ctxutil.WithTimeout(ctxutil.WithOp(r.Context(), "events.status"), s.dbTimeout)
	defer cancel()

	ev, err := s.sched.Transition(ctx, id, models.EventStatus(req.Status))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if ev.Status == models.StatusCancelled {
		if err := s.notifier.EventCancelled(ctx, ev); err != nil {
			logging.FromContext(ctx, s.log).Warn("cancel notification failed", zap.Int64("event_id", ev.ID), zap.Error(err))
		}
	}
	writeJSON(w, http.StatusOK, ev)
}
