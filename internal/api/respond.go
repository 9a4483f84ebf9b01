package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Spok95/academic-eval/internal/apperr"
	"github.com/Spok95/academic-eval/internal/logging"
	"github.com/Spok95/academic-eval/internal/observability"
)

const maxBody = 1 << 20

type errorBody struct {
	Error   string `json:"error"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message,omitempty"`
	EventID *int64 `json:"event_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError переводит ошибки ядра в HTTP-статусы. Сбои хранилища уходят в Sentry.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		ve *apperr.ValidationError
		nf *apperr.NotFoundError
		ce *apperr.ConflictError
		cm *apperr.ConcurrentModificationError
	)
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: "validation", Field: ve.Field, Message: ve.Message})
	case errors.As(err, &nf):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not_found", Message: nf.Error()})
	case errors.As(err, &ce):
		id := ce.EventID
		writeJSON(w, http.StatusConflict, errorBody{Error: "conflict", Message: ce.Error(), EventID: &id})
	case errors.As(err, &cm):
		writeJSON(w, http.StatusConflict, errorBody{Error: "concurrent_modification", Message: cm.Error()})
	default:
		observability.CaptureErrCtx(r.Context(), err)
		logging.FromContext(r.Context(), s.log).Error("request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal"})
	}
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: "bad_request", Message: msg})
}

// decode читает JSON-тело и проверяет теги validate. false — ответ уже записан.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		badRequest(w, fmt.Sprintf("invalid json: %v", err))
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		var fes validator.ValidationErrors
		if errors.As(err, &fes) && len(fes) > 0 {
			fe := fes[0]
			s.writeError(w, r, apperr.Validationf(fieldPath(fe), "failed %q check", fe.Tag()))
			return false
		}
		badRequest(w, err.Error())
		return false
	}
	return true
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// fieldPath: "eventRequest.items[0].name" → "items[0].name".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(w, "invalid id")
		return 0, false
	}
	return id, true
}
