package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/josephgoksu/cascade/internal/app"
	"github.com/josephgoksu/cascade/internal/cascade"
	"github.com/josephgoksu/cascade/internal/catalog"
	"github.com/josephgoksu/cascade/internal/report"
	"github.com/josephgoksu/cascade/internal/session"
	"github.com/josephgoksu/cascade/internal/util"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("mode", func(fl validator.FieldLevel) bool {
		_, err := session.ParseMode(fl.Field().String())
		return err == nil
	})
	return v
}

// handleInfo
func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	writeAPIJSON(w, http.StatusOK, InfoResponse{
		Version:  s.version,
		Provider: s.provider,
		ReadOnly: !s.app.CanGenerate(),
		Modes:    session.Modes(),
	})
}

// handleCatalog lists catalog entries, optionally filtered by ?kind=.
func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	kind := catalog.Kind(strings.ToLower(r.URL.Query().Get("kind")))

	entries := []catalog.Entry{}
	for _, e := range s.catalog.Entries() {
		if kind == "" || e.Kind == kind {
			entries = append(entries, e)
		}
	}
	writeAPIJSON(w, http.StatusOK, entries)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	list, err := s.app.List()
	if err != nil {
		s.writeError(w, err)
		return
	}
	if list == nil {
		list = []session.Summary{}
	}
	writeAPIJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.app.Show(r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeAPIJSON(w, http.StatusOK, sess)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.app.Delete(r.PathValue("id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleReport renders the session as Markdown.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	sess, err := s.app.Show(r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	_, _ = w.Write([]byte(report.Markdown(sess)))
}

// handleRun creates a session and runs the whole pipeline before replying.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	seeds := session.Seeds{Concepts: req.Concepts, Patterns: req.Patterns, Practices: req.Practices}
	if seeds.IsEmpty() {
		writeAPIError(w, http.StatusBadRequest, "at least one of concepts, patterns or practices is required")
		return
	}

	res, err := s.app.Run(r.Context(), app.RunOptions{
		Name:        req.Name,
		Seeds:       seeds,
		Mode:        req.Mode,
		Objectives:  req.Objectives,
		Constraints: req.Constraints,
		Context:     req.Context,
	}, s.progress(r.Context()))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeAPIJSON(w, http.StatusCreated, RunResponse{Session: res.Session, Usage: res.Usage})
}

func (s *Server) handleDive(w http.ResponseWriter, r *http.Request) {
	var req DiveRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	rec, err := s.app.Dive(r.Context(), app.DiveOptions{
		SessionID: r.PathValue("id"),
		NodeIDs:   req.NodeIDs,
		Level:     req.Level,
		Question:  req.Question,
	}, s.progress(r.Context()))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeAPIJSON(w, http.StatusCreated, rec)
}

func (s *Server) progress(ctx context.Context) cascade.ProgressFunc {
	return func(label string, fraction float64) {
		s.logger.DebugContext(ctx, "stage progress", "stage", label, "fraction", fraction)
	}
}

func decodeRequest(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	if err := validate.Struct(v); err != nil {
		writeAPIError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fe.Field()+" failed "+fe.Tag())
	}
	return "invalid request: " + strings.Join(msgs, ", ")
}

// writeError maps app and engine errors onto HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var stageErr *cascade.StageError
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, session.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, app.ErrNoGenerator):
		status = http.StatusServiceUnavailable
	case errors.Is(err, app.ErrInvalidInput), errors.Is(err, cascade.ErrNoValidSelection),
		errors.Is(err, cascade.ErrInvalidLevel), errors.Is(err, util.ErrAmbiguousID):
		status = http.StatusBadRequest
	// checked before stage errors, which wrap a cancelled generation
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusServiceUnavailable
	case errors.As(err, &stageErr):
		status = http.StatusBadGateway
	}
	if status >= http.StatusInternalServerError {
		s.logger.Warn("api request failed", "status", status, "error", err)
	}
	writeAPIError(w, status, err.Error())
}

func writeAPIError(w http.ResponseWriter, status int, msg string) {
	writeAPIJSON(w, status, ErrorResponse{Error: msg})
}

func writeAPIJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
