// internal/server/handlers.go
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"jobboard-agent/internal/agent"
	"jobboard-agent/internal/board"
	commonerrors "jobboard-agent/internal/common/errors"
	"jobboard-agent/internal/followup"
)

// commandRequest accepts "message" when "input" is absent.
type commandRequest struct {
	Input   *string `json:"input"`
	Message *string `json:"message"`
}

func (c commandRequest) text() string {
	switch {
	case c.Input != nil:
		return *c.Input
	case c.Message != nil:
		return *c.Message
	}
	return ""
}

func (s *Server) handleIntent(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, agent.Parse(req.text(), s.logger))
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	res, err := s.runner.Run(r.Context(), req.text())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	res, err := s.runner.Undo(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type jobsResponse struct {
	Jobs []board.Job `json:"jobs"`
	KPIs board.KPIs  `json:"kpis"`
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.board.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, jobsResponse{Jobs: jobs, KPIs: board.ComputeKPIs(jobs)})
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var in board.NewJobInput
	if err := decodeBody(r, &in); err != nil {
		s.writeError(w, err)
		return
	}

	job, err := s.board.Create(r.Context(), in)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, job)
}

func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.board.Delete(r.Context(), id); err != nil {
		if errors.Is(err, board.ErrJobNotFound) {
			s.writeError(w, commonerrors.NewJobNotFoundError(id))
			return
		}
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleFollowupDraft drafts a follow-up email; ?tone= selects the tone.
func (s *Server) handleFollowupDraft(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	tone, err := followup.ParseTone(r.URL.Query().Get("tone"))
	if err != nil {
		s.writeError(w, commonerrors.NewInvalidRequestBodyError(err))
		return
	}

	job, err := s.board.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, board.ErrJobNotFound) {
			s.writeError(w, commonerrors.NewJobNotFoundError(id))
			return
		}
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, followup.Draft(*job, tone))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type readyResponse struct {
	OK     bool              `json:"ok"`
	Checks map[string]string `json:"checks,omitempty"`
	Time   string            `json:"time"`
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	resp := readyResponse{OK: true, Checks: make(map[string]string), Time: time.Now().UTC().Format(time.RFC3339)}
	for name, check := range s.checks {
		if err := check(r.Context()); err != nil {
			resp.OK = false
			resp.Checks[name] = err.Error()
			continue
		}
		resp.Checks[name] = "ok"
	}

	status := http.StatusOK
	if !resp.OK {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

// decodeBody reads a JSON body. An empty body leaves v untouched.
func decodeBody(r *http.Request, v interface{}) error {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return commonerrors.NewInvalidRequestBodyError(fmt.Errorf("read body: %w", err))
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return commonerrors.NewInvalidRequestBodyError(err)
	}
	return nil
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	stdErr := toStandardError(err)
	if commonerrors.HTTPStatus(stdErr.Code) >= http.StatusInternalServerError {
		s.logger.Error("request failed", map[string]interface{}{
			"errorCode": string(stdErr.Code),
			"category":  commonerrors.GetErrorCategory(stdErr.Code),
			"error":     err.Error(),
		})
	}
	commonerrors.WriteJSON(w, stdErr)
}

// toStandardError maps board and agent sentinels onto API error codes.
func toStandardError(err error) *commonerrors.StandardError {
	var stdErr *commonerrors.StandardError
	switch {
	case errors.As(err, &stdErr):
		return stdErr
	case errors.Is(err, agent.ErrReadOnly):
		return commonerrors.NewReadOnlyBoardError()
	case errors.Is(err, board.ErrNothingToUndo):
		return commonerrors.NewUndoUnavailableError()
	case errors.Is(err, board.ErrUndoStoreFailed):
		return commonerrors.NewUndoStoreFailedError(err)
	case errors.Is(err, board.ErrValidation):
		return commonerrors.NewJobValidationFailedError(err.Error())
	case errors.Is(err, board.ErrJobNotFound):
		return commonerrors.NewJobNotFoundError("")
	case errors.Is(err, board.ErrStoreFailed):
		return commonerrors.NewBoardStoreFailedError("board", err)
	}
	return commonerrors.NewInternalError(err)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
