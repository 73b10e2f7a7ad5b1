package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/florinato/mongoagent/internal/agent"
	"github.com/florinato/mongoagent/internal/service"
	"github.com/florinato/mongoagent/internal/session"
)

const maxBodyBytes = 1 << 20

// StatusResponse is the JSON response for GET /status.
type StatusResponse struct {
	Status   string `json:"status"`
	Uptime   string `json:"uptime"`
	Sessions int    `json:"sessions"`
}

// SessionResponse is returned when a session is created.
type SessionResponse struct {
	SessionID string `json:"session_id"`
}

// ChatRequest advances a conversation. Send user_query for a new request,
// or confirmed_command and/or approve to decide on a pending command.
type ChatRequest struct {
	UserQuery        *string `json:"user_query"`
	ConfirmedCommand *string `json:"confirmed_command"`
	Approve          *bool   `json:"approve"`
}

// ChatResponse reports the outcome of a chat request.
type ChatResponse struct {
	Status           string  `json:"status"`
	Response         string  `json:"response"`
	CommandToConfirm *string `json:"command_to_confirm"`
	Iterations       int     `json:"iterations"`
}

// ErrorResponse is the JSON body of every error reply.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

func (r ChatRequest) toService() service.Request {
	var req service.Request
	if r.UserQuery != nil {
		req.Query = *r.UserQuery
	}
	if r.ConfirmedCommand != nil {
		req.ConfirmedCommand = *r.ConfirmedCommand
	}
	req.Approve = r.Approve
	return req
}

func chatResponse(res *agent.Result) ChatResponse {
	resp := ChatResponse{
		Status:     string(res.Status),
		Response:   res.Message,
		Iterations: res.Iterations,
	}
	if res.Status == agent.StatusConfirmationRequired {
		cmd := res.Command
		resp.CommandToConfirm = &cmd
	}
	return resp
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{
		Status:   "running",
		Uptime:   time.Since(s.started).Round(time.Second).String(),
		Sessions: len(s.svc.Sessions()),
	})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, SessionResponse{SessionID: s.svc.CreateSession()})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Sessions())
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := s.svc.Advance(r.Context(), r.PathValue("id"), req.toService())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chatResponse(res))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	turns, err := s.svc.History(r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, turns)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteSession(r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLog(w http.ResponseWriter, r *http.Request) {
	if s.trace == nil {
		writeError(w, http.StatusNotFound, "tracing is disabled")
		return
	}
	text, err := s.trace.Read()
	if err != nil {
		slog.Error("reading trace failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not read the trace")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(text))
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		slog.Error("request failed", "error", err)
	}
	writeError(w, code, err.Error())
}

func writeError(w http.ResponseWriter, code int, detail string) {
	writeJSON(w, code, ErrorResponse{Detail: detail})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("writing response failed", "error", err)
	}
}
