package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/devlog/devlog/internal/adapter/http/response"
	"github.com/devlog/devlog/internal/domain"
	"github.com/devlog/devlog/internal/usecase"
	"github.com/devlog/devlog/pkg/apperror"
)

// LogHandler handles HTTP requests for work logs
type LogHandler struct {
	logUseCase     *usecase.LogUseCase
	authMiddleware *AuthMiddleware
}

func NewLogHandler(logUseCase *usecase.LogUseCase, authMiddleware *AuthMiddleware) *LogHandler {
	return &LogHandler{
		logUseCase:     logUseCase,
		authMiddleware: authMiddleware,
	}
}

func (h *LogHandler) RegisterRoutes(router *mux.Router) {
	auth := h.authMiddleware.RequireAuth
	router.HandleFunc("/api/logs", auth(h.CreateLog)).Methods("POST")
	router.HandleFunc("/api/logs/me", auth(h.ListOwnLogs)).Methods("GET")
	router.HandleFunc("/api/logs/summary", auth(h.SummarizeLogs)).Methods("GET")
	router.HandleFunc("/api/logs", auth(h.ListAllLogs)).Methods("GET")
	router.HandleFunc("/api/logs/{id}", auth(h.UpdateLog)).Methods("PATCH")
	router.HandleFunc("/api/logs/{id}", auth(h.DeleteLog)).Methods("DELETE")
	router.HandleFunc("/api/logs/{id}/review", auth(h.ReviewLog)).Methods("PATCH")
}

func (h *LogHandler) CreateLog(w http.ResponseWriter, r *http.Request) {
	identity, ok := GetIdentity(r.Context())
	if !ok {
		response.Unauthorized(w, "No identity resolved")
		return
	}

	var req usecase.CreateLogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	log, err := h.logUseCase.Create(r.Context(), identity, req)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, http.StatusCreated, "Log created", log)
}

func (h *LogHandler) ListOwnLogs(w http.ResponseWriter, r *http.Request) {
	identity, ok := GetIdentity(r.Context())
	if !ok {
		response.Unauthorized(w, "No identity resolved")
		return
	}

	logs, err := h.logUseCase.ListOwn(r.Context(), identity)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "OK", logs)
}

func (h *LogHandler) ListAllLogs(w http.ResponseWriter, r *http.Request) {
	identity, ok := GetIdentity(r.Context())
	if !ok {
		response.Unauthorized(w, "No identity resolved")
		return
	}

	query := r.URL.Query()
	spec := domain.FilterSpec{
		Date:     query.Get("date"),
		Blockers: query.Get("blockers"),
		DevName:  query.Get("devName"),
		Tags:     query.Get("tags"),
	}

	logs, err := h.logUseCase.ListAll(r.Context(), identity, spec)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "OK", logs)
}

func (h *LogHandler) SummarizeLogs(w http.ResponseWriter, r *http.Request) {
	identity, ok := GetIdentity(r.Context())
	if !ok {
		response.Unauthorized(w, "No identity resolved")
		return
	}

	query := r.URL.Query()
	spec := domain.FilterSpec{
		Date:     query.Get("date"),
		Blockers: query.Get("blockers"),
		DevName:  query.Get("devName"),
		Tags:     query.Get("tags"),
	}

	summary, err := h.logUseCase.Summarize(r.Context(), identity, spec)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "OK", summary)
}

func (h *LogHandler) UpdateLog(w http.ResponseWriter, r *http.Request) {
	identity, ok := GetIdentity(r.Context())
	if !ok {
		response.Unauthorized(w, "No identity resolved")
		return
	}

	id := mux.Vars(r)["id"]
	if id == "" {
		response.BadRequest(w, "Log ID is required")
		return
	}

	var patch domain.LogPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	log, err := h.logUseCase.Update(r.Context(), identity, id, patch)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Log updated", log)
}

func (h *LogHandler) DeleteLog(w http.ResponseWriter, r *http.Request) {
	identity, ok := GetIdentity(r.Context())
	if !ok {
		response.Unauthorized(w, "No identity resolved")
		return
	}

	id := mux.Vars(r)["id"]
	if id == "" {
		response.BadRequest(w, "Log ID is required")
		return
	}

	if err := h.logUseCase.Delete(r.Context(), identity, id); err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Log deleted", nil)
}

func (h *LogHandler) ReviewLog(w http.ResponseWriter, r *http.Request) {
	identity, ok := GetIdentity(r.Context())
	if !ok {
		response.Unauthorized(w, "No identity resolved")
		return
	}

	id := mux.Vars(r)["id"]
	if id == "" {
		response.BadRequest(w, "Log ID is required")
		return
	}

	var req struct {
		Feedback string `json:"feedback"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	log, err := h.logUseCase.Review(r.Context(), identity, id, req.Feedback)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Log reviewed", log)
}

// writeError maps an error's kind to a distinct HTTP signal
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		response.Error(w, apperror.HTTPStatus(appErr), appErr.Message, string(appErr.Kind))
		return
	}
	response.InternalServerError(w, "Internal server error")
}
