package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/devlog/devlog/internal/adapter/http/response"
	"github.com/devlog/devlog/internal/adapter/http/validator"
	"github.com/devlog/devlog/internal/usecase"
)

// AuthHandler handles HTTP requests for registration and login
type AuthHandler struct {
	authUseCase    *usecase.AuthUseCase
	authMiddleware *AuthMiddleware
}

func NewAuthHandler(authUseCase *usecase.AuthUseCase, authMiddleware *AuthMiddleware) *AuthHandler {
	return &AuthHandler{
		authUseCase:    authUseCase,
		authMiddleware: authMiddleware,
	}
}

func (h *AuthHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/auth/register", h.Register).Methods("POST")
	router.HandleFunc("/api/auth/login", h.Login).Methods("POST")
	router.HandleFunc("/api/auth/me", h.authMiddleware.RequireAuth(h.Me)).Methods("GET")
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req usecase.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if !validator.ValidateEmail(req.Email) {
		response.UnprocessableEntity(w, "Invalid email format")
		return
	}

	user, err := h.authUseCase.Register(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, http.StatusCreated, "Account created", user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req usecase.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	res, err := h.authUseCase.Login(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Logged in", res)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := GetIdentity(r.Context())
	if !ok {
		response.Unauthorized(w, "No identity resolved")
		return
	}

	user, err := h.authUseCase.Me(r.Context(), identity.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "OK", user)
}
