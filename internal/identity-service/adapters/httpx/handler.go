// Package httpx is the HTTP surface of the identity service.
package httpx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/jcmexdev/marketplace/internal/auth"
	"github.com/jcmexdev/marketplace/internal/identity-service/app"
	"github.com/jcmexdev/marketplace/internal/pkg/httpx"
)

type RegisterRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	FullName    string `json:"full_name"`
	Address     string `json:"address"`
	PhoneNumber string `json:"phone_number"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string    `json:"token"`
	User  auth.User `json:"user"`
}

type VerifyRequest struct {
	Token string `json:"token"`
}

type UserResponse struct {
	User auth.User `json:"user"`
}

type Handler struct {
	svc *app.Service
}

func NewHandler(svc *app.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	h.register(w, r, h.svc.Register)
}

func (h *Handler) RegisterAdmin(w http.ResponseWriter, r *http.Request) {
	h.register(w, r, h.svc.RegisterAdmin)
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, in app.RegisterInput) (auth.User, error)) {
	var req RegisterRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	u, err := fn(r.Context(), app.RegisterInput(req))
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	slog.InfoContext(r.Context(), "account registered", "user_id", u.ID, "role", u.Role)
	httpx.WriteJSON(w, http.StatusCreated, UserResponse{User: u})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, h.svc.Login)
}

func (h *Handler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, h.svc.AdminLogin)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, username, password string) (app.LoginResult, error)) {
	var req LoginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	res, err := fn(r.Context(), req.Username, req.Password)
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, LoginResponse{Token: res.Token, User: res.User})
}

func (h *Handler) VerifyToken(w http.ResponseWriter, r *http.Request) {
	h.verify(w, r, h.svc.VerifyToken)
}

func (h *Handler) VerifyAdminToken(w http.ResponseWriter, r *http.Request) {
	h.verify(w, r, h.svc.VerifyAdminToken)
}

func (h *Handler) verify(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, token string) (auth.User, error)) {
	var req VerifyRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	u, err := fn(r.Context(), req.Token)
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, UserResponse{User: u})
}
