// Package httpx is the HTTP surface of the tenant service.
package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jcmexdev/marketplace/internal/auth"
	"github.com/jcmexdev/marketplace/internal/pkg/apperr"
	"github.com/jcmexdev/marketplace/internal/pkg/httpx"
	"github.com/jcmexdev/marketplace/internal/tenant"
	"github.com/jcmexdev/marketplace/internal/tenant-service/app"
)

const tenantIDParam = "tenant_id"

type TenantRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type Handler struct {
	svc *app.Service
}

func NewHandler(svc *app.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		httpx.WriteAppError(w, r, apperr.Internal("Internal Server Error", errors.New("tenant: no principal in context")))
		return
	}
	var req TenantRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	t, err := h.svc.Create(r.Context(), p, app.Details(req))
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	slog.InfoContext(r.Context(), "tenant created", "tenant_id", t.ID, "owner_id", t.OwnerID)
	httpx.WriteJSON(w, http.StatusCreated, tenant.ResponseOf(t))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.Get(r.Context(), chi.URLParam(r, tenantIDParam))
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tenant.ResponseOf(t))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req TenantRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	t, err := h.svc.Update(r.Context(), chi.URLParam(r, tenantIDParam), app.Details(req))
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tenant.ResponseOf(t))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.Delete(r.Context(), chi.URLParam(r, tenantIDParam))
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	slog.InfoContext(r.Context(), "tenant deleted", "tenant_id", t.ID)
	httpx.WriteJSON(w, http.StatusOK, tenant.ResponseOf(t))
}
