package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/dtroode/auth-service/internal/api/http/respond"
	"github.com/dtroode/auth-service/internal/logger"
	"github.com/dtroode/auth-service/internal/model"
	"github.com/dtroode/auth-service/internal/service"
)

type TenantService interface {
	Create(ctx context.Context, params service.TenantParams) (model.Tenant, error)
	List(ctx context.Context) ([]model.Tenant, error)
	Get(ctx context.Context, id int64) (model.Tenant, error)
	Update(ctx context.Context, id int64, params service.TenantParams) (model.Tenant, error)
	Delete(ctx context.Context, id int64) error
}

type tenantRequest struct {
	Name    string `json:"name" validate:"required,max=100"`
	Address string `json:"address" validate:"required,max=255"`
}

func (r *tenantRequest) trim() {
	r.Name = strings.TrimSpace(r.Name)
	r.Address = strings.TrimSpace(r.Address)
}

func (r tenantRequest) params() service.TenantParams {
	return service.TenantParams{Name: r.Name, Address: r.Address}
}

// Tenant handles /tenants endpoints.
type Tenant struct {
	tenantService TenantService
	decoder       *Decoder
	logger        *logger.Logger
}

func NewTenant(tenantService TenantService, decoder *Decoder, logger *logger.Logger) *Tenant {
	return &Tenant{tenantService: tenantService, decoder: decoder, logger: logger}
}

func (h *Tenant) Create(w http.ResponseWriter, r *http.Request) {
	var req tenantRequest
	if err := h.decoder.Decode(w, r, &req); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	tenant, err := h.tenantService.Create(r.Context(), req.params())
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	respond.JSON(w, http.StatusCreated, idResponse{ID: tenant.ID})
}

func (h *Tenant) List(w http.ResponseWriter, r *http.Request) {
	tenants, err := h.tenantService.List(r.Context())
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	views := make([]tenantView, 0, len(tenants))
	for _, t := range tenants {
		views = append(views, newTenantView(t))
	}
	respond.JSON(w, http.StatusOK, views)
}

func (h *Tenant) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	tenant, err := h.tenantService.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	respond.JSON(w, http.StatusOK, newTenantView(tenant))
}

func (h *Tenant) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	var req tenantRequest
	if err := h.decoder.Decode(w, r, &req); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	tenant, err := h.tenantService.Update(r.Context(), id, req.params())
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	respond.JSON(w, http.StatusOK, idResponse{ID: tenant.ID})
}

func (h *Tenant) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	if err := h.tenantService.Delete(r.Context(), id); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	respond.JSON(w, http.StatusOK, messageResponse{Message: "Tenant deleted successfully"})
}
