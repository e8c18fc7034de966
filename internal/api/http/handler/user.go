package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/dtroode/auth-service/internal/api/http/respond"
	"github.com/dtroode/auth-service/internal/apierrors"
	"github.com/dtroode/auth-service/internal/logger"
	"github.com/dtroode/auth-service/internal/model"
	"github.com/dtroode/auth-service/internal/service"
)

type UserService interface {
	Create(ctx context.Context, params service.CreateUserParams) (model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Get(ctx context.Context, id int64) (model.User, error)
	Update(ctx context.Context, id int64, params service.UpdateUserParams) (model.User, error)
	Delete(ctx context.Context, id int64) error
}

type createUserRequest struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	TenantID  *int64 `json:"tenantId" validate:"omitempty,gt=0"`
}

func (r *createUserRequest) trim() {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = strings.TrimSpace(r.Email)
}

type updateUserRequest struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Role      string `json:"role" validate:"required,oneof=customer manager admin"`
	TenantID  *int64 `json:"tenantId" validate:"omitempty,gt=0"`
}

func (r *updateUserRequest) trim() {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
}

// User handles /users endpoints. Every route is admin only.
type User struct {
	userService UserService
	decoder     *Decoder
	logger      *logger.Logger
}

func NewUser(userService UserService, decoder *Decoder, logger *logger.Logger) *User {
	return &User{userService: userService, decoder: decoder, logger: logger}
}

// Create adds a manager account.
func (h *User) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := h.decoder.Decode(w, r, &req); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	user, err := h.userService.Create(r.Context(), service.CreateUserParams{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Role:      model.RoleManager,
		TenantID:  req.TenantID,
	})
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	respond.JSON(w, http.StatusCreated, idResponse{ID: user.ID})
}

func (h *User) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.List(r.Context())
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	views := make([]userView, 0, len(users))
	for _, u := range users {
		views = append(views, newUserView(u))
	}
	respond.JSON(w, http.StatusOK, views)
}

func (h *User) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	user, err := h.userService.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	respond.JSON(w, http.StatusOK, newUserView(user))
}

func (h *User) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	var req updateUserRequest
	if err := h.decoder.Decode(w, r, &req); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	role, err := model.ParseRole(req.Role)
	if err != nil {
		respond.Error(w, r, h.logger, apierrors.NewErrValidation(apierrors.FieldEntry("role", invalidValueMsg)))
		return
	}

	user, err := h.userService.Update(r.Context(), id, service.UpdateUserParams{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      role,
		TenantID:  req.TenantID,
	})
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	respond.JSON(w, http.StatusOK, idResponse{ID: user.ID})
}

func (h *User) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	if err := h.userService.Delete(r.Context(), id); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	respond.JSON(w, http.StatusOK, idResponse{ID: id})
}
