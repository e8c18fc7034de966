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

// AuthService defines the self-service account operations.
type AuthService interface {
	Register(ctx context.Context, params service.RegisterParams) (model.User, model.TokenPair, error)
	Login(ctx context.Context, email, password string) (model.User, model.TokenPair, error)
	Self(ctx context.Context, principal model.Principal) (model.User, error)
	Refresh(ctx context.Context, claims model.RefreshTokenClaims) (model.TokenPair, error)
	Logout(ctx context.Context, claims model.RefreshTokenClaims) error
}

type registerRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
}

func (r *registerRequest) trim() {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = strings.TrimSpace(r.Email)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

func (r *loginRequest) trim() {
	r.Email = strings.TrimSpace(r.Email)
}

// Auth handles /auth endpoints.
type Auth struct {
	authService    AuthService
	contextManager model.ContextManager
	decoder        *Decoder
	cookies        CookieConfig
	logger         *logger.Logger
}

func NewAuth(
	authService AuthService,
	contextManager model.ContextManager,
	decoder *Decoder,
	cookies CookieConfig,
	logger *logger.Logger,
) *Auth {
	return &Auth{
		authService:    authService,
		contextManager: contextManager,
		decoder:        decoder,
		cookies:        cookies,
		logger:         logger,
	}
}

// Register creates a customer and signs them in.
func (h *Auth) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := h.decoder.Decode(w, r, &req); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	user, pair, err := h.authService.Register(r.Context(), service.RegisterParams{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	h.cookies.setTokens(w, pair)
	respond.JSON(w, http.StatusCreated, idResponse{ID: user.ID})
}

// Login checks credentials and sets fresh token cookies.
func (h *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := h.decoder.Decode(w, r, &req); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	user, pair, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	h.cookies.setTokens(w, pair)
	respond.JSON(w, http.StatusOK, idResponse{ID: user.ID})
}

// Self returns the caller's profile.
func (h *Auth) Self(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.contextManager.GetPrincipal(r.Context())
	if !ok {
		respond.Error(w, r, h.logger, apierrors.NewErrMissingAuthorizationToken())
		return
	}

	user, err := h.authService.Self(r.Context(), principal)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	respond.JSON(w, http.StatusOK, newUserView(user))
}

// Refresh rotates the presented refresh token.
func (h *Auth) Refresh(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.contextManager.GetRefreshClaims(r.Context())
	if !ok {
		respond.Error(w, r, h.logger, apierrors.NewErrMissingAuthorizationToken())
		return
	}

	pair, err := h.authService.Refresh(r.Context(), claims)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	h.cookies.setTokens(w, pair)
	respond.JSON(w, http.StatusOK, idResponse{ID: claims.PrincipalID})
}

// Logout deletes the presented refresh token and clears both cookies.
func (h *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.contextManager.GetRefreshClaims(r.Context())
	if !ok {
		respond.Error(w, r, h.logger, apierrors.NewErrMissingAuthorizationToken())
		return
	}

	if err := h.authService.Logout(r.Context(), claims); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	h.cookies.clearTokens(w)
	respond.JSON(w, http.StatusOK, struct{}{})
}
