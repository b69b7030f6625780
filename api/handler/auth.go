package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/biofolio/backend/api/transport"
	"github.com/biofolio/backend/domain"
	"github.com/biofolio/backend/pkg/httpcontext"
	authUC "github.com/biofolio/backend/usecase/auth"
)

const minPasswordLength = 6

type AuthHandler struct {
	baseHandler
	uc        *authUC.UseCase
	jwtSecret string
	jwtIssuer string
}

func NewAuthHandler(uc *authUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger, jwtSecret, jwtIssuer string) *AuthHandler {
	return &AuthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
		jwtSecret:   jwtSecret,
		jwtIssuer:   jwtIssuer,
	}
}

// @Summary Register a new user
// @Tags auth
// @Router /api/v1/auth/register [post]
func (h *AuthHandler) Register(ctx *fasthttp.RequestCtx) {
	var req transport.RegisterRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}
	if req.Name == "" || req.Email == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "name and email are required", nil))
		return
	}
	if len(req.Password) < minPasswordLength {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "password must be at least 6 characters", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	user, err := h.uc.Register(stdCtx, authUC.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Bio:      req.Bio,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondAuth(ctx, stdCtx, http.StatusCreated, user)
}

// @Summary Log in with email and password
// @Tags auth
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(ctx *fasthttp.RequestCtx) {
	var req transport.LoginRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.Email == "" || req.Password == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	user, err := h.uc.Login(stdCtx, req.Email, req.Password)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondAuth(ctx, stdCtx, http.StatusOK, user)
}

// @Summary Log out the current user
// @Tags auth
// @Router /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Logout(stdCtx); err != nil {
		h.respondError(ctx, err)
		return
	}
	ctx.SetStatusCode(http.StatusNoContent)
}

// @Summary Get the current user
// @Tags auth
// @Router /api/v1/profile [get]
func (h *AuthHandler) Me(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	user, err := h.uc.CurrentUser(stdCtx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, user.Sanitized())
}

func (h *AuthHandler) respondAuth(ctx *fasthttp.RequestCtx, stdCtx context.Context, status int, user *domain.User) {
	token, err := h.issueToken(user.ID)
	if err != nil {
		h.log(stdCtx).Error("failed to sign token", zap.Error(err))
		h.respondError(ctx, domain.WrapError(domain.ErrCodeInternal, "failed to issue token", err))
		return
	}
	h.respondSuccess(ctx, status, transport.AuthResponse{
		User:  user.Sanitized(),
		Token: token,
	})
}

func (h *AuthHandler) issueToken(userID string) (string, error) {
	session := h.uc.Current()
	claims := jwt.MapClaims{
		"user_id": userID,
		"iss":     h.jwtIssuer,
		"iat":     time.Now().Unix(),
	}
	if session != nil {
		claims["session_id"] = session.ID
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.jwtSecret))
}
