package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/biofolio/backend/domain"
	"github.com/biofolio/backend/pkg/httpcontext"
	authUC "github.com/biofolio/backend/usecase/auth"
)

type DirectoryHandler struct {
	baseHandler
	uc *authUC.UseCase
}

func NewDirectoryHandler(uc *authUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *DirectoryHandler {
	return &DirectoryHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List registered users
// @Tags directory
// @Router /api/v1/users [get]
func (h *DirectoryHandler) ListUsers(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	users, err := h.uc.Users(stdCtx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	sanitized := make([]domain.User, 0, len(users))
	for _, user := range users {
		sanitized = append(sanitized, user.Sanitized())
	}
	h.respondSuccess(ctx, http.StatusOK, sanitized)
}
