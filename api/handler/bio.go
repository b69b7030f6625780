package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/biofolio/backend/api/transport"
	"github.com/biofolio/backend/domain"
	"github.com/biofolio/backend/pkg/httpcontext"
	bioUC "github.com/biofolio/backend/usecase/bio"
)

type BioHandler struct {
	baseHandler
	uc *bioUC.UseCase
}

func NewBioHandler(uc *bioUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *BioHandler {
	return &BioHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Generate a short biography
// @Tags bio
// @Router /api/v1/bio [post]
func (h *BioHandler) Generate(ctx *fasthttp.RequestCtx) {
	var req transport.BioRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.Name == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	// Generation never fails; the use case falls back to a canned sentence.
	text := h.uc.Generate(stdCtx, req.Name, req.Interests)
	h.respondSuccess(ctx, http.StatusOK, transport.BioResponse{Bio: text})
}
