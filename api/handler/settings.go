package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/clientdesk/backend/api/transport"
	"github.com/clientdesk/backend/domain"
	"github.com/clientdesk/backend/pkg/httpcontext"
	"github.com/clientdesk/backend/usecase/importer"
)

type SettingsHandler struct {
	baseHandler
	importer *importer.UseCase
}

func NewSettingsHandler(imp *importer.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *SettingsHandler {
	return &SettingsHandler{
		baseHandler: newBaseHandler(adapter, logger),
		importer:    imp,
	}
}

func (h *SettingsHandler) GetThresholds(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	thresholds, err := h.importer.Thresholds(stdCtx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, thresholds)
}

// PutThresholds validates new status boundaries and reclassifies the whole
// store against them.
func (h *SettingsHandler) PutThresholds(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	var req transport.ThresholdsRequest
	if err := h.decodeBody(ctx, &req); err != nil {
		h.respondError(ctx, err)
		return
	}

	thresholds := domain.Thresholds{
		ActiveWithinDays: req.ActiveWithinDays,
		AtRiskWithinDays: req.AtRiskWithinDays,
	}
	updated, err := h.importer.RecomputeStatuses(stdCtx, thresholds)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	h.respondSuccess(ctx, http.StatusOK, map[string]interface{}{
		"thresholds": thresholds,
		"updated":    updated,
	})
}
