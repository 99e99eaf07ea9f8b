package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/clientdesk/backend/api/transport"
	"github.com/clientdesk/backend/domain"
	"github.com/clientdesk/backend/internal/marketplace"
	"github.com/clientdesk/backend/internal/normalize"
	"github.com/clientdesk/backend/pkg/httpcontext"
	"github.com/clientdesk/backend/repository"
	"github.com/clientdesk/backend/usecase/importer"
)

// ImportHandler exposes the reconciliation engine: file imports, marketplace
// syncs, conflict resolution and the import history.
type ImportHandler struct {
	baseHandler
	importer    *importer.UseCase
	marketplace *marketplace.Client
	history     repository.HistoryRepository
}

func NewImportHandler(
	imp *importer.UseCase,
	mkt *marketplace.Client,
	history repository.HistoryRepository,
	adapter *httpcontext.Adapter,
	logger *zap.Logger,
) *ImportHandler {
	return &ImportHandler{
		baseHandler: newBaseHandler(adapter, logger),
		importer:    imp,
		marketplace: mkt,
		history:     history,
	}
}

// Run accepts an already-tabular file body, auto-maps its columns and feeds
// the rows through the engine.
func (h *ImportHandler) Run(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	var req transport.ImportRequest
	if err := h.decodeBody(ctx, &req); err != nil {
		h.respondError(ctx, err)
		return
	}
	if req.Source == "" {
		req.Source = "file-import"
	}

	mode, err := importer.ParseMode(req.Mode)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	mapping, err := normalize.MapColumns(req.Headers)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	rows := normalize.Rows(mapping, req.Rows)

	report, err := h.importer.RunBatch(stdCtx, rows, req.Source, mode)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, report)
}

// SyncMarketplace pulls paid orders and runs them through the engine with
// automatic smart merges. Syncs never prompt.
func (h *ImportHandler) SyncMarketplace(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	orders, err := h.marketplace.FetchPaidOrders(stdCtx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	rows := marketplace.Flatten(orders)
	report, err := h.importer.RunBatch(stdCtx, rows, "marketplace", importer.ModeBulkAuto)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, report)
}

// PendingConflicts lists the conflict currently presented for every
// unfinished batch.
func (h *ImportHandler) PendingConflicts(ctx *fasthttp.RequestCtx) {
	h.respondSuccess(ctx, http.StatusOK, h.importer.Pending())
}

// ResolveConflict applies a decision to the conflict currently presented.
func (h *ImportHandler) ResolveConflict(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	conflictID, _ := ctx.UserValue("id").(string)
	if conflictID == "" {
		h.respondError(ctx, domain.ErrInvalidPayload)
		return
	}

	var req transport.ResolveRequest
	if err := h.decodeBody(ctx, &req); err != nil {
		h.respondError(ctx, err)
		return
	}
	decision, err := domain.ParseResolution(req.Decision)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	report, err := h.importer.Resume(stdCtx, conflictID, decision, req.ApplyToRemaining)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, report)
}

// History lists completed batches, most recent first.
func (h *ImportHandler) History(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	entries, err := h.history.List(stdCtx, queryInt(ctx, "limit"))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, entries)
}
