package handler

import (
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/clientdesk/backend/api/transport"
	"github.com/clientdesk/backend/pkg/httpcontext"
	authUsecase "github.com/clientdesk/backend/usecase/auth"
)

type AuthHandler struct {
	baseHandler
	auth       *authUsecase.UseCase
	defaultTTL time.Duration
}

func NewAuthHandler(auth *authUsecase.UseCase, defaultTTL time.Duration, adapter *httpcontext.Adapter, logger *zap.Logger) *AuthHandler {
	if defaultTTL <= 0 {
		defaultTTL = 24 * time.Hour
	}
	return &AuthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		auth:        auth,
		defaultTTL:  defaultTTL,
	}
}

func (h *AuthHandler) Login(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	var req transport.LoginRequest
	if err := h.decodeBody(ctx, &req); err != nil {
		h.respondError(ctx, err)
		return
	}

	ttl := h.defaultTTL
	if req.TTL > 0 {
		ttl = time.Duration(req.TTL) * time.Second
	}

	session, token, err := h.auth.Login(stdCtx, req.APIKey, req.OperatorID, ttl)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	h.respondSuccess(ctx, http.StatusOK, map[string]interface{}{
		"token":   token,
		"session": session,
	})
}

func (h *AuthHandler) Refresh(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	var req transport.RefreshRequest
	if err := h.decodeBody(ctx, &req); err != nil {
		h.respondError(ctx, err)
		return
	}

	ttl := h.defaultTTL
	if req.TTL > 0 {
		ttl = time.Duration(req.TTL) * time.Second
	}

	session, token, err := h.auth.Refresh(stdCtx, req.SessionID, ttl)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	h.respondSuccess(ctx, http.StatusOK, map[string]interface{}{
		"token":   token,
		"session": session,
	})
}

func (h *AuthHandler) Logout(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	sessionID := string(ctx.Request.Header.Peek("X-Session-ID"))
	if sessionID == "" {
		h.respondSuccess(ctx, http.StatusOK, nil)
		return
	}
	if err := h.auth.Revoke(stdCtx, sessionID); err != nil {
		h.logger.Warn("session revoke failed", zap.String("session_id", sessionID), zap.Error(err))
	}
	h.respondSuccess(ctx, http.StatusOK, nil)
}
