package handler

import (
	"net/http"
	"strconv"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/clientdesk/backend/pkg/httpcontext"
	"github.com/clientdesk/backend/repository"
	customerUsecase "github.com/clientdesk/backend/usecase/customer"
)

type CustomerHandler struct {
	baseHandler
	customers *customerUsecase.UseCase
}

func NewCustomerHandler(customers *customerUsecase.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *CustomerHandler {
	return &CustomerHandler{
		baseHandler: newBaseHandler(adapter, logger),
		customers:   customers,
	}
}

func (h *CustomerHandler) List(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	filter := repository.CustomerFilter{
		Status: string(ctx.QueryArgs().Peek("status")),
		Limit:  queryInt(ctx, "limit"),
		Offset: queryInt(ctx, "offset"),
	}

	customers, err := h.customers.ListCustomers(stdCtx, filter)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, customers)
}

func (h *CustomerHandler) Get(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	id, _ := ctx.UserValue("id").(string)
	customer, err := h.customers.GetCustomer(stdCtx, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, customer)
}

func (h *CustomerHandler) Delete(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	id, _ := ctx.UserValue("id").(string)
	if err := h.customers.DeleteCustomer(stdCtx, id); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, nil)
}

func queryInt(ctx *fasthttp.RequestCtx, key string) int {
	raw := string(ctx.QueryArgs().Peek(key))
	if raw == "" {
		return 0
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return parsed
}
