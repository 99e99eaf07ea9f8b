// Package marketplace pulls paid orders from the marketplace REST API and
// flattens them into raw rows for the reconciliation engine.
package marketplace

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/clientdesk/backend/domain"
)

// Order is one paid order as the marketplace reports it.
type Order struct {
	ID        string      `json:"id"`
	Status    string      `json:"status"`
	Total     float64     `json:"total"`
	CreatedAt time.Time   `json:"created_at"`
	Buyer     Buyer       `json:"buyer"`
	Items     []OrderItem `json:"items"`
}

type Buyer struct {
	Phone   string `json:"phone"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zip_code"`
}

type OrderItem struct {
	SKU       string  `json:"sku"`
	Name      string  `json:"title"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

type ordersPage struct {
	Orders  []Order `json:"orders"`
	HasMore bool    `json:"has_more"`
}

// Config carries the marketplace API connection settings.
type Config struct {
	BaseURL  string
	Token    string
	PageSize int
	Timeout  time.Duration
}

// Client fetches orders page by page over the marketplace HTTP API.
type Client struct {
	http   *fasthttp.Client
	cfg    Config
	logger *zap.Logger
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 50
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		http: &fasthttp.Client{
			ReadTimeout:  cfg.Timeout,
			WriteTimeout: cfg.Timeout,
		},
		cfg:    cfg,
		logger: logger,
	}
}

// FetchPaidOrders walks the paginated orders endpoint and returns every order
// in paid status. Orders in any other status are dropped before they reach
// the engine.
func (c *Client) FetchPaidOrders(ctx context.Context) ([]Order, error) {
	if c.cfg.BaseURL == "" {
		return nil, domain.NewError(domain.ErrCodeInvalid, "marketplace base url not configured")
	}

	var orders []Order
	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result, err := c.fetchPage(page)
		if err != nil {
			return nil, err
		}

		for _, order := range result.Orders {
			if order.Status != "paid" {
				continue
			}
			orders = append(orders, order)
		}

		if !result.HasMore {
			break
		}
	}

	c.logger.Info("marketplace orders fetched", zap.Int("paid_orders", len(orders)))
	return orders, nil
}

func (c *Client) fetchPage(page int) (*ordersPage, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(fmt.Sprintf("%s/v1/orders?page=%d&per_page=%d", c.cfg.BaseURL, page, c.cfg.PageSize))
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	req.Header.Set("Accept", "application/json")

	if err := c.http.DoTimeout(req, resp, c.cfg.Timeout); err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "marketplace request failed", err)
	}
	if resp.StatusCode() == fasthttp.StatusUnauthorized {
		return nil, domain.ErrUnauthorized
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, domain.NewError(domain.ErrCodeInternal,
			fmt.Sprintf("marketplace returned status %d", resp.StatusCode()))
	}

	var result ordersPage
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "decoding marketplace response", err)
	}
	return &result, nil
}
