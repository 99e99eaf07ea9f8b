package marketplace

import (
	"time"

	"github.com/clientdesk/backend/domain"
	"github.com/clientdesk/backend/internal/normalize"
)

// Flatten aggregates paid orders into one raw row per buyer phone. Totals
// and order counts sum across the buyer's orders, the most recent order sets
// the purchase date, and item quantities accumulate per product.
func Flatten(orders []Order) []normalize.RawRow {
	type aggregate struct {
		buyer        Buyer
		totalSpent   float64
		orderCount   int
		lastPurchase time.Time
		products     []domain.Product
		byProduct    map[string]int
	}

	byPhone := make(map[string]*aggregate)
	var order []string

	for _, o := range orders {
		if o.Buyer.Phone == "" {
			continue
		}

		agg, ok := byPhone[o.Buyer.Phone]
		if !ok {
			agg = &aggregate{buyer: o.Buyer, byProduct: make(map[string]int)}
			byPhone[o.Buyer.Phone] = agg
			order = append(order, o.Buyer.Phone)
		}

		agg.totalSpent += o.Total
		agg.orderCount++
		if o.CreatedAt.After(agg.lastPurchase) {
			agg.lastPurchase = o.CreatedAt
			agg.buyer = o.Buyer
		}

		for _, item := range o.Items {
			id := item.SKU
			if id == "" {
				id = normalize.ProductID(item.Name)
			}
			if idx, seen := agg.byProduct[id]; seen {
				agg.products[idx].Quantity += item.Quantity
				continue
			}
			agg.byProduct[id] = len(agg.products)
			agg.products = append(agg.products, domain.Product{
				ID:        id,
				Name:      item.Name,
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice,
			})
		}
	}

	rows := make([]normalize.RawRow, 0, len(order))
	for _, phone := range order {
		agg := byPhone[phone]
		rows = append(rows, normalize.RawRow{
			normalize.FieldPhone:        agg.buyer.Phone,
			normalize.FieldName:         agg.buyer.Name,
			normalize.FieldEmail:        agg.buyer.Email,
			normalize.FieldStreet:       agg.buyer.Street,
			normalize.FieldCity:         agg.buyer.City,
			normalize.FieldState:        agg.buyer.State,
			normalize.FieldZipCode:      agg.buyer.ZipCode,
			normalize.FieldTotalSpent:   agg.totalSpent,
			normalize.FieldOrderCount:   agg.orderCount,
			normalize.FieldLastPurchase: agg.lastPurchase,
			normalize.FieldProducts:     agg.products,
		})
	}
	return rows
}
