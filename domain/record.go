package domain

import "time"

// IncomingRecord is a raw import row after normalization: the contact and
// commerce fields of a Customer, before the record has been matched to or
// created as a canonical one. It carries no id, provenance or derived fields.
type IncomingRecord struct {
	Phone    string     `json:"phone"`
	Name     string     `json:"name,omitempty"`
	Email    string     `json:"email,omitempty"`
	Street   string     `json:"street,omitempty"`
	City     string     `json:"city,omitempty"`
	State    string     `json:"state,omitempty"`
	ZipCode  string     `json:"zip_code,omitempty"`
	Birthday *time.Time `json:"birthday,omitempty"`

	TotalSpent   float64    `json:"total_spent"`
	OrderCount   int        `json:"order_count"`
	LastPurchase *time.Time `json:"last_purchase,omitempty"`
	Products     []Product  `json:"products,omitempty"`
}
