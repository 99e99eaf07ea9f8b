// Package normalize canonicalizes raw import rows (spreadsheet cells or
// flattened marketplace payloads) into the engine's internal record shape.
package normalize

import (
	"strconv"
	"strings"
	"time"

	"github.com/clientdesk/backend/domain"
)

// RawRow is a transient source-specific field→value mapping. It exists only
// for the duration of one batch and is discarded after normalization.
type RawRow map[string]any

// Canonical field names shared by every import source.
const (
	FieldPhone        = "phone"
	FieldName         = "name"
	FieldEmail        = "email"
	FieldStreet       = "street"
	FieldCity         = "city"
	FieldState        = "state"
	FieldZipCode      = "zip_code"
	FieldBirthday     = "birthday"
	FieldTotalSpent   = "total_spent"
	FieldOrderCount   = "order_count"
	FieldLastPurchase = "last_purchase"
	FieldProduct      = "product"
	FieldSKU          = "sku"
	FieldQuantity     = "quantity"
	FieldUnitPrice    = "unit_price"

	// FieldProducts carries an already-built product list (marketplace path).
	FieldProducts = "products"
)

// DefaultCountryCode is prefixed onto domestic phone numbers.
const DefaultCountryCode = "55"

var knownCountryCodes = []string{"55", "54", "351", "1"}

// Normalize converts one raw row into an incoming record. A phone that cannot
// be normalized fails the whole row with domain.ErrInvalidPhone; every other
// field degrades to nil/zero/absent instead of failing the batch.
func Normalize(row RawRow, countryCode string) (domain.IncomingRecord, error) {
	var rec domain.IncomingRecord

	phone, err := Phone(asString(row[FieldPhone]), countryCode)
	if err != nil {
		return rec, err
	}
	rec.Phone = phone

	rec.Name = cleanText(asString(row[FieldName]))
	rec.Email = strings.ToLower(cleanText(asString(row[FieldEmail])))
	rec.Street = cleanText(asString(row[FieldStreet]))
	rec.City = cleanText(asString(row[FieldCity]))
	rec.State = strings.ToUpper(cleanText(asString(row[FieldState])))
	rec.ZipCode = cleanText(asString(row[FieldZipCode]))
	rec.Birthday = Date(row[FieldBirthday])
	rec.LastPurchase = Date(row[FieldLastPurchase])
	rec.TotalSpent = Money(row[FieldTotalSpent])
	rec.OrderCount = asInt(row[FieldOrderCount])
	rec.Products = products(row)

	return rec, nil
}

// Phone strips formatting and anchors the number to a country code.
// 10-11 digits are treated as domestic; longer numbers must already start
// with a recognized country code.
func Phone(raw string, countryCode string) (string, error) {
	if countryCode == "" {
		countryCode = DefaultCountryCode
	}
	digits := onlyDigits(raw)
	switch {
	case len(digits) >= 10 && len(digits) <= 11:
		return countryCode + digits, nil
	case len(digits) > 11:
		for _, cc := range knownCountryCodes {
			if strings.HasPrefix(digits, cc) {
				return digits, nil
			}
		}
	}
	return "", domain.ErrInvalidPhone
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006 15:04",
	"02/01/2006",
}

// Date accepts native times, ISO strings and BR locale dates and reduces them
// to a plain UTC calendar date. Unparsable input yields nil, not an error.
func Date(value any) *time.Time {
	switch v := value.(type) {
	case nil:
		return nil
	case time.Time:
		return calendarDate(v)
	case *time.Time:
		if v == nil {
			return nil
		}
		return calendarDate(*v)
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil
		}
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return calendarDate(parsed)
			}
		}
	}
	return nil
}

// Money accepts numbers as-is and strings with currency symbols and pt-BR
// separators ("R$ 1.234,56" → 1234.56). Unparsable input normalizes to 0.
func Money(value any) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		return moneyFromString(v)
	default:
		return 0
	}
}

func moneyFromString(raw string) float64 {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' || r == '.' || r == ',' || r == '-' {
			b.WriteRune(r)
		}
	}
	s := b.String()
	if s == "" {
		return 0
	}
	if strings.Contains(s, ",") {
		// Comma is the decimal separator; dots are thousands markers.
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}
	parsed, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return parsed
}

func products(row RawRow) []domain.Product {
	if list, ok := row[FieldProducts].([]domain.Product); ok {
		return list
	}

	name := cleanText(asString(row[FieldProduct]))
	if name == "" {
		return nil
	}
	id := cleanText(asString(row[FieldSKU]))
	if id == "" {
		id = ProductID(name)
	}
	quantity := asInt(row[FieldQuantity])
	if quantity <= 0 {
		quantity = 1
	}
	return []domain.Product{{
		ID:        id,
		Name:      name,
		Quantity:  quantity,
		UnitPrice: Money(row[FieldUnitPrice]),
	}}
}

// ProductID derives a stable product identity from its name when the source
// has no SKU column.
func ProductID(name string) string {
	folded := foldHeader(name)
	return strings.ReplaceAll(folded, " ", "")
}

func calendarDate(t time.Time) *time.Time {
	utc := t.UTC()
	date := time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)
	return &date
}

func cleanText(s string) string {
	return strings.TrimSpace(s)
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func asString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return ""
	}
}

func asInt(value any) int {
	switch v := value.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return parsed
		}
	}
	return 0
}
