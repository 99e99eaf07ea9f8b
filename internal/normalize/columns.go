package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/clientdesk/backend/domain"
)

// Mapping associates header column indexes with canonical field names.
type Mapping map[int]string

// fieldAliases drives the declarative column auto-mapping for file imports.
// Order matters twice: canonical fields claim headers in this order, and a
// claimed header is never reused by a later field.
var fieldAliases = []struct {
	field   string
	aliases []string
}{
	{FieldPhone, []string{"telefone", "celular", "whatsapp", "fone", "phone"}},
	{FieldEmail, []string{"email"}},
	{FieldName, []string{"nome", "cliente", "name", "customer"}},
	{FieldStreet, []string{"endereco", "logradouro", "rua", "street", "address"}},
	{FieldCity, []string{"cidade", "municipio", "city"}},
	{FieldState, []string{"estado", "uf", "state"}},
	{FieldZipCode, []string{"cep", "zip", "postal"}},
	{FieldBirthday, []string{"nascimento", "aniversario", "birthday"}},
	{FieldLastPurchase, []string{"ultimacompra", "ultimopedido", "datacompra", "lastpurchase", "lastorder"}},
	{FieldTotalSpent, []string{"totalgasto", "valortotal", "total", "valor", "gasto", "spent", "amount"}},
	{FieldOrderCount, []string{"pedidos", "compras", "orders"}},
	{FieldSKU, []string{"sku", "codigoproduto", "codigo"}},
	{FieldProduct, []string{"produto", "product", "item"}},
	{FieldQuantity, []string{"quantidade", "qtd", "qty", "quantity"}},
	{FieldUnitPrice, []string{"precounitario", "preco", "unitprice", "price"}},
}

// MapColumns matches each canonical field to the first header containing one
// of its alias keywords. A mapping with no phone column rejects the batch
// outright: phone is the join key.
func MapColumns(headers []string) (Mapping, error) {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = normalizeHeader(h)
	}

	mapping := make(Mapping)
	claimed := make(map[int]bool)

	for _, entry := range fieldAliases {
	headerScan:
		for i, header := range normalized {
			if claimed[i] || header == "" {
				continue
			}
			for _, alias := range entry.aliases {
				if strings.Contains(header, alias) {
					mapping[i] = entry.field
					claimed[i] = true
					break headerScan
				}
			}
		}
	}

	if !mapping.hasField(FieldPhone) {
		return nil, domain.ErrMissingPhoneColumn
	}
	return mapping, nil
}

// Rows converts a tabular body into raw rows using a column mapping.
// Unmapped cells are discarded.
func Rows(mapping Mapping, table [][]any) []RawRow {
	rows := make([]RawRow, 0, len(table))
	for _, cells := range table {
		row := make(RawRow)
		for i, cell := range cells {
			if field, ok := mapping[i]; ok {
				row[field] = cell
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func (m Mapping) hasField(field string) bool {
	for _, f := range m {
		if f == field {
			return true
		}
	}
	return false
}

var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// foldHeader lowercases and strips diacritics so "Código" and "codigo"
// compare equal.
func foldHeader(s string) string {
	lowered := strings.ToLower(strings.TrimSpace(s))
	stripped, _, err := transform.String(diacriticStripper, lowered)
	if err != nil {
		return lowered
	}
	return stripped
}

func normalizeHeader(s string) string {
	folded := foldHeader(s)
	return strings.Map(func(r rune) rune {
		switch {
		case r == ' ' || r == '\t' || r == '_' || r == '-':
			return -1
		default:
			return r
		}
	}, folded)
}
