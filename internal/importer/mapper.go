package importer

import (
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Field is a canonical component attribute a spreadsheet column can map to.
type Field string

const (
	FieldName        Field = "name"
	FieldStock       Field = "stock"
	FieldPartNumber  Field = "part_number"
	FieldMinRequired Field = "min_required"
	FieldScrapRate   Field = "scrap_rate"
	FieldUnitCost    Field = "unit_cost"
	FieldAmount      Field = "amount_per_unit"
)

// DefaultName labels rows whose sheet carries no usable name. Imports
// favor best-effort ingestion with visible defaults over hard failure.
const DefaultName = "Unknown Item"

// Column keyword tables. A header maps to the first field whose keyword
// list matches it; earlier fields win when a header matches several.
var fieldKeywords = []struct {
	field    Field
	keywords []string
}{
	{FieldPartNumber, []string{"part number", "part no", "part_no", "part_number", "sku", "pn"}},
	{FieldAmount, []string{"amount per unit", "amount_per_unit", "per unit", "per_unit", "usage"}},
	{FieldMinRequired, []string{"min", "minimum", "required", "reorder"}},
	{FieldScrapRate, []string{"scrap", "waste"}},
	{FieldStock, []string{"stock", "qty", "quantity", "count", "on hand", "on_hand", "inventory", "balance"}},
	{FieldUnitCost, []string{"cost", "price"}},
	{FieldName, []string{"name", "component", "part", "item", "description", "material", "product"}},
}

// MappedRow is one spreadsheet row translated to canonical fields.
type MappedRow struct {
	Name        string
	Stock       int
	PartNumber  string
	MinRequired *int
	ScrapRate   *decimal.Decimal
	UnitCost    *decimal.Decimal
	Amount      *decimal.Decimal
}

// MapHeaders assigns each canonical field the first matching header.
// Headers are scanned in sorted order so the mapping does not depend
// on map iteration order.
func MapHeaders(headers []string) map[Field]string {
	sorted := append([]string(nil), headers...)
	sort.Strings(sorted)

	assigned := map[Field]string{}
	for _, header := range sorted {
		normalized := normalizeHeader(header)
		if normalized == "" {
			continue
		}
		for _, entry := range fieldKeywords {
			if _, taken := assigned[entry.field]; taken {
				continue
			}
			if matchesAny(normalized, entry.keywords) {
				assigned[entry.field] = header
				break
			}
		}
	}
	return assigned
}

// MapRow translates one raw row using the header assignment. Numeric
// cells that fail to parse fall back to zero rather than failing the
// whole import.
func MapRow(row map[string]string, assignment map[Field]string) MappedRow {
	mapped := MappedRow{}
	if header, ok := assignment[FieldName]; ok {
		mapped.Name = strings.TrimSpace(row[header])
	}
	if mapped.Name == "" {
		mapped.Name = DefaultName
	}
	if header, ok := assignment[FieldStock]; ok {
		mapped.Stock = parseIntCell(row[header])
	}
	if header, ok := assignment[FieldPartNumber]; ok {
		mapped.PartNumber = strings.TrimSpace(row[header])
	}
	if header, ok := assignment[FieldMinRequired]; ok {
		if value := strings.TrimSpace(row[header]); value != "" {
			parsed := parseIntCell(value)
			mapped.MinRequired = &parsed
		}
	}
	if header, ok := assignment[FieldScrapRate]; ok {
		if parsed, ok := parseDecimalCell(row[header]); ok {
			mapped.ScrapRate = &parsed
		}
	}
	if header, ok := assignment[FieldUnitCost]; ok {
		if parsed, ok := parseDecimalCell(row[header]); ok {
			mapped.UnitCost = &parsed
		}
	}
	if header, ok := assignment[FieldAmount]; ok {
		if parsed, ok := parseDecimalCell(row[header]); ok {
			mapped.Amount = &parsed
		}
	}
	return mapped
}

// RowIsEmpty reports whether every cell in the row is blank. Empty
// rows are the only rows an import reports as errors instead of
// defaulting.
func RowIsEmpty(row map[string]string) bool {
	for _, value := range row {
		if strings.TrimSpace(value) != "" {
			return false
		}
	}
	return true
}

func normalizeHeader(header string) string {
	normalized := strings.ToLower(strings.TrimSpace(header))
	normalized = strings.ReplaceAll(normalized, "-", " ")
	normalized = strings.ReplaceAll(normalized, "_", " ")
	return strings.Join(strings.Fields(normalized), " ")
}

func matchesAny(normalized string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(normalized, keyword) {
			return true
		}
	}
	return false
}

func parseIntCell(value string) int {
	cleaned := cleanNumericCell(value)
	if cleaned == "" {
		return 0
	}
	if parsed, err := strconv.Atoi(cleaned); err == nil {
		return parsed
	}
	if parsed, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return int(parsed)
	}
	return 0
}

func parseDecimalCell(value string) (decimal.Decimal, bool) {
	cleaned := cleanNumericCell(value)
	if cleaned == "" {
		return decimal.Zero, false
	}
	parsed, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}
	return parsed, true
}

func cleanNumericCell(value string) string {
	cleaned := strings.TrimSpace(value)
	cleaned = strings.TrimPrefix(cleaned, "$")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	return cleaned
}
