package application

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"budgetree/internal/domain"
)

// ValidateRequired checks if a string field is non-empty (after trimming whitespace).
// Returns a ValidationError if the field is empty.
func ValidateRequired(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		// Format field name with spaces for error message (e.g., "targetID" -> "target ID")
		displayName := formatFieldName(fieldName)
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("%s is required", displayName),
		}
	}
	return nil
}

// formatFieldName converts camelCase field names to space-separated words
// for more readable error messages (e.g., "targetID" -> "target ID")
func formatFieldName(fieldName string) string {
	replacements := map[string]string{
		"nodeID":    "node ID",
		"targetID":  "target ID",
		"draggedID": "dragged ID",
		"blockID":   "block ID",
		"entryID":   "entry ID",
		"label":     "label",
		"unitPrice": "unit price",
	}

	if formatted, ok := replacements[fieldName]; ok {
		return formatted
	}

	return fieldName
}

// ValidatePath checks that a value is a well-formed dotted path
func ValidatePath(fieldName, path string) error {
	if err := domain.ValidatePath(path); err != nil {
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("expected a dotted path like 1.2.3, got: %s", path),
		}
	}
	return nil
}

// ValidateOffset checks that a drop offset is a fraction of the row height
func ValidateOffset(fieldName string, offset float64) error {
	if offset < 0 || offset > 1 {
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("offset must be between 0 and 1, got: %g", offset),
		}
	}
	return nil
}

// ParseAmount parses a non-negative decimal such as a quantity or a price.
// A comma is accepted as the decimal separator.
func ParseAmount(fieldName, value string) (decimal.Decimal, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(value), ",", ".")
	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero, &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("invalid number: %s", value),
		}
	}
	if d.IsNegative() {
		return decimal.Zero, &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("%s cannot be negative", formatFieldName(fieldName)),
		}
	}
	return d, nil
}

// ParseBreakdown parses the three cost-breakdown percentages. Empty fields
// count as zero; all three empty yields nil.
func ParseBreakdown(material, labor, others string) (*domain.CostBreakdown, error) {
	if strings.TrimSpace(material+labor+others) == "" {
		return nil, nil
	}
	parse := func(field, value string) (decimal.Decimal, error) {
		if strings.TrimSpace(value) == "" {
			return decimal.Zero, nil
		}
		return ParseAmount(field, value)
	}

	var b domain.CostBreakdown
	var err error
	if b.Material, err = parse("material", material); err != nil {
		return nil, err
	}
	if b.Labor, err = parse("labor", labor); err != nil {
		return nil, err
	}
	if b.Others, err = parse("others", others); err != nil {
		return nil, err
	}
	return &b, nil
}
