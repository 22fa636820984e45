// Package sql validates ad-hoc filter expressions before they reach the
// store. Column names are checked against the sheet's stored header list and
// values are screened with libinjection, so user input never shapes SQL text.
package sql

import (
	"fmt"
	"slices"
	"strings"

	libinjection "github.com/corazawaf/libinjection-go"

	"github.com/excelq/excelq-engine/pkg/apperrors"
	"github.com/excelq/excelq-engine/pkg/models"
)

// Operators supported by the ad-hoc sheet query endpoint, mapped to their SQL
// comparison form against a JSONB text field.
var operatorSQL = map[string]string{
	"equals":             "=",
	"notEquals":          "!=",
	"contains":           "ILIKE",
	"startsWith":         "ILIKE",
	"endsWith":           "ILIKE",
	"greaterThan":        ">",
	"lessThan":           "<",
	"greaterThanOrEqual": ">=",
	"lessThanOrEqual":    "<=",
}

// OperatorSQL returns the SQL comparison operator for a filter operator name.
func OperatorSQL(operator string) (string, error) {
	op, ok := operatorSQL[operator]
	if !ok {
		return "", fmt.Errorf("%w: unknown operator %q", apperrors.ErrInvalidFilter, operator)
	}
	return op, nil
}

// OperatorValue shapes the bound parameter for pattern operators.
func OperatorValue(operator, value string) string {
	switch operator {
	case "contains":
		return "%" + value + "%"
	case "startsWith":
		return value + "%"
	case "endsWith":
		return "%" + value
	default:
		return value
	}
}

// ValidateFilters checks every filter against the sheet's header list and
// screens string values for SQL injection patterns. Returns
// apperrors.ErrInvalidFilter describing the first offending filter.
func ValidateFilters(filters []models.SheetFilter, headers []string) error {
	for _, f := range filters {
		if !slices.Contains(headers, f.Column) {
			return fmt.Errorf("%w: column %q is not in the sheet headers", apperrors.ErrInvalidFilter, f.Column)
		}
		if _, err := OperatorSQL(f.Operator); err != nil {
			return err
		}
		if isSQLi, _ := libinjection.IsSQLi(f.Value); isSQLi {
			return fmt.Errorf("%w: value for column %q looks like a SQL injection attempt", apperrors.ErrInvalidFilter, f.Column)
		}
	}
	return nil
}

// ValidateSort checks the sort column against the header list; an empty
// column means "sort by row number" and is always valid. The returned order
// is normalized to ASC/DESC.
func ValidateSort(sortBy, sortOrder string, headers []string) (string, error) {
	if sortBy != "" && !slices.Contains(headers, sortBy) {
		return "", fmt.Errorf("%w: sort column %q is not in the sheet headers", apperrors.ErrInvalidFilter, sortBy)
	}

	order := strings.ToUpper(strings.TrimSpace(sortOrder))
	switch order {
	case "", "ASC":
		return "ASC", nil
	case "DESC":
		return "DESC", nil
	default:
		return "", fmt.Errorf("%w: sort order must be ASC or DESC, got %q", apperrors.ErrInvalidFilter, sortOrder)
	}
}
