package query

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"partsportal/internal/models"
)

// Compiled is the backend query produced for one parts request
type Compiled struct {
	// Filter is the complete $filter expression
	Filter string
	// HasFieldFilters is set when at least one field clause reached the filter
	HasFieldFilters bool
	// HasClientSideFilters is set when display-name fields must be filtered
	// after fetch
	HasClientSideFilters bool
	// Top caps the result set; zero means no cap
	Top int
}

// EscapeLiteral doubles single quotes so v is safe inside an OData string
// literal.
func EscapeLiteral(v string) string {
	return strings.ReplaceAll(v, "'", "''")
}

// BuildSingleFilterClause compiles one condition on one field. It returns
// false when the condition contributes nothing, which happens for numeric
// fields given a value that is not a finite number.
func BuildSingleFilterClause(field FilterField, cond models.Condition) (string, bool) {
	path := field.BackendPath
	if path == "" {
		return "", false
	}

	if field.Numeric {
		n, err := strconv.ParseFloat(strings.TrimSpace(cond.Value), 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return "", false
		}
		// Containment has no meaning for numbers; it degrades to equality.
		op := "eq"
		if cond.Operator.Negated() {
			op = "ne"
		}
		return fmt.Sprintf("%s %s %s", path, op, strconv.FormatFloat(n, 'f', -1, 64)), true
	}

	value := EscapeLiteral(cond.Value)
	switch cond.Operator {
	case models.OpDoesNotContain:
		return fmt.Sprintf("not contains(%s,'%s')", path, value), true
	case models.OpIs:
		return fmt.Sprintf("%s eq '%s'", path, value), true
	case models.OpIsNot:
		return fmt.Sprintf("%s ne '%s'", path, value), true
	default:
		return fmt.Sprintf("contains(%s,'%s')", path, value), true
	}
}

// BuildFieldFilters returns one clause per field that produced output.
// Several conditions on one field are parenthesized and joined with op.
// Display-name fields are skipped.
func BuildFieldFilters(schema *Schema, params FieldParams, op models.LogicalOperator) []string {
	var clauses []string
	for _, p := range params {
		if schema.clientSideOnly(p.Name) {
			continue
		}
		field := schema.Field(p.Name)

		var parts []string
		for _, cond := range p.Conditions {
			if clause, ok := BuildSingleFilterClause(field, cond); ok {
				parts = append(parts, clause)
			}
		}

		switch len(parts) {
		case 0:
		case 1:
			clauses = append(clauses, parts[0])
		default:
			clauses = append(clauses, "("+strings.Join(parts, " "+string(op)+" ")+")")
		}
	}
	return clauses
}

// Compile builds the $filter expression for a parts request. The
// classification restriction is always ANDed in front of the field clauses,
// whatever op is. When no search, field filter or client-side filter is in
// effect the result set is capped at schema.DefaultTop.
func Compile(schema *Schema, params FieldParams, search string, op models.LogicalOperator) Compiled {
	if op != models.LogicalOr {
		op = models.LogicalAnd
	}

	filter := fmt.Sprintf("%s eq '%s'", schema.ClassificationField, EscapeLiteral(schema.Classification))
	clauses := BuildFieldFilters(schema, params, op)
	switch len(clauses) {
	case 0:
	case 1:
		filter += " and " + clauses[0]
	default:
		filter += " and (" + strings.Join(clauses, " "+string(op)+" ") + ")"
	}

	compiled := Compiled{
		Filter:          filter,
		HasFieldFilters: len(clauses) > 0,
	}
	for _, p := range params {
		if schema.clientSideOnly(p.Name) {
			compiled.HasClientSideFilters = true
			break
		}
	}
	if strings.TrimSpace(search) == "" && !compiled.HasFieldFilters && !compiled.HasClientSideFilters {
		compiled.Top = schema.DefaultTop
	}
	return compiled
}

// RawQuery renders the OData query string for the compiled filter
func (c Compiled) RawQuery(schema *Schema) string {
	parts := []string{
		"$filter=" + escapeQueryValue(c.Filter),
		"$select=" + escapeQueryValue(strings.Join(schema.Select, ",")),
		"$expand=" + escapeQueryValue(strings.Join(schema.Expand, ",")),
	}
	if c.Top > 0 {
		parts = append(parts, "$top="+strconv.Itoa(c.Top))
	}
	return strings.Join(parts, "&")
}

// escapeQueryValue percent-encodes v, using %20 rather than "+" for spaces
// since OData services do not agree on "+".
func escapeQueryValue(v string) string {
	return strings.ReplaceAll(url.QueryEscape(v), "+", "%20")
}
