package query

import (
	"encoding/json"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"partsportal/internal/models"
)

// FieldParam is a filter field with its normalized conditions
type FieldParam struct {
	Name       string
	Conditions []models.Condition
}

// FieldParams is an ordered set of field filters
type FieldParams []FieldParam

// reservedParams are query parameters that never name a field
var reservedParams = map[string]bool{
	"search":          true,
	"classification":  true,
	"filterType":      true,
	"logicalOperator": true,
}

var fieldNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_./@]*$`)

// ValidFieldName reports whether name can be used as a filter field
func ValidFieldName(name string) bool {
	return fieldNamePattern.MatchString(name)
}

// ParseFieldParams extracts field filters from request query parameters.
// Reserved names, "$" directives and names that are not plain property
// paths are skipped. Fields whose conditions all normalize away are dropped.
// The result is ordered by field name.
func ParseFieldParams(values url.Values) FieldParams {
	names := make([]string, 0, len(values))
	for name := range values {
		if reservedParams[name] || strings.HasPrefix(name, "$") || !ValidFieldName(name) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	params := make(FieldParams, 0, len(names))
	for _, name := range names {
		conds := NormalizeConditions(ParseParam(values[name]))
		if len(conds) == 0 {
			continue
		}
		params = append(params, FieldParam{Name: name, Conditions: conds})
	}
	return params
}

// ParseParam decodes the raw values of one query parameter. A value that is
// JSON object or array text is decoded; anything else stays a string.
// Repeated parameters produce a slice.
func ParseParam(raw []string) any {
	decoded := make([]any, 0, len(raw))
	for _, v := range raw {
		decoded = append(decoded, decodeParamValue(v))
	}
	if len(decoded) == 1 {
		return decoded[0]
	}
	return decoded
}

func decodeParamValue(v string) any {
	trimmed := strings.TrimSpace(v)
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		var out any
		dec := json.NewDecoder(strings.NewReader(trimmed))
		dec.UseNumber()
		if err := dec.Decode(&out); err == nil {
			return out
		}
	}
	return v
}

// NormalizeConditions converts any of the accepted condition shapes into an
// ordered list of conditions:
//
//   - a structured object {"operator": ..., "value": ...}
//   - a bare string, where a leading "!" or "-" means "does not contain"
//   - a slice mixing either of the above
//
// Values that are empty after trimming are dropped.
func NormalizeConditions(raw any) []models.Condition {
	var out []models.Condition
	appendCondition := func(c models.Condition, ok bool) {
		if ok {
			out = append(out, c)
		}
	}

	switch t := raw.(type) {
	case []any:
		for _, el := range t {
			out = append(out, NormalizeConditions(el)...)
		}
	case []string:
		for _, el := range t {
			appendCondition(legacyCondition(el))
		}
	case []models.Condition:
		for _, c := range t {
			appendCondition(structuredCondition(string(c.Operator), c.Value))
		}
	case models.Condition:
		appendCondition(structuredCondition(string(t.Operator), t.Value))
	case map[string]any:
		op, _ := t["operator"].(string)
		value, ok := scalarString(t["value"])
		if ok {
			appendCondition(structuredCondition(op, value))
		}
	default:
		if s, ok := scalarString(t); ok {
			appendCondition(legacyCondition(s))
		}
	}
	return out
}

func structuredCondition(op, value string) (models.Condition, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return models.Condition{}, false
	}
	return models.Condition{Operator: models.ParseOperator(op), Value: value}, true
}

// legacyCondition interprets the older "!value" / "-value" shorthand
func legacyCondition(s string) (models.Condition, bool) {
	s = strings.TrimSpace(s)
	op := models.OpContains
	if strings.HasPrefix(s, "!") || strings.HasPrefix(s, "-") {
		op = models.OpDoesNotContain
		s = strings.TrimSpace(s[1:])
	}
	if s == "" {
		return models.Condition{}, false
	}
	return models.Condition{Operator: op, Value: s}, true
}

func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}
