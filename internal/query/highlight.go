package query

import (
	"strings"

	"partsportal/internal/models"
)

// ApplyFieldHighlighting records, for every field filter, the condition
// values found in the instance's value for that field. Negated conditions
// are highlighted too: the metadata shows what was searched for.
func ApplyFieldHighlighting(schema *Schema, instances []models.AnnotatedInstance, params FieldParams) []models.AnnotatedInstance {
	out := make([]models.AnnotatedInstance, 0, len(instances))
	for _, inst := range instances {
		if inst.Matches == nil {
			inst.Matches = make(map[string][]string)
		}
		for _, p := range params {
			field := schema.Field(p.Name)
			v, ok := inst.Record.String(field.RecordPath)
			if !ok {
				continue
			}
			v = strings.ToLower(v)
			for _, cond := range p.Conditions {
				if strings.Contains(v, strings.ToLower(cond.Value)) {
					inst.AddMatch(field.HighlightKey, cond.Value)
				}
			}
		}
		out = append(out, inst)
	}
	return out
}

// ApplyClientSideFilters enforces the filters the backend cannot evaluate.
// Every condition on such a field must pass independently.
func ApplyClientSideFilters(schema *Schema, instances []models.AnnotatedInstance, params FieldParams) []models.AnnotatedInstance {
	var clientSide FieldParams
	for _, p := range params {
		if schema.clientSideOnly(p.Name) {
			clientSide = append(clientSide, p)
		}
	}
	if len(clientSide) == 0 {
		return instances
	}

	out := make([]models.AnnotatedInstance, 0, len(instances))
	for _, inst := range instances {
		if matchesAll(schema, inst.Record, clientSide) {
			out = append(out, inst)
		}
	}
	return out
}

func matchesAll(schema *Schema, rec models.Record, params FieldParams) bool {
	for _, p := range params {
		v, present := rec.String(schema.Field(p.Name).RecordPath)
		v = strings.ToLower(v)
		for _, cond := range p.Conditions {
			if !evaluate(cond, v, present) {
				return false
			}
		}
	}
	return true
}

// evaluate tests one condition against a lower-cased value. An absent value
// satisfies only the negated operators.
func evaluate(cond models.Condition, value string, present bool) bool {
	if !present {
		return cond.Operator.Negated()
	}
	want := strings.ToLower(cond.Value)
	switch cond.Operator {
	case models.OpDoesNotContain:
		return !strings.Contains(value, want)
	case models.OpIs:
		return value == want
	case models.OpIsNot:
		return value != want
	default:
		return strings.Contains(value, want)
	}
}
