package query

import (
	"encoding/json"
	"testing"

	"partsportal/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyFieldHighlighting(t *testing.T) {
	inst := annotated(models.Record{
		"m_mfg_name":                  "Acme Corp",
		"m_custodian@aras.keyed_name": "Jane Doe",
		"m_project":                   map[string]any{"item_number": "PRJ-7"},
		"m_quantity":                  json.Number("12"),
	})
	params := FieldParams{
		{Name: "m_mfg_name", Conditions: []models.Condition{
			{Operator: models.OpContains, Value: "acme"},
			{Operator: models.OpDoesNotContain, Value: "corp"},
			{Operator: models.OpContains, Value: "zzz"},
		}},
		{Name: "m_custodian@aras.keyed_name", Conditions: []models.Condition{{Operator: models.OpIs, Value: "jane"}}},
		{Name: "m_project", Conditions: []models.Condition{{Operator: models.OpContains, Value: "prj"}}},
		{Name: "m_quantity", Conditions: []models.Condition{{Operator: models.OpIs, Value: "12"}}},
		{Name: "m_maturity", Conditions: []models.Condition{{Operator: models.OpIs, Value: "x"}}},
	}

	out := ApplyFieldHighlighting(DefaultSchema(), []models.AnnotatedInstance{inst}, params)
	require.Len(t, out, 1)
	assert.Equal(t, map[string][]string{
		"m_mfg_name":  {"acme", "corp"},
		"m_custodian": {"jane"},
		"m_project":   {"prj"},
		"m_quantity":  {"12"},
	}, out[0].Matches)
}

func TestApplyClientSideFilters(t *testing.T) {
	jane := annotated(models.Record{"id": "jane", "m_custodian@aras.keyed_name": "Jane Doe"})
	john := annotated(models.Record{"id": "john", "m_custodian@aras.keyed_name": "John Roe"})
	nobody := annotated(models.Record{"id": "nobody"})
	all := []models.AnnotatedInstance{jane, john, nobody}

	ids := func(out []models.AnnotatedInstance) []any {
		var res []any
		for _, inst := range out {
			res = append(res, inst.Record["id"])
		}
		return res
	}
	custodian := func(conds ...models.Condition) FieldParams {
		return FieldParams{{Name: "m_custodian@aras.keyed_name", Conditions: conds}}
	}

	tests := []struct {
		name     string
		params   FieldParams
		expected []any
	}{
		{"Contains", custodian(models.Condition{Operator: models.OpContains, Value: "JANE"}), []any{"jane"}},
		{"Does not contain", custodian(models.Condition{Operator: models.OpDoesNotContain, Value: "jane"}), []any{"john", "nobody"}},
		{"Is", custodian(models.Condition{Operator: models.OpIs, Value: "john roe"}), []any{"john"}},
		{"Is not", custodian(models.Condition{Operator: models.OpIsNot, Value: "john roe"}), []any{"jane", "nobody"}},
		{
			"Every condition must pass",
			custodian(
				models.Condition{Operator: models.OpContains, Value: "o"},
				models.Condition{Operator: models.OpDoesNotContain, Value: "jane"},
			),
			[]any{"john"},
		},
		{
			"Backend fields are ignored",
			FieldParams{{Name: "m_mfg_name", Conditions: []models.Condition{{Operator: models.OpIs, Value: "none"}}}},
			[]any{"jane", "john", "nobody"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ids(ApplyClientSideFilters(DefaultSchema(), all, tt.params)))
		})
	}
}
