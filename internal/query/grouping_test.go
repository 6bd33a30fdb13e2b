package query

import (
	"encoding/json"
	"testing"

	"partsportal/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func instance(item string, qty any, project any) models.Record {
	rec := models.Record{
		"classification": "Inventoried",
		"m_quantity":     qty,
		"m_project":      project,
	}
	if item != "" {
		rec["m_inventory_item"] = map[string]any{"item_number": item}
	}
	return rec
}

func TestGroupAndProcessParts_SpareAndInUse(t *testing.T) {
	records := []models.Record{
		instance("X-100", json.Number("3"), "General Inventory"),
		instance("X-100", json.Number("2"), "Proj-A"),
	}

	out := GroupAndProcessParts(DefaultSchema(), records)
	require.Len(t, out, 2)

	for _, inst := range out {
		assert.Equal(t, 5.0, inst.Total)
		assert.Equal(t, 3.0, inst.Spare)
		assert.Equal(t, 2.0, inst.InUse)
	}
	assert.True(t, out[0].GeneralInventory)
	assert.False(t, out[1].GeneralInventory)
}

func TestGroupAndProcessParts_Ordering(t *testing.T) {
	records := []models.Record{
		instance("B", 1.0, nil),
		instance("A", 2.0, nil),
		instance("B", 3.0, nil),
		instance("", 4.0, nil),
	}
	records[0]["id"] = "b1"
	records[1]["id"] = "a1"
	records[2]["id"] = "b2"
	records[3]["id"] = "u1"

	out := GroupAndProcessParts(DefaultSchema(), records)
	require.Len(t, out, 4)

	var ids []any
	for _, inst := range out {
		ids = append(ids, inst.Record["id"])
	}
	assert.Equal(t, []any{"b1", "b2", "a1", "u1"}, ids)
	assert.Equal(t, 4.0, out[0].Total)
	assert.Equal(t, 2.0, out[2].Total)
	assert.Equal(t, 4.0, out[3].Total)
}

func TestGroupAndProcessParts_PermutationKeepsAggregates(t *testing.T) {
	a := instance("P-1", "1.5", []any{"General Inventory"})
	b := instance("P-1", json.Number("2.25"), map[string]any{"keyed_name": "Proj"})
	c := instance("P-1", nil, "General Inventory")

	first := GroupAndProcessParts(DefaultSchema(), []models.Record{a, b, c})
	second := GroupAndProcessParts(DefaultSchema(), []models.Record{c, b, a})

	require.Len(t, first, 3)
	require.Len(t, second, 3)
	for _, out := range [][]models.AnnotatedInstance{first, second} {
		for _, inst := range out {
			assert.Equal(t, 3.75, inst.Total)
			assert.Equal(t, 1.5, inst.Spare)
			assert.Equal(t, 2.25, inst.InUse)
		}
	}
}

func TestGroupAndProcessParts_InvalidQuantities(t *testing.T) {
	records := []models.Record{
		instance("Q", "abc", "General Inventory"),
		instance("Q", nil, nil),
		instance("Q", json.Number("0.1"), nil),
		instance("Q", json.Number("0.2"), nil),
	}

	out := GroupAndProcessParts(DefaultSchema(), records)
	require.Len(t, out, 4)
	assert.Equal(t, 0.3, out[0].Total)
	assert.Equal(t, 0.0, out[0].Spare)
	assert.True(t, out[0].GeneralInventory)
}

func TestGroupAndProcessParts_SkipsOtherClassifications(t *testing.T) {
	other := instance("Z", 1.0, nil)
	other["classification"] = "Consumed"
	missing := instance("Z", 1.0, nil)
	delete(missing, "classification")

	out := GroupAndProcessParts(DefaultSchema(), []models.Record{other, missing, instance("Z", 2.0, nil)})
	require.Len(t, out, 1)
	assert.Equal(t, 2.0, out[0].Total)
}

func TestIsGeneralInventory(t *testing.T) {
	tests := []struct {
		name     string
		raw      any
		expected bool
	}{
		{"Exact string", "General Inventory", true},
		{"Padded lower case", " general inventory ", true},
		{"Array element", []any{"Other", "General Inventory"}, true},
		{"Object item number", map[string]any{"item_number": "General Inventory"}, true},
		{"Object keyed name", map[string]any{"item_number": "P-1", "keyed_name": "GENERAL INVENTORY"}, true},
		{"Object name", map[string]any{"name": "general inventory"}, true},
		{"Nil", nil, false},
		{"Number", 42.0, false},
		{"Partial word", "general", false},
		{"Object elsewhere", map[string]any{"item_number": "P-1"}, false},
		{"Empty array", []any{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsGeneralInventory(models.ParseProjectRef(tt.raw)))
		})
	}
}
