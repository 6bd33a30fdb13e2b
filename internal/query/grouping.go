package query

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"

	"partsportal/internal/models"
)

type inventoryGroup struct {
	instances []models.Record
	total     decimal.Decimal
	spare     decimal.Decimal
}

// GroupAndProcessParts groups records by inventory item number and annotates
// every instance with its group's total, spare and in-use quantities.
// Records outside the schema's classification are ignored. Groups are
// emitted in order of first appearance and instances keep their input order
// within a group.
func GroupAndProcessParts(schema *Schema, records []models.Record) []models.AnnotatedInstance {
	groups := make(map[string]*inventoryGroup)
	var order []string

	for _, rec := range records {
		if class, _ := rec.String(schema.ClassificationField); !strings.EqualFold(class, schema.Classification) {
			continue
		}

		key, ok := rec.String(schema.InventoryItemPath)
		if !ok {
			key = UnknownGroup
		}
		g, exists := groups[key]
		if !exists {
			g = &inventoryGroup{}
			groups[key] = g
			order = append(order, key)
		}
		g.instances = append(g.instances, rec)

		qty, ok := parseQuantity(rec[schema.QuantityField])
		if !ok {
			continue
		}
		g.total = g.total.Add(qty)
		if IsGeneralInventory(models.ParseProjectRef(rec[schema.ProjectField])) {
			g.spare = g.spare.Add(qty)
		}
	}

	out := make([]models.AnnotatedInstance, 0, len(records))
	for _, key := range order {
		g := groups[key]
		total := g.total.InexactFloat64()
		spare := g.spare.InexactFloat64()
		inUse := g.total.Sub(g.spare).InexactFloat64()
		for _, rec := range g.instances {
			out = append(out, models.AnnotatedInstance{
				Record:           rec,
				Total:            total,
				InUse:            inUse,
				Spare:            spare,
				GeneralInventory: IsGeneralInventory(models.ParseProjectRef(rec[schema.ProjectField])),
			})
		}
	}
	return out
}

// IsGeneralInventory reports whether a project reference names the
// "General Inventory" sentinel, ignoring case and surrounding space.
func IsGeneralInventory(ref models.ProjectRef) bool {
	switch ref.Kind {
	case models.ProjectRefName:
		return isGeneralInventoryName(ref.Name)
	case models.ProjectRefNameList:
		for _, n := range ref.Names {
			if isGeneralInventoryName(n) {
				return true
			}
		}
		return false
	case models.ProjectRefObject:
		return isGeneralInventoryName(ref.ItemNumber) ||
			isGeneralInventoryName(ref.KeyedName) ||
			isGeneralInventoryName(ref.FullName)
	default:
		return false
	}
}

func isGeneralInventoryName(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), GeneralInventory)
}

// parseQuantity reads a quantity that may arrive as a JSON number, a
// numeric string or not at all.
func parseQuantity(v any) (decimal.Decimal, bool) {
	var (
		d   decimal.Decimal
		err error
	)
	switch t := v.(type) {
	case json.Number:
		d, err = decimal.NewFromString(t.String())
	case float64:
		d = decimal.NewFromFloat(t)
	case int:
		d = decimal.NewFromInt(int64(t))
	case string:
		d, err = decimal.NewFromString(strings.TrimSpace(t))
	default:
		return decimal.Zero, false
	}
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
