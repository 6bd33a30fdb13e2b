package query

import "strings"

// SearchField is one field inspected by free-text search. Key is the name
// reported in highlight metadata, Path the record path holding the value.
type SearchField struct {
	Key  string
	Path string
}

// FilterField describes how a filter parameter maps onto the backend and
// onto returned records.
type FilterField struct {
	Param string
	// BackendPath is the property used in $filter. Empty for display-name
	// fields, which are only resolved after fetch.
	BackendPath  string
	RecordPath   string
	HighlightKey string
	Numeric      bool
}

// ClientSideOnly reports whether the field can only be filtered after fetch
func (f FilterField) ClientSideOnly() bool {
	return f.BackendPath == ""
}

// Schema is the static description of the inventory entity the compiler and
// post-processor work against. Build one with DefaultSchema and treat it as
// read-only once shared.
type Schema struct {
	EntitySet           string
	ClassificationField string
	Classification      string
	QuantityField       string
	InventoryItemPath   string
	ProjectField        string
	Select              []string
	Expand              []string
	SearchFields        []SearchField
	FilterFields        map[string]FilterField
	// DefaultTop caps unfiltered fetches
	DefaultTop int
}

// UnknownGroup is the group key used for records without an inventory item
const UnknownGroup = "Unknown"

// GeneralInventory is the sentinel project for unassigned stock
const GeneralInventory = "General Inventory"

// IsDisplayNameField reports whether a field name carries the "@" qualifier
// of a display-name variant, e.g. "m_custodian@aras.keyed_name".
func IsDisplayNameField(name string) bool {
	return strings.Contains(name, "@")
}

// DefaultSchema returns the m_Instance inventory schema
func DefaultSchema() *Schema {
	return &Schema{
		EntitySet:           "m_Instance",
		ClassificationField: "classification",
		Classification:      "Inventoried",
		QuantityField:       "m_quantity",
		InventoryItemPath:   "m_inventory_item/item_number",
		ProjectField:        "m_project",
		Select: []string{
			"id",
			"item_number",
			"m_id",
			"classification",
			"m_inventory_item",
			"m_mfg_part_number",
			"m_mfg_name",
			"m_custodian",
			"m_quantity",
			"m_maturity",
			"m_parent_ref_path",
			"m_inventory_description",
			"m_project",
		},
		Expand: []string{
			"m_inventory_item($select=item_number)",
			"m_project($select=item_number,keyed_name,name)",
		},
		SearchFields: []SearchField{
			{Key: "m_inventory_item", Path: "m_inventory_item/item_number"},
			{Key: "m_mfg_part_number", Path: "m_mfg_part_number"},
			{Key: "m_mfg_name", Path: "m_mfg_name"},
			{Key: "m_parent_ref_path", Path: "m_parent_ref_path"},
			{Key: "m_inventory_description", Path: "m_inventory_description"},
			{Key: "m_custodian", Path: "m_custodian@aras.keyed_name"},
			{Key: "m_custodian", Path: "m_custodian"},
			{Key: "m_id", Path: "m_id"},
			{Key: "item_number", Path: "item_number"},
			{Key: "m_maturity", Path: "m_maturity"},
		},
		FilterFields: map[string]FilterField{
			"m_inventory_item": {
				Param:        "m_inventory_item",
				BackendPath:  "m_inventory_item/item_number",
				RecordPath:   "m_inventory_item/item_number",
				HighlightKey: "m_inventory_item",
			},
			"m_custodian@aras.keyed_name": {
				Param:        "m_custodian@aras.keyed_name",
				RecordPath:   "m_custodian@aras.keyed_name",
				HighlightKey: "m_custodian",
			},
			"m_project": {
				Param:        "m_project",
				BackendPath:  "m_project/item_number",
				RecordPath:   "m_project/item_number",
				HighlightKey: "m_project",
			},
			"m_project/item_number": {
				Param:        "m_project/item_number",
				BackendPath:  "m_project/item_number",
				RecordPath:   "m_project/item_number",
				HighlightKey: "m_project",
			},
			"m_quantity": {
				Param:        "m_quantity",
				BackendPath:  "m_quantity",
				RecordPath:   "m_quantity",
				HighlightKey: "m_quantity",
				Numeric:      true,
			},
		},
		DefaultTop: 500,
	}
}

// Field returns the mapping for a filter parameter. Parameters without an
// explicit entry map onto the property of the same name; names carrying the
// "@" qualifier are never sent to the backend.
func (s *Schema) Field(param string) FilterField {
	if f, ok := s.FilterFields[param]; ok {
		return f
	}
	f := FilterField{
		Param:        param,
		BackendPath:  param,
		RecordPath:   param,
		HighlightKey: param,
		Numeric:      param == s.QuantityField,
	}
	if IsDisplayNameField(param) {
		f.BackendPath = ""
		f.HighlightKey = param[:strings.Index(param, "@")]
	}
	return f
}

// clientSideOnly reports whether a filter parameter is resolved after fetch
func (s *Schema) clientSideOnly(param string) bool {
	return IsDisplayNameField(param) || s.Field(param).ClientSideOnly()
}
