package models

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Record is a raw inventory instance as returned by the backend. The backend
// schema is open, so every property is kept and forwarded to the client.
type Record map[string]any

// Lookup resolves a slash separated path such as "m_project/item_number"
// through nested objects.
func (r Record) Lookup(path string) (any, bool) {
	var cur any = map[string]any(r)
	for _, part := range strings.Split(path, "/") {
		obj, ok := asObject(cur)
		if !ok {
			return nil, false
		}
		v, ok := obj[part]
		if !ok || v == nil {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

// String returns the value at path formatted as text. Objects and arrays
// have no text form and are reported as absent, as are empty strings.
func (r Record) String(path string) (string, bool) {
	v, ok := r.Lookup(path)
	if !ok {
		return "", false
	}

	var s string
	switch t := v.(type) {
	case string:
		s = t
	case json.Number:
		s = t.String()
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		s = strconv.Itoa(t)
	case bool:
		s = strconv.FormatBool(t)
	default:
		return "", false
	}
	if s == "" {
		return "", false
	}
	return s, true
}

func asObject(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case Record:
		return t, true
	default:
		return nil, false
	}
}

// ProjectRefKind tags the shape a project reference arrived in
type ProjectRefKind int

const (
	ProjectRefNone ProjectRefKind = iota
	ProjectRefName
	ProjectRefNameList
	ProjectRefObject
)

// ProjectRef is a project reference normalized at the ingestion boundary.
// The backend returns either a plain name, a list of names, or an expanded
// object carrying item_number, keyed_name and name.
type ProjectRef struct {
	Kind       ProjectRefKind
	Name       string
	Names      []string
	ItemNumber string
	KeyedName  string
	FullName   string
}

// ParseProjectRef converts a decoded JSON value into a ProjectRef
func ParseProjectRef(v any) ProjectRef {
	switch t := v.(type) {
	case string:
		return ProjectRef{Kind: ProjectRefName, Name: t}
	case []any:
		names := make([]string, 0, len(t))
		for _, el := range t {
			if s, ok := el.(string); ok {
				names = append(names, s)
			}
		}
		return ProjectRef{Kind: ProjectRefNameList, Names: names}
	case []string:
		return ProjectRef{Kind: ProjectRefNameList, Names: append([]string(nil), t...)}
	case map[string]any, Record:
		obj, _ := asObject(t)
		ref := ProjectRef{Kind: ProjectRefObject}
		ref.ItemNumber, _ = obj["item_number"].(string)
		ref.KeyedName, _ = obj["keyed_name"].(string)
		ref.FullName, _ = obj["name"].(string)
		return ref
	default:
		return ProjectRef{Kind: ProjectRefNone}
	}
}

// AnnotatedInstance is a record with the aggregates of its inventory group
type AnnotatedInstance struct {
	Record           Record
	Total            float64
	InUse            float64
	Spare            float64
	GeneralInventory bool
	// Matches maps an output field name to the distinct keywords found in
	// it. Nil when no highlighting was requested.
	Matches map[string][]string
}

// AddMatch records keyword as a match for field, keeping first-seen order
// and dropping duplicates.
func (a *AnnotatedInstance) AddMatch(field, keyword string) {
	if a.Matches == nil {
		a.Matches = make(map[string][]string)
	}
	for _, k := range a.Matches[field] {
		if k == keyword {
			return
		}
	}
	a.Matches[field] = append(a.Matches[field], keyword)
}

// MarshalJSON flattens the record and the annotations into one object
func (a AnnotatedInstance) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(a.Record)+5)
	for k, v := range a.Record {
		out[k] = v
	}
	out["total"] = a.Total
	out["inUse"] = a.InUse
	out["spare"] = a.Spare
	out["generalInventory"] = a.GeneralInventory
	if a.Matches != nil {
		out["_matches"] = a.Matches
	}
	return json.Marshal(out)
}

// PartsResponse is the success envelope of the parts endpoints
type PartsResponse struct {
	Value []AnnotatedInstance `json:"value"`
}
