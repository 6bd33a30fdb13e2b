package query

import (
	"strings"

	"partsportal/internal/models"
)

// searchSeparator joins field values before matching so a keyword cannot
// match across two fields.
const searchSeparator = "\x1f"

// SearchTerms is a parsed free-text search
type SearchTerms struct {
	Include []string
	Exclude []string
}

// Empty reports whether the search has no usable terms
func (t SearchTerms) Empty() bool {
	return len(t.Include) == 0 && len(t.Exclude) == 0
}

// ParseSearchTerms splits a comma separated search string. Terms prefixed
// with "!" or "-" are exclusions. Repeated terms are kept once, in the
// spelling they first appear with.
func ParseSearchTerms(search string) SearchTerms {
	var terms SearchTerms
	seen := make(map[string]bool)
	add := func(list *[]string, kind, kw string) {
		key := kind + strings.ToLower(kw)
		if seen[key] {
			return
		}
		seen[key] = true
		*list = append(*list, kw)
	}

	for _, raw := range strings.Split(search, ",") {
		term := strings.TrimSpace(raw)
		if term == "" {
			continue
		}
		if strings.HasPrefix(term, "!") || strings.HasPrefix(term, "-") {
			if kw := strings.TrimSpace(term[1:]); kw != "" {
				add(&terms.Exclude, "-", kw)
			}
			continue
		}
		add(&terms.Include, "+", term)
	}
	return terms
}

// ApplySearchFilter keeps instances whose searchable fields contain every
// include keyword and none of the exclude keywords, ignoring case. Kept
// instances carry the include keywords found in each field.
func ApplySearchFilter(schema *Schema, instances []models.AnnotatedInstance, search string) []models.AnnotatedInstance {
	terms := ParseSearchTerms(search)
	if terms.Empty() {
		return instances
	}
	include := lowerAll(terms.Include)
	exclude := lowerAll(terms.Exclude)

	out := make([]models.AnnotatedInstance, 0, len(instances))
	for _, inst := range instances {
		haystack := searchText(schema, inst.Record)
		if !containsAll(haystack, include) || containsAny(haystack, exclude) {
			continue
		}

		inst.Matches = make(map[string][]string)
		for _, f := range schema.SearchFields {
			v, ok := inst.Record.String(f.Path)
			if !ok {
				continue
			}
			v = strings.ToLower(v)
			for i, kw := range include {
				if strings.Contains(v, kw) {
					inst.AddMatch(f.Key, terms.Include[i])
				}
			}
		}
		out = append(out, inst)
	}
	return out
}

// searchText concatenates the present searchable values in schema order
func searchText(schema *Schema, rec models.Record) string {
	values := make([]string, 0, len(schema.SearchFields))
	for _, f := range schema.SearchFields {
		if v, ok := rec.String(f.Path); ok {
			values = append(values, v)
		}
	}
	return strings.ToLower(strings.Join(values, searchSeparator))
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}

func containsAll(s string, keywords []string) bool {
	for _, kw := range keywords {
		if !strings.Contains(s, kw) {
			return false
		}
	}
	return true
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
