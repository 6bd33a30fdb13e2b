package services

import (
	"context"
	"strings"

	"github.com/labstack/gommon/log"

	"partsportal/internal/models"
	"partsportal/internal/query"
)

// CollectionFetcher reads an entity set from the backend
type CollectionFetcher interface {
	GetCollection(ctx context.Context, token, entitySet, rawQuery string) ([]models.Record, error)
}

// PartsQuery is a parsed parts listing request
type PartsQuery struct {
	Search          string
	LogicalOperator models.LogicalOperator
	Fields          query.FieldParams
	// Classification, Top and FilterType are accepted for compatibility.
	// The classification restriction and the result cap are fixed.
	Classification string
	Top            string
	FilterType     string
}

type PartsService interface {
	ListParts(ctx context.Context, token string, q PartsQuery) ([]models.AnnotatedInstance, error)
	ListPartsClientSide(ctx context.Context, token string, q PartsQuery) ([]models.AnnotatedInstance, error)
}

type partsService struct {
	backend CollectionFetcher
	schema  *query.Schema
}

func NewPartsService(backend CollectionFetcher, schema *query.Schema) PartsService {
	return &partsService{
		backend: backend,
		schema:  schema,
	}
}

// ListParts runs the full pipeline: compile the backend filter, fetch,
// group by inventory item, then apply search or field highlighting and the
// filters the backend cannot evaluate.
func (s *partsService) ListParts(ctx context.Context, token string, q PartsQuery) ([]models.AnnotatedInstance, error) {
	compiled := query.Compile(s.schema, q.Fields, q.Search, q.LogicalOperator)

	records, err := s.backend.GetCollection(ctx, token, s.schema.EntitySet, compiled.RawQuery(s.schema))
	if err != nil {
		return nil, err
	}

	parts := query.GroupAndProcessParts(s.schema, records)

	hasSearch := strings.TrimSpace(q.Search) != ""
	switch {
	case hasSearch:
		parts = query.ApplySearchFilter(s.schema, parts, q.Search)
	case len(q.Fields) > 0:
		parts = query.ApplyFieldHighlighting(s.schema, parts, q.Fields)
	}
	parts = query.ApplyClientSideFilters(s.schema, parts, q.Fields)

	if !hasSearch && len(q.Fields) == 0 && len(parts) > s.schema.DefaultTop {
		parts = parts[:s.schema.DefaultTop]
	}

	log.Debugf("parts listing: fetched %d records, returning %d", len(records), len(parts))
	return nonNil(parts), nil
}

// ListPartsClientSide fetches every inventoried instance without a cap and
// relies on free-text search for filtering. Display-name field filters are
// still evaluated locally.
func (s *partsService) ListPartsClientSide(ctx context.Context, token string, q PartsQuery) ([]models.AnnotatedInstance, error) {
	compiled := query.Compile(s.schema, nil, q.Search, models.LogicalAnd)
	compiled.Top = 0

	records, err := s.backend.GetCollection(ctx, token, s.schema.EntitySet, compiled.RawQuery(s.schema))
	if err != nil {
		return nil, err
	}

	parts := query.GroupAndProcessParts(s.schema, records)
	parts = query.ApplySearchFilter(s.schema, parts, q.Search)
	parts = query.ApplyClientSideFilters(s.schema, parts, q.Fields)

	log.Debugf("client-side parts listing: fetched %d records, returning %d", len(records), len(parts))
	return nonNil(parts), nil
}

func nonNil(parts []models.AnnotatedInstance) []models.AnnotatedInstance {
	if parts == nil {
		return []models.AnnotatedInstance{}
	}
	return parts
}
