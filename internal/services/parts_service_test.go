package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"testing"

	"partsportal/internal/models"
	"partsportal/internal/odata"
	"partsportal/internal/query"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type MockCollectionFetcher struct {
	mock.Mock
}

func (m *MockCollectionFetcher) GetCollection(ctx context.Context, token, entitySet, rawQuery string) ([]models.Record, error) {
	args := m.Called(ctx, token, entitySet, rawQuery)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Record), args.Error(1)
}

type PartsServiceTestSuite struct {
	suite.Suite
	backend *MockCollectionFetcher
	service PartsService
	ctx     context.Context
}

func (suite *PartsServiceTestSuite) SetupTest() {
	suite.backend = new(MockCollectionFetcher)
	suite.service = NewPartsService(suite.backend, query.DefaultSchema())
	suite.ctx = context.Background()
}

func (suite *PartsServiceTestSuite) TearDownTest() {
	suite.backend.AssertExpectations(suite.T())
}

func TestPartsServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PartsServiceTestSuite))
}

func part(id, item string, qty string, project any, extra map[string]any) models.Record {
	rec := models.Record{
		"id":               id,
		"classification":   "Inventoried",
		"m_inventory_item": map[string]any{"item_number": item},
		"m_quantity":       json.Number(qty),
		"m_project":        project,
	}
	for k, v := range extra {
		rec[k] = v
	}
	return rec
}

// filterOf extracts the $filter expression sent to the backend
func filterOf(rawQuery string) string {
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return ""
	}
	return values.Get("$filter")
}

func (suite *PartsServiceTestSuite) TestListParts_GroupsAndAnnotates() {
	records := []models.Record{
		part("1", "X-100", "3", "General Inventory", nil),
		part("2", "X-100", "2", "Proj-A", nil),
	}
	suite.backend.On("GetCollection", suite.ctx, "tok", "m_Instance", mock.MatchedBy(func(raw string) bool {
		values, _ := url.ParseQuery(raw)
		return values.Get("$top") == "500" && filterOf(raw) == "classification eq 'Inventoried'"
	})).Return(records, nil).Once()

	out, err := suite.service.ListParts(suite.ctx, "tok", PartsQuery{})
	require.NoError(suite.T(), err)
	require.Len(suite.T(), out, 2)

	assert.Equal(suite.T(), 5.0, out[0].Total)
	assert.Equal(suite.T(), 3.0, out[0].Spare)
	assert.Equal(suite.T(), 2.0, out[0].InUse)
	assert.True(suite.T(), out[0].GeneralInventory)
	assert.False(suite.T(), out[1].GeneralInventory)
	assert.Nil(suite.T(), out[0].Matches)
}

func (suite *PartsServiceTestSuite) TestListParts_SearchFiltersAndHighlights() {
	records := []models.Record{
		part("1", "X-100", "1", nil, map[string]any{"m_mfg_name": "Foo Industries"}),
		part("2", "X-200", "1", nil, map[string]any{"m_mfg_name": "Foo Bar"}),
	}
	suite.backend.On("GetCollection", suite.ctx, "tok", "m_Instance", mock.MatchedBy(func(raw string) bool {
		values, _ := url.ParseQuery(raw)
		return values.Get("$top") == ""
	})).Return(records, nil).Once()

	out, err := suite.service.ListParts(suite.ctx, "tok", PartsQuery{Search: "foo,!bar"})
	require.NoError(suite.T(), err)
	require.Len(suite.T(), out, 1)
	assert.Equal(suite.T(), "1", out[0].Record["id"])
	assert.Equal(suite.T(), []string{"foo"}, out[0].Matches["m_mfg_name"])
}

func (suite *PartsServiceTestSuite) TestListParts_FieldFiltersCompileAndHighlight() {
	fields := query.ParseFieldParams(url.Values{
		"m_mfg_name":                  {`{"operator":"contains","value":"Acme"}`},
		"m_maturity":                  {"Released"},
		"m_custodian@aras.keyed_name": {`{"operator":"is","value":"jane doe"}`},
	})
	records := []models.Record{
		part("1", "A", "1", nil, map[string]any{"m_mfg_name": "ACME", "m_maturity": "Released", "m_custodian@aras.keyed_name": "Jane Doe"}),
		part("2", "A", "1", nil, map[string]any{"m_mfg_name": "ACME", "m_maturity": "Released", "m_custodian@aras.keyed_name": "John Roe"}),
	}

	var sentFilter string
	suite.backend.On("GetCollection", suite.ctx, "tok", "m_Instance", mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) { sentFilter = filterOf(args.String(3)) }).
		Return(records, nil).Once()

	out, err := suite.service.ListParts(suite.ctx, "tok", PartsQuery{Fields: fields, LogicalOperator: models.LogicalOr})
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), "classification eq 'Inventoried' and (contains(m_maturity,'Released') or contains(m_mfg_name,'Acme'))", sentFilter)
	assert.NotContains(suite.T(), sentFilter, "custodian")

	require.Len(suite.T(), out, 1)
	assert.Equal(suite.T(), "1", out[0].Record["id"])
	assert.Equal(suite.T(), map[string][]string{
		"m_mfg_name":  {"Acme"},
		"m_maturity":  {"Released"},
		"m_custodian": {"jane doe"},
	}, out[0].Matches)
	assert.Equal(suite.T(), 2.0, out[0].Total)
}

func (suite *PartsServiceTestSuite) TestListParts_CapsUnfilteredResults() {
	records := make([]models.Record, 0, 510)
	for i := 0; i < 510; i++ {
		records = append(records, part(fmt.Sprint(i), fmt.Sprintf("I-%d", i), "1", nil, nil))
	}
	suite.backend.On("GetCollection", suite.ctx, "tok", "m_Instance", mock.AnythingOfType("string")).Return(records, nil).Once()

	out, err := suite.service.ListParts(suite.ctx, "tok", PartsQuery{})
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), out, 500)
}

func (suite *PartsServiceTestSuite) TestListParts_EmptyResultIsEmptySlice() {
	suite.backend.On("GetCollection", suite.ctx, "tok", "m_Instance", mock.AnythingOfType("string")).Return([]models.Record{}, nil).Once()

	out, err := suite.service.ListParts(suite.ctx, "tok", PartsQuery{Search: "nothing"})
	require.NoError(suite.T(), err)
	assert.NotNil(suite.T(), out)
	assert.Empty(suite.T(), out)
}

func (suite *PartsServiceTestSuite) TestListParts_BackendErrorPropagates() {
	backendErr := &odata.BackendError{StatusCode: 401, Body: "expired"}
	suite.backend.On("GetCollection", suite.ctx, "tok", "m_Instance", mock.AnythingOfType("string")).Return(nil, backendErr).Once()

	out, err := suite.service.ListParts(suite.ctx, "tok", PartsQuery{})
	assert.Nil(suite.T(), out)
	assert.True(suite.T(), errors.Is(err, backendErr))
}

func (suite *PartsServiceTestSuite) TestListPartsClientSide_NoCapSearchOnly() {
	records := []models.Record{
		part("1", "X", "1", nil, map[string]any{"m_mfg_name": "Foo"}),
		part("2", "Y", "1", nil, map[string]any{"m_mfg_name": "Bar"}),
	}
	suite.backend.On("GetCollection", suite.ctx, "tok", "m_Instance", mock.MatchedBy(func(raw string) bool {
		values, _ := url.ParseQuery(raw)
		return values.Get("$top") == "" && filterOf(raw) == "classification eq 'Inventoried'"
	})).Return(records, nil).Twice()

	out, err := suite.service.ListPartsClientSide(suite.ctx, "tok", PartsQuery{Search: "bar"})
	require.NoError(suite.T(), err)
	require.Len(suite.T(), out, 1)
	assert.Equal(suite.T(), "2", out[0].Record["id"])

	fields := query.ParseFieldParams(url.Values{"m_mfg_name": {"Foo"}})
	out, err = suite.service.ListPartsClientSide(suite.ctx, "tok", PartsQuery{Fields: fields})
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), out, 2)
}
