package handlers

import (
	"net/http"

	"partsportal/internal/common"
	"partsportal/internal/models"
	"partsportal/internal/query"
	"partsportal/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

// PartsHandlers serves the inventory parts listings
type PartsHandlers struct {
	partsService services.PartsService
}

// NewPartsHandlers creates a new parts handlers instance
func NewPartsHandlers(partsService services.PartsService) *PartsHandlers {
	return &PartsHandlers{
		partsService: partsService,
	}
}

// parsePartsQuery reads the reserved listing params and every field filter
func parsePartsQuery(c echo.Context) services.PartsQuery {
	params := c.QueryParams()
	return services.PartsQuery{
		Search:          params.Get("search"),
		LogicalOperator: models.ParseLogicalOperator(params.Get("logicalOperator")),
		Fields:          query.ParseFieldParams(params),
		Classification:  params.Get("classification"),
		Top:             params.Get("$top"),
		FilterType:      params.Get("filterType"),
	}
}

// ListParts godoc
// @Summary      Search inventoried part instances
// @Description  Compiles field filters into a backend query, groups instances by inventory item and annotates totals.
// @Tags         parts
// @Produce      json
// @Param        search           query  string  false  "Comma separated keywords, ! or - excludes"
// @Param        logicalOperator  query  string  false  "and | or"
// @Success      200  {object}  models.PartsResponse
// @Failure      400  {object}  common.ErrorResponse
// @Failure      401  {object}  common.ErrorResponse
// @Failure      500  {object}  common.ErrorResponse
// @Security     BearerAuth
// @Router       /parts [get]
func (h *PartsHandlers) ListParts(c echo.Context) error {
	ctx := c.Request().Context()

	token, ok := common.GetTokenFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing bearer token")
	}

	q := parsePartsQuery(c)
	if sub, ok := common.GetSubjectFromContext(ctx); ok {
		log.Debugf("parts listing for %s: search=%q fields=%d", sub, q.Search, len(q.Fields))
	}

	parts, err := h.partsService.ListParts(ctx, token, q)
	if err != nil {
		return sendServiceError(c, err)
	}

	return c.JSON(http.StatusOK, models.PartsResponse{Value: parts})
}

// ListPartsClientSide godoc
// @Summary      List every inventoried part instance
// @Description  Fetches without a result cap and filters by free-text search only.
// @Tags         parts
// @Produce      json
// @Param        search  query  string  false  "Comma separated keywords, ! or - excludes"
// @Success      200  {object}  models.PartsResponse
// @Failure      401  {object}  common.ErrorResponse
// @Failure      500  {object}  common.ErrorResponse
// @Security     BearerAuth
// @Router       /parts-client-side [get]
func (h *PartsHandlers) ListPartsClientSide(c echo.Context) error {
	ctx := c.Request().Context()

	token, ok := common.GetTokenFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing bearer token")
	}

	parts, err := h.partsService.ListPartsClientSide(ctx, token, parsePartsQuery(c))
	if err != nil {
		return sendServiceError(c, err)
	}

	return c.JSON(http.StatusOK, models.PartsResponse{Value: parts})
}
