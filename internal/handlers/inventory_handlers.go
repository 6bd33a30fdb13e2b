package handlers

import (
	"io"
	"net/http"
	"strings"

	"partsportal/internal/common"
	"partsportal/internal/odata"
	"partsportal/internal/services"

	"github.com/labstack/echo/v4"
)

// maxForwardBody bounds the payload relayed to the backend
const maxForwardBody = 1 << 20

// InventoryHandlers forwards inventory writes to the backend
type InventoryHandlers struct {
	inventoryService services.InventoryService
}

// NewInventoryHandlers creates a new inventory handlers instance
func NewInventoryHandlers(inventoryService services.InventoryService) *InventoryHandlers {
	return &InventoryHandlers{
		inventoryService: inventoryService,
	}
}

// CreateInventory godoc
// @Summary      Create an inventory item
// @Description  Forwards the JSON body to the backend and relays its status, Location header and body.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        Prefer  header  string  false  "return=minimal suppresses the response body"
// @Success      201
// @Success      204
// @Failure      401  {object}  common.ErrorResponse
// @Security     BearerAuth
// @Router       /m_Inventory [post]
func (h *InventoryHandlers) CreateInventory(c echo.Context) error {
	ctx := c.Request().Context()

	token, ok := common.GetTokenFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing bearer token")
	}

	body, err := readBody(c)
	if err != nil {
		return err
	}

	prefer := c.Request().Header.Get("Prefer")
	resp, err := h.inventoryService.CreateInventory(ctx, token, body, prefer)
	if err != nil {
		return sendServiceError(c, err)
	}

	return relay(c, resp, prefer)
}

// UpdateSpareValue godoc
// @Summary      Update an instance spare value
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        id      path    string  true   "Instance id"
// @Param        Prefer  header  string  false  "return=minimal suppresses the response body"
// @Success      200
// @Success      204
// @Failure      400  {object}  common.ErrorResponse
// @Security     BearerAuth
// @Router       /m_Instance/{id}/spare-value [patch]
func (h *InventoryHandlers) UpdateSpareValue(c echo.Context) error {
	ctx := c.Request().Context()

	token, ok := common.GetTokenFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing bearer token")
	}

	id := c.Param("id")
	if !services.ValidInstanceID(id) {
		return common.SendError(c, http.StatusBadRequest, "Invalid instance id", nil)
	}

	body, err := readBody(c)
	if err != nil {
		return err
	}

	prefer := c.Request().Header.Get("Prefer")
	resp, err := h.inventoryService.UpdateSpareValue(ctx, token, id, body, prefer)
	if err != nil {
		return sendServiceError(c, err)
	}

	return relay(c, resp, prefer)
}

func readBody(c echo.Context) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxForwardBody+1))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if len(body) > maxForwardBody {
		return nil, echo.NewHTTPError(http.StatusRequestEntityTooLarge, "Request body too large")
	}
	return body, nil
}

// relay writes a backend response back to the caller. The body is dropped
// for 204 responses and when the caller asked for return=minimal.
func relay(c echo.Context, resp *odata.ForwardResponse, prefer string) error {
	if resp.Location != "" {
		c.Response().Header().Set("Location", resp.Location)
	}

	if resp.StatusCode == http.StatusNoContent || wantsMinimal(prefer) || len(resp.Body) == 0 {
		return c.NoContent(resp.StatusCode)
	}

	contentType := resp.ContentType
	if contentType == "" {
		contentType = echo.MIMEApplicationJSON
	}
	return c.Blob(resp.StatusCode, contentType, resp.Body)
}

func wantsMinimal(prefer string) bool {
	for _, pref := range strings.Split(prefer, ",") {
		if strings.EqualFold(strings.TrimSpace(pref), "return=minimal") {
			return true
		}
	}
	return false
}
