package handlers

import (
	"net/http"
	"strings"

	"partsportal/internal/services"

	"github.com/labstack/echo/v4"
)

// AttachmentHandlers stores files attached to inventory records
type AttachmentHandlers struct {
	attachmentService services.AttachmentService
}

// NewAttachmentHandlers creates a new attachment handlers instance
func NewAttachmentHandlers(attachmentService services.AttachmentService) *AttachmentHandlers {
	return &AttachmentHandlers{
		attachmentService: attachmentService,
	}
}

// Upload godoc
// @Summary      Upload an attachment
// @Tags         attachments
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "File to store"
// @Success      201  {object}  services.Attachment
// @Failure      400  {object}  common.ErrorResponse
// @Security     BearerAuth
// @Router       /attachments [post]
func (h *AttachmentHandlers) Upload(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing file")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Unreadable file")
	}
	defer file.Close()

	attachment, err := h.attachmentService.Upload(c.Request().Context(), fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"), file, fileHeader.Size)
	if err != nil {
		return sendServiceError(c, err)
	}

	return c.JSON(http.StatusCreated, attachment)
}

// Download godoc
// @Summary      Get a download URL for an attachment
// @Tags         attachments
// @Produce      json
// @Param        key  path  string  true  "Attachment key"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  common.ErrorResponse
// @Security     BearerAuth
// @Router       /attachments/{key} [get]
func (h *AttachmentHandlers) Download(c echo.Context) error {
	key := attachmentKey(c)

	url, err := h.attachmentService.PresignedURL(c.Request().Context(), key)
	if err != nil {
		return sendServiceError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"key": key,
		"url": url,
	})
}

// Delete godoc
// @Summary      Delete an attachment
// @Tags         attachments
// @Param        key  path  string  true  "Attachment key"
// @Success      204
// @Failure      400  {object}  common.ErrorResponse
// @Security     BearerAuth
// @Router       /attachments/{key} [delete]
func (h *AttachmentHandlers) Delete(c echo.Context) error {
	if err := h.attachmentService.Delete(c.Request().Context(), attachmentKey(c)); err != nil {
		return sendServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// attachmentKey rebuilds the object key from the wildcard route segment
func attachmentKey(c echo.Context) string {
	return "attachments/" + strings.TrimPrefix(c.Param("*"), "/")
}
