package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/bitforja/solped/internal/solped/service"
	"github.com/gin-gonic/gin"
)

type AttachmentHandler struct {
	attachments *service.AttachmentService
}

func NewAttachmentHandler(attachments *service.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{attachments: attachments}
}

// List GET /requisitions/:id/attachments
func (h *AttachmentHandler) List(c *gin.Context) {
	items, err := h.attachments.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, items)
}

// Upload POST /requisitions/:id/attachments
func (h *AttachmentHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "file is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	defer file.Close()

	att, err := h.attachments.Upload(c.Request.Context(), GetActor(c), c.Param("id"),
		file, fileHeader.Filename, fileHeader.Size, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, att)
}

// Download GET /attachments/:id/download
func (h *AttachmentHandler) Download(c *gin.Context) {
	object, att, err := h.attachments.Download(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	defer object.Close()

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, att.FileName))
	if att.MimeType != "" {
		c.Header("Content-Type", att.MimeType)
	} else {
		c.Header("Content-Type", "application/octet-stream")
	}
	if _, err := io.Copy(c.Writer, object); err != nil {
		c.Status(http.StatusInternalServerError)
	}
}

// Delete DELETE /attachments/:id
func (h *AttachmentHandler) Delete(c *gin.Context) {
	if err := h.attachments.Delete(c.Request.Context(), GetActor(c), c.Param("id")); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, nil)
}
