package handler

import (
	"github.com/bitforja/solped/internal/solped/service"
	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	comments *service.CommentService
}

func NewCommentHandler(comments *service.CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

// List GET /requisitions/:id/comments
func (h *CommentHandler) List(c *gin.Context) {
	items, err := h.comments.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, items)
}

type createCommentRequest struct {
	Text string `json:"text" binding:"required"`
}

// Create POST /requisitions/:id/comments
func (h *CommentHandler) Create(c *gin.Context) {
	var body createCommentRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		BadRequest(c, err.Error())
		return
	}
	comment, err := h.comments.Add(c.Request.Context(), GetActor(c), c.Param("id"), body.Text)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, comment)
}
