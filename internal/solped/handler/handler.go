package handler

import (
	"errors"
	"strconv"

	"github.com/bitforja/solped/internal/solped/engine"
	"github.com/bitforja/solped/internal/solped/service"
	"github.com/bitforja/solped/internal/solped/sse"
	"github.com/gin-gonic/gin"
)

// Handlers bundles every HTTP handler.
type Handlers struct {
	Auth         *AuthHandler
	User         *UserHandler
	Requisition  *RequisitionHandler
	Notification *NotificationHandler
	Catalog      *CatalogHandler
	Comment      *CommentHandler
	Todo         *TodoHandler
	Attachment   *AttachmentHandler
	SSE          *SSEHandler
}

func NewHandlers(services *service.Services, hub *sse.Hub) *Handlers {
	return &Handlers{
		Auth:         NewAuthHandler(services.Auth),
		User:         NewUserHandler(services.User),
		Requisition:  NewRequisitionHandler(services.Lifecycle, services.Notification, services.Export),
		Notification: NewNotificationHandler(services.Notification),
		Catalog:      NewCatalogHandler(services.Catalog),
		Comment:      NewCommentHandler(services.Comment),
		Todo:         NewTodoHandler(services.Todo),
		Attachment:   NewAttachmentHandler(services.Attachment),
		SSE:          NewSSEHandler(hub),
	}
}

type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type ListResponse struct {
	Items      interface{} `json:"items"`
	Pagination *Pagination `json:"pagination"`
}

type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

func ErrorWithData(c *gin.Context, code int, message string, data interface{}) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
		Data:    data,
	})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

func Unauthorized(c *gin.Context, message string) {
	Error(c, 40100, message)
}

func Forbidden(c *gin.Context, message string) {
	Error(c, 40300, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

func Conflict(c *gin.Context, message string) {
	Error(c, 40900, message)
}

func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// HandleError maps domain errors to their HTTP responses. Invalid transitions
// carry the legal target list in the response data so clients can render the
// allowed actions.
func HandleError(c *gin.Context, err error) {
	var transitionErr *engine.InvalidTransitionError
	if errors.As(err, &transitionErr) {
		ErrorWithData(c, 40000, transitionErr.Error(), gin.H{
			"current_status": transitionErr.From,
			"valid_statuses": transitionErr.Legal,
		})
		return
	}
	var validationErr *engine.ValidationError
	if errors.As(err, &validationErr) {
		BadRequest(c, validationErr.Error())
		return
	}
	switch {
	case errors.Is(err, engine.ErrNotFound):
		NotFound(c, "resource not found")
	case errors.Is(err, engine.ErrForbidden):
		Forbidden(c, "operation not permitted")
	case errors.Is(err, engine.ErrConflict):
		Conflict(c, "the document changed, reload and retry")
	case errors.Is(err, engine.ErrTransient):
		Error(c, 50300, "temporarily unavailable, retry")
	default:
		InternalError(c, err.Error())
	}
}

func GetUserID(c *gin.Context) string {
	userID, _ := c.Get("user_id")
	if id, ok := userID.(string); ok {
		return id
	}
	return ""
}

func GetUserRole(c *gin.Context) string {
	role, _ := c.Get("user_role")
	if r, ok := role.(string); ok {
		return r
	}
	return ""
}

// GetActor builds the lifecycle actor from the authenticated claims.
func GetActor(c *gin.Context) engine.Actor {
	return engine.Actor{
		ID:   GetUserID(c),
		Role: GetUserRole(c),
	}
}

func GetPagination(c *gin.Context) (page, pageSize int) {
	page = 1
	pageSize = 20

	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}

	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v
		}
	}

	return page, pageSize
}
