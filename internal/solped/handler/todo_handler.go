package handler

import (
	"github.com/bitforja/solped/internal/solped/service"
	"github.com/gin-gonic/gin"
)

type TodoHandler struct {
	todos *service.TodoService
}

func NewTodoHandler(todos *service.TodoService) *TodoHandler {
	return &TodoHandler{todos: todos}
}

// List GET /requisitions/:id/todos
func (h *TodoHandler) List(c *gin.Context) {
	items, err := h.todos.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, items)
}

// Create POST /requisitions/:id/todos
func (h *TodoHandler) Create(c *gin.Context) {
	var body service.CreateTodoRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		BadRequest(c, err.Error())
		return
	}
	todo, err := h.todos.Add(c.Request.Context(), GetActor(c), c.Param("id"), &body)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, todo)
}

type updateTodoRequest struct {
	Completed *bool `json:"completed" binding:"required"`
}

// UpdateCompleted PATCH /todos/:id
func (h *TodoHandler) UpdateCompleted(c *gin.Context) {
	var body updateTodoRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		BadRequest(c, err.Error())
		return
	}
	todo, err := h.todos.SetCompleted(c.Request.Context(), c.Param("id"), *body.Completed)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, todo)
}
