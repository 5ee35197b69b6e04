package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bitforja/solped/internal/solped/engine"
	"github.com/bitforja/solped/internal/solped/entity"
	"github.com/bitforja/solped/internal/solped/repository"
	"github.com/google/uuid"
)

// TodoService manages follow-up tasks on requisitions.
type TodoService struct {
	todoRepo      *repository.TodoRepository
	reqRepo       *repository.RequisitionRepository
	notifications *NotificationService
}

func NewTodoService(todoRepo *repository.TodoRepository, reqRepo *repository.RequisitionRepository, notifications *NotificationService) *TodoService {
	return &TodoService{
		todoRepo:      todoRepo,
		reqRepo:       reqRepo,
		notifications: notifications,
	}
}

type CreateTodoRequest struct {
	Text         string     `json:"text" binding:"required"`
	AssignedToID *string    `json:"assigned_to_id"`
	DueDate      *time.Time `json:"due_date"`
}

func (s *TodoService) List(ctx context.Context, requisitionID string) ([]entity.Todo, error) {
	if _, err := s.reqRepo.FindByID(ctx, requisitionID); err != nil {
		return nil, err
	}
	return s.todoRepo.FindByRequisition(ctx, requisitionID)
}

// Add creates a task and notifies the assignee if there is one.
func (s *TodoService) Add(ctx context.Context, actor engine.Actor, requisitionID string, req *CreateTodoRequest) (*entity.Todo, error) {
	if req.Text == "" {
		return nil, &engine.ValidationError{Reason: "todo text is required"}
	}
	if _, err := s.reqRepo.FindByID(ctx, requisitionID); err != nil {
		return nil, err
	}

	todo := &entity.Todo{
		ID:            uuid.New().String()[:32],
		RequisitionID: requisitionID,
		Text:          req.Text,
		CreatedByID:   actor.ID,
		AssignedToID:  req.AssignedToID,
		DueDate:       req.DueDate,
	}
	if err := s.todoRepo.Create(ctx, todo); err != nil {
		return nil, err
	}

	if req.AssignedToID != nil {
		s.notifications.Notify(ctx, requisitionID, actor.ID, *req.AssignedToID,
			fmt.Sprintf("Task assigned to you on requisition %s", requisitionID),
			entity.NotificationTodo)
	}

	return todo, nil
}

// SetCompleted flips a task's completion flag.
func (s *TodoService) SetCompleted(ctx context.Context, id string, completed bool) (*entity.Todo, error) {
	todo, err := s.todoRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	todo.Completed = completed
	if err := s.todoRepo.Update(ctx, todo); err != nil {
		return nil, err
	}
	return todo, nil
}
