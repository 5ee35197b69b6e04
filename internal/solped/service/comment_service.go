package service

import (
	"context"
	"fmt"

	"github.com/bitforja/solped/internal/solped/engine"
	"github.com/bitforja/solped/internal/solped/entity"
	"github.com/bitforja/solped/internal/solped/repository"
	"github.com/google/uuid"
)

// CommentService manages requisition discussion threads.
type CommentService struct {
	commentRepo   *repository.CommentRepository
	reqRepo       *repository.RequisitionRepository
	notifications *NotificationService
}

func NewCommentService(commentRepo *repository.CommentRepository, reqRepo *repository.RequisitionRepository, notifications *NotificationService) *CommentService {
	return &CommentService{
		commentRepo:   commentRepo,
		reqRepo:       reqRepo,
		notifications: notifications,
	}
}

func (s *CommentService) List(ctx context.Context, requisitionID string) ([]entity.Comment, error) {
	if _, err := s.reqRepo.FindByID(ctx, requisitionID); err != nil {
		return nil, err
	}
	return s.commentRepo.FindByRequisition(ctx, requisitionID)
}

// Add stores a comment and notifies the requisition's creator.
func (s *CommentService) Add(ctx context.Context, actor engine.Actor, requisitionID, text string) (*entity.Comment, error) {
	if text == "" {
		return nil, &engine.ValidationError{Reason: "comment text is required"}
	}
	req, err := s.reqRepo.FindByID(ctx, requisitionID)
	if err != nil {
		return nil, err
	}

	comment := &entity.Comment{
		ID:            uuid.New().String()[:32],
		RequisitionID: requisitionID,
		UserID:        actor.ID,
		Text:          text,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	s.notifications.Notify(ctx, requisitionID, actor.ID, req.CreatedByID,
		fmt.Sprintf("New comment on requisition %s", requisitionID),
		entity.NotificationComment)

	return comment, nil
}
