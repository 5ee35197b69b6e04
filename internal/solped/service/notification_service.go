package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/bitforja/solped/internal/solped/engine"
	"github.com/bitforja/solped/internal/solped/entity"
	"github.com/bitforja/solped/internal/solped/repository"
	"github.com/bitforja/solped/internal/solped/sse"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	unreadCountKeyPrefix = "solped:unread:"
	unreadCountTTL       = 5 * time.Minute
	notificationPageSize = 50
)

// NotificationService turns fan-out plans into stored notifications and
// real-time pushes, and serves each user's notification feed.
type NotificationService struct {
	repo   *repository.NotificationRepository
	hub    *sse.Hub
	redis  *redis.Client
	logger *zap.Logger
}

func NewNotificationService(repo *repository.NotificationRepository, hub *sse.Hub, redisClient *redis.Client, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		repo:   repo,
		hub:    hub,
		redis:  redisClient,
		logger: logger,
	}
}

// Dispatch persists a fan-out plan and pushes a live signal per recipient.
// Delivery failures are logged, never propagated: the lifecycle transition
// that produced the plan is already committed.
func (s *NotificationService) Dispatch(ctx context.Context, requisitionID, actorID string, plan []engine.NotificationIntent) {
	if len(plan) == 0 {
		return
	}

	rows := make([]entity.Notification, 0, len(plan))
	for _, intent := range plan {
		rows = append(rows, entity.Notification{
			ID:            uuid.New().String()[:32],
			RequisitionID: requisitionID,
			ForUserID:     intent.ForUserID,
			CreatedByID:   actorID,
			Message:       intent.Message,
			Category:      intent.Category,
		})
	}

	if err := s.repo.CreateBatch(ctx, rows); err != nil {
		s.logger.Error("failed to store notifications",
			zap.String("requisition_id", requisitionID),
			zap.Int("count", len(rows)),
			zap.Error(err))
		return
	}

	for _, row := range rows {
		s.invalidateUnreadCount(ctx, row.ForUserID)
		s.hub.NotifyUser(row.ForUserID, requisitionID, row.Category)
	}
}

// Notify stores and pushes a single ad-hoc notification (comments, todos).
func (s *NotificationService) Notify(ctx context.Context, requisitionID, actorID, forUserID, message, category string) {
	if forUserID == actorID {
		return
	}
	s.Dispatch(ctx, requisitionID, actorID, []engine.NotificationIntent{{
		ForUserID: forUserID,
		Message:   message,
		Category:  category,
	}})
}

// ListMine returns the caller's most recent notifications.
func (s *NotificationService) ListMine(ctx context.Context, userID string, unreadOnly bool) ([]entity.Notification, error) {
	return s.repo.FindByUser(ctx, userID, unreadOnly, notificationPageSize)
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	if err := s.repo.MarkRead(ctx, notificationID, userID); err != nil {
		return err
	}
	s.invalidateUnreadCount(ctx, userID)
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	if err := s.repo.MarkAllRead(ctx, userID); err != nil {
		return err
	}
	s.invalidateUnreadCount(ctx, userID)
	return nil
}

// UnreadCount serves from redis when possible; the badge is polled on every
// page load.
func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	key := unreadCountKeyPrefix + userID
	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, key).Result(); err == nil {
			if count, err := strconv.ParseInt(cached, 10, 64); err == nil {
				return count, nil
			}
		}
	}

	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, err
	}
	if s.redis != nil {
		if err := s.redis.Set(ctx, key, fmt.Sprintf("%d", count), unreadCountTTL).Err(); err != nil {
			s.logger.Warn("failed to cache unread count", zap.Error(err))
		}
	}
	return count, nil
}

func (s *NotificationService) invalidateUnreadCount(ctx context.Context, userID string) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, unreadCountKeyPrefix+userID).Err(); err != nil {
		s.logger.Warn("failed to invalidate unread count",
			zap.String("user_id", userID),
			zap.Error(err))
	}
}
