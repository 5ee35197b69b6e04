package service

import (
	"github.com/bitforja/solped/internal/config"
	"github.com/bitforja/solped/internal/solped/repository"
	"github.com/bitforja/solped/internal/solped/sse"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Services wires every service with its repositories and shared clients.
type Services struct {
	Auth         *AuthService
	User         *UserService
	Lifecycle    *LifecycleService
	Notification *NotificationService
	Catalog      *CatalogService
	Comment      *CommentService
	Todo         *TodoService
	Attachment   *AttachmentService
	Export       *ExportService
}

func NewServices(repos *repository.Repositories, rdb *redis.Client, hub *sse.Hub, cfg *config.Config, logger *zap.Logger) *Services {
	var minioClient *minio.Client
	if cfg.MinIO.Endpoint != "" {
		var err error
		minioClient, err = minio.New(cfg.MinIO.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, ""),
			Secure: cfg.MinIO.UseSSL,
		})
		if err != nil {
			logger.Warn("minio unavailable, attachments disabled", zap.Error(err))
			minioClient = nil
		}
	}

	notificationSvc := NewNotificationService(repos.Notification, hub, rdb, logger)

	return &Services{
		Auth:         NewAuthService(repos.User, rdb, logger, cfg.JWT.Secret, cfg.JWT.AccessTokenExpire, cfg.JWT.RefreshTokenExpire),
		User:         NewUserService(repos.User, logger),
		Lifecycle:    NewLifecycleService(repos.Requisition, repos.Sequence, repos.User, logger),
		Notification: notificationSvc,
		Catalog:      NewCatalogService(repos.Area, repos.Unit),
		Comment:      NewCommentService(repos.Comment, repos.Requisition, notificationSvc),
		Todo:         NewTodoService(repos.Todo, repos.Requisition, notificationSvc),
		Attachment:   NewAttachmentService(repos.Attachment, repos.Requisition, minioClient, cfg.MinIO.Bucket, logger),
		Export:       NewExportService(repos.Requisition),
	}
}
