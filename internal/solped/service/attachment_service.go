package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/bitforja/solped/internal/solped/engine"
	"github.com/bitforja/solped/internal/solped/entity"
	"github.com/bitforja/solped/internal/solped/repository"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// MaxAttachmentSize caps uploads at 10 MB.
const MaxAttachmentSize = 10 << 20

var allowedExtensions = map[string]bool{
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".gif":  true,
	".pdf":  true,
	".doc":  true,
	".docx": true,
	".xls":  true,
	".xlsx": true,
}

// AttachmentService stores requisition files in object storage and their
// metadata in the database.
type AttachmentService struct {
	attRepo     *repository.AttachmentRepository
	reqRepo     *repository.RequisitionRepository
	minioClient *minio.Client
	bucketName  string
	logger      *zap.Logger
}

func NewAttachmentService(attRepo *repository.AttachmentRepository, reqRepo *repository.RequisitionRepository, minioClient *minio.Client, bucketName string, logger *zap.Logger) *AttachmentService {
	return &AttachmentService{
		attRepo:     attRepo,
		reqRepo:     reqRepo,
		minioClient: minioClient,
		bucketName:  bucketName,
		logger:      logger,
	}
}

func (s *AttachmentService) List(ctx context.Context, requisitionID string) ([]entity.Attachment, error) {
	if _, err := s.reqRepo.FindByID(ctx, requisitionID); err != nil {
		return nil, err
	}
	return s.attRepo.FindByRequisition(ctx, requisitionID)
}

// Upload validates the file, puts it in the bucket and records the metadata.
func (s *AttachmentService) Upload(ctx context.Context, actor engine.Actor, requisitionID string, reader io.Reader, fileName string, fileSize int64, contentType string) (*entity.Attachment, error) {
	if fileSize > MaxAttachmentSize {
		return nil, &engine.ValidationError{Reason: "file exceeds the 10 MB limit"}
	}
	ext := strings.ToLower(filepath.Ext(fileName))
	if !allowedExtensions[ext] {
		return nil, &engine.ValidationError{Reason: fmt.Sprintf("file type %s is not allowed", ext)}
	}

	if _, err := s.reqRepo.FindByID(ctx, requisitionID); err != nil {
		return nil, err
	}

	objectKey := fmt.Sprintf("requisitions/%s/%s/%s%s",
		requisitionID, time.Now().Format("2006/01/02"), uuid.New().String()[:8], ext)

	if s.minioClient != nil {
		_, err := s.minioClient.PutObject(ctx, s.bucketName, objectKey, reader, fileSize, minio.PutObjectOptions{
			ContentType: contentType,
		})
		if err != nil {
			return nil, fmt.Errorf("upload file: %w", err)
		}
	}

	att := &entity.Attachment{
		ID:            uuid.New().String()[:32],
		RequisitionID: requisitionID,
		FileName:      fileName,
		ObjectKey:     objectKey,
		MimeType:      contentType,
		Size:          fileSize,
		UploadedByID:  actor.ID,
	}
	if err := s.attRepo.Create(ctx, att); err != nil {
		return nil, fmt.Errorf("create attachment: %w", err)
	}

	s.logger.Info("attachment uploaded",
		zap.String("requisition_id", requisitionID),
		zap.String("attachment_id", att.ID),
		zap.Int64("size", fileSize))
	return att, nil
}

// Download streams the stored object.
func (s *AttachmentService) Download(ctx context.Context, id string) (io.ReadCloser, *entity.Attachment, error) {
	att, err := s.attRepo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if s.minioClient == nil {
		return nil, nil, fmt.Errorf("object storage is not configured")
	}
	object, err := s.minioClient.GetObject(ctx, s.bucketName, att.ObjectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, nil, fmt.Errorf("get object: %w", err)
	}
	return object, att, nil
}

// Delete removes the metadata row and best-effort removes the object.
func (s *AttachmentService) Delete(ctx context.Context, actor engine.Actor, id string) error {
	att, err := s.attRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if att.UploadedByID != actor.ID && actor.Role != entity.RoleSupervisor {
		return engine.ErrForbidden
	}

	if err := s.attRepo.Delete(ctx, id); err != nil {
		return err
	}
	if s.minioClient != nil {
		if err := s.minioClient.RemoveObject(ctx, s.bucketName, att.ObjectKey, minio.RemoveObjectOptions{}); err != nil {
			s.logger.Warn("failed to remove object",
				zap.String("object_key", att.ObjectKey),
				zap.Error(err))
		}
	}
	return nil
}
