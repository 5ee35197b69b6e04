package repository

import "gorm.io/gorm"

// Repositories bundles every persistence repository behind one constructor.
type Repositories struct {
	Requisition  *RequisitionRepository
	Sequence     *SequenceRepository
	User         *UserRepository
	Notification *NotificationRepository
	Comment      *CommentRepository
	Todo         *TodoRepository
	Attachment   *AttachmentRepository
	Area         *AreaRepository
	Unit         *UnitRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Requisition:  NewRequisitionRepository(db),
		Sequence:     NewSequenceRepository(db),
		User:         NewUserRepository(db),
		Notification: NewNotificationRepository(db),
		Comment:      NewCommentRepository(db),
		Todo:         NewTodoRepository(db),
		Attachment:   NewAttachmentRepository(db),
		Area:         NewAreaRepository(db),
		Unit:         NewUnitRepository(db),
	}
}
