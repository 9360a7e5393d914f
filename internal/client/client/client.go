package client

import (
	"context"

	"github.com/dmitrijs2005/coursekeeper/internal/client/models"
)

// Client is the backend contract consumed by the authoring engine.
type Client interface {
	ListSections(ctx context.Context, courseID string) ([]models.RemoteSection, error)
	CreateSection(ctx context.Context, req models.NewSectionRequest) (models.RemoteSection, error)
	UpdateSection(ctx context.Context, sectionID string, req models.UpdateSectionRequest) (models.RemoteSection, error)
	DeleteSection(ctx context.Context, sectionID string) error

	ListLessons(ctx context.Context, sectionID string) ([]models.RemoteLesson, error)
	CreateLesson(ctx context.Context, req models.NewLessonRequest) (models.RemoteLesson, error)
	UpdateLesson(ctx context.Context, lessonID string, req models.UpdateLessonRequest) (models.RemoteLesson, error)
	DeleteLesson(ctx context.Context, lessonID string) error

	UploadFile(ctx context.Context, file models.MediaFile) (models.MediaReference, error)
	RemoveFile(ctx context.Context, publicID string) error
}
