package lessons

import (
	"context"

	"github.com/dmitrijs2005/coursekeeper/internal/server/models"
)

type Repository interface {
	ListBySection(ctx context.Context, sectionID string) ([]*models.Lesson, error)
	Create(ctx context.Context, lesson *models.Lesson) (*models.Lesson, error)
	Update(ctx context.Context, id string, patch models.LessonPatch) (*models.Lesson, error)
	Delete(ctx context.Context, id string) error
}
