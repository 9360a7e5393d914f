package sections

import (
	"context"

	"github.com/dmitrijs2005/coursekeeper/internal/server/models"
)

type Repository interface {
	ListByCourse(ctx context.Context, courseID string) ([]*models.Section, error)
	Get(ctx context.Context, id string) (*models.Section, error)
	Create(ctx context.Context, section *models.Section) (*models.Section, error)
	UpdateTitle(ctx context.Context, id, title string) (*models.Section, error)
	Delete(ctx context.Context, id string) error
}
