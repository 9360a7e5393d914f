// Package services contains the backend's business logic: curriculum
// persistence on top of the repositories and media storage on top of S3.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/coursekeeper/internal/common"
	"github.com/dmitrijs2005/coursekeeper/internal/dbx"
	"github.com/dmitrijs2005/coursekeeper/internal/logging"
	"github.com/dmitrijs2005/coursekeeper/internal/server/models"
	"github.com/dmitrijs2005/coursekeeper/internal/server/repositories/repomanager"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres SQLSTATE codes the service translates.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgInvalidTextRepr     = "22P02"
)

type NewSection struct {
	CourseID string `json:"courseId" validate:"notblank,max=64"`
	Title    string `json:"title" validate:"notblank,max=200"`
	OrderNo  int    `json:"orderNo" validate:"min=1"`
}

type UpdateSection struct {
	Title string `json:"title" validate:"notblank,max=200"`
}

type NewLesson struct {
	CourseID   string `json:"courseId" validate:"notblank,max=64"`
	SectionID  string `json:"sectionId" validate:"notblank"`
	Title      string `json:"title" validate:"notblank,max=200"`
	ShortDesc  string `json:"shortDesc" validate:"max=2000"`
	OrderNo    int    `json:"orderNo" validate:"min=1"`
	LessonType string `json:"lessonType" validate:"oneof=VIDEO FILE"`
	URL        string `json:"url" validate:"omitempty,url"`
	PublicID   string `json:"publicId"`
	IsVisible  bool   `json:"isVisible"`
}

type UpdateLesson struct {
	Title     string `json:"title" validate:"notblank,max=200"`
	ShortDesc string `json:"shortDesc" validate:"max=2000"`
	URL       string `json:"url" validate:"omitempty,url"`
	PublicID  string `json:"publicId"`
}

// CurriculumService stores the sections and lessons of courses.
//
// Errors match common.ErrValidation for rejected input, common.ErrNotFound
// for unknown ids and common.ErrOrderConflict when a sibling already holds
// the requested order number.
type CurriculumService interface {
	ListSections(ctx context.Context, courseID string) ([]*models.Section, error)
	CreateSection(ctx context.Context, in NewSection) (*models.Section, error)
	UpdateSection(ctx context.Context, id string, in UpdateSection) (*models.Section, error)
	DeleteSection(ctx context.Context, id string) error

	ListLessons(ctx context.Context, sectionID string) ([]*models.Lesson, error)
	CreateLesson(ctx context.Context, in NewLesson) (*models.Lesson, error)
	UpdateLesson(ctx context.Context, id string, in UpdateLesson) (*models.Lesson, error)
	DeleteLesson(ctx context.Context, id string) error
}

type curriculumService struct {
	db       *sql.DB
	repos    repomanager.RepositoryManager
	validate *validator.Validate
	log      logging.Logger
}

func NewCurriculumService(db *sql.DB, repos repomanager.RepositoryManager, log logging.Logger) CurriculumService {
	return &curriculumService{
		db:       db,
		repos:    repos,
		validate: newValidator(),
		log:      log,
	}
}

func (s *curriculumService) ListSections(ctx context.Context, courseID string) ([]*models.Section, error) {
	sections, err := s.repos.Sections(s.db).ListByCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("list sections: %w", mapPgError(err))
	}
	return sections, nil
}

func (s *curriculumService) CreateSection(ctx context.Context, in NewSection) (*models.Section, error) {
	if err := validateStruct(s.validate, in); err != nil {
		return nil, err
	}

	section, err := s.repos.Sections(s.db).Create(ctx, &models.Section{
		CourseID: in.CourseID,
		Title:    in.Title,
		OrderNo:  in.OrderNo,
	})
	if err != nil {
		return nil, fmt.Errorf("create section: %w", mapPgError(err))
	}

	s.log.Info(ctx, "section created", "id", section.ID, "course_id", section.CourseID, "order_no", section.OrderNo)
	return section, nil
}

func (s *curriculumService) UpdateSection(ctx context.Context, id string, in UpdateSection) (*models.Section, error) {
	if err := validateStruct(s.validate, in); err != nil {
		return nil, err
	}

	section, err := s.repos.Sections(s.db).UpdateTitle(ctx, id, in.Title)
	if err != nil {
		return nil, fmt.Errorf("update section %s: %w", id, mapPgError(err))
	}
	return section, nil
}

func (s *curriculumService) DeleteSection(ctx context.Context, id string) error {
	if err := s.repos.Sections(s.db).Delete(ctx, id); err != nil {
		return fmt.Errorf("delete section %s: %w", id, mapPgError(err))
	}
	s.log.Info(ctx, "section deleted", "id", id)
	return nil
}

// ListLessons returns the section's lessons; an unknown section is
// common.ErrNotFound rather than an empty list.
func (s *curriculumService) ListLessons(ctx context.Context, sectionID string) ([]*models.Lesson, error) {
	if _, err := s.repos.Sections(s.db).Get(ctx, sectionID); err != nil {
		return nil, fmt.Errorf("list lessons of %s: %w", sectionID, mapPgError(err))
	}

	lessons, err := s.repos.Lessons(s.db).ListBySection(ctx, sectionID)
	if err != nil {
		return nil, fmt.Errorf("list lessons of %s: %w", sectionID, mapPgError(err))
	}
	return lessons, nil
}

// CreateLesson checks the parent section and inserts the lesson in one
// transaction, so a concurrent section delete cannot orphan it.
func (s *curriculumService) CreateLesson(ctx context.Context, in NewLesson) (*models.Lesson, error) {
	if err := validateStruct(s.validate, in); err != nil {
		return nil, err
	}

	var lesson *models.Lesson
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		section, err := s.repos.Sections(tx).Get(ctx, in.SectionID)
		if err != nil {
			return err
		}
		if section.CourseID != in.CourseID {
			return common.NewValidationError("sectionId", "belongs to another course")
		}

		lesson, err = s.repos.Lessons(tx).Create(ctx, &models.Lesson{
			CourseID:   in.CourseID,
			SectionID:  in.SectionID,
			Title:      in.Title,
			LessonType: in.LessonType,
			ShortDesc:  in.ShortDesc,
			URL:        in.URL,
			PublicID:   in.PublicID,
			OrderNo:    in.OrderNo,
			IsVisible:  in.IsVisible,
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create lesson: %w", mapPgError(err))
	}

	s.log.Info(ctx, "lesson created", "id", lesson.ID, "section_id", lesson.SectionID, "order_no", lesson.OrderNo)
	return lesson, nil
}

func (s *curriculumService) UpdateLesson(ctx context.Context, id string, in UpdateLesson) (*models.Lesson, error) {
	if err := validateStruct(s.validate, in); err != nil {
		return nil, err
	}

	lesson, err := s.repos.Lessons(s.db).Update(ctx, id, models.LessonPatch{
		Title:     in.Title,
		ShortDesc: in.ShortDesc,
		URL:       in.URL,
		PublicID:  in.PublicID,
	})
	if err != nil {
		return nil, fmt.Errorf("update lesson %s: %w", id, mapPgError(err))
	}
	return lesson, nil
}

func (s *curriculumService) DeleteLesson(ctx context.Context, id string) error {
	if err := s.repos.Lessons(s.db).Delete(ctx, id); err != nil {
		return fmt.Errorf("delete lesson %s: %w", id, mapPgError(err))
	}
	s.log.Info(ctx, "lesson deleted", "id", id)
	return nil
}

// mapPgError attaches the matching sentinel to Postgres constraint
// failures. Other errors pass through unchanged.
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		return fmt.Errorf("%w: %w", common.ErrOrderConflict, err)
	case pgForeignKeyViolation, pgInvalidTextRepr:
		return fmt.Errorf("%w: %w", common.ErrNotFound, err)
	default:
		return err
	}
}
