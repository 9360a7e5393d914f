// Package lessons stores lessons in PostgreSQL.
package lessons

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/coursekeeper/internal/common"
	"github.com/dmitrijs2005/coursekeeper/internal/dbx"
	"github.com/dmitrijs2005/coursekeeper/internal/server/models"
)

const lessonColumns = `id, course_id, section_id, title, lesson_type, short_desc, url, public_id, order_no, is_visible, created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLesson(row scanner) (*models.Lesson, error) {
	l := &models.Lesson{}
	err := row.Scan(&l.ID, &l.CourseID, &l.SectionID, &l.Title, &l.LessonType, &l.ShortDesc,
		&l.URL, &l.PublicID, &l.OrderNo, &l.IsVisible, &l.CreatedAt)
	if err != nil {
		return nil, err
	}
	return l, nil
}

// ListBySection returns the section's lessons ordered by order_no.
func (r *PostgresRepository) ListBySection(ctx context.Context, sectionID string) ([]*models.Lesson, error) {
	query := `SELECT ` + lessonColumns + ` FROM lessons
		WHERE section_id = $1
		ORDER BY order_no`

	rows, err := r.db.QueryContext(ctx, query, sectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to select lessons: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Lesson, 0)
	for rows.Next() {
		l, err := scanLesson(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Create inserts lesson and fills in the generated id and created_at.
func (r *PostgresRepository) Create(ctx context.Context, lesson *models.Lesson) (*models.Lesson, error) {
	query := `INSERT INTO lessons (course_id, section_id, title, lesson_type, short_desc, url, public_id, order_no, is_visible)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		lesson.CourseID, lesson.SectionID, lesson.Title, lesson.LessonType, lesson.ShortDesc,
		lesson.URL, lesson.PublicID, lesson.OrderNo, lesson.IsVisible,
	).Scan(&lesson.ID, &lesson.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return lesson, nil
}

// Update overwrites the mutable fields. Type and order_no never change.
func (r *PostgresRepository) Update(ctx context.Context, id string, patch models.LessonPatch) (*models.Lesson, error) {
	query := `UPDATE lessons SET title = $2, short_desc = $3, url = $4, public_id = $5
		WHERE id = $1
		RETURNING ` + lessonColumns

	l, err := scanLesson(r.db.QueryRowContext(ctx, query, id, patch.Title, patch.ShortDesc, patch.URL, patch.PublicID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return l, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	if err := dbx.RequireAffected(r.db.ExecContext(ctx, `DELETE FROM lessons WHERE id = $1`, id)); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return err
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
