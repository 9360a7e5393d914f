// Package sections stores course sections in PostgreSQL.
package sections

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/coursekeeper/internal/common"
	"github.com/dmitrijs2005/coursekeeper/internal/dbx"
	"github.com/dmitrijs2005/coursekeeper/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// ListByCourse returns the course's sections ordered by order_no.
func (r *PostgresRepository) ListByCourse(ctx context.Context, courseID string) ([]*models.Section, error) {
	query := `SELECT id, course_id, title, order_no, created_at FROM sections
		WHERE course_id = $1
		ORDER BY order_no`

	rows, err := r.db.QueryContext(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to select sections: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Section, 0)
	for rows.Next() {
		var item models.Section
		if err := rows.Scan(&item.ID, &item.CourseID, &item.Title, &item.OrderNo, &item.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Section, error) {
	query := `SELECT id, course_id, title, order_no, created_at FROM sections
		WHERE id = $1`

	s := &models.Section{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&s.ID, &s.CourseID, &s.Title, &s.OrderNo, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

// Create inserts section and fills in the generated id and created_at.
func (r *PostgresRepository) Create(ctx context.Context, section *models.Section) (*models.Section, error) {
	query := `INSERT INTO sections (course_id, title, order_no)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, section.CourseID, section.Title, section.OrderNo).
		Scan(&section.ID, &section.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return section, nil
}

func (r *PostgresRepository) UpdateTitle(ctx context.Context, id, title string) (*models.Section, error) {
	query := `UPDATE sections SET title = $2
		WHERE id = $1
		RETURNING id, course_id, title, order_no, created_at`

	s := &models.Section{}
	err := r.db.QueryRowContext(ctx, query, id, title).Scan(&s.ID, &s.CourseID, &s.Title, &s.OrderNo, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

// Delete removes the section. Its lessons go with it (ON DELETE CASCADE).
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	if err := dbx.RequireAffected(r.db.ExecContext(ctx, `DELETE FROM sections WHERE id = $1`, id)); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return err
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
