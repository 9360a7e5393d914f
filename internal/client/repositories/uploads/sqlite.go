package uploads

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/coursekeeper/internal/client/models"
	"github.com/dmitrijs2005/coursekeeper/internal/dbx"
)

// SQLiteRepository implements Repository over a DBTX.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Track(ctx context.Context, ref models.MediaReference) error {
	query := `INSERT INTO uploads (public_id, url) VALUES (?, ?) ON CONFLICT(public_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, ref.PublicID, ref.URL); err != nil {
		return fmt.Errorf("failed to track upload: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Forget(ctx context.Context, publicID string) error {
	query := `DELETE FROM uploads WHERE public_id = ?`
	if _, err := r.db.ExecContext(ctx, query, publicID); err != nil {
		return fmt.Errorf("failed to forget upload: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Pending(ctx context.Context) ([]models.MediaReference, error) {
	query := `SELECT public_id, url FROM uploads ORDER BY uploaded_at, rowid`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select uploads: %w", err)
	}
	defer rows.Close()

	var result []models.MediaReference
	for rows.Next() {
		var ref models.MediaReference
		if err := rows.Scan(&ref.PublicID, &ref.URL); err != nil {
			return nil, err
		}
		result = append(result, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
