package lessons

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/coursekeeper/internal/common"
	"github.com/dmitrijs2005/coursekeeper/internal/server/models"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return NewPostgresRepository(db), mock
}

var (
	cols = []string{"id", "course_id", "section_id", "title", "lesson_type", "short_desc",
		"url", "public_id", "order_no", "is_visible", "created_at"}
	created = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
)

func TestListBySection(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	q := `(?s)^SELECT\s+id,.*FROM\s+lessons\s+WHERE\s+section_id\s*=\s*\$1\s+ORDER\s+BY\s+order_no$`
	mock.ExpectQuery(q).WithArgs("s1").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("l1", "c1", "s1", "Welcome", "VIDEO", "hi", "https://cdn/v.mp4", "media/v.mp4", 1, false, created).
			AddRow("l2", "c1", "s1", "Slides", "FILE", "", "", "", 2, true, created))

	got, err := repo.ListBySection(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "media/v.mp4", got[0].PublicID)
	require.Equal(t, "FILE", got[1].LessonType)
	require.True(t, got[1].IsVisible)
}

func TestListBySection_ScanError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`FROM\s+lessons`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("l1"))

	_, err := repo.ListBySection(context.Background(), "s1")
	require.Error(t, err)
}

func TestListBySection_QueryError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	boom := errors.New("boom")
	mock.ExpectQuery(`FROM\s+lessons`).WillReturnError(boom)

	_, err := repo.ListBySection(context.Background(), "s1")
	require.ErrorIs(t, err, boom)
}

func TestCreate(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	q := `(?s)^INSERT\s+INTO\s+lessons\s*\(course_id,\s*section_id,.*is_visible\)\s+VALUES\s*\(\$1,.*\$9\)\s+RETURNING\s+id,\s*created_at$`
	mock.ExpectQuery(q).
		WithArgs("c1", "s1", "Welcome", "VIDEO", "hi", "https://cdn/v.mp4", "media/v.mp4", 3, false).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("l9", created))

	l, err := repo.Create(context.Background(), &models.Lesson{
		CourseID: "c1", SectionID: "s1", Title: "Welcome", LessonType: "VIDEO", ShortDesc: "hi",
		URL: "https://cdn/v.mp4", PublicID: "media/v.mp4", OrderNo: 3,
	})
	require.NoError(t, err)
	require.Equal(t, "l9", l.ID)
	require.Equal(t, created, l.CreatedAt)
}

func TestCreate_WrapsDBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	boom := errors.New("fk violation")
	mock.ExpectQuery(`INSERT\s+INTO\s+lessons`).WillReturnError(boom)

	_, err := repo.Create(context.Background(), &models.Lesson{SectionID: "s1", OrderNo: 1})
	require.ErrorIs(t, err, boom)
}

func TestUpdate(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	q := `(?s)^UPDATE\s+lessons\s+SET\s+title\s*=\s*\$2,\s*short_desc\s*=\s*\$3,\s*url\s*=\s*\$4,\s*public_id\s*=\s*\$5\s+WHERE\s+id\s*=\s*\$1\s+RETURNING\b`
	mock.ExpectQuery(q).WithArgs("l1", "Hello", "", "", "").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("l1", "c1", "s1", "Hello", "VIDEO", "", "", "", 1, false, created))
	mock.ExpectQuery(q).WithArgs("gone", "Hello", "", "", "").WillReturnError(sql.ErrNoRows)

	l, err := repo.Update(context.Background(), "l1", models.LessonPatch{Title: "Hello"})
	require.NoError(t, err)
	require.Equal(t, "Hello", l.Title)
	require.Equal(t, 1, l.OrderNo)

	_, err = repo.Update(context.Background(), "gone", models.LessonPatch{Title: "Hello"})
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestDelete(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	q := `^DELETE\s+FROM\s+lessons\s+WHERE\s+id\s*=\s*\$1$`
	mock.ExpectExec(q).WithArgs("l1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).WithArgs("l2").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), "l1"))
	require.ErrorIs(t, repo.Delete(context.Background(), "l2"), common.ErrNotFound)
}
