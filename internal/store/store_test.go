package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nitesh/blog/pkg/models"
)

var articleCols = []string{"id", "title", "intro", "text", "date"}

func articleRows(arts ...*models.Article) *sqlmock.Rows {
	rows := sqlmock.NewRows(articleCols)
	for _, a := range arts {
		rows.AddRow(a.ID, a.Title, a.Intro, a.Text, a.Date)
	}
	return rows
}

func newMockStore(t *testing.T, driver string) (*SQLStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewSQLStore(db, driver), mock
}

func TestSQLStore_Create(t *testing.T) {
	s, mock := newMockStore(t, DriverSQLite)
	created := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return created }

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO articles (title, intro, text, date)")).
		WithArgs("Hello", "Intro text", "Body text", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "date"}).AddRow(int64(1), created))

	a := &models.Article{Title: "Hello", Intro: "Intro text", Text: "Body text"}
	require.NoError(t, s.Create(context.Background(), a))

	want := &models.Article{ID: 1, Title: "Hello", Intro: "Intro text", Text: "Body text", Date: created}
	if diff := cmp.Diff(want, a); diff != "" {
		t.Fatalf("Create mismatch (-want +got):\n%s", diff)
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_CreateStorageError(t *testing.T) {
	s, mock := newMockStore(t, DriverSQLite)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO articles")).
		WillReturnError(errors.New("CHECK constraint failed: articles"))

	err := s.Create(context.Background(), &models.Article{Title: "t", Intro: "i", Text: "x"})

	var se *models.StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "insert article", se.Op)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_List(t *testing.T) {
	s, mock := newMockStore(t, DriverSQLite)
	newer := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	older := newer.Add(-time.Hour)

	want := []*models.Article{
		{ID: 2, Title: "B", Intro: "b", Text: "bb", Date: newer},
		{ID: 1, Title: "A", Intro: "a", Text: "aa", Date: older},
	}
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY date DESC, id DESC")).
		WillReturnRows(articleRows(want...))

	got, err := s.List(context.Background())
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("List mismatch (-want +got):\n%s", diff)
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_ListEmpty(t *testing.T) {
	s, mock := newMockStore(t, DriverSQLite)
	mock.ExpectQuery("SELECT .* FROM articles").WillReturnRows(sqlmock.NewRows(articleCols))

	got, err := s.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSQLStore_Get(t *testing.T) {
	s, mock := newMockStore(t, DriverSQLite)
	want := &models.Article{
		ID: 1, Title: "Hello", Intro: "Intro text", Text: "Body text",
		Date: time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC),
	}

	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = ?")).
		WithArgs(int64(1)).
		WillReturnRows(articleRows(want))

	got, err := s.Get(context.Background(), 1)
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Get mismatch (-want +got):\n%s", diff)
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_GetNotFound(t *testing.T) {
	s, mock := newMockStore(t, DriverSQLite)
	mock.ExpectQuery("SELECT").WithArgs(int64(42)).WillReturnRows(sqlmock.NewRows(articleCols))

	got, err := s.Get(context.Background(), 42)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestSQLStore_GetStorageError(t *testing.T) {
	s, mock := newMockStore(t, DriverSQLite)
	mock.ExpectQuery("SELECT").WithArgs(int64(1)).WillReturnError(sql.ErrConnDone)

	_, err := s.Get(context.Background(), 1)

	var se *models.StorageError
	require.ErrorAs(t, err, &se)
	assert.ErrorIs(t, err, sql.ErrConnDone)
	assert.NotErrorIs(t, err, models.ErrNotFound)
}

func TestSQLStore_PostgresPlaceholders(t *testing.T) {
	s, mock := newMockStore(t, DriverPostgres)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1")).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(articleCols))

	_, err := s.Get(context.Background(), 5)
	assert.ErrorIs(t, err, models.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_UpdateKeepsIDAndDate(t *testing.T) {
	s, mock := newMockStore(t, DriverSQLite)
	created := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

	stored := &models.Article{ID: 3, Title: "New", Intro: "new intro", Text: "new body", Date: created}
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE articles")).
		WithArgs("New", "new intro", "new body", int64(3)).
		WillReturnRows(articleRows(stored))

	// a zero Date on the input must not reach the stored record
	a := &models.Article{ID: 3, Title: "New", Intro: "new intro", Text: "new body"}
	require.NoError(t, s.Update(context.Background(), a))

	if diff := cmp.Diff(stored, a); diff != "" {
		t.Fatalf("Update mismatch (-want +got):\n%s", diff)
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_UpdateNotFound(t *testing.T) {
	s, mock := newMockStore(t, DriverSQLite)
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE articles")).
		WithArgs("t", "i", "x", int64(9)).
		WillReturnRows(sqlmock.NewRows(articleCols))

	err := s.Update(context.Background(), &models.Article{ID: 9, Title: "t", Intro: "i", Text: "x"})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestSQLStore_UpdateStorageError(t *testing.T) {
	s, mock := newMockStore(t, DriverSQLite)
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE articles")).WillReturnError(errors.New("database is locked"))

	err := s.Update(context.Background(), &models.Article{ID: 1, Title: "t", Intro: "i", Text: "x"})

	var se *models.StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "update article", se.Op)
}

func TestSQLStore_Delete(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		execErr  error
		check    func(t *testing.T, err error)
	}{
		{
			name:     "deleted",
			affected: 1,
			check:    func(t *testing.T, err error) { assert.NoError(t, err) },
		},
		{
			name:     "missing",
			affected: 0,
			check:    func(t *testing.T, err error) { assert.ErrorIs(t, err, models.ErrNotFound) },
		},
		{
			name:    "storage failure",
			execErr: errors.New("disk I/O error"),
			check: func(t *testing.T, err error) {
				var se *models.StorageError
				assert.ErrorAs(t, err, &se)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newMockStore(t, DriverSQLite)
			exp := mock.ExpectExec(regexp.QuoteMeta("DELETE FROM articles WHERE id = ?")).WithArgs(int64(1))
			if tt.execErr != nil {
				exp.WillReturnError(tt.execErr)
			} else {
				exp.WillReturnResult(sqlmock.NewResult(0, tt.affected))
			}

			tt.check(t, s.Delete(context.Background(), 1))
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRunMigrations(t *testing.T) {
	for _, driver := range []string{DriverSQLite, DriverPostgres} {
		t.Run(driver, func(t *testing.T) {
			s, mock := newMockStore(t, driver)
			mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS articles")).
				WillReturnResult(sqlmock.NewResult(0, 0))

			require.NoError(t, RunMigrations(context.Background(), s))
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRunMigrations_Failure(t *testing.T) {
	s, mock := newMockStore(t, DriverSQLite)
	mock.ExpectExec("CREATE TABLE").WillReturnError(errors.New("read-only file system"))

	err := RunMigrations(context.Background(), s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create articles table")
}

func TestRunMigrations_UnknownDriver(t *testing.T) {
	s, _ := newMockStore(t, "mysql")
	assert.Error(t, RunMigrations(context.Background(), s))
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), OpenOptions{Driver: "nope", DSN: "x", Attempts: 1})
	assert.Error(t, err)
}
