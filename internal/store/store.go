package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	dbtypes "github.com/nitesh/blog/internal/db"
	"github.com/nitesh/blog/pkg/models"
)

// SQLStore is the article repository. Queries are written with '?'
// placeholders and rebound for the underlying driver, so the same store
// serves sqlite3 and postgres.
type SQLStore struct {
	db  *sqlx.DB
	now func() time.Time
}

// articleRow is the storage shape of models.Article.
type articleRow struct {
	ID    int64           `db:"id"`
	Title string          `db:"title"`
	Intro string          `db:"intro"`
	Text  string          `db:"text"`
	Date  dbtypes.UTCTime `db:"date"`
}

func (r articleRow) toModel() *models.Article {
	return &models.Article{
		ID:    r.ID,
		Title: r.Title,
		Intro: r.Intro,
		Text:  r.Text,
		Date:  r.Date.Time,
	}
}

const articleColumns = `id, title, intro, text, date`

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{
		db:  sqlx.NewDb(db, driver),
		now: time.Now,
	}
}

// Create inserts a and fills in the id and creation date assigned by the store.
func (s *SQLStore) Create(ctx context.Context, a *models.Article) error {
	// postgres keeps microseconds, so trim here to return what is stored
	created := dbtypes.NewUTCTime(s.now().Truncate(time.Microsecond))

	query := s.db.Rebind(`
INSERT INTO articles (title, intro, text, date)
VALUES (?, ?, ?, ?)
RETURNING id, date
`)
	var (
		id   int64
		date dbtypes.UTCTime
	)
	err := s.db.QueryRowxContext(ctx, query, a.Title, a.Intro, a.Text, created).Scan(&id, &date)
	if err != nil {
		return &models.StorageError{Op: "insert article", Err: err}
	}
	a.ID = id
	a.Date = date.Time
	return nil
}

// List returns every article, newest first.
func (s *SQLStore) List(ctx context.Context) ([]*models.Article, error) {
	query := `
SELECT ` + articleColumns + `
FROM articles
ORDER BY date DESC, id DESC
`
	rows := []articleRow{}
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, &models.StorageError{Op: "list articles", Err: err}
	}

	out := make([]*models.Article, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

func (s *SQLStore) Get(ctx context.Context, id int64) (*models.Article, error) {
	query := s.db.Rebind(`
SELECT ` + articleColumns + `
FROM articles
WHERE id = ?
LIMIT 1
`)
	var row articleRow
	if err := s.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, &models.StorageError{Op: "get article", Err: err}
	}
	return row.toModel(), nil
}

// Update overwrites title, intro and text of the article with a.ID in a
// single statement and reloads a from the stored row. ID and Date are never
// written.
func (s *SQLStore) Update(ctx context.Context, a *models.Article) error {
	query := s.db.Rebind(`
UPDATE articles
SET title = ?, intro = ?, text = ?
WHERE id = ?
RETURNING ` + articleColumns + `
`)
	var row articleRow
	err := s.db.QueryRowxContext(ctx, query, a.Title, a.Intro, a.Text, a.ID).StructScan(&row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ErrNotFound
		}
		return &models.StorageError{Op: "update article", Err: err}
	}
	*a = *row.toModel()
	return nil
}

// Delete removes the article permanently.
func (s *SQLStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM articles WHERE id = ?`), id)
	if err != nil {
		return &models.StorageError{Op: "delete article", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return &models.StorageError{Op: "delete article", Err: err}
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return nil
}
