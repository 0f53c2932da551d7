// Package storetest provides an in-memory article store for tests.
package storetest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/nitesh/blog/pkg/models"
)

// MemoryStore mimics SQLStore: ids increase from 1, dates are set on create,
// and missing ids yield models.ErrNotFound. Setting Err makes every call
// fail with a *models.StorageError wrapping it.
type MemoryStore struct {
	mu       sync.Mutex
	nextID   int64
	articles map[int64]models.Article

	Now func() time.Time
	Err error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID:   1,
		articles: map[int64]models.Article{},
		Now:      time.Now,
	}
}

func (m *MemoryStore) fail(op string) error {
	if m.Err != nil {
		return &models.StorageError{Op: op, Err: m.Err}
	}
	return nil
}

func (m *MemoryStore) Create(_ context.Context, a *models.Article) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("insert article"); err != nil {
		return err
	}
	a.ID = m.nextID
	a.Date = m.Now().UTC()
	m.nextID++
	m.articles[a.ID] = *a
	return nil
}

func (m *MemoryStore) List(_ context.Context) ([]*models.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("list articles"); err != nil {
		return nil, err
	}
	out := make([]*models.Article, 0, len(m.articles))
	for _, a := range m.articles {
		a := a
		out = append(out, &a)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (m *MemoryStore) Get(_ context.Context, id int64) (*models.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("get article"); err != nil {
		return nil, err
	}
	a, ok := m.articles[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &a, nil
}

func (m *MemoryStore) Update(_ context.Context, a *models.Article) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("update article"); err != nil {
		return err
	}
	stored, ok := m.articles[a.ID]
	if !ok {
		return models.ErrNotFound
	}
	stored.Title, stored.Intro, stored.Text = a.Title, a.Intro, a.Text
	m.articles[a.ID] = stored
	*a = stored
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("delete article"); err != nil {
		return err
	}
	if _, ok := m.articles[id]; !ok {
		return models.ErrNotFound
	}
	delete(m.articles, id)
	return nil
}
