package dummydb

import (
	"context"

	"github.com/trezcool/darasa/core/content"
)

type contentRepository struct {
	db *contentTable
}

func NewContentRepository(db *DB) content.Repository {
	return &contentRepository{db: db.content}
}

func (repo *contentRepository) CreateContent(_ context.Context, rec content.ContentRecord) (content.ContentRecord, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, exists := repo.db.table[rec.CourseID]; exists {
		return content.ContentRecord{}, content.ErrContentExists
	}
	rec.Version = 1
	stored := rec.Clone()
	repo.db.table[rec.CourseID] = &stored
	return rec, nil
}

func (repo *contentRepository) GetContent(_ context.Context, courseID string) (content.ContentRecord, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if rec, ok := repo.db.table[courseID]; ok {
		return rec.Clone(), nil
	}
	return content.ContentRecord{}, content.ErrNotFound
}

func (repo *contentRepository) QueryAllContent(_ context.Context) ([]content.ContentRecord, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	recs := make([]content.ContentRecord, 0, len(repo.db.table))
	for _, rec := range repo.db.table {
		recs = append(recs, rec.Clone())
	}
	return recs, nil
}

// UpdateContent replaces the stored record if the caller's version matches
// the stored one; stale writes fail with content.ErrStaleVersion.
func (repo *contentRepository) UpdateContent(_ context.Context, rec content.ContentRecord) (content.ContentRecord, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[rec.CourseID]
	if !ok {
		return content.ContentRecord{}, content.ErrNotFound
	}
	if orig.Version != rec.Version {
		return content.ContentRecord{}, content.ErrStaleVersion
	}
	rec.Version++
	stored := rec.Clone()
	repo.db.table[rec.CourseID] = &stored
	return rec, nil
}

func (repo *contentRepository) DeleteContentByCourseID(_ context.Context, courseIDs ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range courseIDs {
		delete(repo.db.table, id)
	}
	return nil
}
