package kvrepo

import (
	"context"
	"sync"

	"github.com/klu2500030136/lptd-app/core"
	"github.com/klu2500030136/lptd-app/core/mark"
)

type markRepository struct {
	mu    sync.Mutex
	store core.KVStore
}

var _ mark.Repository = (*markRepository)(nil) // interface compliance check

func NewMarkRepository(store core.KVStore) mark.Repository {
	return &markRepository{store: store}
}

func (repo *markRepository) load(ctx context.Context) (marks []mark.MarkEntry, found bool, err error) {
	found, err = core.GetJSON(ctx, repo.store, MarksKey, &marks)
	return marks, found, err
}

func (repo *markRepository) save(ctx context.Context, marks []mark.MarkEntry) error {
	if marks == nil {
		marks = []mark.MarkEntry{}
	}
	return core.SetJSON(ctx, repo.store, MarksKey, marks)
}

func (repo *markRepository) QueryMarks(ctx context.Context, filter mark.QueryFilter) ([]mark.MarkEntry, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	marks, _, err := repo.load(ctx)
	if err != nil {
		return nil, err
	}
	filtered := make([]mark.MarkEntry, 0, len(marks))
	for _, m := range marks {
		if filter.Match(m) {
			filtered = append(filtered, m)
		}
	}
	return filtered, nil
}

func (repo *markRepository) UpsertMark(ctx context.Context, entry mark.MarkEntry) (mark.MarkEntry, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	marks, _, err := repo.load(ctx)
	if err != nil {
		return mark.MarkEntry{}, err
	}

	idx, maxID := -1, 0
	for i, m := range marks {
		if entry.ID != 0 && m.ID == entry.ID {
			idx = i
		}
		if m.ID > maxID {
			maxID = m.ID
		}
	}
	if idx >= 0 {
		marks[idx] = entry
	} else {
		entry.ID = maxID + 1
		marks = append(marks, entry)
	}

	if err = repo.save(ctx, marks); err != nil {
		return mark.MarkEntry{}, err
	}
	return entry, nil
}

func (repo *markRepository) DeleteMark(ctx context.Context, id int) (bool, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	marks, _, err := repo.load(ctx)
	if err != nil {
		return false, err
	}
	for i, m := range marks {
		if m.ID == id {
			marks = append(marks[:i], marks[i+1:]...)
			if err = repo.save(ctx, marks); err != nil {
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}

func (repo *markRepository) MarksExist(ctx context.Context) (bool, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	_, found, err := repo.load(ctx)
	return found, err
}

func (repo *markRepository) SeedMarks(ctx context.Context, entries []mark.MarkEntry) (bool, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if _, found, err := repo.load(ctx); err != nil || found {
		return false, err
	}
	if err := repo.save(ctx, entries); err != nil {
		return false, err
	}
	return true, nil
}
