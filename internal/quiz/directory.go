package quiz

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync/atomic"

	"quizme-gateway/internal/models"
)

// AllCategories is the synthetic category label meaning "no category filter".
const AllCategories = "All of them!"

type CategorySource interface {
	FetchCategories(ctx context.Context) ([]models.Category, error)
}

// CategorySnapshot keeps the last good category list outside the process.
type CategorySnapshot interface {
	SaveCategories(ctx context.Context, categories []models.Category) error
	LoadCategories(ctx context.Context) ([]models.Category, error)
}

// Directory maps category names to upstream IDs. The map is swapped as a
// whole on Load, so lookups never take a lock.
type Directory struct {
	source   CategorySource
	snapshot CategorySnapshot
	logger   *slog.Logger
	ids      atomic.Pointer[map[string]int]
}

// NewDirectory returns an empty directory. snapshot may be nil.
func NewDirectory(source CategorySource, snapshot CategorySnapshot, logger *slog.Logger) *Directory {
	d := &Directory{
		source:   source,
		snapshot: snapshot,
		logger:   logger,
	}
	d.set(nil)
	return d
}

// Load replaces the directory contents with the upstream category list.
// On failure the last snapshot is restored if one exists, otherwise the
// directory is left empty; ErrFetch is returned in both cases.
func (d *Directory) Load(ctx context.Context) error {
	categories, err := d.source.FetchCategories(ctx)
	if err == nil {
		d.set(categories)
		d.logger.Info("category directory loaded", "count", len(categories))
		if d.snapshot != nil {
			if err := d.snapshot.SaveCategories(ctx, categories); err != nil {
				d.logger.Warn("saving category snapshot", "error", err)
			}
		}
		return nil
	}

	fetchErr := fmt.Errorf("%w: %v", ErrFetch, err)
	if d.snapshot != nil {
		cached, snapErr := d.snapshot.LoadCategories(ctx)
		if snapErr == nil && len(cached) > 0 {
			d.set(cached)
			d.logger.Warn("category directory restored from snapshot", "count", len(cached), "error", err)
			return fetchErr
		}
	}

	d.set(nil)
	d.logger.Error("category directory left empty", "error", err)
	return fetchErr
}

// Resolve returns the upstream ID for name.
func (d *Directory) Resolve(name string) (int, bool) {
	id, ok := (*d.ids.Load())[name]
	return id, ok
}

// ListNames returns every known category name plus AllCategories, sorted.
func (d *Directory) ListNames() []string {
	ids := *d.ids.Load()
	names := make([]string, 0, len(ids)+1)
	for name := range ids {
		names = append(names, name)
	}
	if _, ok := ids[AllCategories]; !ok {
		names = append(names, AllCategories)
	}
	sort.Strings(names)
	return names
}

func (d *Directory) set(categories []models.Category) {
	ids := make(map[string]int, len(categories))
	for _, c := range categories {
		ids[c.Name] = c.ID
	}
	d.ids.Store(&ids)
}
