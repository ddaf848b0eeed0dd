package favorites

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"houseoflove/internal/storage"
	"houseoflove/pkg/models"
)

var ErrNotFound = errors.New("favorite not found")

// Store is the wishlist of one profile, ordered by when items were added.
type Store struct {
	mu     sync.Mutex
	bucket storage.Bucket
	log    *zap.Logger
	items  []models.Favorite

	Now func() time.Time
}

func Load(ctx context.Context, bucket storage.Bucket, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{bucket: bucket, log: log, Now: time.Now}
	var saved []models.Favorite
	if _, err := bucket.LoadJSON(ctx, storage.KeyFavorites, &saved); err != nil {
		log.Warn("favorites unreadable, starting empty", zap.String("profile", bucket.Profile), zap.Error(err))
		return s, err
	}
	seen := make(map[string]bool, len(saved))
	for _, f := range saved {
		if f.ProductID == "" || seen[f.ProductID] {
			continue
		}
		seen[f.ProductID] = true
		s.items = append(s.items, f)
	}
	return s, nil
}

// Toggle adds p when absent and removes it when present. It reports whether
// p is a favorite afterwards.
func (s *Store) Toggle(ctx context.Context, p models.Product) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexLocked(p.ID); i >= 0 {
		s.items = append(s.items[:i], s.items[i+1:]...)
		return false, s.persistLocked(ctx)
	}
	s.appendLocked(p)
	return true, s.persistLocked(ctx)
}

// Add is a no-op when p is already a favorite.
func (s *Store) Add(ctx context.Context, p models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexLocked(p.ID) >= 0 {
		return nil
	}
	s.appendLocked(p)
	return s.persistLocked(ctx)
}

func (s *Store) Remove(ctx context.Context, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(productID)
	if i < 0 {
		return ErrNotFound
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return s.persistLocked(ctx)
}

func (s *Store) Has(productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexLocked(productID) >= 0
}

func (s *Store) List() []models.Favorite {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Favorite, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *Store) appendLocked(p models.Product) {
	s.items = append(s.items, models.Favorite{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Image:     p.Image,
		AddedAt:   s.Now().UTC(),
	})
}

func (s *Store) indexLocked(id string) int {
	for i, f := range s.items {
		if f.ProductID == id {
			return i
		}
	}
	return -1
}

func (s *Store) persistLocked(ctx context.Context) error {
	items := s.items
	if items == nil {
		items = []models.Favorite{}
	}
	if err := s.bucket.SaveJSON(ctx, storage.KeyFavorites, items); err != nil {
		s.log.Warn("favorites not persisted", zap.String("profile", s.bucket.Profile), zap.Error(err))
		return err
	}
	return nil
}
