package cart

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"houseoflove/internal/storage"
	"houseoflove/pkg/models"
)

// MaxQuantity is the most units one cart line may hold.
const MaxQuantity = 999

var (
	ErrInvalidItem   = errors.New("cart item needs an id, a name and a non-negative price")
	ErrNotFound      = errors.New("cart item not found")
	ErrQuantityLimit = errors.New("cart line quantity above 999")
)

// Store is the ordered cart of one profile, written through on every change.
type Store struct {
	mu     sync.Mutex
	bucket storage.Bucket
	log    *zap.Logger
	items  []models.CartItem
}

// Load reads the saved cart. As with book state, an unreadable cart yields
// an empty, usable Store together with the *storage.PersistenceError.
func Load(ctx context.Context, bucket storage.Bucket, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{bucket: bucket, log: log}
	var saved []models.CartItem
	if _, err := bucket.LoadJSON(ctx, storage.KeyCart, &saved); err != nil {
		log.Warn("cart unreadable, starting empty", zap.String("profile", bucket.Profile), zap.Error(err))
		return s, err
	}
	for _, it := range saved {
		if it.ID == "" || it.Quantity <= 0 {
			continue
		}
		s.items = append(s.items, it)
	}
	return s, nil
}

func (s *Store) Items() []models.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.CartItem, len(s.items))
	for i, it := range s.items {
		out[i] = it.Clone()
	}
	return out
}

// Count is the number of lines, the figure shown on the navbar badge.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for _, it := range s.items {
		total = total.Add(it.LineTotal())
	}
	return total
}

// Add appends item, or bumps the quantity of the line with the same id.
// The existing line keeps its original content.
func (s *Store) Add(ctx context.Context, item models.CartItem) (models.CartItem, error) {
	item.ID = strings.TrimSpace(item.ID)
	if item.ID == "" || item.Name == "" || item.Price.IsNegative() {
		return models.CartItem{}, ErrInvalidItem
	}
	if item.Quantity <= 0 {
		item.Quantity = 1
	}
	if item.Quantity > MaxQuantity {
		return models.CartItem{}, ErrQuantityLimit
	}
	if item.Kind == "" {
		item.Kind = models.ItemKindProduct
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexLocked(item.ID); i >= 0 {
		if s.items[i].Quantity > MaxQuantity-item.Quantity {
			return s.items[i].Clone(), ErrQuantityLimit
		}
		s.items[i].Quantity += item.Quantity
		return s.items[i].Clone(), s.persistLocked(ctx)
	}
	item = item.Clone()
	s.items = append(s.items, item)
	return item.Clone(), s.persistLocked(ctx)
}

func (s *Store) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return ErrNotFound
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return s.persistLocked(ctx)
}

// UpdateQuantity sets the quantity of a line; zero or less removes it.
func (s *Store) UpdateQuantity(ctx context.Context, id string, quantity int) (models.CartItem, error) {
	if quantity > MaxQuantity {
		return models.CartItem{}, ErrQuantityLimit
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return models.CartItem{}, ErrNotFound
	}
	if quantity <= 0 {
		removed := s.items[i]
		s.items = append(s.items[:i], s.items[i+1:]...)
		removed.Quantity = 0
		return removed, s.persistLocked(ctx)
	}
	s.items[i].Quantity = quantity
	return s.items[i].Clone(), s.persistLocked(ctx)
}

func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	return s.persistLocked(ctx)
}

// Take empties the cart and returns what it held with its total, both read
// under the same lock. The error is only ever a persistence failure; the
// cart is empty in memory either way.
func (s *Store) Take(ctx context.Context) ([]models.CartItem, decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.items
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal())
	}
	if len(items) == 0 {
		return nil, total, nil
	}
	s.items = nil
	return items, total, s.persistLocked(ctx)
}

// Restore puts taken items back ahead of anything added since. A line whose
// id was added again meanwhile gets the quantities merged, up to MaxQuantity.
func (s *Store) Restore(ctx context.Context, items []models.CartItem) error {
	if len(items) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	merged := make([]models.CartItem, 0, len(items)+len(s.items))
	for _, it := range items {
		merged = append(merged, it.Clone())
	}
	for _, it := range s.items {
		found := false
		for i := range merged {
			if merged[i].ID == it.ID {
				merged[i].Quantity = min(merged[i].Quantity+it.Quantity, MaxQuantity)
				found = true
				break
			}
		}
		if !found {
			merged = append(merged, it)
		}
	}
	s.items = merged
	return s.persistLocked(ctx)
}

func (s *Store) indexLocked(id string) int {
	id = strings.TrimSpace(id)
	for i, it := range s.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) persistLocked(ctx context.Context) error {
	items := s.items
	if items == nil {
		items = []models.CartItem{}
	}
	if err := s.bucket.SaveJSON(ctx, storage.KeyCart, items); err != nil {
		s.log.Warn("cart not persisted", zap.String("profile", s.bucket.Profile), zap.Error(err))
		return err
	}
	return nil
}
