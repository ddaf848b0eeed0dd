package book

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"houseoflove/internal/storage"
	"houseoflove/pkg/models"
)

var ErrPageOutOfRange = errors.New("page index out of range")

const DefaultMaxDocuments = 64

type Options struct {
	// Seeds supplies template text for known category/type pairs.
	Seeds func(category, typ string) ([Pages]string, bool)
	// MaxDocuments caps the mapping; the least recently updated document is
	// evicted past it. Zero means DefaultMaxDocuments, negative disables.
	MaxDocuments int
	Bounds       Bounds
	Logger       *zap.Logger
	Now          func() time.Time
}

// Store holds one Document per Key for a single profile and writes the
// whole mapping through to storage on every mutation.
type Store struct {
	mu     sync.Mutex
	bucket storage.Bucket
	opts   Options
	docs   map[string]*Document
}

// Load reads the persisted mapping. The returned Store is always usable;
// a non-nil error is a *storage.PersistenceError meaning the saved state
// could not be read and the store starts empty.
func Load(ctx context.Context, bucket storage.Bucket, opts Options) (*Store, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Bounds == (Bounds{}) {
		opts.Bounds = PercentBounds
	}
	if opts.MaxDocuments == 0 {
		opts.MaxDocuments = DefaultMaxDocuments
	}

	s := &Store{bucket: bucket, opts: opts, docs: make(map[string]*Document)}

	saved := map[string]*Document{}
	if _, err := bucket.LoadJSON(ctx, storage.KeyBookState, &saved); err != nil {
		opts.Logger.Warn("book state unreadable, starting empty",
			zap.String("profile", bucket.Profile), zap.Error(err))
		return s, err
	}
	for k, d := range saved {
		if d == nil {
			continue
		}
		if _, ok := ParseKey(k); !ok {
			continue
		}
		normalize(d, opts.Bounds)
		s.docs[k] = d
	}
	return s, nil
}

func (s *Store) fresh(key Key) Document {
	if s.opts.Seeds != nil {
		if seed, ok := s.opts.Seeds(key.Category, key.Type); ok {
			return NewDocument(&seed)
		}
	}
	return NewDocument(nil)
}

// Document returns the saved document for key, or a default one. Reading an
// unseen key does not store it.
func (s *Store) Document(key Key) Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.docs[key.String()]; ok {
		return *d
	}
	return s.fresh(key)
}

// Keys lists the stored documents in key order.
func (s *Store) Keys() []Key {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Key, 0, len(s.docs))
	for k := range s.docs {
		key, _ := ParseKey(k)
		out = append(out, key)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

func (s *Store) SetText(ctx context.Context, key Key, page int, text string) (Document, error) {
	if err := checkPage(page); err != nil {
		return s.Document(key), err
	}
	return s.mutate(ctx, key, func(d *Document) {
		d.Texts[page] = text
	})
}

// SetPosition stores (x, y) for page after clamping it into the store bounds.
func (s *Store) SetPosition(ctx context.Context, key Key, page int, x, y float64) (Document, error) {
	if err := checkPage(page); err != nil {
		return s.Document(key), err
	}
	return s.mutate(ctx, key, func(d *Document) {
		d.Positions[page] = s.opts.Bounds.Clamp(models.PagePlacement{X: x, Y: y})
	})
}

func (s *Store) SetStyle(ctx context.Context, key Key, page int, patch StylePatch) (Document, error) {
	if err := checkPage(page); err != nil {
		return s.Document(key), err
	}
	return s.mutate(ctx, key, func(d *Document) {
		d.Styles[page] = patch.Apply(d.Styles[page])
	})
}

// GoToPage moves the cursor by delta, stopping at the first and last page.
func (s *Store) GoToPage(ctx context.Context, key Key, delta int) (Document, error) {
	return s.mutate(ctx, key, func(d *Document) {
		d.CurrentPage = clampPage(d.CurrentPage + delta)
	})
}

func (s *Store) SetPage(ctx context.Context, key Key, page int) (Document, error) {
	return s.mutate(ctx, key, func(d *Document) {
		d.CurrentPage = clampPage(page)
	})
}

// Reset drops the saved document so the next read yields the defaults.
func (s *Store) Reset(ctx context.Context, key Key) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, key.String())
	return s.fresh(key), s.persistLocked(ctx)
}

func (s *Store) mutate(ctx context.Context, key Key, fn func(d *Document)) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key.String()
	d, ok := s.docs[k]
	if !ok {
		doc := s.fresh(key)
		d = &doc
		s.docs[k] = d
	}
	fn(d)
	d.UpdatedAt = s.opts.Now().UTC()
	if !ok {
		s.evictLocked(k)
	}

	return *d, s.persistLocked(ctx)
}

func (s *Store) evictLocked(keep string) {
	if s.opts.MaxDocuments < 0 {
		return
	}
	for len(s.docs) > s.opts.MaxDocuments {
		var (
			oldest   string
			oldestAt time.Time
		)
		for k, d := range s.docs {
			if k == keep {
				continue
			}
			if oldest == "" || d.UpdatedAt.Before(oldestAt) {
				oldest, oldestAt = k, d.UpdatedAt
			}
		}
		if oldest == "" {
			return
		}
		delete(s.docs, oldest)
		s.opts.Logger.Debug("evicted book document",
			zap.String("profile", s.bucket.Profile), zap.String("key", oldest))
	}
}

func (s *Store) persistLocked(ctx context.Context) error {
	if err := s.bucket.SaveJSON(ctx, storage.KeyBookState, s.docs); err != nil {
		s.opts.Logger.Warn("book state not persisted",
			zap.String("profile", s.bucket.Profile), zap.Error(err))
		return err
	}
	return nil
}

func checkPage(page int) error {
	if page < 0 || page > LastPage {
		return ErrPageOutOfRange
	}
	return nil
}
