package workspace

import (
	"context"
	"errors"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"houseoflove/internal/book"
	"houseoflove/internal/cart"
	"houseoflove/internal/catalog"
	"houseoflove/internal/favorites"
	"houseoflove/internal/storage"
)

// DefaultMaxProfiles bounds the cached workspaces when no limit is set.
const DefaultMaxProfiles = 10000

// profileStores are the loaded stores of one profile; nil until first use.
type profileStores struct {
	books     *book.Store
	cart      *cart.Store
	favorites *favorites.Store
}

// Registry hands out the stores of each profile, loading them from storage
// on first use. At most MaxProfiles workspaces stay cached; the least
// recently used one is dropped and reloads from storage on its next request.
type Registry struct {
	Storage storage.LocalStorage
	Catalog *catalog.Catalog
	Log     *zap.Logger
	Book    book.Options

	mu    sync.Mutex
	cache *lru.Cache[string, *profileStores]
}

func New(s storage.LocalStorage, cat *catalog.Catalog, log *zap.Logger, maxBooks, maxProfiles int) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	if maxProfiles <= 0 {
		maxProfiles = DefaultMaxProfiles
	}
	r := &Registry{
		Storage: s,
		Catalog: cat,
		Log:     log,
		Book: book.Options{
			Seeds:        cat.SeedTexts,
			MaxDocuments: maxBooks,
			Logger:       log,
		},
	}
	// size is positive, so NewWithEvict cannot fail
	r.cache, _ = lru.NewWithEvict(maxProfiles, func(id string, _ *profileStores) {
		r.Log.Debug("profile workspace evicted", zap.String("profile", id))
	})
	return r
}

// recovered reports whether the store came back empty because its saved
// blob did not parse. Such a store is usable and cached. A backend read
// failure is not cached, so a later request retries the load instead of
// overwriting the saved state.
func recovered(err error) bool {
	var perr *storage.PersistenceError
	return errors.As(err, &perr) && perr.Op == storage.OpLoad
}

func storeFor[T any](
	ctx context.Context,
	r *Registry,
	profileID string,
	slot func(*profileStores) **T,
	open func(context.Context, storage.Bucket) (*T, error),
) (*T, error) {
	if profileID == "" {
		return nil, storage.ErrEmptyProfile
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	ps, cached := r.cache.Get(profileID)
	if cached {
		if s := *slot(ps); s != nil {
			return s, nil
		}
	}
	s, err := open(ctx, storage.For(r.Storage, profileID))
	if err != nil && !recovered(err) {
		return nil, err
	}
	if !cached {
		ps = &profileStores{}
		r.cache.Add(profileID, ps)
	}
	*slot(ps) = s
	return s, nil
}

func (r *Registry) BookStore(ctx context.Context, profileID string) (*book.Store, error) {
	return storeFor(ctx, r, profileID,
		func(ps *profileStores) **book.Store { return &ps.books },
		func(ctx context.Context, b storage.Bucket) (*book.Store, error) { return book.Load(ctx, b, r.Book) },
	)
}

func (r *Registry) CartStore(ctx context.Context, profileID string) (*cart.Store, error) {
	return storeFor(ctx, r, profileID,
		func(ps *profileStores) **cart.Store { return &ps.cart },
		func(ctx context.Context, b storage.Bucket) (*cart.Store, error) { return cart.Load(ctx, b, r.Log) },
	)
}

func (r *Registry) FavoritesStore(ctx context.Context, profileID string) (*favorites.Store, error) {
	return storeFor(ctx, r, profileID,
		func(ps *profileStores) **favorites.Store { return &ps.favorites },
		func(ctx context.Context, b storage.Bucket) (*favorites.Store, error) {
			return favorites.Load(ctx, b, r.Log)
		},
	)
}

// Profiles is the number of cached profile workspaces.
func (r *Registry) Profiles() int {
	return r.cache.Len()
}
