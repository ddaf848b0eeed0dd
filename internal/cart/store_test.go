package cart

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"houseoflove/internal/storage"
	"houseoflove/pkg/models"
)

func locket() models.CartItem {
	return models.CartItem{ID: "1", Name: "Heart Locket", Price: decimal.NewFromInt(1500), Image: "/images/locket.jpg"}
}

func bookItem(text string) models.CartItem {
	b := &models.BookCustomization{Category: "love", Type: "male-to-female"}
	b.Texts[0] = text
	return models.CartItem{ID: "love-male-to-female", Kind: models.ItemKindBook, Name: "Love Book", Price: decimal.NewFromInt(1900), Book: b}
}

func load(t *testing.T, mem storage.LocalStorage) *Store {
	t.Helper()
	s, err := Load(context.Background(), storage.For(mem, "p1"), nil)
	require.NoError(t, err)
	return s
}

type failingStorage struct {
	*storage.Memory
}

func (failingStorage) SetItem(context.Context, string, string, string) error {
	return errors.New("quota exceeded")
}

func TestAddIncrementsExistingLine(t *testing.T) {
	ctx := context.Background()
	s := load(t, storage.NewMemory())

	it, err := s.Add(ctx, locket())
	require.NoError(t, err)
	assert.Equal(t, 1, it.Quantity)
	assert.Equal(t, models.ItemKindProduct, it.Kind)

	it2 := locket()
	it2.Quantity = 2
	it, err = s.Add(ctx, it2)
	require.NoError(t, err)
	assert.Equal(t, 3, it.Quantity)

	assert.Equal(t, 1, s.Count())
	assert.True(t, decimal.NewFromInt(4500).Equal(s.Total()))
}

func TestAddRejectsInvalid(t *testing.T) {
	s := load(t, storage.NewMemory())
	_, err := s.Add(context.Background(), models.CartItem{Name: "nameless"})
	assert.ErrorIs(t, err, ErrInvalidItem)

	neg := locket()
	neg.Price = decimal.NewFromInt(-1)
	_, err = s.Add(context.Background(), neg)
	assert.ErrorIs(t, err, ErrInvalidItem)
	assert.Zero(t, s.Count())
}

func TestUpdateQuantity(t *testing.T) {
	ctx := context.Background()
	s := load(t, storage.NewMemory())
	_, _ = s.Add(ctx, locket())
	_, _ = s.Add(ctx, bookItem("hi"))

	it, err := s.UpdateQuantity(ctx, "1", 4)
	require.NoError(t, err)
	assert.Equal(t, 4, it.Quantity)
	assert.Equal(t, "7900.00", s.Total().StringFixed(2))

	_, err = s.UpdateQuantity(ctx, "1", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Count())

	_, err = s.UpdateQuantity(ctx, "missing", 2)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRemoveAndClear(t *testing.T) {
	ctx := context.Background()
	s := load(t, storage.NewMemory())
	_, _ = s.Add(ctx, locket())
	_, _ = s.Add(ctx, bookItem("hi"))

	require.NoError(t, s.Remove(ctx, "1"))
	assert.ErrorIs(t, s.Remove(ctx, "1"), ErrNotFound)
	assert.Equal(t, "love-male-to-female", s.Items()[0].ID)

	require.NoError(t, s.Clear(ctx))
	assert.Zero(t, s.Count())
	assert.True(t, s.Total().IsZero())
}

func TestItemsAreSnapshots(t *testing.T) {
	ctx := context.Background()
	s := load(t, storage.NewMemory())
	_, _ = s.Add(ctx, bookItem("first"))

	items := s.Items()
	items[0].Book.Texts[0] = "mutated"
	items[0].Quantity = 99

	again := s.Items()
	assert.Equal(t, "first", again[0].Book.Texts[0])
	assert.Equal(t, 1, again[0].Quantity)
}

func TestCartSurvivesReload(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	s := load(t, mem)
	_, _ = s.Add(ctx, locket())
	_, _ = s.Add(ctx, bookItem("saved"))

	reloaded := load(t, mem)
	items := reloaded.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "saved", items[1].Book.Texts[0])
	assert.True(t, decimal.NewFromInt(3400).Equal(reloaded.Total()))
}

func TestCartPersistenceFailureKeepsChange(t *testing.T) {
	s := load(t, failingStorage{storage.NewMemory()})

	_, err := s.Add(context.Background(), locket())
	var perr *storage.PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 1, s.Count())
}

func TestLoadCorruptCart(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	require.NoError(t, mem.SetItem(ctx, "p1", storage.KeyCart, "not json"))

	s, err := Load(ctx, storage.For(mem, "p1"), nil)
	require.Error(t, err)
	require.NotNil(t, s)
	assert.Zero(t, s.Count())
}

func TestQuantityCapped(t *testing.T) {
	ctx := context.Background()
	s := load(t, storage.NewMemory())

	big := locket()
	big.Quantity = math.MaxInt
	_, err := s.Add(ctx, big)
	assert.ErrorIs(t, err, ErrQuantityLimit)
	assert.Equal(t, 0, s.Count())

	big.Quantity = MaxQuantity
	_, err = s.Add(ctx, big)
	require.NoError(t, err)

	it, err := s.Add(ctx, locket())
	assert.ErrorIs(t, err, ErrQuantityLimit)
	assert.Equal(t, MaxQuantity, it.Quantity)
	assert.True(t, decimal.NewFromInt(1500*MaxQuantity).Equal(s.Total()))

	_, err = s.UpdateQuantity(ctx, "1", math.MaxInt)
	assert.ErrorIs(t, err, ErrQuantityLimit)
	assert.Equal(t, MaxQuantity, s.Items()[0].Quantity)
}

func TestTakeEmptiesAtomically(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	s := load(t, mem)

	_, _ = s.Add(ctx, locket())
	_, _ = s.Add(ctx, bookItem("first"))

	items, total, err := s.Take(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.True(t, decimal.NewFromInt(3400).Equal(total))
	assert.Equal(t, 0, s.Count())

	// a line added after the take stays in the cart
	_, _ = s.Add(ctx, locket())
	assert.Equal(t, 1, s.Count())
	assert.Equal(t, 1, load(t, mem).Count())

	items, _, err = s.Take(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	items, total, err = s.Take(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.True(t, total.IsZero())
}

func TestRestorePutsItemsBackFirst(t *testing.T) {
	ctx := context.Background()
	s := load(t, storage.NewMemory())

	_, _ = s.Add(ctx, bookItem("first"))
	_, _ = s.Add(ctx, locket())
	taken, _, err := s.Take(ctx)
	require.NoError(t, err)

	again := locket()
	again.Quantity = 2
	_, _ = s.Add(ctx, again)

	require.NoError(t, s.Restore(ctx, taken))
	items := s.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "love-male-to-female", items[0].ID)
	assert.Equal(t, "1", items[1].ID)
	assert.Equal(t, 3, items[1].Quantity)
}
