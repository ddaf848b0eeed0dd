package preview

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"houseoflove/internal/book"
	"houseoflove/internal/cart"
	"houseoflove/internal/catalog"
	"houseoflove/internal/storage"
	"houseoflove/pkg/models"
)

func TestAssembleOrderItem(t *testing.T) {
	cat := catalog.MustLoad()
	key := book.Key{Category: "birthday", Type: "female-to-male"}
	doc := book.NewDocument(nil)
	doc.Texts[0] = "Happy birthday"

	item, err := AssembleOrderItem(cat, key, doc)
	require.NoError(t, err)
	assert.Equal(t, "birthday-female-to-male", item.ID)
	assert.Equal(t, models.ItemKindBook, item.Kind)
	assert.Equal(t, "Birthday Book (Female to Male)", item.Name)
	assert.Equal(t, "1900", item.Price.String())
	assert.Equal(t, "/images/books/birthday/female-to-male/img0.png", item.Image)
	assert.Equal(t, 1, item.Quantity)
	require.NotNil(t, item.Book)
	assert.Equal(t, "Happy birthday", item.Book.Texts[0])
	assert.Equal(t, book.DefaultStyle, item.Book.Styles[3])

	doc.Texts[0] = "changed"
	assert.Equal(t, "Happy birthday", item.Book.Texts[0])
}

func TestAssembleUnknownBook(t *testing.T) {
	item, err := AssembleOrderItem(catalog.MustLoad(), book.Key{Category: "space", Type: "alien"}, book.NewDocument(nil))
	require.NoError(t, err)
	assert.Equal(t, "Custom Book", item.Name)

	_, err = AssembleOrderItem(catalog.MustLoad(), book.Key{}, book.NewDocument(nil))
	assert.ErrorIs(t, err, ErrNoBook)
}

func TestCartKeepsSnapshotAfterReedit(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	cat := catalog.MustLoad()
	key := book.Key{Category: "love", Type: "male-to-female"}

	books, err := book.Load(ctx, storage.For(mem, "p1"), book.Options{Seeds: cat.SeedTexts})
	require.NoError(t, err)
	c, err := cart.Load(ctx, storage.For(mem, "p1"), nil)
	require.NoError(t, err)

	_, err = books.SetText(ctx, key, 0, "first")
	require.NoError(t, err)
	item, err := AssembleOrderItem(cat, key, books.Document(key))
	require.NoError(t, err)
	_, err = c.Add(ctx, item)
	require.NoError(t, err)

	_, err = books.SetText(ctx, key, 0, "second")
	require.NoError(t, err)

	assert.Equal(t, "first", c.Items()[0].Book.Texts[0])
	assert.Equal(t, "second", books.Document(key).Texts[0])
}
