package preview

import (
	"errors"

	"houseoflove/internal/book"
	"houseoflove/internal/catalog"
	"houseoflove/pkg/models"
)

var ErrNoBook = errors.New("category and type required")

// AssembleOrderItem freezes doc into a cart line. The texts and styles are
// copied, so later edits of the book do not reach the cart.
func AssembleOrderItem(cat *catalog.Catalog, key book.Key, doc book.Document) (models.CartItem, error) {
	if key.Category == "" || key.Type == "" {
		return models.CartItem{}, ErrNoBook
	}
	return models.CartItem{
		ID:       key.Category + "-" + key.Type,
		Kind:     models.ItemKindBook,
		Name:     cat.BookTitle(key.Category, key.Type),
		Price:    cat.BookPrice,
		Image:    catalog.PagePath(key.Category, key.Type, 0),
		Quantity: 1,
		Book: &models.BookCustomization{
			Category: key.Category,
			Type:     key.Type,
			Texts:    doc.Texts,
			Styles:   doc.Styles,
		},
	}, nil
}
