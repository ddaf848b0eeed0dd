package preview

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"houseoflove/internal/book"
	"houseoflove/internal/cart"
	"houseoflove/internal/catalog"
	"houseoflove/internal/profile"
)

// Handler serves the preview page: the flipping book and the step that turns
// the customized book into a cart line.
type Handler struct {
	Books    book.StoreFunc
	Cart     *cart.Handler
	Catalog  *catalog.Catalog
	Sessions *Sessions
}

func NewHandler(books book.StoreFunc, cartHandler *cart.Handler, cat *catalog.Catalog) *Handler {
	return &Handler{Books: books, Cart: cartHandler, Catalog: cat, Sessions: NewSessions()}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/:category/:type", h.get)
	rg.POST("/:category/:type/flip", h.flip)
	rg.POST("/:category/:type/cart", h.addToCart)
	rg.DELETE("/:category/:type", h.close)
}

type previewView struct {
	Snapshot
	Image string `json:"image"`
	Title string `json:"title"`
	Price string `json:"price"`
	Pages int    `json:"pages"`
}

func (h *Handler) view(key book.Key, f *Flipper) previewView {
	snap := f.Snapshot()
	return previewView{
		Snapshot: snap,
		Image:    catalog.PagePath(key.Category, key.Type, snap.Page),
		Title:    h.Catalog.BookTitle(key.Category, key.Type),
		Price:    h.Catalog.BookPrice.StringFixed(2),
		Pages:    catalog.PageCount,
	}
}

func keyOf(c *gin.Context) (book.Key, bool) {
	k := book.Key{
		Category: strings.ToLower(strings.TrimSpace(c.Param("category"))),
		Type:     strings.ToLower(strings.TrimSpace(c.Param("type"))),
	}
	if k.Category == "" || k.Type == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": ErrNoBook.Error()})
		return k, false
	}
	return k, true
}

func (h *Handler) get(c *gin.Context) {
	key, ok := keyOf(c)
	if !ok {
		return
	}
	f := h.Sessions.Get(profile.MustGetID(c), key)
	c.JSON(http.StatusOK, h.view(key, f))
}

func (h *Handler) flip(c *gin.Context) {
	key, ok := keyOf(c)
	if !ok {
		return
	}
	f := h.Sessions.Get(profile.MustGetID(c), key)
	accepted := f.Interact()
	c.JSON(http.StatusOK, gin.H{"accepted": accepted, "preview": h.view(key, f)})
}

func (h *Handler) close(c *gin.Context) {
	key, ok := keyOf(c)
	if !ok {
		return
	}
	h.Sessions.Close(profile.MustGetID(c), key)
	c.Status(http.StatusNoContent)
}

// addToCart snapshots the current document into the profile's cart.
func (h *Handler) addToCart(c *gin.Context) {
	key, ok := keyOf(c)
	if !ok {
		return
	}
	id := profile.MustGetID(c)

	books, err := h.Books(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "load book state failed"})
		return
	}
	item, err := AssembleOrderItem(h.Catalog, key, books.Document(key))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s, err := h.Cart.Stores(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "load cart failed"})
		return
	}
	_, err = s.Add(c.Request.Context(), item)
	if errors.Is(err, cart.ErrInvalidItem) || errors.Is(err, cart.ErrQuantityLimit) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.Cart.Respond(c, s, err)
}
