package cart

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"houseoflove/internal/catalog"
	"houseoflove/internal/profile"
	"houseoflove/internal/storage"
	"houseoflove/pkg/models"
)

const EventUpdate = "cart.update"

type StoreFunc func(ctx context.Context, profileID string) (*Store, error)

type Publisher interface {
	Publish(profileID, eventType string, payload any)
}

type Handler struct {
	Stores  StoreFunc
	Catalog *catalog.Catalog
	Events  Publisher
}

func NewHandler(stores StoreFunc, cat *catalog.Catalog, events Publisher) *Handler {
	return &Handler{Stores: stores, Catalog: cat, Events: events}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.list)
	rg.POST("", h.add)
	rg.DELETE("", h.clear)
	rg.PUT("/:id", h.update)
	rg.DELETE("/:id", h.remove)
}

// Summary is the cart as the storefront shows it.
type Summary struct {
	Items   []models.CartItem `json:"items"`
	Count   int               `json:"count"`
	Total   string            `json:"total"`
	Warning string            `json:"warning,omitempty"`
}

func Summarize(s *Store) Summary {
	return Summary{Items: s.Items(), Count: s.Count(), Total: s.Total().StringFixed(2)}
}

func (h *Handler) store(c *gin.Context) (*Store, bool) {
	s, err := h.Stores(c.Request.Context(), profile.MustGetID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "load cart failed"})
		return nil, false
	}
	return s, true
}

// Respond writes the cart after a mutation and announces it. A failed write
// only adds a warning since the in-memory cart already changed.
func (h *Handler) Respond(c *gin.Context, s *Store, err error) {
	sum := Summarize(s)
	if err != nil {
		var perr *storage.PersistenceError
		if !errors.As(err, &perr) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
			return
		}
		sum.Warning = perr.Error()
	}
	if h.Events != nil {
		h.Events.Publish(profile.MustGetID(c), EventUpdate, sum)
	}
	c.JSON(http.StatusOK, sum)
}

func (h *Handler) list(c *gin.Context) {
	s, ok := h.store(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, Summarize(s))
}

type addReq struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// add puts a catalog product in the cart. Custom books arrive through the
// preview flow instead.
func (h *Handler) add(c *gin.Context) {
	var req addReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	id := strings.TrimSpace(req.ProductID)
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "product_id required"})
		return
	}
	if req.Quantity < 0 || req.Quantity > MaxQuantity {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantity must be between 0 and 999"})
		return
	}
	p, ok := h.Catalog.Product(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}

	s, ok := h.store(c)
	if !ok {
		return
	}
	_, err := s.Add(c.Request.Context(), models.CartItem{
		ID:       p.ID,
		Kind:     models.ItemKindProduct,
		Name:     p.Name,
		Price:    p.Price,
		Image:    p.Image,
		Quantity: req.Quantity,
	})
	if errors.Is(err, ErrQuantityLimit) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.Respond(c, s, err)
}

type quantityReq struct {
	Quantity *int `json:"quantity"`
}

func (h *Handler) update(c *gin.Context) {
	var req quantityReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Quantity == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantity required"})
		return
	}
	if *req.Quantity > MaxQuantity {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantity must be at most 999"})
		return
	}
	s, ok := h.store(c)
	if !ok {
		return
	}
	_, err := s.UpdateQuantity(c.Request.Context(), c.Param("id"), *req.Quantity)
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	h.Respond(c, s, err)
}

func (h *Handler) remove(c *gin.Context) {
	s, ok := h.store(c)
	if !ok {
		return
	}
	err := s.Remove(c.Request.Context(), c.Param("id"))
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	h.Respond(c, s, err)
}

func (h *Handler) clear(c *gin.Context) {
	s, ok := h.store(c)
	if !ok {
		return
	}
	h.Respond(c, s, s.Clear(c.Request.Context()))
}
