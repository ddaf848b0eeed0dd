package favorites

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"houseoflove/internal/catalog"
	"houseoflove/internal/profile"
	"houseoflove/internal/storage"
)

const EventUpdate = "favorites.update"

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
	rg.POST("/toggle", h.toggle)
	rg.DELETE("/:id", h.remove)
}

func (h *Handler) store(c *gin.Context) (*Store, bool) {
	s, err := h.Stores(c.Request.Context(), profile.MustGetID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "load favorites failed"})
		return nil, false
	}
	return s, true
}

func (h *Handler) respond(c *gin.Context, s *Store, extra gin.H, err error) {
	body := gin.H{"items": s.List(), "count": s.Count()}
	for k, v := range extra {
		body[k] = v
	}
	if err != nil {
		var perr *storage.PersistenceError
		if !errors.As(err, &perr) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
			return
		}
		body["warning"] = perr.Error()
	}
	if h.Events != nil {
		h.Events.Publish(profile.MustGetID(c), EventUpdate, gin.H{"items": body["items"], "count": body["count"]})
	}
	c.JSON(http.StatusOK, body)
}

func (h *Handler) list(c *gin.Context) {
	s, ok := h.store(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": s.List(), "count": s.Count()})
}

type productReq struct {
	ProductID string `json:"product_id"`
}

func (h *Handler) product(c *gin.Context) (string, bool) {
	var req productReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return "", false
	}
	id := strings.TrimSpace(req.ProductID)
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "product_id required"})
		return "", false
	}
	return id, true
}

func (h *Handler) toggle(c *gin.Context) {
	id, ok := h.product(c)
	if !ok {
		return
	}
	p, found := h.Catalog.Product(id)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}
	s, ok := h.store(c)
	if !ok {
		return
	}
	fav, err := s.Toggle(c.Request.Context(), p)
	h.respond(c, s, gin.H{"product_id": p.ID, "favorite": fav}, err)
}

func (h *Handler) add(c *gin.Context) {
	id, ok := h.product(c)
	if !ok {
		return
	}
	p, found := h.Catalog.Product(id)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}
	s, ok := h.store(c)
	if !ok {
		return
	}
	h.respond(c, s, gin.H{"product_id": p.ID, "favorite": true}, s.Add(c.Request.Context(), p))
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
	h.respond(c, s, nil, err)
}
