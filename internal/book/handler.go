package book

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"houseoflove/internal/catalog"
	"houseoflove/internal/profile"
	"houseoflove/internal/storage"
)

const EventUpdate = "book.update"

// StoreFunc resolves the book store of a profile.
type StoreFunc func(ctx context.Context, profileID string) (*Store, error)

type Publisher interface {
	Publish(profileID, eventType string, payload any)
}

type Handler struct {
	Stores   StoreFunc
	Gestures *Gestures
	Events   Publisher
}

func NewHandler(stores StoreFunc, events Publisher) *Handler {
	return &Handler{Stores: stores, Gestures: NewGestures(), Events: events}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.list)
	rg.GET("/:category/:type", h.get)
	rg.DELETE("/:category/:type", h.reset)
	rg.POST("/:category/:type/navigate", h.navigate)
	rg.POST("/:category/:type/drag", h.drag)
	rg.PUT("/:category/:type/pages/:page/text", h.setText)
	rg.PUT("/:category/:type/pages/:page/position", h.setPosition)
	rg.PATCH("/:category/:type/pages/:page/style", h.setStyle)
}

type documentView struct {
	Category string `json:"category"`
	Type     string `json:"type"`
	Document
	Images  [Pages]string `json:"images"`
	Warning string        `json:"warning,omitempty"`
}

func view(key Key, d Document) documentView {
	v := documentView{Category: key.Category, Type: key.Type, Document: d}
	for i := range Pages {
		v.Images[i] = catalog.PagePath(key.Category, key.Type, i)
	}
	return v
}

func keyOf(c *gin.Context) (Key, bool) {
	k := Key{
		Category: strings.ToLower(strings.TrimSpace(c.Param("category"))),
		Type:     strings.ToLower(strings.TrimSpace(c.Param("type"))),
	}
	return k, k.Category != "" && k.Type != ""
}

// store resolves the caller's store, writing the error response itself.
func (h *Handler) store(c *gin.Context) (*Store, Key, bool) {
	key, ok := keyOf(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "category and type required"})
		return nil, key, false
	}
	s, err := h.Stores(c.Request.Context(), profile.MustGetID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "load book state failed"})
		return nil, key, false
	}
	return s, key, true
}

func pageParam(c *gin.Context) (int, bool) {
	n, err := strconv.Atoi(c.Param("page"))
	if err != nil || n < 0 || n > LastPage {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page must be 0-7"})
		return 0, false
	}
	return n, true
}

// respond writes the document; a persistence failure is reported as a
// warning since the change is already live.
func (h *Handler) respond(c *gin.Context, key Key, d Document, err error) {
	v := view(key, d)
	if err != nil {
		var perr *storage.PersistenceError
		switch {
		case errors.As(err, &perr):
			v.Warning = perr.Error()
		case errors.Is(err, ErrPageOutOfRange):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
			return
		}
	}
	if h.Events != nil {
		h.Events.Publish(profile.MustGetID(c), EventUpdate, gin.H{"key": key.String(), "document": d})
	}
	c.JSON(http.StatusOK, v)
}

func (h *Handler) list(c *gin.Context) {
	s, err := h.Stores(c.Request.Context(), profile.MustGetID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "load book state failed"})
		return
	}
	keys := s.Keys()
	items := make([]documentView, 0, len(keys))
	for _, k := range keys {
		items = append(items, view(k, s.Document(k)))
	}
	c.JSON(http.StatusOK, gin.H{"total": len(items), "items": items})
}

func (h *Handler) get(c *gin.Context) {
	s, key, ok := h.store(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, view(key, s.Document(key)))
}

func (h *Handler) reset(c *gin.Context) {
	s, key, ok := h.store(c)
	if !ok {
		return
	}
	d, err := s.Reset(c.Request.Context(), key)
	h.respond(c, key, d, err)
}

type textReq struct {
	Text *string `json:"text"`
}

func (h *Handler) setText(c *gin.Context) {
	s, key, ok := h.store(c)
	if !ok {
		return
	}
	page, ok := pageParam(c)
	if !ok {
		return
	}
	var req textReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Text == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text required"})
		return
	}
	d, err := s.SetText(c.Request.Context(), key, page, *req.Text)
	h.respond(c, key, d, err)
}

type positionReq struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

func (h *Handler) setPosition(c *gin.Context) {
	s, key, ok := h.store(c)
	if !ok {
		return
	}
	page, ok := pageParam(c)
	if !ok {
		return
	}
	var req positionReq
	if err := c.ShouldBindJSON(&req); err != nil || req.X == nil || req.Y == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "x and y required"})
		return
	}
	d, err := s.SetPosition(c.Request.Context(), key, page, *req.X, *req.Y)
	h.respond(c, key, d, err)
}

func (h *Handler) setStyle(c *gin.Context) {
	s, key, ok := h.store(c)
	if !ok {
		return
	}
	page, ok := pageParam(c)
	if !ok {
		return
	}
	var patch StylePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	d, err := s.SetStyle(c.Request.Context(), key, page, patch)
	h.respond(c, key, d, err)
}

type navigateReq struct {
	Delta *int `json:"delta"`
	Page  *int `json:"page"`
}

func (h *Handler) navigate(c *gin.Context) {
	s, key, ok := h.store(c)
	if !ok {
		return
	}
	var req navigateReq
	if err := c.ShouldBindJSON(&req); err != nil || (req.Delta == nil) == (req.Page == nil) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "exactly one of delta or page required"})
		return
	}

	var (
		d   Document
		err error
	)
	if req.Delta != nil {
		d, err = s.GoToPage(c.Request.Context(), key, *req.Delta)
	} else {
		d, err = s.SetPage(c.Request.Context(), key, *req.Page)
	}
	h.respond(c, key, d, err)
}

type dragReq struct {
	Phase     string `json:"phase"` // start, move, end
	Target    Target `json:"target"`
	Pointer   Point  `json:"pointer"`
	Container Rect   `json:"container"`
}

// drag drives a placement gesture on the current page; every move writes
// through SetPosition.
func (h *Handler) drag(c *gin.Context) {
	s, key, ok := h.store(c)
	if !ok {
		return
	}
	var req dragReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	id := profile.MustGetID(c) + "|" + key.String()

	switch strings.ToLower(req.Phase) {
	case "start":
		d := s.Document(key)
		element := ElementPoint(req.Container, d.Positions[d.CurrentPage])
		if !h.Gestures.Start(id, req.Target, req.Pointer, element, req.Container) {
			// a press on the background does not cancel a running drag
			c.JSON(http.StatusOK, gin.H{"dragging": h.Gestures.Active(id)})
			return
		}
		c.JSON(http.StatusOK, gin.H{"dragging": true})
	case "move":
		p, active := h.Gestures.Move(id, req.Pointer)
		if !active {
			c.JSON(http.StatusConflict, gin.H{"error": "no active drag"})
			return
		}
		cur := s.Document(key).CurrentPage
		d, err := s.SetPosition(c.Request.Context(), key, cur, p.X, p.Y)
		h.respond(c, key, d, err)
	case "end":
		h.Gestures.End(id)
		c.JSON(http.StatusOK, gin.H{"dragging": false})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "phase must be start, move or end"})
	}
}
