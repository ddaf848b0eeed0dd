package checkout

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"houseoflove/internal/auth"
	"houseoflove/internal/cart"
	"houseoflove/internal/profile"
)

type Handler struct {
	Service *Service
	Carts   cart.StoreFunc
}

func NewHandler(svc *Service, carts cart.StoreFunc) *Handler {
	return &Handler{Service: svc, Carts: carts}
}

// RegisterRoutes mounts POST /checkout; rg must run the profile middleware.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.checkout)
}

// RegisterUserRoutes mounts the order history; rg must run auth.
func (h *Handler) RegisterUserRoutes(rg *gin.RouterGroup) {
	rg.GET("/orders", h.listMine)
}

func (h *Handler) checkout(c *gin.Context) {
	var cust Customer
	if err := c.ShouldBindJSON(&cust); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and a valid email required"})
		return
	}

	profileID := profile.MustGetID(c)
	s, err := h.Carts(c.Request.Context(), profileID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "load cart failed"})
		return
	}

	var userID string
	if claims := auth.MustGetClaims(c); claims != nil {
		userID = claims.UserID
	}

	res, err := h.Service.Checkout(c.Request.Context(), s, profileID, userID, cust)
	if errors.Is(err, ErrEmptyCart) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil && res.Order.Number == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "checkout failed"})
		return
	}

	body := gin.H{"order": res.Order}
	status := http.StatusCreated
	if res.CartWarning != nil {
		body["warning"] = res.CartWarning.Error()
	}
	if res.Notification != nil {
		// the order stands; only the notifications need a retry
		body["notification_error"] = res.Notification.Error()
		status = http.StatusAccepted
	}
	c.JSON(status, body)
}

func (h *Handler) listMine(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	limit := parseInt(c.Query("limit"), 20)
	offset := parseInt(c.Query("offset"), 0)

	orders, total, err := h.Service.Repo.ListByUser(c.Request.Context(), claims.UserID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total":  total,
		"limit":  limit,
		"offset": offset,
		"items":  orders,
	})
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
