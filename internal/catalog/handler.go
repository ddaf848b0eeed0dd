package catalog

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Catalog *Catalog
}

func NewHandler(c *Catalog) *Handler {
	return &Handler{Catalog: c}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/products", h.listProducts)
	rg.GET("/products/:id", h.getProduct)
	rg.GET("/books", h.listCategories)
	rg.GET("/books/:category", h.getCategory)
}

// listProducts serves the shop page: GET /catalog/products?category=&search=
func (h *Handler) listProducts(c *gin.Context) {
	items := h.Catalog.FilterProducts(c.Query("category"), c.Query("search"))
	c.JSON(http.StatusOK, gin.H{
		"currency":   h.Catalog.Currency,
		"categories": h.Catalog.ProductCategories,
		"total":      len(items),
		"items":      items,
	})
}

func (h *Handler) getProduct(c *gin.Context) {
	p, ok := h.Catalog.Product(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) listCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"book_price": h.Catalog.BookPrice,
		"pages":      PageCount,
		"items":      h.Catalog.Categories,
	})
}

func (h *Handler) getCategory(c *gin.Context) {
	cat, ok := h.Catalog.Category(c.Param("category"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown category"})
		return
	}
	c.JSON(http.StatusOK, cat)
}
