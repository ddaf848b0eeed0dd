package catalog

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"houseoflove/pkg/models"
)

// PageCount is the fixed number of pages in every book.
const PageCount = 8

// AssetRoot prefixes every book page image path.
const AssetRoot = "/images/books"

//go:embed catalog.yaml
var catalogYAML []byte

type BookType struct {
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Cover       string `json:"cover"`
}

type Category struct {
	Slug        string     `json:"slug"`
	Name        string     `json:"name"`
	Title       string     `json:"title"`
	Subtitle    string     `json:"subtitle"`
	Description string     `json:"description"`
	Icon        string     `json:"icon"`
	Emoji       string     `json:"emoji"`
	Types       []BookType `json:"types"`
}

// Catalog is the static product and book data, resolved once at startup.
type Catalog struct {
	Currency          string
	BookPrice         decimal.Decimal
	ProductCategories []models.ProductCategory
	Products          []models.Product
	Categories        []Category

	products   map[string]models.Product
	categories map[string]int
	seeds      map[string][PageCount]string
}

type rawCatalog struct {
	Currency  string `yaml:"currency"`
	BookPrice string `yaml:"book_price"`
	Pages     int    `yaml:"pages"`

	ProductCategories []models.ProductCategory `yaml:"product_categories"`
	Products          []struct {
		ID       string `yaml:"id"`
		Name     string `yaml:"name"`
		Category string `yaml:"category"`
		Price    string `yaml:"price"`
		Image    string `yaml:"image"`
	} `yaml:"products"`
	Categories []struct {
		Slug        string `yaml:"slug"`
		Name        string `yaml:"name"`
		Title       string `yaml:"title"`
		Subtitle    string `yaml:"subtitle"`
		Description string `yaml:"description"`
		Icon        string `yaml:"icon"`
		Emoji       string `yaml:"emoji"`
		Types       []struct {
			Slug        string   `yaml:"slug"`
			Name        string   `yaml:"name"`
			Description string   `yaml:"description"`
			Seed        []string `yaml:"seed"`
		} `yaml:"types"`
	} `yaml:"categories"`
}

// Load parses the embedded catalog.
func Load() (*Catalog, error) {
	return Parse(catalogYAML)
}

func MustLoad() *Catalog {
	c, err := Load()
	if err != nil {
		panic(err)
	}
	return c
}

func Parse(data []byte) (*Catalog, error) {
	var raw rawCatalog
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if raw.Pages != 0 && raw.Pages != PageCount {
		return nil, fmt.Errorf("catalog declares %d pages, books have %d", raw.Pages, PageCount)
	}

	price, err := decimal.NewFromString(raw.BookPrice)
	if err != nil {
		return nil, fmt.Errorf("book_price: %w", err)
	}

	c := &Catalog{
		Currency:   raw.Currency,
		BookPrice:  price,
		products:   make(map[string]models.Product),
		categories: make(map[string]int),
		seeds:      make(map[string][PageCount]string),
	}

	known := make(map[string]bool, len(raw.ProductCategories))
	for _, pc := range raw.ProductCategories {
		known[pc.Slug] = true
	}
	c.ProductCategories = raw.ProductCategories

	for _, p := range raw.Products {
		pp, err := decimal.NewFromString(p.Price)
		if err != nil {
			return nil, fmt.Errorf("product %s price: %w", p.ID, err)
		}
		if p.Category != "" && !known[p.Category] {
			return nil, fmt.Errorf("product %s: unknown category %q", p.ID, p.Category)
		}
		prod := models.Product{ID: p.ID, Name: p.Name, Category: p.Category, Price: pp, Image: p.Image}
		if _, dup := c.products[prod.ID]; dup {
			return nil, fmt.Errorf("duplicate product id %q", prod.ID)
		}
		c.products[prod.ID] = prod
		c.Products = append(c.Products, prod)
	}

	for _, rc := range raw.Categories {
		cat := Category{
			Slug:        rc.Slug,
			Name:        rc.Name,
			Title:       rc.Title,
			Subtitle:    rc.Subtitle,
			Description: rc.Description,
			Icon:        rc.Icon,
			Emoji:       rc.Emoji,
		}
		for _, rt := range rc.Types {
			cat.Types = append(cat.Types, BookType{
				Slug:        rt.Slug,
				Name:        rt.Name,
				Description: rt.Description,
				Cover:       PagePath(rc.Slug, rt.Slug, 0),
			})
			if len(rt.Seed) == 0 {
				continue
			}
			if len(rt.Seed) != PageCount {
				return nil, fmt.Errorf("seed for %s/%s has %d lines, want %d", rc.Slug, rt.Slug, len(rt.Seed), PageCount)
			}
			var seed [PageCount]string
			copy(seed[:], rt.Seed)
			c.seeds[rc.Slug+"/"+rt.Slug] = seed
		}
		c.categories[cat.Slug] = len(c.Categories)
		c.Categories = append(c.Categories, cat)
	}

	return c, nil
}

// FilterProducts returns the products in category whose name contains
// search, ignoring case. Empty arguments do not filter.
func (c *Catalog) FilterProducts(category, search string) []models.Product {
	category = strings.ToLower(strings.TrimSpace(category))
	search = strings.ToLower(strings.TrimSpace(search))
	out := make([]models.Product, 0, len(c.Products))
	for _, p := range c.Products {
		if category != "" && p.Category != category {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (c *Catalog) Product(id string) (models.Product, bool) {
	p, ok := c.products[strings.TrimSpace(id)]
	return p, ok
}

func (c *Catalog) Category(slug string) (Category, bool) {
	i, ok := c.categories[slug]
	if !ok {
		return Category{}, false
	}
	return c.Categories[i], true
}

func (c *Catalog) BookType(category, typ string) (BookType, bool) {
	cat, ok := c.Category(category)
	if !ok {
		return BookType{}, false
	}
	for _, t := range cat.Types {
		if t.Slug == typ {
			return t, true
		}
	}
	return BookType{}, false
}

// BookTitle is the product name shown at checkout, e.g.
// "Birthday Book (Female to Male)". Unknown combinations are "Custom Book".
func (c *Catalog) BookTitle(category, typ string) string {
	cat, ok := c.Category(category)
	if !ok {
		return "Custom Book"
	}
	t, ok := c.BookType(category, typ)
	if !ok {
		return "Custom Book"
	}
	return fmt.Sprintf("%s Book (%s)", cat.Name, t.Name)
}

// SeedTexts returns the template script for a category/type, if it has one.
func (c *Catalog) SeedTexts(category, typ string) ([PageCount]string, bool) {
	s, ok := c.seeds[category+"/"+typ]
	return s, ok
}

// PagePath addresses a page image: /images/books/{category}/{type}/img{page}.png.
func PagePath(category, typ string, page int) string {
	return fmt.Sprintf("%s/%s/%s/img%d.png", AssetRoot, category, typ, page)
}
