package book

import (
	"regexp"
	"slices"
	"strings"
	"time"

	"houseoflove/internal/catalog"
	"houseoflove/pkg/models"
)

const (
	Pages       = catalog.PageCount
	LastPage    = Pages - 1
	DefaultText = "Add your message here..."
)

var (
	Fonts   = []string{"font-fredoka", "font-roboto", "font-poppins", "font-montserrat", "font-opensans"}
	Sizes   = []string{"text-lg", "text-xl", "text-2xl", "text-3xl"}
	Weights = []string{"font-normal", "font-semibold", "font-bold"}

	DefaultStyle     = models.PageStyle{Font: "font-fredoka", Size: "text-2xl", Weight: "font-bold"}
	DefaultPlacement = models.PagePlacement{X: 50, Y: 50}

	colorRe = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
)

// Key identifies one customizable book variant.
type Key struct {
	Category string `json:"category"`
	Type     string `json:"type"`
}

func (k Key) String() string {
	return k.Category + "/" + k.Type
}

func ParseKey(s string) (Key, bool) {
	cat, typ, ok := strings.Cut(s, "/")
	if !ok || cat == "" || typ == "" {
		return Key{}, false
	}
	return Key{Category: cat, Type: typ}, true
}

// Document is the full editable state of one personalized book. Index i of
// Texts, Positions and Styles all describe page i.
type Document struct {
	CurrentPage int                         `json:"currentPage"`
	Texts       [Pages]string               `json:"texts"`
	Positions   [Pages]models.PagePlacement `json:"positions"`
	Styles      [Pages]models.PageStyle     `json:"styles"`
	UpdatedAt   time.Time                   `json:"updatedAt"`
}

// NewDocument returns the default document; seed replaces the placeholder
// text when non-nil.
func NewDocument(seed *[Pages]string) Document {
	var d Document
	for i := range Pages {
		d.Texts[i] = DefaultText
		d.Positions[i] = DefaultPlacement
		d.Styles[i] = DefaultStyle
	}
	if seed != nil {
		d.Texts = *seed
	}
	return d
}

// StylePatch carries the style fields to change; nil fields are left alone.
type StylePatch struct {
	Font   *string `json:"font,omitempty"`
	Size   *string `json:"size,omitempty"`
	Weight *string `json:"weight,omitempty"`
	Color  *string `json:"color,omitempty"`
}

// Apply merges p into s. Unsupported tokens are ignored.
func (p StylePatch) Apply(s models.PageStyle) models.PageStyle {
	if p.Font != nil && slices.Contains(Fonts, *p.Font) {
		s.Font = *p.Font
	}
	if p.Size != nil && slices.Contains(Sizes, *p.Size) {
		s.Size = *p.Size
	}
	if p.Weight != nil && slices.Contains(Weights, *p.Weight) {
		s.Weight = *p.Weight
	}
	if p.Color != nil {
		c := strings.TrimSpace(*p.Color)
		if c == "" || colorRe.MatchString(c) {
			s.Color = strings.ToLower(c)
		}
	}
	return s
}

// Bounds is the coordinate range a placement is clamped into. The
// canonical range is percent of the page image, 100x100.
type Bounds struct {
	Width  float64
	Height float64
}

var PercentBounds = Bounds{Width: 100, Height: 100}

func (b Bounds) Clamp(p models.PagePlacement) models.PagePlacement {
	return models.PagePlacement{X: clamp(p.X, 0, b.Width), Y: clamp(p.Y, 0, b.Height)}
}

// normalize repairs a document read back from storage.
func normalize(d *Document, b Bounds) {
	d.CurrentPage = clampPage(d.CurrentPage)
	for i := range Pages {
		d.Positions[i] = b.Clamp(d.Positions[i])
		s := &d.Styles[i]
		if !slices.Contains(Fonts, s.Font) {
			s.Font = DefaultStyle.Font
		}
		if !slices.Contains(Sizes, s.Size) {
			s.Size = DefaultStyle.Size
		}
		if !slices.Contains(Weights, s.Weight) {
			s.Weight = DefaultStyle.Weight
		}
		if s.Color != "" && !colorRe.MatchString(s.Color) {
			s.Color = ""
		}
	}
}

func clampPage(p int) int {
	if p < 0 {
		return 0
	}
	if p > LastPage {
		return LastPage
	}
	return p
}

func clamp(v, lo, hi float64) float64 {
	// NaN compares false everywhere; pin it to the lower bound
	if v != v || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
