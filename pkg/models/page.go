package models

// PageStyle is the text style of one book page. Tokens are the storefront's
// CSS utility classes; Color is "#rrggbb" or empty for the theme default.
type PageStyle struct {
	Font   string `json:"font"`
	Size   string `json:"size"`
	Weight string `json:"weight"`
	Color  string `json:"color,omitempty"`
}

// PagePlacement is the anchor of a page's text block, in percent of the
// containing page image.
type PagePlacement struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}
