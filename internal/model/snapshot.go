package model

type Platform string

const (
	PlatformSteam Platform = "steam"
	PlatformOther Platform = "other"
)

// PriceSnapshot is a normalized point-in-time price record for a storefront
// item. Prices are in the storefront's minor currency unit, 0 means the
// storefront listed no price (free or unpriced).
type PriceSnapshot struct {
	Platform        Platform `json:"platform"`
	Identifier      string   `json:"identifier"`
	Name            string   `json:"name"`
	URL             string   `json:"url"`
	Description     string   `json:"description,omitempty"`
	DiscountPercent int      `json:"discount_percent"`
	FinalPrice      int      `json:"final_price"`
	OriginalPrice   int      `json:"original_price"`
}

// Deal is a storefront-curated discount entry, as returned by the
// specials/discounts listings.
type Deal struct {
	Platform        Platform `json:"platform"`
	Identifier      string   `json:"identifier,omitempty"`
	Name            string   `json:"name"`
	URL             string   `json:"url"`
	DiscountPercent int      `json:"discount_percent"`
	FinalPrice      int      `json:"final_price"`
	OriginalPrice   int      `json:"original_price"`
}

// SaleEvent is a recurring major storefront sale with no fixed date.
type SaleEvent struct {
	Platform Platform `json:"platform"`
	Name     string   `json:"name"`
}
