package plans

type Plan struct {
	ID              uint    `gorm:"primaryKey" json:"id"`
	Name            string  `json:"name"`
	PriceEUR        float64 `json:"price_eur"`
	StripePriceID   string  `gorm:"column:stripe_price_id;not null;uniqueIndex:idx_plans_stripe_price_id" json:"stripe_price_id"`
	StripeProductID string  `gorm:"column:stripe_product_id;index" json:"stripe_product_id"`
	Interval        string  `json:"interval"`
	Tier            string  `gorm:"column:tier" json:"tier"` // "free" | "family" | "premium"

	// ArtworkLimit caps artworks per family. 0 falls back to the tier default.
	ArtworkLimit int `gorm:"column:artwork_limit;not null;default:0" json:"artwork_limit"`
}
