package entity

import "time"

// Promotion ties one priced line item of a flyer to a catalog product.
type Promotion struct {
	ID                int64     `json:"id"`
	FlyerID           int64     `json:"flyer_id"`
	ProductID         int64     `json:"product_id"`
	PriceAmount       float64   `json:"price_amount"`
	StandardizedUnit  string    `json:"standardized_unit"`
	StandardizedValue float64   `json:"standardized_value"`
	PricePerUnit      float64   `json:"price_per_unit"`
	CreatedAt         time.Time `json:"created_at"`
}

// PromotionRow is the joined view used by exports: one promotion together
// with its flyer and catalog product columns.
type PromotionRow struct {
	MerchantName      string
	PromotionExpiry   *string
	ProductName       string
	Brand             string
	PriceAmount       float64
	StandardizedUnit  string
	StandardizedValue float64
	PricePerUnit      float64
	ArtifactPath      string
	CreatedAt         time.Time
}
