package entity

import "time"

// CatalogProduct is a deduplicated (product name, brand) identity shared
// across flyers. Brand is stored as "" when the flyer shows none, so the
// identity key stays total.
type CatalogProduct struct {
	ID          int64     `json:"id"`
	ProductName string    `json:"product_name"`
	Brand       string    `json:"brand"`
	CreatedAt   time.Time `json:"created_at"`
}
