package catalog

import "time"

// Meal is one entry of the FitMeat menu. Price is in paise.
type Meal struct {
	ID          int64     `json:"id"`
	Category    string    `json:"category"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       int64     `json:"price"`
	Protein     int       `json:"protein"`
	IsVeg       bool      `json:"is_veg"`
	ImageURL    string    `json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
}
