package entity

// MenuItem is a row of the menu_items table.
type MenuItem struct {
	ID       int64   `json:"id" db:"id"`
	Name     string  `json:"name" db:"name"`
	Price    float64 `json:"price" db:"price"`
	Category *string `json:"category" db:"category"`
	ImageURL *string `json:"image_url" db:"image_url"`
	Active   bool    `json:"active" db:"active"`
}
