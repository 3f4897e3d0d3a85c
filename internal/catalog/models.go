package catalog

import "time"

type Category string

const (
	CategoryTruffles Category = "truffles"
	CategoryPralines Category = "pralines"
	CategoryBars     Category = "bars"
	CategoryBonbons  Category = "bonbons"
	CategoryGiftSets Category = "gift-sets"
)

type Nutrition struct {
	Calories float64 `json:"calories"`
	Fat      float64 `json:"fat"`
	Sugar    float64 `json:"sugar"`
	Protein  float64 `json:"protein"`
}

type Product struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Price         float64   `json:"price"`
	OriginalPrice *float64  `json:"originalPrice,omitempty"`
	Category      Category  `json:"category"`
	Ingredients   []string  `json:"ingredients"`
	Nutrition     Nutrition `json:"nutritionalInfo"`
	Images        []string  `json:"images"`
	Rating        float64   `json:"rating"`
	ReviewCount   int       `json:"reviewCount"`
	InStock       bool      `json:"inStock"`
	StockQuantity int       `json:"stockQuantity"`
	Featured      bool      `json:"featured"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
