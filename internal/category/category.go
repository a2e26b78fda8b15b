package category

// Category is a product category derived from the catalog. There is no
// separate category table; a category exists while some product uses it.
type Category struct {
	Name         string `json:"name"`
	ProductCount int    `json:"product_count"`
}
