package domain

// Product is a catalog entry as served by the product service.
type Product struct {
	ID    string
	Name  string
	Brand string
	Type  string
	Price Money
	Image string
	Stock int
}
