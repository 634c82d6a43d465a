package model

// ServiceOffering is one purchasable design service. Price is in minor
// currency units (cents).
type ServiceOffering struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Price       int64  `json:"price"`
	Description string `json:"description"`
	Category    string `json:"category"`
}
