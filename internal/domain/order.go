package domain

// OrderLine is one persisted line item of a completed order.
type OrderLine struct {
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"price"`
}

// Order is a completed order as stored in and read back from the record store.
type Order struct {
	PK         string
	SK         string
	OrderID    string      `json:"order_id"`
	CustomerID string      `json:"-"`
	SessionID  string      `json:"-"`
	Total      float64     `json:"total"`
	Status     string      `json:"status"`
	PlacedAt   string      `json:"date"`
	Lines      []OrderLine `json:"items"`
}

// Customer is a registered account record.
type Customer struct {
	PK           string
	SK           string
	CustomerID   string `json:"customer_id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone,omitempty"`
	PasswordHash string `json:"-"`
	CreatedAt    string `json:"-"`
}
