package fixture

import "time"

// UserDTO represents a user from an external API.
type UserDTO struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Full_Name string    `json:"full_name"` //nolint:revive
	CreatedAt time.Time `json:"created_at"`
	IsActive  bool      `json:"is_active"`
}

// User represents a user in the internal domain model.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	CreatedAt time.Time `json:"created_at"`
	Active    bool      `json:"active"`
	Password  string    `json:"-"         mapper:"-"`
}

// Address is a postal address.
type Address struct {
	Street string
	City   string
}

// OrderDTO represents an order from an external system.
type OrderDTO struct {
	Order_ID    string   `json:"order_id"` //nolint:revive
	CustomerID  int64    `json:"customer_id"`
	Amount      float64  `json:"amount"`
	Status      string   `json:"status"`
	Shipping    *Address `json:"shipping"`
	Lines       []LineDTO
	WarehouseID string
}

// LineDTO is one order line from the external system.
type LineDTO struct {
	SKU      string
	Quantity int
}

// Order represents an order in the internal domain model.
type Order struct {
	ID         string
	OrderID    string
	CustomerID int64
	TotalCents int64
	Status     string
	City       string
	Lines      []Line
}

// Line is one order line.
type Line struct {
	SKU      string
	Quantity int
}
