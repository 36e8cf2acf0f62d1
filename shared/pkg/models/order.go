package models

import "time"

// Order is immutable once created. Email is copied from the request at
// creation time so the confirmation task does not depend on later user edits,
// and TotalPrice is frozen at the prices current when the order was placed.
type Order struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	ProductIDs []int64   `json:"products"`
	Email      string    `json:"email"`
	TotalPrice float64   `json:"total_price"`
	CreatedAt  time.Time `json:"created_at"`
}
