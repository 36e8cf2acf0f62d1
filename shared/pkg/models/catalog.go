package models

// Category and Review are part of the storage schema but not used by the
// order workflow.

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Review struct {
	ID        int64  `json:"id"`
	ProductID int64  `json:"product_id"`
	UserID    int64  `json:"user_id"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}
