package models

import "time"

// Fournisseur is a supplier the agency buys from; depenses reference one by
// name.
type Fournisseur struct {
	ID          int64     `json:"id"`
	Nom         string    `json:"nom"`
	Email       string    `json:"email"`
	Telephone   string    `json:"telephone,omitempty"`
	SiteWeb     string    `json:"site_web,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
