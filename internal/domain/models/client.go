package models

import "time"

type Client struct {
	ID        int64      `json:"id"`
	Nom       string     `json:"nom"`
	Prenom    string     `json:"prenom"`
	Email     string     `json:"email,omitempty"`
	Telephone string     `json:"telephone,omitempty"`
	Adresse   string     `json:"adresse,omitempty"`
	Pays      string     `json:"pays,omitempty"`
	Notes     string     `json:"notes,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}
