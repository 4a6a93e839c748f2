package models

import "time"

// Depense is a standalone operational cost, optionally attributed to a
// reservation. It is not part of the reservation lifecycle.
type Depense struct {
	ID             int64     `json:"id"`
	DateDepense    string    `json:"date_depense"`
	Categorie      string    `json:"categorie"`
	Libelle        string    `json:"libelle"`
	FournisseurNom string    `json:"fournisseur_nom,omitempty"`
	Reference      string    `json:"reference,omitempty"`
	Montant        float64   `json:"montant"`
	ModePaiement   string    `json:"mode_paiement,omitempty"`
	Statut         string    `json:"statut"`
	ReservationID  int64     `json:"reservation_id,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}
