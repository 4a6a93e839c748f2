package models

import "time"

// Produit types. The type is immutable after creation; a mismatch against a
// reservation is a validation error, never a coercion.
const (
	ProduitTypeBilletAvion = "billet_avion"
	ProduitTypeHotel       = "hotel"
	ProduitTypeVoiture     = "voiture"
	ProduitTypeEvenement   = "evenement"
)

type Produit struct {
	ID          int64     `json:"id"`
	Nom         string    `json:"nom"`
	Type        string    `json:"type"`
	Description string    `json:"description,omitempty"`
	PrixBase    float64   `json:"prix_base"`
	Actif       bool      `json:"actif"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Forfait pricing variants. solo/couple carry Prix only; famille carries
// PrixAdulte + PrixEnfant and no Prix. Exactly one shape per type.
const (
	ForfaitSolo    = "solo"
	ForfaitCouple  = "couple"
	ForfaitFamille = "famille"
)

type Forfait struct {
	ID                 int64     `json:"id"`
	Nom                string    `json:"nom"`
	Description        string    `json:"description,omitempty"`
	EventID            int64     `json:"event_id"`
	Type               string    `json:"type"`
	Prix               *float64  `json:"prix,omitempty"`
	PrixAdulte         *float64  `json:"prix_adulte,omitempty"`
	PrixEnfant         *float64  `json:"prix_enfant,omitempty"`
	NombreMaxPersonnes int       `json:"nombre_max_personnes"`
	Actif              bool      `json:"actif"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}
