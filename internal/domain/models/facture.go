package models

import "time"

const (
	FactureBrouillon         = "brouillon"
	FactureEmis              = "emis"
	FacturePayePartiellement = "paye_partiellement"
	FacturePayeTotalement    = "paye_totalement"
	FactureAnnule            = "annule"
)

type Facture struct {
	ID               int64     `json:"id"`
	ReservationID    int64     `json:"reservation_id"`
	Numero           string    `json:"numero"`
	DateFacture      string    `json:"date_facture"`
	MontantSousTotal float64   `json:"montant_sous_total"`
	MontantTaxes     float64   `json:"montant_taxes"`
	MontantTotal     float64   `json:"montant_total"`
	Statut           string    `json:"statut"`
	PdfPath          string    `json:"pdf_path,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

const (
	PaiementRecu      = "recu"
	PaiementEnAttente = "en_attente"
	PaiementEchoue    = "echoue"
)

// Paiement belongs to one facture. Only statut=recu rows count toward the
// paid-amount aggregation.
type Paiement struct {
	ID           int64     `json:"id"`
	FactureID    int64     `json:"facture_id"`
	Montant      float64   `json:"montant"`
	ModePaiement string    `json:"mode_paiement"`
	Reference    string    `json:"reference,omitempty"`
	DatePaiement string    `json:"date_paiement"`
	Statut       string    `json:"statut"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
