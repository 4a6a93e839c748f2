package models

import "time"

// Reservation types. Widening this enum is a schema migration, not a
// runtime choice.
const (
	TypeBilletAvion = "billet_avion"
	TypeHotel       = "hotel"
	TypeVoiture     = "voiture"
	TypeEvenement   = "evenement"
	TypeForfait     = "forfait"
	TypeAssurance   = "assurance"
)

const (
	StatutEnAttente = "en_attente"
	StatutConfirmee = "confirmee"
	StatutAnnulee   = "annulee"
)

func ValidType(t string) bool {
	switch t {
	case TypeBilletAvion, TypeHotel, TypeVoiture, TypeEvenement, TypeForfait, TypeAssurance:
		return true
	}
	return false
}

// Reservation is the aggregate root for one sale. ProduitID and ForfaitID
// are mutually exclusive; which one (if any) is set depends on Type.
// PassengerID denormalizes the primary traveler for billet_avion/assurance.
type Reservation struct {
	ID               int64      `json:"id"`
	ClientID         int64      `json:"client_id"`
	PassengerID      int64      `json:"passenger_id,omitempty"`
	ProduitID        int64      `json:"produit_id,omitempty"`
	ForfaitID        int64      `json:"forfait_id,omitempty"`
	Type             string     `json:"type"`
	Reference        string     `json:"reference"`
	ImportHash       string     `json:"import_hash,omitempty"`
	ImportSource     string     `json:"import_source,omitempty"`
	Statut           string     `json:"statut"`
	NombrePersonnes  int        `json:"nombre_personnes"`
	MontantSousTotal float64    `json:"montant_sous_total"`
	MontantTaxes     float64    `json:"montant_taxes"`
	MontantTotal     float64    `json:"montant_total"`
	Notes            string     `json:"notes,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	DeletedAt        *time.Time `json:"deleted_at,omitempty"`
}

// TypeLabel renders the human label used on devis/factures.
func (r Reservation) TypeLabel() string {
	switch r.Type {
	case TypeBilletAvion:
		return "Billet d'avion"
	case TypeHotel:
		return "Hôtel"
	case TypeVoiture:
		return "Location de voiture"
	case TypeEvenement:
		return "Événement"
	case TypeForfait:
		return "Forfait"
	case TypeAssurance:
		return "Assurance voyage"
	default:
		return "Inconnu"
	}
}

const (
	RolePassenger   = "passenger"
	RoleBeneficiary = "beneficiary"
	RoleParticipant = "participant"
)

type Participant struct {
	ID            int64     `json:"id"`
	ReservationID int64     `json:"reservation_id"`
	Role          string    `json:"role"`
	Nom           string    `json:"nom"`
	Prenom        string    `json:"prenom,omitempty"`
	Age           *int      `json:"age,omitempty"`
	Sexe          string    `json:"sexe,omitempty"`
	Passeport     string    `json:"passeport,omitempty"`
	Remarques     string    `json:"remarques,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// FlightDetail is one-to-one with a billet_avion reservation. Columns are
// nullable for update flexibility; the engine requires the cities when it
// creates or materially edits flight info.
type FlightDetail struct {
	ID            int64  `json:"id"`
	ReservationID int64  `json:"reservation_id"`
	VilleDepart   string `json:"ville_depart"`
	VilleArrivee  string `json:"ville_arrivee"`
	DateDepart    string `json:"date_depart,omitempty"`
	DateArrivee   string `json:"date_arrivee,omitempty"`
	Compagnie     string `json:"compagnie,omitempty"`
	PNR           string `json:"pnr,omitempty"`
	Classe        string `json:"classe,omitempty"`
}

// AssuranceDetail is one-to-one with an assurance reservation.
type AssuranceDetail struct {
	ID            int64  `json:"id"`
	ReservationID int64  `json:"reservation_id"`
	Libelle       string `json:"libelle"`
	DateDebut     string `json:"date_debut"`
	DateFin       string `json:"date_fin,omitempty"`
}
