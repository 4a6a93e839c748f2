package services

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	intconfig "univtours/internal/config"
	intdb "univtours/internal/db"
	"univtours/internal/domain"
	"univtours/internal/domain/models"
	"univtours/internal/repositories"
	"univtours/internal/utils"
)

// createAttempts bounds the retry loop around the reference unique
// constraint. EnsureUnique already suffixes inside the transaction; the
// retry only covers the race where two writers pass the check together.
const createAttempts = 3

type ClientInput struct {
	Nom       string `json:"nom"`
	Prenom    string `json:"prenom"`
	Email     string `json:"email"`
	Telephone string `json:"telephone"`
	Adresse   string `json:"adresse"`
	Pays      string `json:"pays"`
	Notes     string `json:"notes"`
}

type ParticipantInput struct {
	Nom       string `json:"nom"`
	Prenom    string `json:"prenom"`
	Age       *int   `json:"age"`
	Sexe      string `json:"sexe"`
	Passeport string `json:"passeport"`
	Remarques string `json:"remarques"`
}

type FlightInput struct {
	VilleDepart  string `json:"ville_depart"`
	VilleArrivee string `json:"ville_arrivee"`
	DateDepart   string `json:"date_depart"`
	DateArrivee  string `json:"date_arrivee"`
	Compagnie    string `json:"compagnie"`
	PNR          string `json:"pnr"`
	Classe       string `json:"classe"`
}

type AssuranceInput struct {
	Libelle   string `json:"libelle"`
	DateDebut string `json:"date_debut"`
	DateFin   string `json:"date_fin"`
}

// ReservationInput is the tagged creation payload. Which blocks are
// required or forbidden depends on Type; CreateReservation rejects
// off-shape payloads before touching storage.
type ReservationInput struct {
	ClientID          int64              `json:"client_id"`
	Client            *ClientInput       `json:"client"`
	Type              string             `json:"type"`
	Reference         string             `json:"reference"`
	ProduitID         int64              `json:"produit_id"`
	ForfaitID         int64              `json:"forfait_id"`
	Statut            string             `json:"statut"`
	NombrePersonnes   int                `json:"nombre_personnes"`
	MontantSousTotal  float64            `json:"montant_sous_total"`
	MontantTaxes      float64            `json:"montant_taxes"`
	MontantTotal      float64            `json:"montant_total"`
	Notes             string             `json:"notes"`
	PassengerID       int64              `json:"passenger_id"`
	PassengerIsClient bool               `json:"passenger_is_client"`
	Passenger         *ParticipantInput  `json:"passenger"`
	Flight            *FlightInput       `json:"flight_details"`
	Assurance         *AssuranceInput    `json:"assurance_details"`
	Participants      []ParticipantInput `json:"participants"`
}

// ReservationService owns the reservation lifecycle: atomic creation of the
// aggregate (reservation + sub-entities + back-references), partial updates,
// and the en_attente/confirmee/annulee state machine. Every mutating
// operation runs in one transaction.
type ReservationService struct {
	DB        *sql.DB
	RequestID string
	Now       func() time.Time
}

func (s ReservationService) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

// txRepos binds every repository the engine touches to one querier so a
// whole operation shares the transaction.
type txRepos struct {
	clients      repositories.ClientRepo
	produits     repositories.ProduitRepo
	forfaits     repositories.ForfaitRepo
	reservations repositories.ReservationRepo
	participants repositories.ParticipantRepo
	flights      repositories.FlightDetailRepo
	assurances   repositories.AssuranceDetailRepo
	factures     repositories.FactureRepo
	paiements    repositories.PaiementRepo
}

func bindRepos(q intdb.Querier) txRepos {
	return txRepos{
		clients:      repositories.ClientRepo{Q: q},
		produits:     repositories.ProduitRepo{Q: q},
		forfaits:     repositories.ForfaitRepo{Q: q},
		reservations: repositories.ReservationRepo{Q: q},
		participants: repositories.ParticipantRepo{Q: q},
		flights:      repositories.FlightDetailRepo{Q: q},
		assurances:   repositories.AssuranceDetailRepo{Q: q},
		factures:     repositories.FactureRepo{Q: q},
		paiements:    repositories.PaiementRepo{Q: q},
	}
}

func (s ReservationService) invoiceOn(r txRepos) InvoiceService {
	return InvoiceService{FactureRepo: r.factures, PaiementRepo: r.paiements, RequestID: s.RequestID, Now: s.Now}
}

// CreateReservation builds the full aggregate in one transaction and, when
// the reservation lands confirmee (the default), issues its facture. A
// duplicate-key loss on the reference race is retried with a fresh suffix.
func (s ReservationService) CreateReservation(in ReservationInput) (models.Reservation, error) {
	if !models.ValidType(in.Type) {
		return models.Reservation{}, domain.ValidationError{Field: "type", Msg: "type de réservation invalide"}
	}
	statut := in.Statut
	if statut == "" {
		statut = models.StatutConfirmee
	}
	switch statut {
	case models.StatutEnAttente, models.StatutConfirmee:
	default:
		return models.Reservation{}, domain.ValidationError{Field: "statut", Msg: "statut initial invalide"}
	}
	if err := s.validateShape(in); err != nil {
		return models.Reservation{}, err
	}

	var out models.Reservation
	var lastErr error
	for attempt := 0; attempt < createAttempts; attempt++ {
		err := intdb.WithTx(s.db(), func(tx *sql.Tx) error {
			var err error
			out, err = s.createTx(bindRepos(tx), in, statut)
			return err
		})
		if err == nil {
			utils.LogEvent(s.RequestID, "reservation", "create",
				fmt.Sprintf("id=%d reference=%s type=%s statut=%s", out.ID, out.Reference, out.Type, out.Statut))
			return out, nil
		}
		if !intdb.IsDuplicate(err) {
			return models.Reservation{}, err
		}
		lastErr = err
	}
	return models.Reservation{}, domain.ConflictError{Resource: "reservation",
		Msg: "génération de référence épuisée, réessayez", Err: lastErr}
}

// validateShape enforces the type→shape table before any write.
func (s ReservationService) validateShape(in ReservationInput) error {
	requireProduit := in.Type == models.TypeHotel || in.Type == models.TypeVoiture || in.Type == models.TypeEvenement
	if requireProduit && in.ProduitID <= 0 {
		return domain.ValidationError{Field: "produit_id", Msg: "produit requis pour ce type"}
	}
	if !requireProduit && in.ProduitID > 0 {
		return domain.ValidationError{Field: "produit_id", Msg: "produit interdit pour ce type"}
	}
	switch in.Type {
	case models.TypeForfait:
		if in.ForfaitID <= 0 {
			return domain.ValidationError{Field: "forfait_id", Msg: "forfait requis pour ce type"}
		}
	case models.TypeEvenement:
		// forfait optionnel
	default:
		if in.ForfaitID > 0 {
			return domain.ValidationError{Field: "forfait_id", Msg: "forfait interdit pour ce type"}
		}
	}

	switch in.Type {
	case models.TypeBilletAvion:
		if in.Flight == nil {
			return domain.ValidationError{Field: "flight_details", Msg: "détails du vol requis"}
		}
		if strings.TrimSpace(in.Flight.VilleDepart) == "" || strings.TrimSpace(in.Flight.VilleArrivee) == "" {
			return domain.ValidationError{Field: "flight_details", Msg: "villes de départ et d'arrivée requises"}
		}
	case models.TypeAssurance:
		if in.Assurance == nil {
			return domain.ValidationError{Field: "assurance_details", Msg: "détails de l'assurance requis"}
		}
		if strings.TrimSpace(in.Assurance.Libelle) == "" || strings.TrimSpace(in.Assurance.DateDebut) == "" {
			return domain.ValidationError{Field: "assurance_details", Msg: "libellé et date de début requis"}
		}
	}

	if in.Type == models.TypeBilletAvion || in.Type == models.TypeAssurance {
		if in.PassengerIsClient && in.Passenger != nil {
			return domain.ValidationError{Field: "passenger", Msg: "passenger_is_client et bloc passager sont exclusifs"}
		}
	} else if in.Passenger != nil || in.PassengerID > 0 {
		return domain.ValidationError{Field: "passenger", Msg: "passager réservé aux types billet_avion et assurance"}
	}

	switch in.Type {
	case models.TypeVoiture:
		if in.NombrePersonnes > 1 {
			return domain.ValidationError{Field: "nombre_personnes", Msg: "une location de voiture couvre une seule personne"}
		}
		if len(in.Participants) > 0 {
			return domain.ValidationError{Field: "participants", Msg: "participants interdits pour ce type"}
		}
	case models.TypeHotel, models.TypeBilletAvion, models.TypeAssurance:
		if len(in.Participants) > 0 {
			return domain.ValidationError{Field: "participants", Msg: "participants interdits pour ce type"}
		}
	case models.TypeEvenement:
		if in.NombrePersonnes > 1 {
			if want := in.NombrePersonnes - 1; len(in.Participants) != want {
				return domain.ValidationError{Field: "participants",
					Msg: fmt.Sprintf("le nombre de participants doit être %d (nombre_personnes − 1)", want)}
			}
		} else if len(in.Participants) > 0 {
			return domain.ValidationError{Field: "participants", Msg: "participants autorisés seulement si nombre_personnes > 1"}
		}
	}
	return nil
}

func (s ReservationService) resolveClient(r txRepos, in ReservationInput) (models.Client, error) {
	if in.ClientID > 0 {
		return r.clients.GetByID(in.ClientID)
	}
	if in.Client == nil {
		return models.Client{}, domain.ValidationError{Field: "client", Msg: "client_id ou bloc client requis"}
	}
	if strings.TrimSpace(in.Client.Nom) == "" {
		return models.Client{}, domain.ValidationError{Field: "client.nom", Msg: "nom du client requis"}
	}
	if email := strings.TrimSpace(in.Client.Email); email != "" {
		if existing, found, err := r.clients.GetByEmail(email); err != nil {
			return models.Client{}, err
		} else if found {
			return existing, nil
		}
	}
	c := models.Client{
		Nom:       strings.TrimSpace(in.Client.Nom),
		Prenom:    strings.TrimSpace(in.Client.Prenom),
		Email:     strings.TrimSpace(in.Client.Email),
		Telephone: in.Client.Telephone,
		Adresse:   in.Client.Adresse,
		Pays:      in.Client.Pays,
		Notes:     in.Client.Notes,
	}
	id, err := r.clients.Create(c)
	if err != nil {
		return models.Client{}, err
	}
	c.ID = id
	return c, nil
}

func (s ReservationService) createTx(r txRepos, in ReservationInput, statut string) (models.Reservation, error) {
	client, err := s.resolveClient(r, in)
	if err != nil {
		return models.Reservation{}, err
	}

	// Referenced rows must exist and, for produits, carry the matching type.
	if in.ProduitID > 0 {
		produit, err := r.produits.GetByID(in.ProduitID)
		if err != nil {
			return models.Reservation{}, err
		}
		if produit.Type != in.Type {
			return models.Reservation{}, domain.ValidationError{Field: "produit_id",
				Msg: fmt.Sprintf("le produit est de type '%s', la réservation de type '%s'", produit.Type, in.Type)}
		}
	}
	if in.ForfaitID > 0 {
		if _, err := r.forfaits.GetByID(in.ForfaitID); err != nil {
			return models.Reservation{}, err
		}
	}

	sousTotal := in.MontantSousTotal
	if sousTotal == 0 {
		sousTotal = in.MontantTotal
	}
	taxes := in.MontantTaxes
	total := in.MontantTotal
	if total == 0 {
		total = sousTotal + taxes
	}

	nombre := in.NombrePersonnes
	if nombre <= 0 {
		nombre = 1
	}

	pnr := ""
	if in.Flight != nil {
		pnr = in.Flight.PNR
	}
	refs := ReferenceService{Repo: r.reservations, Now: s.Now}
	reference, err := refs.MakeReference(in.Type, in.Reference, pnr)
	if err != nil {
		return models.Reservation{}, err
	}

	rv := models.Reservation{
		ClientID:         client.ID,
		ProduitID:        in.ProduitID,
		ForfaitID:        in.ForfaitID,
		Type:             in.Type,
		Reference:        reference,
		Statut:           statut,
		NombrePersonnes:  nombre,
		MontantSousTotal: sousTotal,
		MontantTaxes:     taxes,
		MontantTotal:     total,
		Notes:            in.Notes,
	}
	rv.ID, err = r.reservations.Insert(rv, "")
	if err != nil {
		return models.Reservation{}, err
	}

	switch in.Type {
	case models.TypeBilletAvion:
		d := models.FlightDetail{
			ReservationID: rv.ID,
			VilleDepart:   strings.TrimSpace(in.Flight.VilleDepart),
			VilleArrivee:  strings.TrimSpace(in.Flight.VilleArrivee),
			DateDepart:    in.Flight.DateDepart,
			DateArrivee:   in.Flight.DateArrivee,
			Compagnie:     in.Flight.Compagnie,
			PNR:           strings.ToUpper(strings.TrimSpace(in.Flight.PNR)),
			Classe:        in.Flight.Classe,
		}
		if err := r.flights.Upsert(d, ""); err != nil {
			return models.Reservation{}, err
		}
		if rv.PassengerID, err = s.attachTraveler(r, rv, client, in, models.RolePassenger); err != nil {
			return models.Reservation{}, err
		}
	case models.TypeAssurance:
		d := models.AssuranceDetail{
			ReservationID: rv.ID,
			Libelle:       strings.TrimSpace(in.Assurance.Libelle),
			DateDebut:     in.Assurance.DateDebut,
			DateFin:       in.Assurance.DateFin,
		}
		if err := r.assurances.Upsert(d); err != nil {
			return models.Reservation{}, err
		}
		if rv.PassengerID, err = s.attachTraveler(r, rv, client, in, models.RoleBeneficiary); err != nil {
			return models.Reservation{}, err
		}
	case models.TypeForfait, models.TypeEvenement:
		if err := s.insertCompanions(r, rv.ID, in.Participants); err != nil {
			return models.Reservation{}, err
		}
	}

	if rv.Statut == models.StatutConfirmee {
		if _, err := s.invoiceOn(r).EnsureFactureEmise(rv); err != nil {
			return models.Reservation{}, err
		}
	}
	return rv, nil
}

// attachTraveler resolves the primary traveler for billet_avion/assurance:
// explicit passenger_id wins, then an inline bloc, then the client's own
// name. The participant id is linked back onto the reservation row.
func (s ReservationService) attachTraveler(r txRepos, rv models.Reservation, client models.Client, in ReservationInput, role string) (int64, error) {
	var (
		id  int64
		err error
	)
	switch {
	case in.PassengerID > 0:
		p, err := r.participants.GetByID(in.PassengerID)
		if err != nil {
			return 0, err
		}
		if p.ReservationID != rv.ID {
			return 0, domain.ValidationError{Field: "passenger_id", Msg: "le passager n'appartient pas à cette réservation"}
		}
		id = p.ID
	case in.Passenger != nil:
		if strings.TrimSpace(in.Passenger.Nom) == "" {
			return 0, domain.ValidationError{Field: "passenger.nom", Msg: "nom du passager requis"}
		}
		id, err = r.participants.Insert(models.Participant{
			ReservationID: rv.ID,
			Role:          role,
			Nom:           strings.TrimSpace(in.Passenger.Nom),
			Prenom:        strings.TrimSpace(in.Passenger.Prenom),
			Age:           in.Passenger.Age,
			Sexe:          in.Passenger.Sexe,
			Passeport:     in.Passenger.Passeport,
			Remarques:     in.Passenger.Remarques,
		}, "")
		if err != nil {
			return 0, err
		}
	default:
		// Client voyage pour lui-même.
		id, err = r.participants.Insert(models.Participant{
			ReservationID: rv.ID,
			Role:          role,
			Nom:           client.Nom,
			Prenom:        client.Prenom,
		}, "")
		if err != nil {
			return 0, err
		}
	}
	if err := r.reservations.SetPassengerID(rv.ID, id); err != nil {
		return 0, err
	}
	return id, nil
}

func (s ReservationService) insertCompanions(r txRepos, reservationID int64, participants []ParticipantInput) error {
	for i, p := range participants {
		if strings.TrimSpace(p.Nom) == "" {
			return domain.ValidationError{Field: fmt.Sprintf("participants[%d].nom", i), Msg: "nom requis"}
		}
		_, err := r.participants.Insert(models.Participant{
			ReservationID: reservationID,
			Role:          models.RoleParticipant,
			Nom:           strings.TrimSpace(p.Nom),
			Prenom:        strings.TrimSpace(p.Prenom),
			Age:           p.Age,
			Sexe:          p.Sexe,
			Passeport:     p.Passeport,
			Remarques:     p.Remarques,
		}, "")
		if err != nil {
			return err
		}
	}
	return nil
}

// ReservationUpdateInput is a partial patch: nil fields are left alone.
// Flight/Assurance blocks, when present, replace the stored block (cities
// respectively libellé/date_début stay mandatory). Participants, when
// present, fully replace companion rows; passenger/beneficiary records are
// never touched by this path.
type ReservationUpdateInput struct {
	ClientID         *int64              `json:"client_id"`
	ProduitID        *int64              `json:"produit_id"`
	ForfaitID        *int64              `json:"forfait_id"`
	Statut           *string             `json:"statut"`
	NombrePersonnes  *int                `json:"nombre_personnes"`
	MontantSousTotal *float64            `json:"montant_sous_total"`
	MontantTaxes     *float64            `json:"montant_taxes"`
	MontantTotal     *float64            `json:"montant_total"`
	Notes            *string             `json:"notes"`
	Flight           *FlightInput        `json:"flight_details"`
	Assurance        *AssuranceInput     `json:"assurance_details"`
	Participants     *[]ParticipantInput `json:"participants"`
}

// UpdateReservation applies a partial patch in one transaction. Statut
// changes go through the same state machine as Confirm/Cancel; if the
// reservation is (or becomes) confirmee the facture is (re-)ensured,
// idempotently.
func (s ReservationService) UpdateReservation(id int64, in ReservationUpdateInput) (models.Reservation, error) {
	var out models.Reservation
	err := intdb.WithTx(s.db(), func(tx *sql.Tx) error {
		r := bindRepos(tx)
		rv, err := r.reservations.GetByID(id)
		if err != nil {
			return err
		}
		if rv.Statut == models.StatutAnnulee {
			return domain.StateError{Resource: "reservation", Status: rv.Statut,
				Msg: "une réservation annulée ne peut plus être modifiée"}
		}

		if in.Statut != nil && *in.Statut != rv.Statut {
			if err := checkTransition(rv.Statut, *in.Statut); err != nil {
				return err
			}
		}
		if in.ClientID != nil {
			if _, err := r.clients.GetByID(*in.ClientID); err != nil {
				return err
			}
		}
		if in.ProduitID != nil && *in.ProduitID > 0 {
			requireProduit := rv.Type == models.TypeHotel || rv.Type == models.TypeVoiture || rv.Type == models.TypeEvenement
			if !requireProduit {
				return domain.ValidationError{Field: "produit_id", Msg: "produit interdit pour ce type"}
			}
			produit, err := r.produits.GetByID(*in.ProduitID)
			if err != nil {
				return err
			}
			if produit.Type != rv.Type {
				return domain.ValidationError{Field: "produit_id",
					Msg: fmt.Sprintf("le produit est de type '%s', la réservation de type '%s'", produit.Type, rv.Type)}
			}
		}
		if in.ForfaitID != nil && *in.ForfaitID > 0 {
			if rv.Type != models.TypeForfait && rv.Type != models.TypeEvenement {
				return domain.ValidationError{Field: "forfait_id", Msg: "forfait interdit pour ce type"}
			}
			if _, err := r.forfaits.GetByID(*in.ForfaitID); err != nil {
				return err
			}
		}

		if in.Flight != nil {
			if rv.Type != models.TypeBilletAvion {
				return domain.ValidationError{Field: "flight_details", Msg: "détails de vol réservés au type billet_avion"}
			}
			if strings.TrimSpace(in.Flight.VilleDepart) == "" || strings.TrimSpace(in.Flight.VilleArrivee) == "" {
				return domain.ValidationError{Field: "flight_details", Msg: "villes de départ et d'arrivée requises"}
			}
			d := models.FlightDetail{
				ReservationID: rv.ID,
				VilleDepart:   strings.TrimSpace(in.Flight.VilleDepart),
				VilleArrivee:  strings.TrimSpace(in.Flight.VilleArrivee),
				DateDepart:    in.Flight.DateDepart,
				DateArrivee:   in.Flight.DateArrivee,
				Compagnie:     in.Flight.Compagnie,
				PNR:           strings.ToUpper(strings.TrimSpace(in.Flight.PNR)),
				Classe:        in.Flight.Classe,
			}
			if err := r.flights.Upsert(d, ""); err != nil {
				return err
			}
		}
		if in.Assurance != nil {
			if rv.Type != models.TypeAssurance {
				return domain.ValidationError{Field: "assurance_details", Msg: "détails d'assurance réservés au type assurance"}
			}
			if strings.TrimSpace(in.Assurance.Libelle) == "" || strings.TrimSpace(in.Assurance.DateDebut) == "" {
				return domain.ValidationError{Field: "assurance_details", Msg: "libellé et date de début requis"}
			}
			d := models.AssuranceDetail{
				ReservationID: rv.ID,
				Libelle:       strings.TrimSpace(in.Assurance.Libelle),
				DateDebut:     in.Assurance.DateDebut,
				DateFin:       in.Assurance.DateFin,
			}
			if err := r.assurances.Upsert(d); err != nil {
				return err
			}
		}

		if in.Participants != nil {
			if rv.Type != models.TypeForfait && rv.Type != models.TypeEvenement {
				return domain.ValidationError{Field: "participants", Msg: "participants réservés aux types forfait et evenement"}
			}
			nombre := rv.NombrePersonnes
			if in.NombrePersonnes != nil {
				nombre = *in.NombrePersonnes
			}
			if rv.Type == models.TypeEvenement {
				if nombre > 1 {
					if want := nombre - 1; len(*in.Participants) != want {
						return domain.ValidationError{Field: "participants",
							Msg: fmt.Sprintf("le nombre de participants doit être %d (nombre_personnes − 1)", want)}
					}
				} else if len(*in.Participants) > 0 {
					return domain.ValidationError{Field: "participants", Msg: "participants autorisés seulement si nombre_personnes > 1"}
				}
			}
			if err := r.participants.DeleteCompanions(rv.ID); err != nil {
				return err
			}
			if err := s.insertCompanions(r, rv.ID, *in.Participants); err != nil {
				return err
			}
		}

		patch := repositories.ReservationPatch{
			ClientID:         in.ClientID,
			ProduitID:        in.ProduitID,
			ForfaitID:        in.ForfaitID,
			Statut:           in.Statut,
			NombrePersonnes:  in.NombrePersonnes,
			MontantSousTotal: in.MontantSousTotal,
			MontantTaxes:     in.MontantTaxes,
			MontantTotal:     in.MontantTotal,
			Notes:            in.Notes,
		}
		if err := r.reservations.Update(rv.ID, patch); err != nil {
			return err
		}

		out, err = r.reservations.GetByID(rv.ID)
		if err != nil {
			return err
		}
		if out.Statut == models.StatutConfirmee {
			if _, err := s.invoiceOn(r).EnsureFactureEmise(out); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.Reservation{}, err
	}
	utils.LogEvent(s.RequestID, "reservation", "update", fmt.Sprintf("id=%d statut=%s", out.ID, out.Statut))
	return out, nil
}

func checkTransition(from, to string) error {
	switch {
	case from == models.StatutEnAttente && to == models.StatutConfirmee:
		return nil
	case from == models.StatutEnAttente && to == models.StatutAnnulee:
		return nil
	}
	return domain.StateError{Resource: "reservation", Status: from,
		Msg: fmt.Sprintf("transition '%s' → '%s' interdite", from, to)}
}

// Confirm moves en_attente → confirmee and ensures the facture exists.
// Confirming an already-confirmed reservation is a no-op returning the same
// facture.
func (s ReservationService) Confirm(id int64) (models.Reservation, models.Facture, error) {
	var (
		rv      models.Reservation
		facture models.Facture
	)
	err := intdb.WithTx(s.db(), func(tx *sql.Tx) error {
		r := bindRepos(tx)
		var err error
		rv, err = r.reservations.GetByID(id)
		if err != nil {
			return err
		}
		if rv.Statut == models.StatutAnnulee {
			return domain.StateError{Resource: "reservation", Status: rv.Statut,
				Msg: "impossible de confirmer une réservation annulée"}
		}
		if rv.Statut == models.StatutEnAttente {
			if err := r.reservations.SetStatut(rv.ID, models.StatutConfirmee); err != nil {
				return err
			}
			rv.Statut = models.StatutConfirmee
		}
		facture, err = s.invoiceOn(r).EnsureFactureEmise(rv)
		return err
	})
	if err != nil {
		return models.Reservation{}, models.Facture{}, err
	}
	utils.LogEvent(s.RequestID, "reservation", "confirm", fmt.Sprintf("id=%d facture=%s", rv.ID, facture.Numero))
	return rv, facture, nil
}

// Cancel is only permitted from en_attente.
func (s ReservationService) Cancel(id int64) (models.Reservation, error) {
	var rv models.Reservation
	err := intdb.WithTx(s.db(), func(tx *sql.Tx) error {
		r := bindRepos(tx)
		var err error
		rv, err = r.reservations.GetByID(id)
		if err != nil {
			return err
		}
		if rv.Statut != models.StatutEnAttente {
			return domain.StateError{Resource: "reservation", Status: rv.Statut,
				Msg: "seule une réservation en attente peut être annulée"}
		}
		if err := r.reservations.SetStatut(rv.ID, models.StatutAnnulee); err != nil {
			return err
		}
		rv.Statut = models.StatutAnnulee
		return nil
	})
	if err != nil {
		return models.Reservation{}, err
	}
	utils.LogEvent(s.RequestID, "reservation", "cancel", fmt.Sprintf("id=%d", rv.ID))
	return rv, nil
}

// Delete soft-deletes the reservation; factures and paiements survive for
// accounting.
func (s ReservationService) Delete(id int64) error {
	repo := repositories.ReservationRepo{Q: s.db()}
	if _, err := repo.GetByID(id); err != nil {
		return err
	}
	if err := repo.SoftDelete(id); err != nil {
		return err
	}
	utils.LogEvent(s.RequestID, "reservation", "delete", fmt.Sprintf("id=%d", id))
	return nil
}

// ReservationDetail is the fully-loaded graph handed to the API and to the
// PDF renderer.
type ReservationDetail struct {
	Reservation  models.Reservation      `json:"reservation"`
	Client       models.Client           `json:"client"`
	Participants []models.Participant    `json:"participants"`
	Flight       *models.FlightDetail    `json:"flight_details,omitempty"`
	Assurance    *models.AssuranceDetail `json:"assurance_details,omitempty"`
	Facture      *models.Facture         `json:"facture,omitempty"`
	Paiements    []models.Paiement       `json:"paiements,omitempty"`
	PayMeta      *PayMeta                `json:"pay_meta,omitempty"`
}

// GetDetail loads the aggregate plus its latest facture and payment summary.
func (s ReservationService) GetDetail(id int64) (ReservationDetail, error) {
	r := bindRepos(s.db())
	rv, err := r.reservations.GetByID(id)
	if err != nil {
		return ReservationDetail{}, err
	}
	client, err := r.clients.GetByID(rv.ClientID)
	if err != nil {
		return ReservationDetail{}, err
	}
	participants, err := r.participants.ListByReservation(rv.ID)
	if err != nil {
		return ReservationDetail{}, err
	}
	detail := ReservationDetail{Reservation: rv, Client: client, Participants: participants}

	if rv.Type == models.TypeBilletAvion {
		if d, found, err := r.flights.GetByReservation(rv.ID); err != nil {
			return ReservationDetail{}, err
		} else if found {
			detail.Flight = &d
		}
	}
	if rv.Type == models.TypeAssurance {
		if d, found, err := r.assurances.GetByReservation(rv.ID); err != nil {
			return ReservationDetail{}, err
		} else if found {
			detail.Assurance = &d
		}
	}

	facture, found, err := r.factures.LatestByReservation(rv.ID)
	if err != nil {
		return ReservationDetail{}, err
	}
	if found {
		detail.Facture = &facture
		paiements, err := r.paiements.ListByFacture(facture.ID)
		if err != nil {
			return ReservationDetail{}, err
		}
		detail.Paiements = paiements
		meta := ComputePayMeta(facture.MontantTotal, paiements)
		detail.PayMeta = &meta
	}
	return detail, nil
}

// List is a thin passthrough kept on the service so handlers never touch
// repositories directly.
func (s ReservationService) List(f repositories.ReservationFilter) ([]models.Reservation, error) {
	return repositories.ReservationRepo{Q: s.db()}.List(f)
}
