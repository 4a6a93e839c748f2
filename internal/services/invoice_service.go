package services

import (
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	intconfig "univtours/internal/config"
	intdb "univtours/internal/db"
	"univtours/internal/domain"
	"univtours/internal/domain/models"
	"univtours/internal/repositories"
	"univtours/internal/utils"
)

// payEpsilon absorbs floating rounding when comparing paid against total.
const payEpsilon = 1e-5

// PayMeta is the read-side view of an invoice's payment progress. Label and
// facture.statut are derived from the same thresholds; both go through
// ComputePayMeta so the rule lives in one place.
type PayMeta struct {
	Total     float64 `json:"total"`
	Paid      float64 `json:"paid"`
	Remaining float64 `json:"remaining"`
	Percent   int     `json:"percent"`
	Label     string  `json:"label"`
}

const (
	LabelNonPaye           = "NON PAYÉ"
	LabelPartiellementPaye = "PARTIELLEMENT PAYÉ"
	LabelPaye              = "PAYÉ"
)

// ComputePayMeta aggregates received payments against the total. Paid is
// clamped to [0, total] for display; overpayment stays as-is in the rows.
func ComputePayMeta(total float64, paiements []models.Paiement) PayMeta {
	paid := 0.0
	for _, p := range paiements {
		if p.Statut == models.PaiementRecu {
			paid += p.Montant
		}
	}
	if paid < 0 {
		paid = 0
	}
	if total > 0 && paid > total {
		paid = total
	}

	remaining := total - paid
	if remaining < 0 {
		remaining = 0
	}

	percent := 0
	if total > 0 {
		percent = int(math.Round(paid / total * 100))
	}

	label := LabelNonPaye
	switch {
	case paid <= payEpsilon:
		label = LabelNonPaye
	case paid+payEpsilon < total:
		label = LabelPartiellementPaye
	default:
		label = LabelPaye
	}

	return PayMeta{Total: total, Paid: paid, Remaining: remaining, Percent: percent, Label: label}
}

// statutForPaid maps a paid amount onto a facture status, never downgrading
// the current one when nothing has been received.
func statutForPaid(current string, paid, total float64) string {
	if paid <= 0 {
		return current
	}
	if paid+payEpsilon >= total {
		return models.FacturePayeTotalement
	}
	return models.FacturePayePartiellement
}

// InvoiceService guarantees a confirmed reservation has exactly one active
// facture and reconciles facture status as paiements arrive.
type InvoiceService struct {
	FactureRepo  repositories.FactureRepo
	PaiementRepo repositories.PaiementRepo
	DB           *sql.DB
	RequestID    string
	Now          func() time.Time
}

func (s InvoiceService) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

func (s InvoiceService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// EnsureFactureEmise is idempotent: an existing facture is reused (promoted
// from brouillon to emis if needed), otherwise one is created mirroring the
// reservation's montants. Refuses cancelled reservations. Runs on whatever
// querier the repos are bound to, so the engine can call it mid-transaction.
func (s InvoiceService) EnsureFactureEmise(res models.Reservation) (models.Facture, error) {
	if res.Statut == models.StatutAnnulee {
		return models.Facture{}, domain.StateError{Resource: "reservation", Status: res.Statut,
			Msg: "impossible de facturer une réservation annulée"}
	}

	facture, found, err := s.FactureRepo.LatestByReservation(res.ID)
	if err != nil {
		return models.Facture{}, err
	}
	// A voided facture is never resurrected; issuance starts over.
	if found && facture.Statut == models.FactureAnnule {
		found = false
	}

	if !found {
		sousTotal := res.MontantSousTotal
		if sousTotal == 0 {
			sousTotal = res.MontantTotal
		}
		facture = models.Facture{
			ReservationID:    res.ID,
			Numero:           GenerateFactureNumero(s.now()),
			DateFacture:      utils.FormatDate(s.now()),
			MontantSousTotal: sousTotal,
			MontantTaxes:     res.MontantTaxes,
			MontantTotal:     res.MontantTotal,
			Statut:           models.FactureBrouillon,
		}
		id, err := s.FactureRepo.Insert(facture)
		if err != nil {
			return models.Facture{}, err
		}
		facture.ID = id
	}

	if facture.Statut == models.FactureBrouillon {
		if err := s.FactureRepo.UpdateStatut(facture.ID, models.FactureEmis); err != nil {
			return models.Facture{}, err
		}
		facture.Statut = models.FactureEmis
	}

	utils.LogEvent(s.RequestID, "facture", "ensure_emise",
		fmt.Sprintf("reservation_id=%d facture_id=%d numero=%s", res.ID, facture.ID, facture.Numero))
	return facture, nil
}

// EmettreFacture promotes a brouillon to emis. Already-issued (or paid)
// factures are returned as-is; a cancelled one is refused.
func (s InvoiceService) EmettreFacture(factureID int64) (models.Facture, error) {
	facture, err := s.FactureRepo.GetByID(factureID)
	if err != nil {
		return models.Facture{}, err
	}
	if facture.Statut == models.FactureAnnule {
		return models.Facture{}, domain.StateError{Resource: "facture", Status: facture.Statut,
			Msg: "impossible d'émettre une facture annulée"}
	}
	if facture.Statut == models.FactureBrouillon {
		if err := s.FactureRepo.UpdateStatut(facture.ID, models.FactureEmis); err != nil {
			return models.Facture{}, err
		}
		facture.Statut = models.FactureEmis
	}
	utils.LogEvent(s.RequestID, "facture", "emettre",
		fmt.Sprintf("facture_id=%d statut=%s", facture.ID, facture.Statut))
	return facture, nil
}

// AnnulerFacture voids a facture. A facture with received payments cannot be
// voided; the money has to be reversed first. Idempotent on an already
// cancelled facture.
func (s InvoiceService) AnnulerFacture(factureID int64) (models.Facture, error) {
	var facture models.Facture
	err := intdb.WithTx(s.db(), func(tx *sql.Tx) error {
		factures := repositories.FactureRepo{Q: tx}
		paiements := repositories.PaiementRepo{Q: tx}

		var err error
		facture, err = factures.GetByID(factureID)
		if err != nil {
			return err
		}
		if facture.Statut == models.FactureAnnule {
			return nil
		}
		paid, err := paiements.SumRecuByFacture(facture.ID)
		if err != nil {
			return err
		}
		if paid > payEpsilon {
			return domain.StateError{Resource: "facture", Status: facture.Statut,
				Msg: "impossible d'annuler une facture avec des paiements reçus"}
		}
		if err := factures.UpdateStatut(facture.ID, models.FactureAnnule); err != nil {
			return err
		}
		facture.Statut = models.FactureAnnule
		return nil
	})
	if err != nil {
		return models.Facture{}, err
	}
	utils.LogEvent(s.RequestID, "facture", "annuler",
		fmt.Sprintf("facture_id=%d numero=%s", facture.ID, facture.Numero))
	return facture, nil
}

type PaiementInput struct {
	Montant      float64 `json:"montant"`
	ModePaiement string  `json:"mode_paiement"`
	Reference    string  `json:"reference"`
	Statut       string  `json:"statut"`
	DatePaiement string  `json:"date_paiement"`
	Notes        string  `json:"notes"`
}

// RecordPaiement stores the payment and recomputes the facture status from
// the sum of received payments, inside one transaction.
func (s InvoiceService) RecordPaiement(factureID int64, in PaiementInput) (models.Paiement, models.Facture, error) {
	if in.Montant <= 0 {
		return models.Paiement{}, models.Facture{}, domain.ValidationError{Field: "montant", Msg: "montant doit être positif"}
	}
	if strings.TrimSpace(in.ModePaiement) == "" {
		return models.Paiement{}, models.Facture{}, domain.ValidationError{Field: "mode_paiement", Msg: "mode de paiement requis"}
	}
	statut := in.Statut
	if statut == "" {
		statut = models.PaiementRecu
	}
	switch statut {
	case models.PaiementRecu, models.PaiementEnAttente, models.PaiementEchoue:
	default:
		return models.Paiement{}, models.Facture{}, domain.ValidationError{Field: "statut", Msg: "statut de paiement invalide"}
	}
	datePaiement := strings.TrimSpace(in.DatePaiement)
	if datePaiement == "" {
		datePaiement = utils.FormatDate(s.now())
	} else if _, err := utils.ParseDate(datePaiement); err != nil {
		return models.Paiement{}, models.Facture{}, domain.ValidationError{Field: "date_paiement", Msg: "date invalide"}
	}

	var (
		paiement models.Paiement
		facture  models.Facture
	)
	err := intdb.WithTx(s.db(), func(tx *sql.Tx) error {
		factures := repositories.FactureRepo{Q: tx}
		paiements := repositories.PaiementRepo{Q: tx}

		var err error
		facture, err = factures.GetByID(factureID)
		if err != nil {
			return err
		}
		if facture.Statut == models.FactureAnnule {
			return domain.StateError{Resource: "facture", Status: facture.Statut,
				Msg: "impossible d'enregistrer un paiement sur une facture annulée"}
		}

		paiement = models.Paiement{
			FactureID:    facture.ID,
			Montant:      in.Montant,
			ModePaiement: strings.TrimSpace(in.ModePaiement),
			Reference:    strings.TrimSpace(in.Reference),
			DatePaiement: datePaiement,
			Statut:       statut,
			Notes:        in.Notes,
		}
		id, err := paiements.Insert(paiement)
		if err != nil {
			return err
		}
		paiement.ID = id

		paid, err := paiements.SumRecuByFacture(facture.ID)
		if err != nil {
			return err
		}
		if next := statutForPaid(facture.Statut, paid, facture.MontantTotal); next != facture.Statut {
			if err := factures.UpdateStatut(facture.ID, next); err != nil {
				return err
			}
			facture.Statut = next
		}
		return nil
	})
	if err != nil {
		return models.Paiement{}, models.Facture{}, err
	}

	utils.LogEvent(s.RequestID, "paiement", "record",
		fmt.Sprintf("facture_id=%d montant=%.2f statut_facture=%s", facture.ID, in.Montant, facture.Statut))
	return paiement, facture, nil
}

// PayMetaForFacture loads the facture's payments and derives the read-side
// payment summary.
func (s InvoiceService) PayMetaForFacture(factureID int64) (PayMeta, error) {
	facture, err := s.FactureRepo.GetByID(factureID)
	if err != nil {
		return PayMeta{}, err
	}
	paiements, err := s.PaiementRepo.ListByFacture(factureID)
	if err != nil {
		return PayMeta{}, err
	}
	return ComputePayMeta(facture.MontantTotal, paiements), nil
}
