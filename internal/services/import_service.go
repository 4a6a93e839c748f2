package services

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	intconfig "univtours/internal/config"
	intdb "univtours/internal/db"
	"univtours/internal/domain/models"
	"univtours/internal/repositories"
	"univtours/internal/utils"
)

// maxReportedRowErrors caps the error list in the summary so a garbage file
// does not flood the report.
const maxReportedRowErrors = 20

// ImportSummary is returned by value; counters are never shared state.
type ImportSummary struct {
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`
	DryRun  bool     `json:"dry_run"`
}

func (s *ImportSummary) rowError(rowIndex int, raw, msg string) {
	s.Skipped++
	if len(s.Errors) < maxReportedRowErrors {
		s.Errors = append(s.Errors, fmt.Sprintf("ligne %d: %s (valeur: %q)", rowIndex, msg, raw))
	}
}

// importRow is one parsed spreadsheet line.
type importRow struct {
	index     int
	date      time.Time
	payerNom  string
	payerPre  string
	passNom   string
	passPre   string
	depart    string
	arrivee   string
	reference string
	montant   float64
}

// ImportService is the canonical billet_avion bulk importer: fingerprint
// deduplicated, per-row transactions, forced row timestamps so reporting by
// month follows the travel date rather than the ingestion date.
type ImportService struct {
	DB        *sql.DB
	RequestID string
	Source    string
	Year      int
	Month     int
	DryRun    bool
}

func (s ImportService) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

func (s ImportService) source() string {
	if s.Source != "" {
		return s.Source
	}
	return "import"
}

// ImportFile opens the CSV and runs the batch. A missing or unreadable file
// is the only fatal error; row problems are counted, never fatal.
func (s ImportService) ImportFile(path string) (ImportSummary, error) {
	f, err := os.Open(path)
	if err != nil {
		return ImportSummary{}, err
	}
	defer f.Close()
	return s.ImportReader(f)
}

// ImportReader ingests CSV rows with columns:
// date, payeur, bénéficiaire, ville départ, ville arrivée, référence, montant.
// A header line is detected and skipped when the date column does not parse.
func (s ImportService) ImportReader(src io.Reader) (ImportSummary, error) {
	summary := ImportSummary{DryRun: s.DryRun}

	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	index := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			index++
			summary.rowError(index, "", "ligne CSV illisible")
			continue
		}
		index++

		row, rawDate, perr := s.parseRow(index, record)
		if perr != "" {
			// Header rows land here too: no usable date, skip and count.
			summary.rowError(index, rawDate, perr)
			continue
		}

		if s.DryRun {
			if err := s.previewRow(row, &summary); err != nil {
				return summary, err
			}
			continue
		}
		if err := s.applyRow(row, &summary); err != nil {
			return summary, err
		}
	}

	utils.LogEvent(s.RequestID, "import", "done",
		fmt.Sprintf("source=%s created=%d updated=%d skipped=%d dry_run=%t",
			s.source(), summary.Created, summary.Updated, summary.Skipped, s.DryRun))
	return summary, nil
}

func field(record []string, i int) string {
	if i < len(record) {
		return utils.NormalizeSpace(record[i])
	}
	return ""
}

func (s ImportService) parseRow(index int, record []string) (importRow, string, string) {
	rawDate := field(record, 0)
	payer := field(record, 1)
	beneficiaire := field(record, 2)
	depart := field(record, 3)
	arrivee := field(record, 4)
	reference := field(record, 5)
	rawMontant := field(record, 6)

	if rawDate == "" && payer == "" && beneficiaire == "" {
		return importRow{}, rawDate, "ligne vide"
	}

	date, err := utils.ParseImportDate(rawDate, s.Year, s.Month)
	if err != nil {
		return importRow{}, rawDate, "date inexploitable"
	}
	if payer == "" {
		return importRow{}, rawDate, "payeur manquant"
	}

	// Une ligne de pénalité porte le motif en colonne bénéficiaire; le payeur
	// reste le voyageur.
	passenger := beneficiaire
	if passenger == "" || strings.Contains(strings.ToLower(passenger), "pénalité") ||
		strings.Contains(strings.ToLower(passenger), "penalite") {
		passenger = payer
	}

	row := importRow{
		index:     index,
		date:      date,
		reference: strings.ToUpper(reference),
		montant:   utils.ParseMontant(rawMontant),
	}
	row.payerNom, row.payerPre = utils.SplitFullName(payer)
	row.passNom, row.passPre = utils.SplitFullName(passenger)
	if depart != "" || arrivee != "" {
		row.depart, row.arrivee = depart, arrivee
	} else {
		// Certains exports collent la route dans une seule colonne.
		row.depart, row.arrivee = utils.SplitRoute(field(record, 3))
	}
	return row, rawDate, ""
}

func (s ImportService) fingerprint(row importRow) string {
	payer := strings.TrimSpace(row.payerNom + " " + row.payerPre)
	passenger := strings.TrimSpace(row.passNom + " " + row.passPre)
	return ImportFingerprint(s.source(), utils.FormatDate(row.date), payer, passenger,
		row.depart, row.arrivee, row.reference, row.montant)
}

// previewRow does everything but write: it reports what applyRow would do.
func (s ImportService) previewRow(row importRow, summary *ImportSummary) error {
	repo := repositories.ReservationRepo{Q: s.db()}
	_, found, err := repo.GetByImportHash(s.fingerprint(row))
	if err != nil {
		return err
	}
	if found {
		summary.Updated++
	} else {
		summary.Created++
	}
	return nil
}

// applyRow upserts one reservation in its own transaction so one bad row
// never rolls back its predecessors.
func (s ImportService) applyRow(row importRow, summary *ImportSummary) error {
	hash := s.fingerprint(row)
	forcedAt := row.date.Format("2006-01-02") + " 09:00:00"

	return intdb.WithTx(s.db(), func(tx *sql.Tx) error {
		r := bindRepos(tx)

		existing, found, err := r.reservations.GetByImportHash(hash)
		if err != nil {
			return err
		}
		if found {
			montant := &row.montant
			if err := r.reservations.Update(existing.ID, repositories.ReservationPatch{
				MontantSousTotal: montant,
				MontantTotal:     montant,
			}); err != nil {
				return err
			}
			summary.Updated++
			return nil
		}

		client, err := s.resolveImportClient(r, row)
		if err != nil {
			return err
		}

		refs := ReferenceService{Repo: r.reservations}
		reference, err := refs.MakeReference(models.TypeBilletAvion, row.reference, row.reference)
		if err != nil {
			return err
		}

		rv := models.Reservation{
			ClientID:         client.ID,
			Type:             models.TypeBilletAvion,
			Reference:        reference,
			ImportHash:       hash,
			ImportSource:     s.source(),
			Statut:           models.StatutConfirmee,
			NombrePersonnes:  1,
			MontantSousTotal: row.montant,
			MontantTotal:     row.montant,
		}
		rv.ID, err = r.reservations.Insert(rv, forcedAt)
		if err != nil {
			return err
		}

		if err := r.flights.Upsert(models.FlightDetail{
			ReservationID: rv.ID,
			VilleDepart:   strings.ToUpper(row.depart),
			VilleArrivee:  strings.ToUpper(row.arrivee),
			DateDepart:    utils.FormatDate(row.date),
			PNR:           row.reference,
		}, forcedAt); err != nil {
			return err
		}

		passengerID, err := r.participants.Insert(models.Participant{
			ReservationID: rv.ID,
			Role:          models.RolePassenger,
			Nom:           row.passNom,
			Prenom:        row.passPre,
		}, forcedAt)
		if err != nil {
			return err
		}
		if err := r.reservations.SetPassengerID(rv.ID, passengerID); err != nil {
			return err
		}

		if _, err := (InvoiceService{FactureRepo: r.factures, PaiementRepo: r.paiements,
			RequestID: s.RequestID, Now: func() time.Time { return row.date }}).EnsureFactureEmise(rv); err != nil {
			return err
		}

		summary.Created++
		return nil
	})
}

// resolveImportClient deduplicates the payer by (nom, prenom): spreadsheet
// rows carry no email, and one payer appears on many rows.
func (s ImportService) resolveImportClient(r txRepos, row importRow) (models.Client, error) {
	existing, found, err := r.clients.GetByName(row.payerNom, row.payerPre)
	if err != nil {
		return models.Client{}, err
	}
	if found {
		return existing, nil
	}
	c := models.Client{Nom: row.payerNom, Prenom: row.payerPre}
	c.ID, err = r.clients.Create(c)
	if err != nil {
		return models.Client{}, err
	}
	return c, nil
}
