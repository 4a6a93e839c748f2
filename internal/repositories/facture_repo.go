package repositories

import (
	"database/sql"
	"errors"

	intconfig "univtours/internal/config"
	intdb "univtours/internal/db"
	"univtours/internal/domain"
	"univtours/internal/domain/models"
)

type FactureRepo struct {
	Q intdb.Querier
}

func (r FactureRepo) q() intdb.Querier {
	if r.Q != nil {
		return r.Q
	}
	return intconfig.DB
}

const factureColumns = `id, reservation_id, numero, DATE_FORMAT(date_facture,'%Y-%m-%d'),
	montant_sous_total, montant_taxes, montant_total, statut, COALESCE(pdf_path,''), created_at, updated_at`

func scanFacture(scan func(dest ...any) error) (models.Facture, error) {
	var f models.Facture
	err := scan(&f.ID, &f.ReservationID, &f.Numero, &f.DateFacture,
		&f.MontantSousTotal, &f.MontantTaxes, &f.MontantTotal, &f.Statut, &f.PdfPath,
		&f.CreatedAt, &f.UpdatedAt)
	return f, err
}

func (r FactureRepo) GetByID(id int64) (models.Facture, error) {
	if id <= 0 {
		return models.Facture{}, domain.ValidationError{Field: "facture_id", Msg: "id invalide"}
	}
	f, err := scanFacture(r.q().QueryRow(`SELECT `+factureColumns+` FROM factures WHERE id=? LIMIT 1`, id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Facture{}, domain.NotFoundError{Resource: "facture"}
	}
	return f, err
}

// LatestByReservation returns the newest facture for the reservation; the
// engine's at-most-one-active-invoice rule reuses this row instead of
// creating a second one.
func (r FactureRepo) LatestByReservation(reservationID int64) (models.Facture, bool, error) {
	f, err := scanFacture(r.q().QueryRow(
		`SELECT `+factureColumns+` FROM factures WHERE reservation_id=? ORDER BY id DESC LIMIT 1`,
		reservationID).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Facture{}, false, nil
	}
	if err != nil {
		return models.Facture{}, false, err
	}
	return f, true, nil
}

func (r FactureRepo) Insert(f models.Facture) (int64, error) {
	res, err := r.q().Exec(`
		INSERT INTO factures (reservation_id, numero, date_facture, montant_sous_total, montant_taxes, montant_total, statut, pdf_path)
		VALUES (?,?,?,?,?,?,?,?)`,
		f.ReservationID, f.Numero, f.DateFacture,
		f.MontantSousTotal, f.MontantTaxes, f.MontantTotal, f.Statut, intdb.NullIfEmpty(f.PdfPath))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r FactureRepo) UpdateStatut(id int64, statut string) error {
	_, err := r.q().Exec(`UPDATE factures SET statut=?, updated_at=NOW() WHERE id=?`, statut, id)
	return err
}

func (r FactureRepo) SetPdfPath(id int64, path string) error {
	_, err := r.q().Exec(`UPDATE factures SET pdf_path=?, updated_at=NOW() WHERE id=?`, intdb.NullIfEmpty(path), id)
	return err
}

type FactureFilter struct {
	Statut   string
	ClientID int64
	Search   string
	Limit    int
	Offset   int
}

func (r FactureRepo) List(f FactureFilter) ([]models.Facture, error) {
	query := `SELECT ` + factureColumns + ` FROM factures WHERE 1=1`
	args := []any{}
	if f.Statut != "" {
		query += ` AND statut=?`
		args = append(args, f.Statut)
	}
	if f.ClientID > 0 {
		query += ` AND reservation_id IN (SELECT id FROM reservations WHERE client_id=?)`
		args = append(args, f.ClientID)
	}
	if f.Search != "" {
		query += ` AND numero LIKE ?`
		args = append(args, "%"+f.Search+"%")
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	query += ` ORDER BY id DESC LIMIT ? OFFSET ?`
	args = append(args, limit, f.Offset)

	rows, err := r.q().Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Facture{}
	for rows.Next() {
		fa, err := scanFacture(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, fa)
	}
	return out, rows.Err()
}
