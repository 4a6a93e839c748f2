package repositories

import (
	"database/sql"
	"errors"
	"strings"

	intconfig "univtours/internal/config"
	intdb "univtours/internal/db"
	"univtours/internal/domain"
	"univtours/internal/domain/models"
)

type ReservationRepo struct {
	Q intdb.Querier
}

func (r ReservationRepo) q() intdb.Querier {
	if r.Q != nil {
		return r.Q
	}
	return intconfig.DB
}

const reservationColumns = `id, client_id, COALESCE(passenger_id,0), COALESCE(produit_id,0), COALESCE(forfait_id,0),
	type, reference, COALESCE(import_hash,''), COALESCE(import_source,''), statut, nombre_personnes,
	montant_sous_total, montant_taxes, montant_total, COALESCE(notes,''), created_at, updated_at, deleted_at`

func scanReservation(scan func(dest ...any) error) (models.Reservation, error) {
	var rv models.Reservation
	err := scan(&rv.ID, &rv.ClientID, &rv.PassengerID, &rv.ProduitID, &rv.ForfaitID,
		&rv.Type, &rv.Reference, &rv.ImportHash, &rv.ImportSource, &rv.Statut, &rv.NombrePersonnes,
		&rv.MontantSousTotal, &rv.MontantTaxes, &rv.MontantTotal, &rv.Notes,
		&rv.CreatedAt, &rv.UpdatedAt, &rv.DeletedAt)
	return rv, err
}

func nullID(id int64) any {
	if id <= 0 {
		return nil
	}
	return id
}

func (r ReservationRepo) GetByID(id int64) (models.Reservation, error) {
	if id <= 0 {
		return models.Reservation{}, domain.ValidationError{Field: "id", Msg: "id invalide"}
	}
	rv, err := scanReservation(r.q().QueryRow(
		`SELECT `+reservationColumns+` FROM reservations WHERE id=? AND deleted_at IS NULL LIMIT 1`, id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Reservation{}, domain.NotFoundError{Resource: "reservation"}
	}
	return rv, err
}

// ExistsByReference also sees soft-deleted rows: a reference is never reused.
func (r ReservationRepo) ExistsByReference(ref string) (bool, error) {
	var one int
	err := r.q().QueryRow(`SELECT 1 FROM reservations WHERE reference=? LIMIT 1`, ref).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r ReservationRepo) GetByImportHash(hash string) (models.Reservation, bool, error) {
	if strings.TrimSpace(hash) == "" {
		return models.Reservation{}, false, nil
	}
	rv, err := scanReservation(r.q().QueryRow(
		`SELECT `+reservationColumns+` FROM reservations WHERE import_hash=? LIMIT 1`, hash).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Reservation{}, false, nil
	}
	if err != nil {
		return models.Reservation{}, false, err
	}
	return rv, true, nil
}

// Insert creates the reservation row. CreatedAt formatted "2006-01-02 15:04:05"
// overrides the insertion timestamp (bulk import forces row dates).
func (r ReservationRepo) Insert(rv models.Reservation, createdAt string) (int64, error) {
	cols := `client_id, produit_id, forfait_id, type, reference, import_hash, import_source,
		statut, nombre_personnes, montant_sous_total, montant_taxes, montant_total, notes`
	args := []any{
		rv.ClientID, nullID(rv.ProduitID), nullID(rv.ForfaitID), rv.Type, rv.Reference,
		intdb.NullIfEmpty(rv.ImportHash), intdb.NullIfEmpty(rv.ImportSource),
		rv.Statut, rv.NombrePersonnes, rv.MontantSousTotal, rv.MontantTaxes, rv.MontantTotal,
		intdb.NullIfEmpty(rv.Notes),
	}
	placeholders := "?,?,?,?,?,?,?,?,?,?,?,?,?"
	if createdAt != "" {
		cols += `, created_at, updated_at`
		args = append(args, createdAt, createdAt)
		placeholders += ",?,?"
	}
	res, err := r.q().Exec(`INSERT INTO reservations (`+cols+`) VALUES (`+placeholders+`)`, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ReservationPatch carries only the fields to touch; nil means "leave alone".
type ReservationPatch struct {
	ClientID         *int64
	ProduitID        *int64
	ForfaitID        *int64
	Statut           *string
	NombrePersonnes  *int
	MontantSousTotal *float64
	MontantTaxes     *float64
	MontantTotal     *float64
	Notes            *string
}

func (r ReservationRepo) Update(id int64, p ReservationPatch) error {
	sets := []string{}
	args := []any{}
	add := func(col string, v any) {
		sets = append(sets, col+"=?")
		args = append(args, v)
	}
	if p.ClientID != nil {
		add("client_id", *p.ClientID)
	}
	if p.ProduitID != nil {
		add("produit_id", nullID(*p.ProduitID))
	}
	if p.ForfaitID != nil {
		add("forfait_id", nullID(*p.ForfaitID))
	}
	if p.Statut != nil {
		add("statut", *p.Statut)
	}
	if p.NombrePersonnes != nil {
		add("nombre_personnes", *p.NombrePersonnes)
	}
	if p.MontantSousTotal != nil {
		add("montant_sous_total", *p.MontantSousTotal)
	}
	if p.MontantTaxes != nil {
		add("montant_taxes", *p.MontantTaxes)
	}
	if p.MontantTotal != nil {
		add("montant_total", *p.MontantTotal)
	}
	if p.Notes != nil {
		add("notes", intdb.NullIfEmpty(*p.Notes))
	}
	if len(sets) == 0 {
		return nil
	}
	sets = append(sets, "updated_at=NOW()")
	args = append(args, id)
	_, err := r.q().Exec(`UPDATE reservations SET `+strings.Join(sets, ",")+` WHERE id=? AND deleted_at IS NULL`, args...)
	return err
}

func (r ReservationRepo) SetStatut(id int64, statut string) error {
	_, err := r.q().Exec(`UPDATE reservations SET statut=?, updated_at=NOW() WHERE id=? AND deleted_at IS NULL`, statut, id)
	return err
}

func (r ReservationRepo) SetPassengerID(id, passengerID int64) error {
	_, err := r.q().Exec(`UPDATE reservations SET passenger_id=? WHERE id=?`, nullID(passengerID), id)
	return err
}

// SoftDelete hides the reservation; factures and paiements survive.
func (r ReservationRepo) SoftDelete(id int64) error {
	_, err := r.q().Exec(`UPDATE reservations SET deleted_at=NOW() WHERE id=? AND deleted_at IS NULL`, id)
	return err
}

type ReservationFilter struct {
	Type   string
	Statut string
	Month  string // "2006-01"
	Search string
	Limit  int
	Offset int
}

func (r ReservationRepo) List(f ReservationFilter) ([]models.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE deleted_at IS NULL`
	args := []any{}
	if f.Type != "" {
		query += ` AND type=?`
		args = append(args, f.Type)
	}
	if f.Statut != "" {
		query += ` AND statut=?`
		args = append(args, f.Statut)
	}
	if f.Month != "" {
		query += ` AND DATE_FORMAT(created_at, '%Y-%m')=?`
		args = append(args, f.Month)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + s + "%"
		query += ` AND (reference LIKE ? OR client_id IN (
			SELECT id FROM clients WHERE nom LIKE ? OR prenom LIKE ? OR telephone LIKE ? OR email LIKE ?))`
		args = append(args, like, like, like, like, like)
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	query += ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, f.Offset)

	rows, err := r.q().Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Reservation{}
	for rows.Next() {
		rv, err := scanReservation(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}
