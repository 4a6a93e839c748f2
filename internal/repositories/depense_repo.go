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

type DepenseRepo struct {
	Q intdb.Querier
}

func (r DepenseRepo) q() intdb.Querier {
	if r.Q != nil {
		return r.Q
	}
	return intconfig.DB
}

const depenseColumns = `id, DATE_FORMAT(date_depense,'%Y-%m-%d'), categorie, libelle,
	COALESCE(fournisseur_nom,''), COALESCE(reference,''), montant, COALESCE(mode_paiement,''),
	statut, COALESCE(reservation_id,0), COALESCE(notes,''), created_at, updated_at`

func scanDepense(scan func(dest ...any) error) (models.Depense, error) {
	var d models.Depense
	err := scan(&d.ID, &d.DateDepense, &d.Categorie, &d.Libelle,
		&d.FournisseurNom, &d.Reference, &d.Montant, &d.ModePaiement,
		&d.Statut, &d.ReservationID, &d.Notes, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}

func (r DepenseRepo) GetByID(id int64) (models.Depense, error) {
	d, err := scanDepense(r.q().QueryRow(`SELECT `+depenseColumns+` FROM depenses WHERE id=? LIMIT 1`, id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Depense{}, domain.NotFoundError{Resource: "depense"}
	}
	return d, err
}

func (r DepenseRepo) Create(d models.Depense) (int64, error) {
	res, err := r.q().Exec(`
		INSERT INTO depenses (date_depense, categorie, libelle, fournisseur_nom, reference, montant, mode_paiement, statut, reservation_id, notes)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		d.DateDepense, d.Categorie, strings.TrimSpace(d.Libelle),
		intdb.NullIfEmpty(d.FournisseurNom), intdb.NullIfEmpty(d.Reference),
		d.Montant, intdb.NullIfEmpty(d.ModePaiement), d.Statut, nullID(d.ReservationID), intdb.NullIfEmpty(d.Notes))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r DepenseRepo) Update(id int64, d models.Depense) error {
	_, err := r.q().Exec(`
		UPDATE depenses
		SET date_depense=?, categorie=?, libelle=?, fournisseur_nom=?, reference=?, montant=?,
		    mode_paiement=?, statut=?, reservation_id=?, notes=?, updated_at=NOW()
		WHERE id=?`,
		d.DateDepense, d.Categorie, strings.TrimSpace(d.Libelle),
		intdb.NullIfEmpty(d.FournisseurNom), intdb.NullIfEmpty(d.Reference),
		d.Montant, intdb.NullIfEmpty(d.ModePaiement), d.Statut, nullID(d.ReservationID), intdb.NullIfEmpty(d.Notes), id)
	return err
}

func (r DepenseRepo) Delete(id int64) error {
	_, err := r.q().Exec(`DELETE FROM depenses WHERE id=?`, id)
	return err
}

func (r DepenseRepo) List(categorie, statut string, limit, offset int) ([]models.Depense, error) {
	query := `SELECT ` + depenseColumns + ` FROM depenses WHERE 1=1`
	args := []any{}
	if categorie != "" {
		query += ` AND categorie=?`
		args = append(args, categorie)
	}
	if statut != "" {
		query += ` AND statut=?`
		args = append(args, statut)
	}
	if limit <= 0 {
		limit = 50
	}
	query += ` ORDER BY date_depense DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := r.q().Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Depense{}
	for rows.Next() {
		d, err := scanDepense(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
