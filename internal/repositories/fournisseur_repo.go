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

type FournisseurRepo struct {
	Q intdb.Querier
}

func (r FournisseurRepo) q() intdb.Querier {
	if r.Q != nil {
		return r.Q
	}
	return intconfig.DB
}

const fournisseurColumns = `id, nom, email, COALESCE(telephone,''), COALESCE(site_web,''),
	COALESCE(description,''), created_at, updated_at`

func scanFournisseur(scan func(dest ...any) error) (models.Fournisseur, error) {
	var f models.Fournisseur
	err := scan(&f.ID, &f.Nom, &f.Email, &f.Telephone, &f.SiteWeb,
		&f.Description, &f.CreatedAt, &f.UpdatedAt)
	return f, err
}

func (r FournisseurRepo) GetByID(id int64) (models.Fournisseur, error) {
	if id <= 0 {
		return models.Fournisseur{}, domain.ValidationError{Field: "fournisseur_id", Msg: "id invalide"}
	}
	f, err := scanFournisseur(r.q().QueryRow(
		`SELECT `+fournisseurColumns+` FROM fournisseurs WHERE id=? LIMIT 1`, id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Fournisseur{}, domain.NotFoundError{Resource: "fournisseur"}
	}
	return f, err
}

// Create relies on the unique key on email; a duplicate surfaces as a
// ConflictError for the handler to map.
func (r FournisseurRepo) Create(f models.Fournisseur) (int64, error) {
	res, err := r.q().Exec(`
		INSERT INTO fournisseurs (nom, email, telephone, site_web, description) VALUES (?,?,?,?,?)`,
		strings.TrimSpace(f.Nom), strings.TrimSpace(f.Email),
		intdb.NullIfEmpty(f.Telephone), intdb.NullIfEmpty(f.SiteWeb), intdb.NullIfEmpty(f.Description))
	if intdb.IsDuplicate(err) {
		return 0, domain.ConflictError{Resource: "fournisseur", Msg: "email déjà utilisé", Err: err}
	}
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r FournisseurRepo) Update(id int64, f models.Fournisseur) error {
	_, err := r.q().Exec(`
		UPDATE fournisseurs SET nom=?, email=?, telephone=?, site_web=?, description=?, updated_at=NOW()
		WHERE id=?`,
		strings.TrimSpace(f.Nom), strings.TrimSpace(f.Email),
		intdb.NullIfEmpty(f.Telephone), intdb.NullIfEmpty(f.SiteWeb), intdb.NullIfEmpty(f.Description), id)
	if intdb.IsDuplicate(err) {
		return domain.ConflictError{Resource: "fournisseur", Msg: "email déjà utilisé", Err: err}
	}
	return err
}

func (r FournisseurRepo) Delete(id int64) error {
	_, err := r.q().Exec(`DELETE FROM fournisseurs WHERE id=?`, id)
	return err
}

func (r FournisseurRepo) List(limit, offset int) ([]models.Fournisseur, error) {
	rows, err := r.q().Query(`SELECT `+fournisseurColumns+` FROM fournisseurs ORDER BY nom LIMIT ? OFFSET ?`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Fournisseur{}
	for rows.Next() {
		f, err := scanFournisseur(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
