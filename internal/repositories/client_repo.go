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

type ClientRepo struct {
	Q intdb.Querier
}

func (r ClientRepo) q() intdb.Querier {
	if r.Q != nil {
		return r.Q
	}
	return intconfig.DB
}

const clientColumns = `id, nom, COALESCE(prenom,''), COALESCE(email,''), COALESCE(telephone,''),
	COALESCE(adresse,''), COALESCE(pays,''), COALESCE(notes,''), created_at, updated_at, deleted_at`

func scanClient(row *sql.Row) (models.Client, error) {
	var c models.Client
	err := row.Scan(&c.ID, &c.Nom, &c.Prenom, &c.Email, &c.Telephone,
		&c.Adresse, &c.Pays, &c.Notes, &c.CreatedAt, &c.UpdatedAt, &c.DeletedAt)
	return c, err
}

func (r ClientRepo) GetByID(id int64) (models.Client, error) {
	if id <= 0 {
		return models.Client{}, domain.ValidationError{Field: "client_id", Msg: "id invalide"}
	}
	c, err := scanClient(r.q().QueryRow(
		`SELECT `+clientColumns+` FROM clients WHERE id=? AND deleted_at IS NULL LIMIT 1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Client{}, domain.NotFoundError{Resource: "client"}
	}
	return c, err
}

// GetByEmail returns the live client with this email, or ErrNoRows-as-zero.
func (r ClientRepo) GetByEmail(email string) (models.Client, bool, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return models.Client{}, false, nil
	}
	c, err := scanClient(r.q().QueryRow(
		`SELECT `+clientColumns+` FROM clients WHERE email=? AND deleted_at IS NULL LIMIT 1`, email))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Client{}, false, nil
	}
	if err != nil {
		return models.Client{}, false, err
	}
	return c, true, nil
}

// GetByName is used by the bulk importer, whose only dedup key for payers
// is (nom, prenom).
func (r ClientRepo) GetByName(nom, prenom string) (models.Client, bool, error) {
	c, err := scanClient(r.q().QueryRow(
		`SELECT `+clientColumns+` FROM clients WHERE nom=? AND COALESCE(prenom,'')=? AND deleted_at IS NULL LIMIT 1`,
		nom, prenom))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Client{}, false, nil
	}
	if err != nil {
		return models.Client{}, false, err
	}
	return c, true, nil
}

func (r ClientRepo) Create(c models.Client) (int64, error) {
	res, err := r.q().Exec(`
		INSERT INTO clients (nom, prenom, email, telephone, adresse, pays, notes)
		VALUES (?,?,?,?,?,?,?)`,
		strings.TrimSpace(c.Nom),
		intdb.NullIfEmpty(strings.TrimSpace(c.Prenom)),
		intdb.NullIfEmpty(strings.TrimSpace(c.Email)),
		intdb.NullIfEmpty(c.Telephone),
		intdb.NullIfEmpty(c.Adresse),
		intdb.NullIfEmpty(c.Pays),
		intdb.NullIfEmpty(c.Notes),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r ClientRepo) Update(id int64, c models.Client) error {
	_, err := r.q().Exec(`
		UPDATE clients
		SET nom=?, prenom=?, email=?, telephone=?, adresse=?, pays=?, notes=?, updated_at=NOW()
		WHERE id=? AND deleted_at IS NULL`,
		strings.TrimSpace(c.Nom),
		intdb.NullIfEmpty(strings.TrimSpace(c.Prenom)),
		intdb.NullIfEmpty(strings.TrimSpace(c.Email)),
		intdb.NullIfEmpty(c.Telephone),
		intdb.NullIfEmpty(c.Adresse),
		intdb.NullIfEmpty(c.Pays),
		intdb.NullIfEmpty(c.Notes),
		id,
	)
	return err
}

func (r ClientRepo) SoftDelete(id int64) error {
	_, err := r.q().Exec(`UPDATE clients SET deleted_at=NOW() WHERE id=? AND deleted_at IS NULL`, id)
	return err
}

func (r ClientRepo) Restore(id int64) error {
	_, err := r.q().Exec(`UPDATE clients SET deleted_at=NULL WHERE id=?`, id)
	return err
}

// List returns live clients, optionally filtered by a search term over
// nom/prenom/telephone/email.
func (r ClientRepo) List(search string, limit, offset int) ([]models.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE deleted_at IS NULL`
	args := []any{}
	if s := strings.TrimSpace(search); s != "" {
		like := "%" + s + "%"
		query += ` AND (nom LIKE ? OR prenom LIKE ? OR telephone LIKE ? OR email LIKE ?)`
		args = append(args, like, like, like, like)
	}
	query += ` ORDER BY id DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := r.q().Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Client{}
	for rows.Next() {
		var c models.Client
		if err := rows.Scan(&c.ID, &c.Nom, &c.Prenom, &c.Email, &c.Telephone,
			&c.Adresse, &c.Pays, &c.Notes, &c.CreatedAt, &c.UpdatedAt, &c.DeletedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
