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

type ProduitRepo struct {
	Q intdb.Querier
}

func (r ProduitRepo) q() intdb.Querier {
	if r.Q != nil {
		return r.Q
	}
	return intconfig.DB
}

const produitColumns = `id, nom, type, COALESCE(description,''), prix_base, actif, created_at, updated_at`

func (r ProduitRepo) GetByID(id int64) (models.Produit, error) {
	if id <= 0 {
		return models.Produit{}, domain.ValidationError{Field: "produit_id", Msg: "id invalide"}
	}
	var p models.Produit
	err := r.q().QueryRow(`SELECT `+produitColumns+` FROM produits WHERE id=? LIMIT 1`, id).
		Scan(&p.ID, &p.Nom, &p.Type, &p.Description, &p.PrixBase, &p.Actif, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Produit{}, domain.NotFoundError{Resource: "produit"}
	}
	return p, err
}

func (r ProduitRepo) Create(p models.Produit) (int64, error) {
	res, err := r.q().Exec(`
		INSERT INTO produits (nom, type, description, prix_base, actif) VALUES (?,?,?,?,?)`,
		strings.TrimSpace(p.Nom), p.Type, intdb.NullIfEmpty(p.Description), p.PrixBase, p.Actif)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Update never touches type: the type is immutable after creation.
func (r ProduitRepo) Update(id int64, p models.Produit) error {
	_, err := r.q().Exec(`
		UPDATE produits SET nom=?, description=?, prix_base=?, actif=?, updated_at=NOW() WHERE id=?`,
		strings.TrimSpace(p.Nom), intdb.NullIfEmpty(p.Description), p.PrixBase, p.Actif, id)
	return err
}

func (r ProduitRepo) Delete(id int64) error {
	_, err := r.q().Exec(`DELETE FROM produits WHERE id=?`, id)
	return err
}

func (r ProduitRepo) List(typ string, limit, offset int) ([]models.Produit, error) {
	query := `SELECT ` + produitColumns + ` FROM produits`
	args := []any{}
	if typ != "" {
		query += ` WHERE type=?`
		args = append(args, typ)
	}
	query += ` ORDER BY id DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := r.q().Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Produit{}
	for rows.Next() {
		var p models.Produit
		if err := rows.Scan(&p.ID, &p.Nom, &p.Type, &p.Description, &p.PrixBase, &p.Actif, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
