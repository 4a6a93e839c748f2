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

type ForfaitRepo struct {
	Q intdb.Querier
}

func (r ForfaitRepo) q() intdb.Querier {
	if r.Q != nil {
		return r.Q
	}
	return intconfig.DB
}

const forfaitColumns = `id, nom, COALESCE(description,''), event_id, type, prix, prix_adulte, prix_enfant,
	nombre_max_personnes, actif, created_at, updated_at`

func scanForfait(scan func(dest ...any) error) (models.Forfait, error) {
	var f models.Forfait
	err := scan(&f.ID, &f.Nom, &f.Description, &f.EventID, &f.Type, &f.Prix, &f.PrixAdulte, &f.PrixEnfant,
		&f.NombreMaxPersonnes, &f.Actif, &f.CreatedAt, &f.UpdatedAt)
	return f, err
}

func (r ForfaitRepo) GetByID(id int64) (models.Forfait, error) {
	if id <= 0 {
		return models.Forfait{}, domain.ValidationError{Field: "forfait_id", Msg: "id invalide"}
	}
	f, err := scanForfait(r.q().QueryRow(`SELECT `+forfaitColumns+` FROM forfaits WHERE id=? LIMIT 1`, id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Forfait{}, domain.NotFoundError{Resource: "forfait"}
	}
	return f, err
}

// ValidatePricing enforces the mutually-exclusive pricing shape at write
// time: solo/couple carry prix only, famille carries prix_adulte+prix_enfant
// and no prix.
func ValidatePricing(f models.Forfait) error {
	switch f.Type {
	case models.ForfaitSolo, models.ForfaitCouple:
		if f.Prix == nil {
			return domain.ValidationError{Field: "prix", Msg: "prix requis pour un forfait " + f.Type}
		}
		if f.PrixAdulte != nil || f.PrixEnfant != nil {
			return domain.ValidationError{Field: "prix_adulte", Msg: "prix adulte/enfant reserves au forfait famille"}
		}
	case models.ForfaitFamille:
		if f.PrixAdulte == nil || f.PrixEnfant == nil {
			return domain.ValidationError{Field: "prix_adulte", Msg: "prix_adulte et prix_enfant requis pour un forfait famille"}
		}
		if f.Prix != nil {
			return domain.ValidationError{Field: "prix", Msg: "prix unique interdit pour un forfait famille"}
		}
	default:
		return domain.ValidationError{Field: "type", Msg: "type de forfait invalide"}
	}
	return nil
}

func (r ForfaitRepo) Create(f models.Forfait) (int64, error) {
	if err := ValidatePricing(f); err != nil {
		return 0, err
	}
	res, err := r.q().Exec(`
		INSERT INTO forfaits (nom, description, event_id, type, prix, prix_adulte, prix_enfant, nombre_max_personnes, actif)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		strings.TrimSpace(f.Nom), intdb.NullIfEmpty(f.Description), f.EventID, f.Type,
		f.Prix, f.PrixAdulte, f.PrixEnfant, f.NombreMaxPersonnes, f.Actif)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r ForfaitRepo) Update(id int64, f models.Forfait) error {
	if err := ValidatePricing(f); err != nil {
		return err
	}
	_, err := r.q().Exec(`
		UPDATE forfaits
		SET nom=?, description=?, event_id=?, type=?, prix=?, prix_adulte=?, prix_enfant=?,
		    nombre_max_personnes=?, actif=?, updated_at=NOW()
		WHERE id=?`,
		strings.TrimSpace(f.Nom), intdb.NullIfEmpty(f.Description), f.EventID, f.Type,
		f.Prix, f.PrixAdulte, f.PrixEnfant, f.NombreMaxPersonnes, f.Actif, id)
	return err
}

func (r ForfaitRepo) Delete(id int64) error {
	_, err := r.q().Exec(`DELETE FROM forfaits WHERE id=?`, id)
	return err
}

func (r ForfaitRepo) List(limit, offset int) ([]models.Forfait, error) {
	rows, err := r.q().Query(`SELECT `+forfaitColumns+` FROM forfaits ORDER BY id DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Forfait{}
	for rows.Next() {
		f, err := scanForfait(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
