package repositories

import (
	intconfig "univtours/internal/config"
	intdb "univtours/internal/db"
	"univtours/internal/domain/models"
)

type PaiementRepo struct {
	Q intdb.Querier
}

func (r PaiementRepo) q() intdb.Querier {
	if r.Q != nil {
		return r.Q
	}
	return intconfig.DB
}

func (r PaiementRepo) Insert(p models.Paiement) (int64, error) {
	res, err := r.q().Exec(`
		INSERT INTO paiements (facture_id, montant, mode_paiement, reference, date_paiement, statut, notes)
		VALUES (?,?,?,?,?,?,?)`,
		p.FactureID, p.Montant, p.ModePaiement, intdb.NullIfEmpty(p.Reference),
		p.DatePaiement, p.Statut, intdb.NullIfEmpty(p.Notes))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r PaiementRepo) ListByFacture(factureID int64) ([]models.Paiement, error) {
	rows, err := r.q().Query(`
		SELECT id, facture_id, montant, mode_paiement, COALESCE(reference,''),
		       DATE_FORMAT(date_paiement,'%Y-%m-%d'), statut, COALESCE(notes,''), created_at
		FROM paiements WHERE facture_id=? ORDER BY id`, factureID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Paiement{}
	for rows.Next() {
		var p models.Paiement
		if err := rows.Scan(&p.ID, &p.FactureID, &p.Montant, &p.ModePaiement, &p.Reference,
			&p.DatePaiement, &p.Statut, &p.Notes, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// SumRecuByFacture aggregates received payments only; en_attente/echoue rows
// are recorded but never move the facture status.
func (r PaiementRepo) SumRecuByFacture(factureID int64) (float64, error) {
	var sum float64
	err := r.q().QueryRow(
		`SELECT COALESCE(SUM(montant),0) FROM paiements WHERE facture_id=? AND statut=?`,
		factureID, models.PaiementRecu).Scan(&sum)
	return sum, err
}
