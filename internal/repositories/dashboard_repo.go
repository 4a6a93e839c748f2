package repositories

import (
	intconfig "univtours/internal/config"
	intdb "univtours/internal/db"
)

// DashboardRepo holds the aggregate queries behind the dashboard. Reads
// only; soft-deleted reservations are excluded everywhere.
type DashboardRepo struct {
	Q intdb.Querier
}

func (r DashboardRepo) q() intdb.Querier {
	if r.Q != nil {
		return r.Q
	}
	return intconfig.DB
}

func (r DashboardRepo) countsBy(column, month string) (map[string]int, error) {
	query := `SELECT ` + column + `, COUNT(*) FROM reservations WHERE deleted_at IS NULL`
	args := []any{}
	if month != "" {
		query += ` AND DATE_FORMAT(created_at, '%Y-%m')=?`
		args = append(args, month)
	}
	query += ` GROUP BY ` + column

	rows, err := r.q().Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return nil, err
		}
		out[key] = count
	}
	return out, rows.Err()
}

func (r DashboardRepo) CountsByStatut(month string) (map[string]int, error) {
	return r.countsBy("statut", month)
}

func (r DashboardRepo) CountsByType(month string) (map[string]int, error) {
	return r.countsBy("type", month)
}

type MonthlyRevenue struct {
	Month    string  `json:"month"`
	Facture  float64 `json:"facture"`
	Encaisse float64 `json:"encaisse"`
}

// RevenueByMonth rolls a year up month by month: facture = montants of
// non-cancelled factures, encaisse = paiements with statut recu.
func (r DashboardRepo) RevenueByMonth(year int) ([]MonthlyRevenue, error) {
	rows, err := r.q().Query(`
		SELECT m, SUM(facture), SUM(encaisse) FROM (
			SELECT DATE_FORMAT(f.date_facture, '%Y-%m') AS m, f.montant_total AS facture, 0 AS encaisse
			FROM factures f WHERE f.statut <> 'annule' AND YEAR(f.date_facture)=?
			UNION ALL
			SELECT DATE_FORMAT(p.date_paiement, '%Y-%m') AS m, 0 AS facture, p.montant AS encaisse
			FROM paiements p WHERE p.statut='recu' AND YEAR(p.date_paiement)=?
		) t GROUP BY m ORDER BY m`, year, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []MonthlyRevenue{}
	for rows.Next() {
		var mr MonthlyRevenue
		if err := rows.Scan(&mr.Month, &mr.Facture, &mr.Encaisse); err != nil {
			return nil, err
		}
		out = append(out, mr)
	}
	return out, rows.Err()
}

type FactureRollup struct {
	Statut  string  `json:"statut"`
	Count   int     `json:"count"`
	Montant float64 `json:"montant"`
}

func (r DashboardRepo) FactureRollups(month string) ([]FactureRollup, error) {
	query := `SELECT statut, COUNT(*), COALESCE(SUM(montant_total),0) FROM factures`
	args := []any{}
	if month != "" {
		query += ` WHERE DATE_FORMAT(date_facture, '%Y-%m')=?`
		args = append(args, month)
	}
	query += ` GROUP BY statut`

	rows, err := r.q().Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []FactureRollup{}
	for rows.Next() {
		var fr FactureRollup
		if err := rows.Scan(&fr.Statut, &fr.Count, &fr.Montant); err != nil {
			return nil, err
		}
		out = append(out, fr)
	}
	return out, rows.Err()
}

func (r DashboardRepo) ClientCount() (int, error) {
	var n int
	err := r.q().QueryRow(`SELECT COUNT(*) FROM clients WHERE deleted_at IS NULL`).Scan(&n)
	return n, err
}

// EncaisseForMonth sums received payments dated in the given month.
func (r DashboardRepo) EncaisseForMonth(month string) (float64, error) {
	var total float64
	err := r.q().QueryRow(
		`SELECT COALESCE(SUM(montant),0) FROM paiements WHERE statut='recu' AND DATE_FORMAT(date_paiement, '%Y-%m')=?`,
		month).Scan(&total)
	return total, err
}
