package repositories

import (
	"database/sql"
	"errors"

	intconfig "univtours/internal/config"
	intdb "univtours/internal/db"
	"univtours/internal/domain/models"
)

// FlightDetailRepo persists the one-to-one flight block of a billet_avion
// reservation.
type FlightDetailRepo struct {
	Q intdb.Querier
}

func (r FlightDetailRepo) q() intdb.Querier {
	if r.Q != nil {
		return r.Q
	}
	return intconfig.DB
}

const flightColumns = `id, reservation_id, COALESCE(ville_depart,''), COALESCE(ville_arrivee,''),
	COALESCE(DATE_FORMAT(date_depart,'%Y-%m-%d'),''), COALESCE(DATE_FORMAT(date_arrivee,'%Y-%m-%d'),''),
	COALESCE(compagnie,''), COALESCE(pnr,''), COALESCE(classe,'')`

func (r FlightDetailRepo) GetByReservation(reservationID int64) (models.FlightDetail, bool, error) {
	var d models.FlightDetail
	err := r.q().QueryRow(
		`SELECT `+flightColumns+` FROM reservation_flight_details WHERE reservation_id=? LIMIT 1`,
		reservationID).Scan(&d.ID, &d.ReservationID, &d.VilleDepart, &d.VilleArrivee,
		&d.DateDepart, &d.DateArrivee, &d.Compagnie, &d.PNR, &d.Classe)
	if errors.Is(err, sql.ErrNoRows) {
		return models.FlightDetail{}, false, nil
	}
	if err != nil {
		return models.FlightDetail{}, false, err
	}
	return d, true, nil
}

// Upsert writes the whole block; merging partial updates against the existing
// row is the engine's job, not the repo's. createdAt forces import timestamps.
func (r FlightDetailRepo) Upsert(d models.FlightDetail, createdAt string) error {
	var existingID int64
	err := r.q().QueryRow(`SELECT id FROM reservation_flight_details WHERE reservation_id=? LIMIT 1`, d.ReservationID).
		Scan(&existingID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	if existingID > 0 {
		_, err = r.q().Exec(`
			UPDATE reservation_flight_details
			SET ville_depart=?, ville_arrivee=?, date_depart=?, date_arrivee=?, compagnie=?, pnr=?, classe=?, updated_at=NOW()
			WHERE id=?`,
			intdb.NullIfEmpty(d.VilleDepart), intdb.NullIfEmpty(d.VilleArrivee),
			intdb.NullIfEmpty(d.DateDepart), intdb.NullIfEmpty(d.DateArrivee),
			intdb.NullIfEmpty(d.Compagnie), intdb.NullIfEmpty(d.PNR), intdb.NullIfEmpty(d.Classe),
			existingID)
		return err
	}

	cols := `reservation_id, ville_depart, ville_arrivee, date_depart, date_arrivee, compagnie, pnr, classe`
	placeholders := "?,?,?,?,?,?,?,?"
	args := []any{
		d.ReservationID,
		intdb.NullIfEmpty(d.VilleDepart), intdb.NullIfEmpty(d.VilleArrivee),
		intdb.NullIfEmpty(d.DateDepart), intdb.NullIfEmpty(d.DateArrivee),
		intdb.NullIfEmpty(d.Compagnie), intdb.NullIfEmpty(d.PNR), intdb.NullIfEmpty(d.Classe),
	}
	if createdAt != "" {
		cols += `, created_at, updated_at`
		placeholders += ",?,?"
		args = append(args, createdAt, createdAt)
	}
	_, err = r.q().Exec(`INSERT INTO reservation_flight_details (`+cols+`) VALUES (`+placeholders+`)`, args...)
	return err
}

// AssuranceDetailRepo persists the one-to-one insurance block of an
// assurance reservation.
type AssuranceDetailRepo struct {
	Q intdb.Querier
}

func (r AssuranceDetailRepo) q() intdb.Querier {
	if r.Q != nil {
		return r.Q
	}
	return intconfig.DB
}

func (r AssuranceDetailRepo) GetByReservation(reservationID int64) (models.AssuranceDetail, bool, error) {
	var d models.AssuranceDetail
	err := r.q().QueryRow(`
		SELECT id, reservation_id, libelle,
		       COALESCE(DATE_FORMAT(date_debut,'%Y-%m-%d'),''),
		       COALESCE(DATE_FORMAT(date_fin,'%Y-%m-%d'),'')
		FROM reservation_assurances WHERE reservation_id=? LIMIT 1`,
		reservationID).Scan(&d.ID, &d.ReservationID, &d.Libelle, &d.DateDebut, &d.DateFin)
	if errors.Is(err, sql.ErrNoRows) {
		return models.AssuranceDetail{}, false, nil
	}
	if err != nil {
		return models.AssuranceDetail{}, false, err
	}
	return d, true, nil
}

func (r AssuranceDetailRepo) Upsert(d models.AssuranceDetail) error {
	var existingID int64
	err := r.q().QueryRow(`SELECT id FROM reservation_assurances WHERE reservation_id=? LIMIT 1`, d.ReservationID).
		Scan(&existingID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	if existingID > 0 {
		_, err = r.q().Exec(`
			UPDATE reservation_assurances SET libelle=?, date_debut=?, date_fin=?, updated_at=NOW() WHERE id=?`,
			d.Libelle, d.DateDebut, intdb.NullIfEmpty(d.DateFin), existingID)
		return err
	}
	_, err = r.q().Exec(`
		INSERT INTO reservation_assurances (reservation_id, libelle, date_debut, date_fin) VALUES (?,?,?,?)`,
		d.ReservationID, d.Libelle, d.DateDebut, intdb.NullIfEmpty(d.DateFin))
	return err
}
