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

type ParticipantRepo struct {
	Q intdb.Querier
}

func (r ParticipantRepo) q() intdb.Querier {
	if r.Q != nil {
		return r.Q
	}
	return intconfig.DB
}

const participantColumns = `id, reservation_id, role, nom, COALESCE(prenom,''), age, COALESCE(sexe,''),
	COALESCE(passeport,''), COALESCE(remarques,''), created_at, updated_at`

func scanParticipant(scan func(dest ...any) error) (models.Participant, error) {
	var p models.Participant
	err := scan(&p.ID, &p.ReservationID, &p.Role, &p.Nom, &p.Prenom, &p.Age, &p.Sexe,
		&p.Passeport, &p.Remarques, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r ParticipantRepo) GetByID(id int64) (models.Participant, error) {
	p, err := scanParticipant(r.q().QueryRow(
		`SELECT `+participantColumns+` FROM participants WHERE id=? AND deleted_at IS NULL LIMIT 1`, id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Participant{}, domain.NotFoundError{Resource: "participant"}
	}
	return p, err
}

// Insert creates a participant row; createdAt (optional, "2006-01-02 15:04:05")
// forces the timestamps for imported rows.
func (r ParticipantRepo) Insert(p models.Participant, createdAt string) (int64, error) {
	cols := `reservation_id, role, nom, prenom, age, sexe, passeport, remarques`
	placeholders := "?,?,?,?,?,?,?,?"
	args := []any{
		p.ReservationID, p.Role, strings.TrimSpace(p.Nom),
		intdb.NullIfEmpty(strings.TrimSpace(p.Prenom)),
		p.Age, intdb.NullIfEmpty(p.Sexe), intdb.NullIfEmpty(p.Passeport), intdb.NullIfEmpty(p.Remarques),
	}
	if createdAt != "" {
		cols += `, created_at, updated_at`
		placeholders += ",?,?"
		args = append(args, createdAt, createdAt)
	}
	res, err := r.q().Exec(`INSERT INTO participants (`+cols+`) VALUES (`+placeholders+`)`, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r ParticipantRepo) ListByReservation(reservationID int64) ([]models.Participant, error) {
	rows, err := r.q().Query(
		`SELECT `+participantColumns+` FROM participants WHERE reservation_id=? AND deleted_at IS NULL ORDER BY id`,
		reservationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Participant{}
	for rows.Next() {
		p, err := scanParticipant(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// DeleteCompanions removes role=participant rows only. Passenger/beneficiary
// records are never touched by the replace-participants path.
func (r ParticipantRepo) DeleteCompanions(reservationID int64) error {
	_, err := r.q().Exec(
		`DELETE FROM participants WHERE reservation_id=? AND role NOT IN (?,?)`,
		reservationID, models.RolePassenger, models.RoleBeneficiary)
	return err
}
