package services

import (
	"regexp"
	"testing"
	"time"

	"univtours/internal/domain"
	"univtours/internal/domain/models"

	"github.com/DATA-DOG/go-sqlmock"
)

var reservationCols = []string{"id", "client_id", "passenger_id", "produit_id", "forfait_id",
	"type", "reference", "import_hash", "import_source", "statut", "nombre_personnes",
	"montant_sous_total", "montant_taxes", "montant_total", "notes", "created_at", "updated_at", "deleted_at"}

func reservationRow(id int64, typ, statut string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(reservationCols).
		AddRow(id, int64(1), int64(0), int64(0), int64(0), typ, "UT-AV-20260301-ABC123", "", "",
			statut, 1, 250000.0, 0.0, 250000.0, "", now, now, nil)
}

func TestValidateShape(t *testing.T) {
	svc := ReservationService{}
	flight := &FlightInput{VilleDepart: "DSS", VilleArrivee: "CDG"}

	cases := []struct {
		name string
		in   ReservationInput
	}{
		{"flight without detail block", ReservationInput{Type: models.TypeBilletAvion}},
		{"flight missing cities", ReservationInput{Type: models.TypeBilletAvion, Flight: &FlightInput{VilleDepart: "DSS"}}},
		{"flight with produit", ReservationInput{Type: models.TypeBilletAvion, ProduitID: 4, Flight: flight}},
		{"hotel without produit", ReservationInput{Type: models.TypeHotel}},
		{"hotel with forfait", ReservationInput{Type: models.TypeHotel, ProduitID: 4, ForfaitID: 2}},
		{"forfait without forfait_id", ReservationInput{Type: models.TypeForfait}},
		{"assurance without detail block", ReservationInput{Type: models.TypeAssurance}},
		{"passenger conflict", ReservationInput{Type: models.TypeBilletAvion, Flight: flight,
			PassengerIsClient: true, Passenger: &ParticipantInput{Nom: "Diop"}}},
		{"passenger on hotel", ReservationInput{Type: models.TypeHotel, ProduitID: 4,
			Passenger: &ParticipantInput{Nom: "Diop"}}},
		{"car with several persons", ReservationInput{Type: models.TypeVoiture, ProduitID: 4, NombrePersonnes: 2}},
		{"event participant count mismatch", ReservationInput{Type: models.TypeEvenement, ProduitID: 4,
			NombrePersonnes: 3, Participants: []ParticipantInput{{Nom: "Fall"}}}},
		{"event participants without headcount", ReservationInput{Type: models.TypeEvenement, ProduitID: 4,
			NombrePersonnes: 1, Participants: []ParticipantInput{{Nom: "Fall"}}}},
	}
	for _, c := range cases {
		if err := svc.validateShape(c.in); !domain.IsValidation(err) {
			t.Fatalf("%s: expected ValidationError, got %v", c.name, err)
		}
	}

	ok := ReservationInput{Type: models.TypeEvenement, ProduitID: 4, NombrePersonnes: 3,
		Participants: []ParticipantInput{{Nom: "Fall"}, {Nom: "Sarr"}}}
	if err := svc.validateShape(ok); err != nil {
		t.Fatalf("valid event payload rejected: %v", err)
	}
}

func TestCheckTransition(t *testing.T) {
	if err := checkTransition(models.StatutEnAttente, models.StatutConfirmee); err != nil {
		t.Fatalf("en_attente -> confirmee refused: %v", err)
	}
	if err := checkTransition(models.StatutEnAttente, models.StatutAnnulee); err != nil {
		t.Fatalf("en_attente -> annulee refused: %v", err)
	}
	if err := checkTransition(models.StatutConfirmee, models.StatutAnnulee); !domain.IsState(err) {
		t.Fatalf("confirmee -> annulee must fail, got %v", err)
	}
	if err := checkTransition(models.StatutAnnulee, models.StatutConfirmee); !domain.IsState(err) {
		t.Fatalf("annulee -> confirmee must fail, got %v", err)
	}
}

// Full create of a flight reservation with an inline client, the client as
// traveler, and automatic facture issuance.
func TestCreateFlightReservationFullFlow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	factureCols := []string{"id", "reservation_id", "numero", "date_facture",
		"montant_sous_total", "montant_taxes", "montant_total", "statut", "pdf_path", "created_at", "updated_at"}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO clients").WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectQuery("SELECT 1 FROM reservations").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))
	mock.ExpectExec("INSERT INTO reservations").WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectQuery("SELECT id FROM reservation_flight_details").WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec("INSERT INTO reservation_flight_details").WillReturnResult(sqlmock.NewResult(6, 1))
	mock.ExpectExec("INSERT INTO participants").WillReturnResult(sqlmock.NewResult(9, 1))
	mock.ExpectExec("UPDATE reservations SET passenger_id").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM factures WHERE reservation_id").WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows(factureCols))
	mock.ExpectExec("INSERT INTO factures").WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectExec("UPDATE factures SET statut").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	svc := ReservationService{DB: db, Now: fixedNow}
	rv, err := svc.CreateReservation(ReservationInput{
		Type:              models.TypeBilletAvion,
		Client:            &ClientInput{Nom: "Diop", Prenom: "Awa"},
		PassengerIsClient: true,
		Flight:            &FlightInput{VilleDepart: "DSS", VilleArrivee: "CDG", DateDepart: "2026-03-01"},
		MontantTotal:      250000,
	})
	if err != nil {
		t.Fatalf("CreateReservation error: %v", err)
	}
	if rv.ID != 42 || rv.ClientID != 5 || rv.PassengerID != 9 {
		t.Fatalf("linked ids wrong: %+v", rv)
	}
	if rv.Statut != models.StatutConfirmee {
		t.Fatalf("default statut = %s, want confirmee", rv.Statut)
	}
	if rv.MontantSousTotal != 250000 || rv.MontantTotal != 250000 {
		t.Fatalf("montant fallback broken: %+v", rv)
	}
	if !regexp.MustCompile(`^UT-AV-20260301-[A-Z0-9]{6}$`).MatchString(rv.Reference) {
		t.Fatalf("reference shape: %q", rv.Reference)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateReservationRequiresClient(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	svc := ReservationService{DB: db}
	_, err = svc.CreateReservation(ReservationInput{
		Type:   models.TypeBilletAvion,
		Flight: &FlightInput{VilleDepart: "DSS", VilleArrivee: "CDG"},
	})
	if !domain.IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestCreateReservationProduitTypeMismatch(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery("FROM clients WHERE id").WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "nom", "prenom", "email", "telephone",
			"adresse", "pays", "notes", "created_at", "updated_at", "deleted_at"}).
			AddRow(1, "Diop", "Awa", "", "", "", "", "", now, now, nil))
	mock.ExpectQuery("FROM produits WHERE id").WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "nom", "type", "description", "prix_base",
			"actif", "created_at", "updated_at"}).
			AddRow(4, "Hilton Dakar", models.ProduitTypeHotel, "", 90000.0, true, now, now))
	mock.ExpectRollback()

	svc := ReservationService{DB: db}
	_, err = svc.CreateReservation(ReservationInput{
		Type:      models.TypeVoiture,
		ClientID:  1,
		ProduitID: 4,
	})
	if !domain.IsValidation(err) {
		t.Fatalf("expected ValidationError on produit type mismatch, got %v", err)
	}
}

func TestCancelOnlyFromEnAttente(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("FROM reservations WHERE id").WithArgs(int64(42)).
		WillReturnRows(reservationRow(42, models.TypeBilletAvion, models.StatutConfirmee))
	mock.ExpectRollback()

	svc := ReservationService{DB: db}
	if _, err := svc.Cancel(42); !domain.IsState(err) {
		t.Fatalf("cancelling a confirmed reservation: expected StateError, got %v", err)
	}
}

func TestConfirmRefusesCancelled(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("FROM reservations WHERE id").WithArgs(int64(42)).
		WillReturnRows(reservationRow(42, models.TypeBilletAvion, models.StatutAnnulee))
	mock.ExpectRollback()

	svc := ReservationService{DB: db}
	if _, _, err := svc.Confirm(42); !domain.IsState(err) {
		t.Fatalf("confirming a cancelled reservation: expected StateError, got %v", err)
	}
}

// Confirming twice returns the same facture without creating a second one.
func TestConfirmIdempotent(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	factureCols := []string{"id", "reservation_id", "numero", "date_facture",
		"montant_sous_total", "montant_taxes", "montant_total", "statut", "pdf_path", "created_at", "updated_at"}
	now := time.Now()
	existingFacture := func() *sqlmock.Rows {
		return sqlmock.NewRows(factureCols).
			AddRow(3, 42, "FAC-20260301-ABC123", "2026-03-01", 250000.0, 0.0, 250000.0, models.FactureEmis, "", now, now)
	}

	for i := 0; i < 2; i++ {
		mock.ExpectBegin()
		mock.ExpectQuery("FROM reservations WHERE id").WithArgs(int64(42)).
			WillReturnRows(reservationRow(42, models.TypeBilletAvion, models.StatutConfirmee))
		mock.ExpectQuery("FROM factures WHERE reservation_id").WithArgs(int64(42)).
			WillReturnRows(existingFacture())
		mock.ExpectCommit()
	}

	svc := ReservationService{DB: db}
	_, first, err := svc.Confirm(42)
	if err != nil {
		t.Fatalf("first Confirm error: %v", err)
	}
	_, second, err := svc.Confirm(42)
	if err != nil {
		t.Fatalf("second Confirm error: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("idempotence broken: facture ids %d and %d", first.ID, second.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

// Full create of an assurance reservation: detail upsert, exactly one
// beneficiary participant, passenger_id back-link, facture issuance.
func TestCreateAssuranceReservationFullFlow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	factureCols := []string{"id", "reservation_id", "numero", "date_facture",
		"montant_sous_total", "montant_taxes", "montant_total", "statut", "pdf_path", "created_at", "updated_at"}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO clients").WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectQuery("SELECT 1 FROM reservations").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))
	mock.ExpectExec("INSERT INTO reservations").WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectQuery("SELECT id FROM reservation_assurances").WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec("INSERT INTO reservation_assurances").WillReturnResult(sqlmock.NewResult(6, 1))
	mock.ExpectExec("INSERT INTO participants").
		WithArgs(int64(42), models.RoleBeneficiary, "Diop", "Awa", nil, nil, nil, nil).
		WillReturnResult(sqlmock.NewResult(9, 1))
	mock.ExpectExec("UPDATE reservations SET passenger_id").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM factures WHERE reservation_id").WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows(factureCols))
	mock.ExpectExec("INSERT INTO factures").WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectExec("UPDATE factures SET statut").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	svc := ReservationService{DB: db, Now: fixedNow}
	rv, err := svc.CreateReservation(ReservationInput{
		Type:              models.TypeAssurance,
		Client:            &ClientInput{Nom: "Diop", Prenom: "Awa"},
		PassengerIsClient: true,
		Assurance:         &AssuranceInput{Libelle: "Assurance voyage Europe", DateDebut: "2026-03-10"},
		MontantTotal:      45000,
	})
	if err != nil {
		t.Fatalf("CreateReservation error: %v", err)
	}
	if rv.ID != 42 || rv.ClientID != 5 {
		t.Fatalf("linked ids wrong: %+v", rv)
	}
	if rv.PassengerID != 9 {
		t.Fatalf("passenger_id must point to the beneficiary participant, got %d", rv.PassengerID)
	}
	if !regexp.MustCompile(`^UT-ASS-20260301-[A-Z0-9]{6}$`).MatchString(rv.Reference) {
		t.Fatalf("reference shape: %q", rv.Reference)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
