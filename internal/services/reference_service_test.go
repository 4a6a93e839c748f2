package services

import (
	"regexp"
	"testing"
	"time"

	"univtours/internal/domain/models"
	"univtours/internal/repositories"

	"github.com/DATA-DOG/go-sqlmock"
)

func fixedNow() time.Time {
	return time.Date(2026, time.March, 1, 10, 0, 0, 0, time.Local)
}

func TestMakeReferenceSuppliedWinsVerbatim(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT 1 FROM reservations").WithArgs("IMP-001").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	svc := ReferenceService{Repo: repositories.ReservationRepo{Q: db}, Now: fixedNow}
	ref, err := svc.MakeReference(models.TypeHotel, "IMP-001", "")
	if err != nil {
		t.Fatalf("MakeReference returned error: %v", err)
	}
	if ref != "IMP-001" {
		t.Fatalf("supplied reference not kept verbatim: %q", ref)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMakeReferencePNRForFlights(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT 1 FROM reservations").WithArgs("AB12CD").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	svc := ReferenceService{Repo: repositories.ReservationRepo{Q: db}, Now: fixedNow}
	ref, err := svc.MakeReference(models.TypeBilletAvion, "", "ab12cd")
	if err != nil {
		t.Fatalf("MakeReference returned error: %v", err)
	}
	if ref != "AB12CD" {
		t.Fatalf("PNR not uppercased into reference: %q", ref)
	}
}

func TestMakeReferenceSynthesizedShape(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT 1 FROM reservations").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	svc := ReferenceService{Repo: repositories.ReservationRepo{Q: db}, Now: fixedNow}
	ref, err := svc.MakeReference(models.TypeVoiture, "", "")
	if err != nil {
		t.Fatalf("MakeReference returned error: %v", err)
	}
	want := regexp.MustCompile(`^UT-CAR-20260301-[A-Z0-9]{6}$`)
	if !want.MatchString(ref) {
		t.Fatalf("synthesized reference has wrong shape: %q", ref)
	}
}

func TestEnsureUniqueSuffixes(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT 1 FROM reservations").WithArgs("AB12CD").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectQuery("SELECT 1 FROM reservations").WithArgs("AB12CD-2").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectQuery("SELECT 1 FROM reservations").WithArgs("AB12CD-3").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	svc := ReferenceService{Repo: repositories.ReservationRepo{Q: db}}
	ref, err := svc.EnsureUnique("AB12CD")
	if err != nil {
		t.Fatalf("EnsureUnique returned error: %v", err)
	}
	if ref != "AB12CD-3" {
		t.Fatalf("EnsureUnique = %q, want AB12CD-3", ref)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestImportFingerprintNormalization(t *testing.T) {
	a := ImportFingerprint("import", "2026-01-13", "DIOP  Awa", "Diop Awa", "DSS", "CDG", "", 250000)
	b := ImportFingerprint("IMPORT", "2026-01-13", "diop awa", "DIOP AWA", "dss", "cdg", "", 250000)
	if a != b {
		t.Fatalf("fingerprint is not case/whitespace-insensitive: %s vs %s", a, b)
	}

	c := ImportFingerprint("import", "2026-01-13", "DIOP Awa", "Diop Awa", "DSS", "CDG", "", 250001)
	if a == c {
		t.Fatalf("fingerprint ignored the total")
	}

	d := ImportFingerprint("import", "2026-01-14", "DIOP Awa", "Diop Awa", "DSS", "CDG", "", 250000)
	if a == d {
		t.Fatalf("fingerprint ignored the date")
	}
}

func TestGenerateFactureNumero(t *testing.T) {
	numero := GenerateFactureNumero(fixedNow())
	want := regexp.MustCompile(`^FAC-20260301-[A-Z0-9]{6}$`)
	if !want.MatchString(numero) {
		t.Fatalf("facture numero has wrong shape: %q", numero)
	}
}
