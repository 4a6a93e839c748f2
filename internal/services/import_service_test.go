package services

import (
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestParseRowPenaltyLine(t *testing.T) {
	svc := ImportService{Year: 2026, Month: 1}

	row, _, perr := svc.parseRow(1, []string{"13/1", "DIOP Awa", "Pénalité changement de billet", "DSS", "CDG", "", "50 000"})
	if perr != "" {
		t.Fatalf("parseRow error: %s", perr)
	}
	if row.passNom != "DIOP" || row.passPre != "Awa" {
		t.Fatalf("penalty row: payer not used as passenger: %+v", row)
	}
	if row.montant != 50000 {
		t.Fatalf("montant = %v", row.montant)
	}
}

func TestParseRowBasics(t *testing.T) {
	svc := ImportService{Year: 2026, Month: 1}

	row, _, perr := svc.parseRow(1, []string{"13/1/2026", "Ndiaye Fatou", "Sarr Moussa", "DSS", "CDG", "ab12cd", "1 250 000"})
	if perr != "" {
		t.Fatalf("parseRow error: %s", perr)
	}
	if row.date.Format("2006-01-02") != "2026-01-13" {
		t.Fatalf("date = %s", row.date.Format("2006-01-02"))
	}
	if row.payerNom != "Ndiaye" || row.passNom != "Sarr" {
		t.Fatalf("names: %+v", row)
	}
	if row.reference != "AB12CD" {
		t.Fatalf("reference not uppercased: %q", row.reference)
	}
	if row.depart != "DSS" || row.arrivee != "CDG" {
		t.Fatalf("route: %+v", row)
	}

	// unusable dates are reported, not fatal
	if _, _, perr := svc.parseRow(2, []string{"TOTAL", "Ndiaye Fatou", "", "", "", "", ""}); perr == "" {
		t.Fatalf("expected a row error for an unusable date")
	}
}

func TestImportSkipsBadRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	// header + garbage rows only: everything skipped, nothing written
	input := strings.Join([]string{
		"Date,Payeur,Bénéficiaire,Départ,Arrivée,Référence,Montant",
		"pas une date,Diop Awa,,DSS,CDG,,100",
		",,,,,,",
	}, "\n")

	svc := ImportService{DB: db, Year: 2026, Month: 1}
	summary, err := svc.ImportReader(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ImportReader error: %v", err)
	}
	if summary.Created != 0 || summary.Updated != 0 || summary.Skipped != 3 {
		t.Fatalf("summary: %+v", summary)
	}
	if len(summary.Errors) == 0 {
		t.Fatalf("row errors not reported")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("writes issued for skipped rows: %v", err)
	}
}

func TestImportDryRunDoesNotWrite(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	// fingerprint lookup only, no transaction, no insert
	mock.ExpectQuery("FROM reservations WHERE import_hash").
		WillReturnRows(sqlmock.NewRows(reservationCols))

	svc := ImportService{DB: db, Year: 2026, Month: 1, DryRun: true}
	summary, err := svc.ImportReader(strings.NewReader("13/1,Diop Awa,,DSS,CDG,,250 000\n"))
	if err != nil {
		t.Fatalf("ImportReader error: %v", err)
	}
	if summary.Created != 1 || summary.Updated != 0 || summary.Skipped != 0 {
		t.Fatalf("summary: %+v", summary)
	}
	if !summary.DryRun {
		t.Fatalf("summary does not flag dry run")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unexpected statements in dry run: %v", err)
	}
}

// A re-imported row with the same fingerprint updates the existing
// reservation instead of creating a duplicate.
func TestImportSecondRunUpdates(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("FROM reservations WHERE import_hash").
		WillReturnRows(reservationRow(42, "billet_avion", "confirmee"))
	mock.ExpectExec("UPDATE reservations SET").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	svc := ImportService{DB: db, Year: 2026, Month: 1}
	summary, err := svc.ImportReader(strings.NewReader("13/1,Diop Awa,,DSS,CDG,,250 000\n"))
	if err != nil {
		t.Fatalf("ImportReader error: %v", err)
	}
	if summary.Created != 0 || summary.Updated != 1 {
		t.Fatalf("summary: %+v", summary)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

// Two rows identical except for their blank references collapse onto one
// fingerprint.
func TestImportFingerprintCollapsesDuplicateRows(t *testing.T) {
	svc := ImportService{Year: 2026, Month: 1, Source: "import"}

	rowA, _, perr := svc.parseRow(1, []string{"13/1", "Diop Awa", "", "DSS", "CDG", "", "250 000"})
	if perr != "" {
		t.Fatalf("rowA: %s", perr)
	}
	rowB, _, perr := svc.parseRow(2, []string{"13/1", "DIOP  AWA", "", "dss", "cdg", "", "250000"})
	if perr != "" {
		t.Fatalf("rowB: %s", perr)
	}
	if svc.fingerprint(rowA) != svc.fingerprint(rowB) {
		t.Fatalf("identical rows produced different fingerprints")
	}
}

func TestImportFullCreateFlow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	clientCols := []string{"id", "nom", "prenom", "email", "telephone",
		"adresse", "pays", "notes", "created_at", "updated_at", "deleted_at"}
	factureCols := []string{"id", "reservation_id", "numero", "date_facture",
		"montant_sous_total", "montant_taxes", "montant_total", "statut", "pdf_path", "created_at", "updated_at"}

	mock.ExpectBegin()
	mock.ExpectQuery("FROM reservations WHERE import_hash").
		WillReturnRows(sqlmock.NewRows(reservationCols))
	mock.ExpectQuery("FROM clients WHERE nom").WithArgs("Diop", "Awa").
		WillReturnRows(sqlmock.NewRows(clientCols))
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

	svc := ImportService{DB: db, Year: 2026, Month: 1}
	summary, err := svc.ImportReader(strings.NewReader("13/1,Diop Awa,,DSS,CDG,,250 000\n"))
	if err != nil {
		t.Fatalf("ImportReader error: %v", err)
	}
	if summary.Created != 1 || summary.Updated != 0 || summary.Skipped != 0 {
		t.Fatalf("summary: %+v", summary)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
