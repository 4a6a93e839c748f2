package services

import (
	"testing"
	"time"

	"univtours/internal/domain"
	"univtours/internal/domain/models"
	"univtours/internal/repositories"

	"github.com/DATA-DOG/go-sqlmock"
)

func recu(montant float64) models.Paiement {
	return models.Paiement{Montant: montant, Statut: models.PaiementRecu}
}

func TestComputePayMetaThresholds(t *testing.T) {
	meta := ComputePayMeta(250000, nil)
	if meta.Label != LabelNonPaye || meta.Percent != 0 || meta.Remaining != 250000 {
		t.Fatalf("empty payments: %+v", meta)
	}

	meta = ComputePayMeta(250000, []models.Paiement{recu(100000)})
	if meta.Label != LabelPartiellementPaye || meta.Percent != 40 || meta.Paid != 100000 {
		t.Fatalf("partial payment: %+v", meta)
	}

	meta = ComputePayMeta(250000, []models.Paiement{recu(100000), recu(150000)})
	if meta.Label != LabelPaye || meta.Percent != 100 || meta.Remaining != 0 {
		t.Fatalf("full payment: %+v", meta)
	}

	// pending/failed payments never move the needle
	meta = ComputePayMeta(250000, []models.Paiement{
		{Montant: 250000, Statut: models.PaiementEnAttente},
		{Montant: 250000, Statut: models.PaiementEchoue},
	})
	if meta.Label != LabelNonPaye || meta.Paid != 0 {
		t.Fatalf("non-received payments counted: %+v", meta)
	}

	// overpayment reported capped
	meta = ComputePayMeta(250000, []models.Paiement{recu(300000)})
	if meta.Paid != 250000 || meta.Remaining != 0 || meta.Label != LabelPaye {
		t.Fatalf("overpayment not capped: %+v", meta)
	}
}

func TestStatutForPaid(t *testing.T) {
	if got := statutForPaid(models.FactureEmis, 0, 250000); got != models.FactureEmis {
		t.Fatalf("zero paid must not downgrade: %s", got)
	}
	if got := statutForPaid(models.FactureEmis, 100000, 250000); got != models.FacturePayePartiellement {
		t.Fatalf("partial: %s", got)
	}
	if got := statutForPaid(models.FactureEmis, 250000, 250000); got != models.FacturePayeTotalement {
		t.Fatalf("exact total: %s", got)
	}
	// within epsilon of the total counts as fully paid
	if got := statutForPaid(models.FactureEmis, 250000-1e-6, 250000); got != models.FacturePayeTotalement {
		t.Fatalf("epsilon boundary: %s", got)
	}
}

func TestEnsureFactureEmiseCreatesThenReuses(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	res := models.Reservation{ID: 7, Statut: models.StatutConfirmee, MontantSousTotal: 250000, MontantTotal: 250000}
	svc := InvoiceService{
		FactureRepo:  repositories.FactureRepo{Q: db},
		PaiementRepo: repositories.PaiementRepo{Q: db},
		Now:          fixedNow,
	}

	factureCols := []string{"id", "reservation_id", "numero", "date_facture",
		"montant_sous_total", "montant_taxes", "montant_total", "statut", "pdf_path", "created_at", "updated_at"}

	// first call: nothing yet, create brouillon then promote
	mock.ExpectQuery("FROM factures WHERE reservation_id").WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(factureCols))
	mock.ExpectExec("INSERT INTO factures").WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectExec("UPDATE factures SET statut").WillReturnResult(sqlmock.NewResult(0, 1))

	first, err := svc.EnsureFactureEmise(res)
	if err != nil {
		t.Fatalf("first EnsureFactureEmise error: %v", err)
	}
	if first.ID != 3 || first.Statut != models.FactureEmis {
		t.Fatalf("first facture: %+v", first)
	}

	// second call: existing emis facture returned as-is
	now := time.Now()
	mock.ExpectQuery("FROM factures WHERE reservation_id").WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(factureCols).
			AddRow(3, 7, first.Numero, "2026-03-01", 250000.0, 0.0, 250000.0, models.FactureEmis, "", now, now))

	second, err := svc.EnsureFactureEmise(res)
	if err != nil {
		t.Fatalf("second EnsureFactureEmise error: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("idempotence broken: first id %d, second id %d", first.ID, second.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEnsureFactureEmiseRefusesCancelled(t *testing.T) {
	svc := InvoiceService{Now: fixedNow}
	_, err := svc.EnsureFactureEmise(models.Reservation{ID: 1, Statut: models.StatutAnnulee})
	if !domain.IsState(err) {
		t.Fatalf("expected StateError, got %v", err)
	}
}

func TestRecordPaiementReconciliation(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	factureCols := []string{"id", "reservation_id", "numero", "date_facture",
		"montant_sous_total", "montant_taxes", "montant_total", "statut", "pdf_path", "created_at", "updated_at"}
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("FROM factures WHERE id").WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(factureCols).
			AddRow(3, 7, "FAC-20260301-ABC123", "2026-03-01", 250000.0, 0.0, 250000.0, models.FactureEmis, "", now, now))
	mock.ExpectExec("INSERT INTO paiements").WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectQuery("FROM paiements WHERE facture_id").WithArgs(int64(3), models.PaiementRecu).
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(100000.0))
	mock.ExpectExec("UPDATE factures SET statut").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	svc := InvoiceService{DB: db, Now: fixedNow}
	paiement, facture, err := svc.RecordPaiement(3, PaiementInput{Montant: 100000, ModePaiement: "especes"})
	if err != nil {
		t.Fatalf("RecordPaiement error: %v", err)
	}
	if paiement.ID != 11 || paiement.Statut != models.PaiementRecu {
		t.Fatalf("paiement: %+v", paiement)
	}
	if facture.Statut != models.FacturePayePartiellement {
		t.Fatalf("facture statut = %s, want paye_partiellement", facture.Statut)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRecordPaiementRefusesCancelledFacture(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	factureCols := []string{"id", "reservation_id", "numero", "date_facture",
		"montant_sous_total", "montant_taxes", "montant_total", "statut", "pdf_path", "created_at", "updated_at"}
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("FROM factures WHERE id").WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(factureCols).
			AddRow(3, 7, "FAC-20260301-ABC123", "2026-03-01", 250000.0, 0.0, 250000.0, models.FactureAnnule, "", now, now))
	mock.ExpectRollback()

	svc := InvoiceService{DB: db, Now: fixedNow}
	_, _, err = svc.RecordPaiement(3, PaiementInput{Montant: 100000, ModePaiement: "especes"})
	if !domain.IsState(err) {
		t.Fatalf("expected StateError, got %v", err)
	}
}

func TestRecordPaiementValidation(t *testing.T) {
	svc := InvoiceService{}
	if _, _, err := svc.RecordPaiement(3, PaiementInput{Montant: 0, ModePaiement: "especes"}); !domain.IsValidation(err) {
		t.Fatalf("zero montant: expected ValidationError, got %v", err)
	}
	if _, _, err := svc.RecordPaiement(3, PaiementInput{Montant: 1000}); !domain.IsValidation(err) {
		t.Fatalf("missing mode: expected ValidationError, got %v", err)
	}
	if _, _, err := svc.RecordPaiement(3, PaiementInput{Montant: 1000, ModePaiement: "especes", Statut: "autre"}); !domain.IsValidation(err) {
		t.Fatalf("bad statut: expected ValidationError, got %v", err)
	}
}

func TestEmettreFacturePromotesBrouillon(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	factureCols := []string{"id", "reservation_id", "numero", "date_facture",
		"montant_sous_total", "montant_taxes", "montant_total", "statut", "pdf_path", "created_at", "updated_at"}
	now := time.Now()

	mock.ExpectQuery("FROM factures WHERE id").WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(factureCols).
			AddRow(3, 7, "FAC-20260301-ABC123", "2026-03-01", 250000.0, 0.0, 250000.0, models.FactureBrouillon, "", now, now))
	mock.ExpectExec("UPDATE factures SET statut").WillReturnResult(sqlmock.NewResult(0, 1))

	svc := InvoiceService{FactureRepo: repositories.FactureRepo{Q: db}, Now: fixedNow}
	facture, err := svc.EmettreFacture(3)
	if err != nil {
		t.Fatalf("EmettreFacture error: %v", err)
	}
	if facture.Statut != models.FactureEmis {
		t.Fatalf("statut = %s, want emis", facture.Statut)
	}

	// cancelled facture cannot be issued
	mock.ExpectQuery("FROM factures WHERE id").WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows(factureCols).
			AddRow(4, 7, "FAC-20260301-DEF456", "2026-03-01", 250000.0, 0.0, 250000.0, models.FactureAnnule, "", now, now))
	if _, err := svc.EmettreFacture(4); !domain.IsState(err) {
		t.Fatalf("expected StateError, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAnnulerFactureWithoutPayments(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	factureCols := []string{"id", "reservation_id", "numero", "date_facture",
		"montant_sous_total", "montant_taxes", "montant_total", "statut", "pdf_path", "created_at", "updated_at"}
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("FROM factures WHERE id").WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(factureCols).
			AddRow(3, 7, "FAC-20260301-ABC123", "2026-03-01", 250000.0, 0.0, 250000.0, models.FactureEmis, "", now, now))
	mock.ExpectQuery("FROM paiements WHERE facture_id").WithArgs(int64(3), models.PaiementRecu).
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(0.0))
	mock.ExpectExec("UPDATE factures SET statut").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	svc := InvoiceService{DB: db, Now: fixedNow}
	facture, err := svc.AnnulerFacture(3)
	if err != nil {
		t.Fatalf("AnnulerFacture error: %v", err)
	}
	if facture.Statut != models.FactureAnnule {
		t.Fatalf("statut = %s, want annule", facture.Statut)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAnnulerFactureRefusesReceivedPayments(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	factureCols := []string{"id", "reservation_id", "numero", "date_facture",
		"montant_sous_total", "montant_taxes", "montant_total", "statut", "pdf_path", "created_at", "updated_at"}
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("FROM factures WHERE id").WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(factureCols).
			AddRow(3, 7, "FAC-20260301-ABC123", "2026-03-01", 250000.0, 0.0, 250000.0, models.FacturePayePartiellement, "", now, now))
	mock.ExpectQuery("FROM paiements WHERE facture_id").WithArgs(int64(3), models.PaiementRecu).
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(100000.0))
	mock.ExpectRollback()

	svc := InvoiceService{DB: db, Now: fixedNow}
	if _, err := svc.AnnulerFacture(3); !domain.IsState(err) {
		t.Fatalf("expected StateError, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEnsureFactureEmiseIgnoresCancelledFacture(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	factureCols := []string{"id", "reservation_id", "numero", "date_facture",
		"montant_sous_total", "montant_taxes", "montant_total", "statut", "pdf_path", "created_at", "updated_at"}
	now := time.Now()

	// the latest facture is voided: a fresh one is issued instead
	mock.ExpectQuery("FROM factures WHERE reservation_id").WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(factureCols).
			AddRow(3, 7, "FAC-20260301-ABC123", "2026-03-01", 250000.0, 0.0, 250000.0, models.FactureAnnule, "", now, now))
	mock.ExpectExec("INSERT INTO factures").WillReturnResult(sqlmock.NewResult(4, 1))
	mock.ExpectExec("UPDATE factures SET statut").WillReturnResult(sqlmock.NewResult(0, 1))

	res := models.Reservation{ID: 7, Statut: models.StatutConfirmee, MontantSousTotal: 250000, MontantTotal: 250000}
	svc := InvoiceService{
		FactureRepo:  repositories.FactureRepo{Q: db},
		PaiementRepo: repositories.PaiementRepo{Q: db},
		Now:          fixedNow,
	}
	facture, err := svc.EnsureFactureEmise(res)
	if err != nil {
		t.Fatalf("EnsureFactureEmise error: %v", err)
	}
	if facture.ID != 4 || facture.Statut != models.FactureEmis {
		t.Fatalf("new facture expected, got %+v", facture)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
