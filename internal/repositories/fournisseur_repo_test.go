package repositories

import (
	"testing"
	"time"

	"univtours/internal/domain"
	"univtours/internal/domain/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
)

func TestFournisseurCreateDuplicateEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("INSERT INTO fournisseurs").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	repo := FournisseurRepo{Q: db}
	_, err = repo.Create(models.Fournisseur{Nom: "Air Teranga", Email: "contact@teranga.sn"})
	if !domain.IsConflict(err) {
		t.Fatalf("expected ConflictError on duplicate email, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestFournisseurListScan(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	now := time.Now()
	cols := []string{"id", "nom", "email", "telephone", "site_web", "description", "created_at", "updated_at"}
	mock.ExpectQuery("FROM fournisseurs ORDER BY nom").WithArgs(50, 0).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(1, "Air Teranga", "contact@teranga.sn", "", "https://teranga.sn", "", now, now).
			AddRow(2, "Hotel Baobab", "resa@baobab.sn", "+221770000000", "", "", now, now))

	repo := FournisseurRepo{Q: db}
	out, err := repo.List(50, 0)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(out) != 2 || out[0].Nom != "Air Teranga" || out[1].Telephone != "+221770000000" {
		t.Fatalf("scan mismatch: %+v", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
