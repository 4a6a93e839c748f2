package services

import (
	"strings"
	"testing"

	"univtours/internal/domain"
)

func testDocData(numero string) docData {
	return docData{
		ReservationID: 42,
		Reference:     "UT-AV-20260301-ABC123",
		TypeLabel:     "Billet d'avion",
		Statut:        "confirmee",
		ClientName:    "Diop Awa",
		ClientPhone:   "+221770000000",
		Traveler:      "Diop Awa",
		Route:         "DSS -> CDG",
		Numero:        numero,
		DateFacture:   "2026-03-01",
		SousTotal:     250000,
		Total:         250000,
		Pay:           PayMeta{Total: 250000, Paid: 100000, Remaining: 150000, Percent: 40, Label: LabelPartiellementPaye},
	}
}

func TestDocsServiceGenerate(t *testing.T) {
	svc := DocsService{Loader: func(id int64) (docData, error) {
		return testDocData("FAC-20260301-ABC123"), nil
	}}

	pdf, filename, err := svc.GenerateFacture(42)
	if err != nil {
		t.Fatalf("GenerateFacture returned error: %v", err)
	}
	if len(pdf) == 0 || !strings.HasPrefix(filename, "FACTURE_") {
		t.Fatalf("GenerateFacture output: %d bytes, filename %q", len(pdf), filename)
	}

	devis, devisName, err := svc.GenerateDevis(42)
	if err != nil {
		t.Fatalf("GenerateDevis returned error: %v", err)
	}
	if len(devis) == 0 || !strings.HasPrefix(devisName, "DEVIS_") {
		t.Fatalf("GenerateDevis output: %d bytes, filename %q", len(devis), devisName)
	}
}

func TestDocsServiceFactureRequiresNumero(t *testing.T) {
	svc := DocsService{Loader: func(id int64) (docData, error) {
		return testDocData(""), nil
	}}

	if _, _, err := svc.GenerateFacture(42); !domain.IsNotFound(err) {
		t.Fatalf("expected NotFoundError without a facture, got %v", err)
	}

	// devis does not need a facture
	if _, _, err := svc.GenerateDevis(42); err != nil {
		t.Fatalf("GenerateDevis should not require a facture: %v", err)
	}
}
