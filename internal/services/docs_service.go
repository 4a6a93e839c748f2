package services

import (
	"bytes"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"univtours/internal/domain"
	"univtours/internal/domain/models"
	"univtours/internal/utils"

	"github.com/phpdave11/gofpdf"
)

// DocsService renders facture and devis PDFs from a loaded reservation
// graph. Loader can be injected in tests to bypass storage.
type DocsService struct {
	DB        *sql.DB
	RequestID string
	Loader    func(int64) (docData, error)
}

type docData struct {
	ReservationID int64
	Reference     string
	TypeLabel     string
	Statut        string
	ClientName    string
	ClientAddress string
	ClientPhone   string
	ClientEmail   string
	Traveler      string
	Route         string
	Participants  []string
	Numero        string
	DateFacture   string
	SousTotal     float64
	Taxes         float64
	Total         float64
	Pay           PayMeta
}

// GenerateFacture renders the facture PDF for a reservation. The facture
// must already exist (issuance is the engine's job, not the renderer's).
func (s DocsService) GenerateFacture(reservationID int64) ([]byte, string, error) {
	data, err := s.loadDocData(reservationID)
	if err != nil {
		return nil, "", err
	}
	if data.Numero == "" {
		return nil, "", domain.NotFoundError{Resource: "facture"}
	}
	utils.LogEvent(s.RequestID, "docs", "generate_facture", fmt.Sprintf("reservation_id=%d numero=%s", reservationID, data.Numero))
	return buildFacturePDF(data)
}

// GenerateDevis renders a quote for a reservation in any non-cancelled
// state; no facture is required.
func (s DocsService) GenerateDevis(reservationID int64) ([]byte, string, error) {
	data, err := s.loadDocData(reservationID)
	if err != nil {
		return nil, "", err
	}
	utils.LogEvent(s.RequestID, "docs", "generate_devis", fmt.Sprintf("reservation_id=%d reference=%s", reservationID, data.Reference))
	return buildDevisPDF(data)
}

func (s DocsService) loadDocData(reservationID int64) (docData, error) {
	if s.Loader != nil {
		return s.Loader(reservationID)
	}
	detail, err := (ReservationService{DB: s.DB, RequestID: s.RequestID}).GetDetail(reservationID)
	if err != nil {
		return docData{}, err
	}

	out := docData{
		ReservationID: detail.Reservation.ID,
		Reference:     detail.Reservation.Reference,
		TypeLabel:     detail.Reservation.TypeLabel(),
		Statut:        detail.Reservation.Statut,
		ClientName:    strings.TrimSpace(detail.Client.Nom + " " + detail.Client.Prenom),
		ClientAddress: detail.Client.Adresse,
		ClientPhone:   detail.Client.Telephone,
		ClientEmail:   detail.Client.Email,
		SousTotal:     detail.Reservation.MontantSousTotal,
		Taxes:         detail.Reservation.MontantTaxes,
		Total:         detail.Reservation.MontantTotal,
	}
	for _, p := range detail.Participants {
		name := strings.TrimSpace(p.Nom + " " + p.Prenom)
		if p.Role == models.RolePassenger || p.Role == models.RoleBeneficiary {
			out.Traveler = name
			continue
		}
		out.Participants = append(out.Participants, name)
	}
	if detail.Flight != nil {
		out.Route = fmt.Sprintf("%s -> %s", detail.Flight.VilleDepart, detail.Flight.VilleArrivee)
	}
	if detail.Facture != nil {
		out.Numero = detail.Facture.Numero
		out.DateFacture = detail.Facture.DateFacture
		out.Total = detail.Facture.MontantTotal
		out.SousTotal = detail.Facture.MontantSousTotal
		out.Taxes = detail.Facture.MontantTaxes
	}
	if detail.PayMeta != nil {
		out.Pay = *detail.PayMeta
	} else {
		out.Pay = ComputePayMeta(out.Total, nil)
	}
	return out, nil
}

func buildFacturePDF(d docData) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Facture", false)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "FACTURE")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, tr("Numéro    : "+d.Numero))
	pdf.Ln(7)
	pdf.Cell(0, 7, "Date      : "+pdfSafe(d.DateFacture, time.Now().Format("2006-01-02")))
	pdf.Ln(7)
	pdf.Cell(0, 7, tr("Référence : "+d.Reference))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, tr("Facturé à :"))
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 12)
	for _, line := range clientLines(d) {
		pdf.Cell(0, 7, tr(line))
		pdf.Ln(7)
	}
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, tr("Détail :"))
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6, tr("1) "+docLine(d)), "", "", false)
	pdf.Ln(2)

	pdf.Cell(0, 6, "Sous-total : "+utils.FormatCFA(d.SousTotal))
	pdf.Ln(6)
	pdf.Cell(0, 6, "Taxes      : "+utils.FormatCFA(d.Taxes))
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Total : "+utils.FormatCFA(d.Total))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Payé    : %s (%d%%)", utils.FormatCFA(d.Pay.Paid), d.Pay.Percent)))
	pdf.Ln(6)
	pdf.Cell(0, 6, tr("Restant : "+utils.FormatCFA(d.Pay.Remaining)))
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, tr("Statut de paiement : "+d.Pay.Label))
	pdf.Ln(10)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("FACTURE_%s.pdf", filenamePart(d.Numero))
	return buf.Bytes(), filename, nil
}

func buildDevisPDF(d docData) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Devis", false)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "DEVIS")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, tr("Référence : "+d.Reference))
	pdf.Ln(7)
	pdf.Cell(0, 7, "Date      : "+time.Now().Format("2006-01-02"))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, tr("Adressé à :"))
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 12)
	for _, line := range clientLines(d) {
		pdf.Cell(0, 7, tr(line))
		pdf.Ln(7)
	}
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Prestation :")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6, tr("1) "+docLine(d)), "", "", false)
	if len(d.Participants) > 0 {
		pdf.Ln(2)
		pdf.MultiCell(0, 6, tr("Participants : "+strings.Join(d.Participants, ", ")), "", "", false)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Total estimatif : "+utils.FormatCFA(d.Total))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, tr("Ce devis est valable 30 jours et ne vaut pas confirmation de réservation."), "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("DEVIS_%s.pdf", filenamePart(d.Reference))
	return buf.Bytes(), filename, nil
}

func clientLines(d docData) []string {
	lines := []string{"Nom : " + pdfSafe(d.ClientName, "-")}
	if d.ClientAddress != "" {
		lines = append(lines, "Adresse : "+d.ClientAddress)
	}
	if d.ClientPhone != "" {
		lines = append(lines, "Tél : "+d.ClientPhone)
	}
	if d.ClientEmail != "" {
		lines = append(lines, "Email : "+d.ClientEmail)
	}
	return lines
}

func docLine(d docData) string {
	line := d.TypeLabel
	if d.Route != "" {
		line += " " + d.Route
	}
	if d.Traveler != "" {
		line += " - Voyageur : " + d.Traveler
	}
	line += " (" + d.Reference + ")"
	return line
}

func pdfSafe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

func filenamePart(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "NA"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_")
	s = replacer.Replace(s)
	if len(s) > 40 {
		s = s[:40]
	}
	return s
}
