package handlers

import (
	"net/http"

	"univtours/internal/domain"
	"univtours/internal/domain/models"
	"univtours/internal/http/middleware"
	"univtours/internal/repositories"
	"univtours/internal/services"

	"github.com/gin-gonic/gin"
)

func invoiceService(c *gin.Context) services.InvoiceService {
	return services.InvoiceService{
		FactureRepo:  repositories.FactureRepo{},
		PaiementRepo: repositories.PaiementRepo{},
		RequestID:    middleware.GetRequestID(c),
	}
}

// GET /api/factures
func GetFactures(c *gin.Context) {
	filter := repositories.FactureFilter{
		Statut:   c.Query("statut"),
		ClientID: int64(QueryInt(c, "client_id", 0)),
		Search:   c.Query("search"),
		Limit:    QueryInt(c, "limit", 50),
		Offset:   QueryInt(c, "offset", 0),
	}
	factures, err := repositories.FactureRepo{}.List(filter)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"factures": factures})
}

// POST /api/factures
func CreateFacture(c *gin.Context) {
	var in struct {
		ReservationID int64 `json:"reservation_id"`
	}
	if !BindJSONOrError(c, &in) {
		return
	}
	if in.ReservationID <= 0 {
		RespondError(c, http.StatusUnprocessableEntity, "reservation_id requis", nil)
		return
	}
	rv, err := repositories.ReservationRepo{}.GetByID(in.ReservationID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	facture, err := invoiceService(c).EnsureFactureEmise(rv)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"facture": facture})
}

// GET /api/factures/:id
func GetFactureByID(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}
	facture, err := repositories.FactureRepo{}.GetByID(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	paiements, err := repositories.PaiementRepo{}.ListByFacture(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	meta := services.ComputePayMeta(facture.MontantTotal, paiements)
	c.JSON(http.StatusOK, gin.H{
		"facture":   facture,
		"paiements": paiements,
		"pay_meta":  meta,
	})
}

// POST /api/factures/:id/emettre
func EmettreFacture(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}
	facture, err := invoiceService(c).EmettreFacture(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"facture": facture})
}

// POST /api/factures/:id/annuler
func AnnulerFacture(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}
	facture, err := invoiceService(c).AnnulerFacture(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"facture": facture})
}

// GET /api/factures/:id/pdf
func GetFacturePDF(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}
	facture, err := repositories.FactureRepo{}.GetByID(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	if facture.Statut == models.FactureAnnule {
		RespondDomainError(c, domain.StateError{Resource: "facture", Status: facture.Statut,
			Msg: "impossible de générer le PDF d'une facture annulée"})
		return
	}
	svc := services.DocsService{RequestID: middleware.GetRequestID(c)}
	pdfBytes, filename, err := svc.GenerateFacture(facture.ReservationID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	if err := (repositories.FactureRepo{}).SetPdfPath(facture.ID, filename); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}

// POST /api/factures/:id/paiements
func CreatePaiement(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}
	var in services.PaiementInput
	if !BindJSONOrError(c, &in) {
		return
	}
	paiement, facture, err := invoiceService(c).RecordPaiement(id, in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"paiement": paiement, "facture": facture})
}

// GET /api/factures/:id/paiements
func GetPaiements(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}
	if _, err := (repositories.FactureRepo{}).GetByID(id); err != nil {
		RespondDomainError(c, err)
		return
	}
	paiements, err := repositories.PaiementRepo{}.ListByFacture(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"paiements": paiements})
}
