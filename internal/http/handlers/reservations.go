package handlers

import (
	"net/http"

	"univtours/internal/http/middleware"
	"univtours/internal/repositories"
	"univtours/internal/services"

	"github.com/gin-gonic/gin"
)

func reservationService(c *gin.Context) services.ReservationService {
	return services.ReservationService{RequestID: middleware.GetRequestID(c)}
}

// GET /api/reservations
func GetReservations(c *gin.Context) {
	filter := repositories.ReservationFilter{
		Type:   c.Query("type"),
		Statut: c.Query("statut"),
		Month:  c.Query("month"),
		Search: c.Query("search"),
		Limit:  QueryInt(c, "limit", 50),
		Offset: QueryInt(c, "offset", 0),
	}
	reservations, err := reservationService(c).List(filter)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservations": reservations})
}

// GET /api/reservations/:id
func GetReservationByID(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}
	detail, err := reservationService(c).GetDetail(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// POST /api/reservations
func CreateReservation(c *gin.Context) {
	var in services.ReservationInput
	if !BindJSONOrError(c, &in) {
		return
	}
	rv, err := reservationService(c).CreateReservation(in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"reservation": rv})
}

// PUT /api/reservations/:id
func UpdateReservation(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}
	var in services.ReservationUpdateInput
	if !BindJSONOrError(c, &in) {
		return
	}
	rv, err := reservationService(c).UpdateReservation(id, in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservation": rv})
}

// POST /api/reservations/:id/confirm
func ConfirmReservation(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}
	rv, facture, err := reservationService(c).Confirm(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservation": rv, "facture": facture})
}

// POST /api/reservations/:id/cancel
func CancelReservation(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}
	rv, err := reservationService(c).Cancel(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservation": rv})
}

// DELETE /api/reservations/:id
func DeleteReservation(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}
	if err := reservationService(c).Delete(id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "réservation supprimée"})
}

// GET /api/reservations/:id/devis-pdf
func GetReservationDevisPDF(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}
	svc := services.DocsService{RequestID: middleware.GetRequestID(c)}
	pdfBytes, filename, err := svc.GenerateDevis(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}

// GET /api/reservations/:id/facture-pdf
func GetReservationFacturePDF(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}
	svc := services.DocsService{RequestID: middleware.GetRequestID(c)}
	pdfBytes, filename, err := svc.GenerateFacture(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}
