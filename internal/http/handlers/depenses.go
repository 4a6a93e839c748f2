package handlers

import (
	"net/http"
	"strings"

	"univtours/internal/domain"
	"univtours/internal/domain/models"
	"univtours/internal/repositories"

	"github.com/gin-gonic/gin"
)

// GET /api/depenses
func GetDepenses(c *gin.Context) {
	depenses, err := repositories.DepenseRepo{}.List(
		c.Query("categorie"), c.Query("statut"), QueryInt(c, "limit", 50), QueryInt(c, "offset", 0))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"depenses": depenses})
}

// GET /api/depenses/:id
func GetDepenseByID(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}
	depense, err := repositories.DepenseRepo{}.GetByID(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"depense": depense})
}

// POST /api/depenses
func CreateDepense(c *gin.Context) {
	var d models.Depense
	if !BindJSONOrError(c, &d) {
		return
	}
	if strings.TrimSpace(d.Libelle) == "" {
		RespondDomainError(c, domain.ValidationError{Field: "libelle", Msg: "libellé requis"})
		return
	}
	if d.Montant <= 0 {
		RespondDomainError(c, domain.ValidationError{Field: "montant", Msg: "montant doit être positif"})
		return
	}
	id, err := repositories.DepenseRepo{}.Create(d)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	d.ID = id
	c.JSON(http.StatusCreated, gin.H{"depense": d})
}

// PUT /api/depenses/:id
func UpdateDepense(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}
	var d models.Depense
	if !BindJSONOrError(c, &d) {
		return
	}
	repo := repositories.DepenseRepo{}
	if _, err := repo.GetByID(id); err != nil {
		RespondDomainError(c, err)
		return
	}
	if err := repo.Update(id, d); err != nil {
		RespondDomainError(c, err)
		return
	}
	updated, err := repo.GetByID(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"depense": updated})
}

// DELETE /api/depenses/:id
func DeleteDepense(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}
	repo := repositories.DepenseRepo{}
	if _, err := repo.GetByID(id); err != nil {
		RespondDomainError(c, err)
		return
	}
	if err := repo.Delete(id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "dépense supprimée"})
}
