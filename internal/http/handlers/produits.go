package handlers

import (
	"net/http"
	"strings"

	"univtours/internal/domain"
	"univtours/internal/domain/models"
	"univtours/internal/repositories"

	"github.com/gin-gonic/gin"
)

// GET /api/produits
func GetProduits(c *gin.Context) {
	produits, err := repositories.ProduitRepo{}.List(c.Query("type"), QueryInt(c, "limit", 50), QueryInt(c, "offset", 0))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"produits": produits})
}

// GET /api/produits/:id
func GetProduitByID(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}
	produit, err := repositories.ProduitRepo{}.GetByID(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"produit": produit})
}

// POST /api/produits
func CreateProduit(c *gin.Context) {
	var p models.Produit
	if !BindJSONOrError(c, &p) {
		return
	}
	if strings.TrimSpace(p.Nom) == "" {
		RespondDomainError(c, domain.ValidationError{Field: "nom", Msg: "nom requis"})
		return
	}
	switch p.Type {
	case models.ProduitTypeBilletAvion, models.ProduitTypeHotel, models.ProduitTypeVoiture, models.ProduitTypeEvenement:
	default:
		RespondDomainError(c, domain.ValidationError{Field: "type", Msg: "type de produit invalide"})
		return
	}
	id, err := repositories.ProduitRepo{}.Create(p)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	p.ID = id
	c.JSON(http.StatusCreated, gin.H{"produit": p})
}

// PUT /api/produits/:id. The type is immutable; it is ignored if sent.
func UpdateProduit(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}
	var p models.Produit
	if !BindJSONOrError(c, &p) {
		return
	}
	repo := repositories.ProduitRepo{}
	if _, err := repo.GetByID(id); err != nil {
		RespondDomainError(c, err)
		return
	}
	if err := repo.Update(id, p); err != nil {
		RespondDomainError(c, err)
		return
	}
	updated, err := repo.GetByID(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"produit": updated})
}

// DELETE /api/produits/:id
func DeleteProduit(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}
	repo := repositories.ProduitRepo{}
	if _, err := repo.GetByID(id); err != nil {
		RespondDomainError(c, err)
		return
	}
	if err := repo.Delete(id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "produit supprimé"})
}
