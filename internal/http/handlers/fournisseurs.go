package handlers

import (
	"net/http"
	"strings"

	"univtours/internal/domain"
	"univtours/internal/domain/models"
	"univtours/internal/repositories"

	"github.com/gin-gonic/gin"
)

// GET /api/fournisseurs
func GetFournisseurs(c *gin.Context) {
	fournisseurs, err := repositories.FournisseurRepo{}.List(QueryInt(c, "limit", 50), QueryInt(c, "offset", 0))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"fournisseurs": fournisseurs})
}

// GET /api/fournisseurs/:id
func GetFournisseurByID(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}
	fournisseur, err := repositories.FournisseurRepo{}.GetByID(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"fournisseur": fournisseur})
}

func validateFournisseur(f models.Fournisseur) error {
	if strings.TrimSpace(f.Nom) == "" {
		return domain.ValidationError{Field: "nom", Msg: "nom requis"}
	}
	if strings.TrimSpace(f.Email) == "" || !strings.Contains(f.Email, "@") {
		return domain.ValidationError{Field: "email", Msg: "email valide requis"}
	}
	return nil
}

// POST /api/fournisseurs
func CreateFournisseur(c *gin.Context) {
	var f models.Fournisseur
	if !BindJSONOrError(c, &f) {
		return
	}
	if err := validateFournisseur(f); err != nil {
		RespondDomainError(c, err)
		return
	}
	id, err := repositories.FournisseurRepo{}.Create(f)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	f.ID = id
	c.JSON(http.StatusCreated, gin.H{"message": "fournisseur créé avec succès", "fournisseur": f})
}

// PUT /api/fournisseurs/:id
func UpdateFournisseur(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}
	var f models.Fournisseur
	if !BindJSONOrError(c, &f) {
		return
	}
	if err := validateFournisseur(f); err != nil {
		RespondDomainError(c, err)
		return
	}
	repo := repositories.FournisseurRepo{}
	if _, err := repo.GetByID(id); err != nil {
		RespondDomainError(c, err)
		return
	}
	if err := repo.Update(id, f); err != nil {
		RespondDomainError(c, err)
		return
	}
	updated, err := repo.GetByID(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "fournisseur mis à jour avec succès", "fournisseur": updated})
}

// DELETE /api/fournisseurs/:id
func DeleteFournisseur(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}
	repo := repositories.FournisseurRepo{}
	if _, err := repo.GetByID(id); err != nil {
		RespondDomainError(c, err)
		return
	}
	if err := repo.Delete(id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "fournisseur supprimé avec succès"})
}
