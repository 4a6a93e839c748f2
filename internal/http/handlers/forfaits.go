package handlers

import (
	"net/http"
	"strings"

	"univtours/internal/domain"
	"univtours/internal/domain/models"
	"univtours/internal/repositories"

	"github.com/gin-gonic/gin"
)

// GET /api/forfaits
func GetForfaits(c *gin.Context) {
	forfaits, err := repositories.ForfaitRepo{}.List(QueryInt(c, "limit", 50), QueryInt(c, "offset", 0))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"forfaits": forfaits})
}

// GET /api/forfaits/:id
func GetForfaitByID(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}
	forfait, err := repositories.ForfaitRepo{}.GetByID(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"forfait": forfait})
}

// POST /api/forfaits
func CreateForfait(c *gin.Context) {
	var f models.Forfait
	if !BindJSONOrError(c, &f) {
		return
	}
	if strings.TrimSpace(f.Nom) == "" {
		RespondDomainError(c, domain.ValidationError{Field: "nom", Msg: "nom requis"})
		return
	}
	id, err := repositories.ForfaitRepo{}.Create(f)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	f.ID = id
	c.JSON(http.StatusCreated, gin.H{"forfait": f})
}

// PUT /api/forfaits/:id
func UpdateForfait(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}
	var f models.Forfait
	if !BindJSONOrError(c, &f) {
		return
	}
	repo := repositories.ForfaitRepo{}
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
	c.JSON(http.StatusOK, gin.H{"forfait": updated})
}

// DELETE /api/forfaits/:id
func DeleteForfait(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}
	repo := repositories.ForfaitRepo{}
	if _, err := repo.GetByID(id); err != nil {
		RespondDomainError(c, err)
		return
	}
	if err := repo.Delete(id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "forfait supprimé"})
}
