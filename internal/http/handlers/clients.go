package handlers

import (
	"net/http"
	"strings"

	"univtours/internal/domain"
	"univtours/internal/domain/models"
	"univtours/internal/repositories"

	"github.com/gin-gonic/gin"
)

// GET /api/clients
func GetClients(c *gin.Context) {
	repo := repositories.ClientRepo{}
	clients, err := repo.List(c.Query("search"), QueryInt(c, "limit", 50), QueryInt(c, "offset", 0))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"clients": clients})
}

// GET /api/clients/:id
func GetClientByID(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}
	client, err := repositories.ClientRepo{}.GetByID(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"client": client})
}

// POST /api/clients
func CreateClient(c *gin.Context) {
	var client models.Client
	if !BindJSONOrError(c, &client) {
		return
	}
	if strings.TrimSpace(client.Nom) == "" {
		RespondDomainError(c, domain.ValidationError{Field: "nom", Msg: "nom requis"})
		return
	}
	id, err := repositories.ClientRepo{}.Create(client)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	client.ID = id
	c.JSON(http.StatusCreated, gin.H{"client": client})
}

// PUT /api/clients/:id
func UpdateClient(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}
	var client models.Client
	if !BindJSONOrError(c, &client) {
		return
	}
	repo := repositories.ClientRepo{}
	if _, err := repo.GetByID(id); err != nil {
		RespondDomainError(c, err)
		return
	}
	if err := repo.Update(id, client); err != nil {
		RespondDomainError(c, err)
		return
	}
	updated, err := repo.GetByID(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"client": updated})
}

// DELETE /api/clients/:id
func DeleteClient(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}
	repo := repositories.ClientRepo{}
	if _, err := repo.GetByID(id); err != nil {
		RespondDomainError(c, err)
		return
	}
	if err := repo.SoftDelete(id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "client supprimé"})
}

// POST /api/clients/:id/restore
func RestoreClient(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}
	if err := (repositories.ClientRepo{}).Restore(id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "client restauré"})
}
