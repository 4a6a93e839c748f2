package handlers

import (
	"net/http"

	"univtours/internal/repositories"
	"univtours/internal/services"

	"github.com/gin-gonic/gin"
)

// GET /api/dashboard
func GetDashboard(c *gin.Context) {
	svc := services.DashboardService{Repo: repositories.DashboardRepo{}}
	data, err := svc.Overview(c.Query("month"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, data)
}
