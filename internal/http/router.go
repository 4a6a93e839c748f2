package api

import (
	"log"
	stdhttp "net/http"

	intconfig "univtours/internal/config"
	h "univtours/internal/http/handlers"
	"univtours/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

func NewRouter(env intconfig.Env) *gin.Engine {
	middleware.SetJWTSecret(env.JWTSecret)

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS())

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route introuvable",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", h.DBCheck)
		api.GET("/routes", h.Routes)

		auth := api.Group("/auth")
		auth.POST("/login", h.Login)
		auth.POST("/register", h.Register)

		secured := api.Group("")
		secured.Use(middleware.RequireAuth())

		admin := secured.Group("")
		admin.Use(middleware.RequireRoles("admin"))

		users := admin.Group("/users")
		users.GET("", h.GetUsers)
		users.GET("/:id", h.GetUserByID)
		users.PUT("/:id", h.UpdateUser)
		users.DELETE("/:id", h.DeleteUser)

		fournisseurs := admin.Group("/fournisseurs")
		fournisseurs.GET("", h.GetFournisseurs)
		fournisseurs.GET("/:id", h.GetFournisseurByID)
		fournisseurs.POST("", h.CreateFournisseur)
		fournisseurs.PUT("/:id", h.UpdateFournisseur)
		fournisseurs.DELETE("/:id", h.DeleteFournisseur)

		clients := secured.Group("/clients")
		clients.GET("", h.GetClients)
		clients.GET("/:id", h.GetClientByID)
		clients.POST("", h.CreateClient)
		clients.PUT("/:id", h.UpdateClient)
		clients.DELETE("/:id", h.DeleteClient)
		clients.POST("/:id/restore", h.RestoreClient)

		produits := secured.Group("/produits")
		produits.GET("", h.GetProduits)
		produits.GET("/:id", h.GetProduitByID)
		produits.POST("", h.CreateProduit)
		produits.PUT("/:id", h.UpdateProduit)
		produits.DELETE("/:id", h.DeleteProduit)

		forfaits := secured.Group("/forfaits")
		forfaits.GET("", h.GetForfaits)
		forfaits.GET("/:id", h.GetForfaitByID)
		forfaits.POST("", h.CreateForfait)
		forfaits.PUT("/:id", h.UpdateForfait)
		forfaits.DELETE("/:id", h.DeleteForfait)

		reservations := secured.Group("/reservations")
		reservations.GET("", h.GetReservations)
		reservations.GET("/:id", h.GetReservationByID)
		reservations.POST("", h.CreateReservation)
		reservations.PUT("/:id", h.UpdateReservation)
		reservations.DELETE("/:id", h.DeleteReservation)
		reservations.POST("/:id/confirm", h.ConfirmReservation)
		reservations.POST("/:id/cancel", h.CancelReservation)
		reservations.GET("/:id/devis-pdf", h.GetReservationDevisPDF)
		reservations.GET("/:id/facture-pdf", h.GetReservationFacturePDF)

		factures := secured.Group("/factures")
		factures.GET("", h.GetFactures)
		factures.POST("", h.CreateFacture)
		factures.GET("/:id", h.GetFactureByID)
		factures.POST("/:id/emettre", h.EmettreFacture)
		factures.POST("/:id/annuler", h.AnnulerFacture)
		factures.GET("/:id/pdf", h.GetFacturePDF)
		factures.GET("/:id/paiements", h.GetPaiements)
		factures.POST("/:id/paiements", h.CreatePaiement)

		depenses := secured.Group("/depenses")
		depenses.GET("", h.GetDepenses)
		depenses.GET("/:id", h.GetDepenseByID)
		depenses.POST("", h.CreateDepense)
		depenses.PUT("/:id", h.UpdateDepense)
		depenses.DELETE("/:id", h.DeleteDepense)

		secured.GET("/dashboard", h.GetDashboard)
	}

	h.SetRouter(r)
	return r
}
