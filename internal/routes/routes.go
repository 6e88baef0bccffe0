package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/storefront/catalog-api/internal/auth"
	"github.com/storefront/catalog-api/internal/config"
	"github.com/storefront/catalog-api/internal/handlers"
	"github.com/storefront/catalog-api/internal/middleware"
)

func SetupRouter(h *handlers.Handlers, cfg *config.Config) *gin.Engine {
	router := gin.Default()

	router.Use(middleware.CORSMiddleware(cfg.CORSOrigin))

	// --- Stock creation is never offered, whoever asks ---
	// Registered ahead of authentication so a bad bearer gets the same answer.
	router.POST("/stocks/", h.CreateStock)

	// --- Optional bearer authentication for everything below ---
	router.Use(middleware.AuthMiddleware(h.Accounts))

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong!"})
	})

	// --- Uploaded media ---
	router.Static("/media", cfg.MediaDir)

	// --- Catalog: reads are public, writes need staff ---
	catalog := router.Group("/")
	catalog.Use(middleware.StaffOrReadOnly())
	{
		catalog.GET("/products/", h.ListProducts)
		catalog.POST("/products/", h.CreateProduct)
		catalog.GET("/products/:id/", h.GetProduct)
		catalog.PUT("/products/:id/", h.UpdateProduct)
		catalog.PATCH("/products/:id/", h.UpdateProduct)
		catalog.DELETE("/products/:id/", h.DeleteProduct)
		catalog.POST("/products/:id/image/", h.UploadProductImage)

		catalog.GET("/categories/", h.ListCategories)
		catalog.POST("/categories/", h.CreateCategory)
		catalog.GET("/categories/:id/", h.GetCategory)
		catalog.PUT("/categories/:id/", h.UpdateCategory)
		catalog.PATCH("/categories/:id/", h.UpdateCategory)
		catalog.DELETE("/categories/:id/", h.DeleteCategory)

		catalog.GET("/stocks/", h.ListStocks)
		catalog.GET("/stocks/:id/", h.GetStock)
		catalog.PUT("/stocks/:id/", h.UpdateStock)
		catalog.PATCH("/stocks/:id/", h.UpdateStock)
		catalog.DELETE("/stocks/:id/", h.DeleteStock)
	}

	// --- Auth Routes (Public) ---
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register/", h.Register)
		authGroup.POST("/login/", h.Login)
		authGroup.POST("/token/refresh/", h.RefreshToken)
		authGroup.POST("/token/verify/", h.VerifyToken)
		authGroup.POST("/logout/", middleware.RequireAuth(), h.Logout)
	}

	// --- Protected Routes (Login Required) ---
	user := router.Group("/user")
	user.Use(middleware.RequireAuth())
	{
		user.GET("/detail/", h.GetUserDetail)
		user.GET("/profile/", h.GetProfile)
		user.PUT("/profile/", h.UpdateProfile)
		user.PATCH("/profile/", h.UpdateProfile)
		user.POST("/password-change/", h.ChangePassword)
	}

	// --- Superuser-Only Routes ---
	admin := router.Group("/admin")
	admin.Use(middleware.Require(auth.ActionAdmin))
	{
		admin.POST("/staff/", h.CreateStaff)
	}

	return router
}
