package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/yashs79/wishlist-app/internal/broadcast"
	"github.com/yashs79/wishlist-app/internal/handlers"
	"github.com/yashs79/wishlist-app/internal/middleware"
	"github.com/yashs79/wishlist-app/internal/types"
)

func NewRouter(hub *broadcast.Hub) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	wishlistHandler := handlers.NewWishlistHandler(hub)
	productHandler := handlers.NewProductHandler(hub)
	wsHandler := handlers.NewWebSocketHandler(hub)

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)
		api.GET("/ws", wsHandler.Handle)

		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.Register)
			auth.POST("/login", handlers.Login)
			auth.GET("/me", middleware.AuthMiddleware(), handlers.Me)
			auth.POST("/logout", handlers.Logout)
		}

		wishlists := api.Group("/wishlists", middleware.AuthMiddleware())
		{
			wishlists.POST("", wishlistHandler.CreateWishlist)
			wishlists.GET("/my", wishlistHandler.ListMyWishlists)
			wishlists.GET("/:id", wishlistHandler.GetWishlist)
			wishlists.PUT("/:id", wishlistHandler.UpdateWishlist)
			wishlists.DELETE("/:id", wishlistHandler.DeleteWishlist)

			// Collaborator endpoints
			wishlists.POST("/join", wishlistHandler.JoinWishlist)
			wishlists.DELETE("/:id/collaborators/:user_id", wishlistHandler.RemoveCollaborator)
			wishlists.POST("/:id/invite", wishlistHandler.RotateInviteCode)
		}

		products := api.Group("/products", middleware.AuthMiddleware())
		{
			products.POST("", productHandler.CreateProduct)
			products.GET("/:id", productHandler.GetProduct)
			products.PUT("/:id", productHandler.UpdateProduct)
			products.DELETE("/:id", productHandler.DeleteProduct)

			// Comment and reaction endpoints
			products.POST("/:id/comments", productHandler.AddComment)
			products.POST("/:id/reactions", productHandler.ToggleReaction)
		}
	}

	return r
}
