package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/yashs79/wishlist-app/db"
	"github.com/yashs79/wishlist-app/internal/auth"
	"github.com/yashs79/wishlist-app/internal/broadcast"
	"github.com/yashs79/wishlist-app/internal/router"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	if err := auth.InitJWTSecret(); err != nil {
		log.Fatalf("Failed to initialize JWT secret: %v", err)
	}

	if err := db.ConnectDatabase(os.Getenv("DATABASE_URL")); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.MigrateDatabase(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	hub := broadcast.NewHub()

	r := router.NewRouter(hub)

	var port string

	if port = os.Getenv("PORT"); port == "" {
		port = "5001"
		log.Println("PORT not set, defaulting to 5001")
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
