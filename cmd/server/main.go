package main

import (
	"log"
	"os"
	"time"

	"eiti-matching-backend/internal/config"
	"eiti-matching-backend/internal/models"
	"eiti-matching-backend/internal/routes"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on system env")
	}

	db := config.InitDB()

	db.AutoMigrate(
		&models.ReferenceEntity{},
		&models.MatchingSession{},
		&models.UploadedRecord{},
		&models.ResolutionDecision{},
		&models.DecisionAuditLog{},
	)

	r := gin.Default()
	// CORS config
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, db, os.Getenv("REGISTRY_URL"))

	r.Run(":8080")
}
