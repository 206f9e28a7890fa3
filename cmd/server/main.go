package main

import (
	"fmt"
	"log"
	"os"

	"license-plate-eval-platform/internal/apigateway"
	"license-plate-eval-platform/internal/auth"
	"license-plate-eval-platform/internal/configmanagement"
	"license-plate-eval-platform/internal/coreengine/vendoradapters"
	"license-plate-eval-platform/internal/datastore"
	"license-plate-eval-platform/internal/objectstore"
)

func main() {
	// Load configurations at startup
	auth.LoadAdminCredentials()

	// Initialize DB connection. DATABASE_URL wins if set; otherwise the DSN is
	// assembled from the individual DB_* variables.
	dataSourceName := os.Getenv("DATABASE_URL")
	if dataSourceName == "" {
		dbHost := os.Getenv("DB_HOST")
		dbPort := os.Getenv("DB_PORT")
		dbUser := os.Getenv("DB_USER")
		dbPassword := os.Getenv("DB_PASSWORD")
		dbName := os.Getenv("DB_NAME")
		dbSSLMode := os.Getenv("DB_SSLMODE") // e.g., "disable" for local dev

		if dbHost == "" {
			dbHost = "localhost"
		}
		if dbPort == "" {
			dbPort = "5432"
		}
		if dbUser == "" {
			dbUser = "postgres"
		}
		if dbPassword == "" {
			log.Println("WARNING: DB_PASSWORD environment variable not set.")
		}
		if dbName == "" {
			dbName = "plate_eval_platform_db"
		}
		if dbSSLMode == "" {
			dbSSLMode = "disable"
		}

		dataSourceName = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			dbHost, dbPort, dbUser, dbPassword, dbName, dbSSLMode)
	}

	if err := datastore.InitDB(dataSourceName); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer datastore.DB.Close()

	configmanagement.InitHandlers(datastore.DB)

	// Initialize MinIO Client
	if err := objectstore.InitMinioClient(); err != nil {
		log.Fatalf("Failed to initialize MinIO client: %v", err)
	}

	minioClient, err := objectstore.GetGlobalMinioClient()
	if err != nil {
		log.Fatalf("Failed to get MinIO client: %v", err)
	}
	vendoradapters.InitAdapterRegistry(minioClient)

	// Setup router
	router := apigateway.SetupRouter()

	// Start server
	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		serverPort = "8080" // Default port
	}
	log.Printf("Starting server on :%s", serverPort)
	if err := router.Run(":" + serverPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
