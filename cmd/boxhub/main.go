package main

import (
	"log"
	"os"

	"github.com/boxhub-dev/boxhub/db"
	"github.com/boxhub-dev/boxhub/internal/auth"
	"github.com/boxhub-dev/boxhub/internal/notifier"
	"github.com/boxhub-dev/boxhub/internal/router"
	"github.com/boxhub-dev/boxhub/internal/worker"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment")
	}

	if err := auth.InitJWTSecret(); err != nil {
		log.Fatalf("Failed to initialize JWT secret: %v", err)
	}

	dsn := os.Getenv("DATABASE_URL")

	if dsn == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	if err := db.ConnectDatabase(dsn); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.MigrateDatabase(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	notifier.Init(os.Getenv("RESEND_API_KEY"), os.Getenv("MAIL_FROM"))

	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		if err := worker.InitClient(redisURL); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer worker.CloseClient()

		notifier.SetEnqueuer(worker.EnqueueNotification)

		stop, err := worker.Start(redisURL)

		if err != nil {
			log.Fatalf("Failed to start notification worker: %v", err)
		}
		defer stop()
	}

	r := router.NewRouter()

	var port string

	if port = os.Getenv("PORT"); port == "" {
		port = "3000"
		log.Println("PORT not set, defaulting to 3000")
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
