package main

import (
	"context"
	"log"
	"time"

	"devconnect-api/internal/chat"
	"devconnect-api/internal/database"
	"devconnect-api/internal/notify"
	"devconnect-api/internal/realtime"
	"devconnect-api/internal/retention"
	"devconnect-api/internal/routes"
)

func main() {
	// Init database
	database.InitDB()
	db := database.GetDB()

	// Wire the services: the hub pushes live events, the notifier persists
	// and fans out through it.
	chatSvc := chat.NewService(db)
	hub := realtime.NewHub(db, chatSvc)
	notifier := notify.NewService(db, hub)

	// Background retention: aged notifications and overdue invitations.
	sweeper := retention.NewSweeper(db, notifier, time.Hour)
	go sweeper.Run(context.Background())

	// Setup the routes (public and protected routes)
	ginRoutes := routes.SetupRoutes(hub, chatSvc, notifier)

	// Start server
	port := ":8008" // This is customizable based on the environment
	log.Printf("Server starting on port %s", port)
	log.Println("API endpoints:")
	log.Println("  POST   /api/register")
	log.Println("  POST   /api/login")
	log.Println("  GET    /api/users")
	log.Println("  POST   /api/follow/:userId")
	log.Println("  GET    /api/projects")
	log.Println("  GET    /api/messages/conversations")
	log.Println("  GET    /api/notifications")
	log.Println("  GET    /ws")
	log.Println("  GET    /health")

	if err := ginRoutes.Run(port); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}
