package main

import (
	"context"
	"log"
	"time"

	"webservices-backend/internal/config"
	"webservices-backend/internal/domains/contact"
	"webservices-backend/internal/domains/project"
	"webservices-backend/internal/domains/task"
	"webservices-backend/internal/infrastructure/database"
	"webservices-backend/internal/resource"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/bson"
)

var sampleContacts = []map[string]interface{}{
	{
		"firstName":     "John",
		"lastName":      "Doe",
		"email":         "john.doe@example.com",
		"favoriteColor": "Blue",
		"birthday":      "1990-01-15",
	},
	{
		"firstName":     "Jane",
		"lastName":      "Smith",
		"email":         "jane.smith@example.com",
		"favoriteColor": "Green",
		"birthday":      "1985-05-20",
	},
	{
		"firstName":     "Robert",
		"lastName":      "Johnson",
		"email":         "robert.johnson@example.com",
		"favoriteColor": "Red",
		"birthday":      "1992-11-30",
	},
	{
		"firstName":     "Emily",
		"lastName":      "Davis",
		"email":         "emily.davis@example.com",
		"favoriteColor": "Purple",
		"birthday":      "1988-07-10",
	},
	{
		"firstName":     "Michael",
		"lastName":      "Wilson",
		"email":         "michael.wilson@example.com",
		"favoriteColor": "Orange",
		"birthday":      "1995-03-25",
	},
}

// Seeds the database with sample data for manual testing. Inserts go
// through the resource services so the seed data passes the same validation
// as API traffic.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	log.Println("Connecting to MongoDB...")
	db, err := database.Connect(ctx, cfg.Mongo)
	if err != nil {
		log.Fatalf("❌ MongoDB connection error: %v", err)
	}
	defer db.Close(ctx)
	log.Println("✅ Connected to MongoDB")

	if err := db.EnsureIndexes(ctx); err != nil {
		log.Fatalf("❌ Failed to ensure indexes: %v", err)
	}

	// Clear existing sample collections.
	log.Println("Clearing existing data...")
	for _, collection := range []string{"contacts", "projects", "tasks"} {
		if _, err := db.Database.Collection(collection).DeleteMany(ctx, bson.M{}); err != nil {
			log.Fatalf("❌ Failed to clear %s: %v", collection, err)
		}
	}
	log.Println("✅ Database cleared")

	contactSvc := newService(contact.Schema(), db)
	projectSvc := newService(project.Schema(), db)
	taskSvc := newService(task.Schema(), db)

	// Contacts
	for _, fields := range sampleContacts {
		if _, err := contactSvc.Create(ctx, fields, nil); err != nil {
			log.Fatalf("❌ Failed to seed contact %v: %v", fields["email"], err)
		}
	}
	log.Printf("✅ Inserted %d contacts", len(sampleContacts))

	// One project with a couple of tasks referencing it.
	proj, err := projectSvc.Create(ctx, map[string]interface{}{
		"name":        "Sample Project",
		"description": "Seeded project for manual endpoint testing",
		"status":      "active",
	}, nil)
	if err != nil {
		log.Fatalf("❌ Failed to seed project: %v", err)
	}

	dueSoon := time.Now().AddDate(0, 0, 7).Format("2006-01-02")
	dueLater := time.Now().AddDate(0, 1, 0).Format("2006-01-02")

	sampleTasks := []map[string]interface{}{
		{
			"title":     "Write API documentation",
			"projectId": proj.ID,
			"priority":  "high",
			"status":    "in-progress",
			"dueDate":   dueSoon,
			"tags":      []string{"docs"},
		},
		{
			"title":     "Deploy to staging",
			"projectId": proj.ID,
			"priority":  "medium",
			"dueDate":   dueLater,
		},
	}
	for _, fields := range sampleTasks {
		if _, err := taskSvc.Create(ctx, fields, nil); err != nil {
			log.Fatalf("❌ Failed to seed task %v: %v", fields["title"], err)
		}
	}
	log.Printf("✅ Inserted 1 project and %d tasks", len(sampleTasks))

	log.Println("🎉 Database seeded successfully!")
}

func newService(schema *resource.Schema, db *database.MongoDB) *resource.Service {
	store := resource.NewMongoStore(db.Database, schema)
	return resource.NewService(schema, store, db)
}
