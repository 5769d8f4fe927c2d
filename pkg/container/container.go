package container

import (
	"context"
	"fmt"
	"log"
	"time"

	"webservices-backend/internal/auth"
	"webservices-backend/internal/config"
	"webservices-backend/internal/domains/book"
	"webservices-backend/internal/domains/contact"
	"webservices-backend/internal/domains/project"
	"webservices-backend/internal/domains/task"
	"webservices-backend/internal/infrastructure/database"
	"webservices-backend/internal/infrastructure/sessions"
	"webservices-backend/internal/resource"
	"webservices-backend/pkg/jwt"
)

// Container holds every dependency of the application, wired once at
// startup. Order matters: config, then infrastructure, then the per-resource
// services and controllers built on top.
type Container struct {
	Config     *config.Config
	DB         *database.MongoDB
	Sessions   *sessions.Store
	JWTManager *jwt.Manager

	AuthHandler *auth.Handler

	Contacts *resource.Controller
	Projects *resource.Controller
	Tasks    *resource.Controller
	Books    *resource.Controller
}

func NewContainer() (*Container, error) {
	log.Println("🔧 Initializing container...")

	c := &Container{}

	// ========================================
	// STEP 1: CONFIGURATION
	// ========================================
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	log.Printf("✅ Config loaded (Environment: %s)", cfg.App.Environment)

	// ========================================
	// STEP 2: MONGODB
	// ========================================
	log.Println("🗄️  Connecting to MongoDB...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Mongo.Timeout)*time.Second)
	defer cancel()

	db, err := database.Connect(ctx, cfg.Mongo)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	c.DB = db

	if err := db.EnsureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure indexes: %w", err)
	}
	log.Printf("✅ MongoDB connected (%s)", cfg.Mongo.Database)

	// ========================================
	// STEP 3: SESSIONS + TOKENS
	// ========================================
	sessionTTL := time.Duration(cfg.Session.TTLHours) * time.Hour
	c.Sessions = sessions.NewStore(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB, sessionTTL)
	c.JWTManager = jwt.NewManager(cfg.JWT.Secret, cfg.JWT.ExpiryHours)

	c.AuthHandler = auth.NewHandler(
		c.Sessions,
		c.JWTManager,
		cfg.Session.CookieName,
		sessionTTL,
		cfg.Session.Secure,
		cfg.App.Environment,
	)

	// ========================================
	// STEP 4: RESOURCE CONTROLLERS
	// ========================================
	// One generic controller per resource, parameterized by its schema.
	// The database handle doubles as the cross-collection reference
	// resolver for the task → project integrity check.
	c.Contacts = newController(contact.Schema(), db)
	c.Projects = newController(project.Schema(), db)
	c.Tasks = newController(task.Schema(), db)
	c.Books = newController(book.Schema(), db)

	log.Println("✅ Container initialized")
	return c, nil
}

func newController(schema *resource.Schema, db *database.MongoDB) *resource.Controller {
	store := resource.NewMongoStore(db.Database, schema)
	svc := resource.NewService(schema, store, db)
	return resource.NewController(svc)
}

// Cleanup releases infrastructure connections on shutdown.
func (c *Container) Cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if c.Sessions != nil {
		if err := c.Sessions.Close(); err != nil {
			log.Printf("⚠️  Failed to close session store: %v", err)
		}
	}

	if c.DB != nil {
		if err := c.DB.Close(ctx); err != nil {
			log.Printf("⚠️  Failed to disconnect MongoDB: %v", err)
		}
	}
}
