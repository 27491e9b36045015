// internal/app/bootstrap/startup.go
package bootstrap

// Terminology: User Identifiers
//   - UserID / userID / user_id: The MongoDB ObjectID (_id) that uniquely identifies a user record
//   - LoginID / loginID / login_id: The human-readable string users type to log in

import (
	"context"
	"strings"
	"time"

	messagelogstore "github.com/Anaastro/landing-demo/internal/app/store/messagelog"
	"github.com/Anaastro/landing-demo/internal/app/system/authutil"
	"github.com/Anaastro/landing-demo/internal/app/system/dispatch"
	"github.com/Anaastro/landing-demo/internal/app/system/tasks"
	"github.com/Anaastro/landing-demo/internal/app/system/viewdata"
	"github.com/Anaastro/landing-demo/internal/app/system/whatsapp"
	"github.com/Anaastro/landing-demo/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Startup runs once after DB connections and schema/index setup are complete,
// but before the HTTP handler is built and requests are served.
//
// This is the place for one-time initialization that depends on having live
// database connections and fully loaded configuration. Unlike ConnectDB and
// EnsureSchema which focus on infrastructure, Startup is for application-level
// initialization.
//
// Returning a non-nil error will abort startup and prevent the server from
// starting. Returning nil signals that initialization succeeded.
//
// The context will be cancelled if the process is asked to shut down while
// Startup is running; honor it in any long-running work.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	// Branding and unread-submission counts for page chrome
	viewdata.Init(deps.FileStorage, deps.MongoDatabase)

	// Seed admin user if configured
	if appCfg.SeedAdminLoginID != "" {
		if err := ensureAdminUser(ctx, deps, appCfg, logger); err != nil {
			logger.Error("failed to seed admin user", zap.Error(err))
			return err
		}
	}

	// WhatsApp gateway client and the bulk dispatch engine
	whatsappClient = whatsapp.New(whatsapp.Config{
		APIURL:    appCfg.WhatsAppAPIURL,
		APIKey:    appCfg.WhatsAppAPIKey,
		AccountID: appCfg.WhatsAppAccountID,
	}, logger)
	dispatchEngine = dispatch.New(whatsappClient, messagelogstore.New(deps.MongoDatabase), logger)
	if !whatsappClient.Configured() {
		logger.Warn("whatsapp gateway not configured; bulk messaging disabled")
	}

	// Start background task runner
	startTaskRunner(deps.MongoDatabase, appCfg, logger)

	return nil
}

// Package-level singletons created in Startup and shared with BuildHandler
// and Shutdown.
var (
	taskRunner     *tasks.Runner
	whatsappClient *whatsapp.Client
	dispatchEngine *dispatch.Engine
)

// startTaskRunner initializes and starts the background task runner.
func startTaskRunner(db *mongo.Database, appCfg AppConfig, logger *zap.Logger) {
	taskRunner = tasks.New(logger)

	// Register cleanup jobs
	taskRunner.Register(tasks.SessionCleanupJob(db, logger))
	taskRunner.Register(tasks.PasswordResetCleanupJob(db, logger))
	taskRunner.Register(tasks.OAuthStateCleanupJob(db, logger))

	// Close idle sessions (checked every 5 minutes)
	if appCfg.IdleLogoutEnabled {
		taskRunner.Register(tasks.InactiveSessionCleanupJob(db, logger, appCfg.IdleLogoutTimeout))
	}

	// Start running jobs
	taskRunner.Start()
}

// ensureAdminUser ensures an admin user exists with the configured login_id.
// If a user exists with this login_id, ensure they have admin role.
// If no user exists, create a new admin user with password auth.
func ensureAdminUser(ctx context.Context, deps DBDeps, appCfg AppConfig, logger *zap.Logger) error {
	db := deps.MongoDatabase
	coll := db.Collection("users")

	loginID := strings.ToLower(strings.TrimSpace(appCfg.SeedAdminLoginID))
	name := appCfg.SeedAdminName
	if name == "" {
		name = "Admin"
	}

	// Check if user exists with this login_id
	var existingUser models.User
	err := coll.FindOne(ctx, bson.M{"login_id": loginID}).Decode(&existingUser)

	if err == nil {
		// User exists
		if existingUser.Role == "admin" {
			logger.Debug("admin user already configured", zap.String("login_id", loginID))
			return nil
		}

		// Promote to admin
		_, err = coll.UpdateByID(ctx, existingUser.ID, bson.M{
			"$set": bson.M{
				"role":       "admin",
				"updated_at": time.Now().UTC(),
			},
		})
		if err != nil {
			return err
		}
		logger.Info("promoted existing user to admin",
			zap.String("login_id", loginID),
			zap.String("user_id", existingUser.ID.Hex()),
			zap.String("previous_role", existingUser.Role))
		return nil
	}

	if err != mongo.ErrNoDocuments {
		return err
	}

	// Create new admin user with password auth
	var passwordHash *string
	if appCfg.SeedAdminPassword != "" {
		hash, err := authutil.HashPassword(appCfg.SeedAdminPassword)
		if err != nil {
			return err
		}
		passwordHash = &hash
	} else {
		logger.Warn("seed_admin_password not set; seeded admin must use password reset to sign in",
			zap.String("login_id", loginID))
	}

	now := time.Now().UTC()
	newUser := models.User{
		ID:           primitive.NewObjectID(),
		FullName:     name,
		FullNameCI:   text.Fold(name),
		Email:        nil,
		LoginID:      &loginID,
		LoginIDCI:    ptrString(text.Fold(loginID)),
		AuthMethod:   "password",
		PasswordHash: passwordHash,
		Role:         "admin",
		Status:       "active",
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err = coll.InsertOne(ctx, newUser)
	if err != nil {
		return err
	}

	logger.Info("created admin user",
		zap.String("login_id", loginID),
		zap.String("user_id", newUser.ID.Hex()))
	return nil
}

func ptrString(s string) *string {
	return &s
}
