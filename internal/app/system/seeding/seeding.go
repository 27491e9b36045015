// internal/app/system/seeding/seeding.go
package seeding

import (
	"context"

	contentstore "github.com/Anaastro/landing-demo/internal/app/store/content"
	"github.com/Anaastro/landing-demo/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// SeedAll seeds default data if not already present.
func SeedAll(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	return seedLandingContent(ctx, db, logger)
}

// seedLandingContent creates the landing content document on first boot.
// The content store also seeds lazily on first read; doing it here means
// the admin panel always finds a document to edit.
func seedLandingContent(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	store := contentstore.New(db)

	exists, err := store.Exists(ctx)
	if err != nil {
		logger.Error("failed to check landing content", zap.Error(err))
		return err
	}
	if exists {
		return nil
	}

	if err := store.Save(ctx, models.DefaultLandingContent()); err != nil {
		logger.Error("failed to seed landing content", zap.Error(err))
		return err
	}
	logger.Info("seeded default landing content")
	return nil
}
