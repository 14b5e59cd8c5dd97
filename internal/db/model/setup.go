package model

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/haeli05/4626/internal/config"
)

var collections = []string{
	VaultStateCollection,
	PriceRecordCollection,
	ContributionCollection,
	AsyncOperationCollection,
}

func Setup(ctx context.Context, cfg *config.DbConfig) error {
	credential := options.Credential{
		Username: cfg.Username,
		Password: cfg.Password,
	}
	clientOps := options.Client().ApplyURI(cfg.Address).SetAuth(credential)
	client, err := mongo.Connect(ctx, clientOps)
	if err != nil {
		return err
	}

	// Create a context with timeout for the setup process
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	database := client.Database(cfg.DbName)

	existing, err := database.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return err
	}
	existingSet := make(map[string]struct{}, len(existing))
	for _, name := range existing {
		existingSet[name] = struct{}{}
	}

	for _, name := range collections {
		if _, ok := existingSet[name]; ok {
			continue
		}
		if err := database.CreateCollection(ctx, name); err != nil {
			return err
		}
		log.Debug().Str("collection", name).Msg("Collection created")
	}

	if err := createContributionIndexes(ctx, database); err != nil {
		return err
	}

	log.Info().Msg("Database setup complete")
	return nil
}

// createContributionIndexes supports live-stake queries by contributor.
func createContributionIndexes(ctx context.Context, database *mongo.Database) error {
	index := mongo.IndexModel{
		Keys: bson.D{
			{Key: "contributor", Value: 1},
			{Key: "active", Value: 1},
		},
	}
	_, err := database.Collection(ContributionCollection).Indexes().CreateOne(ctx, index)
	return err
}
