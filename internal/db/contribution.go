package db

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/haeli05/4626/internal/db/model"
	"github.com/haeli05/4626/internal/vault"
)

func (db *Database) UpsertContribution(ctx context.Context, index uint64, contribution vault.Contribution) error {
	doc := model.NewContributionDocument(index, contribution)

	filter := bson.M{"_id": index}
	update := bson.M{"$set": doc}

	_, err := db.collection(model.ContributionCollection).
		UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if mongo.IsDuplicateKeyError(err) {
		// two writers raced on the same upsert; the slot exists now
		return &DuplicateKeyError{
			Key:     fmt.Sprintf("%d", index),
			Message: "contribution already exists",
		}
	}
	return err
}

// GetContributions returns the full contribution log in append order.
func (db *Database) GetContributions(ctx context.Context) ([]vault.Contribution, error) {
	findOpts := options.Find().SetSort(bson.M{"_id": 1})
	cursor, err := db.collection(model.ContributionCollection).Find(ctx, bson.M{}, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []model.ContributionDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	contributions := make([]vault.Contribution, 0, len(docs))
	for _, doc := range docs {
		c, err := doc.ToContribution()
		if err != nil {
			return nil, err
		}
		contributions = append(contributions, c)
	}
	return contributions, nil
}
