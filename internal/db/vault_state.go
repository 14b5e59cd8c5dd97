package db

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/haeli05/4626/internal/db/model"
	"github.com/haeli05/4626/internal/vault"
)

func (db *Database) UpsertVaultState(ctx context.Context, vaultID string, snapshot vault.Snapshot) error {
	doc := model.NewVaultStateDocument(vaultID, snapshot)

	filter := bson.M{"_id": vaultID}
	update := bson.M{"$set": doc}

	_, err := db.collection(model.VaultStateCollection).
		UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

func (db *Database) GetVaultState(ctx context.Context, vaultID string) (*vault.Snapshot, error) {
	filter := bson.M{"_id": vaultID}
	res := db.collection(model.VaultStateCollection).FindOne(ctx, filter)

	var doc model.VaultStateDocument
	if err := res.Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &NotFoundError{
				Key:     vaultID,
				Message: "vault state not found",
			}
		}
		return nil, err
	}

	snapshot, err := doc.ToSnapshot()
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}
