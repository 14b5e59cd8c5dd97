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

func (db *Database) UpsertAsyncOperation(ctx context.Context, id uint64, op vault.AsyncOperation) error {
	doc := model.NewAsyncOperationDocument(id, op)

	filter := bson.M{"_id": id}
	update := bson.M{"$set": doc}

	_, err := db.collection(model.AsyncOperationCollection).
		UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if mongo.IsDuplicateKeyError(err) {
		return &DuplicateKeyError{
			Key:     fmt.Sprintf("%d", id),
			Message: "async operation already exists",
		}
	}
	return err
}

// GetAsyncOperations returns every arena slot in identifier order,
// including zeroed slots left behind by completed operations.
func (db *Database) GetAsyncOperations(ctx context.Context) ([]vault.AsyncOperation, error) {
	findOpts := options.Find().SetSort(bson.M{"_id": 1})
	cursor, err := db.collection(model.AsyncOperationCollection).Find(ctx, bson.M{}, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []model.AsyncOperationDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	ops := make([]vault.AsyncOperation, 0, len(docs))
	for _, doc := range docs {
		op, err := doc.ToOperation()
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, nil
}
