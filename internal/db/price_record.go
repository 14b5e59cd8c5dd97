package db

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/haeli05/4626/internal/db/model"
	"github.com/haeli05/4626/internal/pricestore"
)

func (db *Database) UpsertPriceRecord(ctx context.Context, subject string, rec pricestore.Record) error {
	doc := model.NewPriceRecordDocument(subject, rec)

	filter := bson.M{"_id": subject}
	update := bson.M{"$set": doc}

	_, err := db.collection(model.PriceRecordCollection).
		UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

func (db *Database) DeletePriceRecord(ctx context.Context, subject string) error {
	filter := bson.M{"_id": subject}
	_, err := db.collection(model.PriceRecordCollection).DeleteOne(ctx, filter)
	return err
}

// GetPriceRecords returns every persisted oracle subject keyed by its
// identifier, used to rehydrate the price store on startup.
func (db *Database) GetPriceRecords(ctx context.Context) (map[string]pricestore.Record, error) {
	cursor, err := db.collection(model.PriceRecordCollection).Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []model.PriceRecordDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	records := make(map[string]pricestore.Record, len(docs))
	for _, doc := range docs {
		rec, err := doc.ToRecord()
		if err != nil {
			return nil, err
		}
		records[doc.ID] = rec
	}
	return records, nil
}
