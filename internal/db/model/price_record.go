package model

import (
	"time"

	"github.com/haeli05/4626/internal/pricestore"
)

const PriceRecordCollection = "price_records"

// PriceRecordDocument mirrors one oracle subject in the price store,
// keyed by the subject identifier.
type PriceRecordDocument struct {
	ID             string    `bson:"_id"`
	Price          string    `bson:"price"`
	LastUpdateTime time.Time `bson:"last_update_time"`
	UpdateInterval int64     `bson:"update_interval_seconds"`
	Active         bool      `bson:"active"`
}

func NewPriceRecordDocument(subject string, rec pricestore.Record) *PriceRecordDocument {
	return &PriceRecordDocument{
		ID:             subject,
		Price:          rec.Price.String(),
		LastUpdateTime: rec.LastUpdateTime,
		UpdateInterval: int64(rec.UpdateInterval / time.Second),
		Active:         rec.Active,
	}
}

func (d *PriceRecordDocument) ToRecord() (pricestore.Record, error) {
	price, err := parseInt(d.Price, "price")
	if err != nil {
		return pricestore.Record{}, err
	}
	return pricestore.Record{
		Price:          price,
		LastUpdateTime: d.LastUpdateTime,
		UpdateInterval: time.Duration(d.UpdateInterval) * time.Second,
		Active:         d.Active,
	}, nil
}
