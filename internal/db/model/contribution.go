package model

import (
	"time"

	"github.com/haeli05/4626/internal/vault"
)

const ContributionCollection = "contributions"

// ContributionDocument is one entry of the append-only contribution log.
// The index within the log is the primary key so rehydration can rebuild
// the log in order.
type ContributionDocument struct {
	Index       uint64    `bson:"_id"`
	Contributor string    `bson:"contributor"`
	Amount      string    `bson:"amount"`
	Timestamp   time.Time `bson:"timestamp"`
	Active      bool      `bson:"active"`
}

func NewContributionDocument(index uint64, c vault.Contribution) *ContributionDocument {
	return &ContributionDocument{
		Index:       index,
		Contributor: c.Contributor,
		Amount:      c.Amount.String(),
		Timestamp:   c.Timestamp,
		Active:      c.Active,
	}
}

func (d *ContributionDocument) ToContribution() (vault.Contribution, error) {
	amount, err := parseInt(d.Amount, "amount")
	if err != nil {
		return vault.Contribution{}, err
	}
	return vault.Contribution{
		Contributor: d.Contributor,
		Amount:      amount,
		Timestamp:   d.Timestamp,
		Active:      d.Active,
	}, nil
}
