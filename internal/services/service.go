package services

import (
	"context"

	"github.com/sourcegraph/conc"

	"github.com/haeli05/4626/internal/clients/currency"
	"github.com/haeli05/4626/internal/clients/gate"
	"github.com/haeli05/4626/internal/clients/shareledger"
	"github.com/haeli05/4626/internal/config"
	"github.com/haeli05/4626/internal/db"
	"github.com/haeli05/4626/internal/pricestore"
	"github.com/haeli05/4626/internal/queue"
	"github.com/haeli05/4626/internal/types"
	"github.com/haeli05/4626/internal/vault"
)

const eventProcessorSize = 5000

type Service struct {
	cfg          *config.Config
	db           db.DbInterface
	prices       *pricestore.Store
	ledger       *vault.Ledger
	gate         gate.Client
	queueManager *queue.QueueManager
	events       chan types.Event
}

func NewService(
	cfg *config.Config,
	db db.DbInterface,
	cur currency.Client,
	shares shareledger.Client,
	g gate.Client,
	qm *queue.QueueManager,
) (*Service, error) {
	engineCfg, err := cfg.Vault.ToEngineConfig()
	if err != nil {
		return nil, err
	}

	s := &Service{
		cfg:          cfg,
		db:           db,
		prices:       pricestore.New(),
		gate:         g,
		queueManager: qm,
		events:       make(chan types.Event, eventProcessorSize),
	}

	ledger, err := vault.New(engineCfg, s.prices, cur, shares, g, vault.WithEventSink(s))
	if err != nil {
		return nil, err
	}
	s.ledger = ledger

	return s, nil
}

// StartVaultSync boots persisted state, starts the background pollers and
// keeps processing engine events in the main thread.
func (s *Service) StartVaultSync(ctx context.Context) error {
	if err := s.Bootstrap(ctx); err != nil {
		return err
	}

	s.StartStalenessChecker(ctx)
	s.StartStateSync(ctx)

	wg := conc.NewWaitGroup()
	wg.Go(func() {
		s.processEvents(ctx)
	})
	wg.Wait()
	return nil
}
