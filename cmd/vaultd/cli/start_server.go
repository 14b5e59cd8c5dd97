package cli

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/haeli05/4626/internal/clients/currency"
	"github.com/haeli05/4626/internal/clients/gate"
	"github.com/haeli05/4626/internal/clients/shareledger"
	"github.com/haeli05/4626/internal/config"
	"github.com/haeli05/4626/internal/db"
	dbmodel "github.com/haeli05/4626/internal/db/model"
	"github.com/haeli05/4626/internal/observability/metrics"
	"github.com/haeli05/4626/internal/observability/tracing"
	"github.com/haeli05/4626/internal/queue"
	"github.com/haeli05/4626/internal/services"
)

func StartServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start-server",
		Short: "Starts the vault pricing and accounting server",
		Args:  cobra.ExactArgs(0),
		RunE:  startServer,
	}

	return cmd
}

func startServer(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	ctx = tracing.InjectTraceID(ctx)
	log := log.Ctx(ctx)

	// load config
	cfgPath := GetConfigPath()
	cfg, err := config.New(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg(fmt.Sprintf("error while loading config file: %s", cfgPath))
	}

	err = dbmodel.Setup(ctx, &cfg.Db)
	if err != nil {
		log.Fatal().Err(err).Msg("error while setting up vault db model")
	}

	// create new db client
	var dbClient db.DbInterface
	dbClient, err = db.New(ctx, cfg.Db)
	if err != nil {
		log.Fatal().Err(err).Msg("error while creating db client")
	}
	dbClient = db.NewDbWithMetrics(dbClient)

	qm, err := queue.NewQueueManager(&cfg.Queue)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize queue manager")
	}
	defer qm.Shutdown()

	var currencyClient currency.Client = currency.NewMemClient(cfg.Vault.VaultAddress)
	currencyClient = currency.NewClientWithMetrics(currencyClient)

	var shareClient shareledger.Client = shareledger.NewMemClient()
	shareClient = shareledger.NewClientWithMetrics(shareClient)

	gateClient := gate.NewMemClient(cfg.Vault.Operators...)

	service, err := services.NewService(cfg, dbClient, currencyClient, shareClient, gateClient, qm)
	if err != nil {
		log.Fatal().Err(err).Msg("error while creating service")
	}

	// initialize metrics with the metrics port from config
	metricsPort := cfg.Metrics.GetMetricsPort()
	metrics.Init(metricsPort)

	if err := service.StartVaultSync(ctx); err != nil {
		log.Fatal().Err(err).Msg("error while running vault sync")
	}
	return nil
}
