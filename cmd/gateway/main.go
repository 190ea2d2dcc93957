package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/fairview-lab/terminal-gateway/internal/broker"
	"github.com/fairview-lab/terminal-gateway/internal/config"
	"github.com/fairview-lab/terminal-gateway/internal/gateway"
	"github.com/fairview-lab/terminal-gateway/internal/logger"
	"github.com/fairview-lab/terminal-gateway/internal/orders"
	"github.com/fairview-lab/terminal-gateway/internal/server"
	"github.com/fairview-lab/terminal-gateway/internal/synthetic"
	"github.com/fairview-lab/terminal-gateway/internal/transactions"
	"github.com/fairview-lab/terminal-gateway/pkg/marketdata/provider"
)

// serveAction builds the full gateway stack from configuration and runs
// the HTTP server until interrupted.
func serveAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	seed := cfg.Provider.SyntheticSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	gen := synthetic.NewGenerator(seed)

	primary, err := provider.NewProvider(provider.ProviderType(cfg.Provider.Type), cfg.Provider.APIKey, gen)
	if err != nil {
		return fmt.Errorf("failed to create market data provider: %w", err)
	}

	var fallback provider.Provider
	if cfg.Provider.FallbackToSynthetic {
		fallback = provider.NewSyntheticProvider(gen)
	}

	gw := gateway.New(primary, fallback, gateway.Options{
		YieldCurve:          cfg.CurveTickers(),
		FallbackToSynthetic: cfg.Provider.FallbackToSynthetic,
	}, appLogger)

	execBroker, paperBroker, err := buildBroker(cfg, gw)
	if err != nil {
		return err
	}

	checks, err := buildChecks(cfg, gw)
	if err != nil {
		return err
	}

	pipeline := orders.NewPipeline(execBroker, checks, appLogger)

	settlement, err := buildSettlement(cfg, paperBroker)
	if err != nil {
		return err
	}

	manager := transactions.NewManager(settlement, appLogger)

	srv := server.New(cfg.Server.Address, gw, pipeline, manager, execBroker, cfg.MoversUniverse, appLogger)

	errCh := make(chan error, 1)

	go func() {
		errCh <- srv.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		appLogger.Info("shutting down", zap.String("signal", sig.String()))
	case <-ctx.Done():
		appLogger.Info("shutting down", zap.String("reason", "context cancelled"))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

// buildBroker returns the execution broker and, when one exists, the
// in-process paper broker used for paper settlements.
func buildBroker(cfg config.Config, gw *gateway.Gateway) (broker.Broker, *broker.PaperBroker, error) {
	if cfg.Broker.Type == "binance" {
		b, err := broker.NewBinanceBroker(broker.BinanceConfig{
			APIKey:     cfg.Broker.APIKey,
			SecretKey:  cfg.Broker.SecretKey,
			BaseURL:    cfg.Broker.BaseURL,
			UseTestnet: cfg.Broker.UseTestnet,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create broker: %w", err)
		}

		return b, nil, nil
	}

	paper := broker.NewPaperBroker(cfg.Broker.PaperStartingCash, "USD", func(ctx context.Context, ticker string) (float64, error) {
		point, err := gw.GetMarketData(ctx, ticker)
		if err != nil {
			return 0, err
		}

		return point.Price, nil
	})

	return paper, paper, nil
}

func buildChecks(cfg config.Config, gw *gateway.Gateway) ([]orders.PreCheck, error) {
	checks := make([]orders.PreCheck, 0, 3)

	if cfg.Orders.EnforceMarketHours {
		hours, err := orders.NewYorkEquityHoursCheck()
		if err != nil {
			return nil, fmt.Errorf("failed to create market hours check: %w", err)
		}

		checks = append(checks, hours)
	}

	if len(cfg.Orders.RestrictedTickers) > 0 {
		checks = append(checks, orders.NewRestrictedTickerCheck(cfg.Orders.RestrictedTickers))
	}

	if cfg.Orders.MaxNotional > 0 {
		checks = append(checks, orders.NewMaxNotionalCheck(cfg.Orders.MaxNotional, func(ctx context.Context, ticker string) (float64, error) {
			point, err := gw.GetMarketData(ctx, ticker)
			if err != nil {
				return 0, err
			}

			return point.Price, nil
		}))
	}

	return checks, nil
}

func buildSettlement(cfg config.Config, paperBroker *broker.PaperBroker) (transactions.Settlement, error) {
	if cfg.Settlement.Endpoint != "" {
		settlement, err := transactions.NewHTTPSettlement(transactions.SettlementConfig{
			BaseURL: cfg.Settlement.Endpoint,
			APIKey:  cfg.Settlement.APIKey,
			Timeout: cfg.Settlement.Timeout,
		}, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create settlement client: %w", err)
		}

		return settlement, nil
	}

	if paperBroker == nil {
		return nil, fmt.Errorf("no settlement endpoint configured and no paper broker available")
	}

	return transactions.NewPaperSettlement(paperBroker), nil
}

// schemaAction prints the JSON schema of the configuration file.
func schemaAction(_ context.Context, _ *cli.Command) error {
	schema, err := config.JSONSchema()
	if err != nil {
		return err
	}

	fmt.Println(schema)

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "gateway",
		Usage: "Financial data and order gateway",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML configuration file",
			},
		},
		Action: serveAction,
		Commands: []*cli.Command{
			{
				Name:   "config-schema",
				Usage:  "Print the JSON schema of the configuration file",
				Action: schemaAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
