package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/defistate/listing-verifier-go/chains/ethereum"
	"github.com/defistate/listing-verifier-go/cmd/listingcheck/config"
	"github.com/defistate/listing-verifier-go/scenario"
)

func main() {
	rootLogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	prometheusRegistry := prometheus.DefaultRegisterer

	configPath := flag.String("config", "config.yaml", "Path to the configuration file.")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		rootLogger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Cancel on interrupt or termination.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := ethereum.Dial(ctx, ethereum.Config{
		URL:               cfg.RPCURL,
		LendingPool:       common.HexToAddress(cfg.LendingPool),
		DataProvider:      common.HexToAddress(cfg.DataProvider),
		AddressesProvider: common.HexToAddress(cfg.AddressesProvider),
		Logger:            rootLogger.With("component", "fork-client"),
		Registry:          prometheusRegistry,
	})
	if err != nil {
		rootLogger.Error("Failed to dial fork node", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	def, err := scenario.Load(cfg.ScenarioFile)
	if err != nil {
		rootLogger.Error("Failed to load scenario", "error", err)
		os.Exit(1)
	}
	plan, err := def.Resolve()
	if err != nil {
		rootLogger.Error("Invalid scenario", "error", err)
		os.Exit(1)
	}

	applier := buildApplier(cfg, client, rootLogger)

	runner, err := scenario.NewRunner(&scenario.RunnerConfig{
		Client:   client,
		Applier:  applier,
		Logger:   rootLogger.With("component", "scenario"),
		Registry: prometheusRegistry,
	})
	if err != nil {
		rootLogger.Error("Failed to initialize runner", "error", err)
		os.Exit(1)
	}

	if err := runner.Run(ctx, plan); err != nil {
		rootLogger.Error("Scenario failed", "scenario", def.Name, "error", err)
		os.Exit(1)
	}
	rootLogger.Info("Scenario passed", "scenario", def.Name)
}

// buildApplier wires the governance execution step. Without a configured
// governance call the change is assumed to be applied out-of-band before the
// second snapshot.
func buildApplier(cfg *config.Config, client *ethereum.Client, logger *slog.Logger) scenario.Applier {
	if cfg.Governance == nil {
		return scenario.ApplierFunc(func(ctx context.Context) error {
			logger.Warn("no governance call configured; assuming the change is already applied")
			return nil
		})
	}
	executor := common.HexToAddress(cfg.Governance.Executor)
	target := common.HexToAddress(cfg.Governance.Target)
	calldata := common.FromHex(cfg.Governance.Calldata)
	return scenario.ApplierFunc(func(ctx context.Context) error {
		return client.Execute(ctx, executor, target, calldata)
	})
}
