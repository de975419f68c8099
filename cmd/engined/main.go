// Command engined serves the strategy engine over HTTP: backtest jobs,
// live strategy control, Prometheus metrics, and a DuckDB-backed store for
// positions and trades.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/flowquant-lab/flowquant/internal/api"
	"github.com/flowquant-lab/flowquant/internal/backtest"
	"github.com/flowquant-lab/flowquant/internal/block"
	"github.com/flowquant-lab/flowquant/internal/datasource"
	"github.com/flowquant-lab/flowquant/internal/graph"
	"github.com/flowquant-lab/flowquant/internal/logger"
	"github.com/flowquant-lab/flowquant/internal/metrics"
	"github.com/flowquant-lab/flowquant/internal/position"
	"github.com/flowquant-lab/flowquant/internal/position/commission"
	"github.com/flowquant-lab/flowquant/internal/runner"
	"github.com/flowquant-lab/flowquant/internal/store"
	"github.com/flowquant-lab/flowquant/internal/types"
	"github.com/flowquant-lab/flowquant/internal/version"
)

func serveAction(ctx context.Context, cmd *cli.Command) error {
	zapLogger, err := logger.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer zapLogger.Sync()

	db, err := store.NewDuckDB(cmd.String("db"), zapLogger)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer db.Close()

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	evaluator := graph.NewEvaluator(block.NewDefaultRegistry(), zapLogger)
	manager := backtest.NewManager(backtest.NewEngine(evaluator, zapLogger), collector, zapLogger)

	// Live positions survive restarts: the DuckDB store backs the tracker,
	// and every closed trade is persisted as it is recorded.
	var model commission.Model = commission.NewZero()
	if pct := cmd.Float("commission-pct"); pct > 0 {
		model = commission.NewPercent(pct)
	}

	tracker := position.NewTracker(db, model, cmd.Float("slippage-pct"), zapLogger)
	tracker.OnTrade(func(t types.Trade) {
		if err := db.SaveTrade(t); err != nil {
			zapLogger.Error("persisting trade", zap.String("trade", t.ID), zap.Error(err))
		}
	})

	source := datasource.NewBinance(os.Getenv("BINANCE_API_KEY"), os.Getenv("BINANCE_SECRET_KEY"))
	scheduler := runner.NewScheduler(evaluator, tracker, source, collector,
		int(cmd.Int("max-strategies")), zapLogger)
	defer scheduler.StopAll()

	mux := api.NewServer(manager, scheduler, zapLogger).Router()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	server := &http.Server{
		Addr:              cmd.String("listen"),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		zapLogger.Info("engine listening",
			zap.String("addr", server.Addr), zap.String("version", version.GetVersion()))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}

func main() {
	cmd := &cli.Command{
		Name:    "engined",
		Usage:   "Serve the strategy engine API",
		Version: version.GetVersion(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "listen",
				Aliases: []string{"l"},
				Usage:   "HTTP listen address",
				Value:   ":8080",
			},
			&cli.StringFlag{
				Name:  "db",
				Usage: "DuckDB database path (empty for in-memory)",
				Value: "flowquant.db",
			},
			&cli.IntFlag{
				Name:  "max-strategies",
				Usage: "Maximum concurrently running live strategies",
				Value: runner.DefaultMaxConcurrent,
			},
			&cli.FloatFlag{
				Name:  "slippage-pct",
				Usage: "Slippage percent applied to live fills",
			},
			&cli.FloatFlag{
				Name:  "commission-pct",
				Usage: "Commission percent applied to live fills",
			},
		},
		Action: serveAction,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}
