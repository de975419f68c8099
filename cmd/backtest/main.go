// Command backtest replays a strategy definition over a CSV bar file and
// writes the resulting trades and metrics as YAML.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/moznion/go-optional"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/flowquant-lab/flowquant/internal/backtest"
	"github.com/flowquant-lab/flowquant/internal/block"
	"github.com/flowquant-lab/flowquant/internal/datasource"
	"github.com/flowquant-lab/flowquant/internal/graph"
	"github.com/flowquant-lab/flowquant/internal/logger"
	"github.com/flowquant-lab/flowquant/internal/types"
	"github.com/flowquant-lab/flowquant/internal/version"
	"github.com/flowquant-lab/flowquant/pkg/utils"
)

func backtestAction(ctx context.Context, cmd *cli.Command) error {
	strategyPath := cmd.String("strategy")
	dataPath := cmd.String("data")
	outputPath := cmd.String("output")

	def, err := loadStrategy(strategyPath)
	if err != nil {
		return fmt.Errorf("failed to load strategy: %w", err)
	}

	bars, err := datasource.LoadCSV(dataPath)
	if err != nil {
		return fmt.Errorf("failed to load bars: %w", err)
	}

	cfg := backtest.ExecutionConfig{
		StrategyID:  def.ID,
		Symbol:      cmd.String("symbol"),
		Timeframe:   cmd.String("timeframe"),
		SlippagePct: cmd.Float("slippage-pct"),
	}

	if cmd.IsSet("shares") {
		cfg.PositionSize = optional.Some(cmd.Float("shares"))
	}

	if cmd.IsSet("size-pct") {
		cfg.PositionSizePct = optional.Some(cmd.Float("size-pct"))
	}

	if cmd.IsSet("commission") {
		cfg.CommissionFixed = optional.Some(cmd.Float("commission"))
	}

	if cmd.IsSet("commission-pct") {
		cfg.CommissionPct = optional.Some(cmd.Float("commission-pct"))
	}

	zapLogger, err := logger.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer zapLogger.Sync()

	engine := backtest.NewEngine(graph.NewEvaluator(block.NewDefaultRegistry(), zapLogger), zapLogger)

	bar := progressbar.NewOptions(100,
		progressbar.OptionSetDescription(fmt.Sprintf("backtesting %s over %d bars", def.ID, bars.Len())),
		progressbar.OptionShowCount(),
	)

	result, runErr := engine.Run(ctx, def, bars, cfg, func(pct float64) {
		_ = bar.Set(int(pct))
	})

	_ = bar.Finish()
	fmt.Println()

	if result != nil {
		if err := writeResult(outputPath, result); err != nil {
			return fmt.Errorf("failed to write result: %w", err)
		}

		printSummary(result)
	}

	return runErr
}

func loadStrategy(path string) (*types.StrategyDefinition, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var def types.StrategyDefinition
	if err := yaml.Unmarshal(raw, &def); err != nil {
		return nil, err
	}

	if err := def.Validate(); err != nil {
		return nil, err
	}

	return &def, nil
}

func writeResult(path string, result *types.BacktestResult) error {
	encoded, err := yaml.Marshal(result)
	if err != nil {
		return err
	}

	return os.WriteFile(path, encoded, 0o644)
}

func printSummary(result *types.BacktestResult) {
	m := result.Metrics

	fmt.Printf("trades: %d  win rate: %.1f%%  net: %.2f\n",
		m.TotalTrades, utils.ClampPct(m.WinRate), utils.RoundTo(m.NetProfit, 2))
	fmt.Printf("return: %.2f%%  max drawdown: %.2f%%  profit factor: %.2f\n",
		utils.RoundTo(m.TotalReturnPct, 2), utils.RoundTo(m.MaxDrawdownPct, 2), utils.RoundTo(m.ProfitFactor, 2))
	fmt.Printf("buy & hold: %.2f\n", utils.RoundTo(result.BuyAndHoldPnL, 2))

	if result.Error != "" {
		fmt.Printf("run ended with error: %s\n", result.Error)
	}
}

func main() {
	cmd := &cli.Command{
		Name:    "backtest",
		Usage:   "Run a strategy graph over historical bars",
		Version: version.GetVersion(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "strategy",
				Aliases:  []string{"s"},
				Usage:    "Path to the strategy definition YAML",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "data",
				Aliases:  []string{"d"},
				Usage:    "Path to the bar data CSV (timestamp,open,high,low,close,volume)",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Path for the result YAML",
				Value:   "result.yaml",
			},
			&cli.StringFlag{
				Name:  "symbol",
				Usage: "Instrument symbol",
				Value: "UNKNOWN",
			},
			&cli.StringFlag{
				Name:  "timeframe",
				Usage: "Bar timeframe label",
				Value: "1m",
			},
			&cli.FloatFlag{
				Name:  "shares",
				Usage: "Fixed share count per entry (exclusive with --size-pct)",
			},
			&cli.FloatFlag{
				Name:  "size-pct",
				Usage: "Entry size as percent of initial capital (exclusive with --shares)",
			},
			&cli.FloatFlag{
				Name:  "commission",
				Usage: "Flat commission per fill (exclusive with --commission-pct)",
			},
			&cli.FloatFlag{
				Name:  "commission-pct",
				Usage: "Commission as percent of fill notional (exclusive with --commission)",
			},
			&cli.FloatFlag{
				Name:  "slippage-pct",
				Usage: "Slippage as percent of fill notional, charged at entry and exit",
			},
		},
		Action: backtestAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
