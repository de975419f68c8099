// Package store persists the engine's owned state — trade log, open
// positions, and strategy definitions — in DuckDB. Records are versioned;
// schema changes must stay additive so previously written records keep
// loading.
package store

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/Masterminds/semver/v3"
	sq "github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"go.uber.org/zap"

	"github.com/flowquant-lab/flowquant/internal/logger"
	"github.com/flowquant-lab/flowquant/internal/types"
	"github.com/flowquant-lab/flowquant/pkg/errors"
)

// SchemaVersion is the schema this build writes. A stored schema with a
// different major version refuses to open.
const SchemaVersion = "1.0.0"

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS schema_info (
		key VARCHAR PRIMARY KEY,
		value VARCHAR NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS trades (
		id VARCHAR PRIMARY KEY,
		strategy_id VARCHAR NOT NULL,
		direction VARCHAR NOT NULL,
		symbol VARCHAR NOT NULL,
		entry_time TIMESTAMP NOT NULL,
		entry_price DOUBLE NOT NULL,
		exit_time TIMESTAMP NOT NULL,
		exit_price DOUBLE NOT NULL,
		gross_pnl DOUBLE NOT NULL,
		net_pnl DOUBLE NOT NULL,
		fees DOUBLE NOT NULL,
		holding_seconds BIGINT NOT NULL,
		shares DOUBLE NOT NULL,
		mae DOUBLE,
		mfe DOUBLE
	)`,
	`CREATE TABLE IF NOT EXISTS positions (
		strategy_id VARCHAR PRIMARY KEY,
		side VARCHAR NOT NULL,
		entry_time TIMESTAMP NOT NULL,
		entry_price DOUBLE NOT NULL,
		symbol VARCHAR NOT NULL,
		timeframe VARCHAR,
		shares DOUBLE NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS strategies (
		id VARCHAR PRIMARY KEY,
		name VARCHAR,
		definition VARCHAR NOT NULL
	)`,
}

// DuckDB is the embedded persistence layer. It also satisfies the position
// store contract, so live runs can keep open positions durable.
type DuckDB struct {
	db     *sql.DB
	sb     sq.StatementBuilderType
	logger *logger.Logger
}

// NewDuckDB opens (or creates) the database at path. An empty path opens an
// in-memory database. The schema version is checked before any use.
func NewDuckDB(path string, log *logger.Logger) (*DuckDB, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreInit, "opening duckdb", err)
	}

	s := &DuckDB{
		db:     db,
		sb:     sq.StatementBuilder.RunWith(db),
		logger: log,
	}

	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Close releases the database handle.
func (s *DuckDB) Close() error {
	return s.db.Close()
}

func (s *DuckDB) init() error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.Exec(stmt); err != nil {
			return errors.Wrap(errors.ErrCodeStoreInit, "creating schema", err)
		}
	}

	return s.checkSchemaVersion()
}

// checkSchemaVersion records the schema version on first open and refuses
// stores written by an incompatible major version.
func (s *DuckDB) checkSchemaVersion() error {
	var stored string

	err := s.sb.Select("value").
		From("schema_info").
		Where(sq.Eq{"key": "schema_version"}).
		QueryRow().
		Scan(&stored)

	if err == sql.ErrNoRows {
		_, err = s.sb.Insert("schema_info").
			Columns("key", "value").
			Values("schema_version", SchemaVersion).
			Exec()
		if err != nil {
			return errors.Wrap(errors.ErrCodeStoreInit, "recording schema version", err)
		}

		return nil
	}

	if err != nil {
		return errors.Wrap(errors.ErrCodeStoreQuery, "reading schema version", err)
	}

	storedVersion, err := semver.NewVersion(stored)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeSchemaIncompatible, err, "malformed stored schema version %q", stored)
	}

	current := semver.MustParse(SchemaVersion)

	if storedVersion.Major() != current.Major() {
		return errors.Newf(errors.ErrCodeSchemaIncompatible,
			"store schema %s is incompatible with %s", stored, SchemaVersion)
	}

	return nil
}

// SaveTrade appends one closed trade. Trades are immutable; re-saving an id
// is a store error.
func (s *DuckDB) SaveTrade(trade types.Trade) error {
	_, err := s.sb.Insert("trades").
		Columns("id", "strategy_id", "direction", "symbol",
			"entry_time", "entry_price", "exit_time", "exit_price",
			"gross_pnl", "net_pnl", "fees", "holding_seconds", "shares", "mae", "mfe").
		Values(trade.ID, trade.StrategyID, string(trade.Direction), trade.Symbol,
			trade.EntryTime, trade.EntryPrice, trade.ExitTime, trade.ExitPrice,
			trade.GrossPnL, trade.NetPnL, trade.Fees,
			int64(trade.HoldingDuration.Seconds()), trade.Shares, trade.MAE, trade.MFE).
		Exec()
	if err != nil {
		return errors.Wrapf(errors.ErrCodeStoreQuery, err, "saving trade %s", trade.ID)
	}

	return nil
}

// Trades loads the trades of one strategy ordered by exit time. An empty
// strategy id loads all trades.
func (s *DuckDB) Trades(strategyID string) ([]types.Trade, error) {
	q := s.sb.Select("id", "strategy_id", "direction", "symbol",
		"entry_time", "entry_price", "exit_time", "exit_price",
		"gross_pnl", "net_pnl", "fees", "holding_seconds", "shares", "mae", "mfe").
		From("trades").
		OrderBy("exit_time")

	if strategyID != "" {
		q = q.Where(sq.Eq{"strategy_id": strategyID})
	}

	rows, err := q.Query()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreQuery, "loading trades", err)
	}
	defer rows.Close()

	var trades []types.Trade

	for rows.Next() {
		var (
			t              types.Trade
			direction      string
			holdingSeconds int64
		)

		err := rows.Scan(&t.ID, &t.StrategyID, &direction, &t.Symbol,
			&t.EntryTime, &t.EntryPrice, &t.ExitTime, &t.ExitPrice,
			&t.GrossPnL, &t.NetPnL, &t.Fees, &holdingSeconds, &t.Shares, &t.MAE, &t.MFE)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeStoreQuery, "scanning trade", err)
		}

		t.Direction = types.PositionSide(direction)
		t.HoldingDuration = time.Duration(holdingSeconds) * time.Second
		t.EntryTime = t.EntryTime.UTC()
		t.ExitTime = t.ExitTime.UTC()

		trades = append(trades, t)
	}

	return trades, rows.Err()
}

// Get implements the position store contract.
func (s *DuckDB) Get(strategyID string) (types.Position, bool, error) {
	var (
		pos  types.Position
		side string
	)

	err := s.sb.Select("strategy_id", "side", "entry_time", "entry_price", "symbol", "timeframe", "shares").
		From("positions").
		Where(sq.Eq{"strategy_id": strategyID}).
		QueryRow().
		Scan(&pos.StrategyID, &side, &pos.EntryTime, &pos.EntryPrice, &pos.Symbol, &pos.Timeframe, &pos.Shares)

	if err == sql.ErrNoRows {
		return types.Position{}, false, nil
	}

	if err != nil {
		return types.Position{}, false, errors.Wrap(errors.ErrCodeStoreQuery, "loading position", err)
	}

	pos.Side = types.PositionSide(side)
	pos.EntryTime = pos.EntryTime.UTC()

	return pos, true, nil
}

// Set implements the position store contract with replace-by-key
// semantics.
func (s *DuckDB) Set(position types.Position) error {
	_, err := s.sb.Insert("positions").
		Options("OR REPLACE").
		Columns("strategy_id", "side", "entry_time", "entry_price", "symbol", "timeframe", "shares").
		Values(position.StrategyID, string(position.Side), position.EntryTime,
			position.EntryPrice, position.Symbol, position.Timeframe, position.Shares).
		Exec()
	if err != nil {
		return errors.Wrapf(errors.ErrCodeStoreQuery, err, "saving position for %s", position.StrategyID)
	}

	return nil
}

// Remove implements the position store contract. Removing a missing key is
// not an error.
func (s *DuckDB) Remove(strategyID string) error {
	_, err := s.sb.Delete("positions").
		Where(sq.Eq{"strategy_id": strategyID}).
		Exec()
	if err != nil {
		return errors.Wrapf(errors.ErrCodeStoreQuery, err, "removing position for %s", strategyID)
	}

	return nil
}

// List implements the position store contract.
func (s *DuckDB) List() ([]types.Position, error) {
	rows, err := s.sb.Select("strategy_id", "side", "entry_time", "entry_price", "symbol", "timeframe", "shares").
		From("positions").
		Query()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreQuery, "listing positions", err)
	}
	defer rows.Close()

	var positions []types.Position

	for rows.Next() {
		var (
			pos  types.Position
			side string
		)

		err := rows.Scan(&pos.StrategyID, &side, &pos.EntryTime, &pos.EntryPrice,
			&pos.Symbol, &pos.Timeframe, &pos.Shares)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeStoreQuery, "scanning position", err)
		}

		pos.Side = types.PositionSide(side)
		pos.EntryTime = pos.EntryTime.UTC()
		positions = append(positions, pos)
	}

	return positions, rows.Err()
}

// SaveStrategy stores or replaces a strategy definition.
func (s *DuckDB) SaveStrategy(def *types.StrategyDefinition) error {
	encoded, err := json.Marshal(def)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStoreQuery, "encoding strategy definition", err)
	}

	_, err = s.sb.Insert("strategies").
		Options("OR REPLACE").
		Columns("id", "name", "definition").
		Values(def.ID, def.Name, string(encoded)).
		Exec()
	if err != nil {
		return errors.Wrapf(errors.ErrCodeStoreQuery, err, "saving strategy %s", def.ID)
	}

	return nil
}

// Strategy loads one stored strategy definition.
func (s *DuckDB) Strategy(id string) (*types.StrategyDefinition, error) {
	var encoded string

	err := s.sb.Select("definition").
		From("strategies").
		Where(sq.Eq{"id": id}).
		QueryRow().
		Scan(&encoded)

	if err == sql.ErrNoRows {
		return nil, errors.Newf(errors.ErrCodeStrategyNotFound, "no stored strategy %s", id)
	}

	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeStoreQuery, err, "loading strategy %s", id)
	}

	var def types.StrategyDefinition
	if err := json.Unmarshal([]byte(encoded), &def); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeStoreQuery, err, "decoding strategy %s", id)
	}

	return &def, nil
}

// Strategies lists all stored strategy definitions.
func (s *DuckDB) Strategies() ([]types.StrategyDefinition, error) {
	rows, err := s.sb.Select("definition").From("strategies").OrderBy("id").Query()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreQuery, "listing strategies", err)
	}
	defer rows.Close()

	var defs []types.StrategyDefinition

	for rows.Next() {
		var encoded string
		if err := rows.Scan(&encoded); err != nil {
			return nil, errors.Wrap(errors.ErrCodeStoreQuery, "scanning strategy", err)
		}

		var def types.StrategyDefinition
		if err := json.Unmarshal([]byte(encoded), &def); err != nil {
			return nil, errors.Wrap(errors.ErrCodeStoreQuery, "decoding strategy", err)
		}

		defs = append(defs, def)
	}

	return defs, rows.Err()
}

// DeleteStrategy removes a stored strategy definition.
func (s *DuckDB) DeleteStrategy(id string) error {
	_, err := s.sb.Delete("strategies").Where(sq.Eq{"id": id}).Exec()
	if err != nil {
		return errors.Wrapf(errors.ErrCodeStoreQuery, err, "deleting strategy %s", id)
	}

	s.logger.Debug("deleted strategy", zap.String("strategy", id))

	return nil
}
