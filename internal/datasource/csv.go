package datasource

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/flowquant-lab/flowquant/internal/types"
	"github.com/flowquant-lab/flowquant/pkg/errors"
)

// csvColumns is the expected header of a bar data file.
var csvColumns = []string{"timestamp", "open", "high", "low", "close", "volume"}

// LoadCSV reads a bar series from a CSV file with a
// timestamp,open,high,low,close,volume header. Timestamps are RFC 3339 or
// unix milliseconds.
func LoadCSV(path string) (*types.BarSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDataSource, err, "opening bar file %s", path)
	}
	defer f.Close()

	return ReadCSV(f)
}

// ReadCSV parses a bar series from CSV content.
func ReadCSV(r io.Reader) (*types.BarSeries, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSource, "reading csv header", err)
	}

	if len(header) != len(csvColumns) {
		return nil, errors.Newf(errors.ErrCodeDataSource,
			"expected %d columns (%v), got %d", len(csvColumns), csvColumns, len(header))
	}

	bars := &types.BarSeries{}

	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeDataSource, err, "reading csv line %d", line)
		}

		ts, err := parseTimestamp(record[0])
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeDataSource, err, "csv line %d: bad timestamp", line)
		}

		fields := make([]float64, 5)

		for i := 0; i < 5; i++ {
			fields[i], err = strconv.ParseFloat(record[i+1], 64)
			if err != nil {
				return nil, errors.Wrapf(errors.ErrCodeDataSource, err, "csv line %d: bad %s", line, csvColumns[i+1])
			}
		}

		bars.Timestamps = append(bars.Timestamps, ts)
		bars.Open = append(bars.Open, fields[0])
		bars.High = append(bars.High, fields[1])
		bars.Low = append(bars.Low, fields[2])
		bars.Close = append(bars.Close, fields[3])
		bars.Volume = append(bars.Volume, fields[4])
	}

	if err := bars.Validate(); err != nil {
		return nil, err
	}

	return bars, nil
}

func parseTimestamp(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}

	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, err
	}

	return time.UnixMilli(ms).UTC(), nil
}
