package storage

import (
	"math"

	"github.com/dgraph-io/badger/v4"

	"nanodb/db/plan"
	"nanodb/db/types"
)

// bytesPerDataPage is the nominal page size NumDataPages is measured
// against — NanoDB doesn't manage real fixed-size pages (full buffer
// management is out of scope), so this is purely a cost-estimation unit.
const bytesPerDataPage = 4096

// defaultAvgTupleSize seeds Stats for a table that has never been Analyzed.
const defaultAvgTupleSize = 64

// columnHistogram is a per-column statistics summary: its value range and
// how many rows hold SQL NULL there. db/cost's selectivity estimation does
// not read it (every predicate gets DefaultEstimator), and neither ANALYZE's
// result message nor EXPLAIN shows it; Histograms is its only reader.
type columnHistogram struct {
	ColumnName string
	HasValue   bool
	Min        types.Value
	Max        types.Value
	NullCount  int64
}

type tableStats struct {
	NumTuples    float64
	AvgTupleSize float64
	NumDataPages float64
	Histograms   []columnHistogram
}

// Analyze recomputes and persists the table's statistics: row count,
// average encoded row size, page-count estimate, and a min/max/null-count
// histogram per column.
func (t *Table) Analyze() error {
	cols := t.schema.Columns()
	hist := make([]columnHistogram, len(cols))
	for i, c := range cols {
		hist[i] = columnHistogram{ColumnName: c.Name}
	}

	var count, totalBytes int64
	err := t.Scan(func(_ uint64, values []types.Value) bool {
		count++
		if data, encErr := encodeGob(values); encErr == nil {
			totalBytes += int64(len(data))
		}
		for i, v := range values {
			if v.IsNull() {
				hist[i].NullCount++
				continue
			}
			if !hist[i].HasValue {
				hist[i].Min, hist[i].Max, hist[i].HasValue = v, v, true
				continue
			}
			if cmp, err := v.Compare(hist[i].Min); err == nil && cmp == types.Less {
				hist[i].Min = v
			}
			if cmp, err := v.Compare(hist[i].Max); err == nil && cmp == types.Greater {
				hist[i].Max = v
			}
		}
		return true
	})
	if err != nil {
		return err
	}

	avgSize := 0.0
	if count > 0 {
		avgSize = float64(totalBytes) / float64(count)
	}
	numPages := math.Ceil(float64(totalBytes) / bytesPerDataPage)
	if numPages < 1 {
		numPages = 1
	}

	stats := tableStats{
		NumTuples:    float64(count),
		AvgTupleSize: avgSize,
		NumDataPages: numPages,
		Histograms:   hist,
	}
	data, err := encodeGob(stats)
	if err != nil {
		return err
	}
	return t.engine.db.Update(func(txn *badger.Txn) error {
		return txn.Set(statsKey(t.schema.TableName), data)
	})
}

// Stats implements plan.TableHandle: the last Analyze's numbers if
// available, otherwise a cheap row-count-only estimate so a FileScan over
// a never-analyzed table still has something better than a guess.
func (t *Table) Stats() plan.TableStats {
	stats, ok := t.loadStats()
	if !ok {
		stats = t.quickStats()
	}
	return plan.TableStats{
		NumTuples:    stats.NumTuples,
		AvgTupleSize: stats.AvgTupleSize,
		NumDataPages: stats.NumDataPages,
	}
}

// Histograms returns the last Analyze's per-column statistics. Returns
// ok=false if the table was never analyzed.
func (t *Table) Histograms() ([]columnHistogram, bool) {
	stats, ok := t.loadStats()
	return stats.Histograms, ok
}

func (t *Table) loadStats() (tableStats, bool) {
	var stats tableStats
	err := t.engine.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(statsKey(t.schema.TableName))
		if err != nil {
			return err
		}
		return item.Value(func(v []byte) error { return decodeGob(v, &stats) })
	})
	return stats, err == nil
}

func (t *Table) quickStats() tableStats {
	var count int64
	prefix := rowPrefix(t.schema.TableName)
	_ = t.engine.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	numPages := math.Ceil(float64(count) * defaultAvgTupleSize / bytesPerDataPage)
	if numPages < 1 {
		numPages = 1
	}
	return tableStats{NumTuples: float64(count), AvgTupleSize: defaultAvgTupleSize, NumDataPages: numPages}
}
