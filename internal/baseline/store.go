// Package baseline persists the last accepted run's statistics, the
// comparison point for regression detection. The store is versioned
// with an optimistic concurrency token: baseline-mutating runs are
// expected to be serialized by the scheduler, but a violated assumption
// must surface as a conflict instead of silently corrupting state.
package baseline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"

	"aasbench/internal/regression"
)

// ConflictError reports that the baseline changed between load and
// write. The run's own comparison output is unaffected; only the
// baseline write is refused.
type ConflictError struct {
	Expected string
	Actual   string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("baseline conflict: token %q expected, store has %q", e.Expected, e.Actual)
}

// Snapshot is one versioned baseline state. Token is the concurrency
// token captured at load time; Replace refuses to write over a store
// whose token no longer matches it.
type Snapshot struct {
	RunID   string
	Token   string
	Entries map[regression.Key]regression.Sample
}

// Store is the persisted baseline record store.
type Store interface {
	// Load returns the current baseline. A store that has never been
	// written returns an empty snapshot with an empty token.
	Load(ctx context.Context) (*Snapshot, error)
	// Replace atomically swaps the baseline for the given entries,
	// provided the stored token still equals expectedToken. On
	// mismatch it returns a *ConflictError and writes nothing.
	Replace(ctx context.Context, runID string, entries map[regression.Key]regression.Sample, expectedToken string) error
	Close() error
}

// Token derives the concurrency token for a baseline state: a content
// hash over the producing run id and every entry, order-independent.
func Token(runID string, entries map[regression.Key]regression.Sample) string {
	keys := make([]regression.Key, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.Implementation != b.Implementation {
			return a.Implementation < b.Implementation
		}
		if a.Dataset != b.Dataset {
			return a.Dataset < b.Dataset
		}
		return a.OperationID < b.OperationID
	})

	h := sha256.New()
	fmt.Fprintf(h, "run=%s\n", runID)
	for _, k := range keys {
		s := entries[k]
		fmt.Fprintf(h, "%s/%s/%s mean=%g stddev=%g n=%d rc=%t\n",
			k.Implementation, k.Dataset, k.OperationID,
			s.MeanNs, s.StddevNs, s.SampleCount, s.ReducedConfidence)
	}
	return hex.EncodeToString(h.Sum(nil))
}
