package payroll

import (
	"context"
	"errors"
)

// ErrDuplicateRun is returned when a run with the same key was already recorded.
var ErrDuplicateRun = errors.New("payroll run already recorded")

// =============================================================================
// STORE - Persistence for runs (append-only)
// =============================================================================

// Store persists payroll runs. There is no Update and no Delete: a wrong
// run is superseded by a later one, not edited.
type Store interface {
	// Append persists a run with its lines. Fails with ErrDuplicateRun if
	// the key exists.
	Append(ctx context.Context, run Run) error

	// List returns every run, oldest first.
	List(ctx context.Context) ([]Run, error)

	// Exists checks whether a run with this key was recorded.
	Exists(ctx context.Context, key string) (bool, error)
}

// =============================================================================
// LEDGER
// =============================================================================

type Ledger struct {
	Store Store
}

func NewLedger(store Store) *Ledger {
	return &Ledger{Store: store}
}

// Append records run. Runs without a key are never deduplicated.
func (l *Ledger) Append(ctx context.Context, run Run) error {
	if run.Key != "" {
		exists, err := l.Store.Exists(ctx, run.Key)
		if err != nil {
			return err
		}
		if exists {
			return ErrDuplicateRun
		}
	}
	return l.Store.Append(ctx, run)
}

func (l *Ledger) Runs(ctx context.Context) ([]Run, error) {
	return l.Store.List(ctx)
}

func (l *Ledger) Recorded(ctx context.Context, key string) (bool, error) {
	return l.Store.Exists(ctx, key)
}
