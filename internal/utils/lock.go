package utils

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const (
	lockFileSuffix = ".lock"
	lockRetryDelay = 250 * time.Millisecond
)

// ErrLedgerBusy is returned when another run holds the ledger lock past the deadline.
var ErrLedgerBusy = errors.New("attendance ledger is busy")

// LedgerLock serializes writers of one attendance ledger through <ledger>.lock.
type LedgerLock struct {
	f      *flock.Flock
	ledger string
}

// NewLedgerLock resolves ledgerPath like the ledger itself; an empty path is the default ledger.
func NewLedgerLock(ledgerPath string) (*LedgerLock, error) {
	ledger, err := GetAbsDBPath(ExpandPath(ledgerPath))
	if err != nil {
		return nil, fmt.Errorf("resolve ledger path: %w", err)
	}
	return &LedgerLock{
		f:      flock.New(ledger+lockFileSuffix, flock.SetPermissions(0o600)),
		ledger: ledger,
	}, nil
}

// Ledger is the absolute path of the guarded ledger.
func (l *LedgerLock) Ledger() string { return l.ledger }

// Acquire takes the lock, waiting for another writer until ctx is done.
func (l *LedgerLock) Acquire(ctx context.Context) error {
	ok, err := l.f.TryLock()
	if err != nil {
		return fmt.Errorf("lock ledger %s: %w", l.ledger, err)
	}
	if ok {
		return nil
	}

	Log.Warnf("Ledger %s is being updated by another run, waiting...", l.ledger)
	ok, err = l.f.TryLockContext(ctx, lockRetryDelay)
	if err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		return fmt.Errorf("%w: %s", ErrLedgerBusy, l.ledger)
	}
	if err != nil {
		return fmt.Errorf("lock ledger %s: %w", l.ledger, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrLedgerBusy, l.ledger)
	}
	return nil
}

// Release drops the lock. Releasing a lock that is not held is a no-op.
func (l *LedgerLock) Release() error {
	if err := l.f.Unlock(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("unlock ledger %s: %w", l.ledger, err)
	}
	return nil
}

// WithLedgerLock creates the ledger directory, holds the ledger lock and
// calls fn with the absolute ledger path.
func WithLedgerLock(ctx context.Context, ledgerPath string, fn func(ledger string) error) error {
	l, err := NewLedgerLock(ledgerPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(l.ledger), 0o755); err != nil {
		return err
	}
	if err := l.Acquire(ctx); err != nil {
		return err
	}
	defer l.Release()
	return fn(l.ledger)
}

// GetAbsDBPath resolves the ledger path. An empty path selects the per-user default.
func GetAbsDBPath(dbPath string) (string, error) {
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", "xlsxcalendar", "ledger.sqlite"), nil
	}
	return filepath.Abs(dbPath)
}
