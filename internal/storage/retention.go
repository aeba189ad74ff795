package storage

import (
	"errors"
	"fmt"
	"log"
	"sync"
)

// DefaultMaxSessions is the retention limit of a freshly opened store.
const DefaultMaxSessions = 100

// Retention keeps the number of stored sessions at or below a limit by
// deleting the oldest records, ordered by creation stamp.
type Retention struct {
	records *records
	ledger  *Ledger
	logger  *log.Logger

	mu    sync.Mutex // serializes sweeps and limit changes
	limit int
}

func newRetention(r *records, l *Ledger, logger *log.Logger, limit int) *Retention {
	return &Retention{records: r, ledger: l, logger: logger, limit: limit}
}

// Limit returns the current maximum session count.
func (rm *Retention) Limit() int {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	return rm.limit
}

// SetLimit changes the maximum session count and sweeps immediately.
func (rm *Retention) SetLimit(n int) (removed int, err error) {
	if n <= 0 {
		return 0, fmt.Errorf("max sessions must be positive, got %d", n)
	}
	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.limit = n
	return rm.sweepLocked()
}

// Sweep deletes the oldest records beyond the limit and adjusts the ledger
// for every record it removed. Eviction is best effort: failures are logged
// and returned, and records deleted before a failure stay deleted.
func (rm *Retention) Sweep() (removed int, err error) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	return rm.sweepLocked()
}

func (rm *Retention) sweepLocked() (int, error) {
	infos, err := rm.records.infos()
	if err != nil {
		rm.logger.Printf("sweep: listing sessions: %v", err)
		return 0, err
	}
	if len(infos) <= rm.limit {
		return 0, nil
	}

	excess := len(infos) - rm.limit
	deleted := make(map[string]bool, excess)
	var errs []error
	for _, info := range infos[:excess] {
		if err := rm.records.Delete(info.ID); err != nil {
			rm.logger.Printf("sweep: deleting session %s: %v", info.ID, err)
			errs = append(errs, err)
			continue
		}
		deleted[info.ID] = true
		rm.logger.Printf("pruned old session: %s", info.ID)
	}
	if len(deleted) == 0 {
		return 0, errors.Join(errs...)
	}

	oldest := ""
	for _, info := range infos {
		if !deleted[info.ID] {
			oldest = info.ID
			break
		}
	}
	if err := rm.ledger.Update(func(m *Metadata) {
		m.SessionCount -= len(deleted)
		if m.SessionCount < 0 {
			m.SessionCount = 0
		}
		m.OldestSession = oldest
	}); err != nil {
		rm.logger.Printf("sweep: saving ledger: %v", err)
		errs = append(errs, err)
	}
	return len(deleted), errors.Join(errs...)
}
