// FilePath: internal/repository/memory/memory.go
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/itsatony/pillhub/internal/repository"
)

// Store is a process-local RecordStore. Documents are copied on the way in and out.
type Store struct {
	mu   sync.RWMutex
	docs map[repository.Kind][]byte
}

// NewStore creates an empty in-memory store
func NewStore() *Store {
	return &Store{docs: make(map[repository.Kind][]byte)}
}

func (s *Store) Load(ctx context.Context, kind repository.Kind) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[kind]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), doc...), nil
}

func (s *Store) Save(ctx context.Context, kind repository.Kind, doc []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[kind] = append([]byte(nil), doc...)
	return nil
}

func (s *Store) Ping(ctx context.Context) error { return nil }

func (s *Store) Close() error { return nil }

// Ledger is an in-process ExecutionLedger. Claims older than retention are pruned.
type Ledger struct {
	mu        sync.Mutex
	claims    map[string]time.Time
	retention time.Duration
}

// NewLedger creates a ledger that forgets claims after retention
func NewLedger(retention time.Duration) *Ledger {
	if retention <= 0 {
		retention = 48 * time.Hour
	}
	return &Ledger{claims: make(map[string]time.Time), retention: retention}
}

func (l *Ledger) Claim(ctx context.Context, scheduleID, date string, at time.Time) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	for key, claimedAt := range l.claims {
		if at.Sub(claimedAt) > l.retention {
			delete(l.claims, key)
		}
	}

	key := scheduleID + "|" + date
	if _, taken := l.claims[key]; taken {
		return false, nil
	}
	l.claims[key] = at
	return true, nil
}
