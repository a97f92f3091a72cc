package database

import (
	"context"
	"sync"
)

// ProcessedPaymentStore records provider transaction ids that have already
// triggered an order notification. MarkProcessed is an atomic
// check-and-insert: it returns true only for the first caller of a given id,
// so concurrent webhook redeliveries cannot both notify.
type ProcessedPaymentStore interface {
	MarkProcessed(ctx context.Context, txnID string) (bool, error)
}

// MemoryProcessedStore keeps the processed set in process memory. Dedup
// resets on restart; use the Redis store when that matters.
type MemoryProcessedStore struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewMemoryProcessedStore() *MemoryProcessedStore {
	return &MemoryProcessedStore{seen: make(map[string]struct{})}
}

func (s *MemoryProcessedStore) MarkProcessed(_ context.Context, txnID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.seen[txnID]; ok {
		return false, nil
	}
	s.seen[txnID] = struct{}{}
	return true, nil
}
