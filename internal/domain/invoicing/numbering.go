package invoicing

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// Numbering follows the original numbering scheme: a type prefix, the issue
// year and a six-digit sequence, e.g. "F2025-000123" for a regular invoice
// and "ZF2025-000042" for an advance invoice. The sequence is unique and
// gapless within a (document type, year) partition.

// NumberPrefix returns the type-specific prefix of the numbering scheme
func NumberPrefix(docType DocumentType) string {
	if docType == DocumentTypeAdvance {
		return "ZF"
	}
	return "F"
}

// FormatNumber renders an invoice number for the given partition and sequence
func FormatNumber(docType DocumentType, year int, sequence int64) string {
	return fmt.Sprintf("%s%d-%06d", NumberPrefix(docType), year, sequence)
}

// ParseSequence extracts the numeric suffix of an invoice number belonging to
// the given partition. Numbers that do not match the partition format parse
// as 0, mirroring how the original treated foreign or malformed numbers.
func ParseSequence(number string, docType DocumentType, year int) int64 {
	prefix := fmt.Sprintf("%s%d-", NumberPrefix(docType), year)
	if !strings.HasPrefix(number, prefix) {
		return 0
	}
	seq, err := strconv.ParseInt(strings.TrimPrefix(number, prefix), 10, 64)
	if err != nil || seq < 0 {
		return 0
	}
	return seq
}

// VariableSymbolFromNumber derives the default variable symbol: the numeric
// portion of the invoice number ("F2025-000123" -> "2025000123").
func VariableSymbolFromNumber(number string) string {
	var b strings.Builder
	for _, r := range number {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SequenceStore is the slice of the invoice store the sequencer depends on
type SequenceStore interface {
	// MaxSequenceInPartition returns the highest previously issued sequence
	// value within the (documentType, year) partition, 0 when none exist.
	MaxSequenceInPartition(ctx context.Context, docType DocumentType, year int) (int64, error)
}

// NumberSequencer allocates the next invoice number for a partition.
//
// The read-max-then-increment sequence is raced by concurrent creations, so
// the sequencer serializes callers per partition with a named mutex. The
// lock must be held for the whole read-compute-persist window; callers use
// Locked for that. The sequencer never retries: a store uniqueness violation
// surfaces as DUPLICATE_NUMBER and retrying is the caller's decision.
type NumberSequencer struct {
	store SequenceStore

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewNumberSequencer creates a sequencer backed by the given store
func NewNumberSequencer(store SequenceStore) *NumberSequencer {
	return &NumberSequencer{
		store: store,
		locks: make(map[string]*sync.Mutex),
	}
}

func (s *NumberSequencer) partitionLock(docType DocumentType, year int) *sync.Mutex {
	key := fmt.Sprintf("%s:%d", docType, year)
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[key] = lock
	}
	return lock
}

// Next computes the next number for the partition. It must be called with
// the partition serialized; prefer Locked unless the caller already holds
// an equivalent store-level lock.
func (s *NumberSequencer) Next(ctx context.Context, docType DocumentType, year int) (string, error) {
	maxSeq, err := s.store.MaxSequenceInPartition(ctx, docType, year)
	if err != nil {
		return "", err
	}
	return FormatNumber(docType, year, maxSeq+1), nil
}

// Locked runs fn while holding the partition's mutex. fn receives the next
// number for the partition and typically persists the invoice carrying it
// before returning, which keeps the allocation gapless.
func (s *NumberSequencer) Locked(ctx context.Context, docType DocumentType, year int, fn func(number string) error) error {
	lock := s.partitionLock(docType, year)
	lock.Lock()
	defer lock.Unlock()

	number, err := s.Next(ctx, docType, year)
	if err != nil {
		return err
	}
	return fn(number)
}
