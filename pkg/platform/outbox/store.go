package outbox

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Appender is the write side used inside a business transaction.
type Appender interface {
	Append(ctx context.Context, entry *Entry) error
}

// Store defines outbox persistence. Implementations must be safe for
// concurrent use.
type Store interface {
	Appender

	// FetchUnprocessed returns up to limit pending entries ordered by Seq.
	FetchUnprocessed(ctx context.Context, limit int) ([]*Entry, error)

	// MarkProcessed marks an entry as published.
	MarkProcessed(ctx context.Context, id uuid.UUID, processedAt time.Time) error

	// CountPending returns the number of unpublished entries.
	CountPending(ctx context.Context) (int64, error)

	// DeleteProcessedBefore removes published entries older than before.
	DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
}

// Buffer collects entries during an in-memory transaction so they can be
// flushed only after the transaction succeeds.
type Buffer struct {
	entries []*Entry
}

func (b *Buffer) Append(_ context.Context, entry *Entry) error {
	b.entries = append(b.entries, entry)
	return nil
}

// Entries returns the buffered entries in append order.
func (b *Buffer) Entries() []*Entry {
	return b.entries
}

// Flush appends every buffered entry to dst and clears the buffer.
func (b *Buffer) Flush(ctx context.Context, dst Appender) error {
	for _, e := range b.entries {
		if err := dst.Append(ctx, e); err != nil {
			return err
		}
	}
	b.entries = nil
	return nil
}
